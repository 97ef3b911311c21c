package models

import (
	"time"
)

// OrderStatus defines the processing stage of an uploaded sales order
type OrderStatus string

const (
	OrderStatusProcessing  OrderStatus = "processing"   // Extraction pipeline running
	OrderStatusNeedsReview OrderStatus = "needs_review" // Awaiting operator review
	OrderStatusCompleted   OrderStatus = "completed"    // Review finished
	OrderStatusError       OrderStatus = "error"        // Pipeline failed
)

// IsValid reports whether s is one of the enumerated statuses.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusNeedsReview, OrderStatusCompleted, OrderStatusError:
		return true
	}
	return false
}

// statusTransitions lists the legal target statuses per current status.
// The pipeline drives processing -> needs_review|error; the operator drives
// needs_review -> completed. Terminal states have no exits.
var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusProcessing:  {OrderStatusNeedsReview, OrderStatusError},
	OrderStatusNeedsReview: {OrderStatusCompleted, OrderStatusError},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to OrderStatus) bool {
	for _, t := range statusTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Order represents one uploaded sales-order document
type Order struct {
	ID        int         `gorm:"primaryKey" json:"id"`
	Filename  string      `gorm:"uniqueIndex;not null" json:"filename"`
	Status    OrderStatus `gorm:"index;default:'processing'" json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// TableName specifies the table name
func (Order) TableName() string {
	return "orders"
}

// LineItem is one extracted product request row within an order document.
// ConfidenceScore (0-100) comes from the upstream matcher and is never
// recomputed here.
type LineItem struct {
	ID               int     `gorm:"primaryKey" json:"id"`
	OrderID          int     `gorm:"index;not null" json:"order_id"`
	ExtractedText    string  `gorm:"type:text" json:"extracted_text"`
	MatchedProductID *int    `gorm:"index" json:"matched_product_id"`
	ConfidenceScore  float64 `json:"confidence_score"`
	Quantity         int     `gorm:"default:1" json:"quantity"`
}

// TableName specifies the table name
func (LineItem) TableName() string {
	return "line_items"
}

// OrderDetails is the composite view the review UI synchronizes on: one
// order plus its line items ordered by id. It is always replaced as a
// whole, never patched field by field.
type OrderDetails struct {
	Order     Order      `json:"order"`
	LineItems []LineItem `json:"line_items"`
}
