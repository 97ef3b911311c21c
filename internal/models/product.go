package models

// Product is read-only catalog reference data. The attribute columns are
// display-only during matching; nothing in this system mutates them.
type Product struct {
	ID          int     `gorm:"primaryKey" json:"id"`
	Type        string  `gorm:"index" json:"category"` // surfaced as "category" on the wire
	Material    string  `gorm:"index" json:"material"`
	Size        string  `gorm:"index" json:"size"`
	Length      string  `json:"length"`
	Coating     string  `json:"coating"`
	ThreadType  string  `json:"thread_type"`
	Description string  `gorm:"uniqueIndex" json:"description"`
	UnitPrice   float64 `gorm:"default:0" json:"unit_price"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}
