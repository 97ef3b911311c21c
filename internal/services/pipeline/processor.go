package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/xelth-com/orderflowgo/internal/config"
	"github.com/xelth-com/orderflowgo/internal/database"
	"github.com/xelth-com/orderflowgo/internal/models"
	"github.com/xelth-com/orderflowgo/internal/notify"
	"gorm.io/gorm"
)

// Processor runs the upstream extraction/matching pass for a freshly
// uploaded order and flips its status when done. Every status flip is
// broadcast on the hub so open review views observe it.
type Processor struct {
	db         *database.DB
	hub        *notify.Hub
	extraction *ExtractionClient
	matching   *MatchingClient
}

// NewProcessor creates a Processor wired to the upstream APIs
func NewProcessor(db *database.DB, hub *notify.Hub, cfg config.UpstreamConfig) *Processor {
	return &Processor{
		db:         db,
		hub:        hub,
		extraction: NewExtractionClient(cfg.ExtractionURL),
		matching:   NewMatchingClient(cfg.MatchingURL, cfg.MatchLimit),
	}
}

// Process extracts line rows from the uploaded PDF, matches them against
// the catalog via the matching API, creates line items and moves the order
// to needs_review. Any failure moves the order to error instead.
func (p *Processor) Process(ctx context.Context, filePath, filename string) error {
	var order models.Order
	if err := p.db.Where("filename = ?", filename).First(&order).Error; err != nil {
		return fmt.Errorf("find order for %s: %w", filename, err)
	}

	if err := p.process(ctx, &order, filePath); err != nil {
		log.Printf("❌ Processing failed for %s: %v", filename, err)
		p.setStatus(&order, models.OrderStatusError)
		return err
	}

	p.setStatus(&order, models.OrderStatusNeedsReview)
	log.Printf("✅ Order %d processed, awaiting review", order.ID)
	return nil
}

func (p *Processor) process(ctx context.Context, order *models.Order, filePath string) error {
	items, err := p.extraction.Extract(ctx, filePath)
	if err != nil {
		return err
	}
	log.Printf("📄 Extracted %d rows from %s", len(items), order.Filename)

	queries := make([]string, 0, len(items))
	for _, it := range items {
		queries = append(queries, it.RequestItem)
	}

	matches, err := p.matching.MatchBatch(ctx, queries)
	if err != nil {
		return err
	}

	for _, it := range items {
		line := models.LineItem{
			OrderID:       order.ID,
			ExtractedText: it.RequestItem,
			Quantity:      it.Quantity(),
		}

		if cands := matches[it.RequestItem]; len(cands) > 0 {
			best := cands[0]
			line.ConfidenceScore = best.Score
			if product, err := p.findProductByDescription(best.Match); err == nil {
				line.MatchedProductID = &product.ID
			} else {
				log.Printf("⚠️  No catalog product for proposed match %q", best.Match)
			}
		}

		if err := p.db.Create(&line).Error; err != nil {
			return fmt.Errorf("create line item: %w", err)
		}
	}

	return nil
}

func (p *Processor) findProductByDescription(description string) (*models.Product, error) {
	var product models.Product
	if err := p.db.Where("description = ?", description).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("lookup product: %w", err)
	}
	return &product, nil
}

func (p *Processor) setStatus(order *models.Order, status models.OrderStatus) {
	order.Status = status
	if err := p.db.Save(order).Error; err != nil {
		log.Printf("❌ Failed to persist status %s for order %d: %v", status, order.ID, err)
		return
	}
	if p.hub != nil {
		p.hub.BroadcastOrder(*order)
	}
}
