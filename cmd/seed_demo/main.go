package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/xelth-com/orderflowgo/internal/catalog"
	"github.com/xelth-com/orderflowgo/internal/config"
	"github.com/xelth-com/orderflowgo/internal/database"
	"github.com/xelth-com/orderflowgo/internal/models"
	"github.com/xelth-com/orderflowgo/internal/services/sampledoc"
)

// demoLines are plausible fastener requests matching the demo catalog
var demoLines = []sampledoc.OrderLine{
	{Description: "Hex Bolt Stainless Steel M8 40mm", Quantity: 200},
	{Description: "Wood Screw Brass 4mm 25mm", Quantity: 500},
	{Description: "Lock Washer Zinc Plated 10mm", Quantity: 1000},
	{Description: "Machine Screw Phillips M5 16mm", Quantity: 150},
}

func main() {
	fmt.Println("🌱 OrderFlow Demo Data Seeder")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connected to database")

	fmt.Println("🔨 Running database migrations...")
	if err := db.AutoMigrate(&models.Product{}, &models.Order{}, &models.LineItem{}); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	fmt.Println("✅ Migrations complete")

	// Load the catalog if the table is empty
	n, err := catalog.Verify(db)
	if err != nil {
		log.Fatalf("❌ Catalog check failed: %v", err)
	}
	if n == 0 {
		if _, err := catalog.Load(db, cfg.Catalog); err != nil {
			log.Fatalf("❌ Catalog load failed: %v", err)
		}
	} else {
		fmt.Printf("📦 Catalog already loaded (%d products), skipping\n", n)
	}

	// Generate sample scanned-order PDFs ready for /upload
	sampleDir := "samples"
	if err := os.MkdirAll(sampleDir, 0o755); err != nil {
		log.Fatalf("❌ Failed to create %s: %v", sampleDir, err)
	}

	for i := 1; i <= 3; i++ {
		name := fmt.Sprintf("demo_order_%d.pdf", i)
		data, err := sampledoc.Generate(sampledoc.OrderDoc{
			Filename: name,
			Customer: fmt.Sprintf("Demo Customer %d", i),
			Lines:    demoLines,
		})
		if err != nil {
			log.Fatalf("❌ Failed to generate %s: %v", name, err)
		}
		path := filepath.Join(sampleDir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			log.Fatalf("❌ Failed to write %s: %v", path, err)
		}
		fmt.Printf("📄 Wrote %s\n", path)
	}

	// One pre-reviewed order so the list view has something to show even
	// before the first upload
	var existing models.Order
	if err := db.Where("filename = ?", "seeded_order.pdf").First(&existing).Error; err != nil {
		order := models.Order{Filename: "seeded_order.pdf", Status: models.OrderStatusNeedsReview}
		if err := db.Create(&order).Error; err != nil {
			log.Fatalf("❌ Failed to seed order: %v", err)
		}

		var products []models.Product
		db.Limit(3).Find(&products)
		scores := []float64{92.5, 61.0, 34.2}
		for i, p := range products {
			pid := p.ID
			line := models.LineItem{
				OrderID:          order.ID,
				ExtractedText:    p.Description,
				MatchedProductID: &pid,
				ConfidenceScore:  scores[i%len(scores)],
				Quantity:         10 * (i + 1),
			}
			if err := db.Create(&line).Error; err != nil {
				log.Fatalf("❌ Failed to seed line item: %v", err)
			}
		}
		fmt.Printf("✅ Seeded order %d with %d line items\n", order.ID, len(products))
	} else {
		fmt.Println("📦 Demo order already present, skipping")
	}

	fmt.Println("🎉 Done. Start cmd/api and upload a sample from ./samples")
}
