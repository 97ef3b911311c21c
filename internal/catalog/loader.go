package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/xelth-com/orderflowgo/internal/database"
	"github.com/xelth-com/orderflowgo/internal/models"
)

// batchSize keeps memory bounded when loading large catalogs
const batchSize = 1000

// Load reads the product catalog CSV at path into the products table and
// returns the number of rows loaded. Expected header columns: Type,
// Material, Size, Length, Coating, Thread Type, Description.
func Load(db *database.DB, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read catalog header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"Type", "Material", "Size", "Length", "Coating", "Thread Type", "Description"} {
		if _, ok := col[required]; !ok {
			return 0, fmt.Errorf("catalog is missing column %q", required)
		}
	}

	count := 0
	batch := make([]models.Product, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := db.Create(&batch).Error; err != nil {
			return fmt.Errorf("insert catalog batch: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("read catalog row: %w", err)
		}

		batch = append(batch, models.Product{
			Type:        row[col["Type"]],
			Material:    row[col["Material"]],
			Size:        row[col["Size"]],
			Length:      row[col["Length"]],
			Coating:     row[col["Coating"]],
			ThreadType:  row[col["Thread Type"]],
			Description: row[col["Description"]],
		})
		count++

		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return count, err
			}
			log.Printf("📦 Loaded %d products...", count)
		}
	}

	if err := flush(); err != nil {
		return count, err
	}

	log.Printf("✅ Product catalog loaded: %d products", count)
	return count, nil
}

// Verify returns the number of products currently in the catalog table.
// A zero count after a load indicates a broken catalog file.
func Verify(db *database.DB) (int64, error) {
	var n int64
	if err := db.Model(&models.Product{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// Reset drops and recreates all tables, then reloads the catalog. Used by
// the cleanup endpoint and the demo seeder.
func Reset(db *database.DB, path string) error {
	if err := db.Migrator().DropTable(&models.LineItem{}, &models.Order{}, &models.Product{}); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Order{}, &models.LineItem{}); err != nil {
		return fmt.Errorf("recreate tables: %w", err)
	}
	if _, err := Load(db, path); err != nil {
		return err
	}
	n, err := Verify(db)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("catalog verification failed: no products loaded from %s", path)
	}
	return nil
}
