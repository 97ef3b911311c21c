package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xelth-com/orderflowgo/internal/catalog"
	"github.com/xelth-com/orderflowgo/internal/config"
	"github.com/xelth-com/orderflowgo/internal/database"
	"github.com/xelth-com/orderflowgo/internal/handlers"
	"github.com/xelth-com/orderflowgo/internal/models"
	"github.com/xelth-com/orderflowgo/internal/notify"
	"github.com/xelth-com/orderflowgo/internal/services/pipeline"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (detects embedded vs external automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// 3. Synchronize schema
	log.Println("🚀 Synchronizing database schema...")
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Order{},
		&models.LineItem{},
	); err != nil {
		log.Printf("⚠️ Migration warning: %v", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// 4. Load the product catalog on first run
	if n, err := catalog.Verify(db); err != nil {
		log.Printf("⚠️ Catalog check failed: %v", err)
	} else if n == 0 {
		if _, err := catalog.Load(db, cfg.Catalog); err != nil {
			log.Printf("⚠️ Catalog load failed (search will be empty): %v", err)
		}
	} else {
		log.Printf("📦 Catalog ready: %d products", n)
	}

	// 5. Start the status event hub
	hub := notify.NewHub()
	go hub.Run()

	// 6. Wire the upstream pipeline and HTTP router
	processor := pipeline.NewProcessor(db, hub, cfg.Upstream)
	router := handlers.NewRouter(db, hub, processor, cfg.UploadDir, cfg.Catalog)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// 7. Serve with graceful shutdown
	go func() {
		log.Printf("🌍 Order API listening on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️ Shutdown error: %v", err)
	}
	if err := db.Close(); err != nil {
		log.Printf("⚠️ Database close error: %v", err)
	}
	log.Println("👋 Bye")
}
