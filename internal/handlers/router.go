package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"
	"github.com/xelth-com/orderflowgo/internal/catalog"
	"github.com/xelth-com/orderflowgo/internal/database"
	"github.com/xelth-com/orderflowgo/internal/notify"
	"github.com/xelth-com/orderflowgo/internal/services/pipeline"
)

// Router wraps the mux router with the server's collaborators
type Router struct {
	*mux.Router
	db          *database.DB
	hub         *notify.Hub
	processor   *pipeline.Processor
	uploadDir   string
	catalogPath string
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(db *database.DB, hub *notify.Hub, processor *pipeline.Processor, uploadDir, catalogPath string) *Router {
	r := &Router{
		Router:      mux.NewRouter(),
		db:          db,
		hub:         hub,
		processor:   processor,
		uploadDir:   uploadDir,
		catalogPath: catalogPath,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Order routes
	r.HandleFunc("/orders", r.listOrders).Methods("GET")
	r.HandleFunc("/orders/{id}", r.getOrder).Methods("GET")
	r.HandleFunc("/orders/{id}/line-items/{itemId}", r.updateLineItem).Methods("POST")
	r.HandleFunc("/orders/{id}/status", r.updateOrderStatus).Methods("POST")
	r.HandleFunc("/orders/{id}/export", r.exportOrder).Methods("GET")

	// Catalog search
	r.HandleFunc("/products/search", r.searchProducts).Methods("GET")

	// Upload + maintenance
	r.HandleFunc("/upload", r.uploadFile).Methods("POST")
	r.HandleFunc("/cleanup", r.cleanup).Methods("POST")

	// Status event feed for open review views
	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		notify.ServeWS(r.hub, w, req)
	}).Methods("GET")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// cleanup drops all data, reloads the product catalog and clears the
// uploads directory. Dev/demo convenience, mirrors the seeder.
func (r *Router) cleanup(w http.ResponseWriter, req *http.Request) {
	log.Println("🧹 Starting system cleanup...")

	if err := catalog.Reset(r.db, r.catalogPath); err != nil {
		log.Printf("❌ Cleanup failed: %v", err)
		respondDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	entries, err := os.ReadDir(r.uploadDir)
	if err == nil {
		for _, e := range entries {
			if !e.IsDir() {
				os.Remove(filepath.Join(r.uploadDir, e.Name()))
			}
		}
	}

	log.Println("✅ Cleanup finished, catalog reloaded")
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "System cleaned up and product catalog reloaded successfully",
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondDetail sends an error response. The body shape {"detail": ...}
// is what review clients decode for user-visible messages.
func respondDetail(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"detail": message,
	})
}
