package handlers

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xelth-com/orderflowgo/internal/models"
)

// maxUploadSize bounds scanned order documents (32MB)
const maxUploadSize = 32 << 20

// uploadFile accepts a scanned sales-order PDF, creates its order record in
// `processing` state and hands the file to the background pipeline. An
// upload with a filename that already exists replaces the previous order.
func (r *Router) uploadFile(w http.ResponseWriter, req *http.Request) {
	req.Body = http.MaxBytesReader(w, req.Body, maxUploadSize)
	if err := req.ParseMultipartForm(maxUploadSize); err != nil {
		respondDetail(w, http.StatusBadRequest, "Invalid multipart payload")
		return
	}

	file, header, err := req.FormFile("file")
	if err != nil {
		respondDetail(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		log.Printf("⚠️  Rejected non-PDF upload: %s", filename)
		respondDetail(w, http.StatusBadRequest, "Only PDF files are allowed")
		return
	}

	if err := os.MkdirAll(r.uploadDir, 0o755); err != nil {
		respondDetail(w, http.StatusInternalServerError, "Failed to prepare upload directory")
		return
	}

	// Keep the original name; the extraction API keys on it
	path := filepath.Join(r.uploadDir, filename)
	dst, err := os.Create(path)
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "Failed to store file")
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(path)
		respondDetail(w, http.StatusInternalServerError, "Failed to store file")
		return
	}
	dst.Close()
	log.Printf("📥 Stored upload: %s", path)

	// Re-uploading the same document restarts its review from scratch
	var existing models.Order
	if err := r.db.Where("filename = ?", filename).First(&existing).Error; err == nil {
		r.db.Where("order_id = ?", existing.ID).Delete(&models.LineItem{})
		r.db.Delete(&existing)
		log.Printf("🗑️  Replaced existing order %d for %s", existing.ID, filename)
	}

	order := models.Order{Filename: filename, Status: models.OrderStatusProcessing}
	if err := r.db.Create(&order).Error; err != nil {
		log.Printf("❌ Failed to create order for %s: %v", filename, err)
		respondDetail(w, http.StatusInternalServerError, "Failed to create order")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := r.processor.Process(ctx, path, filename); err != nil {
			log.Printf("❌ Background processing failed for %s: %v", filename, err)
		}
	}()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":     order.ID,
		"status": order.Status,
	})
}
