package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeTempPDF(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	data := make([]byte, size)
	copy(data, "%PDF-1.4")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write temp pdf: %v", err)
	}
	return path
}

func TestUploadEmitsProgressAndTerminalEvent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("multipart parse failed: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing file field: %v", err)
		}
		defer file.Close()
		if header.Filename != "scan.pdf" {
			t.Errorf("Expected scan.pdf, got %q", header.Filename)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"id": 11, "status": "processing"})
	}))
	defer ts.Close()

	path := writeTempPDF(t, "scan.pdf", 64*1024)

	var progress, terminal int
	var last UploadEvent
	for event := range New(ts.URL).Upload(context.Background(), path) {
		if event.Done {
			terminal++
			last = event
		} else {
			progress++
			if event.Total <= 0 || event.Sent > event.Total {
				t.Errorf("Inconsistent progress event: %+v", event)
			}
		}
	}

	if terminal != 1 {
		t.Fatalf("Expected exactly one terminal event, got %d", terminal)
	}
	if last.Err != nil {
		t.Fatalf("Upload failed: %v", last.Err)
	}
	if last.OrderID != 11 {
		t.Errorf("Expected created order id 11, got %d", last.OrderID)
	}
	if progress == 0 {
		t.Error("Expected at least one progress event")
	}
}

func TestUploadRejectsNonPDFLocally(t *testing.T) {
	requests := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer ts.Close()

	path := writeTempPDF(t, "scan.txt", 128)

	var last UploadEvent
	for event := range New(ts.URL).Upload(context.Background(), path) {
		last = event
	}

	if last.Err == nil {
		t.Fatal("Expected a terminal failure for a non-PDF file")
	}
	if requests != 0 {
		t.Error("A rejected file must not reach the server")
	}
}

func TestUploadSurfacesServerDetail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Only PDF files are allowed"})
	}))
	defer ts.Close()

	path := writeTempPDF(t, "scan.pdf", 128)

	var last UploadEvent
	for event := range New(ts.URL).Upload(context.Background(), path) {
		last = event
	}

	if last.Err == nil || last.Err.Error() != "Only PDF files are allowed" {
		t.Fatalf("Expected the server detail message, got %v", last.Err)
	}
}

// A second attempt after a failure gets a fresh event sequence
func TestUploadIsRestartablePerAttempt(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"id": 3})
	}))
	defer ts.Close()

	path := writeTempPDF(t, "scan.pdf", 256)
	c := New(ts.URL)

	var first UploadEvent
	for event := range c.Upload(context.Background(), path) {
		first = event
	}
	if first.Err == nil {
		t.Fatal("First attempt should fail")
	}

	var second UploadEvent
	for event := range c.Upload(context.Background(), path) {
		second = event
	}
	if second.Err != nil {
		t.Fatalf("Retry should succeed, got %v", second.Err)
	}
	if second.OrderID != 3 {
		t.Errorf("Expected order 3 from the retry, got %d", second.OrderID)
	}
}
