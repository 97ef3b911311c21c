package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// ExtractedItem is one row the extraction API pulled out of a scanned PDF.
// The upstream API uses spreadsheet-style keys, and Amount arrives as either
// a number or a string depending on what OCR produced.
type ExtractedItem struct {
	RequestItem string      `json:"Request Item"`
	Amount      interface{} `json:"Amount"`
}

// Quantity parses the extracted amount, falling back to 1 when it is
// missing or unreadable.
func (it ExtractedItem) Quantity() int {
	switch v := it.Amount.(type) {
	case float64:
		if v >= 1 {
			return int(v)
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			return n
		}
	}
	return 1
}

// ExtractionClient calls the external PDF extraction API
type ExtractionClient struct {
	baseURL string
	client  *http.Client
}

// NewExtractionClient creates a client for the extraction API
func NewExtractionClient(baseURL string) *ExtractionClient {
	return &ExtractionClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Extract uploads the PDF at path and returns the extracted line rows.
func (c *ExtractionClient) Extract(ctx context.Context, path string) ([]ExtractedItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copy pdf: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extraction_api", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("extraction failed: status %d, body: %s", resp.StatusCode, string(msg))
	}

	var items []ExtractedItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode extraction response: %w", err)
	}
	return items, nil
}
