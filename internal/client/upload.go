package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// UploadEvent is one element of the per-attempt progress sequence. Events
// with Done=false report transferred bytes; exactly one terminal event
// (Done=true) closes the sequence, carrying either the created order id or
// the failure.
type UploadEvent struct {
	Sent    int64
	Total   int64
	Done    bool
	OrderID int
	Err     error
}

// progressReader counts bytes as the multipart body is consumed by the
// transport
type progressReader struct {
	r      io.Reader
	sent   int64
	onRead func(sent int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.onRead(p.sent)
	}
	return n, err
}

// Upload sends the PDF at path as a multipart form and returns the event
// channel for this attempt. Each call is an independent attempt with its
// own channel, so a failed upload can simply be retried. The channel is
// closed after the terminal event.
func (c *Client) Upload(ctx context.Context, path string) <-chan UploadEvent {
	events := make(chan UploadEvent, 16)

	go func() {
		defer close(events)

		terminal := func(orderID int, err error) {
			events <- UploadEvent{Done: true, OrderID: orderID, Err: err}
		}

		if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
			terminal(0, fmt.Errorf("only PDF files are allowed: %s", filepath.Base(path)))
			return
		}

		f, err := os.Open(path)
		if err != nil {
			terminal(0, fmt.Errorf("open file: %w", err))
			return
		}
		defer f.Close()

		// Build the body up front so Total covers the real wire size and
		// net/http can set Content-Length.
		body := &strings.Builder{}
		mw := multipart.NewWriter(body)
		part, err := mw.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			terminal(0, fmt.Errorf("create form file: %w", err))
			return
		}
		if _, err := io.Copy(part, f); err != nil {
			terminal(0, fmt.Errorf("read file: %w", err))
			return
		}
		if err := mw.Close(); err != nil {
			terminal(0, fmt.Errorf("close multipart writer: %w", err))
			return
		}
		total := int64(body.Len())

		progress := func(sent int64) {
			// Progress is advisory; never block the transfer on a slow
			// consumer
			select {
			case events <- UploadEvent{Sent: sent, Total: total}:
			default:
			}
		}

		reader := &progressReader{r: strings.NewReader(body.String()), onRead: progress}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", reader)
		if err != nil {
			terminal(0, fmt.Errorf("create request: %w", err))
			return
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.ContentLength = total

		resp, err := c.http.Do(req)
		if err != nil {
			terminal(0, fmt.Errorf("do request: %w", err))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			terminal(0, decodeError(resp, "Failed to upload file"))
			return
		}

		var created struct {
			ID int `json:"id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			terminal(0, fmt.Errorf("decode response: %w", err))
			return
		}

		terminal(created.ID, nil)
	}()

	return events
}
