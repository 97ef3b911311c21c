// Package client is the typed HTTP client for the order management API.
// Every review-engine component talks to the API through it; the base URL
// is injected at construction, never read from ambient state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/xelth-com/orderflowgo/internal/models"
)

// DefaultExportFilename is used when the server omits or mangles the
// Content-Disposition header.
const DefaultExportFilename = "order.csv"

var filenamePattern = regexp.MustCompile(`filename=(.+)`)

// APIError is a non-success response decoded into the server's detail
// message. Detail is always populated; a missing body field falls back to
// a generic message so the operator never sees an empty error.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return e.Detail
}

// ExportFile is a downloaded export artifact. The byte schema is owned by
// the API; the client only carries it to the file saver.
type ExportFile struct {
	Filename string
	Data     []byte
}

// Client talks to one order management API instance
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the API at baseURL
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ListOrders returns all order summary records
func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.getJSON(ctx, "/orders", &orders, "Failed to fetch orders"); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder returns one order with its line items
func (c *Client) GetOrder(ctx context.Context, orderID int) (*models.OrderDetails, error) {
	var details models.OrderDetails
	path := fmt.Sprintf("/orders/%d", orderID)
	if err := c.getJSON(ctx, path, &details, "Failed to fetch order details"); err != nil {
		return nil, err
	}
	return &details, nil
}

// UpdateLineItem sets the matched product for a line item. The returned
// line item is a confirmation payload; callers re-derive display state
// from a full reload, not from it.
func (c *Client) UpdateLineItem(ctx context.Context, orderID, itemID, productID int) (*models.LineItem, error) {
	path := fmt.Sprintf("/orders/%d/line-items/%d?product_id=%d", orderID, itemID, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp, "Failed to update line item")
	}

	var item models.LineItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &item, nil
}

// UpdateOrderStatus requests a status transition and returns the canonical
// updated order the server substituted.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int, status models.OrderStatus) (*models.Order, error) {
	payload, err := json.Marshal(map[string]models.OrderStatus{"status": status})
	if err != nil {
		return nil, fmt.Errorf("marshal status: %w", err)
	}

	path := fmt.Sprintf("/orders/%d/status", orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp, "Failed to update order status")
	}

	var order models.Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &order, nil
}

// Export downloads the order's CSV export. The filename comes from the
// Content-Disposition header, defaulting when absent or malformed.
func (c *Client) Export(ctx context.Context, orderID int) (*ExportFile, error) {
	path := fmt.Sprintf("/orders/%d/export", orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp, "Failed to export order")
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read export body: %w", err)
	}

	return &ExportFile{
		Filename: ParseExportFilename(resp.Header.Get("Content-Disposition")),
		Data:     data,
	}, nil
}

// ParseExportFilename extracts the attachment filename from a
// Content-Disposition header value.
func ParseExportFilename(disposition string) string {
	m := filenamePattern.FindStringSubmatch(disposition)
	if m == nil {
		return DefaultExportFilename
	}
	name := strings.Trim(strings.TrimSpace(m[1]), `"`)
	if name == "" {
		return DefaultExportFilename
	}
	return name
}

// SearchProducts runs a free-text catalog search
func (c *Client) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	path := "/products/search?q=" + url.QueryEscape(query)
	var products []models.Product
	if err := c.getJSON(ctx, path, &products, "Failed to search products"); err != nil {
		return nil, err
	}
	return products, nil
}

// getJSON issues a GET and decodes a JSON body into out
func (c *Client) getJSON(ctx context.Context, path string, out interface{}, fallback string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp, fallback)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError turns a non-success response into an APIError, preferring
// the server's detail field and falling back to a generic message.
func decodeError(resp *http.Response, fallback string) error {
	apiErr := &APIError{Status: resp.StatusCode, Detail: fallback}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return apiErr
	}

	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		apiErr.Detail = payload.Detail
	}
	return apiErr
}

// BaseURL returns the configured API endpoint
func (c *Client) BaseURL() string {
	return c.baseURL
}
