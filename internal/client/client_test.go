package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xelth-com/orderflowgo/internal/models"
)

func TestParseExportFilename(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{`attachment; filename=order_42.csv`, "order_42.csv"},
		{`attachment; filename="order_42.csv"`, "order_42.csv"},
		{``, DefaultExportFilename},
		{`attachment`, DefaultExportFilename},
		{`attachment; filename=`, DefaultExportFilename},
	}

	for _, c := range cases {
		if got := ParseExportFilename(c.header); got != c.want {
			t.Errorf("ParseExportFilename(%q) = %q, want %q", c.header, got, c.want)
		}
	}
}

func TestExportUsesHeaderFilename(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/42/export" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Disposition", `attachment; filename=order_42.csv`)
		w.Write([]byte("Line Item ID,Extracted Text\n"))
	}))
	defer ts.Close()

	file, err := New(ts.URL).Export(context.Background(), 42)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if file.Filename != "order_42.csv" {
		t.Errorf("Expected order_42.csv, got %q", file.Filename)
	}
	if len(file.Data) == 0 {
		t.Error("Expected export bytes")
	}
}

func TestExportDefaultsFilenameWhenHeaderMissing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("csv"))
	}))
	defer ts.Close()

	file, err := New(ts.URL).Export(context.Background(), 1)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if file.Filename != "order.csv" {
		t.Errorf("Expected order.csv fallback, got %q", file.Filename)
	}
}

func TestUpdateOrderStatusDecodesDetail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"detail": "Cannot change order status from completed to needs_review",
		})
	}))
	defer ts.Close()

	_, err := New(ts.URL).UpdateOrderStatus(context.Background(), 1, models.OrderStatusNeedsReview)
	if err == nil {
		t.Fatal("Expected an error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %T", err)
	}
	if apiErr.Detail != "Cannot change order status from completed to needs_review" {
		t.Errorf("Detail must pass through verbatim, got %q", apiErr.Detail)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", apiErr.Status)
	}
}

func TestUpdateOrderStatusFallbackMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway exploded", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := New(ts.URL).UpdateOrderStatus(context.Background(), 1, models.OrderStatusCompleted)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.Detail != "Failed to update order status" {
		t.Errorf("Expected the generic fallback, got %q", apiErr.Detail)
	}
}

func TestUpdateOrderStatusSendsBody(t *testing.T) {
	var got map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(models.Order{ID: 1, Status: models.OrderStatusCompleted})
	}))
	defer ts.Close()

	order, err := New(ts.URL).UpdateOrderStatus(context.Background(), 1, models.OrderStatusCompleted)
	if err != nil {
		t.Fatalf("UpdateOrderStatus failed: %v", err)
	}
	if got["status"] != "completed" {
		t.Errorf("Expected status body, got %v", got)
	}
	if order.Status != models.OrderStatusCompleted {
		t.Errorf("Expected the canonical updated order, got %+v", order)
	}
}

func TestGetOrderDecodesDetails(t *testing.T) {
	pid := 7
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/42" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(models.OrderDetails{
			Order: models.Order{ID: 42, Filename: "a.pdf", Status: models.OrderStatusNeedsReview},
			LineItems: []models.LineItem{
				{ID: 1, OrderID: 42, ExtractedText: "Hex Bolt", MatchedProductID: &pid, ConfidenceScore: 91.5},
			},
		})
	}))
	defer ts.Close()

	details, err := New(ts.URL).GetOrder(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if details.Order.Status != models.OrderStatusNeedsReview {
		t.Errorf("Unexpected order: %+v", details.Order)
	}
	if len(details.LineItems) != 1 || *details.LineItems[0].MatchedProductID != 7 {
		t.Errorf("Unexpected line items: %+v", details.LineItems)
	}
}

func TestSearchProductsEncodesQuery(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("q"); q != "hex bolt m8" {
			t.Errorf("Query not decoded as expected: %q", q)
		}
		json.NewEncoder(w).Encode([]models.Product{{ID: 1, Description: "Hex Bolt M8"}})
	}))
	defer ts.Close()

	products, err := New(ts.URL).SearchProducts(context.Background(), "hex bolt m8")
	if err != nil {
		t.Fatalf("SearchProducts failed: %v", err)
	}
	if len(products) != 1 || products[0].ID != 1 {
		t.Errorf("Unexpected products: %+v", products)
	}
}

func TestUpdateLineItemSendsProductID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/orders/42/line-items/2" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if pid := r.URL.Query().Get("product_id"); pid != "777" {
			t.Errorf("Expected product_id=777, got %q", pid)
		}
		pid := 777
		json.NewEncoder(w).Encode(models.LineItem{ID: 2, OrderID: 42, MatchedProductID: &pid})
	}))
	defer ts.Close()

	item, err := New(ts.URL).UpdateLineItem(context.Background(), 42, 2, 777)
	if err != nil {
		t.Fatalf("UpdateLineItem failed: %v", err)
	}
	if item.MatchedProductID == nil || *item.MatchedProductID != 777 {
		t.Errorf("Unexpected confirmation payload: %+v", item)
	}
}
