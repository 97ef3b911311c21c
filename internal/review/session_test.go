package review

import (
	"context"
	"sync"
	"testing"

	"github.com/xelth-com/orderflowgo/internal/client"
	"github.com/xelth-com/orderflowgo/internal/models"
)

// fakeOrdersAPI is an in-memory stand-in for the order management API
type fakeOrdersAPI struct {
	mu      sync.Mutex
	details models.OrderDetails

	getCalls    int
	updateCalls int

	updateItemErr   error
	updateStatusErr error
	exportErr       error
	exportFile      *client.ExportFile
}

func (f *fakeOrdersAPI) GetOrder(ctx context.Context, orderID int) (*models.OrderDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	d := f.details
	d.LineItems = append([]models.LineItem(nil), f.details.LineItems...)
	return &d, nil
}

func (f *fakeOrdersAPI) UpdateLineItem(ctx context.Context, orderID, itemID, productID int) (*models.LineItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateItemErr != nil {
		return nil, f.updateItemErr
	}
	for i := range f.details.LineItems {
		if f.details.LineItems[i].ID == itemID {
			pid := productID
			f.details.LineItems[i].MatchedProductID = &pid
			item := f.details.LineItems[i]
			return &item, nil
		}
	}
	return nil, &client.APIError{Status: 404, Detail: "Line item not found"}
}

func (f *fakeOrdersAPI) UpdateOrderStatus(ctx context.Context, orderID int, status models.OrderStatus) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateStatusErr != nil {
		return nil, f.updateStatusErr
	}
	f.details.Order.Status = status
	order := f.details.Order
	return &order, nil
}

func (f *fakeOrdersAPI) Export(ctx context.Context, orderID int) (*client.ExportFile, error) {
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return f.exportFile, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recordingNotifier) fn() Notifier {
	return func(n Notification) {
		r.mu.Lock()
		r.notes = append(r.notes, n)
		r.mu.Unlock()
	}
}

func (r *recordingNotifier) last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return Notification{}, false
	}
	return r.notes[len(r.notes)-1], true
}

type memorySaver struct {
	filename string
	data     []byte
}

func (m *memorySaver) Save(filename string, data []byte) error {
	m.filename = filename
	m.data = data
	return nil
}

func newFakeAPI(status models.OrderStatus) *fakeOrdersAPI {
	return &fakeOrdersAPI{
		details: models.OrderDetails{
			Order: models.Order{ID: 42, Filename: "order_42.pdf", Status: status},
			LineItems: []models.LineItem{
				{ID: 1, OrderID: 42, ExtractedText: "Hex Bolt M8", ConfidenceScore: 85},
				{ID: 2, OrderID: 42, ExtractedText: "Lock Washer 10mm", ConfidenceScore: 42},
			},
		},
	}
}

func TestSessionLoad(t *testing.T) {
	api := newFakeAPI(models.OrderStatusNeedsReview)
	session := NewSession(api, nil, nil)

	if err := session.Load(context.Background(), 42); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	snap := session.Snapshot()
	if snap.Details == nil || snap.Details.Order.ID != 42 {
		t.Fatalf("Expected order 42 loaded, got %+v", snap.Details)
	}
	if len(snap.Details.LineItems) != 2 {
		t.Errorf("Expected 2 line items, got %d", len(snap.Details.LineItems))
	}
	if snap.Loading || snap.Err != "" {
		t.Errorf("Clean load should clear loading and error, got %+v", snap)
	}
}

func TestSelectMatchReloadsFromServer(t *testing.T) {
	api := newFakeAPI(models.OrderStatusNeedsReview)
	notes := &recordingNotifier{}
	session := NewSession(api, notes.fn(), nil)
	session.Load(context.Background(), 42)

	if err := session.SelectMatch(context.Background(), 2, 777); err != nil {
		t.Fatalf("SelectMatch failed: %v", err)
	}

	snap := session.Snapshot()
	item := snap.Details.LineItems[1]
	if item.MatchedProductID == nil || *item.MatchedProductID != 777 {
		t.Errorf("Expected matched_product_id 777 after reload, got %+v", item.MatchedProductID)
	}

	// The display state came from a reload, not a local patch
	if api.getCalls != 2 {
		t.Errorf("Expected a full reload after the match (2 gets), got %d", api.getCalls)
	}

	if n, ok := notes.last(); !ok || n.Kind != NotifySuccess {
		t.Errorf("Expected a success notification, got %+v", n)
	}
}

func TestSelectMatchIdempotent(t *testing.T) {
	api := newFakeAPI(models.OrderStatusNeedsReview)
	session := NewSession(api, nil, nil)
	session.Load(context.Background(), 42)

	if err := session.SelectMatch(context.Background(), 1, 500); err != nil {
		t.Fatalf("First SelectMatch failed: %v", err)
	}
	first := session.Snapshot()

	if err := session.SelectMatch(context.Background(), 1, 500); err != nil {
		t.Fatalf("Second SelectMatch failed: %v", err)
	}
	second := session.Snapshot()

	if *first.Details.LineItems[0].MatchedProductID != *second.Details.LineItems[0].MatchedProductID {
		t.Error("Selecting the same product twice must produce the same details")
	}
	if second.Details.Order != first.Details.Order {
		t.Error("Order sub-object must be unchanged by a repeated match")
	}
}

func TestSelectMatchUnknownLineItem(t *testing.T) {
	api := newFakeAPI(models.OrderStatusNeedsReview)
	session := NewSession(api, nil, nil)
	session.Load(context.Background(), 42)

	if err := session.SelectMatch(context.Background(), 99, 500); err != ErrUnknownLineItem {
		t.Fatalf("Expected ErrUnknownLineItem, got %v", err)
	}
	if api.updateCalls != 0 {
		t.Error("Precondition failure must not reach the API")
	}
}

func TestSelectMatchFailureLeavesStateUntouched(t *testing.T) {
	api := newFakeAPI(models.OrderStatusNeedsReview)
	api.updateItemErr = &client.APIError{Status: 500, Detail: "Failed to update line item"}
	notes := &recordingNotifier{}
	session := NewSession(api, notes.fn(), nil)
	session.Load(context.Background(), 42)
	before := session.Snapshot()

	if err := session.SelectMatch(context.Background(), 1, 500); err == nil {
		t.Fatal("Expected SelectMatch to fail")
	}

	after := session.Snapshot()
	if after.Details.LineItems[0].MatchedProductID != nil {
		t.Error("Failed match must not change local state")
	}
	if before.Details.Order != after.Details.Order {
		t.Error("Order must be untouched by the failed match")
	}
	if n, ok := notes.last(); !ok || n.Kind != NotifyError || n.Message != "Failed to update line item" {
		t.Errorf("Expected the error notification with the failure message, got %+v", n)
	}
}

func TestCompleteReviewGate(t *testing.T) {
	for _, status := range []models.OrderStatus{
		models.OrderStatusProcessing,
		models.OrderStatusCompleted,
		models.OrderStatusError,
	} {
		api := newFakeAPI(status)
		session := NewSession(api, nil, nil)
		session.Load(context.Background(), 42)

		if _, err := session.CompleteReview(context.Background()); err != ErrReviewNotOpen {
			t.Errorf("Status %s: expected ErrReviewNotOpen, got %v", status, err)
		}
	}
}

func TestCompleteReviewSubstitutesOrderWithoutReload(t *testing.T) {
	api := newFakeAPI(models.OrderStatusNeedsReview)
	notes := &recordingNotifier{}
	session := NewSession(api, notes.fn(), nil)
	session.Load(context.Background(), 42)

	order, err := session.CompleteReview(context.Background())
	if err != nil {
		t.Fatalf("CompleteReview failed: %v", err)
	}
	if order.Status != models.OrderStatusCompleted {
		t.Errorf("Expected completed, got %s", order.Status)
	}

	snap := session.Snapshot()
	if snap.Details.Order.Status != models.OrderStatusCompleted {
		t.Error("Snapshot order must be substituted from the response")
	}
	if api.getCalls != 1 {
		t.Errorf("Status change must not trigger a full reload, got %d gets", api.getCalls)
	}
	if n, ok := notes.last(); !ok || n.Kind != NotifySuccess {
		t.Errorf("Expected a success notification, got %+v", n)
	}
}

func TestCompleteReviewFailureSurfacesDetailVerbatim(t *testing.T) {
	api := newFakeAPI(models.OrderStatusNeedsReview)
	api.updateStatusErr = &client.APIError{
		Status: 400,
		Detail: "Cannot change order status from needs_review to completed",
	}
	notes := &recordingNotifier{}
	session := NewSession(api, notes.fn(), nil)
	session.Load(context.Background(), 42)

	if _, err := session.CompleteReview(context.Background()); err == nil {
		t.Fatal("Expected CompleteReview to fail")
	}

	if session.Snapshot().Details.Order.Status != models.OrderStatusNeedsReview {
		t.Error("Failed status update must leave the displayed status unchanged")
	}
	if n, _ := notes.last(); n.Message != "Cannot change order status from needs_review to completed" {
		t.Errorf("Server detail must be surfaced verbatim, got %q", n.Message)
	}
}

func TestExportSavesAndLeavesSnapshotAlone(t *testing.T) {
	api := newFakeAPI(models.OrderStatusCompleted)
	api.exportFile = &client.ExportFile{Filename: "order_42.csv", Data: []byte("a,b\n")}
	saver := &memorySaver{}
	session := NewSession(api, nil, saver)
	session.Load(context.Background(), 42)
	before := session.Snapshot()

	name, err := session.Export(context.Background())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if name != "order_42.csv" || saver.filename != "order_42.csv" {
		t.Errorf("Expected the server filename, got %q / %q", name, saver.filename)
	}
	if string(saver.data) != "a,b\n" {
		t.Errorf("Saver received wrong data: %q", saver.data)
	}

	after := session.Snapshot()
	if before.Details.Order != after.Details.Order {
		t.Error("Export must not touch the snapshot")
	}
}

func TestExportFailureDoesNotDisturbOrder(t *testing.T) {
	api := newFakeAPI(models.OrderStatusCompleted)
	api.exportErr = &client.APIError{Status: 500, Detail: "Failed to export order"}
	notes := &recordingNotifier{}
	session := NewSession(api, notes.fn(), &memorySaver{})
	session.Load(context.Background(), 42)

	if _, err := session.Export(context.Background()); err == nil {
		t.Fatal("Expected Export to fail")
	}
	snap := session.Snapshot()
	if snap.Err != "" || snap.Details == nil {
		t.Error("Export failure must not disturb the displayed order")
	}
	if n, _ := notes.last(); n.Kind != NotifyError {
		t.Errorf("Expected an error notification, got %+v", n)
	}
}

func TestObserveOrderAppliesFeedRecord(t *testing.T) {
	api := newFakeAPI(models.OrderStatusProcessing)
	session := NewSession(api, nil, nil)
	session.Load(context.Background(), 42)

	session.ObserveOrder(models.Order{ID: 42, Filename: "order_42.pdf", Status: models.OrderStatusNeedsReview})
	if session.Snapshot().Details.Order.Status != models.OrderStatusNeedsReview {
		t.Error("Observed record for the loaded order must be applied")
	}

	// Records for other orders are ignored
	session.ObserveOrder(models.Order{ID: 7, Status: models.OrderStatusError})
	if session.Snapshot().Details.Order.ID != 42 {
		t.Error("Foreign order record must not replace the loaded order")
	}
}
