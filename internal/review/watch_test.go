package review

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/xelth-com/orderflowgo/internal/models"
	"github.com/xelth-com/orderflowgo/internal/notify"
)

func TestWatcherReceivesStatusEvents(t *testing.T) {
	hub := notify.NewHub()
	go hub.Run()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws" {
			http.NotFound(w, r)
			return
		}
		notify.ServeWS(hub, w, r)
	}))
	defer ts.Close()

	var mu sync.Mutex
	var seen []models.Order
	watcher := NewWatcher(ts.URL, func(order models.Order) {
		mu.Lock()
		seen = append(seen, order)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	// The subscriber connects asynchronously; keep broadcasting until the
	// event comes through
	want := models.Order{ID: 9, Filename: "scan.pdf", Status: models.OrderStatusNeedsReview}
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		hub.BroadcastOrder(want)
		time.Sleep(50 * time.Millisecond)

		mu.Lock()
		n := len(seen)
		mu.Unlock()
		if n > 0 {
			break
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) == 0 {
		t.Fatal("Watcher received no status events")
	}
	got := seen[0]
	if got.ID != 9 || got.Status != models.OrderStatusNeedsReview {
		t.Errorf("Unexpected event order: %+v", got)
	}
}

func TestWatcherFeedsOrderList(t *testing.T) {
	list := NewOrderList(&fakeLister{orders: []models.Order{
		{ID: 9, Status: models.OrderStatusProcessing},
	}})
	list.Fetch(context.Background())

	// The watcher callback is wired straight into the list holder
	apply := func(order models.Order) { list.Apply(order) }
	apply(models.Order{ID: 9, Status: models.OrderStatusNeedsReview})

	snap := list.Snapshot()
	if snap.Orders[0].Status != models.OrderStatusNeedsReview {
		t.Errorf("Feed event must substitute the cached record, got %+v", snap.Orders[0])
	}
}
