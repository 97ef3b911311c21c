package review

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/xelth-com/orderflowgo/internal/models"
	"github.com/xelth-com/orderflowgo/internal/notify"
)

// reconnectDelay paces redial attempts when the feed drops
const reconnectDelay = 3 * time.Second

// Watcher subscribes to the server's order status feed and forwards
// observed order records to the engine. Pipeline-driven transitions
// (processing -> needs_review | error) reach open views through it.
type Watcher struct {
	url     string
	onOrder func(models.Order)
}

// NewWatcher creates a watcher for the API at baseURL. onOrder receives
// every order record pushed by the server, in arrival order.
func NewWatcher(baseURL string, onOrder func(models.Order)) *Watcher {
	wsURL := strings.TrimRight(baseURL, "/") + "/ws"
	if strings.HasPrefix(wsURL, "http") {
		wsURL = "ws" + strings.TrimPrefix(wsURL, "http")
	}
	return &Watcher{url: wsURL, onOrder: onOrder}
}

// Run dials the feed and forwards events until ctx is cancelled,
// reconnecting after drops.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		if err := w.connect(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("⚠️  Status feed disconnected: %v", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (w *Watcher) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Close the read loop when ctx ends
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var event notify.Event
		if err := json.Unmarshal(message, &event); err != nil {
			log.Printf("⚠️  Ignoring malformed feed event: %v", err)
			continue
		}
		if event.Type != notify.EventOrderStatus {
			continue
		}
		if w.onOrder != nil {
			w.onOrder(event.Order)
		}
	}
}
