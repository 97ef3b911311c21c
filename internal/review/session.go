package review

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/xelth-com/orderflowgo/internal/client"
	"github.com/xelth-com/orderflowgo/internal/models"
)

// ErrNoOrder is returned by operations that need a loaded order
var ErrNoOrder = errors.New("no order loaded")

// ErrUnknownLineItem is returned when a match selection targets a line item
// that is not part of the loaded order
var ErrUnknownLineItem = errors.New("line item does not belong to the loaded order")

// ErrReviewNotOpen is returned when complete-review is invoked for an order
// whose status does not offer the action
var ErrReviewNotOpen = errors.New("order is not awaiting review")

// OrdersAPI is the remote surface the session depends on
type OrdersAPI interface {
	GetOrder(ctx context.Context, orderID int) (*models.OrderDetails, error)
	UpdateLineItem(ctx context.Context, orderID, itemID, productID int) (*models.LineItem, error)
	UpdateOrderStatus(ctx context.Context, orderID int, status models.OrderStatus) (*models.Order, error)
	Export(ctx context.Context, orderID int) (*client.ExportFile, error)
}

// Snapshot is the session's published state: the held OrderDetails plus
// load progress. Details is replaced wholesale after every successful
// mutation, never patched field by field.
type Snapshot struct {
	Details *models.OrderDetails
	Loading bool
	Err     string
}

// Session owns the canonical in-memory copy of one open order. At most one
// order id is current per session; a new Load replaces the previous one.
// Mutations are never applied optimistically: local state only ever derives
// from a server response.
type Session struct {
	api    OrdersAPI
	notify Notifier
	saver  FileSaver

	mu      sync.Mutex
	orderID int
	loaded  bool
	snap    Snapshot
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewSession creates a session. notify and saver may be nil when the caller
// does not surface toasts or save exports.
func NewSession(api OrdersAPI, notify Notifier, saver FileSaver) *Session {
	return &Session{
		api:    api,
		notify: notify,
		saver:  saver,
		subs:   make(map[int]func(Snapshot)),
	}
}

// Load fetches the order and makes it current. A failed initial load leaves
// Err set in the snapshot; the view keeps showing the error panel until a
// retry succeeds.
func (s *Session) Load(ctx context.Context, orderID int) error {
	s.mu.Lock()
	s.orderID = orderID
	s.loaded = false
	s.snap = Snapshot{Loading: true}
	s.publishLocked()
	s.mu.Unlock()

	details, err := s.api.GetOrder(ctx, orderID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.orderID != orderID {
		// A newer Load took over this session
		return nil
	}
	s.snap.Loading = false
	if err != nil {
		s.snap.Err = err.Error()
		s.publishLocked()
		return err
	}
	s.loaded = true
	s.snap.Details = details
	s.snap.Err = ""
	s.publishLocked()
	return nil
}

// Refresh re-issues Load for the currently held order id
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return ErrNoOrder
	}
	orderID := s.orderID
	s.mu.Unlock()
	return s.Load(ctx, orderID)
}

// SelectMatch commits the operator's product choice for a line item, then
// replaces the whole snapshot from a fresh load — the confirmation payload
// is never patched into local state. Selecting the same product twice is
// harmless. The calling dialog owns its own lifecycle; the session only
// signals the outcome.
func (s *Session) SelectMatch(ctx context.Context, itemID, productID int) error {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return ErrNoOrder
	}
	orderID := s.orderID
	found := false
	for _, item := range s.snap.Details.LineItems {
		if item.ID == itemID {
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return ErrUnknownLineItem
	}

	if _, err := s.api.UpdateLineItem(ctx, orderID, itemID, productID); err != nil {
		s.notify.error(err.Error())
		return err
	}

	if err := s.Refresh(ctx); err != nil {
		// The match is committed remotely; only the redisplay failed
		s.notify.error(fmt.Sprintf("Match saved but reload failed: %v", err))
		return err
	}

	s.notify.success("Product match updated successfully!")
	return nil
}

// CompleteReview drives the one client-initiated transition,
// needs_review -> completed. On success the server's returned order is
// substituted for the cached copy directly; the line items are untouched by
// a status change so no full reload is needed. On failure the snapshot is
// left exactly as it was and the server's detail message is surfaced
// verbatim.
func (s *Session) CompleteReview(ctx context.Context) (*models.Order, error) {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return nil, ErrNoOrder
	}
	orderID := s.orderID
	if !CanCompleteReview(s.snap.Details.Order) {
		s.mu.Unlock()
		return nil, ErrReviewNotOpen
	}
	s.mu.Unlock()

	updated, err := s.api.UpdateOrderStatus(ctx, orderID, models.OrderStatusCompleted)
	if err != nil {
		s.notify.error(err.Error())
		return nil, err
	}

	s.mu.Lock()
	if s.loaded && s.orderID == updated.ID {
		s.snap.Details.Order = *updated
		s.publishLocked()
	}
	s.mu.Unlock()

	s.notify.success("Order review completed successfully!")
	return updated, nil
}

// ObserveOrder applies an externally observed order record (status feed) to
// the snapshot when it concerns the loaded order. The pipeline owns these
// transitions; the session just displays them.
func (s *Session) ObserveOrder(order models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded || s.orderID != order.ID {
		return
	}
	s.snap.Details.Order = order
	s.publishLocked()
}

// Export downloads the loaded order's CSV and hands it to the saver. It
// never touches the snapshot; an export failure must not disturb the
// displayed order.
func (s *Session) Export(ctx context.Context) (string, error) {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return "", ErrNoOrder
	}
	orderID := s.orderID
	s.mu.Unlock()

	file, err := s.api.Export(ctx, orderID)
	if err != nil {
		s.notify.error(err.Error())
		return "", err
	}

	if s.saver != nil {
		if err := s.saver.Save(file.Filename, file.Data); err != nil {
			s.notify.error(fmt.Sprintf("Failed to save export: %v", err))
			return "", err
		}
	}

	s.notify.success("Order exported successfully!")
	return file.Filename, nil
}

// Snapshot returns the current session state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Subscribe registers a snapshot listener and returns its unsubscribe
// function. The listener is called with the current snapshot immediately.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	snap := s.snap
	s.mu.Unlock()

	fn(snap)

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Session) publishLocked() {
	snap := s.snap
	for _, fn := range s.subs {
		fn(snap)
	}
}
