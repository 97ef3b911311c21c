package review

import (
	"context"
	"sort"
	"sync"

	"github.com/xelth-com/orderflowgo/internal/models"
)

// OrderLister is the list dependency of OrderList
type OrderLister interface {
	ListOrders(ctx context.Context) ([]models.Order, error)
}

// ListSnapshot is the published order-list state
type ListSnapshot struct {
	Orders  []models.Order
	Loading bool
	Err     string
}

// OrderList holds the cached order summaries for the list view. Status
// mutations and feed events update individual records by id substitution;
// nothing ever rewrites a cached order from local guesses.
type OrderList struct {
	api OrderLister

	mu      sync.Mutex
	snap    ListSnapshot
	subs    map[int]func(ListSnapshot)
	nextSub int
}

// NewOrderList creates an order list holder
func NewOrderList(api OrderLister) *OrderList {
	return &OrderList{
		api:  api,
		subs: make(map[int]func(ListSnapshot)),
	}
}

// Fetch reloads the list. A failure keeps the previous orders and sets Err
// for the inline error panel.
func (l *OrderList) Fetch(ctx context.Context) error {
	l.mu.Lock()
	l.snap.Loading = true
	l.publishLocked()
	l.mu.Unlock()

	orders, err := l.api.ListOrders(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.snap.Loading = false
	if err != nil {
		l.snap.Err = err.Error()
		l.publishLocked()
		return err
	}
	l.snap.Orders = orders
	l.snap.Err = ""
	l.publishLocked()
	return nil
}

// Apply substitutes a server-returned order record by id, or inserts it
// when the list has not seen the order yet (a fresh upload observed over
// the feed).
func (l *OrderList) Apply(order models.Order) {
	l.mu.Lock()
	defer l.mu.Unlock()

	replaced := false
	for i := range l.snap.Orders {
		if l.snap.Orders[i].ID == order.ID {
			l.snap.Orders[i] = order
			replaced = true
			break
		}
	}
	if !replaced {
		l.snap.Orders = append(l.snap.Orders, order)
		sort.Slice(l.snap.Orders, func(i, j int) bool {
			return l.snap.Orders[i].ID < l.snap.Orders[j].ID
		})
	}
	l.publishLocked()
}

// Snapshot returns the current list state
func (l *OrderList) Snapshot() ListSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap
}

// Subscribe registers a snapshot listener and returns its unsubscribe
// function
func (l *OrderList) Subscribe(fn func(ListSnapshot)) func() {
	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn
	snap := l.snap
	l.mu.Unlock()

	fn(snap)

	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

func (l *OrderList) publishLocked() {
	snap := l.snap
	for _, fn := range l.subs {
		fn(snap)
	}
}
