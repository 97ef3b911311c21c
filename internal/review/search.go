package review

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/xelth-com/orderflowgo/internal/models"
)

// DefaultDebounceWindow is the quiet period after the last keystroke before
// a search request is issued. Tunable, not a contract.
const DefaultDebounceWindow = 300 * time.Millisecond

// ProductSearcher is the search dependency of the controller
type ProductSearcher interface {
	SearchProducts(ctx context.Context, query string) ([]models.Product, error)
}

// SearchSnapshot is the read-only state published to subscribers after
// every change. On a search failure Results keeps the previous result set
// so the view never flashes empty on a transient error.
type SearchSnapshot struct {
	Query   string
	Results []models.Product
	Loading bool
	Err     string
}

// SearchOption configures a SearchController
type SearchOption func(*SearchController)

// WithDebounceWindow overrides the quiet window (tests use a short one)
func WithDebounceWindow(d time.Duration) SearchOption {
	return func(c *SearchController) {
		c.window = d
	}
}

// SearchController turns a stream of keystroke query values into a
// throttled, cancellable sequence of search requests. It holds a single
// pending-timer slot: each new query cancels any unfired timer and starts a
// new one, so at the point of issuance only the last keystroke in a burst
// wins. Issued requests are sequence-tagged and a response older than the
// last applied one is discarded, so a slow early request can never
// overwrite a newer result set.
type SearchController struct {
	searcher ProductSearcher
	window   time.Duration
	ctx      context.Context
	cancel   context.CancelFunc

	mu      sync.Mutex
	timer   *time.Timer // the single pending-timer slot
	pending bool        // a timer is armed but has not fired
	seq     uint64      // issued requests
	applied uint64      // newest applied response
	snap    SearchSnapshot
	subs    map[int]func(SearchSnapshot)
	nextSub int
	closed  bool
}

// NewSearchController creates a controller around the given searcher
func NewSearchController(searcher ProductSearcher, opts ...SearchOption) *SearchController {
	ctx, cancel := context.WithCancel(context.Background())
	c := &SearchController{
		searcher: searcher,
		window:   DefaultDebounceWindow,
		ctx:      ctx,
		cancel:   cancel,
		subs:     make(map[int]func(SearchSnapshot)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetQuery feeds one keystroke's query value into the controller. A blank
// query immediately yields an empty result set without any network call.
func (c *SearchController) SetQuery(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.snap.Query = query

	// Cancel-and-replace: the slot holds at most one armed timer
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
		c.pending = false
	}

	if strings.TrimSpace(query) == "" {
		c.snap.Results = nil
		c.snap.Loading = false
		c.snap.Err = ""
		c.publishLocked()
		return
	}

	c.snap.Loading = true
	c.snap.Err = ""
	c.pending = true
	c.timer = time.AfterFunc(c.window, func() {
		c.issue(query)
	})
	c.publishLocked()
}

// issue runs once per fired timer and performs exactly one search call for
// the query value the timer captured.
func (c *SearchController) issue(query string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.pending = false
	c.seq++
	id := c.seq
	c.mu.Unlock()

	results, err := c.searcher.SearchProducts(c.ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if id <= c.applied {
		// A newer response already landed; this one is stale
		return
	}
	c.applied = id

	if !c.pending && id == c.seq {
		c.snap.Loading = false
	}
	if err != nil {
		// Keep the previous result set visible
		c.snap.Err = err.Error()
	} else {
		c.snap.Results = results
		c.snap.Err = ""
	}
	c.publishLocked()
}

// Snapshot returns the current search state
func (c *SearchController) Snapshot() SearchSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Subscribe registers a snapshot listener and returns its unsubscribe
// function. The listener is called with the current snapshot immediately.
func (c *SearchController) Subscribe(fn func(SearchSnapshot)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	snap := c.snap
	c.mu.Unlock()

	fn(snap)

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Close cancels any pending timer and in-flight request context. Late
// responses after Close are discarded.
func (c *SearchController) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.cancel()
}

func (c *SearchController) publishLocked() {
	snap := c.snap
	for _, fn := range c.subs {
		fn(snap)
	}
}
