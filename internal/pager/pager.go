// Package pager decides when to request the next page of files.
//
// A Pager holds the cursor, the has-more flag and the loading guard. It does
// not store files itself: FetchFunc is normally state.Store.FetchFiles, which
// merges the page into the shared collection, and reset is Store.ResetFiles.
package pager

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/stash/internal/nas"
)

const (
	// DefaultThreshold is the scroll fraction past which the next page loads.
	DefaultThreshold = 0.7
	// DefaultThrottle bounds how often scroll positions are evaluated.
	DefaultThrottle = 200 * time.Millisecond

	defaultPageSize = 20
	sortByWriteTime = "lastWriteTime"
)

// FetchFunc requests one page and reports how many records it contained.
type FetchFunc func(ctx context.Context, page int) (int, error)

// Option customises a Pager.
type Option func(*Pager)

// WithThreshold sets the scroll fraction that triggers a fetch. Values outside
// (0, 1] are ignored.
func WithThreshold(f float64) Option {
	return func(p *Pager) {
		if f > 0 && f <= 1 {
			p.threshold = f
		}
	}
}

// WithThrottle sets the minimum interval between scroll evaluations.
func WithThrottle(d time.Duration) Option {
	return func(p *Pager) {
		if d >= 0 {
			p.throttle = d
		}
	}
}

// WithPageSize sets the size reported by Cursor.
func WithPageSize(n int) Option {
	return func(p *Pager) {
		if n > 0 {
			p.size = n
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pager) {
		if l != nil {
			p.log = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pager) {
		if now != nil {
			p.now = now
		}
	}
}

// Pager tracks pagination progress for one file listing.
type Pager struct {
	fetch     FetchFunc
	reset     func()
	log       *zap.Logger
	now       func() time.Time
	threshold float64
	throttle  time.Duration
	size      int

	mu       sync.Mutex
	page     int
	hasMore  bool
	loading  bool
	query    string
	gen      uint64 // bumped by SetQuery
	lastEval time.Time
}

// New builds a Pager positioned at page 0. reset may be nil.
func New(fetch FetchFunc, reset func(), opts ...Option) *Pager {
	p := &Pager{
		fetch:     fetch,
		reset:     reset,
		log:       zap.NewNop(),
		now:       time.Now,
		threshold: DefaultThreshold,
		throttle:  DefaultThrottle,
		size:      defaultPageSize,
		hasMore:   true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Cursor returns the request the next FetchMore will issue.
func (p *Pager) Cursor() nas.PageRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return nas.PageRequest{Page: p.page, Size: p.size, SortBy: sortByWriteTime, Direction: nas.Desc}
}

// HasMore reports whether the last fetch returned any records.
func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Loading reports whether a fetch is in flight.
func (p *Pager) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Query returns the active search query.
func (p *Pager) Query() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

// FetchMore requests the page under the cursor. It is a no-op, returning
// false, while a fetch is in flight or once an empty page has been seen.
//
// On success the cursor advances by one whether or not the page was empty.
// On error the cursor and has-more flag are left as they were. A result that
// arrives after SetQuery is discarded.
func (p *Pager) FetchMore(ctx context.Context) (bool, error) {
	p.mu.Lock()
	if p.loading || !p.hasMore {
		p.mu.Unlock()
		return false, nil
	}
	p.loading = true
	page, gen := p.page, p.gen
	p.mu.Unlock()

	n, err := p.fetch(ctx, page)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen {
		p.log.Debug("page discarded after query change", zap.Int("page", page))
		return true, err
	}
	p.loading = false
	if err != nil {
		p.log.Warn("fetch page failed", zap.Int("page", page), zap.Error(err))
		return true, err
	}
	p.hasMore = n > 0
	p.page = page + 1
	return true, nil
}

// SetQuery records a new search query. When it differs from the current one
// the cursor returns to page 0, has-more is restored and the merged
// collection is reset so results for the old query disappear.
func (p *Pager) SetQuery(q string) bool {
	q = strings.TrimSpace(q)
	p.mu.Lock()
	if q == p.query {
		p.mu.Unlock()
		return false
	}
	p.query = q
	p.page = 0
	p.hasMore = true
	p.loading = false
	p.gen++
	p.mu.Unlock()

	if p.reset != nil {
		p.reset()
	}
	p.log.Debug("query changed, pagination reset", zap.String("query", q))
	return true
}

// Reset returns to page 0 without changing the query.
func (p *Pager) Reset() {
	p.mu.Lock()
	p.page = 0
	p.hasMore = true
	p.loading = false
	p.gen++
	p.mu.Unlock()
	if p.reset != nil {
		p.reset()
	}
}

// OnScroll samples a scroll position, expressed as the fraction of the
// content above the bottom of the view. Samples inside the throttle window
// are ignored. Past the threshold it calls FetchMore.
func (p *Pager) OnScroll(ctx context.Context, fraction float64) (bool, error) {
	p.mu.Lock()
	now := p.now()
	if !p.lastEval.IsZero() && now.Sub(p.lastEval) < p.throttle {
		p.mu.Unlock()
		return false, nil
	}
	p.lastEval = now
	p.mu.Unlock()

	if fraction <= p.threshold {
		return false, nil
	}
	return p.FetchMore(ctx)
}
