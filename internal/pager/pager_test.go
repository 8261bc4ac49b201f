package pager

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// collection stands in for the store: it records requested pages and keeps
// the merged ids.
type collection struct {
	mu     sync.Mutex
	pages  map[int][]int64
	asked  []int
	merged []int64
	resets int
	fail   error
	gate   chan struct{}
}

func (c *collection) fetch(_ context.Context, page int) (int, error) {
	c.mu.Lock()
	c.asked = append(c.asked, page)
	gate, fail := c.gate, c.fail
	c.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if fail != nil {
		return 0, fail
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	records := c.pages[page]
	c.merged = append(c.merged, records...)
	return len(records), nil
}

func (c *collection) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.merged = nil
	c.resets++
}

func (c *collection) requested() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.asked...)
}

func newCollection() *collection {
	return &collection{pages: map[int][]int64{
		0: {1, 2},
		1: {3, 4},
		2: {5, 6},
		3: {7, 8},
	}}
}

func TestFetchMoreAdvancesUntilEmptyPage(t *testing.T) {
	c := newCollection()
	p := New(c.fetch, c.reset)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ran, err := p.FetchMore(ctx)
		if err != nil || !ran {
			t.Fatalf("FetchMore #%d = %v, %v; want fetch", i, ran, err)
		}
	}
	if p.HasMore() {
		t.Fatalf("HasMore = true after empty page")
	}
	if got := p.Cursor().Page; got != 5 {
		t.Fatalf("Cursor().Page = %d, want 5 (advance on empty page too)", got)
	}

	ran, err := p.FetchMore(ctx)
	if ran || err != nil {
		t.Fatalf("FetchMore after end = %v, %v; want no-op", ran, err)
	}
	if n := len(c.requested()); n != 5 {
		t.Fatalf("requests = %d, want 5", n)
	}
}

func TestFetchMoreErrorKeepsCursor(t *testing.T) {
	c := newCollection()
	p := New(c.fetch, c.reset)
	ctx := context.Background()
	if _, err := p.FetchMore(ctx); err != nil {
		t.Fatalf("FetchMore: %v", err)
	}

	boom := errors.New("boom")
	c.fail = boom
	if _, err := p.FetchMore(ctx); !errors.Is(err, boom) {
		t.Fatalf("FetchMore error = %v, want boom", err)
	}
	if p.Loading() {
		t.Fatalf("Loading = true after error")
	}
	if !p.HasMore() || p.Cursor().Page != 1 {
		t.Fatalf("after error: hasMore=%v page=%d, want true/1", p.HasMore(), p.Cursor().Page)
	}

	c.fail = nil
	if _, err := p.FetchMore(ctx); err != nil {
		t.Fatalf("retry FetchMore: %v", err)
	}
	if got := c.requested(); got[len(got)-1] != 1 {
		t.Fatalf("retry asked page %d, want 1", got[len(got)-1])
	}
}

func TestFetchMoreSkipsWhileLoading(t *testing.T) {
	c := newCollection()
	c.gate = make(chan struct{})
	p := New(c.fetch, c.reset)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.FetchMore(ctx)
	}()
	waitFor(t, func() bool { return p.Loading() })

	ran, err := p.FetchMore(ctx)
	if ran || err != nil {
		t.Fatalf("overlapping FetchMore = %v, %v; want no-op", ran, err)
	}
	close(c.gate)
	<-done
	if got := c.requested(); len(got) != 1 {
		t.Fatalf("requests = %v, want one", got)
	}
}

func TestSetQueryResetsToFirstPage(t *testing.T) {
	c := newCollection()
	p := New(c.fetch, c.reset)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := p.FetchMore(ctx); err != nil {
			t.Fatalf("FetchMore: %v", err)
		}
	}
	if p.Cursor().Page != 3 {
		t.Fatalf("Cursor().Page = %d, want 3", p.Cursor().Page)
	}

	if !p.SetQuery("report") {
		t.Fatalf("SetQuery reported no change")
	}
	if c.resets != 1 || len(c.merged) != 0 {
		t.Fatalf("collection not reset: resets=%d merged=%v", c.resets, c.merged)
	}
	if p.Cursor().Page != 0 || !p.HasMore() {
		t.Fatalf("after SetQuery: page=%d hasMore=%v", p.Cursor().Page, p.HasMore())
	}

	if _, err := p.FetchMore(ctx); err != nil {
		t.Fatalf("FetchMore: %v", err)
	}
	asked := c.requested()
	if asked[len(asked)-1] != 0 {
		t.Fatalf("first fetch after query change asked page %d, want 0", asked[len(asked)-1])
	}
	for _, id := range c.merged {
		if id > 2 {
			t.Fatalf("merged %v still holds records from the old query", c.merged)
		}
	}

	if p.SetQuery(" report ") {
		t.Fatalf("SetQuery reported change for same trimmed query")
	}
	if c.resets != 1 {
		t.Fatalf("resets = %d, want 1", c.resets)
	}
}

func TestSetQueryDiscardsInFlightPage(t *testing.T) {
	c := newCollection()
	p := New(c.fetch, c.reset)
	ctx := context.Background()
	if _, err := p.FetchMore(ctx); err != nil {
		t.Fatalf("FetchMore: %v", err)
	}

	c.mu.Lock()
	c.gate = make(chan struct{})
	c.mu.Unlock()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.FetchMore(ctx)
	}()
	waitFor(t, func() bool { return len(c.requested()) == 2 })

	p.SetQuery("new")
	close(c.gate)
	<-done

	if p.Cursor().Page != 0 {
		t.Fatalf("late page moved cursor to %d", p.Cursor().Page)
	}
	if p.Loading() {
		t.Fatalf("Loading = true after reset")
	}
}

func TestOnScrollThrottleAndThreshold(t *testing.T) {
	c := newCollection()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p := New(c.fetch, c.reset, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	tests := []struct {
		name     string
		advance  time.Duration
		fraction float64
		want     bool
	}{
		{"below threshold", 0, 0.5, false},
		{"inside throttle window", 50 * time.Millisecond, 0.9, false},
		{"window elapsed", 200 * time.Millisecond, 0.9, true},
		{"immediately again", 10 * time.Millisecond, 0.95, false},
		{"at threshold", 300 * time.Millisecond, 0.7, false},
		{"past threshold", 300 * time.Millisecond, 0.71, true},
	}
	for _, tt := range tests {
		now = now.Add(tt.advance)
		got, err := p.OnScroll(ctx, tt.fraction)
		if err != nil {
			t.Fatalf("%s: OnScroll returned error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("%s: OnScroll = %v, want %v", tt.name, got, tt.want)
		}
	}
	if n := len(c.requested()); n != 2 {
		t.Fatalf("requests = %d, want 2", n)
	}
}

func TestOptionsIgnoreInvalidValues(t *testing.T) {
	p := New(nil, nil, WithThreshold(1.5), WithThrottle(-time.Second), WithPageSize(0))
	if p.threshold != DefaultThreshold || p.throttle != DefaultThrottle || p.size != defaultPageSize {
		t.Fatalf("invalid options applied: %v %v %d", p.threshold, p.throttle, p.size)
	}
	p = New(nil, nil, WithThreshold(0.8), WithPageSize(50))
	if cur := p.Cursor(); cur.Size != 50 || cur.SortBy != "lastWriteTime" {
		t.Fatalf("Cursor() = %#v", cur)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}
