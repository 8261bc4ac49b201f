package state

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/five82/stash/internal/nas"
	"github.com/five82/stash/internal/session"
)

// MaxViewHistory bounds the number of distinct ids kept in the view history.
const MaxViewHistory = 50

const (
	defaultPageSize = 20
	sortByWriteTime = "lastWriteTime"
)

var (
	// ErrFileNotLoaded is returned when an action targets an id the store does not hold.
	ErrFileNotLoaded = errors.New("file not loaded")
	// ErrNotAuthenticated is returned by actions that need a user record.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionEnded is returned when a request completes after Logout.
	ErrSessionEnded = errors.New("session ended before the request completed")
	// ErrEmptyTag rejects blank tags before any network call.
	ErrEmptyTag = errors.New("tag is empty")
	// ErrStalePage is returned when the collection was reset while a page was in flight.
	ErrStalePage = errors.New("file collection reset while page was loading")
)

// Persister is the part of session.Session the store writes through to.
type Persister interface {
	SetToken(ctx context.Context, tf session.TokenFile) error
	SaveSnapshot(ctx context.Context, v any) error
	Clear(ctx context.Context) error
}

// Snapshot is a deep copy of the store contents for rendering.
type Snapshot struct {
	User        *nas.User
	Files       []nas.File
	ViewHistory []int64
	ChatHistory []nas.ChatMessage
	Selected    *nas.File
	SearchQuery string
	LastUpdated time.Time
}

// Authenticated reports whether a user record is loaded.
func (s Snapshot) Authenticated() bool {
	return s.User != nil
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPageSize sets the page size used by FetchFiles.
func WithPageSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithIDGenerator replaces the chat message id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// Store is the single source of truth for session state. All mutations go
// through its action methods; each performs its network call first and only
// then applies the change under the lock.
//
// Two concurrent actions on the same file id are not serialized: whichever
// completes last wins, based on the value it read before its call.
type Store struct {
	api      nas.API
	persist  Persister
	log      *zap.Logger
	now      func() time.Time
	newID    func() string
	pageSize int

	mu          sync.RWMutex
	user        *nas.User
	files       []nas.File
	index       map[int64]int
	history     []int64
	chat        []nas.ChatMessage
	selected    *nas.File
	query       string
	lastUpdated time.Time
	epoch       uint64 // bumped by Logout
	filesGen    uint64 // bumped by ResetFiles

	subMu sync.Mutex
	subs  map[chan struct{}]struct{}
}

// New builds a Store. persist may be nil, in which case nothing is written to disk.
func New(api nas.API, persist Persister, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		api:      api,
		persist:  persist,
		log:      logger,
		now:      time.Now,
		newID:    uuid.NewString,
		pageSize: defaultPageSize,
		index:    make(map[int64]int),
		subs:     make(map[chan struct{}]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Files:       cloneFiles(s.files),
		ViewHistory: cloneIDs(s.history),
		SearchQuery: s.query,
		LastUpdated: s.lastUpdated,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	if len(s.chat) > 0 {
		snap.ChatHistory = append([]nas.ChatMessage(nil), s.chat...)
	}
	if s.selected != nil {
		sel := s.selected.Clone()
		snap.Selected = &sel
	}
	return snap
}

// File returns a copy of a loaded file.
func (s *Store) File(id int64) (nas.File, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupLocked(id)
}

// Subscribe returns a channel receiving a signal after every applied change,
// and a function to stop the subscription. Signals coalesce.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()
	return ch, func() {
		s.subMu.Lock()
		delete(s.subs, ch)
		s.subMu.Unlock()
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// begin captures the session epoch before a network call.
func (s *Store) begin() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// current reports whether the session epoch is still the one begin returned.
func (s *Store) current(epoch uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch == epoch
}

// commit applies fn unless the session ended since begin.
func (s *Store) commit(epoch uint64, fn func()) error {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return ErrSessionEnded
	}
	fn()
	s.lastUpdated = s.now()
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) lookupLocked(id int64) (nas.File, bool) {
	if idx, ok := s.index[id]; ok {
		return s.files[idx].Clone(), true
	}
	if s.selected != nil && s.selected.ID == id {
		return s.selected.Clone(), true
	}
	return nas.File{}, false
}

// updateFileLocked applies fn to the collection copy and the selected copy of id.
func (s *Store) updateFileLocked(id int64, fn func(*nas.File)) {
	if idx, ok := s.index[id]; ok {
		fn(&s.files[idx])
	}
	if s.selected != nil && s.selected.ID == id {
		fn(s.selected)
	}
}

// fail logs a failed action and returns err unchanged.
func (s *Store) fail(action string, err error, fields ...zap.Field) error {
	if errors.Is(err, ErrSessionEnded) || errors.Is(err, context.Canceled) {
		s.log.Debug(action+" discarded", append(fields, zap.Error(err))...)
		return err
	}
	s.log.Warn(action+" failed", append(fields, zap.Error(err))...)
	return err
}

func cloneFiles(files []nas.File) []nas.File {
	if len(files) == 0 {
		return nil
	}
	dup := make([]nas.File, len(files))
	for i, f := range files {
		dup[i] = f.Clone()
	}
	return dup
}

func cloneIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	dup := make([]int64, len(ids))
	copy(dup, ids)
	return dup
}

// pushHistory returns history with id moved to the front, deduplicated and capped.
func pushHistory(history []int64, id int64) []int64 {
	next := make([]int64, 0, min(len(history)+1, MaxViewHistory))
	next = append(next, id)
	for _, existing := range history {
		if len(next) == MaxViewHistory {
			break
		}
		if existing != id {
			next = append(next, existing)
		}
	}
	return next
}

func removeID(ids []int64, id int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
