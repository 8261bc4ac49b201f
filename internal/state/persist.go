package state

import (
	"context"

	"github.com/five82/stash/internal/nas"
)

// Persisted is the subset of the store written under the snapshot key.
// The paged file collection is not persisted; it is refetched from page 0.
type Persisted struct {
	User        *nas.User         `json:"user,omitempty"`
	ViewHistory []int64           `json:"viewHistory,omitempty"`
	ChatHistory []nas.ChatMessage `json:"chatHistory,omitempty"`
}

// Persist writes the current snapshot through the Persister. Nothing is
// written while signed out, and a snapshot that races a Logout is removed
// again so the logged-out session leaves nothing behind.
func (s *Store) Persist(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	epoch := s.begin()
	snap := s.Snapshot()
	if snap.User == nil {
		return nil
	}
	p := Persisted{User: snap.User, ViewHistory: snap.ViewHistory, ChatHistory: snap.ChatHistory}
	if err := s.persist.SaveSnapshot(ctx, p); err != nil {
		return s.fail("persist snapshot", err)
	}
	if !s.current(epoch) {
		if err := s.persist.Clear(ctx); err != nil {
			return s.fail("clear session", err)
		}
	}
	return nil
}

// Hydrate restores a persisted snapshot. The view history is re-normalised so
// a hand-edited or older snapshot cannot break its bounds.
func (s *Store) Hydrate(p Persisted) {
	history := make([]int64, 0, len(p.ViewHistory))
	for i := len(p.ViewHistory) - 1; i >= 0; i-- {
		history = pushHistory(history, p.ViewHistory[i])
	}

	s.mu.Lock()
	if p.User != nil {
		u := *p.User
		s.user = &u
	}
	s.history = history
	s.chat = append([]nas.ChatMessage(nil), p.ChatHistory...)
	s.lastUpdated = s.now()
	s.mu.Unlock()
	s.notify()
}
