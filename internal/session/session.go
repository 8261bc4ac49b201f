// Package session persists the bearer token and the store snapshot between runs.
//
// Two fixed keys are used: "token" for the credentials and "nas-storage" for
// the serialized store snapshot. Both are removed on logout.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	TokenKey    = "token"
	SnapshotKey = "nas-storage"
)

// TokenFile is the persisted form of the session token.
type TokenFile struct {
	Token    string    `json:"token"`
	Username string    `json:"username"`
	Server   string    `json:"server"`
	SavedAt  time.Time `json:"saved_at"`
}

// Session caches the token in memory and writes through to a Backend.
type Session struct {
	backend Backend

	mu    sync.RWMutex
	token TokenFile
}

// New wraps a backend.
func New(backend Backend) *Session {
	return &Session{backend: backend}
}

// Restore loads a previously saved token. A missing token is not an error.
func (s *Session) Restore(ctx context.Context) (TokenFile, error) {
	data, err := s.backend.Load(ctx, TokenKey)
	if errors.Is(err, ErrNotFound) {
		return TokenFile{}, nil
	}
	if err != nil {
		return TokenFile{}, err
	}
	var tf TokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return TokenFile{}, fmt.Errorf("parse token file: %w", err)
	}
	s.mu.Lock()
	s.token = tf
	s.mu.Unlock()
	return tf, nil
}

// Token implements nas.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token.Token
}

// Username returns the user the current token was issued to.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token.Username
}

// SetToken stores a fresh token in memory and in the backend.
func (s *Session) SetToken(ctx context.Context, tf TokenFile) error {
	tf.Token = strings.TrimSpace(tf.Token)
	if tf.Token == "" {
		return fmt.Errorf("token is empty")
	}
	if tf.SavedAt.IsZero() {
		tf.SavedAt = time.Now()
	}
	data, err := json.Marshal(tf)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := s.backend.Save(ctx, TokenKey, data); err != nil {
		return err
	}
	s.mu.Lock()
	s.token = tf
	s.mu.Unlock()
	return nil
}

// Expired reports whether the current token carries an exp claim already in
// the past. Tokens without a readable exp are treated as live.
func (s *Session) Expired(now time.Time) bool {
	token := s.Token()
	if token == "" {
		return false
	}
	exp, ok := TokenExpiry(token)
	if !ok {
		return false
	}
	return !now.Before(exp)
}

// SaveSnapshot serializes v under the snapshot key.
func (s *Session) SaveSnapshot(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return s.backend.Save(ctx, SnapshotKey, data)
}

// LoadSnapshot decodes the saved snapshot into v. It returns false when no
// snapshot exists.
func (s *Session) LoadSnapshot(ctx context.Context, v any) (bool, error) {
	data, err := s.backend.Load(ctx, SnapshotKey)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse snapshot: %w", err)
	}
	return true, nil
}

// Clear forgets the token and deletes both persisted keys.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = TokenFile{}
	s.mu.Unlock()

	return errors.Join(
		s.backend.Delete(ctx, TokenKey),
		s.backend.Delete(ctx, SnapshotKey),
	)
}
