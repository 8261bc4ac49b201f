package state

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/five82/stash/internal/nas"
	"github.com/five82/stash/internal/session"
)

// Login exchanges credentials for a token, persists it and loads the user.
// A Logout that lands while the call is in flight wins: nothing is written
// and ErrSessionEnded is returned.
func (s *Store) Login(ctx context.Context, creds nas.Credentials) error {
	epoch := s.begin()
	resp, err := s.api.Login(ctx, creds)
	if err != nil {
		return s.fail("login", err, zap.String("username", creds.Username))
	}
	if !s.current(epoch) {
		return s.fail("login", ErrSessionEnded, zap.String("username", creds.Username))
	}
	if s.persist != nil {
		tf := session.TokenFile{Token: resp.Token, Username: creds.Username, SavedAt: s.now()}
		if err := s.persist.SetToken(ctx, tf); err != nil {
			return s.fail("save token", err)
		}
		if !s.current(epoch) {
			// Logout cleared storage before the token landed.
			_ = s.persist.Clear(ctx)
			return s.fail("login", ErrSessionEnded, zap.String("username", creds.Username))
		}
	}
	if resp.User != nil {
		user := *resp.User
		return s.commit(epoch, func() { s.user = &user })
	}
	return s.fetchUser(ctx, epoch)
}

// Signup creates an account and then logs in with the same credentials.
func (s *Store) Signup(ctx context.Context, req nas.Signup) error {
	if err := s.api.Signup(ctx, req); err != nil {
		return s.fail("signup", err, zap.String("username", req.Username))
	}
	return s.Login(ctx, nas.Credentials{Username: req.Username, Password: req.Password})
}

// FetchUser loads the current user. On failure the user stays nil so the
// caller can fall back to the login flow.
func (s *Store) FetchUser(ctx context.Context) error {
	return s.fetchUser(ctx, s.begin())
}

func (s *Store) fetchUser(ctx context.Context, epoch uint64) error {
	user, err := s.api.FetchUser(ctx)
	if err != nil {
		return s.fail("fetch user", err)
	}
	if user.Setting.DefaultView == "" {
		user.Setting.DefaultView = nas.ViewGrid
	}
	return s.commit(epoch, func() { s.user = user })
}

// UpdateUserSettings writes the patch to the server and merges it locally only
// once the server accepts it.
func (s *Store) UpdateUserSettings(ctx context.Context, patch nas.SettingsPatch) error {
	if patch.Empty() {
		return nil
	}
	epoch := s.begin()
	s.mu.RLock()
	authenticated := s.user != nil
	s.mu.RUnlock()
	if !authenticated {
		return ErrNotAuthenticated
	}
	if err := s.api.UpdateSettings(ctx, patch); err != nil {
		return s.fail("update settings", err)
	}
	return s.commit(epoch, func() {
		if s.user == nil {
			return
		}
		s.user.Setting = patch.Apply(s.user.Setting)
	})
}

// Watch records a watch event and, once confirmed, moves id to the front of
// the view history and stamps its watched time.
func (s *Store) Watch(ctx context.Context, id int64) error {
	epoch := s.begin()
	if err := s.api.Watch(ctx, id); err != nil {
		return s.fail("watch", err, zap.Int64("file_id", id))
	}
	return s.commit(epoch, func() {
		now := s.now()
		s.history = pushHistory(s.history, id)
		s.updateFileLocked(id, func(f *nas.File) {
			ts := now
			f.WatchedAt = &ts
			f.AccessCount++
		})
	})
}

// ToggleBookmark reads the current flag, calls add or remove accordingly and
// flips the flag once the server confirms.
func (s *Store) ToggleBookmark(ctx context.Context, id int64) error {
	epoch := s.begin()
	s.mu.RLock()
	file, ok := s.lookupLocked(id)
	s.mu.RUnlock()
	if !ok {
		return s.fail("toggle bookmark", ErrFileNotLoaded, zap.Int64("file_id", id))
	}

	current := file.Bookmarked
	var err error
	if current {
		err = s.api.RemoveBookmark(ctx, id)
	} else {
		err = s.api.AddBookmark(ctx, id)
	}
	if err != nil {
		return s.fail("toggle bookmark", err, zap.Int64("file_id", id), zap.Bool("bookmarked", current))
	}
	return s.commit(epoch, func() {
		s.updateFileLocked(id, func(f *nas.File) {
			f.Bookmarked = !current
			if current {
				if f.BookmarkCount > 0 {
					f.BookmarkCount--
				}
			} else {
				f.BookmarkCount++
			}
		})
	})
}

// AddTag attaches tag to id after the server confirms.
func (s *Store) AddTag(ctx context.Context, id int64, tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ErrEmptyTag
	}
	epoch := s.begin()
	if err := s.api.AddTag(ctx, id, tag); err != nil {
		return s.fail("add tag", err, zap.Int64("file_id", id), zap.String("tag", tag))
	}
	return s.commit(epoch, func() {
		s.updateFileLocked(id, func(f *nas.File) {
			if f.HasTag(tag) {
				return
			}
			next := make([]string, 0, len(f.Tags)+1)
			next = append(next, f.Tags...)
			f.Tags = append(next, tag)
		})
	})
}

// RemoveTag detaches tag from id after the server confirms.
func (s *Store) RemoveTag(ctx context.Context, id int64, tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ErrEmptyTag
	}
	epoch := s.begin()
	if err := s.api.RemoveTag(ctx, id, tag); err != nil {
		return s.fail("remove tag", err, zap.Int64("file_id", id), zap.String("tag", tag))
	}
	return s.commit(epoch, func() {
		s.updateFileLocked(id, func(f *nas.File) {
			next := make([]string, 0, len(f.Tags))
			for _, existing := range f.Tags {
				if existing != tag {
					next = append(next, existing)
				}
			}
			f.Tags = next
		})
	})
}

// IncrementRecommendations bumps the recommendation counter after confirmation.
func (s *Store) IncrementRecommendations(ctx context.Context, id int64) error {
	epoch := s.begin()
	if err := s.api.IncrementRecommendations(ctx, id); err != nil {
		return s.fail("increment recommendations", err, zap.Int64("file_id", id))
	}
	return s.commit(epoch, func() {
		s.updateFileLocked(id, func(f *nas.File) { f.Recommendations++ })
	})
}

// FetchFiles requests one page sorted by last write time, newest first, and
// appends the records not already held. It returns the raw page so callers
// can detect the end of the data.
func (s *Store) FetchFiles(ctx context.Context, page int) ([]nas.File, error) {
	s.mu.RLock()
	epoch, gen := s.epoch, s.filesGen
	s.mu.RUnlock()

	req := nas.PageRequest{Page: page, Size: s.pageSize, SortBy: sortByWriteTime, Direction: nas.Desc}
	files, err := s.api.ListFiles(ctx, req)
	if err != nil {
		return nil, s.fail("fetch files", err, zap.Int("page", page))
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return files, s.fail("fetch files", ErrSessionEnded, zap.Int("page", page))
	}
	if s.filesGen != gen {
		s.mu.Unlock()
		return files, s.fail("fetch files", ErrStalePage, zap.Int("page", page))
	}
	added := 0
	for _, f := range files {
		if _, seen := s.index[f.ID]; seen {
			continue
		}
		s.index[f.ID] = len(s.files)
		s.files = append(s.files, f.Clone())
		added++
	}
	s.lastUpdated = s.now()
	s.mu.Unlock()
	s.notify()

	s.log.Debug("page merged", zap.Int("page", page), zap.Int("received", len(files)), zap.Int("added", added))
	return files, nil
}

// ResetFiles drops the merged collection. Pages still in flight are discarded
// when they arrive.
func (s *Store) ResetFiles() {
	s.mu.Lock()
	s.files = nil
	s.index = make(map[int64]int)
	s.filesGen++
	s.lastUpdated = s.now()
	s.mu.Unlock()
	s.notify()
}

// DeleteWatchHistory clears the watched time of one file.
func (s *Store) DeleteWatchHistory(ctx context.Context, id int64) error {
	epoch := s.begin()
	if err := s.api.DeleteHistory(ctx, id); err != nil {
		return s.fail("delete watch history", err, zap.Int64("file_id", id))
	}
	return s.commit(epoch, func() {
		s.history = removeID(s.history, id)
		s.updateFileLocked(id, func(f *nas.File) { f.WatchedAt = nil })
	})
}

// ClearWatchHistory clears the watched time of every file.
func (s *Store) ClearWatchHistory(ctx context.Context) error {
	epoch := s.begin()
	if err := s.api.ClearHistory(ctx); err != nil {
		return s.fail("clear watch history", err)
	}
	return s.commit(epoch, func() {
		s.history = nil
		for i := range s.files {
			s.files[i].WatchedAt = nil
		}
		if s.selected != nil {
			s.selected.WatchedAt = nil
		}
	})
}

// AddChatMessage stores a message server-side and appends it to the log.
func (s *Store) AddChatMessage(ctx context.Context, role nas.Role, content string) (nas.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nas.ChatMessage{}, fmt.Errorf("chat message is empty")
	}
	msg := nas.ChatMessage{ID: s.newID(), Role: role, Content: content, CreatedAt: s.now()}
	epoch := s.begin()
	if err := s.api.AppendChatMessage(ctx, msg); err != nil {
		return nas.ChatMessage{}, s.fail("append chat message", err, zap.String("role", string(role)))
	}
	err := s.commit(epoch, func() { s.chat = append(s.chat, msg) })
	if err != nil {
		return nas.ChatMessage{}, err
	}
	return msg, nil
}

// Select makes id the selected file. The selection is a copy kept in sync by
// the actions above.
func (s *Store) Select(id int64) error {
	s.mu.Lock()
	file, ok := s.lookupLocked(id)
	if !ok {
		s.mu.Unlock()
		return ErrFileNotLoaded
	}
	s.selected = &file
	s.lastUpdated = s.now()
	s.mu.Unlock()
	s.notify()
	return nil
}

// SelectFile selects a record that may not be part of the loaded collection,
// such as an entry from the history or bookmark listings.
func (s *Store) SelectFile(f nas.File) {
	s.mu.Lock()
	var sel nas.File
	if idx, ok := s.index[f.ID]; ok {
		sel = s.files[idx].Clone()
	} else {
		sel = f.Clone()
	}
	s.selected = &sel
	s.lastUpdated = s.now()
	s.mu.Unlock()
	s.notify()
}

// ClearSelection drops the selected file.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	s.selected = nil
	s.lastUpdated = s.now()
	s.mu.Unlock()
	s.notify()
}

// SetSearchQuery records the active search term. It reports whether the value changed.
func (s *Store) SetSearchQuery(q string) bool {
	q = strings.TrimSpace(q)
	s.mu.Lock()
	changed := s.query != q
	s.query = q
	if changed {
		s.lastUpdated = s.now()
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
	return changed
}

// Logout clears the session state and the persisted token and snapshot.
// Requests still in flight are discarded when they complete.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.epoch++
	s.filesGen++
	s.user = nil
	s.selected = nil
	s.history = nil
	s.chat = nil
	s.files = nil
	s.index = make(map[int64]int)
	s.query = ""
	s.lastUpdated = s.now()
	s.mu.Unlock()
	s.notify()

	if s.persist == nil {
		return nil
	}
	if err := s.persist.Clear(ctx); err != nil {
		return s.fail("clear session", err)
	}
	s.log.Info("logged out")
	return nil
}
