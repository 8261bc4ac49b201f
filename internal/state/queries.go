package state

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/five82/stash/internal/nas"
)

// The listings below are read-through: they are returned to the caller and
// not merged into the paged file collection. Bookmark and tag state for ids
// the store already holds is taken from the store so both views agree.

// History returns the server-side watch history, most recently watched first.
func (s *Store) History(ctx context.Context) ([]nas.File, error) {
	files, err := s.api.FetchHistory(ctx)
	if err != nil {
		return nil, s.fail("fetch history", err)
	}
	files = s.overlay(files)
	sort.SliceStable(files, func(i, j int) bool {
		return watchedAt(files[i]).After(watchedAt(files[j]))
	})
	return files, nil
}

// Bookmarks returns every bookmarked file.
func (s *Store) Bookmarks(ctx context.Context) ([]nas.File, error) {
	files, err := s.api.FetchBookmarks(ctx)
	if err != nil {
		return nil, s.fail("fetch bookmarks", err)
	}
	return s.overlay(files), nil
}

// Recommendations returns the server-computed recommendation groups.
func (s *Store) Recommendations(ctx context.Context) ([]nas.RecommendationGroup, error) {
	groups, err := s.api.FetchRecommendations(ctx)
	if err != nil {
		return nil, s.fail("fetch recommendations", err)
	}
	for i := range groups {
		groups[i].Files = s.overlay(groups[i].Files)
	}
	return groups, nil
}

// Related returns files related to id.
func (s *Store) Related(ctx context.Context, id int64) ([]nas.File, error) {
	files, err := s.api.FetchRelated(ctx, id)
	if err != nil {
		return nil, s.fail("fetch related", err, zap.Int64("file_id", id))
	}
	return s.overlay(files), nil
}

// TagSuggestions returns the tag vocabulary minus the tags id already carries.
func (s *Store) TagSuggestions(ctx context.Context, id int64) ([]string, error) {
	tags, err := s.api.FetchTags(ctx)
	if err != nil {
		return nil, s.fail("fetch tags", err)
	}
	current, _ := s.File(id)
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if _, dup := seen[tag]; dup || current.HasTag(tag) {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out, nil
}

func (s *Store) overlay(files []nas.File) []nas.File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, f := range files {
		if local, ok := s.lookupLocked(f.ID); ok {
			files[i].Bookmarked = local.Bookmarked
			files[i].BookmarkCount = local.BookmarkCount
			files[i].Tags = local.Tags // local is already a clone
		}
	}
	return files
}

func watchedAt(f nas.File) time.Time {
	if f.WatchedAt != nil {
		return *f.WatchedAt
	}
	return time.Time{}
}
