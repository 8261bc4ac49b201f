package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/stash/internal/logtail"
	"github.com/five82/stash/internal/nas"
	"github.com/five82/stash/internal/state"
)

// Action names, used in the "failed to <action>, try again" status line.
const (
	actionBookmark      = "bookmark"
	actionAddTag        = "add tag"
	actionRemoveTag     = "remove tag"
	actionWatch         = "record watch"
	actionRecommend     = "recommend"
	actionSettings      = "update settings"
	actionDeleteHistory = "delete history entry"
	actionClearHistory  = "clear history"
	actionSendMessage   = "send message"
	actionLogout        = "log out"
)

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type changedMsg struct{}

type expiredMsg struct{}

type actionMsg struct {
	action string
	err    error
}

type pageMsg struct {
	err error
}

type loginMsg struct {
	username string
	signup   bool
	err      error
}

type historyMsg struct {
	files []nas.File
	err   error
}

type bookmarksMsg struct {
	files []nas.File
	err   error
}

type recommendationsMsg struct {
	groups []nas.RecommendationGroup
	err    error
}

type relatedMsg struct {
	id    int64
	files []nas.File
	err   error
}

type tagSuggestionsMsg struct {
	id   int64
	tags []string
	err  error
}

type logsMsg struct {
	lines []string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// waitChangeCmd blocks until the store signals a change.
func waitChangeCmd(ctx context.Context, ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case <-ch:
			return changedMsg{}
		}
	}
}

// waitExpiredCmd blocks until the background refresher reports a rejected token.
func waitExpiredCmd(ctx context.Context, ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case <-ch:
			return expiredMsg{}
		}
	}
}

// actionCmd runs a store action off the UI goroutine.
func (m Model) actionCmd(action string, fn func(ctx context.Context) error) tea.Cmd {
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, actionTimeout)
		defer cancel()
		return actionMsg{action: action, err: fn(ctx)}
	}
}

// fetchMoreCmd requests the next page unconditionally.
func (m Model) fetchMoreCmd() tea.Cmd {
	if m.pager == nil {
		return nil
	}
	pg, parent := m.pager, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, actionTimeout)
		defer cancel()
		fetched, err := pg.FetchMore(ctx)
		if !fetched {
			return nil
		}
		return pageMsg{err: err}
	}
}

// scrollCmd feeds the body scroll position to the pager, which decides
// whether it is close enough to the end to load the next page.
func (m Model) scrollCmd() tea.Cmd {
	if m.pager == nil || !m.snapshot.Authenticated() {
		return nil
	}
	if !m.pageRetryAt.IsZero() && m.now().Before(m.pageRetryAt) {
		return nil
	}
	if !m.pager.HasMore() || m.pager.Loading() {
		return nil
	}
	pg, parent, fraction := m.pager, m.ctx, m.body.ScrollPercent()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, actionTimeout)
		defer cancel()
		fetched, err := pg.OnScroll(ctx, fraction)
		if !fetched {
			return nil
		}
		return pageMsg{err: err}
	}
}

func (m Model) loginCmd(creds nas.Credentials) tea.Cmd {
	store, parent := m.store, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, actionTimeout)
		defer cancel()
		return loginMsg{username: creds.Username, err: store.Login(ctx, creds)}
	}
}

func (m Model) signupCmd(req nas.Signup) tea.Cmd {
	store, parent := m.store, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, actionTimeout)
		defer cancel()
		return loginMsg{username: req.Username, signup: true, err: store.Signup(ctx, req)}
	}
}

func (m Model) historyCmd() tea.Cmd {
	store, parent := m.store, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, actionTimeout)
		defer cancel()
		files, err := store.History(ctx)
		return historyMsg{files: files, err: err}
	}
}

func (m Model) bookmarksCmd() tea.Cmd {
	store, parent := m.store, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, actionTimeout)
		defer cancel()
		files, err := store.Bookmarks(ctx)
		return bookmarksMsg{files: files, err: err}
	}
}

func (m Model) recommendationsCmd() tea.Cmd {
	store, parent := m.store, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, actionTimeout)
		defer cancel()
		groups, err := store.Recommendations(ctx)
		return recommendationsMsg{groups: groups, err: err}
	}
}

func (m Model) relatedCmd(id int64) tea.Cmd {
	store, parent := m.store, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, actionTimeout)
		defer cancel()
		files, err := store.Related(ctx, id)
		return relatedMsg{id: id, files: files, err: err}
	}
}

func (m Model) tagSuggestionsCmd(id int64) tea.Cmd {
	store, parent := m.store, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, actionTimeout)
		defer cancel()
		tags, err := store.TagSuggestions(ctx, id)
		return tagSuggestionsMsg{id: id, tags: tags, err: err}
	}
}

// chatCmd stores the question, answers it from the loaded files and stores
// the reply.
func (m Model) chatCmd(question string) tea.Cmd {
	store, assistant := m.store, m.assistant
	return m.actionCmd(actionSendMessage, func(ctx context.Context) error {
		if _, err := store.AddChatMessage(ctx, nas.RoleUser, question); err != nil {
			return err
		}
		reply := assistant.Answer(store.Snapshot().Files, question)
		_, err := store.AddChatMessage(ctx, nas.RoleAssistant, reply)
		return err
	})
}

func logsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		raw, err := logtail.Read(path, logTailLines)
		if err != nil {
			return logsMsg{err: err}
		}
		entries := logtail.ParseLines(raw)
		lines := make([]string, 0, len(entries))
		for _, e := range entries {
			lines = append(lines, e.Format())
		}
		return logsMsg{lines: lines}
	}
}

// reloadListing refreshes the read-through listing shown by the current view
// after an action changed server state.
func (m *Model) reloadListing() tea.Cmd {
	switch m.view {
	case ViewHistory:
		return m.historyCmd()
	case ViewBookmarks:
		return m.bookmarksCmd()
	case ViewRecommendations:
		return m.recommendationsCmd()
	default:
		return nil
	}
}
