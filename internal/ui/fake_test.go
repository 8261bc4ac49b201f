package ui

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/stash/internal/nas"
	"github.com/five82/stash/internal/pager"
	"github.com/five82/stash/internal/state"
)

var errBackend = errors.New("backend down")

// fakeAPI is an in-memory nas.API for driving the model through a real store.
type fakeAPI struct {
	mu        sync.Mutex
	fail      error
	user      nas.User
	pages     map[int][]nas.File
	history   []nas.File
	bookmarks []nas.File
	tags      []string
	chat      []nas.ChatMessage
	patches   []nas.SettingsPatch
}

var _ nas.API = (*fakeAPI)(nil)

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		user:  nas.User{ID: 1, Username: "kim", Setting: nas.Settings{DarkMode: true, DefaultView: nas.ViewList}},
		pages: make(map[int][]nas.File),
	}
}

func (f *fakeAPI) err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail
}

func (f *fakeAPI) setFail(err error) {
	f.mu.Lock()
	f.fail = err
	f.mu.Unlock()
}

func (f *fakeAPI) Login(context.Context, nas.Credentials) (nas.AuthResponse, error) {
	if err := f.err(); err != nil {
		return nas.AuthResponse{}, err
	}
	u := f.user
	return nas.AuthResponse{Token: "token", User: &u}, nil
}

func (f *fakeAPI) Signup(context.Context, nas.Signup) error { return f.err() }

func (f *fakeAPI) FetchUser(context.Context) (*nas.User, error) {
	if err := f.err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.user
	return &u, nil
}

func (f *fakeAPI) UpdateSettings(_ context.Context, patch nas.SettingsPatch) error {
	if err := f.err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.patches = append(f.patches, patch)
	f.mu.Unlock()
	return nil
}

func (f *fakeAPI) ListFiles(_ context.Context, req nas.PageRequest) ([]nas.File, error) {
	if err := f.err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]nas.File(nil), f.pages[req.Page]...), nil
}

func (f *fakeAPI) FetchFile(_ context.Context, id int64) (*nas.File, error) {
	if err := f.err(); err != nil {
		return nil, err
	}
	return &nas.File{ID: id}, nil
}

func (f *fakeAPI) FetchHistory(context.Context) ([]nas.File, error) {
	if err := f.err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]nas.File(nil), f.history...), nil
}

func (f *fakeAPI) FetchBookmarks(context.Context) ([]nas.File, error) {
	if err := f.err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]nas.File(nil), f.bookmarks...), nil
}

func (f *fakeAPI) FetchRecommendations(context.Context) ([]nas.RecommendationGroup, error) {
	return nil, f.err()
}

func (f *fakeAPI) FetchRelated(context.Context, int64) ([]nas.File, error) {
	return nil, f.err()
}

func (f *fakeAPI) FetchTags(context.Context) ([]string, error) {
	if err := f.err(); err != nil {
		return nil, err
	}
	return f.tags, nil
}

func (f *fakeAPI) AddBookmark(context.Context, int64) error              { return f.err() }
func (f *fakeAPI) RemoveBookmark(context.Context, int64) error           { return f.err() }
func (f *fakeAPI) Watch(context.Context, int64) error                    { return f.err() }
func (f *fakeAPI) AddTag(context.Context, int64, string) error           { return f.err() }
func (f *fakeAPI) RemoveTag(context.Context, int64, string) error        { return f.err() }
func (f *fakeAPI) DeleteHistory(context.Context, int64) error            { return f.err() }
func (f *fakeAPI) ClearHistory(context.Context) error                    { return f.err() }
func (f *fakeAPI) IncrementRecommendations(context.Context, int64) error { return f.err() }

func (f *fakeAPI) AppendChatMessage(_ context.Context, msg nas.ChatMessage) error {
	if err := f.err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.chat = append(f.chat, msg)
	f.mu.Unlock()
	return nil
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type harness struct {
	api   *fakeAPI
	store *state.Store
	pager *pager.Pager
	prefs string
}

// newHarness builds a store and pager over api. When signedIn is set the
// user is logged in and page 0 is merged before the model is created.
func newHarness(t *testing.T, api *fakeAPI, signedIn bool) *harness {
	t.Helper()
	store := state.New(api, nil, nil, state.WithClock(func() time.Time { return fixedNow }))
	pg := pager.New(
		func(ctx context.Context, page int) (int, error) {
			files, err := store.FetchFiles(ctx, page)
			return len(files), err
		},
		store.ResetFiles,
		pager.WithThrottle(0),
	)
	h := &harness{api: api, store: store, pager: pg, prefs: filepath.Join(t.TempDir(), "prefs.toml")}
	if signedIn {
		if err := store.Login(context.Background(), nas.Credentials{Username: "kim", Password: "pw"}); err != nil {
			t.Fatalf("Login: %v", err)
		}
		if _, err := pg.FetchMore(context.Background()); err != nil {
			t.Fatalf("FetchMore: %v", err)
		}
	}
	return h
}

func (h *harness) model(t *testing.T) Model {
	t.Helper()
	m := New(context.Background(), Options{
		Store:     h.store,
		Pager:     h.pager,
		PrefsPath: h.prefs,
		Server:    "http://nas.local:8080/api",
	})
	t.Cleanup(m.unsubscribe)
	m.loc = time.UTC
	m.now = func() time.Time { return fixedNow }
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return next.(Model)
}

func sampleFiles() []nas.File {
	return []nas.File{
		{ID: 1, Name: "budget-2026.xlsx", Type: nas.TypeDocument, Path: "/finance/budget-2026.xlsx", Tags: []string{"finance"}},
		{ID: 2, Name: "holiday.mp4", Type: nas.TypeVideo, Path: "/videos/holiday.mp4", AccessCount: 1250},
		{ID: 3, Name: "song.mp3", Type: nas.TypeMusic, Path: "song.mp3"},
	}
}

// press feeds one key to the model.
func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// typeText feeds each rune of s as its own key press.
func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = press(t, m, string(r))
	}
	return m
}

// run executes cmd and feeds its message back, returning the follow-up command.
func run(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command, got nil")
	}
	msg := cmd()
	if msg == nil {
		return m, nil
	}
	next, follow := m.Update(msg)
	return next.(Model), follow
}

// refresh feeds the current store snapshot to the model.
func refresh(t *testing.T, m Model, store *state.Store) Model {
	t.Helper()
	next, _ := m.Update(snapshotMsg(store.Snapshot()))
	return next.(Model)
}
