package state

import (
	"context"
	"errors"
	"sync"

	"github.com/five82/stash/internal/nas"
	"github.com/five82/stash/internal/session"
)

var errBackend = errors.New("backend down")

// fakeAPI is an in-memory nas.API. Set fail to make every call error and
// gate to block calls until the channel is closed.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string
	fail  error
	gate  chan struct{}

	user      *nas.User
	pages     map[int][]nas.File
	lastPage  nas.PageRequest
	history   []nas.File
	bookmarks []nas.File
	tags      []string
	groups    []nas.RecommendationGroup
	chat      []nas.ChatMessage
	token     string
}

var _ nas.API = (*fakeAPI)(nil)

func newFakeAPI() *fakeAPI {
	return &fakeAPI{pages: make(map[int][]nas.File)}
}

func (f *fakeAPI) record(name string) error {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	gate := f.gate
	err := f.fail
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeAPI) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) Login(_ context.Context, creds nas.Credentials) (nas.AuthResponse, error) {
	if err := f.record("login"); err != nil {
		return nas.AuthResponse{}, err
	}
	return nas.AuthResponse{Token: f.token}, nil
}

func (f *fakeAPI) Signup(context.Context, nas.Signup) error { return f.record("signup") }

func (f *fakeAPI) FetchUser(context.Context) (*nas.User, error) {
	if err := f.record("user"); err != nil {
		return nil, err
	}
	u := *f.user
	return &u, nil
}

func (f *fakeAPI) UpdateSettings(context.Context, nas.SettingsPatch) error {
	return f.record("settings")
}

func (f *fakeAPI) ListFiles(_ context.Context, page nas.PageRequest) ([]nas.File, error) {
	if err := f.record("files"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPage = page
	src := f.pages[page.Page]
	out := make([]nas.File, len(src))
	for i, file := range src {
		out[i] = file.Clone()
	}
	return out, nil
}

func (f *fakeAPI) FetchFile(context.Context, int64) (*nas.File, error) {
	return nil, f.record("file")
}

func (f *fakeAPI) FetchHistory(context.Context) ([]nas.File, error) {
	if err := f.record("history"); err != nil {
		return nil, err
	}
	return append([]nas.File(nil), f.history...), nil
}

func (f *fakeAPI) FetchBookmarks(context.Context) ([]nas.File, error) {
	if err := f.record("bookmarks"); err != nil {
		return nil, err
	}
	return append([]nas.File(nil), f.bookmarks...), nil
}

func (f *fakeAPI) FetchRecommendations(context.Context) ([]nas.RecommendationGroup, error) {
	if err := f.record("recommendations"); err != nil {
		return nil, err
	}
	return append([]nas.RecommendationGroup(nil), f.groups...), nil
}

func (f *fakeAPI) FetchRelated(context.Context, int64) ([]nas.File, error) {
	return nil, f.record("related")
}

func (f *fakeAPI) FetchTags(context.Context) ([]string, error) {
	if err := f.record("tags"); err != nil {
		return nil, err
	}
	return append([]string(nil), f.tags...), nil
}

func (f *fakeAPI) AddBookmark(context.Context, int64) error    { return f.record("bookmark+") }
func (f *fakeAPI) RemoveBookmark(context.Context, int64) error { return f.record("bookmark-") }
func (f *fakeAPI) Watch(context.Context, int64) error          { return f.record("watch") }

func (f *fakeAPI) AddTag(context.Context, int64, string) error    { return f.record("tag+") }
func (f *fakeAPI) RemoveTag(context.Context, int64, string) error { return f.record("tag-") }

func (f *fakeAPI) DeleteHistory(context.Context, int64) error { return f.record("history-") }
func (f *fakeAPI) ClearHistory(context.Context) error         { return f.record("history-all") }

func (f *fakeAPI) IncrementRecommendations(context.Context, int64) error {
	return f.record("recommend")
}

func (f *fakeAPI) AppendChatMessage(_ context.Context, msg nas.ChatMessage) error {
	if err := f.record("chat"); err != nil {
		return err
	}
	f.mu.Lock()
	f.chat = append(f.chat, msg)
	f.mu.Unlock()
	return nil
}

// fakePersister records what the store writes through.
type fakePersister struct {
	mu       sync.Mutex
	token    session.TokenFile
	snapshot any
	cleared  int
}

func (p *fakePersister) SetToken(_ context.Context, tf session.TokenFile) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = tf
	return nil
}

func (p *fakePersister) SaveSnapshot(_ context.Context, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot = v
	return nil
}

func (p *fakePersister) Clear(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = session.TokenFile{}
	p.snapshot = nil
	p.cleared++
	return nil
}
