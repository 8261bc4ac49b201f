package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/stash/internal/library"
	"github.com/five82/stash/internal/nas"
	"github.com/five82/stash/internal/pager"
	"github.com/five82/stash/internal/prefs"
	"github.com/five82/stash/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewLogin View = iota
	ViewFiles
	ViewDetail
	ViewHistory
	ViewBookmarks
	ViewRecommendations
	ViewChat
	ViewLogs
	ViewFolders
)

// inputMode is the one-line prompt currently owning the keyboard.
type inputMode int

const (
	inputNone inputMode = iota
	inputSearch
	inputTag
)

const (
	defaultUIInterval = time.Second
	actionTimeout     = 15 * time.Second
	pageRetryDelay    = 5 * time.Second
	logTailLines      = 500
	assistantLimit    = 10
	statusLines       = 3 // header, command bar, status line
)

// Options configures the UI.
type Options struct {
	Store        *state.Store
	Pager        *pager.Pager
	Logger       *zap.Logger
	Prefs        prefs.Prefs
	PrefsPath    string
	LogPath      string
	Server       string
	Expired      <-chan struct{}
	RefreshEvery time.Duration
	Assistant    library.Assistant
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx          context.Context
	store        *state.Store
	pager        *pager.Pager
	log          *zap.Logger
	prefs        prefs.Prefs
	prefsPath    string
	logPath      string
	server       string
	expired      <-chan struct{}
	changes      <-chan struct{}
	unsubscribe  func()
	refreshEvery time.Duration
	assistant    library.Assistant
	keys         keyMap
	loc          *time.Location
	now          func() time.Time

	// UI state
	theme    Theme
	view     View
	back     View
	width    int
	height   int
	ready    bool
	showHelp bool
	body     viewport.Model

	snapshot    state.Snapshot
	lastUpdated time.Time

	// File list state
	cursor      int
	typeFilter  string
	pageRetryAt time.Time

	// Open folders of the tree view, keyed by folder path
	folderExpanded map[string]bool

	// Prompts
	input          inputMode
	searchInput    textinput.Model
	tagInput       textinput.Model
	tagTarget      int64
	tagSuggestions []string

	// Read-through listings
	history       []nas.File
	bookmarks     []nas.File
	groups        []nas.RecommendationGroup
	related       []nas.File
	relatedFor    int64
	listLoading   bool
	relatedCursor int
	confirmClear  bool

	chatInput   textinput.Model
	chatPending bool

	logLines []string

	login loginForm

	status    string
	statusErr bool
}

// New creates a new Bubble Tea model.
func New(ctx context.Context, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	refreshEvery := opts.RefreshEvery
	if refreshEvery <= 0 || refreshEvery > defaultUIInterval {
		refreshEvery = defaultUIInterval
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	p := opts.Prefs
	defaults := prefs.Defaults()
	if p.DarkTheme == "" {
		p.DarkTheme = defaults.DarkTheme
	}
	if p.LightTheme == "" {
		p.LightTheme = defaults.LightTheme
	}

	assistant := opts.Assistant
	if assistant.Limit == 0 {
		assistant.Limit = assistantLimit
	}

	m := Model{
		ctx:            ctx,
		store:          opts.Store,
		pager:          opts.Pager,
		log:            logger,
		prefs:          p,
		prefsPath:      prefsPath,
		logPath:        opts.LogPath,
		server:         opts.Server,
		expired:        opts.Expired,
		unsubscribe:    func() {},
		refreshEvery:   refreshEvery,
		assistant:      assistant,
		keys:           DefaultKeyMap(),
		loc:            time.Local,
		now:            time.Now,
		typeFilter:     filterAll,
		folderExpanded: map[string]bool{library.RootPath: true},
		body:           viewport.New(0, 0),
		searchInput:    newPrompt("Search files...", 100),
		tagInput:       newPrompt("tag, or -tag to remove", 50),
		chatInput:      newPrompt("Ask about your files...", 500),
		login:          newLoginForm(p.LastUsername),
	}

	if m.store != nil {
		m.changes, m.unsubscribe = m.store.Subscribe()
		m.snapshot = m.store.Snapshot()
	}
	m.view = ViewLogin
	if m.snapshot.Authenticated() {
		m.view = ViewFiles
	}
	m.applyTheme()
	return m
}

func newPrompt(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	return ti
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.refreshEvery),
		waitExpiredCmd(m.ctx, m.expired),
		waitChangeCmd(m.ctx, m.changes),
		textinput.Blink,
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.view == ViewFiles {
		cmds = append(cmds, m.fetchMoreCmd())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.body.Width = msg.Width
		m.body.Height = max(msg.Height-statusLines, 1)
		m.ready = true
		m.syncBody()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case changedMsg:
		return m, tea.Batch(fetchSnapshotCmd(m.store), waitChangeCmd(m.ctx, m.changes))

	case snapshotMsg:
		return m.handleSnapshot(state.Snapshot(msg))

	case actionMsg:
		return m.handleAction(msg)

	case pageMsg:
		return m.handlePage(msg)

	case loginMsg:
		return m.handleLogin(msg)

	case historyMsg:
		m.listLoading = false
		if msg.err != nil {
			return m.handleListError("load history", msg.err)
		}
		m.history = msg.files
		m.cursor = clamp(m.cursor, len(m.historyItems()))
		m.syncBody()
		return m, nil

	case bookmarksMsg:
		m.listLoading = false
		if msg.err != nil {
			return m.handleListError("load bookmarks", msg.err)
		}
		m.bookmarks = msg.files
		m.cursor = clamp(m.cursor, len(m.bookmarks))
		m.syncBody()
		return m, nil

	case recommendationsMsg:
		m.listLoading = false
		if msg.err != nil {
			return m.handleListError("load recommendations", msg.err)
		}
		m.groups = msg.groups
		m.cursor = clamp(m.cursor, len(m.recommendationItems()))
		m.syncBody()
		return m, nil

	case relatedMsg:
		if msg.err != nil {
			return m.handleListError("load related files", msg.err)
		}
		if m.relatedFor == msg.id {
			m.related = msg.files
			m.relatedCursor = clamp(m.relatedCursor, len(m.related))
			m.syncBody()
		}
		return m, nil

	case tagSuggestionsMsg:
		if msg.err == nil && m.input == inputTag && m.tagTarget == msg.id {
			m.tagSuggestions = msg.tags
		}
		return m, nil

	case logsMsg:
		if msg.err != nil {
			m.log.Debug("log tail failed", zap.Error(msg.err))
			return m, nil
		}
		m.logLines = msg.lines
		m.syncBody()
		return m, nil

	case expiredMsg:
		m.setError("session expired, log in again")
		cmd := tea.Batch(m.endSession(), waitExpiredCmd(m.ctx, m.expired))
		return m, cmd
	}

	return m.updateInputs(msg)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleTick processes the UI tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.refreshEvery)}

	switch m.view {
	case ViewFiles:
		if cmd := m.scrollCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case ViewLogs:
		cmds = append(cmds, logsCmd(m.logPath))
	}
	return m, tea.Batch(cmds...)
}

// handleSnapshot applies a store snapshot and follows sign-in state changes.
func (m Model) handleSnapshot(snap state.Snapshot) (tea.Model, tea.Cmd) {
	m.snapshot = snap
	m.lastUpdated = m.now()
	m.applyTheme()

	var cmd tea.Cmd
	switch {
	case snap.Authenticated() && m.view == ViewLogin:
		m.view = ViewFiles
		m.cursor = 0
		cmd = m.fetchMoreCmd()
	case !snap.Authenticated() && m.view != ViewLogin:
		m.resetListings()
		m.input = inputNone
		m.view = ViewLogin
		m.login.focusFirst()
	}

	m.cursor = clamp(m.cursor, m.itemCount())
	m.syncBody()
	return m, cmd
}

// handleAction reports an action outcome in the status line.
func (m Model) handleAction(msg actionMsg) (tea.Model, tea.Cmd) {
	if msg.action == actionSendMessage {
		m.chatPending = false
	}
	if msg.err != nil {
		if silentError(msg.err) {
			return m, nil
		}
		if errors.Is(msg.err, nas.ErrUnauthorized) && msg.action != actionLogout {
			m.setError("session expired, log in again")
			cmd := m.endSession()
			return m, cmd
		}
		m.setError(fmt.Sprintf("failed to %s, try again", msg.action))
		return m, nil
	}

	if msg.action != actionLogout {
		m.clearStatus()
	}
	return m, m.reloadListing()
}

// handlePage records a page fetch outcome.
func (m Model) handlePage(msg pageMsg) (tea.Model, tea.Cmd) {
	if msg.err == nil {
		m.pageRetryAt = time.Time{}
		return m, nil
	}
	if silentError(msg.err) {
		return m, nil
	}
	if errors.Is(msg.err, nas.ErrUnauthorized) {
		m.setError("session expired, log in again")
		cmd := m.endSession()
		return m, cmd
	}
	m.pageRetryAt = m.now().Add(pageRetryDelay)
	m.setError("failed to load files, try again")
	return m, nil
}

func (m Model) handleListError(action string, err error) (tea.Model, tea.Cmd) {
	m.syncBody()
	if silentError(err) {
		return m, nil
	}
	if errors.Is(err, nas.ErrUnauthorized) {
		m.setError("session expired, log in again")
		cmd := m.endSession()
		return m, cmd
	}
	m.setError(fmt.Sprintf("failed to %s, try again", action))
	return m, nil
}

// endSession resets pagination and logs the store out. The snapshot that
// follows switches the view to the login form.
func (m *Model) endSession() tea.Cmd {
	if m.pager != nil {
		m.pager.Reset()
	}
	m.resetListings()
	return m.actionCmd(actionLogout, m.store.Logout)
}

func (m *Model) resetListings() {
	m.history = nil
	m.bookmarks = nil
	m.groups = nil
	m.related = nil
	m.relatedFor = 0
	m.cursor = 0
	m.relatedCursor = 0
	m.confirmClear = false
	m.chatPending = false
	m.folderExpanded = map[string]bool{library.RootPath: true}
}

// applyTheme picks the palette for the user's dark mode setting.
func (m *Model) applyTheme() {
	dark := m.theme.Dark
	if m.theme.Name == "" {
		dark = true
	}
	if m.snapshot.User != nil {
		dark = m.snapshot.User.Setting.DarkMode
	}
	m.theme = GetTheme(m.prefs.Theme(dark), dark)
}

func (m *Model) setError(status string) {
	m.status = status
	m.statusErr = true
}

func (m *Model) setStatus(status string) {
	m.status = status
	m.statusErr = false
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}

// savePrefs writes local preferences; failures are logged, not shown.
func (m *Model) savePrefs() {
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.log.Warn("save prefs failed", zap.String("path", m.prefsPath), zap.Error(err))
	}
}

// silentError reports errors that need no user feedback: results from an
// ended session, a reset collection or a cancelled context.
func silentError(err error) bool {
	return errors.Is(err, state.ErrSessionEnded) ||
		errors.Is(err, state.ErrStalePage) ||
		errors.Is(err, context.Canceled)
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Store == nil {
		return fmt.Errorf("ui requires a data store")
	}
	if opts.Pager == nil {
		return fmt.Errorf("ui requires a pager")
	}

	m := New(ctx, opts)
	defer m.unsubscribe()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
