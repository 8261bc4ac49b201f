package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/stash/internal/nas"
	"github.com/five82/stash/internal/prefs"
)

// runAll executes cmd, expanding batches, and feeds every message back.
// Follow-up commands are not run.
func runAll(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			m = runAll(t, m, c)
		}
		return m
	}
	if msg == nil {
		return m
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func unauthorized() error {
	return &nas.APIError{Method: "POST", Path: "/files/1/bookmark", StatusCode: 401}
}

func TestNewStartsAtLoginWhenSignedOut(t *testing.T) {
	h := newHarness(t, newFakeAPI(), false)
	m := h.model(t)
	if m.view != ViewLogin {
		t.Fatalf("view = %v, want login", m.view)
	}
	if !strings.Contains(m.View(), "Log in to stash") {
		t.Fatalf("login view missing form:\n%s", m.View())
	}
}

func TestNewStartsAtFilesWhenSignedIn(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	h := newHarness(t, api, true)
	m := h.model(t)
	if m.view != ViewFiles {
		t.Fatalf("view = %v, want files", m.view)
	}
	out := m.View()
	for _, want := range []string{"budget-2026.xlsx", "holiday.mp4", "song.mp3", "@kim", "3 files"} {
		if !strings.Contains(out, want) {
			t.Fatalf("View() missing %q:\n%s", want, out)
		}
	}
}

func TestBookmarkKeyTogglesThroughStore(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	h := newHarness(t, api, true)
	m := h.model(t)

	m, cmd := press(t, m, "b")
	m, _ = run(t, m, cmd)

	f, ok := h.store.File(1)
	if !ok {
		t.Fatalf("file 1 not held")
	}
	if !f.Bookmarked || f.BookmarkCount != 1 {
		t.Fatalf("bookmark = %v/%d, want true/1", f.Bookmarked, f.BookmarkCount)
	}
	if m.status != "" {
		t.Fatalf("status = %q, want empty", m.status)
	}
}

func TestFailedActionLeavesStoreAndReports(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	h := newHarness(t, api, true)
	m := h.model(t)
	api.setFail(errBackend)

	m, cmd := press(t, m, "b")
	m, _ = run(t, m, cmd)

	if f, _ := h.store.File(1); f.Bookmarked {
		t.Fatalf("bookmark applied despite failure")
	}
	if m.status != "failed to bookmark, try again" || !m.statusErr {
		t.Fatalf("status = %q (err %v), want failure message", m.status, m.statusErr)
	}
}

func TestUnauthorizedActionEndsSession(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	h := newHarness(t, api, true)
	m := h.model(t)
	api.setFail(unauthorized())

	m, cmd := press(t, m, "b")
	m, logout := run(t, m, cmd)
	if logout == nil {
		t.Fatalf("expected a logout command")
	}
	m, _ = run(t, m, logout)
	m = refresh(t, m, h.store)

	if m.view != ViewLogin {
		t.Fatalf("view = %v, want login", m.view)
	}
	if m.status != "session expired, log in again" {
		t.Fatalf("status = %q", m.status)
	}
	if h.store.Snapshot().Authenticated() {
		t.Fatalf("store still authenticated")
	}
	if len(h.store.Snapshot().Files) != 0 {
		t.Fatalf("files kept after session end")
	}
}

func TestExpiredSignalEndsSession(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	h := newHarness(t, api, true)
	m := h.model(t)

	next, cmd := m.Update(expiredMsg{})
	m = runAll(t, next.(Model), cmd)
	m = refresh(t, m, h.store)

	if m.view != ViewLogin {
		t.Fatalf("view = %v, want login", m.view)
	}
	if m.status != "session expired, log in again" {
		t.Fatalf("status = %q", m.status)
	}
}

func TestSearchResetsPaginationAndRefetches(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	api.pages[1] = []nas.File{{ID: 4, Name: "notes.txt", Type: nas.TypeDocument}}
	h := newHarness(t, api, true)
	m := h.model(t)

	m, _ = press(t, m, "/")
	if m.input != inputSearch {
		t.Fatalf("input = %v, want search", m.input)
	}
	m = typeText(t, m, "holiday")
	m, cmd := press(t, m, "enter")
	if cmd == nil {
		t.Fatalf("expected a page fetch after a query change")
	}
	if got := h.pager.Query(); got != "holiday" {
		t.Fatalf("pager query = %q, want holiday", got)
	}
	snap := h.store.Snapshot()
	if snap.SearchQuery != "holiday" {
		t.Fatalf("store query = %q", snap.SearchQuery)
	}
	if len(snap.Files) != 0 {
		t.Fatalf("collection not reset: %d files", len(snap.Files))
	}

	m, _ = run(t, m, cmd)
	m = refresh(t, m, h.store)
	if got := h.pager.Cursor().Page; got != 1 {
		t.Fatalf("cursor page = %d, want 1", got)
	}
	visible := m.visibleFiles()
	if len(visible) != 1 || visible[0].ID != 2 {
		t.Fatalf("visible = %+v, want holiday.mp4 only", visible)
	}

	// The same query again is not a change.
	m, _ = press(t, m, "/")
	m, cmd = press(t, m, "enter")
	if cmd != nil {
		t.Fatalf("unchanged query should not refetch")
	}
}

func TestScrollLoadsNextPageUntilExhausted(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	api.pages[1] = []nas.File{
		{ID: 4, Name: "notes.txt", Type: nas.TypeDocument},
		{ID: 5, Name: "cover.png", Type: nas.TypeImage},
	}
	h := newHarness(t, api, true)
	m := h.model(t)

	cmd := m.scrollCmd()
	m, _ = run(t, m, cmd)
	if got := len(h.store.Snapshot().Files); got != 5 {
		t.Fatalf("files = %d, want 5", got)
	}

	m, _ = run(t, m, m.scrollCmd())
	if h.pager.HasMore() {
		t.Fatalf("empty page should end pagination")
	}
	if m.scrollCmd() != nil {
		t.Fatalf("scrollCmd after the last page should be nil")
	}
	m = refresh(t, m, h.store)
	if !strings.Contains(m.View(), "End of catalog") {
		t.Fatalf("View() missing end marker:\n%s", m.View())
	}
}

func TestPageFailureBacksOff(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	h := newHarness(t, api, true)
	m := h.model(t)
	api.setFail(errBackend)

	m, _ = run(t, m, m.scrollCmd())
	if m.status != "failed to load files, try again" {
		t.Fatalf("status = %q", m.status)
	}
	if m.scrollCmd() != nil {
		t.Fatalf("scrollCmd inside the retry window should be nil")
	}
	if got := h.pager.Cursor().Page; got != 1 {
		t.Fatalf("cursor page = %d, want 1", got)
	}

	m.now = func() time.Time { return fixedNow.Add(pageRetryDelay + time.Second) }
	api.setFail(nil)
	m, _ = run(t, m, m.scrollCmd())
	if !m.pageRetryAt.IsZero() {
		t.Fatalf("retry window not cleared after success")
	}
}

func TestToggleViewSendsSettingsPatch(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	h := newHarness(t, api, true)
	m := h.model(t)

	m, cmd := press(t, m, "v")
	m, _ = run(t, m, cmd)
	m = refresh(t, m, h.store)

	if len(api.patches) != 1 || api.patches[0].DefaultView == nil || *api.patches[0].DefaultView != nas.ViewGrid {
		t.Fatalf("patches = %+v, want one grid patch", api.patches)
	}
	if !m.gridMode() {
		t.Fatalf("gridMode() = false after toggle")
	}
	if !strings.Contains(m.View(), "holiday.mp4") {
		t.Fatalf("grid view missing file:\n%s", m.View())
	}
}

func TestToggleDarkSwitchesPalette(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	h := newHarness(t, api, true)
	m := h.model(t)
	if !m.theme.Dark {
		t.Fatalf("initial theme %q is not dark", m.theme.Name)
	}

	m, cmd := press(t, m, "d")
	m, _ = run(t, m, cmd)
	m = refresh(t, m, h.store)

	if m.theme.Dark || m.theme.Name != "Paper" {
		t.Fatalf("theme = %q (dark %v), want Paper", m.theme.Name, m.theme.Dark)
	}
}

func TestCycleThemeSavesPrefs(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	h := newHarness(t, api, true)
	m := h.model(t)

	m, _ = press(t, m, "T")
	if m.theme.Name != "Slate" {
		t.Fatalf("theme = %q, want Slate", m.theme.Name)
	}
	saved, err := prefs.Load(h.prefs)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if saved.DarkTheme != "Slate" {
		t.Fatalf("saved dark theme = %q, want Slate", saved.DarkTheme)
	}
}

func TestTagPromptAddsAndRemoves(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	h := newHarness(t, api, true)
	m := h.model(t)

	m, _ = press(t, m, "t")
	if m.input != inputTag || m.tagTarget != 1 {
		t.Fatalf("tag prompt not open for file 1")
	}
	m = typeText(t, m, "work")
	m, cmd := press(t, m, "enter")
	m, _ = run(t, m, cmd)
	if f, _ := h.store.File(1); !f.HasTag("work") {
		t.Fatalf("tags = %v, want work added", f.Tags)
	}

	m, _ = press(t, m, "t")
	m = typeText(t, m, "-finance")
	m, cmd = press(t, m, "enter")
	m, _ = run(t, m, cmd)
	if f, _ := h.store.File(1); f.HasTag("finance") {
		t.Fatalf("tags = %v, want finance removed", f.Tags)
	}
	if m.status != "" {
		t.Fatalf("status = %q", m.status)
	}
}

func TestTagPromptCompletes(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	h := newHarness(t, api, true)
	m := h.model(t)

	m, _ = press(t, m, "t")
	next, _ := m.Update(tagSuggestionsMsg{id: 1, tags: []string{"travel", "work"}})
	m = next.(Model)

	m = typeText(t, m, "wo")
	m, _ = press(t, m, "tab")
	if got := m.tagInput.Value(); got != "work" {
		t.Fatalf("completion = %q, want work", got)
	}

	m.tagInput.SetValue("-fi")
	m, _ = press(t, m, "tab")
	if got := m.tagInput.Value(); got != "-finance" {
		t.Fatalf("removal completion = %q, want -finance", got)
	}

	m, _ = press(t, m, "esc")
	if m.input != inputNone {
		t.Fatalf("esc did not close the prompt")
	}
}

func TestOpenShowsDetailAndBackClearsSelection(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	h := newHarness(t, api, true)
	m := h.model(t)

	m, _ = press(t, m, "j")
	m, cmd := press(t, m, "enter")
	if m.view != ViewDetail {
		t.Fatalf("view = %v, want detail", m.view)
	}
	sel := h.store.Snapshot().Selected
	if sel == nil || sel.ID != 2 {
		t.Fatalf("selected = %+v, want file 2", sel)
	}
	m = runAll(t, m, cmd)
	if f, _ := h.store.File(2); f.WatchedAt == nil {
		t.Fatalf("watch not recorded")
	}
	if !strings.Contains(m.View(), "holiday.mp4") {
		t.Fatalf("detail view missing name:\n%s", m.View())
	}

	m, _ = press(t, m, "esc")
	if m.view != ViewFiles {
		t.Fatalf("view = %v, want files", m.view)
	}
	if h.store.Snapshot().Selected != nil {
		t.Fatalf("selection kept after back")
	}
}

func TestStaleRelatedResultIgnored(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	h := newHarness(t, api, true)
	m := h.model(t)

	m, _ = press(t, m, "enter")
	next, _ := m.Update(relatedMsg{id: 99, files: []nas.File{{ID: 7, Name: "other.mp4"}}})
	m = next.(Model)
	if len(m.related) != 0 {
		t.Fatalf("related for another file accepted")
	}
	next, _ = m.Update(relatedMsg{id: 1, files: []nas.File{{ID: 2, Name: "holiday.mp4"}}})
	m = next.(Model)
	if len(m.related) != 1 {
		t.Fatalf("related = %d, want 1", len(m.related))
	}
}

func TestHistoryViewGroupsByMonth(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	march := time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	api.history = []nas.File{
		{ID: 2, Name: "holiday.mp4", Type: nas.TypeVideo, WatchedAt: &march},
		{ID: 3, Name: "song.mp3", Type: nas.TypeMusic, WatchedAt: &march},
		{ID: 1, Name: "budget-2026.xlsx", Type: nas.TypeDocument, WatchedAt: &feb},
	}
	h := newHarness(t, api, true)
	m := h.model(t)

	m, cmd := press(t, m, "H")
	if m.view != ViewHistory {
		t.Fatalf("view = %v, want history", m.view)
	}
	m, _ = run(t, m, cmd)
	out := m.View()
	for _, want := range []string{"March 2026 (2 files)", "February 2026 (1 files)", "3 watched"} {
		if !strings.Contains(out, want) {
			t.Fatalf("View() missing %q:\n%s", want, out)
		}
	}

	m, cmd = press(t, m, "D")
	m, reload := run(t, m, cmd)
	if reload == nil {
		t.Fatalf("expected the history listing to reload after delete")
	}
}

func TestClearHistoryAsksFirst(t *testing.T) {
	api := newFakeAPI()
	now := fixedNow
	api.history = []nas.File{{ID: 2, Name: "holiday.mp4", Type: nas.TypeVideo, WatchedAt: &now}}
	h := newHarness(t, api, true)
	m := h.model(t)

	m, cmd := press(t, m, "H")
	m, _ = run(t, m, cmd)

	m, _ = press(t, m, "C")
	if !m.confirmClear {
		t.Fatalf("clear did not ask for confirmation")
	}
	m, cmd = press(t, m, "n")
	if cmd != nil || m.confirmClear {
		t.Fatalf("declining should do nothing")
	}

	m, _ = press(t, m, "C")
	m, cmd = press(t, m, "y")
	if cmd == nil {
		t.Fatalf("confirming should clear history")
	}
	m, _ = run(t, m, cmd)
	if m.status != "" {
		t.Fatalf("status = %q", m.status)
	}
}

func TestChatAnswersFromLoadedFiles(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	h := newHarness(t, api, true)
	m := h.model(t)

	m, _ = press(t, m, "c")
	if m.view != ViewChat {
		t.Fatalf("view = %v, want chat", m.view)
	}
	m = typeText(t, m, "budget")
	m, cmd := press(t, m, "enter")
	if !m.chatPending {
		t.Fatalf("chat not pending after send")
	}
	m, _ = run(t, m, cmd)
	if m.chatPending {
		t.Fatalf("chat still pending")
	}

	chat := h.store.Snapshot().ChatHistory
	if len(chat) != 2 {
		t.Fatalf("chat = %d messages, want 2", len(chat))
	}
	if chat[0].Role != nas.RoleUser || chat[1].Role != nas.RoleAssistant {
		t.Fatalf("roles = %s/%s", chat[0].Role, chat[1].Role)
	}
	if !strings.Contains(chat[1].Content, "budget-2026.xlsx") {
		t.Fatalf("answer = %q, want it to name the file", chat[1].Content)
	}
	if len(api.chat) != 2 {
		t.Fatalf("server chat = %d, want 2", len(api.chat))
	}
}

func TestLoginFlowSwitchesToFiles(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	h := newHarness(t, api, false)
	m := h.model(t)

	m = typeText(t, m, "kim")
	m, _ = press(t, m, "tab")
	m = typeText(t, m, "pw")
	m, cmd := press(t, m, "enter")
	if !m.login.pending {
		t.Fatalf("login not pending")
	}

	m, cmd = run(t, m, cmd)
	saved, err := prefs.Load(h.prefs)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if saved.LastUsername != "kim" {
		t.Fatalf("last username = %q, want kim", saved.LastUsername)
	}

	m, cmd = run(t, m, cmd)
	if m.view != ViewFiles {
		t.Fatalf("view = %v, want files", m.view)
	}
	m, _ = run(t, m, cmd)
	if got := len(h.store.Snapshot().Files); got != 3 {
		t.Fatalf("files = %d, want 3", got)
	}
}

func TestLoginErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		signup bool
		want   string
	}{
		{"bad credentials", &nas.APIError{Method: "POST", Path: "/auth/login", StatusCode: 401}, false, "invalid username or password"},
		{"taken", &nas.APIError{Method: "POST", Path: "/auth/signup", StatusCode: 409}, true, "username already taken"},
		{"signup down", errBackend, true, "failed to sign up, try again"},
		{"login down", errBackend, false, "failed to log in, try again"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, newFakeAPI(), false)
			m := h.model(t)
			next, _ := m.Update(loginMsg{username: "kim", signup: tt.signup, err: tt.err})
			m = next.(Model)
			if m.status != tt.want {
				t.Fatalf("status = %q, want %q", m.status, tt.want)
			}
			if m.view != ViewLogin {
				t.Fatalf("view = %v, want login", m.view)
			}
		})
	}
}

func TestLoginRequiresFields(t *testing.T) {
	h := newHarness(t, newFakeAPI(), false)
	m := h.model(t)

	m, cmd := press(t, m, "enter")
	if cmd != nil {
		t.Fatalf("empty form should not submit")
	}
	if m.status != "username and password are required" {
		t.Fatalf("status = %q", m.status)
	}

	m = typeText(t, m, "kim")
	m, _ = press(t, m, "tab")
	m = typeText(t, m, "pw")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m = next.(Model)
	m, cmd = press(t, m, "enter")
	if cmd != nil {
		t.Fatalf("signup without email should not submit")
	}
	if m.status != "email is required to sign up" {
		t.Fatalf("status = %q", m.status)
	}
}

func TestLogsViewShowsTail(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	h := newHarness(t, api, true)
	m := h.model(t)

	path := filepath.Join(t.TempDir(), "stash.log")
	line := `{"level":"info","ts":"2026-03-14T09:30:00.000Z","msg":"session restored","username":"kim"}` + "\n"
	if err := os.WriteFile(path, []byte(line), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	m.logPath = path

	m, cmd := press(t, m, "l")
	if m.view != ViewLogs {
		t.Fatalf("view = %v, want logs", m.view)
	}
	m, _ = run(t, m, cmd)
	if !strings.Contains(m.View(), "session restored") {
		t.Fatalf("logs view missing entry:\n%s", m.View())
	}
}

func TestHelpOverlay(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	h := newHarness(t, api, true)
	m := h.model(t)

	m, _ = press(t, m, "?")
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not shown")
	}
	m, _ = press(t, m, "j")
	if m.showHelp {
		t.Fatalf("any key should close help")
	}
}

func TestQuitKey(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	h := newHarness(t, api, true)
	m := h.model(t)

	_, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatalf("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q did not quit")
	}
}

func TestTypeFilterCyclesVisibleFiles(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	h := newHarness(t, api, true)
	m := h.model(t)

	m, _ = press(t, m, "f")
	if m.typeFilter != "video" {
		t.Fatalf("filter = %q, want video", m.typeFilter)
	}
	visible := m.visibleFiles()
	if len(visible) != 1 || visible[0].Name != "holiday.mp4" {
		t.Fatalf("visible = %+v", visible)
	}
}

func TestFolderTreeExpandsAndOpens(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	h := newHarness(t, api, true)
	m := h.model(t)

	m, _ = press(t, m, "E")
	if m.view != ViewFolders {
		t.Fatalf("view = %v, want folders", m.view)
	}
	out := m.View()
	for _, want := range []string{"▾ / (1)", "▸ finance (1)", "▸ videos (1)", "song.mp3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("View() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "holiday.mp4") {
		t.Fatalf("collapsed folder shows its files:\n%s", out)
	}
	if got := m.itemCount(); got != 4 {
		t.Fatalf("rows = %d, want 4", got)
	}

	// Enter on a folder toggles it.
	m, _ = press(t, m, "j")
	m, _ = press(t, m, "j")
	m, _ = press(t, m, "enter")
	if m.view != ViewFolders || !m.folderExpanded["/videos"] {
		t.Fatalf("view = %v expanded = %v, want /videos open", m.view, m.folderExpanded)
	}
	if !strings.Contains(m.View(), "▾ videos (1)") || !strings.Contains(m.View(), "holiday.mp4") {
		t.Fatalf("expanded folder missing its file:\n%s", m.View())
	}
	if got := m.itemCount(); got != 5 {
		t.Fatalf("rows = %d, want 5", got)
	}

	// Left on a file closes its folder and lands on it.
	m, _ = press(t, m, "j")
	if f, ok := m.currentFile(); !ok || f.ID != 2 {
		t.Fatalf("current = %+v %v, want holiday.mp4", f, ok)
	}
	m, _ = press(t, m, "left")
	if m.folderExpanded["/videos"] || m.cursor != 2 {
		t.Fatalf("after collapse expanded = %v cursor = %d, want closed at 2", m.folderExpanded, m.cursor)
	}
	if _, ok := m.currentFile(); ok {
		t.Fatalf("folder row reported as a file")
	}

	m, _ = press(t, m, "right")
	m, _ = press(t, m, "j")
	m, cmd := press(t, m, "enter")
	if m.view != ViewDetail {
		t.Fatalf("view = %v, want detail", m.view)
	}
	if sel := h.store.Snapshot().Selected; sel == nil || sel.ID != 2 {
		t.Fatalf("selected = %+v, want file 2", sel)
	}
	m = runAll(t, m, cmd)

	m, _ = press(t, m, "esc")
	if m.view != ViewFolders || !m.folderExpanded["/videos"] {
		t.Fatalf("back = %v expanded = %v, want folders with /videos open", m.view, m.folderExpanded)
	}

	m, _ = press(t, m, "f")
	if m.typeFilter == filterAll {
		t.Fatalf("type filter ignored in folders view")
	}
}

func TestFolderTreeResetsOnLogout(t *testing.T) {
	api := newFakeAPI()
	api.pages[0] = sampleFiles()
	h := newHarness(t, api, true)
	m := h.model(t)

	m, _ = press(t, m, "E")
	m, _ = press(t, m, "j")
	m, _ = press(t, m, "right")
	if !m.folderExpanded["/finance"] {
		t.Fatalf("expanded = %v, want /finance open", m.folderExpanded)
	}

	m, cmd := press(t, m, "L")
	m = runAll(t, m, cmd)
	m = refresh(t, m, h.store)
	if m.view != ViewLogin {
		t.Fatalf("view = %v, want login", m.view)
	}
	if m.folderExpanded["/finance"] || !m.folderExpanded["/"] {
		t.Fatalf("expanded = %v, want only the root open", m.folderExpanded)
	}
}
