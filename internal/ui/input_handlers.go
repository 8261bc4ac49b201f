package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/stash/internal/library"
	"github.com/five82/stash/internal/nas"
)

const filterAll = "all"

// handleKey routes keyboard input. Open prompts own the keyboard before any
// global binding is considered.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.view == ViewLogin {
		return m.handleLoginKey(msg)
	}
	switch m.input {
	case inputSearch:
		return m.handleSearchInput(msg)
	case inputTag:
		return m.handleTagInput(msg)
	}
	if m.view == ViewChat {
		return m.handleChatKey(msg)
	}
	if m.confirmClear {
		m.confirmClear = false
		if msg.String() == "y" {
			m.setStatus("clearing history...")
			return m, m.actionCmd(actionClearHistory, m.store.ClearWatchHistory)
		}
		m.clearStatus()
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
		m.syncBody()
		return m, nil

	case key.Matches(msg, m.keys.Back):
		return m.goBack()

	case key.Matches(msg, m.keys.Logout):
		m.setStatus("logging out...")
		cmd := m.endSession()
		return m, cmd

	case key.Matches(msg, m.keys.ViewFiles):
		m.switchView(ViewFiles)
		return m, nil

	case key.Matches(msg, m.keys.ViewFolders):
		m.switchView(ViewFolders)
		return m, nil

	case key.Matches(msg, m.keys.ViewHistory):
		m.switchView(ViewHistory)
		m.listLoading = true
		m.syncBody()
		return m, m.historyCmd()

	case key.Matches(msg, m.keys.ViewBookmarks):
		m.switchView(ViewBookmarks)
		m.listLoading = true
		m.syncBody()
		return m, m.bookmarksCmd()

	case key.Matches(msg, m.keys.ViewRecommendations):
		m.switchView(ViewRecommendations)
		m.listLoading = true
		m.syncBody()
		return m, m.recommendationsCmd()

	case key.Matches(msg, m.keys.ViewChat):
		m.switchView(ViewChat)
		cmd := m.chatInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.ViewLogs):
		m.switchView(ViewLogs)
		return m, logsCmd(m.logPath)

	case key.Matches(msg, m.keys.ToggleDark):
		return m.toggleSetting(settingDark)

	case key.Matches(msg, m.keys.ToggleView):
		return m.toggleSetting(settingView)

	case key.Matches(msg, m.keys.ToggleAutoPlay):
		return m.toggleSetting(settingAutoPlay)
	}

	if m.view == ViewLogs {
		return m.handleScrollKey(msg)
	}
	return m.handleListKey(msg)
}

// handleListKey processes navigation and file actions for list views.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(-m.itemCount())
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(m.itemCount())
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.pageStep())
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.pageStep())

	case key.Matches(msg, m.keys.Open):
		if row, ok := m.currentRow(); ok && row.IsFolder() {
			m.setFolder(row.Folder.Path, !m.folderExpanded[row.Folder.Path])
			break
		}
		return m.openCurrent()

	case key.Matches(msg, m.keys.ExpandFolder):
		row, ok := m.currentRow()
		if !ok || !row.IsFolder() {
			return m, nil
		}
		m.setFolder(row.Folder.Path, true)

	case key.Matches(msg, m.keys.CollapseFolder):
		row, ok := m.currentRow()
		if !ok {
			return m, nil
		}
		m.collapseAt(row)

	case key.Matches(msg, m.keys.Search):
		if m.view != ViewFiles && m.view != ViewFolders {
			return m, nil
		}
		m.input = inputSearch
		m.searchInput.SetValue(m.snapshot.SearchQuery)
		m.searchInput.CursorEnd()
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Filter):
		if m.view != ViewFiles && m.view != ViewFolders {
			return m, nil
		}
		m.typeFilter = nextTypeFilter(m.typeFilter)
		m.cursor = 0
		m.body.GotoTop()

	case key.Matches(msg, m.keys.Bookmark):
		f, ok := m.targetFile()
		if !ok {
			return m, nil
		}
		return m, m.actionCmd(actionBookmark, func(ctx context.Context) error {
			return m.store.ToggleBookmark(ctx, f.ID)
		})

	case key.Matches(msg, m.keys.Recommend):
		f, ok := m.targetFile()
		if !ok {
			return m, nil
		}
		return m, m.actionCmd(actionRecommend, func(ctx context.Context) error {
			return m.store.IncrementRecommendations(ctx, f.ID)
		})

	case key.Matches(msg, m.keys.Tag):
		f, ok := m.targetFile()
		if !ok {
			return m, nil
		}
		m.input = inputTag
		m.tagTarget = f.ID
		m.tagSuggestions = nil
		m.tagInput.Reset()
		cmd := tea.Batch(m.tagInput.Focus(), m.tagSuggestionsCmd(f.ID))
		return m, cmd

	case key.Matches(msg, m.keys.DeleteEntry):
		if m.view != ViewHistory {
			return m, nil
		}
		f, ok := m.currentFile()
		if !ok {
			return m, nil
		}
		return m, m.actionCmd(actionDeleteHistory, func(ctx context.Context) error {
			return m.store.DeleteWatchHistory(ctx, f.ID)
		})

	case key.Matches(msg, m.keys.ClearHistory):
		if m.view != ViewHistory || len(m.history) == 0 {
			return m, nil
		}
		m.confirmClear = true
		m.setStatus("clear all watch history? y/n")
		return m, nil

	default:
		return m, nil
	}

	m.syncBody()
	if m.view == ViewFiles {
		return m, m.scrollCmd()
	}
	return m, nil
}

// handleScrollKey scrolls the log body.
func (m Model) handleScrollKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.body.LineUp(1)
	case key.Matches(msg, m.keys.Down):
		m.body.LineDown(1)
	case key.Matches(msg, m.keys.Top):
		m.body.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.body.GotoBottom()
	case key.Matches(msg, m.keys.PageUp):
		m.body.HalfViewUp()
	case key.Matches(msg, m.keys.PageDown):
		m.body.HalfViewDown()
	}
	return m, nil
}

// handleSearchInput edits the search prompt. Enter applies the query; a
// changed query resets pagination and loads the first page again.
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input = inputNone
		m.searchInput.Blur()
		return m, nil
	case "enter":
		m.input = inputNone
		m.searchInput.Blur()
		q := strings.TrimSpace(m.searchInput.Value())
		m.store.SetSearchQuery(q)
		m.cursor = 0
		m.body.GotoTop()
		if m.pager.SetQuery(q) {
			m.pageRetryAt = time.Time{}
			return m, m.fetchMoreCmd()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleTagInput edits the tag prompt. A leading "-" removes the tag; tab
// completes from the suggestions.
func (m Model) handleTagInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input = inputNone
		m.tagInput.Blur()
		return m, nil
	case "tab":
		typed := m.tagInput.Value()
		if s := m.tagCandidates(typed); len(s) > 0 {
			if strings.HasPrefix(strings.TrimSpace(typed), "-") {
				m.tagInput.SetValue("-" + s[0])
			} else {
				m.tagInput.SetValue(s[0])
			}
			m.tagInput.CursorEnd()
		}
		return m, nil
	case "enter":
		m.input = inputNone
		m.tagInput.Blur()
		value := strings.TrimSpace(m.tagInput.Value())
		id := m.tagTarget
		if value == "" {
			return m, nil
		}
		if tag, ok := strings.CutPrefix(value, "-"); ok {
			return m, m.actionCmd(actionRemoveTag, func(ctx context.Context) error {
				return m.store.RemoveTag(ctx, id, tag)
			})
		}
		return m, m.actionCmd(actionAddTag, func(ctx context.Context) error {
			return m.store.AddTag(ctx, id, value)
		})
	}
	var cmd tea.Cmd
	m.tagInput, cmd = m.tagInput.Update(msg)
	return m, cmd
}

// handleChatKey edits the chat prompt; enter sends, esc leaves the view.
func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.chatInput.Blur()
		return m.goBack()
	case "pgup", "pgdown":
		return m.handleScrollKey(msg)
	case "enter":
		question := strings.TrimSpace(m.chatInput.Value())
		if question == "" || m.chatPending {
			return m, nil
		}
		m.chatPending = true
		m.chatInput.Reset()
		return m, m.chatCmd(question)
	}
	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

// updateInputs forwards non-key messages (cursor blink) to the focused prompt.
func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.view == ViewLogin:
		m.login.inputs[m.login.focus], cmd = m.login.inputs[m.login.focus].Update(msg)
	case m.input == inputSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case m.input == inputTag:
		m.tagInput, cmd = m.tagInput.Update(msg)
	case m.view == ViewChat:
		m.chatInput, cmd = m.chatInput.Update(msg)
	}
	return m, cmd
}

// openCurrent selects the file under the cursor, records a watch and shows
// its details with related files.
func (m Model) openCurrent() (tea.Model, tea.Cmd) {
	var f nas.File
	if m.view == ViewDetail {
		if len(m.related) == 0 {
			return m, nil
		}
		f = m.related[clamp(m.relatedCursor, len(m.related))]
	} else {
		cur, ok := m.currentFile()
		if !ok {
			return m, nil
		}
		f = cur
	}

	m.store.SelectFile(f)
	if m.view != ViewDetail {
		m.back = m.view
	}
	m.view = ViewDetail
	m.related = nil
	m.relatedFor = f.ID
	m.relatedCursor = 0
	sel := f.Clone()
	m.snapshot.Selected = &sel
	m.body.GotoTop()
	m.syncBody()

	id := f.ID
	return m, tea.Batch(
		m.actionCmd(actionWatch, func(ctx context.Context) error {
			return m.store.Watch(ctx, id)
		}),
		m.relatedCmd(id),
	)
}

// targetFile returns the file an action applies to and makes sure the store
// holds it, so entries from read-through listings can be acted on.
func (m Model) targetFile() (nas.File, bool) {
	if m.view == ViewDetail {
		if m.snapshot.Selected == nil {
			return nas.File{}, false
		}
		return *m.snapshot.Selected, true
	}
	f, ok := m.currentFile()
	if !ok {
		return nas.File{}, false
	}
	if _, held := m.store.File(f.ID); !held {
		m.store.SelectFile(f)
	}
	return f, true
}

func (m *Model) switchView(v View) {
	if m.view == v {
		return
	}
	if m.view != ViewDetail {
		m.back = m.view
	}
	m.view = v
	m.cursor = 0
	m.confirmClear = false
	m.body.GotoTop()
	m.clearStatus()
	m.syncBody()
}

func (m Model) goBack() (tea.Model, tea.Cmd) {
	switch m.view {
	case ViewFiles:
		return m, nil
	case ViewDetail:
		m.store.ClearSelection()
		m.snapshot.Selected = nil
		m.related = nil
		m.relatedFor = 0
	}
	target := m.back
	if target == ViewLogin || target == ViewDetail || target == m.view {
		target = ViewFiles
	}
	m.view = target
	m.back = ViewFiles
	m.cursor = clamp(m.cursor, m.itemCount())
	m.clearStatus()
	m.syncBody()
	return m, m.reloadListing()
}

func (m *Model) moveCursor(delta int) {
	if m.view == ViewDetail {
		m.relatedCursor = clamp(m.relatedCursor+delta, len(m.related))
		return
	}
	step := delta
	if m.view == ViewFiles && m.gridMode() && (delta == 1 || delta == -1) {
		step = delta * m.gridColumns()
	}
	m.cursor = clamp(m.cursor+step, m.itemCount())
}

// setFolder opens or closes one folder of the tree. The map is replaced, not
// mutated, since earlier copies of the model share it.
func (m *Model) setFolder(path string, open bool) {
	next := make(map[string]bool, len(m.folderExpanded)+1)
	for p, v := range m.folderExpanded {
		if v {
			next[p] = true
		}
	}
	if open {
		next[path] = true
	} else {
		delete(next, path)
	}
	m.folderExpanded = next
	m.cursor = clamp(m.cursor, m.itemCount())
}

// collapseAt closes the folder under the cursor, or the enclosing folder
// when the row is a file or an already closed folder, and moves the cursor
// onto the folder that closed.
func (m *Model) collapseAt(row library.TreeRow) {
	target := row.Parent
	if row.IsFolder() && m.folderExpanded[row.Folder.Path] {
		target = row.Folder.Path
	}
	if target == "" {
		return
	}
	m.setFolder(target, false)
	for i, r := range m.folderRows() {
		if r.IsFolder() && r.Folder.Path == target {
			m.cursor = i
			return
		}
	}
}

func (m Model) pageStep() int {
	return max(m.body.Height-1, 1)
}

// cycleTheme moves to the next palette of the current mode and remembers it.
func (m *Model) cycleTheme() {
	name := NextTheme(m.theme.Name, m.theme.Dark)
	if m.theme.Dark {
		m.prefs.DarkTheme = name
	} else {
		m.prefs.LightTheme = name
	}
	m.theme = GetTheme(name, m.theme.Dark)
	m.savePrefs()
}

type setting int

const (
	settingDark setting = iota
	settingView
	settingAutoPlay
)

// toggleSetting flips one server-side display setting. The local copy
// changes when the server accepts the patch.
func (m Model) toggleSetting(which setting) (tea.Model, tea.Cmd) {
	if m.snapshot.User == nil {
		return m, nil
	}
	current := m.snapshot.User.Setting
	var patch nas.SettingsPatch
	switch which {
	case settingDark:
		dark := !current.DarkMode
		patch.DarkMode = &dark
	case settingView:
		view := nas.ViewGrid
		if current.DefaultView == nas.ViewGrid {
			view = nas.ViewList
		}
		patch.DefaultView = &view
	case settingAutoPlay:
		autoPlay := !current.AutoPlay
		patch.AutoPlay = &autoPlay
	}
	return m, m.actionCmd(actionSettings, func(ctx context.Context) error {
		return m.store.UpdateUserSettings(ctx, patch)
	})
}

func nextTypeFilter(current string) string {
	options := []string{filterAll}
	for _, t := range nas.FileTypes() {
		options = append(options, string(t))
	}
	for i, opt := range options {
		if opt == current {
			return options[(i+1)%len(options)]
		}
	}
	return filterAll
}

// tagCandidates lists completions for the tag prompt: the file's own tags
// after a leading "-", the suggestion vocabulary otherwise.
func (m Model) tagCandidates(typed string) []string {
	source := m.tagSuggestions
	if strings.HasPrefix(strings.TrimSpace(typed), "-") {
		source = nil
		if f, ok := m.store.File(m.tagTarget); ok {
			source = f.Tags
		}
	}
	return matchingSuggestions(source, typed)
}

// matchingSuggestions keeps the suggestions starting with the typed prefix.
func matchingSuggestions(suggestions []string, prefix string) []string {
	prefix = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(prefix), "-"))
	var out []string
	for _, s := range suggestions {
		if strings.HasPrefix(strings.ToLower(s), prefix) {
			out = append(out, s)
		}
	}
	return out
}
