package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/stash/internal/library"
	"github.com/five82/stash/internal/nas"
)

const (
	cardWidth     = 28
	cardRowHeight = 4 // three card lines and a spacer
)

// renderMain renders the full UI.
func (m Model) renderMain() string {
	if m.view == ViewLogin {
		return m.renderLogin()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.body.View())
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	return b.String()
}

// syncBody re-renders the active view into the body viewport and keeps the
// cursor row on screen. Log and chat views stay pinned to the bottom while
// the user has not scrolled away from it.
func (m *Model) syncBody() {
	if !m.ready {
		return
	}
	wasBottom := m.body.AtBottom()
	content, first, last := m.renderBody()
	m.body.SetContent(content)

	switch m.view {
	case ViewLogs, ViewChat:
		if wasBottom {
			m.body.GotoBottom()
		}
	default:
		m.keepVisible(first, last)
	}
}

func (m *Model) keepVisible(first, last int) {
	if first < 0 {
		return
	}
	h := m.body.Height
	switch {
	case first < m.body.YOffset:
		m.body.SetYOffset(first)
	case last >= m.body.YOffset+h:
		m.body.SetYOffset(last - h + 1)
	}
}

// renderBody returns the content of the active view and the line span of
// the cursor row, or -1 when there is none.
func (m Model) renderBody() (string, int, int) {
	switch m.view {
	case ViewFiles:
		return m.renderFiles()
	case ViewFolders:
		return m.renderFolders()
	case ViewDetail:
		return m.renderDetail()
	case ViewHistory:
		return m.renderHistory()
	case ViewBookmarks:
		return m.renderBookmarks()
	case ViewRecommendations:
		return m.renderRecommendations()
	case ViewChat:
		return m.renderChat(), -1, -1
	case ViewLogs:
		return m.renderLogs(), -1, -1
	default:
		return "", -1, -1
	}
}

// visibleFiles applies the search query and type filter to the merged collection.
func (m Model) visibleFiles() []nas.File {
	return library.FilterType(library.Search(m.snapshot.Files, m.snapshot.SearchQuery), m.typeFilter)
}

// historyItems flattens the month groups in display order.
func (m Model) historyItems() []nas.File {
	var out []nas.File
	for _, g := range library.GroupByMonth(m.history, m.loc) {
		out = append(out, g.Files...)
	}
	return out
}

// recommendationItems flattens the recommendation groups in display order.
func (m Model) recommendationItems() []nas.File {
	var out []nas.File
	for _, g := range m.groups {
		out = append(out, g.Files...)
	}
	return out
}

// items returns the navigable files of the current view.
func (m Model) items() []nas.File {
	switch m.view {
	case ViewFiles:
		return m.visibleFiles()
	case ViewHistory:
		return m.historyItems()
	case ViewBookmarks:
		return m.bookmarks
	case ViewRecommendations:
		return m.recommendationItems()
	default:
		return nil
	}
}

func (m Model) itemCount() int {
	if m.view == ViewFolders {
		return len(m.folderRows())
	}
	return len(m.items())
}

// folderRows lists the visible rows of the folder tree built from the
// filtered collection.
func (m Model) folderRows() []library.TreeRow {
	return library.Flatten(library.BuildTree(m.visibleFiles()), m.folderExpanded)
}

// currentRow returns the tree row under the cursor in the folders view.
func (m Model) currentRow() (library.TreeRow, bool) {
	if m.view != ViewFolders {
		return library.TreeRow{}, false
	}
	rows := m.folderRows()
	if len(rows) == 0 {
		return library.TreeRow{}, false
	}
	return rows[clamp(m.cursor, len(rows))], true
}

// currentFile returns the file under the cursor in list views.
func (m Model) currentFile() (nas.File, bool) {
	if m.view == ViewFolders {
		row, ok := m.currentRow()
		if !ok || row.IsFolder() {
			return nas.File{}, false
		}
		return *row.File, true
	}
	items := m.items()
	if len(items) == 0 {
		return nas.File{}, false
	}
	return items[clamp(m.cursor, len(items))], true
}

func (m Model) gridMode() bool {
	return m.snapshot.User != nil && m.snapshot.User.Setting.DefaultView == nas.ViewGrid
}

func (m Model) gridColumns() int {
	return max(m.width/cardWidth, 1)
}

func (m Model) renderFiles() (string, int, int) {
	styles := m.theme.Styles()
	files := m.visibleFiles()

	var b strings.Builder
	b.WriteString(m.renderFilesSummary(len(files)))
	b.WriteString("\n")

	if len(files) == 0 {
		switch {
		case m.pager != nil && m.pager.Loading():
			b.WriteString(styles.MutedText.Render("Loading files..."))
		case len(m.snapshot.Files) == 0:
			b.WriteString(styles.MutedText.Render("No files."))
		default:
			b.WriteString(styles.MutedText.Render("No files match."))
		}
		return b.String(), -1, -1
	}

	cursor := clamp(m.cursor, len(files))
	var first, last int
	if m.gridMode() {
		grid, row := m.renderGrid(files, cursor)
		b.WriteString(grid)
		first = 1 + row*cardRowHeight
		last = first + cardRowHeight - 1
	} else {
		for i, f := range files {
			b.WriteString(m.renderFileRow(f, i == cursor, ""))
			b.WriteString("\n")
		}
		first = 1 + cursor
		last = first
	}

	if m.pager != nil {
		switch {
		case m.pager.Loading():
			b.WriteString(styles.MutedText.Render("Loading more..."))
		case !m.pager.HasMore():
			b.WriteString(styles.FaintText.Render("End of catalog"))
		}
	}
	return b.String(), first, last
}

func (m Model) renderFilesSummary(shown int) string {
	styles := m.theme.Styles()
	parts := []string{
		fmt.Sprintf("%d of %d loaded", shown, len(m.snapshot.Files)),
		"type: " + m.typeFilter,
	}
	if q := m.snapshot.SearchQuery; q != "" {
		parts = append(parts, fmt.Sprintf("search: %q", q))
	}
	return styles.MutedText.Render(strings.Join(parts, " · "))
}

func (m Model) renderFolders() (string, int, int) {
	styles := m.theme.Styles()
	files := m.visibleFiles()

	lines := []string{m.renderFilesSummary(len(files))}
	if len(files) == 0 {
		msg := "No files match."
		switch {
		case m.pager != nil && m.pager.Loading():
			msg = "Loading files..."
		case len(m.snapshot.Files) == 0:
			msg = "No files."
		}
		return strings.Join(append(lines, styles.MutedText.Render(msg)), "\n"), -1, -1
	}

	rows := library.Flatten(library.BuildTree(files), m.folderExpanded)
	cursor := clamp(m.cursor, len(rows))
	width := max(m.width, 40)
	for i, r := range rows {
		indent := strings.Repeat("  ", r.Depth)
		var line string
		if r.IsFolder() {
			chevron := "▸"
			if m.folderExpanded[r.Folder.Path] {
				chevron = "▾"
			}
			line = fmt.Sprintf("%s%s %s (%d)", indent, chevron, r.Folder.Name, len(r.Folder.Files))
		} else {
			mark := " "
			if r.File.Bookmarked {
				mark = "★"
			}
			line = fmt.Sprintf("%s%s %s  ▶ %s", indent, mark, r.File.Name, library.FormatCount(r.File.AccessCount))
		}
		line = truncate(line, width)
		switch {
		case i == cursor:
			line = styles.Selected.Width(width).Render(line)
		case r.IsFolder():
			line = styles.AccentText.Render(line)
		default:
			line = styles.Text.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), 1 + cursor, 1 + cursor
}

// renderFileRow renders one list line. suffix is appended after the counters.
func (m Model) renderFileRow(f nas.File, selected bool, suffix string) string {
	styles := m.theme.Styles()
	width := max(m.width, 60)
	nameWidth := max(width-56, 16)

	mark := " "
	if f.Bookmarked {
		mark = "★"
	}
	stats := fmt.Sprintf("▶ %-5s ♥ %-4s", library.FormatCount(f.AccessCount), library.FormatCount(f.BookmarkCount))
	folder := padRight(truncate(library.ParentFolder(f.Path), 14), 14)
	name := padRight(truncate(f.Name, nameWidth), nameWidth)
	kind := padRight(string(f.Type), 9)

	if selected {
		line := strings.Join([]string{mark, name, kind, folder, stats, suffix}, " ")
		return styles.Selected.Width(width).Render(line)
	}
	return strings.Join([]string{
		styles.WarningText.Render(mark),
		styles.Text.Render(name),
		styles.TypeStyle(f.Type).Padding(0).Render(kind),
		styles.MutedText.Render(folder),
		styles.FaintText.Render(stats),
		styles.MutedText.Render(suffix),
	}, " ")
}

// renderGrid lays files out as cards. It returns the grid and the row index
// holding the cursor.
func (m Model) renderGrid(files []nas.File, cursor int) (string, int) {
	styles := m.theme.Styles()
	cols := m.gridColumns()

	var rows []string
	for start := 0; start < len(files); start += cols {
		end := min(start+cols, len(files))
		cards := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cards = append(cards, m.renderCard(files[i], i == cursor, styles))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return strings.Join(rows, "\n\n") + "\n", cursor / cols
}

func (m Model) renderCard(f nas.File, selected bool, styles Styles) string {
	inner := cardWidth - 2
	mark := ""
	if f.Bookmarked {
		mark = "★ "
	}
	lines := []string{
		truncate(mark+f.Name, inner),
		string(f.Type) + " · " + string(library.KindFromName(f.Name)),
		fmt.Sprintf("▶ %s  ♥ %s", library.FormatCount(f.AccessCount), library.FormatCount(f.BookmarkCount)),
	}
	card := lipgloss.NewStyle().Width(inner).MarginRight(2)
	if selected {
		card = card.Background(lipgloss.Color(m.theme.SelectionBg)).
			Foreground(lipgloss.Color(m.theme.SelectionText))
		return card.Render(strings.Join(lines, "\n"))
	}
	lines[0] = styles.Text.Bold(true).Render(lines[0])
	lines[1] = styles.TypeStyle(f.Type).Padding(0).Render(lines[1])
	lines[2] = styles.FaintText.Render(lines[2])
	return card.Render(strings.Join(lines, "\n"))
}

func (m Model) renderDetail() (string, int, int) {
	styles := m.theme.Styles()
	sel := m.snapshot.Selected
	if sel == nil {
		return styles.MutedText.Render("No file selected."), -1, -1
	}
	f := *sel

	label := func(name string) string { return styles.MutedText.Render(padRight(name, 16)) }
	watched := "never"
	if f.WatchedAt != nil {
		watched = f.WatchedAt.In(m.loc).Format("2006-01-02 15:04")
	}
	tags := "none"
	if len(f.Tags) > 0 {
		tags = "#" + strings.Join(f.Tags, " #")
	}
	bookmarked := "no"
	if f.Bookmarked {
		bookmarked = "yes"
	}

	lines := []string{
		styles.AccentText.Bold(true).Render(f.Name),
		styles.TypeStyle(f.Type).Render(string(f.Type)) + " " + styles.FaintText.Render(string(library.KindFromName(f.Name))),
		"",
		label("Folder") + styles.Text.Render(library.ParentFolder(f.Path)),
		label("Path") + styles.Text.Render(truncateMiddle(f.Path, max(m.width-18, 20))),
		label("Modified") + styles.Text.Render(f.LastWriteTime.In(m.loc).Format("2006-01-02 15:04")),
		label("Last watched") + styles.Text.Render(watched),
		label("Views") + styles.Text.Render(library.FormatCount(f.AccessCount)),
		label("Bookmarked") + styles.Text.Render(fmt.Sprintf("%s (%s)", bookmarked, library.FormatCount(f.BookmarkCount))),
		label("Recommended") + styles.Text.Render(library.FormatCount(f.Recommendations)),
		label("Tags") + styles.InfoText.Render(tags),
	}
	if f.URL != "" {
		lines = append(lines, label("URL")+styles.Text.Render(f.URL))
	}
	if f.Description != "" {
		lines = append(lines, "", lipgloss.NewStyle().Width(max(m.width-2, 20)).Render(styles.Text.Render(f.Description)))
	}
	if m.snapshot.User != nil && m.snapshot.User.Setting.AutoPlay && f.URL != "" {
		lines = append(lines, "", styles.SuccessText.Render("Autoplay is on: "+f.URL))
	}

	lines = append(lines, "", styles.AccentText.Bold(true).Render("Related files"))
	first := -1
	switch {
	case m.relatedFor == f.ID && m.related == nil:
		lines = append(lines, styles.MutedText.Render("Loading..."))
	case len(m.related) == 0:
		lines = append(lines, styles.MutedText.Render("No related files."))
	default:
		cursor := clamp(m.relatedCursor, len(m.related))
		for i, r := range m.related {
			if i == cursor {
				first = strings.Count(strings.Join(lines, "\n"), "\n") + 1
			}
			lines = append(lines, m.renderFileRow(r, i == cursor, ""))
		}
	}
	return strings.Join(lines, "\n"), first, first
}

func (m Model) renderHistory() (string, int, int) {
	styles := m.theme.Styles()
	if m.listLoading && m.history == nil {
		return styles.MutedText.Render("Loading history..."), -1, -1
	}
	groups := library.GroupByMonth(m.history, m.loc)
	if len(groups) == 0 {
		return styles.MutedText.Render("No watch history."), -1, -1
	}

	lines := []string{renderCounts(styles, "watched", library.CountByType(m.history)), ""}
	first, idx := -1, 0
	cursor := clamp(m.cursor, len(m.historyItems()))
	for _, g := range groups {
		lines = append(lines, styles.AccentText.Bold(true).Render(g.Label()))
		for _, f := range g.Files {
			if idx == cursor {
				first = len(lines)
			}
			when := f.WatchedAt.In(m.loc).Format("Jan 2 15:04")
			lines = append(lines, m.renderFileRow(f, idx == cursor, when))
			idx++
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n"), first, first
}

func (m Model) renderBookmarks() (string, int, int) {
	styles := m.theme.Styles()
	if m.listLoading && m.bookmarks == nil {
		return styles.MutedText.Render("Loading bookmarks..."), -1, -1
	}
	if len(m.bookmarks) == 0 {
		return styles.MutedText.Render("No bookmarks."), -1, -1
	}

	lines := []string{renderCounts(styles, "bookmarked", library.CountByType(m.bookmarks)), ""}
	cursor := clamp(m.cursor, len(m.bookmarks))
	first := -1
	for i, f := range m.bookmarks {
		if i == cursor {
			first = len(lines)
		}
		lines = append(lines, m.renderFileRow(f, i == cursor, ""))
	}
	return strings.Join(lines, "\n"), first, first
}

func (m Model) renderRecommendations() (string, int, int) {
	styles := m.theme.Styles()
	if m.listLoading && m.groups == nil {
		return styles.MutedText.Render("Loading recommendations..."), -1, -1
	}
	if len(m.recommendationItems()) == 0 {
		return styles.MutedText.Render("No recommendations."), -1, -1
	}

	var lines []string
	first, idx := -1, 0
	cursor := clamp(m.cursor, len(m.recommendationItems()))
	for _, g := range m.groups {
		if len(g.Files) == 0 {
			continue
		}
		heading := fmt.Sprintf("%s (%d files)", g.Reason, len(g.Files))
		lines = append(lines, styles.AccentText.Bold(true).Render(heading))
		for _, f := range g.Files {
			if idx == cursor {
				first = len(lines)
			}
			lines = append(lines, m.renderFileRow(f, idx == cursor, fmt.Sprintf("+%d", f.Recommendations)))
			idx++
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n"), first, first
}

// renderCounts renders "N label · video 3 · music 1", skipping empty types.
func renderCounts(styles Styles, label string, c library.Counts) string {
	parts := []string{fmt.Sprintf("%d %s", c.Total, label)}
	for _, t := range nas.FileTypes() {
		if n := c.Of(t); n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", t, n))
		}
	}
	return styles.MutedText.Render(strings.Join(parts, " · "))
}

func (m Model) renderChat() string {
	styles := m.theme.Styles()
	if len(m.snapshot.ChatHistory) == 0 && !m.chatPending {
		return styles.MutedText.Render("Ask about your files by name or tag, for example \"budget\" or \"travel\".")
	}

	width := max(m.width-2, 20)
	var lines []string
	for _, msg := range m.snapshot.ChatHistory {
		who, style := "You", styles.AccentText
		if msg.Role == nas.RoleAssistant {
			who, style = "Assistant", styles.SuccessText
		}
		head := style.Bold(true).Render(who)
		if !msg.CreatedAt.IsZero() {
			head += " " + styles.FaintText.Render(msg.CreatedAt.In(m.loc).Format("15:04"))
		}
		lines = append(lines, head)
		lines = append(lines, lipgloss.NewStyle().Width(width).PaddingLeft(2).Render(msg.Content), "")
	}
	if m.chatPending {
		lines = append(lines, styles.MutedText.Render("Assistant is thinking..."))
	}
	if m.status != "" && m.statusErr {
		lines = append(lines, styles.DangerText.Render(m.status))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	if len(m.logLines) == 0 {
		msg := "No log entries yet."
		if m.logPath != "" {
			msg += " " + m.logPath
		}
		return styles.MutedText.Render(msg)
	}
	out := make([]string, 0, len(m.logLines))
	for _, line := range m.logLines {
		out = append(out, m.levelStyle(line, styles).Render(truncate(line, max(m.width, 20))))
	}
	return strings.Join(out, "\n")
}

// levelStyle picks a color from the level word in a formatted log line.
func (m Model) levelStyle(line string, styles Styles) lipgloss.Style {
	switch {
	case strings.Contains(line, " ERROR "), strings.Contains(line, " FATAL "):
		return styles.DangerText
	case strings.Contains(line, " WARN "):
		return styles.WarningText
	case strings.Contains(line, " DEBUG "):
		return styles.FaintText
	default:
		return styles.Text
	}
}
