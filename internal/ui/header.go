package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the status bar: user, server, collection and settings.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	parts := []string{
		bg.Render("stash", styles.Logo),
		bg.Render(viewTitle(m.view), styles.AccentText.Bold(true)),
	}
	if u := m.snapshot.User; u != nil {
		parts = append(parts, bg.Render("@"+u.Username, styles.Text))
	}
	if m.server != "" {
		parts = append(parts, bg.Render(truncateMiddle(m.server, 32), styles.FaintText))
	}

	files := fmt.Sprintf("%d files", len(m.snapshot.Files))
	if m.pager != nil && m.pager.Loading() {
		parts = append(parts, bg.Render(files, styles.Text)+bg.Space()+bg.Render("loading", styles.WarningText))
	} else {
		parts = append(parts, bg.Render(files, styles.Text))
	}

	if u := m.snapshot.User; u != nil {
		s := u.Setting
		mode := "light"
		if s.DarkMode {
			mode = "dark"
		}
		autoplay := "autoplay off"
		if s.AutoPlay {
			autoplay = "autoplay on"
		}
		settings := strings.Join([]string{mode, string(s.DefaultView), autoplay}, " · ")
		parts = append(parts, bg.Render(settings, styles.MutedText))
	}
	parts = append(parts, bg.Render(m.theme.Name, styles.FaintText))
	if !m.lastUpdated.IsZero() {
		parts = append(parts, bg.Render(m.lastUpdated.Format("15:04:05"), styles.FaintText))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(bg.Join(parts, sep))
}

func viewTitle(v View) string {
	switch v {
	case ViewLogin:
		return "Login"
	case ViewFiles:
		return "Files"
	case ViewFolders:
		return "Folders"
	case ViewDetail:
		return "Details"
	case ViewHistory:
		return "History"
	case ViewBookmarks:
		return "Bookmarks"
	case ViewRecommendations:
		return "Recommendations"
	case ViewChat:
		return "Chat"
	case ViewLogs:
		return "Logs"
	default:
		return ""
	}
}

// renderCommandBar renders the key hints for the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.view {
	case ViewDetail:
		commands = []cmd{
			{"b", "Bookmark"},
			{"t", "Tag"},
			{"r", "Recommend"},
			{"j/k", "Related"},
			{"enter", "Open related"},
			{"esc", "Back"},
			{"?", "More"},
		}
	case ViewHistory:
		commands = []cmd{
			{"enter", "Open"},
			{"D", "Delete entry"},
			{"C", "Clear"},
			{"b", "Bookmark"},
			{"esc", "Back"},
			{"?", "More"},
		}
	case ViewBookmarks, ViewRecommendations:
		commands = []cmd{
			{"enter", "Open"},
			{"b", "Bookmark"},
			{"t", "Tag"},
			{"r", "Recommend"},
			{"esc", "Back"},
			{"?", "More"},
		}
	case ViewFolders:
		commands = []cmd{
			{"enter", "Open/Toggle"},
			{"←/→", "Collapse/Expand"},
			{"/", "Search"},
			{"f", "Type: " + m.typeFilter},
			{"b", "Bookmark"},
			{"t", "Tag"},
			{"esc", "Back"},
			{"?", "More"},
		}
	case ViewChat:
		commands = []cmd{
			{"enter", "Send"},
			{"pgup/pgdn", "Scroll"},
			{"esc", "Back"},
		}
	case ViewLogs:
		commands = []cmd{
			{"j/k", "Scroll"},
			{"g/G", "Top/Bottom"},
			{"esc", "Back"},
			{"?", "More"},
		}
	default:
		mode := "Grid"
		if m.gridMode() {
			mode = "List"
		}
		commands = []cmd{
			{"/", "Search"},
			{"f", "Type: " + m.typeFilter},
			{"enter", "Open"},
			{"b", "Bookmark"},
			{"t", "Tag"},
			{"v", mode},
			{"E", "Folders"},
			{"H", "History"},
			{"B", "Bookmarks"},
			{"R", "Recs"},
			{"c", "Chat"},
			{"?", "More"},
		}
	}

	keyStyle := styles.WarningText.Bold(true)
	descStyle := styles.MutedText
	parts := make([]string, 0, len(commands))
	for _, c := range commands {
		parts = append(parts, bg.Render(c.key, keyStyle)+bg.Space()+bg.Render(c.desc, descStyle))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Width(m.width).
		Render(bg.Join(parts, "  "))
}

// renderStatusLine renders the open prompt, the last status or a hint.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles()

	var line string
	switch {
	case m.input == inputSearch:
		line = styles.AccentText.Render("Search ") + m.searchInput.View()
	case m.input == inputTag:
		line = styles.AccentText.Render("Tag ") + m.tagInput.View()
		if s := m.tagCandidates(m.tagInput.Value()); len(s) > 0 {
			line += "  " + styles.FaintText.Render(strings.Join(s[:min(len(s), 6)], ", "))
		}
	case m.view == ViewChat:
		line = styles.AccentText.Render("> ") + m.chatInput.View()
	case m.status != "" && m.statusErr:
		line = styles.DangerText.Render(m.status)
	case m.status != "":
		line = styles.MutedText.Render(m.status)
	default:
		line = styles.FaintText.Render("? help · q quit")
	}
	return lipgloss.NewStyle().Width(m.width).MaxHeight(1).Render(line)
}
