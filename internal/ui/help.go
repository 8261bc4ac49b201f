package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}

func helpSections() []helpSection {
	return []helpSection{
		{
			title: "Navigation",
			items: []helpItem{
				{"F/H/B/R", "Files/History/Bookmarks/Recs"},
				{"E", "Folder tree"},
				{"c/l", "Chat/Logs"},
				{"esc", "Back"},
				{"j/k", "Move down/up"},
				{"g/G", "Go to top/bottom"},
				{"ctrl+d/u", "Page down/up"},
			},
		},
		{
			title: "Files",
			items: []helpItem{
				{"/", "Search by name"},
				{"f", "Cycle type filter"},
				{"enter", "Open and record watch"},
				{"b", "Toggle bookmark"},
				{"t", "Add tag (-tag removes)"},
				{"r", "Recommend"},
			},
		},
		{
			title: "Folders",
			items: []helpItem{
				{"enter", "Toggle folder or open file"},
				{"→/space", "Expand folder"},
				{"←", "Collapse folder"},
			},
		},
		{
			title: "History",
			items: []helpItem{
				{"D", "Delete entry"},
				{"C", "Clear all"},
			},
		},
		{
			title: "Settings",
			items: []helpItem{
				{"d", "Toggle dark mode"},
				{"v", "Toggle grid/list"},
				{"a", "Toggle autoplay"},
				{"T", "Cycle theme"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"L", "Log out"},
				{"?", "Toggle help"},
				{"q/ctrl+c", "Quit"},
			},
		},
	}
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	sections := helpSections()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 34)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)
	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, item := range section.items {
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}
		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(48)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
