package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Back       key.Binding
	Logout     key.Binding

	// View switching
	ViewFiles           key.Binding
	ViewFolders         key.Binding
	ViewHistory         key.Binding
	ViewBookmarks       key.Binding
	ViewRecommendations key.Binding
	ViewChat            key.Binding
	ViewLogs            key.Binding

	// File actions
	Open      key.Binding
	Search    key.Binding
	Bookmark  key.Binding
	Tag       key.Binding
	Recommend key.Binding
	Filter    key.Binding

	// Folder tree
	ExpandFolder   key.Binding
	CollapseFolder key.Binding

	// Settings
	ToggleDark     key.Binding
	ToggleView     key.Binding
	ToggleAutoPlay key.Binding

	// History actions
	DeleteEntry  key.Binding
	ClearHistory key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Forms
	NextField    key.Binding
	ToggleSignup key.Binding
	Confirm      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Log out"),
		),

		ViewFiles: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "Files"),
		),
		ViewFolders: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "Folders"),
		),
		ViewHistory: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "History"),
		),
		ViewBookmarks: key.NewBinding(
			key.WithKeys("B"),
			key.WithHelp("B", "Bookmarks"),
		),
		ViewRecommendations: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Recommendations"),
		),
		ViewChat: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Chat"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Logs"),
		),

		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),
		Bookmark: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "Bookmark"),
		),
		Tag: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Tag"),
		),
		Recommend: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Recommend"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Type filter"),
		),

		ExpandFolder: key.NewBinding(
			key.WithKeys("right", " "),
			key.WithHelp("→", "Expand"),
		),
		CollapseFolder: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "Collapse"),
		),

		ToggleDark: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Dark mode"),
		),
		ToggleView: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "Grid/list"),
		),
		ToggleAutoPlay: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Autoplay"),
		),

		DeleteEntry: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "Delete entry"),
		),
		ClearHistory: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "Clear history"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "Up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "Down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("ctrl+u", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("ctrl+d", "Page down"),
		),

		NextField: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "Next field"),
		),
		ToggleSignup: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "Sign up / log in"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
	}
}
