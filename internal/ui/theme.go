package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/stash/internal/nas"
)

// Theme defines colors and styles for the UI.
type Theme struct {
	Name string
	Dark bool

	// Base colors
	Background string
	Surface    string
	SurfaceAlt string
	FocusBg    string

	SelectionBg   string
	SelectionText string

	Border      string
	BorderFocus string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// Badge color per file type
	TypeColors map[nas.FileType]string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Background: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Background)),

		Surface: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)),

		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		InfoText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Info)),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),

		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),

		typeColors: t.TypeColors,
		background: t.Background,
		muted:      t.Muted,
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Background lipgloss.Style
	Surface    lipgloss.Style

	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style

	typeColors map[nas.FileType]string
	background string
	muted      string
}

// TypeStyle returns a badge style for the given file type.
func (s Styles) TypeStyle(t nas.FileType) lipgloss.Style {
	color := s.typeColors[t]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// WithBackground returns a copy of Styles with every text style on bgColor.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	return Styles{
		Background: s.Background.Background(bg),
		Surface:    s.Surface.Background(bg),

		Text:        s.Text.Background(bg),
		MutedText:   s.MutedText.Background(bg),
		FaintText:   s.FaintText.Background(bg),
		AccentText:  s.AccentText.Background(bg),
		SuccessText: s.SuccessText.Background(bg),
		WarningText: s.WarningText.Background(bg),
		DangerText:  s.DangerText.Background(bg),
		InfoText:    s.InfoText.Background(bg),

		Header:   s.Header.Background(bg),
		Logo:     s.Logo.Background(bg),
		Selected: s.Selected,

		typeColors: s.typeColors,
		background: s.background,
		muted:      s.muted,
	}
}

// Theme definitions

var themes = map[string]Theme{
	"Dracula": draculaTheme(),
	"Slate":   slateTheme(),
	"Paper":   paperTheme(),
	"Latte":   latteTheme(),
}

var (
	darkThemeOrder  = []string{"Dracula", "Slate"}
	lightThemeOrder = []string{"Paper", "Latte"}
)

// GetTheme returns a theme by name, falling back to the first theme of the
// requested mode when the name is unknown or of the other mode.
func GetTheme(name string, dark bool) Theme {
	if t, ok := themes[name]; ok && t.Dark == dark {
		return t
	}
	if dark {
		return themes[darkThemeOrder[0]]
	}
	return themes[lightThemeOrder[0]]
}

// NextTheme returns the next theme name in the cycle for the mode.
func NextTheme(current string, dark bool) string {
	order := ThemeNames(dark)
	for i, name := range order {
		if name == current {
			return order[(i+1)%len(order)]
		}
	}
	return order[0]
}

// ThemeNames returns the theme names available for the mode.
func ThemeNames(dark bool) []string {
	if dark {
		return darkThemeOrder
	}
	return lightThemeOrder
}

func draculaTheme() Theme {
	// Dracula palette: https://draculatheme.com/contribute
	return Theme{
		Name: "Dracula",
		Dark: true,

		Background: "#21222c",
		Surface:    "#282a36",
		SurfaceAlt: "#343746",
		FocusBg:    "#2c2e3b",

		SelectionBg:   "#44475a",
		SelectionText: "#f8f8f2",

		Border:      "#44475a",
		BorderFocus: "#bd93f9",

		Text:    "#f8f8f2",
		Muted:   "#9ea8c7",
		Faint:   "#6272a4",
		Accent:  "#bd93f9",
		Success: "#50fa7b",
		Warning: "#f1fa8c",
		Danger:  "#ff5555",
		Info:    "#8be9fd",

		TypeColors: map[nas.FileType]string{
			nas.TypeVideo:    "#ff79c6",
			nas.TypeMusic:    "#bd93f9",
			nas.TypeDocument: "#8be9fd",
			nas.TypeImage:    "#50fa7b",
			nas.TypeArchive:  "#ffb86c",
			nas.TypeOther:    "#6272a4",
		},
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name: "Slate",
		Dark: true,

		Background: "#0f172a", // slate-900
		Surface:    "#1e293b", // slate-800
		SurfaceAlt: "#334155", // slate-700
		FocusBg:    "#1e293b",

		SelectionBg:   "#0c4a6e", // sky-900
		SelectionText: "#f1f5f9",

		Border:      "#334155",
		BorderFocus: "#38bdf8", // sky-400

		Text:    "#e2e8f0",
		Muted:   "#94a3b8",
		Faint:   "#64748b",
		Accent:  "#38bdf8",
		Success: "#4ade80",
		Warning: "#facc15",
		Danger:  "#f87171",
		Info:    "#22d3ee",

		TypeColors: map[nas.FileType]string{
			nas.TypeVideo:    "#f472b6",
			nas.TypeMusic:    "#a78bfa",
			nas.TypeDocument: "#38bdf8",
			nas.TypeImage:    "#4ade80",
			nas.TypeArchive:  "#fb923c",
			nas.TypeOther:    "#64748b",
		},
	}
}

func paperTheme() Theme {
	return Theme{
		Name: "Paper",

		Background: "#f5f5f0",
		Surface:    "#ebebe4",
		SurfaceAlt: "#e0e0d8",
		FocusBg:    "#ffffff",

		SelectionBg:   "#c9dcf0",
		SelectionText: "#1a1a1a",

		Border:      "#c8c8c0",
		BorderFocus: "#2f6fb3",

		Text:    "#1a1a1a",
		Muted:   "#5c5c58",
		Faint:   "#88887f",
		Accent:  "#2f6fb3",
		Success: "#2e7d32",
		Warning: "#9a6700",
		Danger:  "#c62828",
		Info:    "#00838f",

		TypeColors: map[nas.FileType]string{
			nas.TypeVideo:    "#ad1457",
			nas.TypeMusic:    "#6a1b9a",
			nas.TypeDocument: "#1565c0",
			nas.TypeImage:    "#2e7d32",
			nas.TypeArchive:  "#e65100",
			nas.TypeOther:    "#616161",
		},
	}
}

func latteTheme() Theme {
	// Catppuccin Latte palette: https://catppuccin.com/palette
	return Theme{
		Name: "Latte",

		Background: "#eff1f5", // base
		Surface:    "#e6e9ef", // mantle
		SurfaceAlt: "#dce0e8", // crust
		FocusBg:    "#eff1f5",

		SelectionBg:   "#ccd0da", // surface0
		SelectionText: "#4c4f69", // text

		Border:      "#bcc0cc", // surface1
		BorderFocus: "#1e66f5", // blue

		Text:    "#4c4f69",
		Muted:   "#6c6f85", // subtext0
		Faint:   "#8c8fa1", // overlay1
		Accent:  "#1e66f5",
		Success: "#40a02b", // green
		Warning: "#df8e1d", // yellow
		Danger:  "#d20f39", // red
		Info:    "#04a5e5", // sky

		TypeColors: map[nas.FileType]string{
			nas.TypeVideo:    "#ea76cb", // pink
			nas.TypeMusic:    "#8839ef", // mauve
			nas.TypeDocument: "#1e66f5",
			nas.TypeImage:    "#40a02b",
			nas.TypeArchive:  "#fe640b", // peach
			nas.TypeOther:    "#8c8fa1",
		},
	}
}
