// Package styles centralizes the lipgloss styling for the lock table UI.
// Styles are built from a named theme so the palette can be swapped from
// configuration without touching render code.
package styles

import "github.com/charmbracelet/lipgloss"

// Theme is a named color palette. Every style in Styles derives from one.
type Theme struct {
	Name string

	// Primary colors meet WCAG AA contrast (4.5:1) on black and dark
	// surfaces.
	Primary   lipgloss.Color // app identity, table headers
	Accent    lipgloss.Color // own locks, confirmations
	Warning   lipgloss.Color // pending records, stale markers
	Error     lipgloss.Color // failed mutations, errored refreshes
	Muted     lipgloss.Color // hints, secondary columns
	Text      lipgloss.Color // default foreground
	Selection lipgloss.Color // selected-row background
	Border    lipgloss.Color // boxes and separators
}

var themes = map[string]Theme{
	"default": {
		Name:      "default",
		Primary:   lipgloss.Color("#A78BFA"), // violet-400
		Accent:    lipgloss.Color("#10B981"), // green
		Warning:   lipgloss.Color("#F59E0B"), // amber
		Error:     lipgloss.Color("#F87171"), // red-400
		Muted:     lipgloss.Color("#9CA3AF"), // gray
		Text:      lipgloss.Color("#F9FAFB"),
		Selection: lipgloss.Color("#1F2937"), // dark surface
		Border:    lipgloss.Color("#6B7280"), // gray-500
	},
	// mono keeps to the terminal's grayscale ramp for restricted palettes
	// and screen readers that render color as noise.
	"mono": {
		Name:      "mono",
		Primary:   lipgloss.Color("15"),
		Accent:    lipgloss.Color("15"),
		Warning:   lipgloss.Color("7"),
		Error:     lipgloss.Color("15"),
		Muted:     lipgloss.Color("8"),
		Text:      lipgloss.Color("7"),
		Selection: lipgloss.Color("8"),
		Border:    lipgloss.Color("8"),
	},
}

// ThemeNames returns the known theme names. Useful for config validation
// messages.
func ThemeNames() []string {
	return []string{"default", "mono"}
}

// ThemeByName returns the named theme, falling back to "default" for
// unknown names so a typo in config degrades rather than crashes.
func ThemeByName(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes["default"]
}

// Styles is the full set of render styles used by the TUI, derived from a
// single theme.
type Styles struct {
	Theme Theme

	// Header bar
	Title  lipgloss.Style
	Branch lipgloss.Style

	// Lock table
	TableHeader lipgloss.Style
	Row         lipgloss.Style
	RowSelected lipgloss.Style
	RowPending  lipgloss.Style
	OwnUser     lipgloss.Style
	GUID        lipgloss.Style

	// Status bar and transient notices
	StatusBar   lipgloss.Style
	StatusStale lipgloss.Style
	Notice      lipgloss.Style
	NoticeError lipgloss.Style

	// Scroll indicators and hints
	Muted lipgloss.Style

	// Input prompt and confirm bar
	PromptBox   lipgloss.Style
	PromptLabel lipgloss.Style
	ConfirmBox  lipgloss.Style

	// Help overlay
	HelpBox      lipgloss.Style
	HelpCategory lipgloss.Style
	HelpKey      lipgloss.Style
	HelpDesc     lipgloss.Style

	// Spinner foreground
	Spinner lipgloss.Style
}

// New builds the style set for the named theme.
func New(themeName string) *Styles {
	t := ThemeByName(themeName)

	return &Styles{
		Theme: t,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary),
		Branch: lipgloss.NewStyle().
			Foreground(t.Accent),

		TableHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Border),
		Row: lipgloss.NewStyle().
			Foreground(t.Text),
		RowSelected: lipgloss.NewStyle().
			Foreground(t.Text).
			Background(t.Selection).
			Bold(true),
		RowPending: lipgloss.NewStyle().
			Foreground(t.Warning).
			Italic(true),
		OwnUser: lipgloss.NewStyle().
			Foreground(t.Accent),
		GUID: lipgloss.NewStyle().
			Foreground(t.Muted),

		StatusBar: lipgloss.NewStyle().
			Foreground(t.Muted),
		StatusStale: lipgloss.NewStyle().
			Foreground(t.Warning).
			Bold(true),
		Notice: lipgloss.NewStyle().
			Foreground(t.Accent),
		NoticeError: lipgloss.NewStyle().
			Foreground(t.Error).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(t.Muted),

		PromptBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),
		PromptLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary),
		ConfirmBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Warning).
			Padding(0, 1),

		HelpBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(1, 2),
		HelpCategory: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary),
		HelpKey: lipgloss.NewStyle().
			Foreground(t.Accent),
		HelpDesc: lipgloss.NewStyle().
			Foreground(t.Muted),

		Spinner: lipgloss.NewStyle().
			Foreground(t.Primary),
	}
}
