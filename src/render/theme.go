package render

import "github.com/charmbracelet/lipgloss"

// Theme represents a color theme
type Theme struct {
	Primary   lipgloss.TerminalColor
	Text      lipgloss.TerminalColor
	TextMuted lipgloss.TerminalColor
	User      lipgloss.TerminalColor
	Assistant lipgloss.TerminalColor
	Warning   lipgloss.TerminalColor
	Error     lipgloss.TerminalColor
	Success   lipgloss.TerminalColor
}

var darkTheme = Theme{
	Primary:   lipgloss.Color("#00ff00"),
	Text:      lipgloss.Color("#ffffff"),
	TextMuted: lipgloss.Color("#808080"),
	User:      lipgloss.Color("#5fafff"),
	Assistant: lipgloss.Color("#00ff00"),
	Warning:   lipgloss.Color("#ffaf00"),
	Error:     lipgloss.Color("#ff5f5f"),
	Success:   lipgloss.Color("#5fd75f"),
}

var lightTheme = Theme{
	Primary:   lipgloss.Color("#005f00"),
	Text:      lipgloss.Color("#000000"),
	TextMuted: lipgloss.Color("#6c6c6c"),
	User:      lipgloss.Color("#005fd7"),
	Assistant: lipgloss.Color("#005f00"),
	Warning:   lipgloss.Color("#af5f00"),
	Error:     lipgloss.Color("#d70000"),
	Success:   lipgloss.Color("#008700"),
}

// adaptive picks between the light and dark palettes from the terminal background
func adaptive(light, dark lipgloss.TerminalColor) lipgloss.TerminalColor {
	l, lok := light.(lipgloss.Color)
	d, dok := dark.(lipgloss.Color)
	if !lok || !dok {
		return dark
	}
	return lipgloss.AdaptiveColor{Light: string(l), Dark: string(d)}
}

var autoTheme = Theme{
	Primary:   adaptive(lightTheme.Primary, darkTheme.Primary),
	Text:      adaptive(lightTheme.Text, darkTheme.Text),
	TextMuted: adaptive(lightTheme.TextMuted, darkTheme.TextMuted),
	User:      adaptive(lightTheme.User, darkTheme.User),
	Assistant: adaptive(lightTheme.Assistant, darkTheme.Assistant),
	Warning:   adaptive(lightTheme.Warning, darkTheme.Warning),
	Error:     adaptive(lightTheme.Error, darkTheme.Error),
	Success:   adaptive(lightTheme.Success, darkTheme.Success),
}

// ThemeByName returns the named theme; unknown names get the adaptive one.
func ThemeByName(name string) Theme {
	switch name {
	case "dark":
		return darkTheme
	case "light":
		return lightTheme
	default:
		return autoTheme
	}
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Title     lipgloss.Style
	Muted     lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Active    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer, t Theme, noColor bool) Styles {
	if noColor {
		plain := r.NewStyle()
		return Styles{
			Title: plain.Bold(true), Muted: plain, User: plain.Bold(true), Assistant: plain.Bold(true),
			Warning: plain, Error: plain, Success: plain, Active: plain.Bold(true),
		}
	}
	return Styles{
		Title:     r.NewStyle().Bold(true).Foreground(t.Primary),
		Muted:     r.NewStyle().Foreground(t.TextMuted),
		User:      r.NewStyle().Bold(true).Foreground(t.User),
		Assistant: r.NewStyle().Bold(true).Foreground(t.Assistant),
		Warning:   r.NewStyle().Foreground(t.Warning),
		Error:     r.NewStyle().Bold(true).Foreground(t.Error),
		Success:   r.NewStyle().Foreground(t.Success),
		Active:    r.NewStyle().Bold(true).Foreground(t.Primary),
	}
}
