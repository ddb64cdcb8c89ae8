package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the map layers and the status panel.
type Theme struct {
	Name     string
	Obstacle lipgloss.Color
	Path     lipgloss.Color
	Trail    lipgloss.Color
	Goal     lipgloss.Color
	Robot    lipgloss.Color
	Accent   lipgloss.Color
	Muted    lipgloss.Color
	Success  lipgloss.Color
	Warning  lipgloss.Color
	Error    lipgloss.Color
}

var (
	ThemeNight = Theme{
		Name:     "night",
		Obstacle: lipgloss.Color("#666688"),
		Path:     lipgloss.Color("#00a8cc"),
		Trail:    lipgloss.Color("#00ff88"),
		Goal:     lipgloss.Color("#ffd700"),
		Robot:    lipgloss.Color("#ff00ff"),
		Accent:   lipgloss.Color("#00ffff"),
		Muted:    lipgloss.Color("#666688"),
		Success:  lipgloss.Color("#00ff88"),
		Warning:  lipgloss.Color("#ffaa00"),
		Error:    lipgloss.Color("#ff4444"),
	}

	ThemeRetroGreen = Theme{
		Name:     "retro",
		Obstacle: lipgloss.Color("#005500"),
		Path:     lipgloss.Color("#00cc00"),
		Trail:    lipgloss.Color("#88ff88"),
		Goal:     lipgloss.Color("#ffff00"),
		Robot:    lipgloss.Color("#00ff00"),
		Accent:   lipgloss.Color("#00ff00"),
		Muted:    lipgloss.Color("#005500"),
		Success:  lipgloss.Color("#88ff88"),
		Warning:  lipgloss.Color("#ffff00"),
		Error:    lipgloss.Color("#ff0000"),
	}

	ThemeMinimal = Theme{
		Name:     "minimal",
		Obstacle: lipgloss.Color("#888888"),
		Path:     lipgloss.Color("#cccccc"),
		Trail:    lipgloss.Color("#0088ff"),
		Goal:     lipgloss.Color("#ffaa00"),
		Robot:    lipgloss.Color("#ffffff"),
		Accent:   lipgloss.Color("#0088ff"),
		Muted:    lipgloss.Color("#888888"),
		Success:  lipgloss.Color("#00ff00"),
		Warning:  lipgloss.Color("#ffaa00"),
		Error:    lipgloss.Color("#ff0000"),
	}

	Themes = []Theme{ThemeNight, ThemeRetroGreen, ThemeMinimal}
)

// GetTheme returns a theme by name, or the first theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after t, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Layer returns the canvas style of l.
func (t Theme) Layer(l Layer) lipgloss.Style {
	s := lipgloss.NewStyle()
	switch l {
	case LayerMap:
		return s.Foreground(t.Obstacle)
	case LayerPath:
		return s.Foreground(t.Path)
	case LayerTrail:
		return s.Foreground(t.Trail)
	case LayerGoal:
		return s.Foreground(t.Goal).Bold(true)
	case LayerRobot:
		return s.Foreground(t.Robot).Bold(true)
	default:
		return s
	}
}
