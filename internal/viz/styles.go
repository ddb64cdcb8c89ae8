package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2).
			Width(46)
	headerStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)

	helpPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(1, 2)
)

// ProgressBar renders a bar filled to percent.
func ProgressBar(percent float64, width int, t Theme) string {
	filled := int(percent * float64(width))
	filled = max(0, min(filled, width))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return lipgloss.NewStyle().Foreground(t.Accent).Render(bar)
}

// SparklineChart renders the last width values. High values are drawn in the warning
// colour.
func SparklineChart(values []float64, width int, t Theme) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	low := lipgloss.NewStyle().Foreground(t.Success)
	high := lipgloss.NewStyle().Foreground(t.Warning)
	var b strings.Builder
	for _, v := range values {
		norm := (v - lo) / rng
		idx := max(0, min(int(norm*float64(len(chars)-1)), len(chars)-1))
		if norm > 0.7 {
			b.WriteString(high.Render(string(chars[idx])))
		} else {
			b.WriteString(low.Render(string(chars[idx])))
		}
	}
	return b.String()
}
