package habits

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/streakly/internal/metrics"
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	doneDayStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("42"))
	todayStyle   = lipgloss.NewStyle().Underline(true).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// ProgressBar renders percent (0-100) as a gradient bar without the numeric suffix.
func ProgressBar(percent float64, width int) string {
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	return bar.ViewAs(percent / 100)
}

// Calendar renders a Sunday-first month grid. Days with any completion are
// highlighted; todayKey, if inside the month, is underlined.
func Calendar(m metrics.Month, todayKey string) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s %d", m.Month, m.Year)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Su Mo Tu We Th Fr Sa"))
	b.WriteString("\n")

	for _, week := range m.Weeks() {
		cells := make([]string, 0, len(week))
		for _, d := range week {
			if d.Day == 0 {
				cells = append(cells, "  ")
				continue
			}
			cell := fmt.Sprintf("%2d", d.Day)
			if d.Done {
				cell = doneDayStyle.Render(cell)
			}
			if d.Key == todayKey {
				cell = todayStyle.Render(cell)
			}
			cells = append(cells, cell)
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteString("\n")
	}
	return b.String()
}

// StatsTable renders the per-name chart series.
func StatsTable(series []metrics.Series) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("Habit", "Max daily", "Consistency", "Longest streak").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, s := range series {
		t.Row(
			s.Name,
			fmt.Sprintf("%d", s.MaxDailyCount),
			fmt.Sprintf("%.1f%%", s.ConsistencyRate),
			fmt.Sprintf("%d days", s.LongestStreak),
		)
	}
	return t.String()
}
