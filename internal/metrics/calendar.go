package metrics

import (
	"time"

	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/utils"
)

type CalendarDay struct {
	Day  int
	Key  string
	Done bool // any habit logged at least once
}

// Month is a Sunday-first calendar grid.
type Month struct {
	Year   int
	Month  time.Month
	Offset int // blank cells before the 1st (0 = Sunday)
	Days   []CalendarDay
}

// CalendarMonth marks each day of the month on which any habit, archived or
// not, has count > 0.
func CalendarMonth(habits []models.Habit, year int, month time.Month) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	n := first.AddDate(0, 1, -1).Day()

	m := Month{
		Year:   first.Year(),
		Month:  first.Month(),
		Offset: int(first.Weekday()),
		Days:   make([]CalendarDay, 0, n),
	}
	for d := 1; d <= n; d++ {
		key := utils.DayKey(first.AddDate(0, 0, d-1))
		done := false
		for _, h := range habits {
			if h.Completions.Get(key).Done() {
				done = true
				break
			}
		}
		m.Days = append(m.Days, CalendarDay{Day: d, Key: key, Done: done})
	}
	return m
}

// Weeks splits the grid into rows of seven cells; zero-valued cells are padding.
func (m Month) Weeks() [][]CalendarDay {
	cells := make([]CalendarDay, m.Offset, m.Offset+len(m.Days)+6)
	cells = append(cells, m.Days...)
	for len(cells)%7 != 0 {
		cells = append(cells, CalendarDay{})
	}

	weeks := make([][]CalendarDay, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return weeks
}
