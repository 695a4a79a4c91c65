// Package metrics derives every displayed and charted figure from canonical
// habit records. All functions are pure; "today" is always passed in and its
// location decides which calendar day it is.
package metrics

import (
	"fmt"
	"math"
	"time"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/utils"
)

// Progress is a bar value in [0, 100] with its caption.
type Progress struct {
	Percent float64
	Label   string
}

// TodayProgress returns today's entry for h, or a zero entry.
func TodayProgress(h models.Habit, today time.Time) models.CompletionEntry {
	return h.Completions.Get(utils.DayKey(today))
}

// DailyProgress compares today's log count against the target.
func DailyProgress(h models.Habit, today time.Time) Progress {
	count := TodayProgress(h, today).Count

	percent := 0.0
	if h.TargetValue > 0 {
		percent = math.Min(float64(count)/h.TargetValue*100, 100)
	}

	noun := "completions"
	if h.TargetValue == 1 {
		noun = "completion"
	}
	return Progress{
		Percent: percent,
		Label:   fmt.Sprintf("%d/%s %s", count, models.FormatQuantity(h.TargetValue), noun),
	}
}

// WeeklyProgress counts the days of today's Monday-to-Sunday week with at least one log.
func WeeklyProgress(h models.Habit, today time.Time) Progress {
	done := DaysDoneInWeek(h.Completions, today)
	return Progress{
		Percent: float64(done) / constants.DaysPerWeek * 100,
		Label:   fmt.Sprintf("%d/%d days", done, constants.DaysPerWeek),
	}
}

// HabitProgress picks the daily or weekly rule by the habit's frequency.
func HabitProgress(h models.Habit, today time.Time) Progress {
	if h.Frequency == models.FrequencyWeekly {
		return WeeklyProgress(h, today)
	}
	return DailyProgress(h, today)
}

// DaysDoneInWeek returns how many days of the week containing today have count > 0.
func DaysDoneInWeek(c models.Completions, today time.Time) int {
	monday := utils.WeekStart(today)
	done := 0
	for i := 0; i < constants.DaysPerWeek; i++ {
		if c.Get(utils.DayKey(monday.AddDate(0, 0, i))).Done() {
			done++
		}
	}
	return done
}

// MaxDailyCount is the best single day. It is not a streak.
func MaxDailyCount(c models.Completions) int {
	best := 0
	for _, entry := range c {
		if entry.Count > best {
			best = entry.Count
		}
	}
	return best
}

// LongestConsecutiveStreak returns the longest run of consecutive calendar days with count > 0.
func LongestConsecutiveStreak(c models.Completions) int {
	keys := make([]string, 0, len(c))
	for day, entry := range c {
		if entry.Done() {
			keys = append(keys, day)
		}
	}

	days := utils.SortDays(keys)
	if len(days) == 0 {
		return 0
	}

	longest, current := 1, 1
	for i := 1; i < len(days); i++ {
		switch utils.DaysBetween(days[i-1], days[i]) {
		case 0:
			// same calendar day twice; cannot happen with canonical keys
		case 1:
			current++
		default:
			current = 1
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}

// ConsistencyRate is the percentage of days since creation (inclusive) on which
// the habit was done, capped to [0, 100].
func ConsistencyRate(c models.Completions, creationDate, today time.Time) float64 {
	done := 0
	for _, entry := range c {
		if entry.Done() {
			done++
		}
	}

	span := utils.DaysBetween(creationDate.In(today.Location()), today) + 1
	if span < 1 {
		span = 1
	}

	return math.Min(float64(done)/float64(span)*100, 100)
}

// Aggregate merges same-named habits for charts. Mutations never target it.
type Aggregate struct {
	Name         string
	IDs          []string
	CreationDate time.Time
	Completions  models.Completions
}

// AggregateByName groups habits by exact name in order of first appearance,
// summing completions per day and keeping the earliest creation date.
// Archived habits are included.
func AggregateByName(habits []models.Habit) []Aggregate {
	index := make(map[string]int)
	var out []Aggregate

	for _, h := range habits {
		i, ok := index[h.Name]
		if !ok {
			i = len(out)
			index[h.Name] = i
			out = append(out, Aggregate{
				Name:         h.Name,
				CreationDate: h.CreationDate,
				Completions:  make(models.Completions),
			})
		}

		agg := &out[i]
		agg.IDs = append(agg.IDs, h.ID)
		if h.CreationDate.Before(agg.CreationDate) {
			agg.CreationDate = h.CreationDate
		}
		for day, entry := range h.Completions {
			sum := agg.Completions[day]
			sum.Count += entry.Count
			sum.TotalValue += entry.TotalValue
			agg.Completions[day] = sum
		}
	}
	return out
}

// Series is one bar of each chart.
type Series struct {
	Name            string
	MaxDailyCount   int
	ConsistencyRate float64 // rounded to one decimal
	LongestStreak   int
}

// ChartSeries computes the chart data for every habit name.
func ChartSeries(habits []models.Habit, today time.Time) []Series {
	aggs := AggregateByName(habits)
	out := make([]Series, 0, len(aggs))
	for _, agg := range aggs {
		out = append(out, Series{
			Name:            agg.Name,
			MaxDailyCount:   MaxDailyCount(agg.Completions),
			ConsistencyRate: math.Round(ConsistencyRate(agg.Completions, agg.CreationDate, today)*10) / 10,
			LongestStreak:   LongestConsecutiveStreak(agg.Completions),
		})
	}
	return out
}

// TodayLabel is the list caption, e.g. "Read (daily) (Today: 3 times)".
// The today part is shown only for active habits logged today; continuous
// units show the accumulated value.
func TodayLabel(h models.Habit, today time.Time) string {
	label := fmt.Sprintf("%s (%s)", h.Name, h.Frequency)

	entry := TodayProgress(h, today)
	if !entry.Done() || h.IsArchived {
		return label
	}

	amount := fmt.Sprintf("%d", entry.Count)
	if !h.IsDiscrete() {
		amount = models.FormatQuantity(entry.TotalValue)
	}
	return fmt.Sprintf("%s (Today: %s %s)", label, amount, h.TargetUnit)
}
