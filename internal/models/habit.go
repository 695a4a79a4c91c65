package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/streakly/internal/constants"
)

type Frequency = constants.Frequency

type TargetUnit = constants.TargetUnit

const (
	FrequencyDaily  = constants.FrequencyDaily
	FrequencyWeekly = constants.FrequencyWeekly
	UnitTimes       = constants.UnitTimes
	UnitHours       = constants.UnitHours
	UnitMinutes     = constants.UnitMinutes
	UnitKm          = constants.UnitKm
	UnitMiles       = constants.UnitMiles
	UnitPages       = constants.UnitPages
	UnitGlasses     = constants.UnitGlasses
	UnitServings    = constants.UnitServings
	UnitCalls       = constants.UnitCalls
)

// CompletionEntry is one day's tally for a habit.
// Count is the number of log events, TotalValue the accumulated quantity.
type CompletionEntry struct {
	Count      int     `json:"count"`
	TotalValue float64 `json:"totalValue"`
}

// Done reports whether the habit was performed at least once that day.
func (e CompletionEntry) Done() bool {
	return e.Count > 0
}

// Completions maps a day key (YYYY-MM-DD) to that day's entry. Absent keys mean zero.
type Completions map[string]CompletionEntry

// Get returns the entry for day or a zero entry.
func (c Completions) Get(day string) CompletionEntry {
	return c[day]
}

// Clone returns a deep copy.
func (c Completions) Clone() Completions {
	out := make(Completions, len(c))
	for day, entry := range c {
		out[day] = entry
	}
	return out
}

// Habit is the canonical habit record
type Habit struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Frequency    Frequency   `json:"frequency"`
	CreationDate time.Time   `json:"creationDate"`
	TargetValue  float64     `json:"targetValue"`
	TargetUnit   TargetUnit  `json:"targetUnit"`
	Completions  Completions `json:"completions"`
	IsArchived   bool        `json:"isArchived"`
}

// IsDiscrete reports whether the habit counts log events rather than measuring a quantity.
func (h Habit) IsDiscrete() bool {
	return h.TargetUnit == UnitTimes
}

// Clone returns a copy that shares no mutable state with h.
func (h Habit) Clone() Habit {
	out := h
	out.Completions = h.Completions.Clone()
	return out
}

// IsValidFrequency checks the frequency against the known set.
func IsValidFrequency(f Frequency) bool {
	return f == FrequencyDaily || f == FrequencyWeekly
}

// IsValidUnit checks the unit against the fixed vocabulary.
func IsValidUnit(u TargetUnit) bool {
	for _, known := range constants.TargetUnits {
		if u == known {
			return true
		}
	}
	return false
}

// FormatQuantity renders a target or logged value without trailing zeros (1, 2.5).
func FormatQuantity(v float64) string {
	return fmt.Sprintf("%g", v)
}
