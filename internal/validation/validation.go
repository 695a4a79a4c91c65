package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidTarget      ConflictType = "invalid_target"
	ConflictInvalidDayKey      ConflictType = "invalid_day_key"
	ConflictNegativeCompletion ConflictType = "negative_completion"
	ConflictCountMismatch      ConflictType = "count_total_mismatch"
	ConflictFutureCompletion   ConflictType = "future_completion"
	ConflictDuplicateName      ConflictType = "duplicate_habit_name"
	ConflictDuplicateID        ConflictType = "duplicate_habit_id"
)

// Conflict represents one problem found in the habit collection
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string   // YYYY-MM-DD, when the problem belongs to one day
	HabitIDs    []string // habits involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

// Validator checks canonical habit records for problems that migration does
// not repair.
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// ValidateHabits checks every record and the collection as a whole. today
// bounds completion dates; its location decides the calendar day.
func (v *Validator) ValidateHabits(habits []models.Habit, today time.Time) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	todayKey := utils.DayKey(today)

	for _, h := range habits {
		result.Conflicts = append(result.Conflicts, v.ValidateHabit(h, todayKey)...)
	}
	result.Conflicts = append(result.Conflicts, duplicateIDs(habits)...)
	result.Conflicts = append(result.Conflicts, duplicateNames(habits)...)
	return result
}

// ValidateHabit checks one record. Day keys compare lexically.
func (v *Validator) ValidateHabit(h models.Habit, todayKey string) []Conflict {
	var conflicts []Conflict
	if h.TargetValue <= 0 || math.IsNaN(h.TargetValue) || math.IsInf(h.TargetValue, 0) {
		conflicts = append(conflicts, Conflict{
			Type:        ConflictInvalidTarget,
			Description: fmt.Sprintf("%s: target value %v is not positive", h.Name, h.TargetValue),
			HabitIDs:    []string{h.ID},
		})
	}

	days := make([]string, 0, len(h.Completions))
	for day := range h.Completions {
		days = append(days, day)
	}
	sort.Strings(days)

	for _, day := range days {
		entry := h.Completions[day]
		conflict := Conflict{Date: day, HabitIDs: []string{h.ID}}
		switch {
		case !utils.IsDayKey(day):
			conflict.Type = ConflictInvalidDayKey
			conflict.Description = fmt.Sprintf("%s: invalid day key %q", h.Name, day)
		case entry.Count < 0 || entry.TotalValue < 0:
			conflict.Type = ConflictNegativeCompletion
			conflict.Description = fmt.Sprintf("%s: negative completion on %s", h.Name, day)
		case h.IsDiscrete() && float64(entry.Count) != entry.TotalValue:
			conflict.Type = ConflictCountMismatch
			conflict.Description = fmt.Sprintf("%s: count %d and total %v differ on %s", h.Name, entry.Count, entry.TotalValue, day)
		case todayKey != "" && day > todayKey:
			conflict.Type = ConflictFutureCompletion
			conflict.Description = fmt.Sprintf("%s: completion logged in the future on %s", h.Name, day)
		default:
			continue
		}
		conflicts = append(conflicts, conflict)
	}
	return conflicts
}

func duplicateIDs(habits []models.Habit) []Conflict {
	var conflicts []Conflict
	seen := make(map[string]bool, len(habits))
	for _, h := range habits {
		if seen[h.ID] {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictDuplicateID,
				Description: fmt.Sprintf("duplicate habit id %s", h.ID),
				HabitIDs:    []string{h.ID},
			})
		}
		seen[h.ID] = true
	}
	return conflicts
}

// duplicateNames reports active habits sharing a name; their statistics are
// merged in charts and they cannot be addressed by name.
func duplicateNames(habits []models.Habit) []Conflict {
	byName := make(map[string][]string)
	var order []string
	for _, h := range habits {
		if h.IsArchived {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(h.Name))
		if _, ok := byName[key]; !ok {
			order = append(order, key)
		}
		byName[key] = append(byName[key], h.ID)
	}

	var conflicts []Conflict
	for _, key := range order {
		ids := byName[key]
		if len(ids) < 2 {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Type:        ConflictDuplicateName,
			Description: fmt.Sprintf("%d active habits are named %q", len(ids), key),
			HabitIDs:    ids,
		})
	}
	return conflicts
}
