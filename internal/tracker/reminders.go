package tracker

import (
	"time"

	apperrors "github.com/julianstephens/streakly/internal/errors"
	"github.com/julianstephens/streakly/internal/logger"
	"github.com/julianstephens/streakly/internal/metrics"
	"github.com/julianstephens/streakly/internal/models"
)

// Reminder is one habit that still needs logging today.
type Reminder struct {
	ID     string
	Name   string
	Count  int
	Target float64
}

// DueReminders lists active daily "times" habits whose count today is below
// target and that are not snoozed at now. It never mutates state.
func (t *Tracker) DueReminders(now time.Time) []Reminder {
	t.mu.Lock()
	defer t.mu.Unlock()

	now = now.In(t.loc)
	var due []Reminder
	for _, h := range t.habits {
		if !reminderEligible(h) {
			continue
		}
		if until, ok := t.snoozes[h.ID]; ok && now.Before(until) {
			continue
		}

		count := metrics.TodayProgress(h, now).Count
		if float64(count) < h.TargetValue {
			due = append(due, Reminder{ID: h.ID, Name: h.Name, Count: count, Target: h.TargetValue})
		}
	}
	return due
}

// Continuous units have no reminder semantics.
func reminderEligible(h models.Habit) bool {
	return !h.IsArchived && h.Frequency == models.FrequencyDaily && h.IsDiscrete()
}

// Snooze suppresses reminders for id until the given instant.
func (t *Tracker) Snooze(id string, until time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.indexOf(id) < 0 {
		return apperrors.NewNotFound(id)
	}

	now := t.clock()
	for habitID, u := range t.snoozes {
		if !now.Before(u) || t.indexOf(habitID) < 0 {
			delete(t.snoozes, habitID)
		}
	}
	t.snoozes[id] = until.UTC()

	if err := t.gateway.SaveSnoozes(t.snoozes); err != nil {
		logger.Warn("Snooze kept in memory but not saved", "error", err)
		return err
	}
	return nil
}

// SnoozedUntil returns the active snooze for id, if any.
func (t *Tracker) SnoozedUntil(id string) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	until, ok := t.snoozes[id]
	if !ok || !t.clock().Before(until) {
		return time.Time{}, false
	}
	return until, true
}
