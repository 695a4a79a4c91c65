// Package tracker owns the in-memory habit collection. Every mutation is
// applied in memory and then written through the storage gateway before
// the call returns.
package tracker

import (
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/streakly/internal/errors"
	"github.com/julianstephens/streakly/internal/logger"
	"github.com/julianstephens/streakly/internal/metrics"
	"github.com/julianstephens/streakly/internal/migration"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/storage"
	"github.com/julianstephens/streakly/internal/utils"
)

// Clock returns the current instant.
type Clock func() time.Time

type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(c Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

// WithLocation sets the zone whose calendar decides "today".
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.loc = loc
		}
	}
}

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(gen func() string) Option {
	return func(t *Tracker) { t.newID = gen }
}

type Tracker struct {
	mu      sync.Mutex
	gateway *storage.Gateway
	clock   Clock
	loc     *time.Location
	newID   func() string

	habits  []models.Habit
	snoozes map[string]time.Time
}

func New(gw *storage.Gateway, opts ...Option) *Tracker {
	t := &Tracker{
		gateway: gw,
		clock:   time.Now,
		loc:     time.Local,
		newID:   uuid.NewString,
		habits:  []models.Habit{},
		snoozes: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Now is the clock's instant in the tracker's location.
func (t *Tracker) Now() time.Time {
	return t.clock().In(t.loc)
}

func (t *Tracker) Location() *time.Location {
	return t.loc
}

// Load replaces the in-memory state with the persisted collection. On
// failure the collection is empty and the *PersistenceError is returned.
func (t *Tracker) Load() (migration.Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	habits, res, err := t.gateway.Load(t.Now())
	if err != nil {
		logger.Warn("Falling back to an empty habit collection", "error", err)
		t.habits = []models.Habit{}
		t.snoozes = make(map[string]time.Time)
		return res, err
	}
	t.habits = habits

	snoozes, err := t.gateway.LoadSnoozes()
	if err != nil {
		logger.Warn("Ignoring unreadable reminder snoozes", "error", err)
	}
	t.snoozes = snoozes
	return res, nil
}

// Habits returns a snapshot of the whole collection, archived included.
func (t *Tracker) Habits() []models.Habit {
	return t.filter(func(models.Habit) bool { return true })
}

// Active returns habits that are not archived.
func (t *Tracker) Active() []models.Habit {
	return t.filter(func(h models.Habit) bool { return !h.IsArchived })
}

// Archived returns archived habits only.
func (t *Tracker) Archived() []models.Habit {
	return t.filter(func(h models.Habit) bool { return h.IsArchived })
}

func (t *Tracker) filter(keep func(models.Habit) bool) []models.Habit {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]models.Habit, 0, len(t.habits))
	for _, h := range t.habits {
		if keep(h) {
			out = append(out, h.Clone())
		}
	}
	return out
}

func (t *Tracker) Get(id string) (models.Habit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexOf(id)
	if i < 0 {
		return models.Habit{}, apperrors.NewNotFound(id)
	}
	return t.habits[i].Clone(), nil
}

func (t *Tracker) indexOf(id string) int {
	for i := range t.habits {
		if t.habits[i].ID == id {
			return i
		}
	}
	return -1
}

// save writes the collection; callers hold mu.
func (t *Tracker) save() error {
	if err := t.gateway.Save(t.habits); err != nil {
		logger.Warn("Habit change kept in memory but not saved", "error", err)
		return err
	}
	return nil
}

// AddHabit appends a new habit created now. An empty unit means "times".
func (t *Tracker) AddHabit(name string, frequency models.Frequency, targetValue float64, unit models.TargetUnit) (models.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Habit{}, apperrors.NewValidation("name", "must not be empty")
	}
	if frequency == "" {
		frequency = models.FrequencyDaily
	}
	if !models.IsValidFrequency(frequency) {
		return models.Habit{}, apperrors.NewValidation("frequency", "must be daily or weekly, got "+string(frequency))
	}
	if err := validatePositive("target value", targetValue); err != nil {
		return models.Habit{}, err
	}
	if unit == "" {
		unit = models.UnitTimes
	}
	if !models.IsValidUnit(unit) {
		return models.Habit{}, apperrors.NewValidation("target unit", "unknown unit "+string(unit))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	h := models.Habit{
		ID:           t.newID(),
		Name:         name,
		Frequency:    frequency,
		CreationDate: t.clock().UTC(),
		TargetValue:  targetValue,
		TargetUnit:   unit,
		Completions:  models.Completions{},
		IsArchived:   false,
	}
	t.habits = append(t.habits, h)
	logger.Debug("Habit added", "id", h.ID, "name", h.Name)

	return h.Clone(), t.save()
}

// LogCompletion records one log event for today. Discrete habits add 1 and
// ignore amount; continuous habits require a positive amount.
func (t *Tracker) LogCompletion(id string, amount float64) (models.Habit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexOf(id)
	if i < 0 {
		return models.Habit{}, apperrors.NewNotFound(id)
	}

	h := &t.habits[i]
	value := 1.0
	if !h.IsDiscrete() {
		if err := validatePositive("amount", amount); err != nil {
			return h.Clone(), err
		}
		value = amount
	}

	if h.Completions == nil {
		h.Completions = models.Completions{}
	}
	day := utils.DayKey(t.Now())
	entry := h.Completions[day]
	entry.Count++
	entry.TotalValue += value
	// An infinite total cannot be encoded, and would block every later save.
	if math.IsInf(entry.TotalValue, 0) {
		return h.Clone(), apperrors.NewValidation("amount", "day total is too large")
	}
	h.Completions[day] = entry
	logger.Debug("Completion logged", "id", id, "day", day, "count", entry.Count, "total", entry.TotalValue)

	return h.Clone(), t.save()
}

// Archive hides a habit from the active view and from reminders.
func (t *Tracker) Archive(id string) error {
	return t.setArchived(id, true)
}

func (t *Tracker) Restore(id string) error {
	return t.setArchived(id, false)
}

func (t *Tracker) setArchived(id string, archived bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexOf(id)
	if i < 0 {
		return apperrors.NewNotFound(id)
	}
	t.habits[i].IsArchived = archived
	return t.save()
}

// ClearAll empties the collection and the persisted slot.
func (t *Tracker) ClearAll() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.habits = []models.Habit{}
	t.snoozes = make(map[string]time.Time)
	if err := t.gateway.Clear(); err != nil {
		logger.Warn("Habits cleared in memory but not in storage", "error", err)
		return err
	}
	return nil
}

// Progress returns today's bar for one habit.
func (t *Tracker) Progress(id string) (metrics.Progress, error) {
	h, err := t.Get(id)
	if err != nil {
		return metrics.Progress{}, err
	}
	return metrics.HabitProgress(h, t.Now()), nil
}

// Series returns the per-name chart data over every habit, archived included.
func (t *Tracker) Series() []metrics.Series {
	return metrics.ChartSeries(t.Habits(), t.Now())
}

// Calendar returns the month grid over every habit.
func (t *Tracker) Calendar(year int, month time.Month) metrics.Month {
	return metrics.CalendarMonth(t.Habits(), year, month)
}

// ParseAmount converts user input into a loggable amount.
func ParseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, apperrors.NewValidation("amount", "must be a number")
	}
	if err := validatePositive("amount", v); err != nil {
		return 0, err
	}
	return v, nil
}

func validatePositive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return apperrors.NewValidation(field, "must be a positive number")
	}
	return nil
}
