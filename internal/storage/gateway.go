package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/streakly/internal/constants"
	apperrors "github.com/julianstephens/streakly/internal/errors"
	"github.com/julianstephens/streakly/internal/logger"
	"github.com/julianstephens/streakly/internal/migration"
	"github.com/julianstephens/streakly/internal/models"
)

// Gateway reads and writes the whole habit collection through one slot of a Provider.
// Every error it returns is a *errors.PersistenceError.
type Gateway struct {
	provider Provider
}

func NewGateway(p Provider) *Gateway {
	return &Gateway{provider: p}
}

func (g *Gateway) Provider() Provider {
	return g.provider
}

// LoadRaw returns the persisted collection untouched, or nil when nothing was saved yet.
func (g *Gateway) LoadRaw() ([]byte, error) {
	data, err := g.provider.Read(constants.HabitsSlot)
	if err != nil {
		if errors.Is(err, ErrSlotNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewPersistence("load", err)
	}
	return data, nil
}

// Load reads the collection and upgrades it to canonical records.
// An absent slot yields an empty collection.
func (g *Gateway) Load(now time.Time) ([]models.Habit, migration.Result, error) {
	data, err := g.LoadRaw()
	if err != nil {
		return []models.Habit{}, migration.Result{}, err
	}
	if data == nil {
		return []models.Habit{}, migration.Result{}, nil
	}

	habits, res, err := migration.Normalize(data, now)
	if err != nil {
		return []models.Habit{}, res, apperrors.NewPersistence("load", err)
	}

	if n := res.Upgraded(); n > 0 {
		logger.Info("Upgraded legacy habit records",
			"count", n,
			migration.ShapeDateList.String(), res.Shapes[migration.ShapeDateList],
			migration.ShapeCountMap.String(), res.Shapes[migration.ShapeCountMap],
		)
	}
	if len(res.Skipped) > 0 {
		logger.Warn("Skipped habit records that are not objects", "indexes", res.Skipped)
	}
	if res.Dropped > 0 {
		logger.Warn("Dropped unusable completion days", "count", res.Dropped)
	}

	return habits, res, nil
}

// Save replaces the persisted collection.
func (g *Gateway) Save(habits []models.Habit) error {
	if habits == nil {
		habits = []models.Habit{}
	}

	data, err := json.Marshal(habits)
	if err != nil {
		return apperrors.NewPersistence("save", fmt.Errorf("failed to serialize habits: %w", err))
	}
	return apperrors.NewPersistence("save", g.provider.Write(constants.HabitsSlot, data))
}

// Clear removes the habit slot together with any reminder snoozes.
func (g *Gateway) Clear() error {
	if err := g.provider.Delete(constants.HabitsSlot); err != nil {
		return apperrors.NewPersistence("clear", err)
	}
	return apperrors.NewPersistence("clear", g.provider.Delete(constants.SnoozesSlot))
}

// LoadSnoozes returns habit id -> snoozeUntil. Missing slot yields an empty map.
func (g *Gateway) LoadSnoozes() (map[string]time.Time, error) {
	snoozes := make(map[string]time.Time)

	data, err := g.provider.Read(constants.SnoozesSlot)
	if err != nil {
		if errors.Is(err, ErrSlotNotFound) {
			return snoozes, nil
		}
		return snoozes, apperrors.NewPersistence("load snoozes", err)
	}

	if err := json.Unmarshal(data, &snoozes); err != nil {
		return make(map[string]time.Time), apperrors.NewPersistence("load snoozes", err)
	}
	return snoozes, nil
}

func (g *Gateway) SaveSnoozes(snoozes map[string]time.Time) error {
	if len(snoozes) == 0 {
		return apperrors.NewPersistence("save snoozes", g.provider.Delete(constants.SnoozesSlot))
	}

	data, err := json.Marshal(snoozes)
	if err != nil {
		return apperrors.NewPersistence("save snoozes", err)
	}
	return apperrors.NewPersistence("save snoozes", g.provider.Write(constants.SnoozesSlot, data))
}
