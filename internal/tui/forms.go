package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/tracker"
)

// NewHabitForm creates a new form for adding habits
func NewHabitForm(fm *HabitFormModel) *huh.Form {
	units := make([]huh.Option[models.TargetUnit], 0, len(constants.TargetUnits))
	for _, u := range constants.TargetUnits {
		units = append(units, huh.NewOption(string(u), u))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[models.Frequency]().
				Title("Frequency").
				Options(
					huh.NewOption("Daily", models.FrequencyDaily),
					huh.NewOption("Weekly", models.FrequencyWeekly),
				).
				Value(&fm.Frequency),
			huh.NewInput().
				Title("Target").
				Description("Per day for daily habits, per week for weekly ones").
				Value(&fm.Target).
				Validate(func(s string) error {
					_, err := parseTarget(s)
					return err
				}),
			huh.NewSelect[models.TargetUnit]().
				Title("Unit").
				Options(units...).
				Value(&fm.Unit),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewLogForm asks how much of a continuous habit was done.
func NewLogForm(fm *LogFormModel, name string, unit models.TargetUnit) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Log %s", name)).
				Description(fmt.Sprintf("Amount in %s", unit)).
				Value(&fm.Amount).
				Validate(func(s string) error {
					_, err := tracker.ParseAmount(s)
					return err
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

func parseTarget(s string) (float64, error) {
	v, err := tracker.ParseAmount(s)
	if err != nil {
		return 0, fmt.Errorf("target must be a positive number")
	}
	return v, nil
}
