package system

import (
	"fmt"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/validation"
)

// ValidateCmd reports conflicts in the habit collection. Conflicts are not errors.
type ValidateCmd struct{}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	fmt.Println("Validating habits...")
	result := validation.New().ValidateHabits(ctx.Tracker.Habits(), ctx.Tracker.Now())

	fmt.Println()
	fmt.Print(result.FormatReport())
	if !result.HasConflicts() {
		fmt.Println()
	}
	return nil
}
