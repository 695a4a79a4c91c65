package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/logger"
	"github.com/julianstephens/streakly/internal/notifier"
)

// RemindCmd is meant to be run periodically (cron, launchd, systemd timer).
type RemindCmd struct {
	DryRun bool `help:"Print reminders to stdout instead of sending them."`
}

func (c *RemindCmd) Run(ctx *cli.Context) error {
	if err := ctx.Open(); err != nil {
		return err
	}

	due := ctx.Tracker.DueReminders(ctx.Tracker.Now())
	if len(due) == 0 {
		if c.DryRun {
			fmt.Println("No reminders due.")
		}
		return nil
	}

	for _, r := range due {
		text := notifier.ReminderText(r.Name, r.Count, r.Target)
		if c.DryRun {
			fmt.Println("[DryRun] " + text)
			continue
		}

		err := ctx.Notifier.Notify(context.Background(), notifier.Notification{
			Title:   constants.ReminderTitle,
			Text:    text,
			HabitID: r.ID,
		})
		if errors.Is(err, notifier.ErrTrayNotRunning) {
			logger.Debug("Tray app not running, reminders not delivered")
			return nil
		}
		if err != nil {
			// Keep going; one failed delivery should not hide the rest.
			logger.Warn("Reminder delivery failed", "habit", r.ID, "error", err)
			fmt.Printf("Failed to send reminder: %v\n", err)
		}
	}
	return nil
}
