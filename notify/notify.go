// Package notify schedules the daily reminder to log expenses.
package notify

import (
	"context"
	"fmt"

	"github.com/etnz/moola"
	"github.com/rs/zerolog"
)

// Reminder content.
const (
	Title = "moola"
	Body  = "Time to log your expenses ✦"
)

// Gateway is the device notification capability.
type Gateway interface {
	// RequestPermission asks the user for the right to notify, it reports whether it is granted.
	RequestPermission(ctx context.Context) (bool, error)
	// ScheduleDaily schedules a reminder repeating every day at hour:minute.
	ScheduleDaily(ctx context.Context, hour, minute int) error
	// CancelAll cancels every scheduled reminder.
	CancelAll(ctx context.Context) error
}

// Outcome is the result of Apply.
type Outcome int

const (
	Cancelled        Outcome = iota // no reminder is scheduled
	Scheduled                       // the daily reminder is scheduled
	PermissionDenied                // the user refused, the reminder preference must be turned off
)

func (o Outcome) String() string {
	switch o {
	case Cancelled:
		return "cancelled"
	case Scheduled:
		return "scheduled"
	case PermissionDenied:
		return "permission denied"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Apply makes the scheduled reminders match req.
//
// Previous reminders are always cancelled first.
func Apply(ctx context.Context, gw Gateway, req moola.ReminderRequest, log zerolog.Logger) (Outcome, error) {
	if err := gw.CancelAll(ctx); err != nil {
		return Cancelled, fmt.Errorf("cannot cancel reminders: %w", err)
	}
	if !req.ShouldSchedule {
		log.Debug().Msg("daily reminder cancelled")
		return Cancelled, nil
	}
	granted, err := gw.RequestPermission(ctx)
	if err != nil {
		return Cancelled, fmt.Errorf("cannot request notification permission: %w", err)
	}
	if !granted {
		log.Info().Msg("notification permission denied")
		return PermissionDenied, nil
	}
	if err := gw.ScheduleDaily(ctx, req.Hour, req.Minute); err != nil {
		return Cancelled, fmt.Errorf("cannot schedule reminder: %w", err)
	}
	log.Info().Int("hour", req.Hour).Int("minute", req.Minute).Msg("daily reminder scheduled")
	return Scheduled, nil
}
