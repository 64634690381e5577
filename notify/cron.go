package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Cron is a Gateway running reminders in process with a cron scheduler.
//
// Permission is always granted. Each reminder calls notify with the title
// and body.
type Cron struct {
	mu     sync.Mutex
	c      *cron.Cron
	notify func(title, body string)
}

// NewCron returns a started scheduler calling notify on every reminder.
func NewCron(loc *time.Location, notify func(title, body string)) *Cron {
	c := cron.New(cron.WithLocation(loc))
	c.Start()
	return &Cron{c: c, notify: notify}
}

func (n *Cron) RequestPermission(ctx context.Context) (bool, error) { return true, ctx.Err() }

func (n *Cron) ScheduleDaily(ctx context.Context, hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("invalid reminder time %02d:%02d", hour, minute)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := n.c.AddFunc(fmt.Sprintf("%d %d * * *", minute, hour), func() { n.notify(Title, Body) })
	return err
}

func (n *Cron) CancelAll(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.c.Entries() {
		n.c.Remove(e.ID)
	}
	return nil
}

// Next returns the time of the next reminder, zero if none is scheduled.
func (n *Cron) Next() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	var next time.Time
	for _, e := range n.c.Entries() {
		if t := e.Schedule.Next(time.Now().In(n.c.Location())); next.IsZero() || t.Before(next) {
			next = t
		}
	}
	return next
}

// Stop stops the scheduler and waits for running reminders.
func (n *Cron) Stop() { <-n.c.Stop().Done() }
