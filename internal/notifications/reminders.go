package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/plusone-app/plusone/internal/dailylog"
	"github.com/plusone-app/plusone/internal/profile"

	log "github.com/sirupsen/logrus"
)

// PendingChecker yields the aggregated pending state of one objective
// category. Both daily log engines satisfy it.
type PendingChecker interface {
	GetPendingAll(ctx context.Context) (dailylog.PendingResult, error)
}

// ProfileGetter is the read-only profile surface the reminder decision
// needs.
type ProfileGetter interface {
	Get(ctx context.Context) (profile.FullProfile, error)
}

// Reminders turns the pending state into a scheduling decision: pending
// objectives plus an opted-in profile means a daily reminder, anything
// else cancels them.
type Reminders struct {
	scheduler Scheduler
	profiles  ProfileGetter
	checkers  []PendingChecker
	remindAt  string
}

// NewReminders builds the decision service. remindAt is a HH:MM wall
// clock time.
func NewReminders(
	scheduler Scheduler,
	profiles ProfileGetter,
	remindAt string,
	checkers ...PendingChecker,
) *Reminders {
	return &Reminders{
		scheduler: scheduler,
		profiles:  profiles,
		checkers:  checkers,
		remindAt:  remindAt,
	}
}

// Reconcile runs the decision once, meant to follow a daily log backfill.
func (r *Reminders) Reconcile(ctx context.Context) error {
	userProfile, err := r.profiles.Get(ctx)
	if errors.Is(err, profile.ErrProfileNotFound) {
		r.scheduler.CancelAll(ctx, false)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reminders: get profile: %w", err)
	}

	if !userProfile.WantsNotifications {
		r.scheduler.CancelAll(ctx, false)
		return nil
	}

	pendingCount := 0
	for _, checker := range r.checkers {
		res, err := checker.GetPendingAll(ctx)
		if err != nil {
			return fmt.Errorf("reminders: get pending: %w", err)
		}
		if res.Status == "" {
			pendingCount += len(res.Pending)
		}
	}

	if pendingCount == 0 {
		r.scheduler.CancelAll(ctx, false)
		return nil
	}

	if r.scheduler.IsScheduledToday() {
		return nil
	}

	at, err := r.reminderTime()
	if err != nil {
		return err
	}
	messages := []string{
		fmt.Sprintf("You have %d objectives pending today. Give yourself a plus!", pendingCount),
	}
	if !r.scheduler.ScheduleDaily(ctx, messages, at) {
		log.Warn("reminder scheduling was refused")
	}
	return nil
}

func (r *Reminders) reminderTime() (time.Time, error) {
	parsed, err := time.Parse("15:04", r.remindAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("reminders: invalid reminder time %q: %w", r.remindAt, err)
	}
	now := time.Now()
	return time.Date(
		now.Year(), now.Month(), now.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, time.Local,
	), nil
}
