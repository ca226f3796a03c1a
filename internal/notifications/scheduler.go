// Package notifications decides whether daily reminders should be
// scheduled, based on pending objectives and the user's preference. The
// actual delivery is an external contract.
package notifications

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Scheduler is the external reminder scheduling contract.
type Scheduler interface {
	// ScheduleDaily registers a repeating daily reminder at the given time,
	// reporting whether scheduling took place.
	ScheduleDaily(ctx context.Context, messages []string, at time.Time) bool
	// CancelAll drops every scheduled reminder. When announce is set the
	// cancellation itself is surfaced to the user.
	CancelAll(ctx context.Context, announce bool) bool
	IsScheduledToday() bool
}

// LogScheduler only logs the scheduling decisions. It stands in when no
// real delivery channel is attached, the mobile client owns the actual
// device notifications.
type LogScheduler struct {
	scheduledOn time.Time
}

func NewLogScheduler() *LogScheduler {
	return &LogScheduler{}
}

func (s *LogScheduler) ScheduleDaily(_ context.Context, messages []string, at time.Time) bool {
	log.Infof("reminder scheduled daily at %s, %d messages", at.Format("15:04"), len(messages))
	s.scheduledOn = time.Now()
	return true
}

func (s *LogScheduler) CancelAll(_ context.Context, announce bool) bool {
	log.Infof("all reminders cancelled, announce: %t", announce)
	s.scheduledOn = time.Time{}
	return true
}

func (s *LogScheduler) IsScheduledToday() bool {
	if s.scheduledOn.IsZero() {
		return false
	}
	y1, m1, d1 := s.scheduledOn.Date()
	y2, m2, d2 := time.Now().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
