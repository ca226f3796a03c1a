package dailylog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/plusone-app/plusone/internal/dates"
)

// Status of a single objective for today.
type Status string

const (
	StatusDone        Status = "done"
	StatusPending     Status = "pending"
	StatusNotDueToday Status = "notDueToday"
)

// Aggregated status codes over a whole category.
const (
	PendingAllDone      = "allDone"
	PendingNoneDueToday = "noneDueToday"
	PendingNoneExists   = "noneExists"
)

// PendingResult is either an aggregated status code or the list of
// identifiers still pending today. The list may be empty when the
// collection mixes done and notDueToday objectives without any pending
// one; that literal shape is load bearing for the client and kept as is.
type PendingResult struct {
	Status  string
	Pending []int64
}

func (r PendingResult) MarshalJSON() ([]byte, error) {
	if r.Status != "" {
		return json.Marshal(r.Status)
	}
	if r.Pending == nil {
		r.Pending = []int64{}
	}
	return json.Marshal(r.Pending)
}

func (r *PendingResult) UnmarshalJSON(data []byte) error {
	var status string
	if err := json.Unmarshal(data, &status); err == nil {
		r.Status = status
		r.Pending = nil
		return nil
	}
	r.Status = ""
	return json.Unmarshal(data, &r.Pending)
}

// IsPending computes the objective's status for today: notDueToday when
// the schedule skips today's weekday, done when today's log entry says so,
// pending otherwise (including a missing log or entry).
func (e *Engine[T, E]) IsPending(obj T, l Log[E]) Status {
	today := e.today()
	if !obj.DueOn(today) {
		return StatusNotDueToday
	}
	if l == nil {
		return StatusPending
	}
	dayEntries, ok := l[today.String()]
	if !ok {
		return StatusPending
	}
	entry, ok := dayEntries[obj.ID()]
	if !ok {
		return StatusPending
	}
	if entry.Done() {
		return StatusDone
	}
	return StatusPending
}

// GetPendingAll aggregates IsPending over the whole category. Precedence:
// an empty collection wins, then every objective done, then every
// objective not due today, then the sorted list of pending identifiers.
func (e *Engine[T, E]) GetPendingAll(ctx context.Context) (PendingResult, error) {
	objs, err := e.objectives.GetAll(ctx)
	if err != nil {
		return PendingResult{}, err
	}
	if len(objs) == 0 {
		return PendingResult{Status: PendingNoneExists}, nil
	}

	l, err := e.Get(ctx)
	if err != nil {
		return PendingResult{}, err
	}

	allDone := true
	noneDue := true
	var pending []int64
	for _, obj := range objs {
		switch e.IsPending(obj, l) {
		case StatusDone:
			noneDue = false
		case StatusNotDueToday:
			allDone = false
		case StatusPending:
			allDone = false
			noneDue = false
			pending = append(pending, obj.ID())
		}
	}

	if allDone {
		return PendingResult{Status: PendingAllDone}, nil
	}
	if noneDue {
		return PendingResult{Status: PendingNoneDueToday}, nil
	}

	if pending == nil {
		pending = []int64{}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i] < pending[j] })
	return PendingResult{Pending: pending}, nil
}

// GetStreak counts how many consecutive calendar days, ending with the
// objective's most recent log entry, it was done without a gap or a
// wasDone:false record.
func (e *Engine[T, E]) GetStreak(ctx context.Context, id int64) (int, error) {
	l, err := e.Get(ctx)
	if err != nil {
		return 0, err
	}

	type dayOutcome struct {
		date dates.Date
		done bool
	}
	var outcomes []dayOutcome
	for key, dayEntries := range l {
		entry, ok := dayEntries[id]
		if !ok {
			continue
		}
		d, err := dates.Parse(key)
		if err != nil {
			return 0, fmt.Errorf("daily log key %q: %w", key, err)
		}
		outcomes = append(outcomes, dayOutcome{date: d, done: entry.Done()})
	}

	// most recent first
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[j].date.Before(outcomes[i].date)
	})

	streak := 0
	for i, outcome := range outcomes {
		if !outcome.done {
			break
		}
		if i > 0 && outcomes[i-1].date.DaysSince(outcome.date) != 1 {
			break
		}
		streak++
	}
	return streak, nil
}
