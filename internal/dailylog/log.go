// Package dailylog maintains the date-keyed completion log of objectives
// and reconciles it against the calendar: retroactive backfill of missed
// days, pending status aggregation and passive streak counting.
package dailylog

import (
	"fmt"
	"sort"

	"github.com/plusone-app/plusone/internal/dates"
	"github.com/plusone-app/plusone/internal/objectives"
)

// Entry is one recorded outcome for an objective on one day.
type Entry interface {
	Done() bool
}

// ActiveEntry is the outcome of an active objective's session, with the
// objective snapshot taken at log time and the session's performance
// estimate in kcal.
type ActiveEntry struct {
	WasDone     bool                       `json:"wasDone"`
	Objective   objectives.ActiveObjective `json:"objective"`
	Performance float64                    `json:"performance"`
}

func (e ActiveEntry) Done() bool { return e.WasDone }

// PassiveEntry is the outcome of a passive objective on one day.
type PassiveEntry struct {
	WasDone   bool                        `json:"wasDone"`
	Objective objectives.PassiveObjective `json:"objective"`
}

func (e PassiveEntry) Done() bool { return e.WasDone }

// Log maps a date key to the outcomes recorded that day, keyed by
// objective identifier. Entries are append-only per (date, id): the
// backfill never overwrites an existing one.
type Log[E Entry] map[string]map[int64]E

// DayEntries is one day of the log in the sorted display view.
type DayEntries[E Entry] struct {
	Date    string      `json:"date"`
	Entries map[int64]E `json:"entries"`
}

// Sorted returns the log days sorted descending by date, most recent
// first. A malformed date key is store corruption and fails the whole
// view.
func (l Log[E]) Sorted() ([]DayEntries[E], error) {
	type day struct {
		key  string
		date dates.Date
	}
	days := make([]day, 0, len(l))
	for key := range l {
		d, err := dates.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("daily log key %q: %w", key, err)
		}
		days = append(days, day{key: key, date: d})
	}

	sort.Slice(days, func(i, j int) bool {
		return days[j].date.Before(days[i].date)
	})

	view := make([]DayEntries[E], 0, len(days))
	for _, d := range days {
		view = append(view, DayEntries[E]{Date: d.key, Entries: l[d.key]})
	}
	return view, nil
}

// Cleanup validates every date key of the log. Duplicate keys are already
// collapsed by JSON decoding (the last occurrence wins), so the remaining
// corruption to catch is a key that is not a valid date.
func (l Log[E]) Cleanup() error {
	for key := range l {
		if !dates.Validate(key) {
			return fmt.Errorf("daily log key %q: %w", key, dates.ErrMalformedDate)
		}
	}
	return nil
}
