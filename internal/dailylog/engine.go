package dailylog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/plusone-app/plusone/internal/dates"
	"github.com/plusone-app/plusone/internal/objectives"
	"github.com/plusone-app/plusone/internal/store"
	"github.com/plusone-app/plusone/internal/telemetry/metrics"
	"github.com/plusone-app/plusone/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

// backfillHorizonDays bounds the backward scan for missed days.
const backfillHorizonDays = 365

const emptyLog = "{}"

// Engine reconciles the daily log of one objective category. It owns the
// log's store entry and reads the category's objective collection.
type Engine[T objectives.Objective, E Entry] struct {
	category   objectives.Category
	logKey     string
	kv         store.KVStore
	objectives *objectives.Store[T]
	metrics    *metrics.Manager
	newEntry   func(obj T, wasDone bool, performance float64) E

	// today is swappable in tests
	today func() dates.Date
}

func NewActiveEngine(
	kv store.KVStore,
	objectivesStore *objectives.Store[*objectives.ActiveObjective],
	metrics *metrics.Manager,
) *Engine[*objectives.ActiveObjective, ActiveEntry] {
	return &Engine[*objectives.ActiveObjective, ActiveEntry]{
		category:   objectives.CategoryActive,
		logKey:     store.KeyActiveDailyLog,
		kv:         kv,
		objectives: objectivesStore,
		metrics:    metrics,
		newEntry: func(obj *objectives.ActiveObjective, wasDone bool, performance float64) ActiveEntry {
			return ActiveEntry{WasDone: wasDone, Objective: *obj, Performance: performance}
		},
		today: dates.Today,
	}
}

func NewPassiveEngine(
	kv store.KVStore,
	objectivesStore *objectives.Store[*objectives.PassiveObjective],
	metrics *metrics.Manager,
) *Engine[*objectives.PassiveObjective, PassiveEntry] {
	return &Engine[*objectives.PassiveObjective, PassiveEntry]{
		category:   objectives.CategoryPassive,
		logKey:     store.KeyPassiveDailyLog,
		kv:         kv,
		objectives: objectivesStore,
		metrics:    metrics,
		newEntry: func(obj *objectives.PassiveObjective, wasDone bool, _ float64) PassiveEntry {
			return PassiveEntry{WasDone: wasDone, Objective: *obj}
		},
		today: dates.Today,
	}
}

func (e *Engine[T, E]) Category() objectives.Category {
	return e.category
}

// Get loads the stored daily log. An absent entry is initialized to an
// empty log which is persisted right away, so a pure read of empty state
// still touches the store.
func (e *Engine[T, E]) Get(ctx context.Context) (_ Log[E], err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dailylog.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	val, err := e.kv.Get(ctx, e.logKey)
	if errors.Is(err, store.ErrKeyNotFound) || (err == nil && val == "") {
		if err := e.kv.Set(ctx, e.logKey, emptyLog); err != nil {
			return nil, fmt.Errorf("initialize %s daily log: %w", e.category.Name, err)
		}
		return Log[E]{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s daily log: %w", e.category.Name, err)
	}

	var l Log[E]
	if err := json.Unmarshal([]byte(val), &l); err != nil {
		return nil, fmt.Errorf("decode %s daily log: %w", e.category.Name, err)
	}
	if l == nil {
		l = Log[E]{}
	}
	return l, nil
}

// Save validates and persists the log.
func (e *Engine[T, E]) Save(ctx context.Context, l Log[E]) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dailylog.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := l.Cleanup(); err != nil {
		return err
	}

	logJson, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshal %s daily log: %w", e.category.Name, err)
	}
	if err := e.kv.Set(ctx, e.logKey, string(logJson)); err != nil {
		return fmt.Errorf("persist %s daily log: %w", e.category.Name, err)
	}
	return nil
}

// Backfill catches the log up with the calendar. Starting from today it
// scans backward, bounded to a year, for the unbroken run of days with no
// log key at all; a present key, even an empty one, halts the scan. Every
// objective due on one of those missed days then gets a wasDone:false
// snapshot entry, existing (date, id) entries are never overwritten. If
// today already has a key, nothing happens. Returns the number of entries
// written; running it twice in a row never writes on the second run.
func (e *Engine[T, E]) Backfill(ctx context.Context) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dailylog.backfill")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	startedAt := time.Now()
	defer func() {
		e.metrics.HistBackfillDuration.Observe(time.Since(startedAt).Seconds())
	}()

	objs, err := e.objectives.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	l, err := e.Get(ctx)
	if err != nil {
		return 0, err
	}

	today := e.today()
	if _, ok := l[today.String()]; ok {
		return 0, nil
	}

	start := today
	for i := 1; i < backfillHorizonDays; i++ {
		day := today.Offset(-i)
		if _, ok := l[day.String()]; ok {
			break
		}
		start = day
	}

	written := 0
	for day := start; ; day = day.Offset(1) {
		dayKey := day.String()
		for _, obj := range objs {
			created, err := obj.CreationDate()
			if err != nil {
				return 0, fmt.Errorf("%s objective %d: %w", e.category.Name, obj.ID(), err)
			}
			if day.DaysSince(created) < 0 {
				continue
			}
			if !obj.DueOn(day) {
				continue
			}
			if _, ok := l[dayKey][obj.ID()]; ok {
				continue
			}

			if l[dayKey] == nil {
				l[dayKey] = make(map[int64]E)
			}
			l[dayKey][obj.ID()] = e.newEntry(obj, false, 0)
			written++
		}

		if day == today {
			break
		}
	}

	if written > 0 {
		if err := e.Save(ctx, l); err != nil {
			return 0, err
		}
		e.metrics.CounterBackfilledEntries.WithLabelValues(e.category.Name).Add(float64(written))
		log.Debugf("backfilled %d missed %s daily log entries since %s", written, e.category.Name, start)
	}

	return written, nil
}

// Record saves today's outcome for one objective, overwriting a previous
// record for the same day. Performance only applies to active sessions.
func (e *Engine[T, E]) Record(ctx context.Context, id int64, wasDone bool, performance float64) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dailylog.record")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	obj, err := e.objectives.Get(ctx, id)
	if err != nil {
		return err
	}

	l, err := e.Get(ctx)
	if err != nil {
		return err
	}

	todayKey := e.today().String()
	if l[todayKey] == nil {
		l[todayKey] = make(map[int64]E)
	}
	l[todayKey][id] = e.newEntry(obj, wasDone, performance)

	if err := e.Save(ctx, l); err != nil {
		return err
	}

	e.metrics.CounterLogEntriesSaved.WithLabelValues(e.category.Name).Inc()
	return nil
}
