package dailylog

import (
	"context"
	"testing"

	"github.com/plusone-app/plusone/internal/dates"
	"github.com/plusone-app/plusone/internal/objectives"
	"github.com/plusone-app/plusone/internal/store"
	"github.com/plusone-app/plusone/internal/telemetry/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 01/01/2024 is a Monday, 17/01/2024 a Wednesday.
var (
	testMonday    = dates.Date{Day: 1, Month: 1, Year: 2024}
	testWednesday = dates.Date{Day: 17, Month: 1, Year: 2024}
)

func testDays(due ...dates.Weekday) map[dates.Weekday]bool {
	days := make(map[dates.Weekday]bool, 7)
	for _, code := range dates.WeekdayCodes {
		days[code] = false
	}
	for _, code := range due {
		days[code] = true
	}
	return days
}

func newActiveTestEngine(t *testing.T, today dates.Date) (*Engine[*objectives.ActiveObjective, ActiveEntry], *store.MemoryStore) {
	t.Helper()
	kv := store.NewMemoryStore()
	m := metrics.NewTestManager()
	engine := NewActiveEngine(kv, objectives.NewActiveStore(kv, m), m)
	engine.today = func() dates.Date { return today }
	return engine, kv
}

func newPassiveTestEngine(t *testing.T, today dates.Date) (*Engine[*objectives.PassiveObjective, PassiveEntry], *store.MemoryStore) {
	t.Helper()
	kv := store.NewMemoryStore()
	m := metrics.NewTestManager()
	engine := NewPassiveEngine(kv, objectives.NewPassiveStore(kv, m), m)
	engine.today = func() dates.Date { return today }
	return engine, kv
}

func mondaysObjective(t *testing.T, engine *Engine[*objectives.ActiveObjective, ActiveEntry]) *objectives.ActiveObjective {
	t.Helper()
	obj := &objectives.ActiveObjective{
		CreatedAt: testMonday.String(),
		Exercise:  objectives.ExerciseRunning,
		Info:      objectives.Info{Days: testDays(dates.Monday)},
	}
	require.NoError(t, engine.objectives.Create(context.Background(), obj))
	return obj
}

func TestEngine_Get_initializesEmptyLog(t *testing.T) {
	ctx := context.Background()
	engine, kv := newActiveTestEngine(t, testWednesday)

	l, err := engine.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, l)

	// the initialization must have been persisted
	val, err := kv.Get(ctx, store.KeyActiveDailyLog)
	require.NoError(t, err)
	assert.Equal(t, "{}", val)
}

func TestEngine_Backfill_onlyDueWeekdays(t *testing.T) {
	ctx := context.Background()
	engine, _ := newActiveTestEngine(t, testWednesday)
	obj := mondaysObjective(t, engine)

	written, err := engine.Backfill(ctx)
	require.NoError(t, err)
	// mondays between creation and today: 01/01, 08/01, 15/01
	assert.Equal(t, 3, written)

	l, err := engine.Get(ctx)
	require.NoError(t, err)
	require.Len(t, l, 3)
	for _, dayKey := range []string{"01/01/2024", "08/01/2024", "15/01/2024"} {
		entry, ok := l[dayKey][obj.ID()]
		require.True(t, ok, "expected an entry on %s", dayKey)
		assert.False(t, entry.WasDone)
		assert.Equal(t, obj.ID(), entry.Objective.Identifier)
		assert.Zero(t, entry.Performance)
	}

	// no entries on days the schedule skips, today included
	assert.NotContains(t, l, "02/01/2024")
	assert.NotContains(t, l, testWednesday.String())
}

func TestEngine_Backfill_idempotent(t *testing.T) {
	ctx := context.Background()
	engine, _ := newActiveTestEngine(t, testWednesday)
	mondaysObjective(t, engine)

	written, err := engine.Backfill(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, written)

	before, err := engine.Get(ctx)
	require.NoError(t, err)

	written, err = engine.Backfill(ctx)
	require.NoError(t, err)
	assert.Zero(t, written)

	after, err := engine.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestEngine_Backfill_todayLoggedIsNoop(t *testing.T) {
	ctx := context.Background()
	engine, _ := newActiveTestEngine(t, testWednesday)
	mondaysObjective(t, engine)

	l := Log[ActiveEntry]{testWednesday.String(): {}}
	require.NoError(t, engine.Save(ctx, l))

	written, err := engine.Backfill(ctx)
	require.NoError(t, err)
	assert.Zero(t, written)
}

func TestEngine_Backfill_haltsAtFirstLoggedDay(t *testing.T) {
	ctx := context.Background()
	engine, _ := newActiveTestEngine(t, testWednesday)
	obj := mondaysObjective(t, engine)

	// 10/01 has a key, even an empty one, so the scan must stop there and
	// the run 11/01..17/01 only contains monday 15/01
	l := Log[ActiveEntry]{"10/01/2024": {}}
	require.NoError(t, engine.Save(ctx, l))

	written, err := engine.Backfill(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	l, err = engine.Get(ctx)
	require.NoError(t, err)
	assert.Contains(t, l, "15/01/2024")
	assert.NotContains(t, l, "08/01/2024")
	assert.NotContains(t, l, "01/01/2024")
	_, ok := l["15/01/2024"][obj.ID()]
	assert.True(t, ok)
}

func TestEngine_Backfill_skipsDaysBeforeCreation(t *testing.T) {
	ctx := context.Background()
	engine, _ := newPassiveTestEngine(t, testWednesday)

	obj := &objectives.PassiveObjective{
		CreatedAt: testWednesday.Offset(-3).String(),
		Goal:      "write in the journal",
	}
	require.NoError(t, engine.objectives.Create(ctx, obj))

	written, err := engine.Backfill(ctx)
	require.NoError(t, err)
	// passive objectives are due every day: creation day through today
	assert.Equal(t, 4, written)

	l, err := engine.Get(ctx)
	require.NoError(t, err)
	assert.NotContains(t, l, testWednesday.Offset(-4).String())
	assert.Contains(t, l, testWednesday.Offset(-3).String())
	assert.Contains(t, l, testWednesday.String())
}

func TestEngine_Backfill_scanHorizonIsOneYear(t *testing.T) {
	ctx := context.Background()
	engine, _ := newPassiveTestEngine(t, testWednesday)

	obj := &objectives.PassiveObjective{
		CreatedAt: testWednesday.Offset(-500).String(),
		Goal:      "write in the journal",
	}
	require.NoError(t, engine.objectives.Create(ctx, obj))

	written, err := engine.Backfill(ctx)
	require.NoError(t, err)
	// the scan covers today plus 364 days back, one calendar year
	assert.Equal(t, backfillHorizonDays, written)

	l, err := engine.Get(ctx)
	require.NoError(t, err)
	assert.Contains(t, l, testWednesday.Offset(-364).String())
	assert.NotContains(t, l, testWednesday.Offset(-365).String())
}

func TestEngine_Backfill_noObjectives(t *testing.T) {
	ctx := context.Background()
	engine, _ := newActiveTestEngine(t, testWednesday)

	written, err := engine.Backfill(ctx)
	require.NoError(t, err)
	assert.Zero(t, written)
}

func TestEngine_Record(t *testing.T) {
	ctx := context.Background()
	engine, _ := newPassiveTestEngine(t, testWednesday)

	obj := &objectives.PassiveObjective{Goal: "no phone after dinner"}
	require.NoError(t, engine.objectives.Create(ctx, obj))

	require.NoError(t, engine.Record(ctx, obj.ID(), true, 0))

	l, err := engine.Get(ctx)
	require.NoError(t, err)
	entry, ok := l[testWednesday.String()][obj.ID()]
	require.True(t, ok)
	assert.True(t, entry.WasDone)
	assert.Equal(t, obj.Goal, entry.Objective.Goal)

	// an explicit record may overwrite the day's previous one
	require.NoError(t, engine.Record(ctx, obj.ID(), false, 0))
	l, err = engine.Get(ctx)
	require.NoError(t, err)
	assert.False(t, l[testWednesday.String()][obj.ID()].WasDone)

	err = engine.Record(ctx, 1234567890, true, 0)
	require.ErrorIs(t, err, objectives.ErrObjectiveNotFound)
}

func TestEngine_Save_malformedKey(t *testing.T) {
	ctx := context.Background()
	engine, _ := newActiveTestEngine(t, testWednesday)

	l := Log[ActiveEntry]{"2024-01-15": {}}
	err := engine.Save(ctx, l)
	require.ErrorIs(t, err, dates.ErrMalformedDate)
}

func TestLog_Sorted(t *testing.T) {
	l := Log[PassiveEntry]{
		"01/01/2024": {},
		"15/01/2024": {},
		"08/01/2024": {},
	}

	days, err := l.Sorted()
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, "15/01/2024", days[0].Date)
	assert.Equal(t, "08/01/2024", days[1].Date)
	assert.Equal(t, "01/01/2024", days[2].Date)

	l["corrupted"] = map[int64]PassiveEntry{}
	_, err = l.Sorted()
	require.ErrorIs(t, err, dates.ErrMalformedDate)
}
