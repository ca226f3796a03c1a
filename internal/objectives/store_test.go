package objectives

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/plusone-app/plusone/internal/dates"
	"github.com/plusone-app/plusone/internal/store"
	"github.com/plusone-app/plusone/internal/telemetry/metrics"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allDays(due ...dates.Weekday) map[dates.Weekday]bool {
	days := make(map[dates.Weekday]bool, 7)
	for _, code := range dates.WeekdayCodes {
		days[code] = false
	}
	for _, code := range due {
		days[code] = true
	}
	return days
}

func newTestActiveObjective() *ActiveObjective {
	return &ActiveObjective{
		CreatedAt: dates.Today().String(),
		Exercise:  ExerciseRunning,
		Info:      Info{Days: allDays(dates.Monday, dates.Thursday)},
		SpecificData: SpecificData{
			EstimateSpeed: 4,
		},
	}
}

func newTestPassiveObjective() *PassiveObjective {
	return &PassiveObjective{
		CreatedAt: dates.Today().String(),
		Goal:      gofakeit.Sentence(5),
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	activeStore := NewActiveStore(store.NewMemoryStore(), metrics.NewTestManager())

	obj := newTestActiveObjective()
	require.NoError(t, activeStore.Create(ctx, obj))
	assert.GreaterOrEqual(t, obj.ID(), int64(identifierMin))
	assert.Less(t, obj.ID(), int64(identifierMin+identifierSpan))

	found, err := activeStore.Get(ctx, obj.ID())
	require.NoError(t, err)
	assert.Equal(t, obj.Exercise, found.Exercise)
	assert.Equal(t, obj.CreatedAt, found.CreatedAt)

	_, err = activeStore.Get(ctx, 1234567890)
	require.ErrorIs(t, err, ErrObjectiveNotFound)
}

func TestStore_Create_identifierUniqueness(t *testing.T) {
	ctx := context.Background()
	passiveStore := NewPassiveStore(store.NewMemoryStore(), metrics.NewTestManager())

	seen := make(map[int64]struct{})
	for i := 0; i < 50; i++ {
		obj := newTestPassiveObjective()
		require.NoError(t, passiveStore.Create(ctx, obj))
		assert.GreaterOrEqual(t, obj.Identifier, int64(identifierMin))
		_, taken := seen[obj.Identifier]
		assert.False(t, taken)
		seen[obj.Identifier] = struct{}{}
	}

	list, err := passiveStore.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 50)
}

func TestStore_Create_setsCreationDate(t *testing.T) {
	ctx := context.Background()
	passiveStore := NewPassiveStore(store.NewMemoryStore(), metrics.NewTestManager())

	obj := &PassiveObjective{Goal: "read a book"}
	require.NoError(t, passiveStore.Create(ctx, obj))
	assert.Equal(t, dates.Today().String(), obj.CreatedAt)
}

func TestStore_Create_invalid(t *testing.T) {
	ctx := context.Background()
	activeStore := NewActiveStore(store.NewMemoryStore(), metrics.NewTestManager())

	obj := newTestActiveObjective()
	obj.Exercise = "Swimming"
	require.ErrorIs(t, activeStore.Create(ctx, obj), ErrInvalidObjective)

	// nothing must be persisted after a failed create
	list, err := activeStore.GetAll(ctx)
	require.NoError(t, err)
	assert.Nil(t, list)
}

func TestStore_GetAll_emptyStates(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	activeStore := NewActiveStore(kv, metrics.NewTestManager())

	// absent key
	list, err := activeStore.GetAll(ctx)
	require.NoError(t, err)
	assert.Nil(t, list)

	// empty value
	require.NoError(t, kv.Set(ctx, store.KeyActiveObjectives, ""))
	list, err = activeStore.GetAll(ctx)
	require.NoError(t, err)
	assert.Nil(t, list)

	// non-array value
	require.NoError(t, kv.Set(ctx, store.KeyActiveObjectives, `{"not":"an array"}`))
	list, err = activeStore.GetAll(ctx)
	require.NoError(t, err)
	assert.Nil(t, list)

	// empty array
	require.NoError(t, kv.Set(ctx, store.KeyActiveObjectives, "[]"))
	list, err = activeStore.GetAll(ctx)
	require.NoError(t, err)
	assert.Nil(t, list)
}

func TestStore_Edit(t *testing.T) {
	ctx := context.Background()
	passiveStore := NewPassiveStore(store.NewMemoryStore(), metrics.NewTestManager())

	obj := newTestPassiveObjective()
	require.NoError(t, passiveStore.Create(ctx, obj))

	patch := json.RawMessage(`{"goal": "drink more water", "identifier": 42}`)
	require.NoError(t, passiveStore.Edit(ctx, obj.ID(), patch))

	// the identifier in the patch must be ignored
	found, err := passiveStore.Get(ctx, obj.ID())
	require.NoError(t, err)
	assert.Equal(t, "drink more water", found.Goal)
	assert.Equal(t, obj.CreatedAt, found.CreatedAt)

	err = passiveStore.Edit(ctx, 1234567890, patch)
	require.ErrorIs(t, err, ErrObjectiveNotFound)

	err = passiveStore.Edit(ctx, obj.ID(), json.RawMessage(`{"goal": "no"}`))
	require.ErrorIs(t, err, ErrInvalidObjective)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	passiveStore := NewPassiveStore(store.NewMemoryStore(), metrics.NewTestManager())

	// missing collection, no-op
	require.NoError(t, passiveStore.Delete(ctx, 1234567890))

	obj1 := newTestPassiveObjective()
	obj2 := newTestPassiveObjective()
	require.NoError(t, passiveStore.Create(ctx, obj1))
	require.NoError(t, passiveStore.Create(ctx, obj2))

	require.NoError(t, passiveStore.Delete(ctx, obj1.ID()))

	list, err := passiveStore.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, obj2.ID(), list[0].ID())

	// unknown id, no-op
	require.NoError(t, passiveStore.Delete(ctx, obj1.ID()))
	list, err = passiveStore.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
