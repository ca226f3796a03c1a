package objectives

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"

	"github.com/plusone-app/plusone/internal/dates"
	"github.com/plusone-app/plusone/internal/store"
	"github.com/plusone-app/plusone/internal/telemetry/metrics"
	"github.com/plusone-app/plusone/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

// Objective is implemented by both objective kinds, so one store engine
// serves both categories. The per category differences (validation rules,
// due-today predicate) live on the type itself.
type Objective interface {
	ID() int64
	SetID(id int64)
	SetCreatedAt(d dates.Date)
	CreationDate() (dates.Date, error)
	DueOn(day dates.Date) bool
	Validate() error
}

// Category names a collection of objectives and the store key it lives
// under.
type Category struct {
	Name       string
	StorageKey string
}

var (
	CategoryActive  = Category{Name: "active", StorageKey: store.KeyActiveObjectives}
	CategoryPassive = Category{Name: "passive", StorageKey: store.KeyPassiveObjectives}
)

const (
	identifierMin  = 1_000_000_000
	identifierSpan = 9_000_000_000
	maxIDAttempts  = 100
)

// Store is the CRUD engine for one objective category. The whole
// collection is one JSON array under the category's store key.
type Store[T Objective] struct {
	category Category
	kv       store.KVStore
	metrics  *metrics.Manager
}

func NewActiveStore(kv store.KVStore, metrics *metrics.Manager) *Store[*ActiveObjective] {
	return &Store[*ActiveObjective]{
		category: CategoryActive,
		kv:       kv,
		metrics:  metrics,
	}
}

func NewPassiveStore(kv store.KVStore, metrics *metrics.Manager) *Store[*PassiveObjective] {
	return &Store[*PassiveObjective]{
		category: CategoryPassive,
		kv:       kv,
		metrics:  metrics,
	}
}

func (s *Store[T]) Category() Category {
	return s.category
}

// GetAll returns every objective in the category. An absent store entry,
// an empty value, a non-array value and an empty array all mean "no
// objectives" and yield a nil slice, not an error.
func (s *Store[T]) GetAll(ctx context.Context) (_ []T, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "objectives.getAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	val, err := s.kv.Get(ctx, s.category.StorageKey)
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s objectives: %w", s.category.Name, err)
	}
	if val == "" {
		return nil, nil
	}

	var list []T
	if err := json.Unmarshal([]byte(val), &list); err != nil {
		log.Warnf("stored %s objectives are not a valid array, treating as empty: %s", s.category.Name, err)
		return nil, nil
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list, nil
}

// Get returns the objective with the given identifier, or
// ErrObjectiveNotFound.
func (s *Store[T]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	list, err := s.GetAll(ctx)
	if err != nil {
		return zero, err
	}
	for _, o := range list {
		if o.ID() == id {
			return o, nil
		}
	}
	return zero, fmt.Errorf("%w: %s %d", ErrObjectiveNotFound, s.category.Name, id)
}

// Create validates the objective, assigns it a fresh unique identifier
// and appends it to the collection. The creation date defaults to today
// when not set.
func (s *Store[T]) Create(ctx context.Context, obj T) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "objectives.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := obj.CreationDate(); err != nil {
		obj.SetCreatedAt(dates.Today())
	}
	if err := obj.Validate(); err != nil {
		return err
	}

	list, err := s.GetAll(ctx)
	if err != nil {
		return err
	}

	id, err := newIdentifier(list)
	if err != nil {
		return err
	}
	obj.SetID(id)

	if err := s.persist(ctx, append(list, obj)); err != nil {
		return err
	}

	s.metrics.CounterObjectivesCreated.WithLabelValues(s.category.Name).Inc()
	log.Debugf("created %s objective %d", s.category.Name, id)
	return nil
}

// Edit applies a partial update to the objective with the given id. Fields
// present in the patch overwrite the stored ones, the identifier is forced
// back to id afterwards. A missing target is an invariant violation and
// returns ErrObjectiveNotFound.
func (s *Store[T]) Edit(ctx context.Context, id int64, patch json.RawMessage) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "objectives.edit")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	list, err := s.GetAll(ctx)
	if err != nil {
		return err
	}

	for _, o := range list {
		if o.ID() != id {
			continue
		}
		if err := json.Unmarshal(patch, o); err != nil {
			return fmt.Errorf("%w: patch: %s", ErrInvalidObjective, err)
		}
		o.SetID(id)
		if err := o.Validate(); err != nil {
			return err
		}
		return s.persist(ctx, list)
	}

	return fmt.Errorf("%w: %s %d", ErrObjectiveNotFound, s.category.Name, id)
}

// Delete removes the objective with the given id from the collection. A
// missing collection or an unknown id is a no-op.
func (s *Store[T]) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "objectives.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	list, err := s.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return nil
	}

	kept := make([]T, 0, len(list))
	for _, o := range list {
		if o.ID() != id {
			kept = append(kept, o)
		}
	}
	if len(kept) == len(list) {
		return nil
	}

	if err := s.persist(ctx, kept); err != nil {
		return err
	}

	s.metrics.CounterObjectivesDeleted.WithLabelValues(s.category.Name).Inc()
	log.Debugf("deleted %s objective %d", s.category.Name, id)
	return nil
}

func (s *Store[T]) persist(ctx context.Context, list []T) error {
	listJson, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal %s objectives: %w", s.category.Name, err)
	}
	if err := s.kv.Set(ctx, s.category.StorageKey, string(listJson)); err != nil {
		return fmt.Errorf("persist %s objectives: %w", s.category.Name, err)
	}
	return nil
}

// newIdentifier draws random 10 digit identifiers until one not taken by
// the existing collection comes up, with a bounded number of attempts.
func newIdentifier[T Objective](existing []T) (int64, error) {
	taken := make(map[int64]struct{}, len(existing))
	for _, o := range existing {
		taken[o.ID()] = struct{}{}
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := rand.Int63n(identifierSpan) + identifierMin
		if _, ok := taken[id]; !ok {
			return id, nil
		}
	}
	return 0, fmt.Errorf("no free identifier found after %d attempts", maxIDAttempts)
}
