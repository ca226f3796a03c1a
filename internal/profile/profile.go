// Package profile manages the user's health and preference data, the
// userData store entry. It is consumed read-only by the session
// performance calculations.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/plusone-app/plusone/internal/health"
	"github.com/plusone-app/plusone/internal/store"
	"github.com/plusone-app/plusone/internal/telemetry/tracing"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidProfile  = errors.New("invalid profile")
)

// FullProfile is the whole user profile as the client stores it.
type FullProfile struct {
	Username           string        `json:"username"`
	Age                int           `json:"age"`
	WeightKg           float64       `json:"weight"`
	HeightCm           float64       `json:"height"`
	Gender             health.Gender `json:"gender"`
	Language           string        `json:"language"`
	SleepHours         float64       `json:"sleepHours"`
	WantsNotifications bool          `json:"wantsNotifications"`
}

func (p FullProfile) Validate() error {
	if username := strings.TrimSpace(p.Username); len(username) < 3 || len(username) > 40 {
		return fmt.Errorf("%w: username must be between 3 and 40 characters", ErrInvalidProfile)
	}
	if p.Age <= 0 {
		return fmt.Errorf("%w: age must be positive", ErrInvalidProfile)
	}
	if p.WeightKg <= 0 || p.HeightCm <= 0 {
		return fmt.Errorf("%w: weight and height must be positive", ErrInvalidProfile)
	}
	switch p.Gender {
	case health.Male, health.Female:
	default:
		return fmt.Errorf("%w: unknown gender %q", ErrInvalidProfile, p.Gender)
	}
	return nil
}

// HealthData extracts the subject data used by the health calculations.
func (p FullProfile) HealthData() health.UserHealthData {
	return health.UserHealthData{
		Age:      p.Age,
		Gender:   p.Gender,
		WeightKg: p.WeightKg,
		HeightCm: p.HeightCm,
	}
}

type Store struct {
	kv store.KVStore
}

func NewStore(kv store.KVStore) *Store {
	return &Store{kv: kv}
}

// Get returns the stored profile, or ErrProfileNotFound when none has ever
// been saved.
func (s *Store) Get(ctx context.Context) (_ FullProfile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "profile.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	val, err := s.kv.Get(ctx, store.KeyUserData)
	if errors.Is(err, store.ErrKeyNotFound) {
		return FullProfile{}, ErrProfileNotFound
	}
	if err != nil {
		return FullProfile{}, fmt.Errorf("get profile: %w", err)
	}

	var p FullProfile
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return FullProfile{}, fmt.Errorf("decode profile: %w", err)
	}
	return p, nil
}

// Update validates and persists the profile.
func (s *Store) Update(ctx context.Context, p FullProfile) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "profile.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := p.Validate(); err != nil {
		return err
	}

	profileJson, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := s.kv.Set(ctx, store.KeyUserData, string(profileJson)); err != nil {
		return fmt.Errorf("persist profile: %w", err)
	}
	return nil
}
