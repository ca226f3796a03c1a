// Package objectives implements the lifecycle of active and passive
// objectives: validated creation, edit, delete and listing over the
// key-value store, with unique 10 digit identifiers.
package objectives

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/plusone-app/plusone/internal/dates"
	"github.com/plusone-app/plusone/internal/health"
)

var (
	ErrInvalidObjective  = errors.New("invalid objective")
	ErrObjectiveNotFound = errors.New("objective not found")
)

// Exercise is the kind of activity an active objective schedules.
type Exercise string

const (
	ExerciseRunning Exercise = "Running"
	ExerciseLifting Exercise = "Lifting"
	ExercisePushUps Exercise = "Push Ups"
)

// Info holds the weekly recurrence schedule of an active objective:
// one boolean per weekday code, all 7 must be present.
type Info struct {
	Days map[dates.Weekday]bool `json:"days"`
}

// SpecificData carries the exercise specific numeric parameters. Which of
// them matter depends on the exercise kind.
type SpecificData struct {
	DumbbellWeight  float64 `json:"dumbbellWeight"`
	Reps            int     `json:"reps"`
	AmountOfHands   int     `json:"amountOfHands"`
	AmountOfPushUps int     `json:"amountOfPushUps"`
	EstimateSpeed   int     `json:"estimateSpeed"`
}

// ActiveObjective is a scheduled exercise session objective.
type ActiveObjective struct {
	Identifier   int64        `json:"identifier"`
	CreatedAt    string       `json:"createdAt"`
	Exercise     Exercise     `json:"exercise"`
	Info         Info         `json:"info"`
	SpecificData SpecificData `json:"specificData"`
}

func (o *ActiveObjective) ID() int64 { return o.Identifier }

func (o *ActiveObjective) SetID(id int64) { o.Identifier = id }

func (o *ActiveObjective) SetCreatedAt(d dates.Date) { o.CreatedAt = d.String() }

func (o *ActiveObjective) CreationDate() (dates.Date, error) {
	return dates.Parse(o.CreatedAt)
}

// DueOn reports whether the objective's weekly schedule marks the given
// day's weekday as a training day.
func (o *ActiveObjective) DueOn(day dates.Date) bool {
	return o.Info.Days[day.ScheduleSlot()]
}

func (o *ActiveObjective) Validate() error {
	switch o.Exercise {
	case ExerciseRunning, ExerciseLifting, ExercisePushUps:
	default:
		return fmt.Errorf("%w: unsupported exercise %q", ErrInvalidObjective, o.Exercise)
	}

	if _, err := dates.Parse(o.CreatedAt); err != nil {
		return fmt.Errorf("%w: createdAt: %s", ErrInvalidObjective, err)
	}

	if len(o.Info.Days) != 7 {
		return fmt.Errorf("%w: schedule must cover all 7 weekdays", ErrInvalidObjective)
	}
	for _, code := range dates.WeekdayCodes {
		if _, ok := o.Info.Days[code]; !ok {
			return fmt.Errorf("%w: schedule is missing weekday %s", ErrInvalidObjective, code)
		}
	}

	sd := o.SpecificData
	if sd.DumbbellWeight < 0 || sd.Reps < 0 || sd.AmountOfPushUps < 0 || sd.EstimateSpeed < 0 {
		return fmt.Errorf("%w: negative exercise parameter", ErrInvalidObjective)
	}

	switch o.Exercise {
	case ExerciseRunning:
		if sd.EstimateSpeed >= len(health.SpeedBrackets) {
			return fmt.Errorf("%w: estimate speed index %d out of range", ErrInvalidObjective, sd.EstimateSpeed)
		}
	case ExerciseLifting, ExercisePushUps:
		if sd.AmountOfHands != 1 && sd.AmountOfHands != 2 {
			return fmt.Errorf("%w: amount of hands must be 1 or 2", ErrInvalidObjective)
		}
	}

	return nil
}

// PassiveObjective is a freeform daily goal, due every day.
type PassiveObjective struct {
	Identifier int64  `json:"identifier"`
	CreatedAt  string `json:"createdAt"`
	Goal       string `json:"goal"`
}

func (o *PassiveObjective) ID() int64 { return o.Identifier }

func (o *PassiveObjective) SetID(id int64) { o.Identifier = id }

func (o *PassiveObjective) SetCreatedAt(d dates.Date) { o.CreatedAt = d.String() }

func (o *PassiveObjective) CreationDate() (dates.Date, error) {
	return dates.Parse(o.CreatedAt)
}

func (o *PassiveObjective) DueOn(_ dates.Date) bool { return true }

func (o *PassiveObjective) Validate() error {
	if _, err := dates.Parse(o.CreatedAt); err != nil {
		return fmt.Errorf("%w: createdAt: %s", ErrInvalidObjective, err)
	}
	goal := strings.TrimSpace(o.Goal)
	if n := utf8.RuneCountInString(goal); n < 3 || n > 119 {
		return fmt.Errorf("%w: goal must be between 3 and 119 characters", ErrInvalidObjective)
	}
	return nil
}
