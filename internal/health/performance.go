package health

import "fmt"

// SessionParams carries the per-session inputs for estimating the energy
// expenditure of a finished exercise session. Only the fields relevant to
// the exercise in question need to be set.
type SessionParams struct {
	Exercise        string
	DurationMinutes float64

	// running
	SpeedBracketIndex int

	// lifting
	DumbbellWeightKg float64
	Reps             int
	AmountOfHands    int

	// push ups
	AmountOfPushUps int
	OneHanded       bool
}

// Exercise kinds understood by the performance estimator.
const (
	ExerciseRunning = "Running"
	ExerciseLifting = "Lifting"
	ExercisePushUps = "Push Ups"
)

// SessionPerformance estimates the calories burned during an exercise
// session. The estimate is MET based: kcal = MET x 3.5 x kg / 200 per
// minute, with the MET picked per exercise kind and intensity.
func SessionPerformance(subject UserHealthData, params SessionParams) (Result, error) {
	if params.DurationMinutes <= 0 {
		return Result{}, fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
	}
	if subject.WeightKg <= 0 {
		return Result{}, fmt.Errorf("%w: subject weight must be positive", ErrInvalidInput)
	}

	var met float64
	var err error
	switch params.Exercise {
	case ExerciseRunning:
		var speed float64
		speed, err = BracketSpeedKmh(params.SpeedBracketIndex)
		if err != nil {
			return Result{}, err
		}
		met, err = RunningMET(speed)
		if err != nil {
			return Result{}, err
		}
	case ExerciseLifting:
		met, err = liftingMET(params)
		if err != nil {
			return Result{}, err
		}
	case ExercisePushUps:
		met = pushUpsMET(params)
	default:
		return Result{}, fmt.Errorf("%w: unknown exercise %q", ErrInvalidInput, params.Exercise)
	}

	kcal := met * 3.5 * subject.WeightKg / 200 * params.DurationMinutes

	return Result{
		Result:      kcal,
		Context:     params.Exercise,
		Explanation: "Estimated energy expenditure for the session, in kilocalories, based on the MET of the exercise.",
	}, nil
}

func liftingMET(params SessionParams) (float64, error) {
	if params.AmountOfHands != 1 && params.AmountOfHands != 2 {
		return 0, fmt.Errorf("%w: amount of hands must be 1 or 2", ErrInvalidInput)
	}
	if params.Reps <= 0 || params.DumbbellWeightKg <= 0 {
		return 0, fmt.Errorf("%w: reps and dumbbell weight must be positive", ErrInvalidInput)
	}
	// base MET for moderate effort weight lifting, scaled up a bit with the
	// total weight moved during the session
	met := 3.5 + float64(params.Reps)*params.DumbbellWeightKg*float64(params.AmountOfHands)*0.05/params.DurationMinutes
	const maxLiftingMET = 8.0
	if met > maxLiftingMET {
		met = maxLiftingMET
	}
	return met, nil
}

func pushUpsMET(params SessionParams) float64 {
	perMinute := float64(params.AmountOfPushUps) / params.DurationMinutes
	met := 3.8
	if perMinute >= 20 {
		met = 7.5
	}
	if params.OneHanded {
		met *= 1.2
	}
	return met
}
