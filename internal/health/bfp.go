package health

import (
	"fmt"
	"math"
)

const (
	ContextExtremelyLow = "extremely low"
	ContextEssentialFat = "essential fat"
	ContextAthlete      = "athlete"
	ContextFitness      = "fitness"
	ContextAverage      = "average"
)

// BFP estimates the body fat percentage from the BMI using the
// Deurenberg formula: 1.2 x BMI + 0.23 x age, minus a gender constant
// (16.2 for males, 5.4 for females).
func BFP(age int, gender Gender, weightKg, heightCm float64) (Result, error) {
	bmiRes, err := BMI(age, gender, weightKg, heightCm)
	if err != nil {
		return Result{}, err
	}

	genderConst := 5.4
	if gender == Male {
		genderConst = 16.2
	}

	bfp := 1.2*bmiRes.Result + 0.23*float64(age) - genderConst
	if bfp < 0 {
		return Result{}, fmt.Errorf("%w: body fat percentage below zero", ErrInvalidInput)
	}

	return Result{
		Result:      bfp,
		Context:     bfpContext(bfp, gender),
		Explanation: "The Body Fat Percentage is an estimate of the share of body mass that is fat tissue.",
	}, nil
}

// USNavyBFP estimates the body fat percentage from tape measurements using
// the US Navy circumference method. All measurements are in centimeters;
// hip circumference is required for female subjects.
func USNavyBFP(gender Gender, heightCm, neckCm, waistCm float64, hipCm *float64) (Result, error) {
	if heightCm <= 0 || neckCm <= 0 || waistCm <= 0 {
		return Result{}, fmt.Errorf("%w: measurements must be positive", ErrInvalidInput)
	}

	const cmPerInch = 2.54
	height := heightCm / cmPerInch
	neck := neckCm / cmPerInch
	waist := waistCm / cmPerInch

	var bfp float64
	switch gender {
	case Male:
		if waist <= neck {
			return Result{}, fmt.Errorf("%w: waist must exceed neck circumference", ErrInvalidInput)
		}
		bfp = 86.01*math.Log10(waist-neck) - 70.041*math.Log10(height) + 36.76
	case Female:
		if hipCm == nil {
			return Result{}, fmt.Errorf("%w: hip circumference is required for female subjects", ErrMissingInput)
		}
		if *hipCm <= 0 {
			return Result{}, fmt.Errorf("%w: measurements must be positive", ErrInvalidInput)
		}
		hip := *hipCm / cmPerInch
		if waist+hip <= neck {
			return Result{}, fmt.Errorf("%w: waist plus hip must exceed neck circumference", ErrInvalidInput)
		}
		bfp = 163.205*math.Log10(waist+hip-neck) - 97.684*math.Log10(height) - 78.387
	default:
		return Result{}, fmt.Errorf("%w: unknown gender %q", ErrInvalidInput, gender)
	}

	if bfp < 0 {
		return Result{}, fmt.Errorf("%w: body fat percentage below zero", ErrInvalidInput)
	}

	return Result{
		Result:      bfp,
		Context:     bfpContext(bfp, gender),
		Explanation: "The US Navy method estimates body fat from tape measurements of the neck, waist, and hip.",
	}, nil
}

func bfpContext(bfp float64, gender Gender) string {
	low, essential, athlete, fitness, average := 10.0, 14.0, 21.0, 25.0, 31.0
	if gender == Male {
		low, essential, athlete, fitness, average = 2.0, 6.0, 13.0, 17.0, 25.0
	}
	// thresholds are inclusive, a value sitting exactly on one still
	// belongs to the lower band
	switch {
	case bfp <= low:
		return ContextExtremelyLow
	case bfp <= essential:
		return ContextEssentialFat
	case bfp <= athlete:
		return ContextAthlete
	case bfp <= fitness:
		return ContextFitness
	case bfp <= average:
		return ContextAverage
	default:
		return ContextObesity
	}
}
