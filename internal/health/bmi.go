package health

import "fmt"

const (
	ContextSeverelyUnderweight = "severely underweight"
	ContextUnderweight         = "underweight"
	ContextHealthyWeight       = "healthy weight"
	ContextOverweight          = "overweight"
	ContextObesity             = "obesity"
)

// bmiPercentileCutoffs holds approximate BMI-for-age cutoffs for subjects
// under 20, per gender and year of age (10..19): the 5th, 25th, 75th, 85th
// and 95th percentile values. Ages below 10 use the age 10 row.
var bmiPercentileCutoffs = map[Gender]map[int][5]float64{
	Male: {
		10: {14.2, 15.4, 18.0, 19.4, 22.1},
		11: {14.5, 15.8, 18.7, 20.2, 23.2},
		12: {15.0, 16.4, 19.4, 21.0, 24.2},
		13: {15.4, 16.9, 20.2, 21.8, 25.1},
		14: {16.0, 17.5, 20.9, 22.6, 26.0},
		15: {16.5, 18.1, 21.7, 23.4, 26.8},
		16: {17.1, 18.7, 22.4, 24.2, 27.5},
		17: {17.6, 19.3, 23.1, 24.9, 28.2},
		18: {18.1, 19.8, 23.7, 25.6, 28.9},
		19: {18.6, 20.3, 24.3, 26.2, 29.7},
	},
	Female: {
		10: {14.0, 15.2, 18.4, 20.0, 22.9},
		11: {14.4, 15.7, 19.2, 20.8, 24.1},
		12: {14.8, 16.2, 20.0, 21.7, 25.2},
		13: {15.3, 16.8, 20.8, 22.5, 26.2},
		14: {15.8, 17.3, 21.5, 23.3, 27.2},
		15: {16.3, 17.8, 22.2, 24.0, 28.1},
		16: {16.8, 18.3, 22.8, 24.6, 28.9},
		17: {17.2, 18.7, 23.3, 25.2, 29.6},
		18: {17.5, 19.0, 23.8, 25.7, 30.3},
		19: {17.8, 19.3, 24.2, 26.1, 31.0},
	},
}

// Percentile buckets a BMI value for an under-20 subject into the nearest
// known percentile band: 5, 25, 50, 75, 85 or 95.
func Percentile(bmi float64, age int, gender Gender) int {
	if age < 10 {
		age = 10
	}
	if age > 19 {
		age = 19
	}
	cutoffs := bmiPercentileCutoffs[gender][age]

	switch {
	case bmi < cutoffs[0]:
		return 5
	case bmi < cutoffs[1]:
		return 25
	case bmi < cutoffs[2]:
		return 50
	case bmi < cutoffs[3]:
		return 75
	case bmi < cutoffs[4]:
		return 85
	default:
		return 95
	}
}

// BMI calculates the body mass index: weight in kilograms over squared
// height in meters, contextualized into one of 5 bands. Subjects under 20
// get age/gender adjusted thresholds via the percentile table, everyone
// else the standard adult ones.
func BMI(age int, gender Gender, weightKg, heightCm float64) (Result, error) {
	if age <= 0 {
		return Result{}, fmt.Errorf("%w: invalid age", ErrInvalidInput)
	}
	if weightKg <= 0 || heightCm <= 0 {
		return Result{}, fmt.Errorf("%w: weight and height must be positive", ErrInvalidInput)
	}

	heightM := heightCm / 100
	bmi := weightKg / (heightM * heightM)

	var context string
	if age < 20 {
		switch Percentile(bmi, age, gender) {
		case 5:
			context = ContextSeverelyUnderweight
		case 25:
			context = ContextUnderweight
		case 50, 75:
			context = ContextHealthyWeight
		case 85:
			context = ContextOverweight
		default:
			context = ContextObesity
		}
	} else {
		switch {
		case bmi < 16:
			context = ContextSeverelyUnderweight
		case bmi < 18.5:
			context = ContextUnderweight
		case bmi < 25:
			context = ContextHealthyWeight
		case bmi < 30:
			context = ContextOverweight
		default:
			context = ContextObesity
		}
	}

	return Result{
		Result:  bmi,
		Context: context,
		Explanation: "The Body Mass Index is a value obtained from the weight and height of a person, " +
			"used to classify their weight as healthy or not for their height, age, and gender.",
	}, nil
}
