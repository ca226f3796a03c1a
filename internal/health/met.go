package health

import "fmt"

const kmhPerMph = 1.60934

// runningMETBrackets maps running speed (mph, upper bound inclusive) to the
// Compendium of Physical Activities MET value for it. Entries are ordered,
// the last one catches everything faster.
var runningMETBrackets = []struct {
	maxMph float64
	met    float64
}{
	{4.2, 6.5},
	{4.8, 7.8},
	{5.35, 8.5},
	{5.9, 9},
	{6.5, 9.3},
	{6.8, 10.5},
	{7, 11},
	{7.5, 11.8},
	{8, 12},
	{8.6, 12.5},
	{9, 13},
	{9.4, 14.8},
	{9.8, 14.8},
	{11, 16.8},
	{12, 18.5},
	{13, 19.8},
}

const runningMETFastest = 23.0

// RunningMET returns the metabolic equivalent of task for running at the
// given speed in km/h.
func RunningMET(speedKmh float64) (float64, error) {
	if speedKmh <= 0 {
		return 0, fmt.Errorf("%w: speed must be positive", ErrInvalidInput)
	}
	mph := speedKmh / kmhPerMph
	for _, b := range runningMETBrackets {
		if mph <= b.maxMph {
			return b.met, nil
		}
	}
	return runningMETFastest, nil
}

// SpeedBracket is one selectable speed range for a running objective. The
// estimate speed stored on an objective is an index into SpeedBrackets.
type SpeedBracket struct {
	MinKmh float64
	MaxKmh float64
	Label  string
}

// SpeedBrackets lists the selectable running speed ranges, slowest first.
// The last bracket is open-ended.
var SpeedBrackets = []SpeedBracket{
	{1.6, 3.2, "Brisk Walk"},
	{3.2, 4.0, "Light Jog"},
	{4.0, 4.8, "Moderate Run"},
	{4.8, 5.5, "Fast Run"},
	{5.5, 6.4, "Sprint"},
	{6.4, 8.0, "Fast Sprint"},
	{8.0, 9.6, "Running Fast"},
	{9.6, 11.3, "Very Fast Run"},
	{11.3, 12.9, "Sprinting"},
	{12.9, 14.5, "Fast Sprinting"},
	{14.5, 16.1, "Full Speed Sprinting"},
	{16.1, 0, "Maximum Speed"},
}

// BracketSpeedKmh resolves a stored speed bracket index to the speed used
// for MET and calorie estimates, the midpoint of the bracket range.
func BracketSpeedKmh(index int) (float64, error) {
	if index < 0 || index >= len(SpeedBrackets) {
		return 0, fmt.Errorf("%w: speed bracket index %d out of range", ErrInvalidInput, index)
	}
	b := SpeedBrackets[index]
	if b.MaxKmh == 0 || b.MaxKmh <= b.MinKmh {
		return b.MinKmh, nil
	}
	return (b.MinKmh + b.MaxKmh) / 2, nil
}
