// Package health is the deterministic calculation library of the backend:
// body mass index, body fat percentage (BMI based and US Navy based),
// metabolic equivalent of task lookups and session performance estimates.
// Everything in here is pure, synchronous and side-effect free.
package health

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input provided")
	ErrMissingInput = errors.New("missing input provided")
)

type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Result is the outcome of any calculation: the numeric value, a short
// context band (e.g. "healthy weight") and a human readable explanation
// the client shows on the results screen.
type Result struct {
	Result      float64 `json:"result"`
	Context     string  `json:"context"`
	Explanation string  `json:"explanation"`
}

// UserHealthData is the read-only slice of the user profile the
// calculations need.
type UserHealthData struct {
	Age      int     `json:"age"`
	Gender   Gender  `json:"gender"`
	WeightKg float64 `json:"weight"`
	HeightCm float64 `json:"height"`
}
