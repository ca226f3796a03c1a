package dates

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrMalformedDate marks a date string that does not match the DD/MM/YYYY
// format. It indicates store corruption when raised on read paths.
var ErrMalformedDate = errors.New("malformed date, must be DD/MM/YYYY")

var dateKeyRegex = regexp.MustCompile(`^([0-2][0-9]|3[01])/(0[1-9]|1[0-2])/\d{4}$`)

// Date is a plain calendar date, no time of day, no timezone logic
// beyond the local wall clock.
type Date struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

func Today() Date {
	return FromTime(time.Now())
}

func FromTime(t time.Time) Date {
	return Date{
		Day:   t.Day(),
		Month: int(t.Month()),
		Year:  t.Year(),
	}
}

// Time returns the date at local midnight.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.Local)
}

// Offset returns the date deltaDays away. deltaDays may be negative.
func (d Date) Offset(deltaDays int) Date {
	return FromTime(d.Time().AddDate(0, 0, deltaDays))
}

// String renders the DD/MM/YYYY key used all over the stored data.
func (d Date) String() string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, d.Month, d.Year)
}

// DaysSince returns the number of whole days from other to d,
// negative if other is after d. The difference is computed in UTC so
// a 23 hour spring-forward day still counts as one day.
func (d Date) DaysSince(other Date) int {
	return int(d.utc().Sub(other.utc()).Hours() / 24)
}

func (d Date) utc() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether d is an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func Validate(s string) bool {
	return dateKeyRegex.MatchString(s)
}

// Parse round-trips a DD/MM/YYYY string back into a Date.
func Parse(s string) (Date, error) {
	if !Validate(s) {
		return Date{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}

	var d Date
	if _, err := fmt.Sscanf(s, "%02d/%02d/%04d", &d.Day, &d.Month, &d.Year); err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	return d, nil
}
