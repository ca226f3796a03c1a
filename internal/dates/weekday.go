package dates

// Weekday is one of the 7 schedule slot codes of an active
// objective recurrence schedule.
type Weekday string

const (
	Monday    Weekday = "MO"
	Tuesday   Weekday = "TU"
	Wednesday Weekday = "WE"
	Thursday  Weekday = "TH"
	Friday    Weekday = "FR"
	Saturday  Weekday = "SA"
	Sunday    Weekday = "SU"
)

// WeekdayCodes is the full week, monday first.
var WeekdayCodes = [7]Weekday{
	Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday,
}

// ScheduleSlot maps the date to its weekday code.
func (d Date) ScheduleSlot() Weekday {
	// time.Weekday is sunday-indexed, the schedule is monday-indexed
	idx := (int(d.Time().Weekday()) + 6) % 7
	return WeekdayCodes[idx]
}

// TodaySlot is ScheduleSlot applied to the current date, used to test
// whether an active objective is due today.
func TodaySlot() Weekday {
	return Today().ScheduleSlot()
}
