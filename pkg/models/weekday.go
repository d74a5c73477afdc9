package models

import "time"

// Weekday numbers days the way PostgreSQL's EXTRACT(DOW) does: 0 is Sunday.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayNames = [...]string{
	Sunday:    "Sunday",
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
	Saturday:  "Saturday",
}

// String returns the English day name, or "Unknown" outside 0..6.
func (d Weekday) String() string {
	if d < Sunday || d > Saturday {
		return "Unknown"
	}
	return weekdayNames[d]
}

// WeekdayOf returns the day of week of t in t's own location.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(t.Weekday())
}
