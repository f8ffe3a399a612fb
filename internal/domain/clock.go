package domain

import (
	"fmt"
	"strings"
	"time"
)

// ClockLayout is the time-of-day format used by load files, scenario config, and queries ("10:20 AM").
const ClockLayout = "3:04 PM"

// At returns the given hour and minute on the service day of day.
func At(day time.Time, hour, minute int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, day.Location())
}

// EndOfDay is the implicit deadline for parcels without an explicit time (23:59).
func EndOfDay(day time.Time) time.Time {
	return At(day, 23, 59)
}

// ParseClock resolves a time of day such as "9:05 AM" onto the service day.
func ParseClock(day time.Time, s string) (time.Time, error) {
	t, err := time.Parse(ClockLayout, strings.ToUpper(strings.TrimSpace(s)))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse clock %q: %w", s, err)
	}

	return At(day, t.Hour(), t.Minute()), nil
}

// Deadline is a delivery cutoff on the service day. EndOfDay deadlines carry 23:59 in At.
type Deadline struct {
	At       time.Time
	EndOfDay bool
}

// ParseDeadline accepts "EOD", an empty string, or a time of day.
func ParseDeadline(day time.Time, s string) (Deadline, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "EOD") {
		return Deadline{At: EndOfDay(day), EndOfDay: true}, nil
	}

	at, err := ParseClock(day, s)
	if err != nil {
		return Deadline{}, fmt.Errorf("parse deadline: %w", err)
	}

	return Deadline{At: at}, nil
}

func (d Deadline) String() string {
	if d.EndOfDay {
		return "EOD"
	}
	return d.At.Format(ClockLayout)
}

// Missed reports whether t is past the deadline.
func (d Deadline) Missed(t time.Time) bool {
	return t.After(d.At)
}
