// Package civiltime interprets caller-supplied wall-clock timestamps and
// expands weekly recurrences. Callers always supply an explicit numeric UTC
// offset for instants; recurrence arithmetic runs in the civil calendar
// implied by that offset and only the final occurrences are converted to UTC,
// so a 9:00 local anchor stays 9:00 local on every occurrence.
package civiltime

import (
	"fmt"
	"time"

	appErrors "github.com/tutorhub/class-ledger-api/pkg/errors"
)

const (
	civilLayout      = "2006-01-02T15:04:05Z07:00"
	civilLayoutShort = "2006-01-02T15:04:05-0700"
	naiveLayout      = "2006-01-02T15:04:05"
)

// ParseCivil parses an ISO-8601 date-time string that carries an explicit
// UTC offset. Offset-less strings are rejected: an instant without an
// offset is not well defined.
func ParseCivil(s string) (time.Time, error) {
	if t, err := time.Parse(civilLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(civilLayoutShort, s); err == nil {
		return t, nil
	}
	return time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid civil time %q: explicit UTC offset required", s))
}

// ParseNaive parses an offset-less wall-clock string. Used for fields like
// dates of birth where no timezone applies.
func ParseNaive(s string) (time.Time, error) {
	t, err := time.Parse(naiveLayout, s)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid naive time %q", s))
	}
	return t, nil
}

// ToUTC normalizes an instant to UTC. Idempotent.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// WeekdaySet holds weekday codes with Monday=0 .. Sunday=6.
type WeekdaySet [7]bool

// NewWeekdaySet builds a set from weekday codes, rejecting values outside 0-6.
func NewWeekdaySet(days []int) (WeekdaySet, error) {
	var set WeekdaySet
	for _, day := range days {
		if day < 0 || day > 6 {
			return WeekdaySet{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("weekday code %d out of range 0-6", day))
		}
		set[day] = true
	}
	return set, nil
}

// Contains reports whether the given time's weekday is in the set.
func (s WeekdaySet) Contains(t time.Time) bool {
	return s[mondayIndexed(t.Weekday())]
}

// Empty reports whether no weekday is selected.
func (s WeekdaySet) Empty() bool {
	for _, selected := range s {
		if selected {
			return false
		}
	}
	return true
}

func mondayIndexed(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// ExpandWeekly returns every occurrence of start's time-of-day on the given
// weekdays, from start's date up to and including until. The result is a
// finite, strictly ascending sequence of UTC instants; identical inputs
// always yield identical output. Day arithmetic happens in start's own
// offset so the wall-clock anchor is preserved on every occurrence.
func ExpandWeekly(start, until time.Time, weekdays WeekdaySet) []time.Time {
	result := []time.Time{}
	if weekdays.Empty() || until.Before(start) {
		return result
	}

	loc := start.Location()
	year, month, day := start.Date()
	hour, minute, sec := start.Clock()

	for offset := 0; ; offset++ {
		occurrence := time.Date(year, month, day+offset, hour, minute, sec, start.Nanosecond(), loc)
		if occurrence.After(until) {
			break
		}
		if weekdays.Contains(occurrence) {
			result = append(result, ToUTC(occurrence))
		}
	}
	return result
}
