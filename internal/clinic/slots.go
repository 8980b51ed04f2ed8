package clinic

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	slotStep   = 30 * time.Minute
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

var ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

// DayLabel returns the weekday of a "YYYY-MM-DD" date as stored on schedule
// windows, e.g. MONDAY.
func DayLabel(date string) (string, error) {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return strings.ToUpper(d.Weekday().String()), nil
}

// GenerateSlots lists the free start times for date: every 30 minutes from
// each window's start while before its end, minus the times already taken
// by a non-cancelled appointment on that date. A time counts as taken only
// when it equals the appointment's time string exactly; durations are not
// considered. The result is sorted, free of duplicates and never nil.
func GenerateSlots(windows []ScheduleWindow, appointments []Appointment, date string) []string {
	taken := make(map[string]struct{}, len(appointments))
	for _, a := range appointments {
		if a.Date != date || a.Status == StatusCancelled {
			continue
		}
		taken[a.Time] = struct{}{}
	}

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, w := range windows {
		start, err := parseClock(w.Start)
		if err != nil {
			log.Warn().Err(err).Int("employee_id", w.EmployeeID).Str("day", w.Day).Msg("skipping schedule window")
			continue
		}
		end, err := parseClock(w.End)
		if err != nil {
			log.Warn().Err(err).Int("employee_id", w.EmployeeID).Str("day", w.Day).Msg("skipping schedule window")
			continue
		}
		for t := start; t.Before(end); t = t.Add(slotStep) {
			label := t.Format(timeLayout)
			if _, ok := taken[label]; ok {
				continue
			}
			if _, ok := seen[label]; ok {
				continue
			}
			seen[label] = struct{}{}
			out = append(out, label)
		}
	}
	sort.Strings(out)
	return out
}

// parseClock reads an "HH:MM" time of day. "24:00" is accepted as the end of
// the day so a window can run until midnight.
func parseClock(s string) (time.Time, error) {
	if s == "24:00" {
		midnight, _ := time.Parse(timeLayout, "00:00")
		return midnight.Add(24 * time.Hour), nil
	}
	return time.Parse(timeLayout, s)
}
