// Package policy holds the pure time-window rules consulted by the
// reservation lifecycle.
package policy

import (
	"time"
)

// DefaultCancellationLeadTime is the minimum time between a participant's
// cancellation and the event start.
const DefaultCancellationLeadTime = 24 * time.Hour

// Cancellation decides whether a participant may still cancel.
type Cancellation struct {
	LeadTime time.Duration
}

// NewCancellation returns a policy with the given lead time, falling back to
// DefaultCancellationLeadTime when leadTime is not positive.
func NewCancellation(leadTime time.Duration) Cancellation {
	if leadTime <= 0 {
		leadTime = DefaultCancellationLeadTime
	}
	return Cancellation{LeadTime: leadTime}
}

// CanCancel reports whether start is at least LeadTime after now.
func (c Cancellation) CanCancel(start, now time.Time) bool {
	return start.Sub(now) >= c.LeadTime
}

// ScheduledStart combines the calendar day of date with an "HH:MM"
// time-of-day in loc. A malformed clock string yields midnight.
func ScheduledStart(date time.Time, hhmm string, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	hour, minute := parseClock(hhmm)
	y, m, d := date.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, loc)
}

func parseClock(s string) (hour, minute int) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0
	}
	return t.Hour(), t.Minute()
}

// ValidClock reports whether s is a well-formed "HH:MM" time of day.
func ValidClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}
