package medicine

import (
	"math"
	"time"
)

// State is the visual classification of a course
type State string

const (
	StateActive     State = "active"
	StateEndingSoon State = "ending-soon"
	StateExpired    State = "expired"
)

// EndingSoonDays is the remaining-days threshold for StateEndingSoon
const EndingSoonDays = 3

// Course is the derived, never stored, progress of a record at a given instant
type Course struct {
	End           time.Time
	Expired       bool
	RemainingDays int
	State         State
}

// CourseEnd returns local midnight of the start date plus duration days, in
// the location of now. An unparseable start date yields the zero time, which
// makes the course count as expired.
func CourseEnd(startDate string, duration int, loc *time.Location) time.Time {
	start, err := time.ParseInLocation(DateLayout, startDate, loc)
	if err != nil {
		return time.Time{}
	}
	return start.AddDate(0, 0, duration)
}

// Progress computes expiry, remaining days and classification of r at now
func Progress(r Record, now time.Time) Course {
	end := CourseEnd(r.StartDate, r.Duration, now.Location())
	c := Course{
		End:           end,
		Expired:       now.After(end),
		RemainingDays: int(math.Ceil(end.Sub(now).Hours() / 24)),
	}

	switch {
	case c.Expired:
		c.State = StateExpired
	case c.RemainingDays <= EndingSoonDays:
		c.State = StateEndingSoon
	default:
		c.State = StateActive
	}
	return c
}

// IsExpired reports whether now is past the end of the course
func IsExpired(r Record, now time.Time) bool {
	return now.After(CourseEnd(r.StartDate, r.Duration, now.Location()))
}
