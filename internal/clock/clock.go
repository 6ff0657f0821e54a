// Package clock provides the wall clock and the business calendar used to
// decide which calendar day is "today".
package clock

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// DefaultTimezone is the reference timezone for the daily bonus lock.
const DefaultTimezone = "America/New_York"

type Clock interface {
	Now() time.Time
}

type System struct{}

func (System) Now() time.Time { return time.Now() }

// Func adapts a plain function to Clock.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// Fixed returns a Clock that always reports t.
func Fixed(t time.Time) Clock {
	return Func(func() time.Time { return t })
}

// CurrentBusinessDate returns the calendar date of now in loc as YYYY-MM-DD.
func CurrentBusinessDate(now time.Time, loc *time.Location) string {
	return now.In(loc).Format("2006-01-02")
}

// Calendar resolves "today" for a fixed timezone.
type Calendar struct {
	Clock    Clock
	Location *time.Location
}

func NewCalendar(c Clock, timezone string) (*Calendar, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &Calendar{Clock: c, Location: loc}, nil
}

func (c *Calendar) Now() time.Time { return c.Clock.Now() }

func (c *Calendar) Today() string {
	return CurrentBusinessDate(c.Clock.Now(), c.Location)
}
