// Package clock decides when a year's capsule opens. Everything is derived
// from wall-clock time in one fixed zone; nothing is stored.
package clock

import (
	"fmt"
	"time"
)

// DefaultZone is the civil calendar the capsule follows.
const DefaultZone = "America/New_York"

// Countdown is the time left until the current year's unlock instant,
// floor-truncated to whole minutes.
type Countdown struct {
	Days     int       `json:"days"`
	Hours    int       `json:"hours"`
	Minutes  int       `json:"minutes"`
	UnlockAt time.Time `json:"unlockAt"`
}

// Policy computes unlock instants in a fixed location. The zero value is
// not usable; build one with New.
type Policy struct {
	loc *time.Location
	now func() time.Time
}

// New loads the named IANA zone. An empty name selects DefaultZone.
func New(zone string) (*Policy, error) {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", zone, err)
	}
	return &Policy{loc: loc, now: time.Now}, nil
}

// WithNow returns a copy of p that reads the current time from now.
func (p *Policy) WithNow(now func() time.Time) *Policy {
	return &Policy{loc: p.loc, now: now}
}

// Location returns the zone the policy works in.
func (p *Policy) Location() *time.Location {
	return p.loc
}

// Now returns the current instant expressed in the policy zone.
func (p *Policy) Now() time.Time {
	return p.now().In(p.loc)
}

// CurrentYear is the calendar year of Now.
func (p *Policy) CurrentYear() int {
	return p.Now().Year()
}

// UnlockInstant is midnight, February 14 of year, in the policy zone.
func (p *Policy) UnlockInstant(year int) time.Time {
	return time.Date(year, time.February, 14, 0, 0, 0, 0, p.loc)
}

// IsUnlocked reports whether the capsule of year is open at now. Past years
// are always open, future years always sealed.
func (p *Policy) IsUnlocked(year int, now time.Time) bool {
	now = now.In(p.loc)
	switch {
	case year < now.Year():
		return true
	case year > now.Year():
		return false
	default:
		return !now.Before(p.UnlockInstant(year))
	}
}

// IsUnlockedNow is IsUnlocked evaluated at Now.
func (p *Policy) IsUnlockedNow(year int) bool {
	return p.IsUnlocked(year, p.Now())
}

// TimeUntilUnlock returns the countdown to the unlock instant of now's
// year, or nil once that instant has passed.
func (p *Policy) TimeUntilUnlock(now time.Time) *Countdown {
	now = now.In(p.loc)
	unlock := p.UnlockInstant(now.Year())
	if !now.Before(unlock) {
		return nil
	}

	total := int(unlock.Sub(now) / time.Minute)
	return &Countdown{
		Days:     total / (24 * 60),
		Hours:    total % (24 * 60) / 60,
		Minutes:  total % 60,
		UnlockAt: unlock,
	}
}
