package domain

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"
)

const (
	DefaultReferenceZone = "America/New_York"
	DefaultSlotMinutes   = 15
	DefaultMaxDuration   = 8 * time.Hour
)

var (
	DefaultOpen  = ClockTime{Hour: 8}
	DefaultClose = ClockTime{Hour: 22}
)

// ClockTime is a time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid clock time %q", s)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// ClockOf returns the wall-clock time of t in t's own location.
func ClockOf(t time.Time) ClockTime {
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}
}

func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c ClockTime) After(o ClockTime) bool {
	return c.Minutes() > o.Minutes()
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// BusinessHours is the daily window in which appointments may be held. Open and
// Close are wall-clock times in Reference; Local is the zone the window is
// presented in.
type BusinessHours struct {
	Reference   *time.Location
	Local       *time.Location
	Open        ClockTime
	Close       ClockTime
	SlotMinutes int
	MaxDuration time.Duration
}

// DefaultBusinessHours is 08:00-22:00 America/New_York in 15 minute slots with
// appointments of at most 8 hours. A nil local means the system zone.
func DefaultBusinessHours(local *time.Location) (BusinessHours, error) {
	ref, err := time.LoadLocation(DefaultReferenceZone)
	if err != nil {
		return BusinessHours{}, fmt.Errorf("load %s: %w", DefaultReferenceZone, err)
	}
	if local == nil {
		local = time.Local
	}
	return BusinessHours{
		Reference:   ref,
		Local:       local,
		Open:        DefaultOpen,
		Close:       DefaultClose,
		SlotMinutes: DefaultSlotMinutes,
		MaxDuration: DefaultMaxDuration,
	}, nil
}

func (h BusinessHours) Validate() error {
	if h.Reference == nil {
		return errors.New("business hours: reference zone is required")
	}
	if !h.Close.After(h.Open) {
		return fmt.Errorf("business hours: close %s must be after open %s", h.Close, h.Open)
	}
	if h.SlotMinutes <= 0 {
		return errors.New("business hours: slot minutes must be positive")
	}
	if h.MaxDuration <= 0 {
		return errors.New("business hours: max duration must be positive")
	}
	if span := time.Duration(h.Close.Minutes()-h.Open.Minutes()) * time.Minute; h.MaxDuration > span {
		return fmt.Errorf("business hours: max duration %s exceeds the %s business day", h.MaxDuration, span)
	}
	return nil
}

func (h BusinessHours) local() *time.Location {
	if h.Local == nil {
		return time.Local
	}
	return h.Local
}

func (h BusinessHours) reference() *time.Location {
	if h.Reference == nil {
		return time.UTC
	}
	return h.Reference
}

// LocalWindow is one day's business window expressed in the local zone.
type LocalWindow struct {
	Year  int
	Month time.Month
	Day   int
	Open  time.Time
	Close time.Time
}

func (w LocalWindow) OpenClock() ClockTime  { return ClockOf(w.Open) }
func (w LocalWindow) CloseClock() ClockTime { return ClockOf(w.Close) }

// Contains reports whether t lies in [Open, Close].
func (w LocalWindow) Contains(t time.Time) bool {
	return !t.Before(w.Open) && !t.After(w.Close)
}

// ComputeLocalWindow builds the opening and closing instants on the given
// reference-zone date and converts them to the local zone. The instants are
// preserved, so the local wall-clock values move with daylight saving.
func (h BusinessHours) ComputeLocalWindow(year int, month time.Month, day int) LocalWindow {
	ref := h.reference()
	open := time.Date(year, month, day, h.Open.Hour, h.Open.Minute, 0, 0, ref)
	closing := time.Date(year, month, day, h.Close.Hour, h.Close.Minute, 0, 0, ref)
	return LocalWindow{
		Year:  year,
		Month: month,
		Day:   day,
		Open:  open.In(h.local()),
		Close: closing.In(h.local()),
	}
}

// WindowFor returns the window of the reference-zone business day containing t.
func (h BusinessHours) WindowFor(t time.Time) LocalWindow {
	r := t.In(h.reference())
	return h.ComputeLocalWindow(r.Year(), r.Month(), r.Day())
}

// Slots lists the selectable local times of day for the given reference date.
// A window that wraps past local midnight yields no slots.
func (h BusinessHours) Slots(year int, month time.Month, day int) iter.Seq[string] {
	w := h.ComputeLocalWindow(year, month, day)
	return GenerateSlots(w.OpenClock(), w.CloseClock(), h.SlotMinutes)
}

// GenerateSlots yields "HH:MM" labels from open to closing inclusive, stepping
// by intervalMinutes. Nothing is yielded when open is after closing; the last
// label is never past closing.
func GenerateSlots(open, closing ClockTime, intervalMinutes int) iter.Seq[string] {
	return func(yield func(string) bool) {
		if intervalMinutes <= 0 {
			return
		}
		for m := open.Minutes(); m <= closing.Minutes(); m += intervalMinutes {
			if !yield(ClockTime{Hour: m / 60, Minute: m % 60}.String()) {
				return
			}
		}
	}
}
