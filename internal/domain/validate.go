package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// RejectKind tags why a candidate appointment was refused.
type RejectKind string

const (
	RejectMissingField         RejectKind = "MissingField"
	RejectInvalidRange         RejectKind = "InvalidRange"
	RejectDurationExceeded     RejectKind = "DurationExceeded"
	RejectOutsideBusinessHours RejectKind = "OutsideBusinessHours"
	RejectUnknownReference     RejectKind = "UnknownReference"
	RejectTimeSlotConflict     RejectKind = "TimeSlotConflict"
)

// Rejection is an expected, user-correctable validation outcome.
type Rejection struct {
	Kind   RejectKind
	Detail string
}

func (r *Rejection) Error() string {
	if r.Detail == "" {
		return string(r.Kind)
	}
	return r.Detail
}

// Candidate is an appointment proposed for creation (ID 0) or update. ContactID
// holds the id resolved from ContactName, or 0 when the name is unknown.
type Candidate struct {
	ID          int64
	Title       string
	Description string
	Location    string
	Type        string
	Start       time.Time
	End         time.Time
	CustomerID  int64
	UserID      int64
	ContactID   int64
	ContactName string
}

type Verdict struct {
	Appointment Appointment
	Rejection   *Rejection
}

func (v Verdict) Accepted() bool {
	return v.Rejection == nil
}

// Declaration order is the order in which missing fields are reported.
type requiredFields struct {
	Title       string `validate:"required"`
	Type        string `validate:"required"`
	Description string `validate:"required"`
	Location    string `validate:"required"`
}

var fields = validator.New()

const displayLayout = "2006-01-02 15:04"

// Validate decides whether c may be accepted given the customer's existing
// appointments. Checks run in a fixed order and stop at the first failure:
// required fields, ordering, duration, business hours, references, overlap.
// The appointment with id excludeID is ignored by the overlap check.
func Validate(c Candidate, existing []Appointment, excludeID int64, hours BusinessHours) Verdict {
	appt := Appointment{
		ID:          c.ID,
		Title:       strings.TrimSpace(c.Title),
		Description: strings.TrimSpace(c.Description),
		Location:    strings.TrimSpace(c.Location),
		Type:        strings.TrimSpace(c.Type),
		Start:       c.Start,
		End:         c.End,
		CustomerID:  c.CustomerID,
		UserID:      c.UserID,
		ContactID:   c.ContactID,
	}

	if field, ok := missingField(appt); ok {
		return reject(RejectMissingField, "%s is required", field)
	}

	if !appt.End.After(appt.Start) {
		return reject(RejectInvalidRange, "end must be after start")
	}

	maxDuration := hours.MaxDuration
	if maxDuration <= 0 {
		maxDuration = DefaultMaxDuration
	}
	if appt.Duration() > maxDuration {
		return reject(RejectDurationExceeded, "appointment lasts %s, longer than the %s limit", appt.Duration(), maxDuration)
	}

	for _, t := range []time.Time{appt.Start, appt.End} {
		w := hours.WindowFor(t)
		if !w.Contains(t) {
			return reject(RejectOutsideBusinessHours, "%s is outside business hours %s-%s",
				t.In(hours.local()).Format(displayLayout), w.OpenClock(), w.CloseClock())
		}
	}
	if w := hours.WindowFor(appt.Start); appt.End.After(w.Close) {
		return reject(RejectOutsideBusinessHours, "%s to %s runs past the close of business at %s",
			appt.Start.In(hours.local()).Format(displayLayout),
			appt.End.In(hours.local()).Format(displayLayout),
			w.Close.Format(displayLayout))
	}

	if c.ContactID <= 0 {
		return reject(RejectUnknownReference, "unknown contact %q", c.ContactName)
	}
	if c.CustomerID <= 0 {
		return reject(RejectUnknownReference, "unknown customer %d", c.CustomerID)
	}
	if c.UserID <= 0 {
		return reject(RejectUnknownReference, "unknown user %d", c.UserID)
	}

	if other, ok := FirstConflict(appt.Start, appt.End, existing, excludeID); ok {
		return reject(RejectTimeSlotConflict, "overlaps appointment %d (%s to %s)",
			other.ID,
			other.Start.In(hours.local()).Format(displayLayout),
			other.End.In(hours.local()).Format(displayLayout))
	}

	return Verdict{Appointment: appt}
}

func reject(kind RejectKind, format string, args ...any) Verdict {
	return Verdict{Rejection: &Rejection{Kind: kind, Detail: fmt.Sprintf(format, args...)}}
}

func missingField(a Appointment) (string, bool) {
	err := fields.Struct(requiredFields{
		Title:       a.Title,
		Type:        a.Type,
		Description: a.Description,
		Location:    a.Location,
	})
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "", false
	}
	return strings.ToLower(verrs[0].Field()), true
}
