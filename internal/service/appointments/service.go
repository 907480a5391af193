package appointments

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"clientschedule/internal/domain"
	"clientschedule/internal/store"
)

const DefaultUpcomingLead = 15 * time.Minute

// ValidationError reports a malformed request, as opposed to a scheduling
// rejection which is returned as *domain.Rejection.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// RepositoryError wraps a failure of the underlying store.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

type Option func(*Service)

// WithUpcomingLead sets how far ahead Upcoming looks.
func WithUpcomingLead(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.lead = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

type Service struct {
	repo  store.Repository
	hours domain.BusinessHours
	log   *slog.Logger
	lead  time.Duration
	now   func() time.Time
}

func NewService(repo store.Repository, hours domain.BusinessHours, log *slog.Logger, opts ...Option) *Service {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		repo:  repo,
		hours: hours,
		log:   log.With("component", "appointments"),
		lead:  DefaultUpcomingLead,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Hours() domain.BusinessHours {
	return s.hours
}

// SaveInput is an appointment as entered by the user. ID 0 creates a new
// appointment; the contact is given by name and resolved here.
type SaveInput struct {
	ID          int64
	Title       string
	Description string
	Location    string
	Type        string
	Start       time.Time
	End         time.Time
	CustomerID  int64
	UserID      int64
	ContactName string
}

// Check validates in against the customer's current schedule without saving.
// The returned error is non-nil only when the store fails.
func (s *Service) Check(ctx context.Context, in SaveInput) (domain.Verdict, error) {
	contactID, err := s.resolveContact(ctx, in.ContactName)
	if err != nil {
		return domain.Verdict{}, err
	}
	existing, err := s.repo.AppointmentsByCustomer(ctx, in.CustomerID)
	if err != nil {
		return domain.Verdict{}, &RepositoryError{Op: "load customer appointments", Err: err}
	}
	return domain.Validate(s.candidate(in, contactID), existing, in.ID, s.hours), nil
}

// Save validates and persists in on behalf of actor. The customer's schedule is
// read and written in one transaction. A rejected appointment is returned as a
// *domain.Rejection.
func (s *Service) Save(ctx context.Context, actor domain.Identity, in SaveInput) (domain.Appointment, error) {
	if actor.IsZero() {
		return domain.Appointment{}, validationError("signed-in user is required")
	}
	if in.ID < 0 {
		return domain.Appointment{}, validationError("appointment_id must not be negative")
	}

	contactID, err := s.resolveContact(ctx, in.ContactName)
	if err != nil {
		return domain.Appointment{}, err
	}

	var saved domain.Appointment
	err = s.repo.InCustomerTransaction(ctx, in.CustomerID, func(ctx context.Context, tx store.ScheduleTx) error {
		var prior domain.Appointment
		if in.ID != 0 {
			p, err := tx.GetAppointment(ctx, in.ID)
			if err != nil {
				return err
			}
			prior = p
		}

		existing, err := tx.AppointmentsByCustomer(ctx, in.CustomerID)
		if err != nil {
			return err
		}

		verdict := domain.Validate(s.candidate(in, contactID), existing, in.ID, s.hours)
		if !verdict.Accepted() {
			return verdict.Rejection
		}

		appt := verdict.Appointment
		now := s.now().UTC()
		if in.ID == 0 {
			appt.CreateDate = now
			appt.CreatedBy = actor.Name
		} else {
			appt.CreateDate = prior.CreateDate
			appt.CreatedBy = prior.CreatedBy
		}
		appt.LastUpdate = now
		appt.LastUpdatedBy = actor.Name

		out, err := tx.SaveAppointment(ctx, appt)
		if err != nil {
			return err
		}
		saved = out
		return nil
	})
	if err != nil {
		var rej *domain.Rejection
		if errors.As(err, &rej) {
			s.log.DebugContext(ctx, "appointment rejected",
				"customer_id", in.CustomerID,
				"kind", string(rej.Kind),
				"detail", rej.Detail,
			)
			return domain.Appointment{}, rej
		}
		return domain.Appointment{}, &RepositoryError{Op: "save appointment", Err: err}
	}

	s.log.InfoContext(ctx, "appointment saved",
		"appointment_id", saved.ID,
		"customer_id", saved.CustomerID,
		"by", actor.Name,
	)
	return saved, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return validationError("appointment_id is required")
	}
	if err := s.repo.DeleteAppointment(ctx, id); err != nil {
		return &RepositoryError{Op: "delete appointment", Err: err}
	}
	s.log.InfoContext(ctx, "appointment deleted", "appointment_id", id)
	return nil
}

// DeleteCustomer removes the customer together with all of its appointments.
func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	if id <= 0 {
		return validationError("customer_id is required")
	}
	if err := s.repo.DeleteCustomer(ctx, id); err != nil {
		return &RepositoryError{Op: "delete customer", Err: err}
	}
	s.log.InfoContext(ctx, "customer deleted", "customer_id", id)
	return nil
}

func (s *Service) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Appointment, error) {
	if customerID <= 0 {
		return nil, validationError("customer_id is required")
	}
	rows, err := s.repo.AppointmentsByCustomer(ctx, customerID)
	if err != nil {
		return nil, &RepositoryError{Op: "list customer appointments", Err: err}
	}
	return rows, nil
}

func (s *Service) NextAppointmentID(ctx context.Context) (int64, error) {
	id, err := s.repo.NextAppointmentID(ctx)
	if err != nil {
		return 0, &RepositoryError{Op: "next appointment id", Err: err}
	}
	return id, nil
}

func (s *Service) ResolveDivision(ctx context.Context, country, division string) (int64, error) {
	country = strings.TrimSpace(country)
	division = strings.TrimSpace(division)
	if country == "" || division == "" {
		return 0, validationError("country and division are required")
	}
	id, err := s.repo.ResolveDivisionID(ctx, country, division)
	if err != nil {
		return 0, &RepositoryError{Op: "resolve division", Err: err}
	}
	return id, nil
}

// Window returns the business window and selectable slots for the reference
// calendar date of date. Only date's year, month and day are used.
func (s *Service) Window(date time.Time) (domain.LocalWindow, []string) {
	y, m, d := date.Date()
	w := s.hours.ComputeLocalWindow(y, m, d)
	return w, slices.Collect(s.hours.Slots(y, m, d))
}

// Upcoming lists the actor's appointments starting within the lead time.
func (s *Service) Upcoming(ctx context.Context, actor domain.Identity) ([]domain.Appointment, error) {
	if actor.IsZero() {
		return nil, validationError("signed-in user is required")
	}
	now := s.now()
	rows, err := s.repo.UpcomingForUser(ctx, actor.UserID, now, now.Add(s.lead))
	if err != nil {
		return nil, &RepositoryError{Op: "upcoming appointments", Err: err}
	}
	return rows, nil
}

// resolveContact maps a contact name to its id. An unknown or blank name
// resolves to 0 so the validator reports it.
func (s *Service) resolveContact(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, nil
	}
	id, err := s.repo.ResolveContactID(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, &RepositoryError{Op: "resolve contact", Err: err}
	}
	return id, nil
}

func (s *Service) candidate(in SaveInput, contactID int64) domain.Candidate {
	return domain.Candidate{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		Type:        in.Type,
		Start:       in.Start,
		End:         in.End,
		CustomerID:  in.CustomerID,
		UserID:      in.UserID,
		ContactID:   contactID,
		ContactName: strings.TrimSpace(in.ContactName),
	}
}
