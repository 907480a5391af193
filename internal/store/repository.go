package store

import (
	"context"
	"time"

	"clientschedule/internal/domain"
)

// Repository is the persistence boundary for customers and their appointments.
type Repository interface {
	AppointmentsByCustomer(ctx context.Context, customerID int64) ([]domain.Appointment, error)
	GetAppointment(ctx context.Context, id int64) (domain.Appointment, error)
	// NextAppointmentID is MAX(id)+1. It is for display and does not reserve the id.
	NextAppointmentID(ctx context.Context) (int64, error)
	ResolveContactID(ctx context.Context, name string) (int64, error)
	ResolveDivisionID(ctx context.Context, country, division string) (int64, error)

	// SaveAppointment inserts when appt.ID is 0 and updates otherwise.
	SaveAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	DeleteAppointment(ctx context.Context, id int64) error
	// DeleteCustomer removes the customer and its appointments atomically.
	DeleteCustomer(ctx context.Context, id int64) error

	// UpcomingForUser lists appointments of userID with from <= start <= to,
	// ordered by start.
	UpcomingForUser(ctx context.Context, userID int64, from, to time.Time) ([]domain.Appointment, error)

	InCustomerTransaction(ctx context.Context, customerID int64, fn func(ctx context.Context, tx ScheduleTx) error) error
}

// ScheduleTx is the view of a customer's schedule inside InCustomerTransaction.
type ScheduleTx interface {
	AppointmentsByCustomer(ctx context.Context, customerID int64) ([]domain.Appointment, error)
	GetAppointment(ctx context.Context, id int64) (domain.Appointment, error)
	SaveAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
}
