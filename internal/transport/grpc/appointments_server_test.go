package grpc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"clientschedule/internal/domain"
	"clientschedule/internal/service/appointments"
	"clientschedule/internal/store"
)

type fakeAppointmentsService struct {
	checkFn          func(ctx context.Context, in appointments.SaveInput) (domain.Verdict, error)
	saveFn           func(ctx context.Context, actor domain.Identity, in appointments.SaveInput) (domain.Appointment, error)
	deleteFn         func(ctx context.Context, id int64) error
	deleteCustomerFn func(ctx context.Context, id int64) error
	listFn           func(ctx context.Context, customerID int64) ([]domain.Appointment, error)
	upcomingFn       func(ctx context.Context, actor domain.Identity) ([]domain.Appointment, error)
	hours            domain.BusinessHours
}

func (f *fakeAppointmentsService) Check(ctx context.Context, in appointments.SaveInput) (domain.Verdict, error) {
	if f.checkFn == nil {
		panic("Check not configured")
	}
	return f.checkFn(ctx, in)
}

func (f *fakeAppointmentsService) Save(ctx context.Context, actor domain.Identity, in appointments.SaveInput) (domain.Appointment, error) {
	if f.saveFn == nil {
		panic("Save not configured")
	}
	return f.saveFn(ctx, actor, in)
}

func (f *fakeAppointmentsService) Delete(ctx context.Context, id int64) error {
	if f.deleteFn == nil {
		panic("Delete not configured")
	}
	return f.deleteFn(ctx, id)
}

func (f *fakeAppointmentsService) DeleteCustomer(ctx context.Context, id int64) error {
	if f.deleteCustomerFn == nil {
		panic("DeleteCustomer not configured")
	}
	return f.deleteCustomerFn(ctx, id)
}

func (f *fakeAppointmentsService) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Appointment, error) {
	if f.listFn == nil {
		panic("ListByCustomer not configured")
	}
	return f.listFn(ctx, customerID)
}

func (f *fakeAppointmentsService) NextAppointmentID(ctx context.Context) (int64, error) {
	panic("not used")
}

func (f *fakeAppointmentsService) ResolveDivision(ctx context.Context, country, division string) (int64, error) {
	panic("not used")
}

func (f *fakeAppointmentsService) Window(date time.Time) (domain.LocalWindow, []string) {
	panic("not used")
}

func (f *fakeAppointmentsService) Upcoming(ctx context.Context, actor domain.Identity) ([]domain.Appointment, error) {
	if f.upcomingFn == nil {
		panic("Upcoming not configured")
	}
	return f.upcomingFn(ctx, actor)
}

func (f *fakeAppointmentsService) Hours() domain.BusinessHours {
	return f.hours
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validWireInput() *AppointmentInput {
	start := time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)
	return &AppointmentInput{
		Title:       "t",
		Description: "d",
		Location:    "l",
		Type:        "Planning",
		StartTime:   timestamppb.New(start),
		EndTime:     timestamppb.New(start.Add(time.Hour)),
		CustomerId:  1,
		UserId:      1,
		ContactName: "Anika Costa",
	}
}

func TestSaveAppointment_RejectsMissingTimes(t *testing.T) {
	srv := NewAppointmentsServer(&fakeAppointmentsService{}, discardLogger())

	in := validWireInput()
	in.EndTime = nil
	_, err := srv.SaveAppointment(context.Background(), &SaveAppointmentRequest{Appointment: in})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %v, want %v", status.Code(err), codes.InvalidArgument)
	}

	_, err = srv.SaveAppointment(context.Background(), &SaveAppointmentRequest{})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %v, want %v", status.Code(err), codes.InvalidArgument)
	}
}

func TestSaveAppointment_PassesIdentityFromMetadata(t *testing.T) {
	var gotActor domain.Identity
	var gotInput appointments.SaveInput
	srv := NewAppointmentsServer(&fakeAppointmentsService{
		saveFn: func(ctx context.Context, actor domain.Identity, in appointments.SaveInput) (domain.Appointment, error) {
			gotActor, gotInput = actor, in
			return domain.Appointment{ID: 9, Start: in.Start, End: in.End}, nil
		},
		hours: domain.BusinessHours{Local: time.UTC},
	}, discardLogger())

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(userIDHeader, "7", userNameHeader, " sam "))
	resp, err := srv.SaveAppointment(ctx, &SaveAppointmentRequest{Appointment: validWireInput()})
	if err != nil {
		t.Fatalf("SaveAppointment error: %v", err)
	}
	if gotActor != (domain.Identity{UserID: 7, Name: "sam"}) {
		t.Fatalf("actor = %+v", gotActor)
	}
	if gotInput.ContactName != "Anika Costa" || gotInput.CustomerID != 1 {
		t.Fatalf("input = %+v", gotInput)
	}
	if resp.Appointment.Id != 9 {
		t.Fatalf("id = %d, want 9", resp.Appointment.Id)
	}
	if resp.Appointment.StartLocal != "2024-03-01T14:00:00Z" {
		t.Fatalf("start_local = %q", resp.Appointment.StartLocal)
	}
}

func TestIdentity_RejectsNonNumericUserID(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(userIDHeader, "abc"))
	if _, err := identity(ctx); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %v, want %v", status.Code(err), codes.InvalidArgument)
	}

	id, err := identity(context.Background())
	if err != nil {
		t.Fatalf("identity error: %v", err)
	}
	if !id.IsZero() {
		t.Fatalf("identity = %+v, want zero", id)
	}
}

func TestStatusError_Mapping(t *testing.T) {
	srv := NewAppointmentsServer(&fakeAppointmentsService{}, discardLogger())

	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{name: "conflict rejection", err: &domain.Rejection{Kind: domain.RejectTimeSlotConflict, Detail: "overlaps"}, want: codes.FailedPrecondition},
		{name: "other rejection", err: &domain.Rejection{Kind: domain.RejectOutsideBusinessHours}, want: codes.InvalidArgument},
		{name: "validation", err: &appointments.ValidationError{}, want: codes.InvalidArgument},
		{name: "not found", err: &appointments.RepositoryError{Op: "x", Err: store.ErrNotFound}, want: codes.NotFound},
		{name: "store conflict", err: &appointments.RepositoryError{Op: "x", Err: store.ErrConflict}, want: codes.Aborted},
		{name: "repository", err: &appointments.RepositoryError{Op: "x", Err: errors.New("disk")}, want: codes.Internal},
		{name: "deadline", err: &appointments.RepositoryError{Op: "x", Err: context.DeadlineExceeded}, want: codes.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := srv.statusError(discardLogger(), tt.err, "failed")
			if status.Code(got) != tt.want {
				t.Fatalf("code = %v, want %v", status.Code(got), tt.want)
			}
		})
	}
}

func TestStatusError_RejectionMessageCarriesKind(t *testing.T) {
	srv := NewAppointmentsServer(&fakeAppointmentsService{}, discardLogger())

	err := srv.statusError(discardLogger(), &domain.Rejection{Kind: domain.RejectTimeSlotConflict, Detail: "overlaps appointment 3"}, "failed")
	msg := status.Convert(err).Message()
	if msg != "TimeSlotConflict: overlaps appointment 3" {
		t.Fatalf("message = %q", msg)
	}
}

func TestStatusError_HidesStoreDetails(t *testing.T) {
	srv := NewAppointmentsServer(&fakeAppointmentsService{}, discardLogger())

	err := srv.statusError(discardLogger(), &appointments.RepositoryError{Op: "save", Err: errors.New("password authentication failed")}, "failed")
	if strings.Contains(status.Convert(err).Message(), "password") {
		t.Fatalf("message leaks store error: %q", status.Convert(err).Message())
	}
}

func TestCheckAppointment_ReportsRejection(t *testing.T) {
	srv := NewAppointmentsServer(&fakeAppointmentsService{
		checkFn: func(ctx context.Context, in appointments.SaveInput) (domain.Verdict, error) {
			return domain.Verdict{Rejection: &domain.Rejection{Kind: domain.RejectDurationExceeded, Detail: "too long"}}, nil
		},
	}, discardLogger())

	resp, err := srv.CheckAppointment(context.Background(), &CheckAppointmentRequest{Appointment: validWireInput()})
	if err != nil {
		t.Fatalf("CheckAppointment error: %v", err)
	}
	if resp.Accepted || resp.RejectKind != "DurationExceeded" || resp.Detail != "too long" {
		t.Fatalf("response = %+v", resp)
	}
}

func TestBusinessWindow_RejectsBadDate(t *testing.T) {
	srv := NewAppointmentsServer(&fakeAppointmentsService{}, discardLogger())

	_, err := srv.BusinessWindow(context.Background(), &BusinessWindowRequest{Date: "03/01/2024"})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %v, want %v", status.Code(err), codes.InvalidArgument)
	}
}

func TestDeleteAppointment_NotFound(t *testing.T) {
	srv := NewAppointmentsServer(&fakeAppointmentsService{
		deleteFn: func(ctx context.Context, id int64) error {
			return &appointments.RepositoryError{Op: "delete appointment", Err: store.ErrNotFound}
		},
	}, discardLogger())

	_, err := srv.DeleteAppointment(context.Background(), &DeleteAppointmentRequest{AppointmentId: 5})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("code = %v, want %v", status.Code(err), codes.NotFound)
	}
}
