package grpc

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/timestamppb"
	"gorm.io/gorm"

	"clientschedule/internal/domain"
	"clientschedule/internal/service/appointments"
	"clientschedule/internal/store/sqlite"
)

type e2eFixture struct {
	client     *AppointmentsClient
	ny         *time.Location
	customerID int64
}

func newE2E(t *testing.T) e2eFixture {
	t.Helper()

	db, err := sqlite.Open("file::memory:")
	if err != nil {
		t.Fatalf("sqlite.Open error: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close(db) })
	customerID := seed(t, db)

	ny, err := time.LoadLocation(domain.DefaultReferenceZone)
	if err != nil {
		t.Fatalf("LoadLocation error: %v", err)
	}
	hours, err := domain.DefaultBusinessHours(ny)
	if err != nil {
		t.Fatalf("DefaultBusinessHours error: %v", err)
	}

	log := discardLogger()
	svc := appointments.NewService(sqlite.NewAppointmentRepo(db), hours, log)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(RequestIDInterceptor(log)))
	RegisterAppointmentsServiceServer(srv, NewAppointmentsServer(svc, log))
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return e2eFixture{client: NewAppointmentsClient(conn), ny: ny, customerID: customerID}
}

func seed(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	country := domain.Country{Name: "U.S"}
	division := domain.Division{Name: "New York"}
	user := domain.User{Name: "test"}
	contact := domain.Contact{Name: "Anika Costa", Email: "acosta@example.com"}

	steps := []func() error{
		func() error { return db.Create(&country).Error },
		func() error { division.CountryID = country.ID; return db.Create(&division).Error },
		func() error { return db.Create(&user).Error },
		func() error { return db.Create(&contact).Error },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		Name:          "Daddy Warbucks",
		Address:       "1919 Boardwalk",
		PostalCode:    "01291",
		Phone:         "869-908-1875",
		DivisionID:    division.ID,
		CreateDate:    now,
		CreatedBy:     "script",
		LastUpdate:    now,
		LastUpdatedBy: "script",
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return customer.ID
}

func (f e2eFixture) input(startH, startM, endH, endM int) *AppointmentInput {
	return &AppointmentInput{
		Title:       "Kickoff",
		Description: "Project kickoff",
		Location:    "Office",
		Type:        "Planning",
		StartTime:   timestamppb.New(time.Date(2024, 3, 1, startH, startM, 0, 0, f.ny)),
		EndTime:     timestamppb.New(time.Date(2024, 3, 1, endH, endM, 0, 0, f.ny)),
		CustomerId:  f.customerID,
		UserId:      1,
		ContactName: "Anika Costa",
	}
}

func signedIn(ctx context.Context) context.Context {
	return metadata.AppendToOutgoingContext(ctx, userIDHeader, "1", userNameHeader, "test")
}

func TestE2E_ScheduleCustomerAppointments(t *testing.T) {
	f := newE2E(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var header metadata.MD
	saved, err := f.client.SaveAppointment(
		metadata.AppendToOutgoingContext(signedIn(ctx), requestIDHeader, "req-1"),
		&SaveAppointmentRequest{Appointment: f.input(9, 0, 10, 0)},
		grpc.Header(&header),
	)
	if err != nil {
		t.Fatalf("SaveAppointment error: %v", err)
	}
	if saved.Appointment.Id == 0 {
		t.Fatalf("expected assigned id")
	}
	if saved.Appointment.CreatedBy != "test" {
		t.Fatalf("created_by = %q, want %q", saved.Appointment.CreatedBy, "test")
	}
	if got := header.Get(requestIDHeader); len(got) != 1 || got[0] != "req-1" {
		t.Fatalf("x-request-id = %v, want [req-1]", got)
	}

	_, err = f.client.SaveAppointment(signedIn(ctx), &SaveAppointmentRequest{Appointment: f.input(9, 30, 10, 30)})
	if status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("overlap code = %v, want %v (%v)", status.Code(err), codes.FailedPrecondition, err)
	}
	if !strings.HasPrefix(status.Convert(err).Message(), "TimeSlotConflict") {
		t.Fatalf("overlap message = %q", status.Convert(err).Message())
	}

	check, err := f.client.CheckAppointment(ctx, &CheckAppointmentRequest{Appointment: f.input(10, 0, 11, 0)})
	if err != nil {
		t.Fatalf("CheckAppointment error: %v", err)
	}
	if !check.Accepted {
		t.Fatalf("touching appointment rejected: %+v", check)
	}

	list, err := f.client.ListCustomerAppointments(ctx, &ListCustomerAppointmentsRequest{CustomerId: f.customerID})
	if err != nil {
		t.Fatalf("ListCustomerAppointments error: %v", err)
	}
	if len(list.Appointments) != 1 {
		t.Fatalf("len(appointments) = %d, want 1", len(list.Appointments))
	}
	if !list.Appointments[0].StartTime.AsTime().Equal(time.Date(2024, 3, 1, 9, 0, 0, 0, f.ny)) {
		t.Fatalf("start = %v", list.Appointments[0].StartTime.AsTime())
	}

	next, err := f.client.NextAppointmentID(ctx, &NextAppointmentIDRequest{})
	if err != nil {
		t.Fatalf("NextAppointmentID error: %v", err)
	}
	if next.AppointmentId != saved.Appointment.Id+1 {
		t.Fatalf("next id = %d, want %d", next.AppointmentId, saved.Appointment.Id+1)
	}

	if _, err := f.client.DeleteAppointment(ctx, &DeleteAppointmentRequest{AppointmentId: saved.Appointment.Id}); err != nil {
		t.Fatalf("DeleteAppointment error: %v", err)
	}
	_, err = f.client.DeleteAppointment(ctx, &DeleteAppointmentRequest{AppointmentId: saved.Appointment.Id})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("second delete code = %v, want %v", status.Code(err), codes.NotFound)
	}
}

func TestE2E_SaveRequiresSignedInUser(t *testing.T) {
	f := newE2E(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := f.client.SaveAppointment(ctx, &SaveAppointmentRequest{Appointment: f.input(9, 0, 10, 0)})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %v, want %v", status.Code(err), codes.InvalidArgument)
	}
}

func TestE2E_OutsideBusinessHours(t *testing.T) {
	f := newE2E(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := f.client.SaveAppointment(signedIn(ctx), &SaveAppointmentRequest{Appointment: f.input(21, 30, 22, 30)})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %v, want %v", status.Code(err), codes.InvalidArgument)
	}
	if !strings.HasPrefix(status.Convert(err).Message(), "OutsideBusinessHours") {
		t.Fatalf("message = %q", status.Convert(err).Message())
	}
}

func TestE2E_BusinessWindowAndLookups(t *testing.T) {
	f := newE2E(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	w, err := f.client.BusinessWindow(ctx, &BusinessWindowRequest{Date: "2024-03-01"})
	if err != nil {
		t.Fatalf("BusinessWindow error: %v", err)
	}
	if w.OpenLocal != "08:00" || w.CloseLocal != "22:00" {
		t.Fatalf("window = %s-%s, want 08:00-22:00", w.OpenLocal, w.CloseLocal)
	}
	if len(w.Slots) != 57 || w.Slots[0] != "08:00" || w.Slots[56] != "22:00" {
		t.Fatalf("slots = %v", w.Slots)
	}

	div, err := f.client.ResolveDivision(ctx, &ResolveDivisionRequest{Country: "U.S", Division: "New York"})
	if err != nil {
		t.Fatalf("ResolveDivision error: %v", err)
	}
	if div.DivisionId == 0 {
		t.Fatalf("expected division id")
	}

	_, err = f.client.ResolveDivision(ctx, &ResolveDivisionRequest{Country: "U.S", Division: "Atlantis"})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("code = %v, want %v", status.Code(err), codes.NotFound)
	}

	up, err := f.client.UpcomingAppointments(signedIn(ctx), &UpcomingAppointmentsRequest{})
	if err != nil {
		t.Fatalf("UpcomingAppointments error: %v", err)
	}
	if len(up.Appointments) != 0 {
		t.Fatalf("len(upcoming) = %d, want 0", len(up.Appointments))
	}

	if _, err := f.client.DeleteCustomer(ctx, &DeleteCustomerRequest{CustomerId: f.customerID}); err != nil {
		t.Fatalf("DeleteCustomer error: %v", err)
	}
}
