package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"clientschedule/internal/domain"
	"clientschedule/internal/service/appointments"
	"clientschedule/internal/store"
)

const (
	userIDHeader   = "x-user-id"
	userNameHeader = "x-user-name"
	dateLayout     = "2006-01-02"
)

type AppointmentsServer struct {
	svc appointmentsService
	log *slog.Logger
}

var _ AppointmentsServiceServer = (*AppointmentsServer)(nil)

type appointmentsService interface {
	Check(ctx context.Context, in appointments.SaveInput) (domain.Verdict, error)
	Save(ctx context.Context, actor domain.Identity, in appointments.SaveInput) (domain.Appointment, error)
	Delete(ctx context.Context, id int64) error
	DeleteCustomer(ctx context.Context, id int64) error
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Appointment, error)
	NextAppointmentID(ctx context.Context) (int64, error)
	ResolveDivision(ctx context.Context, country, division string) (int64, error)
	Window(date time.Time) (domain.LocalWindow, []string)
	Upcoming(ctx context.Context, actor domain.Identity) ([]domain.Appointment, error)
	Hours() domain.BusinessHours
}

func NewAppointmentsServer(svc appointmentsService, log *slog.Logger) *AppointmentsServer {
	if log == nil {
		log = slog.Default()
	}
	return &AppointmentsServer{
		svc: svc,
		log: log.With(slog.String("component", "grpc.appointments")),
	}
}

func (s *AppointmentsServer) rpcLog(ctx context.Context, rpc string) *slog.Logger {
	log := s.log.With(slog.String("rpc", rpc))
	if id := RequestID(ctx); id != "" {
		log = log.With(slog.String("request_id", id))
	}
	return log
}

func (s *AppointmentsServer) CheckAppointment(ctx context.Context, req *CheckAppointmentRequest) (*CheckAppointmentResponse, error) {
	log := s.rpcLog(ctx, "CheckAppointment")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	in, err := toSaveInput(req.Appointment)
	if err != nil {
		log.Warn("invalid request", slog.Any("err", err))
		return nil, err
	}

	verdict, err := s.svc.Check(ctx, in)
	if err != nil {
		return nil, s.statusError(log, err, "appointment check failed")
	}

	if !verdict.Accepted() {
		log.Debug("appointment check rejected",
			slog.Int64("customer_id", in.CustomerID),
			slog.String("kind", string(verdict.Rejection.Kind)),
		)
		return &CheckAppointmentResponse{
			RejectKind: string(verdict.Rejection.Kind),
			Detail:     verdict.Rejection.Detail,
		}, nil
	}
	return &CheckAppointmentResponse{Accepted: true}, nil
}

func (s *AppointmentsServer) SaveAppointment(ctx context.Context, req *SaveAppointmentRequest) (*SaveAppointmentResponse, error) {
	log := s.rpcLog(ctx, "SaveAppointment")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, err := identity(ctx)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_identity"), slog.Any("err", err))
		return nil, err
	}
	in, err := toSaveInput(req.Appointment)
	if err != nil {
		log.Warn("invalid request", slog.Any("err", err))
		return nil, err
	}

	appt, err := s.svc.Save(ctx, actor, in)
	if err != nil {
		return nil, s.statusError(log, err, "appointment save failed")
	}

	log.Info("appointment saved",
		slog.Int64("appointment_id", appt.ID),
		slog.Int64("customer_id", appt.CustomerID),
		slog.Time("start_time", appt.Start),
		slog.Time("end_time", appt.End),
	)
	return &SaveAppointmentResponse{Appointment: s.toWire(appt)}, nil
}

func (s *AppointmentsServer) DeleteAppointment(ctx context.Context, req *DeleteAppointmentRequest) (*DeleteAppointmentResponse, error) {
	log := s.rpcLog(ctx, "DeleteAppointment")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if err := s.svc.Delete(ctx, req.AppointmentId); err != nil {
		return nil, s.statusError(log.With(slog.Int64("appointment_id", req.AppointmentId)), err, "appointment delete failed")
	}

	log.Info("appointment deleted", slog.Int64("appointment_id", req.AppointmentId))
	return &DeleteAppointmentResponse{}, nil
}

func (s *AppointmentsServer) ListCustomerAppointments(ctx context.Context, req *ListCustomerAppointmentsRequest) (*ListCustomerAppointmentsResponse, error) {
	log := s.rpcLog(ctx, "ListCustomerAppointments")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	appts, err := s.svc.ListByCustomer(ctx, req.CustomerId)
	if err != nil {
		return nil, s.statusError(log.With(slog.Int64("customer_id", req.CustomerId)), err, "appointments list failed")
	}

	log.Debug("appointments listed", slog.Int64("customer_id", req.CustomerId), slog.Int("count", len(appts)))
	return &ListCustomerAppointmentsResponse{Appointments: s.toWireList(appts)}, nil
}

func (s *AppointmentsServer) NextAppointmentID(ctx context.Context, req *NextAppointmentIDRequest) (*NextAppointmentIDResponse, error) {
	log := s.rpcLog(ctx, "NextAppointmentID")

	id, err := s.svc.NextAppointmentID(ctx)
	if err != nil {
		return nil, s.statusError(log, err, "next appointment id failed")
	}
	return &NextAppointmentIDResponse{AppointmentId: id}, nil
}

func (s *AppointmentsServer) BusinessWindow(ctx context.Context, req *BusinessWindowRequest) (*BusinessWindowResponse, error) {
	log := s.rpcLog(ctx, "BusinessWindow")

	hours := s.svc.Hours()
	date := time.Now().In(referenceZone(hours))
	if req != nil && strings.TrimSpace(req.Date) != "" {
		d, err := time.Parse(dateLayout, strings.TrimSpace(req.Date))
		if err != nil {
			log.Warn("invalid request", slog.String("reason", "bad_date"), slog.String("date", req.Date))
			return nil, status.Error(codes.InvalidArgument, "date must be YYYY-MM-DD")
		}
		date = d
	}

	w, slots := s.svc.Window(date)
	return &BusinessWindowResponse{
		Date:       date.Format(dateLayout),
		LocalZone:  w.Open.Location().String(),
		Open:       timestamppb.New(w.Open),
		Close:      timestamppb.New(w.Close),
		OpenLocal:  w.OpenClock().String(),
		CloseLocal: w.CloseClock().String(),
		Slots:      slots,
	}, nil
}

func (s *AppointmentsServer) UpcomingAppointments(ctx context.Context, req *UpcomingAppointmentsRequest) (*UpcomingAppointmentsResponse, error) {
	log := s.rpcLog(ctx, "UpcomingAppointments")

	actor, err := identity(ctx)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_identity"), slog.Any("err", err))
		return nil, err
	}

	appts, err := s.svc.Upcoming(ctx, actor)
	if err != nil {
		return nil, s.statusError(log.With(slog.Int64("user_id", actor.UserID)), err, "upcoming appointments failed")
	}

	log.Debug("upcoming appointments listed", slog.Int64("user_id", actor.UserID), slog.Int("count", len(appts)))
	return &UpcomingAppointmentsResponse{Appointments: s.toWireList(appts)}, nil
}

func (s *AppointmentsServer) DeleteCustomer(ctx context.Context, req *DeleteCustomerRequest) (*DeleteCustomerResponse, error) {
	log := s.rpcLog(ctx, "DeleteCustomer")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if err := s.svc.DeleteCustomer(ctx, req.CustomerId); err != nil {
		return nil, s.statusError(log.With(slog.Int64("customer_id", req.CustomerId)), err, "customer delete failed")
	}

	log.Info("customer deleted", slog.Int64("customer_id", req.CustomerId))
	return &DeleteCustomerResponse{}, nil
}

func (s *AppointmentsServer) ResolveDivision(ctx context.Context, req *ResolveDivisionRequest) (*ResolveDivisionResponse, error) {
	log := s.rpcLog(ctx, "ResolveDivision")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := s.svc.ResolveDivision(ctx, req.Country, req.Division)
	if err != nil {
		return nil, s.statusError(log, err, "division lookup failed")
	}
	return &ResolveDivisionResponse{DivisionId: id}, nil
}

// statusError maps service errors onto gRPC codes. Store faults are logged and
// hidden behind a generic message.
func (s *AppointmentsServer) statusError(log *slog.Logger, err error, msg string) error {
	var rej *domain.Rejection
	if errors.As(err, &rej) {
		log.Info("appointment rejected", slog.String("kind", string(rej.Kind)), slog.String("detail", rej.Detail))
		code := codes.InvalidArgument
		if rej.Kind == domain.RejectTimeSlotConflict {
			code = codes.FailedPrecondition
		}
		return status.Error(code, fmt.Sprintf("%s: %s", rej.Kind, rej.Detail))
	}

	var vErr *appointments.ValidationError
	if errors.As(err, &vErr) {
		log.Warn("invalid request", slog.Any("err", err))
		return status.Error(codes.InvalidArgument, vErr.Error())
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		log.Info("not found", slog.Any("err", err))
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, store.ErrConflict):
		log.Info("write conflict", slog.Any("err", err))
		return status.Error(codes.Aborted, "the schedule changed while saving. Try again.")
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn(msg, slog.Any("err", err))
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	}

	log.Error(msg, slog.Any("err", err))
	return status.Error(codes.Internal, "internal error")
}

func identity(ctx context.Context) (domain.Identity, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return domain.Identity{}, nil
	}
	var id domain.Identity
	if raw := firstValue(md, userIDHeader); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.Identity{}, status.Errorf(codes.InvalidArgument, "%s must be an integer", userIDHeader)
		}
		id.UserID = n
	}
	id.Name = firstValue(md, userNameHeader)
	return id, nil
}

func firstValue(md metadata.MD, key string) string {
	values := md.Get(key)
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func toSaveInput(in *AppointmentInput) (appointments.SaveInput, error) {
	if in == nil {
		return appointments.SaveInput{}, status.Error(codes.InvalidArgument, "appointment is required")
	}
	if in.StartTime == nil || in.EndTime == nil {
		return appointments.SaveInput{}, status.Error(codes.InvalidArgument, "start_time and end_time are required")
	}
	if err := in.StartTime.CheckValid(); err != nil {
		return appointments.SaveInput{}, status.Errorf(codes.InvalidArgument, "start_time: %v", err)
	}
	if err := in.EndTime.CheckValid(); err != nil {
		return appointments.SaveInput{}, status.Errorf(codes.InvalidArgument, "end_time: %v", err)
	}
	return appointments.SaveInput{
		ID:          in.Id,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		Type:        in.Type,
		Start:       in.StartTime.AsTime(),
		End:         in.EndTime.AsTime(),
		CustomerID:  in.CustomerId,
		UserID:      in.UserId,
		ContactName: in.ContactName,
	}, nil
}

func (s *AppointmentsServer) toWire(a domain.Appointment) *Appointment {
	local := localZone(s.svc.Hours())
	out := &Appointment{
		Id:            a.ID,
		Title:         a.Title,
		Description:   a.Description,
		Location:      a.Location,
		Type:          a.Type,
		StartTime:     timestamppb.New(a.Start),
		EndTime:       timestamppb.New(a.End),
		StartLocal:    a.Start.In(local).Format(time.RFC3339),
		EndLocal:      a.End.In(local).Format(time.RFC3339),
		CustomerId:    a.CustomerID,
		UserId:        a.UserID,
		ContactId:     a.ContactID,
		CreatedBy:     a.CreatedBy,
		LastUpdatedBy: a.LastUpdatedBy,
	}
	if !a.CreateDate.IsZero() {
		out.CreateDate = timestamppb.New(a.CreateDate)
	}
	if !a.LastUpdate.IsZero() {
		out.LastUpdate = timestamppb.New(a.LastUpdate)
	}
	return out
}

func (s *AppointmentsServer) toWireList(appts []domain.Appointment) []*Appointment {
	out := make([]*Appointment, 0, len(appts))
	for _, a := range appts {
		out = append(out, s.toWire(a))
	}
	return out
}

func localZone(h domain.BusinessHours) *time.Location {
	if h.Local == nil {
		return time.Local
	}
	return h.Local
}

func referenceZone(h domain.BusinessHours) *time.Location {
	if h.Reference == nil {
		return time.UTC
	}
	return h.Reference
}
