package grpc

import "google.golang.org/protobuf/types/known/timestamppb"

// Appointment is the wire form of a stored appointment. StartLocal and
// EndLocal render the instants in the server's local zone.
type Appointment struct {
	Id            int64                  `json:"id"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	Location      string                 `json:"location"`
	Type          string                 `json:"type"`
	StartTime     *timestamppb.Timestamp `json:"start_time"`
	EndTime       *timestamppb.Timestamp `json:"end_time"`
	StartLocal    string                 `json:"start_local,omitempty"`
	EndLocal      string                 `json:"end_local,omitempty"`
	CustomerId    int64                  `json:"customer_id"`
	UserId        int64                  `json:"user_id"`
	ContactId     int64                  `json:"contact_id"`
	CreateDate    *timestamppb.Timestamp `json:"create_date,omitempty"`
	CreatedBy     string                 `json:"created_by,omitempty"`
	LastUpdate    *timestamppb.Timestamp `json:"last_update,omitempty"`
	LastUpdatedBy string                 `json:"last_updated_by,omitempty"`
}

// AppointmentInput is an appointment as entered by a user. Id 0 creates.
type AppointmentInput struct {
	Id          int64                  `json:"id,omitempty"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Location    string                 `json:"location"`
	Type        string                 `json:"type"`
	StartTime   *timestamppb.Timestamp `json:"start_time"`
	EndTime     *timestamppb.Timestamp `json:"end_time"`
	CustomerId  int64                  `json:"customer_id"`
	UserId      int64                  `json:"user_id"`
	ContactName string                 `json:"contact_name"`
}

type CheckAppointmentRequest struct {
	Appointment *AppointmentInput `json:"appointment"`
}

type CheckAppointmentResponse struct {
	Accepted   bool   `json:"accepted"`
	RejectKind string `json:"reject_kind,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

type SaveAppointmentRequest struct {
	Appointment *AppointmentInput `json:"appointment"`
}

type SaveAppointmentResponse struct {
	Appointment *Appointment `json:"appointment"`
}

type DeleteAppointmentRequest struct {
	AppointmentId int64 `json:"appointment_id"`
}

type DeleteAppointmentResponse struct{}

type ListCustomerAppointmentsRequest struct {
	CustomerId int64 `json:"customer_id"`
}

type ListCustomerAppointmentsResponse struct {
	Appointments []*Appointment `json:"appointments"`
}

type NextAppointmentIDRequest struct{}

type NextAppointmentIDResponse struct {
	AppointmentId int64 `json:"appointment_id"`
}

// BusinessWindowRequest asks for the window of a reference-zone date in
// YYYY-MM-DD form. An empty date means today.
type BusinessWindowRequest struct {
	Date string `json:"date,omitempty"`
}

type BusinessWindowResponse struct {
	Date       string                 `json:"date"`
	LocalZone  string                 `json:"local_zone"`
	Open       *timestamppb.Timestamp `json:"open"`
	Close      *timestamppb.Timestamp `json:"close"`
	OpenLocal  string                 `json:"open_local"`
	CloseLocal string                 `json:"close_local"`
	Slots      []string               `json:"slots"`
}

type UpcomingAppointmentsRequest struct{}

type UpcomingAppointmentsResponse struct {
	Appointments []*Appointment `json:"appointments"`
}

type DeleteCustomerRequest struct {
	CustomerId int64 `json:"customer_id"`
}

type DeleteCustomerResponse struct{}

type ResolveDivisionRequest struct {
	Country  string `json:"country"`
	Division string `json:"division"`
}

type ResolveDivisionResponse struct {
	DivisionId int64 `json:"division_id"`
}
