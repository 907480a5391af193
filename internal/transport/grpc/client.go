package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// AppointmentsClient calls the appointments service using the JSON codec.
type AppointmentsClient struct {
	cc grpc.ClientConnInterface
}

func NewAppointmentsClient(cc grpc.ClientConnInterface) *AppointmentsClient {
	return &AppointmentsClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AppointmentsClient) CheckAppointment(ctx context.Context, in *CheckAppointmentRequest, opts ...grpc.CallOption) (*CheckAppointmentResponse, error) {
	return invoke[CheckAppointmentResponse](ctx, c.cc, "CheckAppointment", in, opts)
}

func (c *AppointmentsClient) SaveAppointment(ctx context.Context, in *SaveAppointmentRequest, opts ...grpc.CallOption) (*SaveAppointmentResponse, error) {
	return invoke[SaveAppointmentResponse](ctx, c.cc, "SaveAppointment", in, opts)
}

func (c *AppointmentsClient) DeleteAppointment(ctx context.Context, in *DeleteAppointmentRequest, opts ...grpc.CallOption) (*DeleteAppointmentResponse, error) {
	return invoke[DeleteAppointmentResponse](ctx, c.cc, "DeleteAppointment", in, opts)
}

func (c *AppointmentsClient) ListCustomerAppointments(ctx context.Context, in *ListCustomerAppointmentsRequest, opts ...grpc.CallOption) (*ListCustomerAppointmentsResponse, error) {
	return invoke[ListCustomerAppointmentsResponse](ctx, c.cc, "ListCustomerAppointments", in, opts)
}

func (c *AppointmentsClient) NextAppointmentID(ctx context.Context, in *NextAppointmentIDRequest, opts ...grpc.CallOption) (*NextAppointmentIDResponse, error) {
	return invoke[NextAppointmentIDResponse](ctx, c.cc, "NextAppointmentID", in, opts)
}

func (c *AppointmentsClient) BusinessWindow(ctx context.Context, in *BusinessWindowRequest, opts ...grpc.CallOption) (*BusinessWindowResponse, error) {
	return invoke[BusinessWindowResponse](ctx, c.cc, "BusinessWindow", in, opts)
}

func (c *AppointmentsClient) UpcomingAppointments(ctx context.Context, in *UpcomingAppointmentsRequest, opts ...grpc.CallOption) (*UpcomingAppointmentsResponse, error) {
	return invoke[UpcomingAppointmentsResponse](ctx, c.cc, "UpcomingAppointments", in, opts)
}

func (c *AppointmentsClient) DeleteCustomer(ctx context.Context, in *DeleteCustomerRequest, opts ...grpc.CallOption) (*DeleteCustomerResponse, error) {
	return invoke[DeleteCustomerResponse](ctx, c.cc, "DeleteCustomer", in, opts)
}

func (c *AppointmentsClient) ResolveDivision(ctx context.Context, in *ResolveDivisionRequest, opts ...grpc.CallOption) (*ResolveDivisionResponse, error) {
	return invoke[ResolveDivisionResponse](ctx, c.cc, "ResolveDivision", in, opts)
}
