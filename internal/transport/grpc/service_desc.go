package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "clientschedule.v1.AppointmentsService"

// AppointmentsServiceServer is the server API for the appointments service.
type AppointmentsServiceServer interface {
	CheckAppointment(context.Context, *CheckAppointmentRequest) (*CheckAppointmentResponse, error)
	SaveAppointment(context.Context, *SaveAppointmentRequest) (*SaveAppointmentResponse, error)
	DeleteAppointment(context.Context, *DeleteAppointmentRequest) (*DeleteAppointmentResponse, error)
	ListCustomerAppointments(context.Context, *ListCustomerAppointmentsRequest) (*ListCustomerAppointmentsResponse, error)
	NextAppointmentID(context.Context, *NextAppointmentIDRequest) (*NextAppointmentIDResponse, error)
	BusinessWindow(context.Context, *BusinessWindowRequest) (*BusinessWindowResponse, error)
	UpcomingAppointments(context.Context, *UpcomingAppointmentsRequest) (*UpcomingAppointmentsResponse, error)
	DeleteCustomer(context.Context, *DeleteCustomerRequest) (*DeleteCustomerResponse, error)
	ResolveDivision(context.Context, *ResolveDivisionRequest) (*ResolveDivisionResponse, error)
}

func RegisterAppointmentsServiceServer(s grpc.ServiceRegistrar, srv AppointmentsServiceServer) {
	s.RegisterService(&AppointmentsServiceDesc, srv)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// unaryHandler adapts a typed server method to grpc.MethodHandler.
func unaryHandler[Req, Resp any](name string, call func(AppointmentsServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AppointmentsServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(name),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AppointmentsServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var AppointmentsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AppointmentsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CheckAppointment",
			Handler:    unaryHandler("CheckAppointment", AppointmentsServiceServer.CheckAppointment),
		},
		{
			MethodName: "SaveAppointment",
			Handler:    unaryHandler("SaveAppointment", AppointmentsServiceServer.SaveAppointment),
		},
		{
			MethodName: "DeleteAppointment",
			Handler:    unaryHandler("DeleteAppointment", AppointmentsServiceServer.DeleteAppointment),
		},
		{
			MethodName: "ListCustomerAppointments",
			Handler:    unaryHandler("ListCustomerAppointments", AppointmentsServiceServer.ListCustomerAppointments),
		},
		{
			MethodName: "NextAppointmentID",
			Handler:    unaryHandler("NextAppointmentID", AppointmentsServiceServer.NextAppointmentID),
		},
		{
			MethodName: "BusinessWindow",
			Handler:    unaryHandler("BusinessWindow", AppointmentsServiceServer.BusinessWindow),
		},
		{
			MethodName: "UpcomingAppointments",
			Handler:    unaryHandler("UpcomingAppointments", AppointmentsServiceServer.UpcomingAppointments),
		},
		{
			MethodName: "DeleteCustomer",
			Handler:    unaryHandler("DeleteCustomer", AppointmentsServiceServer.DeleteCustomer),
		},
		{
			MethodName: "ResolveDivision",
			Handler:    unaryHandler("ResolveDivision", AppointmentsServiceServer.ResolveDivision),
		},
	},
	Streams: []grpc.StreamDesc{},
}
