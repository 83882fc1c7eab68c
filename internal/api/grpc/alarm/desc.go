package alarm

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "alarmclock.v1.AlarmClock"

// Full method names used by clients.
const (
	ArmMethod       = "/" + ServiceName + "/Arm"
	CancelMethod    = "/" + ServiceName + "/Cancel"
	GetStatusMethod = "/" + ServiceName + "/GetStatus"
	DismissMethod   = "/" + ServiceName + "/Dismiss"
)

// AlarmClockServer is the server side of the control API.
type AlarmClockServer interface {
	// Arm arms the alarm; the request carries time, media and actor fields.
	Arm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	// Cancel disarms the alarm with the given handle ID, or the current one when empty.
	Cancel(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	// GetStatus returns the scheduler status.
	GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	// Dismiss stops a ringing alarm.
	Dismiss(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterAlarmClockServer registers srv on a gRPC server.
func RegisterAlarmClockServer(registrar grpc.ServiceRegistrar, srv AlarmClockServer) {
	registrar.RegisterService(&serviceDesc, srv)
}

//nolint:gochecknoglobals // Service descriptors are static by nature.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AlarmClockServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Arm",
			Handler:    unaryHandler[structpb.Struct](ArmMethod, AlarmClockServer.Arm),
		},
		{
			MethodName: "Cancel",
			Handler:    unaryHandler[wrapperspb.StringValue](CancelMethod, AlarmClockServer.Cancel),
		},
		{
			MethodName: "GetStatus",
			Handler:    unaryHandler[emptypb.Empty](GetStatusMethod, AlarmClockServer.GetStatus),
		},
		{
			MethodName: "Dismiss",
			Handler:    unaryHandler[emptypb.Empty](DismissMethod, AlarmClockServer.Dismiss),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "alarmclock/v1/alarm_clock.proto",
}

// unaryHandler builds the grpc method handler for one unary call:
// it decodes the request, then runs the call through the interceptor chain.
func unaryHandler[Req any, PReq interface {
	*Req
	proto.Message
}](
	fullMethod string,
	call func(AlarmClockServer, context.Context, PReq) (*structpb.Struct, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(AlarmClockServer)

		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(PReq)

			return call(server, ctx, typed)
		}

		return interceptor(ctx, in, info, handler)
	}
}
