package server

// The Dashboard service is declared by hand on well-known protobuf types so
// that no generated package is needed. It follows the layout protoc-gen-go-grpc
// would produce for:
//
//	service Dashboard {
//	  rpc GetClock(google.protobuf.StringValue) returns (google.protobuf.Struct);
//	  rpc ListCollection(google.protobuf.StringValue) returns (google.protobuf.Struct);
//	  rpc ListClocks(google.protobuf.Empty) returns (google.protobuf.ListValue);
//	}

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const DashboardServiceName = "clockfeed.v1.Dashboard"

const (
	Dashboard_GetClock_FullMethodName       = "/clockfeed.v1.Dashboard/GetClock"
	Dashboard_ListCollection_FullMethodName = "/clockfeed.v1.Dashboard/ListCollection"
	Dashboard_ListClocks_FullMethodName     = "/clockfeed.v1.Dashboard/ListClocks"
)

// DashboardServer is the server API for the Dashboard service.
type DashboardServer interface {
	GetClock(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListCollection(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListClocks(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
}

func RegisterDashboardServer(s grpc.ServiceRegistrar, srv DashboardServer) {
	s.RegisterService(&Dashboard_ServiceDesc, srv)
}

func _Dashboard_GetClock_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).GetClock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Dashboard_GetClock_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DashboardServer).GetClock(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Dashboard_ListCollection_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).ListCollection(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Dashboard_ListCollection_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DashboardServer).ListCollection(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Dashboard_ListClocks_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).ListClocks(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Dashboard_ListClocks_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DashboardServer).ListClocks(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// Dashboard_ServiceDesc is the grpc.ServiceDesc for the Dashboard service.
var Dashboard_ServiceDesc = grpc.ServiceDesc{
	ServiceName: DashboardServiceName,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetClock",
			Handler:    _Dashboard_GetClock_Handler,
		},
		{
			MethodName: "ListCollection",
			Handler:    _Dashboard_ListCollection_Handler,
		},
		{
			MethodName: "ListClocks",
			Handler:    _Dashboard_ListClocks_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "clockfeed/v1/dashboard.proto",
}
