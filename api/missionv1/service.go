// Package missionv1 declares the missionlens.v1.MissionService gRPC API.
//
// The service is expressed with protobuf well-known types only, so it needs
// no generated message code: vehicles travel as google.protobuf.Struct
// values holding the same JSON document the HTTP API serves.
package missionv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "missionlens.v1.MissionService"

const (
	MissionService_ListVehicles_FullMethodName      = "/" + ServiceName + "/ListVehicles"
	MissionService_GetVehicle_FullMethodName        = "/" + ServiceName + "/GetVehicle"
	MissionService_DeregisterVehicle_FullMethodName = "/" + ServiceName + "/DeregisterVehicle"
)

// MissionServiceServer is the server API for MissionService.
type MissionServiceServer interface {
	// ListVehicles returns every tracked vehicle, ordered by slot.
	ListVehicles(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	// GetVehicle returns one vehicle by identifier.
	GetVehicle(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	// DeregisterVehicle stops tracking a vehicle.
	DeregisterVehicle(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
}

// UnimplementedMissionServiceServer must be embedded to have forward compatible implementations.
type UnimplementedMissionServiceServer struct{}

func (UnimplementedMissionServiceServer) ListVehicles(context.Context, *emptypb.Empty) (*structpb.ListValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListVehicles not implemented")
}

func (UnimplementedMissionServiceServer) GetVehicle(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetVehicle not implemented")
}

func (UnimplementedMissionServiceServer) DeregisterVehicle(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method DeregisterVehicle not implemented")
}

// RegisterMissionServiceServer registers srv on s.
func RegisterMissionServiceServer(s grpc.ServiceRegistrar, srv MissionServiceServer) {
	s.RegisterService(&MissionService_ServiceDesc, srv)
}

func _MissionService_ListVehicles_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MissionServiceServer).ListVehicles(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MissionService_ListVehicles_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MissionServiceServer).ListVehicles(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _MissionService_GetVehicle_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MissionServiceServer).GetVehicle(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MissionService_GetVehicle_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MissionServiceServer).GetVehicle(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _MissionService_DeregisterVehicle_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MissionServiceServer).DeregisterVehicle(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MissionService_DeregisterVehicle_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MissionServiceServer).DeregisterVehicle(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// MissionService_ServiceDesc is the grpc.ServiceDesc for MissionService.
var MissionService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MissionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListVehicles", Handler: _MissionService_ListVehicles_Handler},
		{MethodName: "GetVehicle", Handler: _MissionService_GetVehicle_Handler},
		{MethodName: "DeregisterVehicle", Handler: _MissionService_DeregisterVehicle_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "missionlens/v1/mission.proto",
}

// MissionServiceClient is the client API for MissionService.
type MissionServiceClient interface {
	ListVehicles(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error)
	GetVehicle(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	DeregisterVehicle(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type missionServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewMissionServiceClient(cc grpc.ClientConnInterface) MissionServiceClient {
	return &missionServiceClient{cc}
}

func (c *missionServiceClient) ListVehicles(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, MissionService_ListVehicles_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *missionServiceClient) GetVehicle(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MissionService_GetVehicle_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *missionServiceClient) DeregisterVehicle(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, MissionService_DeregisterVehicle_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
