package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	missionv1 "github.com/autopeer-io/missionlens/api/missionv1"
	"github.com/autopeer-io/missionlens/internal/missionhub/core"
	grpcmw "github.com/autopeer-io/missionlens/internal/pkg/middleware/grpc"
	"github.com/autopeer-io/missionlens/internal/tracker"
	"github.com/autopeer-io/missionlens/pkg/log"
	"github.com/autopeer-io/missionlens/pkg/options"
)

// Server serves the mission query API.
type Server struct {
	missionv1.UnimplementedMissionServiceServer

	options *options.GrpcOptions
	server  *grpc.Server
	svc     core.VehicleService
}

func NewServer(opts *options.GrpcOptions, svc core.VehicleService) *Server {
	s := &Server{options: opts, svc: svc}
	s.server = grpc.NewServer(grpc.ChainUnaryInterceptor(
		grpcmw.UnaryServerLogger(log.WithName("grpc")),
		grpcmw.UnaryServerTimeout(opts.Timeout),
	))
	missionv1.RegisterMissionServiceServer(s.server, s)
	return s
}

// Start listens on the configured address until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	lis, err := net.Listen(s.options.Network, s.options.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on grpc addr %s: %w", s.options.Addr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve runs on an existing listener.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	log.Info("Starting gRPC Server", "addr", lis.Addr().String())

	go func() {
		<-ctx.Done()
		s.server.GracefulStop()
	}()

	if err := s.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (s *Server) ListVehicles(context.Context, *emptypb.Empty) (*structpb.ListValue, error) {
	out := &structpb.ListValue{}
	if err := toProto(s.svc.Vehicles(), out); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *Server) GetVehicle(_ context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	snap, err := s.svc.Vehicle(req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	out := &structpb.Struct{}
	if err := toProto(snap, out); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *Server) DeregisterVehicle(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "vehicle id is required")
	}
	if err := s.svc.Deregister(ctx, req.GetValue()); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

// toProto converts v through its JSON form so the wire shape matches the
// HTTP API.
func toProto(v any, msg proto.Message) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return protojson.Unmarshal(data, msg)
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, tracker.ErrNotFound), errors.Is(err, tracker.ErrNoSpec):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
