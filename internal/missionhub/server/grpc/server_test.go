package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	missionv1 "github.com/autopeer-io/missionlens/api/missionv1"
	"github.com/autopeer-io/missionlens/internal/missionhub/core/service"
	grpcmw "github.com/autopeer-io/missionlens/internal/pkg/middleware/grpc"
	"github.com/autopeer-io/missionlens/internal/tracker"
	"github.com/autopeer-io/missionlens/pkg/mission"
	"github.com/autopeer-io/missionlens/pkg/options"
)

func newTestClient(t *testing.T) (missionv1.MissionServiceClient, *tracker.Registry) {
	t.Helper()

	reg := tracker.NewRegistry(tracker.RegistryConfig{
		Fleet:       []string{"Red", "Lime"},
		StrictFleet: true,
		Builder:     mission.NewBuilder(mission.NewNormalizer()),
	})
	router := tracker.NewRouter(reg, nil, 0, nil)
	t.Cleanup(router.Stop)

	srv := NewServer(options.NewGrpcOptions(), service.New(router))
	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(grpcmw.UnaryClientTimeout(0)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return missionv1.NewMissionServiceClient(conn), reg
}

func TestListAndGetVehicle(t *testing.T) {
	client, reg := newTestClient(t)
	ctx := context.Background()

	red, err := reg.GetOrCreate("Red")
	require.NoError(t, err)
	red.ApplySpec(ctx, mission.Spec{States: []mission.StateDef{{Name: "Hover"}}})
	red.ApplyTelemetry(ctx, mission.Telemetry{VehicleID: "Red", Activity: "Hover", Status: map[string]any{"onboard_pilot": "Hover"}})

	list, err := client.ListVehicles(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	require.Len(t, list.GetValues(), 1)
	assert.Equal(t, "Red", list.GetValues()[0].GetStructValue().GetFields()["vehicleId"].GetStringValue())

	snap, err := client.GetVehicle(ctx, wrapperspb.String("Red"))
	require.NoError(t, err)
	graph := snap.GetFields()["graph"].GetStructValue()
	require.NotNil(t, graph)
	assert.Equal(t, "Hover", graph.GetFields()["highlighted"].GetStringValue())
	assert.Equal(t, float64(2), snap.GetFields()["revision"].GetNumberValue())
}

func TestVehicleErrors(t *testing.T) {
	client, reg := newTestClient(t)
	ctx := context.Background()

	_, err := client.GetVehicle(ctx, wrapperspb.String("Aqua"))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.DeregisterVehicle(ctx, wrapperspb.String(""))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = reg.GetOrCreate("Lime")
	require.NoError(t, err)
	_, err = client.DeregisterVehicle(ctx, wrapperspb.String("Lime"))
	require.NoError(t, err)
	assert.Equal(t, 0, reg.Len())

	_, err = client.DeregisterVehicle(ctx, wrapperspb.String("Lime"))
	assert.Equal(t, codes.NotFound, status.Code(err))
}
