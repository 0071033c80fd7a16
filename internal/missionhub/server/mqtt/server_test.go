package mqtt

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/missionlens/internal/missionhub/core"
	"github.com/autopeer-io/missionlens/internal/pkg/metrics"
	"github.com/autopeer-io/missionlens/internal/tracker"
	pkgmqtt "github.com/autopeer-io/missionlens/pkg/mqtt"
	"github.com/autopeer-io/missionlens/pkg/mqtt/topic"
)

type fakeClient struct {
	pkgmqtt.Client

	mu           sync.Mutex
	handlers     map[string]pkgmqtt.MessageHandler
	disconnected bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{handlers: make(map[string]pkgmqtt.MessageHandler)}
}

func (c *fakeClient) Start(context.Context) error           { return nil }
func (c *fakeClient) AwaitConnection(context.Context) error { return nil }

func (c *fakeClient) Disconnect(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = true
}

func (c *fakeClient) Subscribe(_ context.Context, filter string, _ int, h pkgmqtt.MessageHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[filter] = h
	return nil
}

func (c *fakeClient) deliver(filter, topicName, payload string) {
	c.mu.Lock()
	h := c.handlers[filter]
	c.mu.Unlock()
	h(context.Background(), topicName, []byte(payload))
}

type fakeService struct {
	core.VehicleService

	fleet    map[string]bool
	messages []tracker.Message
}

func (s *fakeService) Dispatch(_ context.Context, msg tracker.Message) error {
	if !s.fleet[msg.VehicleID] {
		return tracker.ErrNotInFleet
	}
	s.messages = append(s.messages, msg)
	return nil
}

func newTestServer(root, group string) (*Server, *fakeClient, *fakeService) {
	client := newFakeClient()
	svc := &fakeService{fleet: map[string]bool{"Red": true, "Gold": true}}
	return NewServer(client, topic.NewBuilder(root), group, 1, svc), client, svc
}

func TestSubscriptionFilters(t *testing.T) {
	s, client, _ := newTestServer("fleet", "missionlens")
	require.NoError(t, s.initSubscriptions(context.Background()))

	var filters []string
	for f := range client.handlers {
		filters = append(filters, f)
	}
	assert.ElementsMatch(t, []string{
		"$share/missionlens/fleet/drone/+/mission-spec",
		"$share/missionlens/fleet/update_drone",
	}, filters)
}

func TestIngressDispatch(t *testing.T) {
	s, client, svc := newTestServer("", "")
	require.NoError(t, s.initSubscriptions(context.Background()))

	client.deliver("drone/+/mission-spec", "drone/Red/mission-spec",
		`{"states":[{"name":"Takeoff","transitions":[{"target":"Hover","condition":"altitude_reached"}]}]}`)
	client.deliver("update_drone", "update_drone",
		`{"uavid":"Gold","status":{"onboard_pilot":"HoverPX4","mode":"AUTO"}}`)

	require.Len(t, svc.messages, 2)

	spec := svc.messages[0]
	assert.Equal(t, tracker.KindSpec, spec.Kind)
	assert.Equal(t, "Red", spec.VehicleID)
	require.Len(t, spec.Spec.States, 1)
	assert.Equal(t, "Takeoff", spec.Spec.States[0].Name)

	tel := svc.messages[1]
	assert.Equal(t, tracker.KindTelemetry, tel.Kind)
	assert.Equal(t, "Gold", tel.VehicleID)
	assert.Equal(t, "HoverPX4", tel.Telemetry.Activity)
	assert.Equal(t, "AUTO", tel.Telemetry.Mode)
}

func TestIngressDrops(t *testing.T) {
	s, client, svc := newTestServer("", "")
	require.NoError(t, s.initSubscriptions(context.Background()))

	cases := []struct {
		reason  string
		filter  string
		topic   string
		payload string
	}{
		{"decode", "update_drone", "update_drone", `{not json`},
		{"no_vehicle", "update_drone", "update_drone", `{"status":{}}`},
		{"not_in_fleet", "update_drone", "update_drone", `{"uavid":"Magenta","status":{}}`},
		{"decode", "drone/+/mission-spec", "drone/Red/mission-spec", `[]`},
		{"invalid", "drone/+/mission-spec", "drone/Red/mission-spec", `{"states":[{"name":""}]}`},
		{"no_vehicle", "drone/+/mission-spec", "drone/Red/extra/mission-spec", `{"states":[]}`},
	}
	for _, tc := range cases {
		t.Run(tc.reason+"/"+tc.payload, func(t *testing.T) {
			counter := metrics.MessagesDropped.WithLabelValues(tc.reason)
			before := testutil.ToFloat64(counter)
			client.deliver(tc.filter, tc.topic, tc.payload)
			assert.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
	assert.Empty(t, svc.messages)
}

func TestServerStartStops(t *testing.T) {
	s, client, _ := newTestServer("", "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool {
		client.mu.Lock()
		defer client.mu.Unlock()
		return len(client.handlers) == 2
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.True(t, client.disconnected)
}
