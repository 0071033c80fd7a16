package mqtt

import (
	"context"
	"testing"

	"github.com/eclipse/paho.golang/paho"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicsMatch(t *testing.T) {
	tests := []struct {
		filter string
		topic  string
		want   bool
	}{
		{"update_drone", "update_drone", true},
		{"update_drone", "update_drones", false},
		{"drone/+/mission-spec", "drone/Red/mission-spec", true},
		{"drone/+/mission-spec", "drone/Red/mission-graph", false},
		{"drone/+/mission-spec", "drone/Red/extra/mission-spec", false},
		{"drone/#", "drone/Red/mission-spec", true},
		{"fleet/v1/drone/+/mission-spec", "fleet/v1/drone/Gold/mission-spec", true},
		{"drone/+", "drone", false},
	}

	for _, tt := range tests {
		t.Run(tt.filter+"|"+tt.topic, func(t *testing.T) {
			assert.Equal(t, tt.want, topicsMatch(tt.filter, tt.topic))
		})
	}
}

func TestTopicFilter(t *testing.T) {
	assert.Equal(t, "drone/+/mission-spec", topicFilter("$share/missionlens/drone/+/mission-spec"))
	assert.Equal(t, "update_drone", topicFilter("update_drone"))
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(nil)
	require.Error(t, err)

	_, err = NewClient(&ClientConfig{})
	require.Error(t, err)

	_, err = NewClient(&ClientConfig{BrokerURL: "localhost"})
	require.Error(t, err)

	c, err := NewClient(&ClientConfig{BrokerURL: "tcp://localhost:1883"})
	require.NoError(t, err)
	pc := c.(*pahoClient)
	assert.EqualValues(t, 60, pc.cfg.KeepAlive)
	assert.False(t, c.IsConnected())
}

func TestRouterDispatchesInRegistrationOrder(t *testing.T) {
	c := &pahoClient{cfg: &ClientConfig{}}

	var got []string
	record := func(name string) MessageHandler {
		return func(_ context.Context, topic string, payload []byte) {
			got = append(got, name+":"+topic+":"+string(payload))
		}
	}
	c.subscriptions = []subscriptionEntry{
		{topic: "drone/+/mission-spec", handler: record("spec")},
		{topic: "update_drone", handler: record("telemetry")},
		{topic: "drone/#", handler: record("all")},
	}

	for _, p := range []*paho.Publish{
		{Topic: "drone/Red/mission-spec", Payload: []byte("1")},
		{Topic: "update_drone", Payload: []byte("2")},
		{Topic: "unrelated", Payload: []byte("3")},
	} {
		ok, err := c.router(paho.PublishReceived{Packet: p})
		require.NoError(t, err)
		assert.True(t, ok)
	}

	assert.Equal(t, []string{
		"spec:drone/Red/mission-spec:1",
		"all:drone/Red/mission-spec:1",
		"telemetry:update_drone:2",
	}, got)
}

func TestConnectionChangeCallback(t *testing.T) {
	var changes []bool
	c := &pahoClient{cfg: &ClientConfig{OnConnectionChange: func(v bool) { changes = append(changes, v) }}}

	c.setConnected(true)
	c.setConnected(true)
	c.setConnected(false)

	assert.Equal(t, []bool{true, false}, changes)
	assert.False(t, c.IsConnected())
}

func TestSubscribePacketKeepsOrder(t *testing.T) {
	p := subscribePacket(
		subscriptionEntry{topic: "$share/missionlens/drone/+/mission-spec", qos: 1},
		subscriptionEntry{topic: "update_drone", qos: 0},
	)
	assert.Equal(t, []paho.SubscribeOptions{
		{Topic: "$share/missionlens/drone/+/mission-spec", QoS: 1},
		{Topic: "update_drone", QoS: 0},
	}, p.Subscriptions)
}

func TestHandlersSeeClientContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := &pahoClient{cfg: &ClientConfig{}, ctx: ctx}

	var got context.Context
	c.subscriptions = []subscriptionEntry{{topic: "update_drone", handler: func(ctx context.Context, _ string, _ []byte) { got = ctx }}}

	_, err := c.router(paho.PublishReceived{Packet: &paho.Publish{Topic: "update_drone"}})
	require.NoError(t, err)
	require.NotNil(t, got)

	cancel()
	assert.ErrorIs(t, got.Err(), context.Canceled)
}
