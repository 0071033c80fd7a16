package missionhub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/missionlens/pkg/mission/render"
	"github.com/autopeer-io/missionlens/pkg/options"
)

func newTestConfig() *Config {
	return &Config{
		HttpOptions:    options.NewHttpOptions(),
		GrpcOptions:    options.NewGrpcOptions(),
		MqttOptions:    options.NewMqttOptions(),
		S3Options:      options.NewS3Options(),
		TrackerOptions: options.NewTrackerOptions(),
	}
}

func TestNewServer(t *testing.T) {
	cfg := newTestConfig()

	s, err := cfg.NewServer()
	require.NoError(t, err)
	assert.NotNil(t, s.egress)
	assert.Nil(t, s.pipeline, "archiving is off without an endpoint")

	s.SetPalette(render.NewPalette(map[string]string{"Red": "#123456"}))
	tr, err := s.registry.GetOrCreate("Red")
	require.NoError(t, err)
	assert.Equal(t, 0, tr.Slot())
}

func TestNewServerOptionalEgress(t *testing.T) {
	cfg := newTestConfig()
	cfg.MqttOptions.PublishGraphs = false
	cfg.S3Options.Endpoint = "minio.local:9000"

	s, err := cfg.NewServer()
	require.NoError(t, err)
	assert.Nil(t, s.egress)
	assert.NotNil(t, s.pipeline)
}

func TestNewServerInvalidBroker(t *testing.T) {
	cfg := newTestConfig()
	cfg.MqttOptions.Broker = "localhost"

	_, err := cfg.NewServer()
	assert.Error(t, err)
}
