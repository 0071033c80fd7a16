package server

import (
	pkgmqtt "github.com/autopeer-io/missionlens/pkg/mqtt"
	"github.com/autopeer-io/missionlens/pkg/mqtt/topic"
	"github.com/autopeer-io/missionlens/pkg/options"
)

type Config struct {
	HttpOptions *options.HttpOptions
	GrpcOptions *options.GrpcOptions
	MqttOptions *options.MqttOptions

	// MqttClient is the ingress connection. It is started by the MQTT server.
	MqttClient pkgmqtt.Client
	Topics     *topic.Builder
}
