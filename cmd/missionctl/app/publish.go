package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	genericapiserver "k8s.io/apiserver/pkg/server"

	"github.com/autopeer-io/missionlens/internal/pkg/mqtt/paths"
	"github.com/autopeer-io/missionlens/pkg/mission"
	pkgmqtt "github.com/autopeer-io/missionlens/pkg/mqtt"
	"github.com/autopeer-io/missionlens/pkg/mqtt/topic"
	"github.com/autopeer-io/missionlens/pkg/options"
)

// publishOptions drive a fleet by hand: useful to exercise a running server
// without real vehicles.
type publishOptions struct {
	mqtt    *options.MqttOptions
	vehicle string

	// telemetry
	activity string
	mode     string
	status   map[string]string
	count    int
	interval time.Duration

	// spec
	file string
}

func newPublishCommand() *cobra.Command {
	opts := &publishOptions{mqtt: options.NewMqttOptions()}

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish mission specs or telemetry to the broker",
	}
	opts.mqtt.AddFlags(cmd.PersistentFlags())
	cmd.PersistentFlags().StringVar(&opts.vehicle, "vehicle", "Red", "Vehicle identifier.")

	specCmd := &cobra.Command{
		Use:   "spec -f <spec>",
		Short: "Publish a mission spec, retained, to drone/{vehicle}/mission-spec",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.publishSpec(cmd)
		},
	}
	specCmd.Flags().StringVarP(&opts.file, "file", "f", "", "Mission spec file (YAML or JSON), '-' reads stdin.")
	_ = specCmd.MarkFlagRequired("file")

	telCmd := &cobra.Command{
		Use:   "telemetry",
		Short: "Publish telemetry for a vehicle to update_drone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.publishTelemetry(cmd)
		},
	}
	telCmd.Flags().StringVar(&opts.activity, "activity", "", "Onboard pilot activity.")
	telCmd.Flags().StringVar(&opts.mode, "mode", "", "Flight mode.")
	telCmd.Flags().StringToStringVar(&opts.status, "status", nil, "Extra status fields, e.g. armed=true,battery_voltage=15.2.")
	telCmd.Flags().IntVar(&opts.count, "count", 1, "Number of messages to send. 0 sends until interrupted.")
	telCmd.Flags().DurationVar(&opts.interval, "interval", time.Second, "Delay between messages.")

	cmd.AddCommand(specCmd, telCmd)
	return cmd
}

func (o *publishOptions) connect(ctx context.Context) (pkgmqtt.Client, error) {
	if errs := o.mqtt.Validate(); len(errs) > 0 {
		return nil, errs[0]
	}
	client, err := pkgmqtt.NewClient(o.mqtt.ToClientConfig("ctl"))
	if err != nil {
		return nil, err
	}
	if err := client.Start(ctx); err != nil {
		return nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, o.mqtt.ConnectTimeout)
	defer cancel()
	if err := client.AwaitConnection(connectCtx); err != nil {
		return nil, fmt.Errorf("broker %s not reachable: %w", o.mqtt.Broker, err)
	}
	return client, nil
}

func (o *publishOptions) topics() *topic.Builder {
	return topic.NewBuilder(o.mqtt.TopicRoot)
}

func (o *publishOptions) publishSpec(cmd *cobra.Command) error {
	var (
		data []byte
		err  error
	)
	if o.file == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(o.file)
	}
	if err != nil {
		return err
	}
	spec, err := decodeSpec(data)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(spec)
	if err != nil {
		return err
	}

	ctx := genericapiserver.SetupSignalContext()
	client, err := o.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	name := o.topics().Build(paths.Drone, o.vehicle, paths.MissionSpec)
	if err := client.Publish(ctx, name, int(o.mqtt.QoS), true, payload); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "published %d states to %s\n", len(spec.States), name)
	return nil
}

// telemetry builds the update_drone payload.
func (o *publishOptions) telemetry() mission.Telemetry {
	st := make(map[string]any, len(o.status)+2)
	for k, v := range o.status {
		var decoded any
		if err := json.Unmarshal([]byte(v), &decoded); err == nil {
			st[k] = decoded
		} else {
			st[k] = v
		}
	}
	st[mission.StatusKeyActivity] = o.activity
	st[mission.StatusKeyMode] = o.mode

	return mission.Telemetry{VehicleID: o.vehicle, Activity: o.activity, Mode: o.mode, Status: st}
}

func (o *publishOptions) publishTelemetry(cmd *cobra.Command) error {
	payload, err := json.Marshal(o.telemetry())
	if err != nil {
		return err
	}

	ctx := genericapiserver.SetupSignalContext()
	client, err := o.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	name := o.topics().Build(paths.UpdateDrone)
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for sent := 0; o.count == 0 || sent < o.count; sent++ {
		if sent > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
		if err := client.Publish(ctx, name, int(o.mqtt.QoS), false, payload); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s activity=%q mode=%q\n", name, o.vehicle, o.activity, o.mode)
	}
	return nil
}
