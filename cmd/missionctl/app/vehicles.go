package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	missionv1 "github.com/autopeer-io/missionlens/api/missionv1"
	"github.com/autopeer-io/missionlens/internal/status"
	"github.com/autopeer-io/missionlens/internal/tracker"
)

func newVehiclesCommand(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "vehicles",
		Aliases: []string{"ls"},
		Short:   "List tracked vehicles",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(opts, func(ctx context.Context, c missionv1.MissionServiceClient) error {
				list, err := c.ListVehicles(ctx, &emptypb.Empty{})
				if err != nil {
					return err
				}
				data, err := protojson.Marshal(list)
				if err != nil {
					return err
				}
				var snaps []tracker.Snapshot
				if err := json.Unmarshal(data, &snaps); err != nil {
					return fmt.Errorf("decode vehicle list: %w", err)
				}
				printVehicles(cmd.OutOrStdout(), snaps, time.Now())
				return nil
			})
		},
	}
}

func newGetCommand(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <vehicle>",
		Short: "Print the full snapshot of a vehicle as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(opts, func(ctx context.Context, c missionv1.MissionServiceClient) error {
				snap, err := c.GetVehicle(ctx, wrapperspb.String(args[0]))
				if err != nil {
					return err
				}
				data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(snap)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			})
		},
	}
}

func newDeleteCommand(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <vehicle>",
		Short: "Forget a vehicle and clear its published graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(opts, func(ctx context.Context, c missionv1.MissionServiceClient) error {
				if _, err := c.DeregisterVehicle(ctx, wrapperspb.String(args[0])); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "vehicle %q deleted\n", args[0])
				return nil
			})
		},
	}
}

func printVehicles(w io.Writer, snaps []tracker.Snapshot, now time.Time) {
	table := uitable.New()
	table.MaxColWidth = 32
	table.AddRow("SLOT", "VEHICLE", "STATE", "ACTIVITY", "MODE", "BATTERY", "CONTROLS", "LAST SEEN")

	for _, s := range snaps {
		state, activity := "-", "-"
		if s.View != nil {
			state = orDash(s.View.Highlighted)
			activity = orDash(s.View.Activity)
		}
		mode, battery := "-", "-"
		if s.Status != nil {
			mode = s.Status.Mode
			battery = s.Status.BatteryLevel
			if battery != status.NotAvailable {
				battery += "%"
			}
			if activity == "-" {
				activity = s.Status.OnboardPilot
			}
		}
		table.AddRow(strconv.Itoa(s.Slot), s.VehicleID, state, activity, mode, battery,
			controls(s.Controls), now.Sub(s.LastSeen).Truncate(time.Second).String())
	}
	fmt.Fprintln(w, table)
}

func controls(c status.Controls) string {
	var out string
	add := func(on bool, name string) {
		if !on {
			return
		}
		if out != "" {
			out += ","
		}
		out += name
	}
	add(c.HumanControl, "HUMAN")
	add(c.RTL, "RTL")
	add(c.Land, "LAND")
	add(c.Loiter, "LOITER")
	return orDash(out)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
