package app

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/missionlens/internal/status"
	"github.com/autopeer-io/missionlens/internal/tracker"
	"github.com/autopeer-io/missionlens/pkg/mission"
	"github.com/autopeer-io/missionlens/pkg/mission/render"
)

const specYAML = `states:
  - name: TakeoffPX4
    transitions:
      - target: Hover
        condition: altitude_reached
  - name: Hover
    transitions:
      - target: Land
        condition: rtl_triggered
  - name: RunTasks
`

func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderDOT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mission.yaml")
	require.NoError(t, os.WriteFile(path, []byte(specYAML), 0o600))

	out, err := runRoot(t, "", "render", "-f", path, "--activity", "HoveringArduPilot", "--vehicle", "Gold")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `digraph "Gold" {`))
	assert.Contains(t, out, `"Hover" [label="Hover", fillcolor="#FFD700"];`)
	assert.Contains(t, out, `"TakeoffPX4" -> "Hover" [label="altitude_reached"];`)
}

func TestRenderJSONFromStdin(t *testing.T) {
	out, err := runRoot(t, specYAML, "render", "-f", "-", "--activity", "SurveyGrid", "-o", "json")
	require.NoError(t, err)

	var view render.View
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "DynamicState", view.Highlighted)
	assert.Equal(t, "SurveyGrid", view.Activity)
	assert.Contains(t, view.Edges, render.EdgeView{Source: "RunTasks", Target: "DynamicState"})
}

func TestRenderErrors(t *testing.T) {
	_, err := runRoot(t, "", "render")
	assert.Error(t, err, "file is required")

	_, err = runRoot(t, specYAML, "render", "-f", "-", "-o", "svg")
	assert.ErrorContains(t, err, "unknown render format")

	_, err = runRoot(t, "states:\n  - name: ''\n", "render", "-f", "-")
	assert.ErrorContains(t, err, "invalid mission spec")
}

func TestPrintVehicles(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snaps := []tracker.Snapshot{
		{
			VehicleID: "Red",
			View:      &render.View{Highlighted: "Hover", Activity: "HoverPX4"},
			Status:    &status.Summary{Mode: "AUTO", BatteryLevel: "87"},
			Controls:  status.Controls{HumanControl: true, RTL: true},
			LastSeen:  now.Add(-3 * time.Second),
		},
		{VehicleID: "Lime", Slot: 1, LastSeen: now.Add(-time.Minute)},
	}

	var buf bytes.Buffer
	printVehicles(&buf, snaps, now)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"SLOT", "VEHICLE", "STATE", "ACTIVITY", "MODE", "BATTERY", "CONTROLS", "LAST", "SEEN"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"0", "Red", "Hover", "HoverPX4", "AUTO", "87%", "HUMAN,RTL", "3s"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"1", "Lime", "-", "-", "-", "-", "-", "1m0s"}, strings.Fields(lines[2]))
}

func TestPublishTelemetryPayload(t *testing.T) {
	o := &publishOptions{
		vehicle:  "Gold",
		activity: "HoverPX4",
		mode:     "AUTO",
		status:   map[string]string{"armed": "true", "battery_level": "0.5", "geofence": "inside"},
	}

	data, err := json.Marshal(o.telemetry())
	require.NoError(t, err)

	tel, err := mission.ParseTelemetry(data)
	require.NoError(t, err)
	assert.Equal(t, "Gold", tel.VehicleID)
	assert.Equal(t, "HoverPX4", tel.Activity)
	assert.Equal(t, "AUTO", tel.Mode)
	assert.Equal(t, true, tel.Status["armed"])
	assert.Equal(t, 0.5, tel.Status["battery_level"])
	assert.Equal(t, "inside", tel.Status["geofence"])
}
