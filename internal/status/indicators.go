package status

import (
	"strings"

	"github.com/autopeer-io/missionlens/pkg/mission"
)

// Controls reports which operator indicators are lit for a vehicle.
// At most one of RTL, Land and Loiter is set.
type Controls struct {
	HumanControl bool `json:"humanControl"`
	RTL          bool `json:"rtl"`
	Land         bool `json:"land"`
	Loiter       bool `json:"loiter"`
}

// Indicators derives Controls from the activity and flight mode.
func Indicators(t mission.Telemetry) Controls {
	c := Controls{
		HumanControl: strings.Contains(strings.ToLower(t.Activity), "humancontrol"),
	}
	switch strings.ToUpper(t.Mode) {
	case "LAND":
		c.Land = true
	case "LOITER":
		c.Loiter = true
	case "RTL":
		c.RTL = true
	}
	return c
}
