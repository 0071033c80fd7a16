// Package status condenses raw telemetry status blocks into display fields
// and control indicators.
package status

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/autopeer-io/missionlens/pkg/mission"
)

// NotAvailable marks a field that is missing or failed to parse.
const NotAvailable = "N/A"

// MetersPerSecondToMPH converts reported ground speed for display.
const MetersPerSecondToMPH = 2.237

var compass = [...]string{"North", "Northeast", "East", "Southeast", "South", "Southwest", "West", "Northwest"}

// Summary is the formatted status of one vehicle. Every field is display
// ready; numeric fields carry fixed precision.
type Summary struct {
	VehicleID    string `json:"uavid"`
	Color        string `json:"color"`
	Status       string `json:"status"`
	Mode         string `json:"mode"`
	OnboardPilot string `json:"onboardPilot"`
	Armed        string `json:"armed"`
	Geofence     string `json:"geofence"`

	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Altitude  string `json:"altitude"`

	// Speed is in miles per hour.
	Speed   string `json:"speed"`
	Heading string `json:"heading"`

	BatteryVoltage string `json:"batteryVoltage"`
	BatteryCurrent string `json:"batteryCurrent"`
	// BatteryLevel is a whole percentage.
	BatteryLevel string `json:"batteryLevel"`
}

// Summarize formats t. It returns false when the status block is empty.
func Summarize(t mission.Telemetry, color string) (Summary, bool) {
	st := t.Status
	if len(st) == 0 {
		return Summary{}, false
	}

	s := Summary{
		VehicleID:    t.VehicleID,
		Color:        color,
		Status:       text(st, "status"),
		Mode:         text(st, "mode"),
		OnboardPilot: text(st, "onboard_pilot"),
		Armed:        text(st, "armed"),
		Geofence:     text(st, "geofence"),
		Speed:        NotAvailable,
		Heading:      NotAvailable,
	}

	if v, ok := toFloat(lookup(st, "0", "speed")); ok {
		s.Speed = fixed(v*MetersPerSecondToMPH, 3)
	}

	// position fields are reported together or not at all
	lat, okLat := toFloat(lookup(st, 0, "location", "latitude"))
	lon, okLon := toFloat(lookup(st, 0, "location", "longitude"))
	alt, okAlt := toFloat(lookup(st, 0, "location", "altitude"))
	if okLat && okLon && okAlt {
		s.Latitude, s.Longitude, s.Altitude = fixed(lat, 5), fixed(lon, 5), fixed(alt, 3)
	} else {
		s.Latitude, s.Longitude, s.Altitude = NotAvailable, NotAvailable, NotAvailable
	}

	if v, ok := toFloat(lookup(st, "0", "drone_heading")); ok {
		s.Heading = Heading(v)
	}

	s.BatteryVoltage = NotAvailable
	if v, ok := toFloat(lookup(st, 0, "battery", "voltage")); ok {
		s.BatteryVoltage = fixed(v, 2)
	}
	s.BatteryCurrent = NotAvailable
	if v := lookup(st, nil, "battery", "current"); v != nil {
		s.BatteryCurrent = fmt.Sprint(v)
	}
	s.BatteryLevel = NotAvailable
	if v, ok := toFloat(lookup(st, "0", "battery", "level")); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
		s.BatteryLevel = strconv.Itoa(int(v * 100))
	}

	return s, true
}

// Heading names the compass sector of a heading given in radians.
func Heading(radians float64) string {
	if math.IsNaN(radians) || math.IsInf(radians, 0) {
		return NotAvailable
	}
	r := math.Mod(radians, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	sector := 2 * math.Pi / float64(len(compass))
	i := int(math.Floor((r+sector/2)/sector)) % len(compass)
	return compass[i]
}

// lookup walks nested objects by key. def is returned when the last key is
// absent; nil is returned when an intermediate value is not an object.
func lookup(m map[string]any, def any, keys ...string) any {
	cur := m
	for i, k := range keys {
		v, ok := cur[k]
		if !ok {
			return def
		}
		if i == len(keys)-1 {
			return v
		}
		next, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		cur = next
	}
	return def
}

func text(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return NotAvailable
	}
	return fmt.Sprint(v)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func fixed(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
