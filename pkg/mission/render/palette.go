package render

import (
	"fmt"
	"maps"
	"regexp"
	"strings"
)

// FallbackColor is used for vehicles missing from the palette.
const FallbackColor = "#000000"

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Palette maps vehicle identifiers to #RRGGBB fill colors. Lookups are case
// insensitive because keys loaded through viper arrive lowercased.
type Palette map[string]string

// DefaultPalette returns the stock fleet colors.
func DefaultPalette() Palette {
	return NewPalette(map[string]string{
		"Orange":     "#FFA500",
		"Blue":       "#0000FF",
		"Red":        "#FF0000",
		"Lime":       "#00FF00",
		"Aqua":       "#00FFFF",
		"Violet":     "#EE82EE",
		"Fuchsia":    "#FF00FF",
		"Gold":       "#FFD700",
		"DodgerBlue": "#1E90FF",
		"Black":      "#000000",
	})
}

// NewPalette copies m into a Palette with normalized keys.
func NewPalette(m map[string]string) Palette {
	p := make(Palette, len(m))
	for k, v := range m {
		p[strings.ToLower(k)] = strings.ToUpper(strings.TrimSpace(v))
	}
	return p
}

// Color returns the color for vehicleID or FallbackColor.
func (p Palette) Color(vehicleID string) string {
	if c, ok := p[strings.ToLower(vehicleID)]; ok {
		return c
	}
	return FallbackColor
}

// Merge returns a copy of p overlaid with other.
func (p Palette) Merge(other Palette) Palette {
	out := maps.Clone(p)
	if out == nil {
		out = Palette{}
	}
	for k, v := range NewPalette(other) {
		out[k] = v
	}
	return out
}

// Validate checks every color is in #RRGGBB form.
func (p Palette) Validate() error {
	for k, v := range p {
		if !colorPattern.MatchString(v) {
			return fmt.Errorf("palette color for %q is %q, want #RRGGBB", k, v)
		}
	}
	return nil
}
