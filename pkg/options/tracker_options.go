package options

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/autopeer-io/missionlens/pkg/mission"
	"github.com/autopeer-io/missionlens/pkg/mission/render"
)

var _ IOptions = (*TrackerOptions)(nil)

// TrackerOptions configures mission tracking for the fleet.
type TrackerOptions struct {
	// Fleet lists the known vehicles in slot order.
	Fleet []string `json:"fleet" mapstructure:"fleet"`
	// StrictFleet ignores vehicles that are not on Fleet.
	StrictFleet bool `json:"strict-fleet" mapstructure:"strict-fleet"`

	// Suffixes are stripped from activity and state names before matching.
	Suffixes      []string `json:"suffixes" mapstructure:"suffixes"`
	DynamicAnchor string   `json:"dynamic-anchor" mapstructure:"dynamic-anchor"`
	DynamicNode   string   `json:"dynamic-node" mapstructure:"dynamic-node"`
	// SynthesizeOnKeyMiss adds a synthetic node for every activity that is not
	// an exact normalized state name, even when a declared state matches it.
	SynthesizeOnKeyMiss bool `json:"synthesize-on-key-miss" mapstructure:"synthesize-on-key-miss"`

	// Palette overrides or extends the default vehicle colors.
	Palette map[string]string `json:"palette" mapstructure:"palette"`

	QueueSize     int           `json:"queue-size" mapstructure:"queue-size"`
	RetentionTTL  time.Duration `json:"retention-ttl" mapstructure:"retention-ttl"`
	SweepInterval time.Duration `json:"sweep-interval" mapstructure:"sweep-interval"`
}

// NewTrackerOptions returns TrackerOptions with default values.
func NewTrackerOptions() *TrackerOptions {
	return &TrackerOptions{
		Fleet:         []string{"Red", "Lime", "Aqua", "Gold", "DodgerBlue", "Orange", "Violet", "Fuchsia"},
		StrictFleet:   true,
		Suffixes:      append([]string(nil), mission.DefaultSuffixes...),
		DynamicAnchor: mission.DefaultDynamicAnchor,
		DynamicNode:   mission.DefaultDynamicNode,
		Palette:       map[string]string{},
		QueueSize:     64,
		SweepInterval: 30 * time.Second,
	}
}

func (o *TrackerOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errs := []error{}
	if o.StrictFleet && len(o.Fleet) == 0 {
		errs = append(errs, errors.New("--tracker.strict-fleet requires a non-empty --tracker.fleet"))
	}
	if o.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("--tracker.queue-size must be positive, got %d", o.QueueSize))
	}
	if o.RetentionTTL < 0 {
		errs = append(errs, errors.New("--tracker.retention-ttl must not be negative"))
	}
	if o.RetentionTTL > 0 && o.SweepInterval <= 0 {
		errs = append(errs, errors.New("--tracker.sweep-interval must be positive when retention is enabled"))
	}
	if err := o.ColorPalette().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errs
}

func (o *TrackerOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringSliceVar(&o.Fleet, "tracker.fleet", o.Fleet, "Known vehicle identifiers in display slot order.")
	fs.BoolVar(&o.StrictFleet, "tracker.strict-fleet", o.StrictFleet, "Ignore vehicles that are not listed in --tracker.fleet.")
	fs.StringSliceVar(&o.Suffixes, "tracker.suffixes", o.Suffixes, "Autopilot suffixes stripped from names before matching.")
	fs.StringVar(&o.DynamicAnchor, "tracker.dynamic-anchor", o.DynamicAnchor, "State that unrecognized activities are attached to.")
	fs.StringVar(&o.DynamicNode, "tracker.dynamic-node", o.DynamicNode, "Name of the node standing in for an unrecognized activity.")
	fs.BoolVar(&o.SynthesizeOnKeyMiss, "tracker.synthesize-on-key-miss", o.SynthesizeOnKeyMiss, "Add a synthetic node for every activity that is not an exact state name.")
	fs.StringToStringVar(&o.Palette, "tracker.palette", o.Palette, "Vehicle highlight colors, e.g. Red=#FF0000,Teal=#008080.")
	fs.IntVar(&o.QueueSize, "tracker.queue-size", o.QueueSize, "Pending updates buffered per vehicle.")
	fs.DurationVar(&o.RetentionTTL, "tracker.retention-ttl", o.RetentionTTL, "Forget vehicles silent for this long. 0 keeps them until deleted.")
	fs.DurationVar(&o.SweepInterval, "tracker.sweep-interval", o.SweepInterval, "How often expired vehicles are removed.")
}

// ColorPalette returns the default palette overlaid with configured colors.
func (o *TrackerOptions) ColorPalette() render.Palette {
	return render.DefaultPalette().Merge(o.Palette)
}

// Builder returns the mission graph builder these options describe.
func (o *TrackerOptions) Builder() mission.Builder {
	b := mission.NewBuilder(mission.NewNormalizer(o.Suffixes...))
	b.DynamicAnchor = o.DynamicAnchor
	b.DynamicNode = o.DynamicNode
	b.SynthesizeOnKeyMiss = o.SynthesizeOnKeyMiss
	return b
}
