package app

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/autopeer-io/missionlens/pkg/mission"
	"github.com/autopeer-io/missionlens/pkg/mission/render"
)

type renderOptions struct {
	file     string
	activity string
	vehicle  string
	format   string
	palette  map[string]string

	suffixes      []string
	dynamicAnchor string
	dynamicNode   string
}

func newRenderCommand() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render -f <spec>",
		Short: "Render a mission spec offline",
		Long: `Render resolves a mission spec against an activity the same way the server
does and prints the graph as Graphviz DOT or JSON. The spec file may be YAML
or JSON.`,
		Example: `  missionctl render -f mission.yaml --activity HoveringPX4 | dot -Tsvg > mission.svg`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&opts.file, "file", "f", "", "Mission spec file, '-' reads stdin.")
	fs.StringVar(&opts.activity, "activity", "", "Reported onboard activity to highlight.")
	fs.StringVar(&opts.vehicle, "vehicle", "Red", "Vehicle the graph is drawn for; selects the highlight color.")
	fs.StringVarP(&opts.format, "output", "o", "dot", "Output format: dot or json.")
	fs.StringToStringVar(&opts.palette, "palette", nil, "Extra vehicle colors, e.g. Teal=#008080.")
	fs.StringSliceVar(&opts.suffixes, "suffixes", mission.DefaultSuffixes, "Autopilot suffixes stripped before matching.")
	fs.StringVar(&opts.dynamicAnchor, "dynamic-anchor", mission.DefaultDynamicAnchor, "State that unrecognized activities are attached to.")
	fs.StringVar(&opts.dynamicNode, "dynamic-node", mission.DefaultDynamicNode, "Name of the node standing in for an unrecognized activity.")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (o *renderOptions) run(cmd *cobra.Command) error {
	renderer, err := render.ForFormat(o.format)
	if err != nil {
		return err
	}

	var data []byte
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

	palette := render.DefaultPalette().Merge(o.palette)
	if err := palette.Validate(); err != nil {
		return err
	}

	b := mission.NewBuilder(mission.NewNormalizer(o.suffixes...))
	b.DynamicAnchor = o.dynamicAnchor
	b.DynamicNode = o.dynamicNode

	view := render.NewAdapter(palette).View(o.vehicle, b.Resolve(spec, o.activity))
	return renderer.Render(cmd.OutOrStdout(), view)
}

// decodeSpec accepts YAML or JSON. JSON is valid YAML.
func decodeSpec(data []byte) (mission.Spec, error) {
	var spec mission.Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return mission.Spec{}, fmt.Errorf("decode mission spec: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return mission.Spec{}, fmt.Errorf("invalid mission spec: %w", err)
	}
	return spec, nil
}
