package app

import (
	cliflag "k8s.io/component-base/cli/flag"

	"github.com/autopeer-io/missionlens/pkg/log"
)

// NamedFlagSetOptions is the options contract of an App. Flags are grouped
// into named sets for help output; Complete fills derived fields after
// parsing and Validate checks the result.
type NamedFlagSetOptions interface {
	Flags() cliflag.NamedFlagSets
	Complete() error
	Validate() error
}

// LogOptionsGetter is implemented by options that carry logger settings. The
// App initializes the global logger from them before running.
type LogOptionsGetter interface {
	LogOptions() *log.Options
}
