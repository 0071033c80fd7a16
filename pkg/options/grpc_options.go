package options

import (
	"errors"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*GrpcOptions)(nil)

// GrpcOptions configures the MissionService listener. The same options are
// used by missionctl, where Timeout bounds every call.
type GrpcOptions struct {
	Network string `json:"network" mapstructure:"network"`

	// Addr may be empty to run without the gRPC API.
	Addr string `json:"addr" mapstructure:"addr"`

	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

func NewGrpcOptions() *GrpcOptions {
	return &GrpcOptions{
		Network: "tcp",
		Addr:    "0.0.0.0:8091",
		Timeout: 10 * time.Second,
	}
}

func (o *GrpcOptions) Validate() []error {
	if o == nil || o.Addr == "" {
		return nil
	}

	var errs []error
	if err := ValidateNetwork(o.Network); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateAddress(o.Addr); err != nil {
		errs = append(errs, err)
	}
	if o.Timeout <= 0 {
		errs = append(errs, errors.New("--grpc.timeout must be positive"))
	}
	return errs
}

func (o *GrpcOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Network, "grpc.network", o.Network, "Network of the gRPC listener (tcp, tcp4 or tcp6).")
	fs.StringVar(&o.Addr, "grpc.addr", o.Addr, "Address of the MissionService gRPC API. Empty disables it.")
	fs.DurationVar(&o.Timeout, "grpc.timeout", o.Timeout, "Deadline of a single gRPC call.")
}
