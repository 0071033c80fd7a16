package app

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	missionv1 "github.com/autopeer-io/missionlens/api/missionv1"
	grpcmw "github.com/autopeer-io/missionlens/internal/pkg/middleware/grpc"
)

// clientOptions are shared by every command that talks to a server.
type clientOptions struct {
	server  string
	timeout time.Duration
}

// dial connects to the query API. The returned close func must be called.
func (o *clientOptions) dial() (missionv1.MissionServiceClient, func() error, error) {
	conn, err := grpc.NewClient(o.server,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(grpcmw.UnaryClientTimeout(o.timeout)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", o.server, err)
	}
	return missionv1.NewMissionServiceClient(conn), conn.Close, nil
}

// NewRootCommand returns the missionctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &clientOptions{}

	cmd := &cobra.Command{
		Use:           "missionctl",
		Short:         "Inspect drone missions tracked by missionlens",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVarP(&opts.server, "server", "s", "localhost:8091", "Address of the missionlens gRPC API.")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", grpcmw.DefaultRPCTimeout, "Timeout for a single call.")

	cmd.AddCommand(
		newVehiclesCommand(opts),
		newGetCommand(opts),
		newDeleteCommand(opts),
		newRenderCommand(),
		newPublishCommand(),
	)
	return cmd
}

func withClient(opts *clientOptions, fn func(ctx context.Context, c missionv1.MissionServiceClient) error) error {
	client, closeFn, err := opts.dial()
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(context.Background(), client)
}
