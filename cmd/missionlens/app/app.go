package app

import (
	"fmt"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	genericapiserver "k8s.io/apiserver/pkg/server"

	"github.com/autopeer-io/missionlens/cmd/missionlens/app/options"
	"github.com/autopeer-io/missionlens/internal/missionhub"
	"github.com/autopeer-io/missionlens/pkg/app"
	"github.com/autopeer-io/missionlens/pkg/log"
)

const (
	commandName = "missionlens"
	commandDesc = `missionlens follows the mission of every drone in a fleet.

It subscribes to mission specs on drone/{id}/mission-spec and telemetry on
update_drone, matches each vehicle's reported activity to a state of its
mission and keeps a rendered graph with the current state highlighted. The
graphs are served over HTTP and gRPC and republished, retained, on
drone/{id}/mission-graph.`
)

func NewApp() *app.App {
	opts := options.NewServerOptions()
	var current atomic.Pointer[missionhub.Server]

	return app.NewApp(
		commandName,
		"Track drone missions as live state graphs",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithConfigWatcher(reload(opts, &current)),
		app.WithRunFunc(run(opts, &current)),
	)
}

func run(opts *options.ServerOptions, current *atomic.Pointer[missionhub.Server]) app.RunFunc {
	return func() error {
		ctx := genericapiserver.SetupSignalContext()

		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		server, err := cfg.NewServer()
		if err != nil {
			return fmt.Errorf("failed to create missionlens server: %w", err)
		}
		current.Store(server)
		defer log.Sync()

		return server.Run(ctx)
	}
}

// reload applies the settings that can change without a restart: the log
// level and the vehicle palette. Everything else needs a restart.
func reload(opts *options.ServerOptions, current *atomic.Pointer[missionhub.Server]) app.ReloadFunc {
	return func(e fsnotify.Event) {
		if err := log.SetLevel(opts.Log.Level); err != nil {
			log.Error(err, "Ignoring invalid log level", "file", e.Name)
		}

		server := current.Load()
		if server == nil {
			return
		}
		palette := opts.TrackerOptions.ColorPalette()
		if err := palette.Validate(); err != nil {
			log.Error(err, "Ignoring invalid palette", "file", e.Name)
			return
		}
		server.SetPalette(palette)
		log.Info("Palette reloaded", "file", e.Name, "colors", len(palette))
	}
}
