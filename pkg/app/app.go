package app

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	cliflag "k8s.io/component-base/cli/flag"
	"k8s.io/component-base/term"

	"github.com/autopeer-io/missionlens/pkg/log"
)

// RunFunc is the main body of an App.
type RunFunc func() error

// ReloadFunc is called after a watched configuration file changed and the
// options were re-read from it.
type ReloadFunc func(e fsnotify.Event)

// App is a cobra command wired to viper configuration and named flag sets.
type App struct {
	name        string
	shortDesc   string
	description string
	options     NamedFlagSetOptions
	runFunc     RunFunc
	reloadFunc  ReloadFunc
	args        cobra.PositionalArgs
	silence     bool

	viper *viper.Viper
	cmd   *cobra.Command
}

// Option configures an App.
type Option func(*App)

// WithOptions sets the options the App parses and validates.
func WithOptions(opts NamedFlagSetOptions) Option {
	return func(a *App) { a.options = opts }
}

// WithRunFunc sets the function run after options are validated.
func WithRunFunc(run RunFunc) Option {
	return func(a *App) { a.runFunc = run }
}

// WithDescription sets the long help text.
func WithDescription(desc string) Option {
	return func(a *App) { a.description = desc }
}

// WithSilence suppresses usage and error printing by cobra.
func WithSilence() Option {
	return func(a *App) { a.silence = true }
}

// WithValidArgs sets the positional argument validator.
func WithValidArgs(args cobra.PositionalArgs) Option {
	return func(a *App) { a.args = args }
}

// WithDefaultValidArgs rejects any positional argument.
func WithDefaultValidArgs() Option {
	return func(a *App) {
		a.args = func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				if len(arg) > 0 {
					return fmt.Errorf("%q does not take any arguments, got %q", cmd.CommandPath(), args)
				}
			}
			return nil
		}
	}
}

// WithConfigWatcher re-reads the configuration file into the options when
// it changes and then calls fn.
func WithConfigWatcher(fn ReloadFunc) Option {
	return func(a *App) { a.reloadFunc = fn }
}

// NewApp builds an App named name.
func NewApp(name, shortDesc string, opts ...Option) *App {
	a := &App{name: name, shortDesc: shortDesc, viper: viper.New()}
	for _, o := range opts {
		o(a)
	}
	a.buildCommand()
	return a
}

// Command returns the underlying cobra command.
func (a *App) Command() *cobra.Command { return a.cmd }

// Viper returns the configuration source of the App.
func (a *App) Viper() *viper.Viper { return a.viper }

// Run executes the command and exits the process on failure.
func (a *App) Run() {
	if err := a.cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *App) buildCommand() {
	cmd := &cobra.Command{
		Use:           a.name,
		Short:         a.shortDesc,
		Long:          a.description,
		Args:          a.args,
		SilenceUsage:  true,
		SilenceErrors: a.silence,
	}
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)
	cmd.Flags().SortFlags = true

	var fss cliflag.NamedFlagSets
	if a.options != nil {
		fss = a.options.Flags()
	}
	cfgFile := addConfigFlag(a.viper, a.name, fss.FlagSet("global"))
	for _, f := range fss.FlagSets {
		cmd.Flags().AddFlagSet(f)
	}

	cols, _, _ := term.TerminalSize(cmd.OutOrStdout())
	cliflag.SetUsageAndHelpFunc(cmd, fss, cols)

	if a.runFunc != nil {
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			if err := readConfig(a.viper, a.name, *cfgFile); err != nil {
				return err
			}
			return a.run(cmd)
		}
	}
	a.cmd = cmd
}

func (a *App) run(cmd *cobra.Command) error {
	if a.options != nil {
		if err := a.applyOptions(cmd); err != nil {
			return err
		}
		if g, ok := a.options.(LogOptionsGetter); ok {
			log.Init(g.LogOptions())
		}
		defer log.Sync() //nolint:errcheck

		if a.reloadFunc != nil {
			watchConfig(a.viper, func(v *viper.Viper, e fsnotify.Event) {
				if err := v.Unmarshal(a.options); err != nil {
					log.Error(err, "Failed to reload configuration", "file", e.Name)
					return
				}
				log.Info("Configuration reloaded", "file", e.Name, "op", e.Op.String())
				a.reloadFunc(e)
			})
		}
	}

	return a.runFunc()
}

// applyOptions merges flags, environment and file into the options, then
// completes and validates them.
func (a *App) applyOptions(cmd *cobra.Command) error {
	if err := a.viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := a.viper.Unmarshal(a.options); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := a.options.Complete(); err != nil {
		return err
	}
	return a.options.Validate()
}
