// Package cmd assembles the prodcon command line interface.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/prodcon/cmd/analyze"
	configcmd "github.com/tphakala/prodcon/cmd/config"
	"github.com/tphakala/prodcon/cmd/run"
	"github.com/tphakala/prodcon/internal/buildinfo"
	"github.com/tphakala/prodcon/internal/conf"
	"github.com/tphakala/prodcon/internal/logger"
	"github.com/tphakala/prodcon/internal/telemetry"
)

// Exit codes returned by Execute.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// app carries state shared between the root command and its subcommands.
type app struct {
	v          *viper.Viper
	settings   *conf.Settings
	configFile string
	shutdown   func()
}

// newRootCommand creates the root command and the state its subcommands
// share. Settings are loaded into settings before any subcommand runs.
func newRootCommand(build *buildinfo.Context, v *viper.Viper, settings *conf.Settings) (*cobra.Command, *app) {
	a := &app{v: v, settings: settings}

	rootCmd := &cobra.Command{
		Use:           "prodcon",
		Short:         "Bounded-buffer producer/consumer",
		Long:          "prodcon runs a producer and a consumer over a bounded buffer of letter products and reports on every transfer.",
		Version:       build.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, a); err != nil {
		fmt.Fprintf(os.Stderr, "error setting up flags: %v\n", err)
		os.Exit(ExitFailure)
	}

	rootCmd.AddCommand(
		run.Command(settings, v),
		analyze.Command(),
		configcmd.Command(settings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.initialize(cmd, build)
	}

	return rootCmd, a
}

// initialize loads settings and sets up logging and error reporting. It runs
// after flags are parsed, so command line values take precedence.
func (a *app) initialize(cmd *cobra.Command, build *buildinfo.Context) error {
	loaded, err := conf.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	*a.settings = *loaded

	log := logger.NewSlogLogger(cmd.ErrOrStderr(), logger.LogLevel(a.settings.Log.Level), time.Local)
	logger.SetGlobal(log)

	if a.settings.Sentry.Enabled {
		shutdown, err := telemetry.Init(telemetry.Config{
			DSN:         a.settings.Sentry.DSN,
			Environment: a.settings.Sentry.Environment,
			Version:     build.Version(),
		}, log)
		if err != nil {
			return err
		}
		a.shutdown = shutdown
	}
	return nil
}

func (a *app) close() {
	if a.shutdown != nil {
		a.shutdown()
		a.shutdown = nil
	}
}

// setupFlags defines flags that are global to the command line interface.
func setupFlags(rootCmd *cobra.Command, a *app) error {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "Path to a prodcon.yaml configuration file")
	flags.BoolP("debug", "d", false, "Enable debug output")
	flags.String("log-level", "info", "Log level: trace, debug, info, warn or error")

	return conf.BindFlags(a.v, flags, map[string]string{
		"debug":     "debug",
		"log.level": "log-level",
	})
}

// Execute runs the command line with args and returns the process exit
// code. SIGINT and SIGTERM cancel the run, which then ends cleanly.
func Execute(build *buildinfo.Context, args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return execute(ctx, build, args, os.Stdin, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, build *buildinfo.Context, args []string,
	in io.Reader, out, errOut io.Writer) int {
	rootCmd, a := newRootCommand(build, viper.New(), &conf.Settings{})
	rootCmd.SetArgs(args)
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	defer a.close()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return ExitFailure
	}
	return ExitOK
}
