// Package run implements the run command, which starts one producer and one
// consumer over a bounded channel.
package run

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/tphakala/prodcon/internal/alphabet"
	"github.com/tphakala/prodcon/internal/analysis"
	"github.com/tphakala/prodcon/internal/conf"
	"github.com/tphakala/prodcon/internal/logger"
	"github.com/tphakala/prodcon/internal/observability"
	"github.com/tphakala/prodcon/internal/pipeline"
	"github.com/tphakala/prodcon/internal/report"
	"github.com/tphakala/prodcon/internal/runctl"
)

// Command creates the run command.
func Command(settings *conf.Settings, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the producer and consumer",
		Long: "Start a producer and a consumer sharing a bounded buffer. The run ends when the " +
			"configured runtime option is satisfied or on interrupt.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(cmd.Context(), settings, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	// Set up flags specific to the 'run' command
	if err := setupFlags(cmd, v); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the run command.
func setupFlags(cmd *cobra.Command, v *viper.Viper) error {
	flags := cmd.Flags()
	flags.IntP("print", "p", 3, "Print option: 1 producer, 2 consumer, 3 both")
	flags.IntP("mode", "m", 3, "Runtime option: 1 forever, 2 until stop sequence, 3 N iterations")
	flags.StringP("stop", "k", "", "Stop character k for runtime option 2")
	flags.IntP("count", "n", 10, "Number of iterations for runtime option 3")
	flags.String("countby", "auto", "Which role counts iterations: auto, producer, consumer or shared")
	flags.Int("capacity", conf.DefaultCapacity, "Number of product slots in the buffer")
	flags.BoolP("interactive", "i", false, "Prompt for the print and runtime options")
	flags.Float64("rate", 0, "Products per second, 0 for unpaced")
	flags.Int("burst", 1, "Burst size when paced")
	flags.Uint64("seed", 0, "Random generator seed, 0 for a random seed")
	flags.StringSlice("sequence", nil, "Scripted products replayed by the producer, e.g. abc,lmn")
	flags.Bool("metrics", false, "Serve Prometheus metrics during the run")
	flags.String("metrics-listen", "127.0.0.1:9464", "Listen address of the metrics endpoint")

	// Bind flags to the viper settings
	return conf.BindFlags(v, flags, map[string]string{
		"run.print":         "print",
		"run.mode":          "mode",
		"run.stop":          "stop",
		"run.count":         "count",
		"run.countby":       "countby",
		"buffer.capacity":   "capacity",
		"run.interactive":   "interactive",
		"producer.rate":     "rate",
		"producer.burst":    "burst",
		"producer.seed":     "seed",
		"producer.sequence": "sequence",
		"metrics.enabled":   "metrics",
		"metrics.listen":    "metrics-listen",
	})
}

// Execute performs one run with settings. Reports and prompts go to out.
// An interrupted run is a clean exit.
func Execute(ctx context.Context, settings *conf.Settings, in io.Reader, out io.Writer) error {
	log := logger.Global().Module("run")

	rc, err := runConfig(settings, in, out)
	if err != nil {
		return err
	}

	fmt.Fprint(out, "Beginning execution...\n\n")
	log.Debug("selected options",
		logger.String("print", rc.Print.String()),
		logger.String("mode", rc.Mode.String()),
		logger.String("stop_sequence", rc.StopSequence.String()),
		logger.Int("iterations", rc.Iterations),
		logger.String("count_by", string(rc.CountBy)),
		logger.Int("capacity", rc.Capacity),
		logger.Float64("rate", settings.Producer.Rate))

	ctrl, err := runctl.New(rc.Policy(), log)
	if err != nil {
		return err
	}
	gen, err := newGenerator(settings.Producer)
	if err != nil {
		return err
	}

	analyzer := analysis.NewCachedAnalyzer(nil)
	reporter := report.NewConsole(out)
	config := &pipeline.CoordinatorConfig{
		Capacity:   rc.Capacity,
		Controller: ctrl,
		Generator:  gen,
		Analyzer:   analyzer,
		Reporter:   reporter,
		Logger:     log,
	}
	if settings.Producer.Rate > 0 {
		config.Limiter = rate.NewLimiter(rate.Limit(settings.Producer.Rate), settings.Producer.Burst)
	}

	var wg sync.WaitGroup
	endpointCtx, stopEndpoint := context.WithCancel(ctx)
	defer func() {
		stopEndpoint()
		wg.Wait()
	}()
	if settings.Metrics.Enabled {
		m, err := startMetrics(endpointCtx, &wg, settings.Metrics.Listen, analyzer, log)
		if err != nil {
			return err
		}
		config.Metrics = m
	}

	coordinator, err := pipeline.NewCoordinator(config)
	if err != nil {
		return err
	}
	summary, err := coordinator.Run(ctx)
	if err != nil {
		return err
	}
	if summary.Interrupted() {
		log.Info("run interrupted", logger.String("summary", summary.String()))
	}
	return reporter.Quitting()
}

// runConfig takes the print and runtime options from the prompt when
// interactive and from settings otherwise.
func runConfig(settings *conf.Settings, in io.Reader, out io.Writer) (conf.RunConfig, error) {
	if !settings.Run.Interactive {
		return settings.RunConfig()
	}

	rc, err := conf.PromptRunConfig(in, out)
	if err != nil {
		return conf.RunConfig{}, err
	}
	if rc.CountBy, err = runctl.ParseCountBy(settings.Run.CountBy); err != nil {
		return conf.RunConfig{}, err
	}
	rc.Capacity = settings.Buffer.Capacity
	return rc, nil
}

// newGenerator replays the scripted sequence when one is configured.
func newGenerator(p conf.ProducerSettings) (alphabet.Generator, error) {
	if len(p.Sequence) > 0 {
		gen, err := alphabet.NewScriptedGenerator(p.Sequence)
		if err != nil {
			return nil, err
		}
		return gen, nil
	}
	return alphabet.NewRandomGenerator(p.Seed), nil
}

// startMetrics serves /metrics until ctx is done and exports the analyzer
// cache counters.
func startMetrics(ctx context.Context, wg *sync.WaitGroup, listen string,
	analyzer *analysis.CachedAnalyzer, log logger.Logger) (pipeline.Metrics, error) {
	m, err := observability.NewMetrics()
	if err != nil {
		return nil, err
	}
	if err := m.Pipeline.TrackAnalyzerCache(func() (hits, misses int64) {
		s := analyzer.Stats()
		return s.Hits, s.Misses
	}); err != nil {
		return nil, err
	}

	endpoint, err := observability.NewEndpoint(listen, m, log)
	if err != nil {
		return nil, err
	}
	if err := endpoint.Start(ctx, wg); err != nil {
		return nil, err
	}
	return m.Pipeline, nil
}
