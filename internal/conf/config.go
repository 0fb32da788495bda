// config.go: settings struct for prodcon and the functions that load it and
// turn it into a run configuration.
package conf

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/tphakala/prodcon/internal/alphabet"
	"github.com/tphakala/prodcon/internal/errors"
	"github.com/tphakala/prodcon/internal/logger"
	"github.com/tphakala/prodcon/internal/runctl"
)

// DefaultCapacity is the buffer capacity used when none is configured.
const DefaultCapacity = 2

// ConfigName is the base name of the optional configuration file.
const ConfigName = "prodcon"

// LogSettings controls the structured logger.
type LogSettings struct {
	Level string // trace, debug, info, warn or error
}

// RunSettings mirrors the choices offered at the interactive prompt.
type RunSettings struct {
	Print       int    // 1 producer, 2 consumer, 3 both
	Mode        int    // 1 forever, 2 until stop sequence, 3 exactly N
	Stop        string // stop character k for mode 2
	Count       int    // iterations for mode 3
	CountBy     string // auto, producer, consumer or shared
	Interactive bool   // prompt for print and run options on stdin
}

// BufferSettings controls the bounded channel.
type BufferSettings struct {
	Capacity int // number of product slots
}

// ProducerSettings controls how products are generated.
type ProducerSettings struct {
	Rate     float64  // products per second, 0 for unpaced
	Burst    int      // token bucket size when paced
	Seed     uint64   // random generator seed, 0 for a random seed
	Sequence []string // scripted products replayed instead of random ones
}

// MetricsSettings controls the Prometheus endpoint.
type MetricsSettings struct {
	Enabled bool   // serve /metrics during the run
	Listen  string // listen address, e.g. 127.0.0.1:9464
}

// SentrySettings controls error telemetry.
type SentrySettings struct {
	Enabled     bool   // send fatal errors to Sentry
	DSN         string // Sentry DSN
	Environment string // environment tag
}

// Settings contains all configuration options for prodcon.
type Settings struct {
	Debug    bool // shorthand for log.level=debug
	Log      LogSettings
	Run      RunSettings
	Buffer   BufferSettings
	Producer ProducerSettings
	Metrics  MetricsSettings
	Sentry   SentrySettings
}

// RunConfig is the validated, read-only configuration of one run.
type RunConfig struct {
	Print        runctl.PrintMode
	Mode         runctl.Mode
	StopSequence alphabet.Product // ModeUntilSequence
	Iterations   int              // ModeExactlyN
	CountBy      runctl.CountBy
	Capacity     int
}

// Policy returns the run controller policy for rc.
func (rc RunConfig) Policy() runctl.Policy {
	return runctl.Policy{
		Mode:    rc.Mode,
		Target:  rc.StopSequence,
		Limit:   rc.Iterations,
		CountBy: rc.CountBy,
		Print:   rc.Print,
	}
}

// Load reads settings from defaults, an optional config file, environment
// variables and any flags already bound to v. An empty configFile searches
// the working directory and the user config directory for prodcon.yaml;
// not finding one is not an error.
func Load(v *viper.Viper, configFile string) (*Settings, error) {
	setDefaultConfig(v)

	if err := bindEnvVars(v); err != nil {
		return nil, configError(err, "environment")
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		for _, path := range defaultConfigPaths() {
			v.AddConfigPath(path)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, configError(err, "read_config")
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, configError(err, "unmarshal")
	}
	if settings.Debug && settings.Log.Level == "info" {
		settings.Log.Level = "debug"
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, configError(err, "validate")
	}

	if used := v.ConfigFileUsed(); used != "" {
		GetLogger().Debug("loaded config file", logger.String("path", used))
	}
	return settings, nil
}

func configError(err error, operation string) error {
	return errors.New(err).
		Component("conf").
		Category(errors.CategoryConfiguration).
		Context("operation", operation).
		Build()
}

// userConfigDir is replaced in tests.
var userConfigDir = os.UserConfigDir

// defaultConfigPaths lists where prodcon.yaml is looked up.
func defaultConfigPaths() []string {
	paths := []string{"."}
	if dir, err := userConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, ConfigName))
	}
	return paths
}

// RunConfig converts validated settings into a run configuration.
func (s *Settings) RunConfig() (RunConfig, error) {
	var extra string
	switch runctl.Mode(s.Run.Mode) {
	case runctl.ModeUntilSequence:
		extra = s.Run.Stop
	case runctl.ModeExactlyN:
		extra = strconv.Itoa(s.Run.Count)
	}
	rc, err := ParseRunConfig(strconv.Itoa(s.Run.Print), strconv.Itoa(s.Run.Mode), extra)
	if err != nil {
		return RunConfig{}, err
	}

	if rc.CountBy, err = runctl.ParseCountBy(s.Run.CountBy); err != nil {
		return RunConfig{}, err
	}
	if s.Buffer.Capacity < 1 {
		return RunConfig{}, invalidInput("buffer capacity must be at least 1, got %d", s.Buffer.Capacity)
	}
	rc.Capacity = s.Buffer.Capacity
	return rc, nil
}

// ParseRunConfig validates the three answers of the interactive prompt
// without any terminal I/O. printOpt and runOpt are "1", "2" or "3"; extra is the
// stop character for run mode 2, the iteration count for run mode 3, and
// ignored otherwise.
func ParseRunConfig(printOpt, runOpt, extra string) (RunConfig, error) {
	rc := RunConfig{CountBy: runctl.CountAuto, Capacity: DefaultCapacity}

	p, err := parseOption(printOpt, "print")
	if err != nil {
		return RunConfig{}, err
	}
	rc.Print = runctl.PrintMode(p)
	if !rc.Print.Valid() {
		return RunConfig{}, invalidInput("print option must be 1, 2, or 3, got %d", p)
	}

	m, err := parseOption(runOpt, "runtime")
	if err != nil {
		return RunConfig{}, err
	}
	rc.Mode = runctl.Mode(m)
	if !rc.Mode.Valid() {
		return RunConfig{}, invalidInput("runtime option must be 1, 2, or 3, got %d", m)
	}

	switch rc.Mode {
	case runctl.ModeUntilSequence:
		target, err := alphabet.StopSequence(extra)
		if err != nil {
			return RunConfig{}, configError(err, "stop_sequence")
		}
		rc.StopSequence = target
	case runctl.ModeExactlyN:
		n, err := parseOption(extra, "iterations")
		if err != nil {
			return RunConfig{}, err
		}
		if n <= 0 {
			return RunConfig{}, invalidInput("number of iterations must be greater than zero, got %d", n)
		}
		rc.Iterations = n
	}
	return rc, nil
}

func parseOption(s, what string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("option", what).
			Context("input", s).
			Build()
	}
	return n, nil
}

func invalidInput(format string, args ...any) error {
	return errors.Newf(format, args...).
		Component("conf").
		Category(errors.CategoryConfiguration).
		Build()
}
