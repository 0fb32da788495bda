// env.go - Environment variable configuration and validation for prodcon
package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/tphakala/prodcon/internal/alphabet"
	"github.com/tphakala/prodcon/internal/logger"
	"github.com/tphakala/prodcon/internal/runctl"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "PRODCON_DEBUG", validateEnvBool},
		{"log.level", "PRODCON_LOG_LEVEL", validateEnvLogLevel},

		// Run options
		{"run.print", "PRODCON_RUN_PRINT", validateEnvOption},
		{"run.mode", "PRODCON_RUN_MODE", validateEnvOption},
		{"run.stop", "PRODCON_RUN_STOP", validateEnvStop},
		{"run.count", "PRODCON_RUN_COUNT", validateEnvPositiveInt},
		{"run.countby", "PRODCON_RUN_COUNTBY", validateEnvCountBy},

		// Buffer and producer
		{"buffer.capacity", "PRODCON_BUFFER_CAPACITY", validateEnvPositiveInt},
		{"producer.rate", "PRODCON_PRODUCER_RATE", validateEnvRate},
		{"producer.seed", "PRODCON_PRODUCER_SEED", validateEnvSeed},

		// Observability
		{"metrics.enabled", "PRODCON_METRICS_ENABLED", validateEnvBool},
		{"metrics.listen", "PRODCON_METRICS_LISTEN", nil},
		{"sentry.enabled", "PRODCON_SENTRY_ENABLED", validateEnvBool},
		{"sentry.dsn", "PRODCON_SENTRY_DSN", nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars(v *viper.Viper) error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		// Bind the environment variable to the config key
		if err := v.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		// Validate the value if it's set and validation function is provided
		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

// Environment variable validation functions

// validateEnvBool validates boolean environment variables
func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f, TRUE/FALSE, T/F", value)
	}
	return nil
}

func validateEnvLogLevel(value string) error {
	if !logger.ValidLevel(value) {
		return fmt.Errorf("must be one of: trace, debug, info, warn, error")
	}
	return nil
}

func validateEnvOption(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid option: %w", err)
	}
	if n < 1 || n > 3 {
		return fmt.Errorf("option must be 1, 2, or 3, got %d", n)
	}
	return nil
}

func validateEnvStop(value string) error {
	_, err := alphabet.StopSequence(value)
	return err
}

func validateEnvPositiveInt(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer: %w", err)
	}
	if n < 1 {
		return fmt.Errorf("must be greater than zero, got %d", n)
	}
	return nil
}

func validateEnvCountBy(value string) error {
	_, err := runctl.ParseCountBy(value)
	return err
}

func validateEnvRate(value string) error {
	rate, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid rate: %w", err)
	}
	if rate < 0 {
		return fmt.Errorf("rate must be non-negative, got %g", rate)
	}
	return nil
}

func validateEnvSeed(value string) error {
	if _, err := strconv.ParseUint(value, 10, 64); err != nil {
		return fmt.Errorf("invalid seed: %w", err)
	}
	return nil
}
