// validate.go contains validation logic for the configuration settings
package conf

import (
	"fmt"
	"net"
	"strings"

	"github.com/tphakala/prodcon/internal/alphabet"
	"github.com/tphakala/prodcon/internal/logger"
	"github.com/tphakala/prodcon/internal/runctl"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	validators := []func(*Settings) error{
		validateLogSettings,
		validateRunSettings,
		validateBufferSettings,
		validateProducerSettings,
		validateMetricsSettings,
		validateSentrySettings,
	}
	for _, validate := range validators {
		if err := validate(settings); err != nil {
			ve.Errors = append(ve.Errors, err.Error())
		}
	}

	// If there are any errors, return the ValidationError
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateLogSettings(s *Settings) error {
	if !logger.ValidLevel(s.Log.Level) {
		return fmt.Errorf("log.level %q must be one of trace, debug, info, warn, error", s.Log.Level)
	}
	return nil
}

// validateRunSettings checks the print and run options. Stop and count are
// only checked for the mode that uses them.
func validateRunSettings(s *Settings) error {
	var errs []string

	if !runctl.PrintMode(s.Run.Print).Valid() {
		errs = append(errs, fmt.Sprintf("run.print must be 1, 2, or 3, got %d", s.Run.Print))
	}
	switch mode := runctl.Mode(s.Run.Mode); mode {
	case runctl.ModeUntilSequence:
		if _, err := alphabet.StopSequence(s.Run.Stop); err != nil {
			errs = append(errs, "run.stop: "+err.Error())
		}
	case runctl.ModeExactlyN:
		if s.Run.Count <= 0 {
			errs = append(errs, fmt.Sprintf("run.count must be greater than zero, got %d", s.Run.Count))
		}
	case runctl.ModeForever:
	default:
		errs = append(errs, fmt.Sprintf("run.mode must be 1, 2, or 3, got %d", s.Run.Mode))
	}
	if _, err := runctl.ParseCountBy(s.Run.CountBy); err != nil {
		errs = append(errs, "run.countby: "+err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("run settings errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateBufferSettings(s *Settings) error {
	if s.Buffer.Capacity < 1 {
		return fmt.Errorf("buffer.capacity must be at least 1, got %d", s.Buffer.Capacity)
	}
	return nil
}

func validateProducerSettings(s *Settings) error {
	var errs []string

	if s.Producer.Rate < 0 {
		errs = append(errs, fmt.Sprintf("producer.rate must be non-negative, got %g", s.Producer.Rate))
	}
	if s.Producer.Rate > 0 && s.Producer.Burst < 1 {
		errs = append(errs, fmt.Sprintf("producer.burst must be at least 1 when paced, got %d", s.Producer.Burst))
	}
	for i, p := range s.Producer.Sequence {
		if _, err := alphabet.ParseProduct(p); err != nil {
			errs = append(errs, fmt.Sprintf("producer.sequence[%d]: %v", i, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("producer settings errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateMetricsSettings(s *Settings) error {
	if !s.Metrics.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(s.Metrics.Listen); err != nil {
		return fmt.Errorf("metrics.listen %q must be host:port: %w", s.Metrics.Listen, err)
	}
	return nil
}

func validateSentrySettings(s *Settings) error {
	if s.Sentry.Enabled && s.Sentry.DSN == "" {
		return fmt.Errorf("sentry.dsn is required when sentry.enabled is true")
	}
	return nil
}
