// Package telemetry wires optional Sentry error reporting. Nothing is sent
// unless a DSN is configured.
package telemetry

import (
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/tphakala/prodcon/internal/errors"
	"github.com/tphakala/prodcon/internal/logger"
	"github.com/tphakala/prodcon/internal/privacy"
)

// FlushTimeout bounds how long Shutdown waits for queued events.
const FlushTimeout = 2 * time.Second

// Config holds the Sentry settings for one process.
type Config struct {
	DSN         string
	Environment string
	Version     string

	// Transport replaces the HTTP transport; tests use it to capture events
	// without a DSN.
	Transport sentry.Transport
}

// Enabled reports whether reporting should be switched on.
func (c Config) Enabled() bool {
	return c.DSN != "" || c.Transport != nil
}

var (
	initMu      sync.Mutex
	initialized bool
)

// Init configures Sentry and installs the error reporter used by the errors
// package. The returned function flushes pending events and uninstalls the
// reporter; it is safe to call when reporting is disabled.
func Init(cfg Config, log logger.Logger) (shutdown func(), err error) {
	if log == nil {
		log = logger.Global()
	}
	log = log.Module("telemetry")

	if !cfg.Enabled() {
		errors.SetTelemetryReporter(nil)
		log.Debug("error reporting disabled")
		return func() {}, nil
	}

	initMu.Lock()
	defer initMu.Unlock()

	environment := cfg.Environment
	if environment == "" {
		environment = "production"
	}
	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Transport:        cfg.Transport,
		SampleRate:       1.0,
		AttachStacktrace: false,
		Environment:      environment,
		ServerName:       "",
		Release:          fmt.Sprintf("prodcon@%s", cfg.Version),
		BeforeSend:       scrubEvent,
	})
	if err != nil {
		return nil, errors.New(err).
			Component("telemetry").
			Category(errors.CategoryTelemetry).
			Build()
	}
	initialized = true
	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	log.Info("error reporting enabled", logger.String("environment", environment))

	return func() {
		initMu.Lock()
		defer initMu.Unlock()
		if !initialized {
			return
		}
		errors.SetTelemetryReporter(nil)
		if !sentry.Flush(FlushTimeout) {
			log.Warn("timed out flushing error reports")
		}
		initialized = false
	}, nil
}

// scrubEvent drops host identification and URLs before an event leaves
// the process.
func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	event.Message = privacy.ScrubMessage(event.Message)
	for i := range event.Exception {
		event.Exception[i].Value = privacy.ScrubMessage(event.Exception[i].Value)
	}
	event.ServerName = ""
	event.User = sentry.User{}
	event.Modules = nil
	event.Request = nil
	return event
}
