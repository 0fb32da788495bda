package observability

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/tphakala/prodcon/internal/errors"
	"github.com/tphakala/prodcon/internal/logger"
	metricspkg "github.com/tphakala/prodcon/internal/observability/metrics"
)

// Endpoint serves /metrics for scraping while a run is in progress.
type Endpoint struct {
	server        *http.Server
	listenAddress string
	listener      net.Listener
	metrics       *Metrics
	log           logger.Logger
}

// NewEndpoint creates an endpoint for listenAddress. It does not listen
// until Start is called.
func NewEndpoint(listenAddress string, metrics *Metrics, log logger.Logger) (*Endpoint, error) {
	if listenAddress == "" {
		return nil, errors.Newf("metrics listen address is empty").
			Component("observability").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if log == nil {
		log = logger.Global()
	}
	return &Endpoint{
		listenAddress: listenAddress,
		metrics:       metrics,
		log:           log.Module("observability"),
	}, nil
}

// Start binds the listener and serves in the background. The server shuts
// down gracefully when ctx is done; wg is released once it has stopped.
func (e *Endpoint) Start(ctx context.Context, wg *sync.WaitGroup) error {
	mux := http.NewServeMux()
	e.metrics.RegisterHandlers(mux)

	ln, err := net.Listen("tcp", e.listenAddress)
	if err != nil {
		return errors.New(err).
			Component("observability").
			Category(errors.CategoryResourceInit).
			Context("address", e.listenAddress).
			Build()
	}
	e.listener = ln
	e.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	wg.Go(func() {
		e.log.Info("metrics endpoint starting", logger.String("address", ln.Addr().String()))
		if err := e.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.log.Error("metrics HTTP server error", logger.Error(err))
		}
	})
	wg.Go(func() {
		e.gracefulShutdown(ctx)
	})
	return nil
}

// gracefulShutdown waits for ctx and shuts down the server gracefully.
func (e *Endpoint) gracefulShutdown(ctx context.Context) {
	<-ctx.Done()
	e.log.Debug("stopping metrics endpoint")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricspkg.ShutdownTimeout)
	defer cancel()
	if err := e.server.Shutdown(shutdownCtx); err != nil {
		e.log.Error("metrics server shutdown error", logger.Error(err))
	}
}

// Addr returns the bound address, useful when listening on port 0.
func (e *Endpoint) Addr() string {
	if e.listener == nil {
		return e.listenAddress
	}
	return e.listener.Addr().String()
}
