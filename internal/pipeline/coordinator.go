// Package pipeline runs one producer task and one consumer task over a
// bounded channel and joins them.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/tphakala/prodcon/internal/alphabet"
	"github.com/tphakala/prodcon/internal/analysis"
	"github.com/tphakala/prodcon/internal/buffer"
	"github.com/tphakala/prodcon/internal/errors"
	"github.com/tphakala/prodcon/internal/logger"
	"github.com/tphakala/prodcon/internal/report"
	"github.com/tphakala/prodcon/internal/runctl"
)

const componentName = "pipeline"

// Run outcomes used for metrics labels.
const (
	OutcomeCompleted   = "completed"
	OutcomeInterrupted = "interrupted"
	OutcomeFailed      = "failed"
)

// Metrics receives run-level samples in addition to the channel's own.
type Metrics interface {
	buffer.Observer
	ObserveTransfer(role string)
	ObserveRun(outcome string, d time.Duration)
}

// CoordinatorConfig holds everything a run needs. Controller, Generator and
// Reporter are required.
type CoordinatorConfig struct {
	Capacity   int
	Controller *runctl.Controller
	Generator  alphabet.Generator
	Analyzer   analysis.Analyzer // defaults to a CachedAnalyzer
	Reporter   report.Reporter
	Limiter    *rate.Limiter // nil means unpaced
	Metrics    Metrics       // optional
	Logger     logger.Logger
}

// Coordinator owns the channel for one run.
type Coordinator struct {
	config CoordinatorConfig
	log    logger.Logger
}

// NewCoordinator validates config and creates a coordinator.
func NewCoordinator(config *CoordinatorConfig) (*Coordinator, error) {
	switch {
	case config.Controller == nil:
		return nil, missing("controller")
	case config.Generator == nil:
		return nil, missing("generator")
	case config.Reporter == nil:
		return nil, missing("reporter")
	}

	c := &Coordinator{config: *config}
	if c.config.Analyzer == nil {
		c.config.Analyzer = analysis.NewCachedAnalyzer(nil)
	}
	if c.config.Logger == nil {
		c.config.Logger = logger.Global()
	}
	c.log = c.config.Logger.Module(componentName)
	return c, nil
}

func missing(what string) error {
	return errors.Newf("pipeline %s is required", what).
		Component(componentName).
		Category(errors.CategoryConfiguration).
		Build()
}

// Run creates the channel, starts both tasks, waits for both and releases
// the channel. Cancelling ctx ends the run cleanly; the returned error is
// non-nil only for resource, spawn, join or internal task failures.
func (c *Coordinator) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := c.log.With(logger.String("run_id", runID))

	opts := []buffer.Option{buffer.WithLogger(log)}
	if c.config.Metrics != nil {
		opts = append(opts, buffer.WithObserver(c.config.Metrics))
	}
	ch, err := buffer.New(c.config.Capacity, opts...)
	if err != nil {
		return nil, err
	}

	policy := c.config.Controller.Policy()
	base := task{
		ch:       ch,
		ctrl:     c.config.Controller,
		analyzer: c.config.Analyzer,
		reporter: c.config.Reporter,
		metrics:  c.config.Metrics,
	}
	producer := &ProducerTask{task: base, gen: c.config.Generator, limiter: c.config.Limiter}
	producer.role = runctl.RoleProducer
	producer.prints = policy.Print.Prints(runctl.RoleProducer)
	producer.log = log.With(logger.String("role", "producer"))

	consumer := &ConsumerTask{task: base}
	consumer.role = runctl.RoleConsumer
	consumer.prints = policy.Print.Prints(runctl.RoleConsumer)
	consumer.log = log.With(logger.String("role", "consumer"))

	log.Info("starting run",
		logger.Int("capacity", ch.Cap()),
		logger.String("print", policy.Print.String()),
		logger.String("mode", policy.Mode.String()))

	summary := &Summary{RunID: runID}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(runctl.Roles))

	spawnErr := c.spawn(gctx, g, runctl.RoleProducer, &summary.Producer, producer.Run)
	if spawnErr == nil {
		spawnErr = c.spawn(gctx, g, runctl.RoleConsumer, &summary.Consumer, consumer.Run)
	}
	if spawnErr != nil {
		// A task that did start must not wait on a peer that never will.
		ch.Close()
	}
	waitErr := g.Wait()
	releaseErr := ch.Release()

	summary.Duration = time.Since(start)
	if role, stopped := c.config.Controller.StoppedBy(); stopped {
		summary.StoppedBy = role
	}

	runErr := errors.Join(spawnErr, c.collect(summary, waitErr), releaseErr)
	c.finish(log, summary, runErr)
	return summary, runErr
}

// spawn starts one task in g. Its result is written to dst before the
// goroutine returns.
func (c *Coordinator) spawn(ctx context.Context, g *errgroup.Group, role runctl.Role,
	dst *TaskResult, run func(context.Context) TaskResult) error {
	started := g.TryGo(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				*dst = TaskResult{
					Role: role,
					Err: errors.Newf("%s task panicked: %v", role, r).
						Component(componentName).
						Category(errors.CategoryTaskJoin).
						Context("role", role.String()).
						Build(),
				}
				err = dst.Err
			}
		}()
		*dst = run(ctx)
		if dst.Failed() {
			return dst.Err
		}
		return nil
	})
	if !started {
		*dst = TaskResult{Role: role}
		return errors.Newf("failed to start %s task", role).
			Component(componentName).
			Category(errors.CategoryTaskSpawn).
			Context("role", role.String()).
			Build()
	}
	return nil
}

// collect joins the failures of both tasks. Cancellation alone is a clean
// exit. waitErr is the first failure seen by the group and normally already
// recorded in a task result.
func (c *Coordinator) collect(s *Summary, waitErr error) error {
	var errs []error
	for _, r := range []TaskResult{s.Producer, s.Consumer} {
		if r.Failed() {
			errs = append(errs, r.Err)
		}
	}
	if len(errs) == 0 && waitErr != nil {
		errs = append(errs, waitErr)
	}
	return errors.Join(errs...)
}

func (c *Coordinator) finish(log logger.Logger, s *Summary, runErr error) {
	outcome := OutcomeCompleted
	switch {
	case runErr != nil:
		outcome = OutcomeFailed
	case s.Interrupted():
		outcome = OutcomeInterrupted
	}
	if c.config.Metrics != nil {
		c.config.Metrics.ObserveRun(outcome, s.Duration)
	}

	fields := []logger.Field{
		logger.String("outcome", outcome),
		logger.Int("produced", s.Producer.Transfers),
		logger.Int("consumed", s.Consumer.Transfers),
		logger.Duration("duration", s.Duration),
	}
	if s.StoppedBy != 0 {
		fields = append(fields, logger.String("stopped_by", s.StoppedBy.String()))
	}
	if runErr != nil {
		log.Error("run failed", append(fields, logger.Error(runErr))...)
		return
	}
	log.Info("run finished", fields...)
}
