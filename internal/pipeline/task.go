package pipeline

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/tphakala/prodcon/internal/alphabet"
	"github.com/tphakala/prodcon/internal/analysis"
	"github.com/tphakala/prodcon/internal/buffer"
	"github.com/tphakala/prodcon/internal/errors"
	"github.com/tphakala/prodcon/internal/logger"
	"github.com/tphakala/prodcon/internal/report"
	"github.com/tphakala/prodcon/internal/runctl"
)

// task holds what both roles share. The role-specific step is the only
// difference between producer and consumer.
type task struct {
	role     runctl.Role
	ch       *buffer.Channel
	ctrl     *runctl.Controller
	analyzer analysis.Analyzer
	reporter report.Reporter
	metrics  Metrics
	prints   bool
	log      logger.Logger
}

// stepFunc performs one transfer and returns the product moved and its slot.
type stepFunc func(ctx context.Context) (alphabet.Product, int, error)

// ProducerTask generates products and puts them into the channel.
type ProducerTask struct {
	task
	gen     alphabet.Generator
	limiter *rate.Limiter
}

// ConsumerTask takes products out of the channel.
type ConsumerTask struct {
	task
}

// Run drives the producer loop until the controller stops it, the consumer
// closes the channel, or ctx is cancelled. The channel is closed on return.
func (p *ProducerTask) Run(ctx context.Context) TaskResult {
	return p.loop(ctx, func(ctx context.Context) (alphabet.Product, int, error) {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				if _, ok := ctx.Deadline(); ok {
					// Wait fails early when the next token is due after the deadline.
					<-ctx.Done()
				}
				if ctx.Err() != nil {
					return alphabet.Product{}, -1, ctx.Err()
				}
				return alphabet.Product{}, -1, errors.New(err).
					Component(componentName).
					Category(errors.CategoryInternalTask).
					Context("operation", "rate_wait").
					Build()
			}
		}
		product := p.gen.Next()
		slot, err := p.ch.Put(ctx, product)
		return product, slot, err
	})
}

// Run drives the consumer loop until the channel is closed and drained, the
// controller stops it, or ctx is cancelled. The channel is closed on return.
func (c *ConsumerTask) Run(ctx context.Context) TaskResult {
	return c.loop(ctx, c.ch.Take)
}

func (t *task) loop(ctx context.Context, step stepFunc) TaskResult {
	defer t.ch.Close()

	res := TaskResult{Role: t.role}
	var last alphabet.Product

	for t.ctrl.Continue(t.role, last) {
		// The channel prefers an available slot over a cancelled context,
		// so two tasks that never block would otherwise not notice.
		if err := ctx.Err(); err != nil {
			res.Err = t.classify(ctx, err)
			return res
		}
		product, slot, err := step(ctx)
		if err != nil {
			res.Err = t.classify(ctx, err)
			switch {
			case res.Err == nil:
				t.log.Debug("peer finished, leaving loop", logger.Int("transfers", res.Transfers))
			case res.Failed():
				t.ctrl.Halt(t.role)
			}
			return res
		}
		res.Transfers++
		if t.metrics != nil {
			t.metrics.ObserveTransfer(t.role.String())
		}

		if t.prints {
			r := t.analyzer.Analyze(product)
			if err := t.reporter.Transfer(t.role, slot, &r); err != nil {
				t.ctrl.Halt(t.role)
				res.Err = err
				return res
			}
			res.Reported++
		}
		last = product
	}

	t.log.Debug("run controller stopped task", logger.Int("transfers", res.Transfers))
	if role, stopped := t.ctrl.StoppedBy(); stopped && role == t.role &&
		t.ctrl.Policy().Mode == runctl.ModeUntilSequence {
		if err := t.reporter.StopSequenceFound(last); err != nil {
			res.Err = err
		}
	}
	return res
}

// classify maps a channel error to the task outcome. A closed channel means
// the peer finished first and is not an error.
func (t *task) classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, buffer.ErrClosed):
		return nil
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return errors.New(err).
			Component(componentName).
			Category(errors.CategoryCancellation).
			Context("role", t.role.String()).
			Build()
	default:
		return errors.New(err).
			Component(componentName).
			Category(errors.CategoryInternalTask).
			Context("role", t.role.String()).
			Build()
	}
}
