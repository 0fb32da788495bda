// Package runctl decides when the producer and consumer stop.
//
// A Controller moves one way from Running to Stopped. Tasks consult it with
// Continue at the top of every loop iteration, before any blocking channel
// call, passing the product they transferred last. The iteration counter has
// its own mutex and never shares the channel's.
package runctl

import (
	"sync"

	"github.com/tphakala/prodcon/internal/alphabet"
	"github.com/tphakala/prodcon/internal/errors"
	"github.com/tphakala/prodcon/internal/logger"
)

const componentName = "runctl"

// Policy is the termination rule for one run.
type Policy struct {
	Mode    Mode
	Target  alphabet.Product // ModeUntilSequence
	Limit   int              // ModeExactlyN
	CountBy CountBy
	Print   PrintMode
}

// Validate checks that the policy is complete for its mode.
func (p Policy) Validate() error {
	if !p.Mode.Valid() {
		return errors.Newf("invalid run mode %d", int(p.Mode)).
			Component(componentName).
			Category(errors.CategoryConfiguration).
			Build()
	}
	if !p.Print.Valid() {
		return errors.Newf("invalid print mode %d", int(p.Print)).
			Component(componentName).
			Category(errors.CategoryConfiguration).
			Build()
	}
	if _, err := ParseCountBy(string(p.CountBy)); err != nil {
		return err
	}
	switch p.Mode {
	case ModeUntilSequence:
		if p.Target.IsZero() {
			return errors.Newf("until-sequence mode requires a stop sequence").
				Component(componentName).
				Category(errors.CategoryConfiguration).
				Build()
		}
	case ModeExactlyN:
		if p.Limit < 1 {
			return errors.Newf("exactly-n mode requires a positive count, got %d", p.Limit).
				Component(componentName).
				Category(errors.CategoryConfiguration).
				Context("limit", p.Limit).
				Build()
		}
	}
	return nil
}

// Controller holds the shared run state.
type Controller struct {
	policy       Policy
	participants map[Role]bool

	mu         sync.Mutex
	state      State
	stoppedBy  Role
	iterations int

	log logger.Logger
}

// New creates a controller in the Running state.
func New(p Policy, log logger.Logger) (*Controller, error) {
	if p.CountBy == "" {
		p.CountBy = CountAuto
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Global()
	}
	c := &Controller{
		policy:       p,
		participants: p.CountBy.participants(p.Print),
		log:          log.Module(componentName),
	}
	c.log.Debug("run controller created",
		logger.String("mode", p.Mode.String()),
		logger.String("print", p.Print.String()),
		logger.String("count_by", string(p.CountBy)),
		logger.String("target", p.Target.String()),
		logger.Int("limit", p.Limit))
	return c, nil
}

// Continue reports whether role should run another iteration. last is the
// product role transferred in its previous iteration, zero on the first.
//
// Once Stopped, Continue returns false, except that a consumer keeps
// draining after the producer stopped the run.
func (c *Controller) Continue(role Role, last alphabet.Product) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateStopped {
		return c.stoppedBy == RoleProducer && role == RoleConsumer
	}
	if !c.participants[role] {
		return true
	}

	switch c.policy.Mode {
	case ModeUntilSequence:
		if last == c.policy.Target {
			c.stopLocked(role)
			return false
		}
	case ModeExactlyN:
		c.iterations++
		if c.iterations > c.policy.Limit {
			c.stopLocked(role)
			return false
		}
	}
	return true
}

// Halt stops the run on behalf of role. It is a no-op once stopped.
func (c *Controller) Halt(role Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRunning {
		c.stopLocked(role)
	}
}

func (c *Controller) stopLocked(role Role) {
	c.state = StateStopped
	c.stoppedBy = role
	c.log.Debug("run stopped",
		logger.String("role", role.String()),
		logger.Int("iterations", c.iterations))
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Iterations returns the counter. It only advances in ModeExactlyN.
func (c *Controller) Iterations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.iterations
}

// StoppedBy returns the role that stopped the run, and false while running.
func (c *Controller) StoppedBy() (Role, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stoppedBy, c.state == StateStopped
}

// Policy returns the policy the controller was created with.
func (c *Controller) Policy() Policy {
	return c.policy
}
