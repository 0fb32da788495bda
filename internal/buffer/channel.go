// Package buffer implements the bounded FIFO channel shared by the producer
// and consumer tasks.
//
// The channel follows the classic counting-semaphore protocol: emptySlots
// starts at the capacity and gates Put, filledSlots starts at zero and gates
// Take, and a mutex makes the slot write or read atomic with the cursor
// advance. Products live in a byte ring sized to hold exactly capacity
// products, so emptySlots guarantees a write never overruns an unread slot.
package buffer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/smallnest/ringbuffer"
	"golang.org/x/sync/semaphore"

	"github.com/tphakala/prodcon/internal/alphabet"
	"github.com/tphakala/prodcon/internal/errors"
	"github.com/tphakala/prodcon/internal/logger"
)

const componentName = "buffer"

var (
	// ErrClosed is returned by Put once the channel is closed, and by Take
	// once it is closed and drained.
	ErrClosed = errors.NewStd("bounded channel closed")

	// ErrReleased is returned by every operation after Release succeeded.
	ErrReleased = errors.NewStd("bounded channel released")
)

// Op identifies a channel operation in observer callbacks.
type Op string

const (
	OpPut  Op = "put"
	OpTake Op = "take"
)

// Observer receives occupancy and wait-time samples. Implementations must be
// safe for concurrent use and must not block. ObserveOccupancy is called with
// the channel lock held, so samples arrive in commit order and must not call
// back into the channel.
type Observer interface {
	ObserveOccupancy(occupied, capacity int)
	ObserveWait(op Op, d time.Duration)
}

// Option configures a Channel.
type Option func(*Channel)

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) Option {
	return func(c *Channel) { c.observer = o }
}

// WithLogger overrides the default module logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Channel) { c.log = l }
}

// Channel is a bounded FIFO of products with blocking Put and Take.
// It is owned by whoever creates it and passed explicitly to both tasks.
type Channel struct {
	capacity int

	emptySlots  *semaphore.Weighted
	filledSlots *semaphore.Weighted

	// mu guards ring, in and out.
	mu   sync.Mutex
	ring *ringbuffer.RingBuffer
	in   int
	out  int

	closedCtx context.Context
	closeFn   context.CancelFunc
	closeOnce sync.Once
	closed    atomic.Bool

	// life guards released and inflight.
	life     sync.Mutex
	released bool
	inflight int

	observer Observer
	log      logger.Logger
}

// New creates a channel holding at most capacity products.
func New(capacity int, opts ...Option) (*Channel, error) {
	if capacity < 1 {
		return nil, errors.Newf("buffer capacity must be at least 1, got %d", capacity).
			Component(componentName).
			Category(errors.CategoryResourceInit).
			Context("capacity", capacity).
			Build()
	}

	filled := semaphore.NewWeighted(int64(capacity))
	// filledSlots starts with no tokens available.
	if !filled.TryAcquire(int64(capacity)) {
		return nil, errors.Newf("failed to initialize filled-slot semaphore").
			Component(componentName).
			Category(errors.CategoryResourceInit).
			Context("capacity", capacity).
			Build()
	}

	closedCtx, closeFn := context.WithCancel(context.Background())
	c := &Channel{
		capacity:    capacity,
		emptySlots:  semaphore.NewWeighted(int64(capacity)),
		filledSlots: filled,
		ring:        ringbuffer.New(capacity * alphabet.ProductLen),
		closedCtx:   closedCtx,
		closeFn:     closeFn,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Global().Module(componentName)
	}
	c.log.Debug("bounded channel created", logger.Int("capacity", capacity))
	return c, nil
}

// Put blocks until a slot is empty, then commits p and returns the slot it
// was written to.
func (c *Channel) Put(ctx context.Context, p alphabet.Product) (int, error) {
	if err := c.enter(); err != nil {
		return -1, err
	}
	defer c.leave()

	if c.closed.Load() {
		return -1, ErrClosed
	}

	start := time.Now()
	if err := c.acquire(ctx, c.emptySlots); err != nil {
		if ctx.Err() != nil {
			return -1, ctx.Err()
		}
		return -1, ErrClosed
	}
	c.observeWait(OpPut, time.Since(start))

	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		c.emptySlots.Release(1)
		return -1, ErrClosed
	}
	if _, err := c.ring.Write(p[:]); err != nil {
		c.mu.Unlock()
		c.emptySlots.Release(1)
		return -1, errors.New(err).
			Component(componentName).
			Category(errors.CategoryBuffer).
			Context("operation", string(OpPut)).
			Context("free_bytes", c.ring.Free()).
			Build()
	}
	slot := c.in
	c.in = (c.in + 1) % c.capacity
	c.observeOccupancy(c.ring.Length() / alphabet.ProductLen)
	c.filledSlots.Release(1)
	c.mu.Unlock()

	return slot, nil
}

// Take blocks until a product is committed, then removes and returns it
// together with the slot it was read from. After Close, Take keeps draining
// committed products and returns ErrClosed once none remain.
func (c *Channel) Take(ctx context.Context) (alphabet.Product, int, error) {
	if err := c.enter(); err != nil {
		return alphabet.Product{}, -1, err
	}
	defer c.leave()

	start := time.Now()
	if err := c.acquire(ctx, c.filledSlots); err != nil {
		if ctx.Err() != nil {
			return alphabet.Product{}, -1, ctx.Err()
		}
		// Closed: a product committed before Close may still be waiting.
		if !c.filledSlots.TryAcquire(1) {
			return alphabet.Product{}, -1, ErrClosed
		}
	}
	c.observeWait(OpTake, time.Since(start))

	var p alphabet.Product
	c.mu.Lock()
	if _, err := c.ring.Read(p[:]); err != nil {
		c.filledSlots.Release(1)
		c.mu.Unlock()
		return alphabet.Product{}, -1, errors.New(err).
			Component(componentName).
			Category(errors.CategoryBuffer).
			Context("operation", string(OpTake)).
			Context("length", c.ring.Length()).
			Build()
	}
	slot := c.out
	c.out = (c.out + 1) % c.capacity
	c.observeOccupancy(c.ring.Length() / alphabet.ProductLen)
	c.mu.Unlock()
	c.emptySlots.Release(1)

	return p, slot, nil
}

// Close marks the end of the stream. It never blocks and is safe to call
// more than once and from either task.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed.Store(true)
		c.mu.Unlock()
		c.closeFn()
		c.log.Debug("bounded channel closed", logger.Int("occupied", c.Len()))
	})
}

// Closed reports whether Close has been called.
func (c *Channel) Closed() bool {
	return c.closed.Load()
}

// Release tears the channel down. Both tasks must have returned from every
// Put and Take first; otherwise Release fails and the channel stays usable.
func (c *Channel) Release() error {
	c.life.Lock()
	if c.released {
		c.life.Unlock()
		return ErrReleased
	}
	if n := c.inflight; n > 0 {
		c.life.Unlock()
		return errors.Newf("cannot release bounded channel with %d operations in flight", n).
			Component(componentName).
			Category(errors.CategoryState).
			Context("inflight", n).
			Build()
	}
	c.released = true
	c.life.Unlock()

	c.Close()
	c.mu.Lock()
	leftover := c.ring.Length() / alphabet.ProductLen
	c.ring.Reset()
	c.mu.Unlock()

	c.log.Debug("bounded channel released", logger.Int("discarded", leftover))
	return nil
}

// Len returns the number of committed products not yet taken.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ring.Length() / alphabet.ProductLen
}

// Cap returns the capacity the channel was created with.
func (c *Channel) Cap() int {
	return c.capacity
}

// enter registers an operation in flight unless the channel is released.
func (c *Channel) enter() error {
	c.life.Lock()
	defer c.life.Unlock()
	if c.released {
		return ErrReleased
	}
	c.inflight++
	return nil
}

func (c *Channel) leave() {
	c.life.Lock()
	c.inflight--
	c.life.Unlock()
}

// inflightOps returns the number of Put and Take calls in progress.
func (c *Channel) inflightOps() int {
	c.life.Lock()
	defer c.life.Unlock()
	return c.inflight
}

// acquire takes one token from sem, giving up when ctx is done or the
// channel is closed. An available token is always taken, even if ctx is
// already cancelled.
func (c *Channel) acquire(ctx context.Context, sem *semaphore.Weighted) error {
	if sem.TryAcquire(1) {
		return nil
	}
	if c.closed.Load() {
		return ErrClosed
	}

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.closedCtx, cancel)
	defer stop()

	return sem.Acquire(waitCtx, 1)
}

func (c *Channel) observeOccupancy(occupied int) {
	if c.observer != nil {
		c.observer.ObserveOccupancy(occupied, c.capacity)
	}
}

func (c *Channel) observeWait(op Op, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveWait(op, d)
	}
}
