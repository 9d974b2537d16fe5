package planning

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/batching"
)

// Planner groups orders and allocates every group.
type Planner struct {
	allocator   batching.Allocator
	logger      *zap.Logger
	concurrency int
	clock       func() time.Time
	newID       func() string
}

// Option configures Planner behaviour.
type Option func(*Planner)

// WithConcurrency bounds the number of groups allocated at once.
// Values below one fall back to GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(p *Planner) {
		p.concurrency = n
	}
}

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) Option {
	return func(p *Planner) {
		p.clock = clock
	}
}

// WithIDGenerator overrides plan ID generation, primarily for tests.
func WithIDGenerator(gen func() string) Option {
	return func(p *Planner) {
		p.newID = gen
	}
}

// NewPlanner constructs a Planner around the given allocator.
func NewPlanner(alloc batching.Allocator, logger *zap.Logger, opts ...Option) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Planner{
		allocator: alloc,
		logger:    logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
		newID: func() string {
			return ulid.Make().String()
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.concurrency < 1 {
		p.concurrency = runtime.GOMAXPROCS(0)
	}
	return p
}

// Plan partitions orders by group key and allocates each group against
// capacity. The orders must already be validated. Groups keep the order in
// which their key first appears in orders.
func (p *Planner) Plan(ctx context.Context, source string, orders []batching.Order, capacity batching.Width) (Plan, error) {
	if err := batching.ValidateCapacity(capacity); err != nil {
		return Plan{}, err
	}

	start := time.Now()
	buckets := Partition(orders)
	groups := make([]Group, len(buckets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, bucket := range buckets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			batches := p.allocator.Allocate(bucket.Orders, capacity)
			groups[i] = Group{
				Key:     bucket.Key,
				Batches: batches,
				Summary: Summarize(bucket.Orders, batches, capacity),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Plan{}, fmt.Errorf("allocate groups: %w", err)
	}

	plan := Plan{
		ID:        p.newID(),
		Source:    source,
		CreatedAt: p.clock(),
		Capacity:  capacity,
		Groups:    groups,
	}

	p.logger.Info("plan computed",
		zap.String("plan_id", plan.ID),
		zap.String("source", source),
		zap.Int("orders", len(orders)),
		zap.Int("groups", len(groups)),
		zap.Int("batches", plan.BatchCount()),
		zap.Duration("duration", time.Since(start)),
	)

	return plan, nil
}
