// Package runner coordinates case execution across a list of opcodes,
// either one at a time or over a bounded worker pool.
//
// Ordering contract: sequential runs return results in input order and may
// stop early on the first failure; parallel runs always execute everything
// and return results sorted by opcode, so the two modes agree whenever both
// run to completion.
package runner

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"opharness/internal/subject"
)

// defaultWorkers is the pool size when Options.MaxWorkers is unset.
const defaultWorkers = 4

// CaseRunner executes a single case. Implemented by subject.Invoker.
type CaseRunner interface {
	RunCase(ctx context.Context, opcode string) subject.Result
}

// Options control one run.
type Options struct {
	// Parallel switches from the sequential loop to the worker pool.
	Parallel bool
	// MaxWorkers bounds the pool in parallel mode. Zero means 4.
	MaxWorkers int
	// ContinueOnFailure keeps a sequential run going past a failed case.
	// Parallel runs always execute everything.
	ContinueOnFailure bool
	// OnResult, if set, observes each result as its case finishes. Calls
	// are serialized, including in parallel mode.
	OnResult func(subject.Result)
}

// Coordinator drives a CaseRunner over opcode lists.
type Coordinator struct {
	Runner CaseRunner
	Logger *zap.Logger
}

// Run executes the listed opcodes and returns one result per completed
// case. The error is non-nil only when the context ended the run early;
// the results gathered up to that point are still returned.
func (c *Coordinator) Run(ctx context.Context, opcodes []string, opts Options) ([]subject.Result, error) {
	runID := uuid.NewString()
	log := c.logger().With(zap.String("run_id", runID))
	log.Info("starting run",
		zap.Int("cases", len(opcodes)),
		zap.Bool("parallel", opts.Parallel),
		zap.Bool("continue_on_failure", opts.ContinueOnFailure))

	start := time.Now()
	var (
		results []subject.Result
		err     error
	)
	if opts.Parallel {
		results, err = c.runParallel(ctx, opcodes, opts)
	} else {
		results, err = c.runSequential(ctx, opcodes, opts)
	}

	log.Info("run finished",
		zap.Int("completed", len(results)),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err))
	return results, err
}

func (c *Coordinator) runSequential(ctx context.Context, opcodes []string, opts Options) ([]subject.Result, error) {
	results := make([]subject.Result, 0, len(opcodes))
	for _, op := range opcodes {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := c.Runner.RunCase(ctx, op)
		results = append(results, res)
		if opts.OnResult != nil {
			opts.OnResult(res)
		}
		if res.Failed() && !opts.ContinueOnFailure {
			c.logger().Info("stopping on first failure", zap.String("opcode", res.Opcode))
			break
		}
	}
	return results, nil
}

func (c *Coordinator) runParallel(ctx context.Context, opcodes []string, opts Options) ([]subject.Result, error) {
	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = defaultWorkers
	}

	var mu sync.Mutex
	results := make([]subject.Result, 0, len(opcodes))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, op := range opcodes {
		op := op // per-iteration copy; required under the go 1.21 directive
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			res := c.Runner.RunCase(egCtx, op)
			mu.Lock()
			results = append(results, res)
			if opts.OnResult != nil {
				opts.OnResult(res)
			}
			mu.Unlock()
			return nil
		})
	}
	err := eg.Wait()

	// Completion order is nondeterministic; the report must not be.
	sort.Slice(results, func(i, j int) bool { return results[i].Opcode < results[j].Opcode })
	return results, err
}

func (c *Coordinator) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}
