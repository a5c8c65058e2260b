// Package catalog keeps a named set of vertex record sources and resolves them
// concurrently into packed layouts.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-layout/engine/layout"
	"go.uber.org/zap"
)

var (
	// ErrDuplicateName is returned when a name is registered twice.
	ErrDuplicateName = errors.New("record name already registered")

	// ErrEmptyName is returned when registering a record without a name.
	ErrEmptyName = errors.New("record name must not be empty")
)

// catalog is the implementation of the Catalog interface.
type catalog struct {
	mu *sync.RWMutex

	sources map[string]Source
	order   []string
	layouts map[string]layout.ResolvedLayout
	failed  map[string]error
	pending map[string]struct{}

	workers     int
	queueSize   int
	idleTimeout time.Duration
	pool        worker.DynamicWorkerPool
	logger      *zap.Logger
}

// Catalog is a thread-safe registry of named vertex record sources and their resolved layouts.
// Registering only records a source; Compile resolves every source registered since the
// previous Compile on a bounded worker pool.
type Catalog interface {
	// Register adds a named source. The record stays pending until the next Compile.
	//
	// Parameters:
	//   - name: the unique record name
	//   - src: the record source
	//
	// Returns:
	//   - error: ErrEmptyName or ErrDuplicateName
	Register(name string, src Source) error

	// Compile resolves all pending records concurrently. Every record is attempted;
	// records that resolve are stored even when others fail.
	//
	// Parameters:
	//   - ctx: cancels records that have not started resolving yet
	//
	// Returns:
	//   - error: nil, or the join of every per-record error (and ctx.Err() on cancellation)
	Compile(ctx context.Context) error

	// Layout returns the resolved layout of a compiled record.
	//
	// Parameters:
	//   - name: the record name
	//
	// Returns:
	//   - layout.ResolvedLayout: the layout, or the zero value
	//   - bool: false if the record is unknown, pending or failed
	Layout(name string) (layout.ResolvedLayout, bool)

	// Err returns the error of the last Compile attempt for a record.
	//
	// Parameters:
	//   - name: the record name
	//
	// Returns:
	//   - error: the resolution error, or nil
	Err(name string) error

	// Names returns every registered name in registration order.
	//
	// Returns:
	//   - []string: the names
	Names() []string

	// Pending reports how many records await Compile.
	//
	// Returns:
	//   - int: the pending record count
	Pending() int
}

var _ Catalog = &catalog{}

// NewCatalog creates a new Catalog with the given options applied.
//
// Parameters:
//   - options: functional options to configure the catalog
//
// Returns:
//   - Catalog: the newly created catalog
func NewCatalog(options ...CatalogBuilderOption) Catalog {
	c := &catalog{
		mu:          &sync.RWMutex{},
		sources:     make(map[string]Source),
		layouts:     make(map[string]layout.ResolvedLayout),
		failed:      make(map[string]error),
		pending:     make(map[string]struct{}),
		workers:     max(runtime.NumCPU()-1, 1),
		queueSize:   256,
		idleTimeout: 1 * time.Second,
		logger:      zap.NewNop(),
	}

	for _, option := range options {
		option(c)
	}

	// Created after options so WithWorkers, WithQueueSize and WithIdleTimeout apply.
	c.pool = worker.NewDynamicWorkerPool(c.workers, c.queueSize, c.idleTimeout)
	return c
}

func (c *catalog) Register(name string, src Source) error {
	return c.register(name, src)
}

func (c *catalog) register(name string, src Source) error {
	if src == nil {
		panic("catalog: Register requires a non-nil Source")
	}
	if name == "" {
		return ErrEmptyName
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sources[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	c.sources[name] = src
	c.order = append(c.order, name)
	c.pending[name] = struct{}{}
	return nil
}

// compileResult is the outcome of resolving one record.
type compileResult struct {
	name   string
	layout layout.ResolvedLayout
	err    error
}

func (c *catalog) Compile(ctx context.Context) error {
	c.mu.RLock()
	names := make([]string, 0, len(c.pending))
	for _, name := range c.order {
		if _, ok := c.pending[name]; ok {
			names = append(names, name)
		}
	}
	sources := make([]Source, len(names))
	for i, name := range names {
		sources[i] = c.sources[name]
	}
	c.mu.RUnlock()

	if len(names) == 0 {
		return nil
	}
	c.logger.Debug("compiling vertex layouts", zap.Int("records", len(names)), zap.Int("workers", c.workers))
	start := time.Now()

	// The pool's own Wait blocks until workers idle out, so a WaitGroup is the barrier.
	results := make([]compileResult, len(names))
	var wg sync.WaitGroup
	for i := range names {
		wg.Add(1)
		idx := i
		c.pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				res := compileResult{name: names[idx]}
				if err := ctx.Err(); err != nil {
					res.err = err
				} else {
					res.layout, res.err = sources[idx].Resolve()
				}
				results[idx] = res
				return nil, res.err
			},
		})
	}
	wg.Wait()

	var errs []error
	c.mu.Lock()
	for _, res := range results {
		if errors.Is(res.err, context.Canceled) || errors.Is(res.err, context.DeadlineExceeded) {
			continue
		}
		delete(c.pending, res.name)
		if res.err != nil {
			c.failed[res.name] = res.err
			delete(c.layouts, res.name)
			errs = append(errs, fmt.Errorf("%s: %w", res.name, res.err))
			c.logger.Warn("vertex layout failed", zap.String("record", res.name), zap.Error(res.err))
			continue
		}
		delete(c.failed, res.name)
		c.layouts[res.name] = res.layout
	}
	remaining := len(c.pending)
	c.mu.Unlock()
	failures := len(errs)

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	c.logger.Info("compiled vertex layouts",
		zap.Int("records", len(names)),
		zap.Int("failed", failures),
		zap.Int("pending", remaining),
		zap.Duration("elapsed", time.Since(start)),
	)
	return errors.Join(errs...)
}

func (c *catalog) Layout(name string) (layout.ResolvedLayout, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.layouts[name]
	return l, ok
}

func (c *catalog) Err(name string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.failed[name]
}

func (c *catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.order)
}

func (c *catalog) Pending() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pending)
}
