package catalog

import (
	"time"

	"go.uber.org/zap"
)

// CatalogBuilderOption is a functional option for configuring a Catalog.
// Use the With* functions to create options.
type CatalogBuilderOption func(c *catalog)

// WithWorkers sets the number of worker goroutines Compile resolves records on.
// Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - CatalogBuilderOption: option function to apply
func WithWorkers(n int) CatalogBuilderOption {
	return func(c *catalog) {
		if n < 1 {
			n = 1
		}
		c.workers = n
	}
}

// WithQueueSize sets the task queue length of the worker pool. Defaults to 256.
//
// Parameters:
//   - n: the queue length (minimum 1)
//
// Returns:
//   - CatalogBuilderOption: option function to apply
func WithQueueSize(n int) CatalogBuilderOption {
	return func(c *catalog) {
		if n < 1 {
			n = 1
		}
		c.queueSize = n
	}
}

// WithIdleTimeout sets how long an idle worker waits for a task before exiting.
// Defaults to one second.
//
// Parameters:
//   - d: the idle timeout
//
// Returns:
//   - CatalogBuilderOption: option function to apply
func WithIdleTimeout(d time.Duration) CatalogBuilderOption {
	return func(c *catalog) {
		if d > 0 {
			c.idleTimeout = d
		}
	}
}

// WithLogger sets the logger compile progress is reported to. Defaults to a no-op logger.
//
// Parameters:
//   - l: the logger; nil keeps the default
//
// Returns:
//   - CatalogBuilderOption: option function to apply
func WithLogger(l *zap.Logger) CatalogBuilderOption {
	return func(c *catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSource registers a source at construction time. A duplicate name panics.
//
// Parameters:
//   - name: the unique record name
//   - src: the record source
//
// Returns:
//   - CatalogBuilderOption: option function to apply
func WithSource(name string, src Source) CatalogBuilderOption {
	return func(c *catalog) {
		if err := c.register(name, src); err != nil {
			panic("catalog: " + err.Error())
		}
	}
}
