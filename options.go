package tabgo

import (
	"log/slog"

	"github.com/hupe1980/tabgo/internal/header"
	"github.com/hupe1980/tabgo/queue"
	"github.com/hupe1980/tabgo/resource"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	scheduler        queue.Scheduler
	errorHandler     func(table string, err error)
	resources        *resource.Controller
	memoryLimit      int64
	growthThreshold  int
}

// Option configures a Registry.
type Option func(*options)

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := tabgo.NewJSONLogger(slog.LevelInfo)
//	reg := tabgo.NewRegistry(tabgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &tabgo.BasicMetricsCollector{}
//	reg := tabgo.NewRegistry(tabgo.WithMetricsCollector(metrics))
//	// ... use reg ...
//	stats := metrics.GetStats()
//	fmt.Printf("Writes: %d, Avg latency: %dns\n", stats.WriteCount, stats.WriteAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithScheduler replaces the idle queue that runs deferred callbacks. With
// a custom scheduler Registry.Update does nothing; the host runs the
// scheduled functions itself.
func WithScheduler(s queue.Scheduler) Option {
	return func(o *options) {
		o.scheduler = s
	}
}

// WithErrorHandler receives errors returned by trace and notifier
// callbacks. The default logs them at error level.
func WithErrorHandler(fn func(table string, err error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithMemoryLimit bounds the memory held by headers and cells across all
// tables of the registry. Growth beyond the limit fails with ErrCapacity.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithResourceController shares a resource controller, for example with an
// archive.Archiver. It takes precedence over WithMemoryLimit.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithGrowthThreshold sets the capacity below which row and column pools
// double. Above it they grow in chunks of the same size.
// Default: 65536.
func WithGrowthThreshold(n int) Option {
	return func(o *options) {
		o.growthThreshold = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		growthThreshold:  header.DefaultGrowthThreshold,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.resources == nil {
		o.resources = resource.NewController(resource.Config{MemoryLimitBytes: o.memoryLimit})
	}
	if o.errorHandler == nil {
		logger := o.logger
		o.errorHandler = func(table string, err error) {
			logger.LogCallbackError(table, err)
		}
	}
	return o
}
