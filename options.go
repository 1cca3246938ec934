package selfcell

import (
	"reflect"

	"github.com/hupe1980/selfcell/internal/joined"
	"github.com/hupe1980/selfcell/resource"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	memory           *resource.Controller
}

// Option configures cell construction.
//
// Options are resolved once per construction; clones share the resolved
// configuration of the cell they were cloned from.
type Option func(*options)

// WithLogger configures structured logging of construction, teardown and
// lazy initialization. Pass nil to disable logging (the default).
func WithLogger(l *Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector for monitoring cell
// lifecycles. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &selfcell.BasicMetricsCollector{}
//	cell := selfcell.New(src, parse, selfcell.WithMetricsCollector(metrics))
//	defer cell.Destroy()
//	fmt.Println(metrics.GetStats().Live)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithMemoryController accounts the size of every joined block against rc
// and applies its construction rate limit, if any.
//
// TryNew and TryNewOrRecover fail fast with ErrMemoryLimitExceeded when the
// budget is exhausted (ErrRateLimited when the rate limit is reached), New
// panics, and TryNewContext waits for both until its context is done.
func WithMemoryController(rc *resource.Controller) Option {
	return func(o *options) {
		o.memory = rc
	}
}

// config is the resolved, immutable form of options.
type config struct {
	logger  *Logger
	metrics MetricsCollector
	memory  joined.MemoryAcquirer
}

var defaultConfig = &config{
	logger:  noopLogger,
	metrics: NoopMetricsCollector{},
}

func newConfig[O, D any](opts []Option) *config {
	if len(opts) == 0 {
		return defaultConfig
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := &config{
		logger:  noopLogger,
		metrics: NoopMetricsCollector{},
	}
	if o.logger != nil {
		cfg.logger = o.logger.
			WithOwnerType(typeName[O]()).
			WithDependentType(typeName[D]())
	}
	if o.metricsCollector != nil {
		cfg.metrics = o.metricsCollector
	}
	if o.memory != nil {
		cfg.memory = o.memory
	}
	return cfg
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
