package searchtree

import (
	"log/slog"

	"github.com/hupe1980/searchtree/registry"
	"github.com/hupe1980/searchtree/resource"
	"github.com/hupe1980/searchtree/stream"
)

type options struct {
	registry         *registry.Registry
	metricsCollector MetricsCollector
	logger           *Logger
	rc               *resource.Controller
	serviceID        string
	maxAllocSize     int
	chunkSize        int
	encoding         string
	limits           stream.Limits
	transparent      []string
	maxConcurrency   int
}

// Option configures a Parser.
type Option func(*options)

// WithRegistry sets the type registry used to resolve element names.
//
// If nil is passed, registry.Default is used.
func WithRegistry(reg *registry.Registry) Option {
	return func(o *options) {
		if reg == nil {
			reg = registry.Default()
		}
		o.registry = reg
	}
}

// WithMetricsCollector configures metrics collection for parses.
// Pass nil to disable metrics collection (uses NoopMetricsCollector).
//
// Example with basic metrics:
//
//	metrics := &searchtree.BasicMetricsCollector{}
//	p := searchtree.New(searchtree.WithMetricsCollector(metrics))
//	// ... parse ...
//	stats := metrics.GetStats()
//	fmt.Printf("Parses: %d, Avg latency: %dns\n", stats.ParseCount, stats.ParseAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for parses and registrations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := searchtree.NewJSONLogger(slog.LevelInfo)
//	p := searchtree.New(searchtree.WithLogger(logger))
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

// WithResourceController shares a memory budget, parse slots and an IO rate
// limit between parsers. Every arena of every response is accounted against
// the controller's memory limit until the response is freed.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithServiceID tags every parsed response with the service it came from.
func WithServiceID(id string) Option {
	return func(o *options) {
		o.serviceID = id
	}
}

// WithMaxAllocSize caps a single arena allocation. Values <= 0 select the default.
func WithMaxAllocSize(size int) Option {
	return func(o *options) {
		o.maxAllocSize = size
	}
}

// WithArenaChunkSize sets the arena chunk size. Values <= 0 select the default.
func WithArenaChunkSize(size int) Option {
	return func(o *options) {
		o.chunkSize = size
	}
}

// WithContentEncoding sets the transfer encoding of reply bodies
// ("identity", "gzip", "deflate", "zstd", "lz4").
func WithContentEncoding(encoding string) Option {
	return func(o *options) {
		o.encoding = encoding
	}
}

// WithXMLLimits bounds element depth and attribute count of reply bodies.
func WithXMLLimits(limits stream.Limits) Option {
	return func(o *options) {
		o.limits = limits
	}
}

// WithTransparentElements names wrapper elements (feed, entry, content...)
// that carry no meaning of their own and are passed over.
func WithTransparentElements(names ...string) Option {
	return func(o *options) {
		o.transparent = append(o.transparent, names...)
	}
}

// WithMaxConcurrency bounds the goroutines ParseAll starts. Values <= 0 mean
// one goroutine per body, still gated by the resource controller's parse slots.
func WithMaxConcurrency(n int) Option {
	return func(o *options) {
		o.maxConcurrency = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.registry == nil {
		o.registry = registry.Default()
	}
	return o
}
