package mfvec

import (
	"log/slog"

	"github.com/hupe1980/mfvec/engine"
	"github.com/hupe1980/mfvec/peer"
)

type options struct {
	peer             peer.Peer
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures field construction.
type Option func(*options)

// WithPeer binds the field on p instead of engine.Default().
func WithPeer(p peer.Peer) Option {
	return func(o *options) {
		o.peer = p
	}
}

// WithMetricsCollector configures a metrics collector for field operations.
// Pass nil to disable metrics collection.
//
//	metrics := &mfvec.BasicMetricsCollector{}
//	f, _ := mfvec.New(mfvec.WithMetricsCollector(metrics))
//	// ... use f ...
//	stats := metrics.GetStats()
//	fmt.Printf("writes: %d, avg latency: %dns\n", stats.WriteCount, stats.WriteAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for field operations.
// Pass nil to disable logging.
//
//	logger := mfvec.NewJSONLogger(slog.LevelDebug)
//	f, _ := mfvec.New(mfvec.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
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
	if o.peer == nil {
		o.peer = engine.Default()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
