package subdb

import (
	"github.com/hupe1980/subdb/internal/fs"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	fs               fs.FileSystem
}

func defaultOptions() options {
	return options{
		logger:           NewLogger(nil),
		metricsCollector: NoopMetricsCollector{},
		fs:               fs.Default,
	}
}

// Option configures Create.
type Option func(*options)

// WithLogger sets the logger for row warnings and the run summary.
//
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets a collector that receives per-row metrics.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// withFileSystem routes order file and destination writes through fsys.
func withFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys != nil {
			o.fs = fsys
		}
	}
}
