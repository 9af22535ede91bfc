package event

import (
	"context"
	"io"
	"log/slog"
)

// ErrorReporter receives every HandlerError and PanicError produced during
// dispatch.
type ErrorReporter interface {
	Report(ctx context.Context, err error)
}

// ErrorReporterFunc adapts a function to ErrorReporter.
type ErrorReporterFunc func(ctx context.Context, err error)

// Report implements ErrorReporter.
func (f ErrorReporterFunc) Report(ctx context.Context, err error) {
	f(ctx, err)
}

// LogReporter reports handler failures as warnings on a slog logger.
type LogReporter struct {
	Logger *slog.Logger
}

// Report implements ErrorReporter.
func (r LogReporter) Report(ctx context.Context, err error) {
	r.Logger.WarnContext(ctx, "event handler failed", "err", err)
}

// BusOption configures a Bus.
type BusOption func(*busConfig)

type busConfig struct {
	logger   *slog.Logger
	reporter ErrorReporter
}

func defaultBusConfig() busConfig {
	return busConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithLogger sets the logger used by the bus and its default reporter.
func WithLogger(l *slog.Logger) BusOption {
	return func(c *busConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithErrorReporter replaces the default log-based reporter.
func WithErrorReporter(r ErrorReporter) BusOption {
	return func(c *busConfig) {
		c.reporter = r
	}
}
