package core

import (
	"context"
	"time"

	"ripperdoc/pkg/domain"
)

// Logger is the structured logging port used by the service. Key/value pairs
// follow the zap sugared convention.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

// MetricsRecorder receives the outcome of every service operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// InstallRecorder is optionally implemented by a MetricsRecorder that also
// counts installation outcomes by quality.
type InstallRecorder interface {
	ObserveInstall(quality domain.Quality, complications int)
}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan is ended exactly once with the operation error, if any.
type TraceSpan interface {
	End(err error)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

// observe wraps one operation with a span and a metrics observation. Callers
// use it as: ctx, done := s.observe(ctx, "op"); defer func() { done(err) }().
func (s *Service) observe(ctx context.Context, operation string) (context.Context, func(error)) {
	start := s.now()
	ctx, span := s.tracer.Start(ctx, operation)
	return ctx, func(err error) {
		span.End(err)
		s.metrics.Observe(ctx, operation, err == nil, s.now().Sub(start))
	}
}
