package observability

import (
	"go.uber.org/zap"

	"ripperdoc/internal/core"
)

// ServiceLogger adapts a zap logger to the core Logger port.
type ServiceLogger struct {
	sugar *zap.SugaredLogger
}

var _ core.Logger = (*ServiceLogger)(nil)

// NewServiceLogger wraps l; a nil l yields a no-op logger.
func NewServiceLogger(l *zap.Logger) *ServiceLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ServiceLogger{sugar: l.Sugar()}
}

func (l *ServiceLogger) Debug(msg string, kv ...any) { l.sugar.Debugw(msg, kv...) }
func (l *ServiceLogger) Info(msg string, kv ...any)  { l.sugar.Infow(msg, kv...) }
func (l *ServiceLogger) Warn(msg string, kv ...any)  { l.sugar.Warnw(msg, kv...) }
func (l *ServiceLogger) Error(msg string, kv ...any) { l.sugar.Errorw(msg, kv...) }
