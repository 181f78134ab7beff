// Package logger builds the zap logger and bridges it into the Temporal SDK.
package logger

import (
	"fmt"

	"go.temporal.io/sdk/log"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"order-fulfillment/order-processing/config"
)

var Module = fx.Module("logger",
	fx.Provide(New),
)

// New builds a JSON logger in production and a console logger elsewhere
func New(cfg config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger: level %q: %w", cfg.LogLevel, err)
	}

	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	l, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return l.With(
		zap.String("service", cfg.ServiceName),
		zap.String("env", cfg.Environment),
	), nil
}

// TemporalLogger adapts zap to the key/value logger used by workflows and activities
type TemporalLogger struct {
	l *zap.SugaredLogger
}

var (
	_ log.Logger     = (*TemporalLogger)(nil)
	_ log.WithLogger = (*TemporalLogger)(nil)
)

func NewTemporalLogger(l *zap.Logger) *TemporalLogger {
	return &TemporalLogger{l: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (t *TemporalLogger) Debug(msg string, keyvals ...interface{}) {
	t.l.Debugw(msg, keyvals...)
}

func (t *TemporalLogger) Info(msg string, keyvals ...interface{}) {
	t.l.Infow(msg, keyvals...)
}

func (t *TemporalLogger) Warn(msg string, keyvals ...interface{}) {
	t.l.Warnw(msg, keyvals...)
}

func (t *TemporalLogger) Error(msg string, keyvals ...interface{}) {
	t.l.Errorw(msg, keyvals...)
}

func (t *TemporalLogger) With(keyvals ...interface{}) log.Logger {
	return &TemporalLogger{l: t.l.With(keyvals...)}
}
