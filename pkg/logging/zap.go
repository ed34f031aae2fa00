package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger adapts a zap.Logger to the Logger interface.
type zapLogger struct {
	base   *zap.Logger
	fields Fields
}

// NewDefaultLogger creates a JSON logger writing to stderr at info level.
func NewDefaultLogger() Logger {
	return NewLogger("info")
}

// NewLogger creates a logger at the given level (debug, info, warn, error).
func NewLogger(level string) Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		zap.NewAtomicLevelAt(parseLevel(level)),
	)

	return &zapLogger{base: zap.New(core)}
}

// NewNopLogger returns a logger that discards everything. Useful for tests
// and for callers that want a silent engine.
func NewNopLogger() Logger {
	return &zapLogger{base: zap.NewNop()}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *zapLogger) Debug(msg string, fields ...Fields) {
	l.base.Debug(msg, l.zapFields(fields)...)
}

func (l *zapLogger) Info(msg string, fields ...Fields) {
	l.base.Info(msg, l.zapFields(fields)...)
}

func (l *zapLogger) Warn(msg string, fields ...Fields) {
	l.base.Warn(msg, l.zapFields(fields)...)
}

func (l *zapLogger) Error(msg string, fields ...Fields) {
	l.base.Error(msg, l.zapFields(fields)...)
}

func (l *zapLogger) WithFields(fields Fields) Logger {
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &zapLogger{base: l.base, fields: merged}
}

// zapFields flattens the logger's bound fields plus per-call fields into
// zap fields. Per-call values win on key collision.
func (l *zapLogger) zapFields(calls []Fields) []zap.Field {
	merged := make(Fields, len(l.fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for _, f := range calls {
		for k, v := range f {
			merged[k] = v
		}
	}

	out := make([]zap.Field, 0, len(merged))
	for k, v := range merged {
		out = append(out, zap.Any(k, v))
	}
	return out
}
