package logging

// Fields carries structured key/value context attached to log entries.
type Fields map[string]any

// Logger is the structured logging interface used throughout the engine.
// Lens implementations receive a Logger at construction and never log
// through package-level state.
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(msg string, fields ...Fields)
	WithFields(fields Fields) Logger
}

// WithFields returns the default logger pre-populated with fields.
func WithFields(fields Fields) Logger {
	return NewDefaultLogger().WithFields(fields)
}
