package logger

import "context"

// Logger defines the interface for structured logging with context support.
type Logger interface {
	// Debug logs a debug-level message with optional fields
	Debug(ctx context.Context, msg string, fields map[string]interface{})

	// Info logs an info-level message with optional fields
	Info(ctx context.Context, msg string, fields map[string]interface{})

	// Warn logs a warning-level message with optional fields
	Warn(ctx context.Context, msg string, fields map[string]interface{})

	// Error logs an error-level message with optional fields
	Error(ctx context.Context, msg string, fields map[string]interface{})

	// WithField returns a new logger with the given field added to all subsequent log entries
	WithField(key string, value interface{}) Logger

	// WithFields returns a new logger with the given fields added to all subsequent log entries
	WithFields(fields map[string]interface{}) Logger
}

type runKey struct{}

// ContextWithRun tags ctx with the name of the script run it belongs to.
// Loggers add it to every entry as the "run" field.
func ContextWithRun(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, runKey{}, name)
}

// RunFromContext returns the script run name stored in ctx, if any.
func RunFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	name, ok := ctx.Value(runKey{}).(string)
	return name, ok && name != ""
}

// mergeFields combines the run name from ctx with the per-call fields.
func mergeFields(ctx context.Context, fields map[string]interface{}) map[string]interface{} {
	name, ok := RunFromContext(ctx)
	if !ok {
		return fields
	}
	merged := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	if _, exists := merged["run"]; !exists {
		merged["run"] = name
	}
	return merged
}
