package log

import "context"

// Logger is the structured logging interface used at the wiring layer.
// Handlers and services log through the global zerolog logger directly;
// this interface exists so server startup code is not tied to one backend.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...map[string]any)
	Info(ctx context.Context, msg string, fields ...map[string]any)
	Warn(ctx context.Context, msg string, fields ...map[string]any)
	Error(ctx context.Context, msg string, err error, fields ...map[string]any)
	// Fatal logs and terminates the process. Startup wiring only.
	Fatal(ctx context.Context, msg string, err error, fields ...map[string]any)
	With(fields map[string]any) Logger
}
