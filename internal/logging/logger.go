// Package logging defines the structured-logging interface used across the
// daemon. The slog-backed implementation redacts personal data before any
// attribute reaches the output.
package logging

import "context"

// Logger takes alternating attribute names and values after the message:
//
//	log.Info(ctx, "notification shown", "category", c, "session", id)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With binds attributes that every later record carries
	With(args ...any) Logger
}
