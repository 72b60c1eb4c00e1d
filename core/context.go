package core

import (
	"context"
	"log/slog"
)

// Context keys for walk scoped values
type contextKey string

const (
	loggerKey contextKey = "logger"
	walkIDKey contextKey = "walkID"
)

// ContextWithLogger returns a context carrying l, so visitors log with the walk's attributes.
func ContextWithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// LoggerFromContext returns the logger stored in ctx, or slog.Default().
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// withWalkID sets the walk identifier in the context
func withWalkID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, walkIDKey, id)
}

// WalkIDFromContext returns the identifier of the walk driving ctx, or "" outside a walk.
func WalkIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(walkIDKey).(string)
	return id
}
