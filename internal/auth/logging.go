package auth

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// AttemptLogger appends authentication attempts to an audit file.
// A disabled AttemptLogger drops every record.
type AttemptLogger struct {
	enabled bool
	path    string

	once sync.Once
	l    *slog.Logger
}

// NewAttemptLogger creates an AttemptLogger writing to path when enabled
func NewAttemptLogger(enabled bool, path string) *AttemptLogger {
	return &AttemptLogger{enabled: enabled, path: path}
}

func (a *AttemptLogger) logger() *slog.Logger {
	a.once.Do(func() {
		if err := os.MkdirAll(filepath.Dir(a.path), 0o750); err != nil {
			return
		}
		f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return
		}
		a.l = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	})
	return a.l
}

// LogAuthAttempt records one attempt. Failing to write the audit file never
// fails the request.
func (a *AttemptLogger) LogAuthAttempt(ctx context.Context, level slog.Level, status, identifier, message string) {
	if a == nil || !a.enabled {
		return
	}
	l := a.logger()
	if l == nil {
		return
	}

	args := []any{"auth_type", "Local", "status", status}
	if identifier != "" {
		args = append(args, "identifier", identifier)
	}
	if message != "" {
		args = append(args, "detail", message)
	}
	l.Log(ctx, level, "auth attempt", args...)
}
