package utils

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
)

// logError logs e at level, adding the root cause when e was wrapped on the way up.
func logError(level slog.Level, e error) {
	if e == nil {
		return
	}
	attrs := []any{"error", e}
	if cause := errors.Cause(e); cause != e {
		attrs = append(attrs, "cause", cause)
	}
	slog.Log(context.Background(), level, "", attrs...)
}

func Loge(e error) {
	logError(slog.LevelError, e)
}

func Logwe(e error) {
	logError(slog.LevelWarn, e)
}

func Logde(e error) {
	logError(slog.LevelDebug, e)
}
