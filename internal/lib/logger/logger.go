// Package logger создаёт slog.Logger в зависимости от окружения.
package logger

import (
	"io"
	"log/slog"
	"os"
)

const (
	envLocal = "local"
	envDev   = "dev"
)

// Setup возвращает текстовый логгер уровня debug для локального запуска
// и JSON‑логгер для остальных окружений.
func Setup(env string) *slog.Logger {
	return New(env, os.Stdout)
}

// New как Setup, но пишет в переданный writer.
func New(env string, w io.Writer) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}
