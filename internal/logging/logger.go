package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs a JSON slog logger on stdout as the process default.
// Development environments log at debug level.
func Setup(env string) *slog.Logger {
	logger := slog.New(NewJSONHandler(os.Stdout, env))
	slog.SetDefault(logger)
	return logger
}

func NewJSONHandler(w io.Writer, env string) slog.Handler {
	level := slog.LevelInfo
	if env == "development" {
		level = slog.LevelDebug
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}
