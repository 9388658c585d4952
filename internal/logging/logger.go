package logging

import (
	"log/slog"
	"os"
)

// Setup initializes the global slog logger: JSON to stdout, or text when
// running in development.
func Setup(env string) {
	slog.SetDefault(slog.New(StdoutHandler(env)))
}

func StdoutHandler(env string) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if env == "development" {
		return slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.NewJSONHandler(os.Stdout, opts)
}
