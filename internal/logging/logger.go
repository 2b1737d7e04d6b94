package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/wire"

	"github.com/trebuchet-org/kyc-deploy/internal/domain/config"
)

// LevelEnv overrides the log level (debug, info, warn, error)
const LevelEnv = "KYC_DEPLOY_LOG_LEVEL"

var LoggingSet = wire.NewSet(
	NewLogger,
)

// NewLogger creates a stderr logger based on runtime configuration
func NewLogger(cfg *config.RuntimeConfig) *slog.Logger {
	return newLogger(os.Stderr, cfg.Debug)
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	if val := os.Getenv(LevelEnv); val != "" {
		level = ParseLevel(val, level)
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Time only adds noise to a one-shot command
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			if a.Key == slog.SourceKey {
				if source, ok := a.Value.Any().(*slog.Source); ok {
					source.File = shortPath(source.File)
				}
			}
			return a
		},
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a level name to a slog level, returning fallback for unknown names
func ParseLevel(name string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}

// shortPath trims a source path to the part below the module root
func shortPath(file string) string {
	if idx := strings.Index(file, "kyc-deploy/"); idx != -1 {
		return file[idx+len("kyc-deploy/"):]
	}
	parts := strings.Split(file, "/")
	return parts[len(parts)-1]
}
