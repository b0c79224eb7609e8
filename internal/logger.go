package internal

import (
	"io"
	"log/slog"
	"strings"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// redactedKeys are attribute keys whose values never reach the log output.
var redactedKeys = []string{"password", "confirm_password", "csrf_token"}

func NewLogger(w io.Writer, env string, level string) *slog.Logger {
	logLevel, ok := logLevels[strings.ToLower(level)]
	if !ok {
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:       logLevel,
		ReplaceAttr: redactSecrets,
	}

	var handler slog.Handler
	if env == "development" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

func redactSecrets(_ []string, a slog.Attr) slog.Attr {
	for _, key := range redactedKeys {
		if strings.EqualFold(a.Key, key) {
			return slog.String(a.Key, "[REDACTED]")
		}
	}
	return a
}
