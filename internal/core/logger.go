package core

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5/middleware"
)

// Logger provides feature-scoped structured logging
type Logger struct {
	*slog.Logger
	mu       *sync.Mutex
	features map[string]*slog.Logger
}

// NewLogger creates a text logger on stdout at info level
func NewLogger() *Logger {
	return NewLoggerWithConfig(os.Stdout, LogConfig{Level: "info", Format: "text"})
}

// NewLoggerWithConfig creates a logger writing to w with the configured level and format
func NewLoggerWithConfig(w io.Writer, cfg LogConfig) *Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{
		Logger:   slog.New(handler),
		mu:       &sync.Mutex{},
		features: make(map[string]*slog.Logger),
	}
}

// ParseLevel maps a level name to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ForFeature returns a logger specific to a feature
func (l *Logger) ForFeature(featureName string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	featureLogger, exists := l.features[featureName]
	if !exists {
		featureLogger = l.Logger.With("feature", featureName)
		l.features[featureName] = featureLogger
	}

	return l.derive(featureLogger)
}

// WithContext returns a logger carrying the chi request id, if any
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	if requestID := middleware.GetReqID(ctx); requestID != "" {
		return l.derive(l.Logger.With("request_id", requestID))
	}

	return l
}

// WithUser returns a logger with user context
func (l *Logger) WithUser(userID int64, username string) *Logger {
	return l.derive(l.Logger.With("user_id", userID, "username", username))
}

// With returns a logger with the given attributes
func (l *Logger) With(args ...any) *Logger {
	return l.derive(l.Logger.With(args...))
}

func (l *Logger) derive(s *slog.Logger) *Logger {
	return &Logger{
		Logger:   s,
		mu:       l.mu,
		features: l.features,
	}
}

// Discard returns a logger that drops everything; used by tests
func Discard() *Logger {
	return NewLoggerWithConfig(io.Discard, LogConfig{Level: "error"})
}
