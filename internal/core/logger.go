package core

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/go-chi/chi/v5/middleware"
)

// Logger wraps slog with per-feature child loggers
type Logger struct {
	*slog.Logger
	features *featureLoggers
}

type featureLoggers struct {
	mu      sync.Mutex
	loggers map[string]*slog.Logger
}

// NewLogger creates a new logger writing text records to stdout
func NewLogger() *Logger {
	return NewLoggerWithHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// NewDiscardLogger returns a logger that drops every record. Used by tests.
func NewDiscardLogger() *Logger {
	return NewLoggerWithHandler(slog.NewTextHandler(io.Discard, nil))
}

// NewLoggerWithHandler creates a logger over an arbitrary slog handler
func NewLoggerWithHandler(handler slog.Handler) *Logger {
	return &Logger{
		Logger:   slog.New(handler),
		features: &featureLoggers{loggers: make(map[string]*slog.Logger)},
	}
}

// ForFeature returns a logger specific to a feature
func (l *Logger) ForFeature(featureName string) *Logger {
	l.features.mu.Lock()
	defer l.features.mu.Unlock()

	featureLogger, exists := l.features.loggers[featureName]
	if !exists {
		featureLogger = l.Logger.With("feature", featureName)
		l.features.loggers[featureName] = featureLogger
	}

	return &Logger{
		Logger:   featureLogger,
		features: l.features,
	}
}

// WithContext returns a logger carrying the chi request id, if any
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	if requestID := middleware.GetReqID(ctx); requestID != "" {
		return &Logger{
			Logger:   l.Logger.With("request_id", requestID),
			features: l.features,
		}
	}

	return l
}

// WithAdmin returns a logger with admin user context
func (l *Logger) WithAdmin(userID int64, email string) *Logger {
	return &Logger{
		Logger:   l.Logger.With("admin_id", userID, "admin_email", email),
		features: l.features,
	}
}

// LogFeatureError logs a feature-specific error
func (l *Logger) LogFeatureError(featureName, message string, err error, attrs ...any) {
	featureLogger := l.ForFeature(featureName)
	allAttrs := append([]any{"error", err}, attrs...)
	featureLogger.Error(message, allAttrs...)
}
