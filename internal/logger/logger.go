package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Logger struct {
	service  string
	hostname string
	handler  *slog.Logger
}

// New creates a JSON logger on stdout for the given service
func New(service, level string) *Logger {
	return NewWithWriter(service, level, os.Stdout)
}

func NewWithWriter(service, level string, w io.Writer) *Logger {
	hostname, _ := os.Hostname()

	handler := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))

	return &Logger{
		service:  service,
		hostname: hostname,
		handler:  handler,
	}
}

// ParseLevel maps a config string to a slog level, defaulting to info
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

func (l *Logger) Debug(action, message, requestID string, details map[string]any) {
	l.log(slog.LevelDebug, action, message, requestID, details)
}

func (l *Logger) Info(action, message, requestID string, details map[string]any) {
	l.log(slog.LevelInfo, action, message, requestID, details)
}

func (l *Logger) Warn(action, message, requestID string, details map[string]any) {
	l.log(slog.LevelWarn, action, message, requestID, details)
}

func (l *Logger) Error(action, message, requestID string, err error, details map[string]any) {
	attrs := l.baseAttrs(action, requestID, details)
	if err != nil {
		attrs = append(attrs, slog.Group("error",
			slog.String("msg", err.Error()),
			slog.String("stack", string(debug.Stack())),
		))
	}
	l.handler.LogAttrs(context.TODO(), slog.LevelError, message, attrs...)
}

func (l *Logger) log(level slog.Level, action, message, requestID string, details map[string]any) {
	l.handler.LogAttrs(context.TODO(), level, message, l.baseAttrs(action, requestID, details)...)
}

func (l *Logger) baseAttrs(action, requestID string, details map[string]any) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
		slog.String("service", l.service),
		slog.String("hostname", l.hostname),
		slog.String("action", action),
		slog.String("request_id", requestID),
	}
	if len(details) > 0 {
		group := make([]any, 0, len(details))
		for k, v := range details {
			group = append(group, slog.Any(k, v))
		}
		attrs = append(attrs, slog.Group("details", group...))
	}
	return attrs
}

// GenerateRequestID returns a fresh id for correlating log lines
func GenerateRequestID() string {
	return uuid.NewString()
}

type requestIDKey struct{}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the request id stored in ctx, or "" if none.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
