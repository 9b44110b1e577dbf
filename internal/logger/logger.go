// Package logger builds the structured logger the hello binary logs with: a
// zap core writing JSON, wrapped as a logr.Logger, and bridged to log/slog for
// the rendering packages.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	CommandKey   = "command"
	TimeStampKey = "timestamp"
	MessageKey   = "message"
)

// Logger is a logr.Logger that remembers the zap logger behind it, so it can
// be flushed before the process exits.
type Logger struct {
	logr.Logger

	zap *zap.Logger
}

// New returns a Logger writing JSON lines to out, dropping entries below
// level. level is any level zap understands: debug, info, warn, error.
func New(out io.Writer, level string) (*Logger, error) {
	minimumLevel, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.TimeKey = TimeStampKey
	encoderCfg.MessageKey = MessageKey

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(out)),
		zap.NewAtomicLevelAt(minimumLevel),
	)
	zl := zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	)
	return &Logger{
		Logger: zapr.NewLogger(zl),
		zap:    zl,
	}, nil
}

// ParseLevel parses a zap level name. An empty string means info.
func ParseLevel(level string) (zapcore.Level, error) {
	level = strings.TrimSpace(level)
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return parsed, nil
}

// Slog returns a *slog.Logger that writes through l.
func (l *Logger) Slog() *slog.Logger {
	return slog.New(logr.ToSlogHandler(l.Logger))
}

// Sync flushes any buffered log entries. Errors syncing a terminal or pipe
// are expected and dropped.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	err := l.zap.Sync()
	if err == nil || isIgnorableSyncError(err) {
		return nil
	}
	return fmt.Errorf("failed to sync logger: %w", err)
}

// isIgnorableSyncError returns true for common Sync errors on pipes/TTYs.
// Windows consoles can return ERROR_INVALID_HANDLE wrapped in *os.PathError,
// which does not compare equal to syscall.EINVAL, so we also string-match.
func isIgnorableSyncError(err error) bool {
	if errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.EIO) || errors.Is(err, syscall.EBADF) {
		return true
	}
	return strings.Contains(err.Error(), "The handle is invalid")
}

// WithLogger returns a copy of ctx carrying log.
func WithLogger(ctx context.Context, log logr.Logger) context.Context {
	return logr.NewContext(ctx, log)
}

// FromContext returns the logger carried by ctx, or one that discards
// everything.
func FromContext(ctx context.Context) logr.Logger {
	return logr.FromContextOrDiscard(ctx)
}
