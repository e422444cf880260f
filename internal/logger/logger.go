package logger

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var base = zap.NewNop()

var serviceName = "cryptoflow"

// Init builds the process-wide logger. level is one of debug, info, warn, error.
func Init(service, level string) error {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return errors.Wrapf(err, "parse log level %q", level)
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.DisableStacktrace = true

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return errors.Wrap(err, "build logger")
	}
	if service != "" {
		serviceName = service
	}
	base = l.With(zap.String("service", serviceName))
	return nil
}

// Set replaces the process-wide logger. Tests use it with zaptest or observer cores.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	base = l
}

// L returns the underlying zap logger for callers that want structured fields.
func L() *zap.Logger { return base }

// Sync flushes buffered entries.
func Sync() { _ = base.Sync() }

func Debug(format string, args ...interface{}) { base.Debug(fmt.Sprintf(format, args...)) }

func Info(format string, args ...interface{}) { base.Info(fmt.Sprintf(format, args...)) }

func Warn(format string, args ...interface{}) { base.Warn(fmt.Sprintf(format, args...)) }

func Error(format string, args ...interface{}) { base.Error(fmt.Sprintf(format, args...)) }

func Fatal(format string, args ...interface{}) { base.Fatal(fmt.Sprintf(format, args...)) }
