// logging/logger.go

package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dev-mohitbeniwal/blobsas/config"
)

// Log is a nop logger until InitLogger runs, so packages and tests can log
// without setup.
var Log = zap.NewNop()

func InitLogger(cfg config.LogConfig) error {
	zc := zap.NewProductionConfig()

	level := cfg.Level
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		zc.Level.SetLevel(parsed)
	}

	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		zc.OutputPaths = append(zc.OutputPaths, filepath.Join(cfg.Dir, "blobsas.log"))
		zc.ErrorOutputPaths = append(zc.ErrorOutputPaths, filepath.Join(cfg.Dir, "blobsas_error.log"))
	}

	zc.EncoderConfig.CallerKey = "caller"
	zc.EncoderConfig.StacktraceKey = "stacktrace"
	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	built, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	Log = built
	zap.ReplaceGlobals(Log)
	return nil
}

func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	Log.Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	Log.Fatal(msg, fields...)
}

// WithContext adds context fields to the logger
func WithContext(fields ...zap.Field) *zap.Logger {
	return Log.With(fields...)
}

func Sync() error {
	return Log.Sync()
}
