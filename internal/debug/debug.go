// Package debug provides development logging for Aurora.
//
// Logging is off until Enable is called. Once enabled, entries are written as
// JSON lines to a size-rotated file so a long-running TUI session never fills
// the disk.
package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	enabled bool
	logger  = zap.NewNop()
	rotator *lumberjack.Logger
	mu      sync.RWMutex
	logPath string
)

// Enable turns on debug logging to the specified file.
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	rotator = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
		Compress:   true,
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(rotator),
		zap.DebugLevel,
	)

	logger = zap.New(core, zap.AddCaller())
	logPath = path
	enabled = true

	logger.Info("=== Aurora Debug Session Started ===", zap.String("log_file", path))

	return nil
}

// Disable turns off debug logging and closes the file.
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if !enabled {
		return
	}

	_ = logger.Sync() //nolint:errcheck // Sync on a rotated file can fail harmlessly on shutdown
	if rotator != nil {
		_ = rotator.Close() //nolint:errcheck // Nothing useful to do on close failure
		rotator = nil
	}
	logger = zap.NewNop()
	enabled = false
}

// IsEnabled returns whether debug logging is enabled.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Logger returns the structured logger. It is a no-op logger while debug
// logging is disabled, so callers can hold on to it unconditionally.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Log writes a debug message if logging is enabled.
func Log(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()

	if !enabled {
		return
	}
	logger.Debug(fmt.Sprintf(format, args...))
}

// LogPath returns the path to the log file.
func LogPath() string {
	mu.RLock()
	defer mu.RUnlock()
	return logPath
}

// Event logs a TUI event with component context.
func Event(component, eventType string, details string) {
	mu.RLock()
	defer mu.RUnlock()

	if !enabled {
		return
	}
	logger.Debug(eventType,
		zap.String("component", component),
		zap.String("details", details),
	)
}

// Error logs an error with context.
func Error(component string, err error, context string) {
	mu.RLock()
	defer mu.RUnlock()

	if !enabled {
		return
	}
	logger.Error(context,
		zap.String("component", component),
		zap.Error(err),
	)
}
