// Package log is the application's structured logger. Call sites pass a
// message followed by key/value pairs:
//
//	log.Info("Storage initialized", "backend", "memory")
//
// Console and file sinks are separate loggers with independent levels, so a
// file can capture debug output while the console only shows warnings.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/paularlott/logger"
	logslog "github.com/paularlott/logger/slog"
)

var (
	mu         sync.RWMutex
	consoleCfg = logslog.Config{Level: "info", Format: "console", Writer: os.Stderr}
	console    = logslog.New(consoleCfg)
	file       logger.Logger
	closer     io.Closer
)

// Configure sets the console level (trace, debug, info, warn, error) and
// format (console, json). Unknown values fall back to info/console.
func Configure(level, format string) {
	mu.Lock()
	defer mu.Unlock()

	consoleCfg.Level = strings.ToLower(level)
	consoleCfg.Format = normalizeFormat(format)
	console = logslog.New(consoleCfg)
}

// SetOutput redirects the console sink, mainly for tests
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	consoleCfg.Writer = w
	console = logslog.New(consoleCfg)
}

// SetFile adds a JSON file sink at the given level. An empty path removes
// any existing file sink.
func SetFile(path, level string) error {
	mu.Lock()
	defer mu.Unlock()

	file = nil
	if closer != nil {
		closer.Close()
		closer = nil
	}
	if path == "" {
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	closer = f
	file = logslog.New(logslog.Config{Level: strings.ToLower(level), Format: "json", Writer: f})
	return nil
}

// Close releases the file sink, if any
func Close() error {
	return SetFile("", "")
}

func Trace(msg string, keyvals ...any) { each(func(l logger.Logger) { l.Trace(msg, keyvals...) }) }
func Debug(msg string, keyvals ...any) { each(func(l logger.Logger) { l.Debug(msg, keyvals...) }) }
func Info(msg string, keyvals ...any)  { each(func(l logger.Logger) { l.Info(msg, keyvals...) }) }
func Warn(msg string, keyvals ...any)  { each(func(l logger.Logger) { l.Warn(msg, keyvals...) }) }
func Error(msg string, keyvals ...any) { each(func(l logger.Logger) { l.Error(msg, keyvals...) }) }

// each hands the entry to every active sink; each sink filters by its own level
func each(emit func(logger.Logger)) {
	mu.RLock()
	c, f := console, file
	mu.RUnlock()

	emit(c)
	if f != nil {
		emit(f)
	}
}

func normalizeFormat(format string) string {
	if strings.EqualFold(format, "json") {
		return "json"
	}
	return "console"
}
