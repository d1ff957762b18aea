// Package logging configures the process-wide slog logger: optional
// file output with size-based rotation, text or JSON format. Internal
// packages pick it up through slog.Default().
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Config holds logger configuration.
type Config struct {
	Level      slog.Level
	OutputFile string // empty = stderr only
	MaxSize    int64  // bytes before rotation, default 10MB
	MaxBackups int    // rotated files to keep, default 3
	JSONFormat bool
	AddSource  bool
}

// DefaultConfig logs human-readable text at info, or debug with source
// locations when verbose, to a file under the diffscope home.
func DefaultConfig(homeDir string, verbose bool) Config {
	cfg := Config{
		Level:      slog.LevelInfo,
		OutputFile: filepath.Join(homeDir, "logs", "dscope.log"),
		MaxSize:    10 * 1024 * 1024,
		MaxBackups: 3,
	}
	if verbose {
		cfg.Level = slog.LevelDebug
		cfg.AddSource = true
	}
	return cfg
}

var (
	mu       sync.Mutex
	logFile  *os.File
	filePath string
)

// Init builds the logger and installs it as the slog default. Safe to
// call once at CLI startup; commands that must keep stdio clean (the MCP
// server) pass Quiet instead.
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	if cfg.MaxSize == 0 {
		cfg.MaxSize = 10 * 1024 * 1024
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 3
	}

	writers := []io.Writer{os.Stderr}
	if cfg.OutputFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.OutputFile), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		if err := rotateIfNeeded(cfg); err != nil {
			return fmt.Errorf("rotate logs: %w", err)
		}
		f, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logFile = f
		filePath = cfg.OutputFile
		writers = append(writers, f)
	}

	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.JSONFormat {
		handler = slog.NewJSONHandler(io.MultiWriter(writers...), opts)
	} else {
		handler = slog.NewTextHandler(io.MultiWriter(writers...), opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// Quiet routes all logging to io.Discard. Used by stdio transports
// where any stray output corrupts the protocol stream.
func Quiet() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// Close closes the log file if one is open.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		return err
	}
	return nil
}

// FilePath returns the active log file path, or "".
func FilePath() string {
	mu.Lock()
	defer mu.Unlock()
	return filePath
}

// rotateIfNeeded shifts dscope.log -> dscope.log.1 -> ... when the
// current file exceeds the size cap.
func rotateIfNeeded(cfg Config) error {
	info, err := os.Stat(cfg.OutputFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Size() < cfg.MaxSize {
		return nil
	}

	for i := cfg.MaxBackups - 1; i >= 1; i-- {
		old := fmt.Sprintf("%s.%d", cfg.OutputFile, i)
		if _, err := os.Stat(old); err == nil {
			os.Rename(old, fmt.Sprintf("%s.%d", cfg.OutputFile, i+1))
		}
	}
	return os.Rename(cfg.OutputFile, cfg.OutputFile+".1")
}
