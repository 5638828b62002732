package log

import (
	"errors"
	"fmt"
	"path/filepath"
)

// LogCfg represents the logging configuration.
type LogCfg struct {
	// LogPath is the log file path. Parent directories are created on demand.
	LogPath string `mapstructure:"path"`

	// LogLevel is the minimum level written.
	LogLevel Level `mapstructure:"level"`

	// FileSplitMB rotates the file once it exceeds this many megabytes.
	FileSplitMB int `mapstructure:"splitMB"`

	// FileSplitHour rotates the file daily at this hour. 0 disables time based rotation.
	FileSplitHour int `mapstructure:"splitHour"`

	// IsAsync buffers entries in a ring and writes them from a background goroutine.
	IsAsync bool `mapstructure:"isAsync"`

	// AsyncCacheSize is the ring size in entries when IsAsync is set.
	AsyncCacheSize int `mapstructure:"asyncCacheSize"`

	// AsyncWriteMillSec is the ring poll interval when IsAsync is set.
	AsyncWriteMillSec int `mapstructure:"asyncWriteMillSec"`

	FileAppender    bool `mapstructure:"fileAppender"`
	ConsoleAppender bool `mapstructure:"consoleAppender"`

	// ConsoleJSON writes raw JSON to stderr instead of the human readable console format.
	ConsoleJSON bool `mapstructure:"consoleJSON"`

	EnabledCallerInfo bool `mapstructure:"enabledCallerInfo"`
}

// Validate validates the logging configuration for correctness and consistency.
func (cfg *LogCfg) Validate() error {
	if cfg.LogLevel < TraceLevel || cfg.LogLevel > FatalLevel {
		return fmt.Errorf("invalid log level: %d, must be between %d (Trace) and %d (Fatal)",
			cfg.LogLevel, TraceLevel, FatalLevel)
	}

	if cfg.FileAppender && (cfg.FileSplitMB < 1 || cfg.FileSplitMB > 1024) {
		return fmt.Errorf("file split size must be between 1MB and 1024MB, got %dMB", cfg.FileSplitMB)
	}

	if cfg.FileSplitHour < 0 || cfg.FileSplitHour > 23 {
		return fmt.Errorf("file split hour must be between 0 and 23, got %d", cfg.FileSplitHour)
	}

	if cfg.IsAsync && cfg.AsyncCacheSize < 1 {
		return fmt.Errorf("async cache size must be at least 1 when async mode is enabled, got %d", cfg.AsyncCacheSize)
	}

	if cfg.IsAsync && cfg.AsyncWriteMillSec < 10 {
		return fmt.Errorf("async write interval must be at least 10ms, got %dms", cfg.AsyncWriteMillSec)
	}

	if cfg.FileAppender {
		if cfg.LogPath == "" {
			return errors.New("log path cannot be empty when file appender is enabled")
		}
		cfg.LogPath = filepath.Clean(cfg.LogPath)
	}

	if !cfg.FileAppender && !cfg.ConsoleAppender {
		return errors.New("at least one appender (file or console) must be enabled")
	}
	return nil
}

var _defaultCfg = LogCfg{
	LogPath:           "./craftnet.log",
	LogLevel:          InfoLevel,
	FileSplitMB:       50,
	ConsoleAppender:   true,
	EnabledCallerInfo: false,
}

// DefaultCfg returns a copy of the default configuration: console only, info level.
func DefaultCfg() *LogCfg {
	cfg := _defaultCfg
	return &cfg
}
