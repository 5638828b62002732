// Package log is the structured logger used across craftnet. It keeps a
// process wide default logger behind package level helpers so call sites
// read log.Info().Str("remote", addr).Msg("connected").
package log

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
)

// Logger wraps a zerolog.Logger together with the writers it owns.
type Logger struct {
	zl      zerolog.Logger
	closers []io.Closer
}

var _defaultLogger atomic.Pointer[Logger]

func init() {
	l, _ := NewLogger(DefaultCfg())
	_defaultLogger.Store(l)
}

// NewLogger builds a logger from cfg. cfg must have passed Validate.
func NewLogger(cfg *LogCfg) (*Logger, error) {
	var (
		writers []io.Writer
		closers []io.Closer
	)

	if cfg.ConsoleAppender {
		if cfg.ConsoleJSON {
			writers = append(writers, os.Stderr)
		} else {
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.StampMilli})
		}
	}

	if cfg.FileAppender {
		fw, err := NewRotateWriter(cfg.LogPath, cfg.FileSplitHour, cfg.FileSplitMB)
		if err != nil {
			return nil, err
		}
		closers = append(closers, fw)
		writers = append(writers, fw)
	}

	var out io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	if cfg.IsAsync {
		dw := diode.NewWriter(out, cfg.AsyncCacheSize, time.Duration(cfg.AsyncWriteMillSec)*time.Millisecond,
			func(missed int) {
				os.Stderr.WriteString("log: async ring dropped entries\n")
			})
		out = dw
		// the diode must flush before the files under it close
		closers = append([]io.Closer{dw}, closers...)
	}

	ctx := zerolog.New(out).Level(cfg.LogLevel.zerolog()).With().Timestamp()
	if cfg.EnabledCallerInfo {
		ctx = ctx.Caller()
	}
	return &Logger{zl: ctx.Logger(), closers: closers}, nil
}

// NewWriterLogger logs JSON to w. Used by tests to capture output.
func NewWriterLogger(w io.Writer, level Level) *Logger {
	return &Logger{zl: zerolog.New(w).Level(level.zerolog()).With().Timestamp().Logger()}
}

func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// With starts a child logger context carrying extra fields.
func (l *Logger) With() zerolog.Context { return l.zl.With() }

// Zerolog exposes the underlying logger.
func (l *Logger) Zerolog() *zerolog.Logger { return &l.zl }

// Close flushes and closes owned writers.
func (l *Logger) Close() error {
	var first error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	l.closers = nil
	return first
}

// Initialize configures the default logger. A nil cfg means DefaultCfg.
func Initialize(cfg *LogCfg) error {
	if cfg == nil {
		cfg = DefaultCfg()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	l, err := NewLogger(cfg)
	if err != nil {
		return err
	}
	SetDefaultLogger(l)
	return nil
}

// SetDefaultLogger replaces the default logger. The previous one is not closed.
func SetDefaultLogger(logger *Logger) {
	_defaultLogger.Store(logger)
}

// Default returns the current default logger.
func Default() *Logger {
	return _defaultLogger.Load()
}

// Close flushes and closes the default logger.
func Close() error {
	return Default().Close()
}

func Trace() *zerolog.Event { return Default().Trace() }
func Debug() *zerolog.Event { return Default().Debug() }
func Info() *zerolog.Event  { return Default().Info() }
func Warn() *zerolog.Event  { return Default().Warn() }
func Error() *zerolog.Event { return Default().Error() }

// Fatal logs at fatal level. The process exits once the event is sent.
func Fatal() *zerolog.Event { return Default().Fatal() }

// With starts a child context on the default logger.
func With() zerolog.Context { return Default().With() }
