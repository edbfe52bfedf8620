package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// LogLevel represents the logging verbosity level.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// DebugCategory gates a targeted slice of debug output: the wire codec,
// the input framer, the session state machine, the transport, or the
// media manager.
type DebugCategory string

const (
	DebugCodec     DebugCategory = "codec"
	DebugFramer    DebugCategory = "framer"
	DebugSession   DebugCategory = "session"
	DebugTransport DebugCategory = "transport"
	DebugMedia     DebugCategory = "media"
	DebugAll       DebugCategory = "all"
)

// OutputFormat determines the log output format.
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatText OutputFormat = "text"
)

// Config holds logger configuration.
type Config struct {
	Level             LogLevel
	Format            OutputFormat
	OutputFile        string
	EnabledCategories map[DebugCategory]bool
	mu                sync.RWMutex
}

// NewConfig creates a logger configuration with defaults.
func NewConfig() *Config {
	return &Config{
		Level:             LevelInfo,
		Format:            FormatText,
		EnabledCategories: make(map[DebugCategory]bool),
	}
}

// ParseLevel converts a string to LogLevel.
func ParseLevel(level string) (LogLevel, error) {
	switch level {
	case "debug", "DEBUG":
		return LevelDebug, nil
	case "info", "INFO":
		return LevelInfo, nil
	case "warn", "WARN", "warning", "WARNING":
		return LevelWarn, nil
	case "error", "ERROR":
		return LevelError, nil
	default:
		return "", fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", level)
	}
}

// ParseFormat converts a string to OutputFormat.
func ParseFormat(format string) (OutputFormat, error) {
	switch format {
	case "json", "JSON":
		return FormatJSON, nil
	case "text", "TEXT":
		return FormatText, nil
	default:
		return "", fmt.Errorf("invalid log format: %s (must be json or text)", format)
	}
}

// ToSlogLevel converts LogLevel to slog.Level.
func (l LogLevel) ToSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// EnableCategory enables a specific debug category, or every category
// when given DebugAll.
func (c *Config) EnableCategory(category DebugCategory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if category == DebugAll {
		c.EnabledCategories[DebugCodec] = true
		c.EnabledCategories[DebugFramer] = true
		c.EnabledCategories[DebugSession] = true
		c.EnabledCategories[DebugTransport] = true
		c.EnabledCategories[DebugMedia] = true
		return
	}
	c.EnabledCategories[category] = true
}

// IsCategoryEnabled reports whether a debug category is active.
func (c *Config) IsCategoryEnabled(category DebugCategory) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.EnabledCategories[category]
}

// IsDebugEnabled reports whether any category has been enabled.
func (c *Config) IsDebugEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.EnabledCategories) > 0
}

// Logger wraps slog.Logger with WFD category-gated debug helpers.
type Logger struct {
	*slog.Logger
	config *Config
	file   *os.File
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// New builds a Logger from cfg, opening OutputFile if one is set.
func New(cfg *Config) (*Logger, error) {
	var writer io.Writer = os.Stdout
	var file *os.File

	if cfg.OutputFile != "" {
		f, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", cfg.OutputFile, err)
		}
		writer = f
		file = f
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.Level.ToSlogLevel()}
	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(writer, handlerOpts)
	default:
		handler = slog.NewTextHandler(writer, handlerOpts)
	}

	return &Logger{Logger: slog.New(handler), config: cfg, file: file}, nil
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// With returns a new Logger with the given attributes attached.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), config: l.config, file: l.file}
}

// DebugCodec logs wire-format parse/serialize details when the codec
// category is enabled. A nil Logger is a no-op, so core components can
// hold an optional *Logger without a nil check at every call site.
func (l *Logger) DebugCodec(msg string, args ...any) {
	if l == nil {
		return
	}
	if l.config.IsCategoryEnabled(DebugCodec) {
		l.Debug(msg, append([]any{"category", "codec"}, args...)...)
	}
}

// DebugFramer logs input-framer boundary detection details.
func (l *Logger) DebugFramer(msg string, args ...any) {
	if l == nil {
		return
	}
	if l.config.IsCategoryEnabled(DebugFramer) {
		l.Debug(msg, append([]any{"category", "framer"}, args...)...)
	}
}

// DebugSession logs state machine phase transitions and dispatch.
func (l *Logger) DebugSession(msg string, args ...any) {
	if l == nil {
		return
	}
	if l.config.IsCategoryEnabled(DebugSession) {
		l.Debug(msg, append([]any{"category", "session"}, args...)...)
	}
}

// DebugTransport logs raw send/receive activity on the wire.
func (l *Logger) DebugTransport(msg string, args ...any) {
	if l == nil {
		return
	}
	if l.config.IsCategoryEnabled(DebugTransport) {
		l.Debug(msg, append([]any{"category", "transport"}, args...)...)
	}
}

// DebugMedia logs RTP/RTCP diagnostic activity from a media manager.
func (l *Logger) DebugMedia(msg string, args ...any) {
	if l == nil {
		return
	}
	if l.config.IsCategoryEnabled(DebugMedia) {
		l.Debug(msg, append([]any{"category", "media"}, args...)...)
	}
}

// SetDefault sets the global default logger.
func SetDefault(logger *Logger) {
	defaultLogger = logger
	slog.SetDefault(logger.Logger)
}

// Default returns the process default logger, creating one on first use.
func Default() *Logger {
	once.Do(func() {
		if defaultLogger != nil {
			return
		}
		cfg := NewConfig()
		l, err := New(cfg)
		if err != nil {
			l = &Logger{Logger: slog.Default(), config: cfg}
		}
		defaultLogger = l
	})
	return defaultLogger
}
