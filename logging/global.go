package logging

import (
	"log/slog"
	"os"
)

type LoggingService struct {
	Logger *slog.Logger
	file   *RotatingLogger
}

var DefaultLoggingService *LoggingService

// Options controls where logs go and how verbose they are
type Options struct {
	LogDir         string // empty disables the log file
	RetentionWeeks int
	MaxFileSize    int64
	ConsoleLevel   slog.Level
}

// InitLogger initializes the global logger instance and makes it the slog
// default. If the log file cannot be opened the logger falls back to the
// console and the error is returned for the caller to report.
func InitLogger(opts Options) error {
	service, err := newLoggingService(opts)
	DefaultLoggingService = service
	slog.SetDefault(service.Logger)
	return err
}

// Close flushes and closes the log file of the global logger
func Close() error {
	if DefaultLoggingService == nil || DefaultLoggingService.file == nil {
		return nil
	}
	return DefaultLoggingService.file.Close()
}

func newLoggingService(opts Options) (*LoggingService, error) {
	// Console gets text format, file gets JSON format for better parsing
	consoleHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: opts.ConsoleLevel,
	})

	if opts.LogDir == "" {
		return &LoggingService{Logger: slog.New(consoleHandler)}, nil
	}

	rotating := NewRotatingLogger(opts.LogDir, opts.RetentionWeeks, opts.MaxFileSize)
	if err := rotating.Open(); err != nil {
		return &LoggingService{Logger: slog.New(consoleHandler)}, err
	}

	fileHandler := slog.NewJSONHandler(rotating, &slog.HandlerOptions{
		Level: GetFileLogLevel(),
	})

	return &LoggingService{
		Logger: slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}}),
		file:   rotating,
	}, nil
}

// Package-level functions for direct access

func fallback(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func Info(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		fallback(slog.LevelInfo).Info(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		fallback(slog.LevelError).Error(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Error(msg, args...)
}

func Warn(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		fallback(slog.LevelWarn).Warn(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		fallback(slog.LevelDebug).Debug(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Debug(msg, args...)
}
