/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package logger

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Options selects how Configure builds the logger. The zero value logs at
// info level in the egs format to stderr.
type Options struct {
	// Level is one of fatal, error, warn, info, debug.
	Level string
	// Format is one of egs, console, json.
	Format string
	// File redirects output to a file instead of stderr.
	File  string
	Quiet bool
}

var (
	registerEncoder sync.Once

	logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)

	logger       *zap.Logger        = zap.NewNop()
	sugardLogger *zap.SugaredLogger = logger.Sugar()
	options      []zap.Option
)

func LogLevelAsString() string {
	return logLevel.String()
}

func AddOption(option zap.Option) {
	options = append(options, option)
}

// Logger returns the underlying zap logger, for callers that want
// structured fields.
func Logger() *zap.Logger {
	return logger
}

// Configure replaces the package logger. Until it is called every log call
// is discarded, so the SDK stays silent inside host programs.
func Configure(opts Options) error {
	level := strings.ToLower(strings.TrimSpace(opts.Level))
	if level == "" {
		level = "info"
	}

	parsed, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}
	logLevel = parsed

	format := opts.Format
	if format == "" {
		format = "egs"
	}

	registerEncoder.Do(func() {
		err = zap.RegisterEncoder("egs", NewEgsEncoder)
	})
	if err != nil {
		return fmt.Errorf("failed to register encoder, %w", err)
	}

	config := zap.NewDevelopmentConfig()
	config.Encoding = format
	config.Level = logLevel
	if opts.File != "" {
		config.OutputPaths = []string{
			opts.File,
		}
	}

	var built *zap.Logger
	if opts.Quiet {
		built = zap.NewNop()
	} else {
		// Skip our logger api
		built, err = config.Build(append(options, zap.AddCallerSkip(1))...)
		if err != nil {
			return fmt.Errorf("failed to initialize logger, %w", err)
		}
	}

	logger = built
	sugardLogger = logger.Sugar()
	return nil
}

// Reset discards the configured logger, returning to the silent default.
func Reset() {
	logger = zap.NewNop()
	sugardLogger = logger.Sugar()
	options = nil
}

func Close() {
	logger.Sync()
}

func Fatal(v ...any) {
	sugardLogger.Panic(v...)
}

func Fatalf(format string, v ...any) {
	sugardLogger.Panicf(format, v...)
}

func Error(v ...any) {
	sugardLogger.Error(v...)
}

func Errorf(format string, v ...any) {
	sugardLogger.Errorf(format, v...)
}

func Warning(v ...any) {
	sugardLogger.Warn(v...)
}

func Warningf(format string, v ...any) {
	sugardLogger.Warnf(format, v...)
}

func Info(v ...any) {
	sugardLogger.Info(v...)
}

func Infof(format string, v ...any) {
	sugardLogger.Infof(format, v...)
}

func Debug(v ...any) {
	sugardLogger.Debug(v...)
}

func Debugf(format string, v ...any) {
	sugardLogger.Debugf(format, v...)
}
