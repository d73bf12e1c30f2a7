/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package sentry

import (
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
	"github.com/Juice-Labs/egs-sdk-go/pkg/logger"
)

const (
	EnvDsn = "EGS_SENTRY_DSN"
)

var (
	// SentryDsn is set at build time.
	SentryDsn = ""
)

type ClientOptions = sentry.ClientOptions

// Dsn resolves the DSN to report to: the configured one, then EGS_SENTRY_DSN,
// then the build time SentryDsn.
func Dsn(config ClientOptions) string {
	if config.Dsn != "" {
		return config.Dsn
	}

	if dsn := os.Getenv(EnvDsn); dsn != "" {
		return dsn
	}

	return SentryDsn
}

// Initialize enables reporting when a DSN is available. Without one it does
// nothing and reports nothing.
func Initialize(config ClientOptions) error {
	config.Dsn = Dsn(config)
	if config.Dsn == "" {
		return nil
	}

	if err := sentry.Init(config); err != nil {
		return err
	}

	// errors logged through the logger become breadcrumbs
	logger.AddOption(zap.Hooks(breadcrumb))
	return nil
}

func breadcrumb(entry zapcore.Entry) error {
	if entry.Level >= zapcore.ErrorLevel {
		sentry.AddBreadcrumb(&sentry.Breadcrumb{
			Type:      "error",
			Category:  "error",
			Level:     sentry.LevelError,
			Message:   fmt.Sprintf("%s %s", entry.Caller.TrimmedPath(), entry.Message),
			Timestamp: entry.Time,
		})
	}

	return nil
}

func Enabled() bool {
	return sentry.CurrentHub().Client() != nil
}

// CaptureError reports err, tagging the server status when err carries one.
func CaptureError(err error) {
	if err == nil || !Enabled() {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		if code := errors.StatusCode(err); code != 0 {
			scope.SetTag("egs.status_code", fmt.Sprint(code))
		}

		sentry.CaptureException(err)
	})
}

func Close() {
	if err := recover(); err != nil {
		sentry.CurrentHub().Recover(err)
		sentry.Flush(2 * time.Second)
		// re-raise panic
		panic(err)
	}
	sentry.Flush(2 * time.Second)
}
