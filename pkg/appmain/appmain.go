/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package appmain

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
	"github.com/Juice-Labs/egs-sdk-go/pkg/logger"
	"github.com/Juice-Labs/egs-sdk-go/pkg/sentry"
	"github.com/Juice-Labs/egs-sdk-go/pkg/task"
)

type Config struct {
	Name    string
	Version string

	SentryConfig sentry.ClientOptions
}

const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2
)

var (
	printVersion = flag.Bool("version", false, "Prints the version and exits")
	logLevel     = flag.String("log-level", "warn", "One of fatal, error, warn, info, debug")
	logFormat    = flag.String("log-format", "egs", "One of egs, console, json")
	logFile      = flag.String("log-file", "", "Writes logs to the file instead of stderr")
	quiet        = flag.Bool("quiet", false, "Disables logging")
)

// UsageError marks a failure caused by how the program was invoked.
type UsageError struct {
	Message string
}

func (err UsageError) Error() string {
	return err.Message
}

func Usagef(format string, a ...any) error {
	return UsageError{Message: fmt.Sprintf(format, a...)}
}

// Run parses the command line, sets up logging and error reporting, then
// runs logic until it returns or the process is interrupted. It does not
// return.
func Run(config Config, logic task.TaskFn) {
	flag.Parse()

	if *printVersion {
		fmt.Fprintln(os.Stdout, config.Version)
		os.Exit(ExitSuccess)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := Execute(ctx, config, logger.Options{
		Level:  *logLevel,
		Format: *logFormat,
		File:   *logFile,
		Quiet:  *quiet,
	}, logic)
	stop()

	os.Exit(ExitCode(err))
}

// Execute is Run without the command line and process handling.
func Execute(ctx context.Context, config Config, options logger.Options, logic task.TaskFn) error {
	if err := sentry.Initialize(config.SentryConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	defer sentry.Close()

	if err := logger.Configure(options); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	defer logger.Close()

	logger.Info(config.Name, ", v", config.Version)

	taskManager := task.NewTaskManager(ctx)
	taskManager.GoFn(config.Name, logic)

	err := taskManager.Wait()
	if err != nil {
		logger.Error(err)
		if ExitCode(err) == ExitFailure {
			sentry.CaptureError(err)
		}
		fmt.Fprintln(os.Stderr, err)
	}

	return err
}

func ExitCode(err error) int {
	var usageErr UsageError

	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &usageErr):
		return ExitUsage
	}

	return ExitFailure
}
