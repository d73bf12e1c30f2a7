/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Juice-Labs/egs-sdk-go/cmd/egsctl/app"
	"github.com/Juice-Labs/egs-sdk-go/internal/build"
	"github.com/Juice-Labs/egs-sdk-go/pkg/appmain"
	"github.com/Juice-Labs/egs-sdk-go/pkg/config"
	"github.com/Juice-Labs/egs-sdk-go/pkg/sentry"
	"github.com/Juice-Labs/egs-sdk-go/pkg/task"
)

var (
	envFile = flag.String("env-file", config.DefaultEnvFile, "Loads EGS_* settings from the file, variables already set win")
)

func main() {
	name := "egsctl"

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <resource> <verb> [verb flags]\n\n", name)
		app.PrintUsage(flag.CommandLine.Output())
		fmt.Fprintln(flag.CommandLine.Output())
		flag.PrintDefaults()
	}

	config := appmain.Config{
		Name:    name,
		Version: build.Version,

		SentryConfig: sentry.ClientOptions{
			Dsn:     os.Getenv(sentry.EnvDsn),
			Release: fmt.Sprintf("%s@%s", name, build.Version),
		},
	}

	appmain.Run(config, func(group task.Group) error {
		return app.Run(group.Ctx(), app.Options{
			EnvFile: *envFile,
			Stdout:  os.Stdout,
			Stderr:  os.Stderr,
		}, flag.Args())
	})
}
