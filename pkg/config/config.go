/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
	"github.com/Juice-Labs/egs-sdk-go/pkg/restapi"
)

const (
	EnvEndpoint    = "EGS_ENDPOINT"
	EnvApiKey      = "EGS_API_KEY"
	EnvAccessToken = "EGS_ACCESS_TOKEN"
	EnvTimeout     = "EGS_TIMEOUT"
	EnvRetries     = "EGS_RETRIES"
	EnvTokenCache  = "EGS_TOKEN_CACHE"

	DefaultEnvFile = ".env"
)

// Config is what a program needs to reach EGS. Zero Timeout keeps the
// client default.
type Config struct {
	Endpoint    string
	ApiKey      string
	AccessToken string
	Timeout     time.Duration
	Retries     int
	TokenCache  bool
}

// Load reads the EGS_* variables after loading the given .env files, or
// ./.env when none are given. Missing files are skipped and variables
// already in the environment are never overridden.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{DefaultEnvFile}
	}

	var existing []string
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}

	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return Config{}, errors.ErrInvalidArgument.Wrapf("failed to load %s, %v", strings.Join(existing, ", "), err)
		}
	}

	return FromEnv()
}

// FromEnv reads the EGS_* variables from the process environment only.
func FromEnv() (Config, error) {
	config := Config{
		Endpoint:    strings.TrimSpace(os.Getenv(EnvEndpoint)),
		ApiKey:      strings.TrimSpace(os.Getenv(EnvApiKey)),
		AccessToken: strings.TrimSpace(os.Getenv(EnvAccessToken)),
	}

	if value := os.Getenv(EnvTimeout); value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil || timeout < 0 {
			return Config{}, errors.ErrInvalidArgument.Wrapf("%s=%q is not a valid duration", EnvTimeout, value)
		}
		config.Timeout = timeout
	}

	if value := os.Getenv(EnvRetries); value != "" {
		retries, err := strconv.Atoi(value)
		if err != nil || retries < 0 {
			return Config{}, errors.ErrInvalidArgument.Wrapf("%s=%q is not a valid retry count", EnvRetries, value)
		}
		config.Retries = retries
	}

	if value := os.Getenv(EnvTokenCache); value != "" {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return Config{}, errors.ErrInvalidArgument.Wrapf("%s=%q is not a boolean", EnvTokenCache, value)
		}
		config.TokenCache = enabled
	}

	return config, nil
}

func (config Config) Validate() error {
	if config.Endpoint == "" {
		return errors.ErrInvalidArgument.Wrapf("%s is not set", EnvEndpoint)
	}

	if config.ApiKey == "" && config.AccessToken == "" {
		return errors.ErrInvalidArgument.Wrapf("either %s or %s must be set", EnvApiKey, EnvAccessToken)
	}

	if _, err := restapi.ParseEndpoint(config.Endpoint); err != nil {
		return err
	}

	return nil
}

func (config Config) ClientOptions() []restapi.Option {
	var opts []restapi.Option

	if config.Timeout > 0 {
		opts = append(opts, restapi.WithTimeout(config.Timeout))
	}

	if config.Retries > 0 {
		opts = append(opts, restapi.WithRetries(config.Retries))
	}

	if config.TokenCache {
		opts = append(opts, restapi.WithTokenCache(true))
	}

	return opts
}
