/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */

// Package egs is the typed client for the EGS GPU resource management
// service. Authenticate returns a Session; every resource function takes
// the session as its last argument and falls back to the default session
// when it is nil.
package egs

import (
	"context"
	"sync"

	"github.com/Juice-Labs/egs-sdk-go/pkg/config"
	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
	"github.com/Juice-Labs/egs-sdk-go/pkg/logger"
	"github.com/Juice-Labs/egs-sdk-go/pkg/restapi"
)

// Session pairs a client with whether it was installed as the default.
type Session struct {
	client     *restapi.Client
	sdkDefault bool
}

// NewSession wraps an existing client. No token exchange is performed.
func NewSession(client *restapi.Client, sdkDefault bool) *Session {
	session := &Session{
		client:     client,
		sdkDefault: sdkDefault,
	}

	if sdkDefault {
		SetDefaultSession(session)
	}

	return session
}

func (session *Session) Client() *restapi.Client {
	return session.client
}

func (session *Session) IsDefault() bool {
	return session.sdkDefault
}

// Authenticate builds a client for endpoint. With only an API key the key
// is exchanged right away, so bad credentials fail here rather than on the
// first call.
func Authenticate(ctx context.Context, endpoint string, credentials restapi.Credentials, sdkDefault bool, opts ...restapi.Option) (*Session, error) {
	if credentials.IsEmpty() {
		return nil, errors.ErrInvalidArgument.Wrapf("either an API key or an access token must be provided")
	}

	client, err := restapi.NewClient(endpoint, credentials, opts...)
	if err != nil {
		return nil, err
	}

	if credentials.AccessToken != "" {
		logger.Debug("using access token for authentication")
	} else {
		logger.Debug("using API key for authentication")

		if _, err := client.ExchangeApiKeyForAccessToken(ctx); err != nil {
			return nil, err
		}
	}

	return NewSession(client, sdkDefault), nil
}

func AuthenticateFromConfig(ctx context.Context, cfg config.Config, sdkDefault bool) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return Authenticate(ctx, cfg.Endpoint, restapi.Credentials{
		ApiKey:      cfg.ApiKey,
		AccessToken: cfg.AccessToken,
	}, sdkDefault, cfg.ClientOptions()...)
}

var (
	defaultSessionMutex sync.Mutex
	defaultSession      *Session
)

// SetDefaultSession installs session for calls that pass no session. The
// last call wins.
func SetDefaultSession(session *Session) {
	defaultSessionMutex.Lock()
	defer defaultSessionMutex.Unlock()

	defaultSession = session
}

func DefaultSession() *Session {
	defaultSessionMutex.Lock()
	defer defaultSessionMutex.Unlock()

	return defaultSession
}

func ClearDefaultSession() {
	SetDefaultSession(nil)
}

func resolveSession(session *Session) (*Session, error) {
	if session == nil {
		session = DefaultSession()
	}

	if session == nil || session.client == nil {
		return nil, errors.ErrUnauthorized.Wrapf("no authenticated session found")
	}

	return session, nil
}
