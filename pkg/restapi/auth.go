/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package restapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"gopkg.in/square/go-jose.v2/jwt"

	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
	"github.com/Juice-Labs/egs-sdk-go/pkg/logger"
)

const (
	AuthPath = "/api/v1/auth"

	ApiKeyExpiredMessage = "Api Key has expired"

	// Cached tokens are dropped this long before their exp claim.
	tokenExpiryMargin = 30 * time.Second
	// Lifetime assumed for tokens without a readable exp claim.
	tokenDefaultLifetime = 5 * time.Minute
)

type AuthenticationRequest struct {
	ApiKey string `json:"apiKey"`
}

type AuthenticationResponse struct {
	Token string `json:"token"`
}

// ExchangeApiKeyForAccessToken trades the client's API key for a bearer
// token. It is never retried.
func (client *Client) ExchangeApiKeyForAccessToken(ctx context.Context) (AuthenticationResponse, error) {
	if client.credentials.ApiKey == "" {
		return AuthenticationResponse{}, errors.ErrInvalidArgument.Wrapf("client has no API key to exchange")
	}

	body, err := json.Marshal(AuthenticationRequest{
		ApiKey: client.credentials.ApiKey,
	})
	if err != nil {
		return AuthenticationResponse{}, err
	}

	raw, err := client.roundTrip(ctx, http.MethodPost, AuthPath, "", body)
	if err != nil {
		client.metrics.observeTokenExchange("unreachable")
		return AuthenticationResponse{}, errors.ErrServerUnreachable.Wrap(err)
	}

	response, err := parseApiResponse(raw)
	if err != nil {
		client.metrics.observeTokenExchange("unreachable")
		return AuthenticationResponse{}, err
	}

	responseError := func(kind *errors.Error, result string) error {
		client.metrics.observeTokenExchange(result)
		return &errors.ResponseError{
			Kind:       kind,
			StatusCode: raw.StatusCode,
			Status:     raw.Status,
			Message:    response.Message,
			Body:       raw.Body,
		}
	}

	switch raw.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		return AuthenticationResponse{}, responseError(errors.ErrApiKeyInvalid, "invalid")
	case http.StatusUnauthorized:
		if response.Message == ApiKeyExpiredMessage {
			return AuthenticationResponse{}, responseError(errors.ErrApiKeyExpired, "expired")
		}
		return AuthenticationResponse{}, responseError(errors.ErrApiKeyNotFound, "not_found")
	default:
		return AuthenticationResponse{}, responseError(errors.ErrServerUnreachable, "unreachable")
	}

	auth, err := DecodeData[AuthenticationResponse](response)
	if err != nil {
		client.metrics.observeTokenExchange("unreachable")
		return AuthenticationResponse{}, err
	}

	if auth.Token == "" {
		client.metrics.observeTokenExchange("unreachable")
		return AuthenticationResponse{}, errors.ErrMalformedResponse.Wrapf("authentication response carries no token")
	}

	client.metrics.observeTokenExchange("ok")
	return auth, nil
}

// accessToken returns the bearer token for the next call.
func (client *Client) accessToken(ctx context.Context) (string, error) {
	if client.credentials.AccessToken != "" {
		return client.credentials.AccessToken, nil
	}

	if client.tokens != nil {
		if token, ok := client.tokens.Get(); ok {
			return token, nil
		}
	}

	auth, err := client.ExchangeApiKeyForAccessToken(ctx)
	if err != nil {
		return "", err
	}

	if client.tokens != nil {
		client.tokens.Set(auth.Token)
	}

	return auth.Token, nil
}

type tokenCache struct {
	mutex sync.Mutex

	now     func() time.Time
	token   string
	expires time.Time
}

func newTokenCache(now func() time.Time) *tokenCache {
	return &tokenCache{
		now: now,
	}
}

func (cache *tokenCache) Get() (string, bool) {
	cache.mutex.Lock()
	defer cache.mutex.Unlock()

	if cache.token == "" || !cache.now().Before(cache.expires) {
		return "", false
	}

	return cache.token, true
}

func (cache *tokenCache) Set(token string) {
	expires := cache.now().Add(tokenDefaultLifetime)
	if expiry, ok := tokenExpiry(token); ok {
		expires = expiry.Add(-tokenExpiryMargin)
	}

	cache.mutex.Lock()
	defer cache.mutex.Unlock()

	cache.token = token
	cache.expires = expires
}

func (cache *tokenCache) Invalidate() {
	cache.mutex.Lock()
	defer cache.mutex.Unlock()

	cache.token = ""
	cache.expires = time.Time{}
}

// tokenExpiry reads the exp claim without verifying the signature; the
// server remains the authority on validity.
func tokenExpiry(token string) (time.Time, bool) {
	parsed, err := jwt.ParseSigned(token)
	if err != nil {
		return time.Time{}, false
	}

	var claims jwt.Claims
	if err := parsed.UnsafeClaimsWithoutVerification(&claims); err != nil {
		logger.Debugf("access token claims are unreadable, %v", err)
		return time.Time{}, false
	}

	if claims.Expiry == nil {
		return time.Time{}, false
	}

	return claims.Expiry.Time(), true
}
