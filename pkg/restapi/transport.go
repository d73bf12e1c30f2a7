/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package restapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
	"github.com/Juice-Labs/egs-sdk-go/pkg/logger"
)

const (
	retryInitialDelay = 200 * time.Millisecond
	retryFactor       = 2.0
	retryJitter       = 0.1
)

type rawResponse struct {
	StatusCode int
	Status     string
	Body       []byte
}

func isRetryableMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodPut
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}

	return false
}

type routeKey struct{}

// WithRoute makes the calls made with ctx report route, such as
// "/api/v1/workspace-policies/{name}", as their path label. Paths that carry
// names need it to keep the label cardinality bounded.
func WithRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, routeKey{}, route)
}

// metricPath is the route set on ctx, or path without its query.
func metricPath(ctx context.Context, path string) string {
	if route, ok := ctx.Value(routeKey{}).(string); ok && route != "" {
		return route
	}

	if index := strings.IndexByte(path, '?'); index != -1 {
		return path[:index]
	}

	return path
}

// send performs the call, retrying idempotent methods when the client was
// configured to. The returned error is always an ErrServerUnreachable.
func (client *Client) send(ctx context.Context, method string, path string, token string, body []byte) (rawResponse, error) {
	if client.retries == 0 || !isRetryableMethod(method) {
		response, err := client.roundTrip(ctx, method, path, token, body)
		if err != nil {
			return rawResponse{}, errors.ErrServerUnreachable.Wrap(err)
		}

		return response, nil
	}

	backoff := wait.Backoff{
		Duration: retryInitialDelay,
		Factor:   retryFactor,
		Jitter:   retryJitter,
		Steps:    client.retries + 1,
	}

	var response rawResponse
	var lastErr error
	attempt := 0

	err := wait.ExponentialBackoffWithContext(ctx, backoff, func(ctx context.Context) (bool, error) {
		attempt++
		if attempt > 1 {
			logger.Debugf("retrying %s %s, attempt %d", method, metricPath(ctx, path), attempt)
		}

		response, lastErr = client.roundTrip(ctx, method, path, token, body)
		if lastErr != nil {
			return false, nil
		}

		return !isRetryableStatus(response.StatusCode), nil
	})

	// A ctx that ends the backoff wins over any response seen before it.
	if err != nil && ctx.Err() != nil {
		return rawResponse{}, errors.ErrServerUnreachable.Wrap(ctx.Err())
	}

	if lastErr != nil {
		return rawResponse{}, errors.ErrServerUnreachable.Wrap(lastErr)
	}

	if err != nil && !wait.Interrupted(err) {
		return rawResponse{}, errors.ErrServerUnreachable.Wrap(err)
	}

	// Retries exhausted on a retryable status, hand back the last response.
	return response, nil
}

func (client *Client) roundTrip(ctx context.Context, method string, path string, token string, body []byte) (rawResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	request, err := http.NewRequestWithContext(ctx, method, client.endpoint.URL(path), reader)
	if err != nil {
		return rawResponse{}, err
	}

	requestId := uuid.NewString()

	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", client.userAgent)
	request.Header.Set("X-Request-Id", requestId)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()

	response, err := client.httpClient.Do(request)
	if err != nil {
		client.metrics.observeRequest(method, metricPath(ctx, path), 0, time.Since(start))
		logger.Debugf("%s %s failed after %s, request %s, %v", method, metricPath(ctx, path), time.Since(start), requestId, err)
		return rawResponse{}, err
	}
	defer response.Body.Close()

	data, err := io.ReadAll(response.Body)
	elapsed := time.Since(start)

	client.metrics.observeRequest(method, metricPath(ctx, path), response.StatusCode, elapsed)
	logger.Debugf("%s %s %d %s, request %s", method, metricPath(ctx, path), response.StatusCode, elapsed, requestId)

	if err != nil {
		return rawResponse{}, err
	}

	return rawResponse{
		StatusCode: response.StatusCode,
		Status:     response.Status,
		Body:       data,
	}, nil
}
