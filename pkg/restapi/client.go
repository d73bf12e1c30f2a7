/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package restapi

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Juice-Labs/egs-sdk-go/internal/build"
	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
)

const (
	DefaultTimeout = 30 * time.Second
)

// Credentials holds what the client authenticates with. A non-empty
// AccessToken is used as-is; otherwise ApiKey is exchanged for a token.
type Credentials struct {
	ApiKey      string
	AccessToken string
}

func (credentials Credentials) IsEmpty() bool {
	return credentials.ApiKey == "" && credentials.AccessToken == ""
}

type options struct {
	httpClient *http.Client
	timeout    time.Duration
	retries    int
	tokenCache bool
	registerer prometheus.Registerer
	userAgent  string
}

type Option func(*options)

// WithHTTPClient makes the client use httpClient unchanged. WithTimeout has
// no effect when it is set.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) {
		o.httpClient = httpClient
	}
}

// WithTimeout bounds every HTTP round trip. Zero disables the timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithRetries retries GET and PUT calls up to n more times on transport
// errors and 502, 503 or 504.
func WithRetries(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.retries = n
	}
}

// WithTokenCache reuses the exchanged access token until shortly before it
// expires instead of exchanging the API key on every call.
func WithTokenCache(enabled bool) Option {
	return func(o *options) {
		o.tokenCache = enabled
	}
}

func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = registerer
	}
}

func WithUserAgent(userAgent string) Option {
	return func(o *options) {
		o.userAgent = userAgent
	}
}

// Client performs authenticated calls against one EGS endpoint. It is safe
// for concurrent use.
type Client struct {
	endpoint    Endpoint
	credentials Credentials

	httpClient *http.Client
	retries    int
	userAgent  string

	tokens  *tokenCache
	metrics *metrics
}

func NewClient(serverURL string, credentials Credentials, opts ...Option) (*Client, error) {
	if credentials.IsEmpty() {
		return nil, errors.ErrInvalidArgument.Wrapf("an API key or an access token is required")
	}

	endpoint, err := ParseEndpoint(serverURL)
	if err != nil {
		return nil, err
	}

	o := options{
		timeout:   DefaultTimeout,
		userAgent: build.UserAgent(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
			Timeout:   o.timeout,
		}
	}

	client := &Client{
		endpoint:    endpoint,
		credentials: credentials,
		httpClient:  httpClient,
		retries:     o.retries,
		userAgent:   o.userAgent,
		metrics:     newMetrics(o.registerer),
	}

	if o.tokenCache {
		client.tokens = newTokenCache(time.Now)
	}

	return client, nil
}

func (client *Client) Endpoint() Endpoint {
	return client.endpoint
}

func (client *Client) HasApiKey() bool {
	return client.credentials.ApiKey != ""
}

func (client *Client) HasAccessToken() bool {
	return client.credentials.AccessToken != ""
}
