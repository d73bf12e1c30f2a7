/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package errors

import (
	"fmt"
	"strings"
)

// Client-side preconditions.
var (
	ErrInvalidArgument = New("egs: invalid argument")
)

// Token exchange.
var (
	ErrApiKeyInvalid     = New("egs: API key is invalid")
	ErrApiKeyExpired     = New("egs: API key has expired")
	ErrApiKeyNotFound    = New("egs: API key not found")
	ErrServerUnreachable = New("egs: server unreachable")
)

// Authenticated calls.
var (
	ErrUnauthorized      = New("egs: unauthorized")
	ErrMalformedResponse = New("egs: malformed response")
)

// Resource operations.
var (
	ErrWorkspaceAlreadyExists = New("egs: workspace already exists")
	ErrBadParameters          = New("egs: bad parameters")
	ErrResourceNotFound       = New("egs: resource not found")
	ErrGpuAlreadyProvisioned  = New("egs: GPU already provisioned")
	ErrGpuAlreadyReleased     = New("egs: GPU already released")
	ErrUnhandled              = New("egs: unhandled response")
)

// ResponseError is a failure reported by the server. Kind is the primary
// sentinel; Also lists further sentinels the error matches, used when an
// operation keeps a legacy kind for a status it does not really describe.
type ResponseError struct {
	Kind *Error
	Also []*Error

	StatusCode int
	Status     string
	Message    string
	Body       []byte

	ResourceType string
	ResourceId   string
}

func (err *ResponseError) Error() string {
	var builder strings.Builder

	builder.WriteString(err.Kind.Message)
	fmt.Fprintf(&builder, " (status %d)", err.StatusCode)

	if err.ResourceType != "" {
		fmt.Fprintf(&builder, ", %s %q", err.ResourceType, err.ResourceId)
	}

	if err.Message != "" {
		builder.WriteString(": ")
		builder.WriteString(err.Message)
	}

	return builder.String()
}

func (err *ResponseError) Unwrap() []error {
	errs := make([]error, 0, len(err.Also)+1)
	errs = append(errs, err.Kind)
	for _, also := range err.Also {
		errs = append(errs, also)
	}

	return errs
}

// StatusCode returns the server status carried by err, or 0 when err is not
// a ResponseError.
func StatusCode(err error) int {
	var responseErr *ResponseError
	if As(err, &responseErr) {
		return responseErr.StatusCode
	}

	return 0
}
