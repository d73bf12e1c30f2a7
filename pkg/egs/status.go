/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package egs

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
	"github.com/Juice-Labs/egs-sdk-go/pkg/restapi"
)

// errorTable maps a non-200 status to the error kind an operation reports.
type errorTable map[int]*errors.Error

type resource struct {
	Type string
	Id   string
}

// checkStatus passes a 200 envelope and turns anything else into a
// ResponseError. Statuses missing from table map to ErrUnhandled.
func checkStatus(response *restapi.ApiResponse, table errorTable) error {
	return checkStatusFor(response, table, resource{})
}

func checkStatusFor(response *restapi.ApiResponse, table errorTable, resource resource) error {
	if response.StatusCode == http.StatusOK {
		return nil
	}

	kind, ok := table[response.StatusCode]
	if !ok {
		kind = errors.ErrUnhandled
	}

	return newResponseError(response, kind, resource)
}

// checkRejected reports every failure as kind, adding ErrUnhandled for
// statuses other than 409 so callers can tell a real conflict apart.
func checkRejected(response *restapi.ApiResponse, kind *errors.Error) error {
	if response.StatusCode == http.StatusOK {
		return nil
	}

	err := newResponseError(response, kind, resource{})
	if response.StatusCode != http.StatusConflict {
		err.Also = []*errors.Error{errors.ErrUnhandled}
	}

	return err
}

func newResponseError(response *restapi.ApiResponse, kind *errors.Error, resource resource) *errors.ResponseError {
	return &errors.ResponseError{
		Kind:         kind,
		StatusCode:   response.StatusCode,
		Status:       response.Status,
		Message:      response.Message,
		Body:         response.Body,
		ResourceType: resource.Type,
		ResourceId:   resource.Id,
	}
}

// invoke resolves the session and performs one call.
func invoke(ctx context.Context, session *Session, method string, path string, request any) (*restapi.ApiResponse, error) {
	session, err := resolveSession(session)
	if err != nil {
		return nil, err
	}

	return session.client.InvokeSdkOperation(ctx, path, method, request)
}

// call performs one request, applies table and decodes data into T.
func call[T any](ctx context.Context, session *Session, method string, path string, request any, table errorTable) (T, error) {
	var value T

	response, err := invoke(ctx, session, method, path, request)
	if err != nil {
		return value, err
	}

	if err := checkStatus(response, table); err != nil {
		return value, err
	}

	return restapi.DecodeData[T](response)
}

// exec is call for operations whose data payload is ignored.
func exec(ctx context.Context, session *Session, method string, path string, request any, table errorTable) error {
	response, err := invoke(ctx, session, method, path, request)
	if err != nil {
		return err
	}

	return checkStatus(response, table)
}

func withQuery(path string, query url.Values) string {
	if encoded := query.Encode(); encoded != "" {
		return path + "?" + encoded
	}

	return path
}
