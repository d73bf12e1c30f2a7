/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package restapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
)

// InvokeSdkOperation sends request as JSON to path and decodes the
// envelope. Only 401 and 403 are turned into errors here; every other
// status is returned in the envelope for the caller to judge.
func (client *Client) InvokeSdkOperation(ctx context.Context, path string, method string, request any) (*ApiResponse, error) {
	token, err := client.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var body []byte
	if request != nil {
		body, err = json.Marshal(request)
		if err != nil {
			return nil, errors.ErrInvalidArgument.Wrap(err)
		}
	}

	raw, err := client.send(ctx, method, path, token, body)
	if err != nil {
		return nil, err
	}

	if raw.StatusCode == http.StatusUnauthorized || raw.StatusCode == http.StatusForbidden {
		if client.tokens != nil {
			client.tokens.Invalidate()
		}

		responseErr := &errors.ResponseError{
			Kind:       errors.ErrUnauthorized,
			StatusCode: raw.StatusCode,
			Status:     raw.Status,
			Body:       raw.Body,
		}
		if response, err := parseApiResponse(raw); err == nil {
			responseErr.Message = response.Message
		}

		return nil, responseErr
	}

	return parseApiResponse(raw)
}

func (client *Client) Get(ctx context.Context, path string) (*ApiResponse, error) {
	return client.InvokeSdkOperation(ctx, path, http.MethodGet, nil)
}

func (client *Client) Post(ctx context.Context, path string, request any) (*ApiResponse, error) {
	return client.InvokeSdkOperation(ctx, path, http.MethodPost, request)
}

func (client *Client) Put(ctx context.Context, path string, request any) (*ApiResponse, error) {
	return client.InvokeSdkOperation(ctx, path, http.MethodPut, request)
}

func (client *Client) Delete(ctx context.Context, path string, request any) (*ApiResponse, error) {
	return client.InvokeSdkOperation(ctx, path, http.MethodDelete, request)
}
