/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package restapi

import (
	"bytes"
	"encoding/json"

	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
)

// ApiResponse is the envelope every EGS endpoint answers with.
type ApiResponse struct {
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Error      json.RawMessage `json:"error"`

	// Transport level details, not part of the envelope.
	HttpStatus int    `json:"-"`
	Body       []byte `json:"-"`
}

func (response *ApiResponse) HasData() bool {
	return len(response.Data) > 0
}

func (response *ApiResponse) HasError() bool {
	return len(response.Error) > 0
}

// DecodeData unmarshals the data payload into v. An absent payload leaves v
// untouched.
func (response *ApiResponse) DecodeData(v any) error {
	if !response.HasData() {
		return nil
	}

	if err := json.Unmarshal(response.Data, v); err != nil {
		return errors.ErrMalformedResponse.Wrap(err)
	}

	return nil
}

func DecodeData[T any](response *ApiResponse) (T, error) {
	var value T
	err := response.DecodeData(&value)
	return value, err
}

var jsonNull = []byte("null")

func nullToNil(raw json.RawMessage) json.RawMessage {
	if bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return nil
	}

	return raw
}

// parseApiResponse decodes body into the envelope. Error bodies that are
// not JSON, such as proxy pages, keep their text as the message.
func parseApiResponse(raw rawResponse) (*ApiResponse, error) {
	response := &ApiResponse{
		HttpStatus: raw.StatusCode,
		Body:       raw.Body,
	}

	if len(bytes.TrimSpace(raw.Body)) > 0 {
		if err := json.Unmarshal(raw.Body, response); err != nil {
			if raw.StatusCode == 200 {
				return nil, errors.ErrMalformedResponse.Wrap(err)
			}

			response.Message = string(raw.Body)
		}
	}

	response.Data = nullToNil(response.Data)
	response.Error = nullToNil(response.Error)

	if response.StatusCode == 0 {
		response.StatusCode = raw.StatusCode
	}

	return response, nil
}
