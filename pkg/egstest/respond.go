/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package egstest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Envelope mirrors the body every EGS endpoint answers with.
type Envelope struct {
	Status     string `json:"status,omitempty"`
	Message    string `json:"message,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
	Data       any    `json:"data,omitempty"`
	Error      any    `json:"error,omitempty"`
}

func Ok(data any) Envelope {
	return Envelope{
		Status:     "OK",
		StatusCode: http.StatusOK,
		Data:       data,
	}
}

func Fail(statusCode int, message string) Envelope {
	return Envelope{
		Status:     "error",
		StatusCode: statusCode,
		Message:    message,
		Error: map[string]any{
			"errorKey":     http.StatusText(statusCode),
			"message":      message,
			"statusCode":   statusCode,
			"errorMessage": message,
		},
	}
}

func Respond[T any](w http.ResponseWriter, code int, obj T) error {
	data, err := json.Marshal(obj)
	if err == nil {
		w.Header().Add("Content-Type", "application/json")
		w.Header().Add("Content-Length", fmt.Sprint(len(data)))
		w.WriteHeader(code)
		_, err = w.Write(data)
	}

	return err
}

func RespondWithString(w http.ResponseWriter, code int, contentType string, msg string) error {
	w.Header().Add("Content-Type", contentType)
	w.Header().Add("Content-Length", fmt.Sprint(len(msg)))
	w.WriteHeader(code)
	_, err := io.WriteString(w, msg)
	return err
}
