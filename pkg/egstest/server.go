/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */

// Package egstest runs a scripted EGS server for tests. Routes answer with
// canned envelopes and every request is recorded for inspection.
package egstest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/Juice-Labs/egs-sdk-go/pkg/logger"
)

const (
	AuthPath = "/api/v1/auth"
)

// Request is a recorded call.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Query    url.Values
	Header   http.Header
	Body     []byte
}

func (request Request) Decode(v any) error {
	return json.Unmarshal(request.Body, v)
}

// JSON decodes the body into a generic map, for asserting literal field
// names.
func (request Request) JSON() map[string]any {
	result := map[string]any{}
	if err := json.Unmarshal(request.Body, &result); err != nil {
		return nil
	}

	return result
}

func (request Request) BearerToken() string {
	const prefix = "Bearer "

	value := request.Header.Get("Authorization")
	if len(value) > len(prefix) && value[:len(prefix)] == prefix {
		return value[len(prefix):]
	}

	return ""
}

type Server struct {
	t testing.TB

	server *httptest.Server
	router *mux.Router

	mutex    sync.Mutex
	routes   map[string]http.Handler
	requests []Request
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	server := &Server{
		t:      t,
		router: mux.NewRouter(),
		routes: map[string]http.Handler{},
	}

	server.router.Use(logger.Middleware)
	server.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Respond(w, http.StatusNotFound, Fail(http.StatusNotFound, "no route for "+r.Method+" "+r.URL.Path))
	})

	server.server = httptest.NewServer(server.record(server.router))
	t.Cleanup(server.Close)

	return server
}

func (server *Server) URL() string {
	return server.server.URL
}

func (server *Server) Close() {
	server.server.Close()
}

func (server *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			server.t.Errorf("egstest: failed to read request body, %v", err)
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		server.mutex.Lock()
		server.requests = append(server.requests, Request{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Query:    r.URL.Query(),
			Header:   r.Header.Clone(),
			Body:     body,
		})
		server.mutex.Unlock()

		next.ServeHTTP(w, r)
	})
}

// HandleFunc routes method and path to fn. A later call for the same route
// replaces the earlier handler.
func (server *Server) HandleFunc(method string, path string, fn http.HandlerFunc) {
	key := method + " " + path

	server.mutex.Lock()
	_, exists := server.routes[key]
	server.routes[key] = fn
	server.mutex.Unlock()

	if !exists {
		server.router.Methods(method).Path(path).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			server.mutex.Lock()
			handler := server.routes[key]
			server.mutex.Unlock()

			handler.ServeHTTP(w, r)
		})
	}
}

// Handle answers method and path with a fixed envelope.
func (server *Server) Handle(method string, path string, status int, envelope Envelope) {
	server.HandleFunc(method, path, func(w http.ResponseWriter, r *http.Request) {
		Respond(w, status, envelope)
	})
}

// HandleRaw answers with a literal body, for envelopes the Envelope type
// cannot express.
func (server *Server) HandleRaw(method string, path string, status int, contentType string, body string) {
	server.HandleFunc(method, path, func(w http.ResponseWriter, r *http.Request) {
		RespondWithString(w, status, contentType, body)
	})
}

// AllowAuth makes the auth endpoint trade apiKey for token. Any other key is
// answered as unknown.
func (server *Server) AllowAuth(apiKey string, token string) {
	server.HandleFunc(http.MethodPost, AuthPath, func(w http.ResponseWriter, r *http.Request) {
		var request struct {
			ApiKey string `json:"apiKey"`
		}

		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			Respond(w, http.StatusBadRequest, Fail(http.StatusBadRequest, "invalid request"))
			return
		}

		if request.ApiKey != apiKey {
			Respond(w, http.StatusUnauthorized, Fail(http.StatusUnauthorized, "Api Key not found"))
			return
		}

		Respond(w, http.StatusOK, Ok(map[string]string{
			"token": token,
		}))
	})
}

func (server *Server) Requests() []Request {
	server.mutex.Lock()
	defer server.mutex.Unlock()

	return append([]Request(nil), server.requests...)
}

func (server *Server) RequestsTo(method string, path string) []Request {
	var matched []Request
	for _, request := range server.Requests() {
		if request.Method == method && request.Path == path {
			matched = append(matched, request)
		}
	}

	return matched
}

// LastRequestTo fails the test when path was never called.
func (server *Server) LastRequestTo(method string, path string) Request {
	server.t.Helper()

	matched := server.RequestsTo(method, path)
	if len(matched) == 0 {
		server.t.Fatalf("egstest: no %s request to %s", method, path)
		return Request{}
	}

	return matched[len(matched)-1]
}
