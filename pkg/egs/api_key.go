/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package egs

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
)

const (
	apiKeyPath     = "/api/v1/api-key"
	apiKeyListPath = "/api/v1/api-key/list"
)

const (
	RoleOwner  = "Owner"
	RoleEditor = "Editor"
	RoleViewer = "Viewer"
)

// ValidityDateLayout is the date form of Validity. A duration such as
// "90d" is accepted too.
const ValidityDateLayout = "2006-01-02"

type CreateApiKeyRequest struct {
	Name        string `json:"name"`
	UserName    string `json:"userName"`
	Description string `json:"description"`
	Role        string `json:"role"`
	Validity    string `json:"validity"`
	// Required for Editor and Viewer keys.
	WorkspaceName string `json:"workspaceName,omitempty"`
}

type ApiKey struct {
	ApiKey        string `json:"apiKey"`
	Name          string `json:"name"`
	UserName      string `json:"userName"`
	Description   string `json:"description"`
	Role          string `json:"role"`
	Validity      string `json:"validity"`
	WorkspaceName string `json:"workspaceName,omitempty"`
	Status        string `json:"status,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
}

// ListApiKeysResponse accepts both a bare array and an object with items.
type ListApiKeysResponse struct {
	Items []ApiKey `json:"items"`
}

func (response *ListApiKeysResponse) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &response.Items)
	}

	type plain ListApiKeysResponse
	return json.Unmarshal(data, (*plain)(response))
}

type apiKeyData struct {
	ApiKey string `json:"apiKey"`
}

func requiresWorkspace(role string) bool {
	return role == RoleEditor || role == RoleViewer
}

// CreateApiKey returns the new API key. Editor and Viewer keys are scoped
// to a workspace, so they fail before any call when WorkspaceName is blank.
func CreateApiKey(ctx context.Context, request CreateApiKeyRequest, session *Session) (string, error) {
	if requiresWorkspace(request.Role) && request.WorkspaceName == "" {
		return "", errors.ErrInvalidArgument.Wrapf("a workspace name is required for %s API keys", request.Role)
	}

	data, err := call[apiKeyData](ctx, session, http.MethodPost, apiKeyPath, request, nil)
	return data.ApiKey, err
}

// CreateOwnerApiKey creates an Owner key that is valid until tomorrow, UTC.
func CreateOwnerApiKey(ctx context.Context, name string, username string, description string, session *Session) (string, error) {
	return CreateApiKey(ctx, CreateApiKeyRequest{
		Name:        name,
		UserName:    username,
		Description: description,
		Role:        RoleOwner,
		Validity:    tomorrow(time.Now()),
	}, session)
}

func tomorrow(now time.Time) string {
	return now.UTC().AddDate(0, 0, 1).Format(ValidityDateLayout)
}

func DeleteApiKey(ctx context.Context, apiKey string, session *Session) error {
	return exec(ctx, session, http.MethodDelete, apiKeyPath, apiKeyData{
		ApiKey: apiKey,
	}, nil)
}

// ListApiKeys lists the keys of a workspace, or all keys when
// workspaceName is empty.
func ListApiKeys(ctx context.Context, workspaceName string, session *Session) (ListApiKeysResponse, error) {
	query := url.Values{}
	if workspaceName != "" {
		query.Set("workspaceName", workspaceName)
	}

	return call[ListApiKeysResponse](ctx, session, http.MethodGet, withQuery(apiKeyListPath, query), nil, nil)
}
