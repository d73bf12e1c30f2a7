/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package egs

import (
	"context"
	"net/http"
	"net/url"
)

const (
	gprTemplateBindingPath     = "/api/v1/gpr-template-binding"
	gprTemplateBindingListPath = "/api/v1/gpr-template-binding/list"
)

type GprTemplateBindingCluster struct {
	ClusterName         string   `json:"clusterName"`
	DefaultTemplateName string   `json:"defaultTemplateName"`
	Templates           []string `json:"templates"`
}

// GprTemplateBindingRequest binds templates to the clusters of a workspace.
// With EnableAutoGPR the server creates GPU requests from the default
// template on demand.
type GprTemplateBindingRequest struct {
	WorkspaceName string                      `json:"workspaceName"`
	Clusters      []GprTemplateBindingCluster `json:"clusters"`
	EnableAutoGPR bool                        `json:"enableAutoGPR"`
}

type GprTemplateBindingClusterStatus struct {
	ClusterName           string            `json:"clusterName"`
	DefaultTemplateName   string            `json:"defaultTemplateName"`
	Templates             []string          `json:"templates"`
	DefaultTemplateStatus string            `json:"defaultTemplateStatus"`
	TemplateStatus        map[string]string `json:"templateStatus"`
}

type GprTemplateBinding struct {
	Name          string                            `json:"name"`
	Namespace     string                            `json:"namespace,omitempty"`
	Clusters      []GprTemplateBindingClusterStatus `json:"clusters"`
	EnableAutoGPR bool                              `json:"enableAutoGPR"`
}

type ListGprTemplateBindingsResponse struct {
	TemplateBindings []GprTemplateBinding `json:"templateBindings"`
}

type gprTemplateBindingNameData struct {
	GprTemplateBindingName string `json:"gprTemplateBindingName"`
}

func CreateGprTemplateBinding(ctx context.Context, request GprTemplateBindingRequest, session *Session) (GprTemplateBinding, error) {
	return call[GprTemplateBinding](ctx, session, http.MethodPost, gprTemplateBindingPath, request, nil)
}

func UpdateGprTemplateBinding(ctx context.Context, request GprTemplateBindingRequest, session *Session) (GprTemplateBinding, error) {
	return call[GprTemplateBinding](ctx, session, http.MethodPut, gprTemplateBindingPath, request, nil)
}

func GetGprTemplateBinding(ctx context.Context, name string, session *Session) (GprTemplateBinding, error) {
	return call[GprTemplateBinding](ctx, session, http.MethodGet, withQuery(gprTemplateBindingPath, url.Values{
		"gprTemplateBindingName": {name},
	}), nil, nil)
}

func ListGprTemplateBindings(ctx context.Context, session *Session) (ListGprTemplateBindingsResponse, error) {
	return call[ListGprTemplateBindingsResponse](ctx, session, http.MethodGet, gprTemplateBindingListPath, nil, nil)
}

func DeleteGprTemplateBinding(ctx context.Context, name string, session *Session) error {
	return exec(ctx, session, http.MethodDelete, gprTemplateBindingPath, gprTemplateBindingNameData{
		GprTemplateBindingName: name,
	}, nil)
}
