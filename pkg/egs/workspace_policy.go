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

const (
	workspacePoliciesPath = "/api/v1/workspace-policies"
	workspacePolicyRoute  = workspacePoliciesPath + "/{name}"

	workspacePolicyResource = "Workspace Policy"
)

type GlobalGpuConstraints struct {
	GpuShapes       []string `json:"gpuShapes"`
	MaxGpuPerGpr    int      `json:"maxGPUPerGpr"`
	MaxMemoryPerGpr int      `json:"maxMemoryPerGpr"`
}

// WorkspacePolicy limits what GPU requests a workspace may make. The server
// spells the priority range key "PriorityRange"; decoding is case
// insensitive so the lower case tag reads it too.
type WorkspacePolicy struct {
	WorkspaceName         string                `json:"workspaceName"`
	PriorityRange         string                `json:"priorityRange"`
	MaxGPRs               int                   `json:"maxGPRs"`
	MaxExitDurationPerGPR string                `json:"maxExitDurationPerGPR"`
	EnforceIdleTimeOut    bool                  `json:"enforceIdleTimeOut"`
	RequeueOnFailure      bool                  `json:"requeueOnFailure"`
	EnableAutoEviction    bool                  `json:"enableAutoEviction"`
	GlobalGpuConstraints  *GlobalGpuConstraints `json:"globalGPUConstraints"`
}

// UpdateWorkspacePolicyRequest only sends the fields that are set.
type UpdateWorkspacePolicyRequest struct {
	PriorityRange         *string  `json:"priorityRange,omitempty"`
	MaxGPRs               *int     `json:"maxGPRs,omitempty"`
	MaxExitDurationPerGPR *string  `json:"maxExitDurationPerGPR,omitempty"`
	EnforceIdleTimeOut    *bool    `json:"enforceIdleTimeOut,omitempty"`
	RequeueOnFailure      *bool    `json:"requeueOnFailure,omitempty"`
	EnableAutoEviction    *bool    `json:"enableAutoEviction,omitempty"`
	GpuShapes             []string `json:"gpuShapes,omitempty"`
	MaxGpuPerGpr          *int     `json:"maxGpuPerGpr,omitempty"`
	MaxMemoryPerGpr       *int     `json:"maxMemoryPerGpr,omitempty"`
}

type ListWorkspacePoliciesResponse struct {
	Items []WorkspacePolicy `json:"items"`
}

type workspacePolicyData struct {
	Item WorkspacePolicy `json:"item"`
}

func workspacePolicyPath(name string) string {
	return workspacePoliciesPath + "/" + url.PathEscape(name)
}

func ListWorkspacePolicies(ctx context.Context, session *Session) (ListWorkspacePoliciesResponse, error) {
	return call[ListWorkspacePoliciesResponse](ctx, session, http.MethodGet, workspacePoliciesPath, nil, nil)
}

func workspacePolicyCall(ctx context.Context, session *Session, method string, name string, request any, table errorTable) (WorkspacePolicy, error) {
	response, err := invoke(restapi.WithRoute(ctx, workspacePolicyRoute), session, method, workspacePolicyPath(name), request)
	if err != nil {
		return WorkspacePolicy{}, err
	}

	if err := checkStatusFor(response, table, resource{Type: workspacePolicyResource, Id: name}); err != nil {
		return WorkspacePolicy{}, err
	}

	data := workspacePolicyData{}
	if err := response.DecodeData(&data); err != nil {
		return WorkspacePolicy{}, err
	}

	return data.Item, nil
}

func GetWorkspacePolicy(ctx context.Context, name string, session *Session) (WorkspacePolicy, error) {
	return workspacePolicyCall(ctx, session, http.MethodGet, name, nil, errorTable{
		http.StatusNotFound: errors.ErrResourceNotFound,
	})
}

func UpdateWorkspacePolicy(ctx context.Context, name string, request UpdateWorkspacePolicyRequest, session *Session) (WorkspacePolicy, error) {
	return workspacePolicyCall(ctx, session, http.MethodPut, name, request, errorTable{
		http.StatusNotFound:   errors.ErrResourceNotFound,
		http.StatusBadRequest: errors.ErrBadParameters,
	})
}
