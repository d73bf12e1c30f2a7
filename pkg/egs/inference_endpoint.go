/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package egs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

const (
	inferenceEndpointPath     = "/api/v1/inference-endpoint"
	inferenceEndpointListPath = "/api/v1/inference-endpoint/list"
)

type Resources struct {
	Cpu    string `json:"cpu"`
	Memory string `json:"memory"`
}

type ModelSpec struct {
	ModelName  string            `json:"modelName"`
	StorageURI string            `json:"storageURI"`
	Args       []string          `json:"args"`
	Secret     map[string]string `json:"secret"`
	Resources  Resources         `json:"resources"`
}

type GpuSpec struct {
	GpuShape     string `json:"gpuShape"`
	InstanceType string `json:"instanceType"`
	MemoryPerGpu int    `json:"memoryPerGPU"`
	NodeCount    int    `json:"numberOfGPUNodes"`
	GpusPerNode  int    `json:"numberOfGPUs"`
	ExitDuration string `json:"exitDuration"`
	Priority     int    `json:"priority"`
}

type Autoscaling struct {
	MinReplicas int    `json:"minReplicas"`
	MaxReplicas int    `json:"maxReplicas"`
	ScaleTarget int    `json:"scaleTarget,omitempty"`
	ScaleMetric string `json:"scaleMetric,omitempty"`
}

type CreateInferenceEndpointRequest struct {
	EndpointName      string       `json:"endpointName"`
	Workspace         string       `json:"workspace"`
	ClusterName       string       `json:"clusterName"`
	ClusterPrecedence []string     `json:"clusterPrecedence,omitempty"`
	Burst             bool         `json:"burst"`
	Autoscaling       *Autoscaling `json:"autoscaling,omitempty"`
	ModelSpec         *ModelSpec   `json:"modelSpec,omitempty"`
	RawModelSpec      string       `json:"rawModelSpec,omitempty"`
	GpuSpec           GpuSpec      `json:"gpuSpec"`
}

type endpointNameData struct {
	EndpointName string `json:"endpointName"`
}

type deleteInferenceEndpointRequest struct {
	Endpoint  string `json:"endpoint"`
	Workspace string `json:"workspace"`
	Cluster   string `json:"cluster"`
}

type InferenceGpuRequest struct {
	GprName      string      `json:"gprName"`
	GprId        string      `json:"gprId"`
	InstanceType string      `json:"instanceType"`
	GpuShape     string      `json:"gpuShape"`
	GpusPerNode  int         `json:"numberOfGPUs"`
	NodeCount    int         `json:"numberOfGPUNodes"`
	MemoryPerGpu json.Number `json:"memoryPerGPU"`
	Status       string      `json:"status"`
}

type DnsRecord struct {
	Dns   string `json:"dns"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

type InferenceEndpoint struct {
	EndpointName      string                `json:"endpointName"`
	ModelName         string                `json:"modelName"`
	Status            string                `json:"status"`
	Endpoint          string                `json:"endpoint"`
	ClusterName       string                `json:"clusterName"`
	Namespace         string                `json:"namespace"`
	PredictStatus     string                `json:"predictStatus"`
	IngressStatus     string                `json:"ingressStatus"`
	AutoScalingStatus string                `json:"autoScalingStatus"`
	TryCommand        []string              `json:"tryCommand"`
	DnsRecords        []DnsRecord           `json:"dnsRecords"`
	GpuRequests       []InferenceGpuRequest `json:"gpuRequests"`
}

type DescribeInferenceEndpointResponse struct {
	Endpoint InferenceEndpoint `json:"endpoint"`
}

type InferenceEndpointBrief struct {
	EndpointName string `json:"endpointName"`
	ModelName    string `json:"modelName"`
	Status       string `json:"status"`
	Endpoint     string `json:"endpoint"`
	ClusterName  string `json:"clusterName"`
	Namespace    string `json:"namespace"`
}

type ListInferenceEndpointResponse struct {
	Endpoints []InferenceEndpointBrief `json:"endpoints"`
}

// CreateInferenceEndpoint returns the name of the created endpoint.
func CreateInferenceEndpoint(ctx context.Context, request CreateInferenceEndpointRequest, session *Session) (string, error) {
	data, err := call[endpointNameData](ctx, session, http.MethodPost, inferenceEndpointPath, request, nil)
	return data.EndpointName, err
}

// CreateInferenceEndpointWithCustomModelSpec deploys rawModelSpec, a
// serving manifest, in place of a standard model spec.
func CreateInferenceEndpointWithCustomModelSpec(ctx context.Context, request CreateInferenceEndpointRequest, rawModelSpec string, session *Session) (string, error) {
	request.ModelSpec = nil
	request.RawModelSpec = rawModelSpec

	return CreateInferenceEndpoint(ctx, request, session)
}

func DescribeInferenceEndpoint(ctx context.Context, workspaceName string, endpointName string, clusterName string, session *Session) (DescribeInferenceEndpointResponse, error) {
	return call[DescribeInferenceEndpointResponse](ctx, session, http.MethodGet, withQuery(inferenceEndpointPath, url.Values{
		"workspace": {workspaceName},
		"endpoint":  {endpointName},
		"cluster":   {clusterName},
	}), nil, nil)
}

func ListInferenceEndpoints(ctx context.Context, workspaceName string, session *Session) (ListInferenceEndpointResponse, error) {
	return call[ListInferenceEndpointResponse](ctx, session, http.MethodGet, withQuery(inferenceEndpointListPath, url.Values{
		"workspace": {workspaceName},
	}), nil, nil)
}

func DeleteInferenceEndpoint(ctx context.Context, workspaceName string, endpointName string, clusterName string, session *Session) error {
	return exec(ctx, session, http.MethodDelete, inferenceEndpointPath, deleteInferenceEndpointRequest{
		Endpoint:  endpointName,
		Workspace: workspaceName,
		Cluster:   clusterName,
	}, nil)
}
