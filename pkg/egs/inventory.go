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
	inventoryPath     = "/api/v1/inventory"
	inventoryListPath = "/api/v1/inventory/list"
)

type InventoryItem struct {
	GpuNodeName       string `json:"gpuNodeName"`
	GpuShape          string `json:"gpuShape"`
	GpuModelName      string `json:"gpuModelName"`
	InstanceType      string `json:"instanceType"`
	ClusterName       string `json:"clusterName"`
	Memory            int    `json:"memory"`
	GpuCount          int    `json:"gpuCount"`
	GpuTempThreshold  string `json:"gpuTempThreshold"`
	GpuPowerThreshold string `json:"gpuPowerThreshold"`
	CloudProvider     string `json:"cloudProvider"`
	Region            string `json:"region"`
	NodeHealth        string `json:"nodeHealth"`
	GpuNodeStatus     string `json:"gpuNodeStatus"`
}

// ListInventoryResponse carries the flat Items list, and the managed and
// unmanaged split when the server reports it.
type ListInventoryResponse struct {
	ManagedNodes   []InventoryItem `json:"managedNodes,omitempty"`
	UnmanagedNodes []InventoryItem `json:"unmanagedNodes,omitempty"`
	Items          []InventoryItem `json:"items"`
}

type InventoryUsage struct {
	NodeName     []string `json:"nodeName"`
	InstanceType string   `json:"instanceType"`
	Memory       int      `json:"memory"`
	TotalGpus    int      `json:"totalGpus"`
	GpuShape     string   `json:"gpuShape"`
}

type ListWorkspaceInventoryUsageResponse struct {
	Items []InventoryUsage `json:"items"`
}

// Inventory lists the GPU nodes across all clusters.
func Inventory(ctx context.Context, session *Session) (ListInventoryResponse, error) {
	return call[ListInventoryResponse](ctx, session, http.MethodGet, inventoryListPath, nil, nil)
}

func WorkspaceInventory(ctx context.Context, workspaceName string, session *Session) (ListWorkspaceInventoryUsageResponse, error) {
	return call[ListWorkspaceInventoryUsageResponse](ctx, session, http.MethodGet, withQuery(inventoryPath, url.Values{
		"sliceName": {workspaceName},
	}), nil, nil)
}
