/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package egs

import (
	"context"
	"net/http"
	"slices"

	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
	"github.com/Juice-Labs/egs-sdk-go/pkg/logger"
)

const (
	workspacePath           = "/api/v1/slice-workspace"
	workspaceListPath       = "/api/v1/slice-workspace/list"
	workspaceKubeConfigPath = "/api/v1/slice-workspace/kube-config"
)

type CreateWorkspaceRequest struct {
	WorkspaceName string   `json:"workspaceName"`
	Clusters      []string `json:"clusters"`
	Namespaces    []string `json:"namespaces"`
	Username      string   `json:"username"`
	Email         string   `json:"email"`
}

type UpdateWorkspaceRequest struct {
	WorkspaceName string   `json:"workspaceName"`
	Clusters      []string `json:"clusters"`
	Namespaces    []string `json:"namespaces"`
}

type workspaceNameData struct {
	WorkspaceName string `json:"workspaceName"`
}

type generateKubeConfigRequest struct {
	WorkspaceName string `json:"workspaceName"`
	ClusterName   string `json:"clusterName,omitempty"`
}

type generateKubeConfigResponse struct {
	KubeConfig string `json:"kubeConfig"`
}

type WorkspaceNamespace struct {
	Namespace string   `json:"namespace"`
	Clusters  []string `json:"clusters"`
}

type Workspace struct {
	Name                         string               `json:"name"`
	OverlayNetworkDeploymentMode string               `json:"overlayNetworkDeploymentMode"`
	MaxClusters                  int                  `json:"maxClusters"`
	SliceDescription             string               `json:"sliceDescription"`
	Clusters                     []string             `json:"clusters"`
	Namespaces                   []WorkspaceNamespace `json:"namespaces"`
}

// NamespaceNames returns the namespace names in the form UpdateWorkspace
// takes them.
func (workspace Workspace) NamespaceNames() []string {
	names := make([]string, 0, len(workspace.Namespaces))
	for _, namespace := range workspace.Namespaces {
		names = append(names, namespace.Namespace)
	}

	return names
}

type ListWorkspacesResponse struct {
	Workspaces []Workspace `json:"workspaces"`
}

type DetachClusterResponse struct {
	WorkspaceName   string `json:"workspaceName"`
	DetachedCluster string `json:"detachedCluster"`
}

// AttachClusterResponse reports Attached false when the cluster already
// belonged to the workspace and nothing was sent.
type AttachClusterResponse struct {
	WorkspaceName   string `json:"workspaceName"`
	AttachedCluster string `json:"attachedCluster"`
	Attached        bool   `json:"attached"`
}

type AddNamespaceResponse struct {
	WorkspaceName  string `json:"workspaceName"`
	AddedNamespace string `json:"addedNamespace"`
	Added          bool   `json:"added"`
}

// CreateWorkspace returns the name of the created workspace.
func CreateWorkspace(ctx context.Context, request CreateWorkspaceRequest, session *Session) (string, error) {
	data, err := call[workspaceNameData](ctx, session, http.MethodPost, workspacePath, request, errorTable{
		http.StatusConflict:            errors.ErrWorkspaceAlreadyExists,
		http.StatusUnprocessableEntity: errors.ErrBadParameters,
	})

	return data.WorkspaceName, err
}

// UpdateWorkspace replaces the clusters and namespaces of a workspace.
func UpdateWorkspace(ctx context.Context, request UpdateWorkspaceRequest, session *Session) (string, error) {
	data, err := call[workspaceNameData](ctx, session, http.MethodPut, workspacePath, request, errorTable{
		http.StatusNotFound:            errors.ErrResourceNotFound,
		http.StatusUnprocessableEntity: errors.ErrBadParameters,
	})

	return data.WorkspaceName, err
}

func DeleteWorkspace(ctx context.Context, workspaceName string, session *Session) error {
	return exec(ctx, session, http.MethodDelete, workspacePath, workspaceNameData{
		WorkspaceName: workspaceName,
	}, nil)
}

func ListWorkspaces(ctx context.Context, session *Session) (ListWorkspacesResponse, error) {
	return call[ListWorkspacesResponse](ctx, session, http.MethodGet, workspaceListPath, nil, nil)
}

// FindWorkspace returns nil when no workspace has the given name.
func FindWorkspace(ctx context.Context, workspaceName string, session *Session) (*Workspace, error) {
	list, err := ListWorkspaces(ctx, session)
	if err != nil {
		return nil, err
	}

	for index := range list.Workspaces {
		if list.Workspaces[index].Name == workspaceName {
			return &list.Workspaces[index], nil
		}
	}

	return nil, nil
}

// GetWorkspaceKubeConfig returns the kubeconfig that grants access to the
// workspace. An empty clusterName lets the server choose the cluster.
func GetWorkspaceKubeConfig(ctx context.Context, workspaceName string, clusterName string, session *Session) (string, error) {
	data, err := call[generateKubeConfigResponse](ctx, session, http.MethodPost, workspaceKubeConfigPath, generateKubeConfigRequest{
		WorkspaceName: workspaceName,
		ClusterName:   clusterName,
	}, nil)

	return data.KubeConfig, err
}

func workspaceNotFound(workspaceName string) error {
	return &errors.ResponseError{
		Kind:         errors.ErrResourceNotFound,
		StatusCode:   http.StatusNotFound,
		ResourceType: "Workspace",
		ResourceId:   workspaceName,
	}
}

// findExistingWorkspace is FindWorkspace with a missing workspace reported
// as ErrResourceNotFound.
func findExistingWorkspace(ctx context.Context, workspaceName string, session *Session) (*Workspace, error) {
	workspace, err := FindWorkspace(ctx, workspaceName, session)
	if err != nil {
		return nil, err
	}

	if workspace == nil {
		return nil, workspaceNotFound(workspaceName)
	}

	return workspace, nil
}

// AttachClusterToWorkspace adds a cluster to a workspace, keeping its
// namespaces.
func AttachClusterToWorkspace(ctx context.Context, workspaceName string, clusterName string, session *Session) (AttachClusterResponse, error) {
	if clusterName == "" {
		return AttachClusterResponse{}, errors.ErrInvalidArgument.Wrapf("a cluster name is required")
	}

	workspace, err := findExistingWorkspace(ctx, workspaceName, session)
	if err != nil {
		return AttachClusterResponse{}, err
	}

	response := AttachClusterResponse{
		WorkspaceName:   workspaceName,
		AttachedCluster: clusterName,
	}

	if slices.Contains(workspace.Clusters, clusterName) {
		logger.Infof("cluster %s is already attached to workspace %s", clusterName, workspaceName)
		return response, nil
	}

	name, err := UpdateWorkspace(ctx, UpdateWorkspaceRequest{
		WorkspaceName: workspaceName,
		Clusters:      append(slices.Clone(workspace.Clusters), clusterName),
		Namespaces:    workspace.NamespaceNames(),
	}, session)
	if err != nil {
		return AttachClusterResponse{}, err
	}

	if name != "" {
		response.WorkspaceName = name
	}
	response.Attached = true

	return response, nil
}

// AddNamespaceToWorkspace adds a namespace to a workspace, keeping its
// clusters.
func AddNamespaceToWorkspace(ctx context.Context, workspaceName string, namespace string, session *Session) (AddNamespaceResponse, error) {
	if namespace == "" {
		return AddNamespaceResponse{}, errors.ErrInvalidArgument.Wrapf("a namespace is required")
	}

	workspace, err := findExistingWorkspace(ctx, workspaceName, session)
	if err != nil {
		return AddNamespaceResponse{}, err
	}

	response := AddNamespaceResponse{
		WorkspaceName:  workspaceName,
		AddedNamespace: namespace,
	}

	namespaces := workspace.NamespaceNames()
	if slices.Contains(namespaces, namespace) {
		logger.Infof("namespace %s already exists in workspace %s", namespace, workspaceName)
		return response, nil
	}

	name, err := UpdateWorkspace(ctx, UpdateWorkspaceRequest{
		WorkspaceName: workspaceName,
		Clusters:      workspace.Clusters,
		Namespaces:    append(namespaces, namespace),
	}, session)
	if err != nil {
		return AddNamespaceResponse{}, err
	}

	if name != "" {
		response.WorkspaceName = name
	}
	response.Added = true

	return response, nil
}

// DetachClusterFromWorkspace removes one cluster from a workspace, keeping
// its namespaces. The last cluster of a workspace cannot be detached.
func DetachClusterFromWorkspace(ctx context.Context, workspaceName string, clusterName string, session *Session) (DetachClusterResponse, error) {
	workspace, err := findExistingWorkspace(ctx, workspaceName, session)
	if err != nil {
		return DetachClusterResponse{}, err
	}

	index := slices.Index(workspace.Clusters, clusterName)
	if index == -1 {
		return DetachClusterResponse{}, &errors.ResponseError{
			Kind:         errors.ErrResourceNotFound,
			StatusCode:   http.StatusNotFound,
			Message:      "cluster is not attached to workspace " + workspaceName,
			ResourceType: "Cluster",
			ResourceId:   clusterName,
		}
	}

	if len(workspace.Clusters) == 1 {
		return DetachClusterResponse{}, errors.ErrInvalidArgument.Wrapf("cannot detach %s, the last cluster of workspace %s", clusterName, workspaceName)
	}

	name, err := UpdateWorkspace(ctx, UpdateWorkspaceRequest{
		WorkspaceName: workspaceName,
		Clusters:      slices.Delete(slices.Clone(workspace.Clusters), index, index+1),
		Namespaces:    workspace.NamespaceNames(),
	}, session)
	if err != nil {
		return DetachClusterResponse{}, err
	}

	if name == "" {
		name = workspaceName
	}

	return DetachClusterResponse{
		WorkspaceName:   name,
		DetachedCluster: clusterName,
	}, nil
}
