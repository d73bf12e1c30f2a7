/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/Juice-Labs/egs-sdk-go/pkg/appmain"
	"github.com/Juice-Labs/egs-sdk-go/pkg/config"
	"github.com/Juice-Labs/egs-sdk-go/pkg/egs"
	"github.com/Juice-Labs/egs-sdk-go/pkg/egstest"
	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
)

const kubeConfig = `apiVersion: v1
kind: Config
clusters:
- name: worker-1
  cluster:
    server: https://10.0.0.1:6443
contexts:
- name: team-a
  context:
    cluster: worker-1
    user: team-a
    namespace: ns-1
current-context: team-a
users:
- name: team-a
  user:
    token: abc
`

func run(t *testing.T, server *egstest.Server, args ...string) (string, error) {
	t.Helper()

	t.Setenv(config.EnvEndpoint, server.URL())
	t.Setenv(config.EnvAccessToken, "t1")
	for _, name := range []string{config.EnvApiKey, config.EnvTimeout, config.EnvRetries, config.EnvTokenCache} {
		t.Setenv(name, "")
	}

	var stdout bytes.Buffer
	err := Run(context.Background(), Options{
		EnvFile: filepath.Join(t.TempDir(), "missing.env"),
		Stdout:  &stdout,
	}, args)

	return stdout.String(), err
}

func decode[T any](t *testing.T, output string) T {
	t.Helper()

	var value T
	require.NoError(t, json.Unmarshal([]byte(output), &value), output)
	return value
}

func TestUsageErrors(t *testing.T) {
	tests := [][]string{
		{},
		{"workspace"},
		{"pods", "list"},
		{"workspace", "rename"},
		{"workspace", "delete"},
		{"gpr", "status", "-unknown"},
		{"gpr", "wait"},
		{"gpr", "request", "-name", "train", "-workspace", "team-a"},
	}

	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			server := egstest.NewServer(t)

			_, err := run(t, server, args...)
			assert.Equal(t, appmain.ExitUsage, appmain.ExitCode(err), "got %v", err)
			assert.Empty(t, server.Requests())
		})
	}
}

func TestMissingSettings(t *testing.T) {
	server := egstest.NewServer(t)
	t.Setenv(config.EnvEndpoint, server.URL())
	t.Setenv(config.EnvAccessToken, "")
	t.Setenv(config.EnvApiKey, "")

	err := Run(context.Background(), Options{EnvFile: filepath.Join(t.TempDir(), "missing.env")}, []string{"workspace", "list"})
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument), "got %v", err)
}

func TestEnvFileSettings(t *testing.T) {
	server := egstest.NewServer(t)
	server.Handle(http.MethodGet, "/api/v1/slice-workspace/list", http.StatusOK, egstest.Ok(egs.ListWorkspacesResponse{}))

	for _, name := range []string{config.EnvEndpoint, config.EnvApiKey, config.EnvAccessToken, config.EnvTimeout, config.EnvRetries, config.EnvTokenCache} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("EGS_ENDPOINT="+server.URL()+"\nEGS_ACCESS_TOKEN=t2\n"), 0o600))

	var stdout bytes.Buffer
	require.NoError(t, Run(context.Background(), Options{EnvFile: envFile, Stdout: &stdout}, []string{"workspace", "list"}))
	assert.Equal(t, "t2", server.LastRequestTo(http.MethodGet, "/api/v1/slice-workspace/list").BearerToken())
}

func TestWorkspaceList(t *testing.T) {
	server := egstest.NewServer(t)
	server.Handle(http.MethodGet, "/api/v1/slice-workspace/list", http.StatusOK, egstest.Ok(egs.ListWorkspacesResponse{
		Workspaces: []egs.Workspace{{Name: "team-a", Clusters: []string{"worker-1"}}},
	}))

	output, err := run(t, server, "workspace", "list")
	require.NoError(t, err)

	list := decode[egs.ListWorkspacesResponse](t, output)
	require.Len(t, list.Workspaces, 1)
	assert.Equal(t, "team-a", list.Workspaces[0].Name)
	assert.Contains(t, output, "\n  \"workspaces\"")
	assert.Equal(t, "t1", server.LastRequestTo(http.MethodGet, "/api/v1/slice-workspace/list").BearerToken())
}

func TestWorkspaceCreate(t *testing.T) {
	server := egstest.NewServer(t)
	server.Handle(http.MethodPost, "/api/v1/slice-workspace", http.StatusOK, egstest.Ok(map[string]any{"workspaceName": "team-a"}))

	output, err := run(t, server, "workspace", "create",
		"-name", "team-a", "-clusters", "worker-1,worker-2", "-namespaces", "ns-1",
		"-username", "admin", "-email", "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"workspaceName": "team-a"}, decode[map[string]string](t, output))

	var sent egs.CreateWorkspaceRequest
	require.NoError(t, server.LastRequestTo(http.MethodPost, "/api/v1/slice-workspace").Decode(&sent))
	assert.Equal(t, []string{"worker-1", "worker-2"}, sent.Clusters)
	assert.Equal(t, []string{"ns-1"}, sent.Namespaces)
}

func TestWorkspaceCreateConflict(t *testing.T) {
	server := egstest.NewServer(t)
	server.Handle(http.MethodPost, "/api/v1/slice-workspace", http.StatusConflict, egstest.Fail(http.StatusConflict, "exists"))

	_, err := run(t, server, "workspace", "create",
		"-name", "team-a", "-clusters", "worker-1", "-namespaces", "ns-1",
		"-username", "admin", "-email", "admin@example.com")
	assert.True(t, errors.Is(err, errors.ErrWorkspaceAlreadyExists))
	assert.Equal(t, appmain.ExitFailure, appmain.ExitCode(err))
}

func workspaceListServer(t *testing.T) *egstest.Server {
	server := egstest.NewServer(t)
	server.Handle(http.MethodGet, "/api/v1/slice-workspace/list", http.StatusOK, egstest.Ok(egs.ListWorkspacesResponse{
		Workspaces: []egs.Workspace{{
			Name:       "team-a",
			Clusters:   []string{"worker-1"},
			Namespaces: []egs.WorkspaceNamespace{{Namespace: "ns-1", Clusters: []string{"worker-1"}}},
		}},
	}))
	server.Handle(http.MethodPut, "/api/v1/slice-workspace", http.StatusOK, egstest.Ok(map[string]any{"workspaceName": "team-a"}))

	return server
}

func TestWorkspaceAttach(t *testing.T) {
	server := workspaceListServer(t)

	output, err := run(t, server, "workspace", "attach", "-name", "team-a", "-cluster", "worker-2")
	require.NoError(t, err)
	assert.Equal(t, egs.AttachClusterResponse{WorkspaceName: "team-a", AttachedCluster: "worker-2", Attached: true},
		decode[egs.AttachClusterResponse](t, output))

	var sent egs.UpdateWorkspaceRequest
	require.NoError(t, server.LastRequestTo(http.MethodPut, "/api/v1/slice-workspace").Decode(&sent))
	assert.Equal(t, []string{"worker-1", "worker-2"}, sent.Clusters)

	_, err = run(t, server, "workspace", "attach", "-name", "team-a")
	assert.Equal(t, appmain.ExitUsage, appmain.ExitCode(err))
}

func TestWorkspaceAddNamespace(t *testing.T) {
	server := workspaceListServer(t)

	output, err := run(t, server, "workspace", "add-namespace", "-name", "team-a", "-namespace", "ns-2")
	require.NoError(t, err)
	assert.True(t, decode[egs.AddNamespaceResponse](t, output).Added)

	var sent egs.UpdateWorkspaceRequest
	require.NoError(t, server.LastRequestTo(http.MethodPut, "/api/v1/slice-workspace").Decode(&sent))
	assert.Equal(t, []string{"ns-1", "ns-2"}, sent.Namespaces)
	assert.Equal(t, []string{"worker-1"}, sent.Clusters)
}

func TestWorkspaceKubeConfig(t *testing.T) {
	server := egstest.NewServer(t)
	server.Handle(http.MethodPost, "/api/v1/slice-workspace/kube-config", http.StatusOK, egstest.Ok(map[string]any{"kubeConfig": kubeConfig}))

	output, err := run(t, server, "workspace", "kubeconfig", "-name", "team-a")
	require.NoError(t, err)
	assert.Equal(t, kubeConfig, output)

	out := filepath.Join(t.TempDir(), "kubeconfig")
	output, err = run(t, server, "workspace", "kubeconfig", "-name", "team-a", "-cluster", "worker-1", "-out", out)
	require.NoError(t, err)
	assert.Equal(t, "team-a", decode[map[string]string](t, output)["currentContext"])

	written, err := clientcmd.LoadFromFile(out)
	require.NoError(t, err)
	assert.Equal(t, "team-a", written.CurrentContext)
	assert.Equal(t, "https://10.0.0.1:6443", written.Clusters["worker-1"].Server)
}

func TestWorkspaceKubeConfigInvalid(t *testing.T) {
	server := egstest.NewServer(t)
	server.Handle(http.MethodPost, "/api/v1/slice-workspace/kube-config", http.StatusOK, egstest.Ok(map[string]any{"kubeConfig": "current-context: nowhere\n"}))

	_, err := run(t, server, "workspace", "kubeconfig", "-name", "team-a")
	assert.True(t, errors.Is(err, errors.ErrMalformedResponse), "got %v", err)
}

func TestWorkspaceApply(t *testing.T) {
	server := egstest.NewServer(t)
	server.Handle(http.MethodGet, "/api/v1/slice-workspace/list", http.StatusOK, egstest.Ok(egs.ListWorkspacesResponse{
		Workspaces: []egs.Workspace{{Name: "team-a"}},
	}))
	server.Handle(http.MethodPost, "/api/v1/slice-workspace", http.StatusOK, egstest.Ok(map[string]any{"workspaceName": "team-b"}))
	server.Handle(http.MethodPost, "/api/v1/api-key", http.StatusOK, egstest.Ok(map[string]any{"apiKey": "key-b"}))

	manifest := filepath.Join(t.TempDir(), "workspaces.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(`projectname: avesha
workspaces:
- name: team-a
  clusters: [worker-1]
  namespaces: [ns-a]
  username: alice
  email: alice@example.com
- name: team-b
  clusters: [worker-1]
  namespaces: [ns-b]
  username: bob
  email: bob@example.com
  apiKeyValidity: 90d
`), 0o600))

	output, err := run(t, server, "workspace", "apply", "-f", manifest)
	require.NoError(t, err)

	results := decode[[]applyResult](t, output)
	assert.Equal(t, []applyResult{
		{WorkspaceName: "team-a", ProjectNamespace: "kubeslice-avesha"},
		{WorkspaceName: "team-b", ProjectNamespace: "kubeslice-avesha", Created: true, ApiKey: "key-b"},
	}, results)

	creates := server.RequestsTo(http.MethodPost, "/api/v1/slice-workspace")
	require.Len(t, creates, 1)
	assert.Equal(t, "team-b", creates[0].JSON()["workspaceName"])

	key := server.LastRequestTo(http.MethodPost, "/api/v1/api-key").JSON()
	assert.Equal(t, egs.RoleEditor, key["role"])
	assert.Equal(t, "team-b", key["workspaceName"])
	assert.Equal(t, "90d", key["validity"])
}

func TestApiKeyCreateNeedsWorkspace(t *testing.T) {
	server := egstest.NewServer(t)

	_, err := run(t, server, "apikey", "create", "-name", "ci", "-username", "admin", "-role", egs.RoleViewer)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument), "got %v", err)
	assert.Empty(t, server.Requests())
}

func TestPolicyGet(t *testing.T) {
	server := egstest.NewServer(t)
	server.Handle(http.MethodGet, "/api/v1/workspace-policies/team-a", http.StatusOK, egstest.Ok(map[string]any{
		"item": egs.WorkspacePolicy{WorkspaceName: "team-a", MaxGPRs: 3},
	}))

	output, err := run(t, server, "policy", "get", "-name", "team-a")
	require.NoError(t, err)
	assert.Equal(t, 3, decode[egs.WorkspacePolicy](t, output).MaxGPRs)
}

func TestEndpointDelete(t *testing.T) {
	server := egstest.NewServer(t)
	server.Handle(http.MethodDelete, "/api/v1/inference-endpoint", http.StatusOK, egstest.Ok(nil))

	_, err := run(t, server, "endpoint", "delete", "-workspace", "team-a", "-name", "iris", "-cluster", "worker-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"endpoint": "iris", "workspace": "team-a", "cluster": "worker-1"},
		server.LastRequestTo(http.MethodDelete, "/api/v1/inference-endpoint").JSON())
}

func TestPrintUsageListsEveryVerb(t *testing.T) {
	var buffer bytes.Buffer
	PrintUsage(&buffer)

	for resource, verbs := range commands {
		for verb := range verbs {
			assert.Regexp(t, resource+` +`+verb+` `, buffer.String())
		}
	}
}
