/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package egs

import (
	"encoding/json"
	"net/http"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Juice-Labs/egs-sdk-go/pkg/egstest"
	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
	"github.com/Juice-Labs/egs-sdk-go/pkg/restapi"
)

var statusesUnderTest = []int{
	http.StatusOK,
	http.StatusBadRequest,
	http.StatusUnauthorized,
	http.StatusForbidden,
	http.StatusNotFound,
	http.StatusConflict,
	http.StatusUnprocessableEntity,
	http.StatusInternalServerError,
	http.StatusTeapot,
}

func newTestSession(t *testing.T, server *egstest.Server) *Session {
	t.Helper()

	client, err := restapi.NewClient(server.URL(), restapi.Credentials{AccessToken: "t1"})
	require.NoError(t, err)

	return NewSession(client, false)
}

// expectStatusMapping drives fn against every status in statusesUnderTest,
// expecting the kinds in table and ErrUnhandled otherwise.
func expectStatusMapping(t *testing.T, method string, path string, data any, table errorTable, fn func(session *Session) error) {
	t.Helper()

	for _, status := range statusesUnderTest {
		t.Run(http.StatusText(status), func(t *testing.T) {
			server := egstest.NewServer(t)
			session := newTestSession(t, server)

			if status == http.StatusOK {
				server.Handle(method, path, status, egstest.Ok(data))
			} else {
				server.Handle(method, path, status, egstest.Fail(status, "failed"))
			}

			err := fn(session)

			switch {
			case status == http.StatusOK:
				assert.NoError(t, err)
			case status == http.StatusUnauthorized || status == http.StatusForbidden:
				assert.True(t, errors.Is(err, errors.ErrUnauthorized), "got %v", err)
			case table[status] != nil:
				assert.True(t, errors.Is(err, table[status]), "got %v", err)
				assert.False(t, errors.Is(err, errors.ErrUnhandled), "got %v", err)
			default:
				assert.True(t, errors.Is(err, errors.ErrUnhandled), "got %v", err)
			}

			if status != http.StatusOK {
				assert.Equal(t, status, errors.StatusCode(err))
			}
		})
	}
}

func jsonKeys(t *testing.T, v any) []string {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)

	fields := map[string]any{}
	require.NoError(t, json.Unmarshal(data, &fields))

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}

func sorted(keys ...string) []string {
	sort.Strings(keys)
	return keys
}

func TestRequestFieldNames(t *testing.T) {
	tests := []struct {
		name     string
		request  any
		expected []string
	}{
		{"CreateWorkspaceRequest", CreateWorkspaceRequest{}, sorted("workspaceName", "clusters", "namespaces", "username", "email")},
		{"UpdateWorkspaceRequest", UpdateWorkspaceRequest{}, sorted("workspaceName", "clusters", "namespaces")},
		{"generateKubeConfigRequest", generateKubeConfigRequest{ClusterName: "c"}, sorted("workspaceName", "clusterName")},
		{"CreateGprRequest", CreateGprRequest{}, sorted(
			"gprName", "sliceName", "clusterName", "numberOfGPUs", "numberOfGPUNodes", "memoryPerGPU",
			"instanceType", "gpuShape", "exitDuration", "priority", "enforceIdleTimeOut", "enableEviction",
			"requeueOnFailure", "enableAutoGpuSelection", "enableAutoClusterSelection")},
		{"CreateGprRequest optional", CreateGprRequest{IdleTimeOutDuration: "30m", PreferredClusters: []string{"c"}}, sorted(
			"gprName", "sliceName", "clusterName", "numberOfGPUs", "numberOfGPUNodes", "memoryPerGPU",
			"instanceType", "gpuShape", "exitDuration", "priority", "idleTimeOutDuration", "enforceIdleTimeOut",
			"enableEviction", "requeueOnFailure", "enableAutoGpuSelection", "enableAutoClusterSelection", "preferredClusters")},
		{"updateGprPriorityRequest", updateGprPriorityRequest{}, sorted("gprId", "priority")},
		{"updateGprNameRequest", updateGprNameRequest{}, sorted("gprId", "gprName")},
		{"releaseGprRequest", releaseGprRequest{}, sorted("gprId", "earlyRelease")},
		{"CreateInferenceEndpointRequest", CreateInferenceEndpointRequest{ModelSpec: &ModelSpec{}}, sorted(
			"endpointName", "workspace", "clusterName", "burst", "modelSpec", "gpuSpec")},
		{"ModelSpec", ModelSpec{}, sorted("modelName", "storageURI", "args", "secret", "resources")},
		{"GpuSpec", GpuSpec{}, sorted("gpuShape", "instanceType", "memoryPerGPU", "numberOfGPUNodes", "numberOfGPUs", "exitDuration", "priority")},
		{"deleteInferenceEndpointRequest", deleteInferenceEndpointRequest{}, sorted("endpoint", "workspace", "cluster")},
		{"CreateApiKeyRequest", CreateApiKeyRequest{}, sorted("name", "userName", "description", "role", "validity")},
		{"CreateApiKeyRequest workspace", CreateApiKeyRequest{WorkspaceName: "w"}, sorted("name", "userName", "description", "role", "validity", "workspaceName")},
		{"GprTemplate", GprTemplate{}.wire(), sorted(
			"name", "clusterName", "numberOfGPUs", "numberOfGPUNodes", "memoryPerGpu", "gpuShape", "instanceType",
			"exitDuration", "priority", "enforceIdleTimeOut", "enableEviction", "requeueOnFailure")},
		{"GprTemplate idle timeout", GprTemplate{EnforceIdleTimeOut: true, IdleTimeOutDuration: "1h", GpuSharingMode: "Virtual"}.wire(), sorted(
			"name", "clusterName", "numberOfGPUs", "numberOfGPUNodes", "memoryPerGpu", "gpuShape", "gpuSharingMode", "instanceType",
			"exitDuration", "priority", "enforceIdleTimeOut", "idleTimeOutDuration", "enableEviction", "requeueOnFailure")},
		{"GprTemplateBindingRequest", GprTemplateBindingRequest{}, sorted("workspaceName", "clusters", "enableAutoGPR")},
		{"GprTemplateBindingCluster", GprTemplateBindingCluster{}, sorted("clusterName", "defaultTemplateName", "templates")},
		{"UpdateWorkspacePolicyRequest empty", UpdateWorkspacePolicyRequest{}, []string{}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, jsonKeys(t, test.request))
		})
	}
}

func TestGprTemplateDropsIdleTimeoutWhenNotEnforced(t *testing.T) {
	keys := jsonKeys(t, GprTemplate{IdleTimeOutDuration: "1h"}.wire())
	assert.NotContains(t, keys, "idleTimeOutDuration")
}

type statusTest struct {
	name   string
	method string
	path   string
	data   any
	table  errorTable
	fn     func(session *Session) error
}

func runStatusTests(t *testing.T, tests []statusTest) {
	t.Helper()

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			expectStatusMapping(t, test.method, test.path, test.data, test.table, test.fn)
		})
	}
}
