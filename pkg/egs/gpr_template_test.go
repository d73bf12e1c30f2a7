/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package egs

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Juice-Labs/egs-sdk-go/pkg/egstest"
	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
)

func TestCreateGprTemplate(t *testing.T) {
	server := egstest.NewServer(t)
	session := newTestSession(t, server)
	server.Handle(http.MethodPost, gprTemplatePath, http.StatusOK, egstest.Ok(map[string]any{"gprTemplateName": "small"}))

	name, err := CreateGprTemplate(context.Background(), GprTemplate{
		Name:                "small",
		ClusterName:         "worker-1",
		GpusPerNode:         1,
		NodeCount:           1,
		GpuShape:            "Tesla-T4",
		IdleTimeOutDuration: "30m",
	}, session)
	require.NoError(t, err)
	assert.Equal(t, "small", name)

	body := server.LastRequestTo(http.MethodPost, gprTemplatePath).JSON()
	assert.Equal(t, false, body["enforceIdleTimeOut"])
	assert.NotContains(t, body, "idleTimeOutDuration")
}

func TestCreateGprTemplateEnforcedIdleTimeout(t *testing.T) {
	server := egstest.NewServer(t)
	session := newTestSession(t, server)
	server.Handle(http.MethodPost, gprTemplatePath, http.StatusOK, egstest.Ok(map[string]any{"gprTemplateName": "small"}))

	_, err := CreateGprTemplate(context.Background(), GprTemplate{Name: "small", EnforceIdleTimeOut: true}, session)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
	assert.Empty(t, server.Requests())

	_, err = CreateGprTemplate(context.Background(), GprTemplate{Name: "small", EnforceIdleTimeOut: true, IdleTimeOutDuration: "30m"}, session)
	require.NoError(t, err)
	assert.Equal(t, "30m", server.LastRequestTo(http.MethodPost, gprTemplatePath).JSON()["idleTimeOutDuration"])
}

func TestGetListDeleteGprTemplate(t *testing.T) {
	server := egstest.NewServer(t)
	session := newTestSession(t, server)
	server.Handle(http.MethodGet, gprTemplatePath, http.StatusOK, egstest.Ok(GprTemplate{Name: "small", GpuShape: "Tesla-T4"}))
	server.Handle(http.MethodGet, gprTemplateListPath, http.StatusOK, egstest.Ok(ListGprTemplatesResponse{
		Items: []GprTemplate{{Name: "small"}, {Name: "large"}},
	}))
	server.Handle(http.MethodDelete, gprTemplatePath, http.StatusOK, egstest.Ok(nil))

	template, err := GetGprTemplate(context.Background(), "small", session)
	require.NoError(t, err)
	assert.Equal(t, "Tesla-T4", template.GpuShape)
	assert.Equal(t, "gprTemplateName=small", server.LastRequestTo(http.MethodGet, gprTemplatePath).RawQuery)

	list, err := ListGprTemplates(context.Background(), session)
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)

	require.NoError(t, DeleteGprTemplate(context.Background(), "small", session))
	assert.Equal(t, map[string]any{"gprTemplateName": "small"}, server.LastRequestTo(http.MethodDelete, gprTemplatePath).JSON())
}

func TestUpdateGprTemplateStatuses(t *testing.T) {
	expectStatusMapping(t, http.MethodPut, gprTemplatePath, map[string]any{}, nil, func(session *Session) error {
		return UpdateGprTemplate(context.Background(), GprTemplate{Name: "small"}, session)
	})
}

func TestGprTemplateBindings(t *testing.T) {
	server := egstest.NewServer(t)
	session := newTestSession(t, server)

	binding := GprTemplateBinding{
		Name: "team-a",
		Clusters: []GprTemplateBindingClusterStatus{{
			ClusterName:           "worker-1",
			DefaultTemplateName:   "small",
			Templates:             []string{"small", "large"},
			DefaultTemplateStatus: "Ready",
		}},
		EnableAutoGPR: true,
	}
	server.Handle(http.MethodPost, gprTemplateBindingPath, http.StatusOK, egstest.Ok(binding))
	server.Handle(http.MethodPut, gprTemplateBindingPath, http.StatusOK, egstest.Ok(binding))
	server.Handle(http.MethodGet, gprTemplateBindingPath, http.StatusOK, egstest.Ok(binding))
	server.Handle(http.MethodGet, gprTemplateBindingListPath, http.StatusOK, egstest.Ok(ListGprTemplateBindingsResponse{
		TemplateBindings: []GprTemplateBinding{binding},
	}))
	server.Handle(http.MethodDelete, gprTemplateBindingPath, http.StatusOK, egstest.Ok(nil))

	request := GprTemplateBindingRequest{
		WorkspaceName: "team-a",
		Clusters: []GprTemplateBindingCluster{{
			ClusterName:         "worker-1",
			DefaultTemplateName: "small",
			Templates:           []string{"small", "large"},
		}},
		EnableAutoGPR: true,
	}

	created, err := CreateGprTemplateBinding(context.Background(), request, session)
	require.NoError(t, err)
	assert.Equal(t, binding, created)

	var sent GprTemplateBindingRequest
	require.NoError(t, server.LastRequestTo(http.MethodPost, gprTemplateBindingPath).Decode(&sent))
	assert.Equal(t, request, sent)

	_, err = UpdateGprTemplateBinding(context.Background(), request, session)
	require.NoError(t, err)

	got, err := GetGprTemplateBinding(context.Background(), "team-a", session)
	require.NoError(t, err)
	assert.Equal(t, "Ready", got.Clusters[0].DefaultTemplateStatus)
	assert.Equal(t, "gprTemplateBindingName=team-a", server.LastRequestTo(http.MethodGet, gprTemplateBindingPath).RawQuery)

	list, err := ListGprTemplateBindings(context.Background(), session)
	require.NoError(t, err)
	assert.Len(t, list.TemplateBindings, 1)

	require.NoError(t, DeleteGprTemplateBinding(context.Background(), "team-a", session))
	assert.Equal(t, map[string]any{"gprTemplateBindingName": "team-a"}, server.LastRequestTo(http.MethodDelete, gprTemplateBindingPath).JSON())
}

func TestGprTemplateStatuses(t *testing.T) {
	ctx := context.Background()

	runStatusTests(t, []statusTest{
		{"create", http.MethodPost, gprTemplatePath, map[string]any{"gprTemplateName": "small"}, nil, func(session *Session) error {
			_, err := CreateGprTemplate(ctx, GprTemplate{Name: "small"}, session)
			return err
		}},
		{"get", http.MethodGet, gprTemplatePath, map[string]any{}, nil, func(session *Session) error {
			_, err := GetGprTemplate(ctx, "small", session)
			return err
		}},
		{"list", http.MethodGet, gprTemplateListPath, map[string]any{}, nil, func(session *Session) error {
			_, err := ListGprTemplates(ctx, session)
			return err
		}},
		{"delete", http.MethodDelete, gprTemplatePath, map[string]any{}, nil, func(session *Session) error {
			return DeleteGprTemplate(ctx, "small", session)
		}},
	})
}

func TestGprTemplateBindingStatuses(t *testing.T) {
	ctx := context.Background()
	request := GprTemplateBindingRequest{WorkspaceName: "team-a"}

	runStatusTests(t, []statusTest{
		{"create", http.MethodPost, gprTemplateBindingPath, map[string]any{}, nil, func(session *Session) error {
			_, err := CreateGprTemplateBinding(ctx, request, session)
			return err
		}},
		{"update", http.MethodPut, gprTemplateBindingPath, map[string]any{}, nil, func(session *Session) error {
			_, err := UpdateGprTemplateBinding(ctx, request, session)
			return err
		}},
		{"get", http.MethodGet, gprTemplateBindingPath, map[string]any{}, nil, func(session *Session) error {
			_, err := GetGprTemplateBinding(ctx, "team-a", session)
			return err
		}},
		{"list", http.MethodGet, gprTemplateBindingListPath, map[string]any{}, nil, func(session *Session) error {
			_, err := ListGprTemplateBindings(ctx, session)
			return err
		}},
		{"delete", http.MethodDelete, gprTemplateBindingPath, map[string]any{}, nil, func(session *Session) error {
			return DeleteGprTemplateBinding(ctx, "team-a", session)
		}},
	})
}
