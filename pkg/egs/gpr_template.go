/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package egs

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
)

const (
	gprTemplatePath     = "/api/v1/gpr-template"
	gprTemplateListPath = "/api/v1/gpr-template/list"
)

// GprTemplate is a reusable GPU request description. IdleTimeOutDuration is
// only sent when EnforceIdleTimeOut is set.
type GprTemplate struct {
	Name                string `json:"name"`
	Namespace           string `json:"namespace,omitempty"`
	ClusterName         string `json:"clusterName"`
	GpusPerNode         int    `json:"numberOfGPUs"`
	NodeCount           int    `json:"numberOfGPUNodes"`
	MemoryPerGpu        int    `json:"memoryPerGpu"`
	GpuShape            string `json:"gpuShape"`
	GpuSharingMode      string `json:"gpuSharingMode,omitempty"`
	InstanceType        string `json:"instanceType"`
	ExitDuration        string `json:"exitDuration"`
	Priority            int    `json:"priority"`
	EnforceIdleTimeOut  bool   `json:"enforceIdleTimeOut"`
	IdleTimeOutDuration string `json:"idleTimeOutDuration,omitempty"`
	EnableEviction      bool   `json:"enableEviction"`
	RequeueOnFailure    bool   `json:"requeueOnFailure"`
}

func (template GprTemplate) wire() GprTemplate {
	if !template.EnforceIdleTimeOut {
		template.IdleTimeOutDuration = ""
	}

	return template
}

type ListGprTemplatesResponse struct {
	Items []GprTemplate `json:"items"`
}

type gprTemplateNameData struct {
	GprTemplateName string `json:"gprTemplateName"`
}

// CreateGprTemplate returns the name of the created template.
func CreateGprTemplate(ctx context.Context, template GprTemplate, session *Session) (string, error) {
	if template.EnforceIdleTimeOut && template.IdleTimeOutDuration == "" {
		return "", errors.ErrInvalidArgument.Wrapf("an idle timeout duration is required when the idle timeout is enforced")
	}

	data, err := call[gprTemplateNameData](ctx, session, http.MethodPost, gprTemplatePath, template.wire(), nil)
	return data.GprTemplateName, err
}

func GetGprTemplate(ctx context.Context, name string, session *Session) (GprTemplate, error) {
	return call[GprTemplate](ctx, session, http.MethodGet, withQuery(gprTemplatePath, url.Values{
		"gprTemplateName": {name},
	}), nil, nil)
}

func ListGprTemplates(ctx context.Context, session *Session) (ListGprTemplatesResponse, error) {
	return call[ListGprTemplatesResponse](ctx, session, http.MethodGet, gprTemplateListPath, nil, nil)
}

func UpdateGprTemplate(ctx context.Context, template GprTemplate, session *Session) error {
	return exec(ctx, session, http.MethodPut, gprTemplatePath, template.wire(), nil)
}

func DeleteGprTemplate(ctx context.Context, name string, session *Session) error {
	return exec(ctx, session, http.MethodDelete, gprTemplatePath, gprTemplateNameData{
		GprTemplateName: name,
	}, nil)
}
