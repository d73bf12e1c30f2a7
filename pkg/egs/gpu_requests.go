/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package egs

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
	"github.com/Juice-Labs/egs-sdk-go/pkg/logger"
)

const (
	gprPath     = "/api/v1/gpr"
	gprListPath = "/api/v1/gpr/list"
)

// Provisioning statuses reported by the server. The list is not closed;
// unknown values are passed through.
const (
	GprPending      = "Pending"
	GprQueued       = "Queued"
	GprProvisioning = "Provisioning"
	GprSuccessful   = "Successful"
	GprFailed       = "Failed"
	GprReleased     = "Released"
	GprComplete     = "Complete"
	GprCancelled    = "Cancelled"
)

var (
	ErrGpuRequestWaitTimeout = errors.New("egs: timed out waiting for GPU request")
)

// CreateGprRequest describes a GPU request. Auto selection is signalled by
// empty ClusterName, InstanceType and GpuShape plus the matching flag, so
// those fields are always sent.
type CreateGprRequest struct {
	GprName                    string   `json:"gprName"`
	WorkspaceName              string   `json:"sliceName"`
	ClusterName                string   `json:"clusterName"`
	GpusPerNode                int      `json:"numberOfGPUs"`
	NodeCount                  int      `json:"numberOfGPUNodes"`
	MemoryPerGpu               int      `json:"memoryPerGPU"`
	InstanceType               string   `json:"instanceType"`
	GpuShape                   string   `json:"gpuShape"`
	ExitDuration               string   `json:"exitDuration"`
	Priority                   int      `json:"priority"`
	IdleTimeOutDuration        string   `json:"idleTimeOutDuration,omitempty"`
	EnforceIdleTimeOut         bool     `json:"enforceIdleTimeOut"`
	EnableEviction             bool     `json:"enableEviction"`
	RequeueOnFailure           bool     `json:"requeueOnFailure"`
	EnableAutoGpuSelection     bool     `json:"enableAutoGpuSelection"`
	EnableAutoClusterSelection bool     `json:"enableAutoClusterSelection"`
	PreferredClusters          []string `json:"preferredClusters,omitempty"`
}

type gprIdData struct {
	GprId string `json:"gprId"`
}

type updateGprPriorityRequest struct {
	GprId    string `json:"gprId"`
	Priority int    `json:"priority"`
}

type updateGprNameRequest struct {
	GprId   string `json:"gprId"`
	GprName string `json:"gprName"`
}

type releaseGprRequest struct {
	GprId        string `json:"gprId"`
	EarlyRelease bool   `json:"earlyRelease"`
}

type GpuRequestStatusData struct {
	ProvisioningStatus  string   `json:"provisioningStatus"`
	FailureReason       string   `json:"failureReason"`
	NumGpusAllocated    int      `json:"numGpusAllocated"`
	StartTimestamp      string   `json:"startTimestamp"`
	CompletionTimestamp string   `json:"completionTimestamp"`
	Cost                string   `json:"cost"`
	Nodes               []string `json:"nodes"`
	InternalState       string   `json:"internalState"`
	RetryCount          int      `json:"retryCount"`
	DelayedCount        int      `json:"delayedCount"`
}

type GpuRequestData struct {
	GprId                  string               `json:"gprId"`
	WorkspaceName          string               `json:"sliceName"`
	ClusterName            string               `json:"clusterName"`
	GpusPerNode            int                  `json:"numberOfGPUs"`
	NodeCount              int                  `json:"numberOfGPUNodes"`
	InstanceType           string               `json:"instanceType"`
	MemoryPerGpu           int                  `json:"memoryPerGPU"`
	Priority               int                  `json:"priority"`
	GpuSharingMode         string               `json:"gpuSharingMode"`
	EstimatedStartTime     string               `json:"estimatedStartTime"`
	EstimatedWaitTime      string               `json:"estimatedWaitTime"`
	ExitDuration           string               `json:"exitDuration"`
	EarlyRelease           bool                 `json:"earlyRelease"`
	GprName                string               `json:"gprName"`
	GpuShape               string               `json:"gpuShape"`
	MultiNode              bool                 `json:"multiNode"`
	DedicatedNodes         bool                 `json:"dedicatedNodes"`
	EnableRDMA             bool                 `json:"enableRDMA"`
	EnableSecondaryNetwork bool                 `json:"enableSecondaryNetwork"`
	Status                 GpuRequestStatusData `json:"status"`
}

type WorkspaceGpuRequestDataResponse struct {
	Items []GpuRequestData `json:"items"`
}

// RequestGpu creates a GPU request and returns its id.
func RequestGpu(ctx context.Context, request CreateGprRequest, session *Session) (string, error) {
	data, err := call[gprIdData](ctx, session, http.MethodPost, gprPath, request, nil)
	return data.GprId, err
}

// RequestGpuWithAutoGpuSelection lets the server pick the instance type and
// GPU shape within request.ClusterName.
func RequestGpuWithAutoGpuSelection(ctx context.Context, request CreateGprRequest, session *Session) (string, error) {
	request.InstanceType = ""
	request.GpuShape = ""
	request.EnableAutoGpuSelection = true

	return RequestGpu(ctx, request, session)
}

// RequestGpuWithAutoClusterSelection lets the server pick the cluster,
// preferring request.PreferredClusters when given.
func RequestGpuWithAutoClusterSelection(ctx context.Context, request CreateGprRequest, session *Session) (string, error) {
	request.ClusterName = ""
	request.EnableAutoClusterSelection = true

	return RequestGpu(ctx, request, session)
}

func RequestGpuWithAutoSelection(ctx context.Context, request CreateGprRequest, session *Session) (string, error) {
	request.ClusterName = ""
	request.InstanceType = ""
	request.GpuShape = ""
	request.EnableAutoGpuSelection = true
	request.EnableAutoClusterSelection = true

	return RequestGpu(ctx, request, session)
}

func rejectable(ctx context.Context, session *Session, method string, request any, kind *errors.Error) error {
	response, err := invoke(ctx, session, method, gprPath, request)
	if err != nil {
		return err
	}

	return checkRejected(response, kind)
}

func CancelGpuRequest(ctx context.Context, gprId string, session *Session) error {
	return rejectable(ctx, session, http.MethodDelete, gprIdData{
		GprId: gprId,
	}, errors.ErrGpuAlreadyProvisioned)
}

func UpdateGpuRequestPriority(ctx context.Context, gprId string, priority int, session *Session) error {
	return rejectable(ctx, session, http.MethodPut, updateGprPriorityRequest{
		GprId:    gprId,
		Priority: priority,
	}, errors.ErrGpuAlreadyProvisioned)
}

func UpdateGpuRequestName(ctx context.Context, gprId string, name string, session *Session) error {
	return rejectable(ctx, session, http.MethodPut, updateGprNameRequest{
		GprId:   gprId,
		GprName: name,
	}, errors.ErrGpuAlreadyProvisioned)
}

// ReleaseGpu releases the GPUs of a provisioned request early.
func ReleaseGpu(ctx context.Context, gprId string, session *Session) error {
	return rejectable(ctx, session, http.MethodPut, releaseGprRequest{
		GprId:        gprId,
		EarlyRelease: true,
	}, errors.ErrGpuAlreadyReleased)
}

func GpuRequestStatus(ctx context.Context, gprId string, session *Session) (GpuRequestData, error) {
	return call[GpuRequestData](ctx, session, http.MethodGet, withQuery(gprPath, url.Values{
		"gprId": {gprId},
	}), nil, nil)
}

func GpuRequestStatusForWorkspace(ctx context.Context, workspaceName string, session *Session) (WorkspaceGpuRequestDataResponse, error) {
	return call[WorkspaceGpuRequestDataResponse](ctx, session, http.MethodGet, withQuery(gprListPath, url.Values{
		"sliceName": {workspaceName},
	}), nil, nil)
}

type WaitOptions struct {
	// Interval between status checks, 5s when zero.
	Interval time.Duration
	// Timeout bounds the whole wait. Zero waits until ctx is done.
	Timeout time.Duration
	// Until lists the statuses that end the wait. Defaults to the terminal
	// statuses.
	Until []string
}

func IsTerminalGprStatus(status string) bool {
	switch status {
	case GprSuccessful, GprFailed, GprReleased, GprComplete, GprCancelled:
		return true
	}

	return false
}

// WaitForGpuRequest polls the request until its provisioning status is one
// of options.Until and returns the last status read.
func WaitForGpuRequest(ctx context.Context, gprId string, options WaitOptions, session *Session) (GpuRequestData, error) {
	interval := options.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	done := IsTerminalGprStatus
	if len(options.Until) > 0 {
		done = func(status string) bool {
			return slices.Contains(options.Until, status)
		}
	}

	var data GpuRequestData
	condition := func(ctx context.Context) (bool, error) {
		status, err := GpuRequestStatus(ctx, gprId, session)
		if err != nil {
			// A call cut short by the poll deadline ends the wait as a timeout.
			if ctx.Err() != nil {
				return false, nil
			}

			return false, err
		}

		data = status

		logger.Debugf("GPU request %s is %s", gprId, data.Status.ProvisioningStatus)
		return done(data.Status.ProvisioningStatus), nil
	}

	var err error
	if options.Timeout > 0 {
		err = wait.PollUntilContextTimeout(ctx, interval, options.Timeout, true, condition)
	} else {
		err = wait.PollUntilContextCancel(ctx, interval, true, condition)
	}

	if err != nil {
		if wait.Interrupted(err) && ctx.Err() == nil {
			return data, ErrGpuRequestWaitTimeout.Wrapf("GPU request %s is still %s after %s", gprId, data.Status.ProvisioningStatus, options.Timeout)
		}

		return data, err
	}

	return data, nil
}
