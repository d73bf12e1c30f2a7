/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package app

import (
	"context"
	"time"

	"github.com/Juice-Labs/egs-sdk-go/pkg/appmain"
	"github.com/Juice-Labs/egs-sdk-go/pkg/egs"
	"github.com/Juice-Labs/egs-sdk-go/pkg/task"
	"github.com/Juice-Labs/egs-sdk-go/pkg/utilities"
)

func requestGpu(ctx context.Context, env *environment, args []string) error {
	request := egs.CreateGprRequest{}

	env.flags.StringVar(&request.GprName, "name", "", "GPU request name")
	env.flags.StringVar(&request.WorkspaceName, "workspace", "", "Workspace to request for")
	env.flags.StringVar(&request.ClusterName, "cluster", "", "Cluster to provision on")
	env.flags.StringVar(&request.InstanceType, "instance-type", "", "Node instance type")
	env.flags.StringVar(&request.GpuShape, "gpu-shape", "", "GPU shape, for example Tesla-T4")
	env.flags.IntVar(&request.GpusPerNode, "gpus", 1, "GPUs per node")
	env.flags.IntVar(&request.NodeCount, "nodes", 1, "Number of GPU nodes")
	env.flags.IntVar(&request.MemoryPerGpu, "memory", 0, "Memory per GPU, in GB")
	env.flags.StringVar(&request.ExitDuration, "exit-duration", "0d1h0m", "How long the GPUs are held")
	env.flags.IntVar(&request.Priority, "priority", 101, "Priority, 1 to 300")
	env.flags.StringVar(&request.IdleTimeOutDuration, "idle-timeout", "", "Releases idle GPUs after the duration")
	env.flags.BoolVar(&request.EnforceIdleTimeOut, "enforce-idle-timeout", false, "Enforces -idle-timeout")
	env.flags.BoolVar(&request.EnableEviction, "eviction", false, "Allows eviction by higher priority requests")
	env.flags.BoolVar(&request.RequeueOnFailure, "requeue", false, "Requeues the request when provisioning fails")
	autoGpu := env.flags.Bool("auto-gpu", false, "Lets the server choose the instance type and GPU shape")
	autoCluster := env.flags.Bool("auto-cluster", false, "Lets the server choose the cluster")
	preferred := env.list("preferred-clusters", "Clusters preferred by -auto-cluster")

	if err := env.start(ctx, args, "name", "workspace"); err != nil {
		return err
	}

	request.PreferredClusters = *preferred

	var gprId string
	var err error
	switch {
	case *autoGpu && *autoCluster:
		gprId, err = egs.RequestGpuWithAutoSelection(ctx, request, env.session)
	case *autoGpu:
		gprId, err = egs.RequestGpuWithAutoGpuSelection(ctx, request, env.session)
	case *autoCluster:
		gprId, err = egs.RequestGpuWithAutoClusterSelection(ctx, request, env.session)
	default:
		if request.ClusterName == "" || request.InstanceType == "" || request.GpuShape == "" {
			return appmain.Usagef("%s: -cluster, -instance-type and -gpu-shape are required without -auto-gpu or -auto-cluster", env.flags.Name())
		}
		gprId, err = egs.RequestGpu(ctx, request, env.session)
	}
	if err != nil {
		return err
	}

	return env.print(map[string]string{"gprId": gprId})
}

func gpuRequestStatus(ctx context.Context, env *environment, args []string) error {
	id := env.flags.String("id", "", "GPU request id")

	if err := env.start(ctx, args, "id"); err != nil {
		return err
	}

	data, err := egs.GpuRequestStatus(ctx, *id, env.session)
	if err != nil {
		return err
	}

	return env.print(data)
}

func listGpuRequests(ctx context.Context, env *environment, args []string) error {
	workspace := env.flags.String("workspace", "", "Workspace name")

	if err := env.start(ctx, args, "workspace"); err != nil {
		return err
	}

	list, err := egs.GpuRequestStatusForWorkspace(ctx, *workspace, env.session)
	if err != nil {
		return err
	}

	return env.print(list)
}

func cancelGpuRequest(ctx context.Context, env *environment, args []string) error {
	id := env.flags.String("id", "", "GPU request id")

	if err := env.start(ctx, args, "id"); err != nil {
		return err
	}

	if err := egs.CancelGpuRequest(ctx, *id, env.session); err != nil {
		return err
	}

	return env.print(map[string]string{"cancelled": *id})
}

func releaseGpu(ctx context.Context, env *environment, args []string) error {
	id := env.flags.String("id", "", "GPU request id")

	if err := env.start(ctx, args, "id"); err != nil {
		return err
	}

	if err := egs.ReleaseGpu(ctx, *id, env.session); err != nil {
		return err
	}

	return env.print(map[string]string{"released": *id})
}

// waitForGpuRequests waits on every id given as an argument at once and
// prints the last status read for each.
func waitForGpuRequests(ctx context.Context, env *environment, args []string) error {
	options := egs.WaitOptions{}
	env.flags.DurationVar(&options.Interval, "interval", 5*time.Second, "Time between status checks")
	env.flags.DurationVar(&options.Timeout, "timeout", 0, "Gives up after the duration, zero waits until interrupted")
	until := env.list("until", "Statuses that end the wait, the terminal ones by default")

	if err := env.start(ctx, args); err != nil {
		return err
	}

	ids := env.flags.Args()
	if len(ids) == 0 {
		return appmain.Usagef("%s: expected one or more GPU request ids", env.flags.Name())
	}

	options.Until = *until

	results := utilities.NewConcurrentMap[string, egs.GpuRequestData]()

	taskManager := task.NewTaskManager(ctx)
	for _, id := range ids {
		taskManager.GoFn("wait "+id, func(group task.Group) error {
			data, err := egs.WaitForGpuRequest(group.Ctx(), id, options, env.session)

			results.Set(id, data)

			return err
		})
	}

	if err := taskManager.Wait(); err != nil {
		return err
	}

	return env.print(results.Snapshot())
}
