/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package app

import (
	"context"
	"fmt"
	"io"

	"k8s.io/client-go/tools/clientcmd"

	"github.com/Juice-Labs/egs-sdk-go/pkg/config"
	"github.com/Juice-Labs/egs-sdk-go/pkg/egs"
	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
	"github.com/Juice-Labs/egs-sdk-go/pkg/logger"
	"github.com/Juice-Labs/egs-sdk-go/pkg/task"
)

func listWorkspaces(ctx context.Context, env *environment, args []string) error {
	if err := env.start(ctx, args); err != nil {
		return err
	}

	list, err := egs.ListWorkspaces(ctx, env.session)
	if err != nil {
		return err
	}

	return env.print(list)
}

func createWorkspace(ctx context.Context, env *environment, args []string) error {
	name := env.flags.String("name", "", "Workspace name")
	clusters := env.list("clusters", "Clusters of the workspace")
	namespaces := env.list("namespaces", "Namespaces of the workspace")
	username := env.flags.String("username", "", "Owner of the workspace")
	email := env.flags.String("email", "", "Email of the owner")

	if err := env.start(ctx, args, "name", "clusters", "namespaces", "username", "email"); err != nil {
		return err
	}

	workspaceName, err := egs.CreateWorkspace(ctx, egs.CreateWorkspaceRequest{
		WorkspaceName: *name,
		Clusters:      *clusters,
		Namespaces:    *namespaces,
		Username:      *username,
		Email:         *email,
	}, env.session)
	if err != nil {
		return err
	}

	return env.print(map[string]string{"workspaceName": workspaceName})
}

func deleteWorkspace(ctx context.Context, env *environment, args []string) error {
	name := env.flags.String("name", "", "Workspace name")

	if err := env.start(ctx, args, "name"); err != nil {
		return err
	}

	if err := egs.DeleteWorkspace(ctx, *name, env.session); err != nil {
		return err
	}

	return env.print(map[string]string{"deleted": *name})
}

func detachCluster(ctx context.Context, env *environment, args []string) error {
	name := env.flags.String("name", "", "Workspace name")
	cluster := env.flags.String("cluster", "", "Cluster to detach")

	if err := env.start(ctx, args, "name", "cluster"); err != nil {
		return err
	}

	response, err := egs.DetachClusterFromWorkspace(ctx, *name, *cluster, env.session)
	if err != nil {
		return err
	}

	return env.print(response)
}

func attachCluster(ctx context.Context, env *environment, args []string) error {
	name := env.flags.String("name", "", "Workspace name")
	cluster := env.flags.String("cluster", "", "Cluster to attach")

	if err := env.start(ctx, args, "name", "cluster"); err != nil {
		return err
	}

	response, err := egs.AttachClusterToWorkspace(ctx, *name, *cluster, env.session)
	if err != nil {
		return err
	}

	return env.print(response)
}

func addNamespace(ctx context.Context, env *environment, args []string) error {
	name := env.flags.String("name", "", "Workspace name")
	namespace := env.flags.String("namespace", "", "Namespace to add")

	if err := env.start(ctx, args, "name", "namespace"); err != nil {
		return err
	}

	response, err := egs.AddNamespaceToWorkspace(ctx, *name, *namespace, env.session)
	if err != nil {
		return err
	}

	return env.print(response)
}

// workspaceKubeConfig checks that the served kubeconfig loads, then prints it
// as served or writes it to -out.
func workspaceKubeConfig(ctx context.Context, env *environment, args []string) error {
	name := env.flags.String("name", "", "Workspace name")
	cluster := env.flags.String("cluster", "", "Cluster to connect to, chosen by the server when empty")
	out := env.flags.String("out", "", "Writes the kubeconfig to the file instead of stdout")

	if err := env.start(ctx, args, "name"); err != nil {
		return err
	}

	data, err := egs.GetWorkspaceKubeConfig(ctx, *name, *cluster, env.session)
	if err != nil {
		return err
	}

	kubeConfig, err := clientcmd.Load([]byte(data))
	if err != nil {
		return errors.ErrMalformedResponse.Wrapf("kubeconfig of %s does not load, %v", *name, err)
	}

	if err := clientcmd.Validate(*kubeConfig); err != nil {
		return errors.ErrMalformedResponse.Wrapf("kubeconfig of %s is invalid, %v", *name, err)
	}

	if *out == "" {
		_, err := io.WriteString(env.options.Stdout, data)
		return err
	}

	if err := clientcmd.WriteToFile(*kubeConfig, *out); err != nil {
		return err
	}

	return env.print(map[string]string{
		"kubeConfig":     *out,
		"currentContext": kubeConfig.CurrentContext,
	})
}

type applyResult struct {
	WorkspaceName    string `json:"workspaceName"`
	ProjectNamespace string `json:"projectNamespace,omitempty"`
	Created          bool   `json:"created"`
	ApiKey           string `json:"apiKey,omitempty"`
}

// applyWorkspaces creates the manifest workspaces that do not exist yet,
// concurrently.
func applyWorkspaces(ctx context.Context, env *environment, args []string) error {
	file := env.flags.String("f", "", "Workspace manifest")

	if err := env.start(ctx, args, "f"); err != nil {
		return err
	}

	manifest, err := config.LoadWorkspaceFile(*file)
	if err != nil {
		return err
	}

	projectNamespace := manifest.ProjectNamespace()
	if projectNamespace != "" {
		logger.Infof("applying %d workspaces of project %s in %s", len(manifest.Workspaces), manifest.ProjectName, projectNamespace)
	}

	existing, err := egs.ListWorkspaces(ctx, env.session)
	if err != nil {
		return err
	}

	exists := map[string]bool{}
	for _, workspace := range existing.Workspaces {
		exists[workspace.Name] = true
	}

	results := make([]applyResult, len(manifest.Workspaces))

	taskManager := task.NewTaskManager(ctx)
	for index, spec := range manifest.Workspaces {
		if exists[spec.Name] {
			logger.Infof("workspace %s exists, skipping", spec.Name)
			results[index] = applyResult{WorkspaceName: spec.Name, ProjectNamespace: projectNamespace}
			continue
		}

		taskManager.GoFn(fmt.Sprintf("apply %s", spec.Name), func(group task.Group) error {
			result, err := applyWorkspace(group.Ctx(), env.session, spec)
			result.ProjectNamespace = projectNamespace
			results[index] = result

			return err
		})
	}

	if err := taskManager.Wait(); err != nil {
		return err
	}

	return env.print(results)
}

func applyWorkspace(ctx context.Context, session *egs.Session, spec config.WorkspaceSpec) (applyResult, error) {
	name, err := egs.CreateWorkspace(ctx, egs.CreateWorkspaceRequest{
		WorkspaceName: spec.Name,
		Clusters:      spec.Clusters,
		Namespaces:    spec.Namespaces,
		Username:      spec.Username,
		Email:         spec.Email,
	}, session)
	if errors.Is(err, errors.ErrWorkspaceAlreadyExists) {
		logger.Infof("workspace %s was created concurrently, skipping", spec.Name)
		return applyResult{WorkspaceName: spec.Name}, nil
	} else if err != nil {
		return applyResult{WorkspaceName: spec.Name}, err
	}

	if name == "" {
		name = spec.Name
	}

	result := applyResult{WorkspaceName: name, Created: true}
	if spec.ApiKeyValidity == "" {
		return result, nil
	}

	result.ApiKey, err = egs.CreateApiKey(ctx, egs.CreateApiKeyRequest{
		Name:          name + "-editor",
		UserName:      spec.Username,
		Description:   "created by egsctl workspace apply",
		Role:          egs.RoleEditor,
		Validity:      spec.ApiKeyValidity,
		WorkspaceName: name,
	}, session)

	return result, err
}
