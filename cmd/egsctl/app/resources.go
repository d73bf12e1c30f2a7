/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package app

import (
	"context"

	"github.com/Juice-Labs/egs-sdk-go/pkg/egs"
)

// show starts the verb and prints what fetch returns.
func show[T any](ctx context.Context, env *environment, args []string, required []string, fetch func() (T, error)) error {
	if err := env.start(ctx, args, required...); err != nil {
		return err
	}

	value, err := fetch()
	if err != nil {
		return err
	}

	return env.print(value)
}

func listInventory(ctx context.Context, env *environment, args []string) error {
	return show(ctx, env, args, nil, func() (egs.ListInventoryResponse, error) {
		return egs.Inventory(ctx, env.session)
	})
}

func workspaceInventory(ctx context.Context, env *environment, args []string) error {
	workspace := env.flags.String("workspace", "", "Workspace name")

	return show(ctx, env, args, []string{"workspace"}, func() (egs.ListWorkspaceInventoryUsageResponse, error) {
		return egs.WorkspaceInventory(ctx, *workspace, env.session)
	})
}

func listTemplates(ctx context.Context, env *environment, args []string) error {
	return show(ctx, env, args, nil, func() (egs.ListGprTemplatesResponse, error) {
		return egs.ListGprTemplates(ctx, env.session)
	})
}

func getTemplate(ctx context.Context, env *environment, args []string) error {
	name := env.flags.String("name", "", "Template name")

	return show(ctx, env, args, []string{"name"}, func() (egs.GprTemplate, error) {
		return egs.GetGprTemplate(ctx, *name, env.session)
	})
}

func deleteTemplate(ctx context.Context, env *environment, args []string) error {
	name := env.flags.String("name", "", "Template name")

	return show(ctx, env, args, []string{"name"}, func() (map[string]string, error) {
		return map[string]string{"deleted": *name}, egs.DeleteGprTemplate(ctx, *name, env.session)
	})
}

func listBindings(ctx context.Context, env *environment, args []string) error {
	return show(ctx, env, args, nil, func() (egs.ListGprTemplateBindingsResponse, error) {
		return egs.ListGprTemplateBindings(ctx, env.session)
	})
}

func getBinding(ctx context.Context, env *environment, args []string) error {
	name := env.flags.String("name", "", "Binding name, the workspace it binds")

	return show(ctx, env, args, []string{"name"}, func() (egs.GprTemplateBinding, error) {
		return egs.GetGprTemplateBinding(ctx, *name, env.session)
	})
}

func deleteBinding(ctx context.Context, env *environment, args []string) error {
	name := env.flags.String("name", "", "Binding name, the workspace it binds")

	return show(ctx, env, args, []string{"name"}, func() (map[string]string, error) {
		return map[string]string{"deleted": *name}, egs.DeleteGprTemplateBinding(ctx, *name, env.session)
	})
}

func listPolicies(ctx context.Context, env *environment, args []string) error {
	return show(ctx, env, args, nil, func() (egs.ListWorkspacePoliciesResponse, error) {
		return egs.ListWorkspacePolicies(ctx, env.session)
	})
}

func getPolicy(ctx context.Context, env *environment, args []string) error {
	name := env.flags.String("name", "", "Workspace name")

	return show(ctx, env, args, []string{"name"}, func() (egs.WorkspacePolicy, error) {
		return egs.GetWorkspacePolicy(ctx, *name, env.session)
	})
}

func listApiKeys(ctx context.Context, env *environment, args []string) error {
	workspace := env.flags.String("workspace", "", "Only lists the keys of the workspace")

	return show(ctx, env, args, nil, func() (egs.ListApiKeysResponse, error) {
		return egs.ListApiKeys(ctx, *workspace, env.session)
	})
}

func createApiKey(ctx context.Context, env *environment, args []string) error {
	request := egs.CreateApiKeyRequest{}
	env.flags.StringVar(&request.Name, "name", "", "Key name")
	env.flags.StringVar(&request.UserName, "username", "", "User the key belongs to")
	env.flags.StringVar(&request.Description, "description", "", "Key description")
	env.flags.StringVar(&request.Role, "role", egs.RoleViewer, "One of Owner, Editor, Viewer")
	env.flags.StringVar(&request.Validity, "validity", "30d", "A duration such as 90d or a "+egs.ValidityDateLayout+" date")
	env.flags.StringVar(&request.WorkspaceName, "workspace", "", "Workspace of Editor and Viewer keys")

	return show(ctx, env, args, []string{"name", "username"}, func() (map[string]string, error) {
		apiKey, err := egs.CreateApiKey(ctx, request, env.session)
		return map[string]string{"apiKey": apiKey}, err
	})
}

func deleteApiKey(ctx context.Context, env *environment, args []string) error {
	apiKey := env.flags.String("key", "", "API key to delete")

	return show(ctx, env, args, []string{"key"}, func() (map[string]string, error) {
		return map[string]string{"deleted": *apiKey}, egs.DeleteApiKey(ctx, *apiKey, env.session)
	})
}

func listEndpoints(ctx context.Context, env *environment, args []string) error {
	workspace := env.flags.String("workspace", "", "Workspace name")

	return show(ctx, env, args, []string{"workspace"}, func() (egs.ListInferenceEndpointResponse, error) {
		return egs.ListInferenceEndpoints(ctx, *workspace, env.session)
	})
}

func endpointFlags(env *environment) (workspace *string, name *string, cluster *string) {
	workspace = env.flags.String("workspace", "", "Workspace name")
	name = env.flags.String("name", "", "Endpoint name")
	cluster = env.flags.String("cluster", "", "Cluster the endpoint runs on")
	return
}

func describeEndpoint(ctx context.Context, env *environment, args []string) error {
	workspace, name, cluster := endpointFlags(env)

	return show(ctx, env, args, []string{"workspace", "name"}, func() (egs.DescribeInferenceEndpointResponse, error) {
		return egs.DescribeInferenceEndpoint(ctx, *workspace, *name, *cluster, env.session)
	})
}

func deleteEndpoint(ctx context.Context, env *environment, args []string) error {
	workspace, name, cluster := endpointFlags(env)

	return show(ctx, env, args, []string{"workspace", "name"}, func() (map[string]string, error) {
		return map[string]string{"deleted": *name}, egs.DeleteInferenceEndpoint(ctx, *workspace, *name, *cluster, env.session)
	})
}
