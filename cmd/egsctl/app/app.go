/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package app

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Juice-Labs/egs-sdk-go/pkg/appmain"
	"github.com/Juice-Labs/egs-sdk-go/pkg/config"
	"github.com/Juice-Labs/egs-sdk-go/pkg/egs"
	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
	"github.com/Juice-Labs/egs-sdk-go/pkg/utilities"
)

type Options struct {
	// EnvFile is loaded before the EGS_* variables are read. A missing file
	// is skipped.
	EnvFile string
	Stdout  io.Writer
	Stderr  io.Writer
}

type commandFn = func(ctx context.Context, env *environment, args []string) error

type command struct {
	summary string
	run     commandFn
}

var commands = map[string]map[string]command{
	"workspace": {
		"list":          {"List workspaces", listWorkspaces},
		"create":        {"Create a workspace", createWorkspace},
		"delete":        {"Delete a workspace", deleteWorkspace},
		"detach":        {"Detach a cluster from a workspace", detachCluster},
		"attach":        {"Attach a cluster to a workspace", attachCluster},
		"add-namespace": {"Add a namespace to a workspace", addNamespace},
		"kubeconfig":    {"Fetch the kubeconfig of a workspace", workspaceKubeConfig},
		"apply":         {"Create the workspaces of a YAML manifest", applyWorkspaces},
	},
	"gpr": {
		"request": {"Request GPUs", requestGpu},
		"status":  {"Show a GPU request", gpuRequestStatus},
		"list":    {"List the GPU requests of a workspace", listGpuRequests},
		"cancel":  {"Cancel a queued GPU request", cancelGpuRequest},
		"release": {"Release the GPUs of a provisioned request", releaseGpu},
		"wait":    {"Wait for GPU requests to settle", waitForGpuRequests},
	},
	"inventory": {
		"list":      {"List GPU nodes", listInventory},
		"workspace": {"Show the GPU usage of a workspace", workspaceInventory},
	},
	"template": {
		"list":   {"List GPR templates", listTemplates},
		"get":    {"Show a GPR template", getTemplate},
		"delete": {"Delete a GPR template", deleteTemplate},
	},
	"binding": {
		"list":   {"List GPR template bindings", listBindings},
		"get":    {"Show a GPR template binding", getBinding},
		"delete": {"Delete a GPR template binding", deleteBinding},
	},
	"policy": {
		"list": {"List workspace policies", listPolicies},
		"get":  {"Show a workspace policy", getPolicy},
	},
	"apikey": {
		"list":   {"List API keys", listApiKeys},
		"create": {"Create an API key", createApiKey},
		"delete": {"Delete an API key", deleteApiKey},
	},
	"endpoint": {
		"list":     {"List inference endpoints", listEndpoints},
		"describe": {"Describe an inference endpoint", describeEndpoint},
		"delete":   {"Delete an inference endpoint", deleteEndpoint},
	},
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}

func PrintUsage(w io.Writer) {
	for _, resource := range sortedKeys(commands) {
		for _, verb := range sortedKeys(commands[resource]) {
			fmt.Fprintf(w, "  %-10s %-14s %s\n", resource, verb, commands[resource][verb].summary)
		}
	}
}

// Run executes `<resource> <verb> [flags]` and prints the result as JSON.
func Run(ctx context.Context, options Options, args []string) error {
	if len(args) < 2 {
		return appmain.Usagef("expected <resource> <verb>, see -h")
	}

	resource, verb := args[0], args[1]

	verbs, ok := commands[resource]
	if !ok {
		return appmain.Usagef("unknown resource %q, one of %s", resource, strings.Join(sortedKeys(commands), ", "))
	}

	selected, ok := verbs[verb]
	if !ok {
		return appmain.Usagef("unknown %s verb %q, one of %s", resource, verb, strings.Join(sortedKeys(verbs), ", "))
	}

	env := newEnvironment(resource+" "+verb, options)
	return selected.run(ctx, env, args[2:])
}

type environment struct {
	options Options
	flags   *flag.FlagSet
	session *egs.Session
}

func newEnvironment(name string, options Options) *environment {
	if options.Stdout == nil {
		options.Stdout = io.Discard
	}
	if options.Stderr == nil {
		options.Stderr = io.Discard
	}

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(options.Stderr)

	return &environment{
		options: options,
		flags:   flags,
	}
}

func (env *environment) list(name string, usage string) *[]string {
	value := utilities.NewCommaValue()
	env.flags.Var(value, name, usage+", comma separated")
	return value.Value
}

// start parses the verb flags, checks the required ones and authenticates.
func (env *environment) start(ctx context.Context, args []string, required ...string) error {
	if err := env.flags.Parse(args); err != nil {
		return appmain.Usagef("%s: %v", env.flags.Name(), err)
	}

	for _, name := range required {
		if value := env.flags.Lookup(name); value == nil || value.Value.String() == "" {
			return appmain.Usagef("%s: -%s is required", env.flags.Name(), name)
		}
	}

	cfg, err := config.Load(env.options.EnvFile)
	if err != nil {
		return err
	}

	env.session, err = egs.AuthenticateFromConfig(ctx, cfg, false)
	return err
}

func (env *environment) print(v any) error {
	encoder := json.NewEncoder(env.options.Stdout)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(v); err != nil {
		return errors.ErrMalformedResponse.Wrap(err)
	}

	return nil
}
