/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
)

// WorkspaceSpec is one workspace of a manifest.
type WorkspaceSpec struct {
	Name       string   `yaml:"name"`
	Clusters   []string `yaml:"clusters"`
	Namespaces []string `yaml:"namespaces"`
	Username   string   `yaml:"username"`
	Email      string   `yaml:"email"`
	// When set an Editor API key with this validity is created for the
	// workspace.
	ApiKeyValidity string `yaml:"apiKeyValidity,omitempty"`
}

type WorkspaceManifest struct {
	// ProjectName is the EGS project owning the workspaces.
	ProjectName string          `yaml:"projectname,omitempty"`
	Workspaces  []WorkspaceSpec `yaml:"workspaces"`
}

// ProjectNamespace is the controller namespace of the project, empty when the
// manifest names no project.
func (manifest WorkspaceManifest) ProjectNamespace() string {
	if manifest.ProjectName == "" {
		return ""
	}

	return "kubeslice-" + manifest.ProjectName
}

func LoadWorkspaceFile(path string) (WorkspaceManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WorkspaceManifest{}, err
	}

	return ParseWorkspaceManifest(data)
}

func ParseWorkspaceManifest(data []byte) (WorkspaceManifest, error) {
	var manifest WorkspaceManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return WorkspaceManifest{}, errors.ErrInvalidArgument.Wrap(err)
	}

	for index, workspace := range manifest.Workspaces {
		if err := workspace.validate(); err != nil {
			return WorkspaceManifest{}, errors.ErrInvalidArgument.Wrapf("workspace %d, %v", index, err)
		}
	}

	return manifest, nil
}

func (workspace WorkspaceSpec) validate() error {
	switch {
	case workspace.Name == "":
		return fmt.Errorf("name is required")
	case len(workspace.Clusters) == 0:
		return fmt.Errorf("%s has no clusters", workspace.Name)
	case len(workspace.Namespaces) == 0:
		return fmt.Errorf("%s has no namespaces", workspace.Name)
	case workspace.Username == "":
		return fmt.Errorf("%s has no username", workspace.Name)
	case workspace.Email == "":
		return fmt.Errorf("%s has no email", workspace.Name)
	}

	return nil
}
