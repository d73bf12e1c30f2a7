/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
)

func clearEnv(t *testing.T) {
	for _, name := range []string{EnvEndpoint, EnvApiKey, EnvAccessToken, EnvTimeout, EnvRetries, EnvTokenCache} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvEndpoint, "https://egs.example.com")
	t.Setenv(EnvApiKey, "k1")
	t.Setenv(EnvTimeout, "5s")
	t.Setenv(EnvRetries, "2")
	t.Setenv(EnvTokenCache, "true")

	config, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, Config{
		Endpoint:   "https://egs.example.com",
		ApiKey:     "k1",
		Timeout:    5 * time.Second,
		Retries:    2,
		TokenCache: true,
	}, config)
	assert.NoError(t, config.Validate())
	assert.Len(t, config.ClientOptions(), 3)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	for name, value := range map[string]string{
		EnvTimeout:    "soon",
		EnvRetries:    "-1",
		EnvTokenCache: "maybe",
	} {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(name, value)

			_, err := FromEnv()
			assert.True(t, errors.Is(err, errors.ErrInvalidArgument), "got %v", err)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	file := filepath.Join(dir, "egs.env")
	require.NoError(t, os.WriteFile(file, []byte("EGS_ENDPOINT=http://from-file:8080\nEGS_ACCESS_TOKEN=file-token\n"), 0o600))

	// The environment wins over the file.
	t.Setenv(EnvAccessToken, "env-token")

	config, err := Load(file, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "http://from-file:8080", config.Endpoint)
	assert.Equal(t, "env-token", config.AccessToken)
	assert.Empty(t, config.ClientOptions())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		valid  bool
	}{
		{"api key", Config{Endpoint: "http://egs", ApiKey: "k"}, true},
		{"access token", Config{Endpoint: "http://egs", AccessToken: "t"}, true},
		{"no endpoint", Config{ApiKey: "k"}, false},
		{"no credentials", Config{Endpoint: "http://egs"}, false},
		{"bad scheme", Config{Endpoint: "ftp://egs", ApiKey: "k"}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.config.Validate()
			if test.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, errors.ErrInvalidArgument), "got %v", err)
			}
		})
	}
}

func TestLoadWorkspaceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workspaces.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
projectname: avesha
workspaces:
  - name: team-a
    clusters: [worker-1, worker-2]
    namespaces: [team-a-ns]
    username: alice
    email: alice@example.com
    apiKeyValidity: 30d
  - name: team-b
    clusters: [worker-1]
    namespaces: [team-b-ns]
    username: bob
    email: bob@example.com
`), 0o600))

	manifest, err := LoadWorkspaceFile(path)
	require.NoError(t, err)
	assert.Equal(t, "avesha", manifest.ProjectName)
	assert.Equal(t, "kubeslice-avesha", manifest.ProjectNamespace())

	if assert.Len(t, manifest.Workspaces, 2) {
		assert.Equal(t, WorkspaceSpec{
			Name:           "team-a",
			Clusters:       []string{"worker-1", "worker-2"},
			Namespaces:     []string{"team-a-ns"},
			Username:       "alice",
			Email:          "alice@example.com",
			ApiKeyValidity: "30d",
		}, manifest.Workspaces[0])
		assert.Empty(t, manifest.Workspaces[1].ApiKeyValidity)
	}
}

func TestWorkspaceManifestWithoutProject(t *testing.T) {
	manifest, err := ParseWorkspaceManifest([]byte("workspaces: []\n"))
	require.NoError(t, err)
	assert.Empty(t, manifest.ProjectNamespace())
}

func TestParseWorkspaceManifestRejectsIncomplete(t *testing.T) {
	_, err := ParseWorkspaceManifest([]byte("workspaces:\n  - name: team-a\n    clusters: [w1]\n"))
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	_, err = ParseWorkspaceManifest([]byte("workspaces: [\n"))
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}
