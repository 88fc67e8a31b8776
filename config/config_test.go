package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/29next/devdocs/config"
	"github.com/29next/devdocs/webhooks"
	"github.com/29next/devdocs/yml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_Success(t *testing.T) {
	t.Parallel()

	cfg, err := config.Default()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://developers.29next.com", cfg.SiteDomain)
	assert.Equal(t, "static/api", cfg.APIPath)

	var ids []string
	for _, api := range cfg.APIs {
		ids = append(ids, api.ID())
	}
	assert.Equal(t, []string{"campaigns/v1", "admin/2023-02-10", "admin/2024-04-01", "admin/unstable"}, ids)

	campaigns := cfg.APIs[0]
	assert.False(t, campaigns.Webhooks)
	assert.True(t, strings.HasPrefix(campaigns.Description, "## Overview\n"))
	url, ok := yml.Lookup(&campaigns.Additions, "servers")
	require.True(t, ok)
	assert.Equal(t, "https://campaigns.apps.29next.com", url.Content[0].Content[1].Value)

	admin := cfg.APIs[2]
	assert.True(t, admin.Webhooks)
	assert.Equal(t, "Admin API", admin.Title)
	assert.True(t, strings.HasPrefix(admin.Description, "## Authentication\n"))
	store, ok := yml.Lookup(&admin.Additions, "servers")
	require.True(t, ok)
	assert.Equal(t, "https://{store}.29next.store/api/admin/", store.Content[0].Content[1].Value)

	require.Len(t, cfg.Webhooks, 20)
	assert.Equal(t, webhooks.EventSpec{
		Event:       "app.uninstalled",
		Object:      "app",
		SchemaRef:   "#/components/schemas/PublicApp",
		Tag:         "apps",
		Description: "Triggers when an app is uninstalled.",
	}, cfg.Webhooks[0])
	assert.Equal(t, "ticket.updated", cfg.Webhooks[19].Event)

	assert.Len(t, cfg.Search.APIs, 2)
	assert.Equal(t, config.SearchTarget{Type: "admin", Version: "2024-04-01"}, cfg.Search.Webhooks)
}

func TestLoad_OverridesTopLevelKeys(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "devdocs.yaml", `
site_domain: http://localhost:3000
webhooks:
  - event: cart.abandoned
    object: cart
    tag: carts
    description: Triggers when a cart is marked as abandoned.
payloads:
  cart.abandoned:
    status: abandoned
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://localhost:3000", cfg.SiteDomain)
	assert.Equal(t, "static/api", cfg.APIPath, "unset keys keep the embedded value")
	assert.Len(t, cfg.APIs, 4)
	require.Len(t, cfg.Webhooks, 1)

	payload := cfg.WebhookPayloads()["cart.abandoned"]
	require.NotNil(t, payload)
	status, ok := yml.Lookup(payload, "status")
	require.True(t, ok)
	assert.Equal(t, "abandoned", status.Value)
}

func TestLoad_EmptyPath(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Len(t, cfg.Webhooks, 20)
}

func TestLoad_EmptyFile(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(writeFile(t, "devdocs.yaml", ""))
	require.NoError(t, err)
	assert.Len(t, cfg.APIs, 4)
}

func TestLoad_Error(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = config.Load(writeFile(t, "devdocs.yaml", "apis: {type: admin"))
	require.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = config.Load(writeFile(t, "devdocs.yaml", "apis: not-a-list\n"))
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestConfig_ApplyEnv_File(t *testing.T) {
	t.Parallel()

	cfg, err := config.Default()
	require.NoError(t, err)

	envFile := writeFile(t, ".env", "DEVDOCS_API_PATH=build/api\nDEVDOCS_CONCURRENCY=8\n")
	require.NoError(t, cfg.ApplyEnv(envFile))

	assert.Equal(t, "build/api", cfg.APIPath)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, "https://developers.29next.com", cfg.SiteDomain)
}

func TestConfig_ApplyEnv_MissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := config.Default()
	require.NoError(t, err)

	require.NoError(t, cfg.ApplyEnv(filepath.Join(t.TempDir(), ".env")))
	assert.Equal(t, "static/api", cfg.APIPath)
}

func TestConfig_ApplyEnv_BadConcurrency(t *testing.T) {
	t.Parallel()

	cfg, err := config.Default()
	require.NoError(t, err)

	err = cfg.ApplyEnv(writeFile(t, ".env", "DEVDOCS_CONCURRENCY=many\n"))
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestConfig_ApplyEnv_ProcessWins(t *testing.T) {
	t.Setenv(config.EnvSiteDomain, "https://staging.example.com")

	cfg, err := config.Default()
	require.NoError(t, err)

	envFile := writeFile(t, ".env", "DEVDOCS_SITE_DOMAIN=https://file.example.com\n")
	require.NoError(t, cfg.ApplyEnv(envFile))
	assert.Equal(t, "https://staging.example.com", cfg.SiteDomain)
}

func TestConfig_Validate_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mutate      func(cfg *config.Config)
		expectedErr error
		contains    string
	}{
		{
			name:        "no site domain",
			mutate:      func(cfg *config.Config) { cfg.SiteDomain = "" },
			expectedErr: config.ErrInvalidConfig,
			contains:    "site_domain",
		},
		{
			name:        "no api path",
			mutate:      func(cfg *config.Config) { cfg.APIPath = "" },
			expectedErr: config.ErrInvalidConfig,
			contains:    "api_path",
		},
		{
			name:        "incomplete api",
			mutate:      func(cfg *config.Config) { cfg.APIs[1].Source = "" },
			expectedErr: config.ErrInvalidConfig,
			contains:    "apis[1]",
		},
		{
			name:        "api listed twice",
			mutate:      func(cfg *config.Config) { cfg.APIs = append(cfg.APIs, cfg.APIs[0]) },
			expectedErr: config.ErrInvalidConfig,
			contains:    "campaigns/v1",
		},
		{
			name:        "duplicate event",
			mutate:      func(cfg *config.Config) { cfg.Webhooks = append(cfg.Webhooks, cfg.Webhooks[0]) },
			expectedErr: webhooks.ErrDuplicateEvent,
			contains:    "app.uninstalled",
		},
		{
			name:        "custom event without payload",
			mutate:      func(cfg *config.Config) { cfg.Webhooks[1].SchemaRef = "" },
			expectedErr: webhooks.ErrMissingPayload,
			contains:    "cart.abandoned",
		},
		{
			name:        "incomplete search target",
			mutate:      func(cfg *config.Config) { cfg.Search.APIs[0].Version = "" },
			expectedErr: config.ErrInvalidConfig,
			contains:    "search.apis[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := config.Default()
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			require.ErrorIs(t, err, tt.expectedErr)
			require.ErrorIs(t, err, config.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestConfig_Validate_CustomPayload(t *testing.T) {
	t.Parallel()

	cfg, err := config.Default()
	require.NoError(t, err)

	cfg.Webhooks[1].SchemaRef = ""
	cfg.Payloads = map[string]yaml.Node{"cart.abandoned": *yml.CreateMapNode(yml.CreateStringNode("status"), yml.CreateStringNode("abandoned"))}
	require.NoError(t, cfg.Validate())
}

func TestConfig_Select(t *testing.T) {
	t.Parallel()

	cfg, err := config.Default()
	require.NoError(t, err)

	all, err := cfg.Select("")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	admin, err := cfg.Select("admin")
	require.NoError(t, err)
	assert.Len(t, admin, 3)

	one, err := cfg.Select("admin/unstable")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "admin/unstable", one[0].ID())
	assert.Len(t, cfg.APIs, 4, "selection does not modify the config")

	_, err = cfg.Select("admin/1999-01-01")
	require.ErrorIs(t, err, config.ErrUnknownAPI)
}

func TestAPI_Path(t *testing.T) {
	t.Parallel()

	api := config.API{Type: "admin", Version: "2024-04-01"}
	assert.Equal(t, filepath.Join("static", "api", "admin", "2024-04-01.yaml"), api.Path("static/api"))
}

func TestDefault_DescriptionsAreBlockScalars(t *testing.T) {
	t.Parallel()

	cfg, err := config.Default()
	require.NoError(t, err)

	// the description is written into documents as-is, so it must survive a YAML round trip
	out, err := yaml.Marshal(map[string]string{"description": cfg.APIs[1].Description})
	require.NoError(t, err)

	var back map[string]string
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, cfg.APIs[1].Description, back["description"])
}
