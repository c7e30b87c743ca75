package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("KAYAN_CONFIG_DIR", t.TempDir())

	cfg, err := load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, "kayan.db", cfg.DSN)
	assert.Equal(t, "ROLE_SUPER_ADMIN", cfg.MasterRole)
	assert.Empty(t, cfg.Hierarchy())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("KAYAN_CONFIG_DIR", t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MASTER_ROLE", "ROLE_OWNER")

	cfg, err := load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "ROLE_OWNER", cfg.MasterRole)
}

func TestLoadConfig_RoleHierarchyFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `role_hierarchy:
  - role: ROLE_ADMIN
    inherits: [ROLE_USER]
  - role: ROLE_SUPER_ADMIN
    inherits: [ROLE_ADMIN, ROLE_ALLOWED_TO_SWITCH]
  - role: ROLE_ADMIN
    inherits: [ROLE_SONATA_ADMIN]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "roles.yaml"), []byte(yaml), 0o600))
	t.Setenv("KAYAN_CONFIG_DIR", dir)

	cfg, err := load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"ROLE_ADMIN":       {"ROLE_USER", "ROLE_SONATA_ADMIN"},
		"ROLE_SUPER_ADMIN": {"ROLE_ADMIN", "ROLE_ALLOWED_TO_SWITCH"},
	}, cfg.Hierarchy())
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "roles.yaml"), []byte("role_hierarchy: [\n"), 0o600))
	t.Setenv("KAYAN_CONFIG_DIR", dir)

	_, err := load(viper.New())
	assert.Error(t, err)
}
