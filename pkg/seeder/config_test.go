package seeder

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[fineract]
base_url = "https://fineract.example.com/api/v1"
tenant = "branch-a"
username = "mifos"
password = "password"

[retry]
max_attempts = 5
initial_interval_ms = 500

[data]
dir = "/srv/templates"
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://fineract.example.com/api/v1", cfg.Fineract.BaseURL)
	assert.Equal(t, "branch-a", cfg.Fineract.Tenant)
	assert.Equal(t, "/srv/templates", cfg.Data.Dir)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.Policy().InitialInterval)

	// Untouched sections keep their defaults.
	assert.Equal(t, "dd MMMM yyyy", cfg.Fineract.DateFormat)
	assert.Equal(t, 10*time.Second, cfg.Retry.Policy().MaxInterval)
}

func TestLoadConfigEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("FINERACT_URL", "https://env.example.com/api/v1")
	t.Setenv("FINERACT_USERNAME", "envuser")
	t.Setenv("FINERACT_PASSWORD", "")

	cfg := DefaultConfig()
	cfg.Fineract.Password = "from-file"
	cfg.ApplyEnv()

	assert.Equal(t, "https://env.example.com/api/v1", cfg.Fineract.BaseURL)
	assert.Equal(t, "envuser", cfg.Fineract.Username)
	// Empty env values never clobber configured ones.
	assert.Equal(t, "from-file", cfg.Fineract.Password)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fineract.Username = "mifos"
	cfg.Fineract.Password = "password"
	assert.NoError(t, cfg.Validate())

	missing := cfg
	missing.Fineract.Password = ""
	assert.Error(t, missing.Validate())

	token := cfg
	token.Fineract.AuthType = "token"
	assert.Error(t, token.Validate())
	token.Fineract.Token = "abc"
	assert.NoError(t, token.Validate())

	bad := cfg
	bad.Fineract.AuthType = "digest"
	assert.Error(t, bad.Validate())

	retries := cfg
	retries.Retry.MaxAttempts = 0
	assert.Error(t, retries.Validate())
}

func TestFindTemplateAcceptsXlsx(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Offices.xlsx"), []byte("x"), 0o644))

	assert.Equal(t, filepath.Join(dir, "Offices.xlsx"), findTemplate(dir, "Offices.xls"))
	assert.Equal(t, "", findTemplate(dir, "Staffs.xls"))
}
