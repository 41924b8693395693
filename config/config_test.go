package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_UsesHomeDirectory(t *testing.T) {
	t.Setenv(EnvOutputDir, "")
	t.Setenv("HOME", t.TempDir())

	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(os.Getenv("HOME"), ".clean-scraper"), cfg.OutputDir)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "cache"), cfg.CacheDir)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "exports"), cfg.DataDir)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "ledger.db"), cfg.LedgerPath)
	assert.Equal(t, 2*time.Second, cfg.Throttle())
}

func TestDefault_HonorsEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvOutputDir, dir)

	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.OutputDir)
	assert.Equal(t, filepath.Join(dir, "cache"), cfg.CacheDir)
}

func TestLoad_NoFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvOutputDir, dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.OutputDir)
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvOutputDir, dir)

	yaml := "cache_dir: /var/cache/clean\nthrottle_seconds: 5\nuser_agent: custom-agent\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/cache/clean", cfg.CacheDir)
	assert.Equal(t, 5*time.Second, cfg.Throttle())
	assert.Equal(t, "custom-agent", cfg.UserAgent)
	// Paths the file omits still derive from the output root.
	assert.Equal(t, filepath.Join(dir, "exports"), cfg.DataDir)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvOutputDir, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{not yaml"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestCredential(t *testing.T) {
	t.Setenv("CLEAN_TEST_API_KEY", "from-env")
	assert.Equal(t, "from-env", Credential("CLEAN_TEST_API_KEY", ""))

	assert.Equal(t, "fallback", Credential("CLEAN_TEST_MISSING_KEY", "fallback"))
}

func TestCredential_JSONFile(t *testing.T) {
	dir := t.TempDir()
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(oldWD) })

	require.NoError(t, os.WriteFile("credentials.json", []byte(`{"MUCKROCK_API_KEY": "from-json"}`), 0o600))
	assert.Equal(t, "from-json", Credential("MUCKROCK_API_KEY", ""))
}
