package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadWithOptions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "cfg", "demo.yaml"), `
server:
  port: 8080
session:
  timeout: 90s
`)
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "cfg"))
	t.Setenv("DEMO_SERVER_PORT", "9090")

	cfg, err := LoadWithOptions("demo", Options{
		Defaults: map[string]interface{}{"log.level": "warn"},
		EnvFile:  filepath.Join(dir, "missing.env"),
	})
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.GetInt("server.port"))
	assert.Equal(t, 90*time.Second, cfg.GetDuration("session.timeout"))
	assert.Equal(t, "warn", cfg.GetString("log.level"))
}

func TestLoadWithOptionsDotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "cfg", "dotenv.yaml"), "name: from-file\n")
	writeFile(t, filepath.Join(dir, ".env"), "DOTENV_NAME=from-dotenv\n")
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "cfg"))
	t.Cleanup(func() { os.Unsetenv("DOTENV_NAME") })

	cfg, err := LoadWithOptions("dotenv", Options{EnvFile: filepath.Join(dir, ".env")})
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.GetString("name"))
}

func TestLoadMissingConfig(t *testing.T) {
	t.Setenv("CONFIG_PATH", t.TempDir())
	_, err := LoadWithOptions("nothing-here", Options{EnvFile: filepath.Join(t.TempDir(), ".env")})
	assert.Error(t, err)
}
