package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll("configs", 0o755))
	require.NoError(t, os.WriteFile(filepath.Join("configs", name), []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	writeConfig(t, "config.yaml", "app:\n  name: flow-writer-api\n")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "flow-writer-api", cfg.App.Name)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "projects", cfg.Storage.File.BaseDir)
	assert.Equal(t, 5, cfg.Generation.DefaultChapterCount)
	assert.Equal(t, 20, cfg.Generation.MaxChapterCount)
	assert.InDelta(t, 0.3, cfg.Generation.StructureTemperature, 1e-9)
	assert.InDelta(t, 0.8, cfg.Generation.ContentTemperature, 1e-9)
	assert.Equal(t, 8080, cfg.Server.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.HTTP.ReadTimeout)
}

func TestLoadExpandsEnvPlaceholders(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FW_TEST_API_KEY", "sk-test-123")
	writeConfig(t, "config.yaml", `
llm:
  default_provider: openai
  providers:
    openai:
      api_key: ${FW_TEST_API_KEY}
      base_url: ${FW_TEST_BASE_URL:https://api.openai.com/v1}
      model: gpt-4o-mini
`)

	cfg, err := Load()
	require.NoError(t, err)

	p := cfg.LLM.Providers["openai"]
	assert.Equal(t, "sk-test-123", p.APIKey)
	assert.Equal(t, "https://api.openai.com/v1", p.BaseURL, "未设置的变量应回落到默认值")
	assert.Equal(t, "gpt-4o-mini", p.Model)
}

func TestLoadMergesEnvironmentFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ENV", "production")
	writeConfig(t, "config.yaml", "storage:\n  driver: file\n  file:\n    base_dir: projects\n")
	writeConfig(t, "config.production.yaml", "storage:\n  driver: postgres\n")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Storage.Driver, "环境配置应覆盖默认配置")
	assert.Equal(t, "projects", cfg.Storage.File.BaseDir, "未覆盖的键应保留")
}

func TestLoadMissingBaseConfigFails(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load()
	assert.Error(t, err)
}

func TestExpandEnvKeepsUnknownWithoutDefault(t *testing.T) {
	out := expandEnv("key: ${FW_TEST_UNDEFINED_VAR}")
	assert.Equal(t, "key: ${FW_TEST_UNDEFINED_VAR}", out)
}
