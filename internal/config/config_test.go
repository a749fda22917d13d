package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/lrm/internal/translator"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()

	cfg, err := Load(viper.New(), "", dir)
	require.NoError(t, err)

	assert.Equal(t, "resx", cfg.Format)
	assert.Equal(t, "resx", cfg.ResourceFormat().Name())
	assert.Equal(t, 3, cfg.Translate.MaxAttempts)
	assert.Equal(t, 60*time.Second, cfg.Translate.Timeout)
	assert.Equal(t, []string{"google"}, cfg.Translate.Services)
	assert.Equal(t, "127.0.0.1:5000", cfg.Serve.Addr)
	assert.Contains(t, cfg.Providers, "ollama")
}

func TestLoad_FileAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	content := `
resource_path: ./Resources
format: json
log_level: debug
scan:
  exclude:
    - "**/generated/**"
translate:
  timeout: 15s
  services: [ollama, mymemory]
providers:
  ollama:
    base_url: http://gpu-box:11434
    models: ["llama3.1:8b"]
    system_prompt: Translate UI labels tersely.
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))
	t.Setenv("LRM_PROVIDERS_OPENROUTER_API_KEY", "sk-env")
	t.Setenv("LRM_FORMAT", "yaml")

	cfg, err := Load(viper.New(), "", dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, FileName), cfg.File())
	assert.Equal(t, "./Resources", cfg.ResourcePath)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"**/generated/**"}, cfg.Scan.Exclude)
	assert.Equal(t, 15*time.Second, cfg.Translate.Timeout)
	assert.Equal(t, []string{"ollama", "mymemory"}, cfg.Translate.Services)
	assert.Equal(t, []string{"llama3.1:8b"}, cfg.Models("ollama"))

	sc := cfg.ServiceConfig("Ollama")
	assert.Equal(t, "http://gpu-box:11434", sc.BaseURL)
	assert.Equal(t, "Translate UI labels tersely.", sc.SystemPrompt)
	assert.Equal(t, 15*time.Second, sc.Timeout)
	assert.Equal(t, "sk-env", cfg.ServiceConfig("openrouter").APIKey)
}

func TestLoad_InvalidFormat(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LRM_FORMAT", "ini")
	_, err := Load(viper.New(), "", t.TempDir())
	assert.Error(t, err)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"), "")
	assert.Error(t, err)
}

func TestPaths(t *testing.T) {
	cfg := &Config{ResourcePath: filepath.Join("app", "Resources")}
	assert.Equal(t, filepath.Join("app", "Resources", ".lrm", "lrm.db"), cfg.DatabasePath())

	abs, err := filepath.Abs("app")
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.SourceDir())

	cfg.DBPath = "/tmp/x.db"
	cfg.SourcePath = "/src"
	assert.Equal(t, "/tmp/x.db", cfg.DatabasePath())
	assert.Equal(t, "/src", cfg.SourceDir())
}

func TestSetAPIKey(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()

	cfg, err := Load(viper.New(), "", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), cfg.File())

	require.NoError(t, cfg.SetAPIKey("OpenRouter", "sk-123"))
	assert.FileExists(t, filepath.Join(dir, FileName))

	reloaded, err := Load(viper.New(), "", dir)
	require.NoError(t, err)
	assert.Equal(t, "sk-123", reloaded.ServiceConfig("openrouter").APIKey)

	require.NoError(t, reloaded.DeleteAPIKey("openrouter"))
	again, err := Load(viper.New(), "", dir)
	require.NoError(t, err)
	assert.Empty(t, again.ServiceConfig("openrouter").APIKey)

	assert.ErrorIs(t, cfg.SetAPIKey("deepl", "x"), translator.ErrUnknownProvider)
}
