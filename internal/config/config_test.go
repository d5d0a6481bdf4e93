package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
	t.Setenv("HOME", dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 5, cfg.Search.Limit)
	assert.Equal(t, "google", cfg.Search.Engine)
	assert.Equal(t, 200, cfg.Summarize.MaxWords)
	assert.Equal(t, 130, cfg.Summarize.MaxLength)
	assert.Equal(t, 30, cfg.Summarize.MinLength)
	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout())
	assert.Equal(t, DefaultUserAgent, cfg.Fetch.UserAgent)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_DeploymentEnvNames(t *testing.T) {
	chdirTemp(t)
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("GEMINI_MODEL", "gemini-2.0-flash")
	t.Setenv("SERPAPI_URL", "https://serp.example/search")
	t.Setenv("SERPAPI_API_KEY", "serp-key")
	t.Setenv("SUMMARIZATION_MODEL", "facebook/bart-large-cnn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gem-key", cfg.LLM.APIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, "https://serp.example/search", cfg.Search.URL)
	assert.Equal(t, "serp-key", cfg.Search.APIKey)
	assert.Equal(t, "facebook/bart-large-cnn", cfg.Summarize.Model)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PrefixedEnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SPORTCHECK_SEARCH_LIMIT", "3")
	t.Setenv("SPORTCHECK_LLM_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Search.Limit)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	yaml := `
llm:
  model: gemini-1.5-pro
summarize:
  workers: 4
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-pro", cfg.LLM.Model)
	assert.Equal(t, 4, cfg.Summarize.Workers)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SERPAPI_API_KEY=from-dotenv\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("SERPAPI_API_KEY") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Search.APIKey)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	chdirTemp(t)
	_, err := Load("/nonexistent/sportcheck.yaml")
	assert.Error(t, err)
}

func TestValidate_ListsMissing(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	for _, key := range []string{"llm.api_key", "llm.model", "search.api_key", "summarize.model"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestValidate_OllamaNeedsNoKey(t *testing.T) {
	cfg := Default()
	cfg.LLM.Provider = "ollama"
	cfg.LLM.Model = "llama3.1:8b"
	cfg.Search.APIKey = "k"
	cfg.Summarize.Backend = "llm"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_UnknownBackend(t *testing.T) {
	cfg := Default()
	cfg.LLM.APIKey = "k"
	cfg.LLM.Model = "m"
	cfg.Search.APIKey = "k"
	cfg.Summarize.Backend = "magic"
	assert.Error(t, cfg.Validate())
}

func TestValidate_BackendAliases(t *testing.T) {
	for _, backend := range []string{"", "hf", "huggingface", "LLM"} {
		cfg := Default()
		cfg.LLM.APIKey = "k"
		cfg.LLM.Model = "m"
		cfg.Search.APIKey = "k"
		cfg.Summarize.Backend = backend
		cfg.Summarize.Model = "facebook/bart-large-cnn"
		assert.NoError(t, cfg.Validate(), backend)
	}

	cfg := Default()
	cfg.LLM.APIKey = "k"
	cfg.LLM.Model = "m"
	cfg.Search.APIKey = "k"
	cfg.Summarize.Backend = "hf"
	cfg.Summarize.Model = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summarize.model")
}

func TestExtractionModelName(t *testing.T) {
	c := LLMConfig{Model: "gemini-1.5-pro"}
	assert.Equal(t, "gemini-1.5-pro", c.ExtractionModelName())
	c.ExtractionModel = "gemini-2.0-flash-001"
	assert.Equal(t, "gemini-2.0-flash-001", c.ExtractionModelName())
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.LLM.APIKey = "secret-abcd"
	cfg.Search.APIKey = "xy"
	r := cfg.Redacted()
	assert.Equal(t, "****abcd", r.LLM.APIKey)
	assert.Equal(t, "****", r.Search.APIKey)
	assert.Equal(t, "secret-abcd", cfg.LLM.APIKey)
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.Error(t, InitLogger(LogConfig{Level: "loud", Format: "json"}))
}
