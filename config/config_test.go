package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"LLM_API_KEY", "LLM_API_BASE", "LLM_MODEL", "LLM_MAX_TOKENS", "LLM_TEMPERATURE", "DB_NAME", "PORT"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "intranet_db", cfg.MySQL.Database)
	assert.Equal(t, DefaultAPIBase, cfg.LLM.APIBase)
	assert.Equal(t, DefaultModel, cfg.LLM.Model)
	assert.Equal(t, 2000, cfg.LLM.MaxTokens)
	assert.InDelta(t, DefaultTemperature, cfg.LLM.TemperatureValue(), 1e-9)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 5, cfg.Chat.MaxIterations)
	assert.Equal(t, 12000, cfg.Chat.MaxTokens)
	assert.Equal(t, 20, cfg.Chat.KeepRecent)
	assert.Equal(t, 3, cfg.Chat.MinMessages)
	assert.Equal(t, 4, cfg.Chat.TokenDivisor)
	assert.Equal(t, 60000, cfg.Chat.MaxContentLength)
	assert.False(t, cfg.LLM.Configured())
}

func TestLoadYAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "9000"
llm:
  model: gpt-5.1
  reasoning_effort: none
chat:
  max_iterations: 3
  serialize_sessions: true
report:
  timeout: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	clearEnv(t)
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("LLM_MAX_TOKENS", "512")
	t.Setenv("DB_NAME", "portal")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "gpt-5.1", cfg.LLM.Model)
	assert.Equal(t, "none", cfg.LLM.ReasoningEffort)
	assert.Equal(t, 512, cfg.LLM.MaxTokens)
	assert.True(t, cfg.LLM.Configured())
	assert.Equal(t, "portal", cfg.MySQL.Database)
	assert.Equal(t, 3, cfg.Chat.MaxIterations)
	assert.True(t, cfg.Chat.SerializeSessions)
	assert.Equal(t, 30*time.Second, cfg.Report.Timeout)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [broken"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_MAX_TOKENS", "lots")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.LLM.MaxTokens)
}

func TestLoadKeepsZeroTemperature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  temperature: 0\n"), 0o600))
	clearEnv(t)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.LLM.Temperature)
	assert.Zero(t, cfg.LLM.TemperatureValue())

	t.Setenv("LLM_TEMPERATURE", "0.2")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, cfg.LLM.TemperatureValue(), 1e-9)
}

func TestChatConfigDefaultsReplaceNonPositive(t *testing.T) {
	cfg := ChatConfig{
		MaxIterations: -1,
		MaxTokens:     -5,
		KeepRecent:    -1,
		MinMessages:   -3,
		TokenDivisor:  -4,
		HistoryLimit:  -10,
	}.WithDefaults()

	assert.Equal(t, 5, cfg.MaxIterations)
	assert.Equal(t, 12000, cfg.MaxTokens)
	assert.Equal(t, 20, cfg.KeepRecent)
	assert.Equal(t, 3, cfg.MinMessages)
	assert.Equal(t, 4, cfg.TokenDivisor)
	assert.Equal(t, 100, cfg.HistoryLimit)
}
