package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "deepseek", cfg.LLMProvider)
	assert.Equal(t, 1, cfg.MaxDebateRounds)
	assert.Equal(t, 1, cfg.MaxRiskDiscussRounds)
	assert.Equal(t, 6, cfg.MaxToolRounds)
	assert.Equal(t, 2, cfg.MemoryMatches)
	assert.True(t, cfg.OnlineTools)
	assert.True(t, cfg.CacheEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("MAX_DEBATE_ROUNDS", "3")
	t.Setenv("ONLINE_TOOLS", "false")
	t.Setenv("FINNHUB_API_KEY", "fh-key")

	cfg := DefaultConfig()
	cfg.applyEnv()

	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, 3, cfg.MaxDebateRounds)
	assert.False(t, cfg.OnlineTools)
	assert.Equal(t, "fh-key", cfg.FinnhubAPIKey)
}

func TestApplyEnvIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("MAX_DEBATE_ROUNDS", "zero")
	t.Setenv("MEMORY_MATCHES", "-4")

	cfg := DefaultConfig()
	cfg.applyEnv()

	assert.Equal(t, 1, cfg.MaxDebateRounds)
	assert.Equal(t, 2, cfg.MemoryMatches)
}

func TestValidateRejectsBadBudgets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDebateRounds = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.MaxToolRounds = 0
	assert.Error(t, cfg.Validate())
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.ResultsDir = filepath.Join(dir, "results")
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.DataCacheDir = filepath.Join(dir, "data", "cache")
	cfg.MemoryDir = filepath.Join(dir, "data", "memory")

	require.NoError(t, cfg.EnsureDirectories())

	for _, p := range []string{
		cfg.ResultsDir,
		cfg.MemoryDir,
		filepath.Join(cfg.DataDir, "market_data", "price_data"),
		filepath.Join(cfg.DataDir, "finnhub_data", "news_data"),
	} {
		info, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.True(t, info.IsDir())
	}
}
