package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries every knob for one trading run. It is constructed once at
// process start and passed by reference into the graph and every data client;
// there is no package-level singleton.
type Config struct {
	ProjectDir   string `json:"project_dir"`
	ResultsDir   string `json:"results_dir"`
	DataDir      string `json:"data_dir"`
	DataCacheDir string `json:"data_cache_dir"`
	MemoryDir    string `json:"memory_dir"`

	LLMProvider    string `json:"llm_provider"`
	DeepThinkLLM   string `json:"deep_think_llm"`
	QuickThinkLLM  string `json:"quick_think_llm"`
	EmbeddingModel string `json:"embedding_model"`
	BackendURL     string `json:"backend_url"`

	MaxDebateRounds      int `json:"max_debate_rounds"`
	MaxRiskDiscussRounds int `json:"max_risk_discuss_rounds"`
	MaxToolRounds        int `json:"max_tool_rounds"`
	MemoryMatches        int `json:"memory_matches"`

	OnlineTools bool `json:"online_tools"`
	Debug       bool `json:"debug"`

	// Eino visual debug server
	EinoDebugEnabled bool `json:"eino_debug_enabled"`
	EinoDebugPort    int  `json:"eino_debug_port"`

	CacheEnabled bool `json:"cache_enabled"`

	// Data source credentials
	FinnhubAPIKey       string `json:"finnhub_api_key"`
	LongportAppKey      string `json:"longport_app_key"`
	LongportAppSecret   string `json:"longport_app_secret"`
	LongportAccessToken string `json:"longport_access_token"`

	// Model provider credentials
	OpenAIAPIKey   string `json:"openai_api_key"`
	DeepSeekAPIKey string `json:"deepseek_api_key"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	return &Config{
		ProjectDir:   currentDir,
		ResultsDir:   filepath.Join(currentDir, "results"),
		DataDir:      filepath.Join(currentDir, "data"),
		DataCacheDir: filepath.Join(currentDir, "data", "cache"),
		MemoryDir:    filepath.Join(currentDir, "data", "memory"),

		LLMProvider:    "deepseek",
		DeepThinkLLM:   "deepseek-reasoner",
		QuickThinkLLM:  "deepseek-chat",
		EmbeddingModel: "text-embedding-3-small",
		BackendURL:     "https://api.deepseek.com/v1",

		MaxDebateRounds:      1,
		MaxRiskDiscussRounds: 1,
		MaxToolRounds:        6,
		MemoryMatches:        2,

		OnlineTools: true,
		Debug:       false,

		EinoDebugEnabled: false,
		EinoDebugPort:    52538,

		CacheEnabled: true,
	}
}

// Load builds a Config from defaults, an optional .env file and the process
// environment. Missing .env is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TRADINGAGENTS_RESULTS_DIR"); v != "" {
		c.ResultsDir = v
	}
	if v := os.Getenv("TRADINGAGENTS_DATA_DIR"); v != "" {
		c.DataDir = v
		c.DataCacheDir = filepath.Join(v, "cache")
		c.MemoryDir = filepath.Join(v, "memory")
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLMProvider = strings.ToLower(v)
	}
	if v := os.Getenv("DEEP_THINK_LLM"); v != "" {
		c.DeepThinkLLM = v
	}
	if v := os.Getenv("QUICK_THINK_LLM"); v != "" {
		c.QuickThinkLLM = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		c.EmbeddingModel = v
	}
	if v := os.Getenv("BACKEND_URL"); v != "" {
		c.BackendURL = v
	}
	if v, err := strconv.Atoi(os.Getenv("MAX_DEBATE_ROUNDS")); err == nil && v > 0 {
		c.MaxDebateRounds = v
	}
	if v, err := strconv.Atoi(os.Getenv("MAX_RISK_DISCUSS_ROUNDS")); err == nil && v > 0 {
		c.MaxRiskDiscussRounds = v
	}
	if v, err := strconv.Atoi(os.Getenv("MAX_TOOL_ROUNDS")); err == nil && v > 0 {
		c.MaxToolRounds = v
	}
	if v, err := strconv.Atoi(os.Getenv("MEMORY_MATCHES")); err == nil && v > 0 {
		c.MemoryMatches = v
	}
	if v := os.Getenv("ONLINE_TOOLS"); v != "" {
		c.OnlineTools = parseBool(v)
	}
	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		c.CacheEnabled = parseBool(v)
	}
	if v := os.Getenv("DEBUG"); v != "" {
		c.Debug = parseBool(v)
	}
	if v := os.Getenv("EINO_DEBUG_ENABLED"); v != "" {
		c.EinoDebugEnabled = parseBool(v)
	}

	c.FinnhubAPIKey = envOr("FINNHUB_API_KEY", c.FinnhubAPIKey)
	c.LongportAppKey = envOr("LONGPORT_APP_KEY", c.LongportAppKey)
	c.LongportAppSecret = envOr("LONGPORT_APP_SECRET", c.LongportAppSecret)
	c.LongportAccessToken = envOr("LONGPORT_ACCESS_TOKEN", c.LongportAccessToken)
	c.OpenAIAPIKey = envOr("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.DeepSeekAPIKey = envOr("DEEPSEEK_API_KEY", c.DeepSeekAPIKey)
}

// Validate checks round budgets. Credentials are checked lazily by the
// clients that need them so offline runs stay possible.
func (c *Config) Validate() error {
	if c.MaxDebateRounds < 1 {
		return fmt.Errorf("max_debate_rounds must be >= 1, got %d", c.MaxDebateRounds)
	}
	if c.MaxRiskDiscussRounds < 1 {
		return fmt.Errorf("max_risk_discuss_rounds must be >= 1, got %d", c.MaxRiskDiscussRounds)
	}
	if c.MaxToolRounds < 1 {
		return fmt.Errorf("max_tool_rounds must be >= 1, got %d", c.MaxToolRounds)
	}
	if c.MemoryMatches < 1 {
		return fmt.Errorf("memory_matches must be >= 1, got %d", c.MemoryMatches)
	}
	return nil
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ResultsDir, c.DataDir, c.DataCacheDir, c.MemoryDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	dataSubdirs := []string{
		"market_data/price_data",
		"finnhub_data/news_data",
		"finnhub_data/insider_senti",
		"finnhub_data/insider_trans",
		"news_data",
		"fundamental_data",
	}
	for _, subdir := range dataSubdirs {
		if err := os.MkdirAll(filepath.Join(c.DataDir, subdir), 0755); err != nil {
			return err
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
