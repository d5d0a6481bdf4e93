// Package config loads sportcheck settings from defaults, a YAML file,
// a .env file and the environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// EnvPrefix is prepended to every config key when read from the environment
const EnvPrefix = "SPORTCHECK"

// Config holds the full application configuration.
type Config struct {
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Summarize SummarizeConfig `yaml:"summarize" mapstructure:"summarize"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`

	// File is the config file that was read, empty when none was found
	File string `yaml:"-" mapstructure:"-"`
}

// LLMConfig selects the language model used for entity extraction and verdicts.
type LLMConfig struct {
	Provider        string  `yaml:"provider" mapstructure:"provider"` // gemini, openai, anthropic, ollama
	Model           string  `yaml:"model" mapstructure:"model"`
	ExtractionModel string  `yaml:"extraction_model" mapstructure:"extraction_model"` // Falls back to Model
	APIKey          string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL         string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs     int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxTokens       int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature     float64 `yaml:"temperature" mapstructure:"temperature"`
}

// SearchConfig configures the SerpAPI-compatible search endpoint.
type SearchConfig struct {
	URL         string `yaml:"url" mapstructure:"url"`
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
	Engine      string `yaml:"engine" mapstructure:"engine"`
	Limit       int    `yaml:"limit" mapstructure:"limit"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// SummarizeConfig configures evidence summarization.
type SummarizeConfig struct {
	Backend       string `yaml:"backend" mapstructure:"backend"` // huggingface or llm
	Model         string `yaml:"model" mapstructure:"model"`
	APIKey        string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	MaxWords      int    `yaml:"max_words" mapstructure:"max_words"`
	MaxLength     int    `yaml:"max_length" mapstructure:"max_length"`
	MinLength     int    `yaml:"min_length" mapstructure:"min_length"`
	MaxInputWords int    `yaml:"max_input_words" mapstructure:"max_input_words"`
	Workers       int    `yaml:"workers" mapstructure:"workers"`
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// FetchConfig configures evidence page downloads.
type FetchConfig struct {
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent         string  `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes      int64   `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots     bool    `yaml:"respect_robots" mapstructure:"respect_robots"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
	HTTPProxy         string  `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy        string  `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy           string  `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// CacheConfig configures the extracted page text cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	TTLMinutes int    `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
	Dir        string `yaml:"dir" mapstructure:"dir"` // Adds a disk layer when set
	MaxEntries int    `yaml:"max_entries" mapstructure:"max_entries"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
}

// DefaultUserAgent mimics a desktop browser; many sports sites reject bare clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Timeout returns the LLM request timeout.
func (c LLMConfig) Timeout() time.Duration { return secs(c.TimeoutSecs) }

// Timeout returns the search request timeout.
func (c SearchConfig) Timeout() time.Duration { return secs(c.TimeoutSecs) }

// Timeout returns the summarization request timeout.
func (c SummarizeConfig) Timeout() time.Duration { return secs(c.TimeoutSecs) }

// Summarization backends
const (
	BackendHuggingFace = "huggingface"
	BackendLLM         = "llm"
)

// BackendName resolves aliases: "" and "hf" mean huggingface.
func (c SummarizeConfig) BackendName() string {
	switch b := strings.ToLower(strings.TrimSpace(c.Backend)); b {
	case "", "hf":
		return BackendHuggingFace
	default:
		return b
	}
}

// Timeout returns the page fetch timeout.
func (c FetchConfig) Timeout() time.Duration { return secs(c.TimeoutSecs) }

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration { return time.Duration(c.TTLMinutes) * time.Minute }

func secs(n int) time.Duration { return time.Duration(n) * time.Second }

var defaults = map[string]any{
	"llm.provider":              "gemini",
	"llm.model":                 "",
	"llm.extraction_model":      "",
	"llm.api_key":               "",
	"llm.base_url":              "",
	"llm.timeout_secs":          30,
	"llm.max_tokens":            1024,
	"llm.temperature":           0.2,
	"search.url":                "https://serpapi.com/search.json",
	"search.api_key":            "",
	"search.engine":             "google",
	"search.limit":              5,
	"search.timeout_secs":       15,
	"summarize.backend":         "huggingface",
	"summarize.model":           "",
	"summarize.api_key":         "",
	"summarize.base_url":        "https://api-inference.huggingface.co/models",
	"summarize.max_words":       200,
	"summarize.max_length":      130,
	"summarize.min_length":      30,
	"summarize.max_input_words": 700,
	"summarize.workers":         1,
	"summarize.timeout_secs":    30,
	"fetch.timeout_secs":        10,
	"fetch.user_agent":          DefaultUserAgent,
	"fetch.max_body_bytes":      2_000_000,
	"fetch.respect_robots":      true,
	"fetch.requests_per_second": 2.0,
	"fetch.burst":               5,
	"fetch.http_proxy":          "",
	"fetch.https_proxy":         "",
	"fetch.no_proxy":            "",
	"cache.enabled":             true,
	"cache.ttl_minutes":         60,
	"cache.dir":                 "",
	"cache.max_entries":         500,
	"server.port":               8000,
	"server.allowed_origins":    []string{"*"},
	"log.level":                 "info",
	"log.format":                "json",
}

// Deployment variable names accepted alongside the SPORTCHECK_ prefixed ones.
var envAliases = map[string][]string{
	"llm.model":         {"GEMINI_MODEL"},
	"llm.base_url":      {"OLLAMA_BASE_URL"},
	"search.url":        {"SERPAPI_URL"},
	"search.api_key":    {"SERPAPI_API_KEY"},
	"summarize.model":   {"SUMMARIZATION_MODEL"},
	"summarize.api_key": {"HF_API_TOKEN"},
}

// providerKeyEnv names the API key variable used when llm.api_key is unset.
var providerKeyEnv = map[string]string{
	"gemini":    "GEMINI_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// Default returns the configuration with built-in defaults only.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads configuration. An explicit path must exist; otherwise
// ./config.yaml and $HOME/.sportcheck/config.yaml are tried.
// A .env file in the working directory is applied to the environment first.
func Load(path string) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".sportcheck"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	for key, names := range envAliases {
		args := append([]string{key, EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	file := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	} else {
		file = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	cfg.File = file

	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	if cfg.LLM.APIKey == "" {
		if name, ok := providerKeyEnv[cfg.LLM.Provider]; ok {
			cfg.LLM.APIKey = os.Getenv(name)
		}
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
}

// Validate reports every missing required setting at once.
func (c *Config) Validate() error {
	var missing []string

	if c.LLM.Provider != "ollama" && c.LLM.APIKey == "" {
		missing = append(missing, "llm.api_key")
	}
	if c.LLM.Model == "" {
		missing = append(missing, "llm.model")
	}
	if c.Search.URL == "" {
		missing = append(missing, "search.url")
	}
	if c.Search.APIKey == "" {
		missing = append(missing, "search.api_key")
	}
	if c.Summarize.BackendName() == BackendHuggingFace && c.Summarize.Model == "" {
		missing = append(missing, "summarize.model")
	}

	if len(missing) > 0 {
		return eris.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}

	switch c.Summarize.BackendName() {
	case BackendHuggingFace, BackendLLM:
	default:
		return eris.Errorf("config: unknown summarize.backend %q (supported: huggingface, llm)", c.Summarize.Backend)
	}
	return nil
}

// ExtractionModelName returns the model used for entity extraction.
func (c LLMConfig) ExtractionModelName() string {
	if c.ExtractionModel != "" {
		return c.ExtractionModel
	}
	return c.Model
}

// Redacted returns a copy with secrets masked, for display.
func (c Config) Redacted() Config {
	c.LLM.APIKey = mask(c.LLM.APIKey)
	c.Search.APIKey = mask(c.Search.APIKey)
	c.Summarize.APIKey = mask(c.Summarize.APIKey)
	return c
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
