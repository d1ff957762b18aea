// Package config loads and persists diffscope configuration: YAML file,
// environment overrides, .env files, and OS-keychain credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all settings.
type Config struct {
	AI       AIConfig       `yaml:"ai" mapstructure:"ai"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	History  HistoryConfig  `yaml:"history" mapstructure:"history"`
	GitHub   GitHubConfig   `yaml:"github" mapstructure:"github"`
}

// AIConfig configures the completion provider.
type AIConfig struct {
	Enabled           bool          `yaml:"enabled" mapstructure:"enabled"`
	Provider          string        `yaml:"provider" mapstructure:"provider"` // "openai", "gemini", "none"
	OpenAIKey         string        `yaml:"openai_key,omitempty" mapstructure:"openai_key"`
	OpenAIModel       string        `yaml:"openai_model" mapstructure:"openai_model"`
	GeminiKey         string        `yaml:"gemini_key,omitempty" mapstructure:"gemini_key"`
	GeminiModel       string        `yaml:"gemini_model" mapstructure:"gemini_model"`
	UseKeychain       bool          `yaml:"use_keychain" mapstructure:"use_keychain"`
	RequestsPerMinute int           `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	CacheDir          string        `yaml:"cache_dir" mapstructure:"cache_dir"`
	CacheTTL          time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// AnalysisConfig exposes the boundary-engine knobs that are deliberately
// configurable rather than hard-coded.
type AnalysisConfig struct {
	// AIGateBoundaries: provider proposals with more boundaries than this
	// are always trusted.
	AIGateBoundaries int `yaml:"ai_gate_boundaries" mapstructure:"ai_gate_boundaries"`
	// AIGateFiles: changesets larger than this trust even a
	// single-boundary proposal.
	AIGateFiles int `yaml:"ai_gate_files" mapstructure:"ai_gate_files"`
}

// HistoryConfig configures run persistence.
type HistoryConfig struct {
	Backend     string `yaml:"backend" mapstructure:"backend"` // "sqlite", "postgres"
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn,omitempty" mapstructure:"postgres_dsn"`
}

// GitHubConfig configures the PR context client.
type GitHubConfig struct {
	Token     string `yaml:"token,omitempty" mapstructure:"token"`
	RateLimit int    `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second
}

// Dir returns the diffscope home directory.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".diffscope")
}

// DefaultPath is where Save writes when no path is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		AI: AIConfig{
			Enabled:           true,
			Provider:          "none",
			OpenAIModel:       "gpt-4o-mini",
			GeminiModel:       "gemini-2.0-flash",
			UseKeychain:       true,
			RequestsPerMinute: 30,
			CacheDir:          filepath.Join(Dir(), "cache"),
			CacheTTL:          24 * time.Hour,
		},
		Analysis: AnalysisConfig{
			AIGateBoundaries: 1,
			AIGateFiles:      8,
		},
		History: HistoryConfig{
			Backend:    "sqlite",
			SQLitePath: filepath.Join(Dir(), "history.db"),
		},
		GitHub: GitHubConfig{
			RateLimit: 10,
		},
	}
}

// Load reads configuration from path (or the standard locations when
// empty), applies repo-local overrides and environment variables.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("DIFFSCOPE")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(Dir())
		v.AddConfigPath(".diffscope")
	}

	cfg := Default()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
		// Missing config is fine, defaults apply.
	} else if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := applyRepoOverrides(cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	resolveCredentials(cfg)
	return cfg, nil
}

// loadEnvFiles loads .env files in order of precedence. Missing files
// are ignored.
func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}
	homeEnv := filepath.Join(Dir(), ".env")
	if _, err := os.Stat(homeEnv); err == nil {
		godotenv.Load(homeEnv)
	}
}

// repoOverride is the subset of settings a repository may pin in a
// .diffscope.yaml at its root.
type repoOverride struct {
	AI *struct {
		Enabled  *bool  `yaml:"enabled"`
		Provider string `yaml:"provider"`
	} `yaml:"ai"`
	Analysis *struct {
		AIGateBoundaries *int `yaml:"ai_gate_boundaries"`
		AIGateFiles      *int `yaml:"ai_gate_files"`
	} `yaml:"analysis"`
}

// applyRepoOverrides merges .diffscope.yaml from the current directory,
// letting a repo disable AI or tune the gate for everyone who clones it.
func applyRepoOverrides(cfg *Config) error {
	raw, err := os.ReadFile(".diffscope.yaml")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read .diffscope.yaml: %w", err)
	}

	var o repoOverride
	if err := yaml.Unmarshal(raw, &o); err != nil {
		return fmt.Errorf("parse .diffscope.yaml: %w", err)
	}
	if o.AI != nil {
		if o.AI.Enabled != nil {
			cfg.AI.Enabled = *o.AI.Enabled
		}
		if o.AI.Provider != "" {
			cfg.AI.Provider = o.AI.Provider
		}
	}
	if o.Analysis != nil {
		if o.Analysis.AIGateBoundaries != nil {
			cfg.Analysis.AIGateBoundaries = *o.Analysis.AIGateBoundaries
		}
		if o.Analysis.AIGateFiles != nil {
			cfg.Analysis.AIGateFiles = *o.Analysis.AIGateFiles
		}
	}
	return nil
}

// applyEnvOverrides applies plain environment variables on top of the
// file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DIFFSCOPE_PROVIDER"); v != "" {
		cfg.AI.Provider = v
	}
	if v := os.Getenv("DIFFSCOPE_NO_AI"); v == "1" || v == "true" {
		cfg.AI.Enabled = false
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.OpenAIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.AI.OpenAIModel = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.AI.GeminiKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.AI.GeminiModel = v
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.GitHub.Token = v
	}
	if v := os.Getenv("DIFFSCOPE_POSTGRES_DSN"); v != "" {
		cfg.History.Backend = "postgres"
		cfg.History.PostgresDSN = v
	}
	if v := os.Getenv("DIFFSCOPE_RPM"); v != "" {
		if rpm, err := strconv.Atoi(v); err == nil {
			cfg.AI.RequestsPerMinute = rpm
		}
	}
}

// resolveCredentials fills missing API keys from the OS keychain.
// Precedence: environment > config file > keychain.
func resolveCredentials(cfg *Config) {
	if !cfg.AI.UseKeychain {
		return
	}
	km := NewKeyringManager()
	if !km.Available() {
		return
	}
	if cfg.AI.OpenAIKey == "" {
		if key, err := km.Get(KeyOpenAI); err == nil && key != "" {
			cfg.AI.OpenAIKey = key
		}
	}
	if cfg.AI.GeminiKey == "" {
		if key, err := km.Get(KeyGemini); err == nil && key != "" {
			cfg.AI.GeminiKey = key
		}
	}
}

// Save writes the configuration as YAML. API keys stored in the keychain
// are stripped first so they never land on disk.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	out := *c
	if out.AI.UseKeychain {
		out.AI.OpenAIKey = ""
		out.AI.GeminiKey = ""
	}
	raw, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// MaskAPIKey renders a key safe for display: first 4 and last 4
// characters with the middle elided.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
