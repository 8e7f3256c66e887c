package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/codefionn/codeflink/internal/consts"
)

// ProviderConfig describes a single LLM backend
type ProviderConfig struct {
	Enabled           bool    `json:"enabled" yaml:"enabled"`
	Model             string  `json:"model" yaml:"model"`
	BaseURL           string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKey            string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	TimeoutSeconds    int     `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
	Temperature       float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens         int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	RequestsPerMinute int     `json:"requests_per_minute,omitempty" yaml:"requests_per_minute,omitempty"`
	RequestsPerDay    int     `json:"requests_per_day,omitempty" yaml:"requests_per_day,omitempty"`
}

// Config represents application configuration
type Config struct {
	WorkingDir      string                     `json:"working_dir" yaml:"working_dir"`
	CacheTTL        int                        `json:"cache_ttl_seconds" yaml:"cache_ttl_seconds"`
	MaxCacheEntries int                        `json:"max_cache_entries" yaml:"max_cache_entries"`
	LogLevel        string                     `json:"log_level" yaml:"log_level"`
	LogPath         string                     `json:"-" yaml:"-"`
	HistoryPath     string                     `json:"history_path,omitempty" yaml:"history_path,omitempty"`
	Providers       map[string]*ProviderConfig `json:"providers" yaml:"providers"`
	Strategies      map[string][]string        `json:"strategies" yaml:"strategies"`
}

func defaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appData := strings.TrimSpace(os.Getenv("APPDATA")); appData != "" {
			return filepath.Join(appData, "codeflink")
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "AppData", "Roaming", "codeflink")
	default:
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".config", "codeflink")
	}
}

func defaultStateDir() string {
	switch runtime.GOOS {
	case "linux":
		if stateHome := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); stateHome != "" {
			return filepath.Join(stateHome, "codeflink")
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".local", "state", "codeflink")
	case "windows":
		if localAppData := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); localAppData != "" {
			return filepath.Join(localAppData, "codeflink")
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "AppData", "Local", "codeflink")
	default:
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".config", "codeflink")
	}
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	stateDir := defaultStateDir()

	return &Config{
		WorkingDir:      ".",
		CacheTTL:        int(consts.DefaultCacheTTL.Seconds()),
		MaxCacheEntries: consts.DefaultCacheEntries,
		LogLevel:        "info",
		LogPath:         filepath.Join(stateDir, "codeflink.log"),
		HistoryPath:     filepath.Join(stateDir, "history.db"),
		Providers: map[string]*ProviderConfig{
			"ollama": {
				Enabled:        true,
				Model:          "llama3.2",
				BaseURL:        "http://localhost:11434",
				TimeoutSeconds: 300,
			},
			"groq": {
				Model:          "llama-3.3-70b-versatile",
				TimeoutSeconds: 60,
			},
			"together": {
				Model:          "meta-llama/Meta-Llama-3.1-70B-Instruct-Turbo",
				TimeoutSeconds: 60,
			},
		},
		Strategies: map[string][]string{
			"simple":          {"ollama"},
			"complex":         {"groq", "ollama"},
			"code_generation": {"groq", "together", "ollama"},
		},
	}
}

// Load loads configuration from file, merging over defaults.
// JSON and YAML files are supported, selected by extension.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.WorkingDir == "" {
		c.WorkingDir = "."
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = int(consts.DefaultCacheTTL.Seconds())
	}
	if c.MaxCacheEntries <= 0 {
		c.MaxCacheEntries = consts.DefaultCacheEntries
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogPath == "" {
		c.LogPath = filepath.Join(defaultStateDir(), "codeflink.log")
	}
	if c.Providers == nil {
		c.Providers = make(map[string]*ProviderConfig)
	}
	if c.Strategies == nil {
		c.Strategies = make(map[string][]string)
	}
}

// Save saves configuration to file as JSON
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetConfigPath returns the default config path
func GetConfigPath() string {
	return filepath.Join(defaultConfigDir(), "config.json")
}
