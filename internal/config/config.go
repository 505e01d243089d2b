package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LLMConfig holds summarizer provider configuration
type LLMConfig struct {
	Provider string `yaml:"provider"` // "openrouter", "openai", "ollama", or any OpenAI-compatible
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"` // custom endpoint; defaults per provider
	Model    string `yaml:"model"`    // defaults per provider
}

// KarakeepConfig holds settings for the one-shot bookmark export
type KarakeepConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// Config holds application configuration
type Config struct {
	ReadwiseToken   string         `yaml:"readwise_token"`
	LLM             LLMConfig      `yaml:"llm"`
	Karakeep        KarakeepConfig `yaml:"karakeep"`
	DataDir         string         `yaml:"data_dir"`
	Port            int            `yaml:"port"`
	SyncIntervalMin int            `yaml:"sync_interval_minutes"`
}

// GetLLMConfig returns the effective LLM configuration with environment
// variables applied on top of the config file values.
func (c *Config) GetLLMConfig() LLMConfig {
	llm := c.LLM

	if key := os.Getenv("LLM_API_KEY"); key != "" {
		llm.APIKey = key
	}
	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		llm.Provider = provider
	}
	if baseURL := os.Getenv("LLM_BASE_URL"); baseURL != "" {
		llm.BaseURL = baseURL
	}
	if model := os.Getenv("LLM_MODEL"); model != "" {
		llm.Model = model
	}

	// OPENROUTER_API_KEY is the historical way to configure the summarizer
	if llm.APIKey == "" {
		if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
			llm.APIKey = key
			if llm.Provider == "" {
				llm.Provider = "openrouter"
			}
		}
	}

	return llm
}

// Load loads configuration from config file and environment variables
// Environment variables take precedence over config file values
func Load() (*Config, error) {
	cfg := &Config{
		Port:            3141,
		SyncIntervalMin: 30,
	}

	if err := cfg.loadFromFile(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	cfg.loadFromEnv()

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine data directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".local", "share", "skim")
	}

	return cfg, nil
}

func (c *Config) loadFromFile() error {
	configPath := getConfigPath()
	if configPath == "" {
		return os.ErrNotExist
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if token := os.Getenv("READWISE_TOKEN"); token != "" {
		c.ReadwiseToken = token
	}
	if key := os.Getenv("KARAKEEP_API_KEY"); key != "" {
		c.Karakeep.APIKey = key
	}
	if url := os.Getenv("KARAKEEP_URL"); url != "" {
		c.Karakeep.BaseURL = url
	}
	if dir := os.Getenv("SKIM_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
	if portStr := os.Getenv("PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			c.Port = p
		}
	}
	if minStr := os.Getenv("SYNC_INTERVAL_MINUTES"); minStr != "" {
		if m, err := strconv.Atoi(minStr); err == nil && m > 0 {
			c.SyncIntervalMin = m
		}
	}
}

// getConfigPath returns the path to the config file
// Priority: $SKIM_CONFIG > ~/.config/skim/config.yaml
func getConfigPath() string {
	if configPath := os.Getenv("SKIM_CONFIG"); configPath != "" {
		return configPath
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "skim", "config.yaml")
}

// DBPath returns the location of the library database.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "skim.db")
}

// ImportDBPath returns the location of the Karakeep import tracking
// database, kept separate so the export never writes to the library file.
func (c *Config) ImportDBPath() string {
	return filepath.Join(c.DataDir, "imports.db")
}

// EnsureDataDir creates the data directory if needed.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0755)
}

// SaveExampleConfig creates an example config file
func SaveExampleConfig() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	configDir := filepath.Join(home, ".config", "skim")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.yaml")

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return nil // Already exists, don't overwrite
	}

	example := `# skim configuration
# Get your Readwise token at: https://readwise.io/access_token

# Required: Your Readwise API token
readwise_token: "your_token_here"

# Optional: LLM configuration for article summaries
# Supports any OpenAI-compatible API: openrouter, openai, ollama, etc.
# Environment variables LLM_API_KEY, LLM_PROVIDER, LLM_BASE_URL, LLM_MODEL also work.
llm:
  provider: "openrouter"
  api_key: ""
  # base_url: ""           # override endpoint (defaults per provider)
  # model: ""              # override model (defaults per provider)

# Optional: Karakeep export target (skim import)
karakeep:
  base_url: ""
  api_key: ""

# Optional: HTTP port for skim serve (default: 3141)
port: 3141

# Optional: background sync interval in minutes (default: 30)
sync_interval_minutes: 30
`

	return os.WriteFile(configPath, []byte(example), 0600)
}
