package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bitrise-io/docs-ai-assistant/logger"
	"gopkg.in/yaml.v3"
)

const (
	StoreDriverMemory   = "memory"
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
	StoreDriverGitHub   = "github"
)

// settingsFilenames are probed in the working directory when no explicit path is given.
var settingsFilenames = []string{"docs-ai.yml", "docs-ai.yaml", "docs-ai.toml"}

type LLMSettings struct {
	Provider       string  `yaml:"provider" toml:"provider"`
	Model          string  `yaml:"model" toml:"model"`
	MaxTokens      int     `yaml:"max_tokens" toml:"max_tokens"`
	TimeoutSeconds int     `yaml:"timeout_seconds" toml:"timeout_seconds"`
	BaseURL        string  `yaml:"base_url" toml:"base_url"`
	Temperature    float64 `yaml:"temperature" toml:"temperature"`
}

type RetrySettings struct {
	Max            int `yaml:"max" toml:"max"`
	WaitMinSeconds int `yaml:"wait_min_seconds" toml:"wait_min_seconds"`
	WaitMaxSeconds int `yaml:"wait_max_seconds" toml:"wait_max_seconds"`
}

type ServerSettings struct {
	Addr                  string `yaml:"addr" toml:"addr"`
	RequestsPerSecond     int    `yaml:"requests_per_second" toml:"requests_per_second"`
	Burst                 int    `yaml:"burst" toml:"burst"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds" toml:"request_timeout_seconds"`
}

type GitHubStoreSettings struct {
	Owner   string `yaml:"owner" toml:"owner"`
	Repo    string `yaml:"repo" toml:"repo"`
	Branch  string `yaml:"branch" toml:"branch"`
	Path    string `yaml:"path" toml:"path"`
	BaseURL string `yaml:"base_url" toml:"base_url"`
}

type StoreSettings struct {
	Driver string              `yaml:"driver" toml:"driver"`
	DSN    string              `yaml:"dsn" toml:"dsn"`
	GitHub GitHubStoreSettings `yaml:"github" toml:"github"`
}

type SuggestionSettings struct {
	IdleTTLMinutes int `yaml:"idle_ttl_minutes" toml:"idle_ttl_minutes"`
}

type Settings struct {
	Language    string             `yaml:"language" toml:"language"`
	Tone        string             `yaml:"tone_instructions" toml:"tone_instructions"`
	LLM         LLMSettings        `yaml:"llm" toml:"llm"`
	Retry       RetrySettings      `yaml:"retry" toml:"retry"`
	Server      ServerSettings     `yaml:"server" toml:"server"`
	Store       StoreSettings      `yaml:"store" toml:"store"`
	Suggestions SuggestionSettings `yaml:"suggestions" toml:"suggestions"`
}

func WithDefaultSettings() Settings {
	return Settings{
		Language: "en-US",
		LLM: LLMSettings{
			Provider:       "openai",
			Model:          "gpt-4.1",
			MaxTokens:      4000,
			TimeoutSeconds: 60,
			Temperature:    0.2,
		},
		Retry: RetrySettings{
			Max:            0,
			WaitMinSeconds: 1,
			WaitMaxSeconds: 5,
		},
		Server: ServerSettings{
			Addr:                  ":8080",
			RequestsPerSecond:     2,
			Burst:                 5,
			RequestTimeoutSeconds: 90,
		},
		Store: StoreSettings{
			Driver: StoreDriverSQLite,
			DSN:    "docs-ai.db",
			GitHub: GitHubStoreSettings{
				Branch: "main",
				Path:   "docs",
			},
		},
		Suggestions: SuggestionSettings{
			IdleTTLMinutes: 30,
		},
	}
}

// LoadSettings reads settings from path, or from the first settings file found in the
// working directory when path is empty. Missing files fall back to defaults.
func LoadSettings(path string) (Settings, error) {
	settings := WithDefaultSettings()

	if path == "" {
		for _, name := range settingsFilenames {
			if _, err := os.Stat(name); err == nil {
				path = name
				break
			}
		}
	}

	if path == "" {
		logger.Infof("No settings file found in the current directory. Using default settings.")
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &settings); err != nil {
			return settings, fmt.Errorf("failed to parse TOML settings %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return settings, fmt.Errorf("failed to parse YAML settings %s: %w", path, err)
		}
	}

	logger.Infof("Using settings from file: %s", path)
	return settings, nil
}

func (s ServerSettings) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

func (s SuggestionSettings) IdleTTL() time.Duration {
	return time.Duration(s.IdleTTLMinutes) * time.Minute
}

// GetAPIKey returns the LLM provider API key from the environment.
func GetAPIKey() (string, error) {
	apiKey := os.Getenv("LLM_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("LLM_API_KEY environment variable is not set")
	}
	return apiKey, nil
}

// GetGitHubToken returns the token used by the github store driver.
func GetGitHubToken() (string, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return "", fmt.Errorf("GITHUB_TOKEN environment variable is not set")
	}
	return token, nil
}
