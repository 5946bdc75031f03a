package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL          = "https://api.github.com/"
	DefaultUserAgent       = "Attrition-Release-Bot"
	DefaultTargetCommitish = "main"
	DefaultTitleTemplate   = "Attrition {version}"
	DefaultBodyTemplate    = "Attrition Desktop Release {version}"
	DefaultOutputDir       = "assets/placeholders/planets"
	DefaultImageSize       = 256
)

// DefaultTokenEnv lists the environment variables searched for the access
// token, first non-empty wins
var DefaultTokenEnv = []string{"GITHUB_PAT", "GITHUB_TOKEN"}

type Config struct {
	Release      ReleaseConfig     `yaml:"release"`
	Placeholders PlaceholderConfig `yaml:"placeholders"`

	// DataDir overrides where the publish history is kept (default: XDG data dir)
	DataDir string `yaml:"data_dir,omitempty"`

	// UI Settings
	ColorTheme string `yaml:"color_theme"`
	LogLevel   string `yaml:"log_level"`
}

type ReleaseConfig struct {
	APIURL          string   `yaml:"api_url"`
	UserAgent       string   `yaml:"user_agent"`
	TargetCommitish string   `yaml:"target_commitish"`
	TitleTemplate   string   `yaml:"title_template"`
	BodyTemplate    string   `yaml:"body_template"`
	TokenEnv        []string `yaml:"token_env"`
}

type PlaceholderConfig struct {
	OutputDir string         `yaml:"output_dir"`
	Width     int            `yaml:"width"`
	Height    int            `yaml:"height"`
	Palette   []PaletteColor `yaml:"palette,omitempty"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		Release: ReleaseConfig{
			APIURL:          DefaultAPIURL,
			UserAgent:       DefaultUserAgent,
			TargetCommitish: DefaultTargetCommitish,
			TitleTemplate:   DefaultTitleTemplate,
			BodyTemplate:    DefaultBodyTemplate,
			TokenEnv:        append([]string(nil), DefaultTokenEnv...),
		},
		Placeholders: PlaceholderConfig{
			OutputDir: DefaultOutputDir,
			Width:     DefaultImageSize,
			Height:    DefaultImageSize,
		},
		ColorTheme: "auto",
		LogLevel:   "warn",
	}
}

// Load reads configuration from the specified file path
func Load(path string) (*Config, error) {
	// Start with default config
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config (not an error)
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if _, err := cfg.Placeholders.ToPalette(); err != nil {
		return nil, fmt.Errorf("invalid placeholder palette in %s: %w", path, err)
	}

	return cfg, nil
}

// applyDefaults backfills essential values left empty in the file
func (c *Config) applyDefaults() {
	if c.Release.APIURL == "" {
		c.Release.APIURL = DefaultAPIURL
	}
	if c.Release.UserAgent == "" {
		c.Release.UserAgent = DefaultUserAgent
	}
	if c.Release.TargetCommitish == "" {
		c.Release.TargetCommitish = DefaultTargetCommitish
	}
	if c.Release.TitleTemplate == "" {
		c.Release.TitleTemplate = DefaultTitleTemplate
	}
	if c.Release.BodyTemplate == "" {
		c.Release.BodyTemplate = DefaultBodyTemplate
	}
	if len(c.Release.TokenEnv) == 0 {
		c.Release.TokenEnv = append([]string(nil), DefaultTokenEnv...)
	}
	if c.Placeholders.OutputDir == "" {
		c.Placeholders.OutputDir = DefaultOutputDir
	}
	if c.Placeholders.Width <= 0 {
		c.Placeholders.Width = DefaultImageSize
	}
	if c.Placeholders.Height <= 0 {
		c.Placeholders.Height = DefaultImageSize
	}
	if !isValidTheme(c.ColorTheme) {
		c.ColorTheme = "auto"
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func isValidTheme(theme string) bool {
	switch theme {
	case "auto", "dark", "light":
		return true
	}
	return false
}
