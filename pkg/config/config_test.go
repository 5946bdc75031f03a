package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/attrition-game/atk/internal/core/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	if cfg.Release.APIURL != "https://api.github.com/" {
		t.Errorf("expected default APIURL, got %q", cfg.Release.APIURL)
	}

	if cfg.Release.TargetCommitish != "main" {
		t.Errorf("expected default TargetCommitish='main', got %q", cfg.Release.TargetCommitish)
	}

	if cfg.Release.UserAgent != "Attrition-Release-Bot" {
		t.Errorf("unexpected default UserAgent %q", cfg.Release.UserAgent)
	}

	if len(cfg.Release.TokenEnv) != 2 || cfg.Release.TokenEnv[0] != "GITHUB_PAT" || cfg.Release.TokenEnv[1] != "GITHUB_TOKEN" {
		t.Errorf("unexpected default TokenEnv %v", cfg.Release.TokenEnv)
	}

	if cfg.Placeholders.Width != 256 || cfg.Placeholders.Height != 256 {
		t.Errorf("unexpected default size %dx%d", cfg.Placeholders.Width, cfg.Placeholders.Height)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	// Loading a non-existent file should return default config
	cfg, err := Load("/nonexistent/path/config.yaml")

	if err != nil {
		t.Fatalf("unexpected error loading non-existent file: %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if cfg.Release.TitleTemplate != DefaultTitleTemplate {
		t.Errorf("expected default TitleTemplate, got %q", cfg.Release.TitleTemplate)
	}
}

func TestSave_And_Load(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Release.TargetCommitish = "release"
	cfg.Release.TokenEnv = []string{"ATK_TOKEN"}
	cfg.Placeholders.OutputDir = "out/planets"
	cfg.Placeholders.Width = 64
	cfg.Placeholders.Palette = []PaletteColor{{Label: "Lava", Color: "#c82800"}}

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if loaded.Release.TargetCommitish != "release" {
		t.Errorf("expected TargetCommitish='release', got %q", loaded.Release.TargetCommitish)
	}
	if len(loaded.Release.TokenEnv) != 1 || loaded.Release.TokenEnv[0] != "ATK_TOKEN" {
		t.Errorf("unexpected TokenEnv %v", loaded.Release.TokenEnv)
	}
	if loaded.Placeholders.OutputDir != "out/planets" {
		t.Errorf("unexpected OutputDir %q", loaded.Placeholders.OutputDir)
	}
	if loaded.Placeholders.Width != 64 || loaded.Placeholders.Height != 256 {
		t.Errorf("unexpected size %dx%d", loaded.Placeholders.Width, loaded.Placeholders.Height)
	}

	palette, err := loaded.Placeholders.ToPalette()
	if err != nil {
		t.Fatalf("palette conversion failed: %v", err)
	}
	if len(palette) != 1 || palette[0].Color != (domain.Color{R: 200, G: 40, B: 0}) {
		t.Errorf("unexpected palette %+v", palette)
	}
}

func TestLoad_PartialFileBackfillsDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "release:\n  user_agent: custom-agent\ncolor_theme: neon\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Release.UserAgent != "custom-agent" {
		t.Errorf("expected user agent from file, got %q", cfg.Release.UserAgent)
	}
	if cfg.Release.APIURL != DefaultAPIURL {
		t.Errorf("expected APIURL to be kept at default, got %q", cfg.Release.APIURL)
	}
	if cfg.ColorTheme != "auto" {
		t.Errorf("invalid theme should fall back to auto, got %q", cfg.ColorTheme)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("release: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_InvalidPalette(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "placeholders:\n  palette:\n    - label: Arid\n      color: not-a-colour\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected palette validation error")
	}
}

func TestToPalette_DefaultsToPlanets(t *testing.T) {
	palette, err := DefaultConfig().Placeholders.ToPalette()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(palette) != len(domain.DefaultPlanetPalette()) {
		t.Errorf("expected built-in planet palette, got %d entries", len(palette))
	}
}

func TestLoadPalette(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planets.yaml")
	content := `palette:
  - label: Arid
    color: "#d2b48c"
  - label: Gas Giant
    color: "#e0a060"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	palette, err := LoadPalette(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(palette) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(palette))
	}
	if palette[1].Label != "Gas Giant" {
		t.Errorf("expected file order to be kept, got %q", palette[1].Label)
	}

	roundTrip := FromPalette(palette)
	if roundTrip[0].Color != "#d2b48c" {
		t.Errorf("unexpected hex %q", roundTrip[0].Color)
	}
}

func TestLoadPalette_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("palette: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPalette(path); err == nil {
		t.Error("expected error for empty palette file")
	}
}

func TestResolveToken(t *testing.T) {
	t.Setenv("ATK_TEST_PAT", "")
	t.Setenv("ATK_TEST_TOKEN", "from-token")

	if got := ResolveToken([]string{"ATK_TEST_PAT", "ATK_TEST_TOKEN"}); got != "from-token" {
		t.Errorf("expected fallback to second variable, got %q", got)
	}

	t.Setenv("ATK_TEST_PAT", "from-pat")
	if got := ResolveToken([]string{"ATK_TEST_PAT", "ATK_TEST_TOKEN"}); got != "from-pat" {
		t.Errorf("expected first non-empty variable to win, got %q", got)
	}

	t.Setenv("ATK_TEST_PAT", "")
	t.Setenv("ATK_TEST_TOKEN", "")
	if got := ResolveToken([]string{"ATK_TEST_PAT", "ATK_TEST_TOKEN"}); got != "" {
		t.Errorf("expected empty token, got %q", got)
	}
}
