package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/attrition-game/atk/internal/core/domain"
)

// PaletteColor is the YAML form of one palette entry
type PaletteColor struct {
	Label string `yaml:"label"`
	Color string `yaml:"color"` // "#rrggbb"
}

type paletteFile struct {
	Palette []PaletteColor `yaml:"palette"`
}

// ToPalette converts the configured palette, falling back to the built-in
// planet table when none is configured
func (p PlaceholderConfig) ToPalette() (domain.Palette, error) {
	if len(p.Palette) == 0 {
		return domain.DefaultPlanetPalette(), nil
	}
	return convertPalette(p.Palette)
}

// LoadPalette reads a standalone palette file:
//
//	palette:
//	  - label: Arid
//	    color: "#d2b48c"
func LoadPalette(path string) (domain.Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read palette file: %w", err)
	}

	var f paletteFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse palette file: %w", err)
	}
	if len(f.Palette) == 0 {
		return nil, fmt.Errorf("palette file %s has no entries", path)
	}

	return convertPalette(f.Palette)
}

// FromPalette converts a domain palette back to its YAML form
func FromPalette(p domain.Palette) []PaletteColor {
	out := make([]PaletteColor, 0, len(p))
	for _, e := range p {
		out = append(out, PaletteColor{Label: e.Label, Color: e.Color.Hex()})
	}
	return out
}

func convertPalette(entries []PaletteColor) (domain.Palette, error) {
	palette := make(domain.Palette, 0, len(entries))
	for _, e := range entries {
		c, err := domain.ParseHexColor(e.Color)
		if err != nil {
			return nil, fmt.Errorf("palette entry %q: %w", e.Label, err)
		}
		palette = append(palette, domain.PaletteEntry{Label: e.Label, Color: c})
	}
	if err := palette.Validate(); err != nil {
		return nil, err
	}
	return palette, nil
}
