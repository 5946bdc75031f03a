package domain

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is an opaque RGB triple
type Color struct {
	R, G, B uint8
}

// ToRGBA converts the colour to a fully opaque image/color value
func (c Color) ToRGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}

// Hex returns the colour as "#rrggbb"
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHexColor parses "#rrggbb" or "rrggbb"
func ParseHexColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("invalid colour %q: expected #rrggbb", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// PaletteEntry maps a category label to its placeholder colour
type PaletteEntry struct {
	Label string
	Color Color
}

// Filename is the image file name generated for the entry
func (e PaletteEntry) Filename() string {
	return e.Label + ".png"
}

// Palette is an ordered label -> colour table
type Palette []PaletteEntry

// DefaultPlanetPalette returns the built-in planet type table
func DefaultPlanetPalette() Palette {
	return Palette{
		{Label: "Arid", Color: Color{210, 180, 140}},
		{Label: "Asteroid", Color: Color{139, 139, 131}},
		{Label: "Craters", Color: Color{169, 169, 169}},
		{Label: "Crystalline", Color: Color{173, 216, 230}},
		{Label: "Earthly", Color: Color{34, 139, 34}},
	}
}

// Validate checks that labels are usable as file names and unique
func (p Palette) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("palette is empty")
	}
	seen := make(map[string]bool, len(p))
	for i, e := range p {
		label := strings.TrimSpace(e.Label)
		if label == "" {
			return fmt.Errorf("palette entry %d has an empty label", i)
		}
		if strings.ContainsAny(label, `/\`) || label == "." || label == ".." {
			return fmt.Errorf("palette label %q is not a valid file name", e.Label)
		}
		key := strings.ToLower(label)
		if seen[key] {
			return fmt.Errorf("duplicate palette label %q", e.Label)
		}
		seen[key] = true
	}
	return nil
}

// Lookup finds an entry by label, case-insensitively
func (p Palette) Lookup(label string) (PaletteEntry, bool) {
	for _, e := range p {
		if strings.EqualFold(e.Label, label) {
			return e, true
		}
	}
	return PaletteEntry{}, false
}
