package services

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/attrition-game/atk/internal/core/domain"
	"github.com/attrition-game/atk/internal/core/ports"
)

const (
	DefaultPlaceholderWidth  = 256
	DefaultPlaceholderHeight = 256
)

// PlaceholderService renders flat-coloured stand-in images
type PlaceholderService struct {
	store ports.ImageStore
}

// NewPlaceholderService creates a new placeholder service
func NewPlaceholderService(store ports.ImageStore) *PlaceholderService {
	return &PlaceholderService{
		store: store,
	}
}

// GenerateRequest represents a request to generate placeholder images
type GenerateRequest struct {
	Palette domain.Palette
	Width   int // default: 256
	Height  int // default: 256
}

// GeneratedFile is one written placeholder
type GeneratedFile struct {
	Label string
	Color domain.Color
	Path  string
}

// GenerateResponse represents the result of a generation run
type GenerateResponse struct {
	Files []GeneratedFile
	Total int
}

// Generate writes exactly one image per palette entry, in table order
func (s *PlaceholderService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if err := req.Palette.Validate(); err != nil {
		return nil, fmt.Errorf("invalid palette: %w", err)
	}

	width, height := req.Width, req.Height
	if width <= 0 {
		width = DefaultPlaceholderWidth
	}
	if height <= 0 {
		height = DefaultPlaceholderHeight
	}

	files := make([]GeneratedFile, 0, len(req.Palette))
	for _, entry := range req.Palette {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img := RenderFlat(width, height, entry.Color)
		path, err := s.store.Save(ctx, entry.Filename(), img)
		if err != nil {
			return nil, fmt.Errorf("failed to write placeholder for %s: %w", entry.Label, err)
		}

		files = append(files, GeneratedFile{
			Label: entry.Label,
			Color: entry.Color,
			Path:  path,
		})
	}

	return &GenerateResponse{
		Files: files,
		Total: len(files),
	}, nil
}

// VerifyRequest represents a request to check generated placeholders
type VerifyRequest struct {
	Palette domain.Palette
}

// Mismatch describes an entry whose file is missing or has the wrong colour
type Mismatch struct {
	Label   string
	Missing bool
	Want    domain.Color
	Got     domain.Color
}

// VerifyResponse lists the entries that failed verification
type VerifyResponse struct {
	Checked    int
	Mismatches []Mismatch
}

// OK reports whether every entry matched
func (r *VerifyResponse) OK() bool {
	return len(r.Mismatches) == 0
}

// Verify loads each placeholder and checks that every pixel has the declared colour
func (s *PlaceholderService) Verify(ctx context.Context, req VerifyRequest) (*VerifyResponse, error) {
	if err := req.Palette.Validate(); err != nil {
		return nil, fmt.Errorf("invalid palette: %w", err)
	}

	resp := &VerifyResponse{}
	for _, entry := range req.Palette {
		resp.Checked++

		img, err := s.store.Load(ctx, entry.Filename())
		if err != nil {
			resp.Mismatches = append(resp.Mismatches, Mismatch{Label: entry.Label, Missing: true, Want: entry.Color})
			continue
		}

		if got, ok := uniformColor(img, entry.Color); !ok {
			resp.Mismatches = append(resp.Mismatches, Mismatch{Label: entry.Label, Want: entry.Color, Got: got})
		}
	}

	return resp, nil
}

// RenderFlat returns a width×height image filled with c
func RenderFlat(width, height int, c domain.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c.ToRGBA()}, image.Point{}, draw.Src)
	return img
}

// uniformColor returns the first pixel that differs from want, or reports true
// when the whole image is want
func uniformColor(img image.Image, want domain.Color) (domain.Color, bool) {
	b := img.Bounds()
	if b.Empty() {
		return domain.Color{}, false
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			if c.R != want.R || c.G != want.G || c.B != want.B || c.A != 0xFF {
				return domain.Color{R: c.R, G: c.G, B: c.B}, false
			}
		}
	}
	return want, true
}
