package imagestore

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// PNGStore writes placeholder images as PNG files into a single directory
type PNGStore struct {
	Dir string
}

// NewPNGStore creates a store rooted at dir. The directory is created on first save.
func NewPNGStore(dir string) *PNGStore {
	return &PNGStore{Dir: dir}
}

// Path returns the on-disk location for name
func (s *PNGStore) Path(name string) string {
	return filepath.Join(s.Dir, filepath.Base(name))
}

// Save encodes img as PNG under name, replacing any existing file
func (s *PNGStore) Save(ctx context.Context, name string, img image.Image) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := s.Path(name)
	tmp, err := os.CreateTemp(s.Dir, ".placeholder-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(path, 0644); err != nil {
		return "", fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}

	return path, nil
}

// Load decodes the PNG stored under name
func (s *PNGStore) Load(ctx context.Context, name string) (image.Image, error) {
	f, err := os.Open(s.Path(name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return img, nil
}
