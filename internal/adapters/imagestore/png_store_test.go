package imagestore

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestPNGStore_SaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "planets")
	store := NewPNGStore(dir)
	ctx := context.Background()

	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	fill := color.RGBA{R: 34, G: 139, B: 34, A: 255}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			img.SetRGBA(x, y, fill)
		}
	}

	path, err := store.Save(ctx, "Earthly.png", img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != filepath.Join(dir, "Earthly.png") {
		t.Errorf("unexpected path: %s", path)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 file (no temp leftovers), got %d", len(entries))
	}

	loaded, err := store.Load(ctx, "Earthly.png")
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if loaded.Bounds().Dx() != 3 || loaded.Bounds().Dy() != 2 {
		t.Errorf("unexpected bounds: %v", loaded.Bounds())
	}
	got := color.RGBAModel.Convert(loaded.At(1, 1)).(color.RGBA)
	if got != fill {
		t.Errorf("pixel = %v, want %v", got, fill)
	}
}

func TestPNGStore_Overwrite(t *testing.T) {
	store := NewPNGStore(t.TempDir())
	ctx := context.Background()

	small := image.NewRGBA(image.Rect(0, 0, 1, 1))
	big := image.NewRGBA(image.Rect(0, 0, 5, 5))

	if _, err := store.Save(ctx, "Arid.png", small); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if _, err := store.Save(ctx, "Arid.png", big); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	loaded, err := store.Load(ctx, "Arid.png")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Bounds().Dx() != 5 {
		t.Errorf("expected overwritten image, got %v", loaded.Bounds())
	}
}

func TestPNGStore_LoadMissing(t *testing.T) {
	store := NewPNGStore(t.TempDir())
	if _, err := store.Load(context.Background(), "missing.png"); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestPNGStore_PathStaysInDir(t *testing.T) {
	store := NewPNGStore("/out")
	if got := store.Path("../../etc/passwd"); got != filepath.Join("/out", "passwd") {
		t.Errorf("path escaped store dir: %s", got)
	}
}
