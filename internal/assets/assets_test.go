package assets

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write png: %v", err)
	}
}

func TestLoadTextureAsync(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "albedo.png")
	writePNG(t, path)

	mgr := NewManager()
	tex := mgr.LoadTextureAsync(path, TextureSettings{SRGB: true})
	if tex == nil {
		t.Fatal("expected a handle immediately")
	}

	tex.Wait()
	if !tex.Ready() {
		t.Error("texture should be ready after Wait")
	}
	if tex.Err() != nil {
		t.Errorf("unexpected load error: %v", tex.Err())
	}
	if tex.Image() == nil {
		t.Error("expected a decoded image")
	}
}

func TestLoadTextureAsyncMissing(t *testing.T) {
	mgr := NewManager()
	tex := mgr.LoadTextureAsync(filepath.Join(t.TempDir(), "nope.png"), TextureSettings{})

	// Fire-and-forget: the handle exists, the failure is recorded on it.
	tex.Wait()
	if tex.Err() == nil {
		t.Error("expected load error for missing file")
	}
	if tex.Image() != nil {
		t.Error("failed load should have no image")
	}
}

func TestLoadTextureAsyncCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shared.png")
	writePNG(t, path)

	mgr := NewManager()
	a := mgr.LoadTextureAsync(path, TextureSettings{SRGB: true})
	b := mgr.LoadTextureAsync(path, TextureSettings{SRGB: true})
	if a != b {
		t.Error("same path and settings should share one handle")
	}

	// Different colour-space interpretation needs its own handle.
	c := mgr.LoadTextureAsync(path, TextureSettings{SRGB: false})
	if c == a {
		t.Error("different settings should not share a handle")
	}

	mgr.Wait()
	hits, misses := mgr.Stats()
	if hits != 1 {
		t.Errorf("expected 1 cache hit, got %d", hits)
	}
	if misses != 2 {
		t.Errorf("expected 2 cache misses, got %d", misses)
	}
}

func TestSearchDirs(t *testing.T) {
	texDir := t.TempDir()
	writePNG(t, filepath.Join(texDir, "fallback.png"))

	mgr := NewManager(texDir)
	tex := mgr.LoadTextureAsync("/model/dir/fallback.png", TextureSettings{})
	tex.Wait()

	if tex.Err() != nil {
		t.Errorf("expected fallback resolution via search dir, got %v", tex.Err())
	}
	if tex.Image() == nil {
		t.Error("expected image from search dir")
	}
}
