package analyzer

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writeTestImage renders a dark page background with the given light
// rectangles painted on it and saves it as a PNG.
func writeTestImage(t *testing.T, rects []Rect) string {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 600, 400))
	for y := 0; y < 400; y++ {
		for x := 0; x < 600; x++ {
			img.SetGray(x, y, color.Gray{Y: 40})
		}
	}
	for _, r := range rects {
		for y := r.Y; y < r.Y+r.H; y++ {
			for x := r.X; x < r.X+r.W; x++ {
				img.SetGray(x, y, color.Gray{Y: 235})
			}
		}
	}

	path := filepath.Join(t.TempDir(), "screenshot.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode image: %v", err)
	}
	return path
}

func TestDetectInputFields(t *testing.T) {
	t.Parallel()

	t.Run("single field", func(t *testing.T) {
		t.Parallel()

		path := writeTestImage(t, []Rect{{X: 100, Y: 100, W: 200, H: 30}})
		fields, err := DetectInputFields(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(fields) != 1 {
			t.Fatalf("expected 1 field, got %d: %+v", len(fields), fields)
		}
		if fields[0].W < 190 || fields[0].W > 210 {
			t.Errorf("unexpected field width %d", fields[0].W)
		}
	})

	t.Run("two stacked fields", func(t *testing.T) {
		t.Parallel()

		path := writeTestImage(t, []Rect{
			{X: 100, Y: 80, W: 200, H: 30},
			{X: 100, Y: 160, W: 200, H: 30},
		})
		fields, err := DetectInputFields(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(fields) != 2 {
			t.Errorf("expected 2 fields, got %d: %+v", len(fields), fields)
		}
	})

	t.Run("empty page", func(t *testing.T) {
		t.Parallel()

		path := writeTestImage(t, nil)
		fields, err := DetectInputFields(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(fields) != 0 {
			t.Errorf("expected no fields, got %+v", fields)
		}
	})

	t.Run("region too tall", func(t *testing.T) {
		t.Parallel()

		path := writeTestImage(t, []Rect{{X: 100, Y: 50, W: 200, H: 120}})
		fields, err := DetectInputFields(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(fields) != 0 {
			t.Errorf("expected no fields for tall region, got %+v", fields)
		}
	})

	t.Run("region too narrow", func(t *testing.T) {
		t.Parallel()

		path := writeTestImage(t, []Rect{{X: 100, Y: 100, W: 60, H: 30}})
		fields, err := DetectInputFields(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(fields) != 0 {
			t.Errorf("expected no fields for narrow region, got %+v", fields)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		if _, err := DetectInputFields(filepath.Join(t.TempDir(), "missing.png")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("not a png", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bogus.png")
		if err := os.WriteFile(path, []byte("not an image"), 0600); err != nil {
			t.Fatalf("write file: %v", err)
		}
		if _, err := DetectInputFields(path); err == nil {
			t.Error("expected error for invalid png")
		}
	})
}
