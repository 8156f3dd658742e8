package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
)

func TestComputeScale(t *testing.T) {
	tests := []struct {
		name        string
		target      float64
		native      float64
		want        float64
	}{
		{"fit letter width to 800", 800, 612, 800.0 / 612.0},
		{"downscale wide page", 400, 1000, 0.4},
		{"zero native falls back to identity", 800, 0, 1.0},
		{"zero target falls back to identity", 0, 612, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeScale(tt.target, tt.native)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ComputeScale(%v, %v) = %v, want %v", tt.target, tt.native, got, tt.want)
			}
		})
	}
}

func TestFullscreenScale(t *testing.T) {
	// Below the cap the fit scale is boosted as-is.
	got := FullscreenScale(1.0, DefaultFullscreenBoost, MaxFullscreenScale)
	if math.Abs(got-1.8) > 1e-9 {
		t.Errorf("expected boosted scale 1.8, got %v", got)
	}

	// Large fits hit the cap.
	got = FullscreenScale(2.0, DefaultFullscreenBoost, MaxFullscreenScale)
	if got != MaxFullscreenScale {
		t.Errorf("expected capped scale %v, got %v", MaxFullscreenScale, got)
	}
}

func TestNewSurfaceDimensions(t *testing.T) {
	scale := 800.0 / 612.0
	s := NewSurface(1, 612, 792, scale)

	if s.Width != 800 {
		t.Errorf("expected width 800, got %d", s.Width)
	}
	want := int(math.Round(792 * scale))
	if s.Height != want {
		t.Errorf("expected height %d, got %d", want, s.Height)
	}
	if s.Page != 1 || s.Scale != scale {
		t.Errorf("surface metadata not carried: %+v", s)
	}
}

func TestNewSurfaceMinimumSize(t *testing.T) {
	s := NewSurface(1, 1, 1, 0.0001)
	if s.Width < 1 || s.Height < 1 {
		t.Errorf("surface collapsed to %dx%d", s.Width, s.Height)
	}
}

func TestDrawImageCentersContent(t *testing.T) {
	s := NewSurface(1, 100, 100, 1.0)

	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			src.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	s.DrawImage(src)

	// Center pixel should carry the drawn content, corners stay white.
	r, _, _, _ := s.Image().At(50, 50).RGBA()
	if r == 0xffff {
		t.Error("expected drawn content at surface center")
	}
	cr, cg, cb, _ := s.Image().At(5, 5).RGBA()
	if cr != 0xffff || cg != 0xffff || cb != 0xffff {
		t.Error("expected untouched white near the corner")
	}
}

func TestDrawImageIgnoresEmptySource(t *testing.T) {
	s := NewSurface(1, 50, 50, 1.0)
	s.DrawImage(image.NewRGBA(image.Rect(0, 0, 0, 0)))
}

func TestEncodePNG(t *testing.T) {
	s := NewSurface(1, 40, 60, 1.0)

	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 60 {
		t.Errorf("decoded size %v, want 40x60", img.Bounds())
	}
}
