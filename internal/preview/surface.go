package preview

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
)

// Fullscreen scale constants, matching the inline viewer's behavior:
// the fit-to-width scale is boosted for legibility but capped to bound
// surface memory.
const (
	DefaultFullscreenBoost = 1.8
	MaxFullscreenScale     = 2.5
)

// Surface is a drawable raster sized exactly to a page's scaled
// dimensions. Surfaces are never shared between the inline view and the
// fullscreen overlay.
type Surface struct {
	Page   int
	Scale  float64
	Width  int
	Height int

	img *image.RGBA
}

// ComputeScale returns the scale that fits a native page width into the
// target width. This is the first pass of the measure-then-draw cycle;
// native dimensions are only known after an unscaled measurement.
func ComputeScale(targetWidth, nativeWidth float64) float64 {
	if nativeWidth <= 0 || targetWidth <= 0 {
		return 1.0
	}
	return targetWidth / nativeWidth
}

// FullscreenScale boosts a fit scale for the overlay, capped at max.
func FullscreenScale(fit, boost, max float64) float64 {
	return math.Min(fit*boost, max)
}

// NewSurface allocates a surface for a page measured at nativeW x nativeH
// and drawn at the given scale. The raster is filled white with a light
// page border.
func NewSurface(page int, nativeW, nativeH, scale float64) *Surface {
	w := int(math.Round(nativeW * scale))
	h := int(math.Round(nativeH * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	s := &Surface{Page: page, Scale: scale, Width: w, Height: h, img: img}
	s.drawBorder(color.RGBA{R: 0xd1, G: 0xd5, B: 0xdb, A: 0xff})
	return s
}

// Image exposes the backing raster.
func (s *Surface) Image() image.Image { return s.img }

// DrawImage composites src onto the surface, scaled to fit inside it
// while preserving aspect ratio and centered.
func (s *Surface) DrawImage(src image.Image) {
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return
	}

	fit := math.Min(float64(s.Width)/float64(sb.Dx()), float64(s.Height)/float64(sb.Dy()))
	if fit > 1 {
		fit = 1
	}
	w := int(math.Round(float64(sb.Dx()) * fit))
	h := int(math.Round(float64(sb.Dy()) * fit))
	x := (s.Width - w) / 2
	y := (s.Height - h) / 2

	dst := image.Rect(x, y, x+w, y+h)
	draw.ApproxBiLinear.Scale(s.img, dst, src, sb, draw.Over, nil)
}

// EncodePNG writes the surface as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	return png.Encode(w, s.img)
}

func (s *Surface) drawBorder(c color.Color) {
	for x := 0; x < s.Width; x++ {
		s.img.Set(x, 0, c)
		s.img.Set(x, s.Height-1, c)
	}
	for y := 0; y < s.Height; y++ {
		s.img.Set(0, y, c)
		s.img.Set(s.Width-1, y, c)
	}
}
