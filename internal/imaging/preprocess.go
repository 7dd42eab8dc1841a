// Package imaging prepares photographed prompt cards for OCR and renders
// single cards to PNG.
package imaging

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"math"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Options controls Preprocess. Zero values fall back to the package
// defaults (no crop, 2x scale, contrast 1.2, threshold 170).
type Options struct {
	Crop      float64 // fraction removed from every edge
	Scale     float64
	Contrast  float64
	Threshold int
	Sharpen   bool
}

// PosterOptions suits photographed posters: wide margins, light background.
var PosterOptions = Options{
	Crop:      0.06,
	Scale:     2.5,
	Contrast:  1.35,
	Threshold: 175,
	Sharpen:   true,
}

func (o Options) withDefaults() Options {
	if o.Crop < 0 || o.Crop >= 0.5 {
		o.Crop = 0
	}
	if o.Scale <= 0 {
		o.Scale = 2.0
	}
	if o.Contrast <= 0 {
		o.Contrast = 1.2
	}
	if o.Threshold <= 0 {
		o.Threshold = 170
	}
	return o
}

// Decode reads any registered raster format.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}
	return img, nil
}

func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// Preprocess crops, upscales, binarizes and optionally sharpens src.
func Preprocess(src image.Image, opt Options) *image.Gray {
	opt = opt.withDefaults()
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	cw := max(10, int(math.Floor(float64(w)*(1-opt.Crop*2))))
	ch := max(10, int(math.Floor(float64(h)*(1-opt.Crop*2))))
	sx := int(math.Floor(float64(w) * opt.Crop))
	sy := int(math.Floor(float64(h) * opt.Crop))
	crop := image.Rect(b.Min.X+sx, b.Min.Y+sy, b.Min.X+sx+cw, b.Min.Y+sy+ch).Intersect(b)

	dw := max(1, int(math.Floor(float64(crop.Dx())*opt.Scale)))
	dh := max(1, int(math.Floor(float64(crop.Dy())*opt.Scale)))
	scaled := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, crop, draw.Src, nil)

	gray := image.NewGray(scaled.Bounds())
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			i := scaled.PixOffset(x, y)
			p := scaled.Pix[i : i+3 : i+3]
			l := Luminance(p[0], p[1], p[2])
			gray.Pix[gray.PixOffset(x, y)] = Binarize(l, opt.Contrast, opt.Threshold)
		}
	}

	if opt.Sharpen {
		return Convolve3(gray, SharpenKernel, 1, 0)
	}
	return gray
}

// Luminance uses the Rec. 709 weights.
func Luminance(r, g, b uint8) float64 {
	return 0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)
}

// Binarize stretches y around 128 by contrast and maps it to white when it
// ends up above threshold, black otherwise.
func Binarize(y, contrast float64, threshold int) uint8 {
	y = (y-128)*contrast + 128
	if y > float64(threshold) {
		return 255
	}
	return 0
}

var SharpenKernel = [9]float64{
	0, -1, 0,
	-1, 5, -1,
	0, -1, 0,
}

// Convolve3 applies a 3x3 kernel. Taps outside the image are skipped and the
// result is clamped to [0,255].
func Convolve3(src *image.Gray, k [9]float64, divisor, offset float64) *image.Gray {
	if divisor == 0 {
		divisor = 1
	}
	b := src.Bounds()
	dst := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var sum float64
			for ky := 0; ky < 3; ky++ {
				for kx := 0; kx < 3; kx++ {
					px, py := x+kx-1, y+ky-1
					if px < b.Min.X || px >= b.Max.X || py < b.Min.Y || py >= b.Max.Y {
						continue
					}
					sum += float64(src.GrayAt(px, py).Y) * k[ky*3+kx]
				}
			}
			v := sum/divisor + offset
			dst.SetGray(x, y, color.Gray{Y: clamp8(v)})
		}
	}
	return dst
}

func clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
