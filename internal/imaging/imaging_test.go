package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teatopics/internal/domain/topic"
)

func TestBinarizePosterSettings(t *testing.T) {
	assert.Equal(t, uint8(255), Binarize(200, 1.35, 175))
	assert.Equal(t, uint8(0), Binarize(50, 1.35, 175))
	// exactly at the threshold stays black
	assert.Equal(t, uint8(0), Binarize(175, 1, 175))
}

func TestLuminanceWeights(t *testing.T) {
	assert.InDelta(t, 255.0, Luminance(255, 255, 255), 1e-9)
	assert.InDelta(t, 0.7152*100, Luminance(0, 100, 0), 1e-9)
}

func uniform(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestPreprocessCropsAndScales(t *testing.T) {
	src := uniform(100, 50, color.RGBA{200, 200, 200, 255})
	out := Preprocess(src, Options{Crop: 0.1, Scale: 2, Contrast: 1.35, Threshold: 175})

	assert.Equal(t, image.Rect(0, 0, 160, 80), out.Bounds())
	for _, v := range out.Pix {
		require.Equal(t, uint8(255), v)
	}
}

func TestPreprocessDarkImageIsBlack(t *testing.T) {
	src := uniform(20, 20, color.RGBA{50, 50, 50, 255})
	out := Preprocess(src, PosterOptions)
	for _, v := range out.Pix {
		require.Equal(t, uint8(0), v)
	}
}

func TestPreprocessMinimumCropSize(t *testing.T) {
	src := uniform(8, 8, color.White)
	out := Preprocess(src, Options{Crop: 0.4, Scale: 1})
	// crop asks for at least 10px but cannot exceed the source
	assert.LessOrEqual(t, out.Bounds().Dx(), 8)
	assert.Greater(t, out.Bounds().Dx(), 0)
}

func TestConvolveSharpenClampsAndSkipsEdges(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 3, 3))
	src.SetGray(1, 1, color.Gray{Y: 255})

	out := Convolve3(src, SharpenKernel, 1, 0)
	assert.Equal(t, uint8(255), out.GrayAt(1, 1).Y)
	// direct neighbours get -255 and clamp to 0
	assert.Equal(t, uint8(0), out.GrayAt(0, 1).Y)
	assert.Equal(t, uint8(0), out.GrayAt(1, 0).Y)

	white := image.NewGray(image.Rect(0, 0, 3, 3))
	for i := range white.Pix {
		white.Pix[i] = 255
	}
	out = Convolve3(white, SharpenKernel, 1, 0)
	// corner has only two neighbours: 5*255-2*255 clamps to 255
	assert.Equal(t, uint8(255), out.GrayAt(0, 0).Y)
	// centre: 5*255-4*255 = 255
	assert.Equal(t, uint8(255), out.GrayAt(1, 1).Y)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, uniform(4, 4, color.Black)))
	img, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"Wat is", "jouw", "favoriete", "spel?"}, Wrap("Wat is jouw favoriete spel?", 9))
	assert.Equal(t, []string{"abcd", "ef"}, Wrap("abcdef", 4))
	assert.Equal(t, []string{""}, Wrap("   ", 4))
}

func TestRenderCard(t *testing.T) {
	tp := topic.Topic{Text: "Wat is jouw favoriete sprookje?", Collection: "Voorbeeld", Category: "Persoonlijk"}
	img := RenderCard(tp, DefaultCardStyle)

	s := DefaultCardStyle
	assert.Equal(t, (s.Columns*7+2*s.Padding)*s.Scale, img.Bounds().Dx())

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	assert.NotZero(t, buf.Len())

	// some ink was drawn
	inked := false
	for y := 0; y < img.Bounds().Dy() && !inked; y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			if img.RGBAAt(x, y) == s.Ink {
				inked = true
				break
			}
		}
	}
	assert.True(t, inked)
}
