package imaging

import (
	"image"
	"image/color"
	"strings"
	"teatopics/internal/domain/topic"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

type CardStyle struct {
	Columns    int // characters per line before wrapping
	Padding    int
	Scale      int
	Background color.RGBA
	Ink        color.RGBA
	Muted      color.RGBA
}

var DefaultCardStyle = CardStyle{
	Columns:    32,
	Padding:    14,
	Scale:      3,
	Background: color.RGBA{R: 0xfb, G: 0xf8, B: 0xf1, A: 0xff},
	Ink:        color.RGBA{R: 0x2f, G: 0x7a, B: 0x3e, A: 0xff},
	Muted:      color.RGBA{R: 0x6b, G: 0x6b, B: 0x6b, A: 0xff},
}

// RenderCard draws t as a raster card: wrapped text, then a line with the
// collection and category.
func RenderCard(t topic.Topic, style CardStyle) *image.RGBA {
	if style.Columns <= 0 {
		style = DefaultCardStyle
	}
	face := basicfont.Face7x13
	lineH := face.Metrics().Height.Ceil() + 2
	charW := face.Advance

	lines := Wrap(t.Text, style.Columns)
	meta := strings.TrimSpace(strings.Join(nonEmpty(t.Collection, t.Category), " · "))

	rows := len(lines)
	if meta != "" {
		rows += 2
	}
	w := style.Columns*charW + 2*style.Padding
	h := rows*lineH + 2*style.Padding

	small := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(small, small.Bounds(), image.NewUniform(style.Background), image.Point{}, draw.Src)

	d := &font.Drawer{Dst: small, Src: image.NewUniform(style.Ink), Face: face}
	y := style.Padding + face.Metrics().Ascent.Ceil()
	for _, line := range lines {
		d.Dot = fixed.P(style.Padding, y)
		d.DrawString(line)
		y += lineH
	}
	if meta != "" {
		y += lineH
		d.Src = image.NewUniform(style.Muted)
		d.Dot = fixed.P(style.Padding, y)
		d.DrawString(meta)
	}

	if style.Scale <= 1 {
		return small
	}
	big := image.NewRGBA(image.Rect(0, 0, w*style.Scale, h*style.Scale))
	draw.NearestNeighbor.Scale(big, big.Bounds(), small, small.Bounds(), draw.Src, nil)
	return big
}

// Wrap breaks s into lines of at most width runes, splitting on spaces.
// Words longer than width are hard-split.
func Wrap(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	var cur []rune
	for _, word := range words {
		wr := []rune(word)
		for len(wr) > width {
			if len(cur) > 0 {
				lines = append(lines, string(cur))
				cur = nil
			}
			lines = append(lines, string(wr[:width]))
			wr = wr[width:]
		}
		switch {
		case len(cur) == 0:
			cur = append(cur, wr...)
		case len(cur)+1+len(wr) <= width:
			cur = append(cur, ' ')
			cur = append(cur, wr...)
		default:
			lines = append(lines, string(cur))
			cur = append([]rune(nil), wr...)
		}
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}

func nonEmpty(items ...string) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
