package chart

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var face = basicfont.Face7x13

// textWidth returns the rendered width of s in pixels at the given scale.
func textWidth(s string, scale int) int {
	return font.MeasureString(face, s).Ceil() * scale
}

func textHeight(scale int) int {
	return face.Metrics().Height.Ceil() * scale
}

// drawText renders s with its top-left corner at (x, y). The bitmap font is
// drawn at native size and scaled up with nearest-neighbour sampling.
func drawText(dst *image.RGBA, s string, x, y, scale int) {
	w, h := textWidth(s, 1), textHeight(1)
	if w == 0 {
		return
	}
	glyphs := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  glyphs,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)

	target := image.Rect(x, y, x+w*scale, y+h*scale)
	draw.NearestNeighbor.Scale(dst, target, glyphs, glyphs.Bounds(), draw.Over, nil)
}
