// Package chart renders small bar charts to PNG.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strconv"

	"golang.org/x/image/draw"
)

// Default canvas size, matching an 8x6 inch figure at 100 dpi.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

var (
	benignColor  = color.RGBA{0x4C, 0xAF, 0x50, 0xFF}
	exposedColor = color.RGBA{0xF4, 0x43, 0x36, 0xFF}
	gridColor    = color.RGBA{0xE0, 0xE0, 0xE0, 0xFF}
	black        = color.RGBA{0x00, 0x00, 0x00, 0xFF}
)

var (
	ErrNoBars        = errors.New("chart: no bars")
	ErrNegativeValue = errors.New("chart: negative bar value")
)

// Bar is one category in a bar chart.
type Bar struct {
	Label string
	Value int
	Color color.RGBA
}

// Options controls chart layout and captions.
type Options struct {
	Width  int
	Height int
	Title  string
	XLabel string
	YLabel string
}

// BarChart renders the benign/exposed prediction counts.
func BarChart(benign, exposed int) ([]byte, error) {
	return Render([]Bar{
		{Label: "Benign", Value: benign, Color: benignColor},
		{Label: "Exposed", Value: exposed, Color: exposedColor},
	}, Options{
		Title:  "AI Classification Results",
		XLabel: "Device Type",
		YLabel: "Count",
	})
}

// Render draws bars left to right with a count label above each one and
// returns the PNG encoding.
func Render(bars []Bar, opts Options) ([]byte, error) {
	if len(bars) == 0 {
		return nil, ErrNoBars
	}
	maxValue := 0
	for _, b := range bars {
		if b.Value < 0 {
			return nil, fmt.Errorf("%w: %s=%d", ErrNegativeValue, b.Label, b.Value)
		}
		maxValue = max(maxValue, b.Value)
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	plot := image.Rect(90, 70, opts.Width-40, opts.Height-90)
	step, top := yScale(maxValue)
	yPixel := func(v float64) int {
		return plot.Max.Y - int(math.Round(v/top*float64(plot.Dy())))
	}

	// Horizontal grid and y tick labels.
	for v := 0.0; v <= top+step/2; v += step {
		y := yPixel(v)
		fillRect(img, image.Rect(plot.Min.X, y, plot.Max.X, y+1), gridColor)
		label := formatTick(v)
		drawText(img, label, plot.Min.X-10-textWidth(label, 2), y-textHeight(2)/2, 2)
	}

	// Axes.
	fillRect(img, image.Rect(plot.Min.X-1, plot.Min.Y, plot.Min.X+1, plot.Max.Y+1), black)
	fillRect(img, image.Rect(plot.Min.X-1, plot.Max.Y-1, plot.Max.X, plot.Max.Y+1), black)

	slot := plot.Dx() / len(bars)
	barWidth := slot * 8 / 10
	for i, b := range bars {
		center := plot.Min.X + slot*i + slot/2
		rect := image.Rect(center-barWidth/2, yPixel(float64(b.Value)), center+barWidth/2, plot.Max.Y)
		fillRect(img, rect, b.Color)
		strokeRect(img, rect, 2, black)

		count := strconv.Itoa(b.Value)
		drawText(img, count, center-textWidth(count, 2)/2, rect.Min.Y-textHeight(2)-6, 2)
		drawText(img, b.Label, center-textWidth(b.Label, 2)/2, plot.Max.Y+10, 2)
	}

	if opts.Title != "" {
		drawText(img, opts.Title, (opts.Width-textWidth(opts.Title, 3))/2, 18, 3)
	}
	if opts.XLabel != "" {
		drawText(img, opts.XLabel, plot.Min.X+(plot.Dx()-textWidth(opts.XLabel, 2))/2, plot.Max.Y+45, 2)
	}
	if opts.YLabel != "" {
		drawText(img, opts.YLabel, 10, plot.Min.Y-textHeight(2)-14, 2)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("chart: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// yScale picks a tick step from the 1-2-5 series giving about five ticks
// and returns it with the axis top, which leaves headroom above maxValue.
func yScale(maxValue int) (step, top float64) {
	if maxValue <= 0 {
		return 1, 1
	}
	target := float64(maxValue) * 1.1 / 5
	mag := math.Pow(10, math.Floor(math.Log10(target)))
	for _, m := range []float64{1, 2, 5, 10} {
		step = m * mag
		if step >= target {
			break
		}
	}
	step = math.Max(step, 1)
	top = math.Ceil(float64(maxValue)*1.1/step) * step
	return step, top
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r.Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

func strokeRect(img *image.RGBA, r image.Rectangle, w int, c color.Color) {
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w), c)
	fillRect(img, image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y), c)
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y), c)
	fillRect(img, image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y), c)
}
