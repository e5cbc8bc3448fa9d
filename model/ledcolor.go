package model

import (
	"image"
	"image/color"
)

// Preview colours for a lit and an unlit dot.
var (
	LitColor  = color.NRGBA{R: 255, G: 32, B: 0, A: 255}
	DarkColor = color.NRGBA{A: 255}
)

func dotColor(on bool) color.NRGBA {
	if on {
		return LitColor
	}
	return DarkColor
}

// Image renders f as a Width x Height picture, one pixel per dot.
func (f Frame) Image() *image.NRGBA {
	im := image.NewNRGBA(image.Rect(0, 0, Width, Height))
	for y := 0; y < Height; y++ {
		row := f.Row(y)
		for x, on := range row {
			im.SetNRGBA(x, y, dotColor(on))
		}
	}
	return im
}

// Strip renders f as a single line of Dots pixels in reading order, the
// shape expected by strip drawers.
func (f Frame) Strip() *image.NRGBA {
	im := image.NewNRGBA(image.Rect(0, 0, Dots, 1))
	for p := 0; p < Dots; p++ {
		im.SetNRGBA(p, 0, dotColor(f.Lit(Position(p))))
	}
	return im
}
