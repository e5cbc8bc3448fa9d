// Package sheet renders a frame table as a contact sheet of dot grids.
package sheet

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/srwiley/rasterx"

	"github.com/coreman2200/dotchase/model"
)

type Table interface {
	Len() int
	At(i int) model.Frame
}

var (
	Background = color.NRGBA{A: 255}
	UnlitColor = color.NRGBA{R: 48, G: 40, B: 40, A: 255}
)

type Options struct {
	Pitch   int // pixels between dot centres
	PerLine int // frames per sheet line
}

func (o Options) withDefaults() Options {
	if o.Pitch <= 0 {
		o.Pitch = 16
	}
	if o.PerLine <= 0 {
		o.PerLine = model.Width
	}
	return o
}

// cell is the size of one frame including a one-pitch margin.
func (o Options) cell() image.Point {
	return image.Pt((model.Width+1)*o.Pitch, (model.Height+1)*o.Pitch)
}

// Centre is the pixel centre of dot (row, col) of frame i.
func (o Options) Centre(i, row, col int) image.Point {
	o = o.withDefaults()
	c := o.cell()
	origin := image.Pt(i%o.PerLine*c.X, i/o.PerLine*c.Y)
	return origin.Add(image.Pt((col+1)*o.Pitch, (row+1)*o.Pitch))
}

// Render draws every frame of t left to right, top to bottom.
func Render(t Table, o Options) *image.RGBA {
	o = o.withDefaults()
	c := o.cell()
	lines := (t.Len() + o.PerLine - 1) / o.PerLine
	bounds := image.Rect(0, 0, o.PerLine*c.X, lines*c.Y)

	im := image.NewRGBA(bounds)
	draw.Draw(im, bounds, image.NewUniform(Background), image.Point{}, draw.Src)

	w, h := bounds.Dx(), bounds.Dy()
	filler := rasterx.NewFiller(w, h, rasterx.NewScannerGV(w, h, im, bounds))
	radius := 0.4 * float64(o.Pitch)

	// Unlit dots first, then lit.
	for _, lit := range []bool{false, true} {
		for i := 0; i < t.Len(); i++ {
			f := t.At(i)
			for row := 0; row < model.Height; row++ {
				for col := 0; col < model.Width; col++ {
					if f.Lit(row, col) != lit {
						continue
					}
					p := o.Centre(i, row, col)
					rasterx.AddCircle(float64(p.X), float64(p.Y), radius, filler)
				}
			}
		}
		if lit {
			filler.SetColor(model.LitColor)
		} else {
			filler.SetColor(UnlitColor)
		}
		filler.Draw()
		filler.Clear()
	}
	return im
}
