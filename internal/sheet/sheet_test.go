package sheet

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/dotchase/model"
)

func rgba(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

func TestRenderChaseSheet(t *testing.T) {
	chase := model.Chase()
	o := Options{Pitch: 10}
	im := Render(&chase, o)

	// 5 frames per line, 3 lines, 6x4 pitches per frame
	assert.Equal(t, image.Rect(0, 0, 5*60, 3*40), im.Bounds())

	for i := 0; i < chase.Len(); i++ {
		f := chase.At(i)
		for row := 0; row < model.Height; row++ {
			for col := 0; col < model.Width; col++ {
				p := o.Centre(i, row, col)
				want := UnlitColor
				if f.Lit(row, col) {
					want = model.LitColor
				}
				assert.Equal(t, rgba(want), rgba(im.At(p.X, p.Y)), "frame %d dot %d,%d", i, row, col)
			}
		}
	}
	assert.Equal(t, rgba(Background), rgba(im.At(0, 0)))
}

func TestCentre(t *testing.T) {
	o := Options{Pitch: 10}
	assert.Equal(t, image.Pt(10, 10), o.Centre(0, 0, 0))
	assert.Equal(t, image.Pt(50, 30), o.Centre(0, 2, 4))
	assert.Equal(t, image.Pt(70, 10), o.Centre(1, 0, 0))
	assert.Equal(t, image.Pt(10, 50), o.Centre(5, 0, 0))
}
