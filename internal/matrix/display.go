// Package matrix scans a row-multiplexed dot matrix.
//
// Rows and columns are both active-low: a dot is lit only while its row
// line and its column line are driven Low together. One row is enabled per
// refresh step, so Width+Height lines address Width*Height dots.
package matrix

import (
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"

	"github.com/coreman2200/dotchase/model"
)

// Electrical levels. Both line groups are active-low.
const (
	Active   = gpio.Low
	Inactive = gpio.High
)

// Output is a single binary output line. periph.io gpio.PinOut satisfies it.
type Output interface {
	Out(l gpio.Level) error
}

// Display holds the selected frame and the row to drive next.
// It is not safe for concurrent use; the scan loop owns it.
type Display struct {
	columns [model.Width]Output
	rows    [model.Height]Output
	frame   model.Frame
	cursor  int
}

func New(columns [model.Width]Output, rows [model.Height]Output) *Display {
	return &Display{columns: columns, rows: rows}
}

// Set replaces the displayed frame from the next refresh on.
func (d *Display) Set(f model.Frame) {
	d.frame = f
}

func (d *Display) Frame() model.Frame {
	return d.frame
}

// Cursor is the row the next Refresh will light.
func (d *Display) Cursor() int {
	return d.cursor
}

// Refresh lights row Cursor() with its dots from the current frame and
// advances the cursor. Every line is released first so no dot of the
// previous row shows while the next row is enabled.
func (d *Display) Refresh() error {
	if err := d.Blank(); err != nil {
		return err
	}
	if err := d.rows[d.cursor].Out(Active); err != nil {
		return errors.Wrapf(err, "row %d", d.cursor)
	}
	for col, on := range d.frame.Row(d.cursor) {
		if !on {
			continue
		}
		if err := d.columns[col].Out(Active); err != nil {
			return errors.Wrapf(err, "column %d", col)
		}
	}
	d.cursor = (d.cursor + 1) % model.Height
	return nil
}

// Blank drives every row and column line inactive. The cursor is kept.
func (d *Display) Blank() error {
	for i, row := range d.rows {
		if err := row.Out(Inactive); err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
	}
	for i, col := range d.columns {
		if err := col.Out(Inactive); err != nil {
			return errors.Wrapf(err, "column %d", i)
		}
	}
	return nil
}
