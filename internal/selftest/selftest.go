// Package selftest holds the lamp-test plans shown before the chase.
package selftest

import (
	"github.com/pkg/errors"

	"github.com/coreman2200/dotchase/model"
)

type Kind string

const (
	None       Kind = ""
	IndexSweep Kind = "index_sweep" // one dot at a time, reading order
	Rows       Kind = "rows"        // one full row at a time
	Columns    Kind = "columns"     // one full column at a time
	All        Kind = "all"         // every dot once
)

func Parse(s string) (Kind, error) {
	switch k := Kind(s); k {
	case None, IndexSweep, Rows, Columns, All:
		return k, nil
	}
	return None, errors.Errorf("unknown self-test plan %q", s)
}

type Runner struct {
	kind Kind
	step int
}

func NewRunner(kind Kind) *Runner { return &Runner{kind: kind} }

func (r *Runner) Kind() Kind { return r.kind }

// Next returns the next frame of the plan, or false when it is complete.
func (r *Runner) Next() (model.Frame, bool) {
	var f model.Frame
	switch r.kind {
	case IndexSweep:
		if r.step >= model.Dots {
			return 0, false
		}
		f = model.Dot(r.step)
	case Rows:
		if r.step >= model.Height {
			return 0, false
		}
		for col := 0; col < model.Width; col++ {
			f |= model.Dot(model.Index(r.step, col))
		}
	case Columns:
		if r.step >= model.Width {
			return 0, false
		}
		for row := 0; row < model.Height; row++ {
			f |= model.Dot(model.Index(row, r.step))
		}
	case All:
		if r.step >= 1 {
			return 0, false
		}
		f = model.NewFrame(0xffff)
	default:
		return 0, false
	}
	r.step++
	return f, true
}

// Len is the number of frames in the plan.
func (r *Runner) Len() int {
	switch r.kind {
	case IndexSweep:
		return model.Dots
	case Rows:
		return model.Height
	case Columns:
		return model.Width
	case All:
		return 1
	}
	return 0
}
