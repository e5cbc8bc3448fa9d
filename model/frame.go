package model

import "math/bits"

// Matrix geometry. Rows are scanned, columns are driven in parallel.
const (
	Width  = 5
	Height = 3
	Dots   = Width * Height
)

// dotMask covers the bits that address a dot; everything above is spare.
const dotMask uint16 = 1<<Dots - 1

// Frame is one lit/unlit state for every dot, packed most-significant-row
// first. Within a row chunk, column 0 is the most significant bit.
type Frame uint16

// NewFrame clears the spare high bits of b. Any input is accepted.
func NewFrame(b uint16) Frame {
	return Frame(b & dotMask)
}

// Dot returns a frame with the given reading-order positions lit.
// Position p sits at row p/Width, column p%Width.
func Dot(positions ...int) Frame {
	var b uint16
	for _, p := range positions {
		b |= 1 << (Dots - 1 - p)
	}
	return NewFrame(b)
}

func (f Frame) Bits() uint16 {
	return uint16(f)
}

// Row extracts row index (0 is the top row). index must be in [0, Height).
func (f Frame) Row(index int) [Width]bool {
	shifted := uint16(f) >> ((Height - 1 - index) * Width)
	var row [Width]bool
	for col := range row {
		row[col] = (shifted>>(Width-1-col))&1 == 1
	}
	return row
}

func (f Frame) Lit(row, col int) bool {
	return f.Row(row)[col]
}

// Count is the number of lit dots.
func (f Frame) Count() int {
	return bits.OnesCount16(uint16(f))
}
