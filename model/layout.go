package model

// Index maps row, col -> reading-order position (0..Dots-1).
func Index(row, col int) int {
	return row*Width + col
}

// Position is the inverse of Index.
func Position(p int) (row, col int) {
	return p / Width, p % Width
}

// Mirror is the point reflection of p through the centre dot.
func Mirror(p int) int {
	return Dots - 1 - p
}
