package model

// Animation is a fixed table of frames played in order.
type Animation [Dots]Frame

// Chase builds the symmetric chase: frame i lights bit i and its point
// reflection, bit Dots-1-i. Positions and bits run in opposite directions,
// so that is also position i and its mirror. The centre frame lights a
// single dot.
func Chase() Animation {
	var a Animation
	for i := range a {
		a[i] = Dot(i, Mirror(i))
	}
	return a
}

func (a *Animation) Len() int {
	return len(a)
}

// At returns frame i modulo the table length.
func (a *Animation) At(i int) Frame {
	return a[i%len(a)]
}
