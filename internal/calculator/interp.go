package calculator

// Breakpoint is one (x, y) anchor in a piecewise-linear mapping table.
type Breakpoint struct {
	X float64
	Y float64
}

// Interpolate maps x through an ordered breakpoint table using linear
// interpolation within each band. Values outside the table clamp to the
// nearest endpoint. The table must be sorted by ascending X.
func Interpolate(table []Breakpoint, x float64) float64 {
	if len(table) == 0 {
		return 0
	}
	if x <= table[0].X {
		return table[0].Y
	}
	last := table[len(table)-1]
	if x >= last.X {
		return last.Y
	}
	for i := 1; i < len(table); i++ {
		if x <= table[i].X {
			lo, hi := table[i-1], table[i]
			frac := (x - lo.X) / (hi.X - lo.X)
			return lo.Y + frac*(hi.Y-lo.Y)
		}
	}
	return last.Y
}
