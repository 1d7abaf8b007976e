// Package grid converts between linear buffer indices and cell coordinates.
package grid

// GetGridCoords returns the column and row of cell index in a grid cols wide.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}

// GetIndex is the inverse of GetGridCoords.
func GetIndex(x, y, cols int) int {
	return y*cols + x
}

// FlipRow maps row y of a grid rows high onto the same row counted from the
// other edge.
func FlipRow(y, rows int) int {
	return rows - 1 - y
}
