package grid

import "testing"

func TestGetGridCoords(t *testing.T) {
	tests := []struct {
		index int
		cols  int
		wantX int
		wantY int
	}{
		// 64 cols (Standard)
		{0, 64, 0, 0},
		{1, 64, 1, 0},
		{63, 64, 63, 0},
		{64, 64, 0, 1},
		{65, 64, 1, 1},
		{127, 64, 63, 1},
		{128, 64, 0, 2},
		{1023, 64, 63, 15},

		// 32 cols (Low Res)
		{0, 32, 0, 0},
		{31, 32, 31, 0},
		{32, 32, 0, 1},
		{63, 32, 31, 1},
		{1023, 32, 31, 31},
	}

	for _, tc := range tests {
		gotX, gotY := GetGridCoords(tc.index, tc.cols)
		if gotX != tc.wantX || gotY != tc.wantY {
			t.Errorf("GetGridCoords(%d, %d) = (%d, %d); want (%d, %d)", tc.index, tc.cols, gotX, gotY, tc.wantX, tc.wantY)
		}
	}
}

func TestGetIndex(t *testing.T) {
	for _, cols := range []int{32, 64} {
		for i := 0; i < cols*4; i++ {
			x, y := GetGridCoords(i, cols)
			if got := GetIndex(x, y, cols); got != i {
				t.Errorf("GetIndex(%d, %d, %d) = %d; want %d", x, y, cols, got, i)
			}
		}
	}
}

func TestFlipRow(t *testing.T) {
	tests := []struct {
		y, rows, want int
	}{
		{0, 32, 31},
		{31, 32, 0},
		{15, 32, 16},
		{0, 1, 0},
	}

	for _, tc := range tests {
		if got := FlipRow(tc.y, tc.rows); got != tc.want {
			t.Errorf("FlipRow(%d, %d) = %d; want %d", tc.y, tc.rows, got, tc.want)
		}
	}
}
