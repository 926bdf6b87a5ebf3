package data

// Toy returns four 3-pixel samples over three classes, small enough for the
// numeric gradient to train on in milliseconds.
func Toy() ([][]float64, []int) {
	X := [][]float64{
		{12, 20, 11},
		{10, 21, 21},
		{31, 35, 13},
		{51, 14, 13},
	}
	return X, []int{0, 1, 1, 2}
}

// Reference is a fixed batch with fixed weights for checking a loss
// implementation against a known value (23/3 for delta = 1).
func Reference() (X [][]float64, y []int, W [][]float64) {
	X = [][]float64{
		{3, 1, 6, 3},
		{1, 3, 2, 1},
		{3, 2, 4, 1},
	}
	W = [][]float64{
		{0, 0, 4},
		{2, 1, 2},
		{6, 5, 3},
		{3, 0, 0},
	}
	return X, []int{1, 0, 2}, W
}
