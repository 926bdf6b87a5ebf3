package ml

// Predict returns the highest-scoring class for every row of X.
func Predict(X, W *Matrix) ([]int, error) {
	S, err := Score(X, W)
	if err != nil {
		return nil, err
	}
	preds := make([]int, S.Rows())
	for i := range preds {
		preds[i] = argmax(S.Row(i))
	}
	return preds, nil
}

// Accuracy is the fraction of samples whose predicted class equals y.
func Accuracy(X *Matrix, y []int, W *Matrix) (float64, error) {
	if err := validateBatch("Accuracy", X, y, W); err != nil {
		return 0, err
	}
	preds, err := Predict(X, W)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i, p := range preds {
		if p == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(y)), nil
}

func argmax(row []float64) int {
	best := 0
	for j, v := range row {
		if v > row[best] {
			best = j
		}
	}
	return best
}
