package ml

import (
	"gonum.org/v1/gonum/floats"
)

// DefaultDelta is the hinge margin used when none is configured.
const DefaultDelta = 1.0

// LossFunc evaluates a scalar loss of W over the batch (X, y).
// Implementations must not write to any argument.
type LossFunc func(X *Matrix, y []int, W *Matrix) (float64, error)

// HingeLossFunc binds delta into a LossFunc.
func HingeLossFunc(delta float64) LossFunc {
	return func(X *Matrix, y []int, W *Matrix) (float64, error) {
		return HingeLoss(X, y, W, delta)
	}
}

// Score computes S = X · W.
func Score(X, W *Matrix) (*Matrix, error) {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return nil, &ShapeError{Op: "Score", What: "empty samples", Got: n * p, Want: 1}
	}
	if W.Rows() != p {
		return nil, &ShapeError{Op: "Score", What: "weight rows vs features", Got: W.Rows(), Want: p}
	}
	if W.Cols() == 0 {
		return nil, &ShapeError{Op: "Score", What: "weight cols", Got: 0, Want: 1}
	}
	S := NewMatrix(n, W.Cols())
	MatMul(X.dense, W.dense, S)
	return S, nil
}

// HingeLoss is the multiclass SVM loss averaged over the samples, without a
// regularization term.
func HingeLoss(X *Matrix, y []int, W *Matrix, delta float64) (float64, error) {
	losses, err := SampleLosses(X, y, W, delta)
	if err != nil {
		return 0, err
	}
	return floats.Sum(losses) / float64(len(losses)), nil
}

// SampleLosses returns loss_i = Σ_{j≠y_i} max(0, S_ij − S_iy + delta) for every sample.
func SampleLosses(X *Matrix, y []int, W *Matrix, delta float64) ([]float64, error) {
	if err := validateBatch("HingeLoss", X, y, W); err != nil {
		return nil, err
	}
	S, err := Score(X, W)
	if err != nil {
		return nil, err
	}

	losses := make([]float64, S.Rows())
	for i := range losses {
		row := S.Row(i)
		correct := row[y[i]]
		for j, s := range row {
			if j == y[i] {
				continue
			}
			if m := s - correct + delta; m > 0 {
				losses[i] += m
			}
		}
	}
	return losses, nil
}

// validateBatch checks every shape and label invariant up front so no
// computation starts on a malformed batch.
func validateBatch(op string, X *Matrix, y []int, W *Matrix) error {
	if X.Rows() == 0 {
		return &ShapeError{Op: op, What: "sample count", Got: 0, Want: 1}
	}
	if len(y) != X.Rows() {
		return &ShapeError{Op: op, What: "labels vs samples", Got: len(y), Want: X.Rows()}
	}
	if W.Rows() != X.Cols() {
		return &ShapeError{Op: op, What: "weight rows vs features", Got: W.Rows(), Want: X.Cols()}
	}
	if W.Cols() == 0 {
		return &ShapeError{Op: op, What: "class count", Got: 0, Want: 1}
	}
	return validateLabels(y, W.Cols())
}

func validateLabels(y []int, classes int) error {
	for i, label := range y {
		if label < 0 || label >= classes {
			return &LabelError{Index: i, Label: label, Classes: classes}
		}
	}
	return nil
}
