package ml

import (
	"sync"

	"gonum.org/v1/gonum/diff/fd"
)

// DefaultStep is the finite-difference step h.
const DefaultStep = 1e-4

// NumericGradient estimates dLoss/dW with forward differences:
// grad[r,c] = (loss(W + h·e_rc) − loss(W)) / h.
//
// Each entry of W is perturbed in place and restored before the next one,
// including when loss fails, so W is bit-identical on return.
func NumericGradient(X *Matrix, y []int, W *Matrix, loss LossFunc, h float64) (*Matrix, error) {
	if h == 0 {
		h = DefaultStep
	}
	base, err := loss(X, y, W)
	if err != nil {
		return nil, err
	}

	grad := NewMatrix(W.rows, W.cols)
	for idx := range W.data {
		g, err := perturbed(X, y, W, idx, h, loss)
		if err != nil {
			return nil, err
		}
		grad.data[idx] = (g - base) / h
	}
	return grad, nil
}

// perturbed evaluates loss with W.data[idx] shifted by h and always puts the
// old value back.
func perturbed(X *Matrix, y []int, W *Matrix, idx int, h float64, loss LossFunc) (float64, error) {
	old := W.data[idx]
	defer func() { W.data[idx] = old }()
	W.data[idx] = old + h
	return loss(X, y, W)
}

// NumericGradientParallel is NumericGradient split across workers. Every
// worker perturbs a private copy of W, so the caller's W is only read.
func NumericGradientParallel(X *Matrix, y []int, W *Matrix, loss LossFunc, h float64, workers int) (*Matrix, error) {
	if workers <= 1 {
		return NumericGradient(X, y, W, loss, h)
	}
	if h == 0 {
		h = DefaultStep
	}
	base, err := loss(X, y, W)
	if err != nil {
		return nil, err
	}

	total := len(W.data)
	grad := NewMatrix(W.rows, W.cols)
	if total == 0 {
		return grad, nil
	}
	if workers > total {
		workers = total
	}
	errs := make([]error, workers)
	chunk := (total + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)
	for id := 0; id < workers; id++ {
		go func(id int) {
			defer wg.Done()
			start := id * chunk
			end := min(start+chunk, total)
			local := W.Clone()
			for idx := start; idx < end; idx++ {
				g, err := perturbed(X, y, local, idx, h, loss)
				if err != nil {
					errs[id] = err
					return
				}
				grad.data[idx] = (g - base) / h
			}
		}(id)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return grad, nil
}

// CentralGradient estimates dLoss/dW with central differences through
// gonum's fd package: (loss(W + h·e) − loss(W − h·e)) / 2h.
func CentralGradient(X *Matrix, y []int, W *Matrix, loss LossFunc, h float64) (*Matrix, error) {
	if h == 0 {
		h = DefaultStep
	}
	// Surface shape and label errors before fd starts calling f.
	if _, err := loss(X, y, W); err != nil {
		return nil, err
	}

	var lossErr error
	f := func(w []float64) float64 {
		v, err := loss(X, y, NewMatrixFromSlice(W.rows, W.cols, w))
		if err != nil && lossErr == nil {
			lossErr = err
		}
		return v
	}

	grad := NewMatrix(W.rows, W.cols)
	fd.Gradient(grad.data, f, W.data, &fd.Settings{
		Formula: fd.Central,
		Step:    h,
	})
	if lossErr != nil {
		return nil, lossErr
	}
	return grad, nil
}

// AnalyticGradient computes the hinge loss and its exact gradient by running
// the loss forward through gates and backpropagating through their caches:
//
//	S = X·W            (MatMulGate)
//	d_ij = S_ij − S_iy (Sub)
//	m_ij = d_ij + δ    (Add)
//	h_ij = max(m_ij,0) (Max)
//	L_i  = Σ_j h_ij    (Add chain)
//	L    = ΣL_i · 1/N  (Add chain, Mul)
func AnalyticGradient(X *Matrix, y []int, W *Matrix, delta float64) (float64, *Matrix, error) {
	if err := validateBatch("AnalyticGradient", X, y, W); err != nil {
		return 0, nil, err
	}
	S, mm, err := MatMulGate(X, W)
	if err != nil {
		return 0, nil, err
	}

	type marginCaches struct {
		sample, class int
		sub           SubCache
		add           AddCache
		max           MaxCache
		sum           AddCache
	}

	n, classes := S.Dims()
	caches := make([]marginCaches, 0, n*(classes-1))
	total := 0.0
	for i := 0; i < n; i++ {
		correct := S.At(i, y[i])
		for j := 0; j < classes; j++ {
			if j == y[i] {
				continue
			}
			c := marginCaches{sample: i, class: j}
			var d, m, h float64
			d, c.sub = Sub(S.At(i, j), correct)
			m, c.add = Add(d, delta)
			h, c.max = Max(m, 0)
			total, c.sum = Add(total, h)
			caches = append(caches, c)
		}
	}
	loss, mean := Mul(total, 1/float64(n))

	// Backward pass in reverse gate order.
	dTotal, _, err := mean.Backward(1)
	if err != nil {
		return 0, nil, err
	}
	dS := NewMatrix(n, classes)
	for k := len(caches) - 1; k >= 0; k-- {
		c := caches[k]
		_, dh, err := c.sum.Backward(dTotal)
		if err != nil {
			return 0, nil, err
		}
		dm, _, err := c.max.Backward(dh)
		if err != nil {
			return 0, nil, err
		}
		dd, _, err := c.add.Backward(dm)
		if err != nil {
			return 0, nil, err
		}
		dWrong, dCorrect, err := c.sub.Backward(dd)
		if err != nil {
			return 0, nil, err
		}
		dS.data[c.sample*classes+c.class] += dWrong
		dS.data[c.sample*classes+y[c.sample]] += dCorrect
	}

	_, dW, err := mm.Backward(dS)
	if err != nil {
		return 0, nil, err
	}
	return loss, dW, nil
}
