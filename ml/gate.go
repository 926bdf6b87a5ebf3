package ml

// Elementary gates. Each forward function returns its output together with a
// cache holding the inputs the local derivative needs. Backward multiplies the
// upstream gradient by that local derivative. A zero-value cache was never
// forwarded and Backward rejects it with ErrNotForwarded.

// MulCache remembers the operands of z = a * b.
type MulCache struct {
	a, b float64
	ok   bool
}

// Mul computes a * b.
func Mul(a, b float64) (float64, MulCache) {
	return a * b, MulCache{a: a, b: b, ok: true}
}

// Backward returns dL/da = b * dz and dL/db = a * dz.
func (c MulCache) Backward(dz float64) (float64, float64, error) {
	if !c.ok {
		return 0, 0, ErrNotForwarded
	}
	return c.b * dz, c.a * dz, nil
}

// AddCache marks a forwarded z = a + b. Both local derivatives are 1.
type AddCache struct {
	ok bool
}

func Add(a, b float64) (float64, AddCache) {
	return a + b, AddCache{ok: true}
}

func (c AddCache) Backward(dz float64) (float64, float64, error) {
	if !c.ok {
		return 0, 0, ErrNotForwarded
	}
	return dz, dz, nil
}

// SubCache marks a forwarded z = a - b.
type SubCache struct {
	ok bool
}

func Sub(a, b float64) (float64, SubCache) {
	return a - b, SubCache{ok: true}
}

func (c SubCache) Backward(dz float64) (float64, float64, error) {
	if !c.ok {
		return 0, 0, ErrNotForwarded
	}
	return dz, -dz, nil
}

// MaxCache remembers which operand won z = max(a, b).
type MaxCache struct {
	aWins bool
	ok    bool
}

// Max computes max(a, b). On a tie the gradient is routed to b, so
// max(0 + margin, 0) at exactly zero passes no gradient to the margin.
func Max(a, b float64) (float64, MaxCache) {
	if a > b {
		return a, MaxCache{aWins: true, ok: true}
	}
	return b, MaxCache{ok: true}
}

func (c MaxCache) Backward(dz float64) (float64, float64, error) {
	if !c.ok {
		return 0, 0, ErrNotForwarded
	}
	if c.aWins {
		return dz, 0, nil
	}
	return 0, dz, nil
}

// MatMulCache remembers the operands of S = X · W.
type MatMulCache struct {
	x, w *Matrix
}

// MatMulGate is the matrix form of the multiply gate.
func MatMulGate(x, w *Matrix) (*Matrix, MatMulCache, error) {
	s, err := Score(x, w)
	if err != nil {
		return nil, MatMulCache{}, err
	}
	return s, MatMulCache{x: x, w: w}, nil
}

// Backward returns dX = dS · Wᵀ and dW = Xᵀ · dS.
func (c MatMulCache) Backward(dS *Matrix) (*Matrix, *Matrix, error) {
	if c.x == nil || c.w == nil {
		return nil, nil, ErrNotForwarded
	}
	n, p := c.x.Dims()
	classes := c.w.Cols()
	if dS.Rows() != n {
		return nil, nil, &ShapeError{Op: "MatMulCache.Backward", What: "upstream rows", Got: dS.Rows(), Want: n}
	}
	if dS.Cols() != classes {
		return nil, nil, &ShapeError{Op: "MatMulCache.Backward", What: "upstream cols", Got: dS.Cols(), Want: classes}
	}
	dX := NewMatrix(n, p)
	dW := NewMatrix(p, classes)
	MatMul(dS.dense, c.w.dense.T(), dX)
	MatMul(c.x.dense.T(), dS.dense, dW)
	return dX, dW, nil
}
