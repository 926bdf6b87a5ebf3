package ml

import (
	"bytes"
	"encoding/gob"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Matrix represents a dense matrix with a flat data slice for performance.
// The gonum view shares the same backing slice.
type Matrix struct {
	rows, cols int
	data       []float64
	dense      *mat.Dense
}

// -------- CONSTRUCTORS ------- //
func NewMatrix(rows, cols int) *Matrix {
	data := make([]float64, rows*cols)
	return &Matrix{
		rows:  rows,
		cols:  cols,
		data:  data,
		dense: newDense(rows, cols, data),
	}
}

// NewMatrixFromSlice wraps data without copying it.
func NewMatrixFromSlice(rows, cols int, data []float64) *Matrix {
	if len(data) != rows*cols {
		panic("Slice length mismatch")
	}

	return &Matrix{
		rows:  rows,
		cols:  cols,
		data:  data,
		dense: newDense(rows, cols, data),
	}
}

// NewMatrixFromRows copies a row-major [][]float64 into a new Matrix.
func NewMatrixFromRows(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 {
		return NewMatrix(0, 0), nil
	}
	cols := len(rows[0])
	for i, r := range rows {
		if len(r) != cols {
			return nil, &ShapeError{Op: "NewMatrixFromRows", What: "row length", Index: i, Got: len(r), Want: cols}
		}
	}
	return NewMatrixFromSlice(len(rows), cols, Flatten(rows)), nil
}

// mat.NewDense panics on zero dimensions, so empty matrices carry no view.
func newDense(rows, cols int, data []float64) *mat.Dense {
	if rows == 0 || cols == 0 {
		return nil
	}
	return mat.NewDense(rows, cols, data)
}

// ------- MATRIX METHODS ------ //
func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

func (m *Matrix) Dims() (int, int) { return m.rows, m.cols }

// Data exposes the backing slice. Writes are visible through the matrix.
func (m *Matrix) Data() []float64 { return m.data }

func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.cols+j]
}

func (m *Matrix) Set(i, j int, v float64) {
	m.data[i*m.cols+j] = v
}

// Row returns a view of row i.
func (m *Matrix) Row(i int) []float64 {
	return m.data[i*m.cols : (i+1)*m.cols]
}

func (m *Matrix) Clone() *Matrix {
	data := make([]float64, len(m.data))
	copy(data, m.data)
	return NewMatrixFromSlice(m.rows, m.cols, data)
}

func (m *Matrix) GobEncode() ([]byte, error) {
	w := new(bytes.Buffer)
	encoder := gob.NewEncoder(w)
	if err := encoder.Encode(m.rows); err != nil {
		return nil, err
	}
	if err := encoder.Encode(m.cols); err != nil {
		return nil, err
	}
	if err := encoder.Encode(m.data); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (m *Matrix) GobDecode(buf []byte) error {
	r := bytes.NewBuffer(buf)
	decoder := gob.NewDecoder(r)
	if err := decoder.Decode(&m.rows); err != nil {
		return err
	}
	if err := decoder.Decode(&m.cols); err != nil {
		return err
	}
	if err := decoder.Decode(&m.data); err != nil {
		return err
	}
	if len(m.data) != m.rows*m.cols {
		return &ShapeError{Op: "GobDecode", What: "data length", Got: len(m.data), Want: m.rows * m.cols}
	}

	// Re-create the wrapper after loading data
	m.dense = newDense(m.rows, m.cols, m.data)

	return nil
}

// Randomize fills m with N(0,1) samples scaled by scale, drawn from rng.
func (m *Matrix) Randomize(rng *rand.Rand, scale float64) {
	for i := range m.data {
		m.data[i] = rng.NormFloat64() * scale
	}
}

func (m *Matrix) Reset() {
	for i := range m.data {
		m.data[i] = 0.0
	}
}

// ------ UTILITY FUNCTIONS ------
func MatMul(a, b mat.Matrix, out *Matrix) {
	out.dense.Mul(a, b)
}

// Flatten copies a row-major [][]float64 into one contiguous slice.
func Flatten(input [][]float64) []float64 {
	if len(input) == 0 {
		return nil
	}
	rows, cols := len(input), len(input[0])
	flat := make([]float64, rows*cols)
	for i, row := range input {
		copy(flat[i*cols:], row)
	}
	return flat
}
