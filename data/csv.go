package data

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// LoadCSV reads a headerless CSV where the first column is the integer class
// label and the remaining columns are features (the MNIST CSV layout).
func LoadCSV(path string) ([][]float64, []int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open dataset %s", path)
	}
	defer f.Close()

	X, y, err := ReadCSV(f)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read dataset %s", path)
	}
	return X, y, nil
}

// ReadCSV is LoadCSV over an arbitrary reader.
func ReadCSV(r io.Reader) ([][]float64, []int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0 // every record must match the first
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var X [][]float64
	var y []int
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if len(record) < 2 {
			return nil, nil, errors.Errorf("line %d: need a label and at least one feature", line)
		}

		label, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, nil, errors.Wrapf(err, "line %d: label", line)
		}
		row := make([]float64, len(record)-1)
		for j, field := range record[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "line %d: column %d", line, j+2)
			}
			row[j] = v
		}
		X = append(X, row)
		y = append(y, label)
	}
	if len(X) == 0 {
		return nil, nil, errors.New("no samples")
	}
	return X, y, nil
}

// MinMaxNormalize rescales every feature column to [0, 1] in place.
// Constant columns become 0.
func MinMaxNormalize(X [][]float64) {
	if len(X) == 0 {
		return
	}
	for j := range X[0] {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, row := range X {
			lo = math.Min(lo, row[j])
			hi = math.Max(hi, row[j])
		}
		span := hi - lo
		for _, row := range X {
			if span == 0 {
				row[j] = 0
				continue
			}
			row[j] = (row[j] - lo) / span
		}
	}
}

// NumClasses is max(y)+1, the smallest class count that admits every label.
func NumClasses(y []int) int {
	n := 0
	for _, label := range y {
		if label+1 > n {
			n = label + 1
		}
	}
	return n
}
