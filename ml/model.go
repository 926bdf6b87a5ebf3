package ml

import (
	"encoding/gob"
	"fmt"
	"os"
)

// modelData is the on-disk layout written by SaveWeights.
type modelData struct {
	Weights *Matrix
	Classes []string
}

// SaveWeights writes W and optional class names to filename with gob.
func SaveWeights(filename string, W *Matrix, classes []string) error {
	if len(classes) > 0 && len(classes) != W.Cols() {
		return &ShapeError{Op: "SaveWeights", What: "class names vs weight cols", Got: len(classes), Want: W.Cols()}
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(modelData{Weights: W, Classes: classes}); err != nil {
		return err
	}
	return file.Close()
}

// LoadWeights reads a model written by SaveWeights.
func LoadWeights(filename string) (*Matrix, []string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	var loaded modelData
	if err := gob.NewDecoder(file).Decode(&loaded); err != nil {
		return nil, nil, fmt.Errorf("failed to decode gob file: %v", err)
	}
	if loaded.Weights == nil {
		return nil, nil, fmt.Errorf("model file %s has no weights", filename)
	}
	return loaded.Weights, loaded.Classes, nil
}
