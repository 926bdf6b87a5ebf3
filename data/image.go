package data

import (
	"image"
	_ "image/jpeg" // Essential: Registers JPEG format
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// Convert image of any size to grayscale 1D float64 slice
func ConvertJpg1D(path string, targetW, targetH int) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return Grayscale1D(src, targetW, targetH), nil
}

// Grayscale1D resizes src to targetW x targetH and returns its luma in
// row-major order, in the 0-255 range.
func Grayscale1D(src image.Image, targetW, targetH int) []float64 {
	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.CatmullRom.Scale(dst, dst.Rect, src, src.Bounds(), draw.Over, nil)

	out := make([]float64, 0, targetW*targetH)
	bounds := dst.Bounds()

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := dst.At(x, y).RGBA()
			// Standard Grayscale formula
			gray := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			out = append(out, gray)
		}
	}
	return out
}

// LoadImageDir reads root/<class>/<image> into samples. Classes are the
// sorted subdirectory names and labels index into them.
func LoadImageDir(root string, targetW, targetH int) ([][]float64, []int, []string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "read image root %s", root)
	}

	var classes []string
	for _, e := range entries {
		if e.IsDir() {
			classes = append(classes, e.Name())
		}
	}
	sort.Strings(classes)
	if len(classes) == 0 {
		return nil, nil, nil, errors.Errorf("no class directories under %s", root)
	}

	var X [][]float64
	var y []int
	for label, class := range classes {
		dir := filepath.Join(root, class)
		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, nil, nil, errors.Wrapf(err, "read class dir %s", dir)
		}
		for _, file := range files {
			if file.IsDir() || !imageExts[strings.ToLower(filepath.Ext(file.Name()))] {
				continue
			}
			pixels, err := ConvertJpg1D(filepath.Join(dir, file.Name()), targetW, targetH)
			if err != nil {
				return nil, nil, nil, err
			}
			X = append(X, pixels)
			y = append(y, label)
		}
	}
	if len(X) == 0 {
		return nil, nil, nil, errors.Errorf("no images under %s", root)
	}
	return X, y, classes, nil
}
