package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"runtime"

	"github.com/b0tShaman/hinge-go/data"
	. "github.com/b0tShaman/hinge-go/ml"
	"github.com/klauspost/cpuid/v2"
	"github.com/pkg/errors"
)

// -------- MAIN -------- //
func main() {
	csvPath := flag.String("csv", "", "CSV dataset (label first, then features)")
	imageDir := flag.String("images", "", "Image dataset root with one subdirectory per class")
	width := flag.Int("width", 28, "Image resize width")
	height := flag.Int("height", 28, "Image resize height")
	normalize := flag.Bool("normalize", false, "Min-max normalize features to [0, 1]")
	classes := flag.Int("classes", 0, "Number of classes (default: max label + 1)")
	iters := flag.Int("iters", 10, "Gradient descent iterations")
	step := flag.Float64("step", 0.001, "Step size")
	delta := flag.Float64("delta", DefaultDelta, "Hinge margin")
	h := flag.Float64("h", DefaultStep, "Finite-difference step")
	grad := flag.String("grad", string(GradNumeric), "Gradient method: numeric, analytic or central")
	seed := flag.Uint64("seed", 1, "PRNG seed for weight initialization")
	workers := flag.Int("workers", 0, "Numeric gradient workers (default: logical cores)")
	verboseEvery := flag.Int("verbose-every", 1, "Log loss every N iterations")
	out := flag.String("out", "", "Save trained weights to this gob file")
	check := flag.Bool("check", false, "Compare numeric and analytic gradients at the initial weights")
	flag.Parse()

	// Hardware Setup
	G := runtime.GOMAXPROCS(runtime.NumCPU())
	if *workers <= 0 {
		*workers = max(cpuid.CPU.LogicalCores, 1)
	}
	fmt.Printf("CPU: %s | AVX2: %v | GOMAXPROCS: %d | Workers: %d\n",
		cpuid.CPU.BrandName, cpuid.CPU.Supports(cpuid.AVX2), G, *workers)

	// 1. Load Data
	fmt.Println("Loading dataset...")
	X_raw, Y_raw, classNames, err := loadDataset(*csvPath, *imageDir, *width, *height)
	if err != nil {
		log.Fatalf("failed to load data: %v", err)
	}
	if *normalize {
		data.MinMaxNormalize(X_raw)
	}

	X, err := NewMatrixFromRows(X_raw)
	if err != nil {
		log.Fatalf("invalid dataset: %v", err)
	}
	numClasses := *classes
	if numClasses == 0 {
		numClasses = max(data.NumClasses(Y_raw), len(classNames))
	}
	fmt.Printf("Loaded dataset: %d samples, %d features, %d classes\n", X.Rows(), X.Cols(), numClasses)

	// 2. Configure & Train
	config := TrainingConfig{
		Classes:      numClasses,
		Iterations:   *iters,
		LearningRate: *step,
		Delta:        delta,
		Step:         *h,
		Seed:         *seed,
		NumWorkers:   *workers,
		VerboseEvery: *verboseEvery,
		Gradient:     GradientMethod(*grad),
	}

	if *check {
		if err := gradientCheck(X, Y_raw, config); err != nil {
			log.Fatalf("gradient check failed: %v", err)
		}
	}

	res, err := Optimize(X, Y_raw, config)
	if err != nil {
		log.Fatalf("training failed: %v", err)
	}

	acc, err := Accuracy(X, Y_raw, res.Weights)
	if err != nil {
		log.Fatalf("accuracy: %v", err)
	}
	fmt.Printf("Final loss: %.6f | Train accuracy: %.2f%%\n", res.Losses[len(res.Losses)-1], acc*100)

	if *out != "" {
		fmt.Println("Saving weights to", *out)
		if err := SaveWeights(*out, res.Weights, classNames); err != nil {
			log.Fatalf("save weights: %v", errors.Wrapf(err, "write %s", *out))
		}
		return
	}
	printWeights(res.Weights)
}

func loadDataset(csvPath, imageDir string, width, height int) ([][]float64, []int, []string, error) {
	switch {
	case csvPath != "" && imageDir != "":
		return nil, nil, nil, errors.New("use either -csv or -images, not both")
	case csvPath != "":
		X, y, err := data.LoadCSV(csvPath)
		return X, y, nil, err
	case imageDir != "":
		return data.LoadImageDir(imageDir, width, height)
	default:
		fmt.Println("No dataset given, using the built-in toy dataset")
		X, y := data.Toy()
		return X, y, nil, nil
	}
}

// gradientCheck prints the largest relative error between the numeric and
// analytic gradients at a freshly initialized W.
func gradientCheck(X *Matrix, y []int, cfg TrainingConfig) error {
	probe := cfg
	probe.Iterations = 0
	probe.VerboseEvery = 0
	res, err := Optimize(X, y, probe)
	if err != nil {
		return err
	}
	W := res.Weights

	numeric, err := NumericGradientParallel(X, y, W, HingeLossFunc(cfg.Margin()), cfg.Step, cfg.NumWorkers)
	if err != nil {
		return errors.Wrap(err, "numeric gradient")
	}
	_, analytic, err := AnalyticGradient(X, y, W, cfg.Margin())
	if err != nil {
		return errors.Wrap(err, "analytic gradient")
	}

	worst := 0.0
	for i, a := range analytic.Data() {
		n := numeric.Data()[i]
		denom := math.Max(math.Max(math.Abs(a), math.Abs(n)), 1e-8)
		worst = math.Max(worst, math.Abs(a-n)/denom)
	}
	fmt.Printf("Gradient check: max relative error %.3e\n", worst)
	return nil
}

func printWeights(W *Matrix) {
	fmt.Println("Weights:")
	for i := 0; i < W.Rows(); i++ {
		fmt.Printf("  %v\n", W.Row(i))
	}
}
