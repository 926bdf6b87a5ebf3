package ml

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"gonum.org/v1/gonum/floats"
)

const (
	GradNumeric  GradientMethod = "numeric"
	GradAnalytic GradientMethod = "analytic"
	GradCentral  GradientMethod = "central"
)

// DefaultInitScale keeps initial scores near zero.
const DefaultInitScale = 0.001

type GradientMethod string

type TrainingConfig struct {
	Classes      int
	Iterations   int
	LearningRate float64  // step size
	Delta        *float64 // hinge margin (nil means DefaultDelta, 0 is a valid margin)
	Step         float64  // finite-difference h (0 means DefaultStep)
	InitScale    float64  // 0 means DefaultInitScale
	Seed         uint64
	NumWorkers   int // numeric gradient only
	VerboseEvery int // How often to log progress (in iterations, 0 disables)

	// Gradient Selection
	Gradient GradientMethod

	Out io.Writer // progress log, defaults to os.Stdout
}

// Result is the trained weights and the loss trajectory. Losses[0] is the
// loss before the first update, Losses[k] the loss after update k.
type Result struct {
	Weights *Matrix
	Losses  []float64
}

// Margin is the configured hinge margin, DefaultDelta when unset.
func (c TrainingConfig) Margin() float64 {
	if c.Delta == nil {
		return DefaultDelta
	}
	return *c.Delta
}

// Validate verifies the config is runnable and fills defaults.
func (c *TrainingConfig) Validate() error {
	if c.Classes <= 0 {
		return fmt.Errorf("classes must be > 0 (got %d)", c.Classes)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("iterations must be >= 0 (got %d)", c.Iterations)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be > 0 (got %g)", c.LearningRate)
	}
	if c.Step < 0 {
		return fmt.Errorf("finite-difference step must be >= 0 (got %g)", c.Step)
	}
	switch c.Gradient {
	case "":
		c.Gradient = GradNumeric
	case GradNumeric, GradAnalytic, GradCentral:
	default:
		return fmt.Errorf("unknown gradient method %q", c.Gradient)
	}
	if c.Step == 0 {
		c.Step = DefaultStep
	}
	if c.InitScale == 0 {
		c.InitScale = DefaultInitScale
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	return nil
}

// Optimize trains a fresh P×Classes weight matrix drawn from a PRNG seeded
// with cfg.Seed.
func Optimize(X *Matrix, y []int, cfg TrainingConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	W := NewMatrix(X.Cols(), cfg.Classes)
	W.Randomize(rng, cfg.InitScale)
	return OptimizeFrom(X, y, W, cfg)
}

// OptimizeFrom runs cfg.Iterations steps of W ← W − lr·∇L(W), updating W in
// place. There is no early stop, and a diverging loss is only reported.
func OptimizeFrom(X *Matrix, y []int, W *Matrix, cfg TrainingConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if W.Cols() != cfg.Classes {
		return nil, &ShapeError{Op: "Optimize", What: "weight cols vs classes", Got: W.Cols(), Want: cfg.Classes}
	}
	if err := validateBatch("Optimize", X, y, W); err != nil {
		return nil, err
	}

	lossFn := HingeLossFunc(cfg.Margin())
	loss, err := lossFn(X, y, W)
	if err != nil {
		return nil, err
	}
	res := &Result{Weights: W, Losses: make([]float64, 0, cfg.Iterations+1)}
	res.Losses = append(res.Losses, loss)

	start := time.Now()
	if cfg.VerboseEvery > 0 {
		fmt.Fprintf(cfg.Out, "Starting Training... initial loss: %.6f\n", loss)
	}

	for iter := 1; iter <= cfg.Iterations; iter++ {
		grad, err := gradient(X, y, W, lossFn, cfg)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", iter, err)
		}

		// Simple update: W = W - (lr * gradient)
		floats.AddScaled(W.data, -cfg.LearningRate, grad.data)

		loss, err = lossFn(X, y, W)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", iter, err)
		}
		res.Losses = append(res.Losses, loss)

		if cfg.VerboseEvery > 0 && (iter%cfg.VerboseEvery == 0 || iter == 1) {
			fmt.Fprintf(cfg.Out, "Iter %d | Loss: %.6f | Time: %v\n", iter, loss, time.Since(start))
		}
	}

	if cfg.VerboseEvery > 0 {
		fmt.Fprintf(cfg.Out, "Training Complete. Total Time: %v\n", time.Since(start))
	}
	return res, nil
}

func gradient(X *Matrix, y []int, W *Matrix, lossFn LossFunc, cfg TrainingConfig) (*Matrix, error) {
	switch cfg.Gradient {
	case GradAnalytic:
		_, grad, err := AnalyticGradient(X, y, W, cfg.Margin())
		return grad, err
	case GradCentral:
		return CentralGradient(X, y, W, lossFn, cfg.Step)
	default:
		return NumericGradientParallel(X, y, W, lossFn, cfg.Step, cfg.NumWorkers)
	}
}
