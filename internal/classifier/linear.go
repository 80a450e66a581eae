// Package classifier trains a linear-margin classifier on sparse tf-idf
// vectors. Multi-class problems use one-vs-rest; training is a Pegasos-style
// subgradient descent on the hinge loss, deterministic for a fixed config.
package classifier

import (
	"fmt"
	"math/rand"
	"sort"

	"authorid/internal/vectorizer"
)

// Config controls the solver. Identical inputs and an identical config
// always produce an identical model.
type Config struct {
	Lambda float64 // L2 regularization strength
	Epochs int
	Seed   int64 // epoch shuffling
}

// DefaultConfig matches the evaluation setup used throughout the pipeline.
func DefaultConfig() Config {
	return Config{Lambda: 1e-4, Epochs: 50, Seed: 7}
}

// LinearSVC is a trained one-vs-rest linear classifier.
type LinearSVC struct {
	cfg     Config
	classes []string
	weights [][]float64 // per class, dense over the fitted dimension
	scales  []float64   // lazy regularization scale per class
	bias    []float64
	dim     int
}

// New returns an untrained classifier. Zero-valued config fields fall back
// to DefaultConfig.
func New(cfg Config) *LinearSVC {
	def := DefaultConfig()
	if cfg.Lambda <= 0 {
		cfg.Lambda = def.Lambda
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = def.Epochs
	}
	return &LinearSVC{cfg: cfg}
}

// Classes returns the fitted label set in sorted order.
func (m *LinearSVC) Classes() []string { return m.classes }

// Fit trains one binary margin classifier per class. Classes are trained in
// sorted label order from a single seeded source, so the whole model is a
// pure function of (X, y, config).
func (m *LinearSVC) Fit(X []vectorizer.Vector, y []string) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("fit needs matching instances and labels, got %d/%d", len(X), len(y))
	}

	seen := make(map[string]struct{})
	for _, label := range y {
		seen[label] = struct{}{}
	}
	if len(seen) < 2 {
		return fmt.Errorf("fit needs at least 2 classes, got %d", len(seen))
	}
	classes := make([]string, 0, len(seen))
	for label := range seen {
		classes = append(classes, label)
	}
	sort.Strings(classes)

	dim := X[0].Dim
	for i, x := range X {
		if x.Dim != dim {
			return fmt.Errorf("instance %d has width %d, expected %d: %w", i, x.Dim, dim, vectorizer.ErrDimensionMismatch)
		}
	}

	m.classes = classes
	m.dim = dim
	m.weights = make([][]float64, len(classes))
	m.scales = make([]float64, len(classes))
	m.bias = make([]float64, len(classes))

	rng := rand.New(rand.NewSource(m.cfg.Seed))
	for ci, class := range classes {
		targets := make([]float64, len(y))
		for i, label := range y {
			if label == class {
				targets[i] = 1
			} else {
				targets[i] = -1
			}
		}
		w, scale, b := m.trainBinary(X, targets, rng)
		m.weights[ci] = w
		m.scales[ci] = scale
		m.bias[ci] = b
	}
	return nil
}

// trainBinary runs Pegasos over the hinge loss. The regularization shrink
// is carried in a scale factor so each step touches only the non-zero
// entries of the current instance.
func (m *LinearSVC) trainBinary(X []vectorizer.Vector, targets []float64, rng *rand.Rand) (w []float64, scale, bias float64) {
	w = make([]float64, m.dim)
	scale = 1.0
	lambda := m.cfg.Lambda

	t := 0
	for epoch := 0; epoch < m.cfg.Epochs; epoch++ {
		for _, i := range rng.Perm(len(X)) {
			t++
			eta := 1 / (lambda * float64(t))
			shrink := 1 - eta*lambda
			if shrink <= 0 {
				shrink = 1e-12
			}
			scale *= shrink

			x := X[i]
			margin := targets[i] * (scale*x.DotDense(w) + bias)
			if margin < 1 {
				step := eta * targets[i] / scale
				for k, idx := range x.Indices {
					w[idx] += step * x.Values[k]
				}
				bias += eta * targets[i]
			}

			// Fold the scale back in before it underflows.
			if scale < 1e-9 {
				for k := range w {
					w[k] *= scale
				}
				scale = 1.0
			}
		}
	}
	return w, scale, bias
}

// Decision returns the per-class margin scores for a single instance, in
// Classes() order.
func (m *LinearSVC) Decision(x vectorizer.Vector) ([]float64, error) {
	if m.dim == 0 {
		return nil, fmt.Errorf("decision on an untrained model")
	}
	if x.Dim != m.dim {
		return nil, fmt.Errorf("instance width %d, model width %d: %w", x.Dim, m.dim, vectorizer.ErrDimensionMismatch)
	}
	scores := make([]float64, len(m.classes))
	for ci := range m.classes {
		scores[ci] = m.scales[ci]*x.DotDense(m.weights[ci]) + m.bias[ci]
	}
	return scores, nil
}

// Predict returns the argmax class per instance, ties broken by class order.
func (m *LinearSVC) Predict(X []vectorizer.Vector) ([]string, error) {
	out := make([]string, len(X))
	for i, x := range X {
		scores, err := m.Decision(x)
		if err != nil {
			return nil, fmt.Errorf("instance %d: %w", i, err)
		}
		best := 0
		for ci := 1; ci < len(scores); ci++ {
			if scores[ci] > scores[best] {
				best = ci
			}
		}
		out[i] = m.classes[best]
	}
	return out, nil
}
