package learning

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// ClassifierOptions controls logistic regression fitting
type ClassifierOptions struct {
	// C is the inverse regularization strength
	C         float64
	MaxIter   int
	Tolerance float64
}

// DefaultClassifierOptions returns C=1, 1000 iterations, tolerance 1e-4
func DefaultClassifierOptions() ClassifierOptions {
	return ClassifierOptions{C: 1.0, MaxIter: 1000, Tolerance: 1e-4}
}

// LogisticRegression is an L2-regularized logistic regression over sparse
// rows. Two classes use a single sigmoid weight row for the second class;
// three or more use a multinomial softmax with one row per class.
// Intercepts are not penalized.
type LogisticRegression struct {
	Classes    []string    `json:"classes"`
	Weights    [][]float64 `json:"weights"`
	Intercepts []float64   `json:"intercepts"`

	NumFeatures int               `json:"num_features"`
	Options     ClassifierOptions `json:"options"`

	Iterations int  `json:"iterations"`
	Converged  bool `json:"converged"`
}

// NewLogisticRegression creates an unfitted classifier
func NewLogisticRegression(opts ClassifierOptions) *LogisticRegression {
	return &LogisticRegression{Options: opts}
}

// Fit learns weights from feature rows X with labels y
func (m *LogisticRegression) Fit(X []SparseVector, y []string, numFeatures int) error {
	if len(X) != len(y) {
		return fmt.Errorf("got %d rows and %d labels", len(X), len(y))
	}
	if len(X) == 0 {
		return ErrEmptyCorpus
	}
	if m.Options.C <= 0 {
		return fmt.Errorf("c must be > 0")
	}

	classes := SortClasses(y)
	if len(classes) < 2 {
		return fmt.Errorf("need samples of at least 2 classes, got %d", len(classes))
	}

	classIndex := make(map[string]int, len(classes))
	for i, c := range classes {
		classIndex[c] = i
	}
	targets := make([]int, len(y))
	for i, label := range y {
		targets[i] = classIndex[label]
	}

	rows := len(classes)
	if rows == 2 {
		rows = 1
	}

	obj := &objective{
		x:           X,
		y:           targets,
		rows:        rows,
		numFeatures: numFeatures,
		alpha:       1 / (m.Options.C * float64(len(X))),
	}

	problem := optimize.Problem{
		Func: func(w []float64) float64 {
			return obj.evaluate(w, nil)
		},
		Grad: func(grad, w []float64) {
			obj.evaluate(w, grad)
		},
	}

	settings := &optimize.Settings{
		MajorIterations:   m.Options.MaxIter,
		GradientThreshold: m.Options.Tolerance,
	}

	initial := make([]float64, rows*(numFeatures+1))
	result, err := optimize.Minimize(problem, initial, settings, &optimize.LBFGS{})
	if result == nil || result.X == nil {
		if err == nil {
			err = errors.New("optimizer returned no result")
		}
		return fmt.Errorf("failed to fit classifier: %w", err)
	}
	if err != nil {
		slog.Warn("optimizer stopped early, using last location", "error", err, "iterations", result.Stats.MajorIterations)
	}

	m.Classes = classes
	m.NumFeatures = numFeatures
	m.Weights = make([][]float64, rows)
	m.Intercepts = make([]float64, rows)
	for k := 0; k < rows; k++ {
		offset := k * (numFeatures + 1)
		m.Weights[k] = append([]float64(nil), result.X[offset:offset+numFeatures]...)
		m.Intercepts[k] = result.X[offset+numFeatures]
	}

	m.Iterations = result.Stats.MajorIterations
	m.Converged = err == nil && result.Status != optimize.IterationLimit
	if !m.Converged {
		slog.Warn("logistic regression did not converge",
			"iterations", m.Iterations,
			"status", result.Status.String())
	}
	return nil
}

// PredictProba returns one probability per class, in Classes order
func (m *LogisticRegression) PredictProba(x SparseVector) []float64 {
	if len(m.Weights) == 1 {
		p := sigmoid(x.Dot(m.Weights[0]) + m.Intercepts[0])
		return []float64{1 - p, p}
	}

	scores := m.scores(x)
	lse := floats.LogSumExp(scores)
	for k := range scores {
		scores[k] = math.Exp(scores[k] - lse)
	}
	return scores
}

// Predict returns the most probable class. Ties go to the first class.
func (m *LogisticRegression) Predict(x SparseVector) string {
	if len(m.Weights) == 1 {
		if x.Dot(m.Weights[0])+m.Intercepts[0] > 0 {
			return m.Classes[1]
		}
		return m.Classes[0]
	}
	return m.Classes[floats.MaxIdx(m.scores(x))]
}

// PredictAll predicts every row, preserving order
func (m *LogisticRegression) PredictAll(X []SparseVector) []string {
	out := make([]string, len(X))
	for i, x := range X {
		out[i] = m.Predict(x)
	}
	return out
}

// Fitted reports whether the classifier has weights
func (m *LogisticRegression) Fitted() bool {
	return len(m.Classes) >= 2 && len(m.Weights) > 0
}

func (m *LogisticRegression) scores(x SparseVector) []float64 {
	scores := make([]float64, len(m.Weights))
	for k, w := range m.Weights {
		scores[k] = x.Dot(w) + m.Intercepts[k]
	}
	return scores
}

// SortClasses returns the distinct labels, numerically ordered when every
// label is an integer and lexicographically otherwise.
func SortClasses(labels []string) []string {
	seen := make(map[string]struct{})
	var classes []string
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		classes = append(classes, l)
	}

	numeric := make(map[string]int64, len(classes))
	for _, c := range classes {
		n, err := strconv.ParseInt(c, 10, 64)
		if err != nil {
			sort.Strings(classes)
			return classes
		}
		numeric[c] = n
	}

	sort.Slice(classes, func(i, j int) bool {
		return numeric[classes[i]] < numeric[classes[j]]
	})
	return classes
}

// objective is the mean log loss plus alpha/2·||W||²
type objective struct {
	x           []SparseVector
	y           []int
	rows        int
	numFeatures int
	alpha       float64
}

func (o *objective) evaluate(w, grad []float64) float64 {
	stride := o.numFeatures + 1
	n := float64(len(o.x))

	if grad != nil {
		for i := range grad {
			grad[i] = 0
		}
	}

	var loss float64
	scores := make([]float64, o.rows)
	for i, x := range o.x {
		for k := 0; k < o.rows; k++ {
			offset := k * stride
			scores[k] = x.Dot(w[offset:offset+o.numFeatures]) + w[offset+o.numFeatures]
		}

		if o.rows == 1 {
			z := scores[0]
			target := float64(o.y[i])
			// log(1+exp(z)) - target·z, computed stably
			loss += softplus(z) - target*z
			if grad != nil {
				o.accumulate(grad, 0, x, sigmoid(z)-target)
			}
			continue
		}

		lse := floats.LogSumExp(scores)
		loss += lse - scores[o.y[i]]
		if grad != nil {
			for k := 0; k < o.rows; k++ {
				residual := math.Exp(scores[k] - lse)
				if k == o.y[i] {
					residual--
				}
				o.accumulate(grad, k, x, residual)
			}
		}
	}

	loss /= n
	if grad != nil {
		floats.Scale(1/n, grad)
	}

	for k := 0; k < o.rows; k++ {
		offset := k * stride
		weights := w[offset : offset+o.numFeatures]
		loss += 0.5 * o.alpha * floats.Dot(weights, weights)
		if grad != nil {
			floats.AddScaled(grad[offset:offset+o.numFeatures], o.alpha, weights)
		}
	}

	return loss
}

func (o *objective) accumulate(grad []float64, row int, x SparseVector, residual float64) {
	if residual == 0 {
		return
	}
	offset := row * (o.numFeatures + 1)
	for j, idx := range x.Indices {
		grad[offset+idx] += residual * x.Values[j]
	}
	grad[offset+o.numFeatures] += residual
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func softplus(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}
