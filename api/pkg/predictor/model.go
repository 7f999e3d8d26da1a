package predictor

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// l2Regularization is a fixed, small regularization constant applied during
// gradient descent to keep weights from diverging on tiny training sets.
const l2Regularization = 1e-3

// logisticModel is a binary logistic regression classifier with a fixed
// feature layout (see features.go). It is fit by batched gradient descent,
// which is deterministic given its initial weights, so randomState only
// seeds weight initialization, never the optimization path itself.
type logisticModel struct {
	weights *mat.VecDense
	bias    float64
}

func newLogisticModel(dim int, randomState int64) *logisticModel {
	rng := rand.New(rand.NewSource(randomState))
	w := make([]float64, dim)
	for i := range w {
		w[i] = rng.NormFloat64() * 0.01
	}
	return &logisticModel{weights: mat.NewVecDense(dim, w), bias: 0}
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// fit runs batch gradient descent for maxIter iterations over the design
// matrix X (n x dim) and labels y (n), with a fixed learning rate. Each
// iteration's forward pass (X*w) and backward pass (X^T*err) are gonum
// matrix-vector products rather than hand-rolled row loops.
func (m *logisticModel) fit(x *mat.Dense, y []float64, maxIter int) {
	n, dim := x.Dims()
	if n == 0 {
		return
	}
	const learningRate = 0.1

	z := mat.NewVecDense(n, nil)
	errVec := mat.NewVecDense(n, nil)
	gradW := mat.NewVecDense(dim, nil)

	for iter := 0; iter < maxIter; iter++ {
		z.MulVec(x, m.weights)
		for i := 0; i < n; i++ {
			errVec.SetVec(i, sigmoid(z.AtVec(i)+m.bias)-y[i])
		}

		gradW.MulVec(x.T(), errVec)
		gradWData := gradW.RawVector().Data
		floats.Scale(1.0/float64(n), gradWData)
		floats.AddScaled(gradWData, l2Regularization, m.weights.RawVector().Data)

		floats.AddScaled(m.weights.RawVector().Data, -learningRate, gradWData)
		m.bias -= learningRate * floats.Sum(errVec.RawVector().Data) / float64(n)
	}
}

// predictProb returns P(occupied=1 | features) as a dot product of the
// fitted weight vector against features, padding or truncating features to
// the model's trained dimension so an unknown-vocabulary inference row
// never panics.
func (m *logisticModel) predictProb(features []float64) float64 {
	dim := m.weights.Len()
	vec := features
	if len(vec) != dim {
		padded := make([]float64, dim)
		copy(padded, vec)
		vec = padded
	}
	z := m.weights.Dot(mat.NewVecDense(dim, vec)) + m.bias
	return sigmoid(z)
}

// constantModel is the most-frequent-class fallback used when training data
// contains only one class.
type constantModel struct {
	probability float64 // P(occupied=1), either 0 or 1
}

func (m *constantModel) predictProb(_ []float64) float64 {
	return m.probability
}
