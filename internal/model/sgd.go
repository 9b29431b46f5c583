package model

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/KaramelBytes/sommelier-cli/internal/vectorize"
)

// Loss names understood by SGD.
const (
	LossHinge         = "hinge"
	LossLog           = "log_loss"
	LossModifiedHuber = "modified_huber"
	LossPerceptron    = "perceptron"
)

// Penalty names understood by SGD.
const (
	PenaltyL2         = "l2"
	PenaltyL1         = "l1"
	PenaltyElasticNet = "elasticnet"
	PenaltyNone       = "none"
)

const (
	// sparse inputs damp intercept updates
	interceptDecay = 0.01
	noChangeEpochs = 5
	maxDLoss       = 1e12
	minWScale      = 1e-9
)

// SGD is a one-vs-rest linear classifier trained by plain stochastic
// gradient descent with the "optimal" learning-rate schedule.
type SGD struct {
	Loss    string  `mapstructure:"loss" yaml:"loss"`
	Penalty string  `mapstructure:"penalty" yaml:"penalty"`
	Alpha   float64 `mapstructure:"alpha" yaml:"alpha"`
	L1Ratio float64 `mapstructure:"l1_ratio" yaml:"l1_ratio,omitempty"`
	MaxIter int     `mapstructure:"max_iter" yaml:"max_iter"`
	// Tol <= 0 disables the early-stopping criterion.
	Tol  float64 `mapstructure:"tol" yaml:"tol"`
	Seed int64   `mapstructure:"seed" yaml:"seed,omitempty"`
}

// DefaultSGD mirrors the usual defaults: hinge loss, l2, alpha 1e-4.
func DefaultSGD() SGD {
	return SGD{Loss: LossHinge, Penalty: PenaltyL2, Alpha: 1e-4, L1Ratio: 0.15, MaxIter: 1000, Tol: 1e-3}
}

func (SGD) Family() string { return FamilySGD }

func (s SGD) String() string {
	return fmt.Sprintf("sgd loss=%s penalty=%s alpha=%g max_iter=%d tol=%g", s.Loss, s.penalty(), s.Alpha, s.MaxIter, s.Tol)
}

func (s SGD) penalty() string {
	if s.Penalty == "" {
		return PenaltyL2
	}
	return s.Penalty
}

// LinearModel is a fitted one-vs-rest linear classifier.
type LinearModel struct {
	Coef      [][]float64
	Intercept []float64
}

type lossFunc struct {
	loss  func(p, y float64) float64
	dloss func(p, y float64) float64
}

func lossByName(name string) (lossFunc, bool) {
	switch name {
	case "", LossHinge:
		return hingeLoss(1), true
	case LossPerceptron:
		return hingeLoss(0), true
	case LossLog, "log":
		return lossFunc{
			loss: func(p, y float64) float64 {
				z := p * y
				if z > 18 {
					return math.Exp(-z)
				}
				if z < -18 {
					return -z
				}
				return math.Log1p(math.Exp(-z))
			},
			dloss: func(p, y float64) float64 {
				z := p * y
				if z > 18 {
					return math.Exp(-z) * -y
				}
				if z < -18 {
					return -y
				}
				return -y / (math.Exp(z) + 1)
			},
		}, true
	case LossModifiedHuber:
		return lossFunc{
			loss: func(p, y float64) float64 {
				z := p * y
				switch {
				case z >= 1:
					return 0
				case z >= -1:
					return (1 - z) * (1 - z)
				}
				return -4 * z
			},
			dloss: func(p, y float64) float64 {
				z := p * y
				switch {
				case z >= 1:
					return 0
				case z >= -1:
					return 2 * (1 - z) * -y
				}
				return -4 * y
			},
		}, true
	}
	return lossFunc{}, false
}

func hingeLoss(threshold float64) lossFunc {
	return lossFunc{
		loss: func(p, y float64) float64 {
			if z := p * y; z <= threshold {
				return threshold - z
			}
			return 0
		},
		dloss: func(p, y float64) float64 {
			if p*y <= threshold {
				return -y
			}
			return 0
		},
	}
}

func (s SGD) validate(classes int) (lossFunc, error) {
	if classes < 2 {
		return lossFunc{}, ErrTooFewClasses
	}
	lf, ok := lossByName(s.Loss)
	if !ok {
		return lossFunc{}, fmt.Errorf("sgd: unknown loss %q", s.Loss)
	}
	switch s.penalty() {
	case PenaltyL2, PenaltyL1, PenaltyElasticNet, PenaltyNone:
	default:
		return lossFunc{}, fmt.Errorf("sgd: unknown penalty %q", s.Penalty)
	}
	if s.Alpha <= 0 {
		return lossFunc{}, fmt.Errorf("sgd: alpha must be > 0, got %g", s.Alpha)
	}
	if s.MaxIter <= 0 {
		return lossFunc{}, fmt.Errorf("sgd: max_iter must be > 0, got %d", s.MaxIter)
	}
	return lf, nil
}

// Fit trains one binary classifier per class against the rest.
func (s SGD) Fit(x vectorize.Matrix, y []int, classes int) (Model, error) {
	if err := checkFitInput(x, y, classes); err != nil {
		return nil, err
	}
	lf, err := s.validate(classes)
	if err != nil {
		return nil, err
	}
	m := &LinearModel{Coef: make([][]float64, classes), Intercept: make([]float64, classes)}
	target := make([]float64, len(y))
	for c := 0; c < classes; c++ {
		for i, yc := range y {
			if yc == c {
				target[i] = 1
			} else {
				target[i] = -1
			}
		}
		m.Coef[c], m.Intercept[c] = s.fitBinary(x, target, lf)
	}
	return m, nil
}

// fitBinary runs plain SGD on labels in {-1, +1}. The weight vector is
// stored as wscale*w so that l2 shrinkage costs O(1) per step.
func (s SGD) fitBinary(x vectorize.Matrix, y []float64, lf lossFunc) ([]float64, float64) {
	n := len(x.Rows)
	w := make([]float64, x.Cols)
	wscale := 1.0
	var b float64

	var l1Ratio float64
	switch s.penalty() {
	case PenaltyL1:
		l1Ratio = 1
	case PenaltyElasticNet:
		l1Ratio = s.L1Ratio
	}
	useL2 := s.penalty() == PenaltyL2 || s.penalty() == PenaltyElasticNet
	useL1 := l1Ratio > 0

	// "optimal" schedule: eta = 1 / (alpha * (t0 + t))
	typw := math.Sqrt(1.0 / math.Sqrt(s.Alpha))
	eta0 := typw / math.Max(1.0, lf.dloss(-typw, 1.0))
	t0 := 1.0 / (eta0 * s.Alpha)

	// cumulative l1 penalty (truncated gradient)
	var u float64
	var q []float64
	if useL1 {
		q = make([]float64, x.Cols)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewSource(s.Seed))
	bestLoss := math.Inf(1)
	noImprove := 0
	t := 1.0

	for epoch := 0; epoch < s.MaxIter; epoch++ {
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		var sumLoss float64
		for _, i := range order {
			row := x.Rows[i]
			eta := 1.0 / (s.Alpha * (t0 + t - 1))
			p := wscale*row.Dot(w) + b
			sumLoss += lf.loss(p, y[i])
			d := lf.dloss(p, y[i])
			d = math.Max(-maxDLoss, math.Min(maxDLoss, d))
			update := -eta * d

			if useL2 {
				wscale *= math.Max(0, 1-(1-l1Ratio)*eta*s.Alpha)
				if wscale < minWScale {
					for j := range w {
						w[j] *= wscale
					}
					wscale = 1
				}
			}
			if update != 0 {
				for k, j := range row.Indices {
					w[j] += update * row.Values[k] / wscale
				}
				b += update * interceptDecay
			}
			if useL1 {
				u += l1Ratio * eta * s.Alpha
				for _, j := range row.Indices {
					z := w[j] * wscale
					nz := z
					if z > 0 {
						nz = math.Max(0, z-(u+q[j]))
					} else if z < 0 {
						nz = math.Min(0, z+(u-q[j]))
					}
					q[j] += nz - z
					w[j] = nz / wscale
				}
			}
			t++
		}
		if s.Tol > 0 {
			if sumLoss > bestLoss-s.Tol*float64(n) {
				noImprove++
			} else {
				noImprove = 0
			}
			if sumLoss < bestLoss {
				bestLoss = sumLoss
			}
			if noImprove >= noChangeEpochs {
				break
			}
		}
	}
	for j := range w {
		w[j] *= wscale
	}
	return w, b
}

// Decision returns the per-class scores of one row.
func (m *LinearModel) Decision(row vectorize.SparseVector) []float64 {
	out := make([]float64, len(m.Coef))
	for c := range m.Coef {
		out[c] = row.Dot(m.Coef[c]) + m.Intercept[c]
	}
	return out
}

// Predict returns the class with the highest decision score per row.
func (m *LinearModel) Predict(x vectorize.Matrix) []int {
	out := make([]int, len(x.Rows))
	for i, row := range x.Rows {
		out[i] = argmax(m.Decision(row))
	}
	return out
}

func (m *LinearModel) Weights(c int) []float64 { return m.Coef[c] }

func (m *LinearModel) Classes() int { return len(m.Coef) }
