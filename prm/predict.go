package prm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/datalimited/goprm/features"
)

// Prediction holds per-row point estimates and confidence bounds on the
// B/Bmsy scale. Slices share the input table's length and order.
type Prediction struct {
	Fit   []float64 `json:"fit"`
	Lower []float64 `json:"lower"`
	Upper []float64 `json:"upper"`
	Level float64   `json:"level"`
}

// Predict returns one B/Bmsy point estimate per input row, in input
// order. The model's log-scale mean is exponentiated, so estimates are
// strictly positive for complete rows; rows missing a predictor (the
// first features.NumLags rows of a stock) yield NaN.
func (m *Model) Predict(t *features.Table) ([]float64, error) {
	means, err := m.logMeans(t)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(means))
	for i, mu := range means {
		out[i] = math.Exp(mu)
	}
	return out, nil
}

// PredictInterval returns per-row point estimates with a two-sided
// confidence interval at the given level (e.g. 0.95). The interval is
// exp(mean ∓ z·se) with se the standard error of the fitted value on the
// log scale, so the bounds are asymmetric around the point estimate.
//
// Only the linear family carries standard errors; requesting an interval
// from a boosted model is an error, never a silent point estimate.
func (m *Model) PredictInterval(t *features.Table, level float64) (*Prediction, error) {
	if m.Type != ModelLinear {
		return nil, fmt.Errorf("%w: model type %q cannot supply standard errors for intervals",
			ErrPrediction, m.Type)
	}
	if level <= 0 || level >= 1 {
		return nil, fmt.Errorf("%w: confidence level %v, want in (0, 1)", ErrPrediction, level)
	}

	means, err := m.logMeans(t)
	if err != nil {
		return nil, err
	}

	z := distuv.UnitNormal.Quantile(1 - (1-level)/2)
	pred := &Prediction{
		Fit:   make([]float64, len(means)),
		Lower: make([]float64, len(means)),
		Upper: make([]float64, len(means)),
		Level: level,
	}
	for i, mu := range means {
		if math.IsNaN(mu) {
			pred.Fit[i] = math.NaN()
			pred.Lower[i] = math.NaN()
			pred.Upper[i] = math.NaN()
			continue
		}
		row, err := encodeRow(t, i, m.Levels)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrPrediction, i, err)
		}
		se := m.Linear.fitSE(row)
		pred.Fit[i] = math.Exp(mu)
		pred.Lower[i] = math.Exp(mu - z*se)
		pred.Upper[i] = math.Exp(mu + z*se)
	}
	return pred, nil
}

// logMeans computes the per-row predicted mean on the log(B/Bmsy) scale,
// dispatching on the model family. Incomplete rows yield NaN.
func (m *Model) logMeans(t *features.Table) ([]float64, error) {
	if err := checkAligned(t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrediction, err)
	}
	if err := m.checkState(); err != nil {
		return nil, err
	}

	out := make([]float64, t.Len())
	for i := 0; i < t.Len(); i++ {
		if !t.RowComplete(i) {
			out[i] = math.NaN()
			continue
		}
		row, err := encodeRow(t, i, m.Levels)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrPrediction, i, err)
		}
		switch m.Type {
		case ModelLinear:
			out[i] = dot(m.Linear.Coeffs, row)
		case ModelBoosted:
			out[i] = m.Boosted.Predict(row)
		}
	}
	return out, nil
}

// checkState verifies the tagged union is consistent with its type tag.
func (m *Model) checkState() error {
	switch m.Type {
	case ModelLinear:
		if m.Linear == nil {
			return fmt.Errorf("%w: linear model carries no coefficients", ErrPrediction)
		}
		if len(m.Linear.Coeffs) != len(m.Columns) {
			return fmt.Errorf("%w: %d coefficients for %d columns",
				ErrPrediction, len(m.Linear.Coeffs), len(m.Columns))
		}
	case ModelBoosted:
		if m.Boosted == nil {
			return fmt.Errorf("%w: boosted model carries no ensemble", ErrPrediction)
		}
	default:
		return fmt.Errorf("%w: unknown model type %q", ErrPrediction, m.Type)
	}
	return nil
}

// fitSE is the standard error of the fitted value at model-matrix row x:
// sqrt(xᵀ (XᵀX)⁻¹ x · σ²).
func (lm *LinearModel) fitSE(x []float64) float64 {
	quad := 0.0
	for i := range x {
		inner := 0.0
		for j := range x {
			inner += lm.XtXInv[i][j] * x[j]
		}
		quad += x[i] * inner
	}
	return math.Sqrt(quad * lm.Sigma2)
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
