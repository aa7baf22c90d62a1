package prm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/datalimited/goprm/features"
	"github.com/datalimited/goprm/gbm"
)

// Fit trains a panel regression model on a stacked feature table. The
// response is log(BBmsy) and the predictors are the derived feature
// columns plus one indicator per species category, with no intercept.
//
// Rows missing any predictor (the first features.NumLags rows of every
// stock) or missing the response are excluded; the count of rows actually
// used is recorded in Model.NObs. A usable row with a non-positive BBmsy
// is an error rather than a silent drop.
//
// cfg configures the boosted family and is passed to gbm unmodified; it
// is ignored for ModelLinear. A nil cfg means gbm.DefaultConfig.
func Fit(t *features.Table, typ ModelType, cfg *gbm.Config) (*Model, error) {
	if typ != ModelLinear && typ != ModelBoosted {
		return nil, fmt.Errorf("%w: unknown model type %q", ErrFit, typ)
	}
	if err := checkAligned(t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFit, err)
	}

	var keep []int
	for i := 0; i < t.Len(); i++ {
		if !t.RowComplete(i) || math.IsNaN(t.BBmsy[i]) {
			continue
		}
		if t.BBmsy[i] <= 0 {
			return nil, fmt.Errorf("%w: bbmsy = %v at row %d, want positive for log response",
				ErrFit, t.BBmsy[i], i)
		}
		keep = append(keep, i)
	}
	if len(keep) == 0 {
		return nil, fmt.Errorf("%w: no usable rows (every row misses a predictor or the response)", ErrFit)
	}

	levels := speciesLevels(t, keep)
	columns := modelColumns(levels)
	p := len(columns)
	n := len(keep)
	if n <= p {
		return nil, fmt.Errorf("%w: %d usable rows for %d predictors", ErrFit, n, p)
	}

	x := make([][]float64, n)
	y := make([]float64, n)
	for k, i := range keep {
		row, err := encodeRow(t, i, levels)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFit, err)
		}
		x[k] = row
		y[k] = math.Log(t.BBmsy[i])
	}

	m := &Model{
		Type:    typ,
		Columns: columns,
		Levels:  levels,
		NObs:    n,
	}

	switch typ {
	case ModelLinear:
		lin, err := fitLinear(x, y, p)
		if err != nil {
			return nil, err
		}
		m.Linear = lin
	case ModelBoosted:
		ens, err := gbm.Fit(x, y, cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFit, err)
		}
		m.Boosted = ens
	}

	return m, nil
}

// fitLinear solves the no-intercept least squares problem by QR and keeps
// the residual variance and (XᵀX)⁻¹ for fitted-value standard errors.
func fitLinear(x [][]float64, y []float64, p int) (*LinearModel, error) {
	n := len(x)
	data := make([]float64, 0, n*p)
	for _, row := range x {
		data = append(data, row...)
	}
	design := mat.NewDense(n, p, data)
	response := mat.NewVecDense(n, y)

	var qr mat.QR
	qr.Factorize(design)

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, response); err != nil {
		return nil, fmt.Errorf("%w: design matrix is rank deficient: %v", ErrFit, err)
	}

	var fitted mat.VecDense
	fitted.MulVec(design, &beta)
	rss := 0.0
	for i := 0; i < n; i++ {
		r := y[i] - fitted.AtVec(i)
		rss += r * r
	}
	sigma2 := rss / float64(n-p)

	var xtx mat.Dense
	xtx.Mul(design.T(), design)
	var inv mat.Dense
	if err := inv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("%w: XtX is singular: %v", ErrFit, err)
	}

	coeffs := make([]float64, p)
	for j := 0; j < p; j++ {
		coeffs[j] = beta.AtVec(j)
	}
	xtxInv := make([][]float64, p)
	for i := 0; i < p; i++ {
		xtxInv[i] = make([]float64, p)
		for j := 0; j < p; j++ {
			xtxInv[i][j] = inv.At(i, j)
		}
	}

	return &LinearModel{
		Coeffs: coeffs,
		Sigma2: sigma2,
		XtXInv: xtxInv,
	}, nil
}
