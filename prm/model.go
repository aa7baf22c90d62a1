package prm

import (
	"errors"
	"fmt"
	"sort"

	"github.com/datalimited/goprm/features"
	"github.com/datalimited/goprm/gbm"
)

// ModelType tags the model family of a fitted Model.
type ModelType string

const (
	// ModelLinear is an ordinary least squares fit.
	ModelLinear ModelType = "linear"
	// ModelBoosted is a gradient boosted tree ensemble.
	ModelBoosted ModelType = "boosted"
)

// ErrFit reports a training table that is structurally insufficient.
var ErrFit = errors.New("prm: fit failed")

// ErrPrediction reports an input table or request the fitted model cannot
// serve.
var ErrPrediction = errors.New("prm: prediction failed")

// LinearModel holds the state of an ordinary least squares fit: the
// coefficient vector, the residual variance, and (XᵀX)⁻¹ for standard
// errors of fitted values.
type LinearModel struct {
	Coeffs []float64   `json:"coeffs"`
	Sigma2 float64     `json:"sigma2"`
	XtXInv [][]float64 `json:"xtx_inv"`
}

// Model is a fitted panel regression model. Exactly one of Linear and
// Boosted is set, according to Type. Models are immutable after Fit.
type Model struct {
	Type    ModelType     `json:"type"`
	Columns []string      `json:"columns"` // predictor columns in model-matrix order
	Levels  []string      `json:"levels"`  // species categories seen at fit time, sorted
	NObs    int           `json:"n_obs"`   // rows used after complete-case filtering
	Linear  *LinearModel  `json:"linear,omitempty"`
	Boosted *gbm.Ensemble `json:"boosted,omitempty"`
}

// speciesLevels collects the sorted distinct species categories of the
// rows selected by keep.
func speciesLevels(t *features.Table, keep []int) []string {
	seen := map[string]bool{}
	var levels []string
	for _, i := range keep {
		cat := t.SpeciesCat[i]
		if !seen[cat] {
			seen[cat] = true
			levels = append(levels, cat)
		}
	}
	sort.Strings(levels)
	return levels
}

// modelColumns is the model-matrix column list: the numeric predictors
// followed by one indicator per species level. There is no intercept
// column; the full set of level indicators spans it.
func modelColumns(levels []string) []string {
	cols := features.PredictorNames()
	for _, level := range levels {
		cols = append(cols, "species_cat"+level)
	}
	return cols
}

// encodeRow builds the model-matrix row for table row i: numeric
// predictors then species indicators in Levels order.
func encodeRow(t *features.Table, i int, levels []string) ([]float64, error) {
	row := t.PredictorRow(i)
	hit := false
	for _, level := range levels {
		if t.SpeciesCat[i] == level {
			row = append(row, 1)
			hit = true
		} else {
			row = append(row, 0)
		}
	}
	if !hit {
		return nil, fmt.Errorf("unseen species category %q (fit levels: %v)", t.SpeciesCat[i], levels)
	}
	return row, nil
}

// checkAligned verifies that every column of the table has the same row
// count, returning a message naming the first mismatch.
func checkAligned(t *features.Table) error {
	n := t.Len()
	cols := map[string]int{
		"year":                 len(t.Year),
		"catch":                len(t.Catch),
		"bbmsy":                len(t.BBmsy),
		"species_cat":          len(t.SpeciesCat),
		"years_back":           len(t.YearsBack),
		"max_catch":            len(t.MaxCatch),
		"mean_scaled_catch":    len(t.MeanScaledCatch),
		"catch_to_rolling_max": len(t.CatchToRollingMax),
		"time_to_max":          len(t.TimeToMax),
		"initial_slope":        len(t.InitialSlope),
	}
	for lag := 0; lag < features.NumLags; lag++ {
		cols[fmt.Sprintf("scaled_catch%d", lag+1)] = len(t.ScaledCatchLag[lag])
	}
	for name, got := range cols {
		if got != n {
			return fmt.Errorf("column %s has %d rows, scaled_catch has %d", name, got, n)
		}
	}
	return nil
}
