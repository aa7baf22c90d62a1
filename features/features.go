package features

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/datalimited/goprm/catchseries"
)

// NumLags is the number of lagged scaled-catch columns.
const NumLags = 4

// slopeYears is the window for the initial-slope regression.
const slopeYears = catchseries.MinYears

// Table is a feature table with one row per stock-year. Passthrough
// columns (Year, Catch, BBmsy, SpeciesCat) sit alongside the derived
// predictors; missing lag positions are NaN.
type Table struct {
	Year       []int
	Catch      []float64
	BBmsy      []float64
	SpeciesCat []string

	YearsBack         []float64 // countdown from n to 1, most recent year = 1
	MaxCatch          []float64 // series maximum catch, repeated per row
	ScaledCatch       []float64 // catch / max catch
	MeanScaledCatch   []float64 // series mean of scaled catch, repeated per row
	ScaledCatchLag    [NumLags][]float64
	CatchToRollingMax []float64 // scaled catch / running max of scaled catch
	TimeToMax         []float64 // 1-based index of the max-catch year, repeated per row
	InitialSlope      []float64 // OLS slope of the first six scaled catches, repeated per row
}

// Build derives the feature table for one stock. The series is validated
// first; see catchseries.Series.Validate for the rejected shapes.
func Build(s *catchseries.Series) (*Table, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	n := s.Len()
	t := newTable(n)

	maxCatch := s.MaxCatch()
	scaled := make([]float64, n)
	for i, c := range s.Catch {
		scaled[i] = c / maxCatch
	}
	meanScaled := floats.Sum(scaled) / float64(n)
	timeToMax := float64(s.TimeToMax())
	slope := initialSlope(scaled)

	rollingMax := math.Inf(-1)
	for i := 0; i < n; i++ {
		t.Year[i] = s.Year[i]
		t.Catch[i] = s.Catch[i]
		t.BBmsy[i] = s.BBmsy[i]
		t.SpeciesCat[i] = s.SpeciesCat

		t.YearsBack[i] = float64(n - i)
		t.MaxCatch[i] = maxCatch
		t.ScaledCatch[i] = scaled[i]
		t.MeanScaledCatch[i] = meanScaled
		t.TimeToMax[i] = timeToMax
		t.InitialSlope[i] = slope

		for lag := 1; lag <= NumLags; lag++ {
			if i-lag >= 0 {
				t.ScaledCatchLag[lag-1][i] = scaled[i-lag]
			} else {
				t.ScaledCatchLag[lag-1][i] = math.NaN()
			}
		}

		if scaled[i] > rollingMax {
			rollingMax = scaled[i]
		}
		t.CatchToRollingMax[i] = scaled[i] / rollingMax
	}

	return t, nil
}

// initialSlope fits scaled catch for the first six years against positions
// 1..6 by ordinary least squares and returns the slope coefficient.
func initialSlope(scaled []float64) float64 {
	pos := make([]float64, slopeYears)
	for i := range pos {
		pos[i] = float64(i + 1)
	}
	_, beta := stat.LinearRegression(pos, scaled[:slopeYears], nil, false)
	return beta
}

// Stack concatenates feature tables row-wise into one panel. Each input
// keeps its own per-stock scalars; nothing is recomputed across stocks.
func Stack(tables ...*Table) *Table {
	out := newTable(0)
	for _, t := range tables {
		out.Year = append(out.Year, t.Year...)
		out.Catch = append(out.Catch, t.Catch...)
		out.BBmsy = append(out.BBmsy, t.BBmsy...)
		out.SpeciesCat = append(out.SpeciesCat, t.SpeciesCat...)
		out.YearsBack = append(out.YearsBack, t.YearsBack...)
		out.MaxCatch = append(out.MaxCatch, t.MaxCatch...)
		out.ScaledCatch = append(out.ScaledCatch, t.ScaledCatch...)
		out.MeanScaledCatch = append(out.MeanScaledCatch, t.MeanScaledCatch...)
		for lag := 0; lag < NumLags; lag++ {
			out.ScaledCatchLag[lag] = append(out.ScaledCatchLag[lag], t.ScaledCatchLag[lag]...)
		}
		out.CatchToRollingMax = append(out.CatchToRollingMax, t.CatchToRollingMax...)
		out.TimeToMax = append(out.TimeToMax, t.TimeToMax...)
		out.InitialSlope = append(out.InitialSlope, t.InitialSlope...)
	}
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.ScaledCatch)
}

// RowComplete reports whether row i has every predictor present.
func (t *Table) RowComplete(i int) bool {
	for lag := 0; lag < NumLags; lag++ {
		if math.IsNaN(t.ScaledCatchLag[lag][i]) {
			return false
		}
	}
	return !math.IsNaN(t.YearsBack[i]) &&
		!math.IsNaN(t.MaxCatch[i]) &&
		!math.IsNaN(t.ScaledCatch[i]) &&
		!math.IsNaN(t.MeanScaledCatch[i]) &&
		!math.IsNaN(t.CatchToRollingMax[i]) &&
		!math.IsNaN(t.TimeToMax[i]) &&
		!math.IsNaN(t.InitialSlope[i])
}

// Complete returns the subset of rows with every predictor present and a
// finite, positive BBmsy response. Rows keep their input order.
func (t *Table) Complete() *Table {
	return t.filter(func(i int) bool {
		return t.RowComplete(i) && !math.IsNaN(t.BBmsy[i]) && t.BBmsy[i] > 0
	})
}

// CompletePredictors returns the subset of rows with every predictor
// present, regardless of response. Rows keep their input order.
func (t *Table) CompletePredictors() *Table {
	return t.filter(t.RowComplete)
}

func (t *Table) filter(keep func(int) bool) *Table {
	out := newTable(0)
	for i := 0; i < t.Len(); i++ {
		if !keep(i) {
			continue
		}
		out.Year = append(out.Year, t.Year[i])
		out.Catch = append(out.Catch, t.Catch[i])
		out.BBmsy = append(out.BBmsy, t.BBmsy[i])
		out.SpeciesCat = append(out.SpeciesCat, t.SpeciesCat[i])
		out.YearsBack = append(out.YearsBack, t.YearsBack[i])
		out.MaxCatch = append(out.MaxCatch, t.MaxCatch[i])
		out.ScaledCatch = append(out.ScaledCatch, t.ScaledCatch[i])
		out.MeanScaledCatch = append(out.MeanScaledCatch, t.MeanScaledCatch[i])
		for lag := 0; lag < NumLags; lag++ {
			out.ScaledCatchLag[lag] = append(out.ScaledCatchLag[lag], t.ScaledCatchLag[lag][i])
		}
		out.CatchToRollingMax = append(out.CatchToRollingMax, t.CatchToRollingMax[i])
		out.TimeToMax = append(out.TimeToMax, t.TimeToMax[i])
		out.InitialSlope = append(out.InitialSlope, t.InitialSlope[i])
	}
	return out
}

// PredictorRow returns the numeric predictor values of row i in the fixed
// column order given by PredictorNames.
func (t *Table) PredictorRow(i int) []float64 {
	row := []float64{
		t.YearsBack[i],
		t.MaxCatch[i],
		t.ScaledCatch[i],
		t.MeanScaledCatch[i],
	}
	for lag := 0; lag < NumLags; lag++ {
		row = append(row, t.ScaledCatchLag[lag][i])
	}
	return append(row,
		t.CatchToRollingMax[i],
		t.TimeToMax[i],
		t.InitialSlope[i],
	)
}

// PredictorNames returns the numeric predictor column names in the order
// used by PredictorRow.
func PredictorNames() []string {
	return []string{
		"years_back",
		"max_catch",
		"scaled_catch",
		"mean_scaled_catch",
		"scaled_catch1",
		"scaled_catch2",
		"scaled_catch3",
		"scaled_catch4",
		"catch_to_rolling_max",
		"time_to_max",
		"initial_slope",
	}
}

func newTable(n int) *Table {
	t := &Table{
		Year:              make([]int, n),
		Catch:             make([]float64, n),
		BBmsy:             make([]float64, n),
		SpeciesCat:        make([]string, n),
		YearsBack:         make([]float64, n),
		MaxCatch:          make([]float64, n),
		ScaledCatch:       make([]float64, n),
		MeanScaledCatch:   make([]float64, n),
		CatchToRollingMax: make([]float64, n),
		TimeToMax:         make([]float64, n),
		InitialSlope:      make([]float64, n),
	}
	for lag := 0; lag < NumLags; lag++ {
		t.ScaledCatchLag[lag] = make([]float64, n)
	}
	return t
}
