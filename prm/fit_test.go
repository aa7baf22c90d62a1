package prm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datalimited/goprm/catchseries"
	"github.com/datalimited/goprm/features"
	"github.com/datalimited/goprm/gbm"
)

// riseFallStock builds a deterministic rise-and-fall catch trajectory with
// a smoothly declining status.
func riseFallStock(t *testing.T, name, species string, years, peak int, scale float64) *catchseries.Series {
	t.Helper()
	year := make([]int, years)
	catch := make([]float64, years)
	bbmsy := make([]float64, years)
	for i := 0; i < years; i++ {
		year[i] = 1970 + i
		if i <= peak {
			catch[i] = scale * float64(i+1) / float64(peak+1)
		} else {
			catch[i] = catch[i-1] * 0.9
		}
		bbmsy[i] = 2.0*math.Exp(-0.08*float64(i)) + 0.2
	}
	s, err := catchseries.New(name, year, catch, bbmsy, species)
	require.NoError(t, err)
	return s
}

// syntheticStocks returns a panel varied enough that the stock-constant
// predictor columns are linearly independent.
func syntheticStocks(t *testing.T) []*catchseries.Series {
	t.Helper()
	return []*catchseries.Series{
		riseFallStock(t, "a1", "gadoids", 30, 18, 120),
		riseFallStock(t, "a2", "gadoids", 24, 9, 75),
		riseFallStock(t, "a3", "gadoids", 38, 28, 210),
		riseFallStock(t, "a4", "gadoids", 21, 14, 40),
		riseFallStock(t, "b1", "clupeoids", 33, 11, 480),
		riseFallStock(t, "b2", "clupeoids", 27, 19, 340),
		riseFallStock(t, "b3", "clupeoids", 22, 7, 155),
		riseFallStock(t, "b4", "clupeoids", 29, 23, 95),
	}
}

func syntheticPanel(t *testing.T) *features.Table {
	t.Helper()
	stocks := syntheticStocks(t)
	tables := make([]*features.Table, len(stocks))
	for i, s := range stocks {
		tbl, err := features.Build(s)
		require.NoError(t, err)
		tables[i] = tbl
	}
	return features.Stack(tables...)
}

// withExactResponse overwrites BBmsy on complete rows so that the true
// model is exactly log-linear in the predictors.
func withExactResponse(t *testing.T, tbl *features.Table, wNum []float64, offset map[string]float64) {
	t.Helper()
	require.Len(t, wNum, len(features.PredictorNames()))
	for i := 0; i < tbl.Len(); i++ {
		if !tbl.RowComplete(i) {
			tbl.BBmsy[i] = math.NaN()
			continue
		}
		mu := dot(wNum, tbl.PredictorRow(i)) + offset[tbl.SpeciesCat[i]]
		tbl.BBmsy[i] = math.Exp(mu)
	}
}

func exactWeights() ([]float64, map[string]float64) {
	wNum := []float64{
		-0.01,   // years_back
		0.0005,  // max_catch
		-0.4,    // scaled_catch
		0.3,     // mean_scaled_catch
		0.1,     // scaled_catch1
		-0.05,   // scaled_catch2
		0.08,    // scaled_catch3
		-0.02,   // scaled_catch4
		-0.5,    // catch_to_rolling_max
		0.006,   // time_to_max
		-0.9,    // initial_slope
	}
	offset := map[string]float64{"gadoids": 0.4, "clupeoids": -0.2}
	return wNum, offset
}

func TestFitLinearRecoversExactModel(t *testing.T) {
	panel := syntheticPanel(t)
	wNum, offset := exactWeights()
	withExactResponse(t, panel, wNum, offset)

	m, err := Fit(panel, ModelLinear, nil)
	require.NoError(t, err)
	require.Equal(t, ModelLinear, m.Type)
	require.NotNil(t, m.Linear)
	assert.Nil(t, m.Boosted)
	assert.Equal(t, []string{"clupeoids", "gadoids"}, m.Levels)
	assert.Len(t, m.Linear.Coeffs, len(m.Columns))

	// Noise-free data: the residual variance collapses and predictions
	// reproduce the response exactly.
	assert.InDelta(t, 0, m.Linear.Sigma2, 1e-10)

	preds, err := m.Predict(panel)
	require.NoError(t, err)
	for i, p := range preds {
		if !panel.RowComplete(i) {
			assert.True(t, math.IsNaN(p), "row %d should be NaN", i)
			continue
		}
		assert.InDelta(t, panel.BBmsy[i], p, 1e-6*panel.BBmsy[i]+1e-9, "row %d", i)
	}
}

func TestFitRecordsRowsUsed(t *testing.T) {
	panel := syntheticPanel(t)
	m, err := Fit(panel, ModelLinear, nil)
	require.NoError(t, err)

	// Every stock loses its first NumLags rows to missing lags.
	want := 0
	for i := 0; i < panel.Len(); i++ {
		if panel.RowComplete(i) && !math.IsNaN(panel.BBmsy[i]) {
			want++
		}
	}
	assert.Equal(t, want, m.NObs)
	assert.Equal(t, panel.Len()-8*features.NumLags, m.NObs)
}

func TestFitBoosted(t *testing.T) {
	panel := syntheticPanel(t)
	cfg := &gbm.Config{NTrees: 50, MaxDepth: 2, LearningRate: 0.2, MinLeaf: 3}

	m, err := Fit(panel, ModelBoosted, cfg)
	require.NoError(t, err)
	require.Equal(t, ModelBoosted, m.Type)
	require.NotNil(t, m.Boosted)
	assert.Nil(t, m.Linear)
	assert.Equal(t, 50, m.Boosted.NTrees())

	preds, err := m.Predict(panel.Complete())
	require.NoError(t, err)
	for i, p := range preds {
		assert.False(t, math.IsNaN(p), "row %d", i)
		assert.Greater(t, p, 0.0, "predictions are exponentiated")
	}
}

func TestFitUnknownType(t *testing.T) {
	panel := syntheticPanel(t)
	_, err := Fit(panel, ModelType("quadratic"), nil)
	require.ErrorIs(t, err, ErrFit)
}

func TestFitNoUsableRows(t *testing.T) {
	s, err := catchseries.NewCatchOnly("unknown",
		[]int{2000, 2001, 2002, 2003, 2004, 2005, 2006, 2007, 2008, 2009},
		[]float64{10, 20, 30, 40, 50, 60, 50, 40, 30, 20}, "gadoids")
	require.NoError(t, err)
	tbl, err := features.Build(s)
	require.NoError(t, err)

	_, err = Fit(tbl, ModelLinear, nil)
	require.ErrorIs(t, err, ErrFit)
	assert.Contains(t, err.Error(), "no usable rows")
}

func TestFitFewerRowsThanPredictors(t *testing.T) {
	tbl, err := features.Build(riseFallStock(t, "only", "gadoids", 10, 6, 50))
	require.NoError(t, err)

	// One 10-year stock yields 6 usable rows against 12 predictors.
	_, err = Fit(tbl, ModelLinear, nil)
	require.ErrorIs(t, err, ErrFit)
	assert.Contains(t, err.Error(), "usable rows")
}

func TestFitNonPositiveResponse(t *testing.T) {
	panel := syntheticPanel(t)
	panel.BBmsy[features.NumLags] = 0 // a complete row

	_, err := Fit(panel, ModelLinear, nil)
	require.ErrorIs(t, err, ErrFit)
	assert.Contains(t, err.Error(), "positive")
}

func TestFitRankDeficientPanel(t *testing.T) {
	// Two byte-identical stocks: the stock-constant columns collapse and
	// the no-intercept design matrix loses rank.
	s1 := riseFallStock(t, "dup1", "gadoids", 30, 18, 120)
	s2 := riseFallStock(t, "dup2", "gadoids", 30, 18, 120)
	t1, err := features.Build(s1)
	require.NoError(t, err)
	t2, err := features.Build(s2)
	require.NoError(t, err)

	_, err = Fit(features.Stack(t1, t2), ModelLinear, nil)
	require.ErrorIs(t, err, ErrFit)
}

func TestFitMisalignedTable(t *testing.T) {
	panel := syntheticPanel(t)
	panel.YearsBack = panel.YearsBack[:3]

	_, err := Fit(panel, ModelLinear, nil)
	require.ErrorIs(t, err, ErrFit)
	assert.Contains(t, err.Error(), "years_back")
}

func TestFitPassesConfigThrough(t *testing.T) {
	panel := syntheticPanel(t)
	bad := &gbm.Config{NTrees: -1, MaxDepth: 1, LearningRate: 0.1, MinLeaf: 1}

	_, err := Fit(panel, ModelBoosted, bad)
	require.ErrorIs(t, err, ErrFit, "gbm config errors surface as fit errors")

	// The same config is ignored on the linear path.
	_, err = Fit(panel, ModelLinear, bad)
	require.NoError(t, err)
}
