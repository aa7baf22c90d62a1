package eval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datalimited/goprm/catchseries"
	"github.com/datalimited/goprm/gbm"
	"github.com/datalimited/goprm/prm"
)

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

func testStocks(t *testing.T) []*catchseries.Series {
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

func TestLeaveOneStockOutLinear(t *testing.T) {
	stocks := testStocks(t)
	res, err := LeaveOneStockOut(stocks, prm.ModelLinear, nil)
	require.NoError(t, err)

	assert.Equal(t, prm.ModelLinear, res.Type)
	assert.Len(t, res.PerStock, len(stocks))
	assert.Greater(t, res.NPred, 0)
	assert.Greater(t, res.RMSE, 0.0)
	assert.False(t, math.IsNaN(res.RMSE))
	assert.LessOrEqual(t, res.MAE, res.RMSE, "MAE never exceeds RMSE")

	total := 0
	for _, sr := range res.PerStock {
		assert.Greater(t, sr.NPred, 0)
		assert.False(t, math.IsNaN(sr.RMSE))
		total += sr.NPred
	}
	assert.Equal(t, res.NPred, total)
}

func TestLeaveOneStockOutBoosted(t *testing.T) {
	stocks := testStocks(t)
	cfg := &gbm.Config{NTrees: 30, MaxDepth: 2, LearningRate: 0.2, MinLeaf: 3}

	res, err := LeaveOneStockOut(stocks, prm.ModelBoosted, cfg)
	require.NoError(t, err)
	assert.Equal(t, prm.ModelBoosted, res.Type)
	assert.Greater(t, res.NPred, 0)
	assert.False(t, math.IsNaN(res.RMSE))
}

func TestLeaveOneStockOutNeedsTwoStocks(t *testing.T) {
	stocks := testStocks(t)[:1]
	_, err := LeaveOneStockOut(stocks, prm.ModelLinear, nil)
	require.Error(t, err)
}

func TestLeaveOneStockOutSkipsStatusFreeStocks(t *testing.T) {
	stocks := testStocks(t)
	unknown, err := catchseries.NewCatchOnly("unknown",
		[]int{2000, 2001, 2002, 2003, 2004, 2005, 2006, 2007, 2008, 2009},
		[]float64{10, 20, 30, 40, 50, 60, 50, 40, 30, 20}, "gadoids")
	require.NoError(t, err)
	stocks = append(stocks, unknown)

	res, err := LeaveOneStockOut(stocks, prm.ModelLinear, nil)
	require.NoError(t, err)
	for _, sr := range res.PerStock {
		assert.NotEqual(t, "unknown", sr.Name)
	}
}

func TestLeaveOneStockOutSkipsUnscorableSpecies(t *testing.T) {
	stocks := testStocks(t)
	lone := riseFallStock(t, "lone-species", "elasmobranchs", 26, 16, 70)
	stocks = append(stocks, lone)

	// Holding out the only elasmobranch stock leaves no model that knows
	// its category; that fold is skipped, not fatal.
	res, err := LeaveOneStockOut(stocks, prm.ModelLinear, nil)
	require.NoError(t, err)
	for _, sr := range res.PerStock {
		assert.NotEqual(t, "lone-species", sr.Name)
	}
	assert.Len(t, res.PerStock, len(stocks)-1)
}

func TestCompare(t *testing.T) {
	stocks := testStocks(t)
	cfg := &gbm.Config{NTrees: 30, MaxDepth: 2, LearningRate: 0.2, MinLeaf: 3}

	cmp, err := Compare(stocks, cfg)
	require.NoError(t, err)
	require.NotNil(t, cmp.Linear)
	require.NotNil(t, cmp.Boosted)
	assert.Equal(t, prm.ModelLinear, cmp.Linear.Type)
	assert.Equal(t, prm.ModelBoosted, cmp.Boosted.Type)
	assert.Equal(t, cmp.Linear.NPred, cmp.Boosted.NPred)
}

func TestLeaveOneStockOutRejectsShortStock(t *testing.T) {
	stocks := testStocks(t)
	stocks = append(stocks, &catchseries.Series{
		Name:       "short",
		Year:       []int{2000, 2001},
		Catch:      []float64{1, 2},
		BBmsy:      []float64{1, 1},
		SpeciesCat: "gadoids",
	})

	_, err := LeaveOneStockOut(stocks, prm.ModelLinear, nil)
	require.ErrorIs(t, err, catchseries.ErrInvalidInput)
}
