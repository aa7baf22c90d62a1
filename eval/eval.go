package eval

import (
	"errors"
	"fmt"
	"math"

	"github.com/datalimited/goprm/catchseries"
	"github.com/datalimited/goprm/features"
	"github.com/datalimited/goprm/gbm"
	"github.com/datalimited/goprm/prm"
)

// StockResult scores one held-out stock.
type StockResult struct {
	Name  string  `json:"name"`
	NPred int     `json:"n_pred"` // scored rows
	RMSE  float64 `json:"rmse"`
	MAE   float64 `json:"mae"`
}

// Result aggregates leave-one-stock-out performance for one model family.
type Result struct {
	Type     prm.ModelType `json:"type"`
	RMSE     float64       `json:"rmse"`
	MAE      float64       `json:"mae"`
	NPred    int           `json:"n_pred"`
	PerStock []StockResult `json:"per_stock"`
}

// Comparison holds the results for both model families on one panel.
type Comparison struct {
	Linear  *Result `json:"linear"`
	Boosted *Result `json:"boosted"`
}

// LeaveOneStockOut cross-validates one model family: each stock with
// observed status is predicted by a model fit on all other stocks.
// Predictions and observations are compared on the B/Bmsy scale.
func LeaveOneStockOut(stocks []*catchseries.Series, typ prm.ModelType, cfg *gbm.Config) (*Result, error) {
	if len(stocks) < 2 {
		return nil, errors.New("eval: need at least two stocks for leave-one-stock-out")
	}

	tables := make([]*features.Table, len(stocks))
	for i, s := range stocks {
		tbl, err := features.Build(s)
		if err != nil {
			return nil, fmt.Errorf("eval: stock %q: %w", s.Name, err)
		}
		tables[i] = tbl
	}

	res := &Result{Type: typ}
	var sumSq, sumAbs float64

	for hold, s := range stocks {
		if !s.HasStatus() {
			continue
		}
		test := tables[hold].Complete()
		if test.Len() == 0 {
			continue
		}

		train := make([]*features.Table, 0, len(tables)-1)
		for i, tbl := range tables {
			if i != hold {
				train = append(train, tbl)
			}
		}

		model, err := prm.Fit(features.Stack(train...), typ, cfg)
		if err != nil {
			return nil, fmt.Errorf("eval: holding out %q: %w", s.Name, err)
		}

		preds, err := model.Predict(test)
		if err != nil {
			// A species category unique to the held-out stock cannot be
			// scored; skip it rather than fail the whole comparison.
			if errors.Is(err, prm.ErrPrediction) {
				continue
			}
			return nil, fmt.Errorf("eval: scoring %q: %w", s.Name, err)
		}

		var stockSq, stockAbs float64
		n := 0
		for i, p := range preds {
			if math.IsNaN(p) {
				continue
			}
			diff := p - test.BBmsy[i]
			stockSq += diff * diff
			stockAbs += math.Abs(diff)
			n++
		}
		if n == 0 {
			continue
		}

		res.PerStock = append(res.PerStock, StockResult{
			Name:  s.Name,
			NPred: n,
			RMSE:  math.Sqrt(stockSq / float64(n)),
			MAE:   stockAbs / float64(n),
		})
		sumSq += stockSq
		sumAbs += stockAbs
		res.NPred += n
	}

	if res.NPred == 0 {
		return nil, errors.New("eval: no stock could be scored")
	}
	res.RMSE = math.Sqrt(sumSq / float64(res.NPred))
	res.MAE = sumAbs / float64(res.NPred)
	return res, nil
}

// Compare runs LeaveOneStockOut for both model families on one panel.
func Compare(stocks []*catchseries.Series, cfg *gbm.Config) (*Comparison, error) {
	linear, err := LeaveOneStockOut(stocks, prm.ModelLinear, nil)
	if err != nil {
		return nil, err
	}
	boosted, err := LeaveOneStockOut(stocks, prm.ModelBoosted, cfg)
	if err != nil {
		return nil, err
	}
	return &Comparison{Linear: linear, Boosted: boosted}, nil
}
