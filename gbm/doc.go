// Package gbm implements gradient boosted regression trees for least
// squares loss.
//
// An Ensemble starts from the mean of the response and adds depth-limited
// regression trees, each fit to the current residuals and shrunk by the
// learning rate. Splits maximize variance reduction; fitting is fully
// deterministic.
//
//	cfg := gbm.DefaultConfig()
//	ens, err := gbm.Fit(x, y, cfg)
//	yhat := ens.Predict(row)
//
// PredictN evaluates only the first n trees, so one fitted ensemble can be
// read at any smaller tree count.
package gbm
