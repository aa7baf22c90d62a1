// Package goprm estimates fish stock depletion status (B/Bmsy) from catch
// time series using panel regression models.
//
// GoPRM implements the catch-only panel regression approach to data-limited
// stock assessment: a fixed feature vector is derived from each stock's catch
// history, a regression is trained across many stocks with known status, and
// the fitted model predicts status (with optional confidence intervals) for
// stocks where only catches are observed.
//
// # Quick Start
//
// Build features for a stock and predict its status with a fitted model:
//
//	series := &catchseries.Series{
//	    Year:       years,
//	    Catch:      catches,
//	    BBmsy:      bbmsy, // NaN where unknown
//	    SpeciesCat: "gadoids",
//	}
//	tbl, _ := features.Build(series)
//	preds, _ := model.Predict(tbl.Complete())
//
// Fit a model on a panel of stocks with known status:
//
//	training := features.Stack(tbl1, tbl2, tbl3)
//	model, _ := prm.Fit(training, prm.ModelLinear, nil)
//	pred, _ := model.PredictInterval(tbl.Complete(), 0.95)
//
// # Packages
//
// The library is organized into the following packages:
//
//   - catchseries: catch/status time series data structures and CSV panels
//   - features: derived feature tables for panel regression
//   - prm: model fitting, prediction, and serialization
//   - gbm: gradient boosted regression trees (the boosted model family)
//   - eval: cross-validated comparison of model families
//
// # References
//
//   - Costello, C. et al. (2012). Status and Solutions for the World's
//     Unassessed Fisheries. Science 338, 517-520.
//   - Anderson, S.C. et al. (2017). Improving estimates of population status
//     and trend with superensemble models. Fish and Fisheries 18, 732-741.
package goprm
