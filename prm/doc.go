// Package prm fits and applies panel regression models of stock status.
//
// The response is log(B/Bmsy) and the predictors are the derived columns
// of a features.Table plus one indicator column per species category, with
// no intercept term. Two model families share the Model type: an ordinary
// least squares fit (gonum) and a gradient boosted tree ensemble (gbm).
//
//	model, err := prm.Fit(panel, prm.ModelLinear, nil)
//	preds, err := model.Predict(tbl)
//	ival, err := model.PredictInterval(tbl, 0.95)
//
// Predictions are exponentiated back to the B/Bmsy scale. Confidence
// intervals are available on the linear path only; they are constructed on
// the log scale from the standard error of the fitted value and then
// exponentiated, so they are asymmetric around the point estimate.
//
// A fitted Model is immutable and serializes to JSON through Save and Load.
package prm
