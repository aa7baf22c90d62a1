// Package eval compares panel regression model families by
// leave-one-stock-out cross-validation.
//
// Each stock with observed status is held out in turn: a model is fit on
// every other stock and scored on the held-out stock's complete rows.
// Errors are accumulated on the B/Bmsy scale.
//
//	result, err := eval.LeaveOneStockOut(stocks, prm.ModelLinear, nil)
//	both, err := eval.Compare(stocks, nil)
package eval
