// Package features derives panel-regression feature tables from catch
// time series.
//
// Build converts one stock's series into a Table with one row per year:
// the catch history is scaled by its maximum, lagged up to four years,
// compared against its running maximum, and summarized by series-wide
// scalars (mean scaled catch, time to maximum catch, and the slope of the
// first six years). Lags with no prior value are NaN, never zero.
//
// Tables from many stocks stack into a training panel:
//
//	tbl, _ := features.Build(series)
//	panel := features.Stack(tbl1, tbl2, tbl3)
//	train := panel.Complete() // rows with every predictor present
//
// Build is a pure function: identical inputs yield identical tables, and
// no state is carried between calls.
package features
