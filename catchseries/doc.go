// Package catchseries provides catch/status time series data structures
// for data-limited stock assessment.
//
// A Series holds one stock's aligned catch history, observed B/Bmsy status
// (NaN where unknown), and a single species category label shared by the
// whole series. Series are the raw input to feature building.
//
// # Creating a Series
//
// Construct a series directly or from aligned slices:
//
//	s, err := catchseries.New("cod-27.47d20", years, catches, status, "gadoids")
//
// Status may be omitted entirely when only catches are observed:
//
//	s, err := catchseries.NewCatchOnly("cod-27.47d20", years, catches, "gadoids")
//
// # Panel CSV
//
// Long-format panels (one row per stock-year) load into one Series per
// stock:
//
//	stocks, err := catchseries.LoadPanelCSV(file, nil)
//
// The expected columns are stockid, year, catch, bbmsy, and species_cat;
// names are configurable through CSVOptions, and bbmsy values of "NA" are
// read as unknown.
package catchseries
