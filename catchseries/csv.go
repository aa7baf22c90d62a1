package catchseries

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// CSVOptions holds column names for long-format panel CSV files.
type CSVOptions struct {
	StockColumn   string // stock identifier column (default: "stockid")
	YearColumn    string // year column (default: "year")
	CatchColumn   string // catch column (default: "catch")
	BBmsyColumn   string // observed status column (default: "bbmsy")
	SpeciesColumn string // species category column (default: "species_cat")
	Delimiter     rune   // field delimiter (default: ',')
}

// DefaultCSVOptions returns the default panel column names.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		StockColumn:   "stockid",
		YearColumn:    "year",
		CatchColumn:   "catch",
		BBmsyColumn:   "bbmsy",
		SpeciesColumn: "species_cat",
		Delimiter:     ',',
	}
}

// LoadPanelCSVFile loads a long-format panel from a CSV file.
func LoadPanelCSVFile(filename string, opts *CSVOptions) ([]*Series, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return LoadPanelCSV(file, opts)
}

// LoadPanelCSV loads a long-format panel (one row per stock-year) and
// returns one validated Series per stock, in first-appearance order.
// A bbmsy value of "", "NA", or "NaN" is read as unknown status.
func LoadPanelCSV(r io.Reader, opts *CSVOptions) ([]*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrInvalidInput, err)
	}

	idx := map[string]int{}
	for i, h := range header {
		idx[strings.TrimSpace(strings.Trim(h, "\""))] = i
	}
	stockIdx, ok := idx[opts.StockColumn]
	if !ok {
		return nil, fmt.Errorf("%w: missing column %q", ErrInvalidInput, opts.StockColumn)
	}
	yearIdx, ok := idx[opts.YearColumn]
	if !ok {
		return nil, fmt.Errorf("%w: missing column %q", ErrInvalidInput, opts.YearColumn)
	}
	catchIdx, ok := idx[opts.CatchColumn]
	if !ok {
		return nil, fmt.Errorf("%w: missing column %q", ErrInvalidInput, opts.CatchColumn)
	}
	bbmsyIdx, hasBBmsy := idx[opts.BBmsyColumn]
	speciesIdx, hasSpecies := idx[opts.SpeciesColumn]

	var order []string
	byStock := map[string]*Series{}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidInput, line, err)
		}
		line++

		id := strings.TrimSpace(record[stockIdx])
		year, err := strconv.Atoi(strings.TrimSpace(record[yearIdx]))
		if err != nil {
			return nil, fmt.Errorf("%w: stock %q: bad year %q", ErrInvalidInput, id, record[yearIdx])
		}
		catch, err := strconv.ParseFloat(strings.TrimSpace(record[catchIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: stock %q year %d: bad catch %q", ErrInvalidInput, id, year, record[catchIdx])
		}

		bbmsy := math.NaN()
		if hasBBmsy {
			str := strings.TrimSpace(record[bbmsyIdx])
			if str != "" && str != "NA" && str != "NaN" {
				bbmsy, err = strconv.ParseFloat(str, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: stock %q year %d: bad bbmsy %q", ErrInvalidInput, id, year, str)
				}
			}
		}

		s, seen := byStock[id]
		if !seen {
			s = &Series{Name: id}
			byStock[id] = s
			order = append(order, id)
		}
		if hasSpecies {
			cat := strings.TrimSpace(record[speciesIdx])
			if s.SpeciesCat == "" {
				s.SpeciesCat = cat
			} else if cat != s.SpeciesCat {
				return nil, fmt.Errorf("%w: stock %q has species categories %q and %q, want one",
					ErrInvalidInput, id, s.SpeciesCat, cat)
			}
		}
		s.Year = append(s.Year, year)
		s.Catch = append(s.Catch, catch)
		s.BBmsy = append(s.BBmsy, bbmsy)
	}

	stocks := make([]*Series, 0, len(order))
	for _, id := range order {
		s := byStock[id]
		if err := s.Validate(); err != nil {
			return nil, err
		}
		stocks = append(stocks, s)
	}
	if len(stocks) == 0 {
		return nil, fmt.Errorf("%w: no data rows", ErrInvalidInput)
	}
	return stocks, nil
}

// SavePanelCSV writes stocks as a long-format panel CSV.
func SavePanelCSV(w io.Writer, stocks []*Series, opts *CSVOptions) error {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	writer := csv.NewWriter(w)
	writer.Comma = opts.Delimiter
	defer writer.Flush()

	header := []string{opts.StockColumn, opts.YearColumn, opts.CatchColumn, opts.BBmsyColumn, opts.SpeciesColumn}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, s := range stocks {
		for i := range s.Catch {
			bbmsy := "NA"
			if !math.IsNaN(s.BBmsy[i]) {
				bbmsy = strconv.FormatFloat(s.BBmsy[i], 'f', -1, 64)
			}
			record := []string{
				s.Name,
				strconv.Itoa(s.Year[i]),
				strconv.FormatFloat(s.Catch[i], 'f', -1, 64),
				bbmsy,
				s.SpeciesCat,
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}
