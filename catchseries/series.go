package catchseries

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// MinYears is the shortest series the feature derivation supports: the
// initial-slope feature regresses on the first six years of catches.
const MinYears = 6

// ErrInvalidInput reports a malformed or mismatched input series.
var ErrInvalidInput = errors.New("catchseries: invalid input")

// Series represents one stock's catch history and observed status.
type Series struct {
	Name       string    // stock identifier (optional)
	Year       []int     // calendar years, aligned with Catch
	Catch      []float64 // landings, non-negative
	BBmsy      []float64 // observed B/Bmsy; NaN where unknown
	SpeciesCat string    // species category, one label per series
}

// New creates a series from aligned year/catch/status slices and validates it.
func New(name string, year []int, catch, bbmsy []float64, speciesCat string) (*Series, error) {
	s := &Series{
		Name:       name,
		Year:       year,
		Catch:      catch,
		BBmsy:      bbmsy,
		SpeciesCat: speciesCat,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewCatchOnly creates a series with no observed status (all BBmsy NaN).
func NewCatchOnly(name string, year []int, catch []float64, speciesCat string) (*Series, error) {
	bbmsy := make([]float64, len(catch))
	for i := range bbmsy {
		bbmsy[i] = math.NaN()
	}
	return New(name, year, catch, bbmsy, speciesCat)
}

// Validate checks the series invariants: aligned slice lengths, a non-empty
// species category, non-negative catches, and at least MinYears observations.
func (s *Series) Validate() error {
	n := len(s.Catch)
	if len(s.Year) != n {
		return fmt.Errorf("%w: year has %d entries, catch has %d", ErrInvalidInput, len(s.Year), n)
	}
	if len(s.BBmsy) != n {
		return fmt.Errorf("%w: bbmsy has %d entries, catch has %d", ErrInvalidInput, len(s.BBmsy), n)
	}
	if n < MinYears {
		return fmt.Errorf("%w: series %q has %d years, need at least %d", ErrInvalidInput, s.Name, n, MinYears)
	}
	if s.SpeciesCat == "" {
		return fmt.Errorf("%w: series %q has empty species category", ErrInvalidInput, s.Name)
	}
	for i, c := range s.Catch {
		if math.IsNaN(c) || c < 0 {
			return fmt.Errorf("%w: series %q catch[%d] = %v, want non-negative", ErrInvalidInput, s.Name, i, c)
		}
	}
	return nil
}

// Len returns the number of years in the series.
func (s *Series) Len() int {
	return len(s.Catch)
}

// MaxCatch returns the maximum catch across the series.
func (s *Series) MaxCatch() float64 {
	if len(s.Catch) == 0 {
		return math.NaN()
	}
	return floats.Max(s.Catch)
}

// MeanCatch returns the arithmetic mean catch across the series.
func (s *Series) MeanCatch() float64 {
	if len(s.Catch) == 0 {
		return math.NaN()
	}
	return floats.Sum(s.Catch) / float64(len(s.Catch))
}

// TimeToMax returns the 1-based index of the year attaining the maximum
// catch, taking the earliest such year on ties.
func (s *Series) TimeToMax() int {
	if len(s.Catch) == 0 {
		return 0
	}
	best := 0
	for i, c := range s.Catch {
		if c > s.Catch[best] {
			best = i
		}
	}
	return best + 1
}

// HasStatus reports whether any year carries an observed B/Bmsy value.
func (s *Series) HasStatus() bool {
	for _, b := range s.BBmsy {
		if !math.IsNaN(b) {
			return true
		}
	}
	return false
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	year := make([]int, len(s.Year))
	copy(year, s.Year)
	catch := make([]float64, len(s.Catch))
	copy(catch, s.Catch)
	bbmsy := make([]float64, len(s.BBmsy))
	copy(bbmsy, s.BBmsy)
	return &Series{
		Name:       s.Name,
		Year:       year,
		Catch:      catch,
		BBmsy:      bbmsy,
		SpeciesCat: s.SpeciesCat,
	}
}
