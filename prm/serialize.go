package prm

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Save writes the model as JSON. The encoding is the module's "opaque
// serializable model handle": Load restores a model that predicts
// identically.
func (m *Model) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// SaveFile writes the model to a JSON file.
func (m *Model) SaveFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return m.Save(f)
}

// Load reads a model saved by Save and checks that the tagged union is
// internally consistent before returning it.
func Load(r io.Reader) (*Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: decoding model: %v", ErrPrediction, err)
	}
	if err := m.checkState(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadFile reads a model from a JSON file written by SaveFile.
func LoadFile(filename string) (*Model, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}
