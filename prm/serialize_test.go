package prm

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datalimited/goprm/gbm"
)

func TestSaveLoadRoundTripLinear(t *testing.T) {
	m, panel := fitLinearPanel(t)

	var buf bytes.Buffer
	require.NoError(t, m.Save(&buf))

	loaded, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.Type, loaded.Type)
	assert.Equal(t, m.Columns, loaded.Columns)
	assert.Equal(t, m.Levels, loaded.Levels)
	assert.Equal(t, m.NObs, loaded.NObs)

	want, err := m.Predict(panel)
	require.NoError(t, err)
	got, err := loaded.Predict(panel)
	require.NoError(t, err)
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.True(t, math.IsNaN(got[i]), "row %d", i)
		} else {
			assert.Equal(t, want[i], got[i], "row %d", i)
		}
	}

	wantIval, err := m.PredictInterval(panel.CompletePredictors(), 0.95)
	require.NoError(t, err)
	gotIval, err := loaded.PredictInterval(panel.CompletePredictors(), 0.95)
	require.NoError(t, err)
	assert.Equal(t, wantIval.Lower, gotIval.Lower)
	assert.Equal(t, wantIval.Upper, gotIval.Upper)
}

func TestSaveLoadRoundTripBoosted(t *testing.T) {
	panel := syntheticPanel(t)
	cfg := &gbm.Config{NTrees: 25, MaxDepth: 2, LearningRate: 0.2, MinLeaf: 3}
	m, err := Fit(panel, ModelBoosted, cfg)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.Save(&buf))
	loaded, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, 25, loaded.Boosted.NTrees())

	test := panel.CompletePredictors()
	want, err := m.Predict(test)
	require.NoError(t, err)
	got, err := loaded.Predict(test)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveLoadFile(t *testing.T) {
	m, panel := fitLinearPanel(t)
	path := filepath.Join(t.TempDir(), "model.json")

	require.NoError(t, m.SaveFile(path))
	loaded, err := LoadFile(path)
	require.NoError(t, err)

	want, err := m.Predict(panel.CompletePredictors())
	require.NoError(t, err)
	got, err := loaded.Predict(panel.CompletePredictors())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadRejectsMalformedModels(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{name: "not json", json: "{{"},
		{name: "unknown type", json: `{"type":"mystery","columns":[],"levels":[]}`},
		{name: "linear without coefficients", json: `{"type":"linear","columns":["a"],"levels":[]}`},
		{name: "coefficient count mismatch", json: `{"type":"linear","columns":["a","b"],"levels":[],"linear":{"coeffs":[1],"sigma2":0.1,"xtx_inv":[[1]]}}`},
		{name: "boosted without ensemble", json: `{"type":"boosted","columns":["a"],"levels":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.json))
			require.Error(t, err)
		})
	}
}
