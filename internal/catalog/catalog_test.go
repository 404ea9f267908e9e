package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/EcoPack/internal/scoring"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const sampleCSV = `material_name,material_type,strength,weight_capacity,biodegradability_score,recyclability_percentage,cost_per_unit,co2_emission_score
Kraft Paper,paper,2,15,8,95,0.2,1.2
Molded Pulp,fiber,3,35,9,85,0.7,1.5
Bubble Wrap,plastic,2,10,1,20,,6.0
`

func TestReadCSV(t *testing.T) {
	materials, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, materials, 3)

	k := materials[0]
	assert.Equal(t, "Kraft Paper", k.Name)
	assert.Equal(t, "paper", k.Category)
	assert.Equal(t, 2.0, *k.Strength)
	assert.Equal(t, 95.0, *k.Recyclability)
	assert.Equal(t, 8.0, *k.Biodegradability)
	assert.Equal(t, 1.2, *k.BaselineImpact)

	assert.Nil(t, materials[2].CostPerUnit, "empty cell should stay unset")
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("strength,weight_capacity\n1,2\n"))
	assert.ErrorContains(t, err, "no material name column")

	_, err = ReadCSV(strings.NewReader("name,strength\nFoam,strong\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestFileSourceYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "materials.yaml")
	data := `
materials:
  - name: Recycled Cardboard
    strength: 3
    weight_capacity: 40
    recyclability: 90
    biodegradability: 8
    cost_per_unit: 0.5
    baseline_impact: 2.0
  - name: Recycled Cardboard
    strength: 1
  - name: Mushroom Packaging
    strength: 2
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	src := NewFileSource(path, discardLogger())
	materials, err := src.List(context.Background(), "food")
	require.NoError(t, err)
	require.Len(t, materials, 2)
	assert.Equal(t, 3.0, *materials[0].Strength, "first duplicate wins")
	assert.Nil(t, materials[1].Recyclability)
}

func TestFileSourceCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "materials.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	materials, err := NewFileSource(path, discardLogger()).List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, materials, 3)
}

func TestFileSourceErrors(t *testing.T) {
	_, err := NewFileSource("/does/not/exist.yaml", discardLogger()).List(context.Background(), "")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "materials.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	_, err = NewFileSource(path, discardLogger()).List(context.Background(), "")
	assert.ErrorContains(t, err, "unsupported catalog format")
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/materials", r.URL.Path)
		assert.Equal(t, "food", r.URL.Query().Get("category"))
		json.NewEncoder(w).Encode(materialsResponse{Materials: []scoring.Material{
			{Name: "Kraft Paper", Strength: scoring.Float(2)},
			{Name: " "},
		}})
	}))
	defer srv.Close()

	materials, err := NewHTTPSource(srv.URL, discardLogger()).List(context.Background(), "food")
	require.NoError(t, err)
	require.Len(t, materials, 1)
	assert.Equal(t, "Kraft Paper", materials[0].Name)
}

func TestHTTPSourceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, discardLogger()).List(context.Background(), "")
	assert.ErrorContains(t, err, "502")
}

type countingSource struct {
	calls atomic.Int32
	err   error
}

func (s *countingSource) List(_ context.Context, _ string) ([]scoring.Material, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return []scoring.Material{{Name: "Kraft Paper"}}, nil
}

func TestCachedServesWithinTTL(t *testing.T) {
	src := &countingSource{}
	c := NewCached(src, time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		materials, err := c.List(context.Background(), "")
		require.NoError(t, err)
		require.Len(t, materials, 1)
		materials[0].Name = "mutated"
	}
	assert.Equal(t, int32(1), src.calls.Load())

	now = now.Add(2 * time.Minute)
	materials, err := c.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Kraft Paper", materials[0].Name)
	assert.Equal(t, int32(2), src.calls.Load())

	c.Invalidate()
	_, err = c.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, int32(3), src.calls.Load())
}

func TestCachedDoesNotCacheErrors(t *testing.T) {
	src := &countingSource{err: errors.New("db down")}
	c := NewCached(src, time.Minute)

	_, err := c.List(context.Background(), "")
	assert.Error(t, err)
	_, err = c.List(context.Background(), "")
	assert.Error(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
}
