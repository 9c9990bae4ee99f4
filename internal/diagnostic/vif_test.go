package diagnostic

import (
	"math"
	"math/rand"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-health/lungsurvey/internal/model"
	"github.com/meridian-health/lungsurvey/internal/survey"
)

func randomFrame(n int) *survey.Frame {
	rng := rand.New(rand.NewSource(7))
	a := make([]float64, n)
	b := make([]float64, n)
	c := make([]float64, n)
	near := make([]float64, n)
	for i := 0; i < n; i++ {
		a[i] = rng.NormFloat64()
		b[i] = rng.NormFloat64()
		c[i] = rng.NormFloat64()
		near[i] = a[i] + 0.01*rng.NormFloat64() // almost a copy of column a
	}
	return &survey.Frame{
		Names: []string{"A", "B", "C", "NEAR_A"},
		Cols:  [][]float64{a, b, c, near},
	}
}

func TestVIFIndependentPredictors(t *testing.T) {
	fr := randomFrame(500)

	scores, err := VIF(fr, []string{"A", "B", "C"})
	require.NoError(t, err)
	require.Len(t, scores, 3)

	for _, s := range scores {
		assert.GreaterOrEqual(t, s.VIF, 1.0, s.Name)
		assert.Less(t, s.VIF, 1.2, "independent draws should not inflate %s", s.Name)
	}
}

func TestVIFCollinearPredictors(t *testing.T) {
	fr := randomFrame(500)

	scores, err := VIF(fr, []string{"A", "B", "NEAR_A"})
	require.NoError(t, err)

	byName := map[string]float64{}
	for _, s := range scores {
		byName[s.Name] = s.VIF
	}
	assert.Greater(t, byName["A"], 100.0)
	assert.Greater(t, byName["NEAR_A"], 100.0)
	assert.Less(t, byName["B"], 2.0)
}

func TestVIFDuplicateColumn(t *testing.T) {
	fr := randomFrame(500)
	dup := append([]float64(nil), fr.Cols[0]...) // exact copy of column a
	fr.Names = append(fr.Names, "DUP_A")
	fr.Cols = append(fr.Cols, dup)

	scores, err := VIF(fr, []string{"A", "DUP_A", "B"})
	require.NoError(t, err, "an exactly duplicated column must not fail the table")
	require.Len(t, scores, 3)

	byName := map[string]float64{}
	for _, s := range scores {
		byName[s.Name] = s.VIF
	}
	assert.True(t, math.IsInf(byName["A"], 1), "A is fully explained by DUP_A")
	assert.True(t, math.IsInf(byName["DUP_A"], 1), "DUP_A is fully explained by A")
	assert.False(t, math.IsNaN(byName["B"]))
	assert.GreaterOrEqual(t, byName["B"], 1.0)
}

func TestVIFErrors(t *testing.T) {
	fr := randomFrame(500)

	_, err := VIF(fr, []string{"A"})
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrInsufficientData))

	tiny := &survey.Frame{
		Names: []string{"A", "B"},
		Cols:  [][]float64{{1, 2}, {3, 4}},
	}
	_, err = VIF(tiny, []string{"A", "B"})
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrInsufficientData))

	_, err = VIF(fr, []string{"A", "MISSING"})
	require.Error(t, err)
}
