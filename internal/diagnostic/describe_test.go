package diagnostic

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-health/lungsurvey/internal/model"
	"github.com/meridian-health/lungsurvey/internal/survey"
)

func testFrame() *survey.Frame {
	return &survey.Frame{
		Names: []string{"AGE", "SMOKING", "LUNG_CANCER"},
		Cols: [][]float64{
			{50, 60, 70, 80},
			{0, 1, 0, 1},
			{0, 1, 0, 1},
		},
	}
}

func TestDescribe(t *testing.T) {
	sums, err := Describe(testFrame())
	require.NoError(t, err)
	require.Len(t, sums, 3)

	age := sums[0]
	assert.Equal(t, "AGE", age.Name)
	assert.Equal(t, 4, age.N)
	assert.InDelta(t, 65, age.Mean, 1e-12)
	assert.InDelta(t, 50, age.Min, 1e-12)
	assert.InDelta(t, 80, age.Max, 1e-12)
	assert.Greater(t, age.StdDev, 0.0)

	smoking := sums[1]
	assert.InDelta(t, 0.5, smoking.Mean, 1e-12)
}

func TestDescribeEmpty(t *testing.T) {
	_, err := Describe(&survey.Frame{Names: []string{"AGE"}, Cols: [][]float64{{}}})
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrInsufficientData))
}

func TestCorrelation(t *testing.T) {
	corr, err := Correlation(testFrame())
	require.NoError(t, err)

	p, _ := corr.Dims()
	require.Equal(t, 3, p)

	// Unit diagonal, symmetric, and SMOKING tracks LUNG_CANCER exactly.
	for i := 0; i < p; i++ {
		assert.InDelta(t, 1, corr.At(i, i), 1e-12)
	}
	assert.InDelta(t, corr.At(0, 1), corr.At(1, 0), 1e-12)
	assert.InDelta(t, 1, corr.At(1, 2), 1e-12)
}

func TestCorrelationTooFewRows(t *testing.T) {
	fr := &survey.Frame{Names: []string{"AGE"}, Cols: [][]float64{{42}}}
	_, err := Correlation(fr)
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrInsufficientData))
}
