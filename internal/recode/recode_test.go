package recode

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-health/lungsurvey/internal/model"
	"github.com/meridian-health/lungsurvey/internal/survey"
)

func smallSchema() survey.Schema {
	return survey.Schema{
		{Name: "AGE", Kind: survey.Continuous},
		{Name: "GENDER", Kind: survey.Categorical, Levels: []string{"F", "M"}},
		{Name: "LUNG_CANCER", Kind: survey.Categorical, Levels: []string{"NO", "YES"}},
	}
}

func TestRecodeGenderOutcome(t *testing.T) {
	tbl := &survey.Table{
		Header: []string{"AGE", "GENDER", "LUNG_CANCER"},
		Rows: [][]string{
			{"30", "F", "NO"},
			{"70", "M", "YES"},
		},
	}

	fr, err := Recode(tbl, smallSchema())
	require.NoError(t, err)

	age, err := fr.Col("AGE")
	require.NoError(t, err)
	gender, err := fr.Col("GENDER")
	require.NoError(t, err)
	outcome, err := fr.Col("LUNG_CANCER")
	require.NoError(t, err)

	assert.Equal(t, []float64{30, 70}, age)
	assert.Equal(t, []float64{0, 1}, gender)
	assert.Equal(t, []float64{0, 1}, outcome)
}

func TestRecodeOrdinalShift(t *testing.T) {
	schema := survey.Schema{{Name: "SMOKING", Kind: survey.Ordinal}}
	tbl := &survey.Table{
		Header: []string{"SMOKING"},
		Rows:   [][]string{{"1"}, {"2"}, {"1"}, {"2"}},
	}

	fr, err := Recode(tbl, schema)
	require.NoError(t, err)

	col, err := fr.Col("SMOKING")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0, 1}, col)
}

func TestRecodeInvalidCategory(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"unknown label", "X"},
		{"lowercase", "f"},
		{"empty", ""},
		{"whitespace only", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := &survey.Table{
				Header: []string{"AGE", "GENDER", "LUNG_CANCER"},
				Rows:   [][]string{{"44", tt.value, "NO"}},
			}
			_, err := Recode(tbl, smallSchema())
			require.Error(t, err)
			assert.True(t, eris.Is(err, model.ErrInvalidCategory))
		})
	}
}

func TestRecodeInvalidOrdinal(t *testing.T) {
	schema := survey.Schema{{Name: "COUGHING", Kind: survey.Ordinal}}

	tests := []struct {
		name  string
		value string
	}{
		{"zero", "0"},
		{"three", "3"},
		{"negative", "-1"},
		{"non-numeric", "yes"},
		{"empty", ""},
		{"float", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := &survey.Table{
				Header: []string{"COUGHING"},
				Rows:   [][]string{{tt.value}},
			}
			_, err := Recode(tbl, schema)
			require.Error(t, err)
			assert.True(t, eris.Is(err, model.ErrInvalidOrdinal))
		})
	}
}

// Recoding is not idempotent: {0,1} output is outside the ordinal input
// domain, so a second pass must fail rather than shift again.
func TestRecodeReapplyFails(t *testing.T) {
	schema := survey.Schema{{Name: "WHEEZING", Kind: survey.Ordinal}}
	tbl := &survey.Table{
		Header: []string{"WHEEZING"},
		Rows:   [][]string{{"1"}, {"2"}},
	}

	fr, err := Recode(tbl, schema)
	require.NoError(t, err)

	col, err := fr.Col("WHEEZING")
	require.NoError(t, err)

	again := &survey.Table{Header: []string{"WHEEZING"}, Rows: make([][]string, len(col))}
	for i, v := range col {
		again.Rows[i] = []string{formatInt(v)}
	}

	_, err = Recode(again, schema)
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrInvalidOrdinal))
}

func formatInt(v float64) string {
	if v == 0 {
		return "0"
	}
	return "1"
}

func TestRecodeDeterministic(t *testing.T) {
	tbl := &survey.Table{
		Header: []string{"AGE", "GENDER", "LUNG_CANCER"},
		Rows: [][]string{
			{"61", "M", "YES"},
			{"55", "F", "NO"},
		},
	}

	a, err := Recode(tbl, smallSchema())
	require.NoError(t, err)
	b, err := Recode(tbl, smallSchema())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRecodeMissingColumn(t *testing.T) {
	tbl := &survey.Table{
		Header: []string{"AGE", "GENDER"},
		Rows:   [][]string{{"30", "F"}},
	}
	_, err := Recode(tbl, smallSchema())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LUNG_CANCER")
}

func TestRecodeTrimsWhitespace(t *testing.T) {
	tbl := &survey.Table{
		Header: []string{"AGE", "GENDER", "LUNG_CANCER"},
		Rows:   [][]string{{" 63 ", " M", "YES "}},
	}

	fr, err := Recode(tbl, smallSchema())
	require.NoError(t, err)

	gender, err := fr.Col("GENDER")
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, gender)
}
