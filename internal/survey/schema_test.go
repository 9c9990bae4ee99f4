package survey

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSchemaIsValid(t *testing.T) {
	s := DefaultSchema()
	require.NoError(t, s.Validate())
	assert.Len(t, s, 16)
	assert.Equal(t, "GENDER", s[0].Name)
	assert.Equal(t, "LUNG_CANCER", s[len(s)-1].Name)

	gender, ok := s.Column("GENDER")
	require.True(t, ok)
	assert.Equal(t, Categorical, gender.Kind)
	assert.Equal(t, []string{"F", "M"}, gender.Levels)

	outcome, ok := s.Column("LUNG_CANCER")
	require.True(t, ok)
	assert.Equal(t, []string{"NO", "YES"}, outcome.Levels)

	_, ok = s.Column("MISSING")
	assert.False(t, ok)

	assert.Equal(t, len(s), len(s.Names()))
	assert.Equal(t, "AGE", s.Names()[1])
}

func TestLoadSchema(t *testing.T) {
	yaml := `
columns:
  - name: GENDER
    kind: categorical
    levels: [F, M]
  - name: AGE
    kind: continuous
  - name: SMOKING
    kind: ordinal
  - name: LUNG_CANCER
    kind: categorical
    levels: [NO, "YES"]
`
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	s, err := LoadSchema(path)
	require.NoError(t, err)
	require.Len(t, s, 4)
	assert.Equal(t, []string{"GENDER", "AGE", "SMOKING", "LUNG_CANCER"}, s.Names())

	gender, ok := s.Column("GENDER")
	require.True(t, ok)
	assert.Equal(t, Categorical, gender.Kind)
	assert.Equal(t, []string{"F", "M"}, gender.Levels)

	smoking, ok := s.Column("SMOKING")
	require.True(t, ok)
	assert.Equal(t, Ordinal, smoking.Kind)
	assert.Empty(t, smoking.Levels)
}

func TestLoadSchemaMissingFile(t *testing.T) {
	_, err := LoadSchema(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read schema")
}

func TestLoadSchemaBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte("columns: [not: {valid"), 0644))

	_, err := LoadSchema(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse schema")
}

func TestLoadSchemaInvalidSchema(t *testing.T) {
	yaml := `
columns:
  - name: GENDER
    kind: categorical
    levels: [F]
`
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	_, err := LoadSchema(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly 2 levels")
}

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
		want   string
	}{
		{
			"empty schema",
			Schema{},
			"no columns",
		},
		{
			"empty name",
			Schema{{Name: "", Kind: Continuous}},
			"empty name",
		},
		{
			"duplicate name",
			Schema{
				{Name: "AGE", Kind: Continuous},
				{Name: "AGE", Kind: Continuous},
			},
			`duplicate schema column "AGE"`,
		},
		{
			"unknown kind",
			Schema{{Name: "AGE", Kind: "numeric"}},
			`unknown kind "numeric"`,
		},
		{
			"categorical too few levels",
			Schema{{Name: "GENDER", Kind: Categorical, Levels: []string{"F"}}},
			"exactly 2 levels, got 1",
		},
		{
			"categorical too many levels",
			Schema{{Name: "GENDER", Kind: Categorical, Levels: []string{"F", "M", "X"}}},
			"exactly 2 levels, got 3",
		},
		{
			"categorical duplicate level",
			Schema{{Name: "GENDER", Kind: Categorical, Levels: []string{"F", "F"}}},
			`duplicate level "F"`,
		},
		{
			"levels on ordinal",
			Schema{{Name: "SMOKING", Kind: Ordinal, Levels: []string{"1", "2"}}},
			"only valid for categorical",
		},
		{
			"levels on continuous",
			Schema{{Name: "AGE", Kind: Continuous, Levels: []string{"a", "b"}}},
			"only valid for categorical",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSchemaValidateOK(t *testing.T) {
	s := Schema{
		{Name: "GENDER", Kind: Categorical, Levels: []string{"F", "M"}},
		{Name: "AGE", Kind: Continuous},
		{Name: "SMOKING", Kind: Ordinal},
	}
	assert.NoError(t, s.Validate())
}
