// Package survey defines the lung-cancer survey data model: the raw
// string table as read from disk, the recoded numeric frame, and the
// explicit column schema that fixes every categorical level ordering.
package survey

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ColumnKind classifies how a raw column is coded.
type ColumnKind string

const (
	// Continuous columns are numeric and pass through recoding untouched.
	Continuous ColumnKind = "continuous"
	// Categorical columns hold string labels mapped to their index in an
	// explicit ordered level list.
	Categorical ColumnKind = "categorical"
	// Ordinal columns are integer coded {1,2} and shift to {0,1}.
	Ordinal ColumnKind = "ordinal"
)

// ColumnSpec declares one survey column. For categorical columns the
// level order is the numeric encoding: Levels[i] recodes to i. The
// ordering is part of the data contract and never derived from sort
// order.
type ColumnSpec struct {
	Name   string     `yaml:"name"`
	Kind   ColumnKind `yaml:"kind"`
	Levels []string   `yaml:"levels,omitempty"`
}

// Schema is the ordered list of expected survey columns.
type Schema []ColumnSpec

// DefaultSchema returns the schema of the lung-cancer survey: age,
// gender (F=0, M=1), thirteen {1,2}-coded symptom indicators, and the
// LUNG_CANCER outcome (NO=0, YES=1).
func DefaultSchema() Schema {
	return Schema{
		{Name: "GENDER", Kind: Categorical, Levels: []string{"F", "M"}},
		{Name: "AGE", Kind: Continuous},
		{Name: "SMOKING", Kind: Ordinal},
		{Name: "YELLOW_FINGERS", Kind: Ordinal},
		{Name: "ANXIETY", Kind: Ordinal},
		{Name: "PEER_PRESSURE", Kind: Ordinal},
		{Name: "CHRONIC_DISEASE", Kind: Ordinal},
		{Name: "FATIGUE", Kind: Ordinal},
		{Name: "ALLERGY", Kind: Ordinal},
		{Name: "WHEEZING", Kind: Ordinal},
		{Name: "ALCOHOL_CONSUMING", Kind: Ordinal},
		{Name: "COUGHING", Kind: Ordinal},
		{Name: "SHORTNESS_OF_BREATH", Kind: Ordinal},
		{Name: "SWALLOWING_DIFFICULTY", Kind: Ordinal},
		{Name: "CHEST_PAIN", Kind: Ordinal},
		{Name: "LUNG_CANCER", Kind: Categorical, Levels: []string{"NO", "YES"}},
	}
}

// LoadSchema reads a column schema from a YAML file. The file has a
// top-level "columns" key.
func LoadSchema(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "survey: read schema %s", path)
	}

	var wrapper struct {
		Columns Schema `yaml:"columns"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "survey: parse schema")
	}

	s := wrapper.Columns
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the schema for structural errors: duplicate or empty
// names, unknown kinds, and categorical columns without exactly two
// levels.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return eris.New("survey: schema has no columns")
	}
	seen := make(map[string]bool, len(s))
	for _, c := range s {
		if c.Name == "" {
			return eris.New("survey: schema column with empty name")
		}
		if seen[c.Name] {
			return eris.Errorf("survey: duplicate schema column %q", c.Name)
		}
		seen[c.Name] = true

		switch c.Kind {
		case Continuous, Ordinal:
			if len(c.Levels) != 0 {
				return eris.Errorf("survey: column %q: levels are only valid for categorical columns", c.Name)
			}
		case Categorical:
			if len(c.Levels) != 2 {
				return eris.Errorf("survey: column %q: categorical columns need exactly 2 levels, got %d", c.Name, len(c.Levels))
			}
			if c.Levels[0] == c.Levels[1] {
				return eris.Errorf("survey: column %q: duplicate level %q", c.Name, c.Levels[0])
			}
		default:
			return eris.Errorf("survey: column %q: unknown kind %q", c.Name, c.Kind)
		}
	}
	return nil
}

// Column returns the spec for the named column.
func (s Schema) Column(name string) (ColumnSpec, bool) {
	for _, c := range s {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// Names returns the schema column names in declaration order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}
