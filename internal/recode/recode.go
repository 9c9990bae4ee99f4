// Package recode converts a raw survey table into its canonical numeric
// encoding: categorical labels map to their schema level index, ordinal
// {1,2} indicators shift to {0,1}, continuous columns pass through.
package recode

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/meridian-health/lungsurvey/internal/model"
	"github.com/meridian-health/lungsurvey/internal/survey"
)

// Recode transforms tbl into a numeric frame according to schema. The
// transformation is pure and total on the declared domains: any value
// outside a categorical column's level set fails with
// model.ErrInvalidCategory, any ordinal value outside {1,2} fails with
// model.ErrInvalidOrdinal. Missing and empty values are rejected the
// same way; there is no silent coercion and no partial output.
func Recode(tbl *survey.Table, schema survey.Schema) (*survey.Frame, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	fr := survey.NewFrame(schema.Names(), tbl.NumRows())

	for j, spec := range schema {
		src, ok := tbl.ColumnIndex(spec.Name)
		if !ok {
			return nil, eris.Errorf("recode: input is missing column %q", spec.Name)
		}

		for i, row := range tbl.Rows {
			if src >= len(row) {
				return nil, eris.Errorf("recode: row %d has %d fields, want at least %d", i+1, len(row), src+1)
			}
			v, err := recodeValue(spec, row[src])
			if err != nil {
				return nil, eris.Wrapf(err, "recode: column %s row %d", spec.Name, i+1)
			}
			fr.Cols[j][i] = v
		}
	}

	return fr, nil
}

func recodeValue(spec survey.ColumnSpec, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)

	switch spec.Kind {
	case survey.Continuous:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, eris.Errorf("parse continuous value %q", raw)
		}
		return v, nil

	case survey.Categorical:
		for i, level := range spec.Levels {
			if raw == level {
				return float64(i), nil
			}
		}
		return 0, eris.Wrapf(model.ErrInvalidCategory, "%q not in levels %v", raw, spec.Levels)

	case survey.Ordinal:
		n, err := strconv.Atoi(raw)
		if err != nil || (n != 1 && n != 2) {
			return 0, eris.Wrapf(model.ErrInvalidOrdinal, "%q not in {1,2}", raw)
		}
		return float64(n - 1), nil

	default:
		return 0, eris.Errorf("unknown column kind %q", spec.Kind)
	}
}
