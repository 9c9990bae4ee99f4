package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/meridian-health/lungsurvey/internal/survey"
)

// CSVOptions configures the CSV table reader.
type CSVOptions struct {
	Delimiter rune // default ','
	Comment   rune // comment character (0 = none)
	TrimSpace bool
}

// ReadCSVTable reads a delimited file with a header row into a raw
// table. Rows may have trailing short fields; the recoder validates
// shape against the schema.
func ReadCSVTable(ctx context.Context, r io.Reader, opts CSVOptions) (*survey.Table, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.FieldsPerRecord = -1 // allow variable fields

	tbl := &survey.Table{}
	for {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "fetcher: csv read cancelled")
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "fetcher: csv read row")
		}

		if opts.TrimSpace {
			for i, field := range record {
				record[i] = strings.TrimSpace(field)
			}
		}

		if tbl.Header == nil {
			tbl.Header = record
			continue
		}
		tbl.Rows = append(tbl.Rows, record)
	}

	if tbl.Header == nil {
		return nil, eris.New("fetcher: csv input is empty")
	}
	return tbl, nil
}
