// Package report exports recoded frames and diagnostic tables to CSV
// and XLSX files.
package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/meridian-health/lungsurvey/internal/diagnostic"
	"github.com/meridian-health/lungsurvey/internal/survey"
)

// WriteFrameCSV writes the frame as CSV with a header row. Recoded
// indicator values serialize as integers, continuous values with
// minimal precision.
func WriteFrameCSV(fr *survey.Frame, w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(fr.Names); err != nil {
		return eris.Wrap(err, "report: write csv header")
	}

	n := fr.NumRows()
	record := make([]string, fr.NumCols())
	for i := 0; i < n; i++ {
		for j, col := range fr.Cols {
			record[j] = formatValue(col[i])
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrapf(err, "report: write csv row %d", i+1)
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush csv")
}

// WriteBinsCSV writes the logit-linearity bin table as CSV. Undefined
// logits are emitted as empty fields.
func WriteBinsCSV(bins []diagnostic.Bin, w io.Writer) error {
	cw := csv.NewWriter(w)

	header := []string{"lo", "hi", "count", "p_hat", "mean_x", "logit"}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "report: write csv header")
	}

	for i, b := range bins {
		logit := ""
		if b.LogitDefined {
			logit = formatValue(b.Logit)
		}
		record := []string{
			formatValue(b.Lo),
			formatValue(b.Hi),
			strconv.Itoa(b.Count),
			formatValue(b.PHat),
			formatValue(b.MeanX),
			logit,
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrapf(err, "report: write csv row %d", i+1)
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush csv")
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
