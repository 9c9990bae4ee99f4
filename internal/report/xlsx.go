package report

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/meridian-health/lungsurvey/internal/diagnostic"
	"github.com/meridian-health/lungsurvey/internal/survey"
)

// WriteFrameXLSX writes the frame to a single-sheet workbook at path.
func WriteFrameXLSX(fr *survey.Frame, sheetName, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrapf(err, "report: add sheet %s", sheetName)
	}

	header := sheet.AddRow()
	for _, name := range fr.Names {
		header.AddCell().SetString(name)
	}

	n := fr.NumRows()
	for i := 0; i < n; i++ {
		row := sheet.AddRow()
		for _, col := range fr.Cols {
			row.AddCell().SetFloat(col[i])
		}
	}

	return eris.Wrapf(f.Save(path), "report: save %s", path)
}

// WriteBinsXLSX writes the logit-linearity bin table to a workbook at
// path. Undefined logits are left as empty cells.
func WriteBinsXLSX(bins []diagnostic.Bin, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("logit_linearity")
	if err != nil {
		return eris.Wrap(err, "report: add sheet")
	}

	header := sheet.AddRow()
	for _, name := range []string{"lo", "hi", "count", "p_hat", "mean_x", "logit"} {
		header.AddCell().SetString(name)
	}

	for _, b := range bins {
		row := sheet.AddRow()
		row.AddCell().SetFloat(b.Lo)
		row.AddCell().SetFloat(b.Hi)
		row.AddCell().SetInt(b.Count)
		row.AddCell().SetFloat(b.PHat)
		row.AddCell().SetFloat(b.MeanX)
		if b.LogitDefined {
			row.AddCell().SetFloat(b.Logit)
		} else {
			row.AddCell()
		}
	}

	return eris.Wrapf(f.Save(path), "report: save %s", path)
}
