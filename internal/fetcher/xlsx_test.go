package fetcher

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeTestXLSX(t *testing.T, sheetName string, rows [][]string) string {
	t.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	require.NoError(t, err)

	for _, row := range rows {
		r := sheet.AddRow()
		for _, v := range row {
			r.AddCell().SetString(v)
		}
	}

	path := filepath.Join(t.TempDir(), "survey.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSXTable(t *testing.T) {
	path := writeTestXLSX(t, "survey", [][]string{
		{"GENDER", "AGE", "LUNG_CANCER"},
		{"M", "63", "YES"},
		{"F", "48", "NO"},
	})

	tbl, err := ReadXLSXTable(path, XLSXOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"GENDER", "AGE", "LUNG_CANCER"}, tbl.Header)
	require.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, []string{"F", "48", "NO"}, tbl.Rows[1])
}

func TestReadXLSXTableByName(t *testing.T) {
	path := writeTestXLSX(t, "respondents", [][]string{
		{"AGE"},
		{"59"},
	})

	tbl, err := ReadXLSXTable(path, XLSXOptions{SheetName: "respondents"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"59"}}, tbl.Rows)

	_, err = ReadXLSXTable(path, XLSXOptions{SheetName: "nope"})
	require.Error(t, err)
}

func TestReadXLSXTableErrors(t *testing.T) {
	_, err := ReadXLSXTable(filepath.Join(t.TempDir(), "missing.xlsx"), XLSXOptions{})
	require.Error(t, err)

	path := writeTestXLSX(t, "one", [][]string{{"AGE"}})
	_, err = ReadXLSXTable(path, XLSXOptions{SheetIndex: 5})
	require.Error(t, err)
}
