package report

import (
	"bytes"
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/meridian-health/lungsurvey/internal/diagnostic"
	"github.com/meridian-health/lungsurvey/internal/fetcher"
	"github.com/meridian-health/lungsurvey/internal/survey"
)

func reportFrame() *survey.Frame {
	return &survey.Frame{
		Names: []string{"AGE", "GENDER", "LUNG_CANCER"},
		Cols: [][]float64{
			{30, 70},
			{0, 1},
			{0, 1},
		},
	}
}

func reportBins() []diagnostic.Bin {
	return []diagnostic.Bin{
		{Lo: 30, Hi: 50, Count: 1, PHat: 0.5, MeanX: 40, Logit: 0, LogitDefined: true},
		{Lo: 50, Hi: 70, Count: 1, PHat: 1, MeanX: 70, Logit: math.Inf(1), LogitDefined: false},
	}
}

func TestWriteFrameCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrameCSV(reportFrame(), &buf))

	tbl, err := fetcher.ReadCSVTable(context.Background(), &buf, fetcher.CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"AGE", "GENDER", "LUNG_CANCER"}, tbl.Header)
	assert.Equal(t, [][]string{{"30", "0", "0"}, {"70", "1", "1"}}, tbl.Rows)
}

func TestWriteBinsCSVUndefinedLogitEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBinsCSV(reportBins(), &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "lo,hi,count,p_hat,mean_x,logit", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], ",0"), "defined logit written: %s", lines[1])
	assert.True(t, strings.HasSuffix(lines[2], ","), "undefined logit empty: %s", lines[2])
}

func TestWriteFrameXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recoded.xlsx")
	require.NoError(t, WriteFrameXLSX(reportFrame(), "recoded", path))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet, ok := f.Sheet["recoded"]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "AGE", sheet.Rows[0].Cells[0].String())

	v, err := sheet.Rows[2].Cells[0].Float()
	require.NoError(t, err)
	assert.InDelta(t, 70, v, 1e-12)
}

func TestWriteBinsXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bins.xlsx")
	require.NoError(t, WriteBinsXLSX(reportBins(), path))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet, ok := f.Sheet["logit_linearity"]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)

	assert.Equal(t, "", sheet.Rows[2].Cells[5].String(), "undefined logit cell empty")
}
