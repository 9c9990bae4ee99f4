package diagnostic

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/rotisserie/eris"

	"github.com/meridian-health/lungsurvey/internal/model"
	"github.com/meridian-health/lungsurvey/internal/survey"
)

// Summary holds the descriptive statistics of one frame column.
type Summary struct {
	Name   string  `json:"name"`
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Describe computes per-column summaries in frame column order.
func Describe(fr *survey.Frame) ([]Summary, error) {
	if fr.NumRows() == 0 {
		return nil, eris.Wrap(model.ErrInsufficientData, "diagnostic: empty frame")
	}

	out := make([]Summary, len(fr.Names))
	for i, name := range fr.Names {
		col := fr.Cols[i]
		mean, std := stat.MeanStdDev(col, nil)
		out[i] = Summary{
			Name:   name,
			N:      len(col),
			Mean:   mean,
			StdDev: std,
			Min:    floats.Min(col),
			Max:    floats.Max(col),
		}
	}
	return out, nil
}

// Correlation computes the Pearson correlation matrix over all frame
// columns. The returned matrix is indexed in frame column order.
func Correlation(fr *survey.Frame) (*mat.SymDense, error) {
	n, p := fr.NumRows(), fr.NumCols()
	if n < 2 || p == 0 {
		return nil, eris.Wrap(model.ErrInsufficientData, "diagnostic: correlation needs at least 2 rows")
	}

	data := mat.NewDense(n, p, nil)
	for j, col := range fr.Cols {
		for i, v := range col {
			data.Set(i, j, v)
		}
	}

	corr := mat.NewSymDense(p, nil)
	stat.CorrelationMatrix(corr, data, nil)
	return corr, nil
}
