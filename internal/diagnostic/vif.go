package diagnostic

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/rotisserie/eris"

	"github.com/meridian-health/lungsurvey/internal/model"
	"github.com/meridian-health/lungsurvey/internal/survey"
)

// VIFScore reports the variance inflation factor of one predictor.
// Perfectly collinear or constant predictors report +Inf.
type VIFScore struct {
	Name string  `json:"name"`
	VIF  float64 `json:"vif"`
}

// VIF computes the variance inflation factor of each named predictor:
// an OLS regression of the predictor on the remaining ones (with
// intercept) gives R², and VIF = 1/(1-R²). Results follow the order of
// predictors.
func VIF(fr *survey.Frame, predictors []string) ([]VIFScore, error) {
	if len(predictors) < 2 {
		return nil, eris.Wrap(model.ErrInsufficientData, "diagnostic: vif needs at least 2 predictors")
	}
	n := fr.NumRows()
	if n <= len(predictors) {
		return nil, eris.Wrapf(model.ErrInsufficientData, "diagnostic: vif needs more than %d rows, have %d", len(predictors), n)
	}

	cols := make([][]float64, len(predictors))
	for i, name := range predictors {
		col, err := fr.Col(name)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}

	out := make([]VIFScore, len(predictors))
	for i, name := range predictors {
		r2, err := rsquared(cols[i], others(cols, i), n)
		if err != nil {
			return nil, eris.Wrapf(err, "diagnostic: vif for %s", name)
		}
		vif := math.Inf(1)
		if 1-r2 > 0 {
			vif = 1 / (1 - r2)
		}
		out[i] = VIFScore{Name: name, VIF: vif}
	}
	return out, nil
}

func others(cols [][]float64, skip int) [][]float64 {
	out := make([][]float64, 0, len(cols)-1)
	for i, c := range cols {
		if i != skip {
			out = append(out, c)
		}
	}
	return out
}

// rsquared fits y ~ 1 + X by least squares and returns the coefficient
// of determination. A constant response yields R² = 1 so the caller
// reports an infinite VIF.
func rsquared(y []float64, xcols [][]float64, n int) (float64, error) {
	p := len(xcols) + 1 // intercept

	X := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, 1)
	}
	for j, col := range xcols {
		for i, v := range col {
			X.Set(i, j+1, v)
		}
	}

	var beta mat.Dense
	if err := beta.Solve(X, mat.NewVecDense(n, append([]float64(nil), y...))); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			// Rank-deficient design: collinear columns, report a
			// perfect fit so the caller yields +Inf.
			return 1, nil
		}
		// Ill-conditioned but solved; score the computed fit.
	}

	var fitted mat.Dense
	fitted.Mul(X, &beta)

	ssTot := stat.Variance(y, nil) * float64(n-1)
	if ssTot == 0 {
		return 1, nil
	}

	var ssRes float64
	for i := 0; i < n; i++ {
		r := y[i] - fitted.At(i, 0)
		ssRes += r * r
	}
	r2 := 1 - ssRes/ssTot
	if math.IsNaN(r2) {
		return 1, nil
	}
	if r2 < 0 {
		r2 = 0
	}
	if r2 > 1 {
		r2 = 1
	}
	return r2, nil
}
