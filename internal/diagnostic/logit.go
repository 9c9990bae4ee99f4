// Package diagnostic implements logistic-regression precondition checks
// for the recoded survey frame: the linearity-of-logit binning, per
// column descriptive summaries, the Pearson correlation matrix, and
// variance inflation factors.
package diagnostic

import (
	"encoding/json"
	"math"

	"github.com/rotisserie/eris"

	"github.com/meridian-health/lungsurvey/internal/model"
)

// DefaultBins is the bin count used when the caller does not override it.
const DefaultBins = 10

// Bin is one equal-width interval of a continuous predictor with the
// empirical outcome statistics of the records falling in it. Logit is
// ln(p/(1-p)); when PHat is 0 or 1 the logit is not finite and
// LogitDefined is false — such bins are surfaced to the caller, never
// dropped.
type Bin struct {
	Lo           float64 `json:"lo"`
	Hi           float64 `json:"hi"`
	Count        int     `json:"count"`
	PHat         float64 `json:"p_hat"`
	MeanX        float64 `json:"mean_x"`
	Logit        float64 `json:"-"`
	LogitDefined bool    `json:"logit_defined"`
}

// MarshalJSON emits the logit as null when it is undefined, since ±Inf
// has no JSON representation.
func (b Bin) MarshalJSON() ([]byte, error) {
	type alias Bin
	out := struct {
		alias
		Logit *float64 `json:"logit"`
	}{alias: alias(b)}
	if b.LogitDefined {
		out.Logit = &b.Logit
	}
	return json.Marshal(out)
}

// LogitLinearity bins the continuous predictor x into k equal-width
// intervals over its observed range and returns, for each non-empty
// bin, the record count, the empirical outcome proportion, the mean
// predictor value, and the empirical log-odds. Bins are [lo,hi) except
// the last, which is closed on both ends so max(x) falls in bin k-1.
// Output is ordered by interval lower bound ascending.
//
// y must hold only 0 and 1. The result feeds any downstream smoother or
// plot; this function renders nothing.
func LogitLinearity(x, y []float64, k int) ([]Bin, error) {
	if len(x) == 0 {
		return nil, eris.Wrap(model.ErrInsufficientData, "diagnostic: empty predictor")
	}
	if len(x) != len(y) {
		return nil, eris.Wrapf(model.ErrInsufficientData, "diagnostic: predictor has %d rows, outcome has %d", len(x), len(y))
	}
	if k < 1 {
		return nil, eris.Wrapf(model.ErrInsufficientData, "diagnostic: bin count %d is not positive", k)
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return nil, eris.Errorf("diagnostic: outcome row %d is %v, want 0 or 1", i+1, v)
		}
	}

	lo, hi := x[0], x[0]
	for _, v := range x[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	width := (hi - lo) / float64(k)
	counts := make([]int, k)
	sumX := make([]float64, k)
	sumY := make([]float64, k)

	for i, v := range x {
		j := k - 1
		if width > 0 {
			j = int((v - lo) / width)
			if j > k-1 {
				j = k - 1 // max(x) closes the last interval
			}
		} else {
			j = 0 // degenerate range: everything in the first bin
		}
		counts[j]++
		sumX[j] += v
		sumY[j] += y[i]
	}

	var bins []Bin
	for j := 0; j < k; j++ {
		if counts[j] == 0 {
			continue
		}
		n := float64(counts[j])
		p := sumY[j] / n
		b := Bin{
			Lo:    lo + float64(j)*width,
			Hi:    lo + float64(j+1)*width,
			Count: counts[j],
			PHat:  p,
			MeanX: sumX[j] / n,
		}
		b.Logit = math.Log(p / (1 - p))
		b.LogitDefined = !math.IsInf(b.Logit, 0) && !math.IsNaN(b.Logit)
		bins = append(bins, b)
	}

	return bins, nil
}

// UndefinedBins returns the indices of bins whose logit is undefined.
func UndefinedBins(bins []Bin) []int {
	var idx []int
	for i, b := range bins {
		if !b.LogitDefined {
			idx = append(idx, i)
		}
	}
	return idx
}
