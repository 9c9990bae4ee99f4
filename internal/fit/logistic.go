// Package fit wraps logistic-regression fitting for the recoded survey
// frame. The numerical work is done by kshedden/statmodel; this package
// builds the design (intercept, predictors, optional interaction
// product) and derives per-term z scores and p-values.
package fit

import (
	"math"

	"github.com/kshedden/statmodel/glm"
	"github.com/kshedden/statmodel/statmodel"
	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/meridian-health/lungsurvey/internal/model"
	"github.com/meridian-health/lungsurvey/internal/survey"
)

const interceptName = "icept"

// Spec describes one logistic model: a binary outcome, main-effect
// predictors, and at most one interaction pair. The interaction enters
// the design as the elementwise product column named "a:b"; both parent
// main effects must be listed in Predictors.
type Spec struct {
	Outcome     string    `json:"outcome"`
	Predictors  []string  `json:"predictors"`
	Interaction [2]string `json:"interaction,omitempty"`
}

// HasInteraction reports whether an interaction pair was requested.
func (s Spec) HasInteraction() bool {
	return s.Interaction[0] != "" && s.Interaction[1] != ""
}

// Term is one fitted coefficient with its Wald statistics.
type Term struct {
	Name   string  `json:"name"`
	Coef   float64 `json:"coef"`
	StdErr float64 `json:"std_err"`
	Z      float64 `json:"z"`
	P      float64 `json:"p"`
}

// Result holds a fitted logistic model.
type Result struct {
	Terms   []Term  `json:"terms"`
	LogLike float64 `json:"log_like"`
	NObs    int     `json:"n_obs"`
}

// Logistic fits a binomial GLM with logit link. The outcome column must
// hold only 0 and 1 (i.e. the frame is already recoded).
func Logistic(fr *survey.Frame, spec Spec) (*Result, error) {
	if spec.Outcome == "" || len(spec.Predictors) == 0 {
		return nil, eris.Wrap(model.ErrInsufficientData, "fit: outcome and predictors are required")
	}

	n := fr.NumRows()
	if n <= len(spec.Predictors)+2 {
		return nil, eris.Wrapf(model.ErrInsufficientData, "fit: %d rows for %d predictors", n, len(spec.Predictors))
	}

	y, err := fr.Col(spec.Outcome)
	if err != nil {
		return nil, err
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return nil, eris.Errorf("fit: outcome %s row %d is %v, want 0 or 1", spec.Outcome, i+1, v)
		}
	}

	data, names, xnames, err := buildDesign(fr, spec, y, n)
	if err != nil {
		return nil, err
	}

	ds := statmodel.NewDataset(data, names)

	cfg := glm.DefaultConfig()
	cfg.Family = glm.NewFamily(glm.BinomialFamily)

	m, err := glm.NewGLM(ds, spec.Outcome, xnames, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "fit: build glm")
	}

	res := m.Fit()

	params := res.Params()
	se := res.StdErr()
	terms := make([]Term, len(xnames))
	for i, name := range xnames {
		z := params[i] / se[i]
		terms[i] = Term{
			Name:   name,
			Coef:   params[i],
			StdErr: se[i],
			Z:      z,
			P:      2 * distuv.UnitNormal.CDF(-math.Abs(z)),
		}
	}

	return &Result{Terms: terms, LogLike: res.LogLike(), NObs: n}, nil
}

// buildDesign assembles the column set passed to statmodel: outcome,
// intercept, main effects, and the optional product column.
func buildDesign(fr *survey.Frame, spec Spec, y []float64, n int) (data [][]float64, names, xnames []string, err error) {
	icept := make([]float64, n)
	for i := range icept {
		icept[i] = 1
	}

	data = [][]float64{y, icept}
	names = []string{spec.Outcome, interceptName}
	xnames = []string{interceptName}

	for _, p := range spec.Predictors {
		if p == spec.Outcome {
			return nil, nil, nil, eris.Errorf("fit: outcome %s listed as predictor", p)
		}
		col, cerr := fr.Col(p)
		if cerr != nil {
			return nil, nil, nil, cerr
		}
		data = append(data, col)
		names = append(names, p)
		xnames = append(xnames, p)
	}

	if spec.HasInteraction() {
		a, aerr := fr.Col(spec.Interaction[0])
		if aerr != nil {
			return nil, nil, nil, aerr
		}
		b, berr := fr.Col(spec.Interaction[1])
		if berr != nil {
			return nil, nil, nil, berr
		}
		prod := make([]float64, n)
		for i := range prod {
			prod[i] = a[i] * b[i]
		}
		name := spec.Interaction[0] + ":" + spec.Interaction[1]
		data = append(data, prod)
		names = append(names, name)
		xnames = append(xnames, name)
	}

	return data, names, xnames, nil
}
