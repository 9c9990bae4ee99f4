package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meridian-health/lungsurvey/internal/diagnostic"
	"github.com/meridian-health/lungsurvey/internal/model"
	"github.com/meridian-health/lungsurvey/internal/report"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Model diagnostics for a stored dataset",
}

// -- diagnose logit --

var (
	logitPredictor string
	logitOutcome   string
	logitBins      int
	logitOut       string
)

var diagnoseLogitCmd = &cobra.Command{
	Use:   "logit <dataset>",
	Short: "Check logit linearity of a continuous predictor",
	Long:  "Bins a continuous predictor into equal-width intervals and reports the empirical event rate and logit per bin. A roughly linear logit across bins supports entering the predictor untransformed.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		ds, fr, err := resolveFrame(ctx, st, args[0])
		if err != nil {
			return err
		}

		bins := logitBins
		if bins == 0 {
			bins = cfg.Diagnostic.Bins
		}

		params := map[string]any{"predictor": logitPredictor, "outcome": logitOutcome, "bins": bins}
		return withRun(ctx, st, ds.ID, model.RunKindLogit, params, func() (any, error) {
			x, err := fr.Col(logitPredictor)
			if err != nil {
				return nil, err
			}
			y, err := fr.Col(logitOutcome)
			if err != nil {
				return nil, err
			}

			result, err := diagnostic.LogitLinearity(x, y, bins)
			if err != nil {
				return nil, err
			}

			if undefined := diagnostic.UndefinedBins(result); len(undefined) > 0 {
				zap.L().Warn("bins with undefined logit",
					zap.Ints("bins", undefined),
					zap.String("predictor", logitPredictor),
				)
			}

			if logitOut != "" {
				if err := writeBins(result, logitOut); err != nil {
					return nil, err
				}
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "BIN\tRANGE\tCOUNT\tP_HAT\tMEAN\tLOGIT")
			for i, b := range result {
				logit := "undefined"
				if b.LogitDefined {
					logit = fmt.Sprintf("%.4f", b.Logit)
				}
				fmt.Fprintf(w, "%d\t[%.2f, %.2f)\t%d\t%.4f\t%.2f\t%s\n",
					i, b.Lo, b.Hi, b.Count, b.PHat, b.MeanX, logit)
			}
			w.Flush()

			return result, nil
		})
	},
}

func writeBins(bins []diagnostic.Bin, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return report.WriteBinsXLSX(bins, path)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "diagnose: create %s", path)
	}
	defer f.Close()
	return report.WriteBinsCSV(bins, f)
}

// -- diagnose vif --

var vifPredictors []string

var diagnoseVIFCmd = &cobra.Command{
	Use:   "vif <dataset>",
	Short: "Compute variance inflation factors for a predictor set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		ds, fr, err := resolveFrame(ctx, st, args[0])
		if err != nil {
			return err
		}

		predictors := vifPredictors
		if len(predictors) == 0 {
			return eris.New("diagnose vif: at least two --predictors are required")
		}

		params := map[string]any{"predictors": predictors}
		return withRun(ctx, st, ds.ID, model.RunKindVIF, params, func() (any, error) {
			scores, err := diagnostic.VIF(fr, predictors)
			if err != nil {
				return nil, err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PREDICTOR\tVIF")
			for _, s := range scores {
				fmt.Fprintf(w, "%s\t%.3f\n", s.Name, s.VIF)
			}
			w.Flush()

			return scores, nil
		})
	},
}

func init() {
	diagnoseLogitCmd.Flags().StringVar(&logitPredictor, "predictor", "AGE", "continuous predictor column")
	diagnoseLogitCmd.Flags().StringVar(&logitOutcome, "outcome", "LUNG_CANCER", "binary outcome column")
	diagnoseLogitCmd.Flags().IntVar(&logitBins, "bins", 0, "number of equal-width bins (default from config)")
	diagnoseLogitCmd.Flags().StringVar(&logitOut, "out", "", "write the bin table to a .csv or .xlsx file")

	diagnoseVIFCmd.Flags().StringSliceVar(&vifPredictors, "predictors", nil, "predictor columns (comma separated)")

	diagnoseCmd.AddCommand(diagnoseLogitCmd)
	diagnoseCmd.AddCommand(diagnoseVIFCmd)
	rootCmd.AddCommand(diagnoseCmd)
}
