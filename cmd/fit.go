package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/meridian-health/lungsurvey/internal/fit"
	"github.com/meridian-health/lungsurvey/internal/model"
)

var (
	fitOutcome     string
	fitPredictors  []string
	fitInteraction []string
)

var fitCmd = &cobra.Command{
	Use:   "fit <dataset>",
	Short: "Fit a logistic regression on a stored dataset",
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

		spec := fit.Spec{
			Outcome:    fitOutcome,
			Predictors: fitPredictors,
		}
		if len(fitInteraction) > 0 {
			if len(fitInteraction) != 2 {
				return eris.New("fit: --interaction takes exactly two columns")
			}
			spec.Interaction = [2]string{fitInteraction[0], fitInteraction[1]}
		}

		params := map[string]any{"outcome": spec.Outcome, "predictors": spec.Predictors}
		if spec.HasInteraction() {
			params["interaction"] = spec.Interaction
		}

		return withRun(ctx, st, ds.ID, model.RunKindFit, params, func() (any, error) {
			result, err := fit.Logistic(fr, spec)
			if err != nil {
				return nil, err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TERM\tCOEF\tSTDERR\tZ\tP")
			for _, term := range result.Terms {
				fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.3f\t%.4f\n",
					term.Name, term.Coef, term.StdErr, term.Z, term.P)
			}
			w.Flush()
			fmt.Printf("\nlog-likelihood: %.4f  n: %d\n", result.LogLike, result.NObs)

			return result, nil
		})
	},
}

func init() {
	fitCmd.Flags().StringVar(&fitOutcome, "outcome", "LUNG_CANCER", "binary outcome column")
	fitCmd.Flags().StringSliceVar(&fitPredictors, "predictors", []string{"AGE", "SMOKING"}, "predictor columns (comma separated)")
	fitCmd.Flags().StringSliceVar(&fitInteraction, "interaction", nil, "two columns to interact, e.g. AGE,SMOKING")
	rootCmd.AddCommand(fitCmd)
}
