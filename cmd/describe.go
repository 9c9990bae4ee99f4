package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/meridian-health/lungsurvey/internal/diagnostic"
	"github.com/meridian-health/lungsurvey/internal/model"
)

var describeCorr bool

var describeCmd = &cobra.Command{
	Use:   "describe <dataset>",
	Short: "Print descriptive statistics for a stored dataset",
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

		return withRun(ctx, st, ds.ID, model.RunKindDescribe, nil, func() (any, error) {
			summaries, err := diagnostic.Describe(fr)
			if err != nil {
				return nil, err
			}

			p := message.NewPrinter(language.English)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "COLUMN\tN\tMEAN\tSTDDEV\tMIN\tMAX")
			for _, s := range summaries {
				p.Fprintf(w, "%s\t%d\t%.4f\t%.4f\t%g\t%g\n",
					s.Name, s.N, s.Mean, s.StdDev, s.Min, s.Max)
			}
			w.Flush()

			if describeCorr {
				corr, err := diagnostic.Correlation(fr)
				if err != nil {
					return nil, err
				}
				fmt.Println()
				cw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprint(cw, "\t")
				for _, name := range fr.Names {
					fmt.Fprintf(cw, "%s\t", name)
				}
				fmt.Fprintln(cw)
				for i, name := range fr.Names {
					fmt.Fprintf(cw, "%s\t", name)
					for j := range fr.Names {
						fmt.Fprintf(cw, "%.3f\t", corr.At(i, j))
					}
					fmt.Fprintln(cw)
				}
				cw.Flush()
			}

			return summaries, nil
		})
	},
}

func init() {
	describeCmd.Flags().BoolVar(&describeCorr, "corr", false, "also print the correlation matrix")
	rootCmd.AddCommand(describeCmd)
}
