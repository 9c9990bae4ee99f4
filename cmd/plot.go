package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-health/lungsurvey/internal/diagnostic"
	"github.com/meridian-health/lungsurvey/internal/model"
	"github.com/meridian-health/lungsurvey/internal/plot"
)

var (
	plotPredictor string
	plotOutcome   string
	plotOutDir    string
)

var plotCmd = &cobra.Command{
	Use:   "plot <dataset>",
	Short: "Render exploratory charts for a stored dataset",
	Long:  "Renders a predictor histogram, a box plot split by outcome, outcome counts, a correlation heatmap, and the binned logit curve as PNG files.",
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

		outDir := plotOutDir
		if outDir == "" {
			outDir = cfg.Plot.OutDir
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}

		params := map[string]any{"predictor": plotPredictor, "outcome": plotOutcome, "out_dir": outDir}
		return withRun(ctx, st, ds.ID, model.RunKindPlot, params, func() (any, error) {
			x, err := fr.Col(plotPredictor)
			if err != nil {
				return nil, err
			}
			y, err := fr.Col(plotOutcome)
			if err != nil {
				return nil, err
			}

			var neg, pos []float64
			for i, v := range y {
				if v == 1 {
					pos = append(pos, x[i])
				} else {
					neg = append(neg, x[i])
				}
			}

			out := func(name string) string { return filepath.Join(outDir, name) }

			g, _ := errgroup.WithContext(ctx)
			g.SetLimit(4)

			g.Go(func() error {
				return plot.Histogram(x, cfg.Diagnostic.Bins,
					fmt.Sprintf("%s distribution", plotPredictor),
					out(fmt.Sprintf("hist_%s.png", plotPredictor)))
			})
			g.Go(func() error {
				return plot.BoxByOutcome(plotPredictor, neg, pos,
					out(fmt.Sprintf("box_%s.png", plotPredictor)))
			})
			g.Go(func() error {
				return plot.CountBar(
					[]string{"0", "1"},
					[]float64{float64(len(neg)), float64(len(pos))},
					fmt.Sprintf("%s counts", plotOutcome),
					out(fmt.Sprintf("counts_%s.png", plotOutcome)))
			})
			g.Go(func() error {
				corr, err := diagnostic.Correlation(fr)
				if err != nil {
					return err
				}
				return plot.CorrHeatmap(corr, "correlation", out("corr.png"))
			})
			g.Go(func() error {
				bins, err := diagnostic.LogitLinearity(x, y, cfg.Diagnostic.Bins)
				if err != nil {
					return err
				}
				return plot.LogitScatter(bins, plotPredictor,
					out(fmt.Sprintf("logit_%s.png", plotPredictor)))
			})

			if err := g.Wait(); err != nil {
				return nil, err
			}

			zap.L().Info("plots rendered", zap.String("dir", outDir))
			return map[string]string{"out_dir": outDir}, nil
		})
	},
}

func init() {
	plotCmd.Flags().StringVar(&plotPredictor, "predictor", "AGE", "continuous predictor column")
	plotCmd.Flags().StringVar(&plotOutcome, "outcome", "LUNG_CANCER", "binary outcome column")
	plotCmd.Flags().StringVar(&plotOutDir, "out", "", "output directory (default from config)")
	rootCmd.AddCommand(plotCmd)
}
