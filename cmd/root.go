package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meridian-health/lungsurvey/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "lungsurvey",
	Short: "Lung cancer survey analysis pipeline",
	Long:  "Imports categorical survey data, recodes it to a numeric frame, and runs exploratory diagnostics: descriptive stats, logit linearity binning, VIF, logistic fits, and charts.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
