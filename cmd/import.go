package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meridian-health/lungsurvey/internal/recode"
)

var (
	importFrom   string
	importSchema string
)

var importCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Import a survey file, recode it, and store the numeric frame",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := args[0]

		schema, err := loadSchema(importSchema)
		if err != nil {
			return err
		}

		tbl, err := readTable(ctx, importFrom)
		if err != nil {
			return eris.Wrapf(err, "import: read %s", importFrom)
		}

		fr, err := recode.Recode(tbl, schema)
		if err != nil {
			return eris.Wrap(err, "import: recode")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		ds, err := st.SaveDataset(ctx, name, importFrom, fr)
		if err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.String("dataset", ds.Name),
			zap.String("id", ds.ID),
			zap.Int("rows", ds.Rows),
			zap.Int("columns", len(ds.Columns)),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFrom, "from", "", "path or URL of the survey CSV/XLSX file (required)")
	importCmd.Flags().StringVar(&importSchema, "schema", "", "path to a survey schema YAML (default: built-in lung cancer schema)")
	_ = importCmd.MarkFlagRequired("from")
	rootCmd.AddCommand(importCmd)
}
