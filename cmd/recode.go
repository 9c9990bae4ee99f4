package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meridian-health/lungsurvey/internal/recode"
	"github.com/meridian-health/lungsurvey/internal/report"
)

var (
	recodeOut    string
	recodeSchema string
)

var recodeCmd = &cobra.Command{
	Use:   "recode <file>",
	Short: "Recode a raw survey file to numeric form without storing it",
	Long:  "Reads a raw survey CSV or XLSX, applies the schema's categorical and ordinal recodings, and writes the numeric frame to stdout or a file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		schema, err := loadSchema(recodeSchema)
		if err != nil {
			return err
		}

		tbl, err := readTable(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "recode: read %s", args[0])
		}

		fr, err := recode.Recode(tbl, schema)
		if err != nil {
			return err
		}

		if recodeOut == "" {
			return report.WriteFrameCSV(fr, os.Stdout)
		}

		switch strings.ToLower(filepath.Ext(recodeOut)) {
		case ".xlsx":
			err = report.WriteFrameXLSX(fr, "recoded", recodeOut)
		default:
			var f *os.File
			f, err = os.Create(recodeOut)
			if err != nil {
				return eris.Wrapf(err, "recode: create %s", recodeOut)
			}
			defer f.Close()
			err = report.WriteFrameCSV(fr, f)
		}
		if err != nil {
			return err
		}

		zap.L().Info("recode complete",
			zap.String("out", recodeOut),
			zap.Int("rows", fr.NumRows()),
		)
		return nil
	},
}

func init() {
	recodeCmd.Flags().StringVarP(&recodeOut, "out", "o", "", "output path (.csv or .xlsx; default stdout)")
	recodeCmd.Flags().StringVar(&recodeSchema, "schema", "", "path to a survey schema YAML (default: built-in lung cancer schema)")
	rootCmd.AddCommand(recodeCmd)
}
