package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/meridian-health/lungsurvey/internal/fetcher"
	"github.com/meridian-health/lungsurvey/internal/model"
	"github.com/meridian-health/lungsurvey/internal/store"
	"github.com/meridian-health/lungsurvey/internal/survey"
)

func initStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
}

// loadSchema returns the configured survey schema, or the built-in one
// when no schema file is configured.
func loadSchema(override string) (survey.Schema, error) {
	path := override
	if path == "" {
		path = cfg.Schema.Path
	}
	if path == "" {
		return survey.DefaultSchema(), nil
	}
	return survey.LoadSchema(path)
}

func newFetcher() *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    cfg.Fetch.Timeout(),
		MaxRetries: cfg.Fetch.MaxRetries,
		RatePerSec: cfg.Fetch.RatePerSec,
	})
}

func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// readTable reads a raw survey table from a local path or URL. The
// format is picked by extension: .xlsx goes through the spreadsheet
// reader, everything else is treated as CSV.
func readTable(ctx context.Context, src string) (*survey.Table, error) {
	if strings.EqualFold(filepath.Ext(src), ".xlsx") {
		path := src
		if isURL(src) {
			tmp, err := os.CreateTemp("", "lungsurvey-*.xlsx")
			if err != nil {
				return nil, eris.Wrap(err, "create temp file")
			}
			tmp.Close()
			defer os.Remove(tmp.Name())

			if _, err := newFetcher().DownloadToFile(ctx, src, tmp.Name()); err != nil {
				return nil, err
			}
			path = tmp.Name()
		}
		return fetcher.ReadXLSXTable(path, fetcher.XLSXOptions{})
	}

	r, err := fetcher.Open(ctx, newFetcher(), src)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return fetcher.ReadCSVTable(ctx, r, fetcher.CSVOptions{TrimSpace: true})
}

// resolveDataset finds a stored dataset by name first, then by id.
func resolveDataset(ctx context.Context, st store.Store, ref string) (*model.Dataset, error) {
	ds, err := st.GetDatasetByName(ctx, ref)
	if err == nil {
		return ds, nil
	}
	if !eris.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return st.GetDataset(ctx, ref)
}

// resolveFrame loads the recoded frame for a stored dataset reference.
func resolveFrame(ctx context.Context, st store.Store, ref string) (*model.Dataset, *survey.Frame, error) {
	ds, err := resolveDataset(ctx, st, ref)
	if err != nil {
		return nil, nil, err
	}
	fr, err := st.LoadFrame(ctx, ds.ID)
	if err != nil {
		return nil, nil, err
	}
	return ds, fr, nil
}

// withRun records an analysis run around fn, marking it complete or
// failed and returning fn's result payload untouched.
func withRun(ctx context.Context, st store.Store, datasetID string, kind model.RunKind, params any, fn func() (any, error)) error {
	run, err := st.CreateRun(ctx, datasetID, kind, params)
	if err != nil {
		return err
	}

	result, err := fn()
	if err != nil {
		if failErr := st.FailRun(ctx, run.ID, err); failErr != nil {
			zap.L().Warn("record run failure", zap.String("run_id", run.ID), zap.Error(failErr))
		}
		return err
	}

	if err := st.CompleteRun(ctx, run.ID, result); err != nil {
		return err
	}
	zap.L().Info("run complete", zap.String("run_id", run.ID), zap.String("kind", string(kind)))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
