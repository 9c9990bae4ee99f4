// Package store persists imported survey datasets and the history of
// analysis runs, with SQLite and Postgres backends.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/meridian-health/lungsurvey/internal/model"
	"github.com/meridian-health/lungsurvey/internal/survey"
)

// ErrNotFound is returned when a dataset or run does not exist.
var ErrNotFound = eris.New("not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	DatasetID string          `json:"dataset_id,omitempty"`
	Kind      model.RunKind   `json:"kind,omitempty"`
	Status    model.RunStatus `json:"status,omitempty"`
	Limit     int             `json:"limit,omitempty"`
}

// Store defines the persistence interface for the analysis pipeline.
type Store interface {
	// Datasets. SaveDataset upserts by name and replaces the stored
	// record rows with the frame's contents.
	SaveDataset(ctx context.Context, name, source string, fr *survey.Frame) (*model.Dataset, error)
	GetDataset(ctx context.Context, id string) (*model.Dataset, error)
	GetDatasetByName(ctx context.Context, name string) (*model.Dataset, error)
	ListDatasets(ctx context.Context) ([]model.Dataset, error)
	LoadFrame(ctx context.Context, datasetID string) (*survey.Frame, error)

	// Runs.
	CreateRun(ctx context.Context, datasetID string, kind model.RunKind, params any) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, result any) error
	FailRun(ctx context.Context, runID string, runErr error) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a store for the configured driver and runs migrations.
func Open(ctx context.Context, driver, databaseURL string) (Store, error) {
	var (
		st  Store
		err error
	)
	switch driver {
	case "sqlite", "":
		st, err = NewSQLite(databaseURL)
	case "postgres":
		st, err = NewPostgres(ctx, databaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q (valid: sqlite, postgres)", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}
