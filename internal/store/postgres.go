package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/meridian-health/lungsurvey/internal/db"
	"github.com/meridian-health/lungsurvey/internal/model"
	"github.com/meridian-health/lungsurvey/internal/survey"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 10
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS datasets (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	source      TEXT NOT NULL DEFAULT '',
	row_count   INTEGER NOT NULL,
	columns     JSONB NOT NULL,
	imported_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS records (
	dataset_id TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
	row_idx    INTEGER NOT NULL,
	data       JSONB NOT NULL,
	PRIMARY KEY (dataset_id, row_idx)
);

CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	dataset_id TEXT NOT NULL,
	kind       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	params     JSONB,
	result     JSONB,
	error      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_dataset ON runs(dataset_id);
CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveDataset(ctx context.Context, name, source string, fr *survey.Frame) (*model.Dataset, error) {
	columnsJSON, err := json.Marshal(fr.Names)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal columns")
	}
	now := time.Now().UTC()
	n := fr.NumRows()

	var existingID string
	err = s.pool.QueryRow(ctx, `SELECT id FROM datasets WHERE name = $1`, name).Scan(&existingID)
	isNew := err == pgx.ErrNoRows
	if err != nil && !isNew {
		return nil, eris.Wrap(err, "postgres: lookup dataset")
	}

	id := existingID
	if isNew {
		id = uuid.New().String()
		_, err = s.pool.Exec(ctx,
			`INSERT INTO datasets (id, name, source, row_count, columns, imported_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			id, name, source, n, string(columnsJSON), now,
		)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: insert dataset")
		}
	} else {
		_, err = s.pool.Exec(ctx,
			`UPDATE datasets SET source = $1, row_count = $2, columns = $3, imported_at = $4 WHERE id = $5`,
			source, n, string(columnsJSON), now, id,
		)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: update dataset")
		}
		// Drop rows past the new length; overlapping rows are upserted.
		if _, err := s.pool.Exec(ctx,
			`DELETE FROM records WHERE dataset_id = $1 AND row_idx >= $2`, id, n); err != nil {
			return nil, eris.Wrap(err, "postgres: trim records")
		}
	}

	rows := make([][]any, n)
	for i := 0; i < n; i++ {
		rowJSON, err := json.Marshal(fr.Row(i))
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: marshal row %d", i)
		}
		rows[i] = []any{id, i, string(rowJSON)}
	}

	columns := []string{"dataset_id", "row_idx", "data"}
	if isNew {
		// Fresh dataset: straight COPY is the fast path.
		if _, err := db.CopyFrom(ctx, s.pool, "records", columns, rows); err != nil {
			return nil, err
		}
	} else {
		_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
			Table:        "records",
			Columns:      columns,
			ConflictKeys: []string{"dataset_id", "row_idx"},
		}, rows)
		if err != nil {
			return nil, err
		}
	}

	return &model.Dataset{
		ID:         id,
		Name:       name,
		Source:     source,
		Rows:       n,
		Columns:    fr.Names,
		ImportedAt: now,
	}, nil
}

func (s *PostgresStore) GetDataset(ctx context.Context, id string) (*model.Dataset, error) {
	return s.scanDataset(s.pool.QueryRow(ctx,
		`SELECT id, name, source, row_count, columns, imported_at FROM datasets WHERE id = $1`, id))
}

func (s *PostgresStore) GetDatasetByName(ctx context.Context, name string) (*model.Dataset, error) {
	return s.scanDataset(s.pool.QueryRow(ctx,
		`SELECT id, name, source, row_count, columns, imported_at FROM datasets WHERE name = $1`, name))
}

func (s *PostgresStore) scanDataset(row pgx.Row) (*model.Dataset, error) {
	var (
		ds          model.Dataset
		columnsJSON []byte
	)
	err := row.Scan(&ds.ID, &ds.Name, &ds.Source, &ds.Rows, &columnsJSON, &ds.ImportedAt)
	if err == pgx.ErrNoRows {
		return nil, eris.Wrap(ErrNotFound, "postgres: dataset")
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan dataset")
	}
	if err := json.Unmarshal(columnsJSON, &ds.Columns); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal columns")
	}
	return &ds, nil
}

func (s *PostgresStore) ListDatasets(ctx context.Context) ([]model.Dataset, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, source, row_count, columns, imported_at FROM datasets ORDER BY imported_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list datasets")
	}
	defer rows.Close()

	var out []model.Dataset
	for rows.Next() {
		var (
			ds          model.Dataset
			columnsJSON []byte
		)
		if err := rows.Scan(&ds.ID, &ds.Name, &ds.Source, &ds.Rows, &columnsJSON, &ds.ImportedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan dataset")
		}
		if err := json.Unmarshal(columnsJSON, &ds.Columns); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal columns")
		}
		out = append(out, ds)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate datasets")
}

func (s *PostgresStore) LoadFrame(ctx context.Context, datasetID string) (*survey.Frame, error) {
	ds, err := s.GetDataset(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	fr := survey.NewFrame(ds.Columns, ds.Rows)

	rows, err := s.pool.Query(ctx,
		`SELECT row_idx, data FROM records WHERE dataset_id = $1 ORDER BY row_idx`, datasetID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load records")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			idx     int
			rowJSON []byte
		)
		if err := rows.Scan(&idx, &rowJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		var vals []float64
		if err := json.Unmarshal(rowJSON, &vals); err != nil {
			return nil, eris.Wrapf(err, "postgres: unmarshal row %d", idx)
		}
		if len(vals) != len(fr.Cols) || idx < 0 || idx >= ds.Rows {
			return nil, eris.Errorf("postgres: row %d shape mismatch", idx)
		}
		for j, v := range vals {
			fr.Cols[j][idx] = v
		}
	}
	return fr, eris.Wrap(rows.Err(), "postgres: iterate records")
}

func (s *PostgresStore) CreateRun(ctx context.Context, datasetID string, kind model.RunKind, params any) (*model.Run, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal params")
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, dataset_id, kind, status, params, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, datasetID, string(kind), string(model.RunStatusRunning), string(paramsJSON), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:        id,
		DatasetID: datasetID,
		Kind:      kind,
		Status:    model.RunStatusRunning,
		Params:    paramsJSON,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, result any) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, result = $2, updated_at = $3 WHERE id = $4`,
		string(model.RunStatusComplete), string(resultJSON), time.Now().UTC(), runID,
	)
	return eris.Wrap(err, "postgres: complete run")
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(model.RunStatusFailed), msg, time.Now().UTC(), runID,
	)
	return eris.Wrap(err, "postgres: fail run")
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, dataset_id, kind, status, params, result, error, created_at, updated_at FROM runs WHERE id = $1`, runID)

	run, err := scanPGRun(row.Scan)
	if err == pgx.ErrNoRows {
		return nil, eris.Wrap(ErrNotFound, "postgres: run")
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan run")
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, dataset_id, kind, status, params, result, error, created_at, updated_at FROM runs WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.DatasetID != "" {
		query += ` AND dataset_id = ` + arg(filter.DatasetID)
	}
	if filter.Kind != "" {
		query += ` AND kind = ` + arg(string(filter.Kind))
	}
	if filter.Status != "" {
		query += ` AND status = ` + arg(string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ` + arg(filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var out []model.Run
	for rows.Next() {
		run, err := scanPGRun(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		out = append(out, *run)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate runs")
}

func scanPGRun(scan func(dest ...any) error) (*model.Run, error) {
	var (
		run            model.Run
		kind, status   string
		params, result []byte
	)
	err := scan(&run.ID, &run.DatasetID, &kind, &status, &params, &result, &run.Error, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, err
	}
	run.Kind = model.RunKind(kind)
	run.Status = model.RunStatus(status)
	run.Params = params
	run.Result = result
	return &run, nil
}
