package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/meridian-health/lungsurvey/internal/model"
	"github.com/meridian-health/lungsurvey/internal/survey"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures
// WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS datasets (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	source      TEXT NOT NULL DEFAULT '',
	row_count   INTEGER NOT NULL,
	columns     TEXT NOT NULL,
	imported_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS records (
	dataset_id TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
	row_idx    INTEGER NOT NULL,
	data       TEXT NOT NULL,
	PRIMARY KEY (dataset_id, row_idx)
);

CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	dataset_id TEXT NOT NULL,
	kind       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	params     TEXT,
	result     TEXT,
	error      TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_dataset ON runs(dataset_id);
CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveDataset(ctx context.Context, name, source string, fr *survey.Frame) (*model.Dataset, error) {
	columnsJSON, err := json.Marshal(fr.Names)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal columns")
	}
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM datasets WHERE name = ?`, name).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		id = uuid.New().String()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO datasets (id, name, source, row_count, columns, imported_at) VALUES (?, ?, ?, ?, ?, ?)`,
			id, name, source, fr.NumRows(), string(columnsJSON), now,
		)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: insert dataset")
		}
	case err != nil:
		return nil, eris.Wrap(err, "sqlite: lookup dataset")
	default:
		_, err = tx.ExecContext(ctx,
			`UPDATE datasets SET source = ?, row_count = ?, columns = ?, imported_at = ? WHERE id = ?`,
			source, fr.NumRows(), string(columnsJSON), now, id,
		)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: update dataset")
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE dataset_id = ?`, id); err != nil {
			return nil, eris.Wrap(err, "sqlite: clear records")
		}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (dataset_id, row_idx, data) VALUES (?, ?, ?)`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: prepare record insert")
	}
	defer stmt.Close()

	n := fr.NumRows()
	for i := 0; i < n; i++ {
		rowJSON, err := json.Marshal(fr.Row(i))
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: marshal row %d", i)
		}
		if _, err := stmt.ExecContext(ctx, id, i, string(rowJSON)); err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert row %d", i)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit")
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

func (s *SQLiteStore) GetDataset(ctx context.Context, id string) (*model.Dataset, error) {
	return s.scanDataset(s.db.QueryRowContext(ctx,
		`SELECT id, name, source, row_count, columns, imported_at FROM datasets WHERE id = ?`, id))
}

func (s *SQLiteStore) GetDatasetByName(ctx context.Context, name string) (*model.Dataset, error) {
	return s.scanDataset(s.db.QueryRowContext(ctx,
		`SELECT id, name, source, row_count, columns, imported_at FROM datasets WHERE name = ?`, name))
}

func (s *SQLiteStore) scanDataset(row *sql.Row) (*model.Dataset, error) {
	var (
		ds          model.Dataset
		columnsJSON string
	)
	err := row.Scan(&ds.ID, &ds.Name, &ds.Source, &ds.Rows, &columnsJSON, &ds.ImportedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrap(ErrNotFound, "sqlite: dataset")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan dataset")
	}
	if err := json.Unmarshal([]byte(columnsJSON), &ds.Columns); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal columns")
	}
	return &ds, nil
}

func (s *SQLiteStore) ListDatasets(ctx context.Context) ([]model.Dataset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, source, row_count, columns, imported_at FROM datasets ORDER BY imported_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list datasets")
	}
	defer rows.Close()

	var out []model.Dataset
	for rows.Next() {
		var (
			ds          model.Dataset
			columnsJSON string
		)
		if err := rows.Scan(&ds.ID, &ds.Name, &ds.Source, &ds.Rows, &columnsJSON, &ds.ImportedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan dataset")
		}
		if err := json.Unmarshal([]byte(columnsJSON), &ds.Columns); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal columns")
		}
		out = append(out, ds)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate datasets")
}

func (s *SQLiteStore) LoadFrame(ctx context.Context, datasetID string) (*survey.Frame, error) {
	ds, err := s.GetDataset(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	fr := survey.NewFrame(ds.Columns, ds.Rows)

	rows, err := s.db.QueryContext(ctx,
		`SELECT row_idx, data FROM records WHERE dataset_id = ? ORDER BY row_idx`, datasetID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load records")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			idx     int
			rowJSON string
		)
		if err := rows.Scan(&idx, &rowJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		var vals []float64
		if err := json.Unmarshal([]byte(rowJSON), &vals); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal row %d", idx)
		}
		if len(vals) != len(fr.Cols) || idx < 0 || idx >= ds.Rows {
			return nil, eris.Errorf("sqlite: row %d shape mismatch", idx)
		}
		for j, v := range vals {
			fr.Cols[j][idx] = v
		}
	}
	return fr, eris.Wrap(rows.Err(), "sqlite: iterate records")
}

func (s *SQLiteStore) CreateRun(ctx context.Context, datasetID string, kind model.RunKind, params any) (*model.Run, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal params")
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, dataset_id, kind, status, params, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, datasetID, string(kind), string(model.RunStatusRunning), string(paramsJSON), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
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

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, result any) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, result = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusComplete), string(resultJSON), time.Now().UTC(), runID,
	)
	return eris.Wrap(err, "sqlite: complete run")
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), msg, time.Now().UTC(), runID,
	)
	return eris.Wrap(err, "sqlite: fail run")
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, dataset_id, kind, status, params, result, error, created_at, updated_at FROM runs WHERE id = ?`, runID)

	run, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, eris.Wrap(ErrNotFound, "sqlite: run")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, dataset_id, kind, status, params, result, error, created_at, updated_at FROM runs WHERE 1=1`
	var args []any
	if filter.DatasetID != "" {
		query += ` AND dataset_id = ?`
		args = append(args, filter.DatasetID)
	}
	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(filter.Kind))
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var out []model.Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		out = append(out, *run)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

// scanRun decodes one runs row; params and result are nullable.
func scanRun(scan func(dest ...any) error) (*model.Run, error) {
	var (
		run            model.Run
		kind, status   string
		params, result sql.NullString
	)
	err := scan(&run.ID, &run.DatasetID, &kind, &status, &params, &result, &run.Error, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, err
	}
	run.Kind = model.RunKind(kind)
	run.Status = model.RunStatus(status)
	if params.Valid {
		run.Params = []byte(params.String)
	}
	if result.Valid {
		run.Result = []byte(result.String)
	}
	return &run, nil
}
