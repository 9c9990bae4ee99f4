package model

import (
	"encoding/json"
	"time"
)

// RunStatus represents the current state of an analysis run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunKind identifies which analysis produced a run.
type RunKind string

const (
	RunKindImport   RunKind = "import"
	RunKindRecode   RunKind = "recode"
	RunKindDescribe RunKind = "describe"
	RunKindLogit    RunKind = "logit"
	RunKindVIF      RunKind = "vif"
	RunKindFit      RunKind = "fit"
	RunKindPlot     RunKind = "plot"
)

// Run represents a single analysis run against a dataset.
type Run struct {
	ID        string          `json:"id"`
	DatasetID string          `json:"dataset_id"`
	Kind      RunKind         `json:"kind"`
	Status    RunStatus       `json:"status"`
	Params    json.RawMessage `json:"params,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Dataset describes an imported, recoded survey dataset.
type Dataset struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Source     string    `json:"source"`
	Rows       int       `json:"rows"`
	Columns    []string  `json:"columns"`
	ImportedAt time.Time `json:"imported_at"`
}
