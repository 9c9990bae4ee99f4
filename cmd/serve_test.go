package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-health/lungsurvey/internal/config"
	"github.com/meridian-health/lungsurvey/internal/diagnostic"
	"github.com/meridian-health/lungsurvey/internal/model"
	"github.com/meridian-health/lungsurvey/internal/store"
	"github.com/meridian-health/lungsurvey/internal/survey"
)

func newTestAPI(t *testing.T) (*apiServer, *model.Dataset) {
	t.Helper()

	cfg = &config.Config{Diagnostic: config.DiagnosticConfig{Bins: 10}}

	st, err := store.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	fr := survey.NewFrame([]string{"AGE", "LUNG_CANCER"}, 6)
	copy(fr.Cols[0], []float64{30, 35, 40, 60, 65, 70})
	copy(fr.Cols[1], []float64{0, 0, 1, 1, 1, 1})

	ds, err := st.SaveDataset(context.Background(), "survey", "survey.csv", fr)
	require.NoError(t, err)

	return &apiServer{store: st}, ds
}

func testRouter(api *apiServer) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/api/datasets", api.listDatasets)
	r.Get("/api/datasets/{id}", api.getDataset)
	r.Get("/api/datasets/{id}/describe", api.describeDataset)
	r.Get("/api/datasets/{id}/logit", api.logitDataset)
	r.Get("/api/runs", api.listRuns)
	r.Get("/api/runs/{id}", api.getRun)
	return r
}

func TestAPIListDatasets(t *testing.T) {
	api, ds := newTestAPI(t)
	r := testRouter(api)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/datasets", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []model.Dataset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, ds.ID, got[0].ID)
}

func TestAPIGetDatasetNotFound(t *testing.T) {
	api, _ := newTestAPI(t)
	r := testRouter(api)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/datasets/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIDescribe(t *testing.T) {
	api, ds := newTestAPI(t)
	r := testRouter(api)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/datasets/"+ds.ID+"/describe", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []diagnostic.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "AGE", got[0].Name)
	assert.Equal(t, 6, got[0].N)
}

func TestAPILogit(t *testing.T) {
	api, ds := newTestAPI(t)
	r := testRouter(api)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/datasets/"+ds.ID+"/logit?bins=2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotEmpty(t, got)
}

func TestAPILogitBadBins(t *testing.T) {
	api, ds := newTestAPI(t)
	r := testRouter(api)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/datasets/"+ds.ID+"/logit?bins=zero", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIRuns(t *testing.T) {
	api, ds := newTestAPI(t)
	r := testRouter(api)

	run, err := api.store.CreateRun(context.Background(), ds.ID, model.RunKindLogit, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs?dataset_id="+ds.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []model.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, run.ID, got[0].ID)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/"+run.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
