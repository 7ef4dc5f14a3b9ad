package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/hairizuanbinnoorazman/uiscript/logger"
	"github.com/hairizuanbinnoorazman/uiscript/storage"
	"github.com/hairizuanbinnoorazman/uiscript/testrun"
	"github.com/hairizuanbinnoorazman/uiscript/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	router    http.Handler
	runs      testrun.Store
	steps     testrun.StepStore
	artifacts testrun.ArtifactStore
	blob      storage.BlobStorage
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &testrun.TestRun{}, &testrun.StepRecord{}, &testrun.Artifact{})

	log := logger.NewTestLogger()
	blob, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		runs:      testrun.NewGormStore(db, log),
		steps:     testrun.NewGormStepStore(db, log),
		artifacts: testrun.NewGormArtifactStore(db, log),
		blob:      blob,
	}
	f.router = NewRouter(NewTestRunHandler(f.runs, f.steps, f.artifacts, blob, log), log)
	return f
}

func (f *fixture) createRun(t *testing.T, name string, status testrun.Status) *testrun.TestRun {
	t.Helper()
	tr := &testrun.TestRun{ScriptName: name, Status: status}
	require.NoError(t, f.runs.Create(context.Background(), tr))
	return tr
}

func (f *fixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(dest))
}

func TestHealthHandler(t *testing.T) {
	f := setup(t)

	w := f.get(t, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestTestRunHandler_List(t *testing.T) {
	f := setup(t)
	for i := 0; i < 3; i++ {
		f.createRun(t, "login", testrun.StatusPassed)
	}
	f.createRun(t, "checkout", testrun.StatusFailed)

	type page struct {
		Items  []testrun.TestRun `json:"items"`
		Total  int               `json:"total"`
		Limit  int               `json:"limit"`
		Offset int               `json:"offset"`
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantItems  int
		wantTotal  int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", http.StatusOK, 4, 4, 20, 0},
		{"limit and offset", "?limit=2&offset=1", http.StatusOK, 2, 4, 2, 1},
		{"limit above max falls back", "?limit=500", http.StatusOK, 4, 4, 20, 0},
		{"negative offset ignored", "?offset=-3", http.StatusOK, 4, 4, 20, 0},
		{"filter by script", "?script=login", http.StatusOK, 3, 3, 20, 0},
		{"filter by status", "?status=failed", http.StatusOK, 1, 1, 20, 0},
		{"invalid status", "?status=exploded", http.StatusBadRequest, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.get(t, "/api/v1/runs"+tt.query)
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}

			var got page
			decode(t, w, &got)
			assert.Len(t, got.Items, tt.wantItems)
			assert.Equal(t, tt.wantTotal, got.Total)
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.Equal(t, tt.wantOffset, got.Offset)
		})
	}
}

func TestTestRunHandler_GetByID(t *testing.T) {
	f := setup(t)
	tr := f.createRun(t, "login", testrun.StatusRecovered)

	tests := []struct {
		name       string
		id         string
		wantStatus int
		wantError  string
	}{
		{"found", tr.ID.String(), http.StatusOK, ""},
		{"invalid id", "not-a-uuid", http.StatusBadRequest, "invalid test run ID: must be a valid UUID"},
		{"unknown id", uuid.New().String(), http.StatusNotFound, "test run not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.get(t, "/api/v1/runs/"+tt.id)
			require.Equal(t, tt.wantStatus, w.Code)

			if tt.wantError != "" {
				var resp ErrorResponse
				decode(t, w, &resp)
				assert.Equal(t, tt.wantError, resp.Error)
				return
			}

			var got testrun.TestRun
			decode(t, w, &got)
			assert.Equal(t, tr.ID, got.ID)
			assert.Equal(t, testrun.StatusRecovered, got.Status)
		})
	}
}

func TestTestRunHandler_Update(t *testing.T) {
	f := setup(t)
	tr := f.createRun(t, "login", testrun.StatusFailed)

	tests := []struct {
		name       string
		id         string
		body       string
		wantStatus int
	}{
		{"sets notes", tr.ID.String(), `{"notes":"flaky on staging"}`, http.StatusOK},
		{"empty body", tr.ID.String(), `{}`, http.StatusBadRequest},
		{"malformed body", tr.ID.String(), `{"notes":`, http.StatusBadRequest},
		{"unknown run", uuid.New().String(), `{"notes":"x"}`, http.StatusNotFound},
		{"invalid id", "nope", `{"notes":"x"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/api/v1/runs/"+tt.id, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			f.router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	got, err := f.runs.GetByID(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "flaky on staging", got.Notes)
	assert.Equal(t, testrun.StatusFailed, got.Status)
}

func TestTestRunHandler_Steps(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tr := f.createRun(t, "login", testrun.StatusFailed)
	require.NoError(t, f.steps.CreateBatch(ctx, []*testrun.StepRecord{
		{TestRunID: tr.ID, StepIndex: 1, Text: `locate "Missing"`, Error: "not found"},
		{TestRunID: tr.ID, StepIndex: 0, Text: `locate "Email"`},
	}))

	w := f.get(t, "/api/v1/runs/"+tr.ID.String()+"/steps")
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Items []testrun.StepRecord `json:"items"`
		Total int                  `json:"total"`
	}
	decode(t, w, &got)
	require.Len(t, got.Items, 2)
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, `locate "Email"`, got.Items[0].Text)
	assert.Equal(t, "not found", got.Items[1].Error)

	w = f.get(t, "/api/v1/runs/"+uuid.New().String()+"/steps")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTestRunHandler_Artifacts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tr := f.createRun(t, "login", testrun.StatusPassed)
	require.NoError(t, storage.Put(ctx, f.blob, "login/report.html", []byte("<html></html>")))
	require.NoError(t, f.artifacts.Create(ctx, &testrun.Artifact{
		TestRunID:   tr.ID,
		Kind:        testrun.ArtifactReportHTML,
		Path:        "login/report.html",
		ContentType: "text/html; charset=utf-8",
		Size:        128,
	}))

	w := f.get(t, "/api/v1/runs/"+tr.ID.String()+"/artifacts")
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Items []struct {
			Kind testrun.ArtifactKind `json:"kind"`
			Path string               `json:"path"`
			Size int64                `json:"size"`
			URL  string               `json:"url"`
		} `json:"items"`
	}
	decode(t, w, &got)
	require.Len(t, got.Items, 1)
	assert.Equal(t, testrun.ArtifactReportHTML, got.Items[0].Kind)
	assert.Equal(t, int64(128), got.Items[0].Size)
	assert.True(t, strings.HasPrefix(got.Items[0].URL, "file://"), got.Items[0].URL)
	assert.True(t, strings.HasSuffix(got.Items[0].URL, "login/report.html"), got.Items[0].URL)
}

func TestNewRouter_MethodNotAllowed(t *testing.T) {
	f := setup(t)
	id := uuid.New().String()

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"delete runs", http.MethodDelete, "/api/v1/runs", http.StatusMethodNotAllowed},
		{"post run", http.MethodPost, "/api/v1/runs/" + id, http.StatusMethodNotAllowed},
		{"put steps", http.MethodPut, "/api/v1/runs/" + id + "/steps", http.StatusMethodNotAllowed},
		{"post health", http.MethodPost, "/health", http.StatusMethodNotAllowed},
		{"unknown path", http.MethodGet, "/api/v1/jobs", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			f.router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}
