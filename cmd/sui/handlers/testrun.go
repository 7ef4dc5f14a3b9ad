package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/hairizuanbinnoorazman/uiscript/logger"
	"github.com/hairizuanbinnoorazman/uiscript/storage"
	"github.com/hairizuanbinnoorazman/uiscript/testrun"
)

// TestRunHandler serves the recorded run history. It is read only.
type TestRunHandler struct {
	runs      testrun.Store
	steps     testrun.StepStore
	artifacts testrun.ArtifactStore
	storage   storage.BlobStorage
	logger    logger.Logger
}

// NewTestRunHandler creates a new test run handler. blob may be nil, in
// which case artifacts are listed without URLs.
func NewTestRunHandler(runs testrun.Store, steps testrun.StepStore, artifacts testrun.ArtifactStore, blob storage.BlobStorage, log logger.Logger) *TestRunHandler {
	return &TestRunHandler{
		runs:      runs,
		steps:     steps,
		artifacts: artifacts,
		storage:   blob,
		logger:    log,
	}
}

// ArtifactResponse is an artifact with a URL to fetch it from.
type ArtifactResponse struct {
	*testrun.Artifact
	URL string `json:"url,omitempty"`
}

// UpdateTestRunRequest represents a test run update request.
type UpdateTestRunRequest struct {
	Notes *string `json:"notes,omitempty"`
}

// List handles listing runs, newest first. It accepts script and status
// filters.
func (h *TestRunHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r)

	filter := testrun.Filter{
		ScriptName: r.URL.Query().Get("script"),
		Status:     testrun.Status(r.URL.Query().Get("status")),
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		respondError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	runs, err := h.runs.List(r.Context(), filter, limit, offset)
	if err != nil {
		h.logger.Error(r.Context(), "failed to list test runs", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to list test runs")
		return
	}

	total, err := h.runs.Count(r.Context(), filter)
	if err != nil {
		h.logger.Error(r.Context(), "failed to count test runs", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to list test runs")
		return
	}

	respondJSON(w, http.StatusOK, NewPaginatedResponse(runs, int(total), limit, offset))
}

// GetByID handles getting a single test run by ID.
func (h *TestRunHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	tr, ok := h.lookup(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, tr)
}

// Update handles annotating a run. Only notes can change; everything else
// is the outcome of the run itself.
func (h *TestRunHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "test run")
	if !ok {
		return
	}

	var req UpdateTestRunRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Notes == nil {
		respondError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := h.runs.Update(r.Context(), id, testrun.SetNotes(*req.Notes)); err != nil {
		if errors.Is(err, testrun.ErrTestRunNotFound) {
			respondError(w, http.StatusNotFound, "test run not found")
			return
		}
		h.logger.Error(r.Context(), "failed to update test run", map[string]interface{}{
			"error":       err.Error(),
			"test_run_id": id,
		})
		respondError(w, http.StatusInternalServerError, "failed to update test run")
		return
	}

	h.GetByID(w, r)
}

// Steps handles listing the executed statements of a run.
func (h *TestRunHandler) Steps(w http.ResponseWriter, r *http.Request) {
	tr, ok := h.lookup(w, r)
	if !ok {
		return
	}

	steps, err := h.steps.ListByTestRun(r.Context(), tr.ID)
	if err != nil {
		h.logger.Error(r.Context(), "failed to list steps", map[string]interface{}{
			"error":       err.Error(),
			"test_run_id": tr.ID,
		})
		respondError(w, http.StatusInternalServerError, "failed to list steps")
		return
	}

	respondJSON(w, http.StatusOK, NewPaginatedResponse(steps, len(steps), len(steps), 0))
}

// Artifacts handles listing the stored artifacts of a run.
func (h *TestRunHandler) Artifacts(w http.ResponseWriter, r *http.Request) {
	tr, ok := h.lookup(w, r)
	if !ok {
		return
	}

	artifacts, err := h.artifacts.ListByTestRun(r.Context(), tr.ID)
	if err != nil {
		h.logger.Error(r.Context(), "failed to list artifacts", map[string]interface{}{
			"error":       err.Error(),
			"test_run_id": tr.ID,
		})
		respondError(w, http.StatusInternalServerError, "failed to list artifacts")
		return
	}

	items := make([]ArtifactResponse, 0, len(artifacts))
	for _, a := range artifacts {
		resp := ArtifactResponse{Artifact: a}
		if h.storage != nil {
			url, err := h.storage.GetURL(r.Context(), a.Path)
			if err != nil {
				h.logger.Warn(r.Context(), "failed to build artifact url", map[string]interface{}{
					"error": err.Error(),
					"path":  a.Path,
				})
			}
			resp.URL = url
		}
		items = append(items, resp)
	}

	respondJSON(w, http.StatusOK, NewPaginatedResponse(items, len(items), len(items), 0))
}

func (h *TestRunHandler) lookup(w http.ResponseWriter, r *http.Request) (*testrun.TestRun, bool) {
	id, ok := parseUUIDOrRespond(w, r, "id", "test run")
	if !ok {
		return nil, false
	}
	return h.get(w, r, id)
}

func (h *TestRunHandler) get(w http.ResponseWriter, r *http.Request, id uuid.UUID) (*testrun.TestRun, bool) {
	tr, err := h.runs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, testrun.ErrTestRunNotFound) {
			respondError(w, http.StatusNotFound, "test run not found")
			return nil, false
		}
		h.logger.Error(r.Context(), "failed to get test run", map[string]interface{}{
			"error":       err.Error(),
			"test_run_id": id,
		})
		respondError(w, http.StatusInternalServerError, "failed to get test run")
		return nil, false
	}
	return tr, true
}
