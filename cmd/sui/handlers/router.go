package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/hairizuanbinnoorazman/uiscript/logger"
)

const apiPrefix = "/api/v1"

// NewRouter wires every route of the history API.
func NewRouter(runs *TestRunHandler, log logger.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(requestLogger(log))

	router.HandleFunc("/health", HealthHandler).Methods(http.MethodGet)

	// Root router, not a subrouter: a subrouter answers 404 for a wrong method.
	router.HandleFunc(apiPrefix+"/runs", runs.List).Methods(http.MethodGet)
	router.HandleFunc(apiPrefix+"/runs/{id}", runs.GetByID).Methods(http.MethodGet)
	router.HandleFunc(apiPrefix+"/runs/{id}", runs.Update).Methods(http.MethodPatch)
	router.HandleFunc(apiPrefix+"/runs/{id}/steps", runs.Steps).Methods(http.MethodGet)
	router.HandleFunc(apiPrefix+"/runs/{id}/artifacts", runs.Artifacts).Methods(http.MethodGet)

	return router
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestLogger(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Debug(r.Context(), "request served", map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
		})
	}
}
