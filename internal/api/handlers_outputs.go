package api

import (
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

// handleJobOutput serves one file written by a completed job.
func (s *Server) handleJobOutput(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	name := chi.URLParam(r, "name")
	snap := job.Snapshot()
	var path string
	for _, out := range snap.Outputs {
		if filepath.Base(out) == name {
			path = out
			break
		}
	}
	if path == "" {
		jsonError(w, "output not found", http.StatusNotFound)
		return
	}

	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	http.ServeFile(w, r, path)
}
