package api

import (
	"net/http"

	"github.com/dgallion1/texi2xml/internal/render"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"queue_depth":       s.orchestrator.QueueDepth(),
		"workers":           s.cfg.WorkerCount,
		"default_formats":   s.orchestrator.Formats(),
		"supported_formats": render.Formats(),
		"latency":           s.orchestrator.Latency(),
	})
}
