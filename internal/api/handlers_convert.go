package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/dgallion1/texi2xml/internal/chunker"
	"github.com/dgallion1/texi2xml/internal/doctree"
	"github.com/dgallion1/texi2xml/internal/parser"
	"github.com/dgallion1/texi2xml/internal/query"
	"github.com/dgallion1/texi2xml/internal/render"
)

// requestSourceName is the file name a request body is parsed under.
const requestSourceName = "request.texi"

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xml"
	}
	renderer, err := render.ForFormat(format)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	root, ok := s.parseBody(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, root); err != nil {
		s.log.Error("render failed", "format", format, "error", err)
		jsonError(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.Write(buf.Bytes())
}

func (s *Server) handleChunks(w http.ResponseWriter, r *http.Request) {
	root, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	chunks := chunker.ChunkTree(root, chunker.Config{
		ChunkSize:    s.cfg.ChunkSize,
		ChunkOverlap: s.cfg.ChunkOverlap,
		MinChunk:     1,
	})
	if chunks == nil {
		chunks = []doctree.Chunk{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"title":  doctree.FirstTitle(root),
		"chunks": chunks,
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	expr := r.URL.Query().Get("xpath")
	if expr == "" {
		jsonError(w, "xpath query parameter is required", http.StatusBadRequest)
		return
	}
	root, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	matches, err := query.SelectTree(root, expr)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(matches),
		"matches": matches,
	})
}

// parseBody parses the request body as Texinfo. Includes resolve against
// the configured include paths and may not leave them. On failure the error
// response has been written and ok is false.
func (s *Server) parseBody(w http.ResponseWriter, r *http.Request) (*doctree.Element, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "body exceeds max size", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return nil, false
	}

	p := &parser.TexinfoParser{
		IncludePaths: s.cfg.IncludePaths,
		BaseDir:      s.includeBase(),
		Confined:     true,
		Log:          s.log,
	}
	root, err := p.Parse(bytes.NewReader(data), requestSourceName)
	if err != nil {
		if errors.Is(err, parser.ErrIncludeCycle) {
			jsonError(w, err.Error(), http.StatusUnprocessableEntity)
			return nil, false
		}
		s.log.Error("parse failed", "error", err)
		jsonError(w, "parse failed", http.StatusInternalServerError)
		return nil, false
	}
	return root, true
}

// includeBase is where a request body's own includes are looked up first.
func (s *Server) includeBase() string {
	if len(s.cfg.IncludePaths) > 0 {
		return s.cfg.IncludePaths[0]
	}
	return "."
}
