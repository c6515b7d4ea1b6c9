package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/texi2xml/internal/parser"
	"github.com/dgallion1/texi2xml/internal/pipeline"
	"github.com/dgallion1/texi2xml/internal/render"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	formats, err := s.requestFormats(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	file.Close()

	job, err := s.submitUpload(header, formats)
	if err != nil {
		jsonError(w, err.Error(), uploadErrorStatus(err))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"name":     job.Name,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleBatchJobs(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	formats, err := s.requestFormats(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	var results []map[string]any
	for _, fh := range files {
		job, err := s.submitUpload(fh, formats)
		if err != nil {
			results = append(results, map[string]any{
				"filename": sanitizeFilename(fh.Filename),
				"error":    err.Error(),
			})
			continue
		}
		results = append(results, map[string]any{
			"filename": sanitizeFilename(fh.Filename),
			"job_id":   job.ID,
			"status":   job.Status,
			"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
		})
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

// uploadError is a client-side problem with one uploaded file.
type uploadError struct {
	msg    string
	status int
}

func (e *uploadError) Error() string { return e.msg }

func uploadErrorStatus(err error) int {
	if ue, ok := err.(*uploadError); ok {
		return ue.status
	}
	return http.StatusServiceUnavailable
}

// submitUpload stores an uploaded source under OutputDir/uploads/<id>/ and
// queues a job writing to OutputDir/jobs/<id>/.
func (s *Server) submitUpload(fh *multipart.FileHeader, formats []string) (*pipeline.Job, error) {
	filename := sanitizeFilename(fh.Filename)
	if !parser.IsSupportedExtension(filename) {
		return nil, &uploadError{fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest}
	}
	if fh.Size > s.cfg.MaxUploadBytes {
		return nil, &uploadError{fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, &uploadError{"failed to open file", http.StatusBadRequest}
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, &uploadError{"failed to read file", http.StatusBadRequest}
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, &uploadError{fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge}
	}

	id := uuid.NewString()
	uploadDir := filepath.Join(s.cfg.OutputDir, "uploads", id)
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		s.log.Error("create upload dir failed", "error", err)
		return nil, &uploadError{"failed to store upload", http.StatusInternalServerError}
	}
	src := filepath.Join(uploadDir, filename)
	if err := os.WriteFile(src, data, 0o644); err != nil {
		s.log.Error("store upload failed", "error", err)
		return nil, &uploadError{"failed to store upload", http.StatusInternalServerError}
	}

	job := pipeline.NewJob(src, filepath.Join(s.cfg.OutputDir, "jobs", id), formats)
	job.ID = id
	job.Confined = true
	if err := s.orchestrator.Submit(job); err != nil {
		return nil, err
	}
	return job, nil
}

// requestFormats reads the comma-separated "formats" form value, falling
// back to the configured formats.
func (s *Server) requestFormats(r *http.Request) ([]string, error) {
	v := r.FormValue("formats")
	if v == "" {
		return s.orchestrator.Formats(), nil
	}
	var formats []string
	for _, f := range strings.Split(v, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if !render.IsSupportedFormat(f) {
			return nil, fmt.Errorf("unsupported format: %s", f)
		}
		formats = append(formats, f)
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("no formats requested")
	}
	return formats, nil
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
