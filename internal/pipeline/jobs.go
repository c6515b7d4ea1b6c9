package pipeline

import (
	"encoding/hex"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// JobStatus represents the state of a conversion job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusParsing   JobStatus = "parsing"
	StatusRendering JobStatus = "rendering"
	StatusWriting   JobStatus = "writing"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job tracks the conversion of one Texinfo source into every requested
// output format.
type Job struct {
	mu sync.Mutex

	ID        string   `json:"job_id"`
	Name      string   `json:"name"`
	Source    string   `json:"source"`
	OutputDir string   `json:"output_dir"`
	Formats   []string `json:"formats"`

	// Confined keeps the source's includes inside its own directory and
	// the configured include paths. Set for untrusted uploads.
	Confined bool `json:"-"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`
	Title  string    `json:"title"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	outputs []string
	errors  []string
}

// Progress tracks processing progress.
type Progress struct {
	FormatsTotal   int      `json:"formats_total"`
	FormatsWritten int      `json:"formats_written"`
	Chunks         int      `json:"chunks"`
	Assets         int      `json:"assets"`
	Errors         []string `json:"errors"`
}

// NewJob creates a queued job converting source into outputDir. The job
// name is the source file name without its extension.
func NewJob(source, outputDir string, formats []string) *Job {
	now := time.Now()
	base := filepath.Base(source)
	return &Job{
		ID:        uuid.NewString(),
		Name:      strings.TrimSuffix(base, filepath.Ext(base)),
		Source:    source,
		OutputDir: outputDir,
		Formats:   append([]string(nil), formats...),
		Status:    StatusQueued,
		Phase:     "queued",
		Progress:  Progress{FormatsTotal: len(formats)},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes finished jobs that have not changed within the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.done() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) done() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetParsed records what parsing learned about the source.
func (j *Job) SetParsed(title, contentHash string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Title = title
	j.ContentHash = contentHash
	j.UpdatedAt = time.Now()
}

// AddOutput records a written output file.
func (j *Job) AddOutput(path string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.outputs = append(j.outputs, path)
	j.Progress.FormatsWritten++
	j.UpdatedAt = time.Now()
}

// SetChunks records the number of chunks written.
func (j *Job) SetChunks(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Chunks = n
	j.UpdatedAt = time.Now()
}

// AddAssets records copied template assets.
func (j *Job) AddAssets(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Assets += n
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	Name        string    `json:"name"`
	Source      string    `json:"source"`
	OutputDir   string    `json:"output_dir"`
	Formats     []string  `json:"formats"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Title       string    `json:"title"`
	ContentHash string    `json:"content_hash,omitempty"`
	Outputs     []string  `json:"outputs"`
	Progress    Progress  `json:"progress"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	return JobSnapshot{
		ID:          j.ID,
		Name:        j.Name,
		Source:      j.Source,
		OutputDir:   j.OutputDir,
		Formats:     append([]string{}, j.Formats...),
		Status:      j.Status,
		Phase:       j.Phase,
		Title:       j.Title,
		ContentHash: j.ContentHash,
		Outputs:     append([]string{}, j.outputs...),
		Progress: Progress{
			FormatsTotal:   j.Progress.FormatsTotal,
			FormatsWritten: j.Progress.FormatsWritten,
			Chunks:         j.Progress.Chunks,
			Assets:         j.Progress.Assets,
			Errors:         errs,
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// ContentHashHex computes the BLAKE3 digest of content as a hex string.
func ContentHashHex(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
