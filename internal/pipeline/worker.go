package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/texi2xml/internal/chunker"
	"github.com/dgallion1/texi2xml/internal/doctree"
	"github.com/dgallion1/texi2xml/internal/parser"
	"github.com/dgallion1/texi2xml/internal/render"
)

// ChunksFile is the name of the chunk listing written next to the outputs.
const ChunksFile = "chunks.json"

// docPlaceholder in a template file is replaced by the job name.
const docPlaceholder = "__doc__"

// Worker processes a single conversion job.
type Worker struct {
	log          *slog.Logger
	includePaths []string
	templateDir  string
	chunkCfg     chunker.Config

	// Latency, when set, receives the duration of every completed job.
	Latency *LatencyStats
}

func NewWorker(log *slog.Logger, includePaths []string, templateDir string, chunkCfg chunker.Config) *Worker {
	return &Worker{
		log:          log,
		includePaths: includePaths,
		templateDir:  templateDir,
		chunkCfg:     chunkCfg,
	}
}

// Process runs parse, render and write for a job, recording progress on it.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "source", job.Source)
	start := time.Now()

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	data, err := os.ReadFile(job.Source)
	if err != nil {
		w.fail(log, job, "parsing", fmt.Errorf("read source: %w", err))
		return
	}
	p, err := parser.ForFile(job.Source, w.includePaths, log)
	if err != nil {
		w.fail(log, job, "parsing", err)
		return
	}
	if tp, ok := p.(*parser.TexinfoParser); ok {
		tp.Confined = job.Confined
	}
	tree, err := p.Parse(bytes.NewReader(data), job.Source)
	if err != nil {
		w.fail(log, job, "parsing", fmt.Errorf("parse: %w", err))
		return
	}
	job.SetParsed(strings.TrimSpace(doctree.FirstTitle(tree)), ContentHashHex(data))
	st := doctree.Count(tree)
	log.Info("parsed document", "elements", st.Elements, "comments", st.Comments)

	if ctx.Err() != nil {
		w.fail(log, job, "parsing", ctx.Err())
		return
	}

	// Phase 2: Render
	job.SetStatus(StatusRendering, "rendering")
	type rendered struct {
		name string
		data []byte
	}
	var outputs []rendered
	for _, format := range job.Formats {
		r, err := render.ForFormat(format)
		if err != nil {
			w.fail(log, job, "rendering", err)
			return
		}
		var buf bytes.Buffer
		if err := r.Render(&buf, tree); err != nil {
			w.fail(log, job, "rendering", fmt.Errorf("render %s: %w", format, err))
			return
		}
		outputs = append(outputs, rendered{name: job.Name + r.Extension(), data: buf.Bytes()})
	}
	chunks := chunker.ChunkTree(tree, w.chunkCfg)

	if ctx.Err() != nil {
		w.fail(log, job, "rendering", ctx.Err())
		return
	}

	// Phase 3: Write
	job.SetStatus(StatusWriting, "writing")
	if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
		w.fail(log, job, "writing", fmt.Errorf("create output dir: %w", err))
		return
	}
	for _, out := range outputs {
		path := filepath.Join(job.OutputDir, out.name)
		if err := os.WriteFile(path, out.data, 0o644); err != nil {
			w.fail(log, job, "writing", fmt.Errorf("write %s: %w", out.name, err))
			return
		}
		job.AddOutput(path)
	}

	if err := writeChunks(filepath.Join(job.OutputDir, ChunksFile), chunks); err != nil {
		w.fail(log, job, "writing", err)
		return
	}
	job.SetChunks(len(chunks))

	n, err := CopyTemplates(w.templateDir, job.Name, job.OutputDir)
	job.AddAssets(n)
	if err != nil {
		w.fail(log, job, "writing", err)
		return
	}

	elapsed := time.Since(start)
	if w.Latency != nil {
		w.Latency.Record(elapsed)
	}
	log.Info("conversion complete", "outputs", len(outputs), "chunks", len(chunks), "assets", n, "duration", elapsed)
	job.SetStatus(StatusCompleted, "done")
}

func (w *Worker) fail(log *slog.Logger, job *Job, phase string, err error) {
	log.Error("job failed", "phase", phase, "error", err)
	job.AddError(err.Error())
	job.SetStatus(StatusFailed, phase)
}

func writeChunks(path string, chunks []doctree.Chunk) error {
	if chunks == nil {
		chunks = []doctree.Chunk{}
	}
	data, err := json.MarshalIndent(map[string]any{"chunks": chunks}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal chunks: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// CopyTemplates copies the shared files directly under templateDir and then
// the files under templateDir/<name> into outDir, the latter overriding the
// former. Occurrences of __doc__ are replaced by name. A missing or empty
// templateDir copies nothing.
func CopyTemplates(templateDir, name, outDir string) (int, error) {
	if templateDir == "" {
		return 0, nil
	}
	shared, err := copyFiles(templateDir, outDir, name)
	if err != nil {
		return shared, err
	}
	own, err := copyFiles(filepath.Join(templateDir, name), outDir, name)
	return shared + own, err
}

// CopyRootTemplates copies the files under templateDir/_root into outDir,
// the top of a batch output tree.
func CopyRootTemplates(templateDir, outDir string) (int, error) {
	if templateDir == "" {
		return 0, nil
	}
	return copyFiles(filepath.Join(templateDir, "_root"), outDir, "")
}

// copyFiles copies the regular files directly under src into dst.
func copyFiles(src, dst, name string) (int, error) {
	entries, err := os.ReadDir(src)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read templates %s: %w", src, err)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return 0, fmt.Errorf("create template dir: %w", err)
	}
	copied := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(src, e.Name()))
		if err != nil {
			return copied, fmt.Errorf("read template: %w", err)
		}
		if name != "" {
			data = bytes.ReplaceAll(data, []byte(docPlaceholder), []byte(name))
		}
		if err := os.WriteFile(filepath.Join(dst, e.Name()), data, 0o644); err != nil {
			return copied, fmt.Errorf("write template: %w", err)
		}
		copied++
	}
	return copied, nil
}

// DiscoverInputs returns the supported source files directly under dir,
// sorted by name.
func DiscoverInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	var inputs []string
	for _, e := range entries {
		if e.Type().IsRegular() && parser.IsSupportedExtension(e.Name()) {
			inputs = append(inputs, filepath.Join(dir, e.Name()))
		}
	}
	return inputs, nil
}
