package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dgallion1/texi2xml/internal/pipeline"
	"github.com/dgallion1/texi2xml/internal/render"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	batchTemplates string
	batchFormats   []string
)

var batchCmd = &cobra.Command{
	Use:   "batch <input-dir> <output-dir>",
	Short: "Convert every Texinfo file in a directory",
	Long: `Convert each .texi, .texinfo and .txi file in input-dir. Every document
gets its own directory under output-dir holding the rendered formats, its
chunks and any template files.

Template layout (--templates):
  <dir>/*         copied next to every document, __doc__ replaced by its name
  <dir>/<name>/*  copied only for document <name>, overriding shared files
  <dir>/_root/*   copied once into output-dir`,
	Args: cobra.ExactArgs(2),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringVar(&batchTemplates, "templates", "", "Template directory")
	batchCmd.Flags().StringSliceVar(&batchFormats, "formats", nil, "Output formats (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	inDir, outDir := args[0], args[1]
	if batchTemplates != "" {
		cfg.TemplateDir = batchTemplates
	}
	if len(batchFormats) > 0 {
		for _, f := range batchFormats {
			if !render.IsSupportedFormat(f) {
				return fmt.Errorf("unsupported format: %s", f)
			}
		}
		cfg.Formats = batchFormats
	}

	inputs, err := pipeline.DiscoverInputs(inDir)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no texinfo files in %s", inDir)
	}
	cfg.MaxQueueSize = max(cfg.MaxQueueSize, len(inputs))

	if _, err := pipeline.CopyRootTemplates(cfg.TemplateDir, outDir); err != nil {
		return err
	}

	orch := pipeline.NewOrchestrator(cfg, newLogger())
	orch.Start(context.Background())

	var jobs []*pipeline.Job
	for _, src := range inputs {
		job := pipeline.NewJob(src, "", cfg.Formats)
		job.OutputDir = filepath.Join(outDir, job.Name)
		if err := orch.Submit(job); err != nil {
			orch.Stop()
			return err
		}
		jobs = append(jobs, job)
	}
	orch.Drain()

	out := cmd.OutOrStdout()
	failed := 0
	for _, job := range jobs {
		snap := job.Snapshot()
		if snap.Status != pipeline.StatusCompleted {
			failed++
			fmt.Fprintf(out, "%s %s: %v\n", color.RedString("FAIL"), snap.Name, snap.Progress.Errors)
			continue
		}
		fmt.Fprintf(out, "%s %s -> %s (%d formats, %d chunks)\n",
			color.GreenString("ok"), snap.Name, snap.OutputDir, snap.Progress.FormatsWritten, snap.Progress.Chunks)
	}
	fmt.Fprintf(out, "%d converted, %d failed\n", len(jobs)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(jobs))
	}
	return nil
}
