package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/dgallion1/texi2xml/internal/chunker"
	"github.com/dgallion1/texi2xml/internal/doctree"
	"github.com/spf13/cobra"
)

var chunksMin int

var chunksCmd = &cobra.Command{
	Use:   "chunks <file>",
	Short: "Split a file into section chunks",
	Long: `Parse a Texinfo file and print its section-aware text chunks as JSON.
Chunk size and overlap come from the configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: runChunks,
}

func init() {
	rootCmd.AddCommand(chunksCmd)
	chunksCmd.Flags().IntVar(&chunksMin, "min", chunker.DefaultConfig().MinChunk, "Drop chunks estimated below this many tokens")
}

func runChunks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	root, err := newParser(cfg).ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	chunks := chunker.ChunkTree(root, chunker.Config{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		MinChunk:     chunksMin,
	})
	if chunks == nil {
		chunks = []doctree.Chunk{}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"title":  doctree.FirstTitle(root),
		"chunks": chunks,
	})
}
