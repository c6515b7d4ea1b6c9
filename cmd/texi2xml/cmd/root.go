package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dgallion1/texi2xml/internal/config"
	"github.com/dgallion1/texi2xml/internal/parser"
	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	verbose      bool
	includePaths []string
)

var rootCmd = &cobra.Command{
	Use:   "texi2xml",
	Short: "Convert Texinfo manuals to XML and friends",
	Long: `texi2xml parses Texinfo sources, following @include, into a document
tree and renders it as XML, HTML, Markdown or DOCX.

Examples:
  texi2xml convert manual.texi
  texi2xml convert manual.texi -f html -o manual.html
  texi2xml batch docs/ out/ --templates templates/
  texi2xml query manual.texi '//chapter/sectiontitle'`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "TOML config file (overrides environment)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	rootCmd.PersistentFlags().StringSliceVarP(&includePaths, "include", "I", nil, "Directory to search for @include files (repeatable)")
}

// loadConfig reads the environment or --config and puts -I directories
// ahead of the configured include paths.
func loadConfig() (config.Config, error) {
	cfg := config.Load()
	if cfgFile != "" {
		var err error
		if cfg, err = config.LoadFile(cfgFile); err != nil {
			return cfg, err
		}
	}
	cfg.IncludePaths = append(append([]string{}, includePaths...), cfg.IncludePaths...)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger logs to stderr so rendered output on stdout stays clean.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newParser(cfg config.Config) *parser.TexinfoParser {
	return &parser.TexinfoParser{IncludePaths: cfg.IncludePaths, Log: newLogger()}
}
