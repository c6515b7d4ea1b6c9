package cmd

import (
	"fmt"
	"os"

	"github.com/dgallion1/texi2xml/internal/render"
	"github.com/spf13/cobra"
)

var (
	convertFormat string
	convertOutput string
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert one Texinfo file",
	Long: `Parse a Texinfo file and write it in the requested format.

Output goes to stdout unless -o is given. Without -f the first configured
format is used.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "", "Output format (xml, html, markdown, preview, docx)")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output file (default stdout)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format := convertFormat
	if format == "" {
		format = cfg.Formats[0]
	}
	renderer, err := render.ForFormat(format)
	if err != nil {
		return err
	}

	root, err := newParser(cfg).ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if convertOutput == "" {
		return renderer.Render(cmd.OutOrStdout(), root)
	}
	f, err := os.Create(convertOutput)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := renderer.Render(f, root); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", format, err)
	}
	return f.Close()
}
