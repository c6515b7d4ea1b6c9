package cmd

import (
	"fmt"

	"github.com/dgallion1/texi2xml/internal/query"
	"github.com/spf13/cobra"
)

var queryText bool

var queryCmd = &cobra.Command{
	Use:   "query <file> <xpath>",
	Short: "Run an XPath expression against a file's XML",
	Long: `Parse a Texinfo file, render it as XML and print every node the XPath
expression selects, one per line.

Examples:
  texi2xml query manual.texi '//sectiontitle'
  texi2xml query manual.texi 'count(//para)'
  texi2xml query manual.texi '//chapter[sectiontitle="Usage"]//code' --text`,
	Args: cobra.ExactArgs(2),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().BoolVarP(&queryText, "text", "t", false, "Print text content instead of XML")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	root, err := newParser(cfg).ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	matches, err := query.SelectTree(root, args[1])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, m := range matches {
		if queryText || m.XML == "" {
			fmt.Fprintln(out, m.Text)
			continue
		}
		fmt.Fprintln(out, m.XML)
	}
	return nil
}
