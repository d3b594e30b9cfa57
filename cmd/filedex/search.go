package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/filedex/pkg/filedex/archive"
	"github.com/jamesainslie/filedex/pkg/filedex/input"
	"github.com/jamesainslie/filedex/pkg/filedex/output"
	"github.com/jamesainslie/filedex/pkg/filedex/search"
)

type searchFlags struct {
	color      bool
	noColor    bool
	format     string
	template   string
	ignoreCase bool
	limit      int
	prefix     string
}

func newSearchCmd(a *app) *cobra.Command {
	f := &searchFlags{}
	cmd := &cobra.Command{
		Use:   "search <input_file> <search_term>",
		Short: "Print indexed paths containing a term",
		Long: `Print every indexed path that contains the search term, one per line,
in lexicographic order. Matching is a plain, case-sensitive substring test;
an empty term matches every path.

Matches are highlighted by default. Use --no-color to print the paths
unchanged. Finding nothing is not an error.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSearch(cmd, f, args)
		},
	}

	cmd.Flags().BoolVar(&f.color, "color", true, "highlight matches")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "do not highlight matches")
	cmd.Flags().StringVarP(&f.format, "output", "o", "", "output format: "+strings.Join(output.Available(), ", "))
	cmd.Flags().StringVar(&f.template, "template", "", "Go template for -o template")
	cmd.Flags().BoolVarP(&f.ignoreCase, "ignore-case", "i", false, "ignore ASCII case when matching")
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 0, "stop after this many matches (0 = all)")
	cmd.Flags().StringVar(&f.prefix, "prefix", "", "only search paths starting with this prefix")
	return cmd
}

func (a *app) runSearch(cmd *cobra.Command, f *searchFlags, args []string) error {
	log := a.logger.Component("search")
	archivePath, query := args[0], args[1]

	color := a.cfg.Color
	if cmd.Flags().Changed("color") {
		color = f.color
	}
	if f.noColor {
		color = false
	}

	formatter, err := a.formatter(cmd, f)
	if err != nil {
		return err
	}

	if err := input.Validate(archivePath); err != nil {
		return err
	}
	ix, info, err := archive.Read(archivePath)
	if err != nil {
		return err
	}
	defer ix.Close()
	log.Debug("archive loaded",
		"path", archivePath,
		"paths", info.Paths,
		"compression", info.Compression,
		"build_id", info.BuildID)

	matches, stats, err := search.Search(ix, query,
		search.WithIgnoreCase(f.ignoreCase),
		search.WithLimit(f.limit),
		search.WithPrefix(f.prefix),
		search.WithLogger(log),
	)
	if err != nil {
		return err
	}

	result := &output.Result{
		Query:       query,
		Source:      archivePath,
		Matches:     matches,
		Paths:       info.Paths,
		Duration:    stats.Duration,
		Truncated:   stats.Truncated,
		Color:       color,
		Highlighter: search.NewHighlighter(a.stdout, color),
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("formatting results: %w", err)
	}
	_, err = buf.WriteTo(a.stdout)
	return err
}

// formatter resolves -o and --template against the configured defaults.
// A template given without -o selects the template format.
func (a *app) formatter(cmd *cobra.Command, f *searchFlags) (output.Formatter, error) {
	tmpl := a.cfg.Template
	if cmd.Flags().Changed("template") {
		tmpl = f.template
	}

	name := a.cfg.Format
	switch {
	case cmd.Flags().Changed("output"):
		name = f.format
	case cmd.Flags().Changed("template"):
		name = "template"
	}
	if name == "" {
		name = output.DefaultFormat
	}

	formatter, err := output.Get(name)
	if err != nil {
		return nil, err
	}
	if tf, ok := formatter.(*output.TemplateFormatter); ok && tmpl != "" {
		tf.SetTemplate(tmpl)
	}
	return formatter, nil
}
