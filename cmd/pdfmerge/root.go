package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"pdf_merger/pdf"
)

type options struct {
	output   string
	plan     string
	verbose  bool
	silent   bool
	strict   bool
	optimize bool
	metadata pdf.Metadata
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "pdfmerge -o <output> <input[#pages]>...",
		Short: "Merge PDF documents, optionally picking pages from each",
		Long: `pdfmerge concatenates pages of PDF files or URLs into one document.

Append a page selection to any input with '#':
  pdfmerge -o out.pdf cover.pdf report.pdf#2-$ appendix.pdf#1,3,$2

Selections are comma separated pages or ranges ("1-3", "1 to 3"); '$' is the
last page and '$N' the N-th page from the end.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "", "merged PDF output file path")
	flags.StringVarP(&opts.plan, "plan", "p", "", "YAML merge plan")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "print verbose output")
	flags.BoolVarP(&opts.silent, "silent", "s", false, "do not print any output to stdout, overrides --verbose")
	flags.BoolVar(&opts.strict, "strict", false, "fail when any requested page cannot be copied")
	flags.BoolVar(&opts.optimize, "optimize", false, "optimize the merged document")
	flags.StringVar(&opts.metadata.Title, "title", "", "document title")
	flags.StringVar(&opts.metadata.Author, "author", "", "document author")
	flags.StringVar(&opts.metadata.Creator, "creator", "", "document creator")
	flags.StringVar(&opts.metadata.Producer, "producer", "", "document producer")
	return cmd
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	plan := &Plan{}
	if opts.plan != "" {
		var err error
		if plan, err = loadPlan(opts.plan); err != nil {
			return err
		}
	}
	for _, arg := range args {
		plan.Inputs = append(plan.Inputs, parseInput(arg))
	}
	applyFlags(plan, opts)

	if plan.Output == "" {
		return errors.New("please provide an output file using the --output flag")
	}
	if len(plan.Inputs) == 0 {
		return errors.New("please provide at least one input file")
	}

	verbose := opts.verbose && !opts.silent
	out := cmd.OutOrStdout()
	progress := color.New(color.FgCyan)

	merger := pdf.New(
		pdf.WithStrictCopy(opts.strict),
		pdf.WithLogger(newLogger(cmd.ErrOrStderr(), verbose, opts.silent)),
	)
	for _, item := range plan.Inputs {
		selector, err := pdf.ParsePages(item.Pages)
		if err != nil {
			return fmt.Errorf("%v: %w", item.Source, err)
		}
		if verbose {
			progress.Fprintln(out, describeSelection(selector, item.Source))
		}
		if err := merger.Add(cmd.Context(), item.Source, selector); err != nil {
			return err
		}
	}

	if err := merger.SetMetadata(plan.Metadata); err != nil {
		return err
	}

	if verbose {
		progress.Fprintf(out, "Saving merged output to %s...\n", plan.Output)
	}
	if err := save(merger, plan.Output, plan.Optimize); err != nil {
		return err
	}

	if !opts.silent {
		color.New(color.FgGreen).Fprintf(out, "Merged pages successfully into %s\n", plan.Output)
	}
	return nil
}

// applyFlags lets explicit flags override the plan
func applyFlags(plan *Plan, opts *options) {
	if opts.output != "" {
		plan.Output = opts.output
	}
	if opts.optimize {
		plan.Optimize = true
	}
	if opts.metadata.Title != "" {
		plan.Metadata.Title = opts.metadata.Title
	}
	if opts.metadata.Author != "" {
		plan.Metadata.Author = opts.metadata.Author
	}
	if opts.metadata.Creator != "" {
		plan.Metadata.Creator = opts.metadata.Creator
	}
	if opts.metadata.Producer != "" {
		plan.Metadata.Producer = opts.metadata.Producer
	}
}

func save(merger *pdf.Merger, output string, optimize bool) error {
	if !optimize {
		return merger.Save(output)
	}

	data, err := merger.SaveAsBuffer()
	if err != nil {
		return err
	}
	if data, err = pdf.Optimize(data); err != nil {
		return err
	}
	if err := os.WriteFile(output, data, pdf.DefaultOutputPermissions); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	return nil
}

func describeSelection(selector pdf.Selector, source any) string {
	if selector.IsAll() {
		return fmt.Sprintf("adding all pages from %v to output...", source)
	}
	plural := ""
	if spans := selector.Spans(); len(spans) != 1 || !spans[0].Single() {
		plural = "s"
	}
	return fmt.Sprintf("adding page%s %s from %v to output...", plural, selector, source)
}

func newLogger(w io.Writer, verbose, silent bool) hclog.Logger {
	level := hclog.Warn
	switch {
	case silent:
		level = hclog.Error
	case verbose:
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "pdfmerge",
		Output: w,
		Level:  level,
		Color:  hclog.AutoColor,
	})
}
