package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"pdf_merger/pdf"
)

// Plan is a merge described in YAML:
//
//	output: out.pdf
//	metadata:
//	  title: Annual report
//	inputs:
//	  - source: cover.pdf
//	  - source: body.pdf
//	    pages: 2-$
//	  - source: https://example.com/appendix.pdf
//	    pages: [1, $]
type Plan struct {
	Output   string       `yaml:"output"`
	Metadata pdf.Metadata `yaml:"metadata"`
	Optimize bool         `yaml:"optimize"`
	Inputs   []pdf.Item   `yaml:"inputs"`
}

// loadPlan reads a plan file. Relative input paths and the output path are
// taken relative to the plan's directory.
func loadPlan(path string) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan: %w", err)
	}
	defer f.Close()

	var plan Plan
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i, item := range plan.Inputs {
		source, ok := item.Source.(string)
		if !ok || strings.TrimSpace(source) == "" {
			return nil, fmt.Errorf("plan %s: input %d needs a source path or URL", path, i+1)
		}
		plan.Inputs[i].Source = relativeTo(dir, source)
	}
	if plan.Output != "" {
		plan.Output = relativeTo(dir, plan.Output)
	}
	return &plan, nil
}

func relativeTo(dir, source string) string {
	if u, err := url.Parse(source); err == nil && u.Scheme != "" && u.Host != "" {
		return source
	}
	if filepath.IsAbs(source) || strings.HasPrefix(source, "file:") {
		return source
	}
	return filepath.Join(dir, source)
}

// parseInput splits "file.pdf#1-3" into a source and its page selection
func parseInput(arg string) pdf.Item {
	source, pages, found := strings.Cut(arg, "#")
	if !found || strings.TrimSpace(pages) == "" {
		return pdf.Item{Source: source}
	}
	return pdf.Item{Source: source, Pages: pages}
}
