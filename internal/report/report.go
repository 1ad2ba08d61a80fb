// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report writes a YAML summary of a batch run: what was asked, how
// many queries resolved, and why each unresolved query failed.
package report

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/semantic-bib/internal/batch"
)

// Report is the on-disk representation of one run.
type Report struct {
	Input     string    `yaml:"input"`
	Mode      string    `yaml:"mode"`
	Timestamp time.Time `yaml:"timestamp"`
	Totals    Totals    `yaml:"totals"`
	Failures  []Failure `yaml:"failures,omitempty"`
}

// Totals stores result statistics.
type Totals struct {
	Queries           int `yaml:"queries"`
	Resolved          int `yaml:"resolved"`
	Missing           int `yaml:"missing"`
	DuplicatesRemoved int `yaml:"duplicates_removed"`
}

// Failure describes one unresolved query.
type Failure struct {
	Title      string   `yaml:"title"`
	AuthorHint string   `yaml:"author_hint,omitempty"`
	Status     string   `yaml:"status"`
	Error      string   `yaml:"error,omitempty"`
	Candidates []string `yaml:"candidates,omitempty"`
}

// Build summarizes results. merged is the output of bib.Merge over the
// results' texts; the difference in length is the duplicate count.
func Build(input, mode string, results []batch.Result, merged []string) *Report {
	r := &Report{
		Input:     input,
		Mode:      mode,
		Timestamp: time.Now().UTC(),
		Totals:    Totals{Queries: len(results)},
	}
	for _, res := range results {
		if res.OK() {
			r.Totals.Resolved++
			continue
		}
		r.Totals.Missing++
		f := Failure{
			Title:      res.Query.Title,
			AuthorHint: res.Query.AuthorHint,
			Status:     string(res.Status()),
			Candidates: res.Candidates,
		}
		if res.Err != nil {
			f.Error = res.Err.Error()
		}
		r.Failures = append(r.Failures, f)
	}
	if d := len(results) - len(merged); d > 0 {
		r.Totals.DuplicatesRemoved = d
	}
	return r
}

// Write saves the report to path.
func (r *Report) Write(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// Read loads a previously written report.
func Read(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing report: %w", err)
	}
	return &r, nil
}
