// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/semantic-bib/internal/batch"
	"github.com/pdiddy/semantic-bib/internal/bib"
	"github.com/pdiddy/semantic-bib/internal/input"
	"github.com/pdiddy/semantic-bib/internal/journal"
	"github.com/pdiddy/semantic-bib/internal/report"
	"github.com/pdiddy/semantic-bib/internal/search"
	"github.com/pdiddy/semantic-bib/internal/secrets"
	"github.com/pdiddy/semantic-bib/internal/throttle"
	"github.com/pdiddy/semantic-bib/pkg/types"
)

// runOptions holds the per-invocation settings that are not part of Config.
type runOptions struct {
	Input      string
	OutputPath string
	ReportPath string
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg := configFromViper(viper.GetViper())

	key, err := secrets.APIKey(os.Getenv(secrets.EnvAPIKey), cfg.SecretsDir)
	if err != nil {
		return err
	}
	cfg.Lookup.APIKey = key

	outputPath, _ := cmd.Flags().GetString("output")
	reportPath, _ := cmd.Flags().GetString("report")

	return execute(cmd.Context(), cfg, runOptions{
		Input:      args[0],
		OutputPath: outputPath,
		ReportPath: reportPath,
	}, cmd.OutOrStdout(), logger)
}

// execute loads the queries, resolves them, and writes the merged
// bibliography followed by the optional report and journal entry.
func execute(ctx context.Context, cfg types.Config, opts runOptions, stdout io.Writer, logger *log.Logger) error {
	started := time.Now()

	queries, mode, err := input.Load(opts.Input)
	if err != nil {
		return err
	}

	limiter, err := throttle.New(cfg.Batch.Rate)
	if err != nil {
		return err
	}

	p := &batch.Pipeline{
		Searcher: search.NewClient(cfg.Lookup),
		Limiter:  limiter,
		Workers:  cfg.Batch.Workers,
		Options:  bib.Options{AddURL: cfg.Batch.AddURL},
		Logger:   logger,
	}

	logger.Info("looking up", "mode", mode, "queries", len(queries), "workers", cfg.Batch.Workers)
	results := p.Run(ctx, queries)
	merged := bib.Merge(batch.Texts(results))

	if err := writeOutput(stdout, opts.OutputPath, strings.Join(merged, "\n")); err != nil {
		return err
	}

	rep := report.Build(opts.Input, string(mode), results, merged)
	logger.Info("done",
		"resolved", rep.Totals.Resolved,
		"missing", rep.Totals.Missing,
		"duplicates", rep.Totals.DuplicatesRemoved,
		"elapsed", time.Since(started).Round(time.Millisecond),
	)

	if opts.ReportPath != "" {
		if err := rep.Write(opts.ReportPath); err != nil {
			return err
		}
	}

	if cfg.JournalPath != "" {
		if err := recordRun(cfg.JournalPath, opts.Input, string(mode), started, results); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("interrupted: %w", err)
	}
	return nil
}

// writeOutput prints text with one trailing newline, or writes it verbatim
// to path when set.
func writeOutput(stdout io.Writer, path, text string) error {
	if path == "" {
		_, err := fmt.Fprintln(stdout, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// recordRun journals the run. It uses a fresh context so an interrupted
// run is still recorded.
func recordRun(path, in, mode string, started time.Time, results []batch.Result) error {
	store, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.Record(context.Background(), in, mode, started, results); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}
