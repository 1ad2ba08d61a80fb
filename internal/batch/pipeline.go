// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch resolves a list of queries to BibTeX entries with a bounded
// pool of concurrent lookups sharing one rate limiter. A failing query
// becomes a failure marker and never aborts the batch.
package batch

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/stream"

	"github.com/pdiddy/semantic-bib/internal/bib"
	"github.com/pdiddy/semantic-bib/internal/search"
	"github.com/pdiddy/semantic-bib/internal/throttle"
	"github.com/pdiddy/semantic-bib/pkg/types"
)

// Pipeline resolves queries concurrently.
type Pipeline struct {
	Searcher search.Searcher
	Limiter  throttle.Limiter

	// Workers bounds the number of concurrent lookups (default 8).
	Workers int

	Options bib.Options
	Logger  *log.Logger
}

// lifecycle is implemented by limiters with a background producer.
type lifecycle interface {
	Start(ctx context.Context)
	Stop()
}

// Run resolves every query and returns the results in input order. A limiter
// with a producer is started for the duration of the run and stopped once
// the last result is collected. Progress and failures are logged as each
// result is collected.
func (p *Pipeline) Run(ctx context.Context, queries []types.Query) []Result {
	results := make([]Result, len(queries))
	if len(queries) == 0 {
		return results
	}

	if lc, ok := p.Limiter.(lifecycle); ok {
		lc.Start(ctx)
		defer lc.Stop()
	}

	workers := p.Workers
	if workers <= 0 {
		workers = types.DefaultWorkers
	}
	logger := p.logger()

	s := stream.New().WithMaxGoroutines(workers)
	done := 0
	for i, q := range queries {
		s.Go(func() stream.Callback {
			r := p.Resolve(ctx, q)
			r.Index = i
			return func() {
				results[i] = r
				done++
				logResult(logger, r, done, len(queries))
			}
		})
	}
	s.Wait()
	return results
}

// Resolve looks up one query: it takes a rate token, searches for the
// sanitized title, selects a candidate (matching the author hint when
// present), and formats it. Empty titles fail without taking a token.
func (p *Pipeline) Resolve(ctx context.Context, q types.Query) Result {
	r := Result{Query: q}

	text := search.SanitizeQuery(q.Title)
	if strings.TrimSpace(text) == "" {
		r.Err = search.ErrEmptyQuery
		return r
	}

	if p.Limiter != nil {
		if err := p.Limiter.Wait(ctx); err != nil {
			r.Err = fmt.Errorf("waiting for rate limiter: %w", err)
			return r
		}
	}

	candidates, err := p.Searcher.Search(ctx, text, search.Options{AddURL: p.Options.AddURL})
	if err != nil {
		r.Err = err
		return r
	}

	best, err := Select(candidates, q.AuthorHint)
	if err != nil {
		r.Err = err
		r.Candidates = firstAuthors(candidates)
		return r
	}

	entry, err := bib.Format(best, p.Options)
	if err != nil {
		r.Err = err
		r.Candidates = firstAuthors(candidates)
		return r
	}
	r.Entry = entry
	return r
}

func (p *Pipeline) logger() *log.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return log.New(io.Discard)
}

func logResult(logger *log.Logger, r Result, done, total int) {
	progress := fmt.Sprintf("%d/%d", done, total)
	switch st := r.Status(); st {
	case StatusResolved:
		logger.Info("resolved", "progress", progress, "key", r.Entry.Key)
	case StatusLookupError:
		logger.Error("lookup failed", "progress", progress, "query", r.Query.Title, "err", r.Err)
	default:
		kv := []interface{}{"progress", progress, "query", r.Query.Title, "status", st, "err", r.Err}
		if len(r.Candidates) > 0 {
			kv = append(kv, "candidates", strings.Join(r.Candidates, "; "))
		}
		logger.Warn("missing", kv...)
	}
}
