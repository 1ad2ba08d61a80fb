// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"context"
	"errors"

	"github.com/pdiddy/semantic-bib/internal/bib"
	"github.com/pdiddy/semantic-bib/internal/search"
	"github.com/pdiddy/semantic-bib/pkg/types"
)

// Status classifies the outcome of one query.
type Status string

const (
	StatusResolved       Status = "resolved"
	StatusEmptyQuery     Status = "empty_query"
	StatusNoResults      Status = "no_results"
	StatusAuthorMismatch Status = "author_mismatch"
	StatusLookupError    Status = "lookup_error"
	StatusFormatError    Status = "format_error"
	StatusCancelled      Status = "cancelled"
	StatusError          Status = "error"
)

// Result is the outcome of resolving one query. Exactly one of Entry and
// Err is set.
type Result struct {
	// Index is the query's position in the batch input.
	Index int

	Query types.Query
	Entry *bib.Entry
	Err   error

	// Candidates lists the first author of every search candidate when the
	// query failed after a successful search.
	Candidates []string
}

// OK reports whether the query resolved to an entry.
func (r Result) OK() bool {
	return r.Err == nil && r.Entry != nil
}

// Text renders the entry, or the failure marker for an unresolved query.
func (r Result) Text() string {
	if r.OK() {
		return r.Entry.String()
	}
	return bib.Missing(r.Query.Title)
}

// Status classifies the result by its error.
func (r Result) Status() Status {
	if r.OK() {
		return StatusResolved
	}
	var (
		lookupErr   *search.LookupError
		formatErr   *bib.FormatError
		mismatchErr *AuthorMismatchError
	)
	switch {
	case errors.Is(r.Err, search.ErrEmptyQuery):
		return StatusEmptyQuery
	case errors.Is(r.Err, ErrNoResults):
		return StatusNoResults
	case errors.As(r.Err, &mismatchErr):
		return StatusAuthorMismatch
	case errors.As(r.Err, &formatErr):
		return StatusFormatError
	case errors.Is(r.Err, context.Canceled), errors.Is(r.Err, context.DeadlineExceeded):
		return StatusCancelled
	case errors.As(r.Err, &lookupErr):
		return StatusLookupError
	default:
		return StatusError
	}
}

// Texts renders every result in order, ready for bib.Merge.
func Texts(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Text()
	}
	return out
}
