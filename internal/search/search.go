// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search looks up candidate papers for a free-text query against the
// Semantic Scholar paper search API. Candidates are returned in the API's
// relevance order; this package never re-ranks or retries.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/semantic-bib/pkg/types"
)

// ErrEmptyQuery is returned for a query with no searchable letters.
var ErrEmptyQuery = errors.New("empty search query")

// Options selects optional response fields.
type Options struct {
	// AddURL requests the url field for every candidate.
	AddURL bool
}

// Searcher performs one search request. *Client implements it; the batch
// pipeline depends on this interface so tests can substitute fakes.
type Searcher interface {
	Search(ctx context.Context, query string, opts Options) ([]types.PaperRecord, error)
}

// LookupError reports a failed search: a transport error, a non-200 status,
// or an undecodable response body.
type LookupError struct {
	Query      string
	StatusCode int
	Err        error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("looking up %q: %v", e.Query, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// SanitizeQuery replaces every character that is not an ASCII letter with a
// space.
func SanitizeQuery(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
