// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/semantic-bib/internal/bib"
	"github.com/pdiddy/semantic-bib/pkg/types"
)

// ErrNoResults is returned when a search yields no candidates.
var ErrNoResults = errors.New("no search results")

// AuthorMismatchError reports that no candidate's first author matches the
// query's author hint.
type AuthorMismatchError struct {
	Hint   string
	Family string
}

func (e *AuthorMismatchError) Error() string {
	return fmt.Sprintf("no authors matched %q", e.Hint)
}

// HintFamilyName returns the family name of the first author in a
// reference-manager author string such as "Vaswani, Ashish; Shazeer, Noam".
// Authors are separated by "; " and each is written "Family, Given".
func HintFamilyName(hint string) string {
	first, _, _ := strings.Cut(hint, "; ")
	family, _, _ := strings.Cut(first, ", ")
	return strings.TrimSpace(family)
}

// Select picks the candidate to format. Without a hint it is the first
// candidate. With a hint it is the first candidate whose first author's
// family name contains the hint's first family name (case-sensitive).
func Select(candidates []types.PaperRecord, hint string) (types.PaperRecord, error) {
	if len(candidates) == 0 {
		return types.PaperRecord{}, ErrNoResults
	}
	family := HintFamilyName(hint)
	if family == "" {
		return candidates[0], nil
	}
	for _, c := range candidates {
		if len(c.Authors) == 0 {
			continue
		}
		_, candFamily := bib.SplitName(c.Authors[0].Name)
		if strings.Contains(candFamily, family) {
			return c, nil
		}
	}
	return types.PaperRecord{}, &AuthorMismatchError{Hint: hint, Family: family}
}

// firstAuthors lists each candidate's first author for diagnostics, using
// "<>" for candidates without authors.
func firstAuthors(candidates []types.PaperRecord) []string {
	if len(candidates) == 0 {
		return nil
	}
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.FirstAuthorName()
		if names[i] == "" {
			names[i] = "<>"
		}
	}
	return names
}
