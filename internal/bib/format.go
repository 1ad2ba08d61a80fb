// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bib

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/semantic-bib/pkg/types"
)

// Publication types that select the entry kind.
const (
	typeConference     = "Conference"
	typeJournalArticle = "JournalArticle"
)

// Options controls optional entry fields.
type Options struct {
	// AddURL appends a url field to the entry.
	AddURL bool
}

// FormatError reports a paper record that lacks a field required to build
// an entry.
type FormatError struct {
	Title string
	Field string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("formatting %q: missing %s", e.Title, e.Field)
}

// Format converts one paper record into a BibTeX entry. Fields are emitted
// in a fixed order: author, title, journal or booktitle, year, and url when
// opts.AddURL is set. The record must have at least one author and a year.
func Format(p types.PaperRecord, opts Options) (*Entry, error) {
	if len(p.Authors) == 0 {
		return nil, &FormatError{Title: p.Title, Field: "authors"}
	}
	if p.Year == nil {
		return nil, &FormatError{Title: p.Title, Field: "year"}
	}
	year := strconv.Itoa(*p.Year)

	kind, venueField := kindOf(p)

	authors := make([]string, len(p.Authors))
	for i, a := range p.Authors {
		authors[i] = AuthorToBib(a.Name)
	}

	e := &Entry{
		Key:  Key(p.Authors[0].Name, year, p.Title),
		Kind: kind,
		Fields: []Field{
			{Name: "author", Value: strings.Join(authors, " and ")},
			{Name: "title", Value: PreserveUppercase(p.Title)},
			{Name: venueField, Value: PreserveUppercase(p.Venue)},
			{Name: "year", Value: year},
		},
	}
	if opts.AddURL {
		e.Fields = append(e.Fields, Field{Name: "url", Value: p.URL})
	}
	return e, nil
}

// kindOf picks the entry kind and the name of the field holding the venue.
func kindOf(p types.PaperRecord) (Kind, string) {
	switch {
	case p.HasType(typeConference):
		return KindInProceedings, "booktitle"
	case p.HasType(typeJournalArticle):
		return KindArticle, "journal"
	default:
		return KindMisc, "booktitle"
	}
}

// Key builds the citation key from the first author's family name, the
// year, and the first word of the title, e.g. "vaswani2017attention".
// Spaces and non-ASCII characters are dropped from the family name; only
// ASCII letters of the title word are kept.
func Key(firstAuthor, year, title string) string {
	_, family := SplitName(firstAuthor)
	word, _, _ := strings.Cut(title, " ")
	return asciiOnly(strings.ToLower(strings.ReplaceAll(family, " ", ""))) +
		year +
		LettersOnly(strings.ToLower(word))
}

// SplitName splits a display name into given name and family-name block.
// The first token is taken as the given name and everything after it as the
// family name, so "Jean Paul Sartre" yields ("Jean", "Paul Sartre"). Names
// with a multi-word given name come out wrong; this heuristic matches what
// the API returns for the common case. A single-token name is all family.
func SplitName(name string) (given, family string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return "", fields[0]
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}

// AuthorToBib rewrites "First Middle Last" into "Middle Last, First" using
// SplitName.
func AuthorToBib(name string) string {
	given, family := SplitName(name)
	if given == "" {
		return family
	}
	return family + ", " + given
}

// PreserveUppercase wraps every ASCII uppercase letter in its own brace
// group so BibTeX styles that downcase titles keep the capitalization.
func PreserveUppercase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('{')
			b.WriteRune(r)
			b.WriteByte('}')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// LettersOnly keeps the ASCII letters of s and drops everything else.
func LettersOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isASCIILetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func asciiOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
