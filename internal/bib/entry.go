// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bib turns paper records into BibTeX entries and merges the
// rendered entries of a batch into one deduplicated bibliography.
package bib

import (
	"fmt"
	"strings"
)

// Kind is the BibTeX entry type.
type Kind string

const (
	KindArticle       Kind = "article"
	KindInProceedings Kind = "inproceedings"
	KindMisc          Kind = "misc"
)

// Field is one "name = {value}" line of an entry.
type Field struct {
	Name  string
	Value string
}

// Entry is a formatted bibliography record. Fields keep insertion order.
type Entry struct {
	Key    string
	Kind   Kind
	Fields []Field
}

// Get returns the value of the named field and whether it is present.
func (e *Entry) Get(name string) (string, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// String renders the entry as a BibTeX block without a trailing newline.
func (e *Entry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", e.Kind, e.Key)
	for _, f := range e.Fields {
		fmt.Fprintf(&b, "  %s = {%s},\n", f.Name, f.Value)
	}
	b.WriteString("}")
	return b.String()
}

// Missing returns the failure marker for a query that could not be resolved.
// Markers start with the BibTeX comment sigil so they survive in a .bib file
// and sort ahead of entries when merged. Whitespace runs in the query,
// newlines included, collapse to one space so the marker stays on one line.
func Missing(query string) string {
	return fmt.Sprintf("%% paper: %s is missing", strings.Join(strings.Fields(query), " "))
}
