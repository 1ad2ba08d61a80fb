// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the semantic-bib pipeline:
// lookup queries, paper records decoded from the metadata API, and the
// configuration threaded through each stage.
package types

// Query is one lookup request produced by an input adapter. AuthorHint is
// the raw author string from the source (e.g. a Zotero "Author" cell such as
// "Vaswani, Ashish; Shazeer, Noam") and is empty when no hint is available.
type Query struct {
	Title      string `json:"title" yaml:"title"`
	AuthorHint string `json:"author_hint,omitempty" yaml:"author_hint,omitempty"`
}

// Author is a paper author as returned by the metadata API.
type Author struct {
	AuthorID string `json:"authorId,omitempty" yaml:"author_id,omitempty"`
	Name     string `json:"name" yaml:"name"`
}

// PaperRecord is a candidate paper returned by a search. Fields mirror the
// Semantic Scholar Graph API paper object so that the response decodes
// directly into it.
type PaperRecord struct {
	// PaperID is the Semantic Scholar paper identifier.
	PaperID string `json:"paperId" yaml:"paper_id"`

	// Title is the paper title as returned by the API.
	Title string `json:"title" yaml:"title"`

	// Venue is the publication venue (journal or conference name).
	Venue string `json:"venue" yaml:"venue"`

	// Year is the publication year; nil when the API has no year.
	Year *int `json:"year" yaml:"year,omitempty"`

	// Authors lists the paper authors in source order.
	Authors []Author `json:"authors" yaml:"authors"`

	// PublicationTypes holds values such as "JournalArticle" or "Conference".
	PublicationTypes []string `json:"publicationTypes" yaml:"publication_types"`

	// PublicationDate is the "YYYY-MM-DD" publication date, if known.
	PublicationDate string `json:"publicationDate" yaml:"publication_date,omitempty"`

	// CitationCount is the number of citing papers.
	CitationCount int `json:"citationCount" yaml:"citation_count"`

	// URL links to the paper page; only populated when requested.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// HasType reports whether the record lists the given publication type.
func (p PaperRecord) HasType(t string) bool {
	for _, pt := range p.PublicationTypes {
		if pt == t {
			return true
		}
	}
	return false
}

// FirstAuthorName returns the first listed author's name, or "" when the
// record has no authors.
func (p PaperRecord) FirstAuthorName() string {
	if len(p.Authors) == 0 {
		return ""
	}
	return p.Authors[0].Name
}
