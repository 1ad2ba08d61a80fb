// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bib

import (
	"regexp"
	"strings"
)

// entryHead matches the "@kind{" prefix of a rendered entry.
var entryHead = regexp.MustCompile(`^@[a-zA-Z]+\{`)

// IsMissing reports whether block is a failure marker.
func IsMissing(block string) bool {
	return strings.HasPrefix(block, "%")
}

// CitationKey extracts the key from the first line of a rendered entry.
// It returns false when block does not start with an entry header.
func CitationKey(block string) (string, bool) {
	loc := entryHead.FindStringIndex(block)
	if loc == nil {
		return "", false
	}
	line, _, _ := strings.Cut(block, "\n")
	return strings.TrimSuffix(line[loc[1]:], ","), true
}

// Merge removes duplicate entries and puts failure markers first.
//
// Markers keep their relative order. Entries are deduplicated by citation
// key: each key keeps the position of its first occurrence and the text of
// its last one. Blocks that are neither markers nor entries are kept after
// the markers, deduplicated by their full text. Empty blocks are dropped.
func Merge(blocks []string) []string {
	var missing []string
	entries := newOrderedMap()
	for _, block := range blocks {
		switch {
		case block == "":
			continue
		case IsMissing(block):
			missing = append(missing, block)
		default:
			key, ok := CitationKey(block)
			if !ok {
				key = block
			}
			entries.set(key, block)
		}
	}
	return append(missing, entries.values()...)
}

// orderedMap is a string map that remembers first insertion order.
type orderedMap struct {
	keys []string
	vals map[string]string
}

func newOrderedMap() *orderedMap {
	return &orderedMap{vals: make(map[string]string)}
}

func (m *orderedMap) set(key, val string) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = val
}

func (m *orderedMap) values() []string {
	out := make([]string, len(m.keys))
	for i, k := range m.keys {
		out[i] = m.vals[k]
	}
	return out
}
