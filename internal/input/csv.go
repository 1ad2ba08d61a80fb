// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package input

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/semantic-bib/pkg/types"
)

// Column names of a Zotero CSV export.
const (
	titleColumn  = "Title"
	authorColumn = "Author"
)

// ReadCSV reads a reference-manager CSV export. The header must contain a
// Title column; an Author column, when present, supplies author hints in
// "Family, Given; Family, Given" form. Every data row yields one query,
// including rows with an empty title, so the output keeps one line per row.
func ReadCSV(r io.Reader) ([]types.Query, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow ragged rows
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parsing CSV header: %w", err)
	}

	titleIdx, authorIdx := -1, -1
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff")
		}
		switch strings.TrimSpace(col) {
		case titleColumn:
			titleIdx = i
		case authorColumn:
			authorIdx = i
		}
	}
	if titleIdx < 0 {
		return nil, fmt.Errorf("CSV header has no %q column", titleColumn)
	}

	var queries []types.Query
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing CSV row %d: %w", line, err)
		}
		queries = append(queries, types.Query{
			Title:      strings.TrimSpace(cell(row, titleIdx)),
			AuthorHint: strings.TrimSpace(cell(row, authorIdx)),
		})
	}
	return queries, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
