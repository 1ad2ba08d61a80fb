// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package input turns the command-line input into lookup queries. The input
// is either a literal title, a .txt file with one title per line, or a .csv
// export from a reference manager with Title and Author columns.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/semantic-bib/pkg/types"
)

// Mode identifies how the input argument was interpreted.
type Mode string

const (
	ModeTitle Mode = "title"
	ModeText  Mode = "txt"
	ModeCSV   Mode = "csv"
)

// DetectMode picks the mode from the argument's file extension.
func DetectMode(arg string) Mode {
	switch strings.ToLower(filepath.Ext(arg)) {
	case ".csv":
		return ModeCSV
	case ".txt":
		return ModeText
	default:
		return ModeTitle
	}
}

// Load reads the queries described by arg.
func Load(arg string) ([]types.Query, Mode, error) {
	mode := DetectMode(arg)
	if mode == ModeTitle {
		return []types.Query{{Title: arg}}, mode, nil
	}

	f, err := os.Open(arg)
	if err != nil {
		return nil, mode, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	var queries []types.Query
	switch mode {
	case ModeCSV:
		queries, err = ReadCSV(f)
	default:
		queries, err = ReadText(f)
	}
	if err != nil {
		return nil, mode, fmt.Errorf("reading %s: %w", arg, err)
	}
	return queries, mode, nil
}

// ReadText reads one title per line. Blank lines are skipped and Windows
// line endings are tolerated.
func ReadText(r io.Reader) ([]types.Query, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var queries []types.Query
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		queries = append(queries, types.Query{Title: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning lines: %w", err)
	}
	return queries, nil
}
