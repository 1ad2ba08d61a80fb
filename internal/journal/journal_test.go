// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/semantic-bib/internal/batch"
	"github.com/pdiddy/semantic-bib/internal/bib"
	"github.com/pdiddy/semantic-bib/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResults() []batch.Result {
	return []batch.Result{
		{
			Index: 0,
			Query: types.Query{Title: "Attention is all you need", AuthorHint: "Vaswani, Ashish"},
			Entry: &bib.Entry{Key: "vaswani2017attention", Kind: bib.KindInProceedings},
		},
		{
			Index: 1,
			Query: types.Query{Title: "A lost paper", AuthorHint: "Nobody, Known"},
			Err:   &batch.AuthorMismatchError{Hint: "Nobody, Known", Family: "Nobody"},
		},
		{
			Index: 2,
			Query: types.Query{Title: "Nothing found"},
			Err:   batch.ErrNoResults,
		},
	}
}

func TestRecordAndRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	older := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	newer := older.Add(time.Hour)

	first, err := s.Record(ctx, "zotero.csv", "csv", older, sampleResults())
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, 3, first.Total)
	assert.Equal(t, 1, first.Resolved)
	assert.Equal(t, 2, first.Missing)

	second, err := s.Record(ctx, "attention", "title", newer, sampleResults()[:1])
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	runs, err := s.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID, "newest first")
	assert.True(t, runs[0].StartedAt.Equal(newer))
	assert.Equal(t, "zotero.csv", runs[1].Input)

	runs, err = s.Runs(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestMissing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run, err := s.Record(ctx, "zotero.csv", "csv", time.Now(), sampleResults())
	require.NoError(t, err)

	missing, err := s.Missing(ctx, 0)
	require.NoError(t, err)
	require.Len(t, missing, 2)

	assert.Equal(t, run.ID, missing[0].RunID)
	assert.Equal(t, 1, missing[0].Position)
	assert.Equal(t, "A lost paper", missing[0].Title)
	assert.Equal(t, "Nobody, Known", missing[0].AuthorHint)
	assert.Equal(t, string(batch.StatusAuthorMismatch), missing[0].Status)
	assert.Contains(t, missing[0].Error, "no authors matched")

	assert.Equal(t, string(batch.StatusNoResults), missing[1].Status)
	assert.Empty(t, missing[1].AuthorHint)
}

func TestRecordRollsBackOnCancel(t *testing.T) {
	s := openTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Record(ctx, "x.txt", "txt", time.Now(), sampleResults())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	runs, err := s.Runs(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
