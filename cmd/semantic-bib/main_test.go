// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/semantic-bib/internal/journal"
	"github.com/pdiddy/semantic-bib/internal/report"
	"github.com/pdiddy/semantic-bib/pkg/types"
)

const attentionJSON = `{"total": 1, "offset": 0, "data": [{
	"paperId": "204e3073870fae3d05bcbc2f6a8e263d9b72e776",
	"title": "Attention is All you Need",
	"venue": "Neural Information Processing Systems",
	"year": 2017,
	"publicationTypes": ["JournalArticle", "Conference"],
	"url": "https://www.semanticscholar.org/paper/204e3073870fae3d05bcbc2f6a8e263d9b72e776",
	"authors": [
		{"authorId": "40348417", "name": "Ashish Vaswani"},
		{"authorId": "1846258", "name": "Noam M. Shazeer"}
	]
}]}`

const emptyJSON = `{"total": 0, "offset": 0, "data": []}`

// newAPIServer serves body for every search request and counts requests.
// Requests without the expected API key get a 403.
func newAPIServer(t *testing.T, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("X-Api-Key") != "test-key" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testConfig(baseURL string) types.Config {
	return types.Config{
		Lookup: types.LookupConfig{
			BaseURL: baseURL,
			APIKey:  "test-key",
		},
		Batch: types.BatchConfig{
			Workers: 2,
			Rate:    types.RateConfig{Interval: time.Millisecond, Capacity: 4},
		},
	}.WithDefaults()
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// --- Single title ---

func TestExecuteSingleTitle(t *testing.T) {
	srv, calls := newAPIServer(t, attentionJSON)

	var stdout bytes.Buffer
	err := execute(context.Background(), testConfig(srv.URL),
		runOptions{Input: "attention is all you need"}, &stdout, quietLogger())
	require.NoError(t, err)

	out := stdout.String()
	assert.True(t, strings.HasPrefix(out, "@inproceedings{vaswani2017attention,\n"), out)
	assert.Contains(t, out, "author = {Vaswani, Ashish and M. Shazeer, Noam}")
	assert.Contains(t, out, "year = {2017}")
	assert.NotContains(t, out, "url = ")
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.False(t, strings.HasSuffix(out, "\n\n"))
	assert.Equal(t, int32(1), calls.Load())
}

func TestExecuteAddURL(t *testing.T) {
	srv, _ := newAPIServer(t, attentionJSON)
	cfg := testConfig(srv.URL)
	cfg.Batch.AddURL = true

	var stdout bytes.Buffer
	require.NoError(t, execute(context.Background(), cfg,
		runOptions{Input: "attention is all you need"}, &stdout, quietLogger()))
	assert.Contains(t, stdout.String(), "url = {https://www.semanticscholar.org/paper/")
}

func TestExecuteNoResults(t *testing.T) {
	srv, _ := newAPIServer(t, emptyJSON)

	var stdout bytes.Buffer
	err := execute(context.Background(), testConfig(srv.URL),
		runOptions{Input: "a title nobody wrote"}, &stdout, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "% paper: a title nobody wrote is missing\n", stdout.String())
}

func TestExecuteNoHitsReplyWithoutData(t *testing.T) {
	srv, _ := newAPIServer(t, `{"total": 0, "offset": 0}`)
	reportPath := filepath.Join(t.TempDir(), "report.yaml")

	var stdout bytes.Buffer
	err := execute(context.Background(), testConfig(srv.URL),
		runOptions{Input: "nothing here", ReportPath: reportPath}, &stdout, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "% paper: nothing here is missing\n", stdout.String())

	rep, err := report.Read(reportPath)
	require.NoError(t, err)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, "no_results", rep.Failures[0].Status)
}

func TestExecuteWrongAPIKeyIsNotFatal(t *testing.T) {
	srv, _ := newAPIServer(t, attentionJSON)
	cfg := testConfig(srv.URL)
	cfg.Lookup.APIKey = "wrong"

	var stdout bytes.Buffer
	err := execute(context.Background(), cfg,
		runOptions{Input: "attention is all you need"}, &stdout, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "% paper: attention is all you need is missing\n", stdout.String())
}

// --- File inputs ---

func TestExecuteCSVToFile(t *testing.T) {
	srv, calls := newAPIServer(t, attentionJSON)
	in := writeFile(t, "export.csv",
		"Key,Title,Author\n"+
			"A1,Lost Paper,\"Nobody, Known\"\n"+
			"A2,Attention is all you need,\"Vaswani, Ashish; Shazeer, Noam\"\n")
	outPath := filepath.Join(t.TempDir(), "refs.bib")

	var stdout bytes.Buffer
	err := execute(context.Background(), testConfig(srv.URL),
		runOptions{Input: in, OutputPath: outPath}, &stdout, quietLogger())
	require.NoError(t, err)
	assert.Empty(t, stdout.String())
	assert.Equal(t, int32(2), calls.Load())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	blocks := strings.SplitN(string(data), "\n", 2)
	require.Len(t, blocks, 2)
	assert.Equal(t, "% paper: Lost Paper is missing", blocks[0])
	assert.True(t, strings.HasPrefix(blocks[1], "@inproceedings{vaswani2017attention,"))
	assert.True(t, strings.HasSuffix(string(data), "}"), "file output has no trailing newline")
}

func TestExecuteTextDeduplicates(t *testing.T) {
	srv, calls := newAPIServer(t, attentionJSON)
	in := writeFile(t, "titles.txt",
		"Attention is all you need\n\nAttention Is All You Need\r\n")

	var stdout bytes.Buffer
	err := execute(context.Background(), testConfig(srv.URL),
		runOptions{Input: in}, &stdout, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 1, strings.Count(stdout.String(), "@inproceedings{vaswani2017attention,"))
}

func TestExecuteMissingInputFile(t *testing.T) {
	srv, calls := newAPIServer(t, attentionJSON)
	err := execute(context.Background(), testConfig(srv.URL),
		runOptions{Input: filepath.Join(t.TempDir(), "missing.txt")}, io.Discard, quietLogger())
	require.Error(t, err)
	assert.Zero(t, calls.Load())
}

func TestExecuteUnknownRateMode(t *testing.T) {
	srv, _ := newAPIServer(t, attentionJSON)
	cfg := testConfig(srv.URL)
	cfg.Batch.Rate.Mode = "fast"

	err := execute(context.Background(), cfg, runOptions{Input: "x"}, io.Discard, quietLogger())
	assert.ErrorContains(t, err, "unknown rate mode")
}

// --- Report and journal ---

func TestExecuteWritesReportAndJournal(t *testing.T) {
	srv, _ := newAPIServer(t, emptyJSON)
	dir := t.TempDir()
	cfg := testConfig(srv.URL)
	cfg.JournalPath = filepath.Join(dir, "journal.db")
	reportPath := filepath.Join(dir, "report.yaml")

	in := writeFile(t, "titles.txt", "first lost title\nsecond lost title\n")
	err := execute(context.Background(), cfg,
		runOptions{Input: in, ReportPath: reportPath}, io.Discard, quietLogger())
	require.NoError(t, err)

	rep, err := report.Read(reportPath)
	require.NoError(t, err)
	assert.Equal(t, "txt", rep.Mode)
	assert.Equal(t, report.Totals{Queries: 2, Missing: 2}, rep.Totals)
	require.Len(t, rep.Failures, 2)
	assert.Equal(t, "no_results", rep.Failures[0].Status)

	store, err := journal.Open(cfg.JournalPath)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.Runs(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].Missing)

	missing, err := store.Missing(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, missing, 2)
	assert.Equal(t, "first lost title", missing[0].Title)
}

// --- Output and config ---

func TestWriteOutput(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, writeOutput(&stdout, "", "a\nb"))
	assert.Equal(t, "a\nb\n", stdout.String())

	path := filepath.Join(t.TempDir(), "out.bib")
	require.NoError(t, os.WriteFile(path, []byte("old contents that are longer"), 0o644))
	require.NoError(t, writeOutput(&stdout, path, "a\nb"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", string(data))
}

func TestConfigFromViperDefaults(t *testing.T) {
	cfg := configFromViper(viper.New())
	assert.Equal(t, types.DefaultWorkers, cfg.Batch.Workers)
	assert.Equal(t, types.DefaultRateInterval, cfg.Batch.Rate.Interval)
	assert.Equal(t, types.DefaultRateCapacity, cfg.Batch.Rate.Capacity)
	assert.Equal(t, types.RateBucket, cfg.Batch.Rate.Mode)
	assert.Equal(t, types.DefaultBaseURL, cfg.Lookup.BaseURL)
	assert.Equal(t, types.DefaultTimeout, cfg.Lookup.Timeout)
	assert.Equal(t, types.DefaultSecretsDir, cfg.SecretsDir)
	assert.Empty(t, cfg.JournalPath)
}

func TestConfigFromViperOverrides(t *testing.T) {
	v := viper.New()
	v.Set("workers", 3)
	v.Set("add_url", true)
	v.Set("timeout", "2s")
	v.Set("rate.interval", "250ms")
	v.Set("rate.capacity", 5)
	v.Set("rate.mode", "smooth")
	v.Set("api_url", "http://localhost:1234/search")
	v.Set("journal", "runs.db")

	cfg := configFromViper(v)
	assert.Equal(t, 3, cfg.Batch.Workers)
	assert.True(t, cfg.Batch.AddURL)
	assert.Equal(t, 2*time.Second, cfg.Lookup.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Batch.Rate.Interval)
	assert.Equal(t, 5, cfg.Batch.Rate.Capacity)
	assert.Equal(t, types.RateSmooth, cfg.Batch.Rate.Mode)
	assert.Equal(t, "http://localhost:1234/search", cfg.Lookup.BaseURL)
	assert.Equal(t, "runs.db", cfg.JournalPath)
}

func TestSetupLogger(t *testing.T) {
	require.NoError(t, setupLogger("debug"))
	assert.Equal(t, log.DebugLevel, logger.GetLevel())
	require.NoError(t, setupLogger(""))
	assert.Equal(t, log.InfoLevel, logger.GetLevel())
	assert.Error(t, setupLogger("loud"))
}
