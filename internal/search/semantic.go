// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/semantic-bib/internal/httputil"
	"github.com/pdiddy/semantic-bib/pkg/types"
)

// baseFields are requested on every search; "url" is added on demand.
var baseFields = []string{
	"title",
	"abstract",
	"venue",
	"year",
	"citationCount",
	"publicationTypes",
	"publicationDate",
	"journal",
	"authors",
}

// Client queries the Semantic Scholar paper search endpoint.
type Client struct {
	HTTP    *http.Client
	BaseURL string
}

// NewClient builds a client whose requests carry the configured API key and
// User-Agent and time out after cfg.Timeout.
func NewClient(cfg types.LookupConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = types.DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = types.DefaultTimeout
	}
	return &Client{
		HTTP: httputil.NewClient(timeout, http.Header{
			"X-Api-Key":  {cfg.APIKey},
			"User-Agent": {cfg.UserAgent},
		}),
		BaseURL: baseURL,
	}
}

// Fields returns the comma-joined field list requested for opts.
func Fields(opts Options) string {
	fields := baseFields
	if opts.AddURL {
		fields = append(fields[:len(fields):len(fields)], "url")
	}
	return strings.Join(fields, ",")
}

// Search sends one search request and returns the candidates, most relevant
// first. Only the first page of results is read.
func (c *Client) Search(ctx context.Context, query string, opts Options) ([]types.PaperRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	params := url.Values{
		"query":  {query},
		"fields": {Fields(opts)},
	}
	reqURL := c.BaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &LookupError{Query: query, Err: fmt.Errorf("creating request: %w", err)}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &LookupError{Query: query, Err: fmt.Errorf("Semantic Scholar API request: %w", err)}
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		return nil, &LookupError{Query: query, StatusCode: resp.StatusCode, Err: err}
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, &LookupError{Query: query, StatusCode: resp.StatusCode, Err: fmt.Errorf("parsing Semantic Scholar response: %w", err)}
	}
	// A search without hits omits "data" entirely.
	return sr.Data, nil
}

// searchResponse is the paper search response envelope.
type searchResponse struct {
	Total  int                 `json:"total"`
	Offset int                 `json:"offset"`
	Next   int                 `json:"next"`
	Data   []types.PaperRecord `json:"data"`
}
