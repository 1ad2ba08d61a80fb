// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody bounds how much of an error response body is kept.
const maxErrorBody = 512

// HeaderTransport sets fixed headers on every outgoing request before
// handing it to Base. It never modifies the caller's request.
type HeaderTransport struct {
	Base   http.RoundTripper
	Header http.Header
}

// RoundTrip implements http.RoundTripper.
func (t *HeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	r := req.Clone(req.Context())
	for k, vs := range t.Header {
		if len(vs) == 0 || vs[0] == "" {
			continue
		}
		r.Header[k] = append([]string(nil), vs...)
	}
	return base.RoundTrip(r)
}

// NewClient returns an HTTP client with the given timeout whose requests
// carry header. Empty header values are skipped.
func NewClient(timeout time.Duration, header http.Header) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &HeaderTransport{Header: header},
	}
}

// StatusError reports a response with an unexpected HTTP status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// CheckStatus returns nil for 200 OK. For any other status it reads a
// bounded prefix of the body into a *StatusError; the caller still owns
// and must close resp.Body.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(data)),
	}
}
