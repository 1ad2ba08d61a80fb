package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout (default 10s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "semantic-bib/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// LookupConfig holds settings for the metadata search client.
type LookupConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the paper search endpoint.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey is sent in the x-api-key header of every request.
	APIKey string `json:"-" yaml:"-"`
}

// RateMode selects the rate limiter implementation.
type RateMode string

const (
	// RateBucket fills a bounded token buffer from a ticking producer.
	RateBucket RateMode = "bucket"

	// RateSmooth uses a token bucket computed lazily on each request,
	// without a producer goroutine.
	RateSmooth RateMode = "smooth"
)

// RateConfig holds settings for the shared rate limiter.
type RateConfig struct {
	// Interval is the time between two tokens (default 100ms).
	Interval time.Duration `json:"interval" yaml:"interval"`

	// Capacity bounds the number of buffered tokens (default 10).
	Capacity int `json:"capacity" yaml:"capacity"`

	// Mode selects bucket or smooth limiting (default bucket).
	Mode RateMode `json:"mode" yaml:"mode"`
}

// BatchConfig holds settings for the batch lookup pipeline.
type BatchConfig struct {
	// Workers is the number of concurrent lookups (default 8).
	Workers int `json:"workers" yaml:"workers"`

	// AddURL adds a url field to every formatted entry.
	AddURL bool `json:"add_url" yaml:"add_url"`

	Rate RateConfig `json:"rate" yaml:"rate"`
}

// Config groups all settings for one semantic-bib run. It is resolved once at
// startup and passed explicitly to each stage.
type Config struct {
	Lookup LookupConfig `json:"lookup" yaml:"lookup"`
	Batch  BatchConfig  `json:"batch" yaml:"batch"`

	// SecretsDir is the directory holding key files such as
	// semantic-scholar-api-key (default ".secrets").
	SecretsDir string `json:"secrets_dir" yaml:"secrets_dir"`

	// JournalPath is the SQLite run journal; empty disables journaling.
	JournalPath string `json:"journal" yaml:"journal"`
}

// Defaults for Config fields left at their zero value.
const (
	DefaultTimeout      = 10 * time.Second
	DefaultUserAgent    = "semantic-bib/0.1"
	DefaultBaseURL      = "https://api.semanticscholar.org/graph/v1/paper/search"
	DefaultWorkers      = 8
	DefaultRateInterval = 100 * time.Millisecond
	DefaultRateCapacity = 10
	DefaultSecretsDir   = ".secrets"
)

// WithDefaults returns a copy of c with zero-valued fields set to their
// defaults.
func (c Config) WithDefaults() Config {
	if c.Lookup.Timeout <= 0 {
		c.Lookup.Timeout = DefaultTimeout
	}
	if c.Lookup.UserAgent == "" {
		c.Lookup.UserAgent = DefaultUserAgent
	}
	if c.Lookup.BaseURL == "" {
		c.Lookup.BaseURL = DefaultBaseURL
	}
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = DefaultWorkers
	}
	if c.Batch.Rate.Interval <= 0 {
		c.Batch.Rate.Interval = DefaultRateInterval
	}
	if c.Batch.Rate.Capacity <= 0 {
		c.Batch.Rate.Capacity = DefaultRateCapacity
	}
	if c.Batch.Rate.Mode == "" {
		c.Batch.Rate.Mode = RateBucket
	}
	if c.SecretsDir == "" {
		c.SecretsDir = DefaultSecretsDir
	}
	return c
}
