package memsync

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// defaultRequestTimeout bounds each HTTP attempt against the Access API.
	defaultRequestTimeout = 45 * time.Second

	// retryDelay is the fixed wait between non-200 attempts.
	retryDelay = 3 * time.Second

	// maxDeliveryAttempts is the total attempt budget per payload.
	maxDeliveryAttempts = 3
)

// Config holds the membership sync configuration. It is loaded once at
// startup and passed explicitly; there is no hidden global state.
type Config struct {
	// Endpoint is the Access API import URL (required).
	Endpoint string

	// AccessToken is the secret sent in the Access-Token header (required).
	AccessToken string

	// ProgramCustomerID is the program/organization customer identifier.
	// Defaults to DefaultProgramCustomerID.
	ProgramCustomerID string

	// Source resolves users and level labels from the host (required).
	Source MembershipSource

	// HTTPClient is an optional client for delivery calls.
	// If nil, a default client with a 45s timeout is used.
	HTTPClient *http.Client

	// Logger receives pipeline and delivery logs (default: NoopLogger).
	Logger Logger

	// Metrics tracks pipeline and delivery operations (default: NoopMetrics).
	Metrics Metrics

	// Sleeper implements the retry delay (default: real timer).
	// Inject a fake in tests to avoid wall-clock waits.
	Sleeper Sleeper

	// Records optionally persists a SyncRecord after each delivery sequence.
	Records RecordStore

	// ResyncConcurrency bounds the worker count for Resync (default: 4).
	ResyncConcurrency int
}

// Validate checks that the configuration is complete.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return fmt.Errorf("%w: endpoint is required", ErrNotConfigured)
	}
	if _, err := url.ParseRequestURI(strings.TrimSpace(c.Endpoint)); err != nil {
		return fmt.Errorf("%w: invalid endpoint: %v", ErrNotConfigured, err)
	}
	if strings.TrimSpace(c.AccessToken) == "" {
		return fmt.Errorf("%w: access token is required", ErrNotConfigured)
	}
	if c.Source == nil {
		return fmt.Errorf("%w: membership source is required", ErrNotConfigured)
	}
	return nil
}

// withDefaults returns a copy of the config with optional fields filled in.
func (c Config) withDefaults() Config {
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	c.AccessToken = strings.TrimSpace(c.AccessToken)
	if c.ProgramCustomerID == "" {
		c.ProgramCustomerID = DefaultProgramCustomerID
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	if c.Logger == nil {
		c.Logger = &NoopLogger{}
	}
	if c.Metrics == nil {
		c.Metrics = &NoopMetrics{}
	}
	if c.Sleeper == nil {
		c.Sleeper = realSleeper{}
	}
	if c.ResyncConcurrency <= 0 {
		c.ResyncConcurrency = 4
	}
	return c
}
