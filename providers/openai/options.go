package openai

import (
	"net/http"
	"time"

	"github.com/fable-labs/fable/keypool"
)

// DefaultBaseURL is the default OpenAI API base URL.
const DefaultBaseURL = "https://api.openai.com/v1"

// Config holds configuration for the OpenAI provider.
type Config struct {
	// Credentials is the pool the adapter draws keys from (required).
	Credentials *keypool.Pool

	// Strategy selects which credential to use per call.
	// Defaults to keypool.StrategyRandom.
	Strategy keypool.Strategy

	// BaseURL is the API base URL. Defaults to DefaultBaseURL.
	BaseURL string

	// HTTPClient is the HTTP client to use.
	HTTPClient *http.Client

	// Headers contains optional extra headers to include in requests.
	Headers http.Header

	// Organization is the optional OpenAI organization ID.
	Organization string

	// Timeout is the optional request timeout. Applied through the
	// request context so streaming reads are not cut short by the client.
	Timeout time.Duration
}

// Option configures the OpenAI provider.
type Option func(*Config)

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithStrategy sets the credential selection strategy.
func WithStrategy(s keypool.Strategy) Option {
	return func(c *Config) {
		c.Strategy = s
	}
}

// WithHeader adds an extra header to include in requests.
func WithHeader(key, value string) Option {
	return func(c *Config) {
		if c.Headers == nil {
			c.Headers = make(http.Header)
		}
		c.Headers.Set(key, value)
	}
}

// WithOrganization sets the OpenAI organization ID header.
func WithOrganization(org string) Option {
	return func(c *Config) {
		c.Organization = org
	}
}

// WithTimeout sets the non-streaming request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}
