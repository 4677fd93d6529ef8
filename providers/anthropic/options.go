package anthropic

import (
	"net/http"

	"github.com/fable-labs/fable/keypool"
)

// DefaultBaseURL is the default Anthropic API base URL.
const DefaultBaseURL = "https://api.anthropic.com"

// DefaultVersion is the default Anthropic API version.
const DefaultVersion = "2023-06-01"

// Config holds configuration for the Anthropic provider.
type Config struct {
	// Credentials is the pool the adapter draws keys from (required).
	Credentials *keypool.Pool

	// Strategy selects which credential to use per call.
	// Defaults to keypool.StrategyRandom.
	Strategy keypool.Strategy

	// BaseURL is the API base URL. Defaults to DefaultBaseURL.
	BaseURL string

	// HTTPClient is the HTTP client to use. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Version is the Anthropic API version. Defaults to DefaultVersion.
	Version string

	// Headers contains optional extra headers to include in requests.
	Headers http.Header
}

// Option configures the Anthropic provider.
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

// WithVersion sets the Anthropic API version.
func WithVersion(version string) Option {
	return func(c *Config) {
		c.Version = version
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
