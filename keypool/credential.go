// Package keypool manages pools of rotating, rate-limited provider
// credentials.
//
// A Pool owns every credential grouped by provider. Adapters Select one
// before each call, then report the outcome back; a credential whose error
// count crosses the threshold is invalidated and never selected again
// until an operator resets it. An environment-supplied key
// ({PROVIDER_UPPER}_API_KEY) always takes precedence over pool-managed
// credentials for that provider.
package keypool

import (
	"time"

	"github.com/fable-labs/fable/core"
)

// ErrorThreshold is the error count at which a credential is invalidated.
// Invalidation is permanent until an explicit Reset.
const ErrorThreshold = 5

// Credential is a single provider API key plus usage and error bookkeeping.
// All fields are managed by the owning Pool; read them through the Pool's
// query methods when concurrent use is possible.
type Credential struct {
	// ID uniquely identifies the credential within the pool.
	ID string

	// Name is the operator-supplied label from the key source.
	Name string

	// Provider is the short provider identifier the key belongs to.
	Provider string

	// Key is the secret API key.
	Key core.Secret

	// LastUsedAt is stamped every time the credential is selected.
	// Zero for a credential that has never been used.
	LastUsedAt time.Time

	// ErrorCount is the number of penalized failures reported against the
	// credential. It never resets automatically.
	ErrorCount int

	// Valid is false once ErrorCount has reached ErrorThreshold.
	Valid bool

	// env marks a synthetic credential built from an environment override.
	// Env credentials are never pool-managed and never penalized.
	env bool
}

// IsEnvOverride reports whether the credential was synthesized from an
// environment variable rather than loaded into the pool.
func (c *Credential) IsEnvOverride() bool {
	return c.env
}
