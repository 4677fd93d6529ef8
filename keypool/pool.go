package keypool

import (
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fable-labs/fable/core"
)

// Strategy selects which valid credential a call to Select returns.
type Strategy string

const (
	// StrategyRandom draws uniformly from the provider's valid credentials.
	StrategyRandom Strategy = "random"

	// StrategyLeastRecentlyUsed returns the valid credential with the
	// smallest LastUsedAt, ties broken by insertion order.
	StrategyLeastRecentlyUsed Strategy = "least_recently_used"
)

// Pool owns all credentials grouped by provider. It is built once at
// startup and mutated for the lifetime of the process. Pool is safe for
// concurrent use: every mutation runs under one mutex.
type Pool struct {
	mu    sync.RWMutex
	creds map[string][]*Credential // provider -> insertion-ordered credentials

	logger zerolog.Logger

	// lookupEnv is swapped in tests. Defaults to os.LookupEnv.
	lookupEnv func(string) (string, bool)

	// now is swapped in tests. Defaults to time.Now.
	now func() time.Time
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithLogger sets the logger used for credential lifecycle events.
func WithLogger(logger zerolog.Logger) PoolOption {
	return func(p *Pool) {
		p.logger = logger
	}
}

// WithEnvLookup overrides environment lookups, for tests.
func WithEnvLookup(fn func(string) (string, bool)) PoolOption {
	return func(p *Pool) {
		if fn != nil {
			p.lookupEnv = fn
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(fn func() time.Time) PoolOption {
	return func(p *Pool) {
		if fn != nil {
			p.now = fn
		}
	}
}

// New creates an empty credential pool.
func New(opts ...PoolOption) *Pool {
	p := &Pool{
		creds:     make(map[string][]*Credential),
		logger:    zerolog.Nop(),
		lookupEnv: os.LookupEnv,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// EnvKeyName returns the environment variable consulted for a provider
// override, e.g. "openai" -> "OPENAI_API_KEY".
func EnvKeyName(provider string) string {
	return strings.ToUpper(provider) + "_API_KEY"
}

// Load parses a key source blob and adds one credential per logical entry.
// It accepts either a JSON array of {name, key} records or a single
// {api_key} object; any other shape fails with ErrMalformedKeySource.
// Returns the number of credentials added.
func (p *Pool) Load(provider string, src []byte) (int, error) {
	records, err := parseKeySource(src)
	if err != nil {
		return 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, rec := range records {
		p.addLocked(provider, rec.Name, rec.Key)
	}

	p.logger.Info().
		Str("provider", provider).
		Int("count", len(records)).
		Msg("credentials loaded")
	return len(records), nil
}

// Add inserts a single credential programmatically and returns it.
func (p *Pool) Add(provider, name, key string) *Credential {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addLocked(provider, name, key)
}

func (p *Pool) addLocked(provider, name, key string) *Credential {
	if name == "" {
		name = newCredentialName()
	}
	cred := &Credential{
		ID:       uuid.NewString(),
		Name:     name,
		Provider: provider,
		Key:      core.NewSecret(key),
		Valid:    true,
	}
	p.creds[provider] = append(p.creds[provider], cred)
	return cred
}

// Select returns one usable credential for the provider, or false when
// none exists. It never returns an error: callers (provider adapters)
// translate a miss into a provider-unavailable failure before attempting
// any network call.
//
// An environment override always wins and yields a synthetic credential
// outside the pool. Otherwise only valid credentials are eligible, chosen
// per the strategy, and the returned credential's LastUsedAt is stamped.
func (p *Pool) Select(provider string, strategy Strategy) (*Credential, bool) {
	if key, ok := p.lookupEnv(EnvKeyName(provider)); ok && key != "" {
		return &Credential{
			ID:       "env:" + provider,
			Name:     EnvKeyName(provider),
			Provider: provider,
			Key:      core.NewSecret(key),
			Valid:    true,
			env:      true,
		}, true
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	valid := validLocked(p.creds[provider])
	if len(valid) == 0 {
		return nil, false
	}

	var chosen *Credential
	switch strategy {
	case StrategyLeastRecentlyUsed:
		chosen = valid[0]
		for _, cred := range valid[1:] {
			// Strictly-before keeps insertion order on ties.
			if cred.LastUsedAt.Before(chosen.LastUsedAt) {
				chosen = cred
			}
		}
	default:
		chosen = valid[rand.Intn(len(valid))]
	}

	chosen.LastUsedAt = p.now()
	return chosen, true
}

// ReportSuccess records a successful use of the credential. LastUsedAt was
// already stamped at selection time, so this is bookkeeping only.
func (p *Pool) ReportSuccess(cred *Credential) {
	if cred == nil || cred.env {
		return
	}
	p.logger.Debug().
		Str("provider", cred.Provider).
		Str("credential", cred.Name).
		Msg("credential use succeeded")
}

// ReportError increments the credential's error count; at ErrorThreshold
// the credential is invalidated. This is the only invalidation path.
// Env-override credentials are never penalized.
func (p *Pool) ReportError(cred *Credential) {
	if cred == nil || cred.env {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	cred.ErrorCount++
	if cred.ErrorCount >= ErrorThreshold && cred.Valid {
		cred.Valid = false
		p.logger.Warn().
			Str("provider", cred.Provider).
			Str("credential", cred.Name).
			Int("error_count", cred.ErrorCount).
			Msg("credential invalidated")
		return
	}
	p.logger.Debug().
		Str("provider", cred.Provider).
		Str("credential", cred.Name).
		Int("error_count", cred.ErrorCount).
		Msg("credential error recorded")
}

// Reset restores a credential to a clean state. This is the explicit
// operator action re-arming an invalidated key; error counts never reset
// automatically.
func (p *Pool) Reset(cred *Credential) {
	if cred == nil || cred.env {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	cred.ErrorCount = 0
	cred.Valid = true
	p.logger.Info().
		Str("provider", cred.Provider).
		Str("credential", cred.Name).
		Msg("credential reset")
}

// HasAnyValid reports whether the provider has at least one usable
// credential, counting an environment override.
func (p *Pool) HasAnyValid(provider string) bool {
	if key, ok := p.lookupEnv(EnvKeyName(provider)); ok && key != "" {
		return true
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(validLocked(p.creds[provider])) > 0
}

// CountValid returns the number of valid pool-managed credentials for the
// provider. Environment overrides are not counted: they are not
// pool-managed.
func (p *Pool) CountValid(provider string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(validLocked(p.creds[provider]))
}

// Providers returns every provider with at least one valid credential or
// an environment override, in sorted order. An env-only provider has no
// pool entry to walk, so its name is only discoverable when passed as a
// candidate (typically the adapter registry's names).
func (p *Pool) Providers(candidates ...string) []string {
	p.mu.RLock()
	seen := make(map[string]bool)
	for provider, creds := range p.creds {
		if len(validLocked(creds)) > 0 {
			seen[provider] = true
			continue
		}
		// An env override counts even when every pool key is invalid.
		if key, ok := p.lookupEnv(EnvKeyName(provider)); ok && key != "" {
			seen[provider] = true
		}
	}
	p.mu.RUnlock()

	for _, provider := range candidates {
		if seen[provider] {
			continue
		}
		if key, ok := p.lookupEnv(EnvKeyName(provider)); ok && key != "" {
			seen[provider] = true
		}
	}

	names := make([]string, 0, len(seen))
	for provider := range seen {
		names = append(names, provider)
	}
	sort.Strings(names)
	return names
}

// Credentials returns a snapshot of the provider's credentials in
// insertion order, valid or not. The slice is a copy; the pointed-to
// credentials are live.
func (p *Pool) Credentials(provider string) []*Credential {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Credential, len(p.creds[provider]))
	copy(out, p.creds[provider])
	return out
}

func validLocked(creds []*Credential) []*Credential {
	var valid []*Credential
	for _, cred := range creds {
		if cred.Valid {
			valid = append(valid, cred)
		}
	}
	return valid
}
