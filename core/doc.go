// Package core provides the provider contract and request/response types
// for the Fable generation toolkit.
//
// # Overview
//
// Fable coordinates long-form text generation across interchangeable
// providers. Package core defines the provider-agnostic contract every
// adapter implements, plus the client that layers validation, retry and
// telemetry on top of it:
//
//	pool := keypool.New()
//	pool.Add("openai", "primary", apiKey)
//
//	provider := openai.New(pool)
//	client := core.NewClient(provider)
//
//	resp, err := client.Generate("gpt-4o").
//	    System("You are a novelist's assistant.").
//	    User("Draft an opening paragraph about a lighthouse keeper.").
//	    Temperature(0.8).
//	    GetResponse(ctx)
//
// # Streaming
//
// StreamGenerate returns a *GenerateStream carrying deltas, at most one
// error, and exactly one final response over three channels. DrainStream
// collects everything into a single response; ForwardStream delivers each
// fragment to a callback in arrival order:
//
//	stream, err := client.Generate("gpt-4o").User(prompt).Stream(ctx)
//	if err != nil { ... }
//	final, err := core.ForwardStream(ctx, stream, func(delta string) error {
//	    fmt.Print(delta)
//	    return nil
//	})
//
// Providers that do not support streaming are called once and their whole
// output is delivered as a single chunk.
//
// # Errors
//
// Vendor failures are normalized into *ProviderError values wrapping a
// sentinel (ErrUnauthorized, ErrRateLimited, ErrNetwork, ...), so callers
// classify with errors.Is regardless of the vendor:
//
//	if errors.Is(err, core.ErrRateLimited) {
//	    if hint, ok := core.RetryAfter(err); ok { ... }
//	}
//
// ErrNoCredentials marks a provider whose credential pool has nothing
// usable; adapters return it before any network call is attempted.
package core
