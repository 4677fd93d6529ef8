package core

import (
	"context"
	"time"
)

// Provider is the interface that text-generation providers must implement.
// Providers SHOULD be safe for concurrent calls. If a provider cannot be
// concurrent-safe, it MUST document this.
type Provider interface {
	// ID returns the provider identifier (e.g., "openai", "anthropic").
	ID() string

	// Models returns the list of models available from this provider.
	Models() []ModelInfo

	// DefaultModel returns the first available model, or "" when the
	// provider exposes none.
	DefaultModel() ModelID

	// Supports reports whether the provider supports the given feature.
	Supports(feature Feature) bool

	// Generate sends a non-streaming generation request.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// StreamGenerate sends a streaming generation request.
	StreamGenerate(ctx context.Context, req *GenerateRequest) (*GenerateStream, error)
}

// Client is the main entry point for running generation requests against a
// provider. Client is safe for concurrent use.
type Client struct {
	provider  Provider
	telemetry TelemetryHook
	retry     RetryPolicy
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new Client with the given provider and options.
func NewClient(p Provider, opts ...ClientOption) *Client {
	c := &Client{
		provider:  p,
		telemetry: NoopTelemetryHook{},
		retry:     DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTelemetry sets the telemetry hook for the client.
func WithTelemetry(h TelemetryHook) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.telemetry = h
		}
	}
}

// WithRetryPolicy sets the retry policy for the client.
func WithRetryPolicy(r RetryPolicy) ClientOption {
	return func(c *Client) {
		if r != nil {
			c.retry = r
		}
	}
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}

// Generate returns a GenerateBuilder for constructing and executing a
// generation request. An empty model falls back to the provider default.
func (c *Client) Generate(model ModelID) *GenerateBuilder {
	if model == "" {
		model = c.provider.DefaultModel()
	}
	return &GenerateBuilder{
		client: c,
		req: GenerateRequest{
			Model: model,
		},
	}
}

// GenerateBuilder provides a fluent API for building generation requests.
// GenerateBuilder is NOT thread-safe and should not be shared across
// goroutines.
type GenerateBuilder struct {
	client *Client
	req    GenerateRequest
}

// System appends a system message.
func (b *GenerateBuilder) System(s string) *GenerateBuilder {
	b.req.Messages = append(b.req.Messages, System(s))
	return b
}

// User appends a user message.
func (b *GenerateBuilder) User(s string) *GenerateBuilder {
	b.req.Messages = append(b.req.Messages, User(s))
	return b
}

// Assistant appends an assistant message.
func (b *GenerateBuilder) Assistant(s string) *GenerateBuilder {
	b.req.Messages = append(b.req.Messages, Assistant(s))
	return b
}

// Messages appends pre-built messages in order.
func (b *GenerateBuilder) Messages(msgs ...Message) *GenerateBuilder {
	b.req.Messages = append(b.req.Messages, msgs...)
	return b
}

// Temperature sets the temperature parameter.
func (b *GenerateBuilder) Temperature(v float32) *GenerateBuilder {
	b.req.Temperature = &v
	return b
}

// MaxTokens sets the maximum output tokens parameter.
func (b *GenerateBuilder) MaxTokens(n int) *GenerateBuilder {
	b.req.MaxTokens = &n
	return b
}

// validate checks that the request is valid.
func (b *GenerateBuilder) validate() error {
	if b.req.Model == "" {
		return ErrModelRequired
	}
	if len(b.req.Messages) == 0 {
		return ErrNoMessages
	}
	for _, msg := range b.req.Messages {
		if msg.Content == "" {
			return ErrNoMessages
		}
	}
	if t := b.req.Temperature; t != nil && (*t < 0 || *t > 1) {
		return ErrBadRequest
	}
	return nil
}

// GetResponse executes the generation request and returns the response.
// It applies validation, telemetry, and retry logic.
func (b *GenerateBuilder) GetResponse(ctx context.Context) (*GenerateResponse, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	providerID := b.client.provider.ID()

	b.client.telemetry.OnRequestStart(RequestStartEvent{
		Provider: providerID,
		Model:    b.req.Model,
		Start:    start,
	})

	var resp *GenerateResponse
	var err error

retryLoop:
	for attempt := 0; ; attempt++ {
		resp, err = b.client.provider.Generate(ctx, &b.req)
		if err == nil {
			break
		}

		delay, shouldRetry := b.client.retry.NextDelay(attempt, err)
		if !shouldRetry {
			break
		}

		select {
		case <-ctx.Done():
			err = ctx.Err()
			break retryLoop
		case <-time.After(delay):
			continue
		}
	}

	end := time.Now()
	usage := TokenUsage{}
	if resp != nil {
		usage = resp.Usage
	}
	b.client.telemetry.OnRequestEnd(RequestEndEvent{
		Provider: providerID,
		Model:    b.req.Model,
		Start:    start,
		End:      end,
		Usage:    usage,
		Err:      err,
	})

	return resp, err
}

// Stream executes the generation request and returns a streaming response.
// It applies validation and telemetry. Providers without streaming support
// are called once via Generate and the whole output is delivered through a
// single chunk.
func (b *GenerateBuilder) Stream(ctx context.Context) (*GenerateStream, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	if !b.client.provider.Supports(FeatureStreaming) {
		resp, err := b.GetResponse(ctx)
		if err != nil {
			return nil, err
		}
		return SingleChunkStream(resp), nil
	}

	start := time.Now()
	providerID := b.client.provider.ID()

	b.client.telemetry.OnRequestStart(RequestStartEvent{
		Provider: providerID,
		Model:    b.req.Model,
		Start:    start,
	})

	stream, err := b.client.provider.StreamGenerate(ctx, &b.req)
	if err != nil {
		b.client.telemetry.OnRequestEnd(RequestEndEvent{
			Provider: providerID,
			Model:    b.req.Model,
			Start:    start,
			End:      time.Now(),
			Err:      err,
		})
		return nil, err
	}

	return wrapStreamWithTelemetry(stream, b.client.telemetry, providerID, b.req.Model, start), nil
}

// wrapStreamWithTelemetry wraps a GenerateStream to emit telemetry on
// completion.
func wrapStreamWithTelemetry(
	stream *GenerateStream,
	hook TelemetryHook,
	provider string,
	model ModelID,
	start time.Time,
) *GenerateStream {
	finalCh := make(chan *GenerateResponse, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(finalCh)
		defer close(errCh)

		var finalResp *GenerateResponse
		var finalErr error

		// Drain both source channels until they close. A single select
		// would race against the adapter's close order and could drop a
		// buffered error when Final closes first. Each source emits at
		// most one value and the replacements are buffered, so the
		// forwards never block.
		srcFinal, srcErr := stream.Final, stream.Err
		for srcFinal != nil || srcErr != nil {
			select {
			case resp, ok := <-srcFinal:
				if !ok {
					srcFinal = nil
					continue
				}
				finalResp = resp
				finalCh <- resp
			case err, ok := <-srcErr:
				if !ok {
					srcErr = nil
					continue
				}
				finalErr = err
				errCh <- err
			}
		}

		usage := TokenUsage{}
		if finalResp != nil {
			usage = finalResp.Usage
		}
		hook.OnRequestEnd(RequestEndEvent{
			Provider: provider,
			Model:    model,
			Start:    start,
			End:      time.Now(),
			Usage:    usage,
			Err:      finalErr,
		})
	}()

	return &GenerateStream{
		Ch:    stream.Ch,
		Err:   errCh,
		Final: finalCh,
	}
}
