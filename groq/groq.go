// Package groq implements unscraper.Completer against the Groq
// OpenAI-compatible chat completions API.
package groq

import (
	"context"

	"github.com/fwojciec/unscraper"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultBaseURL is the Groq OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// DefaultModels is the ordered rotation pool used when a model is rate
// limited.
var DefaultModels = []string{
	"llama-3.3-70b-versatile",
	"meta-llama/llama-4-maverick-17b-128e-instruct",
	"meta-llama/llama-4-scout-17b-16e-instruct",
	"openai/gpt-oss-120b",
	"llama-3.1-8b-instant",
}

// Ensure Provider implements unscraper.CompleterProvider at compile time.
var _ unscraper.CompleterProvider = (*Provider)(nil)

// Provider creates Groq completers.
type Provider struct {
	baseURL    string
	defaultKey string
	models     []string
}

// Option configures a Provider.
type Option func(*Provider)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(p *Provider) {
		p.baseURL = u
	}
}

// WithDefaultAPIKey sets the key used when a run supplies none.
func WithDefaultAPIKey(key string) Option {
	return func(p *Provider) {
		p.defaultKey = key
	}
}

// WithModels overrides DefaultModels.
func WithModels(models ...string) Option {
	return func(p *Provider) {
		p.models = models
	}
}

// NewProvider creates a new Provider.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		baseURL: DefaultBaseURL,
		models:  DefaultModels,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewCompleter returns a Completer authenticated with apiKey, or with the
// default key when apiKey is empty.
func (p *Provider) NewCompleter(_ context.Context, apiKey string) (unscraper.Completer, error) {
	if apiKey == "" {
		apiKey = p.defaultKey
	}
	if apiKey == "" {
		return nil, unscraper.Errorf(unscraper.EUNAUTHORIZED, "An API key is required. Provide one or set GROQ_API_KEY.")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(p.baseURL),
		option.WithMaxRetries(0),
	)
	return &Completer{client: client}, nil
}

// Models returns the model rotation pool.
func (p *Provider) Models() []string {
	return p.models
}

// Ensure Completer implements unscraper.Completer at compile time.
var _ unscraper.Completer = (*Completer)(nil)

// Completer sends chat completions to Groq. Retries are left to the caller
// so that rate limited calls can rotate models.
type Completer struct {
	client openai.Client
}

// Complete returns the text of the first choice.
func (c *Completer) Complete(ctx context.Context, req unscraper.CompletionRequest) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		Temperature: openai.Float(req.Temperature),
	})
	if err != nil {
		return "", ClassifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", unscraper.Errorf(unscraper.EPROVIDER, "API Error: no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
