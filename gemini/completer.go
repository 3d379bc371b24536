// Package gemini implements unscraper.Completer using Google Gemini.
package gemini

import (
	"context"

	"github.com/fwojciec/unscraper"
	"google.golang.org/genai"
)

// DefaultModels is the ordered rotation pool for Gemini.
var DefaultModels = []string{
	"gemini-2.5-flash",
	"gemini-2.5-flash-lite",
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-2.5-pro",
}

// Ensure Provider implements unscraper.CompleterProvider at compile time.
var _ unscraper.CompleterProvider = (*Provider)(nil)

// Provider creates Gemini completers.
type Provider struct {
	baseURL    string
	defaultKey string
	models     []string
}

// Option configures a Provider.
type Option func(*Provider)

// WithBaseURL routes requests to a custom endpoint.
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
	p := &Provider{models: DefaultModels}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewCompleter connects a genai client with apiKey, or with the default key
// when apiKey is empty.
func (p *Provider) NewCompleter(ctx context.Context, apiKey string) (unscraper.Completer, error) {
	if apiKey == "" {
		apiKey = p.defaultKey
	}
	if apiKey == "" {
		return nil, unscraper.Errorf(unscraper.EUNAUTHORIZED, "An API key is required. Provide one or set GEMINI_API_KEY.")
	}

	config := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if p.baseURL != "" {
		config.HTTPOptions = genai.HTTPOptions{BaseURL: p.baseURL}
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, unscraper.Errorf(unscraper.EUNAUTHORIZED, "failed to connect to Gemini API: %s", err)
	}
	return NewCompleter(client), nil
}

// Models returns the model rotation pool.
func (p *Provider) Models() []string {
	return p.models
}

// Ensure Completer implements unscraper.Completer at compile time.
var _ unscraper.Completer = (*Completer)(nil)

// Completer sends single-turn generation requests to Gemini.
type Completer struct {
	client *genai.Client
}

// NewCompleter creates a new Completer.
func NewCompleter(client *genai.Client) *Completer {
	return &Completer{client: client}
}

// Complete returns the generated text.
func (c *Completer) Complete(ctx context.Context, req unscraper.CompletionRequest) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx, req.Model,
		[]*genai.Content{{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: req.User}},
		}},
		BuildConfig(req),
	)
	if err != nil {
		return "", ClassifyError(err)
	}
	if result == nil {
		return "", unscraper.Errorf(unscraper.EPROVIDER, "API Error: gemini returned nil result")
	}
	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for a completion request.
func BuildConfig(req unscraper.CompletionRequest) *genai.GenerateContentConfig {
	temp := float32(req.Temperature)
	config := &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	return config
}
