package llm

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/nikhilbhutani/docchat/internal/config"
)

type gateway struct {
	providers        map[string]Provider
	order            []string
	defaultProvider  string
	fallbackProvider string
	maxRetries       int
}

func NewGateway(cfg config.LLMConfig) Gateway {
	var providers []Provider
	if cfg.OpenAIKey != "" {
		providers = append(providers, NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL))
	}
	if cfg.AnthropicKey != "" {
		providers = append(providers, NewAnthropicProvider(cfg.AnthropicKey))
	}
	if cfg.OllamaURL != "" {
		providers = append(providers, NewOllamaProvider(cfg.OllamaURL))
	}
	return newGateway(cfg, providers...)
}

func newGateway(cfg config.LLMConfig, providers ...Provider) *gateway {
	g := &gateway{
		providers:        make(map[string]Provider, len(providers)),
		defaultProvider:  cfg.DefaultProvider,
		fallbackProvider: cfg.FallbackProvider,
		maxRetries:       max(cfg.MaxRetries, 0),
	}

	for _, p := range providers {
		g.providers[p.Name()] = p
		g.order = append(g.order, p.Name())
	}
	// The default provider's models are listed first.
	if i := slices.Index(g.order, g.defaultProvider); i > 0 {
		g.order = append([]string{g.defaultProvider}, slices.Delete(g.order, i, i+1)...)
	}
	return g
}

func (g *gateway) Provider(name string) (Provider, error) {
	p, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", name)
	}
	return p, nil
}

// resolve picks the explicit provider, then the one serving the model,
// then the default.
func (g *gateway) resolve(provider, model string) string {
	if provider != "" {
		return provider
	}
	for _, name := range g.order {
		if slices.Contains(g.providers[name].Models(), model) {
			return name
		}
	}
	return g.defaultProvider
}

func (g *gateway) SupportsModel(model string) bool {
	for _, p := range g.providers {
		if slices.Contains(p.Models(), model) {
			return true
		}
	}
	return false
}

func (g *gateway) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	providerName := g.resolve(req.Provider, req.Model)

	resp, err := g.chatWithRetry(ctx, providerName, req)
	if err != nil && g.fallbackProvider != "" && g.fallbackProvider != providerName {
		slog.Warn("primary provider failed, trying fallback",
			"primary", providerName,
			"fallback", g.fallbackProvider,
			"error", err,
		)
		return g.chatWithRetry(ctx, g.fallbackProvider, req)
	}
	return resp, err
}

func (g *gateway) chatWithRetry(ctx context.Context, providerName string, req ChatRequest) (*ChatResponse, error) {
	p, err := g.Provider(providerName)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			slog.Debug("retrying LLM call", "provider", providerName, "attempt", attempt)
		}

		resp, err := p.ChatCompletion(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	if g.maxRetries == 0 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("all retries exhausted for %s: %w", providerName, lastErr)
}

func (g *gateway) Embed(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error) {
	providerName := req.Provider
	if providerName == "" {
		providerName = g.defaultProvider
	}

	p, err := g.Provider(providerName)
	if err != nil {
		return nil, err
	}

	return p.GenerateEmbedding(ctx, req)
}

func (g *gateway) ListModels() []ModelInfo {
	var models []ModelInfo
	for _, name := range g.order {
		for _, m := range g.providers[name].Models() {
			models = append(models, ModelInfo{Provider: name, Model: m})
		}
	}
	return models
}
