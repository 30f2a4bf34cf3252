// Package advice asks a language model for an optional one-line care tip.
// Every failure path degrades to Fallback; the daily plan never depends on
// a provider being reachable.
package advice

import (
	"context"
	"fmt"
)

// Fallback is the static line used when no provider is configured or a
// call fails.
const Fallback = "🤖 Совет недоступен — действуй по плану и по состоянию субстрата."

type Client interface {
	Advise(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	Provider     string // gemini, openai, anthropic
	GeminiKey    string
	OpenAIKey    string
	AnthropicKey string
	Model        string
}

// New builds the configured provider. An empty provider name means the
// advisory step is disabled; callers get (nil, nil) and skip it.
func New(cfg Config) (Client, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "gemini":
		return NewGeminiClient(cfg.GeminiKey, cfg.Model), nil
	case "openai":
		return NewOpenAIClient(cfg.OpenAIKey, cfg.Model), nil
	case "anthropic":
		return NewAnthropicClient(cfg.AnthropicKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown advice provider: %s", cfg.Provider)
	}
}
