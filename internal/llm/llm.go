// Package llm selects and wraps the inference backends used for analysis.
//
// Two OpenAI-compatible backends are supported: OpenAI itself and Groq.
// Exactly one is active per process, chosen by which API key is configured,
// OpenAI taking precedence. Request shaping (endpoint, auth, model) stays
// inside this package; callers only see Complete.
package llm

import (
	"context"
	"errors"
)

// ErrNoProviderConfigured is returned by Resolve when neither backend has an
// API key configured. Callers treat this as a configuration error, never a
// retryable one.
var ErrNoProviderConfigured = errors.New("no AI provider configured: set OPENAI_API_KEY or GROQ_API_KEY")

// Models used per backend.
const (
	openAIModel = "gpt-4o"
	groqModel   = "llama-3.3-70b-versatile"

	groqBaseURL = "https://api.groq.com/openai/v1"
)

// CompletionRequest is one chat-style completion call.
type CompletionRequest struct {
	Model       string
	System      string
	User        string
	Temperature float64
	MaxTokens   int64
}

// Client exposes the single operation the analysis pipeline needs from an
// inference backend.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Provider is a resolved inference backend: an invocation handle plus the
// model identifier to request from it.
type Provider struct {
	Name   string
	Model  string
	Client Client
}

// Config carries the backend credentials, immutable after startup.
type Config struct {
	OpenAIKey string
	GroqKey   string
}

// Resolve picks the first configured backend in fixed priority order:
// OpenAI, then Groq. Configuration is immutable at runtime, so the result
// may be resolved once and reused for every analysis.
func Resolve(cfg Config) (*Provider, error) {
	if cfg.OpenAIKey != "" {
		return &Provider{
			Name:   "openai",
			Model:  openAIModel,
			Client: newOpenAIClient(cfg.OpenAIKey, ""),
		}, nil
	}
	if cfg.GroqKey != "" {
		return &Provider{
			Name:   "groq",
			Model:  groqModel,
			Client: newOpenAIClient(cfg.GroqKey, groqBaseURL),
		}, nil
	}
	return nil, ErrNoProviderConfigured
}
