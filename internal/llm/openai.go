package llm

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rotisserie/eris"
)

// openAIClient implements Client using the official openai-go SDK. Groq
// exposes an OpenAI-compatible API, so the same client serves both backends
// with only the base URL differing.
type openAIClient struct {
	client openai.Client
}

func newOpenAIClient(apiKey, baseURL string) Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &openAIClient{client: openai.NewClient(opts...)}
}

func (c *openAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(req.MaxTokens),
	})
	if err != nil {
		return "", eris.Wrap(err, "llm: chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", eris.New("llm: completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
