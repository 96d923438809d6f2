package oracle

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lorehaven/loregraph/internal/fault"
)

// OpenAIClient implements Client against the OpenAI chat completions API or
// any OpenAI-compatible endpoint (Ollama, LM Studio, ...).
type OpenAIClient struct {
	client     *openai.Client
	model      string
	keyMissing bool
}

func NewOpenAIClient(apiKey, model, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client:     openai.NewClientWithConfig(cfg),
		model:      model,
		keyMissing: apiKey == "",
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt, system string, opts Options) (string, error) {
	if c.keyMissing {
		return "", errKeyMissing("openai")
	}

	var messages []openai.ChatCompletionMessage
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", classifyStatus(apiErr.HTTPStatusCode, err)
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", classifyStatus(reqErr.HTTPStatusCode, err)
		}
		return "", classifyTransport(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fault.New(fault.OracleResponseInvalid, "oracle response contained no completion choices")
	}
	return resp.Choices[0].Message.Content, nil
}
