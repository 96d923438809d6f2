package oracle

import (
	"context"
	"errors"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/lorehaven/loregraph/internal/fault"
)

// ClaudeClient implements Client against the Anthropic messages API.
type ClaudeClient struct {
	client     *anthropic.Client
	model      string
	keyMissing bool
}

func NewClaudeClient(apiKey, model, baseURL string) *ClaudeClient {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &ClaudeClient{
		client:     anthropic.NewClient(apiKey, opts...),
		model:      model,
		keyMissing: apiKey == "",
	}
}

func (c *ClaudeClient) Complete(ctx context.Context, prompt, system string, opts Options) (string, error) {
	if c.keyMissing {
		return "", errKeyMissing("claude")
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	temp := opts.Temperature

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:  anthropic.Model(c.model),
		System: system,
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(prompt),
				},
			},
		},
		MaxTokens:   maxTokens,
		Temperature: &temp,
	})
	if err != nil {
		var reqErr *anthropic.RequestError
		if errors.As(err, &reqErr) {
			return "", classifyStatus(reqErr.StatusCode, err)
		}
		var apiErr *anthropic.APIError
		if errors.As(err, &apiErr) {
			switch string(apiErr.Type) {
			case "rate_limit_error", "overloaded_error", "api_error", "timeout_error":
				return "", fault.Transient(fault.OracleAPIError, err, "oracle request failed: %s", apiErr.Message)
			default:
				return "", fault.Wrap(fault.OracleAPIError, err, "oracle request failed: %s", apiErr.Message)
			}
		}
		return "", classifyTransport(err)
	}

	if len(resp.Content) == 0 || resp.Content[0].Text == nil || *resp.Content[0].Text == "" {
		return "", fault.New(fault.OracleResponseInvalid, "oracle response contained no text content")
	}
	return *resp.Content[0].Text, nil
}
