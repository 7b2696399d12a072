// Package openai is a minimal chat-completions client.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pazaryeri/internal/assistant"
	"pazaryeri/internal/config"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
)

const DefaultBaseURL = "https://api.openai.com/v1"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// APIError is a non-2xx reply.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai: status %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *resty.Client
}

func NewClient(apiKey, model string, timeout time.Duration) *Client {
	client := resty.New()
	client.SetTimeout(timeout)

	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: DefaultBaseURL,
		client:  client,
	}
}

func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Complete implements assistant.Completer.
func (c *Client) Complete(ctx context.Context, p assistant.Prompt) (string, error) {
	if c.apiKey == "" {
		return "", eris.Wrap(config.ErrMissingCredential, "OPENAI_API_KEY is not set")
	}

	var messages []chatMessage
	if p.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: p.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: p.User})

	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(chatRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: p.Temperature,
			MaxTokens:   p.MaxTokens,
		}).
		Post(c.baseURL + "/chat/completions")
	if err != nil {
		return "", eris.Wrap(err, "openai request")
	}
	if resp.IsError() {
		return "", &APIError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	var out chatResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", eris.Wrap(err, "decode openai response")
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
