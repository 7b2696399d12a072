// Package gemini adapts Google's genai SDK to assistant.Completer.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pazaryeri/internal/assistant"
	"pazaryeri/internal/config"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"
)

// APIError is a non-2xx reply from the Gemini API.
type APIError struct {
	Code    int
	Status  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini: status %d %s: %s", e.Code, e.Status, e.Message)
}

func (e *APIError) HTTPStatus() int {
	return e.Code
}

type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewClient builds a Gemini API client. baseURL is empty in production.
func NewClient(ctx context.Context, apiKey, model, baseURL string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, eris.Wrap(config.ErrMissingCredential, "GEMINI_API_KEY is not set")
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, eris.Wrap(err, "create genai client")
	}

	return &Client{client: client, model: model, timeout: timeout}, nil
}

// Complete implements assistant.Completer.
func (c *Client) Complete(ctx context.Context, p assistant.Prompt) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(p.Temperature)),
		MaxOutputTokens: int32(p.MaxTokens),
	}
	if p.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(p.System, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(p.User), cfg)
	if err != nil {
		if apiErr := asAPIError(err); apiErr != nil {
			return "", apiErr
		}
		return "", eris.Wrap(err, "gemini generate content")
	}
	return strings.TrimSpace(resp.Text()), nil
}

func asAPIError(err error) *APIError {
	var v genai.APIError
	if errors.As(err, &v) {
		return &APIError{Code: v.Code, Status: v.Status, Message: v.Message}
	}
	var p *genai.APIError
	if errors.As(err, &p) && p != nil {
		return &APIError{Code: p.Code, Status: p.Status, Message: p.Message}
	}
	return nil
}
