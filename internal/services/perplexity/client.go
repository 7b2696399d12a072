// Package perplexity talks to the Perplexity search-augmented chat API.
package perplexity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pazaryeri/internal/config"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
)

const DefaultBaseURL = "https://api.perplexity.ai"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type WebSearchOptions struct {
	SearchContextSize string `json:"search_context_size"`
}

type ChatRequest struct {
	Model               string            `json:"model"`
	Messages            []Message         `json:"messages"`
	Temperature         float64           `json:"temperature"`
	MaxTokens           int               `json:"max_tokens"`
	ReturnCitations     bool              `json:"return_citations,omitempty"`
	SearchRecencyFilter string            `json:"search_recency_filter,omitempty"`
	SearchDomainFilter  []string          `json:"search_domain_filter,omitempty"`
	SearchMode          string            `json:"search_mode,omitempty"`
	WebSearchOptions    *WebSearchOptions `json:"web_search_options,omitempty"`
}

type SearchResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Date  string `json:"date"`
}

type ChatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Citations     []string       `json:"citations"`
	SearchResults []SearchResult `json:"search_results"`
}

// Content returns the trimmed text of the first choice.
func (r *ChatResponse) Content() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(r.Choices[0].Message.Content)
}

// APIError is a non-2xx reply.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("perplexity: status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	apiKey  string
	baseURL string
	client  *resty.Client
}

func NewClient(apiKey string, timeout time.Duration) *Client {
	client := resty.New()
	client.SetTimeout(timeout)

	return &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		client:  client,
	}
}

// WithBaseURL points the client at another host, e.g. a test server.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Chat sends one completion request and returns the decoded reply together
// with the raw body.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, []byte, error) {
	if c.apiKey == "" {
		return nil, nil, eris.Wrap(config.ErrMissingCredential, "PERPLEXITY_API_KEY is not set")
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(c.baseURL + "/chat/completions")
	if err != nil {
		return nil, nil, eris.Wrap(err, "perplexity request")
	}
	if resp.IsError() {
		return nil, resp.Body(), &APIError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	var out ChatResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, resp.Body(), eris.Wrap(err, "decode perplexity response")
	}
	return &out, resp.Body(), nil
}
