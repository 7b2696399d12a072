// Package assistant implements the AI listing helper: title, description
// and text suggestions plus the AI leg of the price estimator.
package assistant

import "context"

// Prompt is one single-turn completion request.
type Prompt struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Completer is a plain (non-search) language model.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// StatusError is implemented by completion errors that carry an HTTP status.
type StatusError interface {
	error
	HTTPStatus() int
}
