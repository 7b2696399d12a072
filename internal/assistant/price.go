package assistant

import (
	"context"

	"pazaryeri/internal/config"
	"pazaryeri/internal/pricing"

	"github.com/rotisserie/eris"
)

// AIPriceEstimator asks the completion model for a price range.
type AIPriceEstimator struct {
	completer Completer
}

func NewAIPriceEstimator(c Completer) *AIPriceEstimator {
	return &AIPriceEstimator{completer: c}
}

// EstimatePrice returns a zero Range when the answer holds no number.
func (a *AIPriceEstimator) EstimatePrice(ctx context.Context, req pricing.Request) (pricing.Range, error) {
	if a.completer == nil {
		return pricing.Range{}, eris.Wrap(config.ErrMissingCredential, "no completion backend configured")
	}

	text, err := a.completer.Complete(ctx, Prompt{
		System:      systemPrompt,
		User:        pricePrompt(req),
		Temperature: 0.7,
		MaxTokens:   100,
	})
	if err != nil {
		return pricing.Range{}, err
	}

	r, ok := pricing.ParseAIRange(text)
	if !ok {
		return pricing.Range{}, nil
	}
	return r, nil
}
