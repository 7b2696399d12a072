package assistant

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"pazaryeri/internal/config"
	"pazaryeri/internal/pricing"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	ActionSuggestTitle       = "suggest_title"
	ActionSuggestDescription = "suggest_description"
	ActionImproveText        = "improve_text"
	ActionSuggestPrice       = "suggest_price"
)

var (
	ErrUnknownAction       = eris.New("unknown action")
	ErrTitleRequired       = eris.New("title required")
	ErrDescriptionRequired = eris.New("description required")
	ErrInvalidAPIKey       = eris.New("completion api key rejected")
	ErrUpstreamLimit       = eris.New("completion api rate limited")
	ErrUpstream            = eris.New("completion api failed")
)

type Request struct {
	Action      string `json:"action"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Condition   string `json:"condition"`
}

// Response is the helper's answer. Price is only set for suggest_price.
type Response struct {
	Result string   `json:"result"`
	Price  *float64 `json:"price,omitempty"`
}

type PriceSuggester interface {
	SuggestPrice(ctx context.Context, req pricing.Request) (pricing.Decision, error)
}

type Service struct {
	completer Completer
	prices    PriceSuggester
	logger    *zap.Logger
}

// NewService wires the helper. A nil completer makes every action fail with
// config.ErrMissingCredential.
func NewService(completer Completer, prices PriceSuggester, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{completer: completer, prices: prices, logger: logger}
}

func (s *Service) Handle(ctx context.Context, req Request) (*Response, error) {
	log := s.logger.With(
		zap.String("action", req.Action),
		zap.String("category", req.Category),
		zap.String("title", req.Title),
	)
	log.Info("ai assistant request", zap.String("condition", req.Condition))

	if s.completer == nil {
		log.Error("completion backend not configured")
		return nil, eris.Wrap(config.ErrMissingCredential, "no completion backend configured")
	}

	var prompt string
	switch req.Action {
	case ActionSuggestTitle:
		if utf8.RuneCountInString(strings.TrimSpace(req.Title)) < 2 {
			return nil, ErrTitleRequired
		}
		prompt = titlePrompt(req.Category, req.Title)
	case ActionSuggestDescription:
		prompt = descriptionPrompt(req.Category, req.Title)
	case ActionImproveText:
		if strings.TrimSpace(req.Description) == "" {
			return nil, ErrDescriptionRequired
		}
		prompt = improvePrompt(req.Description)
	case ActionSuggestPrice:
		return s.suggestPrice(ctx, log, req)
	default:
		return nil, eris.Wrapf(ErrUnknownAction, "action %q", req.Action)
	}

	text, err := s.completer.Complete(ctx, Prompt{
		System:      systemPrompt,
		User:        prompt,
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		log.Error("completion failed", zap.Error(err))
		return nil, upstreamError(err)
	}
	return &Response{Result: strings.TrimSpace(text)}, nil
}

func (s *Service) suggestPrice(ctx context.Context, log *zap.Logger, req Request) (*Response, error) {
	if s.prices == nil {
		return nil, eris.Wrap(config.ErrMissingCredential, "price estimator not configured")
	}
	d, err := s.prices.SuggestPrice(ctx, pricing.Request{
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		Condition:   req.Condition,
	})
	if err != nil {
		log.Warn("price suggestion failed", zap.Error(err))
		return nil, err
	}
	price := d.Price
	return &Response{Result: d.Explanation, Price: &price}, nil
}

// upstreamError maps a completion failure onto the helper's sentinels.
func upstreamError(err error) error {
	var se StatusError
	if errors.As(err, &se) {
		switch se.HTTPStatus() {
		case 401:
			return eris.Wrap(ErrInvalidAPIKey, se.Error())
		case 429:
			return eris.Wrap(ErrUpstreamLimit, se.Error())
		}
	}
	return eris.Wrap(ErrUpstream, err.Error())
}
