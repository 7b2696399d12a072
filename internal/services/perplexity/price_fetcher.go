package perplexity

import (
	"context"
	"fmt"

	"pazaryeri/internal/pricing"
)

const (
	searchSystemPrompt  = "Sen bir fiyat araştırma uzmanısın. Türkiye'deki sahibinden.com, arabam.com, letgo gibi sitelerden güncel 2.el fiyatları araştırıyorsun. SADECE sayısal fiyat aralığı ver, başka hiçbir şey yazma."
	refreshSystemPrompt = "Sen bir fiyat araştırma uzmanısın. SADECE sayısal fiyat aralığı ver."
)

// PriceFetcher asks Perplexity for current second-hand prices.
type PriceFetcher struct {
	client       *Client
	model        string
	refreshModel string
	domains      []string
}

func NewPriceFetcher(client *Client, model, refreshModel string, domains []string) *PriceFetcher {
	return &PriceFetcher{
		client:       client,
		model:        model,
		refreshModel: refreshModel,
		domains:      domains,
	}
}

// FetchPrice is the interactive lookup: any site, results of the last month.
func (f *PriceFetcher) FetchPrice(ctx context.Context, title, category string) (*pricing.WebAnswer, error) {
	prompt := fmt.Sprintf(`"%s" (%s) için Türkiye'de sahibinden.com, arabam.com ve letgo'daki güncel 2.el satış fiyatları nedir?

ÖNEMLI:
- Sadece minimum ve maksimum fiyatı yaz
- Format: XXXXXX-YYYYYY (örnek: 950000-1050000)
- TL, ₺, virgül, nokta gibi işaretler kullanma
- Sadece rakam ve tire kullan
- Başka açıklama ekleme

Örnek yanıt: 950000-1050000`, title, category)

	return f.ask(ctx, ChatRequest{
		Model: f.model,
		Messages: []Message{
			{Role: "system", Content: searchSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:         0.1,
		MaxTokens:           100,
		ReturnCitations:     true,
		SearchRecencyFilter: "month",
	})
}

// RefreshPrice is the scheduled lookup: marketplace domains only, last week.
func (f *PriceFetcher) RefreshPrice(ctx context.Context, title string) (*pricing.WebAnswer, error) {
	prompt := fmt.Sprintf(`"%s" için Türkiye'de güncel satış fiyatları?

KURALLAR:
- Format: XXXXXX-YYYYYY
- Sadece rakam ve tire

Örnek: 25000-35000`, title)

	return f.ask(ctx, ChatRequest{
		Model: f.refreshModel,
		Messages: []Message{
			{Role: "system", Content: refreshSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:         0.1,
		MaxTokens:           150,
		SearchMode:          "web",
		WebSearchOptions:    &WebSearchOptions{SearchContextSize: "high"},
		SearchDomainFilter:  f.domains,
		SearchRecencyFilter: "week",
	})
}

func (f *PriceFetcher) ask(ctx context.Context, req ChatRequest) (*pricing.WebAnswer, error) {
	resp, raw, err := f.client.Chat(ctx, req)
	if err != nil {
		return nil, err
	}

	ans := &pricing.WebAnswer{Text: resp.Content(), Raw: string(raw)}
	if len(resp.SearchResults) > 0 {
		for _, r := range resp.SearchResults {
			ans.Hits = append(ans.Hits, pricing.SearchHit{URL: r.URL, Date: r.Date})
		}
	} else {
		for _, u := range resp.Citations {
			ans.Hits = append(ans.Hits, pricing.SearchHit{URL: u})
		}
	}
	return ans, nil
}
