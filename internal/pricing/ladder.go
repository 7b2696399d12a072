package pricing

import (
	"math"
	"strconv"
	"strings"

	"pazaryeri/internal/config"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	RuleWeb    = "web"
	RuleHybrid = "hybrid"
	RuleAI     = "ai"
	RuleSite   = "site"
)

// Inputs are the estimates gathered for one request. A nil Web or a zero
// average means that source produced nothing.
type Inputs struct {
	Condition string

	Web       *Range
	WebSource string

	SiteAvg   float64
	SiteCount int

	AIAvg float64
}

// Decision is the resolved price suggestion.
type Decision struct {
	Price       float64 `json:"price"`
	Rule        string  `json:"rule"`
	Multiplier  float64 `json:"multiplier"`
	Condition   string  `json:"condition"`
	Explanation string  `json:"result"`
}

type rule struct {
	name    string
	applies func(in Inputs) bool
	base    func(in Inputs, p config.Pricing) float64
	explain func(pr *message.Printer, in Inputs, d Decision) string
}

// rules is evaluated top to bottom; the first rule that applies wins.
var rules = []rule{
	{
		name:    RuleWeb,
		applies: func(in Inputs) bool { return in.Web != nil && in.Web.Avg > 0 },
		base:    func(in Inputs, _ config.Pricing) float64 { return in.Web.Avg },
		explain: func(pr *message.Printer, in Inputs, d Decision) string {
			var b strings.Builder
			b.WriteString(pr.Sprintf("🌐 Güncel Piyasa Verisi (%s):\n\n", in.WebSource))
			b.WriteString(pr.Sprintf("📊 Piyasa Fiyat Aralığı: %s - %s ₺\n", tl(pr, in.Web.Min), tl(pr, in.Web.Max)))
			b.WriteString(pr.Sprintf("📈 Ortalama: %s ₺\n", tl(pr, in.Web.Avg)))
			b.WriteString(conditionLine(d))
			b.WriteString(pr.Sprintf("💰 Önerilen Satış Fiyatı: %s ₺", tl(pr, d.Price)))
			if in.SiteCount > 0 {
				b.WriteString(pr.Sprintf("\n\nℹ️ Sitemizdeki benzer ilanlar: %s ₺ (%d ilan)", tl(pr, in.SiteAvg), in.SiteCount))
			}
			return b.String()
		},
	},
	{
		name:    RuleHybrid,
		applies: func(in Inputs) bool { return in.SiteCount > 0 && in.AIAvg > 0 },
		base: func(in Inputs, p config.Pricing) float64 {
			return in.AIAvg*p.AIWeight + in.SiteAvg*p.SiteWeight
		},
		explain: func(pr *message.Printer, in Inputs, d Decision) string {
			return "🎯 Hibrit Hesaplama:\n\n" +
				pr.Sprintf("📊 Site Ortalaması: %s ₺ (%d ilan)\n", tl(pr, in.SiteAvg), in.SiteCount) +
				pr.Sprintf("🤖 AI Piyasa Tahmini: %s ₺\n", tl(pr, in.AIAvg)) +
				conditionLine(d) +
				pr.Sprintf("💰 Önerilen Fiyat: %s ₺", tl(pr, d.Price))
		},
	},
	{
		name:    RuleAI,
		applies: func(in Inputs) bool { return in.AIAvg > 0 },
		base:    func(in Inputs, _ config.Pricing) float64 { return in.AIAvg },
		explain: func(pr *message.Printer, in Inputs, d Decision) string {
			return "🤖 AI Piyasa Tahmini:\n\n" +
				pr.Sprintf("📊 Piyasa Fiyatı: %s ₺\n", tl(pr, in.AIAvg)) +
				conditionLine(d) +
				pr.Sprintf("💰 Önerilen Fiyat: %s ₺\n\n", tl(pr, d.Price)) +
				"ℹ️ Sitede henüz benzer ilan yok, sadece piyasa verisi kullanıldı."
		},
	},
	{
		name:    RuleSite,
		applies: func(in Inputs) bool { return in.SiteCount > 0 },
		base:    func(in Inputs, _ config.Pricing) float64 { return in.SiteAvg },
		explain: func(pr *message.Printer, in Inputs, d Decision) string {
			return "📊 Site Verisi:\n\n" +
				pr.Sprintf("📊 Site Ortalaması: %s ₺ (%d ilan)\n", tl(pr, in.SiteAvg), in.SiteCount) +
				conditionLine(d) +
				pr.Sprintf("💰 Önerilen Fiyat: %s ₺", tl(pr, d.Price))
		},
	},
}

// Resolve applies the first matching rule and the condition multiplier.
func Resolve(p config.Pricing, in Inputs) (Decision, error) {
	m, label := Multiplier(p, in.Condition)
	pr := message.NewPrinter(language.Turkish)

	for _, r := range rules {
		if !r.applies(in) {
			continue
		}
		d := Decision{
			Price:      math.Round(r.base(in, p) * m),
			Rule:       r.name,
			Multiplier: m,
			Condition:  label,
		}
		d.Explanation = r.explain(pr, in, d)
		return d, nil
	}
	return Decision{}, ErrInsufficientData
}

func conditionLine(d Decision) string {
	return "⚙️ Durum: " + d.Condition + " (×" + strconv.FormatFloat(d.Multiplier, 'f', -1, 64) + ")\n\n"
}

// tl formats a lira amount with Turkish digit grouping.
func tl(pr *message.Printer, v float64) string {
	return pr.Sprintf("%d", int64(math.Round(v)))
}
