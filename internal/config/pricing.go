package config

import (
	"math"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// SourceSite maps a URL fragment to a display name for snapshot provenance.
type SourceSite struct {
	Match string `yaml:"match"`
	Name  string `yaml:"name"`
}

// Pricing holds the tables and knobs of the price estimator and refresher.
type Pricing struct {
	DefaultCondition  string             `yaml:"default_condition"`
	ConditionFactors  map[string]float64 `yaml:"condition_factors"`
	DefaultMultiplier float64            `yaml:"default_multiplier"`

	CategoryTTLDays map[string]int `yaml:"category_ttl_days"`
	DefaultTTLDays  int            `yaml:"default_ttl_days"`

	AIWeight   float64 `yaml:"ai_weight"`
	SiteWeight float64 `yaml:"site_weight"`

	// Minimum digit count for numbers in search answers.
	MinDigits int `yaml:"min_digits"`

	StaleScanLimit     int          `yaml:"stale_scan_limit"`
	MaxRefreshPerRun   int          `yaml:"max_refresh_per_run"`
	PriorityQueryCount int64        `yaml:"priority_query_count"`
	RefreshDelayMs     int          `yaml:"refresh_delay_ms"`
	EvictAfterDays     int          `yaml:"evict_after_days"`
	CostPerCall        float64      `yaml:"cost_per_call"`
	RefreshDomains     []string     `yaml:"refresh_domains"`
	SourceSites        []SourceSite `yaml:"source_sites"`
}

func DefaultPricing() Pricing {
	return Pricing{
		DefaultCondition: "İyi Durumda",
		ConditionFactors: map[string]float64{
			"Sıfır":          1.0,
			"Az Kullanılmış": 0.85,
			"İyi Durumda":    0.70,
			"Orta Durumda":   0.55,
		},
		DefaultMultiplier: 0.70,

		CategoryTTLDays: map[string]int{
			"Elektronik":      7,
			"Otomotiv":        14,
			"Emlak":           30,
			"Moda & Aksesuar": 7,
			"Ev & Yaşam":      14,
			"Spor & Outdoor":  14,
			"Kitap & Hobi":    30,
			"Mobilya":         21,
			"Diğer":           14,
		},
		DefaultTTLDays: 14,

		AIWeight:   0.6,
		SiteWeight: 0.4,

		MinDigits: 5,

		StaleScanLimit:     50,
		MaxRefreshPerRun:   20,
		PriorityQueryCount: 5,
		RefreshDelayMs:     1000,
		EvictAfterDays:     30,
		CostPerCall:        0.012,
		RefreshDomains: []string{
			"sahibinden.com",
			"arabam.com",
			"letgo.com",
			"hepsiburada.com",
			"trendyol.com",
		},
		SourceSites: []SourceSite{
			{Match: "sahibinden", Name: "Sahibinden"},
			{Match: "hepsiburada", Name: "Hepsiburada"},
			{Match: "trendyol", Name: "Trendyol"},
			{Match: "arabam", Name: "Arabam"},
		},
	}
}

// LoadFile overlays the YAML file at path onto p. Keys absent from the file keep their current values.
func (p *Pricing) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrap(err, "read pricing file")
	}
	return p.Merge(data)
}

func (p *Pricing) Merge(data []byte) error {
	var override Pricing
	if err := yaml.Unmarshal(data, &override); err != nil {
		return eris.Wrap(err, "parse pricing yaml")
	}

	if override.DefaultCondition != "" {
		p.DefaultCondition = override.DefaultCondition
	}
	for k, v := range override.ConditionFactors {
		if v > 0 && v <= 1 {
			p.ConditionFactors[k] = v
		}
	}
	if override.DefaultMultiplier > 0 && override.DefaultMultiplier <= 1 {
		p.DefaultMultiplier = override.DefaultMultiplier
	}
	for k, v := range override.CategoryTTLDays {
		if v > 0 {
			p.CategoryTTLDays[k] = v
		}
	}
	if override.DefaultTTLDays > 0 {
		p.DefaultTTLDays = override.DefaultTTLDays
	}
	if override.AIWeight > 0 || override.SiteWeight > 0 {
		if math.Abs(override.AIWeight+override.SiteWeight-1) > 1e-9 {
			return eris.Errorf("ai_weight + site_weight must be 1, got %.2f", override.AIWeight+override.SiteWeight)
		}
		p.AIWeight, p.SiteWeight = override.AIWeight, override.SiteWeight
	}
	if override.MinDigits > 0 {
		p.MinDigits = override.MinDigits
	}
	if override.StaleScanLimit > 0 {
		p.StaleScanLimit = override.StaleScanLimit
	}
	if override.MaxRefreshPerRun > 0 {
		p.MaxRefreshPerRun = override.MaxRefreshPerRun
	}
	if override.PriorityQueryCount > 0 {
		p.PriorityQueryCount = override.PriorityQueryCount
	}
	if override.RefreshDelayMs > 0 {
		p.RefreshDelayMs = override.RefreshDelayMs
	}
	if override.EvictAfterDays > 0 {
		p.EvictAfterDays = override.EvictAfterDays
	}
	if override.CostPerCall > 0 {
		p.CostPerCall = override.CostPerCall
	}
	if len(override.RefreshDomains) > 0 {
		p.RefreshDomains = override.RefreshDomains
	}
	if len(override.SourceSites) > 0 {
		p.SourceSites = override.SourceSites
	}
	return nil
}
