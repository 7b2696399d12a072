package pricing

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Range is a price interval extracted from a model answer.
type Range struct {
	Min float64
	Max float64
	Avg float64
	// Single is set when only one number was found and the bounds were synthesized.
	Single bool
}

var (
	currencyRe  = regexp.MustCompile(`(?i)TL|₺|lira|try`)
	separatorRe = regexp.MustCompile(`[.,]`)

	aiRangeRe  = regexp.MustCompile(`(\d+(?:[.,]\d+)*)\s*[-–]\s*(\d+(?:[.,]\d+)*)`)
	aiSingleRe = regexp.MustCompile(`\d+(?:[.,]\d+)*`)
)

// RangeParser extracts MIN-MAX ranges from search answers. Numbers shorter
// than minDigits are ignored; at 5 digits model years such as 2024 and
// ranges such as 2020-2023 never match.
type RangeParser struct {
	rangeRe  *regexp.Regexp
	singleRe *regexp.Regexp
}

func NewRangeParser(minDigits int) *RangeParser {
	if minDigits < 1 {
		minDigits = 1
	}
	return &RangeParser{
		rangeRe:  regexp.MustCompile(fmt.Sprintf(`(\d{%d,})\s*[-–—]\s*(\d{%d,})`, minDigits, minDigits)),
		singleRe: regexp.MustCompile(fmt.Sprintf(`\d{%d,}`, minDigits)),
	}
}

// ParseWeb reads a search answer. Currency words and grouping separators are
// dropped first. A lone number v becomes the range 0.9v..1.1v.
func (p *RangeParser) ParseWeb(text string) (Range, bool) {
	clean := separatorRe.ReplaceAllString(currencyRe.ReplaceAllString(text, ""), "")

	if m := p.rangeRe.FindStringSubmatch(clean); m != nil {
		lo, err1 := strconv.ParseFloat(m[1], 64)
		hi, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil {
			r := newRange(lo, hi)
			return r, r.Avg > 0
		}
	}

	if m := p.singleRe.FindString(clean); m != "" {
		v, err := strconv.ParseFloat(m, 64)
		if err == nil && v > 0 {
			return Range{Min: math.Round(v * 0.9), Max: math.Round(v * 1.1), Avg: v, Single: true}, true
		}
	}
	return Range{}, false
}

// ParseAIRange reads a plain completion answer. Numbers may carry grouping
// punctuation. A lone number v becomes the range v..1.2v.
func ParseAIRange(text string) (Range, bool) {
	if m := aiRangeRe.FindStringSubmatch(text); m != nil {
		lo, err1 := parseGrouped(m[1])
		hi, err2 := parseGrouped(m[2])
		if err1 == nil && err2 == nil {
			r := newRange(lo, hi)
			return r, r.Avg > 0
		}
	}

	if m := aiSingleRe.FindString(text); m != "" {
		v, err := parseGrouped(m)
		if err == nil && v > 0 {
			return Range{Min: v, Max: v * 1.2, Avg: (v + v*1.2) / 2, Single: true}, true
		}
	}
	return Range{}, false
}

func newRange(lo, hi float64) Range {
	if lo > hi {
		lo, hi = hi, lo
	}
	return Range{Min: lo, Max: hi, Avg: (lo + hi) / 2}
}

func parseGrouped(s string) (float64, error) {
	return strconv.ParseFloat(separatorRe.ReplaceAllString(s, ""), 64)
}
