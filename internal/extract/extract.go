// Package extract turns free-text model output into typed fields using
// ordered pattern rules with explicit fallback values. Every function is
// deterministic and total: malformed input degrades to a sentinel or
// placeholder, never to a missing field.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Sentinels used in place of real values.
const (
	TickerPrivate = "PRIVATE"
	TickerUnknown = "UNKNOWN"
	NameUnknown   = "Unknown"
)

// BareProductMaxLen is the length under which a reply that ignored the
// requested "Product: X | Company: Y" format is assumed to be a bare
// product name rather than a general description.
const BareProductMaxLen = 50

// maxCleanTickerLen is the longest reply still taken verbatim as a
// ticker; anything longer means the model added commentary.
const maxCleanTickerLen = 10

var (
	tickerPattern  = regexp.MustCompile(`\b([A-Z0-9]{1,6}(\.[A-Z]{1,2})?)\b`)
	productPattern = regexp.MustCompile(`(?i)Product:\s*(.*?)\s*\|`)
	companyPattern = regexp.MustCompile(`(?i)Company:\s*(.*?)\s*$`)
)

// tickerNoise lists words a verbose reply tends to wrap around the
// symbol ("The ticker is AAPL, a great stock!"). They all fit the
// ticker pattern, so candidate matches are filtered against this set.
var tickerNoise = map[string]bool{
	"A": true, "AN": true, "THE": true, "IS": true, "ARE": true,
	"IT": true, "ITS": true, "OF": true, "FOR": true, "ON": true,
	"AS": true, "AND": true, "OR": true, "TICKER": true, "SYMBOL": true,
	"STOCK": true, "SHARES": true, "TRADED": true, "TRADES": true,
	"UNDER": true, "GREAT": true, "THIS": true, "THAT": true,
}

// Ticker extracts a stock ticker symbol from a model reply. The result
// is always non-empty: a real-looking symbol, TickerPrivate, or
// TickerUnknown.
func Ticker(text string) string {
	trimmed := strings.TrimSpace(text)
	upper := strings.ToUpper(trimmed)
	if upper == "" {
		return TickerUnknown
	}
	if strings.Contains(upper, TickerPrivate) {
		return TickerPrivate
	}
	if strings.ContainsAny(upper, " \t\n") || len(upper) > maxCleanTickerLen {
		// The model added commentary; recover the first token that
		// looks like a ticker (AAPL, ADS.DE, 220630.KQ). Searching the
		// original casing keeps mixed-case prose from matching; the
		// noise set covers shouted replies, and lone capitals like the
		// "I" in "I am not sure" are never taken as a symbol.
		for _, m := range tickerPattern.FindAllStringSubmatch(trimmed, -1) {
			if tickerNoise[m[1]] {
				continue
			}
			if len(m[1]) == 1 && m[1][0] >= 'A' && m[1][0] <= 'Z' {
				continue
			}
			return m[1]
		}
		return TickerUnknown
	}
	return upper
}

// ProductCompany parses a reply expected in the form
// "Product: <P> | Company: <C>". Each side resolves to NameUnknown when
// absent or empty. A short reply that ignored the format entirely is
// treated as a bare product name.
func ProductCompany(text string) (product, company string) {
	product, company = NameUnknown, NameUnknown
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return product, company
	}

	if m := productPattern.FindStringSubmatch(trimmed); m != nil && m[1] != "" {
		product = m[1]
	}
	if m := companyPattern.FindStringSubmatch(trimmed); m != nil && m[1] != "" {
		company = m[1]
	}

	if product == NameUnknown && company == NameUnknown &&
		!strings.Contains(trimmed, NameUnknown) && len(trimmed) < BareProductMaxLen {
		product = trimmed
	}
	return product, company
}

// ArticleBrief is the parsed form of a sectioned article analysis.
type ArticleBrief struct {
	Summary     string `json:"summary"`
	GenZ        string `json:"genz"`
	Impact      string `json:"impact"`
	ImpactLevel int    `json:"impactLevel"`
}

// sectionRule binds one section marker to its capture pattern and the
// placeholder used when the marker is missing.
type sectionRule struct {
	pattern  *regexp.Regexp
	fallback string
	assign   func(*ArticleBrief, string)
}

func sectionPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)SECTION:\s*` + name + `\s*(.*?)\s*(?:SECTION:|\z)`)
}

var briefRules = []sectionRule{
	{
		pattern:  sectionPattern("Summary"),
		fallback: "Summary not found.",
		assign:   func(b *ArticleBrief, s string) { b.Summary = s },
	},
	{
		pattern:  sectionPattern("GenZ Translation"),
		fallback: "GenZ translation not found.",
		assign:   func(b *ArticleBrief, s string) { b.GenZ = s },
	},
	{
		pattern:  sectionPattern("Impact on Young People"),
		fallback: "Impact analysis not found.",
		assign:   func(b *ArticleBrief, s string) { b.Impact = s },
	},
}

var ratingPattern = regexp.MustCompile(`(?i)SECTION:\s*Impact Rating\s*(\d)`)

// Brief parses a four-section article analysis. Sections missing from
// the text keep fixed placeholders; a rating is accepted only as a
// single digit in [1,5], otherwise ImpactLevel stays 0.
func Brief(text string) ArticleBrief {
	var brief ArticleBrief
	for _, rule := range briefRules {
		value := rule.fallback
		if m := rule.pattern.FindStringSubmatch(text); m != nil {
			value = strings.TrimSpace(m[1])
		}
		rule.assign(&brief, value)
	}
	if m := ratingPattern.FindStringSubmatch(text); m != nil {
		if level, err := strconv.Atoi(m[1]); err == nil && level >= 1 && level <= 5 {
			brief.ImpactLevel = level
		}
	}
	return brief
}

// DefaultSignal is returned when a reply does not exactly match one of
// the five investment signals.
const DefaultSignal = "Wait"

var validSignals = []string{"Strong Buy", "Buy", DefaultSignal, "Sell", "Strong Sell"}

// Recommendation normalizes a reply against the five-phrase investment
// signal allow-list. Matching is case-insensitive and exact; anything
// else yields DefaultSignal. No partial matching, no synonyms.
func Recommendation(text string) string {
	trimmed := strings.TrimSpace(text)
	for _, s := range validSignals {
		if strings.EqualFold(trimmed, s) {
			return s
		}
	}
	return DefaultSignal
}

// Domain validates a website-domain reply. It returns the lower-cased
// domain, or "" when the model answered "unknown", added commentary, or
// produced something that cannot be a domain.
func Domain(text string) string {
	domain := strings.ToLower(strings.TrimSpace(text))
	if domain == "" || domain == "unknown" {
		return ""
	}
	if strings.ContainsAny(domain, " \t\n") || !strings.Contains(domain, ".") {
		return ""
	}
	return domain
}
