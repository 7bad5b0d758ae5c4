// Package insights asks the language model about companies and
// products, and normalizes its free-text replies into the typed fields
// the dashboard renders. Every chain of model calls is strictly
// sequential and request-scoped; nothing is remembered between calls.
package insights

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/MaximilianoIS/EconDecode/internal/extract"
	"github.com/MaximilianoIS/EconDecode/internal/services/stocks"
	"github.com/MaximilianoIS/EconDecode/internal/services/textgen"
)

// SignalUnavailable is the recommendation value when the model declined
// or failed to answer, as opposed to answering ambiguously.
const SignalUnavailable = "N/A"

// msgQuietInsight is rendered in place of an insight the model
// answered with nothing at all.
const msgQuietInsight = "AI is quiet on this one."

// BlockedError reports a safety block during image identification so
// the handler can surface the reason instead of a generic failure.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("content blocked by AI safety (%s)", e.Reason)
}

// Service orchestrates model prompts for company and product insights.
type Service struct {
	gen textgen.Generator
}

// NewService creates an insights service on top of a text generator.
func NewService(gen textgen.Generator) *Service {
	return &Service{gen: gen}
}

// SupportsImages reports whether the underlying provider accepts image
// prompts, which the product-analyzer endpoint requires.
func (s *Service) SupportsImages() bool { return s.gen.SupportsImages() }

// TickerFor asks the model for a company's stock ticker. Any failure —
// transport, block, empty reply — degrades to the UNKNOWN sentinel.
func (s *Service) TickerFor(ctx context.Context, company string) string {
	prompt := fmt.Sprintf(
		"What is the primary stock ticker symbol for '%s'? "+
			"Respond with ONLY the ticker (e.g., AAPL, MSFT, ADS.DE, 220630.KQ). "+
			"If private/unknown, respond 'PRIVATE'.", company)

	result, err := s.gen.Generate(ctx, prompt, nil)
	if err != nil || result.Blocked || result.Text == "" {
		log.Warn().Err(err).Str("company", company).Msg("Ticker lookup produced no usable text")
		return extract.TickerUnknown
	}

	ticker := extract.Ticker(result.Text)
	log.Info().Str("company", company).Str("ticker", ticker).Msg("Ticker resolved")
	return ticker
}

// LogoURL resolves a company logo via its primary website domain.
// Returns nil when the domain cannot be established.
func (s *Service) LogoURL(ctx context.Context, company string) *string {
	prompt := fmt.Sprintf(
		"What is the primary website domain for the company '%s'? "+
			"For example, for Starbucks, it's 'starbucks.com'. "+
			"Respond with only the domain name. If unknown, respond 'UNKNOWN'.", company)

	result, err := s.gen.Generate(ctx, prompt, nil)
	if err != nil || result.Blocked {
		log.Warn().Err(err).Str("company", company).Msg("Domain lookup failed")
		return nil
	}
	domain := extract.Domain(result.Text)
	if domain == "" {
		return nil
	}
	url := "https://logo.clearbit.com/" + domain
	return &url
}

// Recommend asks for a simplified investment signal. The three
// outcomes are kept distinct: a valid or ambiguous reply normalizes
// through the allow-list (ambiguity defaults to Wait), a safety block
// or failure yields SignalUnavailable plus a note with the reason.
func (s *Service) Recommend(ctx context.Context, company string, snap *stocks.Snapshot) (signal, note string) {
	stockInfo := "not publicly traded or stock data unavailable"
	if snap != nil && snap.Price != 0 {
		stockInfo = fmt.Sprintf("Current price: %v, Day's %% change: %v%%.", snap.Price, snap.ChangePercent)
		if snap.MonthChangePercent != nil {
			stockInfo += fmt.Sprintf(" Month's %% change: %v%%.", *snap.MonthChangePercent)
		}
	}

	prompt := fmt.Sprintf(
		"Consider the company '%s'. Stock snapshot: %s. "+
			"Based on general market sentiment, recent major news (if any you are aware of for this company), "+
			"and its typical business sector performance, provide a very brief, simplified "+
			"investment signal for a non-expert: 'Strong Buy', 'Buy', 'Wait', 'Sell', or 'Strong Sell'. "+
			"Respond with ONLY one of these five options. "+
			"This is for a general audience and not financial advice. "+
			"If unsure or the situation is very neutral, respond 'Wait'.", company, stockInfo)

	// One short phrase is all that is wanted back.
	result, err := s.gen.Generate(ctx, prompt, &textgen.Options{Temperature: 0.5, MaxTokens: 10})
	if err != nil {
		log.Error().Err(err).Str("company", company).Msg("Recommendation request failed")
		return SignalUnavailable, fmt.Sprintf("Error getting AI recommendation: %v", err)
	}
	if result.Blocked {
		log.Warn().Str("company", company).Str("reason", result.BlockReason).Msg("Recommendation blocked")
		return SignalUnavailable, fmt.Sprintf("AI content generation issue (%s).", result.BlockReason)
	}

	signal = extract.Recommendation(result.Text)
	if signal == extract.DefaultSignal && !strings.EqualFold(strings.TrimSpace(result.Text), extract.DefaultSignal) {
		log.Warn().Str("company", company).Str("raw", result.Text).Msg("Recommendation was not a standard signal, defaulting")
	}
	return signal, ""
}

// WatchedBrief is the profile payload for a watched company.
type WatchedBrief struct {
	Recommendation      string `json:"recommendation"`
	RecommendationError string `json:"recommendation_error,omitempty"`
	InvestmentNews      string `json:"investment_news"`
	PlanetImpactBrief   string `json:"planet_impact_brief"`
	SocialVibeBrief     string `json:"social_vibe_brief"`
}

// WatchedBrief gathers the short-form insights shown for a company on
// the watch list. Individual prompt failures degrade field by field.
func (s *Service) WatchedBrief(ctx context.Context, company string, snap *stocks.Snapshot) *WatchedBrief {
	brief := &WatchedBrief{}
	brief.Recommendation, brief.RecommendationError = s.Recommend(ctx, company, snap)

	opts := &textgen.Options{Temperature: 0.6, MaxTokens: 100}
	brief.InvestmentNews = s.insight(ctx, opts, fmt.Sprintf(
		"For '%s', what's 1-2 recent major news items an investor might care about "+
			"(e.g., earnings, new product, lawsuit)? Super brief, 1-2 sentences or 2-3 bullet points max. "+
			"If nothing major, say 'No big news lately'.", company))
	brief.PlanetImpactBrief = s.insight(ctx, opts, fmt.Sprintf(
		"Quick take on '%s' and the planet: 1-2 key good or bad points. "+
			"(1-2 sentences or 2-3 bullet points max).", company))
	brief.SocialVibeBrief = s.insight(ctx, opts, fmt.Sprintf(
		"'%s' social vibe: How are they with people (employees, community)? "+
			"1-2 key good or bad points. (1-2 sentences or 2-3 bullet points max).", company))
	return brief
}

// CompanyProfile is the longer-form payload for the product analyzer.
type CompanyProfile struct {
	Recommendation          string `json:"recommendation"`
	RecommendationError     string `json:"recommendation_error,omitempty"`
	BusinessSummary         string `json:"business_summary"`
	SocialVibe              string `json:"social_vibe"`
	PlanetImpact            string `json:"planet_impact"`
	CompetitorsAlternatives string `json:"competitors_alternatives"`
}

// CompanyProfile gathers the insights shown after a product has been
// traced to its parent company. stockSummary is a one-line description
// of the stock situation fed back into the summary prompt.
func (s *Service) CompanyProfile(ctx context.Context, company, stockSummary string, snap *stocks.Snapshot) *CompanyProfile {
	profile := &CompanyProfile{}
	profile.Recommendation, profile.RecommendationError = s.Recommend(ctx, company, snap)

	if stockSummary == "" {
		stockSummary = "not available/private"
	}
	opts := &textgen.Options{Temperature: 0.7, MaxTokens: 180}
	profile.BusinessSummary = s.insight(ctx, opts, fmt.Sprintf(
		"Give a short, snappy summary of what '%s' is known for (2-3 sentences). "+
			"If public, any recent big news or stock vibe? (1-2 sentences). "+
			"Current stock info: %s.", company, stockSummary))
	profile.SocialVibe = s.insight(ctx, opts, fmt.Sprintf(
		"What's the general social vibe around '%s'? Good place to work? Fair? "+
			"Any recent buzz (good/bad)? (2-3 sentences or few bullet points)", company))
	profile.PlanetImpact = s.insight(ctx, opts, fmt.Sprintf(
		"How's '%s' doing with planet Earth? Any cool eco-friendly stuff or big oopsies? "+
			"(2-3 sentences or few bullet points)", company))
	profile.CompetitorsAlternatives = s.insight(ctx, opts, fmt.Sprintf(
		"Who are '%s's main rivals or cooler alternatives young people might check out? "+
			"(few names or 2-3 sentences)", company))
	return profile
}

// insight runs one best-effort prompt, mapping the three outcomes to
// user-visible text: reply, block notice, or fetch-error notice.
func (s *Service) insight(ctx context.Context, opts *textgen.Options, prompt string) string {
	result, err := s.gen.Generate(ctx, prompt, opts)
	if err != nil {
		return fmt.Sprintf("Error fetching this insight. (%v)", err)
	}
	if result.Blocked {
		return fmt.Sprintf("AI content issue (%s).", result.BlockReason)
	}
	if result.Text == "" {
		return msgQuietInsight
	}
	return result.Text
}

// identifyPrompt demands the exact format the product/company parser
// expects.
const identifyPrompt = "Identify the primary product and the parent company that makes this product. " +
	"Format your response strictly as: Product: [Identified Product Name] | Company: [Identified Company Name]. " +
	"If you cannot identify the product or company, use 'Unknown' for that part. " +
	"For example: Product: iPhone 15 Pro | Company: Apple. Or Product: Big Mac | Company: McDonald's. " +
	"If only product is clear: Product: Widget X | Company: Unknown. " +
	"If neither is clear: Product: Unknown | Company: Unknown."

// IdentifyProduct recognizes the product in an image and traces its
// parent company. When the first reply names the product but not the
// company, one follow-up text prompt tries to fill the company in;
// that enrichment is best-effort and its failures are swallowed.
// A safety block returns *BlockedError.
func (s *Service) IdentifyProduct(ctx context.Context, image []byte, mimeType string) (product, company string, err error) {
	result, err := s.gen.GenerateImage(ctx, identifyPrompt, image, mimeType, nil)
	if err != nil {
		return "", "", fmt.Errorf("image identification failed: %w", err)
	}
	if result.Blocked {
		return "", "", &BlockedError{Reason: result.BlockReason}
	}

	product, company = extract.ProductCompany(result.Text)
	log.Info().Str("product", product).Str("company", company).Msg("Product identified")

	if strings.EqualFold(company, extract.NameUnknown) && !strings.EqualFold(product, extract.NameUnknown) {
		if refined := s.companyForProduct(ctx, product); refined != "" {
			company = refined
		}
	}
	return product, company, nil
}

// companyForProduct is the enrichment call behind IdentifyProduct.
func (s *Service) companyForProduct(ctx context.Context, product string) string {
	prompt := fmt.Sprintf(
		"What is the primary parent company that makes the product '%s'? "+
			"Respond with ONLY the company name. If unknown, respond 'Unknown'.", product)

	result, err := s.gen.Generate(ctx, prompt, nil)
	if err != nil || result.Blocked {
		log.Warn().Err(err).Str("product", product).Msg("Fallback company identification failed")
		return ""
	}
	text := strings.TrimSpace(result.Text)
	if text == "" || strings.EqualFold(text, extract.NameUnknown) {
		return ""
	}
	log.Info().Str("product", product).Str("company", text).Msg("Company resolved via fallback prompt")
	return text
}

// StockSummaryLine renders a snapshot into the one-line stock context
// handed back to the profile prompts.
func StockSummaryLine(snap *stocks.Snapshot, note string) string {
	if snap == nil {
		if note != "" {
			return "Stock data issue: " + note
		}
		return "Company might be private or stock data unavailable."
	}
	line := fmt.Sprintf("Symbol: %s, Price: %v, Day Change %%: %v%%", snap.Symbol, snap.Price, snap.ChangePercent)
	if snap.MonthChangePercent != nil {
		line += fmt.Sprintf(", Month Change %%: %v%%", *snap.MonthChangePercent)
	}
	return line
}
