package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/MaximilianoIS/EconDecode/internal/extract"
	"github.com/MaximilianoIS/EconDecode/internal/services/insights"
	"github.com/MaximilianoIS/EconDecode/internal/services/stocks"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type snapshotFetcher interface {
	Snapshot(ctx context.Context, ticker string) (*stocks.Snapshot, string, error)
}

// InsightsHandler serves the AI-driven company endpoints: watched-company
// profiles and product image analysis.
type InsightsHandler struct {
	insights *insights.Service
	stocks   snapshotFetcher
}

func NewInsightsHandler(svc *insights.Service, stocks snapshotFetcher) *InsightsHandler {
	return &InsightsHandler{insights: svc, stocks: stocks}
}

func (h *InsightsHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/company_profile", h.CompanyProfile)
	r.Post("/api/analyze_product_image", h.AnalyzeProductImage)
}

type companyProfileRequest struct {
	CompanyName string `json:"company_name"`
}

type companyProfileResponse struct {
	CompanyName    string                 `json:"company_name"`
	TickerSymbol   string                 `json:"ticker_symbol"`
	LogoURL        *string                `json:"logo_url"`
	StockData      *stocks.Snapshot       `json:"stock_data"`
	StockError     *string                `json:"stock_error"`
	ProfileDetails *insights.WatchedBrief `json:"profile_details"`
}

func (h *InsightsHandler) CompanyProfile(w http.ResponseWriter, r *http.Request) {
	if h.insights == nil {
		respondError(w, http.StatusServiceUnavailable, "AI features unavailable.")
		return
	}

	var req companyProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Company name needed.")
		return
	}
	if req.CompanyName == "" {
		respondError(w, http.StatusBadRequest, "Company name cannot be empty.")
		return
	}

	log.Info().Str("company", req.CompanyName).Msg("Fetching watched company profile")

	ticker := h.insights.TickerFor(r.Context(), req.CompanyName)
	snap, stockErr := h.lookupStock(r.Context(), ticker)

	respondJSON(w, http.StatusOK, companyProfileResponse{
		CompanyName:    req.CompanyName,
		TickerSymbol:   ticker,
		LogoURL:        h.insights.LogoURL(r.Context(), req.CompanyName),
		StockData:      snap,
		StockError:     stockErr,
		ProfileDetails: h.insights.WatchedBrief(r.Context(), req.CompanyName, snap),
	})
}

type imageAnalysisResponse struct {
	IdentifiedProduct string                   `json:"identified_product"`
	IdentifiedCompany string                   `json:"identified_company"`
	TickerSymbol      string                   `json:"ticker_symbol"`
	LogoURL           *string                  `json:"logo_url"`
	StockData         *stocks.Snapshot         `json:"stock_data"`
	StockError        *string                  `json:"stock_error"`
	ProfileDetails    *insights.CompanyProfile `json:"profile_details"`
}

func (h *InsightsHandler) AnalyzeProductImage(w http.ResponseWriter, r *http.Request) {
	if h.insights == nil {
		respondError(w, http.StatusServiceUnavailable, "AI model for image analysis is not available.")
		return
	}
	if !h.insights.SupportsImages() {
		respondError(w, http.StatusServiceUnavailable, "Image analysis requires a multimodal AI model. Current model may not support it.")
		return
	}

	file, header, err := r.FormFile("product_image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No image file found in request.")
		return
	}
	defer file.Close()
	if header.Filename == "" {
		respondError(w, http.StatusBadRequest, "No image selected.")
		return
	}

	image, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to read uploaded image.")
		return
	}
	mimeType := http.DetectContentType(image)
	if !strings.HasPrefix(mimeType, "image/") {
		respondError(w, http.StatusBadRequest, "Invalid or unsupported image file format.")
		return
	}

	product, company, err := h.insights.IdentifyProduct(r.Context(), image, mimeType)
	if err != nil {
		var blocked *insights.BlockedError
		if errors.As(err, &blocked) {
			respondError(w, http.StatusBadRequest, "Image analysis blocked by AI safety ("+blocked.Reason+").")
			return
		}
		log.Error().Err(err).Msg("Product image analysis failed")
		respondError(w, http.StatusInternalServerError, "An unexpected server error occurred during image analysis: "+err.Error())
		return
	}

	log.Info().Str("product", product).Str("company", company).Msg("Identified product image")

	if strings.EqualFold(company, extract.NameUnknown) {
		respondJSON(w, http.StatusNotFound, map[string]string{
			"error":              "Could not definitively identify the parent company.",
			"identified_product": product,
			"identified_company": extract.NameUnknown,
		})
		return
	}

	ticker := h.insights.TickerFor(r.Context(), company)
	snap, stockErr := h.lookupStock(r.Context(), ticker)
	stockSummary := insights.StockSummaryLine(snap, deref(stockErr))

	respondJSON(w, http.StatusOK, imageAnalysisResponse{
		IdentifiedProduct: product,
		IdentifiedCompany: company,
		TickerSymbol:      ticker,
		LogoURL:           h.insights.LogoURL(r.Context(), company),
		StockData:         snap,
		StockError:        stockErr,
		ProfileDetails:    h.insights.CompanyProfile(r.Context(), company, stockSummary, snap),
	})
}

// lookupStock resolves a ticker to a snapshot, skipping the lookup entirely
// for sentinel tickers. The returned error string is nil when nothing went
// wrong or when no lookup was attempted.
func (h *InsightsHandler) lookupStock(ctx context.Context, ticker string) (*stocks.Snapshot, *string) {
	upper := strings.ToUpper(ticker)
	if ticker == "" || upper == extract.TickerPrivate || upper == extract.TickerUnknown || upper == "N/A" {
		return nil, nil
	}

	snap, note, err := h.stocks.Snapshot(ctx, ticker)
	if err != nil {
		msg := err.Error()
		return nil, &msg
	}
	if note != "" {
		return snap, &note
	}
	return snap, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
