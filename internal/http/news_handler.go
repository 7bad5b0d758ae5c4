package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/MaximilianoIS/EconDecode/internal/services/news"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type newsFetcher interface {
	Configured() bool
	Fetch(ctx context.Context, feedType string, page, pageSize int) ([]news.Article, int, error)
}

// NewsHandler serves the headline feed backed by NewsAPI.
type NewsHandler struct {
	svc newsFetcher
}

func NewNewsHandler(svc newsFetcher) *NewsHandler {
	return &NewsHandler{svc: svc}
}

func (h *NewsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/news", h.GetNews)
}

type newsResponse struct {
	Status       string         `json:"status"`
	Message      string         `json:"message,omitempty"`
	TotalResults int            `json:"totalResults"`
	Articles     []news.Article `json:"articles"`
	Page         int            `json:"page,omitempty"`
}

func (h *NewsHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Configured() {
		respondJSON(w, http.StatusInternalServerError, newsResponse{
			Status:   "error",
			Message:  "News API key not configured.",
			Articles: []news.Article{},
		})
		return
	}

	feedType := r.URL.Query().Get("type")
	if feedType == "" {
		feedType = news.FeedLocal
	}
	if feedType != news.FeedLocal && feedType != news.FeedGlobal {
		respondJSON(w, http.StatusBadRequest, newsResponse{
			Status:   "error",
			Message:  "Invalid news type specified.",
			Articles: []news.Article{},
		})
		return
	}

	page, pageSize, err := paginationParams(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, newsResponse{
			Status:   "error",
			Message:  "Invalid page or pageSize parameters.",
			Articles: []news.Article{},
		})
		return
	}

	articles, total, err := h.svc.Fetch(r.Context(), feedType, page, pageSize)
	if err != nil {
		log.Error().Err(err).Str("type", feedType).Msg("Failed to fetch news")
		status := http.StatusInternalServerError
		message := "Failed to fetch news from provider."
		var apiErr *news.APIError
		switch {
		case errors.Is(err, news.ErrTimeout):
			status = http.StatusGatewayTimeout
			message = "The request to the news provider timed out."
		case errors.As(err, &apiErr):
			message = apiErr.Message
		}
		respondJSON(w, status, newsResponse{
			Status:   "error",
			Message:  message,
			Articles: []news.Article{},
		})
		return
	}

	respondJSON(w, http.StatusOK, newsResponse{
		Status:       "ok",
		TotalResults: total,
		Articles:     articles,
		Page:         page,
	})
}

func paginationParams(r *http.Request) (page, pageSize int, err error) {
	page = 1
	pageSize = news.DefaultPageSize

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, err
		}
	}
	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		pageSize, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, err
		}
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = news.DefaultPageSize
	}
	if pageSize > news.MaxPageSize {
		pageSize = news.MaxPageSize
	}
	return page, pageSize, nil
}
