// Package news fetches dashboard headlines from NewsAPI.
package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// FeedLocal and FeedGlobal are the two supported feed types.
	FeedLocal  = "local"
	FeedGlobal = "global"

	DefaultCountry  = "us"
	DefaultPageSize = 20
	MaxPageSize     = 100 // NewsAPI cap

	globalTopic = "economy OR business OR politics relevant to economy"
)

// ErrTimeout marks an upstream timeout so the handler can answer 504.
var ErrTimeout = errors.New("request to news provider timed out")

// APIError is a non-ok status reported by NewsAPI itself.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Source identifies the publisher of an article.
type Source struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

// Article is a NewsAPI article, passed through to the dashboard
// unchanged.
type Article struct {
	Source      Source  `json:"source"`
	Author      *string `json:"author"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	URLToImage  *string `json:"urlToImage"`
	PublishedAt string  `json:"publishedAt"`
	Content     *string `json:"content"`
}

// Service fetches headlines from NewsAPI.
type Service struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// Option configures the Service.
type Option func(*Service)

// WithBaseURL overrides the NewsAPI base URL, mainly for tests.
func WithBaseURL(u string) Option {
	return func(s *Service) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) { s.client = c }
}

// NewService creates a news service.
func NewService(apiKey string, opts ...Option) *Service {
	s := &Service{
		apiKey:  apiKey,
		baseURL: "https://newsapi.org/v2",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configured reports whether an API key is present.
func (s *Service) Configured() bool { return s.apiKey != "" }

type apiResponse struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
}

// Fetch retrieves one page of headlines. feedType must be FeedLocal or
// FeedGlobal; paging values are assumed pre-clamped by the handler.
// Articles missing a title, description, url, or source name are
// dropped; totalResults is the upstream count before filtering.
func (s *Service) Fetch(ctx context.Context, feedType string, page, pageSize int) ([]Article, int, error) {
	params := url.Values{}
	params.Set("apiKey", s.apiKey)
	params.Set("language", "en")
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("page", strconv.Itoa(page))

	var endpoint string
	switch feedType {
	case FeedLocal:
		endpoint = s.baseURL + "/top-headlines"
		params.Set("country", DefaultCountry)
		params.Set("category", "business")
	case FeedGlobal:
		endpoint = s.baseURL + "/everything"
		params.Set("q", globalTopic)
		params.Set("sortBy", "relevancy")
	default:
		return nil, 0, fmt.Errorf("invalid news type %q", feedType)
	}

	log.Info().
		Str("feed", feedType).
		Int("page", page).
		Int("page_size", pageSize).
		Msg("Fetching headlines")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, 0, ErrTimeout
		}
		return nil, 0, fmt.Errorf("could not connect to news provider: %w", err)
	}
	defer resp.Body.Close()

	var data apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, 0, fmt.Errorf("news provider returned invalid response: %w", err)
	}

	if data.Status != "ok" {
		message := data.Message
		if message == "" {
			message = "Unknown API error from NewsAPI"
		}
		log.Error().
			Str("code", data.Code).
			Str("message", message).
			Int("http_status", resp.StatusCode).
			Msg("NewsAPI returned an error status")
		return nil, 0, &APIError{Code: data.Code, Message: message}
	}

	articles := make([]Article, 0, len(data.Articles))
	for _, a := range data.Articles {
		if a.Title == "" || a.Description == "" || a.URL == "" || a.Source.Name == "" {
			continue
		}
		articles = append(articles, a)
	}

	log.Info().
		Int("articles", len(articles)).
		Int("total_results", data.TotalResults).
		Msg("NewsAPI fetch successful")

	return articles, data.TotalResults, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
