package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/MaximilianoIS/EconDecode/internal/extract"
	"github.com/MaximilianoIS/EconDecode/internal/services/textgen"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type articleFetcher interface {
	ArticleText(ctx context.Context, url string) string
}

const chatPromptTemplate = `You are an assistant helping young people understand economic news.
Explain the following concept or news item simply and clearly for a young person, avoiding jargon where possible:
%s
`

const summaryPromptTemplate = `You are an AI assistant specialized in explaining economic news to young people.
Analyze the following economic news article content.
Provide your response structured with the following specific section headers, ensuring each section has content:

SECTION: Summary
[A concise, neutral summary of the article's main points in a short paragraph.]

SECTION: GenZ Translation
[Rewrite the summary in engaging, informal Gen Z language, using relevant slang or phrasing appropriately. Keep it clear and accurate.]

SECTION: Impact on Young People
[Explain clearly how the news or economic concept discussed in the article directly or indirectly impacts young people (e.g., students, young workers, those new to managing finances). Be specific.]

SECTION: Impact Rating
[Provide a single integer from 1 (low impact) to 5 (high impact) representing the overall potential impact of this news on young people. Just the number.]

Article Content:
---
%s
---
`

// minSummaryContentLen is the smallest article body worth summarizing.
const minSummaryContentLen = 50

// AssistantHandler serves the conversational endpoints: free-form chat and
// structured article summaries.
type AssistantHandler struct {
	gen      textgen.Generator
	articles articleFetcher
}

func NewAssistantHandler(gen textgen.Generator, articles articleFetcher) *AssistantHandler {
	return &AssistantHandler{gen: gen, articles: articles}
}

func (h *AssistantHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/chat", h.Chat)
	r.Get("/api/gemini-summary", h.Summary)
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.gen == nil {
		respondError(w, http.StatusServiceUnavailable, "Chatbot is not configured (API key missing).")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "No message provided.")
		return
	}

	prompt := fmt.Sprintf(chatPromptTemplate, req.Message)
	result, err := h.gen.Generate(r.Context(), prompt, nil)
	if err != nil {
		log.Error().Err(err).Msg("Chat generation failed")
		respondError(w, http.StatusInternalServerError, "An error occurred while processing your chat request. Please try again.")
		return
	}

	var reply string
	switch {
	case result.Blocked:
		log.Warn().Str("reason", result.BlockReason).Msg("Chat content blocked")
		reply = fmt.Sprintf("Sorry, I couldn't generate a response for that due to content safety policy. (Reason: %s). Please try asking differently.", result.BlockReason)
	case result.Text == "":
		reply = "Sorry, I couldn't generate a response for that. Please try asking differently."
	default:
		// Basic Markdown removal for plain-text chat clients.
		reply = strings.NewReplacer("*", "", "#", "").Replace(result.Text)
	}

	respondJSON(w, http.StatusOK, map[string]string{"response": reply})
}

func (h *AssistantHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if h.gen == nil {
		respondError(w, http.StatusServiceUnavailable, "Summary service is unavailable (AI model not configured).")
		return
	}

	articleURL := r.URL.Query().Get("url")
	if articleURL == "" {
		respondError(w, http.StatusBadRequest, "Missing url parameter")
		return
	}

	content := h.articles.ArticleText(r.Context(), articleURL)
	if len(strings.TrimSpace(content)) < minSummaryContentLen {
		log.Warn().Str("url", articleURL).Msg("Scraped content too short to summarize")
		respondError(w, http.StatusBadRequest, "Could not retrieve sufficient article content to summarize.")
		return
	}

	prompt := fmt.Sprintf(summaryPromptTemplate, content)
	result, err := h.gen.Generate(r.Context(), prompt, nil)
	if err != nil {
		log.Error().Err(err).Str("url", articleURL).Msg("Summary generation failed")
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get or parse AI summary: %v", err))
		return
	}
	if result.Blocked {
		log.Warn().Str("reason", result.BlockReason).Str("url", articleURL).Msg("Summary content blocked")
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get or parse AI summary: content generation blocked (%s)", result.BlockReason))
		return
	}
	if result.Text == "" {
		respondError(w, http.StatusInternalServerError, "Failed to get or parse AI summary: no usable text returned")
		return
	}

	respondJSON(w, http.StatusOK, extract.Brief(result.Text))
}
