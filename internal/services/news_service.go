package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mihira/deskpulse/pkg/logger"
)

const newsPageSize = 20

// newsSupportedLanguages is the curated list the upstream accepts;
// anything else is omitted to avoid 400s.
var newsSupportedLanguages = map[string]struct{}{
	"ar": {}, "de": {}, "en": {}, "es": {}, "fr": {}, "he": {}, "it": {},
	"nl": {}, "no": {}, "pt": {}, "ru": {}, "se": {}, "ud": {}, "zh": {},
}

var newsCategories = map[string]struct{}{
	"business": {}, "entertainment": {}, "general": {}, "health": {},
	"science": {}, "sports": {}, "technology": {},
}

// NewsArticle is one headline in the upstream's shape.
type NewsArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}

type newsAPIResponse struct {
	Status       string        `json:"status"`
	Message      string        `json:"message"`
	TotalResults int           `json:"totalResults"`
	Articles     []NewsArticle `json:"articles"`
}

// NewsResult is what handlers return to the client.
type NewsResult struct {
	Status   string        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Articles []NewsArticle `json:"articles,omitempty"`
}

// NewsService builds newsapi.org queries and cleans up the results.
type NewsService struct {
	client  *resty.Client
	apiKey  string
	baseURL string
}

// NewNewsService creates the news wrapper.
func NewNewsService(apiKey, baseURL string, timeout time.Duration) *NewsService {
	return &NewsService{
		client:  resty.New().SetTimeout(timeout).SetHeader("User-Agent", "deskpulse/1.0"),
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// NewsQuery selects what to fetch. A non-empty Query searches the
// everything endpoint; otherwise top headlines filtered by country and
// category.
type NewsQuery struct {
	Query    string
	Country  string
	Category string
	Language string
}

// GetNews fetches headlines. Upstream failures surface as a degraded
// result payload, never an error the handler would turn into a 5xx.
func (s *NewsService) GetNews(ctx context.Context, query NewsQuery) *NewsResult {
	if s.apiKey == "" {
		return &NewsResult{Status: "error", Message: "News API key is missing in configuration."}
	}

	endpoint, params := s.buildQuery(query)

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&newsAPIResponse{}).
		Get(endpoint)
	if err != nil {
		logger.Log.WithError(err).Warn("News provider unreachable")
		return &NewsResult{Status: "error", Message: "News service is currently unreachable."}
	}

	body, ok := resp.Result().(*newsAPIResponse)
	if !ok || resp.StatusCode() != 200 || body.Status == "error" {
		message := "Unable to fetch news."
		if ok && body.Message != "" {
			message = body.Message
		}

		// Fallback: a failed or empty city search retries as a plain
		// country search before giving up.
		if query.Query != "" && query.Country != "" {
			fallback := s.GetNews(ctx, NewsQuery{Query: query.Country, Language: query.Language})
			if fallback.Status == "ok" {
				return fallback
			}
		}
		return &NewsResult{Status: "error", Message: message}
	}

	return &NewsResult{Status: "ok", Articles: cleanArticles(body.Articles)}
}

// buildQuery picks the endpoint and assembles the query string the way
// the upstream expects it.
func (s *NewsService) buildQuery(query NewsQuery) (string, map[string]string) {
	params := map[string]string{
		"apiKey":   s.apiKey,
		"pageSize": fmt.Sprintf("%d", newsPageSize),
	}

	if _, ok := newsSupportedLanguages[query.Language]; ok {
		params["language"] = query.Language
	}

	// A search term that is actually a category reads better from
	// top-headlines.
	term := strings.ToLower(strings.TrimSpace(query.Query))
	if term == "sport" {
		term = "sports"
	}
	if _, isCategory := newsCategories[term]; isCategory {
		query.Category = term
		query.Query = ""
	}

	if query.Query != "" {
		params["q"] = query.Query
		params["sortBy"] = "publishedAt"
		return s.baseURL + "/everything", params
	}

	if query.Country != "" {
		params["country"] = query.Country
	}
	if query.Category != "" {
		params["category"] = query.Category
	}
	// top-headlines requires at least one filter.
	if query.Country == "" && query.Category == "" {
		params["category"] = "general"
	}
	return s.baseURL + "/top-headlines", params
}

// cleanArticles drops removed or undated entries, sorts newest first
// and caps the page size.
func cleanArticles(articles []NewsArticle) []NewsArticle {
	cleaned := make([]NewsArticle, 0, len(articles))
	for _, a := range articles {
		if a.Title == "" || a.Title == "[Removed]" || a.PublishedAt == "" {
			continue
		}
		cleaned = append(cleaned, a)
	}

	sort.Slice(cleaned, func(i, j int) bool {
		return cleaned[i].PublishedAt > cleaned[j].PublishedAt
	})

	if len(cleaned) > newsPageSize {
		cleaned = cleaned[:newsPageSize]
	}
	return cleaned
}
