package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mihira/deskpulse/pkg/logger"
	"github.com/sethvargo/go-retry"
)

const (
	translationCacheSize = 2048
	translationAttempts  = 3
	translationBackoff   = time.Second
)

// TranslateRequest is the batched translation payload.
type TranslateRequest struct {
	Texts          []string `json:"texts"`
	TargetLanguage string   `json:"targetLanguage"`
	SourceLanguage string   `json:"sourceLanguage"`
}

// mymemoryResponse is the upstream provider's response shape.
type mymemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus int `json:"responseStatus"`
}

// TranslationService translates batches of UI strings. Results are
// cached per target language so switching languages back and forth
// never re-fetches already-translated strings. Upstream calls are
// retried with exponential backoff only for 429/5xx; any other client
// error is terminal.
type TranslationService struct {
	client *resty.Client

	mu     sync.Mutex
	caches map[string]*lru.Cache[string, string]
}

// NewTranslationService creates a translator against the given
// upstream endpoint.
func NewTranslationService(translateURL string, timeout time.Duration) *TranslationService {
	client := resty.New().
		SetBaseURL(translateURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", "deskpulse/1.0")

	return &TranslationService{
		client: client,
		caches: make(map[string]*lru.Cache[string, string]),
	}
}

// cacheFor returns the LRU cache for one target language, creating it
// on first use.
func (s *TranslationService) cacheFor(lang string) *lru.Cache[string, string] {
	s.mu.Lock()
	defer s.mu.Unlock()

	cache, ok := s.caches[lang]
	if !ok {
		cache, _ = lru.New[string, string](translationCacheSize)
		s.caches[lang] = cache
	}
	return cache
}

// TranslateBatch returns a mapping from each source text to its
// translation. Cache hits skip the upstream entirely; a failed text
// falls back to itself so the caller degrades gracefully.
func (s *TranslationService) TranslateBatch(ctx context.Context, req TranslateRequest) (map[string]string, error) {
	if req.TargetLanguage == "" {
		return nil, fmt.Errorf("targetLanguage is required")
	}
	source := req.SourceLanguage
	if source == "" {
		source = "en"
	}

	cache := s.cacheFor(req.TargetLanguage)
	result := make(map[string]string, len(req.Texts))

	for _, text := range req.Texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		if cached, ok := cache.Get(text); ok {
			result[text] = cached
			continue
		}

		translated, err := s.translateOne(ctx, text, source, req.TargetLanguage)
		if err != nil {
			logger.Log.WithError(err).WithField("target", req.TargetLanguage).Warn("Translation failed, passing text through")
			result[text] = text
			continue
		}

		cache.Add(text, translated)
		result[text] = translated
	}
	return result, nil
}

// translateOne calls the upstream with bounded exponential backoff.
func (s *TranslationService) translateOne(ctx context.Context, text, source, target string) (string, error) {
	var translated string

	backoff := retry.WithMaxRetries(translationAttempts-1, retry.NewExponential(translationBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := s.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"q":        text,
				"langpair": fmt.Sprintf("%s|%s", source, target),
			}).
			SetResult(&mymemoryResponse{}).
			Get("")
		if err != nil {
			// Network failure: worth retrying.
			return retry.RetryableError(err)
		}

		status := resp.StatusCode()
		if status == 429 || status >= 500 {
			return retry.RetryableError(fmt.Errorf("upstream returned %d", status))
		}
		if status >= 400 {
			return fmt.Errorf("upstream returned %d", status)
		}

		body, ok := resp.Result().(*mymemoryResponse)
		if !ok || body.ResponseData.TranslatedText == "" {
			return fmt.Errorf("malformed translation response")
		}
		translated = body.ResponseData.TranslatedText
		return nil
	})
	if err != nil {
		return "", err
	}
	return translated, nil
}

// CachedLanguages lists target languages with warm caches. Used in
// tests and diagnostics.
func (s *TranslationService) CachedLanguages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	langs := make([]string, 0, len(s.caches))
	for lang := range s.caches {
		langs = append(langs, lang)
	}
	return langs
}
