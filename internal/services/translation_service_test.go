package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTranslationUpstream(t *testing.T, hits *int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		text := r.URL.Query().Get("q")
		langpair := r.URL.Query().Get("langpair")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"responseData": map[string]string{
				"translatedText": "[" + langpair + "] " + text,
			},
			"responseStatus": 200,
		})
	}))
}

func TestTranslateBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Should translate a batch and skip blank texts", func(t *testing.T) {
		var hits int64
		server := newTranslationUpstream(t, &hits)
		defer server.Close()

		svc := NewTranslationService(server.URL, time.Second)
		result, err := svc.TranslateBatch(ctx, TranslateRequest{
			Texts:          []string{"Hello", "  ", "Goodbye"},
			TargetLanguage: "fr",
		})
		require.NoError(t, err)

		assert.Len(t, result, 2)
		assert.Equal(t, "[en|fr] Hello", result["Hello"])
		assert.Equal(t, int64(2), atomic.LoadInt64(&hits))
	})

	t.Run("Should serve repeat texts from the per-language cache", func(t *testing.T) {
		var hits int64
		server := newTranslationUpstream(t, &hits)
		defer server.Close()

		svc := NewTranslationService(server.URL, time.Second)

		// hi, then fr, then back to hi: the second hi pass must not
		// re-fetch anything.
		_, err := svc.TranslateBatch(ctx, TranslateRequest{Texts: []string{"Hello"}, TargetLanguage: "hi"})
		require.NoError(t, err)
		_, err = svc.TranslateBatch(ctx, TranslateRequest{Texts: []string{"Hello"}, TargetLanguage: "fr"})
		require.NoError(t, err)
		after := atomic.LoadInt64(&hits)

		result, err := svc.TranslateBatch(ctx, TranslateRequest{Texts: []string{"Hello"}, TargetLanguage: "hi"})
		require.NoError(t, err)

		assert.Equal(t, "[en|hi] Hello", result["Hello"])
		assert.Equal(t, after, atomic.LoadInt64(&hits))
		assert.ElementsMatch(t, []string{"hi", "fr"}, svc.CachedLanguages())
	})

	t.Run("Should pass the source language through", func(t *testing.T) {
		var hits int64
		server := newTranslationUpstream(t, &hits)
		defer server.Close()

		svc := NewTranslationService(server.URL, time.Second)
		result, err := svc.TranslateBatch(ctx, TranslateRequest{
			Texts:          []string{"Bonjour"},
			SourceLanguage: "fr",
			TargetLanguage: "de",
		})
		require.NoError(t, err)
		assert.Equal(t, "[fr|de] Bonjour", result["Bonjour"])
	})

	t.Run("Should fall back to the original text on a terminal error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad request", http.StatusBadRequest)
		}))
		defer server.Close()

		svc := NewTranslationService(server.URL, time.Second)
		result, err := svc.TranslateBatch(ctx, TranslateRequest{
			Texts:          []string{"Hello"},
			TargetLanguage: "fr",
		})
		require.NoError(t, err)
		assert.Equal(t, "Hello", result["Hello"])
	})

	t.Run("Should not cache failed translations", func(t *testing.T) {
		var failing int32 = 1
		var hits int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&hits, 1)
			if atomic.LoadInt32(&failing) == 1 {
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"responseData":   map[string]string{"translatedText": "Hallo"},
				"responseStatus": 200,
			})
		}))
		defer server.Close()

		svc := NewTranslationService(server.URL, time.Second)
		result, err := svc.TranslateBatch(ctx, TranslateRequest{Texts: []string{"Hello"}, TargetLanguage: "de"})
		require.NoError(t, err)
		assert.Equal(t, "Hello", result["Hello"])

		atomic.StoreInt32(&failing, 0)
		result, err = svc.TranslateBatch(ctx, TranslateRequest{Texts: []string{"Hello"}, TargetLanguage: "de"})
		require.NoError(t, err)
		assert.Equal(t, "Hallo", result["Hello"])
	})

	t.Run("Should require a target language", func(t *testing.T) {
		svc := NewTranslationService("http://unused", time.Second)
		_, err := svc.TranslateBatch(ctx, TranslateRequest{Texts: []string{"x"}})
		assert.Error(t, err)
	})
}
