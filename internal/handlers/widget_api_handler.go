package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mihira/deskpulse/internal/services"
	log "github.com/sirupsen/logrus"
)

// WidgetAPIHandler fronts the external data widgets: weather, news and
// translation. These endpoints degrade instead of failing, so the
// dashboard keeps rendering when an upstream is down.
type WidgetAPIHandler struct {
	Weather     *services.WeatherService
	News        *services.NewsService
	Translation *services.TranslationService
}

// NewWidgetAPIHandler creates a new instance of WidgetAPIHandler.
func NewWidgetAPIHandler(weather *services.WeatherService, news *services.NewsService, translation *services.TranslationService) *WidgetAPIHandler {
	return &WidgetAPIHandler{
		Weather:     weather,
		News:        news,
		Translation: translation,
	}
}

// GetWeatherHandler returns the current conditions for ?city=. A city
// the primary provider rejects is retried against the fallback before
// the unavailable message goes out.
func (h *WidgetAPIHandler) GetWeatherHandler(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		http.Error(w, "city query parameter is required", http.StatusBadRequest)
		return
	}

	report, err := h.Weather.GetWeather(r.Context(), city)
	if err != nil {
		log.WithFields(log.Fields{
			"city":  city,
			"error": err,
		}).Warn("Weather lookup failed")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// GetNewsHandler returns headlines. Failures come back as an error
// payload with HTTP 200, never a 5xx.
func (h *WidgetAPIHandler) GetNewsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	result := h.News.GetNews(r.Context(), services.NewsQuery{
		Query:    query.Get("q"),
		Country:  query.Get("country"),
		Category: query.Get("category"),
		Language: query.Get("language"),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// TranslateHandler translates a batch of texts into the target
// language. Texts that fail upstream come back unchanged.
func (h *WidgetAPIHandler) TranslateHandler(w http.ResponseWriter, r *http.Request) {
	var req services.TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.TargetLanguage == "" {
		http.Error(w, "target_language is required", http.StatusBadRequest)
		return
	}

	translations, err := h.Translation.TranslateBatch(r.Context(), req)
	if err != nil {
		log.WithError(err).Warn("Translation batch failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"translations": translations,
	})
}
