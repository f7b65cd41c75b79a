package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWeather(t *testing.T) {
	ctx := context.Background()

	t.Run("Should map the primary provider payload", func(t *testing.T) {
		primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Almaty", r.URL.Query().Get("q"))
			assert.Equal(t, "metric", r.URL.Query().Get("units"))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"name": "Almaty",
				"main": map[string]interface{}{"temp": 21.5, "humidity": 40},
				"weather": []map[string]string{
					{"description": "scattered clouds"},
				},
				"wind": map[string]interface{}{"speed": 3.2},
			})
		}))
		defer primary.Close()

		svc := NewWeatherService("test-key", time.Second)
		svc.primaryURL = primary.URL

		report, err := svc.GetWeather(ctx, "Almaty")
		require.NoError(t, err)

		assert.Equal(t, "Almaty", report.City)
		assert.Equal(t, 21.5, report.Temperature)
		assert.Equal(t, 40, report.Humidity)
		assert.Equal(t, "scattered clouds", report.Description)
		assert.Equal(t, "openweathermap", report.Source)
	})

	t.Run("Should fall back when the primary fails", func(t *testing.T) {
		primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		}))
		defer primary.Close()

		geocode := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"results": []map[string]interface{}{
					{"name": "Almaty", "latitude": 43.25, "longitude": 76.9},
				},
			})
		}))
		defer geocode.Close()

		forecast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"current": map[string]interface{}{
					"temperature_2m":       18.0,
					"relative_humidity_2m": 55,
					"wind_speed_10m":       2.1,
					"weather_code":         61,
				},
			})
		}))
		defer forecast.Close()

		svc := NewWeatherService("test-key", time.Second)
		svc.primaryURL = primary.URL
		svc.geocodeURL = geocode.URL
		svc.fallbackURL = forecast.URL

		report, err := svc.GetWeather(ctx, "Almaty")
		require.NoError(t, err)

		assert.Equal(t, "open-meteo", report.Source)
		assert.Equal(t, 18.0, report.Temperature)
		assert.Equal(t, "rain", report.Description)
	})

	t.Run("Should use the fallback when no API key is configured", func(t *testing.T) {
		geocode := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"results": []map[string]interface{}{
					{"name": "Oslo", "latitude": 59.9, "longitude": 10.7},
				},
			})
		}))
		defer geocode.Close()

		forecast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"current": map[string]interface{}{"temperature_2m": -3.0, "weather_code": 71},
			})
		}))
		defer forecast.Close()

		svc := NewWeatherService("", time.Second)
		svc.geocodeURL = geocode.URL
		svc.fallbackURL = forecast.URL

		report, err := svc.GetWeather(ctx, "Oslo")
		require.NoError(t, err)
		assert.Equal(t, "snow", report.Description)
	})

	t.Run("Should report unavailable when both providers fail", func(t *testing.T) {
		down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusServiceUnavailable)
		}))
		defer down.Close()

		svc := NewWeatherService("test-key", time.Second)
		svc.primaryURL = down.URL
		svc.geocodeURL = down.URL
		svc.fallbackURL = down.URL

		_, err := svc.GetWeather(ctx, "Nowhere")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "weather is currently unavailable")
	})

	t.Run("Should require a city", func(t *testing.T) {
		svc := NewWeatherService("test-key", time.Second)
		_, err := svc.GetWeather(ctx, "")
		assert.Error(t, err)
	})
}

func TestDescribeWeatherCode(t *testing.T) {
	cases := map[int]string{
		0:  "clear sky",
		2:  "partly cloudy",
		45: "fog",
		63: "rain",
		73: "snow",
		80: "rain showers",
		95: "thunderstorm",
	}
	for code, want := range cases {
		assert.Equal(t, want, describeWeatherCode(code))
	}
}
