package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mihira/deskpulse/pkg/logger"
)

// WeatherReport is the normalized shape both providers are mapped into.
type WeatherReport struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature_c"`
	Humidity    int     `json:"humidity"`
	Description string  `json:"description"`
	WindSpeed   float64 `json:"wind_speed"`
	Source      string  `json:"source"`
}

// openWeatherResponse is the primary provider's payload.
type openWeatherResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Open-Meteo fallback shapes (geocoding + forecast).
type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type openMeteoResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		Humidity    int     `json:"relative_humidity_2m"`
		WindSpeed   float64 `json:"wind_speed_10m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
}

// WeatherService fetches current conditions with a primary provider
// and a differently-shaped fallback, both remapped into WeatherReport.
type WeatherService struct {
	client *resty.Client
	apiKey string

	primaryURL  string
	geocodeURL  string
	fallbackURL string
}

// NewWeatherService creates the wrapper. apiKey belongs to the primary
// provider; the fallback needs none.
func NewWeatherService(apiKey string, timeout time.Duration) *WeatherService {
	return &WeatherService{
		client:      resty.New().SetTimeout(timeout).SetHeader("User-Agent", "deskpulse/1.0"),
		apiKey:      apiKey,
		primaryURL:  "https://api.openweathermap.org/data/2.5/weather",
		geocodeURL:  "https://geocoding-api.open-meteo.com/v1/search",
		fallbackURL: "https://api.open-meteo.com/v1/forecast",
	}
}

// GetWeather resolves current conditions for a city. The primary
// provider is tried first under the client timeout; any failure or
// malformed payload falls through to the secondary provider.
func (s *WeatherService) GetWeather(ctx context.Context, city string) (*WeatherReport, error) {
	if city == "" {
		return nil, fmt.Errorf("city is required")
	}

	report, err := s.fromPrimary(ctx, city)
	if err == nil {
		return report, nil
	}
	logger.Log.WithError(err).WithField("city", city).Warn("Primary weather provider failed, trying fallback")

	report, err = s.fromFallback(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("weather is currently unavailable: %v", err)
	}
	return report, nil
}

func (s *WeatherService) fromPrimary(ctx context.Context, city string) (*WeatherReport, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("primary weather API key missing")
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     city,
			"appid": s.apiKey,
			"units": "metric",
		}).
		SetResult(&openWeatherResponse{}).
		Get(s.primaryURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("primary provider returned %d", resp.StatusCode())
	}

	body, ok := resp.Result().(*openWeatherResponse)
	if !ok || len(body.Weather) == 0 {
		return nil, fmt.Errorf("malformed primary weather payload")
	}

	return &WeatherReport{
		City:        body.Name,
		Temperature: body.Main.Temp,
		Humidity:    body.Main.Humidity,
		Description: body.Weather[0].Description,
		WindSpeed:   body.Wind.Speed,
		Source:      "openweathermap",
	}, nil
}

func (s *WeatherService) fromFallback(ctx context.Context, city string) (*WeatherReport, error) {
	geo, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"name": city, "count": "1"}).
		SetResult(&geocodeResponse{}).
		Get(s.geocodeURL)
	if err != nil {
		return nil, err
	}
	location, ok := geo.Result().(*geocodeResponse)
	if !ok || len(location.Results) == 0 {
		return nil, fmt.Errorf("city %q not found", city)
	}
	place := location.Results[0]

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":  fmt.Sprintf("%f", place.Latitude),
			"longitude": fmt.Sprintf("%f", place.Longitude),
			"current":   "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code",
		}).
		SetResult(&openMeteoResponse{}).
		Get(s.fallbackURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fallback provider returned %d", resp.StatusCode())
	}

	body, ok := resp.Result().(*openMeteoResponse)
	if !ok {
		return nil, fmt.Errorf("malformed fallback weather payload")
	}

	return &WeatherReport{
		City:        place.Name,
		Temperature: body.Current.Temperature,
		Humidity:    body.Current.Humidity,
		Description: describeWeatherCode(body.Current.WeatherCode),
		WindSpeed:   body.Current.WindSpeed,
		Source:      "open-meteo",
	}, nil
}

// describeWeatherCode maps WMO codes onto human text, coarsely.
func describeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "clear sky"
	case code <= 3:
		return "partly cloudy"
	case code <= 48:
		return "fog"
	case code <= 67:
		return "rain"
	case code <= 77:
		return "snow"
	case code <= 82:
		return "rain showers"
	default:
		return "thunderstorm"
	}
}
