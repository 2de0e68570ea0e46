package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"infobot/internal/domain"
)

const (
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultForecastURL  = "https://api.open-meteo.com/v1/forecast"

	sourceGeocoding = "geocoding"
	sourceForecast  = "forecast"
)

// OpenMeteo resolves a city through the geocoding API and then reads its
// current weather from the forecast API.
type OpenMeteo struct {
	client       *resty.Client
	geocodingURL string
	forecastURL  string
	language     string
}

// NewOpenMeteo creates a weather provider. Empty URLs fall back to the public endpoints.
func NewOpenMeteo(client *resty.Client, geocodingURL, forecastURL, language string) *OpenMeteo {
	if geocodingURL == "" {
		geocodingURL = DefaultGeocodingURL
	}
	if forecastURL == "" {
		forecastURL = DefaultForecastURL
	}
	if language == "" {
		language = "en"
	}
	return &OpenMeteo{
		client:       client,
		geocodingURL: geocodingURL,
		forecastURL:  forecastURL,
		language:     language,
	}
}

type geocodingResponse struct {
	Results []struct {
		Name      string   `json:"name"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	CurrentWeather *struct {
		Temperature *float64 `json:"temperature"`
		WindSpeed   *float64 `json:"windspeed"`
		WeatherCode *int     `json:"weathercode"`
		IsDay       *int     `json:"is_day"`
		Time        *string  `json:"time"`
	} `json:"current_weather"`
}

// Weather implements domain.WeatherProvider.
func (o *OpenMeteo) Weather(ctx context.Context, city string) (*domain.Weather, error) {
	body, err := get(ctx, o.client, sourceGeocoding, o.geocodingURL, map[string]string{
		"name":     city,
		"count":    "1",
		"language": o.language,
	})
	if err != nil {
		return nil, err
	}

	var geo geocodingResponse
	if err := json.Unmarshal(body, &geo); err != nil {
		return nil, decodeErr(sourceGeocoding, err)
	}
	if len(geo.Results) == 0 {
		return nil, fmt.Errorf("geocode %q: %w", city, domain.ErrNotFound)
	}
	place := geo.Results[0]
	if place.Latitude == nil || place.Longitude == nil {
		return nil, decodeErr(sourceGeocoding, fmt.Errorf("result for %q has no coordinates", city))
	}
	lat, lon := *place.Latitude, *place.Longitude

	body, err = get(ctx, o.client, sourceForecast, o.forecastURL, map[string]string{
		"latitude":        strconv.FormatFloat(lat, 'f', -1, 64),
		"longitude":       strconv.FormatFloat(lon, 'f', -1, 64),
		"current_weather": "true",
		"timezone":        "auto",
	})
	if err != nil {
		return nil, err
	}

	var fc forecastResponse
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil, decodeErr(sourceForecast, err)
	}
	if fc.CurrentWeather == nil {
		return nil, fmt.Errorf("forecast for %q: %w", place.Name, domain.ErrNoData)
	}
	cw := fc.CurrentWeather
	if cw.Temperature == nil || cw.WindSpeed == nil || cw.WeatherCode == nil || cw.IsDay == nil || cw.Time == nil {
		return nil, decodeErr(sourceForecast, fmt.Errorf("current_weather for %q is incomplete", place.Name))
	}

	observed, err := parseObservedAt(*cw.Time)
	if err != nil {
		return nil, decodeErr(sourceForecast, err)
	}

	name := place.Name
	if name == "" {
		name = city
	}
	return &domain.Weather{
		City:        name,
		Latitude:    lat,
		Longitude:   lon,
		Temperature: *cw.Temperature,
		WindSpeed:   *cw.WindSpeed,
		Code:        *cw.WeatherCode,
		IsDay:       *cw.IsDay == 1,
		ObservedAt:  observed,
	}, nil
}

// Observation times are local to the place (timezone=auto) and usually carry no zone.
var observedLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

func parseObservedAt(s string) (time.Time, error) {
	for _, layout := range observedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized observation time %q", s)
}
