package weatherapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.weatherapi.com/v1"

// ErrNotConfigured is returned when no API key is set; callers synthesize a
// forecast instead.
var ErrNotConfigured = errors.New("weather api key not configured")

// Snapshot is the day-zero forecast consumed by the advisory flows.
type Snapshot struct {
	Temperature   float64
	Humidity      int
	WindKph       float64
	Condition     string
	RainChance    int
	TotalPrecipMM float64
}

// Client fetches forecasts from weatherapi.com.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds an API client.
func NewClient(baseURL, apiKey string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(apiKey),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type apiResponse struct {
	Current struct {
		TempC     *float64 `json:"temp_c"`
		Humidity  *float64 `json:"humidity"`
		WindKph   *float64 `json:"wind_kph"`
		Condition struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []struct {
			Day struct {
				DailyChanceOfRain *float64 `json:"daily_chance_of_rain"`
				TotalPrecipMM     *float64 `json:"totalprecip_mm"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

// Fetch retrieves the current-day forecast for a free-text location.
func (c *Client) Fetch(ctx context.Context, location string) (Snapshot, error) {
	if !c.Configured() {
		return Snapshot{}, ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s/forecast.json?key=%s&q=%s&days=1&aqi=no&alerts=no",
		c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(location))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return Snapshot{}, fmt.Errorf("weather request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Snapshot{}, fmt.Errorf("read weather response: %w", err)
	}

	var decoded apiResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Snapshot{}, fmt.Errorf("decode weather response: %w", err)
	}

	return normalize(decoded), nil
}

// normalize applies per-field defaults so a sparse upstream payload still
// yields a complete snapshot.
func normalize(raw apiResponse) Snapshot {
	snap := Snapshot{
		Temperature: round1(valueOr(raw.Current.TempC, 25)),
		Humidity:    int(math.Round(valueOr(raw.Current.Humidity, 60))),
		WindKph:     round1(valueOr(raw.Current.WindKph, 10)),
		Condition:   strings.ToLower(strings.TrimSpace(raw.Current.Condition.Text)),
	}
	if snap.Condition == "" {
		snap.Condition = "clear"
	}
	if len(raw.Forecast.ForecastDay) > 0 {
		day := raw.Forecast.ForecastDay[0].Day
		snap.RainChance = int(math.Round(valueOr(day.DailyChanceOfRain, 0)))
		snap.TotalPrecipMM = valueOr(day.TotalPrecipMM, 0)
	}
	return snap
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
