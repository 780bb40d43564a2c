package croprec

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/agriconnect/agriconnect/internal/infra/croprec/hfspace"
	"github.com/agriconnect/agriconnect/internal/infra/weather/weatherapi"
	apperrors "github.com/agriconnect/agriconnect/pkg/errors"
)

// Request mirrors the recommendation model's input.
type Request struct {
	AutoLocation bool     `json:"auto_location"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

// Service proxies crop recommendations from the external model service,
// overlaying its coarse weather block with live readings when possible.
type Service interface {
	Recommend(ctx context.Context, req Request) (map[string]any, error)
}

// RecommenderClient abstracts the model service.
type RecommenderClient interface {
	Recommend(ctx context.Context, payload hfspace.Payload) (map[string]any, error)
}

// WeatherClient supplies the live overlay readings.
type WeatherClient interface {
	Configured() bool
	Fetch(ctx context.Context, location string) (weatherapi.Snapshot, error)
}

type service struct {
	recommender RecommenderClient
	weather     WeatherClient
	logger      *slog.Logger
}

// NewService wires up the crop recommendation domain.
func NewService(recommender RecommenderClient, weather WeatherClient, logger *slog.Logger) Service {
	return &service{
		recommender: recommender,
		weather:     weather,
		logger:      logger.With("component", "croprec.service"),
	}
}

func (s *service) Recommend(ctx context.Context, req Request) (map[string]any, error) {
	if !req.AutoLocation && (req.Latitude == nil || req.Longitude == nil) {
		return nil, apperrors.Wrap("invalid_input", "latitude and longitude are required when auto_location is off", nil)
	}

	result, err := s.recommender.Recommend(ctx, hfspace.Payload{
		AutoLocation: req.AutoLocation,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	})
	if err != nil {
		return nil, apperrors.Wrap("recommendation_error", "failed to fetch crop recommendation", err)
	}

	s.overlayLiveWeather(ctx, req, result)
	return result, nil
}

// overlayLiveWeather replaces the model's weather block with live readings
// so the recommendation tab matches the weather tab. Overlay failures are
// logged and ignored.
func (s *service) overlayLiveWeather(ctx context.Context, req Request, result map[string]any) {
	if req.Latitude == nil || req.Longitude == nil || !s.weather.Configured() {
		return
	}
	block, ok := result["weather"].(map[string]any)
	if !ok {
		return
	}

	query := fmt.Sprintf("%g,%g", *req.Latitude, *req.Longitude)
	snap, err := s.weather.Fetch(ctx, query)
	if err != nil {
		s.logger.Warn("live weather overlay failed", "error", err)
		return
	}

	block["temperature"] = snap.Temperature
	block["humidity"] = int(math.Round(float64(snap.Humidity)))
	block["rainfall"] = snap.TotalPrecipMM
}
