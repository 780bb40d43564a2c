package weatheradvice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"

	"github.com/agriconnect/agriconnect/internal/domain/advisory"
	"github.com/agriconnect/agriconnect/internal/infra/llm/gemini"
	"github.com/agriconnect/agriconnect/internal/infra/weather/weatherapi"
	apperrors "github.com/agriconnect/agriconnect/pkg/errors"
)

// Service exposes weather-based farm advice.
type Service interface {
	Advise(ctx context.Context, req Request) (Result, error)
}

// WeatherClient supplies the day-zero forecast.
type WeatherClient interface {
	Fetch(ctx context.Context, location string) (weatherapi.Snapshot, error)
}

type service struct {
	pipeline  advisory.Pipeline[situated, advice]
	weather   WeatherClient
	logger    *slog.Logger
	randFloat func() float64
}

// situated is the pipeline input: location plus the forecast it was fetched
// (or synthesized) for.
type situated struct {
	location string
	forecast Forecast
}

// advice is the model-generated portion of the result.
type advice struct {
	SuitableActivities         []string
	RecommendedCropsForHarvest []string
	Recommendations            []Recommendation
}

// NewService wires up the weather advice domain.
func NewService(cfg Config, weather WeatherClient, client advisory.GenerativeClient, logger *slog.Logger) Service {
	svc := &service{
		weather:   weather,
		logger:    logger.With("component", "weatheradvice.service"),
		randFloat: rand.Float64,
	}
	svc.pipeline = advisory.Pipeline[situated, advice]{
		Name:   "weatheradvice",
		Model:  cfg.Model,
		Client: client,
		Build: func(in situated) gemini.GenerateContentRequest {
			return buildRequest(cfg, in)
		},
		Parse:    parseAdvice,
		Fallback: fallbackAdvice,
		Retry:    advisory.NoRetry(),
		Logger:   svc.logger,
	}
	return svc
}

// Advise fetches (or synthesizes) the forecast, then runs the pipeline.
// Only an empty location is an error; every downstream failure degrades.
func (s *service) Advise(ctx context.Context, req Request) (Result, error) {
	location := strings.TrimSpace(req.Location)
	if location == "" {
		return Result{}, apperrors.Wrap("invalid_input", "location is required", nil)
	}

	forecast := s.fetchForecast(ctx, location)
	in := situated{location: location, forecast: forecast}
	generated := s.pipeline.Run(ctx, in)

	return Result{
		Location:                   location,
		Forecast:                   forecast,
		Recommendations:            generated.Recommendations,
		SuitableActivities:         generated.SuitableActivities,
		RecommendedCropsForHarvest: generated.RecommendedCropsForHarvest,
	}, nil
}

// fetchForecast is total: any upstream failure yields a synthetic forecast
// so the rest of the pipeline never sees absent weather data.
func (s *service) fetchForecast(ctx context.Context, location string) Forecast {
	snap, err := s.weather.Fetch(ctx, location)
	if err != nil {
		s.logger.Warn("weather fetch failed, synthesizing forecast", "location", location, "error", err)
		return s.syntheticForecast()
	}
	return Forecast{
		Temperature:         snap.Temperature,
		Humidity:            snap.Humidity,
		WindSpeed:           snap.WindKph,
		Description:         snap.Condition,
		PrecipitationChance: snap.RainChance,
	}
}

var syntheticConditions = []string{"clear sky", "partly cloudy", "few clouds", "overcast"}

func (s *service) syntheticForecast() Forecast {
	return Forecast{
		Temperature:         math.Round((22+s.randFloat()*8)*10) / 10,
		Humidity:            int(math.Round(55 + s.randFloat()*30)),
		WindSpeed:           math.Round((8+s.randFloat()*12)*10) / 10,
		Description:         syntheticConditions[int(s.randFloat()*float64(len(syntheticConditions)))%len(syntheticConditions)],
		PrecipitationChance: int(math.Round(s.randFloat() * 40)),
	}
}

func buildRequest(cfg Config, in situated) gemini.GenerateContentRequest {
	prompt := fmt.Sprintf(`You are an expert agricultural advisor for Indian farmers (Maharashtra region).

Current weather for %s:
- Temperature: %.1f C
- Humidity: %d%%
- Wind Speed: %.1f km/h
- Condition: %s
- Chance of Rain: %d%%

Respond with ONLY a valid JSON object, no markdown, no explanation:
{
  "suitableActivities": ["task1", "task2", "task3"],
  "recommendedCropsForHarvest": ["crop1", "crop2"],
  "recommendations": [
    {"category": "Irrigation", "title": "Title here", "tip": "Detailed advice here."},
    {"category": "Pest Control", "title": "Title here", "tip": "Detailed advice here."}
  ]
}

Rules:
- suitableActivities: 2-3 specific tasks (e.g. "Irrigate wheat fields", "Spray neem oil").
- recommendedCropsForHarvest: If location mentions Jalgaon, ALWAYS include Banana (Jalgaon = banana capital of India). Clear/cloudy: Banana, Wheat, Jowar, Onion, Soybean. Humid: Banana, Sugarcane, Rice. Empty ONLY for severe storms.
- recommendations: 2-3 tips with specific crop names, irrigation (drip/flood), fertilizers (urea, DAP).`,
		in.location, in.forecast.Temperature, in.forecast.Humidity, in.forecast.WindSpeed,
		in.forecast.Description, in.forecast.PrecipitationChance)

	return gemini.GenerateContentRequest{
		Contents: []gemini.Content{{Parts: []gemini.Part{{Text: prompt}}}},
		GenerationConfig: &gemini.GenerationConfig{
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxOutputTokens,
		},
	}
}

type adviceWire struct {
	SuitableActivities         json.RawMessage `json:"suitableActivities"`
	RecommendedCropsForHarvest json.RawMessage `json:"recommendedCropsForHarvest"`
	Recommendations            json.RawMessage `json:"recommendations"`
}

func parseAdvice(raw string, _ situated) (advice, error) {
	var wire adviceWire
	if err := json.Unmarshal([]byte(advisory.ExtractJSON(raw)), &wire); err != nil {
		return advice{}, err
	}

	activities, err := advisory.CoerceStringList(wire.SuitableActivities)
	if err != nil {
		activities = nil
	}
	crops, err := advisory.CoerceStringList(wire.RecommendedCropsForHarvest)
	if err != nil {
		crops = nil
	}

	var recs []Recommendation
	if len(wire.Recommendations) > 0 {
		// A type mismatch here defaults to an empty list, not a failure.
		_ = json.Unmarshal(wire.Recommendations, &recs)
	}
	if recs == nil {
		recs = []Recommendation{}
	}

	return advice{
		SuitableActivities:         advisory.CleanList(activities),
		RecommendedCropsForHarvest: advisory.CleanList(crops),
		Recommendations:            recs,
	}, nil
}
