package unit

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agriconnect/agriconnect/internal/domain/diagnosis"
	"github.com/agriconnect/agriconnect/internal/domain/pricing"
	"github.com/agriconnect/agriconnect/internal/domain/weatheradvice"
	"github.com/agriconnect/agriconnect/internal/infra/llm/gemini"
	"github.com/agriconnect/agriconnect/internal/infra/weather/weatherapi"
)

// stubGeminiClient answers every generate call with a fixed reply.
type stubGeminiClient struct {
	configured  bool
	reply       string
	err         error
	calls       int
	lastRequest gemini.GenerateContentRequest
}

func (s *stubGeminiClient) Configured() bool { return s.configured }

func (s *stubGeminiClient) GenerateContent(ctx context.Context, model string, req gemini.GenerateContentRequest) (gemini.GenerateResult, error) {
	s.calls++
	s.lastRequest = req
	if s.err != nil {
		return gemini.GenerateResult{}, s.err
	}
	return gemini.GenerateResult{Text: s.reply}, nil
}

type stubMandiClient struct {
	price int
	live  bool
}

func (s *stubMandiClient) ModalPrice(ctx context.Context, commodity string) (int, bool) {
	return s.price, s.live
}

type stubWeatherClient struct {
	snap weatherapi.Snapshot
}

func (s *stubWeatherClient) Fetch(ctx context.Context, location string) (weatherapi.Snapshot, error) {
	return s.snap, nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDiagnosisUsesGemini(t *testing.T) {
	client := &stubGeminiClient{
		configured: true,
		reply:      `{"diseaseName": "Early Blight", "confidence": 0.87, "affectedSeverity": "High"}`,
	}
	svc := diagnosis.NewService(diagnosis.Config{Model: "test-model", RetryAttempts: 1}, client, newTestLogger())

	got := svc.Diagnose(context.Background(), diagnosis.Request{
		PhotoDataURI: "data:image/png;base64,aGVsbG8=",
	})
	require.Equal(t, "Early Blight", got.DiseaseName)
	require.Equal(t, 0.87, got.Confidence)
	require.Equal(t, "High", got.AffectedSeverity)
	require.Equal(t, 1, client.calls)
	require.Contains(t, client.lastRequest.Contents[0].Parts[0].Text, "plant pathologist")
}

func TestPricingAnchorsPromptOnLiveMandiPrice(t *testing.T) {
	client := &stubGeminiClient{
		configured: true,
		reply:      `{"currentMandiPrice": 1850, "predictedPriceMin": 1800, "predictedPriceMax": 1950}`,
	}
	svc := pricing.NewService(pricing.Config{Model: "test-model"}, &stubMandiClient{price: 1850, live: true}, client, newTestLogger())

	got, err := svc.Predict(context.Background(), pricing.Request{Region: "Nashik", Crop: "Onion"})
	require.NoError(t, err)
	require.Equal(t, 1850, got.CurrentMandiPrice)
	require.True(t, got.IsLiveMandiData)
	require.Contains(t, client.lastRequest.Contents[0].Parts[0].Text, "Rs 1850 per quintal")
}

func TestWeatherAdviceSurfacesForecastAndAdvice(t *testing.T) {
	client := &stubGeminiClient{
		configured: true,
		reply: `{"suitableActivities": ["Irrigate wheat fields"],
			"recommendedCropsForHarvest": ["Banana"],
			"recommendations": [{"category": "Irrigation", "title": "Drip lines", "tip": "Save water."}]}`,
	}
	weather := &stubWeatherClient{snap: weatherapi.Snapshot{
		Temperature: 28,
		Humidity:    60,
		WindKph:     9,
		Condition:   "clear",
		RainChance:  10,
	}}
	svc := weatheradvice.NewService(weatheradvice.Config{Model: "test-model"}, weather, client, newTestLogger())

	got, err := svc.Advise(context.Background(), weatheradvice.Request{Location: "Jalgaon"})
	require.NoError(t, err)
	require.Equal(t, 28.0, got.Forecast.Temperature)
	require.Equal(t, []string{"Banana"}, got.RecommendedCropsForHarvest)
	require.Len(t, got.Recommendations, 1)
}

func TestAdvisoryServicesDegradeWithoutAPIKey(t *testing.T) {
	client := &stubGeminiClient{configured: false}
	logger := newTestLogger()

	diag := diagnosis.NewService(diagnosis.Config{Model: "test-model", RetryAttempts: 1}, client, logger)
	price := pricing.NewService(pricing.Config{Model: "test-model"}, &stubMandiClient{}, client, logger)
	advise := weatheradvice.NewService(weatheradvice.Config{Model: "test-model"}, &stubWeatherClient{}, client, logger)

	diagResult := diag.Diagnose(context.Background(), diagnosis.Request{PhotoDataURI: "data:image/png;base64,aGVsbG8="})
	require.Equal(t, "Diagnosis Unavailable", diagResult.DiseaseName)

	priceResult, err := price.Predict(context.Background(), pricing.Request{Region: "Nashik", Crop: "Wheat"})
	require.NoError(t, err)
	require.Positive(t, priceResult.CurrentMandiPrice)
	require.Len(t, priceResult.PredictedData, 7)

	adviceResult, err := advise.Advise(context.Background(), weatheradvice.Request{Location: "Nashik"})
	require.NoError(t, err)
	require.NotEmpty(t, adviceResult.SuitableActivities)

	require.Zero(t, client.calls)
}
