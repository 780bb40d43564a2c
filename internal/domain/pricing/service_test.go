package pricing

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agriconnect/agriconnect/internal/infra/llm/gemini"
	apperrors "github.com/agriconnect/agriconnect/pkg/errors"
)

type stubMandi struct {
	price int
	live  bool
}

func (s *stubMandi) ModalPrice(ctx context.Context, commodity string) (int, bool) {
	return s.price, s.live
}

type stubGenerative struct {
	configured bool
	text       string
	err        error
	calls      int
	lastReq    gemini.GenerateContentRequest
}

func (s *stubGenerative) Configured() bool { return s.configured }

func (s *stubGenerative) GenerateContent(ctx context.Context, model string, req gemini.GenerateContentRequest) (gemini.GenerateResult, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return gemini.GenerateResult{}, s.err
	}
	return gemini.GenerateResult{Text: s.text}, nil
}

func newTestService(mandi MandiClient, client *stubGenerative) *service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(Config{Model: "test-model"}, mandi, client, logger).(*service)
	svc.randFloat = func() float64 { return 0.5 }
	svc.now = func() time.Time {
		return time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestPredictValidatesInput(t *testing.T) {
	svc := newTestService(&stubMandi{}, &stubGenerative{})

	_, err := svc.Predict(context.Background(), Request{Crop: "Wheat"})
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.Predict(context.Background(), Request{Region: "Nashik"})
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.Predict(context.Background(), Request{Region: "Nashik", Crop: "Wheat", Date: "14-10-2025"})
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestPredictFallbackWithoutModel(t *testing.T) {
	svc := newTestService(&stubMandi{}, &stubGenerative{configured: false})

	got, err := svc.Predict(context.Background(), Request{Region: "Nashik", Crop: "Wheat"})
	require.NoError(t, err)

	// randFloat pinned at 0.5 cancels the jitter, so the midpoint equals
	// the wheat baseline of 2520.
	require.Equal(t, 2520, got.CurrentMandiPrice)
	require.Equal(t, 2419, got.PredictedPriceMin)
	require.Equal(t, 2621, got.PredictedPriceMax)
	require.Equal(t, 0.0, got.PercentageChange)
	require.Equal(t, 2752, got.RecommendedListingPrice)
	require.InDelta(t, 0.675, got.Confidence, 1e-9)
	require.False(t, got.IsLiveMandiData)
	require.Len(t, got.Factors, 3)
	require.Contains(t, got.Factors[0], "Wheat")
	require.Contains(t, got.Factors[1], "Nashik")
}

func TestPredictFallbackChartSeries(t *testing.T) {
	svc := newTestService(&stubMandi{}, &stubGenerative{})

	got, err := svc.Predict(context.Background(), Request{Region: "Nashik", Crop: "Wheat"})
	require.NoError(t, err)

	require.Len(t, got.HistoricalData, 7)
	require.Len(t, got.PredictedData, 7)
	require.Equal(t, "07 Oct", got.HistoricalData[0].Date)
	require.Equal(t, "13 Oct", got.HistoricalData[6].Date)
	require.Equal(t, "15 Oct", got.PredictedData[0].Date)
	require.Equal(t, "21 Oct", got.PredictedData[6].Date)
	for _, point := range got.HistoricalData {
		require.Equal(t, 2520, point.Price)
	}
}

func TestPredictFallbackUnknownCropUsesDefaultBase(t *testing.T) {
	svc := newTestService(&stubMandi{}, &stubGenerative{})

	got, err := svc.Predict(context.Background(), Request{Region: "Nashik", Crop: "Dragonfruit"})
	require.NoError(t, err)
	require.Equal(t, 2500, got.CurrentMandiPrice)
}

func TestPredictFallbackAnchoredOnLivePrice(t *testing.T) {
	svc := newTestService(&stubMandi{price: 1850, live: true}, &stubGenerative{})

	got, err := svc.Predict(context.Background(), Request{Region: "Nashik", Crop: "Wheat"})
	require.NoError(t, err)
	require.Equal(t, 1850, got.CurrentMandiPrice)
	require.True(t, got.IsLiveMandiData)
	require.InDelta(t, 0.9, got.Confidence, 1e-9)
}

func TestPredictLivePriceReachesPrompt(t *testing.T) {
	client := &stubGenerative{configured: true, text: `{"currentMandiPrice": 1850}`}
	svc := newTestService(&stubMandi{price: 1850, live: true}, client)

	_, err := svc.Predict(context.Background(), Request{Region: "Nashik", Crop: "Wheat"})
	require.NoError(t, err)
	require.Equal(t, 1, client.calls)

	prompt := client.lastReq.Contents[0].Parts[0].Text
	require.Contains(t, prompt, "LIVE GOVT MANDI DATA")
	require.Contains(t, prompt, "Rs 1850 per quintal")
	require.Contains(t, prompt, "Variety: FAQ")
	require.Contains(t, prompt, "Date: 2025-10-14")
}

func TestPredictParsesModelReply(t *testing.T) {
	client := &stubGenerative{configured: true, text: "```json\n" + `{
		"currentMandiPrice": 2480,
		"predictedPriceMin": 2400,
		"predictedPriceMax": 2580,
		"percentageChange": 1.8,
		"confidence": 0.82,
		"recommendedListingPrice": 2700,
		"factors": ["Monsoon delays", "Export demand"],
		"historicalData": [{"date": "10 Oct", "price": 2450}],
		"predictedData": [{"date": "17 Oct", "price": 2510}]
	}` + "\n```"}
	svc := newTestService(&stubMandi{}, client)

	got, err := svc.Predict(context.Background(), Request{Region: "Nashik", Crop: "Wheat"})
	require.NoError(t, err)
	require.Equal(t, 2480, got.CurrentMandiPrice)
	require.Equal(t, 2400, got.PredictedPriceMin)
	require.Equal(t, 2580, got.PredictedPriceMax)
	require.Equal(t, 1.8, got.PercentageChange)
	require.Equal(t, 0.82, got.Confidence)
	require.Equal(t, 2700, got.RecommendedListingPrice)
	require.Equal(t, []string{"Monsoon delays", "Export demand"}, got.Factors)
	require.Equal(t, []PricePoint{{Date: "10 Oct", Price: 2450}}, got.HistoricalData)
	require.False(t, got.IsLiveMandiData)
}

func TestPredictParseDefaults(t *testing.T) {
	client := &stubGenerative{configured: true, text: `{}`}
	svc := newTestService(&stubMandi{}, client)

	got, err := svc.Predict(context.Background(), Request{Region: "Nashik", Crop: "Wheat"})
	require.NoError(t, err)
	require.Equal(t, 2600, got.CurrentMandiPrice)
	require.Equal(t, 2470, got.PredictedPriceMin)
	require.Equal(t, 2730, got.PredictedPriceMax)
	require.Equal(t, 0.7, got.Confidence)
	require.Equal(t, 2730, got.RecommendedListingPrice)
	require.Len(t, got.Factors, 3)
	require.Empty(t, got.HistoricalData)
	require.Empty(t, got.PredictedData)
}

func TestPredictSwapsInvertedRange(t *testing.T) {
	client := &stubGenerative{configured: true, text: `{"currentMandiPrice": 2000, "predictedPriceMin": 2200, "predictedPriceMax": 1900}`}
	svc := newTestService(&stubMandi{}, client)

	got, err := svc.Predict(context.Background(), Request{Region: "Nashik", Crop: "Wheat"})
	require.NoError(t, err)
	require.Equal(t, 1900, got.PredictedPriceMin)
	require.Equal(t, 2200, got.PredictedPriceMax)
}

func TestPredictRateLimitFallsBackWithoutRetry(t *testing.T) {
	client := &stubGenerative{configured: true, err: gemini.ErrRateLimited}
	svc := newTestService(&stubMandi{}, client)

	got, err := svc.Predict(context.Background(), Request{Region: "Nashik", Crop: "Wheat"})
	require.NoError(t, err)
	require.Equal(t, 1, client.calls)
	require.Equal(t, 2520, got.CurrentMandiPrice)
}
