package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/agriconnect/agriconnect/internal/domain/advisory"
	"github.com/agriconnect/agriconnect/internal/infra/llm/gemini"
	apperrors "github.com/agriconnect/agriconnect/pkg/errors"
)

// Service exposes crop price prediction.
type Service interface {
	Predict(ctx context.Context, req Request) (Prediction, error)
}

// MandiClient supplies live modal prices. It is total: no data is (0, false).
type MandiClient interface {
	ModalPrice(ctx context.Context, commodity string) (int, bool)
}

type service struct {
	pipeline  advisory.Pipeline[anchored, Prediction]
	mandi     MandiClient
	logger    *slog.Logger
	randFloat func() float64
	now       func() time.Time
}

// anchored is the pipeline input: the caller's request enriched with the
// live price fetched before prompt construction.
type anchored struct {
	Request
	livePrice int
	isLive    bool
}

// NewService wires up the pricing domain.
func NewService(cfg Config, mandi MandiClient, client advisory.GenerativeClient, logger *slog.Logger) Service {
	svc := &service{
		mandi:     mandi,
		logger:    logger.With("component", "pricing.service"),
		randFloat: rand.Float64,
		now:       time.Now,
	}
	svc.pipeline = advisory.Pipeline[anchored, Prediction]{
		Name:   "pricing",
		Model:  cfg.Model,
		Client: client,
		Build: func(in anchored) gemini.GenerateContentRequest {
			return buildRequest(cfg, in)
		},
		Parse:    parsePrediction,
		Fallback: svc.fallback,
		// Rate limiting falls straight through to the rule-based prediction
		// so the price tab stays responsive.
		Retry:  advisory.NoRetry(),
		Logger: svc.logger,
	}
	return svc
}

// Predict validates the request, anchors it on live mandi data when
// available, and runs the pipeline. Errors are returned only for invalid
// caller input; every downstream failure degrades to the fallback.
func (s *service) Predict(ctx context.Context, req Request) (Prediction, error) {
	req.Region = strings.TrimSpace(req.Region)
	req.Crop = strings.TrimSpace(req.Crop)
	if req.Region == "" {
		return Prediction{}, apperrors.Wrap("invalid_input", "region is required", nil)
	}
	if req.Crop == "" {
		return Prediction{}, apperrors.Wrap("invalid_input", "crop is required", nil)
	}
	if strings.TrimSpace(req.Variety) == "" {
		req.Variety = "FAQ"
	}
	if strings.TrimSpace(req.Date) == "" {
		req.Date = s.now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return Prediction{}, apperrors.Wrap("invalid_input", "date must be formatted as YYYY-MM-DD", err)
	}

	in := anchored{Request: req}
	// The fetch happens before the model call regardless of the model's
	// availability; the fallback uses the anchor too.
	if price, ok := s.mandi.ModalPrice(ctx, req.Crop); ok {
		in.livePrice = price
		in.isLive = true
	}

	return s.pipeline.Run(ctx, in), nil
}

func buildRequest(cfg Config, in anchored) gemini.GenerateContentRequest {
	liveContext := ""
	if in.isLive {
		liveContext = fmt.Sprintf("\n- LIVE GOVT MANDI DATA: The *actual* current modal price for %s on the Agmarknet API right now is precisely Rs %d per quintal. You MUST base your predictions exactly centered around this live number.\n", in.Crop, in.livePrice)
	}

	prompt := fmt.Sprintf(`You are an expert in agricultural economics, specializing in predicting crop prices in Indian markets (Agmarknet / MSAMB).

Based on the provided details and the LIVE DATA below, predict the market price range for 7 days from the provided date.

Details:
- Region: %s
- Crop: %s
- Variety: %s
- Date: %s%s

CRITICAL RULES:
1. Use the provided LIVE GOVT MANDI DATA as your unwavering baseline for the "currentMandiPrice" value if it exists.
2. The predicted price MUST be evaluated contextually using: predicted_price = current_price * (1 + seasonal_factor + demand_factor - supply_factor).
3. The predicted price MUST NOT deviate more than +/-10-15%% from the Current Mandi Price unless strongly justified by extreme seasonality.
4. Provide a prediction RANGE (predictedPriceMin and predictedPriceMax) instead of a single number, to reflect market volatility.
5. Provide the percentageChange (positive or negative float) from the current price to the midpoint of your predicted range.
6. Identify the top 3 factors influencing your prediction (e.g. "Monsoon delays").
7. All prices must be integers representing INR per quintal.
8. NEVER output 2600 or 2720 unless it is the EXACT scientifically accurate market price.
9. Generate 'historicalData' array of 7 items showing realistic prices leading UP TO the current date. (Format date as 'DD MMM' e.g. '14 Oct').
10. Generate 'predictedData' array of 7 items showing realistic prices STARTING FROM the current date forward.

Think carefully about the real-world historical pricing for this specific crop in this specific region in India.
Then, output ONLY the JSON, strictly matching this format (NO markdown fences, NO extra text):

{ "currentMandiPrice": 1234, "predictedPriceMin": 1200, "predictedPriceMax": 1300, "percentageChange": 2.5, "confidence": 0.88, "recommendedListingPrice": 1350, "factors": ["Factor A"], "historicalData": [{"date":"10 Oct", "price":1200}], "predictedData": [{"date":"17 Oct", "price":1250}] }`,
		in.Region, in.Crop, in.Variety, in.Date, liveContext)

	return gemini.GenerateContentRequest{
		Contents: []gemini.Content{{Parts: []gemini.Part{{Text: prompt}}}},
		GenerationConfig: &gemini.GenerationConfig{
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxOutputTokens,
		},
	}
}

type predictionWire struct {
	CurrentMandiPrice       json.RawMessage `json:"currentMandiPrice"`
	PredictedPriceMin       json.RawMessage `json:"predictedPriceMin"`
	PredictedPriceMax       json.RawMessage `json:"predictedPriceMax"`
	PercentageChange        json.RawMessage `json:"percentageChange"`
	Confidence              json.RawMessage `json:"confidence"`
	RecommendedListingPrice json.RawMessage `json:"recommendedListingPrice"`
	Factors                 json.RawMessage `json:"factors"`
	HistoricalData          json.RawMessage `json:"historicalData"`
	PredictedData           json.RawMessage `json:"predictedData"`
}

// pointsOr decodes a chart series, defaulting to empty on any type mismatch.
func pointsOr(raw json.RawMessage) []PricePoint {
	if len(raw) == 0 {
		return []PricePoint{}
	}
	var points []PricePoint
	if err := json.Unmarshal(raw, &points); err != nil {
		return []PricePoint{}
	}
	return points
}

func parsePrediction(raw string, in anchored) (Prediction, error) {
	var wire predictionWire
	if err := json.Unmarshal([]byte(advisory.ExtractJSON(raw)), &wire); err != nil {
		return Prediction{}, err
	}

	current := int(advisory.NumberOr(wire.CurrentMandiPrice, 2600))
	factors, err := advisory.CoerceStringList(wire.Factors)
	if err != nil || len(factors) == 0 {
		factors = []string{"Seasonal demand fluctuations", "Local transport costs", "Standard market rates"}
	}

	minPrice := int(advisory.NumberOr(wire.PredictedPriceMin, float64(current)*0.95))
	maxPrice := int(advisory.NumberOr(wire.PredictedPriceMax, float64(current)*1.05))
	if maxPrice < minPrice {
		minPrice, maxPrice = maxPrice, minPrice
	}

	return Prediction{
		CurrentMandiPrice:       current,
		PredictedPriceMin:       minPrice,
		PredictedPriceMax:       maxPrice,
		PercentageChange:        advisory.NumberOr(wire.PercentageChange, 0),
		Confidence:              advisory.Clamp01(advisory.NumberOr(wire.Confidence, 0.7)),
		RecommendedListingPrice: int(advisory.NumberOr(wire.RecommendedListingPrice, math.Round(float64(current)*1.05))),
		Factors:                 advisory.CleanList(factors),
		HistoricalData:          pointsOr(wire.HistoricalData),
		PredictedData:           pointsOr(wire.PredictedData),
		IsLiveMandiData:         in.isLive,
	}, nil
}
