package pricing

import (
	"fmt"
	"math"
	"strings"

	"github.com/agriconnect/agriconnect/pkg/util"
)

// basePrices maps crop name substrings (English and transliterated Hindi) to
// deterministic baseline prices in INR per quintal.
var basePrices = []struct {
	aliases []string
	price   int
}{
	{[]string{"wheat", "gehu"}, 2520},
	{[]string{"cotton", "kapas"}, 7500},
	{[]string{"onion", "pyaaz"}, 1800},
	{[]string{"soyabean", "soybean"}, 4400},
	{[]string{"rice", "paddy"}, 2200},
	{[]string{"maize", "corn"}, 2100},
	{[]string{"tur", "arhar"}, 9000},
	{[]string{"banana", "kela"}, 1450},
	{[]string{"sugarcane", "ganna"}, 315},
	{[]string{"tomato", "tamatar"}, 1200},
	{[]string{"potato", "aloo"}, 1100},
}

const defaultBasePrice = 2500

// baseForCrop picks the deterministic baseline for a crop name. Matching is
// by substring so "Wheat (Lokwan)" still hits the wheat row.
func baseForCrop(crop string) int {
	lower := strings.ToLower(crop)
	price := defaultBasePrice
	for _, entry := range basePrices {
		for _, alias := range entry.aliases {
			if strings.Contains(lower, alias) {
				price = entry.price
			}
		}
	}
	return price
}

// fallback synthesizes a rule-based prediction with zero external calls.
// A live mandi anchor, when fetched earlier, overrides the crop table and
// raises the reported confidence.
func (s *service) fallback(in anchored, cause error) Prediction {
	base := baseForCrop(in.Crop)
	if in.isLive {
		base = in.livePrice
	}

	// Midpoint jitter of +/-5%; the band is +/-4% around the midpoint.
	fluctuation := s.randFloat()*0.1 - 0.05
	mid := float64(base) * (1 + fluctuation)
	minPrice := int(math.Round(mid * 0.96))
	maxPrice := int(math.Round(mid * 1.04))
	pctChange := math.Round((mid-float64(base))/float64(base)*100*100) / 100

	today := s.now()
	historical := make([]PricePoint, 0, 7)
	for i := 7; i > 0; i-- {
		historical = append(historical, PricePoint{
			Date:  util.DayLabel(today.AddDate(0, 0, -i)),
			Price: jitterPrice(float64(base), s.randFloat),
		})
	}
	predicted := make([]PricePoint, 0, 7)
	for i := 1; i <= 7; i++ {
		predicted = append(predicted, PricePoint{
			Date:  util.DayLabel(today.AddDate(0, 0, i)),
			Price: jitterPrice(mid, s.randFloat),
		})
	}

	confidence := 0.6 + s.randFloat()*0.15
	if in.isLive {
		confidence = 0.85 + s.randFloat()*0.1
	}

	return Prediction{
		CurrentMandiPrice:       base,
		PredictedPriceMin:       minPrice,
		PredictedPriceMax:       maxPrice,
		PercentageChange:        pctChange,
		Confidence:              confidence,
		RecommendedListingPrice: int(math.Round(float64(maxPrice) * 1.05)),
		Factors: []string{
			fmt.Sprintf("Historical baseline pricing for %s", in.Crop),
			fmt.Sprintf("Regional variations for %s", in.Region),
			"Standard seasonal supply patterns",
		},
		HistoricalData:  historical,
		PredictedData:   predicted,
		IsLiveMandiData: in.isLive,
	}
}

// jitterPrice applies an independent +/-2.5% wobble per chart point.
func jitterPrice(around float64, randFloat func() float64) int {
	return int(math.Round(around * (1 + (randFloat()*0.05 - 0.025))))
}
