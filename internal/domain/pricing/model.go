package pricing

// Request identifies the commodity being priced.
type Request struct {
	Region  string `json:"region"`
	Crop    string `json:"crop"`
	Variety string `json:"variety"`
	// Date is the target calendar date, YYYY-MM-DD. Empty means today.
	Date string `json:"date"`
}

// PricePoint is one entry of a price chart series.
type PricePoint struct {
	Date  string `json:"date"`
	Price int    `json:"price"`
}

// Prediction is serialized back to API consumers. Prices are integer INR per
// quintal.
type Prediction struct {
	CurrentMandiPrice       int          `json:"currentMandiPrice"`
	PredictedPriceMin       int          `json:"predictedPriceMin"`
	PredictedPriceMax       int          `json:"predictedPriceMax"`
	PercentageChange        float64      `json:"percentageChange"`
	Confidence              float64      `json:"confidence"`
	RecommendedListingPrice int          `json:"recommendedListingPrice"`
	Factors                 []string     `json:"factors"`
	HistoricalData          []PricePoint `json:"historicalData"`
	PredictedData           []PricePoint `json:"predictedData"`
	IsLiveMandiData         bool         `json:"isLiveMandiData"`
}

// Config wires runtime settings for the pricing domain.
type Config struct {
	Model           string
	Temperature     float32
	MaxOutputTokens int
}
