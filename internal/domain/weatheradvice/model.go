package weatheradvice

// Request carries a free-text location, e.g. "Jalgaon, Maharashtra".
type Request struct {
	Location string `json:"location"`
}

// Forecast is the day-zero weather snapshot surfaced with the advice.
type Forecast struct {
	Temperature         float64 `json:"temperature"`
	Humidity            int     `json:"humidity"`
	WindSpeed           float64 `json:"windSpeed"`
	Description         string  `json:"description"`
	PrecipitationChance int     `json:"precipitationChance"`
}

// Recommendation is one actionable farming tip.
type Recommendation struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Tip      string `json:"tip"`
}

// Result is serialized back to API consumers.
type Result struct {
	Location                   string           `json:"location"`
	Forecast                   Forecast         `json:"forecast"`
	Recommendations            []Recommendation `json:"recommendations"`
	SuitableActivities         []string         `json:"suitableActivities"`
	RecommendedCropsForHarvest []string         `json:"recommendedCropsForHarvest"`
}

// Config wires runtime settings for the weather advice domain.
type Config struct {
	Model           string
	Temperature     float32
	MaxOutputTokens int
}
