package weatheradvice

import (
	"fmt"
	"strings"
)

// fallbackAdvice picks activity, harvest and tip lists from two conditions:
// whether the location is a known banana-growing region and whether the
// weather is severe (rain chance above 70% or wind above 50 km/h).
func fallbackAdvice(in situated, _ error) advice {
	isJalgaon := strings.Contains(strings.ToLower(in.location), "jalgaon")
	isSevere := in.forecast.PrecipitationChance > 70 || in.forecast.WindSpeed > 50

	activities := []string{"Irrigate fields", "Apply fertilizers", "Inspect crops for pests"}
	if isSevere {
		activities = []string{"Stay indoors", "Inspect stored crops", "Equipment maintenance"}
	}

	crops := []string{"Wheat", "Jowar", "Chickpea"}
	switch {
	case isSevere:
		crops = []string{}
	case isJalgaon:
		crops = []string{"Banana", "Onion", "Wheat"}
	}

	careTitle := "Monitor crop health"
	careTip := "Check crops for early signs of pest infestation or fungal disease given current weather conditions."
	if isJalgaon {
		careTitle = "Banana bunch protection"
		careTip = "Wrap developing banana bunches with perforated polythene bags to protect from pests and improve bunch quality."
	}

	return advice{
		SuitableActivities:         activities,
		RecommendedCropsForHarvest: crops,
		Recommendations: []Recommendation{
			{
				Category: "Irrigation",
				Title:    "Use drip irrigation",
				Tip:      fmt.Sprintf("With %s conditions, drip irrigation can save up to 40%% water while keeping soil moisture optimal for wheat and onion crops.", in.forecast.Description),
			},
			{
				Category: "Crop Care",
				Title:    careTitle,
				Tip:      careTip,
			},
		},
	}
}
