package diagnosis

import "time"

// Request carries the uploaded plant photo as a data URI.
type Request struct {
	PhotoDataURI string `json:"photoDataUri"`
}

// Result is always fully populated; degraded paths fill every field too.
type Result struct {
	DiseaseName        string  `json:"diseaseName"`
	Confidence         float64 `json:"confidence"`
	AffectedSeverity   string  `json:"affectedSeverity"`
	ImmediateSteps     string  `json:"immediateSteps"`
	FollowUpSteps      string  `json:"followUpSteps"`
	CommunityPostsLink string  `json:"communityPostsLink"`
}

// Config wires runtime settings for the diagnosis domain.
type Config struct {
	Model           string
	Temperature     float32
	MaxOutputTokens int
	// Rate-limit handling: diagnosis has no useful non-AI substitute, so it
	// gets one bounded retry after a fixed wait.
	RetryAttempts int
	RetryBackoff  time.Duration
}
