package metrics

// TokenUsage captures Gemini token counts reported for a generation call.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CandidatesTokens int `json:"candidatesTokens,omitempty"`
	TotalTokens      int `json:"totalTokens"`
}

// IsZero reports whether usage data is absent.
func (u TokenUsage) IsZero() bool {
	return u.PromptTokens == 0 && u.CandidatesTokens == 0 && u.TotalTokens == 0
}
