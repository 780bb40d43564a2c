package diagnosis

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/agriconnect/agriconnect/internal/domain/advisory"
	"github.com/agriconnect/agriconnect/internal/infra/llm/gemini"
)

// Service exposes crop disease diagnosis.
type Service interface {
	Diagnose(ctx context.Context, req Request) Result
}

var dataURIPattern = regexp.MustCompile(`^data:([^;]+);base64,(.+)$`)

type service struct {
	pipeline advisory.Pipeline[parsedImage, Result]
	logger   *slog.Logger
}

type parsedImage struct {
	mimeType string
	data     string
}

// NewService wires up the diagnosis domain.
func NewService(cfg Config, client advisory.GenerativeClient, logger *slog.Logger) Service {
	log := logger.With("component", "diagnosis.service")
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 2
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 45 * time.Second
	}
	return &service{
		pipeline: advisory.Pipeline[parsedImage, Result]{
			Name:   "diagnosis",
			Model:  cfg.Model,
			Client: client,
			Build: func(img parsedImage) gemini.GenerateContentRequest {
				return buildRequest(cfg, img)
			},
			Parse:    parseResult,
			Fallback: fallbackResult,
			Retry:    advisory.RetryPolicy{MaxAttempts: attempts, Backoff: backoff},
			Logger:   log,
		},
		logger: log,
	}
}

// Diagnose never returns an error: malformed input and every downstream
// failure produce the honest "Diagnosis Unavailable" result instead.
func (s *service) Diagnose(ctx context.Context, req Request) Result {
	matches := dataURIPattern.FindStringSubmatch(req.PhotoDataURI)
	if matches == nil || !strings.HasPrefix(matches[1], "image/") {
		s.logger.Warn("rejected diagnosis input", "reason", "invalid data uri")
		return unavailable("Invalid image format. Please upload a JPG, PNG, or WebP image.")
	}
	img := parsedImage{mimeType: matches[1], data: matches[2]}
	return s.pipeline.Run(ctx, img)
}

func buildRequest(cfg Config, img parsedImage) gemini.GenerateContentRequest {
	return gemini.GenerateContentRequest{
		Contents: []gemini.Content{{
			Parts: []gemini.Part{
				{Text: diagnosisPrompt},
				{InlineData: &gemini.Blob{MIMEType: img.mimeType, Data: img.data}},
			},
		}},
		GenerationConfig: &gemini.GenerationConfig{
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxOutputTokens,
		},
	}
}

type resultWire struct {
	DiseaseName        json.RawMessage `json:"diseaseName"`
	Confidence         json.RawMessage `json:"confidence"`
	AffectedSeverity   json.RawMessage `json:"affectedSeverity"`
	ImmediateSteps     json.RawMessage `json:"immediateSteps"`
	FollowUpSteps      json.RawMessage `json:"followUpSteps"`
	CommunityPostsLink json.RawMessage `json:"communityPostsLink"`
}

func parseResult(raw string, _ parsedImage) (Result, error) {
	var wire resultWire
	if err := json.Unmarshal([]byte(advisory.ExtractJSON(raw)), &wire); err != nil {
		return Result{}, err
	}
	return Result{
		DiseaseName:        advisory.StringOr(wire.DiseaseName, "Could not determine disease"),
		Confidence:         advisory.Clamp01(advisory.NumberOr(wire.Confidence, 0.5)),
		AffectedSeverity:   advisory.StringOr(wire.AffectedSeverity, "Unknown"),
		ImmediateSteps:     advisory.StringOr(wire.ImmediateSteps, "Consult a local agricultural extension officer."),
		FollowUpSteps:      advisory.StringOr(wire.FollowUpSteps, "Monitor the plant closely over the next 2 weeks."),
		CommunityPostsLink: advisory.StringOr(wire.CommunityPostsLink, "/community"),
	}, nil
}

func fallbackResult(_ parsedImage, cause error) Result {
	reason := "Unexpected error during diagnosis."
	if cause != nil {
		reason = cause.Error()
	}
	return unavailable(reason)
}

// unavailable is the single fixed degraded result: there is no rule-based
// disease classifier, so a guess would be worse than an honest failure.
func unavailable(reason string) Result {
	return Result{
		DiseaseName:        "Diagnosis Unavailable",
		Confidence:         0,
		AffectedSeverity:   "Unknown",
		ImmediateSteps:     "Could not complete diagnosis. Reason: " + reason,
		FollowUpSteps:      "Please try again with a clearer, well-lit photo of the affected plant area.",
		CommunityPostsLink: "/community",
	}
}
