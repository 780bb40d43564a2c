package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agriconnect/agriconnect/pkg/metrics"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// ErrNotConfigured is returned when no API key is available; callers degrade
// to their fallback path without touching the network.
var ErrNotConfigured = errors.New("gemini api key not configured")

// ErrRateLimited marks an HTTP 429 from the generative endpoint. Retry policy
// differs per flow, so the status is surfaced as a sentinel instead of being
// handled here.
var ErrRateLimited = errors.New("gemini rate limited")

// StatusError carries a non-2xx response for error reporting.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gemini api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gemini api error %d", e.StatusCode)
}

// Blob is inline binary data, base64 encoded.
type Blob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Part is one element of a multimodal prompt.
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

// Content groups prompt parts.
type Content struct {
	Parts []Part `json:"parts"`
}

// GenerationConfig tunes the model call.
type GenerationConfig struct {
	Temperature     float32 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// GenerateContentRequest is the payload sent to generateContent.
type GenerateContentRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateResult is the text reply plus token accounting.
type GenerateResult struct {
	Text  string
	Usage metrics.TokenUsage
}

type embedContentResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// Client performs HTTP requests against the Gemini REST API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Gemini client. An empty key is tolerated so the
// advisory pipelines can run in fallback-only mode.
func NewClient(apiKey, baseURL string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// GenerateContent issues one generateContent call and returns the first
// candidate's text.
func (c *Client) GenerateContent(ctx context.Context, model string, req GenerateContentRequest) (GenerateResult, error) {
	if !c.Configured() {
		return GenerateResult{}, ErrNotConfigured
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("encode generate request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, url.QueryEscape(c.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return GenerateResult{}, fmt.Errorf("build generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("request generate content: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return GenerateResult{}, fmt.Errorf("read generate response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return GenerateResult{}, ErrRateLimited
	}
	if resp.StatusCode >= 300 {
		return GenerateResult{}, &StatusError{StatusCode: resp.StatusCode, Message: extractErrorMessage(body)}
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return GenerateResult{}, fmt.Errorf("decode generate response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return GenerateResult{}, errors.New("gemini returned no candidates")
	}

	return GenerateResult{
		Text: decoded.Candidates[0].Content.Parts[0].Text,
		Usage: metrics.TokenUsage{
			PromptTokens:     decoded.UsageMetadata.PromptTokenCount,
			CandidatesTokens: decoded.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      decoded.UsageMetadata.TotalTokenCount,
		},
	}, nil
}

// EmbedContent returns the embedding vector for a piece of text.
func (c *Client) EmbedContent(ctx context.Context, model, text string) ([]float32, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(map[string]any{
		"content": Content{Parts: []Part{{Text: text}}},
	})
	if err != nil {
		return nil, fmt.Errorf("encode embed request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s:embedContent?key=%s", c.baseURL, model, url.QueryEscape(c.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request embed content: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read embed response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: extractErrorMessage(body)}
	}

	var decoded embedContentResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(decoded.Embedding.Values) == 0 {
		return nil, errors.New("gemini returned an empty embedding")
	}
	return decoded.Embedding.Values, nil
}

func extractErrorMessage(body []byte) string {
	var decoded struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return strings.TrimSpace(string(body))
	}
	if decoded.Error.Message != "" {
		return decoded.Error.Message
	}
	return strings.TrimSpace(string(body))
}
