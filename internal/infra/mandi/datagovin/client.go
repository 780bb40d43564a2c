package datagovin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.data.gov.in/resource"

// The Agmarknet daily price resource is public; its key is a fixed
// non-secret published by data.gov.in.
const (
	defaultResourceID = "9ef84268-d588-465a-a308-a864a43d0070"
	defaultAPIKey     = "579b464db66ec23bdd000001dfe40d65373a40b972eaf6d03322ffd4"
)

// Client fetches live mandi modal prices from data.gov.in.
type Client struct {
	baseURL    string
	apiKey     string
	resourceID string
	limit      int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds an API client. Empty settings fall back to the public
// Agmarknet resource.
func NewClient(baseURL, apiKey, resourceID string, logger *slog.Logger) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if strings.TrimSpace(apiKey) == "" {
		apiKey = defaultAPIKey
	}
	if strings.TrimSpace(resourceID) == "" {
		resourceID = defaultResourceID
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		resourceID: resourceID,
		limit:      15,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.With("component", "mandi.datagovin"),
	}
}

type apiResponse struct {
	Records []record `json:"records"`
}

type record struct {
	// data.gov.in serializes modal_price as a string.
	ModalPrice json.RawMessage `json:"modal_price"`
}

// ModalPrice looks up the live modal price for a commodity. It is a total
// function: any network, HTTP or parse failure yields (0, false), never an
// error. Two attempts are made, the commodity as given and a capitalized
// variant, since the upstream filter is case sensitive.
func (c *Client) ModalPrice(ctx context.Context, commodity string) (int, bool) {
	commodity = strings.TrimSpace(commodity)
	if commodity == "" {
		return 0, false
	}

	if price, ok := c.lookup(ctx, commodity); ok {
		return price, true
	}

	capitalized := capitalize(commodity)
	if capitalized != commodity {
		if price, ok := c.lookup(ctx, capitalized); ok {
			return price, true
		}
	}

	c.logger.Info("no live mandi price found", "commodity", commodity)
	return 0, false
}

func (c *Client) lookup(ctx context.Context, commodity string) (int, bool) {
	endpoint := fmt.Sprintf("%s/%s?api-key=%s&format=json&limit=%d&filters[commodity]=%s",
		c.baseURL, c.resourceID, url.QueryEscape(c.apiKey), c.limit, url.QueryEscape(commodity))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Warn("build mandi request failed", "error", err)
		return 0, false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("mandi request failed", "commodity", commodity, "error", err)
		return 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		c.logger.Warn("mandi request error", "commodity", commodity, "status", resp.StatusCode)
		return 0, false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.logger.Warn("read mandi response failed", "error", err)
		return 0, false
	}

	var decoded apiResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		c.logger.Warn("decode mandi response failed", "error", err)
		return 0, false
	}

	for _, rec := range decoded.Records {
		if price, ok := parseModalPrice(rec.ModalPrice); ok {
			c.logger.Info("live mandi price found", "commodity", commodity, "price", price)
			return price, true
		}
	}
	return 0, false
}

// parseModalPrice accepts both the string form the API usually sends and a
// bare number. Zero and negative values are treated as absent.
func parseModalPrice(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	text := strings.Trim(string(raw), `"`)
	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, false
	}
	price := int(value)
	if price <= 0 {
		return 0, false
	}
	return price, true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
