package openexchangerates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	portssvc "github.com/SscSPs/metasettings/internal/core/ports/services"
	"github.com/SscSPs/metasettings/internal/platform/config"
	"github.com/shopspring/decimal"
)

// ErrMissingAppID is returned when the client has no app id to authenticate with.
var ErrMissingAppID = errors.New("openexchangerates app id is not set")

// maxErrorBody caps how much of a failed response ends up in an error message.
const maxErrorBody = 512

// Client fetches rates from openexchangerates.org. Rates are relative to USD.
type Client struct {
	appID      string
	baseURL    string
	httpClient *http.Client
}

// response is the payload of latest.json and historical/*.json.
// Failed requests carry Error/Status/Message/Description instead of Rates.
type response struct {
	Timestamp   int64                      `json:"timestamp"`
	Base        string                     `json:"base"`
	Rates       map[string]decimal.Decimal `json:"rates"`
	Error       bool                       `json:"error"`
	Status      int                        `json:"status"`
	Message     string                     `json:"message"`
	Description string                     `json:"description"`
}

// NewClient creates a new Client from cfg.
func NewClient(cfg config.ProviderConfig) *Client {
	return &Client{
		appID:   cfg.AppID,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Ensure implementation matches interface
var _ portssvc.RateProvider = (*Client)(nil)

// FetchRates returns the latest rates, or the end-of-day rates of date when date is non-nil.
func (c *Client) FetchRates(ctx context.Context, date *time.Time) (map[string]decimal.Decimal, error) {
	if c.appID == "" {
		return nil, ErrMissingAppID
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(date), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var apiErr response
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error {
			return nil, fmt.Errorf("API returned status %d: %s: %s", resp.StatusCode, apiErr.Message, apiErr.Description)
		}
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if payload.Error {
		return nil, fmt.Errorf("API returned error %d: %s", payload.Status, payload.Message)
	}
	if payload.Rates == nil {
		return nil, errors.New("API response has no rates")
	}
	return payload.Rates, nil
}

func (c *Client) endpoint(date *time.Time) string {
	path := "/latest.json"
	if date != nil {
		path = "/historical/" + date.Format(time.DateOnly) + ".json"
	}
	return c.baseURL + path + "?" + url.Values{"app_id": {c.appID}}.Encode()
}
