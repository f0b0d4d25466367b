package keycrm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the public KeyCRM Open API endpoint.
const DefaultBaseURL = "https://openapi.keycrm.app/v1"

const requestTimeout = 30 * time.Second

// APIError is a KeyCRM response outside the accepted 200/201 range.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("KeyCRM API error (code %d): %s", e.Status, e.Body)
}

// Client delivers order payloads to KeyCRM over HTTP. One request, a fixed
// timeout, no retries; retry is the caller's next natural trigger.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a KeyCRM client. An empty baseURL selects the public
// endpoint.
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

// CreateOrder POSTs one order payload to KeyCRM. A nil error means the API
// answered 200 or 201; the response body is not inspected further. When
// debug is set, the outbound request and inbound response are written to the
// log before and after the call.
func (c *Client) CreateOrder(ctx context.Context, apiKey string, debug bool, payload *OrderPayload) error {
	url := c.baseURL + "/order"

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode order payload: %w", err)
	}

	if debug {
		c.logger.Info().
			Str("url", url).
			RawJSON("payload", body).
			Msg("Sending order to KeyCRM")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if debug {
		c.logger.Info().
			Int("status", resp.StatusCode).
			Str("body", string(respBody)).
			Msg("KeyCRM response")
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	return nil
}
