// Package fixer talks to fixer.io style "latest rates" endpoints.
package fixer

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

	"github.com/rustyeddy/poscalc/market"
)

const (
	// DefaultURL is the exchangeratesapi.io endpoint, fixer compatible.
	DefaultURL = "https://api.exchangeratesapi.io/"

	DefaultTimeout = 30 * time.Second
)

var (
	ErrNoRates  = errors.New("no rates found")
	ErrAPIError = errors.New("pricing API error")
)

// Client is a fixer API client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. An empty baseURL selects
// DefaultURL; a zero timeout selects DefaultTimeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// apiError is the object form of the error field used by fixer.io.
type apiError struct {
	Code int    `json:"code"`
	Type string `json:"type"`
	Info string `json:"info"`
}

// latestResponse is the body of /latest
type latestResponse struct {
	Success *bool              `json:"success,omitempty"`
	Base    string             `json:"base"`
	Date    string             `json:"date"`
	Rates   map[string]float64 `json:"rates"`
	Error   json.RawMessage    `json:"error,omitempty"`
}

// Latest fetches the latest rates relative to base. symbols limits the
// returned currencies; none means all.
func (c *Client) Latest(ctx context.Context, base string, symbols ...string) (market.Rates, error) {
	params := url.Values{}
	if c.apiKey != "" {
		params.Set("access_key", c.apiKey)
	}
	if base != "" {
		params.Set("base", strings.ToUpper(base))
	}
	if len(symbols) > 0 {
		params.Set("symbols", strings.ToUpper(strings.Join(symbols, ",")))
	}
	params.Set("format", "1")

	apiURL := fmt.Sprintf("%s/latest?%s", c.baseURL, params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return market.Rates{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return market.Rates{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return market.Rates{}, fmt.Errorf("read response: %w", err)
	}

	var apiResp latestResponse
	decodeErr := json.Unmarshal(body, &apiResp)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil {
			if msg := errorMessage(apiResp.Error); msg != "" {
				return market.Rates{}, fmt.Errorf("%w (status %d): %s", ErrAPIError, resp.StatusCode, msg)
			}
		}
		return market.Rates{}, fmt.Errorf("%w (status %d): %s", ErrAPIError, resp.StatusCode, string(bytes.TrimSpace(body)))
	}
	if decodeErr != nil {
		return market.Rates{}, fmt.Errorf("decode response: %w", decodeErr)
	}
	if msg := errorMessage(apiResp.Error); msg != "" {
		return market.Rates{}, fmt.Errorf("%w: %s", ErrAPIError, msg)
	}
	if apiResp.Success != nil && !*apiResp.Success {
		return market.Rates{}, fmt.Errorf("%w: request unsuccessful", ErrAPIError)
	}
	if len(apiResp.Rates) == 0 {
		return market.Rates{}, ErrNoRates
	}

	respBase := apiResp.Base
	if respBase == "" {
		respBase = base
	}
	rates := market.NewRates(respBase)
	for code, v := range apiResp.Rates {
		rates.Values[strings.ToUpper(code)] = v
	}
	return rates, nil
}

// errorMessage flattens the error field, which is a plain string on
// exchangeratesapi.io and an object on fixer.io.
func errorMessage(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var e apiError
	if err := json.Unmarshal(raw, &e); err == nil {
		switch {
		case e.Info != "":
			return e.Info
		case e.Type != "":
			return fmt.Sprintf("%s (code %d)", e.Type, e.Code)
		}
		return fmt.Sprintf("code %d", e.Code)
	}
	return string(raw)
}
