package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
)

// DefaultBaseURL is where guardd serves the admin API
const DefaultBaseURL = "http://127.0.0.1:7432"

// Client is the HTTP client for the guardd admin API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new admin API client
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Classification is the admin API verdict for one text
type Classification struct {
	Exposes  bool     `json:"expone"`
	Category string   `json:"tipo"`
	Matches  []string `json:"matches"`
}

// Health is the guardd liveness report
type Health struct {
	Status string `json:"status"`
	Pages  int    `json:"pages"`
	Remote bool   `json:"remote"`
}

// ============ Classification ============

// Classify classifies text with the current settings
func (c *Client) Classify(ctx context.Context, text string) (*Classification, error) {
	var result Classification
	if err := c.do(ctx, http.MethodPost, "/api/classify", map[string]string{"text": text}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health gets the guardd status
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var result Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ============ History ============

// ListHistory gets every recorded decision, newest first
func (c *Client) ListHistory(ctx context.Context) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry
	if err := c.do(ctx, http.MethodGet, "/api/history", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// HistoryToday counts the decisions recorded since local midnight
func (c *Client) HistoryToday(ctx context.Context) (int, error) {
	var result struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/history/today", nil, &result); err != nil {
		return 0, err
	}
	return result.Count, nil
}

// ============ Settings ============

// GetSettings gets the stored settings
func (c *Client) GetSettings(ctx context.Context) (*domain.Settings, error) {
	var settings domain.Settings
	if err := c.do(ctx, http.MethodGet, "/api/settings", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// SetSettings applies a partial update and returns the saved settings
func (c *Client) SetSettings(ctx context.Context, patch domain.SettingsPatch) (*domain.Settings, error) {
	var settings domain.Settings
	if err := c.do(ctx, http.MethodPut, "/api/settings", patch, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// ============ HTTP Helpers ============

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Message: apiMessage(respBody)}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// APIError is a non-200 admin API response
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// apiMessage pulls the error field out of a JSON error body
func apiMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}
