package data

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
	"github.com/devricklin/privacy-guard/internal/biz/repo"
)

const defaultAnalyzerTimeout = 5 * time.Second

// HTTPDoer executes HTTP requests. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// analyzerRepo calls the classifier service over HTTP
type analyzerRepo struct {
	endpoint string
	client   HTTPDoer
}

// NewAnalyzerRepo creates a classifier client for the service at baseURL
func NewAnalyzerRepo(baseURL string, timeout time.Duration) repo.ClassifierRepo {
	if timeout <= 0 {
		timeout = defaultAnalyzerTimeout
	}
	return NewAnalyzerRepoWithClient(baseURL, &http.Client{Timeout: timeout})
}

// NewAnalyzerRepoWithClient creates a classifier client over a custom doer
func NewAnalyzerRepoWithClient(baseURL string, client HTTPDoer) repo.ClassifierRepo {
	return &analyzerRepo{
		endpoint: strings.TrimRight(baseURL, "/") + "/analizar",
		client:   client,
	}
}

type analyzeRequest struct {
	Text string `json:"texto"`
}

// analyzeResponse decodes loosely: missing expone is false, null tipo is none
type analyzeResponse struct {
	Exposes  *bool   `json:"expone"`
	Category *string `json:"tipo"`
}

// Analyze posts text to the classifier and returns its verdict
func (r *analyzerRepo) Analyze(ctx context.Context, text string) (*domain.Verdict, error) {
	body, err := json.Marshal(analyzeRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call analyzer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("analyzer returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		// A malformed body is a non-exposing answer
		return &domain.Verdict{}, nil
	}

	verdict := &domain.Verdict{}
	if decoded.Exposes != nil {
		verdict.Exposes = *decoded.Exposes
	}
	if decoded.Category != nil {
		verdict.Category = *decoded.Category
	}
	return verdict, nil
}
