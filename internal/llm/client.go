// Package llm is the client for the Anthropic Messages API that serves every generation request.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/weddingseo/contentproxy/internal/config"
	"github.com/weddingseo/contentproxy/internal/metrics"
	"github.com/weddingseo/contentproxy/internal/operation"
)

const apiVersion = "2023-06-01"

// maxErrorBody bounds how much of a failed upstream response is logged.
const maxErrorBody = 4 << 10

var (
	ErrAPIKeyMissing   = errors.New("anthropic api key not configured")
	ErrInvalidResponse = errors.New("anthropic response has no text content")
)

// StatusError is returned when the upstream answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("anthropic returned status %d", e.StatusCode)
}

// Result is the part of an upstream response the proxy passes on.
type Result struct {
	Text string
	// Usage is the upstream usage object verbatim, nil when absent.
	Usage json.RawMessage
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client calls POST {base}/v1/messages. It never retries.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

// NewClient creates a Client from config. An empty API key is accepted; every
// Generate call then fails with ErrAPIKeyMissing.
func NewClient(cfg config.AnthropicConfig) *Client {
	return &Client{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
	}
}

// Generate sends prompt with the system template of op and returns the first text block.
func (c *Client) Generate(ctx context.Context, op operation.Type, prompt string) (*Result, error) {
	if c.apiKey == "" {
		metrics.UpstreamRequestsTotal.WithLabelValues("no_key").Inc()
		return nil, ErrAPIKeyMissing
	}

	payload, err := json.Marshal(messagesRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		System:      SystemPrompt(op),
		Messages:    []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.UpstreamDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("transport_error").Inc()
		return nil, fmt.Errorf("calling anthropic: %w", err)
	}
	defer resp.Body.Close()

	metrics.UpstreamRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		slog.Error("anthropic request failed",
			"status", resp.StatusCode,
			"type", op,
			"body", string(body),
		)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading anthropic response: %w", err)
	}
	return parseResponse(body)
}

func parseResponse(body []byte) (*Result, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidResponse
	}

	text := gjson.GetBytes(body, "content.0.text")
	if text.Type != gjson.String || text.Str == "" {
		return nil, ErrInvalidResponse
	}

	res := &Result{Text: text.Str}
	if usage := gjson.GetBytes(body, "usage"); usage.Exists() && usage.Type != gjson.Null {
		res.Usage = json.RawMessage(usage.Raw)
	}
	return res, nil
}
