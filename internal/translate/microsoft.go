// Package translate is the translation gateway backed by the Microsoft
// Translator text API (v3).
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/erselk/ugur-sahan-website/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultEndpoint = "https://api.cognitive.microsofttranslator.com/translate"
	apiVersion      = "3.0"

	// upstream error bodies are echoed back to callers; keep them short
	maxErrorBody = 2048
)

var (
	ErrNotConfigured = errors.New("translator is not configured")
	ErrEmptyResult   = errors.New("translator returned no text")
)

// UpstreamError is a non-2xx answer from the translation API.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("translation failed (%d): %s", e.Status, e.Body)
}

type Config struct {
	Endpoint string
	APIKey   string
	Region   string
	Timeout  time.Duration
}

// Recorder receives one observation per upstream call.
type Recorder interface {
	RecordTranslation(ctx context.Context, source, target string, ok bool, duration time.Duration)
}

// Health mirrors the outcome of the most recent call.
type Health struct {
	Healthy     bool      `json:"healthy"`
	LastSuccess time.Time `json:"last_success"`
	LastError   string    `json:"last_error,omitempty"`
}

type Client struct {
	endpoint string
	apiKey   string
	region   string
	client   *http.Client
	logger   *zap.SugaredLogger
	metrics  Recorder

	mu     sync.RWMutex
	health Health
}

func NewClient(cfg Config, logger *zap.SugaredLogger, metrics Recorder) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		region:   cfg.Region,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
		metrics:  metrics,
		health:   Health{Healthy: true, LastSuccess: time.Now()},
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

func (c *Client) Health() Health {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.health
}

func (c *Client) updateHealth(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.health.Healthy = err == nil
	if err == nil {
		c.health.LastSuccess = time.Now()
		c.health.LastError = ""
	} else {
		c.health.LastError = err.Error()
	}
}

type translateItem struct {
	Text string `json:"text"`
}

type translateResult struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

// Translate sends one text to the API and returns the first translation.
func (c *Client) Translate(ctx context.Context, text string, source, target domain.Locale) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	start := time.Now()
	out, err := c.do(ctx, text, source, target)
	c.updateHealth(err)
	if c.metrics != nil {
		c.metrics.RecordTranslation(ctx, string(source), string(target), err == nil, time.Since(start))
	}
	if err != nil {
		c.logger.Errorw("Translation request failed",
			"source", source,
			"target", target,
			"chars", len(text),
			"error", err,
		)
		return "", err
	}
	c.logger.Debugw("Translation request succeeded", "source", source, "target", target, "duration", time.Since(start))
	return out, nil
}

func (c *Client) do(ctx context.Context, text string, source, target domain.Locale) (string, error) {
	params := url.Values{}
	params.Set("api-version", apiVersion)
	params.Set("from", string(source))
	params.Set("to", string(target))
	if c.region != "" {
		params.Set("region", c.region)
	}
	requestURL := fmt.Sprintf("%s?%s", c.endpoint, params.Encode())

	body, err := json.Marshal([]translateItem{{Text: text}})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	if c.region != "" {
		req.Header.Set("Ocp-Apim-Subscription-Region", c.region)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call translator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &UpstreamError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(raw))}
	}

	var results []translateResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", fmt.Errorf("failed to decode translator response: %w", err)
	}
	if len(results) == 0 || len(results[0].Translations) == 0 || results[0].Translations[0].Text == "" {
		return "", ErrEmptyResult
	}
	return results[0].Translations[0].Text, nil
}
