// Package codec is the client for the external generative text service. The
// service is opaque: it receives an instruction and an allow-listed payload
// and returns raw text. All parsing and validation happens on our side.
package codec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// #region config

// Config holds the generative endpoint parameters. Temperature is pinned to
// the service's most deterministic setting and is not configurable.
type Config struct {
	Endpoint  string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// DefaultConfig reads CALENDIS_GEN_ENDPOINT, CALENDIS_GEN_API_KEY,
// CALENDIS_GEN_MODEL, CALENDIS_GEN_MAX_TOKENS, CALENDIS_GEN_TIMEOUT.
func DefaultConfig() Config {
	cfg := Config{
		Model:     "mistral-small",
		MaxTokens: 400,
		Timeout:   8 * time.Second,
	}
	cfg.Endpoint = os.Getenv("CALENDIS_GEN_ENDPOINT")
	cfg.APIKey = os.Getenv("CALENDIS_GEN_API_KEY")
	if v := os.Getenv("CALENDIS_GEN_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("CALENDIS_GEN_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTokens = n
		}
	}
	if v := os.Getenv("CALENDIS_GEN_TIMEOUT"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			cfg.Timeout = time.Duration(sec) * time.Second
		}
	}
	return cfg
}

// #endregion config

// #region client

// Client calls the generative service over HTTP. One bounded attempt per
// narration need: no retry, request pacing via a rate limiter.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a client from config.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 2),
	}
}

// NewClientWithHTTP injects the HTTP client. Used by tests.
func NewClientWithHTTP(cfg Config, hc *http.Client) *Client {
	c := NewClient(cfg)
	c.http = hc
	return c
}

// Available reports whether the service is configured at all.
func (c *Client) Available() bool {
	return c.cfg.Endpoint != ""
}

// #endregion client

// #region generate

type generateRequest struct {
	Model       string         `json:"model"`
	Instruction string         `json:"instruction_text"`
	Payload     map[string]any `json:"structured_payload"`
	Temperature float64        `json:"temperature"`
	MaxTokens   int            `json:"max_tokens"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Generate sends one instruction + payload pair and returns the raw text.
// The caller owns all validation of that text.
func (c *Client) Generate(ctx context.Context, instruction string, payload map[string]any) (string, error) {
	if !c.Available() {
		return "", fmt.Errorf("generative service not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{
		Model:       c.cfg.Model,
		Instruction: instruction,
		Payload:     payload,
		Temperature: 0,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generate status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return "", fmt.Errorf("parse response envelope: %w", err)
	}
	return gr.Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// #endregion generate
