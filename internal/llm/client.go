// Package llm generates kid-friendly memory hints for letters using the
// Anthropic API.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/time/rate"
)

const (
	anthropicAPIURL  = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 512
)

// ErrNoAPIKey means no key was configured.
var ErrNoAPIKey = errors.New("ANTHROPIC_API_KEY environment variable not set")

// Client is an Anthropic API client.
type Client struct {
	apiKey     string
	url        string
	model      string
	maxTokens  int
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Options configures a Client. Zero values take defaults; an empty
// APIKey or BaseURL is read from the environment.
type Options struct {
	APIKey            string
	BaseURL           string
	Model             string
	MaxTokens         int
	RequestsPerMinute int
	HTTPClient        *http.Client
}

type environment struct {
	APIKey  string `env:"ANTHROPIC_API_KEY"`
	BaseURL string `env:"ANTHROPIC_BASE_URL"`
}

// HintRequest describes the letter to explain.
type HintRequest struct {
	Glyph          string
	Pronunciation  string
	Category       string
	ExampleWord    string
	ExampleMeaning string
	Language       string // Reply language: en, fr or zh
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type response struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient creates a new Anthropic client.
func NewClient(opts Options) (*Client, error) {
	vars, err := env.ParseAs[environment]()
	if err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		apiKey = strings.TrimSpace(vars.APIKey)
	}
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	url := anthropicAPIURL
	switch {
	case opts.BaseURL != "":
		url = strings.TrimRight(opts.BaseURL, "/") + "/v1/messages"
	case vars.BaseURL != "":
		url = strings.TrimRight(vars.BaseURL, "/") + "/v1/messages"
	}

	c := &Client{
		apiKey:     apiKey,
		url:        url,
		model:      opts.Model,
		maxTokens:  opts.MaxTokens,
		httpClient: opts.HTTPClient,
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.maxTokens <= 0 {
		c.maxTokens = defaultMaxTokens
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}

	return c, nil
}

// GenerateHint returns a short markdown memory hint for a letter.
func (c *Client) GenerateHint(ctx context.Context, h HintRequest) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("waiting for rate limit: %w", err)
		}
	}

	req := request{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []message{
			{Role: "user", Content: buildPrompt(h)},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshaling response (status %d): %w", resp.StatusCode, err)
	}

	if apiResp.Error != nil {
		return "", fmt.Errorf("API error: %s", apiResp.Error.Message)
	}

	var text strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	return strings.TrimSpace(text.String()), nil
}

var languageNames = map[string]string{
	"en": "English",
	"fr": "French",
	"zh": "Simplified Chinese",
}

func buildPrompt(h HintRequest) string {
	var sb strings.Builder

	sb.WriteString("You are a friendly teacher helping a young child (age 5-9) learn the Tibetan alphabet.\n\n")

	sb.WriteString("=== LETTER ===\n")
	sb.WriteString(fmt.Sprintf("Letter: %s\n", h.Glyph))
	sb.WriteString(fmt.Sprintf("Sound: %s\n", h.Pronunciation))
	if h.Category != "" {
		sb.WriteString(fmt.Sprintf("Kind: %s\n", h.Category))
	}
	if h.ExampleWord != "" {
		sb.WriteString(fmt.Sprintf("Example word: %s", h.ExampleWord))
		if h.ExampleMeaning != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", h.ExampleMeaning))
		}
		sb.WriteString("\n")
	}

	lang, ok := languageNames[h.Language]
	if !ok {
		lang = languageNames["en"]
	}

	sb.WriteString("\n=== YOUR TASK ===\n")
	sb.WriteString("Write a short memory hint that links the shape of the letter to its sound.\n\n")
	sb.WriteString("Requirements:\n")
	sb.WriteString("1. Use simple words and one playful picture a child can imagine\n")
	sb.WriteString("2. Mention the example word if one is given\n")
	sb.WriteString("3. Keep it under 60 words, formatted as Markdown with one bold keyword\n")
	sb.WriteString(fmt.Sprintf("4. Reply in %s\n\n", lang))
	sb.WriteString("Output ONLY the hint, nothing else.")

	return sb.String()
}
