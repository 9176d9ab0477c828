// Package grok provides the boundary client for x.ai's chat completions
// API. The core never talks to it: the serving layer composes prompts from
// the assessment output. Failures degrade to an explanatory string so
// scoring is never affected by the insight path.
package grok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/stresswatch/internal/clientdata"
	"github.com/aristath/stresswatch/internal/domain"
)

const (
	insightCacheTable = "grok_insights"
	insightCacheTTL   = 6 * time.Hour
	requestTimeout    = 20 * time.Second
)

// Config holds client configuration.
type Config struct {
	APIKey  string
	BaseURL string // e.g. https://api.x.ai/v1
	Model   string // e.g. grok-4-latest
}

// Client calls the chat completions API.
// cacheRepo is optional - if nil, caching is disabled.
type Client struct {
	cfg       Config
	client    *http.Client
	cacheRepo *clientdata.Repository
	log       zerolog.Logger
}

// NewClient creates a new insight client.
func NewClient(cfg Config, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		cfg:       cfg,
		client:    &http.Client{Timeout: requestTimeout},
		cacheRepo: cacheRepo,
		log:       log.With().Str("client", "grok").Logger(),
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Insight returns an actionable suggestion for a scored customer. Missing
// credentials and transport failures return explanatory text, never an
// error: the insight is decoration on top of the assessment.
func (c *Client) Insight(ctx context.Context, a domain.Assessment, v domain.FeatureVector) string {
	if c.cfg.APIKey == "" {
		return "AI suggestions unavailable: XAI_API_KEY not set."
	}

	// Cache-first: insights are expensive and risk inputs move slowly.
	if c.cacheRepo != nil {
		var cached string
		if ok, err := c.cacheRepo.GetJSONIfFresh(insightCacheTable, a.CustomerID, &cached); err == nil && ok {
			c.log.Debug().Str("customer_id", a.CustomerID).Msg("Insight cache hit")
			return cached
		}
	}

	prompt := buildPrompt(a, v)

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a professional financial advisor."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return fmt.Sprintf("Grok error: %v", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Sprintf("Grok error: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("customer_id", a.CustomerID).Msg("Insight request failed")
		return fmt.Sprintf("Grok error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Str("customer_id", a.CustomerID).Msg("Insight request rejected")
		return fmt.Sprintf("Grok error: unexpected status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Sprintf("Grok error: %v", err)
	}
	if len(parsed.Choices) == 0 {
		return "Grok error: empty response"
	}

	insight := parsed.Choices[0].Message.Content

	if c.cacheRepo != nil {
		if err := c.cacheRepo.StoreJSON(insightCacheTable, a.CustomerID, insight, insightCacheTTL); err != nil {
			c.log.Warn().Err(err).Msg("Failed to cache insight")
		}
	}

	return insight
}

// buildPrompt composes the analyst prompt from the attribution set and the
// numeric signals the core exposes for this purpose.
func buildPrompt(a domain.Assessment, v domain.FeatureVector) string {
	factorDescs := make([]string, 0, len(a.TopFactors))
	for _, f := range a.TopFactors {
		factorDescs = append(factorDescs, fmt.Sprintf("%s (impact: %.2f)", f.Feature, f.Impact))
	}

	return fmt.Sprintf(`You are a professional financial risk analyst.
Analyze the following customer metrics:
- Risk Score: %d/100
- Key contributing factors: %s
- Recent behavioral alerts: Salary delay of %.0f days, %.0f failed auto-debits.

Task:
1. Identify the single most critical factor affecting this customer's risk.
2. Provide a specific, actionable suggestion for the customer to help them manage their finances and avoid missing their upcoming EMI.

Keep the response under 100 words and maintain a professional tone.`,
		a.RiskScore,
		strings.Join(factorDescs, ", "),
		v.SalaryDelayDays,
		v.FailedAutoDebits,
	)
}
