// Package ai wraps the OpenRouter chat-completions API behind a typed
// book-recommendation contract.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Outbound rate limiting: keep well under OpenRouter's free-tier ceiling.
const (
	rateLimit = 1
	rateBurst = 3
)

// Failure classes for gateway calls. Callers distinguish a gateway that
// could not be reached from one that answered with unusable content.
var (
	ErrUnavailable = errors.New("ai gateway unavailable")
	ErrMalformed   = errors.New("ai gateway returned malformed response")
)

// RecommendedAuthor is one author in the model's structured answer.
type RecommendedAuthor struct {
	Name string `json:"name"`
}

// RecommendedBook is the book in the model's structured answer.
type RecommendedBook struct {
	Title    string              `json:"title"`
	Language string              `json:"language"`
	Authors  []RecommendedAuthor `json:"authors"`
}

// Recommendation is the structured object the model must return.
type Recommendation struct {
	Book        RecommendedBook `json:"book"`
	PlotSummary string          `json:"plot_summary"`
	Rationale   string          `json:"rationale"`
}

// Result carries the parsed recommendation plus call metadata.
type Result struct {
	Recommendation Recommendation
	Model          string
	ElapsedSeconds float64
}

// ClientConfig collects the OpenRouter settings from the environment.
type ClientConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	SiteURL     string
	SiteTitle   string
}

// Client calls an OpenRouter-compatible /chat/completions endpoint with
// bearer auth and a strict JSON-schema response format.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	siteURL     string
	siteTitle   string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewClient builds an OpenRouter client. BaseURL should include the /v1
// prefix, e.g. "https://openrouter.ai/api/v1".
func NewClient(cfg ClientConfig) *Client {
	return &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       strings.TrimSpace(cfg.Model),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		siteURL:     cfg.SiteURL,
		siteTitle:   cfg.SiteTitle,
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), rateBurst),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Recommend sends the prompt pair and parses the structured recommendation.
// The deadline on ctx bounds the whole call; elapsed wall-clock time of the
// HTTP exchange is reported in the result.
func (c *Client) Recommend(ctx context.Context, systemPrompt, userPrompt string) (*Result, error) {
	if c.model == "" {
		return nil, fmt.Errorf("openrouter model required")
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", ErrUnavailable, err)
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:      c.maxTokens,
		Temperature:    c.temperature,
		ResponseFormat: recommendationResponseFormat(),
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.siteURL != "" {
		req.Header.Set("HTTP-Referer", c.siteURL)
	}
	if c.siteTitle != "" {
		req.Header.Set("X-Title", c.siteTitle)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return nil, fmt.Errorf("%w: %s: %s", ErrUnavailable, resp.Status, errResp.Error.Message)
		}
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrMalformed, err)
	}
	elapsed := time.Since(start).Seconds()

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrMalformed)
	}
	content := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty content", ErrMalformed)
	}

	var rec Recommendation
	if err := json.Unmarshal([]byte(content), &rec); err != nil {
		return nil, fmt.Errorf("%w: content is not valid JSON: %v", ErrMalformed, err)
	}
	if err := validateRecommendation(rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	model := chatResp.Model
	if model == "" {
		model = c.model
	}

	return &Result{
		Recommendation: rec,
		Model:          model,
		ElapsedSeconds: elapsed,
	}, nil
}

func validateRecommendation(rec Recommendation) error {
	if strings.TrimSpace(rec.Book.Title) == "" {
		return fmt.Errorf("missing book title")
	}
	if strings.TrimSpace(rec.Book.Language) == "" {
		return fmt.Errorf("missing book language")
	}
	if len(rec.Book.Authors) == 0 {
		return fmt.Errorf("missing book authors")
	}
	for _, a := range rec.Book.Authors {
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("empty author name")
		}
	}
	if strings.TrimSpace(rec.PlotSummary) == "" {
		return fmt.Errorf("missing plot summary")
	}
	if strings.TrimSpace(rec.Rationale) == "" {
		return fmt.Errorf("missing rationale")
	}
	return nil
}

// OpenRouter request/response types.

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

type responseFormat struct {
	Type       string     `json:"type"`
	JSONSchema jsonSchema `json:"json_schema"`
}

type jsonSchema struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

// recommendationResponseFormat describes the required response shape:
// {book: {title, language, authors: [{name}]}, plot_summary, rationale}.
func recommendationResponseFormat() *responseFormat {
	return &responseFormat{
		Type: "json_schema",
		JSONSchema: jsonSchema{
			Name:   "book_recommendation",
			Strict: true,
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"book": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"title": map[string]any{
								"type":        "string",
								"description": "The title of the recommended book in the user's preferred language",
							},
							"language": map[string]any{
								"type":        "string",
								"description": "The language of the book (ISO code, e.g., 'en', 'es', 'fr')",
							},
							"authors": map[string]any{
								"type": "array",
								"items": map[string]any{
									"type": "object",
									"properties": map[string]any{
										"name": map[string]any{
											"type":        "string",
											"description": "Full name of the author",
										},
									},
									"required":             []string{"name"},
									"additionalProperties": false,
								},
								"description": "List of authors of the book",
							},
						},
						"required":             []string{"title", "language", "authors"},
						"description":          "Details about the recommended book",
						"additionalProperties": false,
					},
					"plot_summary": map[string]any{
						"type":        "string",
						"description": "A concise summary of the book's plot without spoilers, in English",
					},
					"rationale": map[string]any{
						"type":        "string",
						"description": "Explanation of why this book matches the user's preferences, in English",
					},
				},
				"required":             []string{"book", "plot_summary", "rationale"},
				"additionalProperties": false,
			},
		},
	}
}
