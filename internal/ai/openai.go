package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dropwatch/dropwatch/internal/config"
	"github.com/dropwatch/dropwatch/models"
)

const defaultOpenAIBase = "https://api.openai.com/v1"

// OpenAIProvider implements Provider using the OpenAI REST API.
type OpenAIProvider struct {
	apiKey      string
	model       string
	visionModel string
	baseURL     string
	client      *http.Client
}

// NewOpenAI creates an OpenAIProvider from cfg.
func NewOpenAI(cfg config.AIConfig) (*OpenAIProvider, error) {
	base := cfg.BaseURL
	if base == "" {
		base = defaultOpenAIBase
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid OpenAI base URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("invalid OpenAI base URL scheme %q", u.Scheme)
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	vision := cfg.VisionModel
	if vision == "" {
		vision = model
	}
	return &OpenAIProvider{
		apiKey:      cfg.OpenAIKey,
		model:       model,
		visionModel: vision,
		baseURL:     strings.TrimRight(base, "/"),
		client:      &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (o *OpenAIProvider) Name() string { return "openai" }

func (o *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	if o.apiKey == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/models", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	resp, err := o.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// AlertMessage asks the model for a short, urgent restock notification.
func (o *OpenAIProvider) AlertMessage(ctx context.Context, target models.Target, product models.ProductInfo) (string, error) {
	name := product.Name
	if name == "" {
		name = target.DisplayName()
	}
	price := product.Price
	if price == "" {
		price = "unknown price"
	}

	prompt := fmt.Sprintf(`%s (price: %s) just came back in stock!
Write an exciting, urgent notification message that will motivate someone to
buy it immediately. Keep it under 100 words and include emojis.
URL: %s`, name, price, target.URL)

	msgs := []openAIMsg{
		{Role: "system", Content: "You are an enthusiastic shopping assistant who helps people get limited edition collectibles."},
		{Role: "user", Content: prompt},
	}
	return o.chat(ctx, o.model, msgs, 150, 0.8)
}

// AnalyzeStockPage sends the screenshot to the vision model and parses its
// JSON report. A response without parseable JSON is an error; the caller
// falls back to the structured-content classifier.
func (o *OpenAIProvider) AnalyzeStockPage(ctx context.Context, png []byte, pageURL string) (*StockAnalysis, error) {
	prompt := `Analyze this e-commerce product page screenshot and determine whether the
product is IN STOCK or OUT OF STOCK, plus the product name and price.

Look for: "Add to Cart" / "Buy Now" / "Pick One to Shake" / "Buy Multiple
Boxes" buttons, "Out of Stock" or "Sold Out" indicators, price displays and
availability text.

Respond with JSON only, in this shape:
{"in_stock": true, "product_name": "...", "price": "$XX.XX",
 "confidence": 0.95, "reasoning": "...", "elements_found": ["..."]}`

	img := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	msgs := []openAIMsg{{
		Role: "user",
		Content: []map[string]any{
			{"type": "text", "text": prompt},
			{"type": "image_url", "image_url": map[string]any{"url": img, "detail": "high"}},
		},
	}}

	// Low temperature for consistent reads of the same page.
	resp, err := o.chat(ctx, o.visionModel, msgs, 500, 0.1)
	if err != nil {
		return nil, err
	}

	var analysis StockAnalysis
	if err := json.Unmarshal([]byte(extractJSON(resp)), &analysis); err != nil {
		return nil, fmt.Errorf("parsing vision analysis of %s: %w", pageURL, err)
	}
	return &analysis, nil
}

type openAIMsg struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string or multimodal content parts
}

type openAIRequest struct {
	Model       string      `json:"model"`
	Messages    []openAIMsg `json:"messages"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
	Temperature float64     `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// chat posts one chat-completion request and returns the first choice.
func (o *OpenAIProvider) chat(ctx context.Context, model string, msgs []openAIMsg, maxTokens int, temperature float64) (string, error) {
	body, err := json.Marshal(openAIRequest{
		Model:       model,
		Messages:    msgs,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI API error %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp openAIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("parsing API response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("OpenAI error: %s", apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI returned no choices")
	}
	return strings.TrimSpace(apiResp.Choices[0].Message.Content), nil
}

// extractJSON returns the first {...} block in s. Models occasionally wrap
// JSON in prose or markdown fences.
func extractJSON(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
