package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dropwatch/dropwatch/internal/config"
	"github.com/dropwatch/dropwatch/models"
)

const defaultOllamaURL = "http://localhost:11434"

// OllamaProvider implements Provider against a local Ollama server.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllama(cfg config.AIConfig) *OllamaProvider {
	base := cfg.OllamaURL
	if base == "" {
		base = defaultOllamaURL
	}
	model := cfg.Model
	if model == "" {
		model = "llama3.2"
	}
	return &OllamaProvider{
		baseURL: strings.TrimRight(base, "/"),
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (o *OllamaProvider) Name() string { return "ollama" }

func (o *OllamaProvider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (o *OllamaProvider) AlertMessage(ctx context.Context, target models.Target, product models.ProductInfo) (string, error) {
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

	return o.generate(ctx, prompt, nil)
}

func (o *OllamaProvider) AnalyzeStockPage(ctx context.Context, png []byte, pageURL string) (*StockAnalysis, error) {
	prompt := `Analyze this e-commerce product page screenshot and determine whether the
product is IN STOCK or OUT OF STOCK, plus the product name and price.

Respond with JSON only, in this shape:
{"in_stock": true, "product_name": "...", "price": "$XX.XX",
 "confidence": 0.95, "reasoning": "...", "elements_found": ["..."]}`

	resp, err := o.generate(ctx, prompt, [][]byte{png})
	if err != nil {
		return nil, err
	}
	var analysis StockAnalysis
	if err := json.Unmarshal([]byte(extractJSON(resp)), &analysis); err != nil {
		return nil, fmt.Errorf("parsing vision analysis of %s: %w", pageURL, err)
	}
	return &analysis, nil
}

type ollamaRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images,omitempty"`
	Stream bool     `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

func (o *OllamaProvider) generate(ctx context.Context, prompt string, images [][]byte) (string, error) {
	req := ollamaRequest{Model: o.model, Prompt: prompt, Stream: false}
	for _, img := range images {
		req.Images = append(req.Images, base64.StdEncoding.EncodeToString(img))
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling Ollama: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Ollama error %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp ollamaResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("parsing Ollama response: %w", err)
	}
	if apiResp.Error != "" {
		return "", fmt.Errorf("Ollama error: %s", apiResp.Error)
	}
	return strings.TrimSpace(apiResp.Response), nil
}
