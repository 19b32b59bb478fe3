package ai

import (
	"context"
	"errors"

	"github.com/dropwatch/dropwatch/internal/config"
	"github.com/dropwatch/dropwatch/models"
)

// ErrNotConfigured is returned by the noop provider. Callers fall back to
// deterministic templates or the structured classification path.
var ErrNotConfigured = errors.New("ai: no provider configured")

// Provider abstracts calls to a language model.
// To add a new provider:
//  1. Create a file in internal/ai/ (e.g. mymodel.go)
//  2. Implement Provider
//  3. Register in New()
type Provider interface {
	// Name returns the provider identifier (e.g. "openai", "ollama").
	Name() string

	// IsAvailable verifies the provider is reachable and configured.
	IsAvailable(ctx context.Context) bool

	// AlertMessage writes a short, urgent restock notification for the
	// product. Callers must substitute a fallback template on error.
	AlertMessage(ctx context.Context, target models.Target, product models.ProductInfo) (string, error)

	// AnalyzeStockPage inspects a product page screenshot and reports
	// whether the product appears purchasable.
	AnalyzeStockPage(ctx context.Context, png []byte, pageURL string) (*StockAnalysis, error)
}

// StockAnalysis is a vision model's structured reading of a product page.
type StockAnalysis struct {
	InStock     bool     `json:"in_stock"`
	ProductName string   `json:"product_name"`
	Price       string   `json:"price"`
	Confidence  float64  `json:"confidence"` // 0.0 – 1.0
	Reasoning   string   `json:"reasoning"`
	Elements    []string `json:"elements_found"`
}

// New returns the configured Provider. With no provider set it returns a
// NoopProvider — callers should check IsAvailable() before relying on AI
// features.
func New(cfg config.AIConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg)
	case "ollama":
		return NewOllama(cfg), nil
	case "", "none":
		return &NoopProvider{}, nil
	default:
		return nil, errors.New("ai: unknown provider " + cfg.Provider)
	}
}
