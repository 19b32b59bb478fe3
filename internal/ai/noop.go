package ai

import (
	"context"

	"github.com/dropwatch/dropwatch/models"
)

// NoopProvider is used when no AI provider is configured. Alert text falls
// back to a template and vision analysis is unavailable.
type NoopProvider struct{}

func (NoopProvider) Name() string { return "none" }

func (NoopProvider) IsAvailable(ctx context.Context) bool { return false }

func (NoopProvider) AlertMessage(ctx context.Context, target models.Target, product models.ProductInfo) (string, error) {
	return "", ErrNotConfigured
}

func (NoopProvider) AnalyzeStockPage(ctx context.Context, png []byte, pageURL string) (*StockAnalysis, error) {
	return nil, ErrNotConfigured
}
