package notify

import (
	"context"

	"github.com/dropwatch/dropwatch/models"
)

// Alert is a restock notification ready for delivery.
type Alert struct {
	Target  models.Target
	Product models.ProductInfo
	// Message is the rendered alert text (AI-generated or template).
	Message string
	// Method and Confidence describe how the restock was detected.
	Method     string
	Confidence float64
}

// Outcome records the delivery result for one channel.
type Outcome struct {
	Success bool
	Error   string // empty on success
}

// Channel is implemented by each notification provider.
type Channel interface {
	Name() string
	IsConfigured() bool
	Send(ctx context.Context, alert Alert) error
}
