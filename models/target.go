package models

import "time"

// Target is one monitored product page, keyed by URL.
// Targets are never hard-deleted, only deactivated.
type Target struct {
	ID          int64      `json:"id"           db:"id"`
	URL         string     `json:"url"          db:"url"`
	ProductName string     `json:"product_name" db:"product_name"`
	Active      bool       `json:"active"       db:"active"`
	LastChecked *time.Time `json:"last_checked" db:"last_checked"`
	CreatedAt   time.Time  `json:"created_at"   db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"   db:"updated_at"`
}

// DisplayName returns the configured product name, falling back to the URL.
func (t Target) DisplayName() string {
	if t.ProductName != "" {
		return t.ProductName
	}
	return t.URL
}

// ProductInfo holds the details extracted from a product page during one
// check. All fields are best-effort and may be empty.
type ProductInfo struct {
	Name         string `json:"name,omitempty"`
	Price        string `json:"price,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	Availability string `json:"availability,omitempty"`
}
