package models

// Method identifies which detection rule produced a verdict.
type Method string

const (
	MethodButtonMatch      Method = "button_match"
	MethodKeywordMatch     Method = "keyword_match"
	MethodAvailabilityText Method = "availability_text"
	MethodScreenshotVision Method = "screenshot_vision"
)

// StockVerdict is the result of a single stock classification.
// Verdicts are produced fresh on every check and never mutated.
type StockVerdict struct {
	InStock    bool        `json:"in_stock"`
	Product    ProductInfo `json:"product"`
	Method     Method      `json:"method"`
	Confidence float64     `json:"confidence"` // 0.0 – 1.0
	// Note records why a verdict was degraded (fetch failure, vision
	// fallback, invalid page). Empty for clean classifications.
	Note string `json:"note,omitempty"`
}
