// Package classify decides whether a product page shows the product as
// purchasable. Classification is a pure function of one PageSignal: the same
// signal always yields the same verdict.
package classify

import (
	"strings"

	"github.com/dropwatch/dropwatch/internal/signal"
	"github.com/dropwatch/dropwatch/models"
)

// buttonPhrases is the purchase-intent vocabulary matched against
// interactive element texts. Includes the PopMart blind-box variants.
var buttonPhrases = []string{
	"add to cart",
	"buy now",
	"purchase",
	"pick one to shake",
	"buy multiple boxes",
	"add to bag",
	"shop now",
	"get it now",
	"buy",
	"cart",
	"shake",
	"pick one",
}

// keywordPhrases is the positive-availability vocabulary matched against the
// full page text.
var keywordPhrases = []string{
	"pick one to shake",
	"buy multiple boxes",
	"add to cart",
	"in stock",
	"available now",
	"buy now",
}

// availabilityPositive matches availability-style element texts.
var availabilityPositive = []string{
	"in stock",
	"available",
	"add to cart",
}

// negativePhrases is explicit out-of-stock evidence. It is checked before
// the positive keyword scan so that a "sold out" banner beats an "in stock"
// mention elsewhere on the page; only a live purchase button overrides it.
var negativePhrases = []string{
	"out of stock",
	"sold out",
	"unavailable",
}

// Confidence assigned to each rule. The values are fixed: they feed the
// audit log and tests, not any thresholding logic.
const (
	confButton       = 0.9
	confNegative     = 0.8
	confKeyword      = 0.7
	confAvailability = 0.6
	confInvalidPage  = 0.9
)

// Classify runs the detection cascade over sig and returns a verdict.
//
// Rule order: live purchase button, explicit negative evidence, positive
// page-text keyword, positive availability text. A broken or missing page
// (no h1, "page not found", "404") overrides every rule. When nothing
// fires the verdict is out-of-stock at zero confidence.
func Classify(sig signal.PageSignal) models.StockVerdict {
	v := models.StockVerdict{
		Product:    sig.Product,
		Method:     models.MethodKeywordMatch,
		Confidence: 0,
	}

	switch {
	case matchButton(sig) != "":
		v.InStock = true
		v.Method = models.MethodButtonMatch
		v.Confidence = confButton
	case matchNegative(sig) != "":
		v.InStock = false
		v.Method = models.MethodAvailabilityText
		v.Confidence = confNegative
		v.Note = "negative: " + matchNegative(sig)
	case matchKeyword(sig) != "":
		v.InStock = true
		v.Method = models.MethodKeywordMatch
		v.Confidence = confKeyword
	case matchAvailability(sig) != "":
		v.InStock = true
		v.Method = models.MethodAvailabilityText
		v.Confidence = confAvailability
	}

	// Error pages can still carry leftover buy buttons in cached markup;
	// treat them as never in stock.
	if invalid := invalidPage(sig); invalid != "" {
		v.InStock = false
		v.Confidence = confInvalidPage
		v.Note = invalid
	}

	return v
}

// matchButton returns the phrase of the first enabled purchase button, or "".
func matchButton(sig signal.PageSignal) string {
	for _, btn := range sig.Buttons {
		if btn.Disabled {
			continue
		}
		for _, phrase := range buttonPhrases {
			if strings.Contains(btn.Text, phrase) {
				return phrase
			}
		}
	}
	return ""
}

// matchNegative scans availability texts and the full page text for
// explicit out-of-stock phrases.
func matchNegative(sig signal.PageSignal) string {
	for _, text := range sig.AvailabilityTexts {
		for _, phrase := range negativePhrases {
			if strings.Contains(text, phrase) {
				return phrase
			}
		}
	}
	for _, phrase := range negativePhrases {
		if strings.Contains(sig.FullText, phrase) {
			return phrase
		}
	}
	return ""
}

func matchKeyword(sig signal.PageSignal) string {
	for _, phrase := range keywordPhrases {
		if strings.Contains(sig.FullText, phrase) {
			return phrase
		}
	}
	return ""
}

func matchAvailability(sig signal.PageSignal) string {
	for _, text := range sig.AvailabilityTexts {
		for _, phrase := range availabilityPositive {
			if strings.Contains(text, phrase) {
				return phrase
			}
		}
	}
	return ""
}

// invalidPage reports why a page looks broken, or "" when it looks real.
func invalidPage(sig signal.PageSignal) string {
	if !sig.HasHeading {
		return "invalid page: no heading"
	}
	if strings.Contains(sig.FullText, "page not found") {
		return "invalid page: page not found"
	}
	if strings.Contains(sig.FullText, "404") {
		return "invalid page: 404 marker"
	}
	return ""
}
