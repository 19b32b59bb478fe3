// Package signal turns a fetched page's parsed HTML into the flat
// PageSignal consumed by the stock classifier.
package signal

import (
	"net/url"
	"strings"

	"github.com/dropwatch/dropwatch/models"
	"golang.org/x/net/html"
)

// Selector lists tried in order for each product field; the first non-empty
// match wins. Tuned for PopMart-style storefronts but generic enough for
// most product pages.
var (
	nameSelectors = []string{
		"h1.product-title",
		"h1[data-testid=product-title]",
		".product-name",
		"h1",
		".title",
	}
	priceSelectors = []string{
		".product-price",
		".price",
		"[data-testid=product-price]",
		".current-price",
		".sale-price",
	}
	imageSelectors = []string{
		".product-image img",
		".hero-image img",
		".main-image img",
		"img[data-testid=product-image]",
	}
	availabilitySelectors = []string{
		".availability",
		".stock-status",
		".product-availability",
	}
	statusSelectors = []string{
		".stock-status",
		".availability",
		".product-status",
	}
)

// Button is one interactive element's text plus whether it is disabled.
type Button struct {
	Text     string // lowercased, whitespace-collapsed
	Disabled bool
}

// PageSignal is everything the classifier needs from one fetched page.
// It is ephemeral: built for a single classification and discarded.
type PageSignal struct {
	Product models.ProductInfo
	// AvailabilityTexts holds the availability field plus the text of every
	// availability-style element, lowercased.
	AvailabilityTexts []string
	// Buttons lists every button/link/div text with its disabled flag.
	Buttons []Button
	// FullText is the whole page's text, lowercased.
	FullText string
	// HasHeading reports whether the page has an h1 element.
	HasHeading bool
}

// Extract builds a PageSignal from a parsed document. It never fails: fields
// that cannot be extracted stay empty, so a malformed page degrades to an
// empty signal rather than aborting the check.
func Extract(doc *html.Node, pageURL string) PageSignal {
	var sig PageSignal
	if doc == nil {
		return sig
	}

	for _, sel := range nameSelectors {
		if n := selectOne(doc, sel); n != nil {
			if text := collectText(n); text != "" {
				sig.Product.Name = text
				break
			}
		}
	}

	for _, sel := range priceSelectors {
		if n := selectOne(doc, sel); n != nil {
			if text := collectText(n); text != "" {
				sig.Product.Price = text
				break
			}
		}
	}

	for _, sel := range imageSelectors {
		n := selectOne(doc, sel)
		if n == nil {
			continue
		}
		src := attrValue(n, "src")
		if src == "" {
			src = attrValue(n, "data-src")
		}
		if src != "" {
			sig.Product.ImageURL = resolveURL(pageURL, src)
			break
		}
	}

	for _, sel := range availabilitySelectors {
		if n := selectOne(doc, sel); n != nil {
			if text := collectText(n); text != "" {
				sig.Product.Availability = text
				break
			}
		}
	}

	if sig.Product.Availability != "" {
		sig.AvailabilityTexts = append(sig.AvailabilityTexts,
			strings.ToLower(sig.Product.Availability))
	}
	for _, sel := range statusSelectors {
		for _, n := range selectAll(doc, sel) {
			if text := collectText(n); text != "" {
				sig.AvailabilityTexts = append(sig.AvailabilityTexts, strings.ToLower(text))
			}
		}
	}

	for _, tag := range []string{"button", "a", "div"} {
		for _, n := range selectAll(doc, tag) {
			text := strings.ToLower(collectText(n))
			if text == "" {
				continue
			}
			sig.Buttons = append(sig.Buttons, Button{
				Text:     text,
				Disabled: isDisabled(n),
			})
		}
	}

	sig.FullText = strings.ToLower(collectText(doc))
	sig.HasHeading = selectOne(doc, "h1") != nil

	return sig
}

// isDisabled reports the disabled attribute or a "disabled" class token.
func isDisabled(n *html.Node) bool {
	if _, ok := lookupAttr(n, "disabled"); ok {
		return true
	}
	return hasClassToken(n, "disabled")
}

// resolveURL makes src absolute against the page URL.
func resolveURL(pageURL, src string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	return base.ResolveReference(ref).String()
}
