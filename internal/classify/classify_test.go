package classify

import (
	"testing"

	"github.com/dropwatch/dropwatch/internal/signal"
	"github.com/dropwatch/dropwatch/models"
)

func TestEnabledBuyButtonWins(t *testing.T) {
	sig := signal.PageSignal{
		Buttons:    []signal.Button{{Text: "add to cart"}},
		FullText:   "labubu classic series add to cart",
		HasHeading: true,
	}
	v := Classify(sig)
	if !v.InStock {
		t.Fatal("expected in stock")
	}
	if v.Method != models.MethodButtonMatch {
		t.Fatalf("expected button_match, got %s", v.Method)
	}
	if v.Confidence != 0.9 {
		t.Fatalf("expected confidence 0.9, got %v", v.Confidence)
	}
}

func TestBlindBoxButtonPhrases(t *testing.T) {
	for _, phrase := range []string{"pick one to shake", "buy multiple boxes"} {
		sig := signal.PageSignal{
			Buttons:    []signal.Button{{Text: phrase}},
			HasHeading: true,
		}
		v := Classify(sig)
		if !v.InStock || v.Method != models.MethodButtonMatch {
			t.Fatalf("%q: expected in-stock button match, got %+v", phrase, v)
		}
	}
}

func TestDisabledButtonDoesNotCount(t *testing.T) {
	sig := signal.PageSignal{
		Buttons:    []signal.Button{{Text: "add to cart", Disabled: true}},
		HasHeading: true,
	}
	v := Classify(sig)
	if v.InStock {
		t.Fatal("disabled button must not report in stock")
	}
	if v.Confidence != 0 {
		t.Fatalf("expected zero confidence, got %v", v.Confidence)
	}
	if v.Method != models.MethodKeywordMatch {
		t.Fatalf("expected keyword_match default, got %s", v.Method)
	}
}

func TestNegativeEvidenceBeatsKeyword(t *testing.T) {
	// "in stock" appears in the page text but the availability element
	// says sold out. Without a live buy button the negative wins.
	sig := signal.PageSignal{
		AvailabilityTexts: []string{"sold out"},
		FullText:          "this item was recently in stock but is now sold out",
		HasHeading:        true,
	}
	v := Classify(sig)
	if v.InStock {
		t.Fatal("expected out of stock")
	}
	if v.Method != models.MethodAvailabilityText {
		t.Fatalf("expected availability_text, got %s", v.Method)
	}
	if v.Confidence != 0.8 {
		t.Fatalf("expected confidence 0.8, got %v", v.Confidence)
	}
}

func TestButtonBeatsNegativeText(t *testing.T) {
	// A live purchase button outranks a stale sold-out banner.
	sig := signal.PageSignal{
		Buttons:           []signal.Button{{Text: "buy now"}},
		AvailabilityTexts: []string{"sold out"},
		FullText:          "sold out buy now",
		HasHeading:        true,
	}
	v := Classify(sig)
	if !v.InStock || v.Method != models.MethodButtonMatch {
		t.Fatalf("expected button match to win, got %+v", v)
	}
}

func TestKeywordMatch(t *testing.T) {
	sig := signal.PageSignal{
		FullText:   "limited edition figure in stock ships tomorrow",
		HasHeading: true,
	}
	v := Classify(sig)
	if !v.InStock || v.Method != models.MethodKeywordMatch || v.Confidence != 0.7 {
		t.Fatalf("expected keyword match at 0.7, got %+v", v)
	}
}

func TestAvailabilityTextMatch(t *testing.T) {
	sig := signal.PageSignal{
		AvailabilityTexts: []string{"available"},
		FullText:          "limited edition figure ships tomorrow",
		HasHeading:        true,
	}
	v := Classify(sig)
	if !v.InStock || v.Method != models.MethodAvailabilityText || v.Confidence != 0.6 {
		t.Fatalf("expected availability match at 0.6, got %+v", v)
	}
}

func TestInvalidPageOverridesButton(t *testing.T) {
	// Cached error pages can still carry buy buttons.
	sig := signal.PageSignal{
		Buttons:    []signal.Button{{Text: "add to cart"}},
		FullText:   "page not found add to cart",
		HasHeading: true,
	}
	v := Classify(sig)
	if v.InStock {
		t.Fatal("invalid page must never be in stock")
	}
	if v.Confidence != 0.9 {
		t.Fatalf("expected confidence 0.9, got %v", v.Confidence)
	}
	if v.Note == "" {
		t.Fatal("expected an explanatory note")
	}
}

func TestMissingHeadingIsInvalidPage(t *testing.T) {
	sig := signal.PageSignal{
		FullText:   "in stock",
		HasHeading: false,
	}
	v := Classify(sig)
	if v.InStock {
		t.Fatal("page without heading must not be in stock")
	}
}

func TestEmptySignalDefaultsOutOfStock(t *testing.T) {
	v := Classify(signal.PageSignal{HasHeading: true})
	if v.InStock || v.Confidence != 0 || v.Method != models.MethodKeywordMatch {
		t.Fatalf("expected default out-of-stock verdict, got %+v", v)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	sig := signal.PageSignal{
		Product:           models.ProductInfo{Name: "Labubu", Price: "$21.99"},
		Buttons:           []signal.Button{{Text: "add to cart"}},
		AvailabilityTexts: []string{"in stock"},
		FullText:          "labubu in stock add to cart",
		HasHeading:        true,
	}
	first := Classify(sig)
	for i := 0; i < 5; i++ {
		if got := Classify(sig); got != first {
			t.Fatalf("verdict changed between runs: %+v vs %+v", first, got)
		}
	}
}
