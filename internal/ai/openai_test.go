package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dropwatch/dropwatch/internal/config"
	"github.com/dropwatch/dropwatch/models"
)

func chatServer(t *testing.T, reply string, capture *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if capture != nil {
			_ = json.NewDecoder(r.Body).Decode(capture)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": reply}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestAlertMessageUsesChatCompletion(t *testing.T) {
	var req map[string]any
	srv := chatServer(t, "🎉 Labubu is back, go go go!", &req)
	defer srv.Close()

	p, err := NewOpenAI(config.AIConfig{
		OpenAIKey: "sk-test",
		Model:     "gpt-4o",
		BaseURL:   srv.URL,
	})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	msg, err := p.AlertMessage(context.Background(),
		models.Target{URL: "https://shop.example.com/p/labubu"},
		models.ProductInfo{Name: "Labubu", Price: "$21.99"})
	if err != nil {
		t.Fatalf("alert message: %v", err)
	}
	if msg != "🎉 Labubu is back, go go go!" {
		t.Fatalf("message: %q", msg)
	}
	if req["model"] != "gpt-4o" {
		t.Fatalf("model: %v", req["model"])
	}
}

func TestAnalyzeStockPageParsesJSON(t *testing.T) {
	reply := "Here is my analysis:\n" +
		`{"in_stock": true, "product_name": "Labubu", "price": "$21.99",` +
		` "confidence": 0.95, "reasoning": "visible add to cart button",` +
		` "elements_found": ["add to cart"]}`
	var req map[string]any
	srv := chatServer(t, reply, &req)
	defer srv.Close()

	p, err := NewOpenAI(config.AIConfig{
		OpenAIKey:   "sk-test",
		Model:       "gpt-4o",
		VisionModel: "gpt-4o",
		BaseURL:     srv.URL,
	})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	analysis, err := p.AnalyzeStockPage(context.Background(),
		[]byte{0x89, 0x50, 0x4E, 0x47}, "https://shop.example.com/p/labubu")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !analysis.InStock || analysis.ProductName != "Labubu" || analysis.Confidence != 0.95 {
		t.Fatalf("analysis: %+v", analysis)
	}

	// The screenshot must travel as an image_url data URI part.
	body, _ := json.Marshal(req)
	if !strings.Contains(string(body), "data:image/png;base64,") {
		t.Fatal("request does not carry the screenshot as a data URI")
	}
}

func TestAnalyzeStockPageRejectsNonJSON(t *testing.T) {
	srv := chatServer(t, "the product looks available", nil)
	defer srv.Close()

	p, err := NewOpenAI(config.AIConfig{OpenAIKey: "sk-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if _, err := p.AnalyzeStockPage(context.Background(), []byte{1}, "https://x.example.com"); err == nil {
		t.Fatal("expected parse error for prose reply")
	}
}

func TestExtractJSON(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		`{"a":1}`:                 `{"a":1}`,
		"prefix {\"a\":1} suffix": `{"a":1}`,
		"no json here":            "no json here",
	}
	for in, want := range cases {
		if got := extractJSON(in); got != want {
			t.Fatalf("extractJSON(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	if _, err := NewOpenAI(config.AIConfig{OpenAIKey: "sk", BaseURL: "ftp://nope"}); err == nil {
		t.Fatal("expected scheme error")
	}
}
