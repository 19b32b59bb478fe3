package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dropwatch/dropwatch/internal/config"
	"github.com/dropwatch/dropwatch/models"
)

type stubChannel struct {
	name  string
	err   error
	delay time.Duration
	sent  chan Alert
}

func newStubChannel(name string, err error, delay time.Duration) *stubChannel {
	return &stubChannel{name: name, err: err, delay: delay, sent: make(chan Alert, 8)}
}

func (s *stubChannel) Name() string       { return s.name }
func (s *stubChannel) IsConfigured() bool { return true }
func (s *stubChannel) Send(ctx context.Context, alert Alert) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.sent <- alert
	return s.err
}

func testAlert() Alert {
	return Alert{
		Target:     models.Target{URL: "https://shop.example.com/p/labubu", ProductName: "Labubu"},
		Product:    models.ProductInfo{Name: "Labubu", Price: "$21.99"},
		Message:    "back in stock!",
		Method:     "button_match",
		Confidence: 0.9,
	}
}

func TestDispatchReportsEveryChannel(t *testing.T) {
	ok := newStubChannel("ok", nil, 0)
	bad := newStubChannel("bad", errors.New("boom"), 0)
	slow := newStubChannel("slow", nil, 50*time.Millisecond)
	d := &Dispatcher{channels: []Channel{ok, bad, slow}}

	outcomes := d.Dispatch(context.Background(), testAlert())

	if len(outcomes) != 3 {
		t.Fatalf("expected an outcome per channel, got %v", outcomes)
	}
	if !outcomes["ok"].Success || outcomes["ok"].Error != "" {
		t.Fatalf("ok channel: %+v", outcomes["ok"])
	}
	if outcomes["bad"].Success || outcomes["bad"].Error != "boom" {
		t.Fatalf("bad channel: %+v", outcomes["bad"])
	}
	if !outcomes["slow"].Success {
		t.Fatalf("slow channel: %+v", outcomes["slow"])
	}
	// Dispatch must have waited for the slow channel.
	select {
	case <-slow.sent:
	default:
		t.Fatal("slow channel had not sent when Dispatch returned")
	}
}

func TestDispatchFailureDoesNotBlockOthers(t *testing.T) {
	first := newStubChannel("first", errors.New("down"), 0)
	second := newStubChannel("second", nil, 0)
	d := &Dispatcher{channels: []Channel{first, second}}

	outcomes := d.Dispatch(context.Background(), testAlert())

	if outcomes["first"].Success {
		t.Fatal("first channel should have failed")
	}
	if !outcomes["second"].Success {
		t.Fatal("second channel must still deliver")
	}
	select {
	case <-second.sent:
	default:
		t.Fatal("second channel never sent")
	}
}

func TestNewDispatcherSkipsDisabledChannels(t *testing.T) {
	cfg := config.NotifyConfig{
		Discord: config.DiscordNotifyConfig{Enabled: true, WebhookURL: "https://discord.example.com/hook"},
		Slack:   config.SlackNotifyConfig{Enabled: false, WebhookURL: "https://slack.example.com/hook"},
		Webhook: config.WebhookNotifyConfig{Enabled: true}, // enabled but no URL
	}
	d := NewDispatcher(cfg)

	names := d.Channels()
	if len(names) != 1 || names[0] != "discord" {
		t.Fatalf("expected only discord, got %v", names)
	}
	if !d.IsAnyConfigured() {
		t.Fatal("expected a configured dispatcher")
	}
}

func TestWebhookChannelPayloadAndSignature(t *testing.T) {
	var gotBody []byte
	var gotSig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSig = r.Header.Get("X-Dropwatch-Signature")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := NewWebhook(config.WebhookNotifyConfig{Enabled: true, URL: srv.URL, Secret: "s3cret"})
	if err := ch.Send(context.Background(), testAlert()); err != nil {
		t.Fatalf("send: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if payload["event"] != "restock_alert" {
		t.Fatalf("event: %v", payload["event"])
	}
	if payload["url"] != "https://shop.example.com/p/labubu" {
		t.Fatalf("url: %v", payload["url"])
	}

	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write(gotBody)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if gotSig != want {
		t.Fatalf("signature mismatch: got %q want %q", gotSig, want)
	}
}

func TestWebhookChannelNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ch := NewWebhook(config.WebhookNotifyConfig{Enabled: true, URL: srv.URL})
	if err := ch.Send(context.Background(), testAlert()); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestDiscordChannelEmbed(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ch := NewDiscord(config.DiscordNotifyConfig{Enabled: true, WebhookURL: srv.URL})
	if err := ch.Send(context.Background(), testAlert()); err != nil {
		t.Fatalf("send: %v", err)
	}

	embeds, ok := payload["embeds"].([]any)
	if !ok || len(embeds) != 1 {
		t.Fatalf("expected one embed, got %v", payload["embeds"])
	}
	if content, _ := payload["content"].(string); content == "" {
		t.Fatal("expected content with the alert message")
	}
}
