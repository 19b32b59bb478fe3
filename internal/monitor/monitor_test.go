package monitor

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/dropwatch/dropwatch/internal/ai"
	"github.com/dropwatch/dropwatch/internal/config"
	"github.com/dropwatch/dropwatch/internal/database"
	"github.com/dropwatch/dropwatch/internal/notify"
	"github.com/dropwatch/dropwatch/internal/store"
	"github.com/dropwatch/dropwatch/models"
)

const outOfStockPage = `<html><body>
	<h1 class="product-title">Labubu Classic</h1>
	<span class="price">$21.99</span>
	<div class="availability">Sold Out</div>
	<button disabled>Add to Cart</button>
</body></html>`

const inStockPage = `<html><body>
	<h1 class="product-title">Labubu Classic</h1>
	<span class="price">$21.99</span>
	<div class="availability">In Stock</div>
	<button>Add to Cart</button>
</body></html>`

// pageFetcher serves a swappable HTML document for any URL.
type pageFetcher struct {
	page string
	err  error
}

func (f *pageFetcher) Fetch(ctx context.Context, url string) (*html.Node, error) {
	if f.err != nil {
		return nil, f.err
	}
	return html.Parse(strings.NewReader(f.page))
}

// recordingAlerter captures dispatched alerts and reports fixed outcomes.
type recordingAlerter struct {
	alerts []notify.Alert
}

func (a *recordingAlerter) Dispatch(ctx context.Context, alert notify.Alert) map[string]notify.Outcome {
	a.alerts = append(a.alerts, alert)
	return map[string]notify.Outcome{
		"discord": {Success: true},
		"email":   {Success: false, Error: "smtp down"},
	}
}
func (a *recordingAlerter) IsAnyConfigured() bool { return true }
func (a *recordingAlerter) Channels() []string    { return []string{"discord", "email"} }

func newTestMonitor(t *testing.T, fetcher *pageFetcher, alerter Alerter) (*Monitor, *store.Store) {
	t.Helper()
	db, err := database.New(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "dropwatch.db"),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	st := store.New(db)

	cfg := config.MonitorConfig{IntervalSeconds: 1, RequestTimeoutSeconds: 1}
	return New(cfg, st, fetcher, ai.NoopProvider{}, nil, alerter, nil), st
}

func TestRestockEdgeDispatchesOnce(t *testing.T) {
	ctx := context.Background()
	fetcher := &pageFetcher{page: outOfStockPage}
	alerter := &recordingAlerter{}
	mon, st := newTestMonitor(t, fetcher, alerter)

	url := "https://shop.example.com/p/labubu"
	if err := st.AddTarget(ctx, url, "Labubu Classic"); err != nil {
		t.Fatalf("add target: %v", err)
	}
	target := models.Target{URL: url, ProductName: "Labubu Classic"}

	// Out of stock: no alert.
	v := mon.CheckTarget(ctx, target)
	if v.InStock {
		t.Fatalf("expected out of stock, got %+v", v)
	}
	if len(alerter.alerts) != 0 {
		t.Fatalf("no alert expected yet, got %d", len(alerter.alerts))
	}

	// Restock: exactly one alert.
	fetcher.page = inStockPage
	v = mon.CheckTarget(ctx, target)
	if !v.InStock || v.Method != models.MethodButtonMatch {
		t.Fatalf("expected in-stock button match, got %+v", v)
	}
	if len(alerter.alerts) != 1 {
		t.Fatalf("expected one alert, got %d", len(alerter.alerts))
	}
	alert := alerter.alerts[0]
	if alert.Product.Name != "Labubu Classic" || alert.Product.Price != "$21.99" {
		t.Fatalf("alert product: %+v", alert.Product)
	}
	if !strings.Contains(alert.Message, "back in stock") {
		t.Fatalf("fallback message: %q", alert.Message)
	}

	// Still in stock: edge-triggered, no second alert.
	mon.CheckTarget(ctx, target)
	if len(alerter.alerts) != 1 {
		t.Fatalf("expected still one alert, got %d", len(alerter.alerts))
	}

	// Every observation was logged.
	events, err := st.RecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 stock events, got %d", len(events))
	}

	// One audit row per channel outcome.
	recs, err := st.RecentNotifications(ctx, 10)
	if err != nil {
		t.Fatalf("notifications: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 notification records, got %d", len(recs))
	}
	byChannel := map[string]models.NotificationRecord{}
	for _, r := range recs {
		byChannel[r.Channel] = r
	}
	if byChannel["discord"].Status != "success" {
		t.Fatalf("discord record: %+v", byChannel["discord"])
	}
	if byChannel["email"].Status != "failed" || byChannel["email"].ErrorMsg != "smtp down" {
		t.Fatalf("email record: %+v", byChannel["email"])
	}
}

func TestFirstObservationInStockFires(t *testing.T) {
	ctx := context.Background()
	fetcher := &pageFetcher{page: inStockPage}
	alerter := &recordingAlerter{}
	mon, st := newTestMonitor(t, fetcher, alerter)

	url := "https://shop.example.com/p/labubu"
	if err := st.AddTarget(ctx, url, ""); err != nil {
		t.Fatalf("add target: %v", err)
	}

	mon.CheckTarget(ctx, models.Target{URL: url})
	if len(alerter.alerts) != 1 {
		t.Fatalf("first in-stock observation must alert, got %d", len(alerter.alerts))
	}
}

func TestFetchFailureIsOutOfStockObservation(t *testing.T) {
	ctx := context.Background()
	fetcher := &pageFetcher{err: context.DeadlineExceeded}
	alerter := &recordingAlerter{}
	mon, st := newTestMonitor(t, fetcher, alerter)

	url := "https://shop.example.com/p/labubu"
	if err := st.AddTarget(ctx, url, ""); err != nil {
		t.Fatalf("add target: %v", err)
	}

	v := mon.CheckTarget(ctx, models.Target{URL: url})
	if v.InStock {
		t.Fatal("failed fetch must classify as out of stock")
	}
	if v.Note == "" {
		t.Fatal("expected a degradation note")
	}
	if len(alerter.alerts) != 0 {
		t.Fatal("failed fetch must not alert")
	}

	recent, err := st.RecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("failed check must still be logged, got %d events", len(recent))
	}
}

func TestRunCyclePacesThroughAllTargets(t *testing.T) {
	ctx := context.Background()
	fetcher := &pageFetcher{page: outOfStockPage}
	alerter := &recordingAlerter{}
	mon, st := newTestMonitor(t, fetcher, alerter)

	for _, u := range []string{
		"https://shop.example.com/p/a",
		"https://shop.example.com/p/b",
		"https://shop.example.com/p/c",
	} {
		if err := st.AddTarget(ctx, u, ""); err != nil {
			t.Fatalf("add target: %v", err)
		}
	}

	mon.RunCycle(ctx)

	latest, err := st.LatestEvents(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(latest) != 3 {
		t.Fatalf("expected all 3 targets checked, got %d", len(latest))
	}
}
