package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dropwatch/dropwatch/internal/config"
	"github.com/dropwatch/dropwatch/internal/database"
	"github.com/dropwatch/dropwatch/models"
)

func newTestStore(t *testing.T) *Store {
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
	return New(db)
}

func TestAddAndListTargets(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.AddTarget(ctx, "https://shop.example.com/p/a", "Labubu A"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := st.AddTarget(ctx, "https://shop.example.com/p/b", ""); err != nil {
		t.Fatalf("add: %v", err)
	}

	targets, err := st.ActiveTargets(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(targets))
	}
	if targets[0].ProductName != "Labubu A" {
		t.Fatalf("product name: %q", targets[0].ProductName)
	}
	if targets[0].LastChecked != nil {
		t.Fatal("new target must not have a last_checked value")
	}
}

func TestAddTargetIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	url := "https://shop.example.com/p/a"

	if err := st.AddTarget(ctx, url, "First Name"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := st.AddTarget(ctx, url, "Second Name"); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	targets, err := st.AllTargets(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(targets) != 1 {
		t.Fatalf("expected 1 target after duplicate add, got %d", len(targets))
	}
	if targets[0].ProductName != "Second Name" {
		t.Fatalf("expected updated name, got %q", targets[0].ProductName)
	}
}

func TestDeactivateAndReactivate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	url := "https://shop.example.com/p/a"

	if err := st.AddTarget(ctx, url, "Labubu"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := st.DeactivateTarget(ctx, url); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	active, err := st.ActiveTargets(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active targets, got %d", len(active))
	}

	// Re-adding reactivates with history intact.
	if err := st.AddTarget(ctx, url, ""); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	active, err = st.ActiveTargets(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected target to be reactivated, got %d active", len(active))
	}
	if active[0].ProductName != "Labubu" {
		t.Fatalf("re-add with empty name must keep the old one, got %q", active[0].ProductName)
	}
}

func TestTouchLastChecked(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	url := "https://shop.example.com/p/a"

	if err := st.AddTarget(ctx, url, ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := st.TouchLastChecked(ctx, url); err != nil {
		t.Fatalf("touch: %v", err)
	}

	targets, err := st.ActiveTargets(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if targets[0].LastChecked == nil {
		t.Fatal("expected last_checked to be set")
	}
}

func TestStockEventLogAndLatest(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	url := "https://shop.example.com/p/a"

	base := time.Now().UTC().Add(-time.Hour)
	for i, inStock := range []bool{false, false, true} {
		if _, err := st.LogStockEvent(ctx, models.StockEvent{
			URL:         url,
			ProductName: "Labubu",
			InStock:     inStock,
			Price:       "$21.99",
			Method:      "button_match",
			Confidence:  0.9,
			CheckedAt:   base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("log event: %v", err)
		}
	}
	if _, err := st.LogStockEvent(ctx, models.StockEvent{
		URL:       "https://shop.example.com/p/b",
		InStock:   false,
		Method:    "keyword_match",
		CheckedAt: base,
	}); err != nil {
		t.Fatalf("log event: %v", err)
	}

	latest, err := st.LatestEvents(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("expected one latest event per URL, got %d", len(latest))
	}
	byURL := map[string]models.StockEvent{}
	for _, ev := range latest {
		byURL[ev.URL] = ev
	}
	if !byURL[url].InStock {
		t.Fatalf("latest event for %s should be in stock: %+v", url, byURL[url])
	}

	recent, err := st.RecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 4 {
		t.Fatalf("expected 4 events, got %d", len(recent))
	}

	since, err := st.EventsSince(ctx, url, base.Add(30*time.Second))
	if err != nil {
		t.Fatalf("since: %v", err)
	}
	if len(since) != 2 {
		t.Fatalf("expected 2 events since cutoff, got %d", len(since))
	}
}

func TestNotificationLogAndStats(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	url := "https://shop.example.com/p/a"

	for _, rec := range []models.NotificationRecord{
		{URL: url, Channel: "discord", Status: "success", Message: "hi"},
		{URL: url, Channel: "discord", Status: "success", Message: "hi"},
		{URL: url, Channel: "email", Status: "failed", ErrorMsg: "smtp down", Message: "hi"},
	} {
		if _, err := st.LogNotification(ctx, rec); err != nil {
			t.Fatalf("log notification: %v", err)
		}
	}

	stats, err := st.NotificationStats(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	got := map[string]int{}
	for _, s := range stats {
		got[s.Channel+"/"+s.Status] = s.Count
	}
	if got["discord/success"] != 2 || got["email/failed"] != 1 {
		t.Fatalf("unexpected stats: %v", got)
	}

	recs, err := st.RecentNotifications(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
}
