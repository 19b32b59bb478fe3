// Package monitor runs the check cycle: fetch each active target, classify
// its stock state, detect restock edges, and fan out alerts.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dropwatch/dropwatch/internal/ai"
	"github.com/dropwatch/dropwatch/internal/classify"
	"github.com/dropwatch/dropwatch/internal/config"
	"github.com/dropwatch/dropwatch/internal/fetch"
	"github.com/dropwatch/dropwatch/internal/notify"
	"github.com/dropwatch/dropwatch/internal/signal"
	"github.com/dropwatch/dropwatch/internal/store"
	"github.com/dropwatch/dropwatch/models"
)

// Screenshotter captures a page render for vision analysis.
type Screenshotter interface {
	Capture(ctx context.Context, pageURL string) ([]byte, error)
}

// Alerter delivers a restock alert and reports per-channel outcomes.
// Satisfied by *notify.Dispatcher.
type Alerter interface {
	Dispatch(ctx context.Context, alert notify.Alert) map[string]notify.Outcome
	IsAnyConfigured() bool
	Channels() []string
}

// Monitor owns one monitoring loop over the active targets.
type Monitor struct {
	cfg      config.MonitorConfig
	store    *store.Store
	fetcher  fetch.Fetcher
	provider ai.Provider
	shooter  Screenshotter // nil when the screenshot path is disabled
	alerter  Alerter
	tracker  *Tracker
	log      *slog.Logger

	cycleRunning atomic.Bool
}

// New creates a Monitor. shooter may be nil; it is only used when
// cfg.UseScreenshot is set.
func New(cfg config.MonitorConfig, st *store.Store, fetcher fetch.Fetcher,
	provider ai.Provider, shooter Screenshotter, alerter Alerter, log *slog.Logger) *Monitor {
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{
		cfg:      cfg,
		store:    st,
		fetcher:  fetcher,
		provider: provider,
		shooter:  shooter,
		alerter:  alerter,
		tracker:  NewTracker(),
		log:      log,
	}
}

// Run executes monitoring cycles until ctx is cancelled. When a cron
// schedule is configured it replaces the fixed-interval loop.
func (m *Monitor) Run(ctx context.Context) error {
	m.log.Info("starting monitor",
		"interval_seconds", m.cfg.IntervalSeconds,
		"schedule", m.cfg.Schedule,
		"channels", m.alerter.Channels())
	if !m.alerter.IsAnyConfigured() {
		m.log.Warn("no notification channels configured; restocks will only be logged")
	}

	if m.cfg.Schedule != "" {
		return m.runScheduled(ctx)
	}

	interval := time.Duration(m.cfg.IntervalSeconds) * time.Second
	for {
		m.RunCycle(ctx)
		m.log.Info("cycle complete, sleeping", "interval", interval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

func (m *Monitor) runScheduled(ctx context.Context) error {
	c := cron.New()
	_, err := c.AddFunc(m.cfg.Schedule, func() {
		// Skip a tick rather than overlap a slow cycle.
		if !m.cycleRunning.CompareAndSwap(false, true) {
			m.log.Warn("previous cycle still running, skipping scheduled tick")
			return
		}
		defer m.cycleRunning.Store(false)
		m.RunCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", m.cfg.Schedule, err)
	}
	c.Start()
	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	return ctx.Err()
}

// RunCycle checks every active target once, pacing requests with the
// configured delay.
func (m *Monitor) RunCycle(ctx context.Context) {
	targets, err := m.store.ActiveTargets(ctx)
	if err != nil {
		m.log.Error("loading targets", "error", err)
		return
	}
	if len(targets) == 0 {
		m.log.Warn("no targets to monitor")
		return
	}
	m.log.Info("starting monitoring cycle", "targets", len(targets))

	delay := time.Duration(m.cfg.TargetDelaySeconds) * time.Second
	for i, t := range targets {
		if ctx.Err() != nil {
			return
		}
		m.CheckTarget(ctx, t)
		if delay > 0 && i < len(targets)-1 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}
	}
}

// CheckTarget performs one observation of a single target: classify, log
// the event, and fire alerts on a restock edge.
func (m *Monitor) CheckTarget(ctx context.Context, target models.Target) models.StockVerdict {
	if err := m.store.TouchLastChecked(ctx, target.URL); err != nil {
		m.log.Warn("updating last_checked", "url", target.URL, "error", err)
	}

	verdict := m.classifyTarget(ctx, target)

	if _, err := m.store.LogStockEvent(ctx, models.StockEvent{
		URL:         target.URL,
		ProductName: verdict.Product.Name,
		InStock:     verdict.InStock,
		Price:       verdict.Product.Price,
		Method:      string(verdict.Method),
		Confidence:  verdict.Confidence,
		Note:        verdict.Note,
		CheckedAt:   time.Now().UTC(),
	}); err != nil {
		m.log.Warn("logging stock event", "url", target.URL, "error", err)
	}

	if m.tracker.Observe(target.URL, verdict.InStock) {
		m.log.Info("restock detected", "url", target.URL, "product", verdict.Product.Name)
		m.processRestock(ctx, models.RestockEvent{
			Target:     target,
			Verdict:    verdict,
			DetectedAt: time.Now().UTC(),
		})
	}

	m.log.Info("checked target",
		"url", target.URL,
		"in_stock", verdict.InStock,
		"method", verdict.Method,
		"confidence", verdict.Confidence,
		"product", verdict.Product.Name)
	return verdict
}

// classifyTarget runs the vision path when enabled, falling back to the
// structured HTML cascade on any vision failure.
func (m *Monitor) classifyTarget(ctx context.Context, target models.Target) models.StockVerdict {
	if m.cfg.UseScreenshot && m.shooter != nil {
		if v, err := m.classifyByScreenshot(ctx, target); err == nil {
			return v
		} else {
			m.log.Warn("screenshot analysis failed, falling back to HTML",
				"url", target.URL, "error", err)
		}
	}
	return m.classifyByHTML(ctx, target)
}

func (m *Monitor) classifyByScreenshot(ctx context.Context, target models.Target) (models.StockVerdict, error) {
	png, err := m.shooter.Capture(ctx, target.URL)
	if err != nil {
		return models.StockVerdict{}, fmt.Errorf("capture: %w", err)
	}
	analysis, err := m.provider.AnalyzeStockPage(ctx, png, target.URL)
	if err != nil {
		return models.StockVerdict{}, fmt.Errorf("analyze: %w", err)
	}
	return models.StockVerdict{
		InStock: analysis.InStock,
		Product: models.ProductInfo{
			Name:  analysis.ProductName,
			Price: analysis.Price,
		},
		Method:     models.MethodScreenshotVision,
		Confidence: analysis.Confidence,
		Note:       analysis.Reasoning,
	}, nil
}

func (m *Monitor) classifyByHTML(ctx context.Context, target models.Target) models.StockVerdict {
	doc, err := m.fetcher.Fetch(ctx, target.URL)
	if err != nil {
		m.log.Warn("fetch failed", "url", target.URL, "error", err)
		return models.StockVerdict{
			InStock:    false,
			Method:     models.MethodKeywordMatch,
			Confidence: 0,
			Note:       "fetch failed: " + err.Error(),
		}
	}
	return classify.Classify(signal.Extract(doc, target.URL))
}

// processRestock renders the alert text, dispatches it to every channel,
// and records one audit row per channel outcome.
func (m *Monitor) processRestock(ctx context.Context, event models.RestockEvent) {
	message := m.alertMessage(ctx, event)

	outcomes := m.alerter.Dispatch(ctx, notify.Alert{
		Target:     event.Target,
		Product:    event.Verdict.Product,
		Message:    message,
		Method:     string(event.Verdict.Method),
		Confidence: event.Verdict.Confidence,
	})

	for channel, out := range outcomes {
		status := "success"
		if !out.Success {
			status = "failed"
		}
		if _, err := m.store.LogNotification(ctx, models.NotificationRecord{
			URL:      event.Target.URL,
			Channel:  channel,
			Status:   status,
			ErrorMsg: out.Error,
			Message:  message,
			SentAt:   time.Now().UTC(),
		}); err != nil {
			m.log.Warn("logging notification", "channel", channel, "error", err)
		}
	}
	m.log.Info("restock alert processed", "url", event.Target.URL, "outcomes", outcomes)
}

func (m *Monitor) alertMessage(ctx context.Context, event models.RestockEvent) string {
	if m.provider != nil {
		msg, err := m.provider.AlertMessage(ctx, event.Target, event.Verdict.Product)
		if err == nil && msg != "" {
			return msg
		}
		if err != nil && !errors.Is(err, ai.ErrNotConfigured) {
			m.log.Warn("AI message generation failed", "error", err)
		}
	}
	name := event.Verdict.Product.Name
	if name == "" {
		name = "Your monitored item"
	}
	return fmt.Sprintf("🎉 Great news! %s is back in stock! Get it now before it sells out again! 🛒✨", name)
}
