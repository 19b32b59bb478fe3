// Package screenshot captures full-page renders of product pages with a
// headless Chrome instance for vision-based stock analysis.
package screenshot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Capturer owns a headless Chrome browser and takes page screenshots.
// The browser is launched lazily on first capture and reused across
// calls until Close.
type Capturer struct {
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool

	// NavTimeout bounds navigation plus load. Default 30s.
	NavTimeout time.Duration
	// SettleDelay is extra time after load for JS-rendered stock badges.
	SettleDelay time.Duration

	Logger *slog.Logger
}

func NewCapturer(logger *slog.Logger) *Capturer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Capturer{
		NavTimeout:  30 * time.Second,
		SettleDelay: 2 * time.Second,
		Logger:      logger,
	}
}

// Capture navigates to pageURL and returns a full-page PNG.
func (c *Capturer) Capture(ctx context.Context, pageURL string) ([]byte, error) {
	b, err := c.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("screenshot: create page: %w", err)
	}
	defer page.Close()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1280,
		Height:            900,
		DeviceScaleFactor: 1,
	}); err != nil {
		c.Logger.Warn("screenshot: set viewport failed", "error", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, c.NavTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("screenshot: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		c.Logger.Warn("screenshot: wait load timeout", "url", pageURL, "error", err)
	}

	// Client-rendered shops swap the buy button in after load.
	select {
	case <-time.After(c.SettleDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	png, err := page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot: capture %s: %w", pageURL, err)
	}
	return png, nil
}

func (c *Capturer) ensureBrowser() (*rod.Browser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("screenshot: capturer is closed")
	}
	if c.browser != nil {
		return c.browser, nil
	}

	l := launcher.New().
		Headless(true).
		Set("disable-blink-features", "AutomationControlled")

	wsURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("screenshot: launch chrome: %w", err)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("screenshot: connect: %w", err)
	}

	c.lnch = l
	c.browser = b
	c.Logger.Info("screenshot: launched headless chrome")
	return b, nil
}

// Close shuts down the browser if one was launched.
func (c *Capturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.browser != nil {
		c.browser.Close()
		c.browser = nil
	}
	if c.lnch != nil {
		c.lnch.Cleanup()
		c.lnch = nil
	}
	return nil
}
