package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dropwatch/dropwatch/internal/config"
)

// Dispatcher fans an alert out to every active channel.
type Dispatcher struct {
	channels []Channel
}

// NewDispatcher creates a Dispatcher from cfg. Only channels that are both
// enabled and fully configured are registered.
func NewDispatcher(cfg config.NotifyConfig) *Dispatcher {
	d := &Dispatcher{}
	candidates := []Channel{
		NewEmail(cfg.Email),
		NewDiscord(cfg.Discord),
		NewSlack(cfg.Slack),
		NewTelegram(cfg.Telegram),
		NewWebhook(cfg.Webhook),
	}
	for _, ch := range candidates {
		if ch.IsConfigured() {
			d.channels = append(d.channels, ch)
		}
	}
	return d
}

// Channels returns the names of the active channels.
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.channels))
	for _, ch := range d.channels {
		names = append(names, ch.Name())
	}
	return names
}

// IsAnyConfigured returns true if at least one channel is ready to send.
func (d *Dispatcher) IsAnyConfigured() bool {
	return len(d.channels) > 0
}

// Dispatch sends the alert to every active channel concurrently and waits
// for all of them. The returned map has one entry per active channel; a
// failure on one channel never prevents delivery on the others.
func (d *Dispatcher) Dispatch(ctx context.Context, alert Alert) map[string]Outcome {
	results := make(map[string]Outcome, len(d.channels))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, ch := range d.channels {
		wg.Add(1)
		go func(ch Channel) {
			defer wg.Done()
			out := Outcome{Success: true}
			if err := ch.Send(ctx, alert); err != nil {
				out = Outcome{Success: false, Error: err.Error()}
				slog.Warn("notify: channel send failed",
					"channel", ch.Name(), "url", alert.Target.URL, "error", err)
			}
			mu.Lock()
			results[ch.Name()] = out
			mu.Unlock()
		}(ch)
	}
	wg.Wait()
	return results
}
