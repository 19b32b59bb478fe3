package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dropwatch/dropwatch/internal/store"
	"github.com/dropwatch/dropwatch/models"
)

// DashboardModel shows the latest stock observation per target.
type DashboardModel struct {
	store    *store.Store
	targets  []models.Target
	latest   map[string]models.StockEvent
	width    int
	height   int
	lastLoad time.Time
	loading  bool
}

// dashLoadedMsg carries the loaded targets and their newest observations.
type dashLoadedMsg struct {
	targets []models.Target
	latest  map[string]models.StockEvent
}

// NewDashboardModel creates a DashboardModel.
func NewDashboardModel(st *store.Store) DashboardModel {
	return DashboardModel{store: st, loading: true}
}

func (d DashboardModel) Init() tea.Cmd {
	return d.loadCmd()
}

func (d DashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		targets, _ := d.store.ActiveTargets(ctx)
		events, _ := d.store.LatestEvents(ctx)
		latest := make(map[string]models.StockEvent, len(events))
		for _, ev := range events {
			latest[ev.URL] = ev
		}
		return dashLoadedMsg{targets: targets, latest: latest}
	}
}

func (d DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashLoadedMsg:
		d.targets = msg.targets
		d.latest = msg.latest
		d.loading = false
		d.lastLoad = time.Now()
		// Refresh every 10 seconds.
		return d, tea.Tick(10*time.Second, func(t time.Time) tea.Msg {
			return d.loadCmd()()
		})
	case tea.KeyMsg:
		if msg.String() == "r" {
			d.loading = true
			return d, d.loadCmd()
		}
	}
	return d, nil
}

func (d *DashboardModel) SetSize(w, h int) {
	d.width = w
	d.height = h
}

func (d DashboardModel) View() string {
	if d.loading && len(d.targets) == 0 {
		return panelStyle.Width(max(20, d.width-2)).Render("Loading targets...")
	}

	var inStock, outStock, unknown int
	for _, t := range d.targets {
		ev, ok := d.latest[t.URL]
		switch {
		case !ok:
			unknown++
		case ev.InStock:
			inStock++
		default:
			outStock++
		}
	}

	cardW := 18
	if d.width >= 100 {
		cardW = 20
	}
	summary := lipgloss.JoinHorizontal(lipgloss.Top,
		renderCounter("In Stock", inStock, inStockStyle, cardW),
		renderCounter("Out", outStock, outStockStyle, cardW),
		renderCounter("Unchecked", unknown, dimStyle, cardW),
	)

	lineLimit := d.height - 12
	if lineLimit < 5 {
		lineLimit = 5
	}
	rows := ""
	for i, t := range d.targets {
		if i >= lineLimit {
			break
		}
		name := truncate(t.DisplayName(), 30)
		ev, ok := d.latest[t.URL]
		status := mutedBadgeStyle.Render("pending")
		method, checked, price := "", "", ""
		if ok {
			status = stockBadge(ev.InStock)
			method = ev.Method
			checked = ev.CheckedAt.Local().Format("15:04:05")
			price = ev.Price
		}
		row := lipgloss.JoinHorizontal(lipgloss.Left,
			lipgloss.NewStyle().Width(32).Foreground(ink).Render(name),
			lipgloss.NewStyle().Width(12).Render(status),
			lipgloss.NewStyle().Width(10).Foreground(slate).Render(price),
			lipgloss.NewStyle().Width(20).Foreground(slate).Render(method),
			dimStyle.Render(checked),
		)
		rows += row + "\n"
	}

	if len(d.targets) == 0 {
		rows = dimStyle.Render("No targets yet. Run: dropwatch target add <url>\n")
	}

	updated := "never"
	if !d.lastLoad.IsZero() {
		updated = d.lastLoad.Format("15:04:05")
	}
	refreshInfo := lipgloss.JoinHorizontal(lipgloss.Left,
		keycapStyle.Render("r"),
		" ",
		dimStyle.Render("refresh"),
		"   ",
		dimStyle.Render("updated "+updated),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Padding(0, 1).Render(summary),
		panelStyle.Width(max(20, d.width-2)).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				panelHeaderStyle.Render("Targets"),
				dimStyle.Render("Product                          Status      Price     Method              Checked"),
				rows,
				refreshInfo,
			),
		),
	)
}

func renderCounter(label string, count int, style lipgloss.Style, width int) string {
	return boxStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Center,
			style.Bold(true).Render(fmt.Sprintf("%d", count)),
			dimStyle.Render(strings.ToUpper(label)),
		),
	) + "  "
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
