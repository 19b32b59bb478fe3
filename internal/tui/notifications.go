package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dropwatch/dropwatch/internal/store"
	"github.com/dropwatch/dropwatch/models"
)

// NotificationsModel shows the notification audit log.
type NotificationsModel struct {
	store   *store.Store
	recs    []models.NotificationRecord
	width   int
	height  int
	loading bool
}

type notifLoadedMsg struct{ recs []models.NotificationRecord }

// NewNotificationsModel creates a NotificationsModel.
func NewNotificationsModel(st *store.Store) NotificationsModel {
	return NotificationsModel{store: st, loading: true}
}

func (n NotificationsModel) Init() tea.Cmd {
	return n.loadCmd()
}

func (n NotificationsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		recs, _ := n.store.RecentNotifications(context.Background(), 50)
		return notifLoadedMsg{recs: recs}
	}
}

func (n NotificationsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case notifLoadedMsg:
		n.recs = msg.recs
		n.loading = false
		return n, tea.Tick(10*time.Second, func(t time.Time) tea.Msg {
			return n.loadCmd()()
		})
	case tea.KeyMsg:
		if msg.String() == "r" {
			n.loading = true
			return n, n.loadCmd()
		}
	}
	return n, nil
}

func (n *NotificationsModel) SetSize(w, h int) {
	n.width = w
	n.height = h
}

func (n NotificationsModel) View() string {
	if n.loading && len(n.recs) == 0 {
		return panelStyle.Width(max(20, n.width-2)).Render("Loading notifications...")
	}

	lineLimit := n.height - 8
	if lineLimit < 5 {
		lineLimit = 5
	}
	rows := ""
	for i, rec := range n.recs {
		if i >= lineLimit {
			break
		}
		status := inStockStyle.Render("sent")
		if rec.Status != "success" {
			status = outStockStyle.Render("failed")
		}
		detail := truncate(rec.Message, 40)
		if rec.ErrorMsg != "" {
			detail = truncate(rec.ErrorMsg, 40)
		}
		row := lipgloss.JoinHorizontal(lipgloss.Left,
			lipgloss.NewStyle().Width(10).Foreground(slate).Render(rec.Channel),
			lipgloss.NewStyle().Width(8).Render(status),
			lipgloss.NewStyle().Width(22).Foreground(ink).Render(truncate(rec.URL, 20)),
			lipgloss.NewStyle().Width(42).Foreground(slate).Render(detail),
			dimStyle.Render(rec.SentAt.Local().Format("01-02 15:04")),
		)
		rows += row + "\n"
	}

	if len(n.recs) == 0 {
		rows = dimStyle.Render("No notifications sent yet.\n")
	}

	return panelStyle.Width(max(20, n.width-2)).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			panelHeaderStyle.Render("Notification Log"),
			dimStyle.Render("Channel   Status  URL                   Detail                                    Sent"),
			rows,
		),
	)
}
