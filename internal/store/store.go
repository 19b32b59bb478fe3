// Package store is the persistence sink for dropwatch: the target list and
// the append-only stock observation and notification audit logs. It is a
// durable record, not the source of truth for in-memory monitoring state.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dropwatch/dropwatch/internal/database"
	"github.com/dropwatch/dropwatch/models"
)

// Store wraps the database with typed domain operations.
type Store struct {
	db database.DB
}

// New creates a Store over db.
func New(db database.DB) *Store {
	return &Store{db: db}
}

// AddTarget inserts a target or, when the URL is already known, updates its
// product name and reactivates it. Targets are never deleted.
func (s *Store) AddTarget(ctx context.Context, url, productName string) error {
	now := time.Now().UTC()

	var existing models.Target
	err := s.db.Get(ctx, &existing,
		`SELECT id, url, product_name, active, last_checked, created_at, updated_at
		 FROM targets WHERE url = ?`, url)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = s.db.Insert(ctx, "targets", models.Target{
			URL:         url,
			ProductName: productName,
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		return err
	}
	if err != nil {
		return err
	}

	if productName == "" {
		productName = existing.ProductName
	}
	return s.db.Exec(ctx,
		`UPDATE targets SET product_name = ?, active = 1, updated_at = ? WHERE url = ?`,
		productName, now, url)
}

// DeactivateTarget marks a target inactive; its history is kept.
func (s *Store) DeactivateTarget(ctx context.Context, url string) error {
	return s.db.Exec(ctx,
		`UPDATE targets SET active = 0, updated_at = ? WHERE url = ?`,
		time.Now().UTC(), url)
}

// ActiveTargets returns all targets currently being monitored, oldest first.
func (s *Store) ActiveTargets(ctx context.Context) ([]models.Target, error) {
	var targets []models.Target
	err := s.db.Select(ctx, &targets,
		`SELECT id, url, product_name, active, last_checked, created_at, updated_at
		 FROM targets WHERE active = 1 ORDER BY created_at`)
	return targets, err
}

// AllTargets returns every target, active or not.
func (s *Store) AllTargets(ctx context.Context) ([]models.Target, error) {
	var targets []models.Target
	err := s.db.Select(ctx, &targets,
		`SELECT id, url, product_name, active, last_checked, created_at, updated_at
		 FROM targets ORDER BY created_at`)
	return targets, err
}

// TouchLastChecked records that a check of url started now.
func (s *Store) TouchLastChecked(ctx context.Context, url string) error {
	now := time.Now().UTC()
	return s.db.Exec(ctx,
		`UPDATE targets SET last_checked = ?, updated_at = ? WHERE url = ?`,
		now, now, url)
}

// LogStockEvent appends one stock observation to the audit log.
func (s *Store) LogStockEvent(ctx context.Context, ev models.StockEvent) (int64, error) {
	if ev.CheckedAt.IsZero() {
		ev.CheckedAt = time.Now().UTC()
	}
	return s.db.Insert(ctx, "stock_events", ev)
}

// LogNotification appends one notification outcome to the audit log.
func (s *Store) LogNotification(ctx context.Context, rec models.NotificationRecord) (int64, error) {
	if rec.SentAt.IsZero() {
		rec.SentAt = time.Now().UTC()
	}
	return s.db.Insert(ctx, "notifications", rec)
}

// RecentEvents returns the newest stock observations across all targets.
func (s *Store) RecentEvents(ctx context.Context, limit int) ([]models.StockEvent, error) {
	var events []models.StockEvent
	err := s.db.Select(ctx, &events,
		`SELECT id, url, product_name, in_stock, price, method, confidence, note, checked_at
		 FROM stock_events ORDER BY checked_at DESC, id DESC LIMIT ?`, limit)
	return events, err
}

// EventsSince returns a target's observations newer than since, newest first.
func (s *Store) EventsSince(ctx context.Context, url string, since time.Time) ([]models.StockEvent, error) {
	var events []models.StockEvent
	err := s.db.Select(ctx, &events,
		`SELECT id, url, product_name, in_stock, price, method, confidence, note, checked_at
		 FROM stock_events WHERE url = ? AND checked_at > ? ORDER BY checked_at DESC, id DESC`,
		url, since)
	return events, err
}

// LatestEvents returns the most recent observation per URL.
func (s *Store) LatestEvents(ctx context.Context) ([]models.StockEvent, error) {
	var events []models.StockEvent
	err := s.db.Select(ctx, &events,
		`SELECT e.id, e.url, e.product_name, e.in_stock, e.price, e.method, e.confidence, e.note, e.checked_at
		 FROM stock_events e
		 JOIN (SELECT url, MAX(id) AS max_id FROM stock_events GROUP BY url) latest
		   ON e.id = latest.max_id
		 ORDER BY e.url`)
	return events, err
}

// ChannelStat is one row of the notification statistics rollup.
type ChannelStat struct {
	Channel string `db:"channel"`
	Status  string `db:"status"`
	Count   int    `db:"cnt"`
}

// NotificationStats aggregates send outcomes per channel since the given time.
func (s *Store) NotificationStats(ctx context.Context, since time.Time) ([]ChannelStat, error) {
	var stats []ChannelStat
	err := s.db.Select(ctx, &stats,
		`SELECT channel, status, COUNT(*) AS cnt
		 FROM notifications WHERE sent_at > ?
		 GROUP BY channel, status ORDER BY channel, status`, since)
	return stats, err
}

// RecentNotifications returns the newest notification outcomes.
func (s *Store) RecentNotifications(ctx context.Context, limit int) ([]models.NotificationRecord, error) {
	var recs []models.NotificationRecord
	err := s.db.Select(ctx, &recs,
		`SELECT id, url, channel, status, error_msg, message, sent_at
		 FROM notifications ORDER BY sent_at DESC, id DESC LIMIT ?`, limit)
	return recs, err
}
