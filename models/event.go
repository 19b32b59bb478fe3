package models

import "time"

// RestockEvent is emitted when a target transitions from out-of-stock to
// in-stock. It is consumed once by the notification dispatcher.
type RestockEvent struct {
	Target     Target       `json:"target"`
	Verdict    StockVerdict `json:"verdict"`
	DetectedAt time.Time    `json:"detected_at"`
}

// StockEvent is one row of the append-only stock observation log.
type StockEvent struct {
	ID          int64     `json:"id"           db:"id"`
	URL         string    `json:"url"          db:"url"`
	ProductName string    `json:"product_name" db:"product_name"`
	InStock     bool      `json:"in_stock"     db:"in_stock"`
	Price       string    `json:"price"        db:"price"`
	Method      string    `json:"method"       db:"method"`
	Confidence  float64   `json:"confidence"   db:"confidence"`
	Note        string    `json:"note"         db:"note"`
	CheckedAt   time.Time `json:"checked_at"   db:"checked_at"`
}

// NotificationRecord is one row of the append-only notification audit log:
// the outcome of a single (event, channel) send attempt.
type NotificationRecord struct {
	ID       int64     `json:"id"       db:"id"`
	URL      string    `json:"url"      db:"url"`
	Channel  string    `json:"channel"  db:"channel"`
	Status   string    `json:"status"   db:"status"` // success | failed
	ErrorMsg string    `json:"error_msg" db:"error_msg"`
	Message  string    `json:"message"  db:"message"`
	SentAt   time.Time `json:"sent_at"  db:"sent_at"`
}
