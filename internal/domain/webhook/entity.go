package webhook

import (
	"bytes"
	"encoding/base64"
	"time"
	"unicode/utf8"
)

const SourceContentStudio = "contentstudio"

// Payload encodings. Bodies a text column cannot hold (invalid UTF-8, NUL bytes) are kept as base64.
const (
	PayloadEncodingRaw    = "raw"
	PayloadEncodingBase64 = "base64"
)

// Event represents webhook_events, an append-only log of provider callbacks.
type Event struct {
	ID              string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Source          string     `gorm:"type:varchar(32);not null;index" json:"source"`
	EventType       *string    `gorm:"type:varchar(128)" json:"event_type,omitempty"`
	Payload         string     `gorm:"type:text;not null" json:"payload"`
	PayloadEncoding string     `gorm:"type:varchar(16);not null;default:'raw'" json:"payload_encoding"`
	ProviderPostID  *string    `gorm:"column:contentstudio_post_id;type:varchar(128);index" json:"contentstudio_post_id,omitempty"`
	LinkedPostID    *string    `gorm:"column:post_id;type:varchar(36);index" json:"post_id,omitempty"`
	ReceivedAt      time.Time  `gorm:"not null;index" json:"received_at"`
	Processed       bool       `gorm:"not null;default:false" json:"processed"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	Error           *string    `gorm:"type:text" json:"error,omitempty"`
}

func (Event) TableName() string {
	return "webhook_events"
}

// SetPayload stores raw verbatim when it is valid text, base64 encoded otherwise.
func (e *Event) SetPayload(raw []byte) {
	if utf8.Valid(raw) && bytes.IndexByte(raw, 0) < 0 {
		e.Payload = string(raw)
		e.PayloadEncoding = PayloadEncodingRaw
		return
	}
	e.Payload = base64.StdEncoding.EncodeToString(raw)
	e.PayloadEncoding = PayloadEncodingBase64
}

// RawPayload returns the body exactly as received.
func (e Event) RawPayload() ([]byte, error) {
	if e.PayloadEncoding == PayloadEncodingBase64 {
		return base64.StdEncoding.DecodeString(e.Payload)
	}
	return []byte(e.Payload), nil
}

// Outcome is the processing result recorded on an event once reconciliation ran.
type Outcome struct {
	LinkedPostID *string
	Error        *string
}
