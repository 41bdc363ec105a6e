package models

import "time"

// alert channel
const (
	AlertChannelTelegram = "telegram"
	AlertChannelEmail    = "email"
)

// Alert is an administrative notification persisted for later
// delivery by the worker.
type Alert struct {
	ID        uint64
	Type      string
	Channel   string
	Target    string
	Payload   []byte
	IsSent    bool
	CreatedAt time.Time
	SentAt    *time.Time
}
