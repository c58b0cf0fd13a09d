package core

import (
	"time"

	"github.com/olegsm/talkie-server/internal/store"
)

// Message is the ephemeral form of a chat message used for real-time
// delivery. It carries a generated identifier and an enriched sender;
// the authoritative record is persisted separately and gets its ID from
// the store, possibly after the relay has already been delivered.
type Message struct {
	ID          string
	ChatID      int64
	SenderID    int64
	SenderName  string
	Content     string
	Attachments []store.Attachment
	CreatedAt   time.Time
}
