package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Real-time event names shared by both directions of the socket protocol.
const (
	EventNewMessage      = "NEW_MESSAGE"
	EventNewMessageAlert = "NEW_MESSAGE_ALERT"
	EventStartTyping     = "START_TYPING"
	EventStopTyping      = "STOP_TYPING"
	EventOnlineUsers     = "ONLINE_USERS"
	EventOfflineNotice   = "OFFLINE_NOTICE"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// NewMessageData is a chat message from the client.
type NewMessageData struct {
	ChatID  int64   `json:"chatId"`
	Members []int64 `json:"members"`
	Message string  `json:"message"`
}

// TypingData accompanies START_TYPING / STOP_TYPING from the client.
type TypingData struct {
	ChatID  int64   `json:"chatId"`
	Members []int64 `json:"members"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Sender identifies the author of a relayed message.
type Sender struct {
	ID   int64  `json:"_id"`
	Name string `json:"name"`
}

// Attachment references an uploaded file.
type Attachment struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// RelayMessage is the enriched real-time form of a message.
type RelayMessage struct {
	ID          string       `json:"_id"`
	Content     string       `json:"content"`
	Sender      Sender       `json:"sender"`
	ChatID      int64        `json:"chat"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   string       `json:"createdAt"`
}

// EventMessageData carries a relayed message to chat members.
type EventMessageData struct {
	ChatID  int64        `json:"chatId"`
	Message RelayMessage `json:"message"`
}

// EventChatData carries only the chat identifier (alerts, typing, offline notice).
type EventChatData struct {
	ChatID int64 `json:"chatId"`
}

// EventOnlineUsersData carries the currently online user IDs.
type EventOnlineUsersData struct {
	Users []int64 `json:"users"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
