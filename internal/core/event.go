package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventNewMessage delivers a relayed chat message.
	EventNewMessage EventKind = iota
	// EventNewMessageAlert is a lightweight notification that a chat has a new message.
	EventNewMessageAlert
	// EventStartTyping notifies that another member started typing.
	EventStartTyping
	// EventStopTyping notifies that another member stopped typing.
	EventStopTyping
	// EventOnlineUsers carries the current set of online user IDs.
	EventOnlineUsers
	// EventOfflineNotice tells the sender the recipient has no live connection.
	EventOfflineNotice
	// EventError notifies clients about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind    EventKind
	ChatID  int64
	Users   []int64 // for EventOnlineUsers
	Message Message // for EventNewMessage
	Error   *CoreError
}
