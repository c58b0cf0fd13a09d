package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandSendMessage delivers a chat message to chat members.
	CommandSendMessage CommandKind = iota
	// CommandStartTyping notifies other chat members that the sender is typing.
	CommandStartTyping
	// CommandStopTyping notifies other chat members that the sender stopped typing.
	CommandStopTyping
)

// Command represents an action requested by a client.
type Command struct {
	Kind    CommandKind
	ChatID  int64
	Members []int64
	Content string
}
