package store

import (
	"context"
	"time"
)

// UserStatus is a user's self-reported availability.
type UserStatus string

const (
	StatusAvailable UserStatus = "Available"
	StatusBusy      UserStatus = "Busy"
)

// Valid reports whether s is one of the two recognized statuses.
func (s UserStatus) Valid() bool {
	return s == StatusAvailable || s == StatusBusy
}

// User represents a user in the system.
type User struct {
	ID             int64
	Name           string
	Username       string
	Email          string
	PasswordHash   string
	Status         UserStatus
	AvatarPublicID string
	AvatarURL      string
	CreatedAt      time.Time
}

// Chat represents a conversation between two or more users.
type Chat struct {
	ID        int64
	Name      string
	GroupChat bool
	CreatorID int64
	CreatedAt time.Time
}

// Attachment is a file stored with the media service and referenced by a message.
type Attachment struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// Message represents a persisted chat message. The ID is assigned by the
// store on save; real-time relay copies carry their own generated identifier.
type Message struct {
	ID          int64
	ChatID      int64
	SenderID    int64
	Content     string
	Attachments []Attachment
	CreatedAt   time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, name, username, email, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// SearchUsers finds users whose name contains the query, excluding the
	// given IDs (the caller and users they already share a chat with).
	SearchUsers(ctx context.Context, name string, excludeIDs []int64) ([]*User, error)

	// UpdateUserStatus sets the availability status for a user.
	UpdateUserStatus(ctx context.Context, id int64, status UserStatus) error
}

// ChatStore handles chat persistence.
type ChatStore interface {
	// CreateChat creates a chat and adds the given members.
	// The creator is always a member.
	CreateChat(ctx context.Context, name string, groupChat bool, creatorID int64, memberIDs []int64) (*Chat, error)

	// GetChatByID retrieves a chat by ID.
	GetChatByID(ctx context.Context, id int64) (*Chat, error)

	// ListChatsForUser lists chats the user is a member of.
	ListChatsForUser(ctx context.Context, userID int64) ([]*Chat, error)

	// ListMembers lists user IDs of all members of a chat.
	ListMembers(ctx context.Context, chatID int64) ([]int64, error)

	// IsMember checks if user is a member of the chat.
	IsMember(ctx context.Context, userID, chatID int64) (bool, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// SaveMessage persists a message and assigns its ID.
	SaveMessage(ctx context.Context, msg *Message) error

	// ListMessages retrieves messages from a chat, newest first,
	// with limit/offset pagination.
	ListMessages(ctx context.Context, chatID int64, limit, offset int) ([]*Message, error)

	// CountMessages returns the total number of messages in a chat.
	CountMessages(ctx context.Context, chatID int64) (int, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	ChatStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
