package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/olegsm/talkie-server/internal/store"
)

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	name             TEXT NOT NULL,
	username         TEXT NOT NULL UNIQUE,
	email            TEXT NOT NULL UNIQUE,
	password_hash    TEXT NOT NULL,
	status           TEXT NOT NULL DEFAULT 'Available',
	avatar_public_id TEXT NOT NULL DEFAULT '',
	avatar_url       TEXT NOT NULL DEFAULT '',
	created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS chats (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL DEFAULT '',
	is_group   BOOLEAN NOT NULL DEFAULT 0,
	creator_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (creator_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS chat_members (
	chat_id   INTEGER NOT NULL,
	user_id   INTEGER NOT NULL,
	joined_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (chat_id, user_id),
	FOREIGN KEY (chat_id) REFERENCES chats(id),
	FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS messages (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	chat_id     INTEGER NOT NULL,
	sender_id   INTEGER NOT NULL,
	content     TEXT NOT NULL,
	attachments TEXT NOT NULL DEFAULT '[]',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (chat_id) REFERENCES chats(id),
	FOREIGN KEY (sender_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_chat_members_user ON chat_members(user_id);
`

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function instead
// of the built-in schema. Useful for tests seeding custom data.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

// CreateUser creates a new user with hashed password.
func (s *SQLiteStore) CreateUser(ctx context.Context, name, username, email, passwordHash string) (*store.User, error) {
	query := `
		INSERT INTO users (name, username, email, password_hash, status)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, name, username, email, passwordHash, store.StatusAvailable)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	query := `
		SELECT id, name, username, email, password_hash, status, avatar_public_id, avatar_url, created_at
		FROM users WHERE id = ?
	`
	return s.scanUserRow(s.db.QueryRowContext(ctx, query, id))
}

// GetUserByUsername retrieves a user by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	query := `
		SELECT id, name, username, email, password_hash, status, avatar_public_id, avatar_url, created_at
		FROM users WHERE username = ?
	`
	return s.scanUserRow(s.db.QueryRowContext(ctx, query, username))
}

// SearchUsers finds users whose name contains the query, excluding the given IDs.
func (s *SQLiteStore) SearchUsers(ctx context.Context, name string, excludeIDs []int64) ([]*store.User, error) {
	query := `
		SELECT id, name, username, email, password_hash, status, avatar_public_id, avatar_url, created_at
		FROM users WHERE name LIKE ?
	`
	args := []any{"%" + name + "%"}

	if len(excludeIDs) > 0 {
		placeholders := strings.Repeat("?,", len(excludeIDs))
		query += " AND id NOT IN (" + placeholders[:len(placeholders)-1] + ")"
		for _, id := range excludeIDs {
			args = append(args, id)
		}
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	users := make([]*store.User, 0)
	for rows.Next() {
		u, err := s.scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserStatus sets the availability status for a user.
func (s *SQLiteStore) UpdateUserStatus(ctx context.Context, id int64, status store.UserStatus) error {
	result, err := s.db.ExecContext(ctx, `UPDATE users SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanUserRow(row rowScanner) (*store.User, error) {
	var u store.User
	if err := row.Scan(
		&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash,
		&u.Status, &u.AvatarPublicID, &u.AvatarURL, &u.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// ==== ChatStore implementation ====

// CreateChat creates a chat and adds the given members. The creator is always a member.
func (s *SQLiteStore) CreateChat(ctx context.Context, name string, groupChat bool, creatorID int64, memberIDs []int64) (*store.Chat, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO chats (name, is_group, creator_id) VALUES (?, ?, ?)`,
		name, groupChat, creatorID)
	if err != nil {
		return nil, fmt.Errorf("insert chat: %w", err)
	}

	chatID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	members := map[int64]struct{}{creatorID: {}}
	for _, id := range memberIDs {
		members[id] = struct{}{}
	}
	for id := range members {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chat_members (chat_id, user_id) VALUES (?, ?)`,
			chatID, id); err != nil {
			return nil, fmt.Errorf("insert chat member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return s.GetChatByID(ctx, chatID)
}

// GetChatByID retrieves a chat by ID.
func (s *SQLiteStore) GetChatByID(ctx context.Context, id int64) (*store.Chat, error) {
	var c store.Chat
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, is_group, creator_id, created_at FROM chats WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.GroupChat, &c.CreatorID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	return &c, nil
}

// ListChatsForUser lists chats the user is a member of.
func (s *SQLiteStore) ListChatsForUser(ctx context.Context, userID int64) ([]*store.Chat, error) {
	query := `
		SELECT c.id, c.name, c.is_group, c.creator_id, c.created_at
		FROM chats c
		JOIN chat_members m ON m.chat_id = c.id
		WHERE m.user_id = ?
		ORDER BY c.id
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	chats := make([]*store.Chat, 0)
	for rows.Next() {
		var c store.Chat
		if err := rows.Scan(&c.ID, &c.Name, &c.GroupChat, &c.CreatorID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		chats = append(chats, &c)
	}
	return chats, rows.Err()
}

// ListMembers lists user IDs of all members of a chat.
func (s *SQLiteStore) ListMembers(ctx context.Context, chatID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM chat_members WHERE chat_id = ? ORDER BY user_id`, chatID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// IsMember checks if user is a member of the chat.
func (s *SQLiteStore) IsMember(ctx context.Context, userID, chatID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM chat_members WHERE chat_id = ? AND user_id = ?`,
		chatID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return n > 0, nil
}

// ==== MessageStore implementation ====

// SaveMessage persists a message and assigns its ID.
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg *store.Message) error {
	attachments, err := json.Marshal(msg.Attachments)
	if err != nil {
		return fmt.Errorf("marshal attachments: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (chat_id, sender_id, content, attachments) VALUES (?, ?, ?, ?)`,
		msg.ChatID, msg.SenderID, msg.Content, string(attachments))
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	msg.ID = id

	return s.db.QueryRowContext(ctx,
		`SELECT created_at FROM messages WHERE id = ?`, id).Scan(&msg.CreatedAt)
}

// ListMessages retrieves messages from a chat, newest first.
func (s *SQLiteStore) ListMessages(ctx context.Context, chatID int64, limit, offset int) ([]*store.Message, error) {
	query := `
		SELECT id, chat_id, sender_id, content, attachments, created_at
		FROM messages
		WHERE chat_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`
	rows, err := s.db.QueryContext(ctx, query, chatID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*store.Message, 0)
	for rows.Next() {
		var m store.Message
		var attachments string
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &attachments, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if err := json.Unmarshal([]byte(attachments), &m.Attachments); err != nil {
			return nil, fmt.Errorf("unmarshal attachments: %w", err)
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

// CountMessages returns the total number of messages in a chat.
func (s *SQLiteStore) CountMessages(ctx context.Context, chatID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM messages WHERE chat_id = ?`, chatID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}
