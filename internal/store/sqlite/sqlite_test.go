package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"testing"

	"github.com/olegsm/talkie-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s *SQLiteStore, name, username string) *store.User {
	t.Helper()

	u, err := s.CreateUser(context.Background(), name, username, username+"@example.com", "hash")
	if err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return u
}

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := seedUser(t, s, "Alice A", "alice")
	if created.Status != store.StatusAvailable {
		t.Fatalf("new users default to Available, got %v", created.Status)
	}

	byID, err := s.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Username != "alice" || byID.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", byID)
	}

	if _, err := s.GetUserByID(ctx, 999); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected ErrNoRows for missing user, got %v", err)
	}
}

func TestUpdateUserStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "Alice A", "alice")

	if err := s.UpdateUserStatus(ctx, alice.ID, store.StatusBusy); err != nil {
		t.Fatalf("update status: %v", err)
	}

	got, err := s.GetUserByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Status != store.StatusBusy {
		t.Fatalf("expected Busy, got %v", got.Status)
	}

	if err := s.UpdateUserStatus(ctx, 999, store.StatusBusy); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected ErrNoRows for missing user, got %v", err)
	}
}

func TestSearchUsersExcludes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "Alice", "alice")
	alex := seedUser(t, s, "Alex", "alex")
	seedUser(t, s, "Bob", "bob")

	results, err := s.SearchUsers(ctx, "al", []int64{alice.ID})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ID != alex.ID {
		t.Fatalf("expected only alex, got %+v", results)
	}

	// Empty query matches everyone not excluded.
	results, err = s.SearchUsers(ctx, "", nil)
	if err != nil {
		t.Fatalf("search all: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 users, got %d", len(results))
	}
}

func TestCreateChatAndMembership(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "Alice", "alice")
	bob := seedUser(t, s, "Bob", "bob")
	carol := seedUser(t, s, "Carol", "carol")

	chat, err := s.CreateChat(ctx, "", false, alice.ID, []int64{bob.ID})
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}

	members, err := s.ListMembers(ctx, chat.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if !slices.Equal(members, []int64{alice.ID, bob.ID}) {
		t.Fatalf("unexpected members: %v", members)
	}

	if ok, _ := s.IsMember(ctx, alice.ID, chat.ID); !ok {
		t.Fatalf("creator must be a member")
	}
	if ok, _ := s.IsMember(ctx, carol.ID, chat.ID); ok {
		t.Fatalf("carol must not be a member")
	}

	chats, err := s.ListChatsForUser(ctx, bob.ID)
	if err != nil {
		t.Fatalf("list chats: %v", err)
	}
	if len(chats) != 1 || chats[0].ID != chat.ID {
		t.Fatalf("unexpected chats for bob: %+v", chats)
	}
}

func TestSaveAndListMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "Alice", "alice")
	bob := seedUser(t, s, "Bob", "bob")
	chat, err := s.CreateChat(ctx, "", false, alice.ID, []int64{bob.ID})
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}

	msg := &store.Message{
		ChatID:   chat.ID,
		SenderID: alice.ID,
		Content:  "hello",
		Attachments: []store.Attachment{
			{PublicID: "pid-1", URL: "https://cdn.example.com/pid-1"},
		},
	}
	if err := s.SaveMessage(ctx, msg); err != nil {
		t.Fatalf("save message: %v", err)
	}
	if msg.ID == 0 {
		t.Fatalf("save must assign an id")
	}
	if msg.CreatedAt.IsZero() {
		t.Fatalf("save must populate created_at")
	}

	for i := 0; i < 3; i++ {
		_ = i
		if err := s.SaveMessage(ctx, &store.Message{ChatID: chat.ID, SenderID: bob.ID, Content: "reply"}); err != nil {
			t.Fatalf("save message: %v", err)
		}
	}

	messages, err := s.ListMessages(ctx, chat.ID, 2, 0)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected page of 2, got %d", len(messages))
	}
	// Newest first.
	if messages[0].ID <= messages[1].ID {
		t.Fatalf("expected newest first, got ids %d, %d", messages[0].ID, messages[1].ID)
	}

	last, err := s.ListMessages(ctx, chat.ID, 2, 2)
	if err != nil {
		t.Fatalf("list messages offset: %v", err)
	}
	if len(last) != 2 {
		t.Fatalf("expected 2 remaining, got %d", len(last))
	}
	if got := last[1].Attachments; len(got) != 1 || got[0].PublicID != "pid-1" {
		t.Fatalf("attachments did not round-trip: %+v", got)
	}

	total, err := s.CountMessages(ctx, chat.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 4 {
		t.Fatalf("expected 4 messages, got %d", total)
	}
}
