package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/olegsm/talkie-server/internal/store"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event, kind EventKind, wait time.Duration) {
	t.Helper()

	deadline := time.Now().Add(wait)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event kind %v received: %+v", kind, ev)
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
}

// fakeStore implements just enough of store.Store for hub tests. Unused
// methods panic through the embedded nil interface.
type fakeStore struct {
	store.Store

	mu       sync.Mutex
	users    map[int64]*store.User
	saved    []*store.Message
	failSave bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[int64]*store.User)}
}

func (f *fakeStore) addUser(id int64, name string, status store.UserStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id] = &store.User{ID: id, Name: name, Username: name, Status: status}
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func (f *fakeStore) SaveMessage(_ context.Context, msg *store.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave {
		return errors.New("disk full")
	}
	msg.ID = int64(len(f.saved) + 1)
	msg.CreatedAt = time.Now()
	f.saved = append(f.saved, msg)
	return nil
}

func (f *fakeStore) savedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

// fakeReplyEngine resolves with a fixed text after an optional delay, or
// blocks until ctx is done when told to hang.
type fakeReplyEngine struct {
	text  string
	err   error
	delay time.Duration
	hang  bool

	mu    sync.Mutex
	calls int
}

func (f *fakeReplyEngine) Complete(ctx context.Context, _ string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.hang {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, f.err
}

func (f *fakeReplyEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
