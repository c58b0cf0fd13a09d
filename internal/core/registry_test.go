package core

import (
	"slices"
	"sync"
	"testing"
)

func TestRegistryAdmitLookupEvict(t *testing.T) {
	r := NewRegistry()

	alice := NewClient("c1", 1, "alice")
	r.Admit(alice)

	got, ok := r.Lookup(1)
	if !ok || got != alice {
		t.Fatalf("expected alice's client, got %v ok=%v", got, ok)
	}

	if !r.Evict(alice) {
		t.Fatalf("expected evict to remove the mapping")
	}
	if _, ok := r.Lookup(1); ok {
		t.Fatalf("expected no mapping after evict")
	}
	if r.Evict(alice) {
		t.Fatalf("expected second evict to be a no-op")
	}
}

func TestRegistryAdmitReplacesStaleHandle(t *testing.T) {
	r := NewRegistry()

	first := NewClient("c1", 1, "alice")
	second := NewClient("c2", 1, "alice")

	r.Admit(first)
	replaced := r.Admit(second)

	if replaced != first {
		t.Fatalf("expected first client to be replaced")
	}
	select {
	case <-first.Done():
	default:
		t.Fatalf("expected stale client to be closed")
	}

	got, _ := r.Lookup(1)
	if got != second {
		t.Fatalf("last writer should win, got %v", got)
	}

	// Teardown of the stale transport must not evict the new mapping.
	if r.Evict(first) {
		t.Fatalf("evicting the stale client must be a no-op")
	}
	if _, ok := r.Lookup(1); !ok {
		t.Fatalf("new mapping lost after stale evict")
	}
}

func TestRegistryResolveSkipsOfflineAndDuplicates(t *testing.T) {
	r := NewRegistry()

	alice := NewClient("c1", 1, "alice")
	bob := NewClient("c2", 2, "bob")
	r.Admit(alice)
	r.Admit(bob)

	clients := r.Resolve([]int64{1, 2, 2, 99})
	if len(clients) != 2 {
		t.Fatalf("expected 2 resolved clients, got %d", len(clients))
	}
	for _, c := range clients {
		if c.UserID != 1 && c.UserID != 2 {
			t.Fatalf("resolved unexpected user %d", c.UserID)
		}
	}
}

func TestRegistrySnapshotOnlineSorted(t *testing.T) {
	r := NewRegistry()

	for _, id := range []int64{5, 1, 3} {
		r.Admit(NewClient("c", id, "u"))
	}

	online := r.SnapshotOnline()
	if !slices.Equal(online, []int64{1, 3, 5}) {
		t.Fatalf("expected sorted online set, got %v", online)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			c := NewClient("c", id%8, "u")
			r.Admit(c)
			r.Lookup(id % 8)
			r.Resolve([]int64{id % 8, (id + 1) % 8})
			r.SnapshotOnline()
			r.Evict(c)
		}(int64(i))
	}
	wg.Wait()
}
