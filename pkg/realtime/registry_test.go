package realtime

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func containsConn(conns []Conn, target Conn) bool {
	for _, c := range conns {
		if c.ID() == target.ID() {
			return true
		}
	}
	return false
}

func TestRegisterRequiresScope(t *testing.T) {
	reg := NewRegistry(nil)
	c := newFakeConn("c1")

	for _, org := range []string{"", "   "} {
		if err := reg.Register(c, org); !errors.Is(err, ErrInvalidScope) {
			t.Fatalf("Register(%q) = %v, want ErrInvalidScope", org, err)
		}
	}
	if reg.Len() != 0 {
		t.Fatalf("connection without scope was added")
	}
	if err := reg.Register(nil, "A"); !errors.Is(err, ErrNilConnection) {
		t.Fatalf("expected ErrNilConnection, got %v", err)
	}
}

func TestRegisterIsVisibleImmediately(t *testing.T) {
	reg := NewRegistry(nil)
	c := newFakeConn("c1")
	if err := reg.Register(c, "A"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !containsConn(reg.MembersOf("A"), c) {
		t.Fatalf("registered connection missing from snapshot")
	}
	if len(reg.MembersOf("B")) != 0 {
		t.Fatalf("connection leaked into another org")
	}
}

func TestRegisterTwiceKeepsSingleEntry(t *testing.T) {
	reg := NewRegistry(nil)
	c := newFakeConn("c1")
	_ = reg.Register(c, "A")
	_ = reg.Register(c, "B")

	if reg.Len() != 1 {
		t.Fatalf("expected a single entry, got %d", reg.Len())
	}
	if len(reg.MembersOf("A")) != 0 || len(reg.MembersOf("B")) != 1 {
		t.Fatalf("re-register did not move scope")
	}
	if org, ok := reg.ScopeOf(c); !ok || org != "B" {
		t.Fatalf("ScopeOf = %q,%v", org, ok)
	}
}

func TestUnregisterTwiceIsNoop(t *testing.T) {
	reg := NewRegistry(nil)
	c := newFakeConn("c1")
	_ = reg.Register(c, "A")

	if !reg.Unregister(c) {
		t.Fatalf("first unregister should remove the entry")
	}
	if reg.Unregister(c) {
		t.Fatalf("second unregister should be a no-op")
	}
	if reg.Unregister(newFakeConn("never-registered")) {
		t.Fatalf("unknown connection should be a no-op")
	}
	if reg.Unregister(nil) {
		t.Fatalf("nil connection should be a no-op")
	}
	if len(reg.MembersOf("A")) != 0 {
		t.Fatalf("unregistered connection still listed")
	}
}

func TestSnapshotIsIsolatedFromMutation(t *testing.T) {
	reg := NewRegistry(nil)
	c1, c2 := newFakeConn("c1"), newFakeConn("c2")
	_ = reg.Register(c1, "A")
	_ = reg.Register(c2, "A")

	snapshot := reg.MembersOf("A")
	reg.Unregister(c1)
	_ = reg.Register(newFakeConn("c3"), "A")

	if len(snapshot) != 2 {
		t.Fatalf("snapshot changed after registry mutation: %d", len(snapshot))
	}
}

func TestMembersNeverContainUnregistered(t *testing.T) {
	reg := NewRegistry(nil)
	const n = 64

	conns := make([]*fakeConn, n)
	for i := range conns {
		conns[i] = newFakeConn(fmt.Sprintf("c%d", i))
	}

	var wg sync.WaitGroup
	for _, c := range conns {
		wg.Add(1)
		go func(c *fakeConn) {
			defer wg.Done()
			_ = reg.Register(c, "A")
			reg.Unregister(c)
			if containsConn(reg.MembersOf("A"), c) {
				t.Errorf("%s visible after unregister returned", c.ID())
			}
		}(c)
	}
	wg.Wait()

	if reg.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", reg.Len())
	}
}

func TestCountsAndCloseAll(t *testing.T) {
	reg := NewRegistry(nil)
	c1, c2, c3 := newFakeConn("c1"), newFakeConn("c2"), newFakeConn("c3")
	_ = reg.Register(c1, "A")
	_ = reg.Register(c2, "A")
	_ = reg.Register(c3, "B")

	counts := reg.Counts()
	if counts["A"] != 2 || counts["B"] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}

	reg.CloseAll()
	if reg.Len() != 0 {
		t.Fatalf("CloseAll left connections behind")
	}
	for _, c := range []*fakeConn{c1, c2, c3} {
		if c.closeCount() != 1 {
			t.Fatalf("%s closed %d times", c.ID(), c.closeCount())
		}
	}
}
