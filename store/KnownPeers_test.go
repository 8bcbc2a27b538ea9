package store

import (
	"net"
	"testing"
)

func TestKnownPeersTouchRemoveAll(t *testing.T) {
	mem := NewMemoryStore()
	kp := NewKnownPeers(mem)

	key := EncodePeerKey(net.ParseIP("127.0.0.1"), 50666)
	if err := kp.Touch(key); err != nil {
		t.Fatalf("touch: %v", err)
	}
	if mem.Count() != 1 {
		t.Fatalf("expected 1 entry in backing store, got %d", mem.Count())
	}

	all := kp.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 known peer, got %d", len(all))
	}
	got, ok := all[key]
	if !ok {
		t.Fatal("expected key present")
	}
	if got.IsZero() {
		t.Fatal("expected a non-zero last-contact timestamp")
	}

	kp.Remove(key)
	if mem.Count() != 0 {
		t.Fatalf("expected 0 entries after remove, got %d", mem.Count())
	}
	if len(kp.All()) != 0 {
		t.Fatal("expected no known peers after remove")
	}
}
