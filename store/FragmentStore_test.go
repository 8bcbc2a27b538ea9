package store

import (
	"testing"

	"github.com/Liblor/Cirrolus/fragment"
)

func TestFragmentStoreSaveFetchList(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFragmentStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	frags, err := fragment.Split([]byte("hello world, this is a test file"), 4, "alice", "notes.txt", false)
	if err != nil {
		t.Fatal(err)
	}

	raw, err := fragment.Encode(frags[0])
	if err != nil {
		t.Fatal(err)
	}

	if err := fs.SaveHosted("alice", raw); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := fs.FetchHosted("alice", frags[0].Meta.Hash)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != len(raw) {
		t.Fatalf("fetched bytes length mismatch")
	}

	listed, err := fs.ListHosted("alice", "")
	if err != nil {
		t.Fatal(err)
	}
	if listed[frags[0].Meta.Hash] != frags[0].Meta.Filename {
		t.Fatalf("listed entry mismatch: %v", listed)
	}
}

func TestFragmentStoreFetchMissing(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFragmentStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fs.FetchHosted("alice", "deadbeef"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFragmentStoreCachedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFragmentStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	frags, err := fragment.Split([]byte("another test payload"), 4, "bob", "f.bin", false)
	if err != nil {
		t.Fatal(err)
	}

	for _, f := range frags {
		raw, err := fragment.Encode(f)
		if err != nil {
			t.Fatal(err)
		}
		if err := fs.SaveCached(f.Meta.Hash, f.Meta.X, raw); err != nil {
			t.Fatal(err)
		}
	}

	count, err := fs.CachedCount(frags[0].Meta.Hash)
	if err != nil {
		t.Fatal(err)
	}
	if count != 4 {
		t.Fatalf("expected 4 cached fragments, got %d", count)
	}

	loaded, err := fs.LoadCached(frags[0].Meta.Hash)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 4 {
		t.Fatalf("expected 4 loaded fragments, got %d", len(loaded))
	}

	data, _, err := fragment.Combine(loaded)
	if err != nil {
		t.Fatalf("combine: %v", err)
	}
	if string(data) != "another test payload" {
		t.Fatalf("combine mismatch: %q", data)
	}
}
