package protocol

import "testing"

func TestPackUnpackRoundTrip(t *testing.T) {
	msg := Pack(ProtocolVersion, MsgPing, nil)
	version, id, payload, err := Unpack(msg)
	if err != nil {
		t.Fatal(err)
	}
	if version != ProtocolVersion || id != MsgPing || len(payload) != 0 {
		t.Fatalf("unexpected unpack result: %d %d %v", version, id, payload)
	}
}

func TestIsMessageAnyVersionOrID(t *testing.T) {
	for v := 0; v < 256; v += 37 {
		for id := 0; id < 256; id += 41 {
			msg := Pack(byte(v), byte(id), []byte{1, 2, 3})
			if !IsMessage(msg) {
				t.Fatalf("message with version=%d id=%d did not self-identify", v, id)
			}
		}
	}
}

func TestUnpackRejectsForeignFrame(t *testing.T) {
	if _, _, _, err := Unpack([]byte("not cirrolus")); err == nil {
		t.Fatalf("expected error unpacking a non-frame")
	}
}

func TestPeerListRoundTrip(t *testing.T) {
	peers := []PeerAddr{
		{IP: [4]byte{127, 0, 0, 1}, Port: 50000},
		{IP: [4]byte{10, 0, 0, 5}, Port: 1234},
	}
	data := PackPeers(peers)
	got, err := UnpackPeers(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != peers[0] || got[1] != peers[1] {
		t.Fatalf("peer list round trip mismatch: %v", got)
	}
}

func TestFragmentQueryGapByteOffset(t *testing.T) {
	var hash [32]byte
	for i := range hash {
		hash[i] = byte(i)
	}
	payload := PackFragmentQuery(hash, "alice")

	// The gap byte sits at offset 32; ulen must be read from offset 33.
	if payload[32] != 0 {
		t.Fatalf("gap byte should be zero on encode, got %d", payload[32])
	}
	if payload[33] != byte(len("alice")) {
		t.Fatalf("ulen should be at offset 33, got %d", payload[33])
	}

	gotHash, gotUser, err := UnpackFragmentQuery(payload)
	if err != nil {
		t.Fatal(err)
	}
	if gotHash != hash || gotUser != "alice" {
		t.Fatalf("round trip mismatch: %x %q", gotHash, gotUser)
	}
}

func TestJoinPayloadRoundTrip(t *testing.T) {
	data := PackJoin(50666, true)
	port, wantPeers, err := UnpackJoin(data)
	if err != nil {
		t.Fatal(err)
	}
	if port != 50666 || !wantPeers {
		t.Fatalf("unexpected join payload decode: %d %t", port, wantPeers)
	}

	data = PackJoin(1, false)
	_, wantPeers, err = UnpackJoin(data)
	if err != nil {
		t.Fatal(err)
	}
	if wantPeers {
		t.Fatalf("expected want_peers=false")
	}
}

func TestSearchResultsRoundTrip(t *testing.T) {
	sr := SearchResults{Username: "alice", Files: map[string]string{"aa": "bb"}}
	data, err := PackSearchResults(sr)
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnpackSearchResults(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Username != sr.Username || got.Files["aa"] != "bb" {
		t.Fatalf("search results round trip mismatch: %+v", got)
	}
}
