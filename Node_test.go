/*
File Name:  Node_test.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner
*/

package cirrolus

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCalculateFragmentCount(t *testing.T) {
	cases := []struct {
		peers int
		want  int
	}{
		{0, 0},
		{3, 0},
		{4, 4},
		{19, 19},
		{20, 16},
		{25, 20},
		{100, 80},
	}
	for _, c := range cases {
		if got := calculateFragmentCount(c.peers); got != c.want {
			t.Errorf("calculateFragmentCount(%d) = %d, want %d", c.peers, got, c.want)
		}
	}
}

// newTestNode spins up a node listening on an ephemeral loopback port, with
// its fragment store and known-peers database rooted under a fresh temp
// directory.
func newTestNode(t *testing.T, username string) *Node {
	t.Helper()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	config := &Config{
		Listen:            "127.0.0.1:0",
		Username:          username,
		DataDirectory:     dir,
		KnownPeersFile:    filepath.Join(dir, "known_peers.db"),
		DownloadDirectory: filepath.Join(dir, "download"),
		LivenessInterval:  60,
	}
	if err := SaveConfig(configPath, config); err != nil {
		t.Fatalf("SaveConfig: %s", err)
	}

	node, status, err := Init("Test/1.0", configPath, nil)
	if status != ExitSuccess || err != nil {
		t.Fatalf("Init: status=%d err=%v", status, err)
	}

	// Listen:0 picks an ephemeral port; bind it now so node.listenPort
	// reflects the actual port before Connect spawns the accept loop.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %s", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()

	node.listenPort = uint16(port)
	node.listenHost = "127.0.0.1"

	node.Connect()
	t.Cleanup(node.Shutdown)

	// Give the accept loop a moment to bind.
	for i := 0; i < 100; i++ {
		if node.listener != nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	return node
}

func (node *Node) selfPeerInfo() PeerInfo {
	return PeerInfo{IP: net.ParseIP("127.0.0.1"), Port: node.listenPort}
}

func TestJoinHandshakeAddsPeers(t *testing.T) {
	a := newTestNode(t, "alice")
	b := newTestNode(t, "bob")

	if err := a.Join(b.selfPeerInfo(), true); err != nil {
		t.Fatalf("Join: %s", err)
	}

	if !a.PeerKnown(b.selfPeerInfo()) {
		t.Error("a does not know b after joining")
	}
	if !b.PeerKnown(a.selfPeerInfo()) {
		t.Error("b does not know a after being joined")
	}
}

func TestPeerGossipOneHop(t *testing.T) {
	a := newTestNode(t, "alice")
	b := newTestNode(t, "bob")
	c := newTestNode(t, "carol")

	if err := b.Join(c.selfPeerInfo(), true); err != nil {
		t.Fatalf("b join c: %s", err)
	}
	if err := a.Join(b.selfPeerInfo(), true); err != nil {
		t.Fatalf("a join b: %s", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if a.PeerKnown(c.selfPeerInfo()) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	if !a.PeerKnown(c.selfPeerInfo()) {
		t.Error("a never learned about c via gossip through b")
	}
}

func TestPingEvictsDeadPeer(t *testing.T) {
	a := newTestNode(t, "alice")
	b := newTestNode(t, "bob")

	if err := a.Join(b.selfPeerInfo(), false); err != nil {
		t.Fatalf("Join: %s", err)
	}
	if !a.PeerKnown(b.selfPeerInfo()) {
		t.Fatal("a does not know b")
	}

	b.Shutdown()
	time.Sleep(50 * time.Millisecond)

	if ok := a.PingOutbound(b.selfPeerInfo()); ok {
		t.Error("ping to a shut-down peer reported alive")
	}
	if a.PeerKnown(b.selfPeerInfo()) {
		t.Error("dead peer was not evicted after a failed ping")
	}
}

func TestUploadRefusesWithTooFewPeers(t *testing.T) {
	a := newTestNode(t, "alice")

	path := filepath.Join(t.TempDir(), "file.bin")
	if err := os.WriteFile(path, []byte("hello world"), 0644); err != nil {
		t.Fatalf("write test file: %s", err)
	}

	if _, err := a.Upload(path, "alice", nil); err != ErrInsufficientPeers {
		t.Fatalf("Upload with no peers: err=%v, want ErrInsufficientPeers", err)
	}
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	nodes := make([]*Node, 5)
	for i := range nodes {
		nodes[i] = newTestNode(t, "alice")
	}

	for i := 1; i < len(nodes); i++ {
		if err := nodes[0].Join(nodes[i].selfPeerInfo(), false); err != nil {
			t.Fatalf("join peer %d: %s", i, err)
		}
		if err := nodes[i].Join(nodes[0].selfPeerInfo(), false); err != nil {
			t.Fatalf("peer %d join origin: %s", i, err)
		}
	}

	srcPath := filepath.Join(t.TempDir(), "report.txt")
	content := []byte("the quick brown fox jumps over the lazy dog, repeated for bulk. " +
		"the quick brown fox jumps over the lazy dog, repeated for bulk.")
	if err := os.WriteFile(srcPath, content, 0644); err != nil {
		t.Fatalf("write source file: %s", err)
	}

	sent, err := nodes[0].Upload(srcPath, "alice", nil)
	if err != nil {
		t.Fatalf("Upload: %s", err)
	}
	if sent < 4 {
		t.Fatalf("Upload only reached %d peers, want >= 4", sent)
	}

	outPath, err := nodes[0].Download("report.txt", "alice", 0, nil)
	if err != nil {
		t.Fatalf("Download: %s", err)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read downloaded file: %s", err)
	}
	if string(got) != string(content) {
		t.Fatalf("downloaded content mismatch: got %q, want %q", got, content)
	}
}

func TestSearchReturnsUploadedFile(t *testing.T) {
	nodes := make([]*Node, 5)
	for i := range nodes {
		nodes[i] = newTestNode(t, "alice")
		if i > 0 {
			if err := nodes[0].Join(nodes[i].selfPeerInfo(), false); err != nil {
				t.Fatalf("join: %s", err)
			}
			if err := nodes[i].Join(nodes[0].selfPeerInfo(), false); err != nil {
				t.Fatalf("join back: %s", err)
			}
		}
	}

	srcPath := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(srcPath, []byte("some notes"), 0644); err != nil {
		t.Fatalf("write source file: %s", err)
	}

	if _, err := nodes[0].Upload(srcPath, "alice", nil); err != nil {
		t.Fatalf("Upload: %s", err)
	}

	results := nodes[0].Search("notes.txt", "alice")
	if len(results) == 0 {
		t.Fatal("search found no matches for the uploaded file")
	}

	nodes[0].searchMutex.Lock()
	remaining := len(nodes[0].searchResults["alice"])
	nodes[0].searchMutex.Unlock()
	if remaining != 0 {
		t.Error("search accumulator was not reset after being read")
	}
}
