/*
File Name:  Driver.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

The command surface exposed to external callers (an interactive shell, or
the webapi HTTP wrapper): join, leave, upload, download, search, and
list-peers.
*/

package cirrolus

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Liblor/Cirrolus/fragment"
)

// ErrInsufficientPeers is returned when an upload is attempted with fewer
// than the minimum usable peer count.
var ErrInsufficientPeers = errors.New("cirrolus: insufficient peers for upload")

// ErrNotFound is returned when a search/download finds no matching file.
var ErrNotFound = errors.New("cirrolus: file not found")

// ErrInsufficientFragments is returned when fewer than the minimum
// reconstructable fragment count could be collected for a download.
var ErrInsufficientFragments = errors.New("cirrolus: insufficient fragments collected")

// Join connects to peer and, if wantPeers, merges its peer list one hop.
func (node *Node) Join(peer PeerInfo, wantPeers bool) error {
	return node.JoinOutbound(peer, wantPeers)
}

// Leave announces departure to every known peer. It does not stop the
// node's background loops; use Shutdown for that.
func (node *Node) Leave() {
	node.LeaveOutbound()
}

// ListPeers returns a snapshot of the current peer set.
func (node *Node) ListPeers() []PeerInfo {
	return node.PeerList()
}

// Upload splits the file at path into fragments sized to the current peer
// count and distributes one fragment per sampled peer. If password is
// non-nil, the file is encrypted with node.Cipher before splitting. It
// returns the number of peers that acknowledged their fragment; the upload
// is considered successful by the caller when that count is >= 4.
func (node *Node) Upload(path, username string, password []byte) (successCount int, err error) {
	peerCount := node.PeerCount()
	n := calculateFragmentCount(peerCount)
	if n == 0 {
		return 0, ErrInsufficientPeers
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	filename := filepath.Base(path)
	private := password != nil
	if private {
		data, err = node.Cipher.Encrypt(data, password, []byte(filename))
		if err != nil {
			return 0, err
		}
	}

	frags, err := fragment.Split(data, n, username, filename, private)
	if err != nil {
		return 0, err
	}

	peers := node.PeerSample(n)
	for i, f := range frags {
		if i >= len(peers) {
			break
		}
		raw, err := fragment.Encode(f)
		if err != nil {
			node.Filters.LogError("Upload", "encode fragment: %s", err.Error())
			continue
		}
		ok, err := node.UploadFragmentOutbound(peers[i], raw)
		if err != nil {
			node.Filters.LogError("Upload", "send fragment to %s: %s", peers[i], err.Error())
			continue
		}
		if ok {
			successCount++
		}
	}

	return successCount, nil
}

// Search queries every known peer for files matching filename (or all files
// if filename is empty) under username, and returns the accumulated
// content-hash -> filename-hash mapping. The accumulator is reset for
// username once results are read out.
func (node *Node) Search(filename, username string) map[string]string {
	var hash [32]byte
	if filename != "" {
		hash = sha256.Sum256([]byte(filename))
	}

	node.SearchOutbound(hex.EncodeToString(hash[:]), username)

	node.searchMutex.Lock()
	defer node.searchMutex.Unlock()

	results := node.searchResults[username]
	node.searchResults[username] = map[string]string{}
	return results
}

// Download searches for filename under username, then polls every known
// peer for fragments until at least fragment.MinFragments have been
// collected, reconstructs the file, decrypts it if password is provided,
// and writes it to node.Config.DownloadDirectory. index selects among
// multiple distinct content hashes matching the same filename (sorted for
// determinism), as the caller is expected to disambiguate.
func (node *Node) Download(filename, username string, index int, password []byte) (outputPath string, err error) {
	results := node.Search(filename, username)
	if len(results) == 0 {
		return "", ErrNotFound
	}

	contentHashes := make([]string, 0, len(results))
	for h := range results {
		contentHashes = append(contentHashes, h)
	}
	sort.Strings(contentHashes)

	if index < 0 || index >= len(contentHashes) {
		return "", fmt.Errorf("cirrolus: index %d out of range (%d matches)", index, len(contentHashes))
	}
	contentHash := contentHashes[index]

	for _, peer := range node.PeerList() {
		count, _ := node.FragStore.CachedCount(contentHash)
		if count >= fragment.MinFragments {
			break
		}
		node.RequestFragmentOutbound(peer, contentHash, username)
	}

	cached, err := node.FragStore.LoadCached(contentHash)
	if err != nil {
		return "", err
	}
	if len(cached) < fragment.MinFragments {
		return "", ErrInsufficientFragments
	}

	data, private, err := fragment.Combine(cached)
	if err != nil {
		return "", err
	}

	if private {
		if password == nil {
			return "", errors.New("cirrolus: file is encrypted, password required")
		}
		data, err = node.Cipher.Decrypt(data, password, []byte(filename))
		if err != nil {
			return "", err
		}
	}

	dir := node.Config.DownloadDirectory
	if dir == "" {
		dir = "download"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	outputPath = filepath.Join(dir, filename)
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return "", err
	}

	return outputPath, nil
}
