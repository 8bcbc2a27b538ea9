/*
File Name:  KnownPeers.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

Persists previously-seen peer addresses across restarts so Connect can
reattach without a fresh seed list. This is additive plumbing: it only seeds
the in-memory peer set, it never changes wire-level behavior.
*/

package store

import (
	"encoding/binary"
	"net"
	"time"
)

// PeerKey is the 6-byte packed peer address (4-byte IPv4 + 2-byte port),
// the same encoding used by the peer-list wire payload.
type PeerKey [6]byte

// EncodePeerKey packs an (ip, port) pair into its 6-byte wire form.
func EncodePeerKey(ip net.IP, port uint16) PeerKey {
	var key PeerKey
	copy(key[:4], ip.To4())
	binary.BigEndian.PutUint16(key[4:], port)
	return key
}

// IP returns the IPv4 address encoded in the key.
func (k PeerKey) IP() net.IP {
	return net.IPv4(k[0], k[1], k[2], k[3])
}

// Port returns the port encoded in the key.
func (k PeerKey) Port() uint16 {
	return binary.BigEndian.Uint16(k[4:])
}

// KnownPeers wraps a Store keyed by packed peer address, valued by the
// UnixNano timestamp of last successful contact.
type KnownPeers struct {
	db Store
}

// NewKnownPeers wraps an already-opened Store as a known-peer cache. Callers
// that only need an in-memory cache (e.g. tests) can pass a MemoryStore
// directly instead of going through NewKnownPeersFile.
func NewKnownPeers(db Store) *KnownPeers {
	return &KnownPeers{db: db}
}

// NewKnownPeersFile opens (or creates) a pogreb-backed known-peer cache at path.
func NewKnownPeersFile(path string) (*KnownPeers, error) {
	db, err := NewPogrebStore(path)
	if err != nil {
		return nil, err
	}
	return NewKnownPeers(db), nil
}

// Touch records successful contact with a peer, refreshing its timestamp.
func (k *KnownPeers) Touch(key PeerKey) error {
	var v [8]byte
	binary.BigEndian.PutUint64(v[:], uint64(time.Now().UnixNano()))
	return k.db.Set(key[:], v[:])
}

// Remove evicts a peer, e.g. after a failed liveness probe.
func (k *KnownPeers) Remove(key PeerKey) {
	k.db.Delete(key[:])
}

// All returns every known peer key and its last-contact time.
func (k *KnownPeers) All() map[PeerKey]time.Time {
	out := map[PeerKey]time.Time{}
	k.db.Iterate(func(rawKey, value []byte) {
		if len(rawKey) != 6 || len(value) != 8 {
			return
		}
		var key PeerKey
		copy(key[:], rawKey)
		out[key] = time.Unix(0, int64(binary.BigEndian.Uint64(value)))
	})
	return out
}
