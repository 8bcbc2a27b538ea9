/*
File Name:  PeerList.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

The peer set: the only shared mutable collection, guarded by a single
mutex. The node's own address is never admitted.
*/

package cirrolus

import (
	"math/rand"

	"github.com/Liblor/Cirrolus/store"
)

func peerKey(p PeerInfo) store.PeerKey {
	return store.EncodePeerKey(p.IP, p.Port)
}

// PeerAdd adds peer to the set if not already present (and not self),
// invoking the NewPeer filter on first insertion.
func (node *Node) PeerAdd(peer PeerInfo) {
	if node.selfMatches(peer) {
		return
	}

	node.peerMutex.Lock()
	_, exists := node.peers[peer.Key()]
	if !exists {
		node.peers[peer.Key()] = &peer
	}
	node.peerMutex.Unlock()

	if !exists {
		node.Filters.NewPeer(&peer)
		if node.KnownPeers != nil {
			node.KnownPeers.Touch(peerKey(peer))
		}
	}
}

// PeerRemove evicts peer from the set, e.g. after an explicit Leave, a
// refused connection, or a failed liveness probe.
func (node *Node) PeerRemove(peer PeerInfo, reason string) {
	node.peerMutex.Lock()
	_, existed := node.peers[peer.Key()]
	delete(node.peers, peer.Key())
	node.peerMutex.Unlock()

	if existed {
		node.Filters.PeerRemoved(&peer, reason)
		if node.KnownPeers != nil {
			node.KnownPeers.Remove(peerKey(peer))
		}
	}
}

// PeerList returns a snapshot copy of the current peer set, safe to iterate
// without holding the lock.
func (node *Node) PeerList() []PeerInfo {
	node.peerMutex.RLock()
	defer node.peerMutex.RUnlock()

	out := make([]PeerInfo, 0, len(node.peers))
	for _, p := range node.peers {
		out = append(out, *p)
	}
	return out
}

// PeerCount returns the current peer set size.
func (node *Node) PeerCount() int {
	node.peerMutex.RLock()
	defer node.peerMutex.RUnlock()
	return len(node.peers)
}

// PeerKnown reports whether peer is already in the set.
func (node *Node) PeerKnown(peer PeerInfo) bool {
	node.peerMutex.RLock()
	defer node.peerMutex.RUnlock()
	_, ok := node.peers[peer.Key()]
	return ok
}

// PeerSample draws n distinct peers uniformly without replacement from the
// current peer set. If n exceeds the set size, the full set is returned.
func (node *Node) PeerSample(n int) []PeerInfo {
	all := node.PeerList()
	if n >= len(all) {
		return all
	}

	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	return all[:n]
}
