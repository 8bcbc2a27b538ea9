/*
File Name:  Outbound.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

Outbound protocol flows: each connects, sends exactly one request, and
processes at most one reply (Leave reads none). A refused connection is
treated as evidence the peer is gone and results in eviction.
*/

package cirrolus

import (
	"encoding/hex"
	"errors"
	"net"
	"time"

	"github.com/Liblor/Cirrolus/fragment"
	"github.com/Liblor/Cirrolus/protocol"
)

// JoinOutbound connects to peer, announces this node, and optionally
// requests (and processes, one hop) its peer list.
func (node *Node) JoinOutbound(peer PeerInfo, wantPeers bool) error {
	msg := protocol.Pack(protocol.ProtocolVersion, protocol.MsgJoin, protocol.PackJoin(node.listenPort, wantPeers))

	id, payload, err := node.exchangeOrEvict(peer, msg, defaultReadTimeout)
	if err != nil {
		var opErr *net.OpError
		refused := errors.As(err, &opErr) && opErr.Op == "dial"
		if !wantPeers && !refused {
			// A bare announce with no reply expected still succeeds locally
			// once the connection was made.
			node.PeerAdd(peer)
			return nil
		}
		return err
	}

	node.PeerAdd(peer)

	if wantPeers && id == protocol.MsgPeerList {
		addrs, err := protocol.UnpackPeers(payload)
		if err == nil {
			for _, a := range addrs {
				candidate := PeerInfo{IP: net.IPv4(a.IP[0], a.IP[1], a.IP[2], a.IP[3]), Port: a.Port}
				if !node.PeerKnown(candidate) {
					go node.JoinOutbound(candidate, false)
				}
			}
		}
	}

	return nil
}

// LeaveOutbound announces departure to every currently known peer,
// best-effort.
func (node *Node) LeaveOutbound() {
	msg := protocol.Pack(protocol.ProtocolVersion, protocol.MsgLeave, protocol.PackLeave(node.listenPort))

	for _, peer := range node.PeerList() {
		conn, err := dial(peer)
		if err != nil {
			continue
		}
		sendMessage(conn, msg)
		conn.Close()
	}
}

// UploadFragmentOutbound sends one fragment to peer and reports whether the
// remote accepted it. A refused connection evicts the peer.
func (node *Node) UploadFragmentOutbound(peer PeerInfo, fragmentData []byte) (ok bool, err error) {
	msg := protocol.Pack(protocol.ProtocolVersion, protocol.MsgUploadFragment, protocol.PackLengthPrefixed(fragmentData))

	id, payload, err := node.exchangeOrEvict(peer, msg, reportReadTimeout)
	if err != nil {
		return false, err
	}
	if id != protocol.MsgUploadReport || len(payload) < 1 {
		return false, nil
	}
	return payload[0] == protocol.UploadReportOK, nil
}

// RequestFragmentOutbound asks peer for the fragment identified by
// contentHashHex belonging to username, and persists it into the download
// cache if received.
func (node *Node) RequestFragmentOutbound(peer PeerInfo, contentHashHex, username string) (found bool, err error) {
	hashBytes, err := hex.DecodeString(contentHashHex)
	if err != nil || len(hashBytes) != 32 {
		return false, err
	}
	var hash [32]byte
	copy(hash[:], hashBytes)

	msg := protocol.Pack(protocol.ProtocolVersion, protocol.MsgRequestFragment, protocol.PackFragmentQuery(hash, username))

	id, payload, err := node.exchangeOrEvict(peer, msg, defaultReadTimeout)
	if err != nil {
		return false, err
	}
	if id != protocol.MsgSendFragment {
		return false, nil
	}
	if len(payload) < 4 {
		return false, nil // miss: single 0x00 byte
	}

	data, err := protocol.UnpackLengthPrefixed(payload)
	if err != nil {
		return false, nil
	}

	if err := node.FragStore.SaveCached(contentHashHex, extractXFromPayload(data), data); err != nil {
		return false, err
	}
	return true, nil
}

// SearchOutbound broadcasts a Search to every known peer and merges replies
// into the node's in-memory search accumulator (last writer wins per key).
func (node *Node) SearchOutbound(filenameHashHex, username string) {
	hashBytes, _ := hex.DecodeString(filenameHashHex)
	var hash [32]byte
	copy(hash[:], hashBytes)

	msg := protocol.Pack(protocol.ProtocolVersion, protocol.MsgSearch, protocol.PackFragmentQuery(hash, username))

	var toEvict []PeerInfo
	for _, peer := range node.PeerList() {
		id, payload, err := node.exchange(peer, msg, defaultReadTimeout)
		if err != nil {
			toEvict = append(toEvict, peer)
			continue
		}
		if id != protocol.MsgSearchResults {
			continue
		}

		sr, err := protocol.UnpackSearchResults(payload)
		if err != nil {
			continue
		}
		node.mergeSearchResults(sr)
	}

	for _, peer := range toEvict {
		node.PeerRemove(peer, "connection refused")
	}
}

func (node *Node) mergeSearchResults(sr protocol.SearchResults) {
	node.searchMutex.Lock()
	if node.searchResults[sr.Username] == nil {
		node.searchResults[sr.Username] = map[string]string{}
	}
	for k, v := range sr.Files {
		node.searchResults[sr.Username][k] = v
	}
	node.searchMutex.Unlock()

	node.Filters.SearchResult(sr.Username, sr.Files)
}

// PingOutbound sends a Ping to peer and evicts it if no well-formed reply
// arrives within the report timeout.
func (node *Node) PingOutbound(peer PeerInfo) bool {
	msg := protocol.Pack(protocol.ProtocolVersion, protocol.MsgPing, nil)
	id, _, err := node.exchange(peer, msg, reportReadTimeout)
	if err != nil || id != protocol.MsgPing {
		node.PeerRemove(peer, "ping timeout")
		return false
	}
	return true
}

// extractXFromPayload reads the evaluation point back out of an encoded
// fragment so it can key the download cache; a decode failure yields 0,
// which simply collides entries.
func extractXFromPayload(data []byte) int64 {
	f, err := fragment.Decode(data)
	if err != nil {
		return 0
	}
	return f.Meta.X
}

// exchangeOrEvict behaves like exchange but evicts peer from the peer set
// on a connection-refused-style failure.
func (node *Node) exchangeOrEvict(peer PeerInfo, msg []byte, timeout time.Duration) (id byte, payload []byte, err error) {
	id, payload, err = node.exchange(peer, msg, timeout)
	if err != nil {
		node.PeerRemove(peer, "connection refused")
	}
	return id, payload, err
}
