/*
File Name:  Handlers.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

Inbound handler contracts for every request-carrying message id. Replies are
written to the same connection the request arrived on; the accept loop
closes it immediately afterwards (one message per connection).
*/

package cirrolus

import (
	"encoding/hex"
	"net"

	"github.com/Liblor/Cirrolus/fragment"
	"github.com/Liblor/Cirrolus/protocol"
)

// dispatch routes one inbound message to its handler. Unknown versions or
// ids are silently ignored, matching the wire codec's dispatcher contract.
func (node *Node) dispatch(conn net.Conn, remoteIP net.IP, version, id byte, payload []byte) {
	if version != protocol.ProtocolVersion {
		return
	}

	switch id {
	case protocol.MsgJoin:
		node.handleJoin(conn, remoteIP, version, payload)
	case protocol.MsgLeave:
		node.handleLeave(remoteIP, payload)
	case protocol.MsgUploadFragment:
		node.handleUploadFragment(conn, version, payload)
	case protocol.MsgRequestFragment:
		node.handleRequestFragment(conn, version, payload)
	case protocol.MsgSearch:
		node.handleSearch(conn, version, payload)
	case protocol.MsgPing:
		sendMessage(conn, protocol.Pack(version, protocol.MsgPing, nil))
	default:
		// Unrecognized or response-only ids arriving unsolicited: ignore.
	}
}

func (node *Node) handleJoin(conn net.Conn, remoteIP net.IP, version byte, payload []byte) {
	port, wantPeers, err := protocol.UnpackJoin(payload)
	if err != nil {
		return
	}

	peer := PeerInfo{IP: remoteIP, Port: port}
	node.PeerAdd(peer)

	if !wantPeers {
		return
	}

	known := node.PeerList()
	addrs := make([]protocol.PeerAddr, 0, len(known))
	for _, p := range known {
		if p.Key() == peer.Key() {
			continue
		}
		var ipArr [4]byte
		copy(ipArr[:], p.IP.To4())
		addrs = append(addrs, protocol.PeerAddr{IP: ipArr, Port: p.Port})
	}

	reply := protocol.Pack(version, protocol.MsgPeerList, protocol.PackPeers(addrs))
	node.Filters.MessageOut(&peer, version, protocol.MsgPeerList, reply[4:])
	sendMessage(conn, reply)
}

func (node *Node) handleLeave(remoteIP net.IP, payload []byte) {
	port, err := protocol.UnpackLeave(payload)
	if err != nil {
		return
	}
	node.PeerRemove(PeerInfo{IP: remoteIP, Port: port}, "leave")
}

func (node *Node) handleUploadFragment(conn net.Conn, version byte, payload []byte) {
	report := byte(protocol.UploadReportFail)

	if data, err := protocol.UnpackLengthPrefixed(payload); err == nil {
		if f, ferr := fragment.Decode(data); ferr == nil {
			if serr := node.FragStore.SaveHosted(f.Meta.Uploader, data); serr == nil {
				report = protocol.UploadReportOK
			}
		}
	}

	sendMessage(conn, protocol.Pack(version, protocol.MsgUploadReport, []byte{report}))
}

func (node *Node) handleRequestFragment(conn net.Conn, version byte, payload []byte) {
	hash, username, err := protocol.UnpackFragmentQuery(payload)
	if err != nil {
		return
	}

	data, err := node.FragStore.FetchHosted(username, hex.EncodeToString(hash[:]))
	if err != nil {
		sendMessage(conn, protocol.Pack(version, protocol.MsgSendFragment, []byte{0}))
		return
	}

	sendMessage(conn, protocol.Pack(version, protocol.MsgSendFragment, protocol.PackLengthPrefixed(data)))
}

func (node *Node) handleSearch(conn net.Conn, version byte, payload []byte) {
	filenameHash, username, err := protocol.UnpackFragmentQuery(payload)
	if err != nil {
		return
	}

	filter := hex.EncodeToString(filenameHash[:])
	if filter == zeroHashHex {
		filter = ""
	}

	files, err := node.FragStore.ListHosted(username, filter)
	if err != nil {
		files = map[string]string{}
	}

	data, err := protocol.PackSearchResults(protocol.SearchResults{Username: username, Files: files})
	if err != nil {
		return
	}

	sendMessage(conn, protocol.Pack(version, protocol.MsgSearchResults, data))
}

// zeroHashHex is the hex encoding of a 32-byte all-zero hash, used by Search to
// mean "list everything" rather than filter by filename hash.
var zeroHashHex = hex.EncodeToString(make([]byte, 32))
