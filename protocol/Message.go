/*
File Name:  Message.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

Wire framing and message-ID payload codecs. This package never touches peer
state or the filesystem; it only packs and unpacks bytes.
*/

package protocol

import (
	"encoding/binary"
	"encoding/json"
	"errors"
)

// ProtocolVersion is the only version currently defined.
const ProtocolVersion = 0

// Magic is the two-byte frame identifier prefixing every message.
var Magic = [2]byte{'C', 'L'}

// Message IDs, version 0.
const (
	MsgJoin            = 0
	MsgLeave           = 1
	MsgPeerList        = 2
	MsgUploadFragment  = 3
	MsgUploadReport    = 4
	MsgRequestFragment = 5
	MsgSendFragment    = 6
	MsgSearch          = 7
	MsgSearchResults   = 8
	MsgPing            = 255
)

const (
	// UploadReportOK is the Upload-report payload byte signaling success.
	UploadReportOK = 0xFF
	// UploadReportFail is the Upload-report payload byte signaling failure.
	UploadReportFail = 0x00
)

var (
	errTruncated = errors.New("protocol: truncated message")
	errNotOurs   = errors.New("protocol: not a recognized frame")
)

// Pack frames a message: "CL" + version + id + payload.
func Pack(version, id byte, payload []byte) []byte {
	out := make([]byte, 0, 4+len(payload))
	out = append(out, Magic[0], Magic[1], version, id)
	out = append(out, payload...)
	return out
}

// IsMessage reports whether data begins with the frame magic and is long
// enough to carry a version and message id.
func IsMessage(data []byte) bool {
	return len(data) >= 4 && data[0] == Magic[0] && data[1] == Magic[1]
}

// Unpack validates the frame and splits it into version, id, and payload.
func Unpack(data []byte) (version, id byte, payload []byte, err error) {
	if !IsMessage(data) {
		return 0, 0, nil, errNotOurs
	}
	return data[2], data[3], data[4:], nil
}

// PeerAddr is an IPv4 address/port pair as carried on the wire.
type PeerAddr struct {
	IP   [4]byte
	Port uint16
}

// PackPeers encodes a peer list: 1-byte count followed by 6 bytes per peer.
func PackPeers(peers []PeerAddr) []byte {
	out := make([]byte, 1, 1+len(peers)*6)
	out[0] = byte(len(peers))
	for _, p := range peers {
		out = append(out, p.IP[:]...)
		var portBuf [2]byte
		binary.BigEndian.PutUint16(portBuf[:], p.Port)
		out = append(out, portBuf[:]...)
	}
	return out
}

// UnpackPeers decodes a peer list payload.
func UnpackPeers(payload []byte) ([]PeerAddr, error) {
	if len(payload) < 1 {
		return nil, errTruncated
	}
	n := int(payload[0])
	if len(payload) < 1+n*6 {
		return nil, errTruncated
	}
	out := make([]PeerAddr, n)
	for i := 0; i < n; i++ {
		off := 1 + i*6
		copy(out[i].IP[:], payload[off:off+4])
		out[i].Port = binary.BigEndian.Uint16(payload[off+4 : off+6])
	}
	return out, nil
}

// PackJoin encodes a Join request payload.
func PackJoin(listenPort uint16, wantPeers bool) []byte {
	out := make([]byte, 2, 3)
	binary.BigEndian.PutUint16(out, listenPort)
	if wantPeers {
		out = append(out, 1)
	}
	return out
}

// UnpackJoin decodes a Join request payload.
func UnpackJoin(payload []byte) (listenPort uint16, wantPeers bool, err error) {
	if len(payload) < 2 {
		return 0, false, errTruncated
	}
	listenPort = binary.BigEndian.Uint16(payload[:2])
	wantPeers = len(payload) >= 3 && payload[2] != 0
	return listenPort, wantPeers, nil
}

// PackLeave encodes a Leave request payload.
func PackLeave(listenPort uint16) []byte {
	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, listenPort)
	return out
}

// UnpackLeave decodes a Leave request payload.
func UnpackLeave(payload []byte) (listenPort uint16, err error) {
	if len(payload) < 2 {
		return 0, errTruncated
	}
	return binary.BigEndian.Uint16(payload[:2]), nil
}

// PackLengthPrefixed encodes the 4-byte-length-prefixed payload shared by
// Upload-fragment and Send-fragment.
func PackLengthPrefixed(data []byte) []byte {
	out := make([]byte, 4, 4+len(data))
	binary.BigEndian.PutUint32(out, uint32(len(data)))
	return append(out, data...)
}

// UnpackLengthPrefixed decodes a 4-byte-length-prefixed payload.
func UnpackLengthPrefixed(payload []byte) ([]byte, error) {
	if len(payload) < 4 {
		return nil, errTruncated
	}
	n := binary.BigEndian.Uint32(payload[:4])
	if uint32(len(payload)-4) < n {
		return nil, errTruncated
	}
	return payload[4 : 4+n], nil
}

// fragmentQueryHeaderLen is the fixed header size of the Request-fragment
// and Search payloads: a 32-byte hash plus one deliberately unused gap byte
// at offset 32, with the username length at offset 33.
const fragmentQueryHeaderLen = 34

// PackFragmentQuery encodes the shared Request-fragment/Search payload
// layout. The gap byte at offset 32 is always written as zero.
func PackFragmentQuery(hash [32]byte, username string) []byte {
	out := make([]byte, fragmentQueryHeaderLen, fragmentQueryHeaderLen+len(username))
	copy(out[:32], hash[:])
	out[32] = 0 // gap byte, unused
	out[33] = byte(len(username))
	return append(out, username...)
}

// UnpackFragmentQuery decodes the shared Request-fragment/Search payload
// layout. Note ulen is read from offset 33, not 32 — the gap byte at offset
// 32 is intentionally skipped and ignored.
func UnpackFragmentQuery(payload []byte) (hash [32]byte, username string, err error) {
	if len(payload) < fragmentQueryHeaderLen {
		return hash, "", errTruncated
	}
	copy(hash[:], payload[:32])
	ulen := int(payload[33])
	if len(payload) < fragmentQueryHeaderLen+ulen {
		return hash, "", errTruncated
	}
	return hash, string(payload[fragmentQueryHeaderLen : fragmentQueryHeaderLen+ulen]), nil
}

// SearchResults is the JSON body of the Search-results message.
type SearchResults struct {
	Username string            `json:"username"`
	Files    map[string]string `json:"files"`
}

// PackSearchResults JSON-encodes and length-prefixes a SearchResults value.
func PackSearchResults(sr SearchResults) ([]byte, error) {
	data, err := json.Marshal(sr)
	if err != nil {
		return nil, err
	}
	return PackLengthPrefixed(data), nil
}

// UnpackSearchResults decodes a Search-results payload.
func UnpackSearchResults(payload []byte) (SearchResults, error) {
	var sr SearchResults
	data, err := UnpackLengthPrefixed(payload)
	if err != nil {
		return sr, err
	}
	err = json.Unmarshal(data, &sr)
	return sr, err
}
