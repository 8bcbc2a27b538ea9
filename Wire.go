/*
File Name:  Wire.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

Low-level connection helpers shared by the accept loop and every outbound
flow: dial, send, and a deadline-based read that understands the
large-payload framing used by upload/fragment/search-result messages.
*/

package cirrolus

import (
	"encoding/binary"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/Liblor/Cirrolus/protocol"
)

const (
	defaultReadTimeout  = 4 * time.Second
	reportReadTimeout   = 10 * time.Second // Upload-report and Ping replies.
	connectTimeout      = 4 * time.Second
	largePayloadCutoff  = 1024
	readBufferSize      = 65536
)

var errForeignFrame = errors.New("cirrolus: received a non-Cirrolus message")

// isLargePayloadMessage reports whether id's payload carries an internal
// 4-byte length prefix per the wire spec (upload fragment, send fragment,
// and search results). Every other id, notably the id-2 peer list, is
// never length-prefixed even if its payload happens to exceed
// largePayloadCutoff.
func isLargePayloadMessage(id byte) bool {
	switch id {
	case protocol.MsgUploadFragment, protocol.MsgSendFragment, protocol.MsgSearchResults:
		return true
	default:
		return false
	}
}

func dial(peer PeerInfo) (net.Conn, error) {
	return net.DialTimeout("tcp", net.JoinHostPort(peer.IP.String(), strconv.Itoa(int(peer.Port))), connectTimeout)
}

func sendMessage(conn net.Conn, data []byte) error {
	_, err := conn.Write(data)
	return err
}

// readMessage performs a single deadline-bound read, then, for payloads
// that look like they may carry an internal 4-byte length prefix (message
// ids 3, 6, 8), keeps reading until the declared length has been satisfied.
func readMessage(conn net.Conn, timeout time.Duration) (version, id byte, payload []byte, err error) {
	conn.SetReadDeadline(time.Now().Add(timeout))

	buf := make([]byte, readBufferSize)
	n, err := conn.Read(buf)
	if err != nil {
		return 0, 0, nil, err
	}
	data := buf[:n]

	version, id, payload, err = protocol.Unpack(data)
	if err != nil {
		return 0, 0, nil, errForeignFrame
	}

	if isLargePayloadMessage(id) && len(data) > largePayloadCutoff && len(payload) >= 4 {
		declared := binary.BigEndian.Uint32(payload[:4])
		total := 4 + int(declared)

		for len(payload) < total {
			conn.SetReadDeadline(time.Now().Add(timeout))
			m, readErr := conn.Read(buf)
			if readErr != nil {
				return version, id, payload, readErr
			}
			payload = append(payload, buf[:m]...)
		}
		payload = payload[:total]
	}

	return version, id, payload, nil
}

// exchange dials peer, sends a single message, and waits for exactly one
// reply within timeout. The connection is always closed before returning.
func (node *Node) exchange(peer PeerInfo, msg []byte, timeout time.Duration) (id byte, payload []byte, err error) {
	conn, err := dial(peer)
	if err != nil {
		return 0, nil, err
	}
	defer conn.Close()

	if err = sendMessage(conn, msg); err != nil {
		return 0, nil, err
	}

	_, id, payload, err = readMessage(conn, timeout)
	return id, payload, err
}
