/*
File Name:  Accept.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

The accept loop: one goroutine per inbound connection, exactly one message
handled before the connection is closed. The listening socket uses a short
deadline so Shutdown's cleared running flag is observed promptly.
*/

package cirrolus

import (
	"net"
	"sync/atomic"
	"time"
)

const acceptPollTimeout = 2 * time.Second

func (node *Node) acceptLoop() {
	addr, err := net.ResolveTCPAddr("tcp", node.ListenAddr())
	if err != nil {
		node.Filters.LogError("acceptLoop", "resolve listen address: %s", err.Error())
		return
	}

	listener, err := net.ListenTCP("tcp", addr)
	if err != nil {
		node.Filters.LogError("acceptLoop", "listen: %s", err.Error())
		return
	}
	node.listener = listener
	defer listener.Close()

	for atomic.LoadInt32(&node.running) == 1 {
		listener.SetDeadline(time.Now().Add(acceptPollTimeout))

		conn, err := listener.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if atomic.LoadInt32(&node.running) == 0 {
				return
			}
			node.Filters.LogError("acceptLoop", "accept: %s", err.Error())
			continue
		}

		go node.handleConnection(conn)
	}
}

func (node *Node) handleConnection(conn net.Conn) {
	defer conn.Close()

	remoteHost, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return
	}
	remoteIP := net.ParseIP(remoteHost)

	version, id, payload, err := readMessage(conn, defaultReadTimeout)
	if err != nil {
		return
	}

	node.Filters.MessageIn(&PeerInfo{IP: remoteIP}, version, id, payload)
	node.dispatch(conn, remoteIP, version, id, payload)
}
