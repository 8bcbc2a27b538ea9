/*
File Name:  Filter.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

Filters allow the caller to intercept events. The filter functions must not modify any data.
*/

package cirrolus

import (
	"io"
	"sync"

	"github.com/google/uuid"
)

// Filters contains all functions to install the hook. Use nil for unused.
// The functions are called sequentially and block execution; if the filter
// takes a long time it should start a goroutine.
type Filters struct {
	// NewPeer is called every time a peer is added that was not already
	// known.
	NewPeer func(peer *PeerInfo)

	// PeerRemoved is called whenever a peer is evicted from the peer set,
	// whether by explicit Leave, a refused connection, or a failed
	// liveness probe.
	PeerRemoved func(peer *PeerInfo, reason string)

	// LogError is called for any error.
	LogError func(function, format string, v ...interface{})

	// MessageIn is called for every successfully parsed inbound message.
	MessageIn func(peer *PeerInfo, version, id byte, payload []byte)

	// MessageOut is called before the Peer-list reply to an inbound Join is
	// sent. No other outbound message invokes it.
	MessageOut func(peer *PeerInfo, version, id byte, payload []byte)

	// SearchResult is called whenever a search result is merged into the
	// in-memory search accumulator.
	SearchResult func(username string, files map[string]string)
}

func (node *Node) initFilters() {
	if node.Filters.NewPeer == nil {
		node.Filters.NewPeer = func(peer *PeerInfo) {}
	}
	if node.Filters.PeerRemoved == nil {
		node.Filters.PeerRemoved = func(peer *PeerInfo, reason string) {}
	}
	if node.Filters.LogError == nil {
		node.Filters.LogError = func(function, format string, v ...interface{}) {}
	}
	if node.Filters.MessageIn == nil {
		node.Filters.MessageIn = func(peer *PeerInfo, version, id byte, payload []byte) {}
	}
	if node.Filters.MessageOut == nil {
		node.Filters.MessageOut = func(peer *PeerInfo, version, id byte, payload []byte) {}
	}
	if node.Filters.SearchResult == nil {
		node.Filters.SearchResult = func(username string, files map[string]string) {}
	}
}

// multiWriter duplicates writes to every subscribed writer, keyed by a
// subscription id so callers can unsubscribe.
type multiWriter struct {
	writers map[uuid.UUID]io.Writer
	sync.Mutex
}

func newMultiWriter() *multiWriter {
	return &multiWriter{writers: make(map[uuid.UUID]io.Writer)}
}

// Subscribe adds a new writer to the fan-out set.
func (m *multiWriter) Subscribe(writer io.Writer) (id uuid.UUID) {
	m.Lock()
	defer m.Unlock()

	id = uuid.New()
	m.writers[id] = writer

	return id
}

// Unsubscribe removes a writer from the fan-out set.
func (m *multiWriter) Unsubscribe(id uuid.UUID) {
	m.Lock()
	defer m.Unlock()

	delete(m.writers, id)
}

// Write fans p out to every subscribed writer; individual writer errors are
// not propagated.
func (m *multiWriter) Write(p []byte) (n int, err error) {
	m.Lock()
	defer m.Unlock()

	for _, w := range m.writers {
		w.Write(p)
	}
	return len(p), nil
}
