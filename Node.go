/*
File Name:  Node.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner
*/

package cirrolus

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Liblor/Cirrolus/cipher"
	"github.com/Liblor/Cirrolus/store"
)

// PeerInfo identifies one remote peer by its (host, port) pair.
type PeerInfo struct {
	IP   net.IP
	Port uint16
}

// Key returns the string used to key the peer set; two PeerInfo values with
// the same (host, port) always produce the same key.
func (p PeerInfo) Key() string {
	return p.IP.String() + ":" + strconv.Itoa(int(p.Port))
}

func (p PeerInfo) String() string {
	return p.Key()
}

// Node represents one running Cirrolus instance.
type Node struct {
	ConfigFilename string
	Config         *Config
	Filters        Filters
	userAgent      string

	// Username is the default uploader/searcher identity for driver calls
	// that do not specify one explicitly.
	Username string

	listenHost string
	listenPort uint16
	listener   *net.TCPListener
	running    int32 // atomic bool; 1 while accept/liveness loops should keep going

	peerMutex sync.RWMutex
	peers     map[string]*PeerInfo

	searchMutex   sync.Mutex
	searchResults map[string]map[string]string // username -> {content_hash_hex: filename_hash_hex}

	FragStore  *store.FragmentStore
	KnownPeers *store.KnownPeers
	Cipher     cipher.Cipher

	// Stdout bundles any output for the end-user. Writers may subscribe/unsubscribe.
	Stdout *multiWriter
}

// Init initializes a node. If the config file does not exist or is empty, a
// default one is used. The User Agent must be provided in the form
// "Application Name/1.0". The returned status is of type ExitX; anything
// other than ExitSuccess indicates a fatal failure.
func Init(userAgent, configFilename string, filters *Filters) (node *Node, status int, err error) {
	if userAgent == "" {
		return nil, ExitErrorConfigAccess, fmt.Errorf("cirrolus: user agent required")
	}

	node = &Node{
		ConfigFilename: configFilename,
		userAgent:      userAgent,
		Config:         &Config{},
		Stdout:         newMultiWriter(),
		peers:          make(map[string]*PeerInfo),
		searchResults:  make(map[string]map[string]string),
		Cipher:         cipher.AESCipher{},
	}

	if filters != nil {
		node.Filters = *filters
	}

	if status, err = LoadConfig(configFilename, node.Config); status != ExitSuccess {
		return nil, status, err
	}

	if err = node.initLog(); err != nil {
		return nil, ExitErrorLogInit, err
	}

	node.initFilters()
	node.Username = node.Config.Username

	host, portStr, err := net.SplitHostPort(node.Config.Listen)
	if err != nil {
		return nil, ExitErrorConfigParse, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, ExitErrorConfigParse, err
	}
	node.listenHost, node.listenPort = host, uint16(port)

	dataDir := node.Config.DataDirectory
	if dataDir == "" {
		dataDir = "."
	}
	if node.FragStore, err = store.NewFragmentStore(dataDir); err != nil {
		return nil, ExitErrorStoreInit, err
	}

	if node.Config.KnownPeersFile != "" {
		if node.KnownPeers, err = store.NewKnownPeersFile(node.Config.KnownPeersFile); err != nil {
			return nil, ExitErrorStoreInit, err
		}
	}

	return node, ExitSuccess, nil
}

// Connect starts the accept loop, the liveness sweeper, and attempts to
// rejoin every peer from the seed list and the known-peer reattachment
// cache. It returns immediately; both loops run until Shutdown is called.
func (node *Node) Connect() {
	atomic.StoreInt32(&node.running, 1)

	go node.acceptLoop()
	go node.autoPingAll()

	for _, addr := range node.Config.SeedList {
		go node.seedJoin(addr)
	}

	if node.KnownPeers != nil {
		for key := range node.KnownPeers.All() {
			go node.JoinOutbound(PeerInfo{IP: key.IP(), Port: key.Port()}, true)
		}
	}
}

func (node *Node) seedJoin(addr string) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		node.Filters.LogError("seedJoin", "invalid seed address %q: %s", addr, err.Error())
		return
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		node.Filters.LogError("seedJoin", "invalid seed port %q: %s", addr, err.Error())
		return
	}

	ip := net.ParseIP(host)
	if ip == nil {
		ips, err := net.LookupIP(host)
		if err != nil || len(ips) == 0 {
			node.Filters.LogError("seedJoin", "cannot resolve seed host %q", host)
			return
		}
		ip = ips[0]
	}

	node.JoinOutbound(PeerInfo{IP: ip, Port: uint16(port)}, true)
}

// Shutdown clears the running flag; the accept loop and liveness sweeper
// observe it at their next poll and exit. Best-effort broadcasts Leave to
// every known peer first.
func (node *Node) Shutdown() {
	node.LeaveOutbound()

	atomic.StoreInt32(&node.running, 0)
	if node.listener != nil {
		node.listener.Close()
	}
}

// IsRunning reports whether the node's background loops are still active.
func (node *Node) IsRunning() bool {
	return atomic.LoadInt32(&node.running) == 1
}

// ListenAddr returns the configured listen host/port.
func (node *Node) ListenAddr() string {
	return net.JoinHostPort(node.listenHost, strconv.Itoa(int(node.listenPort)))
}

// selfMatches reports whether p refers to this node's own listen address,
// used to keep a node out of its own peer set.
func (node *Node) selfMatches(p PeerInfo) bool {
	if p.Port != node.listenPort {
		return false
	}
	return p.IP.IsLoopback() || strings.TrimSpace(node.listenHost) == "0.0.0.0" || p.IP.String() == node.listenHost
}
