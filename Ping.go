/*
File Name:  Ping.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner
*/

package cirrolus

import (
	"sync/atomic"
	"time"
)

const defaultLivenessInterval = 60 * time.Second

// autoPingAll sends a Ping to every known peer once per liveness interval,
// evicting any peer that fails to respond. It checks the running flag once
// per second so Shutdown is observed promptly regardless of the configured
// interval.
func (node *Node) autoPingAll() {
	interval := defaultLivenessInterval
	if node.Config != nil && node.Config.LivenessInterval > 0 {
		interval = time.Duration(node.Config.LivenessInterval) * time.Second
	}

	elapsed := interval // sweep immediately on first iteration
	for atomic.LoadInt32(&node.running) == 1 {
		time.Sleep(time.Second)
		elapsed += time.Second

		if elapsed < interval {
			continue
		}
		elapsed = 0

		for _, peer := range node.PeerList() {
			if atomic.LoadInt32(&node.running) == 0 {
				return
			}
			node.PingOutbound(peer)
		}
	}
}
