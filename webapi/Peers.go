/*
File Name:  Peers.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner
*/

package webapi

import (
	"net"
	"net/http"

	"github.com/Liblor/Cirrolus"
)

type apiPeerEntry struct {
	IP   string `json:"ip"`
	Port uint16 `json:"port"`
}

type apiResponsePeers struct {
	Peers []apiPeerEntry `json:"peers"`
}

func (api *WebapiInstance) apiPeers(w http.ResponseWriter, r *http.Request) {
	list := api.Node.ListPeers()
	out := make([]apiPeerEntry, 0, len(list))
	for _, p := range list {
		out = append(out, apiPeerEntry{IP: p.IP.String(), Port: p.Port})
	}
	encodeJSON(api.Node, w, r, apiResponsePeers{Peers: out})
}

type apiRequestPeerJoin struct {
	IP        string `json:"ip"`
	Port      uint16 `json:"port"`
	WantPeers bool   `json:"want_peers"`
}

func (api *WebapiInstance) apiPeerJoin(w http.ResponseWriter, r *http.Request) {
	var request apiRequestPeerJoin
	if err := decodeJSON(w, r, &request); err != nil {
		return
	}

	ip := net.ParseIP(request.IP)
	if ip == nil {
		http.Error(w, "invalid ip", http.StatusBadRequest)
		return
	}

	if err := api.Node.Join(cirrolus.PeerInfo{IP: ip, Port: request.Port}, request.WantPeers); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (api *WebapiInstance) apiPeerLeave(w http.ResponseWriter, r *http.Request) {
	api.Node.Leave()
	w.WriteHeader(http.StatusOK)
}
