/*
File Name:  Status.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner
*/

package webapi

import "net/http"

type apiResponseStatus struct {
	ListenAddress string `json:"listen_address"`
	Username      string `json:"username"`
	PeerCount     int    `json:"peer_count"`
	Running       bool   `json:"running"`
}

func (api *WebapiInstance) apiStatus(w http.ResponseWriter, r *http.Request) {
	encodeJSON(api.Node, w, r, apiResponseStatus{
		ListenAddress: api.Node.ListenAddr(),
		Username:      api.Node.Username,
		PeerCount:     api.Node.PeerCount(),
		Running:       api.Node.IsRunning(),
	})
}
