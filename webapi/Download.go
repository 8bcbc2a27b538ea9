/*
File Name:  Download.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner
*/

package webapi

import "net/http"

type apiRequestDownload struct {
	Filename string `json:"filename"`
	Username string `json:"username"`
	Index    int    `json:"index"`
	Password string `json:"password,omitempty"`
}

type apiResponseDownload struct {
	Path string `json:"path"`
}

func (api *WebapiInstance) apiDownload(w http.ResponseWriter, r *http.Request) {
	var request apiRequestDownload
	if err := decodeJSON(w, r, &request); err != nil {
		return
	}

	var password []byte
	if request.Password != "" {
		password = []byte(request.Password)
	}

	path, err := api.Node.Download(request.Filename, request.Username, request.Index, password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	encodeJSON(api.Node, w, r, apiResponseDownload{Path: path})
}
