/*
File Name:  Upload.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner
*/

package webapi

import "net/http"

type apiRequestUpload struct {
	Path     string `json:"path"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"` // Non-empty encrypts the file before splitting.
}

type apiResponseUpload struct {
	FragmentsSent int `json:"fragments_sent"`
}

func (api *WebapiInstance) apiUpload(w http.ResponseWriter, r *http.Request) {
	var request apiRequestUpload
	if err := decodeJSON(w, r, &request); err != nil {
		return
	}

	var password []byte
	if request.Password != "" {
		password = []byte(request.Password)
	}

	sent, err := api.Node.Upload(request.Path, request.Username, password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	encodeJSON(api.Node, w, r, apiResponseUpload{FragmentsSent: sent})
}
