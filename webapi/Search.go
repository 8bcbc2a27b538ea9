/*
File Name:  Search.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

/search         Submit a search request, return the accumulated results
/search/ws      Websocket variant: repeatedly search and stream new results
*/

package webapi

import (
	"net/http"
	"strconv"
	"time"
)

type apiRequestSearch struct {
	Filename string `json:"filename"`
	Username string `json:"username"`
}

type apiResponseSearch struct {
	Username string            `json:"username"`
	Files    map[string]string `json:"files"`
}

/*
apiSearch runs a single search round against every known peer and returns
the accumulated content-hash -> filename-hash mapping.

Request:    POST /search with JSON apiRequestSearch
Result:     200 with JSON apiResponseSearch
            400 on invalid JSON
*/
func (api *WebapiInstance) apiSearch(w http.ResponseWriter, r *http.Request) {
	var request apiRequestSearch
	if err := decodeJSON(w, r, &request); err != nil {
		return
	}

	files := api.Node.Search(request.Filename, request.Username)

	encodeJSON(api.Node, w, r, apiResponseSearch{Username: request.Username, Files: files})
}

const searchStreamPoll = 500 * time.Millisecond

/*
apiSearchStream provides a websocket that repeatedly issues the same search
and streams any newly accumulated results until the client disconnects or
the optional round limit is reached.

Request:    GET /search/ws?filename=[name]&username=[user]&rounds=[optional max rounds]
Result:     Upgrades to a websocket; sends one JSON apiResponseSearch message
            per round that produced at least one result.
*/
func (api *WebapiInstance) apiSearchStream(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	filename := r.Form.Get("filename")
	username := r.Form.Get("username")

	rounds, err := strconv.Atoi(r.Form.Get("rounds"))
	useLimit := err == nil && rounds > 0

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// gorilla already wrote the error response; nothing else to do.
		return
	}
	defer conn.Close()

	for {
		files := api.Node.Search(filename, username)

		if len(files) > 0 {
			if err := conn.WriteJSON(apiResponseSearch{Username: username, Files: files}); err != nil {
				return
			}
		}

		if useLimit {
			rounds--
			if rounds <= 0 {
				return
			}
		}

		time.Sleep(searchStreamPoll)
	}
}
