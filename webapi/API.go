/*
File Name:  API.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

A thin HTTP/WebSocket wrapper around the node's driver commands: join,
leave, upload, download, search, and peer listing.
*/

package webapi

import (
	"crypto/tls"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Liblor/Cirrolus"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// WebapiInstance exposes a node's driver commands over HTTP.
type WebapiInstance struct {
	Node   *cirrolus.Node
	Router *mux.Router

	// AllowKeyInParam lists paths that accept the API key as a &k=
	// parameter rather than the x-api-key header, for clients (like a
	// browser WebSocket) that cannot set custom headers.
	AllowKeyInParam []string
}

// upgrader upgrades the search-stream and log-stream endpoints to a
// WebSocket. It allows
// all origins; the API key middleware (if enabled) gates access instead.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Start registers all routes and begins listening on every address in
// listenAddresses. APIKey may be uuid.Nil to disable authentication,
// though that is not recommended outside of local testing.
func Start(node *cirrolus.Node, listenAddresses []string, apiKey uuid.UUID) (api *WebapiInstance) {
	if len(listenAddresses) == 0 {
		return nil
	}

	api = &WebapiInstance{
		Node:            node,
		Router:          mux.NewRouter(),
		AllowKeyInParam: []string{"/search/ws", "/log/ws"},
	}

	if apiKey != uuid.Nil {
		api.Router.Use(api.authenticateMiddleware(apiKey))
	}

	api.Router.HandleFunc("/status", api.apiStatus).Methods("GET")
	api.Router.HandleFunc("/peers", api.apiPeers).Methods("GET")
	api.Router.HandleFunc("/peer/join", api.apiPeerJoin).Methods("POST")
	api.Router.HandleFunc("/peer/leave", api.apiPeerLeave).Methods("POST")
	api.Router.HandleFunc("/upload", api.apiUpload).Methods("POST")
	api.Router.HandleFunc("/download", api.apiDownload).Methods("POST")
	api.Router.HandleFunc("/search", api.apiSearch).Methods("POST")
	api.Router.HandleFunc("/search/ws", api.apiSearchStream).Methods("GET")
	api.Router.HandleFunc("/log/ws", api.apiLogStream).Methods("GET")

	for _, listen := range listenAddresses {
		go startWebAPI(node, listen, api.Router)
	}

	return api
}

// startWebAPI runs one HTTP listener; it blocks until the listener fails.
func startWebAPI(node *cirrolus.Node, listen string, handler http.Handler) {
	node.Filters.LogError("startWebAPI", "starting web API on '%s'", listen)

	server := &http.Server{
		Addr:         listen,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		TLSConfig:    &tls.Config{MinVersion: tls.VersionTLS12},
	}

	if err := server.ListenAndServe(); err != nil {
		node.Filters.LogError("startWebAPI", "listening on '%s': %s", listen, err.Error())
	}
}

// encodeJSON writes data to w as a JSON response body.
func encodeJSON(node *cirrolus.Node, w http.ResponseWriter, r *http.Request, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		node.Filters.LogError("encodeJSON", "writing response for '%s': %s", r.URL.Path, err.Error())
	}
}

// decodeJSON reads a JSON request body into data, sending a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, data interface{}) error {
	if r.Body == nil {
		http.Error(w, "", http.StatusBadRequest)
		return errors.New("no data")
	}
	if err := json.NewDecoder(r.Body).Decode(data); err != nil {
		http.Error(w, "", http.StatusBadRequest)
		return err
	}
	return nil
}

// authenticateMiddleware gates every registered route behind a shared API
// key, read from the x-api-key header or, for paths listed in
// AllowKeyInParam, from a &k= query parameter.
func (api *WebapiInstance) authenticateMiddleware(apiKey uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			keyID, err := uuid.Parse(r.Header.Get("x-api-key"))
			if err != nil {
				for _, exceptPath := range api.AllowKeyInParam {
					if exceptPath == r.URL.Path {
						r.ParseForm()
						keyID, err = uuid.Parse(r.Form.Get("k"))
						break
					}
				}
			}
			if err != nil || keyID != apiKey {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
