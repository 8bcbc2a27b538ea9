/*
File Name:  Log.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

/log/ws         Websocket variant: stream the node's log output live
*/

package webapi

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// websocketLogWriter adapts a websocket connection to an io.Writer so it can
// subscribe to the node's Stdout fan-out.
type websocketLogWriter struct {
	conn *websocket.Conn
}

func (w websocketLogWriter) Write(p []byte) (n int, err error) {
	if err := w.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

/*
apiLogStream upgrades the connection to a websocket and streams every log
line the node produces (see Node.Stdout) until the client disconnects.

Request:    GET /log/ws
Result:     Upgrades to a websocket; sends one text frame per log line.
*/
func (api *WebapiInstance) apiLogStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// gorilla already wrote the error response; nothing else to do.
		return
	}
	defer conn.Close()

	id := api.Node.Stdout.Subscribe(websocketLogWriter{conn: conn})
	defer api.Node.Stdout.Unsubscribe(id)

	// Block until the client disconnects; incoming frames are discarded.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
