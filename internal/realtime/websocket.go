package realtime

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The UI is served from arbitrary origins during development, as with CORS.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebsocket upgrades the request and pushes progress events as JSON text
// frames. Inbound frames are read only to notice disconnects.
func (hub *Hub) ServeWebsocket(w http.ResponseWriter, r *http.Request, client *Client) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		client.Logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		conn.SetReadLimit(4096)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-readerDone:
			client.Logger.Debug("websocket client disconnected")
			return
		case <-client.done:
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(wsWriteWait))
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case msg, ok := <-client.Outbound:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(msg.Data); err != nil {
				client.Logger.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}
