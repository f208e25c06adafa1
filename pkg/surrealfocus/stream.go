package surrealfocus

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/events"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleEvents streams bus events to a websocket client as JSON text
// messages. The stream ends when the client goes away or the bus closes.
//
// HTTP Method: GET
// Endpoint: /api/events
func (a *App) handleEvents(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to upgrade the websocket")
		return
	}
	defer ws.Close()

	ch, cancel := a.bus.Subscribe(events.DefaultBuffer)
	defer cancel()

	log := a.log.With().Str("remote", r.RemoteAddr).Logger()
	log.Debug().Msg("event stream connected")

	// The client never sends anything meaningful; reading only tracks pongs
	// and notices the close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		_ = ws.SetReadDeadline(time.Now().Add(streamPongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(streamPongWait))
		})
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-gone:
			log.Debug().Msg("event stream disconnected")
			return
		case e, ok := <-ch:
			if !ok {
				_ = ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(streamWriteWait))
				return
			}
			data, err := e.Marshal()
			if err != nil {
				log.Warn().Err(err).Msg("event not encoded")
				continue
			}
			_ = ws.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Msg("event stream write failed")
				return
			}
		case <-ping.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		}
	}
}
