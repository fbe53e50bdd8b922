package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guesstheword/internal/game"
	"github.com/robalobadob/guesstheword/internal/session"
)

const (
	wsWriteWait  = 5 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// wsMessage is the envelope for both directions.
// Client → server: {"action":"skip"|"correct"|"ack"|"restart"}.
// Server → client: {"action":"state","state":{...}} or {"action":"error","error":"..."}.
type wsMessage struct {
	Action string         `json:"action"`
	State  *game.Snapshot `json:"state,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			o := r.Header.Get("Origin")
			return o == "" || o == s.origin
		},
	}
}

// handleWS upgrades the connection and streams every snapshot of the screen.
// Commands received on the socket are applied to the same screen.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess := screenFrom(r)
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	snaps, cancel, err := sess.Subscribe()
	if err != nil {
		_ = conn.WriteJSON(wsMessage{Action: "error", Error: "closed"})
		return
	}
	defer cancel()

	// Reader: apply commands until the client goes away.
	readerDone := make(chan struct{})
	errs := make(chan string, 4)
	go func() {
		defer close(readerDone)
		conn.SetReadLimit(1024)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg wsMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				queueError(errs, "bad_json")
				continue
			}
			if err := applyAction(sess, msg.Action); err != nil {
				queueError(errs, err.Error())
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	for {
		select {
		case snap, ok := <-snaps:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "screen closed"),
					time.Now().Add(wsWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(wsMessage{Action: "state", State: &snap}); err != nil {
				return
			}
		case e := <-errs:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(wsMessage{Action: "error", Error: e}); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case <-readerDone:
			return
		}
	}
}

type actionError string

func (e actionError) Error() string { return string(e) }

// applyAction maps a socket action onto a session command.
func applyAction(sess *session.Session, action string) error {
	var err error
	switch action {
	case "skip":
		err = sess.Skip()
	case "correct":
		err = sess.Correct()
	case "ack":
		err = sess.Acknowledge()
	case "restart":
		err = sess.Restart()
	default:
		return actionError("unknown_action")
	}
	if err != nil {
		return actionError("closed")
	}
	return nil
}

func queueError(errs chan<- string, e string) {
	select {
	case errs <- e:
	default:
	}
}
