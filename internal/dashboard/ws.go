package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Action string `json:"action"` // "scan", "close" or "theme"
}

// wsMessage is the outgoing WebSocket message format.
type wsMessage struct {
	Type  string     `json:"type"` // "state" or "error"
	State *PageState `json:"state,omitempty"`
	Error string     `json:"error,omitempty"`
}

// handleWebSocket pushes a snapshot after every change of the client's
// dashboard and accepts the same actions as the POST endpoints.
func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s := d.load(w, r)
	if s == nil {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.logger.Warn("dashboard: websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	updates, unsubscribe := s.subscribe()
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	errs := make(chan string, 4)
	go d.readActions(ctx, cancel, conn, s, errs)

	initial := s.snapshot()
	if err := conn.WriteJSON(wsMessage{Type: "state", State: &initial}); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case st := <-updates:
			if err := conn.WriteJSON(wsMessage{Type: "state", State: &st}); err != nil {
				d.logger.Debug("dashboard: websocket write", "error", err)
				return
			}
		case msg := <-errs:
			if err := conn.WriteJSON(wsMessage{Type: "error", Error: msg}); err != nil {
				d.logger.Debug("dashboard: websocket write", "error", err)
				return
			}
		}
	}
}

// readActions dispatches client actions until the connection closes. Only
// the handler goroutine writes to conn.
func (d *Dashboard) readActions(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, s *session, errs chan<- string) {
	defer cancel()
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				d.logger.Debug("dashboard: websocket read", "error", err)
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			sendErr(errs, "invalid message format")
			continue
		}

		switch req.Action {
		case "scan":
			go func() {
				// Like POST /scan, the scan outlives the connection.
				if err := s.ctrl.Scan(context.WithoutCancel(ctx)); errors.Is(err, ErrScanInProgress) {
					sendErr(errs, err.Error())
				}
			}()
		case "close":
			s.ctrl.Close()
		case "theme":
			s.ctrl.ToggleTheme(ctx)
		default:
			sendErr(errs, "unknown action: "+req.Action)
		}
	}
}

func sendErr(errs chan<- string, msg string) {
	select {
	case errs <- msg:
	default:
	}
}
