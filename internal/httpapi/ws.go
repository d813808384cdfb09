package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"ouvidoria.app/internal/obs"
	"ouvidoria.app/internal/thread"
)

// wsConn adapts a gorilla connection to the registry. Gorilla allows only
// one concurrent writer, so sends are serialized with a mutex.
type wsConn struct {
	mu sync.Mutex
	c  *websocket.Conn
}

func (c *wsConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.c.WriteMessage(websocket.TextMessage, payload)
}

type socketError struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// serveThreadSocket runs the per-thread socket lifecycle: upgrade,
// authenticate, replay history, enroll, then read inbound frames until the
// client goes away. Handshake failures are reported as a JSON error frame
// before the close so browser clients see more than a dropped TCP stream.
func (a *API) serveThreadSocket(w http.ResponseWriter, r *http.Request, threadID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}
	sock := &wsConn{c: conn}
	defer conn.Close()

	principal, err := a.gateway.Authenticate(r)
	if err != nil {
		a.closeSocket(sock, http.StatusUnauthorized, "invalid token")
		return
	}

	t, history, err := a.threads.History(r.Context(), threadID)
	if err != nil {
		if errors.Is(err, thread.ErrNotFound) {
			a.closeSocket(sock, http.StatusNotFound, "reclamacao not found")
		} else {
			a.closeSocket(sock, http.StatusInternalServerError, "internal error")
		}
		return
	}

	// Replay: one Reclamacao frame, then the history in insertion order.
	if err := a.sendFrame(sock, thread.NewThreadFrame(t)); err != nil {
		return
	}
	for _, m := range history {
		if err := a.sendFrame(sock, thread.NewMessageFrame(m)); err != nil {
			return
		}
	}

	a.registry.Enroll(threadID, sock)
	obs.WSConnected()
	defer func() {
		a.registry.Remove(threadID, sock)
		obs.WSDisconnected()
	}()

	authorID := principal.Snapshot().ID
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var in thread.Inbound
		if err := json.Unmarshal(payload, &in); err != nil {
			a.logDroppedFrame(threadID, authorID, err)
			continue
		}
		if _, err := a.broadcaster.Publish(r.Context(), threadID, authorID, in); err != nil {
			a.logDroppedFrame(threadID, authorID, err)
		}
	}
}

func (a *API) sendFrame(sock *wsConn, frame any) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	return sock.Send(payload)
}

func (a *API) closeSocket(sock *wsConn, status int, msg string) {
	_ = a.sendFrame(sock, socketError{Status: status, Error: msg})
	_ = sock.c.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, msg))
}

func (a *API) logDroppedFrame(threadID, userID string, err error) {
	obs.LogRequest(map[string]any{
		"type":      "ws",
		"event":     "frame.dropped",
		"thread_id": threadID,
		"user_id":   userID,
		"error":     err.Error(),
	})
}
