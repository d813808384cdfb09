package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"ouvidoria.app/internal/thread"
)

func (c *apiClient) dialSocket(threadID, accessToken string) *websocket.Conn {
	c.t.Helper()
	wsURL := strings.Replace(c.baseURL, "http://", "ws://", 1) +
		"/api/reclamacao/" + threadID + "/ws?auth=" + accessToken
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		c.t.Fatalf("dial socket: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	c.t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var frame map[string]any
	if err := json.Unmarshal(payload, &frame); err != nil {
		t.Fatalf("frame is not JSON: %v", err)
	}
	return frame
}

func (c *apiClient) createThread(hdr map[string]string, title string) threadResponse {
	c.t.Helper()
	resp := c.post("/api/reclamacao", map[string]any{
		"title": title, "competeciaId": c.competencia.ID,
	}, hdr)
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("create thread: %d", resp.StatusCode)
	}
	return decode[threadResponse](c.t, resp)
}

func TestSocketReplayAndLiveFanout(t *testing.T) {
	api := newTestAPI(t)

	author := api.signup("fulano@example.com", "Fulano", "pw")
	created := api.createThread(bearerHeader(author.TokenAccess), "Buraco na rua")

	memberAccess := api.memberToken("obras@example.com")

	// The member connects first: one Reclamacao frame, empty history.
	memberConn := api.dialSocket(created.ID, memberAccess)
	head := readFrame(t, memberConn)
	if head["type"] != "Reclamacao" || head["id"] != created.ID || head["status"] != "aberto" {
		t.Fatalf("unexpected head frame: %v", head)
	}

	authorConn := api.dialSocket(created.ID, author.TokenAccess)
	if f := readFrame(t, authorConn); f["type"] != "Reclamacao" {
		t.Fatalf("author head frame: %v", f)
	}

	// The author speaks; both sockets see the same Mensagem, sender included.
	if err := authorConn.WriteJSON(thread.Inbound{Text: "hole in the road"}); err != nil {
		t.Fatalf("write inbound: %v", err)
	}

	msgAuthor := readFrame(t, authorConn)
	msgMember := readFrame(t, memberConn)
	for name, f := range map[string]map[string]any{"author": msgAuthor, "member": msgMember} {
		if f["type"] != "Mensagem" || f["text"] != "hole in the road" || f["userId"] != author.ID {
			t.Fatalf("%s frame: %v", name, f)
		}
	}
	if msgAuthor["id"] != msgMember["id"] {
		t.Fatalf("fan-out ids diverge: %v vs %v", msgAuthor["id"], msgMember["id"])
	}

	// A later connection replays the history.
	lateConn := api.dialSocket(created.ID, memberAccess)
	if f := readFrame(t, lateConn); f["type"] != "Reclamacao" {
		t.Fatalf("late head frame: %v", f)
	}
	if f := readFrame(t, lateConn); f["type"] != "Mensagem" || f["id"] != msgAuthor["id"] {
		t.Fatalf("late history frame: %v", f)
	}
}

func TestSocketRejectsBadCredentials(t *testing.T) {
	api := newTestAPI(t)
	author := api.signup("fulano@example.com", "Fulano", "pw")
	created := api.createThread(bearerHeader(author.TokenAccess), "Buraco na rua")

	wsURL := strings.Replace(api.baseURL, "http://", "ws://", 1) +
		"/api/reclamacao/" + created.ID + "/ws?auth=garbage"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error frame: %v", err)
	}
	var frame socketError
	if err := json.Unmarshal(payload, &frame); err != nil {
		t.Fatalf("error frame is not JSON: %v", err)
	}
	if frame.Status != http.StatusUnauthorized {
		t.Fatalf("unexpected error frame: %+v", frame)
	}

	// The server closes right after the error frame.
	_, _, err = conn.ReadMessage()
	if err == nil {
		t.Fatal("socket stayed open after auth failure")
	}
}

func TestSocketDropsMalformedFrames(t *testing.T) {
	api := newTestAPI(t)
	author := api.signup("fulano@example.com", "Fulano", "pw")
	created := api.createThread(bearerHeader(author.TokenAccess), "Buraco na rua")

	conn := api.dialSocket(created.ID, author.TokenAccess)
	if f := readFrame(t, conn); f["type"] != "Reclamacao" {
		t.Fatalf("head frame: %v", f)
	}

	// Missing text and out-of-range coordinates must not produce frames.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"image":"x.png"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.WriteJSON(map[string]any{"text": "oi", "lat": 91.0}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.WriteJSON(thread.Inbound{Text: "valid"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	f := readFrame(t, conn)
	if f["type"] != "Mensagem" || f["text"] != "valid" {
		t.Fatalf("expected only the valid frame, got %v", f)
	}
}
