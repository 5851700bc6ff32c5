package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sketchparty/internal/config"
	"sketchparty/internal/game"
	"sketchparty/internal/protocol"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const wsTimeout = 2 * time.Second

type fixedSource string

func (w fixedSource) Next() string { return string(w) }

func testRoom(id string, min, max int) config.Room {
	return config.Room{
		ID:         id,
		Name:       strings.ToUpper(id[:1]) + id[1:],
		MinPlayers: min,
		MaxPlayers: max,
		Timeout:    60,
		Delay:      30,
		Wordlist:   "unused",
	}
}

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

// newTestApp starts a server whose rooms all draw the word "apple".
func newTestApp(t *testing.T, rooms ...config.Room) (*Server, *httptest.Server) {
	t.Helper()
	return newTestAppWith(t, nil, rooms...)
}

func newTestAppWith(t *testing.T, tweak func(*config.Config), rooms ...config.Room) (*Server, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Name = "Test Party"
	cfg.Rooms = rooms
	if tweak != nil {
		tweak(&cfg)
	}
	srv, err := New(cfg, Deps{
		Words: func(config.Room) (game.WordSource, error) { return fixedSource("apple"), nil },
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	srv.Start()
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		ts.Close()
	})
	return srv, ts
}

func dialRoom(t *testing.T, ts *httptest.Server, room string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/rooms/" + room
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendCmd(t *testing.T, conn *websocket.Conn, cmd string, payload any) {
	t.Helper()
	frame, err := protocol.Encode(cmd, payload)
	if err != nil {
		t.Fatalf("encode %s: %v", cmd, err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("write %s: %v", cmd, err)
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn, timeout time.Duration) protocol.Envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read websocket message: %v", err)
	}
	env, err := protocol.Decode(payload)
	if err != nil {
		t.Fatalf("decode %q: %v", payload, err)
	}
	return env
}

// waitForCmd reads until cmd arrives, returning it and the commands skipped
// on the way.
func waitForCmd(t *testing.T, conn *websocket.Conn, cmd string) (protocol.Envelope, []string) {
	t.Helper()
	var seen []string
	deadline := time.Now().Add(wsTimeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			t.Fatalf("timed out waiting for %s; seen=%v", cmd, seen)
		}
		env := readEnvelope(t, conn, remaining)
		if env.Cmd == cmd {
			return env, seen
		}
		seen = append(seen, env.Cmd)
	}
}

func expectNoWSMessage(t *testing.T, conn *websocket.Conn, timeout time.Duration) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	if _, payload, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected no websocket message within %s, got %s", timeout, payload)
	} else {
		var netErr net.Error
		if !errors.As(err, &netErr) || !netErr.Timeout() {
			t.Fatalf("expected websocket timeout, got %v", err)
		}
	}
}

// expectClose drains frames until the server closes the socket.
func expectClose(t *testing.T, conn *websocket.Conn) *websocket.CloseError {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(wsTimeout))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				t.Fatalf("expected close frame, got %v", err)
			}
			return closeErr
		}
	}
}

func handshake(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	sendCmd(t, conn, protocol.CmdHowdy, nil)
	if env := readEnvelope(t, conn, wsTimeout); env.Cmd != protocol.CmdGdayMate {
		t.Fatalf("expected %s, got %s", protocol.CmdGdayMate, env.Cmd)
	}
}

func login(t *testing.T, ts *httptest.Server, room, nick string) *websocket.Conn {
	t.Helper()
	conn := dialRoom(t, ts, room)
	handshake(t, conn)
	sendCmd(t, conn, protocol.CmdLogin, nick)
	if env := readEnvelope(t, conn, wsTimeout); env.Cmd != protocol.CmdLoginOK {
		t.Fatalf("expected %s for %s, got %s", protocol.CmdLoginOK, nick, env.Cmd)
	}
	return conn
}

func getJSON(t *testing.T, ts *httptest.Server, path string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return resp.StatusCode, body
}

func decodeData[T any](t *testing.T, env protocol.Envelope) T {
	t.Helper()
	value, err := protocol.DecodePayload[T](env)
	if err != nil {
		t.Fatalf("decode %s payload: %v", env.Cmd, err)
	}
	return value
}

// drainUntilQuiet reads until the socket goes silent or is closed.
func drainUntilQuiet(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	for {
		_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
