package game

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"sketchparty/internal/protocol"
)

type fakeConn struct {
	mu          sync.Mutex
	frames      []protocol.Envelope
	closed      bool
	closeCode   int
	closeReason string
	fail        bool
}

func (c *fakeConn) Send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("queue full")
	}
	env, err := protocol.Decode(frame)
	if err != nil {
		return err
	}
	c.frames = append(c.frames, env)
	return nil
}

func (c *fakeConn) Close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.closeCode = code
	c.closeReason = reason
}

func (c *fakeConn) commands() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.frames))
	for _, env := range c.frames {
		out = append(out, env.Cmd)
	}
	return out
}

func (c *fakeConn) last(cmd string) (protocol.Envelope, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.frames) - 1; i >= 0; i-- {
		if c.frames[i].Cmd == cmd {
			return c.frames[i], true
		}
	}
	return protocol.Envelope{}, false
}

func (c *fakeConn) at(i int) protocol.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames[i]
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}

func (c *fakeConn) isClosed() (bool, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed, c.closeCode
}

// waitFor polls until cmd shows up at or after index from, returning its index.
func (c *fakeConn) waitFor(t *testing.T, cmd string, from int, timeout time.Duration) int {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		cmds := c.commands()
		for i := from; i < len(cmds); i++ {
			if cmds[i] == cmd {
				return i
			}
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s; seen=%v", cmd, c.commands())
	return -1
}

type fixedWords struct {
	mu    sync.Mutex
	words []string
	next  int
}

func (w *fixedWords) Next() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	word := w.words[w.next%len(w.words)]
	w.next++
	return word
}

type recordingSink struct {
	mu       sync.Mutex
	outcomes []Outcome
	err      error
}

func (s *recordingSink) RecordRound(_ context.Context, outcome Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, outcome)
	return s.err
}

func (s *recordingSink) recorded() []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Outcome(nil), s.outcomes...)
}

// newStillRoom returns a room whose timers never fire on their own; tests
// drive ticks and advances by calling the handlers directly.
func newStillRoom(cfg Config) (*Room, *fixedWords) {
	if cfg.Name == "" {
		cfg.Name = "test"
	}
	cfg.TickInterval = time.Hour
	cfg.AdvanceDelay = time.Hour
	words := &fixedWords{words: []string{"Apple", "Boat", "Castle"}}
	r := NewRoom(cfg, words, nil)
	return r, words
}

func join(t *testing.T, r *Room, nick string) (*Player, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	req := loginRequest{conn: conn, nick: nick, reply: make(chan loginResult, 1)}
	r.admit(req)
	res := <-req.reply
	if res.err != nil {
		t.Fatalf("login %s: %v", nick, res.err)
	}
	return res.player, conn
}

func tryJoin(r *Room, nick string) (*fakeConn, error) {
	conn := &fakeConn{}
	req := loginRequest{conn: conn, nick: nick, reply: make(chan loginResult, 1)}
	r.admit(req)
	res := <-req.reply
	return conn, res.err
}

func decodeString(t *testing.T, env protocol.Envelope) string {
	t.Helper()
	value, err := protocol.DecodePayload[string](env)
	if err != nil {
		t.Fatalf("decode %s payload: %v", env.Cmd, err)
	}
	return value
}

func decodeOps(t *testing.T, env protocol.Envelope) []json.RawMessage {
	t.Helper()
	var ops []json.RawMessage
	if err := json.Unmarshal(env.Data, &ops); err != nil {
		t.Fatalf("decode %s payload: %v", env.Cmd, err)
	}
	return ops
}
