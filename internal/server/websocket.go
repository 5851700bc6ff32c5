package server

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type wsHub struct {
	mu     sync.Mutex
	groups map[string]map[*client]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{
		groups: make(map[string]map[*client]struct{}),
	}
}

func (h *wsHub) Add(roomID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[roomID]
	if group == nil {
		group = make(map[*client]struct{})
		h.groups[roomID] = group
	}
	group[c] = struct{}{}
}

func (h *wsHub) Remove(roomID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[roomID]
	if group == nil {
		return
	}
	delete(group, c)
	if len(group) == 0 {
		delete(h.groups, roomID)
	}
}

// Count reports open sockets for a room, logged in or not.
func (h *wsHub) Count(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.groups[roomID])
}

func (h *wsHub) CloseAll(code int, reason string) {
	h.mu.Lock()
	clients := make([]*client, 0)
	for _, group := range h.groups {
		for c := range group {
			clients = append(clients, c)
		}
	}
	h.mu.Unlock()
	for _, c := range clients {
		c.Close(code, reason)
	}
}

func (s *Server) handleWebsocket(c *gin.Context) {
	var req roomURI
	if !bindURI(c, &req) {
		return
	}
	entry, ok := s.room(req.Room)
	if !ok {
		respondError(c, http.StatusNotFound, "room not found")
		return
	}
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Debug().Err(err).Str("room", entry.cfg.ID).Msg("ws upgrade failed")
		return
	}
	cl := newClient(conn, c.Request.RemoteAddr, entry.cfg.ID, s.cfg.SendQueue, s.cfg.PingTimeout())
	cl.log.Info().Msg("ws connected")
	s.ws.Add(entry.cfg.ID, cl)
	go cl.writePump()
	go s.readWS(entry, cl)
}

func (s *Server) readWS(entry *roomEntry, cl *client) {
	sess := newSession(cl, entry.room, rate.NewLimiter(rate.Limit(s.cfg.ChatRate), s.cfg.ChatBurst))
	defer func() {
		sess.finish()
		s.ws.Remove(entry.cfg.ID, cl)
	}()
	cl.prepareRead(s.cfg.MaxMessageBytes)
	for {
		_, frame, err := cl.conn.ReadMessage()
		if err != nil {
			sess.log.Info().Err(err).Msg("ws disconnected")
			return
		}
		sess.handleFrame(frame)
		if sess.stage == stageClosed {
			sess.log.Info().Msg("ws session closed")
			return
		}
	}
}
