package server

import (
	"net/http"

	"sketchparty/internal/game"
	"sketchparty/internal/protocol"
	"sketchparty/internal/scores"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	serverType    = "S&G"
	serverVersion = 1
)

type infoResponse struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Version int    `json:"version"`
}

type gameSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Path       string `json:"path"`
	NumPlayers int    `json:"numPlayers"`
	MinPlayers int    `json:"minPlayers"`
	MaxPlayers int    `json:"maxPlayers"`
	Timeout    int    `json:"timeout"`
}

type gameDetail struct {
	gameSummary
	Active    bool                   `json:"active"`
	Drawer    string                 `json:"drawer,omitempty"`
	Countdown int                    `json:"countdown"`
	Standings []protocol.RosterEntry `json:"standings"`
}

func (s *Server) handleInfo(c *gin.Context) {
	respondData(c, http.StatusOK, infoResponse{
		Name:    s.cfg.Name,
		Type:    serverType,
		Version: serverVersion,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"rooms":         len(s.rooms),
		"scoreFailures": s.scoreFailures.Load(),
	})
}

func (s *Server) handleGames(c *gin.Context) {
	games := make([]gameSummary, 0, len(s.rooms))
	for _, entry := range s.rooms {
		snap, err := entry.room.Snapshot()
		if err != nil {
			log.Debug().Err(err).Str("room", entry.cfg.ID).Msg("room listing skipped")
			continue
		}
		games = append(games, summarize(entry, snap))
	}
	respondData(c, http.StatusOK, games)
}

func (s *Server) handleGame(c *gin.Context) {
	entry, ok := s.lookupRoom(c)
	if !ok {
		return
	}
	snap, err := entry.room.Snapshot()
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, "room closed")
		return
	}
	respondData(c, http.StatusOK, gameDetail{
		gameSummary: summarize(entry, snap),
		Active:      snap.Active,
		Drawer:      snap.Drawer,
		Countdown:   snap.Countdown,
		Standings:   snap.Standings,
	})
}

func (s *Server) handleRounds(c *gin.Context) {
	entry, ok := s.lookupRoom(c)
	if !ok {
		return
	}
	var q limitQuery
	if !bindQuery(c, &q) {
		return
	}
	rounds := []game.Outcome{}
	if s.history != nil {
		found, err := s.history.Rounds(c.Request.Context(), entry.cfg.ID, scores.ClampLimit(q.Limit))
		if err != nil {
			log.Error().Err(err).Str("room", entry.cfg.ID).Msg("round history failed")
			respondError(c, http.StatusInternalServerError, "failed to load rounds")
			return
		}
		rounds = append(rounds, found...)
	}
	respondData(c, http.StatusOK, rounds)
}

func (s *Server) handleScores(c *gin.Context) {
	var q limitQuery
	if !bindQuery(c, &q) {
		return
	}
	top, err := s.topScores(c, scores.ClampLimit(q.Limit))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load scores")
		return
	}
	respondData(c, http.StatusOK, top)
}

func (s *Server) topScores(c *gin.Context, limit int) ([]scores.Entry, error) {
	top := []scores.Entry{}
	if s.board == nil {
		return top, nil
	}
	found, err := s.board.Top(c.Request.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("hiscore query failed")
		return nil, err
	}
	return append(top, found...), nil
}

func (s *Server) lookupRoom(c *gin.Context) (*roomEntry, bool) {
	var req roomURI
	if !bindURI(c, &req) {
		return nil, false
	}
	entry, ok := s.room(req.Room)
	if !ok {
		respondError(c, http.StatusNotFound, "room not found")
		return nil, false
	}
	return entry, true
}

func summarize(entry *roomEntry, snap game.Snapshot) gameSummary {
	return gameSummary{
		ID:         entry.cfg.ID,
		Name:       entry.cfg.Name,
		Path:       entry.path(),
		NumPlayers: snap.Players,
		MinPlayers: snap.MinPlayers,
		MaxPlayers: snap.MaxPlayers,
		Timeout:    snap.RoundSeconds,
	}
}
