package server

import (
	"sketchparty/internal/web"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const lobbyScores = 10

func (s *Server) handleLobby(c *gin.Context) {
	lobby := web.Lobby{ServerName: s.cfg.Name}
	for _, entry := range s.rooms {
		snap, err := entry.room.Snapshot()
		if err != nil {
			continue
		}
		lobby.Rooms = append(lobby.Rooms, web.RoomSummary{
			ID:         entry.cfg.ID,
			Name:       entry.cfg.Name,
			Path:       entry.path(),
			Players:    snap.Players,
			MinPlayers: snap.MinPlayers,
			MaxPlayers: snap.MaxPlayers,
			Timeout:    snap.RoundSeconds,
			Active:     snap.Active,
		})
	}
	top, err := s.topScores(c, lobbyScores)
	if err != nil {
		log.Warn().Err(err).Msg("lobby rendered without scores")
	}
	for _, entry := range top {
		lobby.Scores = append(lobby.Scores, web.ScoreRow{Nick: entry.Nick, Score: entry.Score})
	}
	templ.Handler(web.Home(lobby)).ServeHTTP(c.Writer, c.Request)
}
