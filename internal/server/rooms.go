package server

import (
	"errors"
	"fmt"
	"strings"

	"sketchparty/internal/config"
	"sketchparty/internal/db"
	"sketchparty/internal/game"
	"sketchparty/internal/words"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// WordlistFromDB selects the words table as a room's vocabulary.
const WordlistFromDB = "db"

type roomEntry struct {
	cfg  config.Room
	room *game.Room
}

func (e *roomEntry) path() string {
	return "/ws/rooms/" + e.cfg.ID
}

// WordSourceFunc builds the vocabulary for one room.
type WordSourceFunc func(room config.Room) (game.WordSource, error)

// LoadWordSource reads a room's wordlist from a file, or from the words table
// when the wordlist is "db".
func LoadWordSource(conn *gorm.DB) WordSourceFunc {
	return func(room config.Room) (game.WordSource, error) {
		var (
			vocabulary []string
			err        error
		)
		if strings.EqualFold(room.Wordlist, WordlistFromDB) {
			if conn == nil {
				return nil, errors.New("wordlist db requires DATABASE_URL")
			}
			vocabulary, err = db.ListWords(conn)
		} else {
			vocabulary, err = words.Load(room.Wordlist)
		}
		if err != nil {
			return nil, err
		}
		list, err := words.NewList(vocabulary)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", room.Wordlist, err)
		}
		log.Info().Str("room", room.ID).Str("wordlist", room.Wordlist).Int("words", list.Len()).Msg("vocabulary loaded")
		return list, nil
	}
}

func (s *Server) buildRooms(load WordSourceFunc, sink game.ScoreSink) error {
	for _, rc := range s.cfg.Rooms {
		source, err := load(rc)
		if err != nil {
			return fmt.Errorf("room %s: %w", rc.ID, err)
		}
		room := game.NewRoom(game.Config{
			Name:         rc.ID,
			MinPlayers:   rc.MinPlayers,
			MaxPlayers:   rc.MaxPlayers,
			RoundSeconds: rc.Timeout,
			AdvanceDelay: rc.AdvanceDelay(),
			OnScoreError: s.scoreFailed,
		}, source, sink)
		entry := &roomEntry{cfg: rc, room: room}
		s.rooms = append(s.rooms, entry)
		s.byID[rc.ID] = entry
	}
	return nil
}

func (s *Server) scoreFailed(outcome game.Outcome, err error) {
	total := s.scoreFailures.Add(1)
	log.Debug().Err(err).Str("room", outcome.Room).Int64("failures", total).Msg("score failure counted")
}

func (s *Server) room(id string) (*roomEntry, bool) {
	entry, ok := s.byID[id]
	return entry, ok
}
