package server

import (
	"sketchparty/internal/game"
	"sketchparty/internal/protocol"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type stage int

const (
	stageHandshaking stage = iota
	stageAuthenticating
	stageActive
	stageClosed
)

func (s stage) String() string {
	switch s {
	case stageHandshaking:
		return "handshaking"
	case stageAuthenticating:
		return "authenticating"
	case stageActive:
		return "active"
	default:
		return "closed"
	}
}

// session drives one connection through handshake, login and play. It runs
// on the connection's read goroutine, so it needs no locking. The client's
// logger is shared with the room and write goroutines and stays fixed; the
// session keeps its own copy that gains the player's nickname.
type session struct {
	client *client
	room   *game.Room
	stage  stage
	player *game.Player
	chat   *rate.Limiter
	log    zerolog.Logger
}

func newSession(c *client, room *game.Room, chat *rate.Limiter) *session {
	return &session{client: c, room: room, chat: chat, log: c.log}
}

func (s *session) handleFrame(frame []byte) {
	env, err := protocol.Decode(frame)
	if err != nil {
		s.log.Debug().Err(err).Msg("dropping undecodable frame")
		return
	}
	switch s.stage {
	case stageHandshaking:
		s.handshake(env)
	case stageAuthenticating:
		s.login(env)
	case stageActive:
		s.dispatch(env)
	}
}

func (s *session) handshake(env protocol.Envelope) {
	if env.Cmd != protocol.CmdHowdy {
		s.violation(env.Cmd)
		return
	}
	frame, err := protocol.Encode(protocol.CmdGdayMate, nil)
	if err != nil {
		return
	}
	if err := s.client.Send(frame); err != nil {
		s.stage = stageClosed
		return
	}
	s.stage = stageAuthenticating
}

func (s *session) login(env protocol.Envelope) {
	if env.Cmd != protocol.CmdLogin {
		s.violation(env.Cmd)
		return
	}
	raw, err := protocol.DecodePayload[string](env)
	if err != nil {
		s.violation(env.Cmd)
		return
	}
	nick, err := validateNickname(raw)
	if err != nil {
		s.log.Info().Err(err).Msg("login refused")
		s.violation(env.Cmd)
		return
	}
	player, err := s.room.Login(s.client, nick)
	if err != nil {
		s.stage = stageClosed
		return
	}
	s.player = player
	s.stage = stageActive
	s.log = s.log.With().Str("player", nick).Logger()
}

func (s *session) dispatch(env protocol.Envelope) {
	switch env.Cmd {
	case protocol.CmdChat:
		text, err := protocol.DecodePayload[string](env)
		if err != nil {
			return
		}
		if !s.chat.Allow() {
			s.log.Debug().Msg("chat rate limited")
			return
		}
		s.room.Chat(s.player, text)
	case protocol.CmdDraw:
		if len(env.Data) == 0 {
			return
		}
		s.room.Draw(s.player, env.Data)
	case protocol.CmdUndo:
		count := 1
		if len(env.Data) > 0 {
			n, err := protocol.DecodePayload[int](env)
			if err != nil {
				return
			}
			count = n
		}
		s.room.Undo(s.player, env.Cmd, env.Data, count)
	case protocol.CmdClear:
		s.room.Undo(s.player, env.Cmd, env.Data, 0)
	case protocol.CmdLeave:
		s.room.Leave(s.player)
		s.stage = stageClosed
		s.client.Close(protocol.CloseNormal, "")
	}
}

func (s *session) violation(cmd string) {
	s.log.Info().Str("cmd", cmd).Str("stage", s.stage.String()).Msg("protocol violation")
	s.stage = stageClosed
	s.client.Close(protocol.CloseProtocolError, protocol.ReasonInvalidHandshake)
}

// finish runs once the socket is gone. The room drops the player if they
// were still in it.
func (s *session) finish() {
	if s.stage == stageActive {
		s.room.Leave(s.player)
	}
	s.stage = stageClosed
	s.client.Close(protocol.CloseNormal, "")
}
