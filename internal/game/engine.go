package game

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"sketchparty/internal/protocol"
)

func (r *Room) admit(req loginRequest) {
	if len(r.roster) >= r.cfg.MaxPlayers {
		r.reject(req, protocol.CmdFullHouse, ErrRoomFull)
		return
	}
	if r.findByNick(req.nick) != nil {
		r.reject(req, protocol.CmdDoppelganger, ErrNameTaken)
		return
	}

	r.nextID++
	p := &Player{id: r.nextID, nick: req.nick, conn: req.conn}
	r.players[p.id] = p
	r.roster = append(r.roster, p.id)
	r.pool = append(r.pool, p.id)
	req.reply <- loginResult{player: p}
	r.log.Info().Str("player", p.nick).Int("players", len(r.roster)).Msg("player joined")

	r.send(p, protocol.CmdLoginOK, nil)
	r.broadcast(protocol.CmdJoined, p.nick, p)
	r.broadcast(protocol.CmdRoster, r.standings(), nil)

	switch {
	case !r.paused:
		r.catchUp(p)
	case len(r.roster) < r.cfg.MinPlayers:
		r.send(p, protocol.CmdWait, nil)
	case !r.advancing:
		r.startRound()
	}
}

func (r *Room) reject(req loginRequest, cmd string, err error) {
	r.log.Info().Str("player", req.nick).Err(err).Msg("login rejected")
	if frame, encErr := protocol.Encode(cmd, nil); encErr == nil {
		_ = req.conn.Send(frame)
	}
	req.conn.Close(protocol.CloseNormal, "")
	req.reply <- loginResult{err: err}
}

// catchUp brings a mid-round joiner up to date before any later event can
// reach them.
func (r *Room) catchUp(p *Player) {
	drawer := r.players[r.drawer]
	if drawer == nil {
		return
	}
	r.send(p, protocol.CmdDrawer, drawer.nick)
	r.send(p, protocol.CmdCountdown, r.countdown)
	ops := make([]json.RawMessage, len(r.ops))
	copy(ops, r.ops)
	r.send(p, protocol.CmdCatchUp, ops)
}

func (r *Room) depart(p *Player) {
	if p == nil || r.players[p.id] != p {
		return
	}
	wasDrawer := r.drawer == p.id
	delete(r.players, p.id)
	r.roster = removeID(r.roster, p.id)
	r.pool = removeID(r.pool, p.id)
	p.drawing = false
	r.log.Info().Str("player", p.nick).Int("players", len(r.roster)).Msg("player left")

	r.broadcast(protocol.CmdLeft, p.nick, nil)
	r.broadcast(protocol.CmdRoster, r.standings(), nil)

	if len(r.roster) < r.cfg.MinPlayers {
		r.pause()
		r.broadcast(protocol.CmdWait, nil, nil)
		return
	}
	if wasDrawer && !r.paused {
		r.cancelTimers()
		r.paused = true
		r.scheduleAdvance()
	}
}

func (r *Room) startRound() {
	r.cancelTimers()
	r.ops = nil
	if len(r.roster) == 0 {
		r.paused = true
		return
	}

	word := r.words.Next()
	if len(r.pool) == 0 {
		r.pool = append(r.pool, r.roster...)
	}
	drawer := r.players[r.pool[0]]
	r.pool = r.pool[1:]

	drawer.drawing = true
	r.drawer = drawer.id
	r.word = word
	r.countdown = r.cfg.RoundSeconds
	r.paused = false
	r.log.Info().Str("drawer", drawer.nick).Int("seconds", r.countdown).Msg("round started")

	r.broadcast(protocol.CmdDrawer, drawer.nick, nil)
	r.send(drawer, protocol.CmdYoureIt, word)
	r.broadcast(protocol.CmdCountdown, r.countdown, nil)
	r.armTick()
}

func (r *Room) tick(gen uint64) {
	if gen != r.timerGen || r.paused {
		return
	}
	r.countdown--
	if r.countdown > 0 {
		r.armTick()
		return
	}
	word := r.word
	r.cancelTimers()
	r.paused = true
	r.log.Info().Str("word", word).Msg("round timed out")
	r.broadcast(protocol.CmdBust, word, nil)
	r.scheduleAdvance()
}

func (r *Room) advance(gen uint64) {
	if gen != r.timerGen || !r.advancing {
		return
	}
	r.advancing = false
	r.advanceTimer = nil
	r.startRound()
}

func (r *Room) chat(p *Player, text string) {
	if p == nil || r.players[p.id] != p {
		return
	}
	r.broadcast(protocol.CmdChat, protocol.ChatLine{Type: "chat", Nick: p.nick, Text: text}, nil)
	if r.paused || p.id == r.drawer || !matchesWord(text, r.word) {
		return
	}

	drawer := r.players[r.drawer]
	word := r.word
	remaining := r.countdown
	r.cancelTimers()
	r.paused = true

	guesserPoints := GuesserPoints(remaining, r.cfg.RoundSeconds)
	drawerPoints := DrawerPoints(guesserPoints)
	p.points += guesserPoints
	drawer.points += drawerPoints
	r.log.Info().Str("player", p.nick).Str("drawer", drawer.nick).Int("points", guesserPoints).Msg("word guessed")

	r.broadcast(protocol.CmdGotIt, protocol.Guessed{Nick: p.nick, Word: word}, nil)
	r.broadcast(protocol.CmdRoster, r.standings(), nil)
	r.submitScore(Outcome{
		Room:          r.cfg.Name,
		Guesser:       p.nick,
		Drawer:        drawer.nick,
		Word:          word,
		GuesserPoints: guesserPoints,
		DrawerPoints:  drawerPoints,
		SolvedAt:      time.Now().UTC(),
	})
	r.scheduleAdvance()
}

func (r *Room) draw(p *Player, op json.RawMessage) {
	if !r.isDrawer(p) || r.paused {
		return
	}
	r.ops = append(r.ops, op)
	r.broadcast(protocol.CmdDraw, op, p)
}

func (r *Room) undo(req undoRequest) {
	if !r.isDrawer(req.player) {
		return
	}
	r.ops = dropLast(r.ops, req.count)
	r.relay(req.cmd, req.data, req.player)
}

func (r *Room) isDrawer(p *Player) bool {
	return p != nil && r.players[p.id] == p && p.drawing
}

func (r *Room) findByNick(nick string) *Player {
	for _, id := range r.roster {
		if p := r.players[id]; p != nil && p.nick == nick {
			return p
		}
	}
	return nil
}

func (r *Room) standings() []protocol.RosterEntry {
	out := make([]protocol.RosterEntry, 0, len(r.roster))
	for _, id := range r.roster {
		p := r.players[id]
		out = append(out, protocol.RosterEntry{Nick: p.nick, Points: p.points})
	}
	return out
}

func matchesWord(text, word string) bool {
	word = strings.TrimSpace(word)
	return word != "" && strings.EqualFold(strings.TrimSpace(text), word)
}

// dropLast removes the last n operations; n <= 0 or n beyond the log clears it.
func dropLast(ops []json.RawMessage, n int) []json.RawMessage {
	if n <= 0 || n >= len(ops) {
		return nil
	}
	return ops[:len(ops)-n]
}

func removeID(ids []playerID, id playerID) []playerID {
	return slices.DeleteFunc(ids, func(v playerID) bool { return v == id })
}
