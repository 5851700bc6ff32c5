package game

import (
	"encoding/json"

	"sketchparty/internal/protocol"
)

func (r *Room) send(p *Player, cmd string, payload any) {
	frame, err := protocol.Encode(cmd, payload)
	if err != nil {
		r.log.Error().Err(err).Str("cmd", cmd).Msg("encode failed")
		return
	}
	r.deliver(p, frame)
}

// broadcast sends to every roster member except skip, in join order.
func (r *Room) broadcast(cmd string, payload any, skip *Player) {
	frame, err := protocol.Encode(cmd, payload)
	if err != nil {
		r.log.Error().Err(err).Str("cmd", cmd).Msg("encode failed")
		return
	}
	for _, id := range r.roster {
		p := r.players[id]
		if p == nil || p == skip {
			continue
		}
		r.deliver(p, frame)
	}
}

// relay forwards a drawer command to everyone else. A nil data omits the field.
func (r *Room) relay(cmd string, data json.RawMessage, from *Player) {
	var payload any
	if len(data) > 0 {
		payload = data
	}
	r.broadcast(cmd, payload, from)
}

func (r *Room) deliver(p *Player, frame []byte) {
	if err := p.conn.Send(frame); err != nil {
		r.log.Debug().Err(err).Str("player", p.nick).Msg("send dropped")
	}
}
