package game

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"sketchparty/internal/protocol"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const inboxSize = 256

type loginRequest struct {
	conn  Conn
	nick  string
	reply chan loginResult
}

type loginResult struct {
	player *Player
	err    error
}

type leaveRequest struct{ player *Player }

type chatMessage struct {
	player *Player
	text   string
}

type drawOperation struct {
	player *Player
	op     json.RawMessage
}

type undoRequest struct {
	player *Player
	cmd    string
	data   json.RawMessage
	count  int
}

type roundTick struct{ gen uint64 }

type roundAdvance struct{ gen uint64 }

type snapshotRequest struct{ reply chan Snapshot }

// Room serializes every action on one game through its inbox. All fields
// below the inbox are touched only by the Run goroutine.
type Room struct {
	cfg    Config
	words  WordSource
	scores ScoreSink
	log    zerolog.Logger

	inbox    chan any
	quit     chan struct{}
	done     chan struct{}
	started  atomic.Bool
	stopOnce sync.Once
	tasks    sync.WaitGroup

	nextID    playerID
	players   map[playerID]*Player
	roster    []playerID
	pool      []playerID
	drawer    playerID
	word      string
	ops       []json.RawMessage
	countdown int
	paused    bool

	timerGen     uint64
	roundTimer   *time.Timer
	advanceTimer *time.Timer
	advancing    bool
}

// NewRoom builds a paused, empty room. scores may be nil.
func NewRoom(cfg Config, words WordSource, scores ScoreSink) *Room {
	cfg = cfg.withDefaults()
	return &Room{
		cfg:     cfg,
		words:   words,
		scores:  scores,
		log:     log.With().Str("room", cfg.Name).Logger(),
		inbox:   make(chan any, inboxSize),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		players: make(map[playerID]*Player),
		paused:  true,
	}
}

func (r *Room) Name() string { return r.cfg.Name }

// Run processes the inbox until Stop is called.
func (r *Room) Run() {
	r.started.Store(true)
	defer close(r.done)
	for {
		select {
		case <-r.quit:
			r.shutdown()
			return
		case ev := <-r.inbox:
			r.handle(ev)
		}
	}
}

// Stop tears the room down: timers are cancelled and every player connection
// is closed. It waits for Run to return and for pending score submissions.
func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
	if r.started.Load() {
		<-r.done
	}
	r.tasks.Wait()
}

// Login asks the room to admit conn under nick. On rejection the room has
// already told the connection why and closed it.
func (r *Room) Login(conn Conn, nick string) (*Player, error) {
	req := loginRequest{conn: conn, nick: nick, reply: make(chan loginResult, 1)}
	if !r.post(req) {
		return nil, ErrRoomClosed
	}
	select {
	case res := <-req.reply:
		return res.player, res.err
	case <-r.done:
		return nil, ErrRoomClosed
	}
}

// Leave removes p from the room. Leaving twice is harmless.
func (r *Room) Leave(p *Player) {
	if p != nil {
		r.post(leaveRequest{player: p})
	}
}

func (r *Room) Chat(p *Player, text string) {
	r.post(chatMessage{player: p, text: text})
}

func (r *Room) Draw(p *Player, op json.RawMessage) {
	r.post(drawOperation{player: p, op: op})
}

// Undo drops the last count operations, or all of them when count <= 0. cmd
// and data are relayed to the other players as received.
func (r *Room) Undo(p *Player, cmd string, data json.RawMessage, count int) {
	r.post(undoRequest{player: p, cmd: cmd, data: data, count: count})
}

func (r *Room) Snapshot() (Snapshot, error) {
	req := snapshotRequest{reply: make(chan Snapshot, 1)}
	if !r.post(req) {
		return Snapshot{}, ErrRoomClosed
	}
	select {
	case snap := <-req.reply:
		return snap, nil
	case <-r.done:
		return Snapshot{}, ErrRoomClosed
	}
}

func (r *Room) post(ev any) bool {
	select {
	case <-r.quit:
		return false
	default:
	}
	select {
	case r.inbox <- ev:
		return true
	case <-r.quit:
		return false
	}
}

func (r *Room) handle(ev any) {
	switch ev := ev.(type) {
	case loginRequest:
		r.admit(ev)
	case leaveRequest:
		r.depart(ev.player)
	case chatMessage:
		r.chat(ev.player, ev.text)
	case drawOperation:
		r.draw(ev.player, ev.op)
	case undoRequest:
		r.undo(ev)
	case roundTick:
		r.tick(ev.gen)
	case roundAdvance:
		r.advance(ev.gen)
	case snapshotRequest:
		ev.reply <- r.snapshot()
	default:
		r.log.Warn().Msgf("unknown room event %T", ev)
	}
}

func (r *Room) shutdown() {
	r.cancelTimers()
	for _, id := range r.roster {
		if p := r.players[id]; p != nil {
			p.conn.Close(protocol.CloseNormal, protocol.ReasonShutdown)
		}
	}
	r.players = make(map[playerID]*Player)
	r.roster = nil
	r.pool = nil
	r.drawer = 0
	r.word = ""
	r.ops = nil
	r.paused = true
	// Drain requests that raced with shutdown so their callers are released.
	for {
		select {
		case ev := <-r.inbox:
			if req, ok := ev.(loginRequest); ok {
				req.conn.Close(protocol.CloseNormal, protocol.ReasonShutdown)
				req.reply <- loginResult{err: ErrRoomClosed}
			}
		default:
			r.log.Info().Msg("room stopped")
			return
		}
	}
}

func (r *Room) snapshot() Snapshot {
	snap := Snapshot{
		Name:         r.cfg.Name,
		Players:      len(r.roster),
		MinPlayers:   r.cfg.MinPlayers,
		MaxPlayers:   r.cfg.MaxPlayers,
		RoundSeconds: r.cfg.RoundSeconds,
		Active:       !r.paused,
		Countdown:    r.countdown,
		Standings:    r.standings(),
	}
	if d := r.players[r.drawer]; d != nil {
		snap.Drawer = d.nick
	}
	return snap
}
