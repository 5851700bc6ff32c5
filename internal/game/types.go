// Package game runs sketch rooms: one actor goroutine per room owns the
// roster, drawer rotation, secret word, drawing log and round timers.
package game

import (
	"context"
	"errors"
	"time"

	"sketchparty/internal/protocol"
)

var (
	ErrRoomFull   = errors.New("room is full")
	ErrNameTaken  = errors.New("nickname already in use")
	ErrRoomClosed = errors.New("room is closed")
)

// Conn is the outbound half of a player's connection. Send must not block;
// implementations queue the frame and report an error when they cannot.
type Conn interface {
	Send(frame []byte) error
	Close(code int, reason string)
}

type WordSource interface {
	Next() string
}

// Outcome is one solved round as handed to a ScoreSink.
type Outcome struct {
	Room          string    `json:"room"`
	Guesser       string    `json:"guesser"`
	Drawer        string    `json:"drawer"`
	Word          string    `json:"word"`
	GuesserPoints int       `json:"guesserPoints"`
	DrawerPoints  int       `json:"drawerPoints"`
	SolvedAt      time.Time `json:"solvedAt"`
}

type ScoreSink interface {
	RecordRound(ctx context.Context, outcome Outcome) error
}

type Config struct {
	Name         string
	MinPlayers   int
	MaxPlayers   int
	RoundSeconds int
	AdvanceDelay time.Duration

	// TickInterval is the length of one countdown second. Zero means time.Second.
	TickInterval time.Duration
	ScoreTimeout time.Duration
	OnScoreError func(Outcome, error)
}

func (c Config) withDefaults() Config {
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.ScoreTimeout <= 0 {
		c.ScoreTimeout = 5 * time.Second
	}
	if c.MaxPlayers <= 0 {
		c.MaxPlayers = 10
	}
	if c.RoundSeconds <= 0 {
		c.RoundSeconds = 60
	}
	return c
}

// Snapshot is a read-only view of a room for listings.
type Snapshot struct {
	Name         string                 `json:"name"`
	Players      int                    `json:"numPlayers"`
	MinPlayers   int                    `json:"minPlayers"`
	MaxPlayers   int                    `json:"maxPlayers"`
	RoundSeconds int                    `json:"timeout"`
	Active       bool                   `json:"active"`
	Drawer       string                 `json:"drawer,omitempty"`
	Countdown    int                    `json:"countdown"`
	Standings    []protocol.RosterEntry `json:"standings"`
}
