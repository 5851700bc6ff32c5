// Package protocol holds the wire vocabulary spoken between sketch clients and
// the room server: a JSON envelope per WebSocket text frame.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	CmdHowdy        = "HOWDY"
	CmdGdayMate     = "GDAYMATE"
	CmdLogin        = "LEMMEIN"
	CmdLoginOK      = "CMONIN"
	CmdFullHouse    = "FULLHOUSE"
	CmdDoppelganger = "DOPPELGANGER"
	CmdJoined       = "PEEKABOO"
	CmdLeft         = "SKEDADDLE"
	CmdRoster       = "POSSE"
	CmdWait         = "SHUTEYE"
	CmdDrawer       = "THEYREIT"
	CmdYoureIt      = "YOUREIT"
	CmdCountdown    = "TMINUS"
	CmdCatchUp      = "DOODLES"
	CmdDraw         = "DOODLE"
	CmdUndo         = "OOPS"
	CmdClear        = "SCRAP"
	CmdChat         = "QUOTH"
	CmdGotIt        = "GOTIT"
	CmdBust         = "ITSABUST"
	CmdLeave        = "SEEYA"
)

const (
	CloseNormal        = 1000
	CloseProtocolError = 1002

	ReasonInvalidHandshake = "Invalid handshake"
	ReasonShutdown         = "Server shutting down"
)

var ErrMissingCommand = errors.New("envelope has no cmd")

type Envelope struct {
	Cmd  string          `json:"cmd"`
	Data json.RawMessage `json:"data,omitempty"`
}

type RosterEntry struct {
	Nick   string `json:"nick"`
	Points int    `json:"points"`
}

type ChatLine struct {
	Type string `json:"type"`
	Nick string `json:"nick"`
	Text string `json:"text"`
}

type Guessed struct {
	Nick string `json:"nick"`
	Word string `json:"word"`
}

// Encode builds one frame. A nil payload omits the data field.
func Encode(cmd string, payload any) ([]byte, error) {
	env := Envelope{Cmd: cmd}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", cmd, err)
		}
		env.Data = raw
	}
	return json.Marshal(env)
}

func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, err
	}
	if env.Cmd == "" {
		return Envelope{}, ErrMissingCommand
	}
	return env, nil
}

// DecodePayload unmarshals the data field into T. A missing field is an error.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return out, fmt.Errorf("%s: missing data", env.Cmd)
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("%s: %w", env.Cmd, err)
	}
	return out, nil
}
