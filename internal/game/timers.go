package game

import (
	"time"
)

// cancelTimers stops both timers and bumps the generation so that firings
// already queued in the inbox are ignored.
func (r *Room) cancelTimers() {
	r.timerGen++
	if r.roundTimer != nil {
		r.roundTimer.Stop()
		r.roundTimer = nil
	}
	if r.advanceTimer != nil {
		r.advanceTimer.Stop()
		r.advanceTimer = nil
	}
	r.advancing = false
}

func (r *Room) armTick() {
	gen := r.timerGen
	r.roundTimer = time.AfterFunc(r.cfg.TickInterval, func() {
		r.post(roundTick{gen: gen})
	})
}

// scheduleAdvance ends the outgoing drawer's turn and starts the next round
// after the configured delay. The caller has already cancelled the tick.
func (r *Room) scheduleAdvance() {
	if d := r.players[r.drawer]; d != nil {
		d.drawing = false
	}
	r.drawer = 0
	r.word = ""
	r.advancing = true
	gen := r.timerGen
	r.advanceTimer = time.AfterFunc(r.cfg.AdvanceDelay, func() {
		r.post(roundAdvance{gen: gen})
	})
}

// pause drops the room to the waiting state with nothing armed.
func (r *Room) pause() {
	r.cancelTimers()
	if d := r.players[r.drawer]; d != nil {
		d.drawing = false
	}
	r.drawer = 0
	r.word = ""
	r.paused = true
}
