// Package scores persists solved rounds and serves the hiscore table.
package scores

import (
	"context"
	"errors"

	"sketchparty/internal/game"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Entry is one hiscore line. Timestamp is the last update in Unix milliseconds.
type Entry struct {
	Nick      string `json:"nick"`
	Score     int    `json:"score"`
	Timestamp int64  `json:"timestamp"`
}

type Leaderboard interface {
	Top(ctx context.Context, limit int) ([]Entry, error)
}

// Multi fans one outcome out to several sinks. Every sink is tried; the
// failures are joined.
type Multi []game.ScoreSink

func (m Multi) RecordRound(ctx context.Context, outcome game.Outcome) error {
	var errs []error
	for _, sink := range m {
		if err := sink.RecordRound(ctx, outcome); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ClampLimit maps a requested listing size onto [1, MaxLimit], defaulting
// non-positive values.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
