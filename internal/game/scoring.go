package game

import (
	"context"
	"math"
)

// GuesserPoints rewards speed: floor(10 * remaining / duration + 1).
func GuesserPoints(remaining, duration int) int {
	if duration <= 0 {
		return 1
	}
	if remaining < 0 {
		remaining = 0
	}
	return int(math.Floor(10*float64(remaining)/float64(duration) + 1))
}

func DrawerPoints(guesserPoints int) int {
	return int(math.Floor(float64(guesserPoints) / 2))
}

func (r *Room) submitScore(outcome Outcome) {
	if r.scores == nil {
		return
	}
	r.tasks.Add(1)
	go func() {
		defer r.tasks.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.ScoreTimeout)
		defer cancel()
		if err := r.scores.RecordRound(ctx, outcome); err != nil {
			r.log.Error().Err(err).Str("player", outcome.Guesser).Str("word", outcome.Word).Msg("record round failed")
			if r.cfg.OnScoreError != nil {
				r.cfg.OnScoreError(outcome, err)
			}
		}
	}()
}
