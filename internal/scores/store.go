package scores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sketchparty/internal/db"
	"sketchparty/internal/game"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxAttempts = 3

// Store keeps hiscores and the round log in Postgres.
type Store struct {
	db *gorm.DB
}

func NewStore(conn *gorm.DB) *Store {
	return &Store{db: conn}
}

// RecordRound credits both players and logs the round in one transaction,
// so a failed write leaves no partial credit behind.
func (s *Store) RecordRound(ctx context.Context, outcome game.Outcome) error {
	now := outcome.SolvedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	payload, err := json.Marshal(outcome)
	if err != nil {
		return err
	}
	round := db.Round{
		Room:          outcome.Room,
		Guesser:       outcome.Guesser,
		Drawer:        outcome.Drawer,
		Word:          outcome.Word,
		GuesserPoints: outcome.GuesserPoints,
		DrawerPoints:  outcome.DrawerPoints,
		Payload:       datatypes.JSON(payload),
		CreatedAt:     now,
	}

	for attempt := 1; ; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, c := range credits(outcome) {
				if err := addPoints(tx, c.nick, c.points, now); err != nil {
					return fmt.Errorf("credit %s: %w", c.nick, err)
				}
			}
			row := round
			return tx.Create(&row).Error
		})
		if err == nil || attempt >= maxAttempts || !isRetryable(err) {
			return err
		}
	}
}

func (s *Store) Top(ctx context.Context, limit int) ([]Entry, error) {
	var rows []db.Score
	err := s.db.WithContext(ctx).
		Order("score DESC").
		Order("updated_at ASC").
		Limit(ClampLimit(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{Nick: row.Nick, Score: row.Score, Timestamp: row.UpdatedAt.UnixMilli()})
	}
	return entries, nil
}

// Rounds returns the most recent solved rounds of a room, newest first.
func (s *Store) Rounds(ctx context.Context, room string, limit int) ([]game.Outcome, error) {
	var rows []db.Round
	err := s.db.WithContext(ctx).
		Where("room = ?", room).
		Order("created_at DESC").
		Order("id DESC").
		Limit(ClampLimit(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]game.Outcome, 0, len(rows))
	for _, row := range rows {
		var outcome game.Outcome
		if err := json.Unmarshal(row.Payload, &outcome); err != nil {
			return nil, fmt.Errorf("round %d payload: %w", row.ID, err)
		}
		out = append(out, outcome)
	}
	return out, nil
}

type credit struct {
	nick   string
	points int
}

// credits orders the two score rows by nick so concurrent rounds between the
// same pair lock them in the same order.
func credits(outcome game.Outcome) []credit {
	out := []credit{
		{nick: outcome.Guesser, points: outcome.GuesserPoints},
		{nick: outcome.Drawer, points: outcome.DrawerPoints},
	}
	if out[1].nick < out[0].nick {
		out[0], out[1] = out[1], out[0]
	}
	return out
}

// addPoints credits nick, creating the row on first score.
func addPoints(tx *gorm.DB, nick string, points int, now time.Time) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "nick"}},
		DoUpdates: clause.Assignments(map[string]any{
			"score":      gorm.Expr("scores.score + ?", points),
			"updated_at": now,
		}),
	}).Create(&db.Score{Nick: nick, Score: points, CreatedAt: now, UpdatedAt: now}).Error
}

// isRetryable reports Postgres deadlock and serialization failures.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40P01" || pgErr.Code == "40001"
	}
	return false
}
