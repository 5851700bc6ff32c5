package scores

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"sketchparty/internal/game"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DefaultRedisKey = "sketchparty:hiscores"

// RedisBoard mirrors hiscores into a sorted set so listings stay cheap.
type RedisBoard struct {
	client *redis.Client
	key    string
}

// OpenRedis connects and pings the server.
func OpenRedis(addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	log.Info().Str("addr", addr).Msg("redis connected")
	return client, nil
}

func NewRedisBoard(client *redis.Client, key string) *RedisBoard {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisBoard{client: client, key: key}
}

func (b *RedisBoard) seenKey() string { return b.key + ":updated" }

func (b *RedisBoard) RecordRound(ctx context.Context, outcome game.Outcome) error {
	now := outcome.SolvedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	stamp := now.UnixMilli()
	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZIncrBy(ctx, b.key, float64(outcome.GuesserPoints), outcome.Guesser)
		pipe.ZIncrBy(ctx, b.key, float64(outcome.DrawerPoints), outcome.Drawer)
		pipe.HSet(ctx, b.seenKey(), outcome.Guesser, stamp, outcome.Drawer, stamp)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hiscores: %w", err)
	}
	return nil
}

func (b *RedisBoard) Top(ctx context.Context, limit int) ([]Entry, error) {
	limit = ClampLimit(limit)
	members, err := b.client.ZRevRangeWithScores(ctx, b.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []Entry{}, nil
	}
	nicks := make([]string, 0, len(members))
	for _, m := range members {
		nicks = append(nicks, fmt.Sprint(m.Member))
	}
	stamps, err := b.client.HMGet(ctx, b.seenKey(), nicks...).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(members))
	for i, m := range members {
		entry := Entry{Nick: nicks[i], Score: int(m.Score)}
		if raw, ok := stamps[i].(string); ok {
			entry.Timestamp, _ = strconv.ParseInt(raw, 10, 64)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
