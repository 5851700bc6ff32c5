package scores

import (
	"context"
	"testing"
	"time"

	"sketchparty/internal/game"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("skipping test; redis container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client, err := OpenRedis(endpoint, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisBoard(t *testing.T) {
	client := newTestRedis(t)
	board := NewRedisBoard(client, "test:hiscores")
	ctx := context.Background()

	empty, err := board.Top(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	solved := time.Date(2026, 10, 2, 9, 30, 0, 0, time.UTC)
	require.NoError(t, board.RecordRound(ctx, game.Outcome{Guesser: "bob", Drawer: "ada", GuesserPoints: 6, DrawerPoints: 3, SolvedAt: solved}))
	require.NoError(t, board.RecordRound(ctx, game.Outcome{Guesser: "bob", Drawer: "cy", GuesserPoints: 4, DrawerPoints: 2, SolvedAt: solved}))

	top, err := board.Top(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Nick: "bob", Score: 10, Timestamp: solved.UnixMilli()},
		{Nick: "ada", Score: 3, Timestamp: solved.UnixMilli()},
	}, top)
}
