package publisher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"odds-aggregator/internal/domain"
)

func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start redis container")

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	require.NoError(t, client.Ping(ctx).Err())

	cleanup := func() {
		_ = client.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}
	return client, cleanup
}

func row(fixtureID int64, coef string, prev string) *domain.BestOdds {
	b := &domain.BestOdds{
		FixtureID:   fixtureID,
		MarketID:    10,
		GroupID:     1,
		CountryCode: "UA",
		BookmakerID: 7,
		Coefficient: decimal.RequireFromString(coef),
	}
	if prev != "" {
		b.PreviousCoefficient = decimal.NewNullDecimal(decimal.RequireFromString(prev))
	}
	return b
}

func TestNewChangeEvent(t *testing.T) {
	ev := NewChangeEvent(row(1, "2.10", "2.00"))
	require.NotNil(t, ev.PreviousCoefficient)
	assert.Equal(t, "2", *ev.PreviousCoefficient)
	assert.Equal(t, "2.1", ev.Coefficient)

	data, err := json.Marshal(NewChangeEvent(row(1, "1.5", "")))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"previous_coefficient":null`)
}

func TestStreamKey(t *testing.T) {
	p := NewStreamPublisher(nil, "", nil)
	assert.Equal(t, "odds.best.UA", p.StreamKey("UA"))
	assert.Equal(t, "x.DE", NewStreamPublisher(nil, "x", nil).StreamKey("DE"))
}

func TestPublishChanges_NothingChanged(t *testing.T) {
	// No changed rows means no round trip, so the unreachable client is never dialed.
	p := NewStreamPublisher(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), "", nil)
	n, err := p.PublishChanges(context.Background(), "UA", []*domain.BestOdds{row(1, "2.0", "2.0")})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPublishChanges_Redis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	client, cleanup := setupRedis(t)
	defer cleanup()
	ctx := context.Background()

	p := NewStreamPublisher(client, "odds.best", nil)
	rows := []*domain.BestOdds{
		row(1, "2.10", "2.00"), // changed
		row(2, "1.90", "1.90"), // unchanged
		row(3, "3.00", ""),     // first insert
	}

	n, err := p.PublishChanges(ctx, "UA", rows)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := client.XRange(ctx, "odds.best.UA", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var first ChangeEvent
	require.NoError(t, json.Unmarshal([]byte(entries[0].Values["data"].(string)), &first))
	assert.Equal(t, int64(1), first.FixtureID)
	assert.Equal(t, "2.1", first.Coefficient)

	var second ChangeEvent
	require.NoError(t, json.Unmarshal([]byte(entries[1].Values["data"].(string)), &second))
	assert.Equal(t, int64(3), second.FixtureID)
	assert.Nil(t, second.PreviousCoefficient)
}
