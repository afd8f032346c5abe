// Package publisher emits best-odds change events to Redis Streams.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"odds-aggregator/internal/domain"
)

// DefaultStreamPrefix is used when no prefix is configured.
const DefaultStreamPrefix = "odds.best"

// ChangeEvent is the payload of one stream entry.
type ChangeEvent struct {
	FixtureID           int64   `json:"fixture_id"`
	MarketID            int64   `json:"market_id"`
	GroupID             int64   `json:"group_id"`
	CountryCode         string  `json:"country_code"`
	BookmakerID         int64   `json:"bookmaker_id"`
	Coefficient         string  `json:"coefficient"`
	PreviousCoefficient *string `json:"previous_coefficient"`
}

// NewChangeEvent converts a stored best odds row into an event.
func NewChangeEvent(b *domain.BestOdds) ChangeEvent {
	ev := ChangeEvent{
		FixtureID:   b.FixtureID,
		MarketID:    b.MarketID,
		GroupID:     b.GroupID,
		CountryCode: b.CountryCode,
		BookmakerID: b.BookmakerID,
		Coefficient: b.Coefficient.String(),
	}
	if b.PreviousCoefficient.Valid {
		prev := b.PreviousCoefficient.Decimal.String()
		ev.PreviousCoefficient = &prev
	}
	return ev
}

// StreamPublisher publishes change events to <prefix>.<country_code>.
type StreamPublisher struct {
	redis  redis.Cmdable
	prefix string
	logger *zap.Logger
}

// NewStreamPublisher creates a new stream publisher.
func NewStreamPublisher(client redis.Cmdable, prefix string, logger *zap.Logger) *StreamPublisher {
	if prefix == "" {
		prefix = DefaultStreamPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamPublisher{redis: client, prefix: prefix, logger: logger}
}

// StreamKey returns the stream a country's events go to.
func (p *StreamPublisher) StreamKey(countryCode string) string {
	return fmt.Sprintf("%s.%s", p.prefix, countryCode)
}

// PublishChanges publishes one event per changed row in a single pipeline.
// Unchanged rows are skipped. Returns the number of events published.
func (p *StreamPublisher) PublishChanges(ctx context.Context, countryCode string, rows []*domain.BestOdds) (int, error) {
	pipe := p.redis.Pipeline()
	streamKey := p.StreamKey(countryCode)

	queued := 0
	for _, b := range rows {
		if !b.Changed() {
			continue
		}
		data, err := json.Marshal(NewChangeEvent(b))
		if err != nil {
			p.logger.Warn("marshal change event",
				zap.Int64("fixture_id", b.FixtureID),
				zap.Error(err))
			continue
		}
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: streamKey,
			Values: map[string]interface{}{
				"data": string(data),
			},
		})
		queued++
	}
	if queued == 0 {
		return 0, nil
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("publish to stream %s: %w", streamKey, err)
	}
	return queued, nil
}
