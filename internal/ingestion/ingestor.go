// Package ingestion writes per-source odds under canonical fixture identity.
package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"odds-aggregator/internal/catalog"
	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

var (
	// ErrUnmatchedFixture is returned when odds reference a source fixture
	// without a SourceMatch. Such odds are dropped.
	ErrUnmatchedFixture = errors.New("unmatched source fixture")

	// ErrInvalidCoefficient is returned for coefficients that, rounded to
	// the stored scale, are not in (1, 1000000).
	ErrInvalidCoefficient = errors.New("invalid coefficient")
)

// Drop reasons reported by DropReason.
const (
	DropInvalidCoefficient = "invalid_coefficient"
	DropUnknownMarket      = "unknown_market"
	DropUnmatchedFixture   = "unmatched_fixture"
	DropInvalidInput       = "invalid_input"
)

// Coefficients are stored as NUMERIC(10,4).
const coefficientScale = 4

var (
	minCoefficient = decimal.NewFromInt(1)
	maxCoefficient = decimal.NewFromInt(1_000_000)
)

// normalizeCoefficient rounds c to the stored scale and checks the result
// is strictly between minCoefficient and maxCoefficient.
func normalizeCoefficient(c decimal.Decimal) (decimal.Decimal, error) {
	rounded := c.Round(coefficientScale)
	if !rounded.GreaterThan(minCoefficient) || !rounded.LessThan(maxCoefficient) {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrInvalidCoefficient, c)
	}
	return rounded, nil
}

// Ingestor upserts SourceOdds. It performs no name resolution: odds reach
// a canonical fixture only through an existing SourceMatch.
type Ingestor struct {
	sourceOdds    storage.SourceOddsStore
	sourceMatches storage.SourceMatchStore
	logger        *zap.Logger
}

// Options contains configuration for creating an Ingestor.
type Options struct {
	SourceOdds    storage.SourceOddsStore
	SourceMatches storage.SourceMatchStore

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// New creates a new odds ingestor.
func New(opts Options) *Ingestor {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Ingestor{
		sourceOdds:    opts.SourceOdds,
		sourceMatches: opts.SourceMatches,
		logger:        opts.Logger,
	}
}

// Ingest upserts one SourceOdds row keyed by (group, market, fixture,
// external fixture id, source). On conflict only the coefficient changes.
// The coefficient is rounded to four decimal places before it is stored.
func (i *Ingestor) Ingest(ctx context.Context, sc catalog.SourceContext, fixtureID, groupID, marketID int64, coefficient decimal.Decimal, externalFixtureID string) error {
	coefficient, err := normalizeCoefficient(coefficient)
	if err != nil {
		return err
	}

	err = i.sourceOdds.Upsert(ctx, &domain.SourceOdds{
		GroupID:                 groupID,
		MarketID:                marketID,
		FixtureID:               fixtureID,
		ExternalSourceFixtureID: externalFixtureID,
		SourceID:                sc.Source.ID,
		Coefficient:             coefficient,
	})
	if err != nil {
		return fmt.Errorf("upsert source odds: %w", err)
	}
	return nil
}

// IngestRaw validates, maps and ingests one adapter record:
// coefficient check, catalog lookup, SourceMatch lookup, then Ingest.
// Dropped records return ErrInvalidCoefficient, catalog.ErrUnknownMarket
// or ErrUnmatchedFixture.
func (i *Ingestor) IngestRaw(ctx context.Context, sc catalog.SourceContext, raw domain.RawOdds) error {
	log := i.logger.With(
		zap.String("source", sc.Source.Name),
		zap.String("source_fixture_id", raw.SourceFixtureID),
		zap.String("group", raw.GroupName),
		zap.String("outcome", raw.OutcomeCode),
	)

	if _, err := normalizeCoefficient(raw.Coefficient); err != nil {
		log.Debug("drop odds: invalid coefficient", zap.Stringer("coefficient", raw.Coefficient))
		return err
	}

	market, err := sc.Catalog.Market(raw.GroupName, raw.OutcomeCode)
	if err != nil {
		log.Debug("drop odds: unknown market")
		return err
	}

	match, err := i.sourceMatches.GetBySourceFixture(ctx, sc.Source.ID, raw.SourceFixtureID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Debug("drop odds: unmatched fixture")
			return fmt.Errorf("%w: %s", ErrUnmatchedFixture, raw.SourceFixtureID)
		}
		return fmt.Errorf("get source match: %w", err)
	}

	return i.Ingest(ctx, sc, match.FixtureID, market.GroupID, market.MarketID, raw.Coefficient, raw.SourceFixtureID)
}

// BatchResult counts the outcome of IngestBatch.
type BatchResult struct {
	Ingested int
	Dropped  map[string]int // by drop reason
}

// IngestBatch sorts odds deterministically and ingests each record.
// Drops are counted, not returned. A row the store rejects as invalid is a
// drop too; any other storage failure aborts the batch.
func (i *Ingestor) IngestBatch(ctx context.Context, sc catalog.SourceContext, odds []domain.RawOdds) (BatchResult, error) {
	result := BatchResult{Dropped: make(map[string]int)}
	SortRawOdds(odds)

	for _, raw := range odds {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		err := i.IngestRaw(ctx, sc, raw)
		if err == nil {
			result.Ingested++
			continue
		}
		reason := DropReason(err)
		if reason == "" {
			return result, err
		}
		if reason == DropInvalidInput {
			i.logger.Warn("drop odds: rejected by store",
				zap.String("source", sc.Source.Name),
				zap.String("source_fixture_id", raw.SourceFixtureID),
				zap.Error(err))
		}
		result.Dropped[reason]++
	}

	if n := result.Dropped[DropUnmatchedFixture]; n > 0 {
		i.logger.Info("odds dropped for unmatched fixtures",
			zap.String("source", sc.Source.Name), zap.Int("count", n))
	}
	return result, nil
}

// DropReason classifies an IngestRaw error, or returns "" if it is not a drop.
func DropReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCoefficient):
		return DropInvalidCoefficient
	case errors.Is(err, catalog.ErrUnknownMarket):
		return DropUnknownMarket
	case errors.Is(err, ErrUnmatchedFixture):
		return DropUnmatchedFixture
	case errors.Is(err, storage.ErrInvalidInput):
		return DropInvalidInput
	default:
		return ""
	}
}
