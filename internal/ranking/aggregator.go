package ranking

import (
	"context"
	"fmt"
	"time"

	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
)

// RankTrigger est prévenu après un changement de compteurs pour rafraîchir les rangs
type RankTrigger interface {
	RanksChanged(ctx context.Context) error
}

// Aggregator recalcule les compteurs et le score d'un membre pour chaque période
type Aggregator struct {
	store   Store
	source  CounterSource
	weights Weights
	loc     *time.Location
	now     func() time.Time
	trigger RankTrigger
}

// NewAggregator crée l'agrégateur. trigger peut être nil.
func NewAggregator(store Store, source CounterSource, weights Weights, loc *time.Location, trigger RankTrigger) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{
		store:   store,
		source:  source,
		weights: weights,
		loc:     loc,
		now:     time.Now,
		trigger: trigger,
	}
}

// UpdateUserRanking rafraîchit les lignes ALL, WEEKLY et MONTHLY du membre puis
// prévient le déclencheur. Un identifiant vide ne fait rien.
func (a *Aggregator) UpdateUserRanking(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}

	now := a.now()
	for _, period := range model.Periods {
		start := PeriodStart(period, now, a.loc)

		row, err := a.store.GetOrCreate(ctx, userID, period, start)
		if err != nil {
			return fmt.Errorf("get ranking %s for user %s: %w", period, userID, err)
		}

		var since *time.Time
		if period != model.PeriodAll {
			since = &start
		}

		counters, err := a.source.Counters(ctx, userID, since)
		if err != nil {
			return fmt.Errorf("count %s activity for user %s: %w", period, userID, err)
		}

		row.RankingCounters = counters
		row.Score = a.weights.Score(counters)
		row.UpdatedAt = now

		if err := a.store.SaveCounters(ctx, row); err != nil {
			return fmt.Errorf("save ranking %s for user %s: %w", period, userID, err)
		}
		rankingUpdates.WithLabelValues(string(period)).Inc()
	}

	if a.trigger == nil {
		return nil
	}
	return a.trigger.RanksChanged(ctx)
}
