package ranking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/config"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/logger"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
)

// Service expose le classement aux handlers et aux commandes
type Service struct {
	*Aggregator
	assigner  *Assigner
	refresher *Refresher
	store     Store
	loc       *time.Location
	now       func() time.Time
	limit     int
}

// NewService résout la table des poids et assemble agrégateur, tri et refresher
func NewService(store Store, source CounterSource, cfg config.RankingConfig) (*Service, error) {
	weights, conflicts, err := ResolveWeights(cfg.Weights)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		parts := make([]string, len(conflicts))
		for i, c := range conflicts {
			parts[i] = c.String()
		}
		logger.Warning("ranking weights differ from presets, confirm with product: %s", strings.Join(parts, ", "))
	}

	mode := Mode(cfg.RefreshMode)
	if mode != ModeEager && mode != ModeScheduled {
		return nil, fmt.Errorf("unknown refresh mode %q", cfg.RefreshMode)
	}

	loc := cfg.Location()
	assigner := NewAssigner(store, loc)
	refresher := NewRefresher(assigner, mode, cfg.ParseRefreshInterval())

	limit := cfg.ListLimit
	if limit <= 0 {
		limit = 100
	}

	return &Service{
		Aggregator: NewAggregator(store, source, weights, loc, refresher),
		assigner:   assigner,
		refresher:  refresher,
		store:      store,
		loc:        loc,
		now:        time.Now,
		limit:      limit,
	}, nil
}

// SetClock remplace l'horloge de tous les composants
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
	s.Aggregator.now = now
	s.assigner.now = now
}

func (s *Service) Refresher() *Refresher {
	return s.refresher
}

// RecalculateRanks retrie toutes les périodes maintenant, quel que soit le mode
func (s *Service) RecalculateRanks(ctx context.Context) ([]Summary, error) {
	return s.assigner.RecalculateRanks(ctx)
}

// Leaderboard retourne le haut du classement courant d'une période
func (s *Service) Leaderboard(ctx context.Context, period model.PeriodType) ([]model.RankingEntry, error) {
	start := PeriodStart(period, s.now(), s.loc)
	entries, err := s.store.Top(ctx, period, start, s.limit)
	if err != nil {
		return nil, fmt.Errorf("list %s leaderboard: %w", period, err)
	}
	return entries, nil
}

// UserRankings retourne les lignes du membre pour les périodes ALL, WEEKLY et MONTHLY courantes
func (s *Service) UserRankings(ctx context.Context, userID string) ([]model.Ranking, error) {
	now := s.now()
	starts := make(map[model.PeriodType]time.Time, len(model.Periods))
	for _, p := range model.Periods {
		starts[p] = PeriodStart(p, now, s.loc)
	}
	return s.store.ForUser(ctx, userID, starts)
}

// Position retourne la place du membre sur le podium ALL (1, 2 ou 3), sinon 0
func (s *Service) Position(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, nil
	}
	rank, err := s.store.RankOf(ctx, userID, model.PeriodAll, PeriodStart(model.PeriodAll, s.now(), s.loc))
	if err != nil {
		return 0, err
	}
	if rank < 1 || rank > 3 {
		return 0, nil
	}
	return rank, nil
}

// AllTimeRank retourne le rang ALL du membre, 0 s'il n'est pas classé
func (s *Service) AllTimeRank(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, nil
	}
	return s.store.RankOf(ctx, userID, model.PeriodAll, PeriodStart(model.PeriodAll, s.now(), s.loc))
}
