package ranking

import (
	"context"
	"time"

	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
)

// Candidate est la projection d'une ligne utile au tri d'une période
type Candidate struct {
	RowID         string
	UserID        string
	Score         int
	Rank          int
	UserCreatedAt time.Time
}

// RankUpdate réécrit le rang d'une ligne
type RankUpdate struct {
	RowID string
	Rank  int
}

// Store persiste l'état du classement par membre et par période
type Store interface {
	// GetOrCreate retourne la ligne, en insère une à zéro si absente
	GetOrCreate(ctx context.Context, userID string, period model.PeriodType, start time.Time) (*model.Ranking, error)
	// SaveCounters enregistre compteurs et score sans toucher au rang
	SaveCounters(ctx context.Context, r *model.Ranking) error
	// Candidates liste les lignes de la période, sans les comptes supprimés
	Candidates(ctx context.Context, period model.PeriodType, start time.Time) ([]Candidate, error)
	// UpdateRanks écrit les rangs en un aller-retour
	UpdateRanks(ctx context.Context, updates []RankUpdate) error
	// Top liste par rang les lignes classées ayant au moins un post approuvé
	Top(ctx context.Context, period model.PeriodType, start time.Time, limit int) ([]model.RankingEntry, error)
	// ForUser retourne les lignes du membre pour les débuts de période donnés
	ForUser(ctx context.Context, userID string, starts map[model.PeriodType]time.Time) ([]model.Ranking, error)
	// RankOf retourne le rang du membre, 0 s'il n'est pas classé ou n'a aucun post approuvé
	RankOf(ctx context.Context, userID string, period model.PeriodType, start time.Time) (int, error)
}

// CounterSource calcule les compteurs bruts d'un membre depuis les tables de référence.
// since nil : aucune borne de temps.
type CounterSource interface {
	Counters(ctx context.Context, userID string, since *time.Time) (model.RankingCounters, error)
}
