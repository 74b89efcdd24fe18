package ranking

import (
	"context"
	"fmt"
	"sort"
	"time"

	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
)

// Summary résume le travail de RecalculateRanks sur une période
type Summary struct {
	Period    model.PeriodType `json:"period"`
	Examined  int              `json:"examined"`
	Rewritten int              `json:"rewritten"`
}

// Assigner retrie chaque période et réécrit les rangs qui ont bougé
type Assigner struct {
	store Store
	loc   *time.Location
	now   func() time.Time
}

func NewAssigner(store Store, loc *time.Location) *Assigner {
	if loc == nil {
		loc = time.UTC
	}
	return &Assigner{store: store, loc: loc, now: time.Now}
}

// RecalculateRanks attribue des rangs consécutifs à partir de 1 aux lignes de la
// période courante de chaque type. Seules les lignes dont le rang change sont écrites.
func (a *Assigner) RecalculateRanks(ctx context.Context) ([]Summary, error) {
	started := time.Now()
	defer func() { recalcDuration.Observe(time.Since(started).Seconds()) }()

	now := a.now()
	summaries := make([]Summary, 0, len(model.Periods))

	for _, period := range model.Periods {
		start := PeriodStart(period, now, a.loc)

		candidates, err := a.store.Candidates(ctx, period, start)
		if err != nil {
			return summaries, fmt.Errorf("list %s rankings: %w", period, err)
		}

		updates := AssignRanks(candidates)
		if len(updates) > 0 {
			if err := a.store.UpdateRanks(ctx, updates); err != nil {
				return summaries, fmt.Errorf("update %s ranks: %w", period, err)
			}
		}

		rowsRewritten.WithLabelValues(string(period)).Add(float64(len(updates)))
		summaries = append(summaries, Summary{Period: period, Examined: len(candidates), Rewritten: len(updates)})
	}

	return summaries, nil
}

// AssignRanks trie les candidats par score décroissant. À égalité, le compte le
// plus ancien passe devant, puis l'identifiant départage. Retourne les lignes dont
// le rang diffère de leur position. La slice d'entrée est réordonnée.
func AssignRanks(candidates []Candidate) []RankUpdate {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.UserCreatedAt.Equal(b.UserCreatedAt) {
			return a.UserCreatedAt.Before(b.UserCreatedAt)
		}
		return a.UserID < b.UserID
	})

	var updates []RankUpdate
	for i := range candidates {
		rank := i + 1
		if candidates[i].Rank != rank {
			updates = append(updates, RankUpdate{RowID: candidates[i].RowID, Rank: rank})
			candidates[i].Rank = rank
		}
	}
	return updates
}
