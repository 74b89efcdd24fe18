package ranking

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/logger"
	"go.uber.org/zap"
)

// Mode choisit quand les rangs sont retriés après un changement de score
type Mode string

const (
	// ModeEager retrie dans la requête qui a déclenché le changement
	ModeEager Mode = "eager"
	// ModeScheduled marque le classement comme périmé, Run le retrie
	ModeScheduled Mode = "scheduled"
)

// Refresher implémente RankTrigger pour les deux modes
type Refresher struct {
	assigner *Assigner
	mode     Mode
	interval time.Duration
	dirty    atomic.Bool
}

// NewRefresher crée le refresher. Un intervalle nul vaut une minute.
func NewRefresher(assigner *Assigner, mode Mode, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Refresher{assigner: assigner, mode: mode, interval: interval}
}

func (r *Refresher) Mode() Mode {
	return r.mode
}

// Dirty indique si un tri est en attente
func (r *Refresher) Dirty() bool {
	return r.dirty.Load()
}

// RanksChanged retrie tout de suite en mode eager, sinon marque le classement périmé
func (r *Refresher) RanksChanged(ctx context.Context) error {
	if r.mode == ModeEager {
		_, err := r.assigner.RecalculateRanks(ctx)
		return err
	}
	r.dirty.Store(true)
	return nil
}

// Flush retrie si un changement est en attente. En cas d'échec le classement reste périmé.
func (r *Refresher) Flush(ctx context.Context) ([]Summary, error) {
	if !r.dirty.Swap(false) {
		return nil, nil
	}
	summaries, err := r.assigner.RecalculateRanks(ctx)
	if err != nil {
		r.dirty.Store(true)
		recalcFailures.Inc()
		return nil, fmt.Errorf("scheduled recalculation: %w", err)
	}
	return summaries, nil
}

// Run lance la boucle de tri et bloque jusqu'à l'annulation de ctx.
// En mode eager il n'y a rien à planifier : retour immédiat.
func (r *Refresher) Run(ctx context.Context) error {
	if r.mode == ModeEager {
		return nil
	}

	// les rangs peuvent être périmés après un redémarrage
	r.dirty.Store(true)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logger.Info("rank refresher: running (every %s)", r.interval)

	for {
		select {
		case <-ctx.Done():
			logger.Info("rank refresher: stopped")
			return ctx.Err()
		case <-ticker.C:
			summaries, err := r.Flush(ctx)
			if err != nil {
				logger.L().Error("rank refresher failed", zap.Error(err))
				continue
			}
			for _, s := range summaries {
				if s.Rewritten > 0 {
					logger.Debug("ranks %s: %d/%d rewritten", s.Period, s.Rewritten, s.Examined)
				}
			}
		}
	}
}
