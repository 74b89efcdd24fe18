package handler

import (
	"net/http"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/database"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
	"github.com/lib/pq"
)

const topRankersSize = 5

// topCategories sont les catégories détaillées dans le podium
var topCategories = []model.Category{model.CategoryMushroom, model.CategoryBigFlower, model.CategorySeedling}

// GetLeaderboard récupère le classement d'une période (ALL par défaut)
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if h.Rankings == nil {
		utils.ErrorSimple(w, http.StatusServiceUnavailable, "classement indisponible")
		return
	}

	period := model.PeriodAll
	if raw := r.URL.Query().Get("period"); raw != "" {
		p, ok := model.ParsePeriod(raw)
		if !ok {
			utils.ErrorSimple(w, http.StatusBadRequest, "période invalide (ALL, WEEKLY, MONTHLY)")
			return
		}
		period = p
	}

	entries, err := h.Rankings.Leaderboard(r.Context(), period)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer le classement", err)
		return
	}

	utils.Success(w, map[string]interface{}{
		"period":  period,
		"entries": entries,
	})
}

// GetTopRankers récupère les meilleurs contributeurs de tous les temps avec leurs posts par catégorie
func (h *Handler) GetTopRankers(w http.ResponseWriter, r *http.Request) {
	if h.Rankings == nil {
		utils.ErrorSimple(w, http.StatusServiceUnavailable, "classement indisponible")
		return
	}

	ctx := r.Context()
	entries, err := h.Rankings.Leaderboard(ctx, model.PeriodAll)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer le classement", err)
		return
	}
	if len(entries) > topRankersSize {
		entries = entries[:topRankersSize]
	}

	tops := make([]model.TopRanker, len(entries))
	index := make(map[string]int, len(entries))
	ids := make([]string, len(entries))
	for i, e := range entries {
		tops[i] = model.TopRanker{RankingEntry: e, PostsByCategory: map[string]int{"total": 0}}
		for _, c := range topCategories {
			tops[i].PostsByCategory[string(c)] = 0
		}
		index[e.User.ID] = i
		ids[i] = e.User.ID
	}

	if len(ids) > 0 {
		rows, err := database.DB.Query(ctx, `
			SELECT author_id, category, COUNT(*)
			FROM coordinates
			WHERE status = 'APPROVED' AND author_id = ANY($1::uuid[])
			GROUP BY author_id, category`, pq.Array(ids))
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "impossible de compter les posts", err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var authorID, category string
			var count int
			if err := rows.Scan(&authorID, &category, &count); err != nil {
				utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
				return
			}
			top := &tops[index[authorID]]
			if _, tracked := top.PostsByCategory[category]; tracked && category != "total" {
				top.PostsByCategory[category] = count
			}
			top.PostsByCategory["total"] += count
		}
		if err := rows.Err(); err != nil {
			utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
			return
		}
	}

	utils.Success(w, tops)
}

// GetUserRanking récupère les classements d'un utilisateur sur les trois périodes
func (h *Handler) GetUserRanking(w http.ResponseWriter, r *http.Request) {
	if h.Rankings == nil {
		utils.ErrorSimple(w, http.StatusServiceUnavailable, "classement indisponible")
		return
	}
	id, ok := pathID(r, "userId")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}

	ctx := r.Context()
	var exists bool
	if err := database.DB.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1 AND deleted_at IS NULL)`, id,
	).Scan(&exists); err != nil {
		utils.Error(w, http.StatusInternalServerError, "erreur base de données", err)
		return
	}
	if !exists {
		utils.ErrorSimple(w, http.StatusNotFound, "utilisateur introuvable")
		return
	}

	rankings, err := h.Rankings.UserRankings(ctx, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer le classement", err)
		return
	}
	position, err := h.Rankings.Position(ctx, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer la position", err)
		return
	}

	utils.Success(w, map[string]interface{}{
		"userId":   id,
		"position": position,
		"rankings": rankings,
	})
}
