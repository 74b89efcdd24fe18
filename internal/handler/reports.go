package handler

import (
	"net/http"
	"strings"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/database"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/middleware"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/scanner"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
)

const reportFrom = `
	FROM reports r
	LEFT JOIN users u ON u.id = r.reporter_id`

func (h *Handler) ReportCoordinate(w http.ResponseWriter, r *http.Request) {
	h.createReport(w, r, "coordinate_id", "coordinates")
}

func (h *Handler) ReportComment(w http.ResponseWriter, r *http.Request) {
	h.createReport(w, r, "comment_id", "comments")
}

// createReport signale un post ou un commentaire. Un seul signalement par cible et par membre.
func (h *Handler) createReport(w http.ResponseWriter, r *http.Request, column, table string) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "utilisateur non authentifié", err)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}
	var req model.CreateReportRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	ctx := r.Context()
	var exists bool
	if err := database.DB.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM `+table+` WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		utils.Error(w, http.StatusInternalServerError, "erreur base de données", err)
		return
	}
	if !exists {
		utils.ErrorSimple(w, http.StatusNotFound, "contenu introuvable")
		return
	}

	var reportID string
	err = database.DB.QueryRow(ctx,
		`INSERT INTO reports (reporter_id, `+column+`, reason, description)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		user.ID, id, string(req.Reason), strings.TrimSpace(req.Description),
	).Scan(&reportID)
	if database.IsUniqueViolation(err) {
		utils.ErrorSimple(w, http.StatusConflict, "vous avez déjà signalé ce contenu")
		return
	}
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible d'enregistrer le signalement", err)
		return
	}

	report, err := scanner.ScanReport(database.DB.QueryRow(ctx,
		`SELECT `+scanner.ReportColumns+reportFrom+` WHERE r.id = $1`, reportID))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de relire le signalement", err)
		return
	}
	utils.Created(w, report)
}

// ListReports liste les signalements par statut (PENDING par défaut)
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	status := model.ReportStatus(strings.ToUpper(r.URL.Query().Get("status")))
	switch status {
	case model.ReportPending, model.ReportResolved, model.ReportDismissed:
	default:
		status = model.ReportPending
	}
	page, size := utils.Pagination(r, 20, 100)

	ctx := r.Context()
	var total int
	if err := database.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM reports WHERE status = $1`, string(status),
	).Scan(&total); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de compter les signalements", err)
		return
	}

	rows, err := database.DB.Query(ctx,
		`SELECT `+scanner.ReportColumns+reportFrom+`
		 WHERE r.status = $1
		 ORDER BY r.created_at DESC
		 LIMIT $2 OFFSET $3`, string(status), size, (page-1)*size)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les signalements", err)
		return
	}
	defer rows.Close()

	items := []model.Report{}
	for rows.Next() {
		report, err := scanner.ScanReport(rows)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
			return
		}
		items = append(items, *report)
	}
	if err := rows.Err(); err != nil {
		utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
		return
	}

	utils.Success(w, model.Page[model.Report]{
		Items:    items,
		Page:     page,
		PageSize: size,
		Total:    total,
		HasNext:  page*size < total,
	})
}

// ResolveReport traite un signalement en attente.
// resolve : le post est rejeté ou le commentaire supprimé. dismiss : rien n'est modifié.
func (h *Handler) ResolveReport(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "utilisateur non authentifié", err)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}
	var req model.ResolveReportRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	ctx := r.Context()
	report, err := scanner.ScanReport(database.DB.QueryRow(ctx,
		`SELECT `+scanner.ReportColumns+reportFrom+` WHERE r.id = $1`, id))
	if err != nil {
		dbError(w, err, "signalement introuvable")
		return
	}
	if report.Status != model.ReportPending {
		utils.ErrorSimple(w, http.StatusBadRequest, "signalement déjà traité")
		return
	}

	status := model.ReportDismissed
	var rejectedAuthor *string
	if req.Action == "resolve" {
		status = model.ReportResolved
		switch {
		case report.CoordinateID != nil:
			err = database.DB.QueryRow(ctx,
				`UPDATE coordinates SET status = 'REJECTED', updated_at = NOW() WHERE id = $1 RETURNING author_id`,
				*report.CoordinateID,
			).Scan(&rejectedAuthor)
			if database.IsNotFound(err) {
				err = nil
			}
		case report.CommentID != nil:
			err = softDeleteComment(ctx, *report.CommentID)
			if database.IsNotFound(err) {
				err = nil
			}
		}
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "impossible d'appliquer la décision", err)
			return
		}
	}

	if _, err := database.DB.Exec(ctx,
		`UPDATE reports SET status = $2, admin_note = $3, resolved_by = $4, resolved_at = NOW() WHERE id = $1`,
		id, string(status), strings.TrimSpace(req.AdminNote), user.ID,
	); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de mettre à jour le signalement", err)
		return
	}

	if rejectedAuthor != nil {
		if err := refreshTotalPosts(ctx, *rejectedAuthor); err != nil {
			utils.Error(w, http.StatusInternalServerError, "impossible de mettre à jour le profil", err)
			return
		}
		if err := h.refreshAuthorRanking(ctx, rejectedAuthor); err != nil {
			utils.Error(w, http.StatusInternalServerError, "impossible de mettre à jour le classement", err)
			return
		}
	}

	report.Status = status
	report.AdminNote = strings.TrimSpace(req.AdminNote)
	report.ResolvedBy = &user.ID
	now := h.clock()
	report.ResolvedAt = &now
	utils.Success(w, report)
}
