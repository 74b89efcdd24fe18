package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/database"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/middleware"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/scanner"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
)

const suggestionFrom = `
	FROM suggestions s
	LEFT JOIN users u ON u.id = s.user_id`

// CreateSuggestion envoie une suggestion aux opérateurs (membre ou invité)
func (h *Handler) CreateSuggestion(w http.ResponseWriter, r *http.Request) {
	var req model.CreateSuggestionRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	// Validation
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if req.Title == "" || req.Content == "" {
		utils.ErrorSimple(w, http.StatusBadRequest, "titre et contenu requis")
		return
	}
	if req.Category == "" {
		req.Category = model.SuggestionOther
	}

	// l'identité invitée n'est gardée que sans compte
	var authorID *string
	nickname, email := strings.TrimSpace(req.GuestNickname), strings.TrimSpace(req.Email)
	if user := middleware.CurrentUser(r); user != nil {
		authorID = &user.ID
		nickname, email = "", ""
	} else if nickname == "" {
		nickname = "익명"
	}

	ctx := r.Context()
	var id string
	err := database.DB.QueryRow(ctx, `
		INSERT INTO suggestions (user_id, guest_nickname, guest_email, category, title, content)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		authorID, nickname, email, string(req.Category), req.Title, req.Content,
	).Scan(&id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible d'enregistrer la suggestion", err)
		return
	}

	suggestion, err := getSuggestion(ctx, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de relire la suggestion", err)
		return
	}
	suggestion.AdminNote = ""
	utils.Created(w, suggestion)
}

// GetMySuggestions liste les suggestions du membre connecté, réponses comprises
func (h *Handler) GetMySuggestions(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "utilisateur non authentifié", err)
		return
	}
	page, size := utils.Pagination(r, 10, 50)

	ctx := r.Context()
	out := model.MySuggestions{Items: []model.Suggestion{}, Page: page, PageSize: size}
	if err := database.DB.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE admin_reply <> '')
		FROM suggestions WHERE user_id = $1`, user.ID,
	).Scan(&out.Total, &out.RepliedCount); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de compter les suggestions", err)
		return
	}

	rows, err := database.DB.Query(ctx,
		`SELECT `+scanner.SuggestionColumns+suggestionFrom+`
		 WHERE s.user_id = $1
		 ORDER BY s.created_at DESC
		 LIMIT $2 OFFSET $3`, user.ID, size, (page-1)*size)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les suggestions", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanner.ScanSuggestion(rows)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
			return
		}
		s.AdminNote = ""
		out.Items = append(out.Items, *s)
	}
	if err := rows.Err(); err != nil {
		utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
		return
	}

	out.HasNext = page*size < out.Total
	utils.Success(w, out)
}

// suggestionFilter construit le WHERE des filtres admin (status, category, q)
func suggestionFilter(status, category, query string) (string, []interface{}) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argCount := 1

	if status != "" {
		where += " AND s.status = $" + strconv.Itoa(argCount)
		args = append(args, status)
		argCount++
	}

	if category != "" {
		where += " AND s.category = $" + strconv.Itoa(argCount)
		args = append(args, category)
		argCount++
	}

	if query != "" {
		where += " AND (s.title ILIKE $" + strconv.Itoa(argCount) +
			" OR s.content ILIKE $" + strconv.Itoa(argCount) +
			" OR s.guest_nickname ILIKE $" + strconv.Itoa(argCount) +
			" OR s.guest_email ILIKE $" + strconv.Itoa(argCount) + ")"
		args = append(args, "%"+query+"%")
	}

	return where, args
}

// ListSuggestions liste les suggestions pour les admins (params: status, category, q, page)
func (h *Handler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := strings.ToUpper(q.Get("status"))
	switch model.SuggestionStatus(status) {
	case "", model.SuggestionPending, model.SuggestionReviewed, model.SuggestionResolved:
	default:
		utils.ErrorSimple(w, http.StatusBadRequest, "statut invalide")
		return
	}
	category := strings.ToUpper(q.Get("category"))
	switch model.SuggestionCategory(category) {
	case "", model.SuggestionBug, model.SuggestionFeature, model.SuggestionQuestion, model.SuggestionOther:
	default:
		utils.ErrorSimple(w, http.StatusBadRequest, "catégorie invalide")
		return
	}
	page, size := utils.Pagination(r, 20, 100)

	where, args := suggestionFilter(status, category, strings.TrimSpace(q.Get("q")))

	ctx := r.Context()
	var total int
	if err := database.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM suggestions s`+where, args...,
	).Scan(&total); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de compter les suggestions", err)
		return
	}

	n := len(args)
	rows, err := database.DB.Query(ctx,
		`SELECT `+scanner.SuggestionColumns+suggestionFrom+where+`
		 ORDER BY s.created_at DESC
		 LIMIT $`+strconv.Itoa(n+1)+` OFFSET $`+strconv.Itoa(n+2),
		append(args, size, (page-1)*size)...)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les suggestions", err)
		return
	}
	defer rows.Close()

	items := []model.Suggestion{}
	for rows.Next() {
		s, err := scanner.ScanSuggestion(rows)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
			return
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
		return
	}

	utils.Success(w, model.Page[model.Suggestion]{
		Items:    items,
		Page:     page,
		PageSize: size,
		Total:    total,
		HasNext:  page*size < total,
	})
}

func (h *Handler) GetSuggestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}
	s, err := getSuggestion(r.Context(), id)
	if err != nil {
		dbError(w, err, "suggestion introuvable")
		return
	}
	utils.Success(w, s)
}

// UpdateSuggestion modifie le statut, la réponse ou la note interne d'une suggestion.
// L'auteur membre est notifié d'une nouvelle réponse ou, à défaut, d'un changement de statut.
func (h *Handler) UpdateSuggestion(w http.ResponseWriter, r *http.Request) {
	admin, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "utilisateur non authentifié", err)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}
	var req model.UpdateSuggestionRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}
	if req.Status == nil && req.AdminReply == nil && req.AdminNote == nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "aucune modification")
		return
	}

	ctx := r.Context()
	before, err := getSuggestion(ctx, id)
	if err != nil {
		dbError(w, err, "suggestion introuvable")
		return
	}

	// Construction dynamique de la requête UPDATE
	query := "UPDATE suggestions SET updated_at = NOW()"
	args := []interface{}{}
	argCount := 1

	if req.Status != nil {
		query += ", status = $" + strconv.Itoa(argCount)
		args = append(args, string(*req.Status))
		argCount++

		if *req.Status == model.SuggestionResolved {
			query += ", resolved_by = $" + strconv.Itoa(argCount)
			args = append(args, admin.ID)
			argCount++
		}
	}

	if req.AdminReply != nil {
		reply := strings.TrimSpace(*req.AdminReply)
		query += ", admin_reply = $" + strconv.Itoa(argCount)
		args = append(args, reply)
		argCount++

		// replied_at garde la date de la première réponse
		if reply != "" {
			query += ", replied_at = COALESCE(replied_at, NOW())"
		}
	}

	if req.AdminNote != nil {
		query += ", admin_note = $" + strconv.Itoa(argCount)
		args = append(args, strings.TrimSpace(*req.AdminNote))
		argCount++
	}

	query += " WHERE id = $" + strconv.Itoa(argCount)
	args = append(args, id)

	if _, err := database.DB.Exec(ctx, query, args...); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de mettre à jour la suggestion", err)
		return
	}

	after, err := getSuggestion(ctx, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de relire la suggestion", err)
		return
	}

	if message, ok := suggestionNotice(before, after); ok {
		notify(ctx, *after.UserID, nil, model.NotificationSuggestionReply, nil, message)
	}

	utils.Success(w, after)
}

// suggestionNotice décide du message envoyé à l'auteur après une modification.
// Les invités ne reçoivent rien. Une réponse nouvelle ou changée l'emporte sur le statut.
func suggestionNotice(before, after *model.Suggestion) (string, bool) {
	if after.UserID == nil {
		return "", false
	}
	if after.AdminReply != "" && after.AdminReply != before.AdminReply {
		return fmt.Sprintf("📋 건의사항 '%s'에 운영자가 답변했습니다!", after.Title), true
	}
	if after.Status != before.Status {
		return fmt.Sprintf("📋 건의사항 '%s'이(가) '%s'(으)로 변경되었습니다.", after.Title, after.Status.Label()), true
	}
	return "", false
}

func (h *Handler) DeleteSuggestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}

	res, err := database.DB.Exec(r.Context(), `DELETE FROM suggestions WHERE id = $1`, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de supprimer la suggestion", err)
		return
	}
	if res.RowsAffected() == 0 {
		utils.ErrorSimple(w, http.StatusNotFound, "suggestion introuvable")
		return
	}

	utils.Message(w, "suggestion supprimée")
}

// GetSuggestionStats compte les suggestions par statut et par catégorie
func (h *Handler) GetSuggestionStats(w http.ResponseWriter, r *http.Request) {
	var stats model.SuggestionStats
	err := database.DB.QueryRow(r.Context(), `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'PENDING'),
			COUNT(*) FILTER (WHERE status = 'REVIEWED'),
			COUNT(*) FILTER (WHERE status = 'RESOLVED'),
			COUNT(*) FILTER (WHERE category = 'BUG'),
			COUNT(*) FILTER (WHERE category = 'FEATURE'),
			COUNT(*) FILTER (WHERE category = 'QUESTION'),
			COUNT(*) FILTER (WHERE category = 'OTHER')
		FROM suggestions`,
	).Scan(&stats.Total, &stats.Pending, &stats.Reviewed, &stats.Resolved,
		&stats.Bug, &stats.Feature, &stats.Question, &stats.Other)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les statistiques", err)
		return
	}

	utils.Success(w, stats)
}

func getSuggestion(ctx context.Context, id string) (*model.Suggestion, error) {
	return scanner.ScanSuggestion(database.DB.QueryRow(ctx,
		`SELECT `+scanner.SuggestionColumns+suggestionFrom+` WHERE s.id = $1`, id))
}
