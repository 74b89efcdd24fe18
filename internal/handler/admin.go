package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/badge"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/database"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/logger"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/middleware"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/scanner"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/translation"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
	"github.com/lib/pq"
)

// GetDashboard récupère les compteurs du tableau de bord
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	stats := model.AdminDashboardStats{GeneratedAt: h.clock()}
	today := startOfDay(stats.GeneratedAt)

	err := database.DB.QueryRow(r.Context(), `
		SELECT
			(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL),
			(SELECT COUNT(*) FROM coordinates),
			(SELECT COUNT(*) FROM coordinates WHERE status = 'PENDING'),
			(SELECT COUNT(*) FROM coordinates WHERE status = 'APPROVED'),
			(SELECT COUNT(*) FROM coordinates WHERE status = 'REJECTED'),
			(SELECT COUNT(*) FROM reports WHERE status = 'PENDING'),
			(SELECT COUNT(*) FROM user_bans WHERE is_active AND (expires_at IS NULL OR expires_at > NOW())),
			(SELECT COUNT(*) FROM users WHERE created_at >= $1 AND deleted_at IS NULL),
			(SELECT COUNT(*) FROM coordinates WHERE created_at >= $1)`, today,
	).Scan(
		&stats.TotalUsers, &stats.TotalCoordinates, &stats.PendingCoordinates,
		&stats.ApprovedCoordinates, &stats.RejectedCoordinates, &stats.PendingReports,
		&stats.ActiveBans, &stats.NewUsersToday, &stats.NewPostsToday,
	)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de calculer les statistiques", err)
		return
	}

	utils.Success(w, stats)
}

// ListPendingCoordinates liste les posts en attente de modération, les plus anciens d'abord
func (h *Handler) ListPendingCoordinates(w http.ResponseWriter, r *http.Request) {
	items, err := listCoordinates(r.Context(),
		`SELECT `+scanner.CoordinateColumns+coordinateFrom+` WHERE c.status = 'PENDING' ORDER BY c.created_at ASC LIMIT 200`)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les posts en attente", err)
		return
	}
	utils.Success(w, items)
}

func (h *Handler) ApproveCoordinate(w http.ResponseWriter, r *http.Request) {
	h.moderateCoordinate(w, r, model.StatusApproved)
}

func (h *Handler) RejectCoordinate(w http.ResponseWriter, r *http.Request) {
	h.moderateCoordinate(w, r, model.StatusRejected)
}

// moderateCoordinate change le statut d'un post puis met à jour le profil et le classement de l'auteur
func (h *Handler) moderateCoordinate(w http.ResponseWriter, r *http.Request, status model.CoordinateStatus) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}

	ctx := r.Context()
	var authorID *string
	if err := database.DB.QueryRow(ctx, `
		UPDATE coordinates SET
			status = $2,
			approved_at = CASE WHEN $2 = 'APPROVED' THEN COALESCE(approved_at, NOW()) ELSE approved_at END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING author_id`, id, string(status),
	).Scan(&authorID); err != nil {
		dbError(w, err, "coordonnée introuvable")
		return
	}

	if authorID != nil {
		if err := refreshTotalPosts(ctx, *authorID); err != nil {
			utils.Error(w, http.StatusInternalServerError, "impossible de mettre à jour le profil", err)
			return
		}
		if err := h.refreshAuthorRanking(ctx, authorID); err != nil {
			utils.Error(w, http.StatusInternalServerError, "impossible de mettre à jour le classement", err)
			return
		}
	}

	c, err := getCoordinate(ctx, id)
	if err != nil {
		dbError(w, err, "coordonnée introuvable")
		return
	}
	utils.Success(w, c)
}

// BatchDeleteCoordinates supprime plusieurs posts d'un coup (superuser)
func (h *Handler) BatchDeleteCoordinates(w http.ResponseWriter, r *http.Request) {
	var req model.BatchDeleteRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	ctx := r.Context()
	rows, err := database.DB.Query(ctx,
		`SELECT DISTINCT author_id FROM coordinates WHERE id = ANY($1::uuid[]) AND author_id IS NOT NULL`,
		pq.Array(req.IDs))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de lire les auteurs", err)
		return
	}
	var authors []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			rows.Close()
			utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
			return
		}
		authors = append(authors, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
		return
	}

	publicIDs, err := deleteCoordinates(ctx, req.IDs)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de supprimer les posts", err)
		return
	}

	for i := range authors {
		if err := refreshTotalPosts(ctx, authors[i]); err != nil {
			utils.Error(w, http.StatusInternalServerError, "impossible de mettre à jour le profil", err)
			return
		}
		if err := h.refreshAuthorRanking(ctx, &authors[i]); err != nil {
			utils.Error(w, http.StatusInternalServerError, "impossible de mettre à jour le classement", err)
			return
		}
	}
	for _, id := range req.IDs {
		h.forgetTranslations(translation.ContentCoordinate, id)
	}
	h.deleteImages(publicIDs...)

	logger.Info("Suppression groupée: %d posts", len(req.IDs))
	utils.Success(w, map[string]int{"deleted": len(req.IDs)})
}

// ListUsers liste les membres (recherche par identifiant ou pseudo)
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, size := utils.Pagination(r, 20, 100)
	query := " FROM users WHERE deleted_at IS NULL"
	args := []interface{}{}
	argCount := 1

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		query += " AND (username ILIKE $" + strconv.Itoa(argCount) + " OR nickname ILIKE $" + strconv.Itoa(argCount) + ")"
		args = append(args, "%"+q+"%")
		argCount++
	}

	ctx := r.Context()
	var total int
	if err := database.DB.QueryRow(ctx, `SELECT COUNT(*)`+query, args...).Scan(&total); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de compter les membres", err)
		return
	}

	query += " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(argCount) + " OFFSET $" + strconv.Itoa(argCount+1)
	args = append(args, size, (page-1)*size)

	rows, err := database.DB.Query(ctx,
		`SELECT id, username, nickname, email, is_staff, is_superuser, total_posts, created_at`+query, args...)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les membres", err)
		return
	}
	defer rows.Close()

	items := []model.AdminUserListItem{}
	for rows.Next() {
		var u model.AdminUserListItem
		if err := rows.Scan(&u.ID, &u.Username, &u.Nickname, &u.Email, &u.IsStaff, &u.IsSuperuser,
			&u.TotalPosts, &u.CreatedAt); err != nil {
			utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
			return
		}
		items = append(items, u)
	}
	if err := rows.Err(); err != nil {
		utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
		return
	}

	utils.Success(w, model.Page[model.AdminUserListItem]{
		Items:    items,
		Page:     page,
		PageSize: size,
		Total:    total,
		HasNext:  page*size < total,
	})
}

// ToggleStaff donne ou retire le statut staff (superuser, ni soi-même ni un autre superuser)
func (h *Handler) ToggleStaff(w http.ResponseWriter, r *http.Request) {
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
	if id == admin.ID {
		utils.ErrorSimple(w, http.StatusBadRequest, "impossible de modifier son propre statut")
		return
	}

	ctx := r.Context()
	target, err := getUser(ctx, id)
	if err != nil {
		dbError(w, err, "utilisateur introuvable")
		return
	}
	if target.IsSuperuser {
		utils.ErrorSimple(w, http.StatusBadRequest, "impossible de modifier un superuser")
		return
	}

	var isStaff bool
	if err := database.DB.QueryRow(ctx,
		`UPDATE users SET is_staff = NOT is_staff, updated_at = NOW() WHERE id = $1 RETURNING is_staff`, id,
	).Scan(&isStaff); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de modifier le statut", err)
		return
	}

	logger.Info("Statut staff de %s: %v (par %s)", target.Username, isStaff, admin.Username)
	utils.Success(w, map[string]interface{}{"id": id, "isStaff": isStaff})
}

// GrantPerks attribue un titre spécial et des items exclusifs (superuser)
func (h *Handler) GrantPerks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}
	var req model.GrantPerksRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	allowed := map[string]bool{}
	for _, code := range badge.ExclusiveCodes() {
		allowed[code] = true
	}
	perks := []string{}
	for _, p := range req.ExclusivePerks {
		p = strings.TrimSpace(p)
		if !allowed[p] {
			utils.ErrorSimple(w, http.StatusBadRequest, "item exclusif inconnu: "+p)
			return
		}
		perks = append(perks, p)
	}
	if req.SpecialTitle != nil && *req.SpecialTitle != "" && !badge.ValidTitle(*req.SpecialTitle) {
		utils.ErrorSimple(w, http.StatusBadRequest, "titre inconnu")
		return
	}

	query := "UPDATE users SET exclusive_perks = $2, updated_at = NOW()"
	args := []interface{}{id, pq.Array(perks)}
	if req.SpecialTitle != nil {
		query += ", special_title = $3"
		args = append(args, *req.SpecialTitle)
	}

	ctx := r.Context()
	tag, err := database.DB.Exec(ctx, query+" WHERE id = $1 AND deleted_at IS NULL", args...)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible d'attribuer les items", err)
		return
	}
	if tag.RowsAffected() == 0 {
		utils.ErrorSimple(w, http.StatusNotFound, "utilisateur introuvable")
		return
	}

	user, err := getUser(ctx, id)
	if err != nil {
		dbError(w, err, "utilisateur introuvable")
		return
	}
	utils.Success(w, user)
}

// CreateBan bannit un membre et/ou une IP (superuser)
func (h *Handler) CreateBan(w http.ResponseWriter, r *http.Request) {
	admin, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "utilisateur non authentifié", err)
		return
	}
	var req model.CreateBanRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}
	if req.UserID == nil && req.IPAddress == "" {
		utils.ErrorSimple(w, http.StatusBadRequest, "un membre ou une IP est requis")
		return
	}
	if req.UserID != nil && *req.UserID == admin.ID {
		utils.ErrorSimple(w, http.StatusBadRequest, "impossible de se bannir soi-même")
		return
	}
	expiresAt, ok := req.Duration.ExpiresAt(h.clock())
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "durée invalide")
		return
	}

	ctx := r.Context()
	if req.UserID != nil {
		if _, err := getUser(ctx, *req.UserID); err != nil {
			dbError(w, err, "utilisateur introuvable")
			return
		}
	}

	var banID string
	if err := database.DB.QueryRow(ctx, `
		INSERT INTO user_bans (user_id, ip_address, reason, duration, expires_at, banned_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		req.UserID, req.IPAddress, strings.TrimSpace(req.Reason), string(req.Duration), expiresAt, admin.ID,
	).Scan(&banID); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de créer le ban", err)
		return
	}

	// le membre banni perd ses sessions ouvertes
	if req.UserID != nil {
		if err := utils.InvalidateUserSessions(ctx, *req.UserID, ""); err != nil {
			utils.Error(w, http.StatusInternalServerError, "impossible de fermer les sessions", err)
			return
		}
	}

	ban, err := scanner.ScanBan(database.DB.QueryRow(ctx,
		`SELECT `+scanner.BanColumns+` FROM user_bans b LEFT JOIN users u ON u.id = b.user_id WHERE b.id = $1`, banID))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de relire le ban", err)
		return
	}
	utils.Created(w, ban)
}

// ListBans liste les bans (?active=true pour les bans en vigueur)
func (h *Handler) ListBans(w http.ResponseWriter, r *http.Request) {
	query := `SELECT ` + scanner.BanColumns + ` FROM user_bans b LEFT JOIN users u ON u.id = b.user_id`
	if r.URL.Query().Get("active") == "true" {
		query += ` WHERE b.is_active AND (b.expires_at IS NULL OR b.expires_at > NOW())`
	}
	query += ` ORDER BY b.created_at DESC LIMIT 200`

	rows, err := database.DB.Query(r.Context(), query)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les bans", err)
		return
	}
	defer rows.Close()

	bans := []model.UserBan{}
	for rows.Next() {
		b, err := scanner.ScanBan(rows)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
			return
		}
		bans = append(bans, *b)
	}
	if err := rows.Err(); err != nil {
		utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
		return
	}
	utils.Success(w, bans)
}

// Unban lève un ban actif
func (h *Handler) Unban(w http.ResponseWriter, r *http.Request) {
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

	tag, err := database.DB.Exec(r.Context(),
		`UPDATE user_bans SET is_active = FALSE, unbanned_at = NOW(), unbanned_by = $2 WHERE id = $1 AND is_active`,
		id, admin.ID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de lever le ban", err)
		return
	}
	if tag.RowsAffected() == 0 {
		utils.ErrorSimple(w, http.StatusNotFound, "ban introuvable ou déjà levé")
		return
	}
	utils.Message(w, "ban levé")
}

func (h *Handler) GetSiteSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := loadSiteSettings(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de lire les réglages", err)
		return
	}
	utils.Success(w, settings)
}

// UpdateSiteSettings modifie la limite d'envoi quotidienne et le rang exempté
func (h *Handler) UpdateSiteSettings(w http.ResponseWriter, r *http.Request) {
	var req model.SiteSettings
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	var settings model.SiteSettings
	if err := database.DB.QueryRow(r.Context(), `
		INSERT INTO site_settings (id, daily_upload_limit, ranker_limit_exempt_rank, updated_at)
		VALUES (1, $1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET
			daily_upload_limit = EXCLUDED.daily_upload_limit,
			ranker_limit_exempt_rank = EXCLUDED.ranker_limit_exempt_rank,
			updated_at = NOW()
		RETURNING daily_upload_limit, ranker_limit_exempt_rank, updated_at`,
		req.DailyUploadLimit, req.RankerLimitExemptRank,
	).Scan(&settings.DailyUploadLimit, &settings.RankerLimitExemptRank, &settings.UpdatedAt); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible d'enregistrer les réglages", err)
		return
	}
	utils.Success(w, settings)
}

// RecalculateRankings retrie toutes les périodes immédiatement
func (h *Handler) RecalculateRankings(w http.ResponseWriter, r *http.Request) {
	if h.Rankings == nil {
		utils.ErrorSimple(w, http.StatusServiceUnavailable, "classement indisponible")
		return
	}
	summaries, err := h.Rankings.RecalculateRanks(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de recalculer le classement", err)
		return
	}
	utils.Success(w, summaries)
}
