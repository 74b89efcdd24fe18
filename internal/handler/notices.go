package handler

import (
	"net/http"
	"strings"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/database"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/scanner"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
	"github.com/gorilla/mux"
)

// GetSiteNotice retourne le message actif d'une page (coordinates_list, landing, farming_list)
func (h *Handler) GetSiteNotice(w http.ResponseWriter, r *http.Request) {
	location, ok := model.ParseNoticeLocation(mux.Vars(r)["location"])
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "emplacement inconnu")
		return
	}

	notice, err := scanner.ScanSiteNotice(database.DB.QueryRow(r.Context(),
		`SELECT `+scanner.SiteNoticeColumns+` FROM site_notices WHERE location = $1 AND is_active`,
		string(location)))
	if err != nil {
		dbError(w, err, "aucun message pour cette page")
		return
	}
	utils.Success(w, notice)
}

// ListSiteNotices liste tous les messages, actifs ou non
func (h *Handler) ListSiteNotices(w http.ResponseWriter, r *http.Request) {
	rows, err := database.DB.Query(r.Context(),
		`SELECT `+scanner.SiteNoticeColumns+` FROM site_notices ORDER BY location`)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les messages", err)
		return
	}
	defer rows.Close()

	items := []model.SiteNotice{}
	for rows.Next() {
		n, err := scanner.ScanSiteNotice(rows)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
			return
		}
		items = append(items, *n)
	}
	if err := rows.Err(); err != nil {
		utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
		return
	}
	utils.Success(w, items)
}

// UpsertSiteNotice crée ou remplace le message d'une page. isActive vaut true par défaut.
func (h *Handler) UpsertSiteNotice(w http.ResponseWriter, r *http.Request) {
	location, ok := model.ParseNoticeLocation(mux.Vars(r)["location"])
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "emplacement inconnu")
		return
	}
	var req model.UpsertSiteNoticeRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	notice, err := scanner.ScanSiteNotice(database.DB.QueryRow(r.Context(), `
		INSERT INTO site_notices (location, title, content, update_log, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (location) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			update_log = EXCLUDED.update_log,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING `+scanner.SiteNoticeColumns,
		string(location), strings.TrimSpace(req.Title), strings.TrimSpace(req.Content),
		strings.TrimSpace(req.UpdateLog), active))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible d'enregistrer le message", err)
		return
	}
	utils.Success(w, notice)
}
