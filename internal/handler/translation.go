package handler

import (
	"net/http"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/database"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/middleware"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/translation"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
	"github.com/gorilla/mux"
)

// GetTranslation retourne un champ traduit dans la langue demandée (?lang),
// ou dans la langue résolue de la requête. Sans traduction, le texte original est renvoyé.
func (h *Handler) GetTranslation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	contentType, field := vars["contentType"], vars["field"]

	target, ok := translation.SourceFor(contentType)
	if !ok || !target.Has(field) {
		utils.ErrorSimple(w, http.StatusBadRequest, "contenu non traduisible")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}

	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = middleware.LanguageFromContext(r)
	}
	if !translation.Supported(lang) {
		utils.ErrorSimple(w, http.StatusBadRequest, "langue non supportée (ko, ja, en)")
		return
	}

	ctx := r.Context()
	var original string
	if err := database.DB.QueryRow(ctx,
		`SELECT `+field+` FROM `+target.Table+` WHERE id = $1`, id,
	).Scan(&original); err != nil {
		dbError(w, err, "contenu introuvable")
		return
	}

	if h.Translations == nil {
		utils.Success(w, map[string]interface{}{
			"text":       original,
			"language":   translation.DetectLanguage(original),
			"translated": false,
		})
		return
	}

	res, err := h.Translations.Lookup(ctx, contentType, id, field, original, lang)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer la traduction", err)
		return
	}
	utils.Success(w, res)
}
