package handler

import (
	"net/http"
	"strings"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/database"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/logger"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/middleware"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/scanner"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de sécuriser le mot de passe", err)
		return
	}

	ctx := r.Context()
	user, err := scanner.ScanUser(database.DB.QueryRow(ctx,
		`INSERT INTO users (username, nickname, email, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+scanner.UserColumns,
		strings.ToLower(strings.TrimSpace(req.Username)), strings.TrimSpace(req.Nickname),
		strings.TrimSpace(req.Email), string(hashed),
	))
	if database.IsUniqueViolation(err) {
		utils.ErrorSimple(w, http.StatusConflict, "identifiant ou pseudo déjà utilisé")
		return
	}
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de créer le compte", err)
		return
	}

	ip, ua := utils.ExtractIPAndUserAgent(r)
	token, expiresAt, err := utils.CreateSession(ctx, user.ID, ip, ua)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de créer la session", err)
		return
	}

	logger.Success("Nouveau membre: %s", user.Username)
	utils.Created(w, model.AuthResponse{User: user, Token: token, ExpiresAt: expiresAt})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	ctx := r.Context()
	var id, hashedPassword string
	err := database.DB.QueryRow(ctx,
		`SELECT id, password_hash FROM users WHERE username = $1 AND deleted_at IS NULL`,
		strings.ToLower(strings.TrimSpace(req.Username)),
	).Scan(&id, &hashedPassword)
	if err != nil {
		if !database.IsNotFound(err) {
			utils.Error(w, http.StatusInternalServerError, "erreur base de données", err)
			return
		}
		utils.ErrorSimple(w, http.StatusUnauthorized, "identifiants invalides")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(req.Password)); err != nil {
		utils.ErrorSimple(w, http.StatusUnauthorized, "identifiants invalides")
		return
	}

	// un membre banni ne peut pas ouvrir de session
	ip, ua := utils.ExtractIPAndUserAgent(r)
	ban, err := middleware.FindActiveBan(ctx, id, ip)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "erreur base de données", err)
		return
	}
	if ban != nil {
		utils.JSON(w, http.StatusForbidden, map[string]interface{}{
			"success":   false,
			"message":   "compte suspendu",
			"reason":    ban.Reason,
			"expiresAt": ban.ExpiresAt,
		})
		return
	}

	user, err := getUser(ctx, id)
	if err != nil {
		dbError(w, err, "utilisateur introuvable")
		return
	}
	token, expiresAt, err := utils.CreateSession(ctx, user.ID, ip, ua)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de créer la session", err)
		return
	}

	utils.Success(w, model.AuthResponse{User: user, Token: token, ExpiresAt: expiresAt})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := middleware.GetTokenFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "session absente", err)
		return
	}
	if err := utils.InvalidateSession(r.Context(), token); err != nil {
		utils.Error(w, http.StatusNotFound, "session introuvable ou déjà fermée", err)
		return
	}
	utils.Message(w, "déconnecté")
}

// ChangePassword change le mot de passe et ferme les autres sessions
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "utilisateur non authentifié", err)
		return
	}
	token, _ := middleware.GetTokenFromContext(r)

	var req model.ChangePasswordRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	ctx := r.Context()
	var current string
	if err := database.DB.QueryRow(ctx,
		`SELECT password_hash FROM users WHERE id = $1`, user.ID,
	).Scan(&current); err != nil {
		dbError(w, err, "utilisateur introuvable")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(current), []byte(req.CurrentPassword)); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "mot de passe actuel incorrect")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de sécuriser le mot de passe", err)
		return
	}
	if _, err := database.DB.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, user.ID, string(hashed),
	); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de changer le mot de passe", err)
		return
	}
	if err := utils.InvalidateUserSessions(ctx, user.ID, token); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de fermer les autres sessions", err)
		return
	}

	utils.Message(w, "mot de passe modifié")
}

// DeleteMe supprime le compte connecté (soft delete). Le compte disparaît des
// listes et des classements, ses sessions sont fermées et ses posts restent
// visibles sans auteur.
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "utilisateur non authentifié", err)
		return
	}
	var req model.DeleteAccountRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	ctx := r.Context()
	var current string
	if err := database.DB.QueryRow(ctx,
		`SELECT password_hash FROM users WHERE id = $1 AND deleted_at IS NULL`, user.ID,
	).Scan(&current); err != nil {
		dbError(w, err, "utilisateur introuvable")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(current), []byte(req.Password)); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "mot de passe incorrect")
		return
	}

	if _, err := database.DB.Exec(ctx,
		`UPDATE users SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, user.ID,
	); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de supprimer le compte", err)
		return
	}
	// le compte sort du tri : ses lignes perdent leur rang
	if _, err := database.DB.Exec(ctx, `UPDATE rankings SET rank = 0 WHERE user_id = $1`, user.ID); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de retirer le compte du classement", err)
		return
	}
	if err := utils.InvalidateUserSessions(ctx, user.ID, ""); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de fermer les sessions", err)
		return
	}
	if h.Rankings != nil {
		if err := h.Rankings.Refresher().RanksChanged(ctx); err != nil {
			utils.Error(w, http.StatusInternalServerError, "impossible de mettre à jour le classement", err)
			return
		}
	}

	logger.Info("Compte supprimé: %s", user.ID)
	utils.Message(w, "compte supprimé")
}
