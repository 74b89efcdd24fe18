package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/badge"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/database"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/middleware"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/scanner"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
)

func getUser(ctx context.Context, id string) (*model.User, error) {
	return scanner.ScanUser(database.DB.QueryRow(ctx,
		`SELECT `+scanner.UserColumns+` FROM users WHERE id = $1 AND deleted_at IS NULL`, id))
}

// eligibility construit les droits de personnalisation d'un membre
func (h *Handler) eligibility(ctx context.Context, user *model.User) (badge.Eligibility, error) {
	e := badge.Eligibility{Admin: isStaff(user), Perks: user.ExclusivePerks}
	if h.Rankings == nil {
		return e, nil
	}
	position, err := h.Rankings.Position(ctx, user.ID)
	if err != nil {
		return e, err
	}
	e.Position = badge.FromRank(position)
	return e, nil
}

type meResponse struct {
	*model.User
	ActiveTitle string `json:"activeTitle,omitempty"`
	BadgeClass  string `json:"badgeClass,omitempty"`
	Position    int    `json:"position"`
	UnreadCount int    `json:"unreadCount"`
}

func (h *Handler) me(ctx context.Context, user *model.User) (*meResponse, error) {
	e, err := h.eligibility(ctx, user)
	if err != nil {
		return nil, err
	}
	out := &meResponse{
		User:        user,
		ActiveTitle: badge.ActiveTitle(user.SpecialTitle, user.SelectedTitle),
		Position:    int(e.Position),
	}
	out.BadgeClass = badge.BadgeClass(out.ActiveTitle, e.Position)
	err = database.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND NOT is_read`, user.ID,
	).Scan(&out.UnreadCount)
	return out, err
}

// GetMe retourne le profil du membre connecté
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "utilisateur non authentifié", err)
		return
	}
	out, err := h.me(r.Context(), user)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de charger le profil", err)
		return
	}
	utils.Success(w, out)
}

// UpdateMe modifie pseudo, bio et emoji de profil
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "utilisateur non authentifié", err)
		return
	}
	var req model.UpdateProfileRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	query := "UPDATE users SET updated_at = NOW()"
	args := []interface{}{}
	argCount := 1
	if req.Nickname != nil {
		query += ", nickname = $" + strconv.Itoa(argCount)
		args = append(args, strings.TrimSpace(*req.Nickname))
		argCount++
	}
	if req.Bio != nil {
		query += ", bio = $" + strconv.Itoa(argCount)
		args = append(args, strings.TrimSpace(*req.Bio))
		argCount++
	}
	if req.ProfileEmoji != nil {
		query += ", profile_emoji = $" + strconv.Itoa(argCount)
		args = append(args, *req.ProfileEmoji)
		argCount++
	}
	query += " WHERE id = $" + strconv.Itoa(argCount)
	args = append(args, user.ID)

	ctx := r.Context()
	if _, err := database.DB.Exec(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err) {
			utils.ErrorSimple(w, http.StatusConflict, "ce pseudo est déjà utilisé")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "impossible de modifier le profil", err)
		return
	}

	updated, err := getUser(ctx, user.ID)
	if err != nil {
		dbError(w, err, "utilisateur introuvable")
		return
	}
	utils.Success(w, updated)
}

// UpdateBadgeSettings applique les choix de titre, style et couleurs autorisés
func (h *Handler) UpdateBadgeSettings(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "utilisateur non authentifié", err)
		return
	}
	var req model.BadgeSettingsRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	ctx := r.Context()
	e, err := h.eligibility(ctx, user)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer le classement", err)
		return
	}
	if err := e.Check(badge.Selection{
		Title:           req.SelectedTitle,
		BadgeStyle:      req.BadgeStyle,
		NicknameColor:   req.NicknameColor,
		TitleColor:      req.TitleColor,
		TitleBgColor:    req.TitleBgColor,
		NicknameBgColor: req.NicknameBgColor,
	}); err != nil {
		utils.Error(w, http.StatusForbidden, "option non disponible", err)
		return
	}

	query := "UPDATE users SET updated_at = NOW()"
	args := []interface{}{}
	argCount := 1
	columns := []struct {
		name  string
		value *string
	}{
		{"selected_title", req.SelectedTitle},
		{"badge_style", req.BadgeStyle},
		{"nickname_color", req.NicknameColor},
		{"title_color", req.TitleColor},
		{"title_bg_color", req.TitleBgColor},
		{"nickname_bg_color", req.NicknameBgColor},
	}
	for _, c := range columns {
		if c.value == nil {
			continue
		}
		query += ", " + c.name + " = $" + strconv.Itoa(argCount)
		args = append(args, *c.value)
		argCount++
	}
	query += " WHERE id = $" + strconv.Itoa(argCount)
	args = append(args, user.ID)

	if _, err := database.DB.Exec(ctx, query, args...); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible d'enregistrer les réglages", err)
		return
	}

	updated, err := getUser(ctx, user.ID)
	if err != nil {
		dbError(w, err, "utilisateur introuvable")
		return
	}
	out, err := h.me(ctx, updated)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de charger le profil", err)
		return
	}
	utils.Success(w, out)
}

// GetBadgeOptions liste les options de personnalisation accessibles au membre
func (h *Handler) GetBadgeOptions(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "utilisateur non authentifié", err)
		return
	}
	e, err := h.eligibility(r.Context(), user)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer le classement", err)
		return
	}

	utils.Success(w, map[string]interface{}{
		"position":     int(e.Position),
		"canCustomize": e.CanCustomize(),
		"titles":       e.AvailableTitles(),
		"styles":       e.AvailableStyles(),
		"colors":       e.AvailableColors(),
	})
}

// UploadProfileImage remplace la photo de profil
func (h *Handler) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "utilisateur non authentifié", err)
		return
	}
	if h.Images == nil {
		utils.ErrorSimple(w, http.StatusServiceUnavailable, "l'envoi d'images est désactivé")
		return
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid multipart form", err)
		return
	}
	files := formFiles(r, "image")
	if len(files) == 0 {
		utils.ErrorSimple(w, http.StatusBadRequest, "aucune image fournie")
		return
	}
	if err := checkImage(files[0], maxPhotoSize); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	f, err := files[0].Open()
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "lecture de l'image impossible", err)
		return
	}
	defer f.Close()

	ctx := r.Context()
	img, err := h.Images.UploadProfileImage(ctx, f, user.ID)
	if err != nil {
		utils.Error(w, http.StatusBadGateway, "échec de l'envoi de l'image", err)
		return
	}
	if _, err := database.DB.Exec(ctx,
		`UPDATE users SET profile_image = $2, updated_at = NOW() WHERE id = $1`, user.ID, img.URL,
	); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible d'enregistrer la photo", err)
		return
	}

	utils.Success(w, map[string]string{"profileImage": img.URL})
}

// listCoordinates exécute une requête de coordonnées et charge leurs images
func listCoordinates(ctx context.Context, query string, args ...interface{}) ([]model.Coordinate, error) {
	rows, err := database.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.Coordinate{}
	var ids []string
	for rows.Next() {
		c, err := scanner.ScanCoordinate(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	images, err := loadImages(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Images = images[items[i].ID]
	}
	return items, nil
}

// GetMyCoordinates liste tous les posts du membre, quel que soit leur statut
func (h *Handler) GetMyCoordinates(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "utilisateur non authentifié", err)
		return
	}
	items, err := listCoordinates(r.Context(),
		`SELECT `+scanner.CoordinateColumns+coordinateFrom+` WHERE c.author_id = $1 ORDER BY c.created_at DESC`, user.ID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer vos posts", err)
		return
	}
	utils.Success(w, items)
}

func (h *Handler) GetMyBookmarks(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "utilisateur non authentifié", err)
		return
	}
	items, err := listCoordinates(r.Context(), `
		SELECT `+scanner.CoordinateColumns+coordinateFrom+`
		INNER JOIN bookmarks b ON b.coordinate_id = c.id
		WHERE b.user_id = $1 AND c.status = 'APPROVED'
		ORDER BY b.created_at DESC`, user.ID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer vos favoris", err)
		return
	}
	utils.Success(w, items)
}

func (h *Handler) GetMyComments(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "utilisateur non authentifié", err)
		return
	}

	rows, err := database.DB.Query(r.Context(), `
		SELECT `+scanner.CommentColumns+commentFrom+`
		WHERE m.author_id = $1 AND NOT m.is_deleted
		ORDER BY m.created_at DESC
		LIMIT 100`, user.ID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer vos commentaires", err)
		return
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanner.ScanComment(rows)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
			return
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
		return
	}
	utils.Success(w, comments)
}

type publicProfile struct {
	model.UserCreator
	Bio                string             `json:"bio,omitempty"`
	TotalPosts         int                `json:"totalPosts"`
	TotalLikesReceived int                `json:"totalLikesReceived"`
	TotalValidReceived int                `json:"totalValidReceived"`
	Rankings           []model.Ranking    `json:"rankings"`
	Coordinates        []model.Coordinate `json:"coordinates"`
}

// GetUser retourne le profil public d'un membre avec ses posts approuvés
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}

	ctx := r.Context()
	user, err := getUser(ctx, id)
	if err != nil {
		dbError(w, err, "utilisateur introuvable")
		return
	}

	position := badge.PositionNone
	rankings := []model.Ranking{}
	if h.Rankings != nil {
		p, err := h.Rankings.Position(ctx, id)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "impossible de récupérer le classement", err)
			return
		}
		position = badge.FromRank(p)
		if rankings, err = h.Rankings.UserRankings(ctx, id); err != nil {
			utils.Error(w, http.StatusInternalServerError, "impossible de récupérer le classement", err)
			return
		}
	}

	coordinates, err := listCoordinates(ctx, `
		SELECT `+scanner.CoordinateColumns+coordinateFrom+`
		WHERE c.author_id = $1 AND c.status = 'APPROVED'
		ORDER BY c.created_at DESC
		LIMIT $2`, id, coordinatePageSize)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les posts", err)
		return
	}

	active := badge.ActiveTitle(user.SpecialTitle, user.SelectedTitle)
	utils.Success(w, publicProfile{
		UserCreator: model.UserCreator{
			ID:            user.ID,
			Nickname:      user.Nickname,
			ProfileImage:  user.ProfileImage,
			ProfileEmoji:  user.ProfileEmoji,
			ActiveTitle:   active,
			BadgeStyle:    user.BadgeStyle,
			NicknameColor: user.NicknameColor,
			BadgeClass:    badge.BadgeClass(active, position),
		},
		Bio:                user.Bio,
		TotalPosts:         user.TotalPosts,
		TotalLikesReceived: user.TotalLikesReceived,
		TotalValidReceived: user.TotalValidReceived,
		Rankings:           rankings,
		Coordinates:        coordinates,
	})
}
