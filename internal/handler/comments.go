package handler

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/database"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/logger"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/middleware"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/scanner"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/translation"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
	"go.uber.org/zap"
)

const guestDefaultNickname = "익명"

const commentFrom = `
	FROM comments m
	LEFT JOIN users u ON u.id = m.author_id AND u.deleted_at IS NULL`

// commentTarget est le contenu commenté : un post ou un journal de farming
type commentTarget struct {
	column   string
	table    string
	notFound string
}

var (
	coordinateComments = commentTarget{"coordinate_id", "coordinates", "coordonnée introuvable"}
	journalComments    = commentTarget{"journal_id", "farming_journals", "journal introuvable"}
)

// commentOrder : likes (défaut), newest ou oldest
func commentOrder(sort string) string {
	switch sort {
	case "newest":
		return "m.created_at DESC"
	case "oldest":
		return "m.created_at ASC"
	}
	return "m.like_count DESC, m.created_at DESC"
}

// listComments retourne les commentaires visibles avec leurs réponses.
// Les réponses supprimées restent affichées avec le texte de remplacement.
func listComments(ctx context.Context, column, targetID, sort string) ([]model.Comment, error) {
	rows, err := database.DB.Query(ctx, `
		SELECT `+scanner.CommentColumns+commentFrom+`
		WHERE m.`+column+` = $1 AND m.parent_id IS NULL AND NOT m.is_deleted
		ORDER BY `+commentOrder(sort), targetID)
	if err != nil {
		return nil, err
	}
	comments := []model.Comment{}
	index := map[string]int{}
	for rows.Next() {
		c, err := scanner.ScanComment(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[c.ID] = len(comments)
		comments = append(comments, *c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = database.DB.Query(ctx, `
		SELECT `+scanner.CommentColumns+commentFrom+`
		WHERE m.`+column+` = $1 AND m.parent_id IS NOT NULL
		ORDER BY m.created_at ASC`, targetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		reply, err := scanner.ScanComment(rows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[*reply.ParentID]; ok {
			comments[i].Replies = append(comments[i].Replies, *reply)
		}
	}
	return comments, rows.Err()
}

func getComment(ctx context.Context, id string) (*model.Comment, error) {
	return scanner.ScanComment(database.DB.QueryRow(ctx,
		`SELECT `+scanner.CommentColumns+commentFrom+` WHERE m.id = $1`, id))
}

// refreshCommentCount recompte les commentaires non supprimés d'un contenu
func refreshCommentCount(ctx context.Context, t commentTarget, targetID string) error {
	_, err := database.DB.Exec(ctx, `
		UPDATE `+t.table+` SET comment_count = (
			SELECT COUNT(*) FROM comments WHERE `+t.column+` = $1 AND NOT is_deleted
		) WHERE id = $1`, targetID)
	return err
}

// softDeleteComment masque un commentaire et met à jour le compteur de son contenu
func softDeleteComment(ctx context.Context, id string) error {
	var coordinateID, journalID *string
	err := database.DB.QueryRow(ctx, `
		UPDATE comments SET is_deleted = TRUE, content = $2, photo_url = '', updated_at = NOW()
		WHERE id = $1
		RETURNING coordinate_id, journal_id`, id, model.DeletedCommentText,
	).Scan(&coordinateID, &journalID)
	if err != nil {
		return err
	}
	if coordinateID != nil {
		return refreshCommentCount(ctx, coordinateComments, *coordinateID)
	}
	if journalID != nil {
		return refreshCommentCount(ctx, journalComments, *journalID)
	}
	return nil
}

// parseCommentForm accepte un formulaire multipart (avec photo) ou du JSON
func parseCommentForm(r *http.Request) (*model.CreateCommentRequest, *multipart.FileHeader, error) {
	req := &model.CreateCommentRequest{}
	if !isMultipart(r) {
		if err := utils.DecodeJSON(r, req); err != nil {
			return nil, nil, fmt.Errorf("invalid request body: %w", err)
		}
		return req, nil, nil
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return nil, nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	req.Content = r.FormValue("content")
	if parent := r.FormValue("parentId"); parent != "" {
		req.ParentID = &parent
	}
	req.GuestNickname = r.FormValue("guestNickname")
	req.GuestPassword = r.FormValue("guestPassword")

	var photo *multipart.FileHeader
	if files := formFiles(r, "photo"); len(files) > 0 {
		photo = files[0]
	}
	return req, photo, nil
}

func (h *Handler) ListCoordinateComments(w http.ResponseWriter, r *http.Request) {
	h.listComments(w, r, coordinateComments)
}

func (h *Handler) ListJournalComments(w http.ResponseWriter, r *http.Request) {
	h.listComments(w, r, journalComments)
}

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request, t commentTarget) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}
	comments, err := listComments(r.Context(), t.column, id, r.URL.Query().Get("sort"))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les commentaires", err)
		return
	}
	utils.Success(w, comments)
}

func (h *Handler) CreateCoordinateComment(w http.ResponseWriter, r *http.Request) {
	h.createComment(w, r, coordinateComments)
}

func (h *Handler) CreateJournalComment(w http.ResponseWriter, r *http.Request) {
	h.createComment(w, r, journalComments)
}

// createComment ajoute un commentaire ou une réponse (parentId) à un contenu
func (h *Handler) createComment(w http.ResponseWriter, r *http.Request, t commentTarget) {
	targetID, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}

	req, photo, err := parseCommentForm(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}
	if err := utils.Validate(req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" && photo == nil {
		utils.ErrorSimple(w, http.StatusBadRequest, "un texte ou une photo est requis")
		return
	}
	if photo != nil {
		if h.Images == nil {
			utils.ErrorSimple(w, http.StatusServiceUnavailable, "l'envoi d'images est désactivé")
			return
		}
		if err := checkImage(photo, maxPhotoSize); err != nil {
			utils.Error(w, http.StatusBadRequest, err.Error(), err)
			return
		}
	}

	user := middleware.CurrentUser(r)
	var authorID *string
	var nickname, hash string
	if user != nil {
		authorID = &user.ID
	} else {
		if req.GuestPassword == "" {
			utils.ErrorSimple(w, http.StatusBadRequest, "les invités doivent renseigner un mot de passe")
			return
		}
		nickname = strings.TrimSpace(req.GuestNickname)
		if nickname == "" {
			nickname = guestDefaultNickname
		}
	}

	ctx := r.Context()

	var title string
	var targetAuthor *string
	if err := database.DB.QueryRow(ctx,
		`SELECT title, author_id FROM `+t.table+` WHERE id = $1`, targetID,
	).Scan(&title, &targetAuthor); err != nil {
		dbError(w, err, t.notFound)
		return
	}

	var parentAuthor *string
	if req.ParentID != nil {
		if err := database.DB.QueryRow(ctx,
			`SELECT author_id FROM comments WHERE id = $1 AND `+t.column+` = $2 AND NOT is_deleted`,
			*req.ParentID, targetID,
		).Scan(&parentAuthor); err != nil {
			dbError(w, err, "commentaire parent introuvable")
			return
		}
	}

	if user == nil {
		if hash, err = hashGuestPassword(req.GuestPassword); err != nil {
			utils.Error(w, http.StatusInternalServerError, "impossible de sécuriser le mot de passe", err)
			return
		}
	}

	var id string
	if err := database.DB.QueryRow(ctx, `
		INSERT INTO comments (`+t.column+`, parent_id, author_id, guest_nickname, guest_password, content)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		targetID, req.ParentID, authorID, nickname, hash, req.Content,
	).Scan(&id); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de créer le commentaire", err)
		return
	}

	if photo != nil {
		h.storeCommentPhoto(ctx, id, photo)
	}
	if user == nil {
		st := h.loadGuest(r)
		st.OwnComment(id)
		h.saveGuest(w, st)
	}

	if err := refreshCommentCount(ctx, t, targetID); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de mettre à jour le compteur", err)
		return
	}

	h.notifyComment(ctx, t, targetID, title, targetAuthor, parentAuthor, user, photo != nil)

	if req.Content != "" {
		h.translate(translation.ContentComment, id, translation.Field{Name: "content", Text: req.Content})
	}

	c, err := getComment(ctx, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de relire le commentaire", err)
		return
	}
	utils.Created(w, c)
}

func (h *Handler) storeCommentPhoto(ctx context.Context, commentID string, photo *multipart.FileHeader) {
	f, err := photo.Open()
	if err != nil {
		logger.L().Warn("open comment photo", zap.String("comment", commentID), zap.Error(err))
		return
	}
	defer f.Close()

	img, err := h.Images.UploadCommentPhoto(ctx, f, commentID)
	if err != nil {
		logger.L().Warn("upload comment photo", zap.String("comment", commentID), zap.Error(err))
		return
	}
	if _, err := database.DB.Exec(ctx, `UPDATE comments SET photo_url = $2 WHERE id = $1`, commentID, img.URL); err != nil {
		logger.L().Warn("save comment photo", zap.String("comment", commentID), zap.Error(err))
	}
}

// notifyComment prévient l'auteur du post (commentaire) ou du commentaire parent (réponse)
func (h *Handler) notifyComment(ctx context.Context, t commentTarget, targetID, title string, targetAuthor, parentAuthor *string, actor *model.User, withPhoto bool) {
	emoji := "💬"
	if withPhoto {
		emoji = "📷"
	}
	var actorID *string
	if actor != nil {
		actorID = &actor.ID
	}
	var coordinateID *string
	if t == coordinateComments {
		coordinateID = &targetID
	}

	if parentAuthor != nil {
		if *parentAuthor != userID(actor) {
			notify(ctx, *parentAuthor, actorID, model.NotificationComment, coordinateID,
				fmt.Sprintf("%s님이 회원님의 댓글에 %s 답글을 남겼어요", actorName(actor), emoji))
		}
		return
	}
	if targetAuthor != nil && *targetAuthor != userID(actor) {
		notify(ctx, *targetAuthor, actorID, model.NotificationComment, coordinateID,
			fmt.Sprintf("%s님이 '%s'에 %s 댓글을 남겼어요", actorName(actor), title, emoji))
	}
}

// UpdateComment modifie le texte d'un commentaire (auteur ou mot de passe invité)
func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}
	var req model.UpdateCommentRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	ctx := r.Context()
	var authorID *string
	var hash string
	var deleted bool
	if err := database.DB.QueryRow(ctx,
		`SELECT author_id, guest_password, is_deleted FROM comments WHERE id = $1`, id,
	).Scan(&authorID, &hash, &deleted); err != nil {
		dbError(w, err, "commentaire introuvable")
		return
	}
	if deleted {
		utils.ErrorSimple(w, http.StatusNotFound, "commentaire introuvable")
		return
	}
	if !canModify(middleware.CurrentUser(r), authorID, hash, req.GuestPassword, false) {
		utils.ErrorSimple(w, http.StatusForbidden, "modification non autorisée")
		return
	}

	content := strings.TrimSpace(req.Content)
	if _, err := database.DB.Exec(ctx,
		`UPDATE comments SET content = $2, updated_at = NOW() WHERE id = $1`, id, content,
	); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de modifier le commentaire", err)
		return
	}
	h.retranslate(translation.ContentComment, id, translation.Field{Name: "content", Text: content})

	c, err := getComment(ctx, id)
	if err != nil {
		dbError(w, err, "commentaire introuvable")
		return
	}
	utils.Success(w, c)
}

// DeleteComment supprime (soft) un commentaire : auteur, staff ou mot de passe invité
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}
	var req model.DeleteRequest
	if err := decodeOptional(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ctx := r.Context()
	authorID, hash, err := ownership(ctx, "comments", id)
	if err != nil {
		dbError(w, err, "commentaire introuvable")
		return
	}
	if !canModify(middleware.CurrentUser(r), authorID, hash, req.GuestPassword, true) {
		utils.ErrorSimple(w, http.StatusForbidden, "suppression non autorisée")
		return
	}

	if err := softDeleteComment(ctx, id); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de supprimer le commentaire", err)
		return
	}
	h.forgetTranslations(translation.ContentComment, id)

	utils.Message(w, "commentaire supprimé")
}
