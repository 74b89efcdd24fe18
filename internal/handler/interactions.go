package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/database"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/guest"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/middleware"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/scanner"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
	"github.com/jackc/pgx/v5"
)

// Âge minimal d'un post pour recevoir un avis de validité
const validityMinAge = 30 * 24 * time.Hour

const notificationListSize = 20

// likeTarget décrit un contenu aimable : table des likes membres et table du compteur
type likeTarget struct {
	likes  string
	column string
	table  string
	guest  func(st *guest.State, id string) bool
}

var (
	coordinateLikes = likeTarget{"likes", "coordinate_id", "coordinates", (*guest.State).ToggleLike}
	commentLikes    = likeTarget{"comment_likes", "comment_id", "comments", (*guest.State).ToggleCommentLike}
	journalLikes    = likeTarget{"farming_journal_likes", "journal_id", "farming_journals", (*guest.State).ToggleJournalLike}
)

// toggle bascule le like d'un membre (en base) ou d'un invité (cookie) puis ajuste like_count
func (t likeTarget) toggle(ctx context.Context, user *model.User, st *guest.State, id string) (model.ToggleResult, error) {
	var res model.ToggleResult
	err := pgx.BeginFunc(ctx, database.DB, func(tx pgx.Tx) error {
		if user != nil {
			tag, err := tx.Exec(ctx, `DELETE FROM `+t.likes+` WHERE user_id = $1 AND `+t.column+` = $2`, user.ID, id)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				if _, err := tx.Exec(ctx, `INSERT INTO `+t.likes+` (user_id, `+t.column+`) VALUES ($1, $2)`, user.ID, id); err != nil {
					return err
				}
				res.Active = true
			}
		} else {
			res.Active = t.guest(st, id)
		}

		delta := -1
		if res.Active {
			delta = 1
		}
		return tx.QueryRow(ctx,
			`UPDATE `+t.table+` SET like_count = GREATEST(like_count + $2, 0) WHERE id = $1 RETURNING like_count`,
			id, delta,
		).Scan(&res.Count)
	})
	return res, err
}

// voteTransition : un vote identique annule, un vote opposé bascule
func voteTransition(current, submitted model.FeedbackType) (next model.FeedbackType, dValid, dInvalid int) {
	apply := func(t model.FeedbackType, d int) {
		switch t {
		case model.FeedbackValid:
			dValid += d
		case model.FeedbackInvalid:
			dInvalid += d
		}
	}
	apply(current, -1)
	if current == submitted {
		return "", dValid, dInvalid
	}
	apply(submitted, 1)
	return submitted, dValid, dInvalid
}

// validityOpen indique si un post est assez ancien pour être évalué
func validityOpen(createdAt, now time.Time) bool {
	return !createdAt.After(now.Add(-validityMinAge))
}

// ToggleLike aime ou n'aime plus un post. Impossible sur son propre post.
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}

	ctx := r.Context()
	user := middleware.CurrentUser(r)

	var authorID *string
	var title string
	if err := database.DB.QueryRow(ctx,
		`SELECT author_id, title FROM coordinates WHERE id = $1`, id,
	).Scan(&authorID, &title); err != nil {
		dbError(w, err, "coordonnée introuvable")
		return
	}
	if user != nil && authorID != nil && *authorID == user.ID {
		utils.ErrorSimple(w, http.StatusBadRequest, "impossible d'aimer son propre post")
		return
	}

	st := h.loadGuest(r)
	res, err := coordinateLikes.toggle(ctx, user, st, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de modifier le like", err)
		return
	}
	if user == nil {
		h.saveGuest(w, st)
	}

	if authorID != nil {
		if res.Active {
			var actorID *string
			if user != nil {
				actorID = &user.ID
			}
			notify(ctx, *authorID, actorID, model.NotificationLike, &id,
				fmt.Sprintf("%s님이 '%s'에 ❤️ 좋아요를 눌렀어요", actorName(user), title))
		}
		if _, err := database.DB.Exec(ctx, `
			UPDATE users SET total_likes_received = (
				SELECT COUNT(*) FROM likes l
				INNER JOIN coordinates c ON c.id = l.coordinate_id
				WHERE c.author_id = $1
			) WHERE id = $1`, *authorID); err != nil {
			utils.Error(w, http.StatusInternalServerError, "impossible de mettre à jour le profil", err)
			return
		}
		if err := h.refreshAuthorRanking(ctx, authorID); err != nil {
			utils.Error(w, http.StatusInternalServerError, "impossible de mettre à jour le classement", err)
			return
		}
	}

	utils.Success(w, res)
}

// ToggleCommentLike aime ou n'aime plus un commentaire
func (h *Handler) ToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}

	ctx := r.Context()
	user := middleware.CurrentUser(r)

	var authorID *string
	var deleted bool
	if err := database.DB.QueryRow(ctx,
		`SELECT author_id, is_deleted FROM comments WHERE id = $1`, id,
	).Scan(&authorID, &deleted); err != nil {
		dbError(w, err, "commentaire introuvable")
		return
	}
	if deleted {
		utils.ErrorSimple(w, http.StatusNotFound, "commentaire introuvable")
		return
	}
	if user != nil && authorID != nil && *authorID == user.ID {
		utils.ErrorSimple(w, http.StatusBadRequest, "impossible d'aimer son propre commentaire")
		return
	}

	st := h.loadGuest(r)
	res, err := commentLikes.toggle(ctx, user, st, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de modifier le like", err)
		return
	}
	if user == nil {
		h.saveGuest(w, st)
	}

	utils.Success(w, res)
}

// ToggleBookmark ajoute ou retire un favori (membres uniquement)
func (h *Handler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "authentification requise", err)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}

	ctx := r.Context()
	var res model.ToggleResult
	err = pgx.BeginFunc(ctx, database.DB, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM bookmarks WHERE user_id = $1 AND coordinate_id = $2`, user.ID, id)
		if err != nil {
			return err
		}
		delta := -1
		if tag.RowsAffected() == 0 {
			if _, err := tx.Exec(ctx, `INSERT INTO bookmarks (user_id, coordinate_id) VALUES ($1, $2)`, user.ID, id); err != nil {
				return err
			}
			res.Active = true
			delta = 1
		}
		return tx.QueryRow(ctx,
			`UPDATE coordinates SET bookmark_count = GREATEST(bookmark_count + $2, 0) WHERE id = $1 RETURNING bookmark_count`,
			id, delta,
		).Scan(&res.Count)
	})
	if err != nil {
		dbError(w, err, "coordonnée introuvable")
		return
	}

	utils.Success(w, res)
}

// SubmitValidity enregistre un avis VALID/INVALID sur un post de plus de 30 jours
func (h *Handler) SubmitValidity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}
	var req model.FeedbackRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "type d'avis invalide (VALID ou INVALID)", err)
		return
	}

	ctx := r.Context()
	user := middleware.CurrentUser(r)

	var authorID *string
	var createdAt time.Time
	if err := database.DB.QueryRow(ctx,
		`SELECT author_id, created_at FROM coordinates WHERE id = $1`, id,
	).Scan(&authorID, &createdAt); err != nil {
		dbError(w, err, "coordonnée introuvable")
		return
	}
	if !validityOpen(createdAt, h.clock()) {
		utils.ErrorSimple(w, http.StatusBadRequest, "seuls les posts de plus d'un mois peuvent être évalués")
		return
	}
	if user != nil && authorID != nil && *authorID == user.ID {
		utils.ErrorSimple(w, http.StatusBadRequest, "impossible d'évaluer son propre post")
		return
	}

	st := h.loadGuest(r)
	var res model.FeedbackResult
	err := pgx.BeginFunc(ctx, database.DB, func(tx pgx.Tx) error {
		var current model.FeedbackType
		if user != nil {
			var stored *string
			err := tx.QueryRow(ctx,
				`SELECT feedback_type FROM validity_feedback WHERE user_id = $1 AND coordinate_id = $2`,
				user.ID, id,
			).Scan(&stored)
			if err != nil && !database.IsNotFound(err) {
				return err
			}
			if stored != nil {
				current = model.FeedbackType(*stored)
			}
		} else if t, ok := st.Vote(id); ok {
			current = t
		}

		next, dValid, dInvalid := voteTransition(current, req.FeedbackType)

		if user != nil {
			var err error
			switch {
			case next == "":
				_, err = tx.Exec(ctx, `DELETE FROM validity_feedback WHERE user_id = $1 AND coordinate_id = $2`, user.ID, id)
			default:
				_, err = tx.Exec(ctx, `
					INSERT INTO validity_feedback (user_id, coordinate_id, feedback_type) VALUES ($1, $2, $3)
					ON CONFLICT (user_id, coordinate_id) DO UPDATE SET feedback_type = EXCLUDED.feedback_type`,
					user.ID, id, string(next))
			}
			if err != nil {
				return err
			}
		} else {
			st.SetVote(id, next)
		}

		if next != "" {
			res.Submitted = &next
		}
		return tx.QueryRow(ctx, `
			UPDATE coordinates SET
				valid_count = GREATEST(valid_count + $2, 0),
				invalid_count = GREATEST(invalid_count + $3, 0),
				last_verified_at = NOW()
			WHERE id = $1
			RETURNING valid_count, invalid_count`,
			id, dValid, dInvalid,
		).Scan(&res.ValidCount, &res.InvalidCount)
	})
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible d'enregistrer l'avis", err)
		return
	}
	if user == nil {
		h.saveGuest(w, st)
	}

	if authorID != nil {
		if _, err := database.DB.Exec(ctx, `
			UPDATE users SET total_valid_received = (
				SELECT COUNT(*) FROM validity_feedback v
				INNER JOIN coordinates c ON c.id = v.coordinate_id
				WHERE c.author_id = $1 AND v.feedback_type = 'VALID'
			) WHERE id = $1`, *authorID); err != nil {
			utils.Error(w, http.StatusInternalServerError, "impossible de mettre à jour le profil", err)
			return
		}
		if err := h.refreshAuthorRanking(ctx, authorID); err != nil {
			utils.Error(w, http.StatusInternalServerError, "impossible de mettre à jour le classement", err)
			return
		}
	}

	utils.Success(w, res)
}

// GetNotifications retourne les 20 dernières notifications
func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "authentification requise", err)
		return
	}

	rows, err := database.DB.Query(r.Context(), `
		SELECT `+scanner.NotificationColumns+`
		FROM notifications n
		LEFT JOIN users u ON u.id = n.actor_id
		WHERE n.recipient_id = $1
		ORDER BY n.created_at DESC
		LIMIT $2`, user.ID, notificationListSize)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les notifications", err)
		return
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		n, err := scanner.ScanNotification(rows)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
			return
		}
		notifications = append(notifications, *n)
	}

	utils.Success(w, notifications)
}

// GetUnreadCount retourne le nombre de notifications non lues
func (h *Handler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "authentification requise", err)
		return
	}

	var count int
	if err := database.DB.QueryRow(r.Context(),
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND NOT is_read`, user.ID,
	).Scan(&count); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de compter les notifications", err)
		return
	}

	utils.Success(w, map[string]int{"unreadCount": count})
}

// MarkNotificationRead marque une notification du destinataire comme lue
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "authentification requise", err)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}

	tag, err := database.DB.Exec(r.Context(),
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient_id = $2`, id, user.ID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de modifier la notification", err)
		return
	}
	if tag.RowsAffected() == 0 {
		utils.ErrorSimple(w, http.StatusNotFound, "notification introuvable")
		return
	}

	utils.Message(w, "notification lue")
}

func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "authentification requise", err)
		return
	}

	if _, err := database.DB.Exec(r.Context(),
		`UPDATE notifications SET is_read = TRUE WHERE recipient_id = $1 AND NOT is_read`, user.ID,
	); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de modifier les notifications", err)
		return
	}

	utils.Message(w, "notifications lues")
}

func (h *Handler) DeleteAllNotifications(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "authentification requise", err)
		return
	}

	if _, err := database.DB.Exec(r.Context(),
		`DELETE FROM notifications WHERE recipient_id = $1`, user.ID,
	); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de supprimer les notifications", err)
		return
	}

	utils.Message(w, "notifications supprimées")
}
