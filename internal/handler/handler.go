package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/background"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/database"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/guest"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/logger"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/ranking"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/services"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/translation"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RegionResolver affine la région d'une coordonnée (geo.Geocoder)
type RegionResolver interface {
	Region(ctx context.Context, lat, lon float64) (model.Region, bool, error)
}

// ImageStore stocke les images envoyées (services.CloudinaryService)
type ImageStore interface {
	UploadCoordinateImage(ctx context.Context, file io.Reader, coordinateID string, position int, watermark string) (*services.UploadedImage, error)
	UploadCommentPhoto(ctx context.Context, file io.Reader, commentID string) (*services.UploadedImage, error)
	UploadJournalImage(ctx context.Context, file io.Reader, journalID string) (*services.UploadedImage, error)
	UploadProfileImage(ctx context.Context, file io.Reader, userID string) (*services.UploadedImage, error)
	DeleteImage(ctx context.Context, publicID string) error
}

// Handler regroupe les dépendances des routes HTTP.
// Geocoder, Images, Translations et Tasks peuvent être nil.
type Handler struct {
	Rankings     *ranking.Service
	Translations *translation.Service
	Geocoder     RegionResolver
	Images       ImageStore
	Guests       *guest.Codec
	Tasks        *background.Runner
	RefineDelay  time.Duration

	now func() time.Time
}

func (h *Handler) clock() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.Message(w, "ok")
}

// pathID lit une variable de route qui doit être un UUID
func pathID(r *http.Request, name string) (string, bool) {
	id := mux.Vars(r)[name]
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func hashGuestPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func checkGuestPassword(hash, password string) bool {
	if hash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// canModify : l'auteur, le staff si staffAllowed, ou le bon mot de passe invité
func canModify(user *model.User, authorID *string, guestHash, password string, staffAllowed bool) bool {
	if user != nil {
		if authorID != nil && *authorID == user.ID {
			return true
		}
		if staffAllowed && (user.IsStaff || user.IsSuperuser) {
			return true
		}
	}
	return authorID == nil && checkGuestPassword(guestHash, password)
}

func isStaff(user *model.User) bool {
	return user != nil && (user.IsStaff || user.IsSuperuser)
}

func userID(user *model.User) string {
	if user == nil {
		return ""
	}
	return user.ID
}

// dbError répond 404 sur ligne absente, 409 sur doublon, 500 sinon
func dbError(w http.ResponseWriter, err error, notFound string) {
	switch {
	case database.IsNotFound(err):
		utils.ErrorSimple(w, http.StatusNotFound, notFound)
	case database.IsUniqueViolation(err):
		utils.Error(w, http.StatusConflict, "ressource déjà existante", err)
	default:
		utils.Error(w, http.StatusInternalServerError, "erreur base de données", err)
	}
}

func loadSiteSettings(ctx context.Context) (model.SiteSettings, error) {
	var s model.SiteSettings
	err := database.DB.QueryRow(ctx,
		`SELECT daily_upload_limit, ranker_limit_exempt_rank, updated_at FROM site_settings WHERE id = 1`,
	).Scan(&s.DailyUploadLimit, &s.RankerLimitExemptRank, &s.UpdatedAt)
	if database.IsNotFound(err) {
		return model.DefaultSiteSettings, nil
	}
	return s, err
}

// refreshAuthorRanking met à jour le classement de l'auteur d'un contenu
func (h *Handler) refreshAuthorRanking(ctx context.Context, authorID *string) error {
	if authorID == nil || h.Rankings == nil {
		return nil
	}
	return h.Rankings.UpdateUserRanking(ctx, *authorID)
}

func refreshTotalPosts(ctx context.Context, authorID string) error {
	_, err := database.DB.Exec(ctx,
		`UPDATE users SET total_posts = (
			SELECT COUNT(*) FROM coordinates WHERE author_id = $1 AND status = 'APPROVED'
		), updated_at = NOW() WHERE id = $1`, authorID)
	return err
}

func (h *Handler) loadGuest(r *http.Request) *guest.State {
	if h.Guests == nil {
		return &guest.State{}
	}
	return h.Guests.Load(r)
}

func (h *Handler) saveGuest(w http.ResponseWriter, st *guest.State) {
	if h.Guests == nil {
		return
	}
	if err := h.Guests.Save(w, st, h.clock()); err != nil {
		logger.L().Warn("save guest state", zap.Error(err))
	}
}

// background lance fn hors requête quand un runner est configuré
func (h *Handler) background(name string, fn func(ctx context.Context) error) {
	if h.Tasks == nil {
		return
	}
	h.Tasks.Go(name, fn)
}

func (h *Handler) translate(contentType, objectID string, fields ...translation.Field) {
	if h.Translations == nil {
		return
	}
	h.background("translate-"+contentType, func(ctx context.Context) error {
		return h.Translations.TranslateContent(ctx, contentType, objectID, fields)
	})
}

// retranslate efface les traductions existantes avant d'en créer de nouvelles
func (h *Handler) retranslate(contentType, objectID string, fields ...translation.Field) {
	if h.Translations == nil {
		return
	}
	h.background("retranslate-"+contentType, func(ctx context.Context) error {
		if err := h.Translations.Forget(ctx, contentType, objectID); err != nil {
			return err
		}
		return h.Translations.TranslateContent(ctx, contentType, objectID, fields)
	})
}

func (h *Handler) forgetTranslations(contentType, objectID string) {
	if h.Translations == nil {
		return
	}
	h.background("forget-"+contentType, func(ctx context.Context) error {
		return h.Translations.Forget(ctx, contentType, objectID)
	})
}

func (h *Handler) deleteImages(publicIDs ...string) {
	if h.Images == nil || len(publicIDs) == 0 {
		return
	}
	h.background("delete-images", func(ctx context.Context) error {
		var errs []error
		for _, id := range publicIDs {
			if id == "" {
				continue
			}
			errs = append(errs, h.Images.DeleteImage(ctx, id))
		}
		return errors.Join(errs...)
	})
}

// notify enregistre une notification. Les erreurs sont seulement loguées.
func notify(ctx context.Context, recipientID string, actorID *string, kind model.NotificationType, coordinateID *string, message string) {
	_, err := database.DB.Exec(ctx,
		`INSERT INTO notifications (recipient_id, actor_id, notification_type, coordinate_id, message)
		 VALUES ($1, $2, $3, $4, $5)`,
		recipientID, actorID, string(kind), coordinateID, message)
	if err != nil {
		logger.L().Warn("create notification", zap.String("type", string(kind)), zap.Error(err))
	}
}

// actorName est le nom affiché dans les notifications
func actorName(user *model.User) string {
	if user == nil {
		return "익명"
	}
	return user.Nickname
}
