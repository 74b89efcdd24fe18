package handler

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/database"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/geo"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/guest"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/logger"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/middleware"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/scanner"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/translation"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	coordinatePageSize  = 12
	maxCoordinateImages = 5
)

const coordinateFrom = `
	FROM coordinates c
	LEFT JOIN users u ON u.id = c.author_id AND u.deleted_at IS NULL`

var coordinateSorts = map[string]string{
	"latest":    "c.created_at DESC",
	"likes":     "c.like_count DESC, c.created_at DESC",
	"copies":    "c.copy_count DESC, c.created_at DESC",
	"bookmarks": "c.bookmark_count DESC, c.created_at DESC",
}

// coordinateOrder retourne la clause ORDER BY, "latest" par défaut
func coordinateOrder(sort string) string {
	if order, ok := coordinateSorts[sort]; ok {
		return order
	}
	return coordinateSorts["latest"]
}

// coordinateWhere construit le filtre de liste (posts approuvés uniquement)
func coordinateWhere(f model.CoordinateFilter) (string, []interface{}) {
	where := " WHERE c.status = 'APPROVED'"
	args := []interface{}{}
	argCount := 1

	if q := strings.TrimSpace(f.Query); q != "" {
		p := "$" + strconv.Itoa(argCount)
		where += " AND (c.title ILIKE " + p + " OR c.postcard_name ILIKE " + p +
			" OR c.description ILIKE " + p + " OR u.nickname ILIKE " + p + ")"
		args = append(args, "%"+q+"%")
		argCount++
	}
	if f.Category != "" {
		where += " AND c.category = $" + strconv.Itoa(argCount)
		args = append(args, string(f.Category))
		argCount++
	}
	if f.Region != "" {
		where += " AND c.region = $" + strconv.Itoa(argCount)
		args = append(args, string(f.Region))
	}
	return where, args
}

// uploadAllowed applique la limite quotidienne par catégorie.
// Un classement général entre 1 et le rang d'exemption lève la limite ; 0 = illimité.
func uploadAllowed(s model.SiteSettings, allTimeRank, today int) bool {
	if s.RankerLimitExemptRank > 0 && allTimeRank > 0 && allTimeRank <= s.RankerLimitExemptRank {
		return true
	}
	if s.DailyUploadLimit <= 0 {
		return true
	}
	return today < s.DailyUploadLimit
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// watermarkFor retourne le texte du filigrane, vide si désactivé
func watermarkFor(req *model.CreateCoordinateRequest, user *model.User) string {
	if !req.WatermarkEnabled {
		return ""
	}
	if name := strings.TrimSpace(req.WatermarkName); name != "" {
		return name
	}
	if user != nil {
		return user.Nickname
	}
	return strings.TrimSpace(req.GuestNickname)
}

func formBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b || v == "on"
}

// parseCoordinateForm accepte un formulaire multipart (avec images) ou du JSON
func parseCoordinateForm(r *http.Request) (*model.CreateCoordinateRequest, []*multipart.FileHeader, error) {
	req := &model.CreateCoordinateRequest{}
	if !isMultipart(r) {
		if err := utils.DecodeJSON(r, req); err != nil {
			return nil, nil, fmt.Errorf("invalid request body: %w", err)
		}
		return req, nil, nil
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return nil, nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	lat, err := strconv.ParseFloat(r.FormValue("latitude"), 64)
	if err != nil {
		return nil, nil, fmt.Errorf("latitude invalide")
	}
	lon, err := strconv.ParseFloat(r.FormValue("longitude"), 64)
	if err != nil {
		return nil, nil, fmt.Errorf("longitude invalide")
	}
	req.Title = r.FormValue("title")
	req.PostcardName = r.FormValue("postcardName")
	req.Description = r.FormValue("description")
	req.Latitude = lat
	req.Longitude = lon
	req.Category = model.Category(r.FormValue("category"))
	req.WatermarkEnabled = formBool(r.FormValue("watermarkEnabled"))
	req.WatermarkName = r.FormValue("watermarkName")
	req.GuestNickname = r.FormValue("guestNickname")
	req.GuestPassword = r.FormValue("guestPassword")
	return req, formFiles(r, "images"), nil
}

func getCoordinate(ctx context.Context, id string) (*model.Coordinate, error) {
	c, err := scanner.ScanCoordinate(database.DB.QueryRow(ctx,
		`SELECT `+scanner.CoordinateColumns+coordinateFrom+` WHERE c.id = $1`, id))
	if err != nil {
		return nil, err
	}
	images, err := loadImages(ctx, []string{c.ID})
	if err != nil {
		return nil, err
	}
	c.Images = images[c.ID]
	return c, nil
}

// loadImages charge les images de plusieurs coordonnées en une requête
func loadImages(ctx context.Context, ids []string) (map[string][]model.CoordinateImage, error) {
	out := make(map[string][]model.CoordinateImage, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := database.DB.Query(ctx,
		`SELECT id, coordinate_id, url, public_id, position
		 FROM coordinate_images
		 WHERE coordinate_id = ANY($1::uuid[])
		 ORDER BY position`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var img model.CoordinateImage
		var coordinateID string
		if err := rows.Scan(&img.ID, &coordinateID, &img.URL, &img.PublicID, &img.Position); err != nil {
			return nil, err
		}
		out[coordinateID] = append(out[coordinateID], img)
	}
	return out, rows.Err()
}

// ownership lit l'auteur et le mot de passe invité d'un contenu
func ownership(ctx context.Context, table, id string) (*string, string, error) {
	var authorID *string
	var hash string
	err := database.DB.QueryRow(ctx,
		`SELECT author_id, guest_password FROM `+table+` WHERE id = $1`, id,
	).Scan(&authorID, &hash)
	return authorID, hash, err
}

func coordinateFields(c *model.Coordinate) []translation.Field {
	return []translation.Field{
		{Name: "title", Text: c.Title},
		{Name: "postcard_name", Text: c.PostcardName},
		{Name: "description", Text: c.Description},
	}
}

// ListCoordinates liste les posts approuvés (recherche, filtres, tri, pagination)
func (h *Handler) ListCoordinates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, size := utils.Pagination(r, coordinatePageSize, 48)
	filter := model.CoordinateFilter{
		Query:    q.Get("q"),
		Sort:     q.Get("sort"),
		Page:     page,
		PageSize: size,
	}
	if c := model.Category(strings.ToUpper(q.Get("category"))); model.ValidCategory(c) {
		filter.Category = c
	}
	if region := q.Get("region"); region != "" {
		filter.Region = model.Region(strings.ToUpper(region))
	}

	ctx := r.Context()
	where, args := coordinateWhere(filter)

	var total int
	if err := database.DB.QueryRow(ctx, `SELECT COUNT(*)`+coordinateFrom+where, args...).Scan(&total); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de compter les coordonnées", err)
		return
	}

	n := len(args)
	query := `SELECT ` + scanner.CoordinateColumns + coordinateFrom + where +
		` ORDER BY ` + coordinateOrder(filter.Sort) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2)
	rows, err := database.DB.Query(ctx, query, append(args, size, (page-1)*size)...)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les coordonnées", err)
		return
	}
	defer rows.Close()

	items := []model.Coordinate{}
	var ids []string
	for rows.Next() {
		c, err := scanner.ScanCoordinate(rows)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
			return
		}
		items = append(items, *c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
		return
	}

	images, err := loadImages(ctx, ids)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les images", err)
		return
	}
	for i := range items {
		items[i].Images = images[items[i].ID]
	}

	utils.Success(w, model.Page[model.Coordinate]{
		Items:    items,
		Page:     page,
		PageSize: size,
		Total:    total,
		HasNext:  page*size < total,
	})
}

type coordinateDetail struct {
	*model.Coordinate
	Comments   []model.Comment     `json:"comments"`
	Liked      bool                `json:"liked"`
	Bookmarked bool                `json:"bookmarked"`
	MyVote     *model.FeedbackType `json:"myVote"`
	CanEdit    bool                `json:"canEdit"`
}

// GetCoordinate retourne le détail d'un post et incrémente ses vues.
// Un post non approuvé n'est visible que par son auteur et le staff.
func (h *Handler) GetCoordinate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}

	ctx := r.Context()
	user := middleware.CurrentUser(r)

	c, err := getCoordinate(ctx, id)
	if err != nil {
		dbError(w, err, "coordonnée introuvable")
		return
	}
	if c.Status != model.StatusApproved && !c.IsAuthor(userID(user)) && !isStaff(user) {
		utils.ErrorSimple(w, http.StatusNotFound, "coordonnée introuvable")
		return
	}

	if err := database.DB.QueryRow(ctx,
		`UPDATE coordinates SET view_count = view_count + 1 WHERE id = $1 RETURNING view_count`, id,
	).Scan(&c.ViewCount); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de mettre à jour les vues", err)
		return
	}

	comments, err := listComments(ctx, "coordinate_id", id, r.URL.Query().Get("sort"))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les commentaires", err)
		return
	}

	detail := coordinateDetail{Coordinate: c, Comments: comments}
	if user != nil {
		var vote *string
		err := database.DB.QueryRow(ctx, `
			SELECT
				EXISTS (SELECT 1 FROM likes WHERE user_id = $1 AND coordinate_id = $2),
				EXISTS (SELECT 1 FROM bookmarks WHERE user_id = $1 AND coordinate_id = $2),
				(SELECT feedback_type FROM validity_feedback WHERE user_id = $1 AND coordinate_id = $2)
		`, user.ID, id).Scan(&detail.Liked, &detail.Bookmarked, &vote)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les interactions", err)
			return
		}
		if vote != nil {
			t := model.FeedbackType(*vote)
			detail.MyVote = &t
		}
		detail.CanEdit = c.IsAuthor(user.ID)
	} else {
		st := h.loadGuest(r)
		detail.Liked = st.Liked(id)
		if t, ok := st.Vote(id); ok {
			detail.MyVote = &t
		}
		detail.CanEdit = c.IsGuestPost() && st.OwnsCoordinate(id)
	}

	utils.Success(w, detail)
}

// CreateCoordinate publie un post (membre ou invité avec pseudo et mot de passe)
func (h *Handler) CreateCoordinate(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)

	req, files, err := parseCoordinateForm(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}
	if err := utils.Validate(req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}
	req.GuestNickname = strings.TrimSpace(req.GuestNickname)
	if user == nil && (req.GuestNickname == "" || req.GuestPassword == "") {
		utils.ErrorSimple(w, http.StatusBadRequest, "les invités doivent renseigner un pseudo et un mot de passe")
		return
	}
	if len(files) > maxCoordinateImages {
		utils.ErrorSimple(w, http.StatusBadRequest, fmt.Sprintf("%d images maximum", maxCoordinateImages))
		return
	}
	if len(files) > 0 && h.Images == nil {
		utils.ErrorSimple(w, http.StatusServiceUnavailable, "l'envoi d'images est désactivé")
		return
	}
	for _, fh := range files {
		if err := checkImage(fh, maxImageSize); err != nil {
			utils.Error(w, http.StatusBadRequest, err.Error(), err)
			return
		}
	}

	ctx := r.Context()
	now := h.clock()
	st := h.loadGuest(r)

	settings, err := loadSiteSettings(ctx)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de lire les paramètres", err)
		return
	}
	today, rank, err := h.uploadUsage(ctx, user, st, req.Category, now)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de vérifier la limite quotidienne", err)
		return
	}
	if !uploadAllowed(settings, rank, today) {
		utils.ErrorSimple(w, http.StatusTooManyRequests,
			fmt.Sprintf("limite de %d posts par jour atteinte pour la catégorie %s", settings.DailyUploadLimit, req.Category))
		return
	}

	var authorID *string
	var guestNickname, guestHash string
	if user != nil {
		authorID = &user.ID
	} else {
		guestNickname = req.GuestNickname
		if guestHash, err = hashGuestPassword(req.GuestPassword); err != nil {
			utils.Error(w, http.StatusInternalServerError, "impossible de sécuriser le mot de passe", err)
			return
		}
	}

	watermark := watermarkFor(req, user)
	region := geo.RegionFromBounds(req.Latitude, req.Longitude)

	var id string
	err = database.DB.QueryRow(ctx, `
		INSERT INTO coordinates (
			author_id, guest_nickname, guest_password, title, postcard_name, description,
			latitude, longitude, category, status, region, watermark_enabled, watermark_name,
			created_at, updated_at, approved_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'APPROVED', $10, $11, $12, $13, $13, $13)
		RETURNING id`,
		authorID, guestNickname, guestHash, req.Title, req.PostcardName, req.Description,
		req.Latitude, req.Longitude, string(req.Category), string(region), watermark != "", watermark, now,
	).Scan(&id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de créer la coordonnée", err)
		return
	}

	h.storeCoordinateImages(ctx, id, files, watermark)

	if user == nil {
		st.OwnCoordinate(id)
		st.RecordUpload(req.Category, now)
		h.saveGuest(w, st)
	} else {
		if err := refreshTotalPosts(ctx, user.ID); err != nil {
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
		utils.Error(w, http.StatusInternalServerError, "impossible de relire la coordonnée", err)
		return
	}

	h.refineRegion(id, req.Latitude, req.Longitude, region)
	h.translate(translation.ContentCoordinate, id, coordinateFields(c)...)

	utils.Created(w, c)
}

// uploadUsage retourne les posts du jour dans la catégorie et le rang général
func (h *Handler) uploadUsage(ctx context.Context, user *model.User, st *guest.State, category model.Category, now time.Time) (int, int, error) {
	if user == nil {
		return st.UploadsToday(category, now), 0, nil
	}

	var today int
	err := database.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM coordinates WHERE author_id = $1 AND category = $2 AND created_at >= $3`,
		user.ID, string(category), startOfDay(now),
	).Scan(&today)
	if err != nil {
		return 0, 0, err
	}

	if h.Rankings == nil {
		return today, 0, nil
	}
	rank, err := h.Rankings.AllTimeRank(ctx, user.ID)
	return today, rank, err
}

// storeCoordinateImages envoie les images une à une. Un échec est logué sans annuler le post.
func (h *Handler) storeCoordinateImages(ctx context.Context, coordinateID string, files []*multipart.FileHeader, watermark string) {
	for i, fh := range files {
		f, err := fh.Open()
		if err != nil {
			logger.L().Warn("open coordinate image", zap.String("coordinate", coordinateID), zap.Error(err))
			continue
		}
		img, err := h.Images.UploadCoordinateImage(ctx, f, coordinateID, i, watermark)
		f.Close()
		if err != nil {
			logger.L().Warn("upload coordinate image", zap.String("coordinate", coordinateID), zap.Error(err))
			continue
		}
		if _, err := database.DB.Exec(ctx,
			`INSERT INTO coordinate_images (coordinate_id, url, public_id, position) VALUES ($1, $2, $3, $4)`,
			coordinateID, img.URL, img.PublicID, i,
		); err != nil {
			logger.L().Warn("save coordinate image", zap.String("coordinate", coordinateID), zap.Error(err))
		}
	}
}

// refineRegion remplace la région par celle du géocodage inverse, quelques secondes plus tard
func (h *Handler) refineRegion(id string, lat, lon float64, current model.Region) {
	if h.Geocoder == nil || h.Tasks == nil {
		return
	}
	h.Tasks.After(h.RefineDelay, "refine-region", func(ctx context.Context) error {
		region, ok, err := h.Geocoder.Region(ctx, lat, lon)
		if err != nil || !ok || region == current {
			return err
		}
		_, err = database.DB.Exec(ctx, `UPDATE coordinates SET region = $2 WHERE id = $1`, id, string(region))
		return err
	})
}

// UpdateCoordinate modifie un post (auteur ou mot de passe invité)
func (h *Handler) UpdateCoordinate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}
	var req model.UpdateCoordinateRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	ctx := r.Context()
	authorID, hash, err := ownership(ctx, "coordinates", id)
	if err != nil {
		dbError(w, err, "coordonnée introuvable")
		return
	}
	if !canModify(middleware.CurrentUser(r), authorID, hash, req.GuestPassword, false) {
		utils.ErrorSimple(w, http.StatusForbidden, "modification non autorisée")
		return
	}

	query := "UPDATE coordinates SET updated_at = NOW()"
	args := []interface{}{}
	argCount := 1
	set := func(column string, value interface{}) {
		query += ", " + column + " = $" + strconv.Itoa(argCount)
		args = append(args, value)
		argCount++
	}
	if req.Title != nil {
		set("title", *req.Title)
	}
	if req.PostcardName != nil {
		set("postcard_name", *req.PostcardName)
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.Category != nil {
		set("category", string(*req.Category))
	}
	query += " WHERE id = $" + strconv.Itoa(argCount)
	args = append(args, id)

	if _, err := database.DB.Exec(ctx, query, args...); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de modifier la coordonnée", err)
		return
	}

	c, err := getCoordinate(ctx, id)
	if err != nil {
		dbError(w, err, "coordonnée introuvable")
		return
	}
	if req.Title != nil || req.PostcardName != nil || req.Description != nil {
		h.retranslate(translation.ContentCoordinate, id, coordinateFields(c)...)
	}

	utils.Success(w, c)
}

// DeleteCoordinate supprime définitivement un post (auteur, staff ou mot de passe invité)
func (h *Handler) DeleteCoordinate(w http.ResponseWriter, r *http.Request) {
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
	authorID, hash, err := ownership(ctx, "coordinates", id)
	if err != nil {
		dbError(w, err, "coordonnée introuvable")
		return
	}
	if !canModify(middleware.CurrentUser(r), authorID, hash, req.GuestPassword, true) {
		utils.ErrorSimple(w, http.StatusForbidden, "suppression non autorisée")
		return
	}

	publicIDs, err := deleteCoordinates(ctx, []string{id})
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de supprimer la coordonnée", err)
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
	h.forgetTranslations(translation.ContentCoordinate, id)
	h.deleteImages(publicIDs...)

	utils.Message(w, "coordonnée supprimée")
}

// deleteCoordinates supprime les posts et retourne les public IDs de leurs images
func deleteCoordinates(ctx context.Context, ids []string) ([]string, error) {
	rows, err := database.DB.Query(ctx,
		`SELECT public_id FROM coordinate_images WHERE coordinate_id = ANY($1::uuid[]) AND public_id <> ''`,
		pq.Array(ids))
	if err != nil {
		return nil, err
	}
	var publicIDs []string
	for rows.Next() {
		var pid string
		if err := rows.Scan(&pid); err != nil {
			rows.Close()
			return nil, err
		}
		publicIDs = append(publicIDs, pid)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := database.DB.Exec(ctx, `DELETE FROM coordinates WHERE id = ANY($1::uuid[])`, pq.Array(ids)); err != nil {
		return nil, err
	}
	return publicIDs, nil
}

// CopyCoordinate renvoie les coordonnées à copier. Le compteur n'augmente
// qu'une fois par navigateur toutes les 30 minutes.
func (h *Handler) CopyCoordinate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}

	ctx := r.Context()
	var title string
	var authorID *string
	res := model.CopyResult{}
	err := database.DB.QueryRow(ctx,
		`SELECT title, author_id, latitude, longitude, copy_count FROM coordinates WHERE id = $1 AND status = 'APPROVED'`, id,
	).Scan(&title, &authorID, &res.Latitude, &res.Longitude, &res.CopyCount)
	if err != nil {
		dbError(w, err, "coordonnée introuvable")
		return
	}
	res.Coords = fmt.Sprintf("%v, %v", res.Latitude, res.Longitude)

	st := h.loadGuest(r)
	if st.AllowCopy(id, h.clock()) {
		if err := database.DB.QueryRow(ctx,
			`UPDATE coordinates SET copy_count = copy_count + 1 WHERE id = $1 RETURNING copy_count`, id,
		).Scan(&res.CopyCount); err != nil {
			utils.Error(w, http.StatusInternalServerError, "impossible de compter la copie", err)
			return
		}
		res.Counted = true

		if guest.IsMilestone(res.CopyCount) {
			res.Milestone = res.CopyCount
			if authorID != nil {
				notify(ctx, *authorID, nil, model.NotificationCopyMilestone, &id,
					fmt.Sprintf("'%s'이(가) 📋 %d회 복사되었어요!", title, res.CopyCount))
			}
		}
		h.saveGuest(w, st)
	}

	utils.Success(w, res)
}

// MapMarkers retourne les posts approuvés à afficher sur la carte
func (h *Handler) MapMarkers(w http.ResponseWriter, r *http.Request) {
	query := `
		SELECT c.id, c.title, c.latitude, c.longitude, c.category, c.region, c.copy_count, c.like_count,
			COALESCE((SELECT i.url FROM coordinate_images i WHERE i.coordinate_id = c.id ORDER BY i.position LIMIT 1), '')
		FROM coordinates c
		WHERE c.status = 'APPROVED'`
	args := []interface{}{}
	if category := model.Category(strings.ToUpper(r.URL.Query().Get("category"))); model.ValidCategory(category) {
		query += " AND c.category = $1"
		args = append(args, string(category))
	}

	rows, err := database.DB.Query(r.Context(), query, args...)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les marqueurs", err)
		return
	}
	defer rows.Close()

	markers := []model.MapMarker{}
	for rows.Next() {
		var m model.MapMarker
		if err := rows.Scan(&m.ID, &m.Title, &m.Latitude, &m.Longitude, &m.Category, &m.Region,
			&m.CopyCount, &m.LikeCount, &m.Image); err != nil {
			utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
			return
		}
		markers = append(markers, m)
	}

	utils.Success(w, markers)
}
