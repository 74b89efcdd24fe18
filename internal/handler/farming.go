package handler

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/database"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/logger"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/middleware"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/scanner"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/translation"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const journalPageSize = 12

const journalFrom = `
	FROM farming_journals j
	LEFT JOIN users u ON u.id = j.author_id AND u.deleted_at IS NULL`

const farmingRequestFrom = `
	FROM farming_requests f
	LEFT JOIN users u ON u.id = f.author_id AND u.deleted_at IS NULL`

func getJournal(ctx context.Context, id string) (*model.FarmingJournal, error) {
	return scanner.ScanJournal(database.DB.QueryRow(ctx,
		`SELECT `+scanner.JournalColumns+journalFrom+` WHERE j.id = $1`, id))
}

func getFarmingRequest(ctx context.Context, id string) (*model.FarmingRequest, error) {
	return scanner.ScanFarmingRequest(database.DB.QueryRow(ctx,
		`SELECT `+scanner.FarmingRequestColumns+farmingRequestFrom+` WHERE f.id = $1`, id))
}

func scanJournals(rows pgx.Rows) ([]model.FarmingJournal, error) {
	defer rows.Close()
	items := []model.FarmingJournal{}
	for rows.Next() {
		j, err := scanner.ScanJournal(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *j)
	}
	return items, rows.Err()
}

func scanFarmingRequests(rows pgx.Rows) ([]model.FarmingRequest, error) {
	defer rows.Close()
	items := []model.FarmingRequest{}
	for rows.Next() {
		f, err := scanner.ScanFarmingRequest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	return items, rows.Err()
}

func journalFields(title, content string) []translation.Field {
	return []translation.Field{
		{Name: "title", Text: title},
		{Name: "content", Text: content},
	}
}

// parseJournalForm accepte un formulaire multipart (image optionnelle) ou du JSON
func parseJournalForm(r *http.Request) (*model.CreateJournalRequest, *multipart.FileHeader, error) {
	req := &model.CreateJournalRequest{}
	if !isMultipart(r) {
		if err := utils.DecodeJSON(r, req); err != nil {
			return nil, nil, fmt.Errorf("invalid request body: %w", err)
		}
		return req, nil, nil
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return nil, nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	req.Title = r.FormValue("title")
	req.Content = r.FormValue("content")
	req.GuestNickname = r.FormValue("guestNickname")
	req.GuestPassword = r.FormValue("guestPassword")

	var image *multipart.FileHeader
	if files := formFiles(r, "image"); len(files) > 0 {
		image = files[0]
	}
	return req, image, nil
}

// ListJournals liste les journaux de farming, les plus récents d'abord
func (h *Handler) ListJournals(w http.ResponseWriter, r *http.Request) {
	page, size := utils.Pagination(r, journalPageSize, 48)
	query := " WHERE 1=1"
	args := []interface{}{}
	argCount := 1

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		query += " AND (j.title ILIKE $" + strconv.Itoa(argCount) + " OR j.content ILIKE $" + strconv.Itoa(argCount) + ")"
		args = append(args, "%"+q+"%")
		argCount++
	}

	ctx := r.Context()
	var total int
	if err := database.DB.QueryRow(ctx, `SELECT COUNT(*)`+journalFrom+query, args...).Scan(&total); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de compter les journaux", err)
		return
	}

	query += " ORDER BY j.created_at DESC LIMIT $" + strconv.Itoa(argCount) + " OFFSET $" + strconv.Itoa(argCount+1)
	args = append(args, size, (page-1)*size)

	rows, err := database.DB.Query(ctx, `SELECT `+scanner.JournalColumns+journalFrom+query, args...)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les journaux", err)
		return
	}
	items, err := scanJournals(rows)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
		return
	}

	utils.Success(w, model.Page[model.FarmingJournal]{
		Items:    items,
		Page:     page,
		PageSize: size,
		Total:    total,
		HasNext:  page*size < total,
	})
}

type journalDetail struct {
	*model.FarmingJournal
	Comments []model.Comment `json:"comments"`
	Liked    bool            `json:"liked"`
	CanEdit  bool            `json:"canEdit"`
}

// GetJournal retourne un journal avec ses commentaires et incrémente ses vues
func (h *Handler) GetJournal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}

	ctx := r.Context()
	j, err := getJournal(ctx, id)
	if err != nil {
		dbError(w, err, journalComments.notFound)
		return
	}
	if err := database.DB.QueryRow(ctx,
		`UPDATE farming_journals SET view_count = view_count + 1 WHERE id = $1 RETURNING view_count`, id,
	).Scan(&j.ViewCount); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de mettre à jour les vues", err)
		return
	}

	comments, err := listComments(ctx, journalComments.column, id, r.URL.Query().Get("sort"))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les commentaires", err)
		return
	}

	detail := journalDetail{FarmingJournal: j, Comments: comments}
	if user := middleware.CurrentUser(r); user != nil {
		if err := database.DB.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM farming_journal_likes WHERE user_id = $1 AND journal_id = $2)`,
			user.ID, id,
		).Scan(&detail.Liked); err != nil {
			utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les interactions", err)
			return
		}
		detail.CanEdit = j.AuthorID != nil && *j.AuthorID == user.ID
	} else {
		st := h.loadGuest(r)
		detail.Liked = st.JournalLiked(id)
		detail.CanEdit = j.AuthorID == nil && st.OwnsJournal(id)
	}

	utils.Success(w, detail)
}

// CreateJournal publie un journal de farming (membre ou invité)
func (h *Handler) CreateJournal(w http.ResponseWriter, r *http.Request) {
	req, image, err := parseJournalForm(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}
	if err := utils.Validate(req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}
	if image != nil {
		if h.Images == nil {
			utils.ErrorSimple(w, http.StatusServiceUnavailable, "l'envoi d'images est désactivé")
			return
		}
		if err := checkImage(image, maxImageSize); err != nil {
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
		nickname = strings.TrimSpace(req.GuestNickname)
		if nickname == "" || req.GuestPassword == "" {
			utils.ErrorSimple(w, http.StatusBadRequest, "les invités doivent renseigner un pseudo et un mot de passe")
			return
		}
		if hash, err = hashGuestPassword(req.GuestPassword); err != nil {
			utils.Error(w, http.StatusInternalServerError, "impossible de sécuriser le mot de passe", err)
			return
		}
	}

	ctx := r.Context()
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)

	var id string
	if err := database.DB.QueryRow(ctx, `
		INSERT INTO farming_journals (author_id, guest_nickname, guest_password, title, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		authorID, nickname, hash, title, content,
	).Scan(&id); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de créer le journal", err)
		return
	}

	if image != nil {
		h.storeJournalImage(ctx, id, image)
	}
	if user == nil {
		st := h.loadGuest(r)
		st.OwnJournal(id)
		h.saveGuest(w, st)
	}
	h.translate(translation.ContentJournal, id, journalFields(title, content)...)

	j, err := getJournal(ctx, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de relire le journal", err)
		return
	}
	utils.Created(w, j)
}

func (h *Handler) storeJournalImage(ctx context.Context, journalID string, image *multipart.FileHeader) {
	f, err := image.Open()
	if err != nil {
		logger.L().Warn("open journal image", zap.String("journal", journalID), zap.Error(err))
		return
	}
	defer f.Close()

	img, err := h.Images.UploadJournalImage(ctx, f, journalID)
	if err != nil {
		logger.L().Warn("upload journal image", zap.String("journal", journalID), zap.Error(err))
		return
	}
	if _, err := database.DB.Exec(ctx, `UPDATE farming_journals SET image_url = $2 WHERE id = $1`, journalID, img.URL); err != nil {
		logger.L().Warn("save journal image", zap.String("journal", journalID), zap.Error(err))
	}
}

// UpdateJournal modifie le titre ou le contenu (auteur ou mot de passe invité)
func (h *Handler) UpdateJournal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}
	var req model.UpdateJournalRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	ctx := r.Context()
	authorID, hash, err := ownership(ctx, "farming_journals", id)
	if err != nil {
		dbError(w, err, journalComments.notFound)
		return
	}
	if !canModify(middleware.CurrentUser(r), authorID, hash, req.GuestPassword, false) {
		utils.ErrorSimple(w, http.StatusForbidden, "modification non autorisée")
		return
	}

	query := "UPDATE farming_journals SET updated_at = NOW()"
	args := []interface{}{}
	argCount := 1
	if req.Title != nil {
		query += ", title = $" + strconv.Itoa(argCount)
		args = append(args, strings.TrimSpace(*req.Title))
		argCount++
	}
	if req.Content != nil {
		query += ", content = $" + strconv.Itoa(argCount)
		args = append(args, strings.TrimSpace(*req.Content))
		argCount++
	}
	query += " WHERE id = $" + strconv.Itoa(argCount)
	args = append(args, id)

	if _, err := database.DB.Exec(ctx, query, args...); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de modifier le journal", err)
		return
	}

	j, err := getJournal(ctx, id)
	if err != nil {
		dbError(w, err, journalComments.notFound)
		return
	}
	if req.Title != nil || req.Content != nil {
		h.retranslate(translation.ContentJournal, id, journalFields(j.Title, j.Content)...)
	}
	utils.Success(w, j)
}

// DeleteJournal supprime un journal (auteur, staff ou mot de passe invité)
func (h *Handler) DeleteJournal(w http.ResponseWriter, r *http.Request) {
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
	authorID, hash, err := ownership(ctx, "farming_journals", id)
	if err != nil {
		dbError(w, err, journalComments.notFound)
		return
	}
	if !canModify(middleware.CurrentUser(r), authorID, hash, req.GuestPassword, true) {
		utils.ErrorSimple(w, http.StatusForbidden, "suppression non autorisée")
		return
	}

	if _, err := database.DB.Exec(ctx, `DELETE FROM farming_journals WHERE id = $1`, id); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de supprimer le journal", err)
		return
	}
	// les likes reçus sur ce journal sortent du score de farming
	if err := h.refreshAuthorRanking(ctx, authorID); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de mettre à jour le classement", err)
		return
	}
	h.forgetTranslations(translation.ContentJournal, id)

	utils.Message(w, "journal supprimé")
}

// ToggleJournalLike aime ou n'aime plus un journal. Impossible sur son propre journal.
func (h *Handler) ToggleJournalLike(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}

	ctx := r.Context()
	user := middleware.CurrentUser(r)

	var authorID *string
	if err := database.DB.QueryRow(ctx,
		`SELECT author_id FROM farming_journals WHERE id = $1`, id,
	).Scan(&authorID); err != nil {
		dbError(w, err, journalComments.notFound)
		return
	}
	if user != nil && authorID != nil && *authorID == user.ID {
		utils.ErrorSimple(w, http.StatusBadRequest, "impossible d'aimer son propre journal")
		return
	}

	st := h.loadGuest(r)
	res, err := journalLikes.toggle(ctx, user, st, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de modifier le like", err)
		return
	}
	if user == nil {
		h.saveGuest(w, st)
	}

	if err := h.refreshAuthorRanking(ctx, authorID); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de mettre à jour le classement", err)
		return
	}

	utils.Success(w, res)
}

// ListFarmingRequests liste les demandes de farming (open par défaut, "all" pour tout)
func (h *Handler) ListFarmingRequests(w http.ResponseWriter, r *http.Request) {
	page, size := utils.Pagination(r, journalPageSize, 48)
	query := " WHERE 1=1"
	args := []interface{}{}
	argCount := 1

	status := strings.ToLower(r.URL.Query().Get("status"))
	switch model.FarmingRequestStatus(status) {
	case model.FarmingOpen, model.FarmingInProgress, model.FarmingCompleted, model.FarmingClosed:
	default:
		if status != "all" {
			status = string(model.FarmingOpen)
		}
	}
	if status != "all" {
		query += " AND f.status = $" + strconv.Itoa(argCount)
		args = append(args, status)
		argCount++
	}

	ctx := r.Context()
	var total int
	if err := database.DB.QueryRow(ctx, `SELECT COUNT(*)`+farmingRequestFrom+query, args...).Scan(&total); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de compter les demandes", err)
		return
	}

	query += " ORDER BY f.created_at DESC LIMIT $" + strconv.Itoa(argCount) + " OFFSET $" + strconv.Itoa(argCount+1)
	args = append(args, size, (page-1)*size)

	rows, err := database.DB.Query(ctx, `SELECT `+scanner.FarmingRequestColumns+farmingRequestFrom+query, args...)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les demandes", err)
		return
	}
	items, err := scanFarmingRequests(rows)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
		return
	}

	utils.Success(w, model.Page[model.FarmingRequest]{
		Items:    items,
		Page:     page,
		PageSize: size,
		Total:    total,
		HasNext:  page*size < total,
	})
}

type farmingRequestDetail struct {
	*model.FarmingRequest
	Participations []model.FarmingParticipation `json:"participations"`
	Joined         bool                         `json:"joined"`
}

func (h *Handler) GetFarmingRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}

	ctx := r.Context()
	f, err := getFarmingRequest(ctx, id)
	if err != nil {
		dbError(w, err, "demande introuvable")
		return
	}

	rows, err := database.DB.Query(ctx, `
		SELECT `+scanner.ParticipationColumns+`
		FROM farming_participations p
		LEFT JOIN users u ON u.id = p.user_id
		WHERE p.request_id = $1
		ORDER BY p.created_at ASC`, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer les participants", err)
		return
	}
	defer rows.Close()

	detail := farmingRequestDetail{FarmingRequest: f, Participations: []model.FarmingParticipation{}}
	me := userID(middleware.CurrentUser(r))
	for rows.Next() {
		p, err := scanner.ScanParticipation(rows)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
			return
		}
		if p.User != nil && p.User.ID == me {
			detail.Joined = true
		}
		detail.Participations = append(detail.Participations, *p)
	}
	if err := rows.Err(); err != nil {
		utils.Error(w, http.StatusInternalServerError, "erreur de lecture", err)
		return
	}

	utils.Success(w, detail)
}

// CreateFarmingRequest ouvre une demande de farming (membres uniquement)
func (h *Handler) CreateFarmingRequest(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "utilisateur non authentifié", err)
		return
	}
	var req model.CreateFarmingRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}
	if req.Deadline != nil && !req.Deadline.After(h.clock()) {
		utils.ErrorSimple(w, http.StatusBadRequest, "la date limite doit être dans le futur")
		return
	}

	ctx := r.Context()
	var id string
	if err := database.DB.QueryRow(ctx, `
		INSERT INTO farming_requests (author_id, title, description, target_flower, location, deadline)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		user.ID, strings.TrimSpace(req.Title), strings.TrimSpace(req.Description),
		strings.TrimSpace(req.TargetFlower), strings.TrimSpace(req.Location), req.Deadline,
	).Scan(&id); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de créer la demande", err)
		return
	}

	f, err := getFarmingRequest(ctx, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de relire la demande", err)
		return
	}
	utils.Created(w, f)
}

// ParticipateFarming inscrit le membre à une demande ouverte.
// La première participation fait passer la demande en cours.
func (h *Handler) ParticipateFarming(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "utilisateur non authentifié", err)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}
	var req model.ParticipateRequest
	if err := decodeOptional(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := utils.Validate(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	ctx := r.Context()
	f, err := getFarmingRequest(ctx, id)
	if err != nil {
		dbError(w, err, "demande introuvable")
		return
	}
	if f.AuthorID == user.ID {
		utils.ErrorSimple(w, http.StatusBadRequest, "impossible de participer à sa propre demande")
		return
	}
	if !f.IsOpen(h.clock()) {
		utils.ErrorSimple(w, http.StatusBadRequest, "cette demande n'accepte plus de participants")
		return
	}

	err = pgx.BeginFunc(ctx, database.DB, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO farming_participations (request_id, user_id, message) VALUES ($1, $2, $3)`,
			id, user.ID, strings.TrimSpace(req.Message),
		); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
			UPDATE farming_requests SET
				participants_count = participants_count + 1,
				status = CASE WHEN status = 'open' THEN 'in_progress' ELSE status END,
				updated_at = NOW()
			WHERE id = $1
			RETURNING participants_count, status`, id,
		).Scan(&f.ParticipantsCount, &f.Status)
	})
	if database.IsUniqueViolation(err) {
		utils.ErrorSimple(w, http.StatusConflict, "vous participez déjà à cette demande")
		return
	}
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible d'enregistrer la participation", err)
		return
	}

	utils.Success(w, f)
}

// CompleteFarmingRequest clôture une demande (auteur uniquement)
func (h *Handler) CompleteFarmingRequest(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "utilisateur non authentifié", err)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.ErrorSimple(w, http.StatusBadRequest, "identifiant invalide")
		return
	}

	ctx := r.Context()
	f, err := getFarmingRequest(ctx, id)
	if err != nil {
		dbError(w, err, "demande introuvable")
		return
	}
	if f.AuthorID != user.ID {
		utils.ErrorSimple(w, http.StatusForbidden, "seul l'auteur peut terminer la demande")
		return
	}
	if f.Status == model.FarmingCompleted {
		utils.ErrorSimple(w, http.StatusBadRequest, "demande déjà terminée")
		return
	}

	if _, err := database.DB.Exec(ctx,
		`UPDATE farming_requests SET status = 'completed', updated_at = NOW() WHERE id = $1`, id,
	); err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de terminer la demande", err)
		return
	}
	f.Status = model.FarmingCompleted
	utils.Success(w, f)
}

type myFarming struct {
	Journals      []model.FarmingJournal `json:"journals"`
	Requests      []model.FarmingRequest `json:"requests"`
	Participating []model.FarmingRequest `json:"participating"`
}

// GetMyFarming regroupe les journaux, demandes et participations du membre
func (h *Handler) GetMyFarming(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "utilisateur non authentifié", err)
		return
	}

	ctx := r.Context()
	var out myFarming

	rows, err := database.DB.Query(ctx,
		`SELECT `+scanner.JournalColumns+journalFrom+` WHERE j.author_id = $1 ORDER BY j.created_at DESC`, user.ID)
	if err == nil {
		out.Journals, err = scanJournals(rows)
	}
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer vos journaux", err)
		return
	}

	rows, err = database.DB.Query(ctx,
		`SELECT `+scanner.FarmingRequestColumns+farmingRequestFrom+` WHERE f.author_id = $1 ORDER BY f.created_at DESC`, user.ID)
	if err == nil {
		out.Requests, err = scanFarmingRequests(rows)
	}
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer vos demandes", err)
		return
	}

	rows, err = database.DB.Query(ctx, `
		SELECT `+scanner.FarmingRequestColumns+farmingRequestFrom+`
		INNER JOIN farming_participations p ON p.request_id = f.id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC`, user.ID)
	if err == nil {
		out.Participating, err = scanFarmingRequests(rows)
	}
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "impossible de récupérer vos participations", err)
		return
	}

	utils.Success(w, out)
}
