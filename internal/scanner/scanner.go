package scanner

import (
	"database/sql"
	"fmt"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/badge"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
	"github.com/lib/pq"
)

// Row est implémenté par pgx.Row et pgx.Rows
type Row interface {
	Scan(dest ...interface{}) error
}

// UserColumns liste les colonnes lues par ScanUser (table users sans alias)
const UserColumns = `id, username, nickname, email, is_staff, is_superuser, bio,
	profile_image, profile_emoji, special_title, selected_title, badge_style,
	nickname_color, title_color, title_bg_color, nickname_bg_color, exclusive_perks,
	total_posts, total_likes_received, total_valid_received, created_at, updated_at`

// CreatorColumns sélectionne l'auteur joint sous l'alias donné, avec sa place
// sur le podium du classement général (0 hors podium ou sans post approuvé).
func CreatorColumns(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.nickname, %[1]s.profile_image, %[1]s.profile_emoji,
		%[1]s.special_title, %[1]s.selected_title, %[1]s.badge_style, %[1]s.nickname_color,
		COALESCE((
			SELECT rk.rank FROM rankings rk
			WHERE rk.user_id = %[1]s.id AND rk.period_type = 'ALL'
			  AND rk.approved_posts_count > 0 AND rk.rank BETWEEN 1 AND 3
			LIMIT 1
		), 0)`, alias)
}

// creatorRow reçoit les colonnes de CreatorColumns. Tout est nullable car
// l'auteur est joint en LEFT JOIN (posts invités, comptes supprimés).
type creatorRow struct {
	id, nickname, image, emoji      sql.NullString
	special, selected, style, color sql.NullString
	position                        int
}

func (c *creatorRow) dest() []interface{} {
	return []interface{}{
		&c.id, &c.nickname, &c.image, &c.emoji,
		&c.special, &c.selected, &c.style, &c.color,
		&c.position,
	}
}

func (c *creatorRow) creator() *model.UserCreator {
	if !c.id.Valid {
		return nil
	}
	active := badge.ActiveTitle(c.special.String, c.selected.String)
	return &model.UserCreator{
		ID:            c.id.String,
		Nickname:      c.nickname.String,
		ProfileImage:  utils.NullStringToString(c.image),
		ProfileEmoji:  c.emoji.String,
		ActiveTitle:   active,
		BadgeStyle:    c.style.String,
		NicknameColor: c.color.String,
		BadgeClass:    badge.BadgeClass(active, badge.Position(c.position)),
	}
}

// ScanUser scanne une ligne sélectionnée avec UserColumns
func ScanUser(row Row) (*model.User, error) {
	var u model.User
	var image sql.NullString

	err := row.Scan(
		&u.ID, &u.Username, &u.Nickname, &u.Email, &u.IsStaff, &u.IsSuperuser, &u.Bio,
		&image, &u.ProfileEmoji, &u.SpecialTitle, &u.SelectedTitle, &u.BadgeStyle,
		&u.NicknameColor, &u.TitleColor, &u.TitleBgColor, &u.NicknameBgColor, pq.Array(&u.ExclusivePerks),
		&u.TotalPosts, &u.TotalLikesReceived, &u.TotalValidReceived, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.ProfileImage = utils.NullStringToString(image)
	return &u, nil
}

// CoordinateColumns colonnes d'une coordonnée (alias c) suivies de l'auteur (alias u)
var CoordinateColumns = `c.id, c.author_id, c.guest_nickname, c.title, c.postcard_name, c.description,
	c.latitude, c.longitude, c.category, c.status, c.region, c.watermark_enabled, c.watermark_name,
	c.like_count, c.view_count, c.bookmark_count, c.comment_count, c.valid_count, c.invalid_count,
	c.copy_count, c.created_at, c.updated_at, c.approved_at, c.last_verified_at, ` + CreatorColumns("u")

// ScanCoordinate scanne une ligne sélectionnée avec CoordinateColumns
func ScanCoordinate(row Row) (*model.Coordinate, error) {
	var c model.Coordinate
	var authorID sql.NullString
	var approvedAt, verifiedAt sql.NullTime
	var author creatorRow

	dest := []interface{}{
		&c.ID, &authorID, &c.GuestNickname, &c.Title, &c.PostcardName, &c.Description,
		&c.Latitude, &c.Longitude, &c.Category, &c.Status, &c.Region, &c.WatermarkEnabled, &c.WatermarkName,
		&c.LikeCount, &c.ViewCount, &c.BookmarkCount, &c.CommentCount, &c.ValidCount, &c.InvalidCount,
		&c.CopyCount, &c.CreatedAt, &c.UpdatedAt, &approvedAt, &verifiedAt,
	}
	if err := row.Scan(append(dest, author.dest()...)...); err != nil {
		return nil, err
	}

	c.AuthorID = utils.NullStringToPointer(authorID)
	c.ApprovedAt = utils.NullTimeToPointer(approvedAt)
	c.LastVerifiedAt = utils.NullTimeToPointer(verifiedAt)
	c.Author = author.creator()
	return &c, nil
}

// CommentColumns colonnes d'un commentaire (alias m) suivies de l'auteur (alias u)
var CommentColumns = `m.id, m.coordinate_id, m.journal_id, m.parent_id, m.author_id, m.guest_nickname,
	m.content, m.photo_url, m.like_count, m.is_deleted, m.created_at, m.updated_at, ` + CreatorColumns("u")

// ScanComment masque le contenu des commentaires supprimés
func ScanComment(row Row) (*model.Comment, error) {
	var m model.Comment
	var author creatorRow

	dest := []interface{}{
		&m.ID, &m.CoordinateID, &m.JournalID, &m.ParentID, &m.AuthorID, &m.GuestNickname,
		&m.Content, &m.PhotoURL, &m.LikeCount, &m.IsDeleted, &m.CreatedAt, &m.UpdatedAt,
	}
	if err := row.Scan(append(dest, author.dest()...)...); err != nil {
		return nil, err
	}

	m.Author = author.creator()
	if m.IsDeleted {
		m.Content = model.DeletedCommentText
		m.PhotoURL = ""
	}
	return &m, nil
}

// JournalColumns colonnes d'un journal de farming (alias j) suivies de l'auteur (alias u)
var JournalColumns = `j.id, j.author_id, j.guest_nickname, j.title, j.content, j.image_url,
	j.like_count, j.view_count, j.comment_count, j.created_at, j.updated_at, ` + CreatorColumns("u")

func ScanJournal(row Row) (*model.FarmingJournal, error) {
	var j model.FarmingJournal
	var author creatorRow

	dest := []interface{}{
		&j.ID, &j.AuthorID, &j.GuestNickname, &j.Title, &j.Content, &j.ImageURL,
		&j.LikeCount, &j.ViewCount, &j.CommentCount, &j.CreatedAt, &j.UpdatedAt,
	}
	if err := row.Scan(append(dest, author.dest()...)...); err != nil {
		return nil, err
	}

	j.Author = author.creator()
	return &j, nil
}

// FarmingRequestColumns colonnes d'une demande (alias f) suivies de l'auteur (alias u)
var FarmingRequestColumns = `f.id, f.author_id, f.title, f.description, f.target_flower, f.location,
	f.status, f.deadline, f.participants_count, f.created_at, f.updated_at, ` + CreatorColumns("u")

func ScanFarmingRequest(row Row) (*model.FarmingRequest, error) {
	var f model.FarmingRequest
	var author creatorRow

	dest := []interface{}{
		&f.ID, &f.AuthorID, &f.Title, &f.Description, &f.TargetFlower, &f.Location,
		&f.Status, &f.Deadline, &f.ParticipantsCount, &f.CreatedAt, &f.UpdatedAt,
	}
	if err := row.Scan(append(dest, author.dest()...)...); err != nil {
		return nil, err
	}

	f.Author = author.creator()
	return &f, nil
}

// ParticipationColumns colonnes d'une participation (alias p) suivies du participant (alias u)
var ParticipationColumns = `p.id, p.request_id, p.message, p.created_at, ` + CreatorColumns("u")

func ScanParticipation(row Row) (*model.FarmingParticipation, error) {
	var p model.FarmingParticipation
	var user creatorRow

	dest := []interface{}{&p.ID, &p.RequestID, &p.Message, &p.CreatedAt}
	if err := row.Scan(append(dest, user.dest()...)...); err != nil {
		return nil, err
	}

	p.User = user.creator()
	return &p, nil
}

// ReportColumns colonnes d'un signalement (alias r) suivies du signaleur (alias u)
var ReportColumns = `r.id, r.reporter_id, r.coordinate_id, r.comment_id, r.reason, r.description,
	r.status, r.admin_note, r.created_at, r.resolved_at, r.resolved_by, ` + CreatorColumns("u")

func ScanReport(row Row) (*model.Report, error) {
	var r model.Report
	var reporter creatorRow

	dest := []interface{}{
		&r.ID, &r.ReporterID, &r.CoordinateID, &r.CommentID, &r.Reason, &r.Description,
		&r.Status, &r.AdminNote, &r.CreatedAt, &r.ResolvedAt, &r.ResolvedBy,
	}
	if err := row.Scan(append(dest, reporter.dest()...)...); err != nil {
		return nil, err
	}

	r.Reporter = reporter.creator()
	return &r, nil
}

// BanColumns colonnes d'un ban (alias b) avec le pseudo du banni (alias u)
const BanColumns = `b.id, b.user_id, COALESCE(u.nickname, ''), b.ip_address, b.reason, b.duration,
	b.expires_at, b.is_active, b.banned_by, b.created_at, b.unbanned_at`

func ScanBan(row Row) (*model.UserBan, error) {
	var b model.UserBan
	err := row.Scan(
		&b.ID, &b.UserID, &b.Nickname, &b.IPAddress, &b.Reason, &b.Duration,
		&b.ExpiresAt, &b.IsActive, &b.BannedBy, &b.CreatedAt, &b.UnbannedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// NotificationColumns colonnes d'une notification (alias n) suivies de l'acteur (alias u)
var NotificationColumns = `n.id, n.recipient_id, n.notification_type, n.coordinate_id, n.message,
	n.is_read, n.created_at, ` + CreatorColumns("u")

func ScanNotification(row Row) (*model.Notification, error) {
	var n model.Notification
	var actor creatorRow

	dest := []interface{}{&n.ID, &n.RecipientID, &n.Type, &n.CoordinateID, &n.Message, &n.IsRead, &n.CreatedAt}
	if err := row.Scan(append(dest, actor.dest()...)...); err != nil {
		return nil, err
	}

	n.Actor = actor.creator()
	return &n, nil
}

// SuggestionColumns colonnes d'une suggestion (alias s) suivies de l'auteur (alias u)
var SuggestionColumns = `s.id, s.user_id, s.guest_nickname, s.guest_email, s.category, s.title, s.content,
	s.status, s.admin_note, s.admin_reply, s.replied_at, s.resolved_by, s.created_at, s.updated_at, ` + CreatorColumns("u")

func ScanSuggestion(row Row) (*model.Suggestion, error) {
	var s model.Suggestion
	var author creatorRow

	dest := []interface{}{
		&s.ID, &s.UserID, &s.GuestNickname, &s.Email, &s.Category, &s.Title, &s.Content,
		&s.Status, &s.AdminNote, &s.AdminReply, &s.RepliedAt, &s.ResolvedBy, &s.CreatedAt, &s.UpdatedAt,
	}
	if err := row.Scan(append(dest, author.dest()...)...); err != nil {
		return nil, err
	}

	s.Author = author.creator()
	return &s, nil
}

const SiteNoticeColumns = `location, title, content, update_log, is_active, created_at, updated_at`

func ScanSiteNotice(row Row) (*model.SiteNotice, error) {
	var n model.SiteNotice
	if err := row.Scan(&n.Location, &n.Title, &n.Content, &n.UpdateLog, &n.IsActive, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}
