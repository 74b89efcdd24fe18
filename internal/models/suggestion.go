package model

import "time"

type SuggestionCategory string

const (
	SuggestionBug      SuggestionCategory = "BUG"
	SuggestionFeature  SuggestionCategory = "FEATURE"
	SuggestionQuestion SuggestionCategory = "QUESTION"
	SuggestionOther    SuggestionCategory = "OTHER"
)

type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "PENDING"
	SuggestionReviewed SuggestionStatus = "REVIEWED"
	SuggestionResolved SuggestionStatus = "RESOLVED"
)

// Label est le libellé affiché dans les notifications
func (s SuggestionStatus) Label() string {
	switch s {
	case SuggestionReviewed:
		return "검토완료"
	case SuggestionResolved:
		return "처리완료"
	default:
		return "대기중"
	}
}

// Suggestion est un message envoyé aux opérateurs par un membre ou un invité.
// AdminNote reste interne : il est vidé avant d'être renvoyé à l'auteur.
type Suggestion struct {
	ID            string             `json:"id"`
	UserID        *string            `json:"userId,omitempty"`
	Author        *UserCreator       `json:"author,omitempty"`
	GuestNickname string             `json:"guestNickname,omitempty"`
	Email         string             `json:"email,omitempty"`
	Category      SuggestionCategory `json:"category"`
	Title         string             `json:"title"`
	Content       string             `json:"content"`
	Status        SuggestionStatus   `json:"status"`
	AdminNote     string             `json:"adminNote,omitempty"`
	AdminReply    string             `json:"adminReply,omitempty"`
	RepliedAt     *time.Time         `json:"repliedAt,omitempty"`
	ResolvedBy    *string            `json:"resolvedBy,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// WriterName retourne le pseudo du membre, sinon celui de l'invité
func (s *Suggestion) WriterName() string {
	if s.Author != nil {
		return s.Author.Nickname
	}
	if s.GuestNickname != "" {
		return s.GuestNickname
	}
	return "익명"
}

type CreateSuggestionRequest struct {
	Category      SuggestionCategory `json:"category" validate:"omitempty,oneof=BUG FEATURE QUESTION OTHER"`
	Title         string             `json:"title" validate:"required,max=100"`
	Content       string             `json:"content" validate:"required,max=5000"`
	GuestNickname string             `json:"guestNickname" validate:"max=50"`
	Email         string             `json:"email" validate:"omitempty,email,max=254"`
}

// UpdateSuggestionRequest : les champs nil ne sont pas modifiés
type UpdateSuggestionRequest struct {
	Status     *SuggestionStatus `json:"status" validate:"omitempty,oneof=PENDING REVIEWED RESOLVED"`
	AdminReply *string           `json:"adminReply" validate:"omitempty,max=5000"`
	AdminNote  *string           `json:"adminNote" validate:"omitempty,max=5000"`
}

type SuggestionStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Reviewed int `json:"reviewed"`
	Resolved int `json:"resolved"`
	Bug      int `json:"bug"`
	Feature  int `json:"feature"`
	Question int `json:"question"`
	Other    int `json:"other"`
}

// MySuggestions est la page "mes suggestions" avec le nombre de réponses reçues
type MySuggestions struct {
	Items        []Suggestion `json:"items"`
	Page         int          `json:"page"`
	PageSize     int          `json:"pageSize"`
	Total        int          `json:"total"`
	HasNext      bool         `json:"hasNext"`
	RepliedCount int          `json:"repliedCount"`
}

type NoticeLocation string

const (
	NoticeCoordinatesList NoticeLocation = "coordinates_list"
	NoticeLanding         NoticeLocation = "landing"
	NoticeFarmingList     NoticeLocation = "farming_list"
)

// ParseNoticeLocation accepte uniquement les emplacements connus
func ParseNoticeLocation(s string) (NoticeLocation, bool) {
	switch l := NoticeLocation(s); l {
	case NoticeCoordinatesList, NoticeLanding, NoticeFarmingList:
		return l, true
	}
	return "", false
}

// SiteNotice est le message affiché en tête d'une page, un par emplacement
type SiteNotice struct {
	Location  NoticeLocation `json:"location"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	UpdateLog string         `json:"updateLog,omitempty"`
	IsActive  bool           `json:"isActive"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type UpsertSiteNoticeRequest struct {
	Title     string `json:"title" validate:"max=100"`
	Content   string `json:"content" validate:"required,max=5000"`
	UpdateLog string `json:"updateLog" validate:"max=10000"`
	IsActive  *bool  `json:"isActive"`
}
