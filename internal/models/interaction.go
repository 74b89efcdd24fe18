package model

import "time"

type FeedbackType string

const (
	FeedbackValid   FeedbackType = "VALID"
	FeedbackInvalid FeedbackType = "INVALID"
)

// ToggleResult est renvoyé par les bascules like/bookmark
type ToggleResult struct {
	Active bool `json:"active"`
	Count  int  `json:"count"`
}

// FeedbackResult décrit l'état d'un vote de validité après soumission
type FeedbackResult struct {
	Submitted    *FeedbackType `json:"submitted"` // nil si le vote a été annulé
	ValidCount   int           `json:"validCount"`
	InvalidCount int           `json:"invalidCount"`
}

type FeedbackRequest struct {
	FeedbackType FeedbackType `json:"feedbackType" validate:"required,oneof=VALID INVALID"`
}

type NotificationType string

const (
	NotificationLike            NotificationType = "LIKE"
	NotificationComment         NotificationType = "COMMENT"
	NotificationCopyMilestone   NotificationType = "COPY_MILESTONE"
	NotificationSuggestionReply NotificationType = "SUGGESTION_REPLY"
)

type Notification struct {
	ID           string           `json:"id"`
	RecipientID  string           `json:"recipientId"`
	Actor        *UserCreator     `json:"actor,omitempty"`
	Type         NotificationType `json:"type"`
	CoordinateID *string          `json:"coordinateId,omitempty"`
	Message      string           `json:"message"`
	IsRead       bool             `json:"isRead"`
	CreatedAt    time.Time        `json:"createdAt"`
}
