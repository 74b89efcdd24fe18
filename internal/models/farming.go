package model

import "time"

type FarmingJournal struct {
	ID            string       `json:"id"`
	AuthorID      *string      `json:"authorId,omitempty"`
	Author        *UserCreator `json:"author,omitempty"`
	GuestNickname string       `json:"guestNickname,omitempty"`
	Title         string       `json:"title"`
	Content       string       `json:"content"`
	ImageURL      string       `json:"imageUrl,omitempty"`
	LikeCount     int          `json:"likeCount"`
	ViewCount     int          `json:"viewCount"`
	CommentCount  int          `json:"commentCount"`
	DateFields
}

type CreateJournalRequest struct {
	Title         string `json:"title" validate:"required,max=100"`
	Content       string `json:"content" validate:"required,max=5000"`
	GuestNickname string `json:"guestNickname" validate:"max=20"`
	GuestPassword string `json:"guestPassword" validate:"max=64"`
}

type UpdateJournalRequest struct {
	Title         *string `json:"title,omitempty" validate:"omitempty,max=100"`
	Content       *string `json:"content,omitempty" validate:"omitempty,max=5000"`
	GuestPassword string  `json:"guestPassword,omitempty"`
}

type FarmingRequestStatus string

const (
	FarmingOpen       FarmingRequestStatus = "open"
	FarmingInProgress FarmingRequestStatus = "in_progress"
	FarmingCompleted  FarmingRequestStatus = "completed"
	FarmingClosed     FarmingRequestStatus = "closed"
)

type FarmingRequest struct {
	ID                string               `json:"id"`
	AuthorID          string               `json:"authorId"`
	Author            *UserCreator         `json:"author,omitempty"`
	Title             string               `json:"title"`
	Description       string               `json:"description,omitempty"`
	TargetFlower      string               `json:"targetFlower,omitempty"`
	Location          string               `json:"location,omitempty"`
	Status            FarmingRequestStatus `json:"status"`
	Deadline          *time.Time           `json:"deadline,omitempty"`
	ParticipantsCount int                  `json:"participantsCount"`
	DateFields
}

// IsOpen indique qu'une demande accepte encore des participants
func (f *FarmingRequest) IsOpen(now time.Time) bool {
	if f.Status != FarmingOpen && f.Status != FarmingInProgress {
		return false
	}
	return f.Deadline == nil || now.Before(*f.Deadline)
}

type CreateFarmingRequest struct {
	Title        string     `json:"title" validate:"required,max=100"`
	Description  string     `json:"description" validate:"max=2000"`
	TargetFlower string     `json:"targetFlower" validate:"max=50"`
	Location     string     `json:"location" validate:"max=100"`
	Deadline     *time.Time `json:"deadline,omitempty"`
}

type FarmingParticipation struct {
	ID        string       `json:"id"`
	RequestID string       `json:"requestId"`
	User      *UserCreator `json:"user,omitempty"`
	Message   string       `json:"message,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

type ParticipateRequest struct {
	Message string `json:"message" validate:"max=300"`
}
