package model

import "time"

// DeletedCommentText remplace le contenu d'un commentaire supprimé
const DeletedCommentText = "삭제된 댓글입니다."

type Comment struct {
	ID            string       `json:"id"`
	CoordinateID  *string      `json:"coordinateId,omitempty"`
	JournalID     *string      `json:"journalId,omitempty"`
	ParentID      *string      `json:"parentId,omitempty"`
	AuthorID      *string      `json:"authorId,omitempty"`
	Author        *UserCreator `json:"author,omitempty"`
	GuestNickname string       `json:"guestNickname,omitempty"`
	Content       string       `json:"content"`
	PhotoURL      string       `json:"photoUrl,omitempty"`
	LikeCount     int          `json:"likeCount"`
	IsDeleted     bool         `json:"isDeleted"`
	Replies       []Comment    `json:"replies,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// CreateCommentRequest : le contenu peut être vide si une photo est jointe
type CreateCommentRequest struct {
	Content       string  `json:"content" validate:"max=1000"`
	ParentID      *string `json:"parentId,omitempty" validate:"omitempty,uuid"`
	GuestNickname string  `json:"guestNickname" validate:"max=20"`
	GuestPassword string  `json:"guestPassword" validate:"max=64"`
}

type UpdateCommentRequest struct {
	Content       string `json:"content" validate:"required,max=1000"`
	GuestPassword string `json:"guestPassword,omitempty"`
}

type DeleteRequest struct {
	GuestPassword string `json:"guestPassword,omitempty"`
}
