package model

import (
	"time"
)

// DateFields contient les horodatages standard des entités
type DateFields struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type User struct {
	ID                 string   `json:"id"`
	Username           string   `json:"username"`
	Nickname           string   `json:"nickname"`
	Email              string   `json:"email,omitempty"`
	IsStaff            bool     `json:"isStaff"`
	IsSuperuser        bool     `json:"isSuperuser"`
	Bio                string   `json:"bio,omitempty"`
	ProfileImage       string   `json:"profileImage,omitempty"`
	ProfileEmoji       string   `json:"profileEmoji,omitempty"`
	SpecialTitle       string   `json:"specialTitle,omitempty"` // attribué par un admin
	SelectedTitle      string   `json:"selectedTitle,omitempty"`
	BadgeStyle         string   `json:"badgeStyle"`
	NicknameColor      string   `json:"nicknameColor,omitempty"`
	TitleColor         string   `json:"titleColor,omitempty"`
	TitleBgColor       string   `json:"titleBgColor,omitempty"`
	NicknameBgColor    string   `json:"nicknameBgColor,omitempty"`
	ExclusivePerks     []string `json:"exclusivePerks,omitempty"`
	TotalPosts         int      `json:"totalPosts"`
	TotalLikesReceived int      `json:"totalLikesReceived"`
	TotalValidReceived int      `json:"totalValidReceived"`
	DateFields
}

// UserCreator contient les informations d'affichage de l'auteur d'un contenu
type UserCreator struct {
	ID            string `json:"id"`
	Nickname      string `json:"nickname"`
	ProfileImage  string `json:"profileImage,omitempty"`
	ProfileEmoji  string `json:"profileEmoji,omitempty"`
	ActiveTitle   string `json:"activeTitle,omitempty"`
	BadgeStyle    string `json:"badgeStyle,omitempty"`
	NicknameColor string `json:"nicknameColor,omitempty"`
	BadgeClass    string `json:"badgeClass,omitempty"`
}

type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Nickname string `json:"nickname" validate:"required,min=2,max=20"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Nickname     *string `json:"nickname,omitempty" validate:"omitempty,min=2,max=20"`
	Bio          *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	ProfileEmoji *string `json:"profileEmoji,omitempty" validate:"omitempty,max=8"`
}

// BadgeSettingsRequest regroupe les choix cosmétiques soumis par l'utilisateur
type BadgeSettingsRequest struct {
	SelectedTitle   *string `json:"selectedTitle,omitempty"`
	BadgeStyle      *string `json:"badgeStyle,omitempty"`
	NicknameColor   *string `json:"nicknameColor,omitempty"`
	TitleColor      *string `json:"titleColor,omitempty"`
	TitleBgColor    *string `json:"titleBgColor,omitempty"`
	NicknameBgColor *string `json:"nicknameBgColor,omitempty"`
}

// DeleteAccountRequest confirme la suppression du compte par le mot de passe
type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128"`
}

// AuthResponse représente la réponse lors de l'authentification
type AuthResponse struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
