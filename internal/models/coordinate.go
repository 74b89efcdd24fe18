package model

import "time"

type CoordinateStatus string

const (
	StatusPending  CoordinateStatus = "PENDING"
	StatusApproved CoordinateStatus = "APPROVED"
	StatusRejected CoordinateStatus = "REJECTED"
)

type Category string

const (
	CategoryMushroom  Category = "MUSHROOM"
	CategoryBigFlower Category = "BIGFLOWER"
	CategorySeedling  Category = "SEEDLING"
	CategoryOther     Category = "OTHER"
)

// Categories liste les catégories valides
var Categories = []Category{CategoryMushroom, CategoryBigFlower, CategorySeedling, CategoryOther}

// ValidCategory indique si c est une catégorie connue
func ValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Region string

const (
	RegionKorea        Region = "KOREA"
	RegionJapan        Region = "JAPAN"
	RegionNorthAmerica Region = "NORTH_AMERICA"
	RegionEurope       Region = "EUROPE"
	RegionAsiaOther    Region = "ASIA_OTHER"
	RegionOther        Region = "OTHER"
)

type Coordinate struct {
	ID               string            `json:"id"`
	AuthorID         *string           `json:"authorId,omitempty"`
	Author           *UserCreator      `json:"author,omitempty"`
	GuestNickname    string            `json:"guestNickname,omitempty"`
	Title            string            `json:"title"`
	PostcardName     string            `json:"postcardName,omitempty"`
	Description      string            `json:"description,omitempty"`
	Latitude         float64           `json:"latitude"`
	Longitude        float64           `json:"longitude"`
	Category         Category          `json:"category"`
	Status           CoordinateStatus  `json:"status"`
	Region           Region            `json:"region"`
	WatermarkEnabled bool              `json:"watermarkEnabled"`
	WatermarkName    string            `json:"watermarkName,omitempty"`
	LikeCount        int               `json:"likeCount"`
	ViewCount        int               `json:"viewCount"`
	BookmarkCount    int               `json:"bookmarkCount"`
	CommentCount     int               `json:"commentCount"`
	ValidCount       int               `json:"validCount"`
	InvalidCount     int               `json:"invalidCount"`
	CopyCount        int               `json:"copyCount"`
	Images           []CoordinateImage `json:"images,omitempty"`
	ApprovedAt       *time.Time        `json:"approvedAt,omitempty"`
	LastVerifiedAt   *time.Time        `json:"lastVerifiedAt,omitempty"`
	DateFields
}

// IsGuestPost indique un post sans compte
func (c *Coordinate) IsGuestPost() bool {
	return c.AuthorID == nil
}

// IsAuthor indique si userID est l'auteur du post
func (c *Coordinate) IsAuthor(userID string) bool {
	return c.AuthorID != nil && userID != "" && *c.AuthorID == userID
}

type CoordinateImage struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	PublicID string `json:"-"`
	Position int    `json:"position"`
}

type CreateCoordinateRequest struct {
	Title            string   `json:"title" validate:"required,max=100"`
	PostcardName     string   `json:"postcardName" validate:"max=100"`
	Description      string   `json:"description" validate:"max=2000"`
	Latitude         float64  `json:"latitude" validate:"min=-90,max=90"`
	Longitude        float64  `json:"longitude" validate:"min=-180,max=180"`
	Category         Category `json:"category" validate:"required,oneof=MUSHROOM BIGFLOWER SEEDLING OTHER"`
	WatermarkEnabled bool     `json:"watermarkEnabled"`
	WatermarkName    string   `json:"watermarkName" validate:"max=30"`
	GuestNickname    string   `json:"guestNickname" validate:"max=20"`
	GuestPassword    string   `json:"guestPassword" validate:"max=64"`
}

type UpdateCoordinateRequest struct {
	Title         *string   `json:"title,omitempty" validate:"omitempty,max=100"`
	PostcardName  *string   `json:"postcardName,omitempty" validate:"omitempty,max=100"`
	Description   *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category      *Category `json:"category,omitempty" validate:"omitempty,oneof=MUSHROOM BIGFLOWER SEEDLING OTHER"`
	GuestPassword string    `json:"guestPassword,omitempty"`
}

// CoordinateFilter regroupe les filtres de liste
type CoordinateFilter struct {
	Query    string
	Category Category
	Region   Region
	Sort     string // latest, likes, copies, bookmarks
	Page     int
	PageSize int
}

// MapMarker est la projection minimale affichée sur la carte
type MapMarker struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Latitude  float64  `json:"lat"`
	Longitude float64  `json:"lng"`
	Category  Category `json:"category"`
	Region    Region   `json:"region"`
	Image     string   `json:"image,omitempty"`
	CopyCount int      `json:"copyCount"`
	LikeCount int      `json:"likeCount"`
}

// CopyResult décrit le résultat d'une copie de coordonnées
type CopyResult struct {
	Coords    string  `json:"coords"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	CopyCount int     `json:"copyCount"`
	Counted   bool    `json:"countIncremented"` // false si throttlé
	Milestone int     `json:"milestone,omitempty"`
}

// Page est une réponse paginée
type Page[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
	Total    int  `json:"total"`
	HasNext  bool `json:"hasNext"`
}
