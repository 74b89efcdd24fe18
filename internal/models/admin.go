package model

import "time"

// SiteSettings est la configuration du site modifiable par les admins,
// chargée puis passée explicitement aux appels qui en dépendent
type SiteSettings struct {
	DailyUploadLimit      int       `json:"dailyUploadLimit" validate:"min=0,max=100"`
	RankerLimitExemptRank int       `json:"rankerLimitExemptRank" validate:"min=0,max=1000"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// DefaultSiteSettings est utilisé quand la ligne n'existe pas encore
var DefaultSiteSettings = SiteSettings{DailyUploadLimit: 3, RankerLimitExemptRank: 10}

// AdminDashboardStats contient les compteurs du tableau de bord admin
type AdminDashboardStats struct {
	TotalUsers          int       `json:"totalUsers"`
	TotalCoordinates    int       `json:"totalCoordinates"`
	PendingCoordinates  int       `json:"pendingCoordinates"`
	ApprovedCoordinates int       `json:"approvedCoordinates"`
	RejectedCoordinates int       `json:"rejectedCoordinates"`
	PendingReports      int       `json:"pendingReports"`
	ActiveBans          int       `json:"activeBans"`
	NewUsersToday       int       `json:"newUsersToday"`
	NewPostsToday       int       `json:"newPostsToday"`
	GeneratedAt         time.Time `json:"generatedAt"`
}

type AdminUserListItem struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Nickname    string    `json:"nickname"`
	Email       string    `json:"email,omitempty"`
	IsStaff     bool      `json:"isStaff"`
	IsSuperuser bool      `json:"isSuperuser"`
	TotalPosts  int       `json:"totalPosts"`
	CreatedAt   time.Time `json:"createdAt"`
}

type BatchDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=100,dive,uuid"`
}

type GrantPerksRequest struct {
	SpecialTitle   *string  `json:"specialTitle,omitempty"`
	ExclusivePerks []string `json:"exclusivePerks"`
}
