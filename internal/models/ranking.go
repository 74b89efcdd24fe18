package model

import (
	"strings"
	"time"
)

// PeriodType identifie une fenêtre de classement
type PeriodType string

const (
	PeriodAll     PeriodType = "ALL"
	PeriodWeekly  PeriodType = "WEEKLY"
	PeriodMonthly PeriodType = "MONTHLY"
)

// Periods liste les fenêtres dans l'ordre de traitement
var Periods = []PeriodType{PeriodAll, PeriodWeekly, PeriodMonthly}

// ParsePeriod accepte ALL/WEEKLY/MONTHLY sans tenir compte de la casse
func ParsePeriod(s string) (PeriodType, bool) {
	switch PeriodType(strings.ToUpper(strings.TrimSpace(s))) {
	case PeriodAll:
		return PeriodAll, true
	case PeriodWeekly:
		return PeriodWeekly, true
	case PeriodMonthly:
		return PeriodMonthly, true
	}
	return "", false
}

// RankingCounters regroupe les six compteurs bruts d'un utilisateur sur une période
type RankingCounters struct {
	ApprovedPosts        int `json:"approvedPostsCount"`
	LikesReceived        int `json:"likesReceivedCount"`
	ValidReceived        int `json:"validReceivedCount"`
	InvalidReceived      int `json:"invalidReceivedCount"`
	FarmingLikesReceived int `json:"farmingLikesReceivedCount"`
	CopyReceived         int `json:"copyReceivedCount"`
}

// Ranking est l'instantané (user, période, début de période)
type Ranking struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	PeriodType  PeriodType `json:"periodType"`
	PeriodStart time.Time  `json:"periodStart"`
	RankingCounters
	Score     int       `json:"score"`
	Rank      int       `json:"rank"` // 0 = non classé
	UpdatedAt time.Time `json:"updatedAt"`
}

// RankingEntry est une ligne du classement affiché
type RankingEntry struct {
	Rank int         `json:"rank"`
	User UserCreator `json:"user"`
	RankingCounters
	Score int `json:"score"`
}

// TopRanker résume un des meilleurs contributeurs avec ses posts par catégorie
type TopRanker struct {
	RankingEntry
	PostsByCategory map[string]int `json:"postsByCategory"`
}
