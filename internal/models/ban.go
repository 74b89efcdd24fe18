package model

import (
	"time"
)

type BanDuration string

const (
	Ban1Day      BanDuration = "1d"
	Ban3Days     BanDuration = "3d"
	Ban7Days     BanDuration = "7d"
	Ban30Days    BanDuration = "30d"
	Ban365Days   BanDuration = "365d"
	BanPermanent BanDuration = "perm"
)

var banDurations = map[BanDuration]time.Duration{
	Ban1Day:    24 * time.Hour,
	Ban3Days:   3 * 24 * time.Hour,
	Ban7Days:   7 * 24 * time.Hour,
	Ban30Days:  30 * 24 * time.Hour,
	Ban365Days: 365 * 24 * time.Hour,
}

// ExpiresAt calcule la fin d'un ban créé à from (nil si permanent)
func (d BanDuration) ExpiresAt(from time.Time) (*time.Time, bool) {
	if d == BanPermanent {
		return nil, true
	}
	dur, ok := banDurations[d]
	if !ok {
		return nil, false
	}
	t := from.Add(dur)
	return &t, true
}

type UserBan struct {
	ID         string      `json:"id"`
	UserID     *string     `json:"userId,omitempty"`
	Nickname   string      `json:"nickname,omitempty"`
	IPAddress  string      `json:"ipAddress,omitempty"`
	Reason     string      `json:"reason,omitempty"`
	Duration   BanDuration `json:"duration"`
	ExpiresAt  *time.Time  `json:"expiresAt,omitempty"`
	IsActive   bool        `json:"isActive"`
	BannedBy   *string     `json:"bannedBy,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UnbannedAt *time.Time  `json:"unbannedAt,omitempty"`
}

// IsEffective indique si le ban s'applique à l'instant now
func (b *UserBan) IsEffective(now time.Time) bool {
	if !b.IsActive {
		return false
	}
	return b.ExpiresAt == nil || now.Before(*b.ExpiresAt)
}

type CreateBanRequest struct {
	UserID    *string     `json:"userId,omitempty" validate:"omitempty,uuid"`
	IPAddress string      `json:"ipAddress" validate:"omitempty,ip"`
	Reason    string      `json:"reason" validate:"max=500"`
	Duration  BanDuration `json:"duration" validate:"required,oneof=1d 3d 7d 30d 365d perm"`
}
