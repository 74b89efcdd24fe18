package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/database"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/logger"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/scanner"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Chemins accessibles même banni
var banExemptPaths = map[string]bool{
	"/auth/logout": true,
	"/health":      true,
}

// BanLookup retourne le ban effectif d'un utilisateur ou d'une IP, nil sinon
type BanLookup func(ctx context.Context, userID, ip string) (*model.UserBan, error)

// FindActiveBan cherche en base un ban actif non expiré
func FindActiveBan(ctx context.Context, userID, ip string) (*model.UserBan, error) {
	row := database.DB.QueryRow(ctx, `
		SELECT `+scanner.BanColumns+`
		FROM user_bans b
		LEFT JOIN users u ON u.id = b.user_id
		WHERE b.is_active
		  AND (b.expires_at IS NULL OR b.expires_at > NOW())
		  AND ((b.user_id IS NOT NULL AND b.user_id::text = $1) OR (b.ip_address <> '' AND b.ip_address = $2))
		ORDER BY b.expires_at DESC NULLS FIRST
		LIMIT 1`, userID, ip)

	ban, err := scanner.ScanBan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return ban, err
}

// BanCheck refuse (403) les IP et utilisateurs bannis. À placer après OptionalAuth.
func BanCheck(lookup BanLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if banExemptPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			var userID string
			if user := CurrentUser(r); user != nil {
				userID = user.ID
			}

			ban, err := lookup(r.Context(), userID, utils.ClientIP(r))
			if err != nil {
				// En cas d'erreur on laisse passer
				logger.L().Warn("ban lookup failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if ban != nil && ban.IsEffective(time.Now()) {
				utils.JSON(w, http.StatusForbidden, utils.APIResponse{
					Success: false,
					Error:   "banned",
					Data: map[string]interface{}{
						"reason":    ban.Reason,
						"expiresAt": ban.ExpiresAt,
					},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
