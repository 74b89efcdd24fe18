package utils

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/database"
	"github.com/google/uuid"
)

// SessionDuration durée de validité d'une session (24h)
const SessionDuration = 24 * time.Hour

// CreateSession crée une nouvelle session pour un utilisateur
func CreateSession(ctx context.Context, userID, ipAddress, userAgent string) (string, time.Time, error) {
	token := uuid.NewString()
	now := time.Now()
	expiresAt := now.Add(SessionDuration)

	_, err := database.DB.Exec(ctx,
		`INSERT INTO sessions(user_id, token, ip_address, user_agent, is_active, created_at, expires_at)
		 VALUES($1, $2, $3, $4, true, $5, $6)`,
		userID, token, ipAddress, userAgent, now, expiresAt,
	)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

// InvalidateSession invalide une session (soft delete)
func InvalidateSession(ctx context.Context, token string) error {
	res, err := database.DB.Exec(ctx,
		`UPDATE sessions
		 SET is_active=false, expires_at=NOW(), deleted_at=NOW()
		 WHERE token=$1 AND is_active=true AND deleted_at IS NULL`,
		token,
	)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return fmt.Errorf("session introuvable ou déjà invalide")
	}

	return nil
}

// InvalidateUserSessions ferme toutes les sessions d'un utilisateur (changement de mot de passe)
func InvalidateUserSessions(ctx context.Context, userID, keepToken string) error {
	_, err := database.DB.Exec(ctx,
		`UPDATE sessions
		 SET is_active=false, deleted_at=NOW()
		 WHERE user_id=$1 AND token <> $2 AND is_active=true AND deleted_at IS NULL`,
		userID, keepToken,
	)
	return err
}

// ExtractIPAndUserAgent extrait l'IP et le User-Agent depuis une requête HTTP
func ExtractIPAndUserAgent(r *http.Request) (string, string) {
	return ClientIP(r), r.UserAgent()
}
