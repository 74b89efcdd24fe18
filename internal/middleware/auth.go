package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/database"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/scanner"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
	"github.com/jackc/pgx/v5"
)

// Context keys
type contextKey string

const (
	userContextKey     = contextKey("user")
	tokenContextKey    = contextKey("token")
	languageContextKey = contextKey("language")
)

// TokenValidator retrouve l'utilisateur d'un token de session
type TokenValidator func(ctx context.Context, token string) (*model.User, error)

// ValidateToken est remplacé dans les tests
var ValidateToken TokenValidator = validateTokenAndGetUser

// AuthMiddleware valide le token et injecte l'utilisateur dans le contexte
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := utils.GetToken(r)
		if err != nil {
			utils.ErrorSimple(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		user, err := ValidateToken(r.Context(), token)
		if err != nil {
			utils.Error(w, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user, token)))
	})
}

// OptionalAuth injecte l'utilisateur si un token valide est présent, sans rien exiger
func OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := utils.GetToken(r)
		if err == nil {
			if user, err := ValidateToken(r.Context(), token); err == nil {
				r = r.WithContext(withUser(r.Context(), user, token))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireStaff refuse les non-staff. À placer après AuthMiddleware.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := GetUserFromContext(r)
		if err != nil {
			utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !user.IsStaff && !user.IsSuperuser {
			utils.ErrorSimple(w, http.StatusForbidden, "staff only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSuperuser refuse tout sauf les superusers
func RequireSuperuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := GetUserFromContext(r)
		if err != nil {
			utils.ErrorSimple(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !user.IsSuperuser {
			utils.ErrorSimple(w, http.StatusForbidden, "superuser only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withUser(ctx context.Context, user *model.User, token string) context.Context {
	ctx = context.WithValue(ctx, userContextKey, user)
	return context.WithValue(ctx, tokenContextKey, token)
}

// WithUser injecte un utilisateur (tests de handlers)
func WithUser(r *http.Request, user *model.User) *http.Request {
	return r.WithContext(withUser(r.Context(), user, ""))
}

// validateTokenAndGetUser valide le token et retourne l'utilisateur associé
func validateTokenAndGetUser(ctx context.Context, token string) (*model.User, error) {
	row := database.DB.QueryRow(ctx, `
		SELECT `+scanner.UserColumns+`
		FROM users
		WHERE id = (
			SELECT user_id FROM sessions
			WHERE token = $1
			  AND is_active = true
			  AND expires_at > NOW()
			  AND deleted_at IS NULL
		)
		AND deleted_at IS NULL`, token)

	user, err := scanner.ScanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("token not found or expired")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return user, nil
}

// GetUserFromContext récupère l'utilisateur depuis le contexte de la requête
func GetUserFromContext(r *http.Request) (*model.User, error) {
	user, ok := r.Context().Value(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// CurrentUser retourne l'utilisateur connecté ou nil
func CurrentUser(r *http.Request) *model.User {
	user, _ := GetUserFromContext(r)
	return user
}

// GetTokenFromContext récupère le token depuis le contexte de la requête
func GetTokenFromContext(r *http.Request) (string, error) {
	token, ok := r.Context().Value(tokenContextKey).(string)
	if !ok || token == "" {
		return "", fmt.Errorf("token not found in context")
	}
	return token, nil
}
