package middleware

import (
	"context"
	"net/http"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/geo"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/logger"
	model "github.com/MassBabyGeek/PikminDiary-backend/internal/models"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
	"golang.org/x/text/language"
)

// LanguageCookie mémorise la langue choisie ou détectée
const LanguageCookie = "lang"

var (
	supportedTags = []language.Tag{language.Korean, language.Japanese, language.English}
	matcher       = language.NewMatcher(supportedTags)
)

// CountryLocator résout le pays d'une IP (geo.IPLocator)
type CountryLocator interface {
	Country(ctx context.Context, ip string) (string, error)
}

func supported(lang string) bool {
	for _, l := range model.SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// matchAcceptLanguage retourne la langue supportée la plus proche de l'en-tête
func matchAcceptLanguage(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return "", false
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return "", false
	}
	base, _ := supportedTags[idx].Base()
	return base.String(), true
}

// LanguageMiddleware détermine la langue d'affichage :
// ?lang= puis cookie, puis pays de l'IP, puis Accept-Language, sinon coréen.
func LanguageMiddleware(locator CountryLocator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := resolveLanguage(r, locator)
			if c, err := r.Cookie(LanguageCookie); err != nil || c.Value != lang {
				http.SetCookie(w, &http.Cookie{
					Name:     LanguageCookie,
					Value:    lang,
					Path:     "/",
					MaxAge:   365 * 24 * 60 * 60,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := context.WithValue(r.Context(), languageContextKey, lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveLanguage(r *http.Request, locator CountryLocator) string {
	if q := r.URL.Query().Get("lang"); supported(q) {
		return q
	}
	if c, err := r.Cookie(LanguageCookie); err == nil && supported(c.Value) {
		return c.Value
	}
	if locator != nil {
		country, err := locator.Country(r.Context(), utils.ClientIP(r))
		if err == nil {
			return geo.LanguageFromCountry(country)
		}
		logger.Debug("ip country lookup failed: %v", err)
	}
	if lang, ok := matchAcceptLanguage(r.Header.Get("Accept-Language")); ok {
		return lang
	}
	return model.LangKorean
}

// LanguageFromContext retourne la langue résolue par LanguageMiddleware
func LanguageFromContext(r *http.Request) string {
	if lang, ok := r.Context().Value(languageContextKey).(string); ok {
		return lang
	}
	return model.LangKorean
}
