package api

import (
	"net/http"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/handler"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/logger"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/middleware"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
	"github.com/fatih/color"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options regroupe les dépendances optionnelles du routeur
type Options struct {
	AllowedOrigins []string
	Locator        middleware.CountryLocator // nil : pas de géolocalisation IP
	Limiter        *middleware.RateLimiter   // nil : pas de limite
	Bans           middleware.BanLookup      // nil : middleware.FindActiveBan
}

func SetupRouter(h *handler.Handler, opts Options) http.Handler {
	bans := opts.Bans
	if bans == nil {
		bans = middleware.FindActiveBan
	}

	r := mux.NewRouter()
	r.Use(middleware.LoggerMiddleware)
	r.Use(middleware.OptionalAuth)
	r.Use(middleware.BanCheck(bans))
	r.Use(middleware.LanguageMiddleware(opts.Locator))
	if opts.Limiter != nil {
		r.Use(opts.Limiter.Middleware)
	}

	authenticatedRoutes := r.PathPrefix("/").Subrouter()
	authenticatedRoutes.Use(middleware.AuthMiddleware)

	adminRoutes := r.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware, middleware.RequireStaff)
	superuser := func(f http.HandlerFunc) http.Handler {
		return middleware.RequireSuperuser(f)
	}

	// Root - API documentation
	r.HandleFunc("/", handler.RootHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Auth
	r.HandleFunc("/auth/signup", h.Signup).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/auth/password", h.ChangePassword).Methods(http.MethodPost)

	// Coordinates
	r.HandleFunc("/coordinates", h.ListCoordinates).Methods(http.MethodGet)
	r.HandleFunc("/coordinates", h.CreateCoordinate).Methods(http.MethodPost)
	r.HandleFunc("/coordinates/map", h.MapMarkers).Methods(http.MethodGet)
	r.HandleFunc("/coordinates/{id}", h.GetCoordinate).Methods(http.MethodGet)
	r.HandleFunc("/coordinates/{id}", h.UpdateCoordinate).Methods(http.MethodPatch, http.MethodPut)
	r.HandleFunc("/coordinates/{id}", h.DeleteCoordinate).Methods(http.MethodDelete)
	r.HandleFunc("/coordinates/{id}/copy", h.CopyCoordinate).Methods(http.MethodPost)
	r.HandleFunc("/coordinates/{id}/like", h.ToggleLike).Methods(http.MethodPost)
	r.HandleFunc("/coordinates/{id}/validity", h.SubmitValidity).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/coordinates/{id}/bookmark", h.ToggleBookmark).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/coordinates/{id}/report", h.ReportCoordinate).Methods(http.MethodPost)

	// Comments
	r.HandleFunc("/coordinates/{id}/comments", h.ListCoordinateComments).Methods(http.MethodGet)
	r.HandleFunc("/coordinates/{id}/comments", h.CreateCoordinateComment).Methods(http.MethodPost)
	r.HandleFunc("/comments/{id}", h.UpdateComment).Methods(http.MethodPatch, http.MethodPut)
	r.HandleFunc("/comments/{id}", h.DeleteComment).Methods(http.MethodDelete)
	r.HandleFunc("/comments/{id}/like", h.ToggleCommentLike).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/comments/{id}/report", h.ReportComment).Methods(http.MethodPost)

	// Farming
	r.HandleFunc("/farming/journals", h.ListJournals).Methods(http.MethodGet)
	r.HandleFunc("/farming/journals", h.CreateJournal).Methods(http.MethodPost)
	r.HandleFunc("/farming/journals/{id}", h.GetJournal).Methods(http.MethodGet)
	r.HandleFunc("/farming/journals/{id}", h.UpdateJournal).Methods(http.MethodPatch, http.MethodPut)
	r.HandleFunc("/farming/journals/{id}", h.DeleteJournal).Methods(http.MethodDelete)
	r.HandleFunc("/farming/journals/{id}/like", h.ToggleJournalLike).Methods(http.MethodPost)
	r.HandleFunc("/farming/journals/{id}/comments", h.ListJournalComments).Methods(http.MethodGet)
	r.HandleFunc("/farming/journals/{id}/comments", h.CreateJournalComment).Methods(http.MethodPost)
	r.HandleFunc("/farming/requests", h.ListFarmingRequests).Methods(http.MethodGet)
	r.HandleFunc("/farming/requests/{id}", h.GetFarmingRequest).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/farming/requests", h.CreateFarmingRequest).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/farming/requests/{id}/participate", h.ParticipateFarming).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/farming/requests/{id}/complete", h.CompleteFarmingRequest).Methods(http.MethodPost)

	// Rankings
	r.HandleFunc("/rankings", h.GetLeaderboard).Methods(http.MethodGet)
	r.HandleFunc("/rankings/top", h.GetTopRankers).Methods(http.MethodGet)
	r.HandleFunc("/rankings/users/{userId}", h.GetUserRanking).Methods(http.MethodGet)

	// Translations
	r.HandleFunc("/translations/{contentType}/{id}/{field}", h.GetTranslation).Methods(http.MethodGet)

	// Suggestions & site notices
	r.HandleFunc("/suggestions", h.CreateSuggestion).Methods(http.MethodPost)
	r.HandleFunc("/notices/{location}", h.GetSiteNotice).Methods(http.MethodGet)

	// Users
	r.HandleFunc("/users/{id}", h.GetUser).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/me", h.GetMe).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/me", h.UpdateMe).Methods(http.MethodPatch)
	authenticatedRoutes.HandleFunc("/me", h.DeleteMe).Methods(http.MethodDelete)
	authenticatedRoutes.HandleFunc("/me/settings", h.UpdateBadgeSettings).Methods(http.MethodPatch)
	authenticatedRoutes.HandleFunc("/me/badge-options", h.GetBadgeOptions).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/me/profile-image", h.UploadProfileImage).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/me/coordinates", h.GetMyCoordinates).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/me/bookmarks", h.GetMyBookmarks).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/me/comments", h.GetMyComments).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/me/farming", h.GetMyFarming).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/me/suggestions", h.GetMySuggestions).Methods(http.MethodGet)

	// Notifications
	authenticatedRoutes.HandleFunc("/me/notifications", h.GetNotifications).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/me/notifications", h.DeleteAllNotifications).Methods(http.MethodDelete)
	authenticatedRoutes.HandleFunc("/me/notifications/unread-count", h.GetUnreadCount).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/me/notifications/read-all", h.MarkAllNotificationsRead).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/me/notifications/{id}/read", h.MarkNotificationRead).Methods(http.MethodPost)

	// Admin (staff)
	adminRoutes.HandleFunc("/dashboard", h.GetDashboard).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/coordinates/pending", h.ListPendingCoordinates).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/coordinates/{id}/approve", h.ApproveCoordinate).Methods(http.MethodPost)
	adminRoutes.HandleFunc("/coordinates/{id}/reject", h.RejectCoordinate).Methods(http.MethodPost)
	adminRoutes.HandleFunc("/reports", h.ListReports).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/reports/{id}", h.ResolveReport).Methods(http.MethodPost)
	adminRoutes.HandleFunc("/settings", h.GetSiteSettings).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/rankings/recalculate", h.RecalculateRankings).Methods(http.MethodPost)
	adminRoutes.HandleFunc("/suggestions", h.ListSuggestions).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/suggestions/stats", h.GetSuggestionStats).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/suggestions/{id}", h.GetSuggestion).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/suggestions/{id}", h.UpdateSuggestion).Methods(http.MethodPatch)
	adminRoutes.HandleFunc("/notices", h.ListSiteNotices).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/notices/{location}", h.UpsertSiteNotice).Methods(http.MethodPut)

	// Admin (superuser)
	adminRoutes.Handle("/coordinates/batch-delete", superuser(h.BatchDeleteCoordinates)).Methods(http.MethodPost)
	adminRoutes.Handle("/users", superuser(h.ListUsers)).Methods(http.MethodGet)
	adminRoutes.Handle("/users/{id}/toggle-staff", superuser(h.ToggleStaff)).Methods(http.MethodPost)
	adminRoutes.Handle("/users/{id}/perks", superuser(h.GrantPerks)).Methods(http.MethodPost)
	adminRoutes.Handle("/bans", superuser(h.ListBans)).Methods(http.MethodGet)
	adminRoutes.Handle("/bans", superuser(h.CreateBan)).Methods(http.MethodPost)
	adminRoutes.Handle("/bans/{id}", superuser(h.Unban)).Methods(http.MethodDelete)
	adminRoutes.Handle("/suggestions/{id}", superuser(h.DeleteSuggestion)).Methods(http.MethodDelete)
	adminRoutes.Handle("/settings", superuser(h.UpdateSiteSettings)).Methods(http.MethodPut, http.MethodPatch)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Warning("404 Not Found: %s %s", r.Method, r.URL.Path)
		color.Yellow("[404] %s %s (route non trouvée)", r.Method, r.URL.Path)
		utils.ErrorSimple(w, http.StatusNotFound, "route non trouvée")
	})

	return middleware.CORSMiddleware(opts.AllowedOrigins)(r)
}
