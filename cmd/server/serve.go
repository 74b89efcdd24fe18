package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/api"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/background"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/config"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/database"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/geo"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/guest"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/handler"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/logger"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/middleware"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/ranking"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/services"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/translation"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/rueidis"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Démarre le serveur HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL
	db, err := database.ConnectPostgres(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	if err := utils.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return err
	}

	rankings, err := newRankingService(db, cfg)
	if err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}
	tasks := background.NewRunner(cfg.Background.MaxGoroutines)

	guests, err := guest.NewCodec(cfg.Guest)
	if err != nil {
		return err
	}

	h := &handler.Handler{
		Rankings:    rankings,
		Guests:      guests,
		Tasks:       tasks,
		RefineDelay: cfg.Geo.ParseRefineDelay(),
	}
	opts := api.Options{AllowedOrigins: cfg.Server.AllowedOrigins}

	if cfg.Cloudinary.Enabled() {
		images, err := services.NewCloudinaryService(cfg.Cloudinary)
		if err != nil {
			return err
		}
		h.Images = images
	} else {
		logger.Warning("Cloudinary non configuré: envoi d'images désactivé")
	}

	translations, closeCache, err := newTranslationService(db, cfg, httpClient)
	if err != nil {
		return err
	}
	defer closeCache()
	h.Translations = translations

	if cfg.Geo.NominatimURL != "" {
		geocoder, err := geo.NewGeocoder(cfg.Geo, httpClient)
		if err != nil {
			return err
		}
		h.Geocoder = geocoder
	}
	if cfg.Geo.IPLookupURL != "" {
		locator, err := geo.NewIPLocator(cfg.Geo, httpClient)
		if err != nil {
			return err
		}
		opts.Locator = locator
	}

	if cfg.RateLimit.Enabled {
		limiter, err := middleware.NewRateLimiter(cfg.RateLimit)
		if err != nil {
			return err
		}
		opts.Limiter = limiter
	}

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.SetupRouter(h, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Success("Server starting on port %s (rank refresh: %s)", cfg.Server.Port, rankings.Refresher().Mode())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := rankings.Refresher().Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Arrêt du serveur...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ParseShutdownGrace())
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		if cerr := tasks.Close(shutdownCtx); err == nil {
			err = cerr
		}
		// les derniers événements ne doivent pas rester en attente de tri
		if _, ferr := rankings.Refresher().Flush(shutdownCtx); err == nil {
			err = ferr
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Success("Serveur arrêté")
	return nil
}

func newRankingService(db *pgxpool.Pool, cfg *config.Config) (*ranking.Service, error) {
	store := ranking.NewPGStore(db)
	return ranking.NewService(store, store, cfg.Ranking)
}

// newTranslationService retourne nil si aucune clé DeepL n'est configurée.
// Le cache Redis est optionnel.
func newTranslationService(db *pgxpool.Pool, cfg *config.Config, client *http.Client) (*translation.Service, func(), error) {
	noop := func() {}

	deepl := translation.NewDeepL(cfg.DeepL, client)
	if !deepl.Enabled() {
		logger.Warning("DeepL non configuré: traduction désactivée")
		return nil, noop, nil
	}

	var cache translation.Cache
	closeCache := noop
	if cfg.Redis.Addr != "" {
		rdb, err := rueidis.NewClient(rueidis.ClientOption{
			InitAddress: []string{cfg.Redis.Addr},
			Password:    cfg.Redis.Password,
		})
		if err != nil {
			return nil, noop, err
		}
		cache = translation.NewRedisCache(rdb, cfg.Redis.ParseTTL())
		closeCache = rdb.Close
		logger.Success("Connected to Redis (%s)", cfg.Redis.Addr)
	}

	return translation.NewService(translation.NewPGRepository(db), cache, deepl), closeCache, nil
}
